package sensors

import (
	"math/rand"
	"time"

	"weathernode/internal/models"
)

// weatherPattern is one coherent set of per-channel generation ranges.
// A frame is always drawn from a single pattern so the channels move
// together the way real weather does.
type weatherPattern struct {
	name                   string
	tempLo, tempHi         float64
	humidLo, humidHi       float64
	pressureLo, pressureHi float64
	luxLo, luxHi           float64
	gasLo, gasHi           float64
}

// Pattern mix: 40% cloudy, 20% sunny, 20% rainy, 10% stormy, 10% foggy.
// Ranges come from the training-data value distribution per class.
var patterns = []weatherPattern{
	{"cloudy", 20.0, 26.0, 40.0, 70.0, 98000.0, 101000.0, 100.0, 400.0, 200.0, 800.0},
	{"sunny", 28.0, 35.0, 20.0, 45.0, 100500.0, 103000.0, 500.0, 1000.0, 100.0, 400.0},
	{"rainy", 15.0, 22.0, 70.0, 90.0, 96000.0, 98500.0, 10.0, 150.0, 300.0, 900.0},
	{"stormy", 16.0, 23.0, 75.0, 95.0, 95000.0, 97000.0, 0.0, 80.0, 400.0, 1200.0},
	{"foggy", 18.0, 24.0, 80.0, 95.0, 97500.0, 100000.0, 5.0, 100.0, 500.0, 1500.0},
}

// pick thresholds over a 0-9 roll.
var patternWeights = []int{4, 6, 8, 9, 10}

// Simulator generates weather-pattern-biased random sensor frames. It
// stands in for the I2C sensor drivers during development and testing.
type Simulator struct {
	rng     *rand.Rand
	current [models.ChannelCount]float64
}

// NewSimulator creates a simulator seeded from the clock.
func NewSimulator() *Simulator {
	return NewSimulatorWithSeed(time.Now().UnixNano())
}

// NewSimulatorWithSeed creates a simulator with a fixed seed for
// reproducible runs.
func NewSimulatorWithSeed(seed int64) *Simulator {
	s := &Simulator{rng: rand.New(rand.NewSource(seed))}
	_ = s.Refresh()
	return s
}

// Refresh draws a new frame from a randomly chosen weather pattern.
func (s *Simulator) Refresh() error {
	roll := s.rng.Intn(10)
	p := patterns[len(patterns)-1]
	for i, w := range patternWeights {
		if roll < w {
			p = patterns[i]
			break
		}
	}

	s.current[models.ChannelTemperature] = s.randomFloat(p.tempLo, p.tempHi)
	s.current[models.ChannelHumidity] = s.randomFloat(p.humidLo, p.humidHi)
	s.current[models.ChannelPressure] = s.randomFloat(p.pressureLo, p.pressureHi)
	s.current[models.ChannelLux] = s.randomFloat(p.luxLo, p.luxHi)
	s.current[models.ChannelGas] = s.randomFloat(p.gasLo, p.gasHi)
	return nil
}

// Sample returns the value the channel held in the current frame.
func (s *Simulator) Sample(ch models.Channel) float64 {
	if ch < 0 || int(ch) >= models.ChannelCount {
		return 0
	}
	return s.current[ch]
}

func (s *Simulator) randomFloat(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}
