package models

import "time"

// Channel identifies one sensed environmental quantity.
type Channel int

const (
	ChannelTemperature Channel = iota
	ChannelHumidity
	ChannelPressure
	ChannelLux
	ChannelGas

	// ChannelCount is the number of sensed channels.
	ChannelCount = 5

	// FeatureCount is the number of channels that feed the classifier.
	// Gas is sampled and uploaded but was not part of the training data.
	FeatureCount = 4
)

var channelNames = [ChannelCount]string{"temperature", "humidity", "pressure", "lux", "gas"}

func (c Channel) String() string {
	if c < 0 || int(c) >= ChannelCount {
		return "unknown"
	}
	return channelNames[c]
}

// RawReading is a single sample from one channel. It is consumed
// immediately into the channel's window buffer.
type RawReading struct {
	Channel   Channel   `json:"channel"`
	Value     float64   `json:"value"`
	SampledAt time.Time `json:"sampled_at"`
}

// AveragedReading holds the per-channel rolling means used for one
// prediction, in raw (unscaled) units.
type AveragedReading struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"` // Celsius
	Humidity    float64   `json:"humidity"`    // Percentage 0-100
	Pressure    float64   `json:"pressure"`    // Pascal
	Lux         float64   `json:"lux"`
	Gas         float64   `json:"gas_ppm"`
}

// Values returns the channel means indexed by Channel.
func (r AveragedReading) Values() [ChannelCount]float64 {
	return [ChannelCount]float64{r.Temperature, r.Humidity, r.Pressure, r.Lux, r.Gas}
}

// LightCondition buckets a lux value into a human-readable level.
func LightCondition(lux float64) string {
	switch {
	case lux < 10:
		return "Dark"
	case lux < 50:
		return "Dim"
	case lux < 200:
		return "Indoor"
	case lux < 400:
		return "Overcast"
	default:
		return "Bright"
	}
}

// AirQuality buckets a gas ppm value into a human-readable level.
func AirQuality(ppm float64) string {
	switch {
	case ppm < 1000:
		return "Good"
	case ppm < 2000:
		return "Moderate"
	case ppm < 5000:
		return "Poor"
	default:
		return "Hazardous"
	}
}
