package station

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"weathernode/internal/buffer"
	"weathernode/internal/metrics"
	"weathernode/internal/ml"
	"weathernode/internal/models"
	"weathernode/internal/sensors"
	"weathernode/internal/upload"
	"weathernode/internal/wifi"
)

// Config holds the loop timing. PredictInterval should equal
// WindowSize * SampleInterval so each prediction consumes exactly one
// full window of fresh samples, with no gap and no double-counting.
type Config struct {
	WindowSize      int
	SampleInterval  time.Duration
	PredictInterval time.Duration
	// LoopTick is the polling cadence of the cooperative loop. It only
	// bounds timer resolution; all scheduling is deadline-based.
	LoopTick time.Duration
}

// Connectivity is the link surface the loop consults. Update is called
// every tick so the state machine makes progress without blocking.
type Connectivity interface {
	Update()
	IsConnected() bool
	RSSI() int
	SignalQuality() wifi.Quality
}

// Uploader publishes one classified reading per sink. Rate limits and
// preflight checks live behind this interface.
type Uploader interface {
	UploadPrimary(p models.UploadPayload) upload.Outcome
	UploadBackup(p models.UploadPayload) upload.Outcome
	PublishLive(p models.UploadPayload) upload.Outcome
}

// Deps are the collaborators the loop sequences. All are required
// except Recorder, which defaults to a no-op.
type Deps struct {
	Sampler      sensors.Sampler
	Scaler       *ml.FeatureScaler
	Classifier   *ml.Classifier
	Connectivity Connectivity
	Uploads      Uploader
	Recorder     metrics.Recorder
	DeviceID     string
}

// RunStats accumulates over the whole run and is logged at shutdown.
type RunStats struct {
	Readings       uint64
	Predictions    uint64
	PerClass       [models.ClassCount]uint64
	PrimarySuccess uint64
	PrimaryFailure uint64
	PrimarySkipped uint64
	BackupSuccess  uint64
	BackupFailure  uint64
	BackupSkipped  uint64
}

// Orchestrator is the single-threaded cooperative loop sequencing
// sample → predict → upload against three deadline-driven timers.
// It is the only mutator of the window buffers.
type Orchestrator struct {
	cfg  Config
	deps Deps

	windows [models.ChannelCount]*buffer.Window

	started     time.Time
	lastSample  time.Time
	lastPredict time.Time
	stats       RunStats
	now         func() time.Time
}

// New validates the configuration and warms up the per-channel windows.
func New(cfg Config, deps Deps) (*Orchestrator, error) {
	if cfg.WindowSize <= 0 {
		return nil, errors.New("station: window size must be > 0")
	}
	if cfg.SampleInterval <= 0 || cfg.PredictInterval <= 0 {
		return nil, errors.New("station: sample and predict intervals must be > 0")
	}
	if cfg.LoopTick <= 0 {
		cfg.LoopTick = 100 * time.Millisecond
	}
	if deps.Sampler == nil || deps.Scaler == nil || deps.Classifier == nil ||
		deps.Connectivity == nil || deps.Uploads == nil {
		return nil, errors.New("station: sampler, scaler, classifier, connectivity and uploads are required")
	}
	if deps.Recorder == nil {
		deps.Recorder = metrics.Noop{}
	}
	if want := time.Duration(cfg.WindowSize) * cfg.SampleInterval; cfg.PredictInterval != want {
		log.Printf("Orchestrator: WARNING predict interval %s != window size × sample interval (%s); window contents will overlap or gap between predictions",
			cfg.PredictInterval, want)
	}

	o := &Orchestrator{cfg: cfg, deps: deps, now: time.Now}
	for ch := range o.windows {
		w, err := buffer.NewWindow(cfg.WindowSize)
		if err != nil {
			return nil, fmt.Errorf("station: channel %s window: %w", models.Channel(ch), err)
		}
		o.windows[ch] = w
	}
	return o, nil
}

// Run drives the loop until the context is cancelled. Stopping is
// synchronous and happens between ticks; there is no in-flight work to
// cancel.
func (o *Orchestrator) Run(ctx context.Context) {
	o.started = o.now()
	o.lastPredict = o.started
	log.Printf("Orchestrator: starting (sample every %s, predict every %s, window %d)",
		o.cfg.SampleInterval, o.cfg.PredictInterval, o.cfg.WindowSize)

	ticker := time.NewTicker(o.cfg.LoopTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Orchestrator: stopping...")
			o.logSummary()
			return
		case <-ticker.C:
			o.Tick(o.now())
		}
	}
}

// Tick performs one cooperative pass: link state machine first, then
// sampling, then prediction and uploads when due. Within a tick,
// sampling strictly precedes prediction, which strictly precedes
// upload attempts.
func (o *Orchestrator) Tick(now time.Time) {
	o.deps.Connectivity.Update()

	if o.lastSample.IsZero() || now.Sub(o.lastSample) >= o.cfg.SampleInterval {
		o.sample(now)
	}

	if o.lastPredict.IsZero() {
		o.lastPredict = now
	} else if now.Sub(o.lastPredict) >= o.cfg.PredictInterval {
		o.predict(now)
	}
}

func (o *Orchestrator) sample(now time.Time) {
	o.lastSample = now
	if err := o.deps.Sampler.Refresh(); err != nil {
		log.Printf("Orchestrator: sensor refresh failed: %v", err)
		return
	}
	for ch := range o.windows {
		o.windows[ch].Push(o.deps.Sampler.Sample(models.Channel(ch)))
	}
	o.stats.Readings++
	o.deps.Recorder.SampleDrawn()
}

func (o *Orchestrator) predict(now time.Time) {
	o.lastPredict = now

	reading := models.AveragedReading{
		Timestamp:   now,
		Temperature: o.windows[models.ChannelTemperature].Mean(),
		Humidity:    o.windows[models.ChannelHumidity].Mean(),
		Pressure:    o.windows[models.ChannelPressure].Mean(),
		Lux:         o.windows[models.ChannelLux].Mean(),
		Gas:         o.windows[models.ChannelGas].Mean(),
	}

	features := o.deps.Scaler.ScaleVector([models.FeatureCount]float64{
		reading.Temperature, reading.Humidity, reading.Pressure, reading.Lux,
	})
	result := o.deps.Classifier.Classify(features)

	o.stats.Predictions++
	o.stats.PerClass[result.Class]++
	o.deps.Recorder.PredictionMade(result)
	o.deps.Recorder.SetRSSI(o.deps.Connectivity.RSSI())

	log.Printf("Orchestrator: predicted %s (%.1f°C, %.1f%%, %.0fPa, %.0flx, %.0fppm) in %s",
		result.Label, reading.Temperature, reading.Humidity, reading.Pressure,
		reading.Lux, reading.Gas, result.InferenceLatency)

	payload := models.UploadPayload{
		DeviceID:      o.deps.DeviceID,
		Reading:       reading,
		Result:        result,
		SignalQuality: o.deps.Connectivity.SignalQuality().String(),
		RSSI:          o.deps.Connectivity.RSSI(),
	}

	// A down link means the attempts below all skip; the reading is
	// dropped, never queued.
	primary := o.deps.Uploads.UploadPrimary(payload)
	o.countPrimary(primary)
	o.deps.Recorder.UploadAttempted("primary", primary)

	backup := o.deps.Uploads.UploadBackup(payload)
	o.countBackup(backup)
	o.deps.Recorder.UploadAttempted("backup", backup)

	if live := o.deps.Uploads.PublishLive(payload); live != upload.OutcomeSkipped {
		o.deps.Recorder.UploadAttempted("live", live)
	}
}

func (o *Orchestrator) countPrimary(outcome upload.Outcome) {
	switch outcome {
	case upload.OutcomeSuccess:
		o.stats.PrimarySuccess++
	case upload.OutcomeFailure:
		o.stats.PrimaryFailure++
	case upload.OutcomeSkipped:
		o.stats.PrimarySkipped++
	}
}

func (o *Orchestrator) countBackup(outcome upload.Outcome) {
	switch outcome {
	case upload.OutcomeSuccess:
		o.stats.BackupSuccess++
	case upload.OutcomeFailure:
		o.stats.BackupFailure++
	case upload.OutcomeSkipped:
		o.stats.BackupSkipped++
	}
}

// Stats returns a copy of the accumulated run statistics.
func (o *Orchestrator) Stats() RunStats { return o.stats }

func (o *Orchestrator) logSummary() {
	elapsed := o.now().Sub(o.started).Round(time.Second)
	log.Printf("Orchestrator: run summary after %s", elapsed)
	log.Printf("Orchestrator:   readings: %d, predictions: %d", o.stats.Readings, o.stats.Predictions)
	for class, count := range o.stats.PerClass {
		if count == 0 {
			continue
		}
		log.Printf("Orchestrator:   %-7s %d (%.1f%%)", models.WeatherClass(class).Label(),
			count, 100*float64(count)/float64(o.stats.Predictions))
	}
	log.Printf("Orchestrator:   primary uploads: %d ok, %d failed, %d skipped",
		o.stats.PrimarySuccess, o.stats.PrimaryFailure, o.stats.PrimarySkipped)
	log.Printf("Orchestrator:   backup uploads:  %d ok, %d failed, %d skipped",
		o.stats.BackupSuccess, o.stats.BackupFailure, o.stats.BackupSkipped)
}
