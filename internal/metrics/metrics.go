package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"weathernode/internal/models"
	"weathernode/internal/upload"
	"weathernode/internal/wifi"
)

// Station exposes the pipeline counters over a Prometheus registry so
// a scrape endpoint (or a test) can read them. All methods are safe for
// the single-goroutine orchestrator loop; the prometheus types handle
// their own synchronization anyway.
type Station struct {
	samples       prometheus.Counter
	predictions   *prometheus.CounterVec
	uploads       *prometheus.CounterVec
	linkState     prometheus.Gauge
	linkRSSI      prometheus.Gauge
	inferenceTime prometheus.Histogram
}

// NewStation builds and registers the station metric set on the given
// registerer. Pass prometheus.DefaultRegisterer in main, a fresh
// registry in tests.
func NewStation(reg prometheus.Registerer) *Station {
	s := &Station{
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weathernode_samples_total",
			Help: "Total sensor samples drawn across all channels.",
		}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weathernode_predictions_total",
			Help: "Predictions made, labelled by weather class.",
		}, []string{"class"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weathernode_uploads_total",
			Help: "Upload attempts by sink and outcome.",
		}, []string{"sink", "outcome"}),
		linkState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "weathernode_link_state",
			Help: "Connection state machine value (0=Idle .. 5=Failed).",
		}),
		linkRSSI: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "weathernode_link_rssi_dbm",
			Help: "Last observed signal strength.",
		}),
		inferenceTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "weathernode_inference_seconds",
			Help:    "Forest walk latency per prediction.",
			Buckets: prometheus.ExponentialBuckets(0.000001, 4, 10),
		}),
	}
	reg.MustRegister(s.samples, s.predictions, s.uploads, s.linkState, s.linkRSSI, s.inferenceTime)
	return s
}

// SampleDrawn counts one full sensor refresh (all channels).
func (s *Station) SampleDrawn() { s.samples.Inc() }

// PredictionMade records one classification and its latency.
func (s *Station) PredictionMade(r models.ClassificationResult) {
	s.predictions.WithLabelValues(r.Class.Label()).Inc()
	s.inferenceTime.Observe(r.InferenceLatency.Seconds())
}

// UploadAttempted records an upload outcome for one sink.
func (s *Station) UploadAttempted(sink string, outcome upload.Outcome) {
	s.uploads.WithLabelValues(sink, outcome.String()).Inc()
}

// SetRSSI updates the signal strength gauge.
func (s *Station) SetRSSI(rssi int) { s.linkRSSI.Set(float64(rssi)) }

// OnStateChange implements wifi.StateListener so the gauge follows the
// connection state machine.
func (s *Station) OnStateChange(_, new wifi.State) {
	s.linkState.Set(float64(new))
}

var _ wifi.StateListener = (*Station)(nil)

// Noop discards all recordings. Used when metrics are disabled.
type Noop struct{}

func (Noop) SampleDrawn()                               {}
func (Noop) PredictionMade(models.ClassificationResult) {}
func (Noop) UploadAttempted(string, upload.Outcome)     {}
func (Noop) SetRSSI(int)                                {}
func (Noop) OnStateChange(_, _ wifi.State)              {}

// Recorder is the narrow surface the orchestrator consumes.
type Recorder interface {
	SampleDrawn()
	PredictionMade(r models.ClassificationResult)
	UploadAttempted(sink string, outcome upload.Outcome)
	SetRSSI(rssi int)
}

var (
	_ Recorder = (*Station)(nil)
	_ Recorder = Noop{}
)
