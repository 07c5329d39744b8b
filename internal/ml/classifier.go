package ml

import (
	"log"
	"time"

	"weathernode/internal/models"
)

// DecisionFunc is the externally supplied, deterministic ensemble
// decision. It must be side-effect free.
type DecisionFunc func(features [models.FeatureCount]float64) models.WeatherClass

// Classifier wraps a decision function with input validation and
// latency measurement. Classification itself cannot fail.
type Classifier struct {
	decide DecisionFunc
	now    func() time.Time
}

// NewClassifier wraps the given decision function.
func NewClassifier(decide DecisionFunc) *Classifier {
	return &Classifier{decide: decide, now: time.Now}
}

// Classify runs the decision function on a normalized feature vector
// and measures wall-clock inference latency. Out-of-[0,1] values are
// logged but still passed through: the scaler already clamps, so a
// violation here indicates a scaling bug upstream, not bad input.
func (c *Classifier) Classify(features [models.FeatureCount]float64) models.ClassificationResult {
	for i, v := range features {
		if v < 0.0 || v > 1.0 {
			log.Printf("Classifier: WARNING feature %s out of range: %.6f", models.Channel(i), v)
		}
	}

	start := c.now()
	class := c.decide(features)
	latency := c.now().Sub(start)

	return models.ClassificationResult{
		Class:            class,
		Label:            class.Label(),
		InferenceLatency: latency,
	}
}
