package ml

import (
	"errors"
	"fmt"

	"weathernode/internal/models"
)

// ScalingParams is the (min, max) pair used by the training-time
// MinMaxScaler for one channel. The values must match the ones the
// model was trained with: out-of-sync constants shift every input into
// a narrow sub-range and silently collapse accuracy to near-random
// while reporting no fault.
type ScalingParams struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Scale maps a raw value into [0, 1] using the MinMaxScaler formula
// scaled = (value - min) / (max - min), clamping out-of-range inputs.
// Pure and total: it never fails, only clamps.
func Scale(value float64, p ScalingParams) float64 {
	if value < p.Min {
		value = p.Min
	}
	if value > p.Max {
		value = p.Max
	}
	return (value - p.Min) / (p.Max - p.Min)
}

// FeatureScaler holds the per-feature scaling parameters in channel
// order (temperature, humidity, pressure, lux).
type FeatureScaler struct {
	params [models.FeatureCount]ScalingParams
}

// NewFeatureScaler validates the parameter set. Each pair must satisfy
// min < max or the scaling formula divides by zero.
func NewFeatureScaler(params [models.FeatureCount]ScalingParams) (*FeatureScaler, error) {
	for i, p := range params {
		if p.Min >= p.Max {
			return nil, fmt.Errorf("ml: scaling params for %s: min %.4f must be < max %.4f",
				models.Channel(i), p.Min, p.Max)
		}
	}
	return &FeatureScaler{params: params}, nil
}

// ScaleVector normalizes one raw rolling-mean vector into the feature
// vector the classifier expects.
func (s *FeatureScaler) ScaleVector(raw [models.FeatureCount]float64) [models.FeatureCount]float64 {
	var out [models.FeatureCount]float64
	for i, v := range raw {
		out[i] = Scale(v, s.params[i])
	}
	return out
}

// Params returns the scaling parameters for one feature.
func (s *FeatureScaler) Params(ch models.Channel) (ScalingParams, error) {
	if ch < 0 || int(ch) >= models.FeatureCount {
		return ScalingParams{}, errors.New("ml: channel has no scaling params")
	}
	return s.params[ch], nil
}
