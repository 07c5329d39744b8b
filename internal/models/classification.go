package models

import "time"

// WeatherClass is the discrete class id produced by the classifier.
type WeatherClass int

const (
	ClassCloudy WeatherClass = iota
	ClassFoggy
	ClassRainy
	ClassStormy
	ClassSunny

	// ClassCount is the number of weather classes the model was trained on.
	ClassCount = 5
)

var classLabels = [ClassCount]string{"Cloudy", "Foggy", "Rainy", "Stormy", "Sunny"}

// Label returns the shared class-to-label mapping used by both the
// embedded classifier output and downstream consumers.
func (c WeatherClass) Label() string {
	if c < 0 || int(c) >= ClassCount {
		return "Unknown"
	}
	return classLabels[c]
}

func (c WeatherClass) String() string { return c.Label() }

// ClassificationResult is produced once per prediction tick.
type ClassificationResult struct {
	Class            WeatherClass  `json:"class_id"`
	Label            string        `json:"label"`
	InferenceLatency time.Duration `json:"inference_latency"`
}

// UploadPayload is the reading+classification bundle handed to the sinks.
type UploadPayload struct {
	DeviceID      string               `json:"device_id"`
	Reading       AveragedReading      `json:"reading"`
	Result        ClassificationResult `json:"result"`
	SignalQuality string               `json:"signal_quality"`
	RSSI          int                  `json:"rssi"`
}
