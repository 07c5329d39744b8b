package upload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"weathernode/internal/models"
)

// FirebaseConfig configures the hierarchical backup sink (Realtime
// Database REST API).
type FirebaseConfig struct {
	Host     string // e.g. "https://my-station.firebaseio.com"
	AuthKey  string // database secret, optional on open rules
	DeviceID string
	Enabled  bool
	Timeout  time.Duration
}

// Firebase writes readings under /devices/{id}/readings keyed by unix
// timestamp, alongside static device info and a mutable status node.
// With Enabled=false it runs in simulated mode: every attempt is
// logged and skipped so the rest of the pipeline behaves identically.
type Firebase struct {
	cfg    FirebaseConfig
	client *http.Client
}

// NewFirebase validates the sink configuration. Host is only required
// when the sink is enabled.
func NewFirebase(cfg FirebaseConfig) (*Firebase, error) {
	if cfg.Enabled && cfg.Host == "" {
		return nil, errors.New("upload: firebase host required when enabled")
	}
	if cfg.DeviceID == "" {
		return nil, errors.New("upload: firebase device id required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.Host = strings.TrimSuffix(cfg.Host, "/")
	return &Firebase{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (f *Firebase) Name() string { return "firebase" }

// firebaseReading is the document stored per prediction.
type firebaseReading struct {
	Timestamp     int64   `json:"timestamp"`
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	Pressure      float64 `json:"pressure"`
	Lux           float64 `json:"lux"`
	GasPPM        float64 `json:"gas_ppm"`
	Light         string  `json:"light_condition"`
	AirQuality    string  `json:"air_quality"`
	ClassID       int     `json:"prediction"`
	Label         string  `json:"prediction_label"`
	InferenceUs   int64   `json:"inference_time_us"`
	SignalQuality string  `json:"signal_quality"`
	RSSI          int     `json:"rssi"`
}

// Attempt stores one reading under /devices/{id}/readings/{ts}.
func (f *Firebase) Attempt(p models.UploadPayload) Outcome {
	if !f.cfg.Enabled {
		log.Printf("Firebase: simulated upload for %s (%s)", p.DeviceID, p.Result.Label)
		return OutcomeSkipped
	}

	ts := p.Reading.Timestamp.Unix()
	doc := firebaseReading{
		Timestamp:     ts,
		Temperature:   p.Reading.Temperature,
		Humidity:      p.Reading.Humidity,
		Pressure:      p.Reading.Pressure,
		Lux:           p.Reading.Lux,
		GasPPM:        p.Reading.Gas,
		Light:         models.LightCondition(p.Reading.Lux),
		AirQuality:    models.AirQuality(p.Reading.Gas),
		ClassID:       int(p.Result.Class),
		Label:         p.Result.Label,
		InferenceUs:   p.Result.InferenceLatency.Microseconds(),
		SignalQuality: p.SignalQuality,
		RSSI:          p.RSSI,
	}

	path := fmt.Sprintf("/devices/%s/readings/%d", f.cfg.DeviceID, ts)
	if err := f.put(path, doc); err != nil {
		log.Printf("Firebase: upload failed: %v", err)
		return OutcomeFailure
	}
	log.Printf("Firebase: reading stored at %s", path)
	return OutcomeSuccess
}

// SaveDeviceInfo writes the static device record once at startup.
func (f *Firebase) SaveDeviceInfo(firmware, model string) error {
	if !f.cfg.Enabled {
		return nil
	}
	info := map[string]any{
		"device_id":   f.cfg.DeviceID,
		"firmware":    firmware,
		"model":       model,
		"last_boot":   time.Now().Unix(),
		"api_version": 1,
	}
	return f.put("/devices/"+f.cfg.DeviceID+"/info", info)
}

// UpdateStatus flips the online flag and records the last-seen time.
func (f *Firebase) UpdateStatus(online bool) error {
	if !f.cfg.Enabled {
		return nil
	}
	status := map[string]any{
		"online":    online,
		"last_seen": time.Now().Unix(),
	}
	return f.put("/devices/"+f.cfg.DeviceID+"/status", status)
}

func (f *Firebase) put(path string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	url := f.cfg.Host + path + ".json"
	if f.cfg.AuthKey != "" {
		url += "?auth=" + f.cfg.AuthKey
	}

	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}
