package upload

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weathernode/internal/models"
)

func testPayload() models.UploadPayload {
	return models.UploadPayload{
		DeviceID: "A1B2C3D4E5F6",
		Reading: models.AveragedReading{
			Timestamp:   time.Unix(1700000000, 0),
			Temperature: 24.5,
			Humidity:    45.2,
			Pressure:    98500.0,
			Lux:         320.5,
			Gas:         850.0,
		},
		Result: models.ClassificationResult{
			Class:            models.ClassSunny,
			Label:            "Sunny",
			InferenceLatency: 250 * time.Microsecond,
		},
		SignalQuality: "Good",
		RSSI:          -55,
	}
}

func TestNewThingSpeak_Validation(t *testing.T) {
	_, err := NewThingSpeak(ThingSpeakConfig{APIKey: "k"})
	assert.Error(t, err)

	_, err = NewThingSpeak(ThingSpeakConfig{ServerURL: "http://example.com"})
	assert.Error(t, err)
}

func TestThingSpeak_UploadFieldMapping(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/update", r.URL.Path)
		got = r.URL.Query()
		w.Write([]byte("1234"))
	}))
	defer srv.Close()

	ts, err := NewThingSpeak(ThingSpeakConfig{ServerURL: srv.URL, APIKey: "WRITEKEY"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, ts.Attempt(testPayload()))

	assert.Equal(t, "WRITEKEY", got.Get("api_key"))
	assert.Equal(t, "24.50", got.Get("field1"))
	assert.Equal(t, "45.20", got.Get("field2"))
	assert.Equal(t, "98500.00", got.Get("field3"))
	assert.Equal(t, "320.50", got.Get("field4"))
	assert.Equal(t, "850.00", got.Get("field5"))
	assert.Equal(t, "4", got.Get("field6"), "class id for Sunny")
	assert.Equal(t, "250", got.Get("field7"), "inference latency in microseconds")
	assert.Equal(t, "-55", got.Get("field8"))
}

func TestThingSpeak_ZeroBodyIsRefusal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("0"))
	}))
	defer srv.Close()

	ts, err := NewThingSpeak(ThingSpeakConfig{ServerURL: srv.URL, APIKey: "k"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeFailure, ts.Attempt(testPayload()))
}

func TestThingSpeak_HTTPErrorIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ts, err := NewThingSpeak(ThingSpeakConfig{ServerURL: srv.URL, APIKey: "k"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeFailure, ts.Attempt(testPayload()))
}

func TestThingSpeak_TransportErrorIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	ts, err := NewThingSpeak(ThingSpeakConfig{ServerURL: srv.URL, APIKey: "k", Timeout: time.Second})
	require.NoError(t, err)

	assert.Equal(t, OutcomeFailure, ts.Attempt(testPayload()))
}

func TestThingSpeak_TestConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/channels/777/status.json", r.URL.Path)
		w.WriteHeader(http.StatusNotFound) // private channel
	}))
	defer srv.Close()

	ts, err := NewThingSpeak(ThingSpeakConfig{ServerURL: srv.URL, APIKey: "k", ChannelID: "777"})
	require.NoError(t, err)

	assert.True(t, ts.TestConnection())
}
