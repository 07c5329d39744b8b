package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"weathernode/internal/models"
)

// ThingSpeakConfig configures the primary time-series sink.
type ThingSpeakConfig struct {
	ServerURL string // e.g. "https://api.thingspeak.com"
	APIKey    string // pre-shared write key
	ChannelID string
	Timeout   time.Duration
}

// ThingSpeak publishes each classified reading as one channel update.
// Field mapping is fixed: field1..field5 are the raw channel means,
// field6 the class id, field7 inference latency in microseconds,
// field8 link RSSI.
type ThingSpeak struct {
	cfg      ThingSpeakConfig
	client   *http.Client
	resolver hostResolver
}

type hostResolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// NewThingSpeak validates the sink configuration.
func NewThingSpeak(cfg ThingSpeakConfig) (*ThingSpeak, error) {
	if cfg.ServerURL == "" {
		return nil, errors.New("upload: thingspeak server url required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("upload: thingspeak api key required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &ThingSpeak{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		resolver: net.DefaultResolver,
	}, nil
}

func (t *ThingSpeak) Name() string { return "thingspeak" }

// TestConnection probes the channel status endpoint so a broken write
// key or missing internet access shows up at startup rather than on
// the first prediction.
func (t *ThingSpeak) TestConnection() bool {
	if err := t.resolveServer(); err != nil {
		log.Printf("ThingSpeak: %v", err)
		return false
	}

	url := fmt.Sprintf("%s/channels/%s/status.json", t.cfg.ServerURL, t.cfg.ChannelID)
	resp, err := t.client.Get(url)
	if err != nil {
		log.Printf("ThingSpeak: connection test failed: %v", err)
		return false
	}
	defer resp.Body.Close()

	// 200 = public channel, 404 = private channel; both mean the API
	// is reachable.
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNotFound {
		log.Printf("ThingSpeak: API reachable (channel %s)", t.cfg.ChannelID)
		return true
	}
	log.Printf("ThingSpeak: unexpected connection test response: HTTP %d", resp.StatusCode)
	return true // still try to upload
}

// Attempt uploads one reading. DNS resolution is validated before the
// request so name-resolution trouble is reported distinctly from an
// HTTP-level failure.
func (t *ThingSpeak) Attempt(p models.UploadPayload) Outcome {
	if err := t.resolveServer(); err != nil {
		log.Printf("ThingSpeak: %v", err)
		return OutcomeFailure
	}

	q := url.Values{}
	q.Set("api_key", t.cfg.APIKey)
	q.Set("field1", strconv.FormatFloat(p.Reading.Temperature, 'f', 2, 64))
	q.Set("field2", strconv.FormatFloat(p.Reading.Humidity, 'f', 2, 64))
	q.Set("field3", strconv.FormatFloat(p.Reading.Pressure, 'f', 2, 64))
	q.Set("field4", strconv.FormatFloat(p.Reading.Lux, 'f', 2, 64))
	q.Set("field5", strconv.FormatFloat(p.Reading.Gas, 'f', 2, 64))
	q.Set("field6", strconv.Itoa(int(p.Result.Class)))
	q.Set("field7", strconv.FormatInt(p.Result.InferenceLatency.Microseconds(), 10))
	q.Set("field8", strconv.Itoa(p.RSSI))

	resp, err := t.client.Get(t.cfg.ServerURL + "/update?" + q.Encode())
	if err != nil {
		log.Printf("ThingSpeak: request failed: %v", err)
		return OutcomeFailure
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("ThingSpeak: upload rejected: HTTP %d", resp.StatusCode)
		return OutcomeFailure
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		log.Printf("ThingSpeak: reading response failed: %v", err)
		return OutcomeFailure
	}

	// The body is the created entry id; "0" means the service refused
	// the update (rate limit or bad key).
	entry := strings.TrimSpace(string(body))
	if entry == "0" || entry == "" {
		log.Printf("ThingSpeak: update refused (rate limit or invalid key)")
		return OutcomeFailure
	}

	log.Printf("ThingSpeak: entry #%s created (%s, %.2f°C)", entry, p.Result.Label, p.Reading.Temperature)
	return OutcomeSuccess
}

// resolveServer validates name resolution for the configured server.
func (t *ThingSpeak) resolveServer() error {
	u, err := url.Parse(t.cfg.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server url: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.cfg.Timeout)
	defer cancel()

	if _, err := t.resolver.LookupHost(ctx, u.Hostname()); err != nil {
		return fmt.Errorf("dns resolution failed for %s: %w", u.Hostname(), err)
	}
	return nil
}
