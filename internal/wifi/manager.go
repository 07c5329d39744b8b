package wifi

import (
	"errors"
	"log"
	"time"
)

// Link abstracts the wireless interface the same way the orchestrator
// abstracts sensors: association is started asynchronously and polled.
type Link interface {
	// BeginAssociate starts a non-blocking association attempt.
	BeginAssociate(ssid, password string) error
	// Associated reports whether the link is currently associated.
	Associated() bool
	// Drop tears the association down.
	Drop()
	// RSSI returns signal strength in dBm; only meaningful while
	// associated.
	RSSI() int
}

// Config holds the connection policy.
type Config struct {
	SSID                string
	Password            string
	AttemptTimeout      time.Duration // per-attempt association timeout
	RetryDelay          time.Duration // fixed backoff between attempts
	MaxRetries          int           // attempts per sequence before Failed
	HealthCheckInterval time.Duration
	AutoReconnect       bool
}

// Stats are the shared connection counters. Mutated only by the
// Manager; everyone else reads a copy.
type Stats struct {
	RetryCount             int
	TotalAttempts          uint64
	SuccessfulConnections  uint64
	FailedConnections      uint64
	ConnectedSince         time.Time
	TotalConnectedDuration time.Duration
}

// Manager owns the wireless-link lifecycle: connect, health-check,
// auto-reconnect, disconnect, with bounded retries. It is a pure
// polling state machine: Update never blocks, every delay is a
// deadline compared against the clock on the next tick.
type Manager struct {
	cfg  Config
	link Link

	state State
	stats Stats

	attemptDeadline time.Time // Connecting: when this attempt times out
	retryAt         time.Time // Reconnecting: when the next attempt starts
	lastHealthCheck time.Time

	listeners []StateListener
	now       func() time.Time
}

// NewManager validates the policy and creates an Idle manager.
func NewManager(cfg Config, link Link) (*Manager, error) {
	if cfg.SSID == "" {
		return nil, errors.New("wifi: ssid required")
	}
	if cfg.AttemptTimeout <= 0 {
		return nil, errors.New("wifi: attempt timeout must be > 0")
	}
	if cfg.RetryDelay < 0 {
		return nil, errors.New("wifi: retry delay must be >= 0")
	}
	if cfg.MaxRetries <= 0 {
		return nil, errors.New("wifi: max retries must be > 0")
	}
	if cfg.HealthCheckInterval <= 0 {
		return nil, errors.New("wifi: health check interval must be > 0")
	}
	if link == nil {
		return nil, errors.New("wifi: link required")
	}
	return &Manager{cfg: cfg, link: link, state: StateIdle, now: time.Now}, nil
}

// AddListener attaches a state-transition observer.
func (m *Manager) AddListener(l StateListener) {
	m.listeners = append(m.listeners, l)
}

// Connect begins a fresh connection sequence. Returns false when a
// sequence is already in progress or the link is already connected.
// From Failed this resets the retry budget and re-enters Connecting.
func (m *Manager) Connect() bool {
	switch m.state {
	case StateConnecting, StateReconnecting:
		log.Println("WiFi: Connection already in progress")
		return false
	case StateConnected:
		return false
	}

	m.stats.RetryCount = 0
	m.beginAttempt()
	return true
}

// beginAttempt starts one association attempt and arms its deadline.
func (m *Manager) beginAttempt() {
	m.stats.RetryCount++
	m.stats.TotalAttempts++
	m.attemptDeadline = m.now().Add(m.cfg.AttemptTimeout)

	log.Printf("WiFi: Attempt %d/%d: connecting to %q...",
		m.stats.RetryCount, m.cfg.MaxRetries, m.cfg.SSID)

	if err := m.link.BeginAssociate(m.cfg.SSID, m.cfg.Password); err != nil {
		log.Printf("WiFi: association start failed: %v", err)
	}
	m.setState(StateConnecting)
}

// Update advances the state machine. It must be called every
// orchestrator tick and never blocks.
func (m *Manager) Update() {
	now := m.now()

	switch m.state {
	case StateConnecting:
		if m.link.Associated() {
			m.onConnected(now)
			return
		}
		if !now.Before(m.attemptDeadline) {
			m.onAttemptTimeout(now)
		}

	case StateReconnecting:
		if !now.Before(m.retryAt) {
			m.beginAttempt()
		}

	case StateConnected:
		if now.Sub(m.lastHealthCheck) < m.cfg.HealthCheckInterval {
			return
		}
		m.lastHealthCheck = now
		if !m.link.Associated() {
			log.Println("WiFi: connection lost")
			m.onDisconnected(now)
		}

	case StateDisconnected:
		if m.cfg.AutoReconnect {
			log.Println("WiFi: auto-reconnecting...")
			m.stats.RetryCount = 0
			m.beginAttempt()
		}
	}
}

func (m *Manager) onConnected(now time.Time) {
	m.stats.RetryCount = 0
	m.stats.SuccessfulConnections++
	m.stats.ConnectedSince = now
	m.lastHealthCheck = now
	log.Printf("WiFi: connected to %q (RSSI %d dBm, %s)",
		m.cfg.SSID, m.link.RSSI(), qualityFromRSSI(m.link.RSSI()))
	m.setState(StateConnected)
}

func (m *Manager) onAttemptTimeout(now time.Time) {
	if m.stats.RetryCount < m.cfg.MaxRetries {
		m.retryAt = now.Add(m.cfg.RetryDelay)
		log.Printf("WiFi: attempt timed out, retrying in %s (attempt %d/%d)",
			m.cfg.RetryDelay, m.stats.RetryCount+1, m.cfg.MaxRetries)
		m.setState(StateReconnecting)
		return
	}

	m.stats.FailedConnections++
	log.Printf("WiFi: all %d connection attempts failed", m.cfg.MaxRetries)
	m.setState(StateFailed)
}

func (m *Manager) onDisconnected(now time.Time) {
	if m.state == StateConnected {
		m.stats.TotalConnectedDuration += now.Sub(m.stats.ConnectedSince)
	}
	m.setState(StateDisconnected)
}

// IsConnected combines the machine state with the live link status.
func (m *Manager) IsConnected() bool {
	return m.state == StateConnected && m.link.Associated()
}

// Disconnect forces Disconnected and flushes the connected-duration
// accounting. With auto-reconnect enabled the next Update starts a new
// sequence.
func (m *Manager) Disconnect() {
	now := m.now()
	if m.state == StateConnected {
		m.stats.TotalConnectedDuration += now.Sub(m.stats.ConnectedSince)
	}
	m.link.Drop()
	log.Println("WiFi: disconnected")
	m.setState(StateDisconnected)
}

// SetAutoReconnect enables or disables reconnecting from Disconnected.
func (m *Manager) SetAutoReconnect(enable bool) {
	m.cfg.AutoReconnect = enable
}

// State returns the current lifecycle state.
func (m *Manager) State() State { return m.state }

// Stats returns a copy of the connection counters.
func (m *Manager) Stats() Stats { return m.stats }

// RSSI returns the live signal strength, 0 when not connected.
func (m *Manager) RSSI() int {
	if !m.IsConnected() {
		return 0
	}
	return m.link.RSSI()
}

// SignalQuality buckets the live RSSI into a quality level.
func (m *Manager) SignalQuality() Quality {
	if !m.IsConnected() {
		return QualityNone
	}
	return qualityFromRSSI(m.link.RSSI())
}

func (m *Manager) setState(next State) {
	if next == m.state {
		return
	}
	old := m.state
	m.state = next
	for _, l := range m.listeners {
		l.OnStateChange(old, next)
	}
}
