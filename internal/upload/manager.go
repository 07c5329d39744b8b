package upload

import (
	"errors"
	"log"
	"time"

	"weathernode/internal/models"
)

// Statistics are the per-sink upload counters. Accumulated
// monotonically; never reset except by restart.
type Statistics struct {
	TotalAttempts       uint64
	SuccessCount        uint64
	FailureCount        uint64
	ConsecutiveFailures int
}

// Connectivity is the pre-flight check the manager consults before any
// network attempt.
type Connectivity interface {
	IsConnected() bool
}

// SinkPolicy is the per-sink throttle configuration.
type SinkPolicy struct {
	// MinInterval is the minimum spacing between attempts. The primary
	// sink's remote service enforces its own limit; violating it risks
	// rejection or quota exhaustion.
	MinInterval time.Duration
	// CooldownThreshold is the consecutive-failure count that triggers
	// a cool-down pause. 0 disables throttling.
	CooldownThreshold int
	// Cooldown is how long attempts stay throttled after the threshold
	// is crossed.
	Cooldown time.Duration
}

type sinkState struct {
	sink          Sink
	policy        SinkPolicy
	stats         Statistics
	lastAttempt   time.Time
	cooldownUntil time.Time
}

// Manager publishes completed readings to a primary rate-limited sink
// and a secondary backup sink, tracking statistics per sink. It reads
// connectivity state but never mutates it.
type Manager struct {
	conn    Connectivity
	primary *sinkState
	backup  *sinkState
	live    *sinkState
	now     func() time.Time
}

// NewManager wires the two required sinks. A disabled backup is passed
// as a DisabledSink, not as nil.
func NewManager(conn Connectivity, primary Sink, primaryPolicy SinkPolicy, backup Sink, backupPolicy SinkPolicy) (*Manager, error) {
	if conn == nil {
		return nil, errors.New("upload: connectivity required")
	}
	if primary == nil || backup == nil {
		return nil, errors.New("upload: primary and backup sinks required")
	}
	return &Manager{
		conn:    conn,
		primary: &sinkState{sink: primary, policy: primaryPolicy},
		backup:  &sinkState{sink: backup, policy: backupPolicy},
		now:     time.Now,
	}, nil
}

// AttachLive adds an optional live-telemetry sink (no rate limit by
// default, same statistics handling).
func (m *Manager) AttachLive(sink Sink, policy SinkPolicy) {
	m.live = &sinkState{sink: sink, policy: policy}
}

// UploadPrimary publishes to the rate-limited time-series sink.
func (m *Manager) UploadPrimary(p models.UploadPayload) Outcome {
	return m.attempt(m.primary, p)
}

// UploadBackup publishes to the hierarchical backup sink.
func (m *Manager) UploadBackup(p models.UploadPayload) Outcome {
	return m.attempt(m.backup, p)
}

// PublishLive publishes to the live-telemetry sink if one is attached.
func (m *Manager) PublishLive(p models.UploadPayload) Outcome {
	if m.live == nil {
		return OutcomeSkipped
	}
	return m.attempt(m.live, p)
}

func (m *Manager) attempt(s *sinkState, p models.UploadPayload) Outcome {
	now := m.now()

	// Pre-flight: a down link is a skip, not a transport failure.
	if !m.conn.IsConnected() {
		log.Printf("Upload: %s skipped (link not connected)", s.sink.Name())
		return OutcomeSkipped
	}

	if s.policy.MinInterval > 0 && !s.lastAttempt.IsZero() &&
		now.Sub(s.lastAttempt) < s.policy.MinInterval {
		return OutcomeSkipped
	}

	if now.Before(s.cooldownUntil) {
		log.Printf("Upload: %s throttled for %s after %d consecutive failures",
			s.sink.Name(), s.cooldownUntil.Sub(now).Round(time.Second), s.stats.ConsecutiveFailures)
		return OutcomeSkipped
	}

	outcome := s.sink.Attempt(p)
	if outcome == OutcomeSkipped {
		// Disabled sink: exposes the same interface, counts nothing.
		return OutcomeSkipped
	}

	s.lastAttempt = now
	s.stats.TotalAttempts++

	switch outcome {
	case OutcomeSuccess:
		s.stats.SuccessCount++
		s.stats.ConsecutiveFailures = 0
	case OutcomeFailure:
		s.stats.FailureCount++
		s.stats.ConsecutiveFailures++
		if s.policy.CooldownThreshold > 0 &&
			s.stats.ConsecutiveFailures >= s.policy.CooldownThreshold {
			s.cooldownUntil = now.Add(s.policy.Cooldown)
			log.Printf("Upload: %s entering cool-down for %s (%d consecutive failures)",
				s.sink.Name(), s.policy.Cooldown, s.stats.ConsecutiveFailures)
		}
	}
	return outcome
}

// PrimaryStats returns a copy of the primary sink counters.
func (m *Manager) PrimaryStats() Statistics { return m.primary.stats }

// BackupStats returns a copy of the backup sink counters.
func (m *Manager) BackupStats() Statistics { return m.backup.stats }

// LiveStats returns a copy of the live sink counters.
func (m *Manager) LiveStats() Statistics {
	if m.live == nil {
		return Statistics{}
	}
	return m.live.stats
}
