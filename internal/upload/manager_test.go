package upload

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weathernode/internal/models"
)

type fakeSink struct {
	name     string
	outcomes []Outcome
	calls    int
}

func (f *fakeSink) Name() string { return f.name }

func (f *fakeSink) Attempt(models.UploadPayload) Outcome {
	f.calls++
	if len(f.outcomes) == 0 {
		return OutcomeSuccess
	}
	o := f.outcomes[0]
	if len(f.outcomes) > 1 {
		f.outcomes = f.outcomes[1:]
	}
	return o
}

type fakeConn struct{ connected bool }

func (c *fakeConn) IsConnected() bool { return c.connected }

func newTestManager(t *testing.T, conn Connectivity, primary Sink, pp SinkPolicy, backup Sink, bp SinkPolicy) (*Manager, *time.Time) {
	t.Helper()
	m, err := NewManager(conn, primary, pp, backup, bp)
	require.NoError(t, err)
	now := time.Unix(5000, 0)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestNewManager_Validation(t *testing.T) {
	conn := &fakeConn{}
	sink := &fakeSink{name: "s"}

	_, err := NewManager(nil, sink, SinkPolicy{}, sink, SinkPolicy{})
	assert.Error(t, err)

	_, err = NewManager(conn, nil, SinkPolicy{}, sink, SinkPolicy{})
	assert.Error(t, err)

	_, err = NewManager(conn, sink, SinkPolicy{}, nil, SinkPolicy{})
	assert.Error(t, err)
}

func TestManager_PreflightSkipsWhenLinkDown(t *testing.T) {
	primary := &fakeSink{name: "primary"}
	m, _ := newTestManager(t, &fakeConn{connected: false}, primary, SinkPolicy{}, &fakeSink{name: "backup"}, SinkPolicy{})

	assert.Equal(t, OutcomeSkipped, m.UploadPrimary(models.UploadPayload{}))
	assert.Equal(t, 0, primary.calls, "sink must not be touched when the link is down")
	assert.Equal(t, Statistics{}, m.PrimaryStats())
}

func TestManager_RateLimitSkipsWithoutCounting(t *testing.T) {
	primary := &fakeSink{name: "primary"}
	policy := SinkPolicy{MinInterval: 15 * time.Second}
	m, now := newTestManager(t, &fakeConn{connected: true}, primary, policy, &fakeSink{name: "backup"}, SinkPolicy{})

	assert.Equal(t, OutcomeSuccess, m.UploadPrimary(models.UploadPayload{}))

	*now = now.Add(5 * time.Second)
	assert.Equal(t, OutcomeSkipped, m.UploadPrimary(models.UploadPayload{}))

	stats := m.PrimaryStats()
	assert.Equal(t, uint64(1), stats.TotalAttempts, "skipped attempt must not count")
	assert.Equal(t, uint64(1), stats.SuccessCount)

	*now = now.Add(10 * time.Second)
	assert.Equal(t, OutcomeSuccess, m.UploadPrimary(models.UploadPayload{}))
	assert.Equal(t, uint64(2), m.PrimaryStats().TotalAttempts)
}

func TestManager_FailureCountersAndCooldown(t *testing.T) {
	backup := &fakeSink{name: "backup", outcomes: []Outcome{OutcomeFailure, OutcomeFailure, OutcomeFailure}}
	policy := SinkPolicy{CooldownThreshold: 3, Cooldown: 5 * time.Minute}
	m, now := newTestManager(t, &fakeConn{connected: true}, &fakeSink{name: "primary"}, SinkPolicy{}, backup, policy)

	for i := 0; i < 3; i++ {
		assert.Equal(t, OutcomeFailure, m.UploadBackup(models.UploadPayload{}))
		*now = now.Add(time.Second)
	}
	stats := m.BackupStats()
	assert.Equal(t, uint64(3), stats.FailureCount)
	assert.Equal(t, 3, stats.ConsecutiveFailures)

	// Threshold crossed: attempts are throttled until the cool-down ends.
	assert.Equal(t, OutcomeSkipped, m.UploadBackup(models.UploadPayload{}))
	assert.Equal(t, 3, backup.calls)

	*now = now.Add(5 * time.Minute)
	backup.outcomes = []Outcome{OutcomeSuccess}
	assert.Equal(t, OutcomeSuccess, m.UploadBackup(models.UploadPayload{}))
	assert.Equal(t, 0, m.BackupStats().ConsecutiveFailures, "success resets the streak")
}

func TestManager_SuccessResetsConsecutiveFailures(t *testing.T) {
	primary := &fakeSink{name: "primary", outcomes: []Outcome{OutcomeFailure, OutcomeFailure, OutcomeSuccess}}
	m, now := newTestManager(t, &fakeConn{connected: true}, primary, SinkPolicy{}, &fakeSink{name: "backup"}, SinkPolicy{})

	m.UploadPrimary(models.UploadPayload{})
	*now = now.Add(time.Second)
	m.UploadPrimary(models.UploadPayload{})
	assert.Equal(t, 2, m.PrimaryStats().ConsecutiveFailures)

	*now = now.Add(time.Second)
	m.UploadPrimary(models.UploadPayload{})
	stats := m.PrimaryStats()
	assert.Equal(t, 0, stats.ConsecutiveFailures)
	assert.Equal(t, uint64(2), stats.FailureCount)
	assert.Equal(t, uint64(1), stats.SuccessCount)
}

func TestManager_DisabledSinkCountsNothing(t *testing.T) {
	m, _ := newTestManager(t, &fakeConn{connected: true},
		&fakeSink{name: "primary"}, SinkPolicy{},
		DisabledSink{SinkName: "firebase"}, SinkPolicy{})

	for i := 0; i < 4; i++ {
		assert.Equal(t, OutcomeSkipped, m.UploadBackup(models.UploadPayload{}))
	}
	assert.Equal(t, Statistics{}, m.BackupStats())
}

func TestManager_LiveSinkOptional(t *testing.T) {
	m, _ := newTestManager(t, &fakeConn{connected: true},
		&fakeSink{name: "primary"}, SinkPolicy{}, &fakeSink{name: "backup"}, SinkPolicy{})

	assert.Equal(t, OutcomeSkipped, m.PublishLive(models.UploadPayload{}))
	assert.Equal(t, Statistics{}, m.LiveStats())

	live := &fakeSink{name: "mqtt"}
	m.AttachLive(live, SinkPolicy{})
	assert.Equal(t, OutcomeSuccess, m.PublishLive(models.UploadPayload{}))
	assert.Equal(t, uint64(1), m.LiveStats().SuccessCount)
}

func TestManager_SinksThrottledIndependently(t *testing.T) {
	primary := &fakeSink{name: "primary"}
	backup := &fakeSink{name: "backup"}
	m, now := newTestManager(t, &fakeConn{connected: true},
		primary, SinkPolicy{MinInterval: 15 * time.Second},
		backup, SinkPolicy{})

	m.UploadPrimary(models.UploadPayload{})
	m.UploadBackup(models.UploadPayload{})

	*now = now.Add(time.Second)
	assert.Equal(t, OutcomeSkipped, m.UploadPrimary(models.UploadPayload{}))
	assert.Equal(t, OutcomeSuccess, m.UploadBackup(models.UploadPayload{}))
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "Success", OutcomeSuccess.String())
	assert.Equal(t, "Failure", OutcomeFailure.String())
	assert.Equal(t, "Skipped", OutcomeSkipped.String())
	assert.Equal(t, "Unknown", Outcome(42).String())
}
