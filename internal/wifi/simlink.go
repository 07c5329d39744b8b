package wifi

import (
	"math/rand"
	"time"
)

// SimLink simulates a flaky wireless interface: association completes
// after a fixed delay and an established link randomly drops. It lets
// the station run end to end without radio hardware.
type SimLink struct {
	// AssociateDelay is how long association takes to complete.
	AssociateDelay time.Duration
	// DropChance is the probability (0-1) that an Associated poll
	// observes a spontaneous drop.
	DropChance float64

	rng         *rand.Rand
	associating bool
	associated  bool
	readyAt     time.Time
	now         func() time.Time
}

// NewSimLink creates a simulated link with the given behavior.
func NewSimLink(associateDelay time.Duration, dropChance float64, seed int64) *SimLink {
	return &SimLink{
		AssociateDelay: associateDelay,
		DropChance:     dropChance,
		rng:            rand.New(rand.NewSource(seed)),
		now:            time.Now,
	}
}

// BeginAssociate starts a simulated association attempt.
func (l *SimLink) BeginAssociate(ssid, password string) error {
	l.associating = true
	l.associated = false
	l.readyAt = l.now().Add(l.AssociateDelay)
	return nil
}

// Associated reports the simulated link status, flipping pending
// associations to established once their delay has elapsed.
func (l *SimLink) Associated() bool {
	if l.associating && !l.now().Before(l.readyAt) {
		l.associating = false
		l.associated = true
	}
	if l.associated && l.DropChance > 0 && l.rng.Float64() < l.DropChance {
		l.associated = false
	}
	return l.associated
}

// Drop tears the simulated association down.
func (l *SimLink) Drop() {
	l.associating = false
	l.associated = false
}

// RSSI returns a jittered signal strength typical of a nearby AP.
func (l *SimLink) RSSI() int {
	if !l.associated {
		return 0
	}
	return -45 - l.rng.Intn(30)
}
