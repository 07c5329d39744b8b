package sensors

import "weathernode/internal/models"

// Sampler is the capability the orchestrator reads channel values
// through. Hardware drivers and the simulator both implement it; the
// pipeline is agnostic to which is behind it.
//
// Refresh acquires one fresh measurement frame (the hardware read),
// Sample returns the value a channel held in that frame.
type Sampler interface {
	Refresh() error
	Sample(ch models.Channel) float64
}
