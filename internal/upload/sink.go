package upload

import "weathernode/internal/models"

// Outcome classifies one upload attempt. Skipped is not a failure: it
// means no attempt was made (link down, rate limit, cool-down, or the
// sink is disabled) and must not touch failure counters.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "Success"
	case OutcomeFailure:
		return "Failure"
	case OutcomeSkipped:
		return "Skipped"
	default:
		return "Unknown"
	}
}

// Sink is an upload destination. Implementations log their own
// transport diagnostics; the manager only needs the outcome.
type Sink interface {
	Name() string
	Attempt(p models.UploadPayload) Outcome
}

// DisabledSink satisfies Sink for a destination that is configured
// off. It always skips, so callers never special-case a missing sink.
type DisabledSink struct {
	SinkName string
}

func (d DisabledSink) Name() string { return d.SinkName }

func (d DisabledSink) Attempt(models.UploadPayload) Outcome { return OutcomeSkipped }
