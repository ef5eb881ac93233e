package orchestrator

import (
	"time"

	"work-advisor/internal/models"
)

// State of a batch run. Completed and Cancelled are terminal.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
)

func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled
}

type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// View is a read-only copy of the current run, safe to hand to observers.
type View struct {
	RunID     uint64                    `json:"runId"`
	State     State                     `json:"state"`
	Progress  Progress                  `json:"progress"`
	ElapsedMs int64                     `json:"elapsedMs"`
	Payload   models.FormPayload        `json:"form"`
	Results   map[string]models.Outcome `json:"results"`
	Failures  map[string]string         `json:"failures"`
	Error     string                    `json:"error,omitempty"`
	StartedAt time.Time                 `json:"startedAt,omitempty"`
}

// Outcomes merges successes and failures into one map keyed by identity key.
func (v View) Outcomes() map[string]models.Outcome {
	out := make(map[string]models.Outcome, len(v.Results)+len(v.Failures))
	for k, o := range v.Results {
		out[k] = o
	}
	for k, reason := range v.Failures {
		out[k] = models.Failure(reason)
	}
	return out
}
