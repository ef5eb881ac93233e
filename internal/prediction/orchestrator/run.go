package orchestrator

import (
	"context"
	"time"

	"work-advisor/internal/models"
)

// BatchRun owns everything one run mutates. Fields are guarded by the orchestrator mutex.
type BatchRun struct {
	id         uint64
	state      State
	requests   []models.PredictionRequest
	payload    models.FormPayload
	progress   Progress
	results    map[string]models.Outcome
	failures   map[string]string
	err        string
	startedAt  time.Time
	finishedAt time.Time
	lastEnd    time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

func newBatchRun(id uint64, requests []models.PredictionRequest, startedAt time.Time, cancel context.CancelFunc) *BatchRun {
	queue := make([]models.PredictionRequest, len(requests))
	copy(queue, requests)

	return &BatchRun{
		id:        id,
		state:     StateRunning,
		requests:  queue,
		payload:   queue[0].Payload,
		progress:  Progress{Completed: 0, Total: len(queue)},
		results:   make(map[string]models.Outcome),
		failures:  make(map[string]string),
		startedAt: startedAt,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

func (r *BatchRun) ID() uint64 {
	return r.id
}

// Done is closed once the run reaches a terminal state.
func (r *BatchRun) Done() <-chan struct{} {
	return r.done
}

// record applies one outcome. The first failure reason becomes the batch error.
func (r *BatchRun) record(key string, outcome models.Outcome) {
	if outcome.IsSuccess() {
		r.results[key] = outcome
	} else {
		r.failures[key] = outcome.Reason
		if r.err == "" {
			r.err = outcome.Reason
		}
	}
	r.progress.Completed++
}

func (r *BatchRun) view(now time.Time) View {
	end := now
	if r.state.Terminal() {
		end = r.finishedAt
	}

	results := make(map[string]models.Outcome, len(r.results))
	for k, v := range r.results {
		results[k] = v
	}
	failures := make(map[string]string, len(r.failures))
	for k, v := range r.failures {
		failures[k] = v
	}

	return View{
		RunID:     r.id,
		State:     r.state,
		Progress:  r.progress,
		ElapsedMs: end.Sub(r.startedAt).Milliseconds(),
		Payload:   r.payload,
		Results:   results,
		Failures:  failures,
		Error:     r.err,
		StartedAt: r.startedAt,
	}
}
