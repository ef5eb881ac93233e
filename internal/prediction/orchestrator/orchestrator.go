// Package orchestrator drains a prediction queue one request at a time and
// exposes live progress of the current run.
package orchestrator

import (
	"context"
	"sync"
	"time"

	apperrors "work-advisor/internal/common/errors"
	"work-advisor/internal/common/logger"
	"work-advisor/internal/common/metrics"
	"work-advisor/internal/common/observability"
	"work-advisor/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Predictor performs one prediction call. Implementations must not panic and
// report every problem as a Failure outcome.
type Predictor interface {
	Predict(ctx context.Context, req models.PredictionRequest) models.Outcome
}

// Clock returns the current time. Tests inject a fake one.
type Clock func() time.Time

type Config struct {
	Clock         Clock
	Observability *observability.Observability
}

type Orchestrator struct {
	predictor Predictor
	clock     Clock
	obs       *observability.Observability
	tracer    trace.Tracer
	logger    logger.Logger

	// emitMu keeps observer notifications in the order state changed.
	emitMu  sync.Mutex
	mu      sync.Mutex
	lastID  uint64
	current *BatchRun

	observers    map[int]func(View)
	nextObserver int
}

func New(predictor Predictor, config *Config, log logger.Logger) *Orchestrator {
	if config == nil {
		config = &Config{}
	}
	clock := config.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Orchestrator{
		predictor: predictor,
		clock:     clock,
		obs:       config.Observability,
		tracer:    config.Observability.Tracer(),
		logger:    logger.ForComponent(log, "batch-orchestrator"),
		observers: make(map[int]func(View)),
	}
}

// Subscribe registers fn to receive a View after every progress update and
// state transition of the current run. Observers must not start or cancel runs.
func (o *Orchestrator) Subscribe(fn func(View)) (unsubscribe func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.nextObserver
	o.nextObserver++
	o.observers[id] = fn

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.observers, id)
	}
}

// View returns a copy of the current run, or an idle view when nothing ran yet.
func (o *Orchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.current == nil {
		return View{
			State:    StateIdle,
			Results:  map[string]models.Outcome{},
			Failures: map[string]string{},
		}
	}
	return o.current.view(o.clock())
}

// RunBatch starts a new run in the background and returns it. Any run still in
// progress is cancelled and its late outcomes are discarded. The run does not
// inherit ctx cancellation; use Cancel or Run for that.
func (o *Orchestrator) RunBatch(ctx context.Context, requests []models.PredictionRequest) (*BatchRun, error) {
	if len(requests) == 0 {
		return nil, apperrors.NewValidationError("prediction queue is empty")
	}

	o.emitMu.Lock()
	defer o.emitMu.Unlock()

	o.mu.Lock()
	if prev := o.current; prev != nil && prev.state == StateRunning {
		o.finishLocked(ctx, prev, StateCancelled)
		o.logger.Info("batch superseded by a newer run", map[string]interface{}{
			"runId":     prev.id,
			"completed": prev.progress.Completed,
			"total":     prev.progress.Total,
		})
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	o.lastID++
	run := newBatchRun(o.lastID, requests, o.clock(), cancel)
	o.current = run
	metrics.BatchesActive.Inc()

	view := run.view(o.clock())
	observers := o.observersLocked()
	o.mu.Unlock()

	o.logger.Info("batch started", map[string]interface{}{
		"runId": run.id,
		"total": len(run.requests),
	})
	notify(observers, view)

	go o.loop(runCtx, run)
	return run, nil
}

// Run starts a batch and waits for it. Cancelling ctx cancels the run.
func (o *Orchestrator) Run(ctx context.Context, requests []models.PredictionRequest) (View, error) {
	run, err := o.RunBatch(ctx, requests)
	if err != nil {
		return View{}, err
	}

	select {
	case <-run.Done():
	case <-ctx.Done():
		o.cancelRun(run)
		<-run.Done()
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	return run.view(o.clock()), nil
}

// Cancel stops the current run if it is still running.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	run := o.current
	o.mu.Unlock()
	if run != nil {
		o.cancelRun(run)
	}
}

func (o *Orchestrator) cancelRun(run *BatchRun) {
	o.emitMu.Lock()
	defer o.emitMu.Unlock()

	o.mu.Lock()
	if run.state != StateRunning {
		o.mu.Unlock()
		return
	}
	o.finishLocked(context.Background(), run, StateCancelled)
	isCurrent := o.current == run
	view := run.view(o.clock())
	observers := o.observersLocked()
	o.mu.Unlock()

	o.logger.Info("batch cancelled", map[string]interface{}{
		"runId":     run.id,
		"completed": view.Progress.Completed,
		"total":     view.Progress.Total,
	})
	if isCurrent {
		notify(observers, view)
	}
}

func (o *Orchestrator) loop(ctx context.Context, run *BatchRun) {
	ctx, span := o.tracer.Start(ctx, "prediction.batch", trace.WithAttributes(
		attribute.Int64("batch.run_id", int64(run.id)),
		attribute.Int("batch.total", len(run.requests)),
	))
	defer span.End()

	for _, req := range run.requests {
		if ctx.Err() != nil {
			break
		}
		if !o.step(ctx, run, req) {
			break
		}
	}

	o.emitMu.Lock()
	defer o.emitMu.Unlock()

	o.mu.Lock()
	if run.state != StateRunning {
		state := run.state
		o.mu.Unlock()
		span.SetAttributes(attribute.String("batch.state", string(state)))
		return
	}
	o.finishLocked(ctx, run, StateCompleted)
	view := run.view(o.clock())
	observers := o.observersLocked()
	o.mu.Unlock()

	span.SetAttributes(
		attribute.String("batch.state", string(StateCompleted)),
		attribute.Int("batch.succeeded", len(view.Results)),
		attribute.Int("batch.failed", len(view.Failures)),
	)
	if view.Error != "" {
		span.SetStatus(codes.Error, view.Error)
	}

	o.logger.Info("batch completed", map[string]interface{}{
		"runId":     run.id,
		"succeeded": len(view.Results),
		"failed":    len(view.Failures),
		"elapsedMs": view.ElapsedMs,
		"error":     view.Error,
	})
	notify(observers, view)
}

// step performs one prediction and records it. It returns false once the run
// is no longer current, in which case the outcome has been discarded.
func (o *Orchestrator) step(ctx context.Context, run *BatchRun, req models.PredictionRequest) bool {
	key := req.Key()
	ctx, span := o.tracer.Start(ctx, "prediction.request", trace.WithAttributes(
		attribute.String("prediction.key", key),
		attribute.String("prediction.region", req.RegionCode),
	))
	defer span.End()

	start := o.clock()
	outcome := o.predictor.Predict(ctx, req)
	end := o.clock()

	o.emitMu.Lock()
	defer o.emitMu.Unlock()

	o.mu.Lock()
	if run.state != StateRunning || o.current != run {
		o.mu.Unlock()
		span.SetAttributes(attribute.Bool("prediction.discarded", true))
		o.logger.Debug("discarding outcome of stale run", map[string]interface{}{
			"runId": run.id,
			"key":   key,
		})
		return false
	}

	outcome.DurationMs = end.Sub(start).Milliseconds()
	if run.lastEnd.IsZero() {
		outcome.RelativeDurationMs = outcome.DurationMs
	} else {
		outcome.RelativeDurationMs = start.Sub(run.lastEnd).Milliseconds()
	}
	run.lastEnd = end
	run.record(key, outcome)

	view := run.view(end)
	observers := o.observersLocked()
	o.mu.Unlock()

	label := metrics.OutcomeSuccess
	if !outcome.IsSuccess() {
		label = metrics.OutcomeFailure
		span.SetStatus(codes.Error, outcome.Reason)
	}
	metrics.PredictionRequests.WithLabelValues(req.RegionCode, label).Inc()
	metrics.PredictionDuration.WithLabelValues(req.RegionCode).Observe(end.Sub(start).Seconds())

	o.logger.Debug("prediction recorded", map[string]interface{}{
		"runId":      run.id,
		"key":        key,
		"outcome":    label,
		"durationMs": outcome.DurationMs,
		"completed":  view.Progress.Completed,
		"total":      view.Progress.Total,
	})

	notify(observers, view)
	return true
}

// finishLocked moves run into a terminal state. Callers hold o.mu.
func (o *Orchestrator) finishLocked(ctx context.Context, run *BatchRun, state State) {
	if run.state != StateRunning {
		return
	}
	run.state = state
	run.finishedAt = o.clock()
	run.cancel()
	close(run.done)

	metrics.BatchesActive.Dec()
	metrics.BatchesTotal.WithLabelValues(string(state)).Inc()
	o.obs.RecordBatchProcessed(ctx, string(state))
	o.obs.RecordBatchDuration(ctx, run.finishedAt.Sub(run.startedAt), string(state))
}

func (o *Orchestrator) observersLocked() []func(View) {
	out := make([]func(View), 0, len(o.observers))
	for _, fn := range o.observers {
		out = append(out, fn)
	}
	return out
}

func notify(observers []func(View), view View) {
	for _, fn := range observers {
		fn(view)
	}
}
