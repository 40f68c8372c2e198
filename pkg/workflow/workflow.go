package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tickrflow/pkg/logger"
)

// Result is the terminal envelope returned by every flow invocation.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Store persists step outputs keyed by (run id, step name) so a resumed run
// skips steps that already completed.
type Store interface {
	Get(ctx context.Context, runID, step string) ([]byte, bool, error)
	Set(ctx context.Context, runID, step string, output []byte) error
}

// RetryPolicy controls per-step retries with exponential backoff.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	BackoffFactor   float64
}

// DefaultRetryPolicy retries a failed step three times, starting at one
// second and doubling.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		InitialInterval: time.Second,
		BackoffFactor:   2.0,
	}
}

// Engine executes flows as sequences of named, checkpointed steps.
type Engine struct {
	store  Store
	policy RetryPolicy
	logger *logger.Logger
}

// NewEngine creates a workflow engine backed by the given checkpoint store.
func NewEngine(store Store, policy RetryPolicy, log *logger.Logger) *Engine {
	return &Engine{
		store:  store,
		policy: policy,
		logger: log,
	}
}

// Run identifies one execution of a flow. Steps executed against the same
// run id reuse checkpointed outputs.
type Run struct {
	id     string
	engine *Engine
}

// NewRun starts (or resumes) a run with the given id.
func (e *Engine) NewRun(id string) *Run {
	return &Run{id: id, engine: e}
}

// ID returns the run identifier.
func (r *Run) ID() string {
	return r.id
}

// Step executes fn once per run: if a checkpointed output exists for the
// step name it is returned without re-executing, otherwise fn runs under the
// engine's retry policy and its output is checkpointed on success.
func Step[T any](ctx context.Context, r *Run, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	e := r.engine

	cached, found, err := e.store.Get(ctx, r.id, name)
	if err != nil {
		e.logger.Warn("Failed to read step checkpoint",
			logger.ErrorField(err),
			logger.StringField("run_id", r.id),
			logger.StringField("step", name),
		)
	} else if found {
		var out T
		if err := json.Unmarshal(cached, &out); err == nil {
			e.logger.Debug("Step output restored from checkpoint",
				logger.StringField("run_id", r.id),
				logger.StringField("step", name),
			)
			return out, nil
		}
		e.logger.Warn("Discarding unreadable step checkpoint",
			logger.StringField("run_id", r.id),
			logger.StringField("step", name),
		)
	}

	interval := e.policy.InitialInterval
	var lastErr error
	for attempt := 0; attempt <= e.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(interval):
			}
			interval = time.Duration(float64(interval) * e.policy.BackoffFactor)
			e.logger.Info("Retrying step",
				logger.StringField("run_id", r.id),
				logger.StringField("step", name),
				logger.IntField("attempt", attempt),
			)
		}

		out, err := fn(ctx)
		if err != nil {
			lastErr = err
			e.logger.Error("Step failed",
				logger.ErrorField(err),
				logger.StringField("run_id", r.id),
				logger.StringField("step", name),
				logger.IntField("attempt", attempt),
			)
			continue
		}

		if encoded, err := json.Marshal(out); err == nil {
			if err := e.store.Set(ctx, r.id, name, encoded); err != nil {
				e.logger.Warn("Failed to checkpoint step output",
					logger.ErrorField(err),
					logger.StringField("run_id", r.id),
					logger.StringField("step", name),
				)
			}
		}
		return out, nil
	}

	return zero, fmt.Errorf("step %s failed after %d attempts: %w", name, e.policy.MaxRetries+1, lastErr)
}
