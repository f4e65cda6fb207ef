package coordinator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jcmexdev/course-marketplace/internal/coordinator/paymentlog"
)

// Step represents a single unit of work in the Saga.
// Each step must have a compensating action to undo its effects.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// Orchestrator runs Steps in order and records every transition in the
// payment log. A nil log disables persistence.
type Orchestrator struct {
	run   paymentlog.Run
	steps []Step
	log   paymentlog.Repository
	now   func() time.Time
}

func NewOrchestrator(run paymentlog.Run, steps []Step, log paymentlog.Repository) *Orchestrator {
	return &Orchestrator{run: run, steps: steps, log: log, now: time.Now}
}

// WithClock overrides the timestamp source for log entries.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// Start runs the steps sequentially. If a step fails, every previously
// successful step is compensated in reverse order and the step error is
// returned unchanged so callers can match it with errors.Is.
func (o *Orchestrator) Start(ctx context.Context, payload any) error {
	o.record(ctx, paymentlog.StatusStarted, "", encodePayload(payload), nil)

	var done []Step
	for _, step := range o.steps {
		slog.DebugContext(ctx, "executing step", "saga_id", o.run.SagaID(), "step", step.Name())
		if err := step.Execute(ctx); err != nil {
			slog.WarnContext(ctx, "step failed, starting rollback", "saga_id", o.run.SagaID(), "step", step.Name(), "error", err)
			errs := []string{fmt.Sprintf("step %s failed: %v", step.Name(), err)}
			if len(done) > 0 {
				o.record(ctx, paymentlog.StatusCompensating, step.Name(), "", errs)
				errs = append(errs, o.rollback(ctx, done)...)
			}
			o.record(ctx, paymentlog.StatusFailed, step.Name(), "", errs)
			return err
		}
		done = append(done, step)
		o.record(ctx, paymentlog.StatusStepDone, step.Name(), "", nil)
	}

	o.record(ctx, paymentlog.StatusCompleted, "", "", nil)
	slog.InfoContext(ctx, "saga completed", "saga_id", o.run.SagaID())
	return nil
}

func (o *Orchestrator) rollback(ctx context.Context, steps []Step) []string {
	var errs []string
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		if err := step.Compensate(ctx); err != nil {
			slog.ErrorContext(ctx, "CRITICAL: failed to compensate step", "saga_id", o.run.SagaID(), "step", step.Name(), "error", err)
			errs = append(errs, fmt.Sprintf("compensation of %s failed: %v", step.Name(), err))
		}
	}
	return errs
}

// record never fails the saga; a lost log entry is logged and skipped.
func (o *Orchestrator) record(ctx context.Context, status paymentlog.Status, step, payload string, errs []string) {
	if o.log == nil {
		return
	}
	entry := paymentlog.NewEntry(ctx, o.run, status, step, payload, errs, o.now())
	if err := o.log.Save(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to write payment log", "saga_id", o.run.SagaID(), "status", status, "error", err)
	}
}

func encodePayload(payload any) string {
	if payload == nil {
		return ""
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(b)
}
