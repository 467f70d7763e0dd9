package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"go-parish-admin/internal/event"
	"go-parish-admin/internal/model"
	"go-parish-admin/internal/tracing"
)

const markerWriteTimeout = 5 * time.Second

// stepper runs multi-step mutations. Each step gets its own deadline; once a step has
// committed, a later failure is persisted as a pending operation instead of rolled back.
type stepper struct {
	pending PendingStore
	bus     event.Bus
	timeout time.Duration
}

type opState struct {
	operation string
	table     string
	recordID  int64
	trashID   string
	actor     model.Actor
	completed []string
}

type run struct {
	s      *stepper
	state  *opState
	prefix string
}

func (s *stepper) begin(operation string, table string, recordID int64, trashID string, actor model.Actor) run {
	return run{s: s, state: &opState{
		operation: operation,
		table:     table,
		recordID:  recordID,
		trashID:   trashID,
		actor:     actor,
		completed: make([]string, 0, 4),
	}}
}

// scoped prefixes step names for work done on behalf of a cascaded record.
func (r run) scoped(name string) run {
	return run{s: r.s, state: r.state, prefix: r.prefix + name + ":"}
}

// read runs a step that changes nothing.
func (r run) read(ctx context.Context, name string, fn func(context.Context) error) error {
	return r.exec(ctx, name, false, fn)
}

// write runs a step whose success is committed and will not be undone.
func (r run) write(ctx context.Context, name string, fn func(context.Context) error) error {
	return r.exec(ctx, name, true, fn)
}

func (r run) exec(ctx context.Context, name string, commits bool, fn func(context.Context) error) error {
	step := r.prefix + name

	stepCtx, cancel := r.stepContext(ctx)
	defer cancel()

	stepCtx, span := tracing.Tracer().Start(stepCtx, "lifecycle.step")
	span.SetAttributes(attribute.String("step", step), attribute.Bool("commits", commits))
	defer span.End()

	// A nil return means the store committed, even when it answered after the deadline.
	err := fn(stepCtx)
	if err == nil && errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
		slog.Warn("lifecycle step finished after its deadline",
			"operation", r.state.operation, "table", r.state.table, "record_id", r.state.recordID,
			"step", step, "timeout", r.s.timeout)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return r.fail(ctx, step, err)
	}

	if commits {
		r.state.completed = append(r.state.completed, step)
	}
	return nil
}

func (r run) stepContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.s.timeout)
}

// setTrashID records the trash entry the operation produced, for the pending marker.
func (r run) setTrashID(id string) {
	if r.state.trashID == "" {
		r.state.trashID = id
	}
}

func (r run) fail(ctx context.Context, step string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("step %s timed out after %s: %w", step, r.s.timeout, err)
	}

	if len(r.state.completed) == 0 {
		return err
	}

	lifecycleErr := &model.LifecycleError{
		Operation: r.state.operation,
		Table:     r.state.table,
		RecordID:  r.state.recordID,
		Step:      step,
		Completed: append([]string(nil), r.state.completed...),
		Err:       err,
	}

	marker := model.PendingOperation{
		ID:             uuid.NewString(),
		Operation:      r.state.operation,
		OriginalTable:  r.state.table,
		RecordID:       r.state.recordID,
		TrashEntryID:   r.state.trashID,
		CompletedSteps: lifecycleErr.Completed,
		FailedStep:     step,
		Error:          err.Error(),
		Actor:          r.state.actor,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339Nano),
	}

	markerCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), markerWriteTimeout)
	defer cancel()

	if markerErr := r.s.pending.Create(markerCtx, marker); markerErr != nil {
		lifecycleErr.Err = errors.Join(err, fmt.Errorf("record pending operation: %w", markerErr))
		slog.Error("lifecycle operation left partial state without a marker",
			"operation", marker.Operation, "table", marker.OriginalTable, "record_id", marker.RecordID,
			"failed_step", step, "completed", marker.CompletedSteps, "error", lifecycleErr.Err)
		return lifecycleErr
	}

	lifecycleErr.PendingID = marker.ID
	slog.Warn("lifecycle operation left pending",
		"pending_id", marker.ID, "operation", marker.Operation, "table", marker.OriginalTable,
		"record_id", marker.RecordID, "failed_step", step, "completed", marker.CompletedSteps, "error", err)

	r.s.bus.Publish(event.New(event.TypePendingOpened, marker.OriginalTable, marker.RecordID, marker.Actor.Email, marker))
	return lifecycleErr
}
