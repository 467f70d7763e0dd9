package model

import (
	"errors"
	"fmt"
)

var (
	// Lookup errors
	ErrNotFound                 = errors.New("not found")
	ErrRecordNotFound           = fmt.Errorf("record %w", ErrNotFound)
	ErrTrashEntryNotFound       = fmt.Errorf("trash entry %w", ErrNotFound)
	ErrPendingOperationNotFound = fmt.Errorf("pending operation %w", ErrNotFound)

	// Catalog errors
	ErrUnknownTable      = errors.New("unknown table")
	ErrCascadeResolution = errors.New("cascade resolution failed")

	// Collaborator failures
	ErrStorage    = errors.New("object storage failure")
	ErrAuditWrite = errors.New("audit write failed")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)

// LifecycleError reports a lifecycle operation that stopped part-way. Completed lists the
// steps that were committed before Step failed; nothing is rolled back.
type LifecycleError struct {
	Operation string
	Table     string
	RecordID  int64
	Step      string
	Completed []string
	PendingID string
	Err       error
}

func (e *LifecycleError) Error() string {
	if e == nil {
		return ""
	}

	msg := fmt.Sprintf("%s %s#%d failed at step %q", e.Operation, e.Table, e.RecordID, e.Step)
	if len(e.Completed) > 0 {
		msg += fmt.Sprintf(" after %v", e.Completed)
	}
	if e.PendingID != "" {
		msg += fmt.Sprintf(" (pending operation %s)", e.PendingID)
	}

	return msg + ": " + e.Err.Error()
}

func (e *LifecycleError) Unwrap() error {
	return e.Err
}

// Partial reports whether any step committed before the failure.
func (e *LifecycleError) Partial() bool {
	return len(e.Completed) > 0
}
