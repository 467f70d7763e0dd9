package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-parish-admin/internal/model"
)

type AuditService struct {
	store AuditStore
}

func NewAuditService(store AuditStore) *AuditService {
	return &AuditService{store: store}
}

// Record appends one entry. Any failure is reported as ErrAuditWrite.
func (s *AuditService) Record(ctx context.Context, action model.AuditAction, table string, recordID int64, oldData any, newData any, actor model.Actor) (model.AuditEntry, error) {
	if !action.Valid() {
		return model.AuditEntry{}, fmt.Errorf("%w: unknown audit action %q", model.ErrAuditWrite, action)
	}

	entry := model.AuditEntry{
		ID:               uuid.NewString(),
		TableName:        table,
		Action:           action,
		RecordID:         recordID,
		OldData:          oldData,
		NewData:          newData,
		PerformedBy:      actor.DisplayName,
		PerformedByEmail: actor.Email,
		Timestamp:        time.Now().UTC().Format(time.RFC3339Nano),
	}

	if err := s.store.Append(ctx, entry); err != nil {
		return model.AuditEntry{}, fmt.Errorf("%w: %s %s#%d: %w", model.ErrAuditWrite, action, table, recordID, err)
	}
	return entry, nil
}

func (s *AuditService) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	query.Action = strings.ToUpper(strings.TrimSpace(query.Action))
	if query.Action != "" && !model.AuditAction(query.Action).Valid() {
		return nil, model.Meta{}, fmt.Errorf("%w: unknown action %q", model.ErrInvalidInput, query.Action)
	}
	if query.From != "" {
		if _, err := time.Parse(time.RFC3339, query.From); err != nil {
			return nil, model.Meta{}, fmt.Errorf("%w: from must be RFC3339", model.ErrInvalidInput)
		}
	}
	if query.To != "" {
		if _, err := time.Parse(time.RFC3339, query.To); err != nil {
			return nil, model.Meta{}, fmt.Errorf("%w: to must be RFC3339", model.ErrInvalidInput)
		}
	}

	return s.store.Query(ctx, query)
}
