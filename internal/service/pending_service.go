package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"go-parish-admin/internal/model"
)

// PendingService lets operators review lifecycle operations that stopped part-way and mark
// them resolved once the leftover state has been dealt with.
type PendingService struct {
	store PendingStore
}

func NewPendingService(store PendingStore) *PendingService {
	return &PendingService{store: store}
}

func (s *PendingService) List(ctx context.Context, includeResolved bool) ([]model.PendingOperation, error) {
	return s.store.List(ctx, includeResolved)
}

func (s *PendingService) Get(ctx context.Context, id string) (model.PendingOperation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.PendingOperation{}, fmt.Errorf("%w: %s", model.ErrPendingOperationNotFound, id)
	}
	return s.store.FindByID(ctx, id)
}

func (s *PendingService) Resolve(ctx context.Context, id string, actor model.Actor) (model.PendingOperation, error) {
	op, err := s.Get(ctx, id)
	if err != nil {
		return model.PendingOperation{}, err
	}
	if op.ResolvedAt != "" {
		return op, nil
	}

	if err := s.store.MarkResolved(ctx, id, actor); err != nil {
		return model.PendingOperation{}, err
	}

	slog.Info("pending operation resolved", "pending_id", id, "operation", op.Operation,
		"table", op.OriginalTable, "record_id", op.RecordID, "actor", actor.Email)

	return s.store.FindByID(ctx, id)
}
