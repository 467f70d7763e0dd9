package service

import (
	"context"

	"go-parish-admin/internal/model"
)

type RecordStore interface {
	Create(ctx context.Context, table string, fields map[string]any) (int64, error)
	Read(ctx context.Context, table string, id int64) (model.Record, error)
	Update(ctx context.Context, table string, id int64, patch map[string]any) error
	Delete(ctx context.Context, table string, id int64) error
	Query(ctx context.Context, table string, query model.RecordQuery) ([]model.Record, error)
}

type TrashStore interface {
	Create(ctx context.Context, entry model.TrashEntry) error
	FindByID(ctx context.Context, id string) (model.TrashEntry, error)
	FindLatestByRecord(ctx context.Context, table string, recordID int64) (model.TrashEntry, error)
	List(ctx context.Context, table string) ([]model.TrashEntry, error)
	Delete(ctx context.Context, id string) error
}

type AuditStore interface {
	Append(ctx context.Context, entry model.AuditEntry) error
	Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error)
}

type PendingStore interface {
	Create(ctx context.Context, op model.PendingOperation) error
	FindByID(ctx context.Context, id string) (model.PendingOperation, error)
	List(ctx context.Context, includeResolved bool) ([]model.PendingOperation, error)
	MarkResolved(ctx context.Context, id string, actor model.Actor) error
}
