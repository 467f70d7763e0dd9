package service

import (
	"context"
	"fmt"
	"log/slog"

	"go-parish-admin/internal/catalog"
	"go-parish-admin/internal/event"
	"go-parish-admin/internal/model"
)

const (
	OperationCreate = "create"
	OperationUpdate = "update"
)

// RecordService is plain CRUD over registered tables, audited as CREATE and UPDATE.
// Deletion goes through LifecycleService.
type RecordService struct {
	registry *catalog.Registry
	records  RecordStore
	audit    *AuditService
	bus      event.Bus
	steps    *stepper
}

func NewRecordService(deps LifecycleDeps) *RecordService {
	bus := deps.Bus
	if bus == nil {
		bus = event.Nop{}
	}

	return &RecordService{
		registry: deps.Registry,
		records:  deps.Records,
		audit:    deps.Audit,
		bus:      bus,
		steps:    &stepper{pending: deps.Pending, bus: bus, timeout: deps.StepTimeout},
	}
}

func (s *RecordService) Get(ctx context.Context, table string, id int64) (model.Record, error) {
	if _, err := s.registry.Lookup(table); err != nil {
		return model.Record{}, err
	}
	return s.records.Read(ctx, table, id)
}

func (s *RecordService) List(ctx context.Context, table string, query model.RecordQuery) ([]model.Record, error) {
	if _, err := s.registry.Lookup(table); err != nil {
		return nil, err
	}
	return s.records.Query(ctx, table, query)
}

func (s *RecordService) Create(ctx context.Context, table string, fields map[string]any, actor model.Actor) (model.Record, error) {
	descriptor, err := s.registry.Lookup(table)
	if err != nil {
		return model.Record{}, err
	}

	cleaned := descriptor.Clean(fields)
	if err := descriptor.ValidateRequired(cleaned); err != nil {
		return model.Record{}, err
	}

	r := s.steps.begin(OperationCreate, table, 0, "", actor)

	var id int64
	if err := r.write(ctx, "insert", func(ctx context.Context) error {
		var createErr error
		id, createErr = s.records.Create(ctx, table, cleaned)
		return createErr
	}); err != nil {
		return model.Record{}, err
	}
	r.state.recordID = id

	created, err := s.records.Read(ctx, table, id)
	if err != nil {
		slog.Warn("created row could not be read back", "table", table, "record_id", id, "error", err)
		created = model.Record{Table: table, ID: id, Fields: withID(cleaned, descriptor.PrimaryKey, id)}
	}

	if err := r.write(ctx, "audit", func(ctx context.Context) error {
		_, auditErr := s.audit.Record(ctx, model.AuditCreate, table, id, nil, created.Fields, actor)
		return auditErr
	}); err != nil {
		return model.Record{}, err
	}

	s.bus.Publish(event.New(event.TypeRecordCreated, table, id, actor.Email, created))
	return created, nil
}

func (s *RecordService) Update(ctx context.Context, table string, id int64, patch map[string]any, actor model.Actor) (model.Record, error) {
	descriptor, err := s.registry.Lookup(table)
	if err != nil {
		return model.Record{}, err
	}

	cleaned := descriptor.Clean(patch)
	if len(cleaned) == 0 {
		return model.Record{}, fmt.Errorf("%w: no updatable fields", model.ErrInvalidInput)
	}

	r := s.steps.begin(OperationUpdate, table, id, "", actor)

	var before model.Record
	if err := r.read(ctx, "read", func(ctx context.Context) error {
		var readErr error
		before, readErr = s.records.Read(ctx, table, id)
		return readErr
	}); err != nil {
		return model.Record{}, err
	}

	merged := make(map[string]any, len(before.Fields)+len(cleaned))
	for k, v := range before.Fields {
		merged[k] = v
	}
	for k, v := range cleaned {
		merged[k] = v
	}
	if err := descriptor.ValidateRequired(merged); err != nil {
		return model.Record{}, err
	}

	if err := r.write(ctx, "update", func(ctx context.Context) error {
		return s.records.Update(ctx, table, id, cleaned)
	}); err != nil {
		return model.Record{}, err
	}

	after, err := s.records.Read(ctx, table, id)
	if err != nil {
		slog.Warn("updated row could not be read back", "table", table, "record_id", id, "error", err)
		after = model.Record{Table: table, ID: id, Fields: merged}
	}

	if err := r.write(ctx, "audit", func(ctx context.Context) error {
		_, auditErr := s.audit.Record(ctx, model.AuditUpdate, table, id, before.Fields, after.Fields, actor)
		return auditErr
	}); err != nil {
		return model.Record{}, err
	}

	s.bus.Publish(event.New(event.TypeRecordUpdated, table, id, actor.Email, after))
	return after, nil
}

func withID(fields map[string]any, key string, id int64) map[string]any {
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out[key] = id
	return out
}
