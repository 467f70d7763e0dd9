package handler_test

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go-parish-admin/internal/model"
)

type memRecords struct {
	mu        sync.Mutex
	rows      map[string]map[int64]map[string]any
	next      int64
	deleteErr error
}

func newMemRecords() *memRecords {
	return &memRecords{rows: map[string]map[int64]map[string]any{}, next: 1}
}

func (m *memRecords) seed(table string, id int64, fields map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row := map[string]any{"id": id}
	for k, v := range fields {
		row[k] = v
	}
	if m.rows[table] == nil {
		m.rows[table] = map[int64]map[string]any{}
	}
	m.rows[table][id] = row
	if id >= m.next {
		m.next = id + 1
	}
}

func (m *memRecords) Create(_ context.Context, table string, fields map[string]any) (int64, error) {
	m.mu.Lock()
	id := m.next
	m.mu.Unlock()

	m.seed(table, id, fields)
	return id, nil
}

func (m *memRecords) Read(_ context.Context, table string, id int64) (model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[table][id]
	if !ok {
		return model.Record{}, fmt.Errorf("%w: %s#%d", model.ErrRecordNotFound, table, id)
	}
	fields := make(map[string]any, len(row))
	for k, v := range row {
		fields[k] = v
	}
	return model.Record{Table: table, ID: id, Fields: fields}, nil
}

func (m *memRecords) Update(_ context.Context, table string, id int64, patch map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[table][id]
	if !ok {
		return fmt.Errorf("%w: %s#%d", model.ErrRecordNotFound, table, id)
	}
	for k, v := range patch {
		row[k] = v
	}
	return nil
}

func (m *memRecords) Delete(_ context.Context, table string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.rows[table][id]; !ok {
		return fmt.Errorf("%w: %s#%d", model.ErrRecordNotFound, table, id)
	}
	delete(m.rows[table], id)
	return nil
}

func (m *memRecords) Query(_ context.Context, table string, q model.RecordQuery) ([]model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Record, 0)
	for id, row := range m.rows[table] {
		match := true
		for k, v := range q.Filter {
			if fmt.Sprint(row[k]) != fmt.Sprint(v) {
				match = false
			}
		}
		if match {
			out = append(out, model.Record{Table: table, ID: id, Fields: row})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type memTrash struct {
	mu      sync.Mutex
	entries []model.TrashEntry
}

func (m *memTrash) Create(_ context.Context, entry model.TrashEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memTrash) FindByID(_ context.Context, id string) (model.TrashEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return model.TrashEntry{}, fmt.Errorf("%w: %s", model.ErrTrashEntryNotFound, id)
}

func (m *memTrash) FindLatestByRecord(_ context.Context, table string, recordID int64) (model.TrashEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].OriginalTable == table && m.entries[i].RecordID == recordID {
			return m.entries[i], nil
		}
	}
	return model.TrashEntry{}, fmt.Errorf("%w: %s#%d", model.ErrTrashEntryNotFound, table, recordID)
}

func (m *memTrash) List(_ context.Context, table string) ([]model.TrashEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.TrashEntry, 0)
	for i := len(m.entries) - 1; i >= 0; i-- {
		if table == "" || m.entries[i].OriginalTable == table {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

func (m *memTrash) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", model.ErrTrashEntryNotFound, id)
}

type memAudit struct {
	mu      sync.Mutex
	entries []model.AuditEntry
}

func (m *memAudit) Append(_ context.Context, entry model.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memAudit) Query(_ context.Context, q model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.AuditEntry, 0)
	for _, e := range m.entries {
		if (q.Table == "" || e.TableName == q.Table) && (q.Action == "" || string(e.Action) == q.Action) {
			out = append(out, e)
		}
	}
	return out, model.NewMeta(q.Page, q.Limit, len(out)), nil
}

type memPending struct {
	mu  sync.Mutex
	ops map[string]model.PendingOperation
}

func (m *memPending) Create(_ context.Context, op model.PendingOperation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops[op.ID] = op
	return nil
}

func (m *memPending) FindByID(_ context.Context, id string) (model.PendingOperation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	op, ok := m.ops[id]
	if !ok {
		return model.PendingOperation{}, fmt.Errorf("%w: %s", model.ErrPendingOperationNotFound, id)
	}
	return op, nil
}

func (m *memPending) List(_ context.Context, includeResolved bool) ([]model.PendingOperation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.PendingOperation, 0)
	for _, op := range m.ops {
		if includeResolved || op.ResolvedAt == "" {
			out = append(out, op)
		}
	}
	return out, nil
}

func (m *memPending) MarkResolved(_ context.Context, id string, actor model.Actor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	op, ok := m.ops[id]
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrPendingOperationNotFound, id)
	}
	op.ResolvedAt = "2026-01-01T00:00:00Z"
	op.ResolvedBy = &actor
	m.ops[id] = op
	return nil
}
