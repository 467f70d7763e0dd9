package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go-parish-admin/internal/model"
)

type memRecords struct {
	mu     sync.Mutex
	rows   map[string]map[int64]map[string]any
	nextID map[string]int64

	createErr error
	deleteErr error
	creates   []string
}

func newMemRecords() *memRecords {
	return &memRecords{rows: map[string]map[int64]map[string]any{}, nextID: map[string]int64{}}
}

func (m *memRecords) seed(table string, id int64, fields map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row := copyFields(fields)
	row["id"] = id
	if m.rows[table] == nil {
		m.rows[table] = map[int64]map[string]any{}
	}
	m.rows[table][id] = row
	if m.nextID[table] <= id {
		m.nextID[table] = id + 1
	}
}

func (m *memRecords) has(table string, id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[table][id]
	return ok
}

func (m *memRecords) Create(_ context.Context, table string, fields map[string]any) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return 0, m.createErr
	}
	if m.nextID[table] == 0 {
		m.nextID[table] = 1
	}
	id := m.nextID[table]
	m.nextID[table]++

	row := copyFields(fields)
	row["id"] = id
	if m.rows[table] == nil {
		m.rows[table] = map[int64]map[string]any{}
	}
	m.rows[table][id] = row
	m.creates = append(m.creates, table)
	return id, nil
}

func (m *memRecords) Read(_ context.Context, table string, id int64) (model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[table][id]
	if !ok {
		return model.Record{}, fmt.Errorf("%w: %s#%d", model.ErrRecordNotFound, table, id)
	}
	return model.Record{Table: table, ID: id, Fields: copyFields(row)}, nil
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

func (m *memRecords) Query(_ context.Context, table string, _ model.RecordQuery) ([]model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Record, 0, len(m.rows[table]))
	for id, row := range m.rows[table] {
		out = append(out, model.Record{Table: table, ID: id, Fields: copyFields(row)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type memTrash struct {
	mu      sync.Mutex
	entries []model.TrashEntry

	createErr error
	deleteErr error
	// failDeleteID limits deleteErr to one entry; empty fails every delete.
	failDeleteID string
}

func (m *memTrash) Create(_ context.Context, entry model.TrashEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}
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
		if e := m.entries[i]; e.OriginalTable == table && e.RecordID == recordID {
			return e, nil
		}
	}
	return model.TrashEntry{}, fmt.Errorf("%w: %s#%d", model.ErrTrashEntryNotFound, table, recordID)
}

func (m *memTrash) List(_ context.Context, table string) ([]model.TrashEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.TrashEntry, 0, len(m.entries))
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

	if m.deleteErr != nil && (m.failDeleteID == "" || m.failDeleteID == id) {
		return m.deleteErr
	}
	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", model.ErrTrashEntryNotFound, id)
}

func (m *memTrash) forRecord(table string, recordID int64) []model.TrashEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.TrashEntry, 0)
	for _, e := range m.entries {
		if e.OriginalTable == table && e.RecordID == recordID {
			out = append(out, e)
		}
	}
	return out
}

type memAudit struct {
	mu        sync.Mutex
	entries   []model.AuditEntry
	appendErr error
}

func (m *memAudit) Append(_ context.Context, entry model.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memAudit) Query(_ context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.AuditEntry, 0)
	for _, e := range m.entries {
		if query.Table != "" && e.TableName != query.Table {
			continue
		}
		if query.Action != "" && string(e.Action) != query.Action {
			continue
		}
		out = append(out, e)
	}
	return out, model.NewMeta(1, 50, len(out)), nil
}

func (m *memAudit) actions() []model.AuditAction {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.AuditAction, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

type memPending struct {
	mu  sync.Mutex
	ops map[string]model.PendingOperation

	createErr error
}

func newMemPending() *memPending {
	return &memPending{ops: map[string]model.PendingOperation{}}
}

func (m *memPending) Create(_ context.Context, op model.PendingOperation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}
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

	out := make([]model.PendingOperation, 0, len(m.ops))
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
	if !ok || op.ResolvedAt != "" {
		return fmt.Errorf("%w: %s", model.ErrPendingOperationNotFound, id)
	}
	op.ResolvedAt = "2026-01-01T00:00:00Z"
	op.ResolvedBy = &actor
	m.ops[id] = op
	return nil
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
