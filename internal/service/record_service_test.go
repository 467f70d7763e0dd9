package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-parish-admin/internal/catalog"
	"go-parish-admin/internal/event"
	"go-parish-admin/internal/model"
)

func newRecordHarness() (*RecordService, *memRecords, *memAudit, *memPending) {
	records := newMemRecords()
	audit := &memAudit{}
	pending := newMemPending()
	svc := NewRecordService(LifecycleDeps{
		Registry:    catalog.Default(),
		Records:     records,
		Audit:       NewAuditService(audit),
		Pending:     pending,
		Bus:         event.NewBus(),
		StepTimeout: time.Second,
	})
	return svc, records, audit, pending
}

func TestRecordServiceCreate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, records, audit, _ := newRecordHarness()

	created, err := svc.Create(ctx, "priest_tbl", map[string]any{
		"id":         int64(77),
		"first_name": "Jose",
		"last_name":  "Rizal",
	}, clerk)
	require.NoError(t, err)

	assert.NotEqual(t, int64(77), created.ID, "caller ids are ignored")
	assert.True(t, records.has("priest_tbl", created.ID))
	require.Len(t, audit.entries, 1)
	assert.Equal(t, model.AuditCreate, audit.entries[0].Action)
	assert.Nil(t, audit.entries[0].OldData)
	assert.Equal(t, created.Fields, audit.entries[0].NewData)

	_, err = svc.Create(ctx, "priest_tbl", map[string]any{"first_name": "Jose"}, clerk)
	require.ErrorIs(t, err, model.ErrInvalidInput)
	assert.Contains(t, err.Error(), "last_name")

	_, err = svc.Create(ctx, "parishioners", map[string]any{"x": 1}, clerk)
	require.ErrorIs(t, err, model.ErrUnknownTable)
}

func TestRecordServiceUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, records, audit, _ := newRecordHarness()
	records.seed("event_tbl", 3, map[string]any{"title": "Feast", "date": "2026-08-15"})

	updated, err := svc.Update(ctx, "event_tbl", 3, map[string]any{"title": "Fiesta", "id": int64(9)}, clerk)
	require.NoError(t, err)
	assert.Equal(t, "Fiesta", updated.Fields["title"])
	assert.EqualValues(t, 3, updated.ID)

	require.Len(t, audit.entries, 1)
	entry := audit.entries[0]
	assert.Equal(t, model.AuditUpdate, entry.Action)
	assert.Equal(t, "Feast", entry.OldData.(map[string]any)["title"])
	assert.Equal(t, "Fiesta", entry.NewData.(map[string]any)["title"])

	_, err = svc.Update(ctx, "event_tbl", 3, map[string]any{"id": int64(4)}, clerk)
	require.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = svc.Update(ctx, "event_tbl", 3, map[string]any{"title": "  "}, clerk)
	require.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = svc.Update(ctx, "event_tbl", 404, map[string]any{"title": "Nope"}, clerk)
	require.ErrorIs(t, err, model.ErrRecordNotFound)
}

func TestRecordServiceAuditFailureAfterInsert(t *testing.T) {
	t.Parallel()

	svc, records, audit, pending := newRecordHarness()
	audit.appendErr = errors.New("audit table locked")

	_, err := svc.Create(context.Background(), "donation_tbl", map[string]any{"donor_name": "Anon", "amount": 100}, clerk)
	require.ErrorIs(t, err, model.ErrAuditWrite)

	var lifecycleErr *model.LifecycleError
	require.True(t, errors.As(err, &lifecycleErr))
	assert.Equal(t, []string{"insert"}, lifecycleErr.Completed)
	assert.Len(t, pending.ops, 1)
	assert.Len(t, records.rows["donation_tbl"], 1)
}

func TestRecordServiceGetAndList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, records, _, _ := newRecordHarness()
	records.seed("donation_tbl", 1, map[string]any{"donor_name": "A", "amount": 10})
	records.seed("donation_tbl", 2, map[string]any{"donor_name": "B", "amount": 20})

	got, err := svc.Get(ctx, "donation_tbl", 2)
	require.NoError(t, err)
	assert.Equal(t, "B", got.Fields["donor_name"])

	list, err := svc.List(ctx, "donation_tbl", model.RecordQuery{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.EqualValues(t, 2, list[0].ID)

	_, err = svc.List(ctx, "unknown_tbl", model.RecordQuery{})
	require.ErrorIs(t, err, model.ErrUnknownTable)
}
