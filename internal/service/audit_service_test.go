package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-parish-admin/internal/model"
)

func TestAuditServiceRecord(t *testing.T) {
	t.Parallel()

	store := &memAudit{}
	svc := NewAuditService(store)

	entry, err := svc.Record(context.Background(), model.AuditDelete, "priest_tbl", 4,
		map[string]any{"first_name": "Jose"}, nil, clerk)
	require.NoError(t, err)

	assert.NotEmpty(t, entry.ID)
	assert.NotEmpty(t, entry.Timestamp)
	assert.Equal(t, clerk.DisplayName, entry.PerformedBy)
	assert.Equal(t, clerk.Email, entry.PerformedByEmail)
	require.Len(t, store.entries, 1)
	assert.Equal(t, entry, store.entries[0])
}

func TestAuditServiceRecordFailures(t *testing.T) {
	t.Parallel()

	t.Run("store failure", func(t *testing.T) {
		svc := NewAuditService(&memAudit{appendErr: errors.New("unique violation")})
		_, err := svc.Record(context.Background(), model.AuditRestore, "event_tbl", 1, nil, nil, clerk)
		require.ErrorIs(t, err, model.ErrAuditWrite)
		assert.Contains(t, err.Error(), "unique violation")
	})

	t.Run("unknown action", func(t *testing.T) {
		svc := NewAuditService(&memAudit{})
		_, err := svc.Record(context.Background(), model.AuditAction("ARCHIVE"), "event_tbl", 1, nil, nil, clerk)
		require.ErrorIs(t, err, model.ErrAuditWrite)
	})
}

func TestAuditServiceQueryValidation(t *testing.T) {
	t.Parallel()

	store := &memAudit{}
	svc := NewAuditService(store)
	ctx := context.Background()

	_, err := svc.Record(ctx, model.AuditCreate, "event_tbl", 1, nil, map[string]any{"title": "Feast"}, clerk)
	require.NoError(t, err)
	_, err = svc.Record(ctx, model.AuditDelete, "event_tbl", 1, map[string]any{"title": "Feast"}, nil, clerk)
	require.NoError(t, err)

	entries, _, err := svc.Query(ctx, model.AuditQuery{Action: " delete "})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.AuditDelete, entries[0].Action)

	_, _, err = svc.Query(ctx, model.AuditQuery{Action: "ARCHIVE"})
	require.ErrorIs(t, err, model.ErrInvalidInput)

	_, _, err = svc.Query(ctx, model.AuditQuery{From: "yesterday"})
	require.ErrorIs(t, err, model.ErrInvalidInput)

	_, _, err = svc.Query(ctx, model.AuditQuery{From: "2026-01-01T00:00:00Z", To: "2026-12-31T23:59:59Z"})
	require.NoError(t, err)
}
