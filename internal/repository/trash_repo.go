package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-parish-admin/internal/model"
)

const trashColumns = `id, original_table, record_id, record_data,
	deleted_by, deleted_by_email, deleted_at, deletion_reason`

type TrashRepository struct {
	pool *pgxpool.Pool
}

func NewTrashRepository(pool *pgxpool.Pool) *TrashRepository {
	return &TrashRepository{pool: pool}
}

func (r *TrashRepository) Create(ctx context.Context, entry model.TrashEntry) error {
	deletedAt, err := parseTimestamp(entry.DeletedAt)
	if err != nil {
		return fmt.Errorf("create trash entry: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO trash_entries (`+trashColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.OriginalTable, entry.RecordID, entry.RecordData,
		entry.DeletedBy, entry.DeletedByEmail, deletedAt, nullableText(entry.DeletionReason))
	if err != nil {
		return fmt.Errorf("create trash entry: %w", err)
	}
	return nil
}

func (r *TrashRepository) FindByID(ctx context.Context, id string) (model.TrashEntry, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+trashColumns+` FROM trash_entries WHERE id = $1`, id)

	entry, err := scanTrashEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.TrashEntry{}, fmt.Errorf("%w: %s", model.ErrTrashEntryNotFound, id)
	}
	if err != nil {
		return model.TrashEntry{}, fmt.Errorf("find trash entry by id: %w", err)
	}
	return entry, nil
}

// FindLatestByRecord returns the most recent entry staged for table#recordID.
func (r *TrashRepository) FindLatestByRecord(ctx context.Context, table string, recordID int64) (model.TrashEntry, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+trashColumns+`
		 FROM trash_entries
		 WHERE original_table = $1 AND record_id = $2
		 ORDER BY deleted_at DESC LIMIT 1`, table, recordID)

	entry, err := scanTrashEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.TrashEntry{}, fmt.Errorf("%w: %s#%d", model.ErrTrashEntryNotFound, table, recordID)
	}
	if err != nil {
		return model.TrashEntry{}, fmt.Errorf("find trash entry by record: %w", err)
	}
	return entry, nil
}

// List returns staged entries newest first. An empty table lists every table.
func (r *TrashRepository) List(ctx context.Context, table string) ([]model.TrashEntry, error) {
	query := `SELECT ` + trashColumns + ` FROM trash_entries`
	args := make([]any, 0, 1)
	if trimmed := strings.TrimSpace(table); trimmed != "" {
		query += ` WHERE original_table = $1`
		args = append(args, trimmed)
	}
	query += ` ORDER BY deleted_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list trash: %w", err)
	}
	defer rows.Close()

	entries := make([]model.TrashEntry, 0)
	for rows.Next() {
		entry, err := scanTrashEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trash entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *TrashRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM trash_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete trash entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", model.ErrTrashEntryNotFound, id)
	}
	return nil
}

func scanTrashEntry(row pgx.Row) (model.TrashEntry, error) {
	var entry model.TrashEntry
	var deletedAt time.Time
	var reason *string

	if err := row.Scan(
		&entry.ID, &entry.OriginalTable, &entry.RecordID, &entry.RecordData,
		&entry.DeletedBy, &entry.DeletedByEmail, &deletedAt, &reason,
	); err != nil {
		return model.TrashEntry{}, err
	}

	entry.DeletedAt = deletedAt.UTC().Format(time.RFC3339Nano)
	if reason != nil {
		entry.DeletionReason = *reason
	}
	return entry, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Now().UTC(), nil
	}
	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", raw, err)
	}
	return at.UTC(), nil
}

func nullableText(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
