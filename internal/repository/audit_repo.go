package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-parish-admin/internal/model"
)

// AuditRepository is append-only: it exposes no update or delete.
type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Append(ctx context.Context, entry model.AuditEntry) error {
	var oldJSON, newJSON []byte
	var err error

	if entry.OldData != nil {
		oldJSON, err = json.Marshal(entry.OldData)
		if err != nil {
			return fmt.Errorf("marshal old data: %w", err)
		}
	}
	if entry.NewData != nil {
		newJSON, err = json.Marshal(entry.NewData)
		if err != nil {
			return fmt.Errorf("marshal new data: %w", err)
		}
	}

	at, err := parseTimestamp(entry.Timestamp)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO audit_entries
		 (id, table_name, action, record_id, old_data, new_data,
		  performed_by, performed_by_email, "timestamp")
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID, entry.TableName, string(entry.Action), entry.RecordID, oldJSON, newJSON,
		entry.PerformedBy, entry.PerformedByEmail, at)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepository) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 50
	}
	if query.Limit > 200 {
		query.Limit = 200
	}

	where := make([]string, 0)
	args := make([]any, 0)
	argIdx := 1

	if table := strings.TrimSpace(query.Table); table != "" {
		where = append(where, fmt.Sprintf("table_name = $%d", argIdx))
		args = append(args, table)
		argIdx++
	}
	if action := strings.TrimSpace(query.Action); action != "" {
		where = append(where, fmt.Sprintf("action = upper($%d)", argIdx))
		args = append(args, action)
		argIdx++
	}
	if query.RecordID > 0 {
		where = append(where, fmt.Sprintf("record_id = $%d", argIdx))
		args = append(args, query.RecordID)
		argIdx++
	}
	if actor := strings.TrimSpace(query.Actor); actor != "" {
		where = append(where, fmt.Sprintf("(lower(performed_by_email) = lower($%d) OR lower(performed_by) LIKE lower($%d))", argIdx, argIdx+1))
		args = append(args, actor, "%"+actor+"%")
		argIdx += 2
	}
	if from := strings.TrimSpace(query.From); from != "" {
		where = append(where, fmt.Sprintf(`"timestamp" >= $%d::timestamptz`, argIdx))
		args = append(args, from)
		argIdx++
	}
	if to := strings.TrimSpace(query.To); to != "" {
		where = append(where, fmt.Sprintf(`"timestamp" <= $%d::timestamptz`, argIdx))
		args = append(args, to)
		argIdx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM audit_entries "+whereClause, args...).Scan(&total); err != nil {
		return nil, model.Meta{}, fmt.Errorf("count audit entries: %w", err)
	}
	meta := model.NewMeta(query.Page, query.Limit, total)

	offset := (query.Page - 1) * query.Limit
	dataQuery := fmt.Sprintf(
		`SELECT id, table_name, action, record_id, old_data, new_data,
		        performed_by, performed_by_email, "timestamp"
		 FROM audit_entries %s
		 ORDER BY "timestamp" DESC, id
		 LIMIT $%d OFFSET $%d`, whereClause, argIdx, argIdx+1)
	args = append(args, query.Limit, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, model.Meta{}, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.AuditEntry, 0)
	for rows.Next() {
		var e model.AuditEntry
		var action string
		var at time.Time
		var oldJSON, newJSON []byte

		if err := rows.Scan(
			&e.ID, &e.TableName, &action, &e.RecordID, &oldJSON, &newJSON,
			&e.PerformedBy, &e.PerformedByEmail, &at,
		); err != nil {
			return nil, model.Meta{}, fmt.Errorf("scan audit entry: %w", err)
		}

		e.Action = model.AuditAction(action)
		e.Timestamp = at.UTC().Format(time.RFC3339Nano)
		e.OldData = decodeJSON(oldJSON)
		e.NewData = decodeJSON(newJSON)

		entries = append(entries, e)
	}

	return entries, meta, rows.Err()
}

func decodeJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}
	return value
}
