package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-parish-admin/internal/model"
)

const pendingColumns = `id, operation, original_table, record_id, trash_entry_id, completed_steps,
	failed_step, error_text, actor_name, actor_email, created_at,
	resolved_at, resolved_by_name, resolved_by_email`

type PendingRepository struct {
	pool *pgxpool.Pool
}

func NewPendingRepository(pool *pgxpool.Pool) *PendingRepository {
	return &PendingRepository{pool: pool}
}

func (r *PendingRepository) Create(ctx context.Context, op model.PendingOperation) error {
	steps, err := json.Marshal(op.CompletedSteps)
	if err != nil {
		return fmt.Errorf("marshal completed steps: %w", err)
	}

	createdAt, err := parseTimestamp(op.CreatedAt)
	if err != nil {
		return fmt.Errorf("create pending operation: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO pending_operations
		 (id, operation, original_table, record_id, trash_entry_id, completed_steps,
		  failed_step, error_text, actor_name, actor_email, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		op.ID, op.Operation, op.OriginalTable, op.RecordID, op.TrashEntryID, steps,
		op.FailedStep, op.Error, op.Actor.DisplayName, op.Actor.Email, createdAt)
	if err != nil {
		return fmt.Errorf("create pending operation: %w", err)
	}
	return nil
}

func (r *PendingRepository) FindByID(ctx context.Context, id string) (model.PendingOperation, error) {
	op, err := scanPending(r.pool.QueryRow(ctx,
		`SELECT `+pendingColumns+` FROM pending_operations WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.PendingOperation{}, fmt.Errorf("%w: %s", model.ErrPendingOperationNotFound, id)
	}
	if err != nil {
		return model.PendingOperation{}, fmt.Errorf("find pending operation: %w", err)
	}
	return op, nil
}

func (r *PendingRepository) List(ctx context.Context, includeResolved bool) ([]model.PendingOperation, error) {
	query := `SELECT ` + pendingColumns + ` FROM pending_operations`
	if !includeResolved {
		query += ` WHERE resolved_at IS NULL`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pending operations: %w", err)
	}
	defer rows.Close()

	ops := make([]model.PendingOperation, 0)
	for rows.Next() {
		op, err := scanPending(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending operation: %w", err)
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

func (r *PendingRepository) MarkResolved(ctx context.Context, id string, actor model.Actor) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE pending_operations
		 SET resolved_at = $2, resolved_by_name = $3, resolved_by_email = $4
		 WHERE id = $1 AND resolved_at IS NULL`,
		id, time.Now().UTC(), actor.DisplayName, actor.Email)
	if err != nil {
		return fmt.Errorf("resolve pending operation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", model.ErrPendingOperationNotFound, id)
	}
	return nil
}

func scanPending(row pgx.Row) (model.PendingOperation, error) {
	var op model.PendingOperation
	var steps []byte
	var createdAt time.Time
	var resolvedAt *time.Time
	var resolvedName, resolvedEmail string

	if err := row.Scan(
		&op.ID, &op.Operation, &op.OriginalTable, &op.RecordID, &op.TrashEntryID, &steps,
		&op.FailedStep, &op.Error, &op.Actor.DisplayName, &op.Actor.Email, &createdAt,
		&resolvedAt, &resolvedName, &resolvedEmail,
	); err != nil {
		return model.PendingOperation{}, err
	}

	op.CompletedSteps = make([]string, 0)
	if len(steps) > 0 {
		if err := json.Unmarshal(steps, &op.CompletedSteps); err != nil {
			return model.PendingOperation{}, fmt.Errorf("decode completed steps: %w", err)
		}
	}

	op.CreatedAt = createdAt.UTC().Format(time.RFC3339Nano)
	if resolvedAt != nil {
		op.ResolvedAt = resolvedAt.UTC().Format(time.RFC3339Nano)
		op.ResolvedBy = &model.Actor{DisplayName: resolvedName, Email: resolvedEmail}
	}
	return op, nil
}
