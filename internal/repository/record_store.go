package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"go-parish-admin/internal/catalog"
	"go-parish-admin/internal/model"
)

const defaultQueryLimit = 100

// RecordStore reads and writes rows of the catalogued administrative tables. Table names come
// from the request, so every call is checked against the catalog before SQL is built.
type RecordStore struct {
	db       *goqu.Database
	registry *catalog.Registry
}

func NewRecordStore(db *sql.DB, registry *catalog.Registry) *RecordStore {
	return &RecordStore{db: goqu.New("postgres", db), registry: registry}
}

func (r *RecordStore) Create(ctx context.Context, table string, fields map[string]any) (int64, error) {
	d, err := r.registry.Lookup(table)
	if err != nil {
		return 0, err
	}

	row := toRow(fields)
	delete(row, d.PrimaryKey)
	if len(row) == 0 {
		return 0, fmt.Errorf("%w: no fields to insert into %s", model.ErrInvalidInput, d.Name)
	}

	var id int64
	found, err := r.db.Insert(goqu.T(d.Name)).
		Prepared(true).
		Rows(goqu.Record(row)).
		Returning(goqu.C(d.PrimaryKey)).
		Executor().
		ScanValContext(ctx, &id)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", d.Name, err)
	}
	if !found {
		return 0, fmt.Errorf("insert into %s: no id returned", d.Name)
	}

	return id, nil
}

func (r *RecordStore) Read(ctx context.Context, table string, id int64) (model.Record, error) {
	d, err := r.registry.Lookup(table)
	if err != nil {
		return model.Record{}, err
	}

	query, args, err := r.db.From(goqu.T(d.Name)).
		Prepared(true).
		Where(goqu.C(d.PrimaryKey).Eq(id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return model.Record{}, fmt.Errorf("build read %s: %w", d.Name, err)
	}

	records, err := r.query(ctx, d, query, args)
	if err != nil {
		return model.Record{}, err
	}
	if len(records) == 0 {
		return model.Record{}, fmt.Errorf("%w: %s#%d", model.ErrRecordNotFound, d.Name, id)
	}

	return records[0], nil
}

func (r *RecordStore) Update(ctx context.Context, table string, id int64, patch map[string]any) error {
	d, err := r.registry.Lookup(table)
	if err != nil {
		return err
	}

	row := toRow(patch)
	delete(row, d.PrimaryKey)
	if len(row) == 0 {
		return fmt.Errorf("%w: empty patch for %s#%d", model.ErrInvalidInput, d.Name, id)
	}

	result, err := r.db.Update(goqu.T(d.Name)).
		Prepared(true).
		Set(goqu.Record(row)).
		Where(goqu.C(d.PrimaryKey).Eq(id)).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("update %s#%d: %w", d.Name, id, err)
	}

	return expectOneRow(result, d.Name, id)
}

func (r *RecordStore) Delete(ctx context.Context, table string, id int64) error {
	d, err := r.registry.Lookup(table)
	if err != nil {
		return err
	}

	result, err := r.db.Delete(goqu.T(d.Name)).
		Prepared(true).
		Where(goqu.C(d.PrimaryKey).Eq(id)).
		Executor().
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("delete %s#%d: %w", d.Name, id, err)
	}

	return expectOneRow(result, d.Name, id)
}

// Query returns rows matching every column = value pair in q.Filter, newest first.
func (r *RecordStore) Query(ctx context.Context, table string, q model.RecordQuery) ([]model.Record, error) {
	d, err := r.registry.Lookup(table)
	if err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit <= 0 || limit > 1000 {
		limit = defaultQueryLimit
	}

	ds := r.db.From(goqu.T(d.Name)).Prepared(true)
	if len(q.Filter) > 0 {
		ds = ds.Where(goqu.Ex(toRow(q.Filter)))
	}

	query, args, err := ds.Order(goqu.C(d.PrimaryKey).Desc()).Limit(uint(limit)).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build query %s: %w", d.Name, err)
	}

	return r.query(ctx, d, query, args)
}

func (r *RecordStore) query(ctx context.Context, d catalog.TableDescriptor, query string, args []any) ([]model.Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", d.Name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns %s: %w", d.Name, err)
	}

	records := make([]model.Record, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", d.Name, err)
		}

		fields := make(map[string]any, len(columns))
		for i, column := range columns {
			fields[column] = fromColumn(values[i])
		}

		id, _, err := catalog.AsID(fields[d.PrimaryKey])
		if err != nil {
			return nil, fmt.Errorf("scan %s primary key: %w", d.Name, err)
		}

		records = append(records, model.Record{Table: d.Name, ID: id, Fields: fields})
	}

	return records, rows.Err()
}

func expectOneRow(result sql.Result, table string, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected %s#%d: %w", table, id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s#%d", model.ErrRecordNotFound, table, id)
	}
	return nil
}

// toRow converts decoded JSON values into driver-friendly ones: json.Number becomes int64 or
// float64, nested objects and arrays are re-encoded for json/jsonb columns.
func toRow(fields map[string]any) map[string]any {
	row := make(map[string]any, len(fields))
	for k, v := range fields {
		row[k] = toColumn(v)
	}
	return row
}

func toColumn(v any) any {
	switch value := v.(type) {
	case json.Number:
		if i, err := value.Int64(); err == nil {
			return i
		}
		if f, err := value.Float64(); err == nil {
			return f
		}
		return value.String()
	case map[string]any, []any:
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil
		}
		return string(encoded)
	default:
		return v
	}
}

func fromColumn(v any) any {
	switch value := v.(type) {
	case []byte:
		return string(value)
	case time.Time:
		return value.UTC().Format(time.RFC3339Nano)
	default:
		return v
	}
}
