package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	ingest "energiebuch/internal/ingest/domain"
)

const defaultValuesTable = "monthly_values"

// ValueStore is a Postgres implementation of the per-device monthly
// value store. One table row holds one field of one device month; the
// primary key (device_id, year, month, field_key) makes the merge
// policy a per-field upsert.
type ValueStore struct {
	db    *sql.DB
	table string
}

// NewValueStore creates a store using the default table name.
func NewValueStore(db *sql.DB, opts ...ValueStoreOption) *ValueStore {
	store := &ValueStore{db: db, table: defaultValuesTable}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// ValueStoreOption configures the store.
type ValueStoreOption func(*ValueStore)

// WithTable overrides the default table name.
func WithTable(table string) ValueStoreOption {
	return func(store *ValueStore) {
		if table != "" {
			store.table = table
		}
	}
}

// Get loads the sparse field map of one device month, or nil when no
// record exists.
func (s *ValueStore) Get(ctx context.Context, deviceID string, year, month int) (ingest.MonthlyValues, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("value store: nil db")
	}
	if deviceID == "" {
		return nil, ingest.ErrEmptyDeviceID
	}
	if !ingest.ValidPeriod(year, month) {
		return nil, ingest.ErrInvalidPeriod
	}

	query := fmt.Sprintf(`
SELECT field_key, value_num, value_text
FROM %s
WHERE device_id = $1
	AND year = $2
	AND month = $3`, s.table)

	rows, err := s.db.QueryContext(ctx, query, deviceID, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values ingest.MonthlyValues
	for rows.Next() {
		var (
			fieldKey  string
			valueNum  sql.NullFloat64
			valueText sql.NullString
		)
		if err := rows.Scan(&fieldKey, &valueNum, &valueText); err != nil {
			return nil, err
		}
		if values == nil {
			values = make(ingest.MonthlyValues)
		}
		if valueText.Valid {
			values[ingest.FieldKey(fieldKey)] = ingest.Value{Text: valueText.String, IsText: true}
		} else {
			values[ingest.FieldKey(fieldKey)] = ingest.Value{Num: valueNum.Float64}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

// Merge upserts the supplied fields of one device month. With overwrite
// supplied fields replace stored ones, without it existing fields win;
// stored fields absent from the supplied set are untouched either way.
func (s *ValueStore) Merge(ctx context.Context, deviceID string, year, month int, values ingest.MonthlyValues, overwrite bool) error {
	if s == nil || s.db == nil {
		return errors.New("value store: nil db")
	}
	if deviceID == "" {
		return ingest.ErrEmptyDeviceID
	}
	if !ingest.ValidPeriod(year, month) {
		return ingest.ErrInvalidPeriod
	}
	if values == nil {
		return ingest.ErrNilValues
	}
	if len(values) == 0 {
		return nil
	}

	conflictAction := `DO NOTHING`
	if overwrite {
		conflictAction = `DO UPDATE SET
	value_num = EXCLUDED.value_num,
	value_text = EXCLUDED.value_text,
	updated_at = NOW()`
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	device_id, year, month, field_key, value_num, value_text
) VALUES (
	$1, $2, $3, $4, $5, $6
)
ON CONFLICT (device_id, year, month, field_key)
%s`, s.table, conflictAction)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for fieldKey, value := range values {
		valueNum := sql.NullFloat64{}
		valueText := sql.NullString{}
		if value.IsText {
			valueText = sql.NullString{String: value.Text, Valid: true}
		} else {
			valueNum = sql.NullFloat64{Float64: value.Num, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, query, deviceID, year, month, string(fieldKey), valueNum, valueText); err != nil {
			return err
		}
	}
	return tx.Commit()
}
