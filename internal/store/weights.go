package store

import (
	"context"
	"fmt"
	"time"

	"github.com/sadopc/macrotrend/internal/trend"
)

// WeightLog persists the weight series. It implements trend.Persistence.
type WeightLog struct {
	s *Store
}

// WeightLog returns the weight-series persistence backed by s.
func (s *Store) WeightLog() *WeightLog {
	return &WeightLog{s: s}
}

var _ trend.Persistence = (*WeightLog)(nil)

// Load returns every stored reading in day order. Rows are returned as stored;
// the series built from them resolves any duplicate days.
func (w *WeightLog) Load(ctx context.Context) ([]trend.Entry, error) {
	rows, err := w.s.db.QueryContext(ctx,
		`SELECT id, day, value, updated_at FROM weight_entries ORDER BY day`)
	if err != nil {
		return nil, fmt.Errorf("load weights: %w", err)
	}
	defer rows.Close()

	var entries []trend.Entry
	for rows.Next() {
		var e trend.Entry
		var day, updatedAt string
		if err := rows.Scan(&e.ID, &day, &e.Value, &updatedAt); err != nil {
			return nil, err
		}
		if e.Day, err = trend.ParseDay(day); err != nil {
			return nil, fmt.Errorf("weight %s: %w", e.ID, err)
		}
		if e.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, fmt.Errorf("weight %s updated_at: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Save replaces the stored series with entries in one transaction.
func (w *WeightLog) Save(ctx context.Context, entries []trend.Entry) error {
	for _, e := range entries {
		if err := trend.ValidateValue(e.Value); err != nil {
			return fmt.Errorf("save weight %s: %w", e.Day, err)
		}
	}

	tx, err := w.s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM weight_entries`); err != nil {
		return fmt.Errorf("clear weights: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO weight_entries (id, day, value, updated_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.ID, e.Day.String(), e.Value, e.UpdatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("insert weight %s: %w", e.Day, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of stored readings.
func (w *WeightLog) Count(ctx context.Context) (int, error) {
	var n int
	err := w.s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM weight_entries`).Scan(&n)
	return n, err
}
