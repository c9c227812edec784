package postgres

import (
	"context"
	"fmt"
	"time"
)

type Counter struct {
	db *DB
}

func NewCounter(db *DB) *Counter {
	return &Counter{db: db}
}

// Next increments and returns the counter in one statement. The row lock
// taken by the upsert serializes concurrent callers.
func (c *Counter) Next(ctx context.Context, scope string, year int, month time.Month) (int64, error) {
	query := `INSERT INTO counters (scope, year, month, value) VALUES ($1, $2, $3, 1)
		ON CONFLICT (scope, year, month) DO UPDATE SET value = counters.value + 1
		RETURNING value`

	var v int64
	if err := c.db.Pool.QueryRow(ctx, query, scope, year, int(month)).Scan(&v); err != nil {
		return 0, fmt.Errorf("incrementing counter %s %04d-%02d: %w", scope, year, int(month), err)
	}
	return v, nil
}
