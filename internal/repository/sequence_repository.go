package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// SequenceRepository hands out values from named counters in
// ticket_number_counter. The increment happens in one statement, so two
// callers never receive the same value.
type SequenceRepository struct {
	db DBTX
}

// NewSequenceRepository builds repository.
func NewSequenceRepository(db DBTX) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// NextValue increments name and returns the new value. A counter created on
// first use starts after the highest TKT-number already stored, so tickets
// numbered before the counter existed are never handed out again.
func (r *SequenceRepository) NextValue(ctx context.Context, name string) (int64, error) {
	const increment = `
        UPDATE ticket_number_counter SET counter = counter + 1, updated_at = NOW()
        WHERE name = $1
        RETURNING counter`
	const seed = `
        INSERT INTO ticket_number_counter (name, counter)
        VALUES ($1, 1 + COALESCE((
            SELECT MAX(CAST(SUBSTRING(ticket_number FROM 5) AS BIGINT))
            FROM tickets
            WHERE ticket_number ~ '^TKT-[0-9]+$'
        ), 0))
        ON CONFLICT (name) DO UPDATE SET counter = ticket_number_counter.counter + 1, updated_at = NOW()
        RETURNING counter`
	var value int64
	err := r.db.QueryRow(ctx, increment, name).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		err = r.db.QueryRow(ctx, seed, name).Scan(&value)
	}
	return value, err
}
