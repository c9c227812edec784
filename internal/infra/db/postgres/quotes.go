package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"umzugsbuero/backend/internal/domain/quote"
	apperrors "umzugsbuero/backend/internal/errors"
)

type QuoteRepository struct {
	db *DB
}

func NewQuoteRepository(db *DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

const quoteColumns = `id, customer_id, number, price, status, details, calculation, payment,
	confirmation_token_hash, created_at, updated_at`

func scanQuote(row pgx.Row) (quote.Quote, error) {
	var q quote.Quote
	err := row.Scan(
		&q.ID, &q.CustomerID, &q.Number, &q.Price, &q.Status, &q.Details, &q.Calculation, &q.Payment,
		&q.ConfirmationTokenHash, &q.CreatedAt, &q.UpdatedAt,
	)
	return q, err
}

func (r *QuoteRepository) Create(ctx context.Context, q quote.Quote) error {
	query := `INSERT INTO quotes (` + quoteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Pool.Exec(ctx, query,
		q.ID, q.CustomerID, q.Number, q.Price, q.Status, q.Details, q.Calculation, q.Payment,
		q.ConfirmationTokenHash, q.CreatedAt, q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting quote: %w", mapError(err, "quote"))
	}
	return nil
}

func (r *QuoteRepository) Get(ctx context.Context, id string) (quote.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = $1`

	q, err := scanQuote(r.db.Pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return q, apperrors.NewNotFoundError(fmt.Sprintf("quote %s not found", id))
	}
	if err != nil {
		return q, fmt.Errorf("querying quote by id: %w", err)
	}
	return q, nil
}

func (r *QuoteRepository) List(ctx context.Context) ([]quote.Quote, error) {
	return r.list(ctx, `SELECT `+quoteColumns+` FROM quotes ORDER BY created_at DESC`)
}

func (r *QuoteRepository) ListByCustomer(ctx context.Context, customerID string) ([]quote.Quote, error) {
	return r.list(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE customer_id = $1 ORDER BY created_at DESC`, customerID)
}

func (r *QuoteRepository) list(ctx context.Context, query string, args ...any) ([]quote.Quote, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying quotes: %w", err)
	}
	defer rows.Close()

	var out []quote.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning quote: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// Update writes only the columns the patch sets. The customer id and the
// expected status are part of the predicate, so the owning customer can
// never change and a concurrent transition is detected.
func (r *QuoteRepository) Update(ctx context.Context, customerID, id string, expect quote.Status, p quote.Patch, now time.Time) (quote.Quote, error) {
	sets := []string{"updated_at = $4"}
	args := []any{id, customerID, expect, now}
	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if p.Price != nil {
		add("price", *p.Price)
	}
	if p.Details != nil {
		add("details", *p.Details)
	}
	if p.Calculation != nil {
		add("calculation", *p.Calculation)
	}
	if p.Status != nil {
		add("status", *p.Status)
	}
	if p.Payment != nil {
		add("payment", *p.Payment)
	}
	if p.ConfirmationTokenHash != nil {
		add("confirmation_token_hash", *p.ConfirmationTokenHash)
	}

	query := `UPDATE quotes SET ` + strings.Join(sets, ", ") + `
		WHERE id = $1 AND customer_id = $2 AND status = $3
		RETURNING ` + quoteColumns

	q, err := scanQuote(r.db.Pool.QueryRow(ctx, query, args...))
	if err == pgx.ErrNoRows {
		return q, r.explainMiss(ctx, customerID, id)
	}
	if err != nil {
		return q, fmt.Errorf("updating quote: %w", err)
	}
	return q, nil
}

// explainMiss tells apart a missing quote from one that belongs to another
// customer or changed status in the meantime.
func (r *QuoteRepository) explainMiss(ctx context.Context, customerID, id string) error {
	current, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.CustomerID != customerID {
		return apperrors.NewNotFoundError(fmt.Sprintf("quote %s not found for customer %s", id, customerID))
	}
	return apperrors.NewConflictError(fmt.Sprintf("quote %s changed concurrently, now %s", id, current.Status))
}
