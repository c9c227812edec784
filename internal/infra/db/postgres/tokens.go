package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"umzugsbuero/backend/internal/domain/confirmation"
	apperrors "umzugsbuero/backend/internal/errors"
)

type TokenRepository struct {
	db *DB
}

func NewTokenRepository(db *DB) *TokenRepository {
	return &TokenRepository{db: db}
}

const tokenColumns = `hash, quote_id, created_at, expires_at, used_at`

func scanToken(row pgx.Row) (confirmation.Token, error) {
	var t confirmation.Token
	err := row.Scan(&t.Hash, &t.QuoteID, &t.CreatedAt, &t.ExpiresAt, &t.UsedAt)
	return t, err
}

func (r *TokenRepository) Create(ctx context.Context, t confirmation.Token) error {
	_, err := r.db.Pool.Exec(ctx, `INSERT INTO confirmation_tokens (`+tokenColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		t.Hash, t.QuoteID, t.CreatedAt, t.ExpiresAt, t.UsedAt)
	if err != nil {
		return fmt.Errorf("inserting confirmation token: %w", mapError(err, "confirmation token"))
	}
	return nil
}

func (r *TokenRepository) Get(ctx context.Context, hash string) (confirmation.Token, error) {
	t, err := scanToken(r.db.Pool.QueryRow(ctx, `SELECT `+tokenColumns+` FROM confirmation_tokens WHERE hash = $1`, hash))
	if err == pgx.ErrNoRows {
		return t, apperrors.NewNotFoundError("confirmation link not found")
	}
	if err != nil {
		return t, fmt.Errorf("querying confirmation token: %w", err)
	}
	return t, nil
}

func (r *TokenRepository) Consume(ctx context.Context, hash string, now time.Time) (confirmation.Token, error) {
	query := `UPDATE confirmation_tokens SET used_at = $2
		WHERE hash = $1 AND used_at IS NULL AND expires_at > $2
		RETURNING ` + tokenColumns

	t, err := scanToken(r.db.Pool.QueryRow(ctx, query, hash, now))
	if err == pgx.ErrNoRows {
		current, getErr := r.Get(ctx, hash)
		if getErr != nil {
			return t, getErr
		}
		return t, current.CheckViewable(now)
	}
	if err != nil {
		return t, fmt.Errorf("consuming confirmation token: %w", err)
	}
	return t, nil
}

func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM confirmation_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("deleting expired tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
