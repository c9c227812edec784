package local

import (
	"context"
	"fmt"
	"time"

	"umzugsbuero/backend/internal/domain/confirmation"
)

type TokenRepository struct {
	db *DB
}

func NewTokenRepository(db *DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(ctx context.Context, t confirmation.Token) error {
	m := toTokenModel(t)
	if err := r.db.Gorm.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("inserting confirmation token: %w", mapError(err, "confirmation token"))
	}
	return nil
}

func (r *TokenRepository) Get(ctx context.Context, hash string) (confirmation.Token, error) {
	var m tokenModel
	if err := r.db.Gorm.WithContext(ctx).First(&m, "hash = ?", hash).Error; err != nil {
		return confirmation.Token{}, mapError(err, "confirmation link")
	}
	return m.domain(), nil
}

func (r *TokenRepository) Consume(ctx context.Context, hash string, now time.Time) (confirmation.Token, error) {
	now = now.UTC()
	res := r.db.Gorm.WithContext(ctx).Model(&tokenModel{}).
		Where("hash = ? AND used_at IS NULL AND expires_at > ?", hash, now).
		Update("used_at", now)
	if res.Error != nil {
		return confirmation.Token{}, fmt.Errorf("consuming confirmation token: %w", res.Error)
	}
	t, err := r.Get(ctx, hash)
	if err != nil {
		return t, err
	}
	if res.RowsAffected == 0 {
		if err := t.CheckViewable(now); err != nil {
			return t, err
		}
		return t, fmt.Errorf("confirmation token %s was not consumed", t.QuoteID)
	}
	return t, nil
}

func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.Gorm.WithContext(ctx).Where("expires_at <= ?", now.UTC()).Delete(&tokenModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("deleting expired tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}
