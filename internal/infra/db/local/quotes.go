package local

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"umzugsbuero/backend/internal/domain/quote"
	apperrors "umzugsbuero/backend/internal/errors"
)

type QuoteRepository struct {
	db *DB
}

func NewQuoteRepository(db *DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) Create(ctx context.Context, q quote.Quote) error {
	m := toQuoteModel(q)
	if err := r.db.Gorm.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("inserting quote: %w", mapError(err, "quote"))
	}
	return nil
}

func (r *QuoteRepository) Get(ctx context.Context, id string) (quote.Quote, error) {
	var m quoteModel
	if err := r.db.Gorm.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return quote.Quote{}, mapError(err, fmt.Sprintf("quote %s", id))
	}
	return m.domain(), nil
}

func (r *QuoteRepository) List(ctx context.Context) ([]quote.Quote, error) {
	return r.list(ctx, r.db.Gorm.WithContext(ctx))
}

func (r *QuoteRepository) ListByCustomer(ctx context.Context, customerID string) ([]quote.Quote, error) {
	return r.list(ctx, r.db.Gorm.WithContext(ctx).Where("customer_id = ?", customerID))
}

func (r *QuoteRepository) list(_ context.Context, tx *gorm.DB) ([]quote.Quote, error) {
	var models []quoteModel
	if err := tx.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("querying quotes: %w", err)
	}
	out := make([]quote.Quote, 0, len(models))
	for _, m := range models {
		out = append(out, m.domain())
	}
	return out, nil
}

// Update reads, checks and writes inside one transaction. SQLite holds the
// writer lock for its duration, which gives the same guarantee as the
// conditional UPDATE of the Postgres store.
func (r *QuoteRepository) Update(ctx context.Context, customerID, id string, expect quote.Status, p quote.Patch, now time.Time) (quote.Quote, error) {
	var out quote.Quote
	err := r.db.Gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m quoteModel
		err := tx.First(&m, "id = ? AND customer_id = ?", id, customerID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError(fmt.Sprintf("quote %s not found", id))
		}
		if err != nil {
			return fmt.Errorf("querying quote: %w", err)
		}
		if quote.Status(m.Status) != expect {
			return apperrors.NewConflictError(fmt.Sprintf("quote %s changed concurrently, now %s", id, m.Status))
		}

		q := m.domain()
		p.Apply(&q, now)
		updated := toQuoteModel(q)
		err = tx.Model(&quoteModel{}).Where("id = ?", id).
			Select("*").Omit("id", "customer_id", "created_at").
			Updates(&updated).Error
		if err != nil {
			return fmt.Errorf("updating quote: %w", err)
		}
		out = updated.domain()
		return nil
	})
	return out, err
}
