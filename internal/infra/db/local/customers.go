package local

import (
	"context"
	"fmt"
	"strings"

	"umzugsbuero/backend/internal/domain/customer"
	apperrors "umzugsbuero/backend/internal/errors"
)

type CustomerRepository struct {
	db *DB
}

func NewCustomerRepository(db *DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, c customer.Customer) error {
	m := toCustomerModel(c)
	if err := r.db.Gorm.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("inserting customer: %w", mapError(err, "customer"))
	}
	return nil
}

func (r *CustomerRepository) Get(ctx context.Context, id string) (customer.Customer, error) {
	var m customerModel
	if err := r.db.Gorm.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return customer.Customer{}, mapError(err, fmt.Sprintf("customer %s", id))
	}
	return m.domain(), nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]customer.Customer, error) {
	var models []customerModel
	if err := r.db.Gorm.WithContext(ctx).Order("created_at DESC, number DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("querying customers: %w", err)
	}
	out := make([]customer.Customer, 0, len(models))
	for _, m := range models {
		out = append(out, m.domain())
	}
	return out, nil
}

func (r *CustomerRepository) Update(ctx context.Context, c customer.Customer) error {
	m := toCustomerModel(c)
	res := r.db.Gorm.WithContext(ctx).Model(&customerModel{}).
		Where("id = ?", c.ID).
		Select("*").Omit("id", "number", "created_at").
		Updates(&m)
	if res.Error != nil {
		return fmt.Errorf("updating customer: %w", mapError(res.Error, "customer"))
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("customer %s not found", c.ID))
	}
	return nil
}

// FindDuplicate narrows candidates in SQL and applies the exact matching
// rule in Go, since SQLite stores the move date as a timestamp.
func (r *CustomerRepository) FindDuplicate(ctx context.Context, q customer.DuplicateQuery) (*customer.Customer, error) {
	var (
		conds []string
		args  []any
	)
	if q.Email != "" {
		conds = append(conds, "lower(email) = ?")
		args = append(args, strings.ToLower(q.Email))
	}
	if q.Phone != "" {
		conds = append(conds, "phone = ?")
		args = append(args, q.Phone)
	}
	if q.Name != "" && q.MoveDate != nil {
		conds = append(conds, "lower(name) = ?")
		args = append(args, strings.ToLower(q.Name))
	}
	if len(conds) == 0 {
		return nil, nil
	}

	var models []customerModel
	err := r.db.Gorm.WithContext(ctx).
		Where(strings.Join(conds, " OR "), args...).
		Order("created_at").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("querying duplicate customers: %w", err)
	}
	for _, m := range models {
		c := m.domain()
		if q.Matches(c) {
			return &c, nil
		}
	}
	return nil, nil
}
