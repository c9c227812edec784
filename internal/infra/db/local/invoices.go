package local

import (
	"context"
	"fmt"
	"time"

	"umzugsbuero/backend/internal/domain/invoice"
	apperrors "umzugsbuero/backend/internal/errors"
)

type InvoiceRepository struct {
	db *DB
}

func NewInvoiceRepository(db *DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(ctx context.Context, inv invoice.Invoice) error {
	m := toInvoiceModel(inv)
	if err := r.db.Gorm.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("inserting invoice: %w", mapError(err, "invoice for this quote"))
	}
	return nil
}

func (r *InvoiceRepository) Get(ctx context.Context, id string) (invoice.Invoice, error) {
	var m invoiceModel
	if err := r.db.Gorm.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return invoice.Invoice{}, mapError(err, fmt.Sprintf("invoice %s", id))
	}
	return m.domain(), nil
}

func (r *InvoiceRepository) List(ctx context.Context) ([]invoice.Invoice, error) {
	var models []invoiceModel
	if err := r.db.Gorm.WithContext(ctx).Order("issued_at DESC, number DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("querying invoices: %w", err)
	}
	out := make([]invoice.Invoice, 0, len(models))
	for _, m := range models {
		out = append(out, m.domain())
	}
	return out, nil
}

func (r *InvoiceRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time) (invoice.Invoice, error) {
	paidAt = paidAt.UTC()
	res := r.db.Gorm.WithContext(ctx).Model(&invoiceModel{}).
		Where("id = ? AND status IN ?", id, []string{string(invoice.StatusOpen), string(invoice.StatusOverdue)}).
		Updates(map[string]any{"status": string(invoice.StatusPaid), "paid_at": paidAt})
	if res.Error != nil {
		return invoice.Invoice{}, fmt.Errorf("marking invoice paid: %w", res.Error)
	}
	current, err := r.Get(ctx, id)
	if err != nil {
		return invoice.Invoice{}, err
	}
	if res.RowsAffected == 0 {
		return invoice.Invoice{}, apperrors.NewConflictError(fmt.Sprintf("invoice %s is %s", id, current.Status))
	}
	return current, nil
}

func (r *InvoiceRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.Gorm.WithContext(ctx).Model(&invoiceModel{}).
		Where("status = ? AND due_date < ?", string(invoice.StatusOpen), now.UTC()).
		Update("status", string(invoice.StatusOverdue))
	if res.Error != nil {
		return 0, fmt.Errorf("marking overdue invoices: %w", res.Error)
	}
	return res.RowsAffected, nil
}
