package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"umzugsbuero/backend/internal/domain/invoice"
	apperrors "umzugsbuero/backend/internal/errors"
)

type InvoiceRepository struct {
	db *DB
}

func NewInvoiceRepository(db *DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

const invoiceColumns = `id, number, quote_id, customer_id, net, tax, gross, items,
	issued_at, due_date, paid_at, status`

func scanInvoice(row pgx.Row) (invoice.Invoice, error) {
	var inv invoice.Invoice
	err := row.Scan(
		&inv.ID, &inv.Number, &inv.QuoteID, &inv.CustomerID, &inv.Net, &inv.Tax, &inv.Gross, &inv.Items,
		&inv.IssuedAt, &inv.DueDate, &inv.PaidAt, &inv.Status,
	)
	return inv, err
}

func (r *InvoiceRepository) Create(ctx context.Context, inv invoice.Invoice) error {
	query := `INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.Pool.Exec(ctx, query,
		inv.ID, inv.Number, inv.QuoteID, inv.CustomerID, inv.Net, inv.Tax, inv.Gross, inv.Items,
		inv.IssuedAt, inv.DueDate, inv.PaidAt, inv.Status,
	)
	if err != nil {
		return fmt.Errorf("inserting invoice: %w", mapError(err, "invoice for this quote"))
	}
	return nil
}

func (r *InvoiceRepository) Get(ctx context.Context, id string) (invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`

	inv, err := scanInvoice(r.db.Pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return inv, apperrors.NewNotFoundError(fmt.Sprintf("invoice %s not found", id))
	}
	if err != nil {
		return inv, fmt.Errorf("querying invoice by id: %w", err)
	}
	return inv, nil
}

func (r *InvoiceRepository) List(ctx context.Context) ([]invoice.Invoice, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices ORDER BY issued_at DESC, number DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying invoices: %w", err)
	}
	defer rows.Close()

	var out []invoice.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *InvoiceRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time) (invoice.Invoice, error) {
	query := `UPDATE invoices SET status = $2, paid_at = $3
		WHERE id = $1 AND status IN ($4, $5)
		RETURNING ` + invoiceColumns

	inv, err := scanInvoice(r.db.Pool.QueryRow(ctx, query, id, invoice.StatusPaid, paidAt, invoice.StatusOpen, invoice.StatusOverdue))
	if err == pgx.ErrNoRows {
		current, getErr := r.Get(ctx, id)
		if getErr != nil {
			return inv, getErr
		}
		return inv, apperrors.NewConflictError(fmt.Sprintf("invoice %s is %s", id, current.Status))
	}
	if err != nil {
		return inv, fmt.Errorf("marking invoice paid: %w", err)
	}
	return inv, nil
}

func (r *InvoiceRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE invoices SET status = $1 WHERE status = $2 AND due_date < $3`,
		invoice.StatusOverdue, invoice.StatusOpen, now)
	if err != nil {
		return 0, fmt.Errorf("marking overdue invoices: %w", err)
	}
	return tag.RowsAffected(), nil
}
