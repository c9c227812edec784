package service

import (
	"context"
	"time"

	"umzugsbuero/backend/internal/domain/confirmation"
	"umzugsbuero/backend/internal/domain/customer"
	"umzugsbuero/backend/internal/domain/invoice"
	"umzugsbuero/backend/internal/domain/quote"
	"umzugsbuero/backend/internal/domain/quote/pdf"
	"umzugsbuero/backend/internal/domain/quote/pdf/content"
	"umzugsbuero/backend/internal/domain/quote/pdf/signature"
	"umzugsbuero/backend/internal/infra/mail"
)

type CustomerRepository interface {
	Create(ctx context.Context, c customer.Customer) error
	Get(ctx context.Context, id string) (customer.Customer, error)
	List(ctx context.Context) ([]customer.Customer, error)
	Update(ctx context.Context, c customer.Customer) error
	// FindDuplicate returns nil when no stored customer matches q.
	FindDuplicate(ctx context.Context, q customer.DuplicateQuery) (*customer.Customer, error)
}

type QuoteRepository interface {
	Create(ctx context.Context, q quote.Quote) error
	Get(ctx context.Context, id string) (quote.Quote, error)
	List(ctx context.Context) ([]quote.Quote, error)
	ListByCustomer(ctx context.Context, customerID string) ([]quote.Quote, error)
	// Update applies p to the quote owned by customerID, provided it is still
	// in status expect. It fails with a ConflictError when the status moved.
	Update(ctx context.Context, customerID, id string, expect quote.Status, p quote.Patch, now time.Time) (quote.Quote, error)
}

type InvoiceRepository interface {
	Create(ctx context.Context, inv invoice.Invoice) error
	Get(ctx context.Context, id string) (invoice.Invoice, error)
	List(ctx context.Context) ([]invoice.Invoice, error)
	MarkPaid(ctx context.Context, id string, paidAt time.Time) (invoice.Invoice, error)
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

type TokenRepository interface {
	Create(ctx context.Context, t confirmation.Token) error
	Get(ctx context.Context, hash string) (confirmation.Token, error)
	// Consume marks an unused, unexpired token as used in one atomic step.
	Consume(ctx context.Context, hash string, now time.Time) (confirmation.Token, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Counter hands out per-scope monthly sequence numbers. Concurrent callers
// never receive the same value.
type Counter interface {
	Next(ctx context.Context, scope string, year int, month time.Month) (int64, error)
}

// Store bundles the repositories of one backend.
type Store struct {
	Customers CustomerRepository
	Quotes    QuoteRepository
	Invoices  InvoiceRepository
	Tokens    TokenRepository
	Counter   Counter
}

// Documents renders quote and invoice PDFs.
type Documents interface {
	GenerateQuote(in content.Input) (pdf.Result, error)
	GenerateInvoice(in content.InvoiceInput) (pdf.Result, error)
}

// SignatureRenderer overlays captured signatures onto a rendered document.
type SignatureRenderer interface {
	Render(doc *signature.Document) (signature.Result, error)
}

type Mailer interface {
	Enabled() bool
	Send(ctx context.Context, m mail.Message) error
}
