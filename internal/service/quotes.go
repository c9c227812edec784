package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"umzugsbuero/backend/internal/domain/confirmation"
	"umzugsbuero/backend/internal/domain/customer"
	"umzugsbuero/backend/internal/domain/invoice"
	"umzugsbuero/backend/internal/domain/quote"
	"umzugsbuero/backend/internal/domain/quote/pdf"
	"umzugsbuero/backend/internal/domain/quote/pdf/content"
	"umzugsbuero/backend/internal/domain/quote/pdf/layout"
	"umzugsbuero/backend/internal/domain/quote/pdf/signature"
	apperrors "umzugsbuero/backend/internal/errors"
	"umzugsbuero/backend/internal/infra/mail"
)

type QuoteService struct {
	deps Deps
}

func NewQuoteService(deps Deps) *QuoteService {
	return &QuoteService{deps: deps.withDefaults()}
}

type CreateQuoteInput struct {
	CustomerID  string             `json:"customerId"`
	Price       *float64           `json:"price,omitempty"`
	Details     quote.Details      `json:"details"`
	Calculation *quote.Calculation `json:"calculation,omitempty"`
}

// Create stores a draft quote. Without a price the quote is priced from
// the calculation, or estimated from the customer's apartment when there
// is none either.
func (s *QuoteService) Create(ctx context.Context, in CreateQuoteInput) (quote.Quote, error) {
	if in.CustomerID == "" {
		return quote.Quote{}, apperrors.NewValidationError("invalid quote",
			apperrors.ValidationDetail{Field: "customerId", Message: "customerId is required"})
	}
	c, err := s.deps.Store.Customers.Get(ctx, in.CustomerID)
	if err != nil {
		return quote.Quote{}, err
	}

	now := s.deps.now()
	number, err := s.deps.nextNumber(ctx, ScopeQuote, now, quote.FormatNumber)
	if err != nil {
		return quote.Quote{}, err
	}
	q := quote.Quote{
		ID:         s.deps.NewID(),
		CustomerID: c.ID,
		Number:     number,
		Status:     quote.StatusDraft,
		Details:    in.Details,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	switch {
	case in.Price != nil:
		q.Price = *in.Price
		q.Calculation = in.Calculation
	case in.Calculation != nil:
		q.Calculation = in.Calculation
		q.Price = in.Calculation.Total()
	default:
		calc := quote.Estimate(c.Apartment)
		q.Calculation = &calc
		q.Price = calc.Total()
	}
	if err := q.Validate(); err != nil {
		return quote.Quote{}, err
	}
	if err := s.deps.Store.Quotes.Create(ctx, q); err != nil {
		return quote.Quote{}, err
	}
	s.deps.Logger.Info("quote created",
		zap.String("quoteId", q.ID),
		zap.String("customerId", q.CustomerID),
		zap.Float64("price", q.Price),
	)
	return q, nil
}

func (s *QuoteService) Get(ctx context.Context, id string) (quote.Quote, error) {
	return s.deps.Store.Quotes.Get(ctx, id)
}

// List returns all quotes, or those of one customer when customerID is set.
func (s *QuoteService) List(ctx context.Context, customerID string) ([]quote.Quote, error) {
	if customerID != "" {
		return s.deps.Store.Quotes.ListByCustomer(ctx, customerID)
	}
	return s.deps.Store.Quotes.List(ctx)
}

type UpdateQuoteInput struct {
	Price       *float64           `json:"price,omitempty"`
	Details     *quote.Details     `json:"details,omitempty"`
	Calculation *quote.Calculation `json:"calculation,omitempty"`
}

// Update edits the priced content of a draft or sent quote owned by
// customerID.
func (s *QuoteService) Update(ctx context.Context, customerID, id string, in UpdateQuoteInput) (quote.Quote, error) {
	p := quote.Patch{Price: in.Price, Details: in.Details, Calculation: in.Calculation}
	if p.Empty() {
		return quote.Quote{}, apperrors.NewValidationError("nothing to update")
	}
	q, err := s.owned(ctx, customerID, id)
	if err != nil {
		return quote.Quote{}, err
	}
	if !q.Status.Editable() {
		return quote.Quote{}, apperrors.NewConflictError(fmt.Sprintf("quote in status %s can no longer be edited", q.Status))
	}

	now := s.deps.now()
	candidate := q
	p.Apply(&candidate, now)
	if err := candidate.Validate(); err != nil {
		return quote.Quote{}, err
	}
	return s.deps.Store.Quotes.Update(ctx, customerID, id, q.Status, p, now)
}

func (s *QuoteService) owned(ctx context.Context, customerID, id string) (quote.Quote, error) {
	q, err := s.deps.Store.Quotes.Get(ctx, id)
	if err != nil {
		return quote.Quote{}, err
	}
	if q.CustomerID != customerID {
		return quote.Quote{}, apperrors.NewNotFoundError(fmt.Sprintf("quote %s not found for customer %s", id, customerID))
	}
	return q, nil
}

func (s *QuoteService) Accept(ctx context.Context, id string) (quote.Quote, error) {
	return s.transition(ctx, id, quote.ActionAccept)
}

func (s *QuoteService) Reject(ctx context.Context, id string) (quote.Quote, error) {
	return s.transition(ctx, id, quote.ActionReject)
}

func (s *QuoteService) transition(ctx context.Context, id string, a quote.Action) (quote.Quote, error) {
	q, err := s.deps.Store.Quotes.Get(ctx, id)
	if err != nil {
		return quote.Quote{}, err
	}
	return applyTransition(ctx, s.deps, q, a)
}

func applyTransition(ctx context.Context, deps Deps, q quote.Quote, a quote.Action) (quote.Quote, error) {
	to, err := quote.Transition(q.Status, a)
	if err != nil {
		return quote.Quote{}, err
	}
	updated, err := deps.Store.Quotes.Update(ctx, q.CustomerID, q.ID, q.Status, quote.Patch{Status: &to}, deps.now())
	if err != nil {
		return quote.Quote{}, err
	}
	deps.Logger.Info("quote status changed",
		zap.String("quoteId", q.ID),
		zap.String("action", string(a)),
		zap.String("from", string(q.Status)),
		zap.String("to", string(to)),
	)
	return updated, nil
}

type SendResult struct {
	Quote            quote.Quote `json:"quote"`
	ConfirmationURL  string      `json:"confirmationUrl"`
	ExpiresAt        time.Time   `json:"expiresAt"`
	DocumentDegraded bool        `json:"documentDegraded"`
	EmailSent        bool        `json:"emailSent"`
	EmailReason      string      `json:"emailReason,omitempty"`
}

// Send issues a fresh confirmation link, marks a draft as sent and mails
// the quote PDF to the customer. A sent quote can be sent again; earlier
// links stay valid until they expire. Mail delivery is best effort and
// reported in the result.
func (s *QuoteService) Send(ctx context.Context, id string) (SendResult, error) {
	q, err := s.deps.Store.Quotes.Get(ctx, id)
	if err != nil {
		return SendResult{}, err
	}
	p := quote.Patch{}
	if q.Status != quote.StatusSent {
		to, err := quote.Transition(q.Status, quote.ActionSend)
		if err != nil {
			return SendResult{}, err
		}
		p.Status = &to
	}
	c, err := s.deps.Store.Customers.Get(ctx, q.CustomerID)
	if err != nil {
		return SendResult{}, err
	}

	now := s.deps.now()
	raw, tok, err := confirmation.Issue(q.ID, now, s.deps.Settings.TokenTTL)
	if err != nil {
		return SendResult{}, apperrors.NewInternalError("issuing confirmation token", err)
	}
	if err := s.deps.Store.Tokens.Create(ctx, tok); err != nil {
		return SendResult{}, err
	}
	p.ConfirmationTokenHash = &tok.Hash
	updated, err := s.deps.Store.Quotes.Update(ctx, q.CustomerID, q.ID, q.Status, p, now)
	if err != nil {
		return SendResult{}, err
	}

	res := SendResult{
		Quote:           updated,
		ConfirmationURL: confirmation.URL(s.deps.Settings.PublicBaseURL, raw),
		ExpiresAt:       tok.ExpiresAt,
	}
	doc, err := s.deps.Documents.GenerateQuote(content.Input{
		Customer: &c, Quote: &updated, IssuedAt: now, ConfirmationURL: res.ConfirmationURL,
	})
	var out Outcome
	if err != nil {
		out = outcomeOf(fmt.Errorf("rendering quote document: %w", err))
	} else {
		res.DocumentDegraded = doc.Degraded
		out = outcomeOf(s.mailQuote(ctx, c, updated, res.ConfirmationURL, doc.PDF))
	}
	res.EmailSent, res.EmailReason = out.Sent, out.Reason
	if !out.Sent {
		s.deps.Logger.Warn("quote email not sent", zap.String("quoteId", q.ID), zap.String("reason", out.Reason))
	}
	return res, nil
}

func (s *QuoteService) mailQuote(ctx context.Context, c customer.Customer, q quote.Quote, url string, doc []byte) error {
	if c.Email == "" {
		return errors.New("customer has no email address")
	}
	if s.deps.Mailer == nil || !s.deps.Mailer.Enabled() {
		return mail.ErrDisabled
	}
	msg, err := quoteEmail(c, q, url, s.deps.Settings.CompanyName, doc)
	if err != nil {
		return err
	}
	return s.deps.Mailer.Send(ctx, msg)
}

// RecordPayment stores payment information on any quote that was not
// rejected.
func (s *QuoteService) RecordPayment(ctx context.Context, id string, in quote.PaymentInfo) (quote.Quote, error) {
	q, err := s.deps.Store.Quotes.Get(ctx, id)
	if err != nil {
		return quote.Quote{}, err
	}
	if q.Status == quote.StatusRejected {
		return quote.Quote{}, apperrors.NewConflictError("cannot record a payment on a rejected quote")
	}
	now := s.deps.now()
	in.RecordedAt = now
	if err := in.Validate(); err != nil {
		return quote.Quote{}, err
	}
	return s.deps.Store.Quotes.Update(ctx, q.CustomerID, q.ID, q.Status, quote.Patch{Payment: &in}, now)
}

// CreateInvoice converts a confirmed or accepted quote into an invoice and
// marks the quote invoiced. The store allows one invoice per quote.
func (s *QuoteService) CreateInvoice(ctx context.Context, id string) (invoice.Invoice, error) {
	q, err := s.deps.Store.Quotes.Get(ctx, id)
	if err != nil {
		return invoice.Invoice{}, err
	}
	if _, err := quote.Transition(q.Status, quote.ActionInvoice); err != nil {
		return invoice.Invoice{}, err
	}

	now := s.deps.now()
	number, err := s.deps.nextNumber(ctx, ScopeInvoice, now, invoice.FormatNumber)
	if err != nil {
		return invoice.Invoice{}, err
	}
	inv, err := invoice.FromQuote(q, s.deps.NewID(), number, now, s.deps.Settings.InvoicePaymentDays)
	if err != nil {
		return invoice.Invoice{}, err
	}
	if err := s.deps.Store.Invoices.Create(ctx, inv); err != nil {
		return invoice.Invoice{}, err
	}
	if _, err := applyTransition(ctx, s.deps, q, quote.ActionInvoice); err != nil {
		s.deps.Logger.Error("invoice created but quote status not updated",
			zap.String("quoteId", q.ID), zap.String("invoiceId", inv.ID), zap.Error(err))
		return inv, err
	}
	s.deps.Logger.Info("invoice created", zap.String("invoiceId", inv.ID), zap.String("number", inv.Number))
	return inv, nil
}

// Document renders the quote PDF. The issue date is the quote's creation
// date, so repeated downloads are identical.
func (s *QuoteService) Document(ctx context.Context, id string) (pdf.Result, quote.Quote, error) {
	q, err := s.deps.Store.Quotes.Get(ctx, id)
	if err != nil {
		return pdf.Result{}, quote.Quote{}, err
	}
	c, err := s.deps.Store.Customers.Get(ctx, q.CustomerID)
	if err != nil {
		return pdf.Result{}, quote.Quote{}, err
	}
	res, err := s.deps.Documents.GenerateQuote(content.Input{
		Customer: &c, Quote: &q, IssuedAt: q.CreatedAt.In(s.deps.Settings.Location),
	})
	if err != nil {
		return pdf.Result{}, quote.Quote{}, err
	}
	return res, q, nil
}

type SignatureInput struct {
	Image      string     `json:"image"`
	SignerName string     `json:"signerName"`
	SignedAt   *time.Time `json:"signedAt,omitempty"`
	Velocities []float64  `json:"velocities,omitempty"`
	Timestamps []int64    `json:"timestamps,omitempty"`
}

type SignInput struct {
	Customer *SignatureInput `json:"customer,omitempty"`
	Company  *SignatureInput `json:"company,omitempty"`
	IP       string          `json:"-"`
}

// Sign renders the quote and overlays the given signatures. A failed
// overlay yields the unsigned document with Degraded set.
func (s *QuoteService) Sign(ctx context.Context, id string, in SignInput) (signature.Result, quote.Quote, error) {
	if in.Customer == nil && in.Company == nil {
		return signature.Result{}, quote.Quote{}, apperrors.NewValidationError("no signature given",
			apperrors.ValidationDetail{Field: "customer", Message: "at least one signature is required"})
	}
	base, q, err := s.Document(ctx, id)
	if err != nil {
		return signature.Result{}, quote.Quote{}, err
	}

	doc := signature.NewDocument(base.PDF)
	slots := []struct {
		slot layout.Slot
		in   *SignatureInput
	}{
		{layout.SlotCustomer, in.Customer},
		{layout.SlotCompany, in.Company},
	}
	for _, sl := range slots {
		if sl.in == nil {
			continue
		}
		img, err := signature.DecodeImage(sl.in.Image)
		if err != nil {
			return signature.Result{}, q, apperrors.NewValidationError("invalid signature",
				apperrors.ValidationDetail{Field: string(sl.slot) + ".image", Message: err.Error()})
		}
		data := signature.Data{
			Image:      img,
			SignerName: sl.in.SignerName,
			SignedAt:   s.deps.now(),
			IP:         in.IP,
			Velocities: sl.in.Velocities,
			Timestamps: sl.in.Timestamps,
		}
		if sl.in.SignedAt != nil {
			data.SignedAt = *sl.in.SignedAt
		}
		if err := doc.Embed(sl.slot, data); err != nil {
			return signature.Result{}, q, err
		}
	}

	res, err := s.deps.Signer.Render(doc)
	if err != nil {
		return signature.Result{}, q, err
	}
	// A signed fallback document is still a fallback document.
	if base.Degraded {
		res.Degraded = true
		if res.Cause == nil {
			res.Cause = base.Cause
		}
	}
	s.deps.Logger.Info("quote signed",
		zap.String("quoteId", q.ID),
		zap.String("state", string(res.State)),
		zap.Bool("degraded", res.Degraded),
	)
	return res, q, nil
}
