package service

import (
	"context"

	"go.uber.org/zap"

	"umzugsbuero/backend/internal/domain/invoice"
	"umzugsbuero/backend/internal/domain/quote/pdf"
	"umzugsbuero/backend/internal/domain/quote/pdf/content"
)

type InvoiceService struct {
	deps Deps
}

func NewInvoiceService(deps Deps) *InvoiceService {
	return &InvoiceService{deps: deps.withDefaults()}
}

func (s *InvoiceService) Get(ctx context.Context, id string) (invoice.Invoice, error) {
	return s.deps.Store.Invoices.Get(ctx, id)
}

func (s *InvoiceService) List(ctx context.Context) ([]invoice.Invoice, error) {
	return s.deps.Store.Invoices.List(ctx)
}

// Document renders the invoice PDF.
func (s *InvoiceService) Document(ctx context.Context, id string) (pdf.Result, invoice.Invoice, error) {
	inv, err := s.deps.Store.Invoices.Get(ctx, id)
	if err != nil {
		return pdf.Result{}, invoice.Invoice{}, err
	}
	c, err := s.deps.Store.Customers.Get(ctx, inv.CustomerID)
	if err != nil {
		return pdf.Result{}, invoice.Invoice{}, err
	}
	res, err := s.deps.Documents.GenerateInvoice(content.InvoiceInput{Customer: &c, Invoice: &inv})
	if err != nil {
		return pdf.Result{}, invoice.Invoice{}, err
	}
	return res, inv, nil
}

// MarkPaid settles an open or overdue invoice.
func (s *InvoiceService) MarkPaid(ctx context.Context, id string) (invoice.Invoice, error) {
	inv, err := s.deps.Store.Invoices.MarkPaid(ctx, id, s.deps.now())
	if err != nil {
		return invoice.Invoice{}, err
	}
	s.deps.Logger.Info("invoice paid", zap.String("invoiceId", inv.ID), zap.String("number", inv.Number))
	return inv, nil
}
