package handlers

import (
	"context"

	"go.uber.org/zap"

	"umzugsbuero/backend/internal/service"
)

type Handlers struct {
	Customers     *service.CustomerService
	Quotes        *service.QuoteService
	Confirmations *service.ConfirmationService
	Invoices      *service.InvoiceService
	Calendar      *service.CalendarImporter
	Logger        *zap.Logger

	ping func(ctx context.Context) error
}

// New builds the services on top of deps. ping reports store health and
// may be nil.
func New(deps service.Deps, ping func(ctx context.Context) error) *Handlers {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		Customers:     service.NewCustomerService(deps),
		Quotes:        service.NewQuoteService(deps),
		Confirmations: service.NewConfirmationService(deps),
		Invoices:      service.NewInvoiceService(deps),
		Calendar:      service.NewCalendarImporter(deps),
		Logger:        logger,
		ping:          ping,
	}
}
