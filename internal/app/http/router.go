package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"umzugsbuero/backend/internal/app/config"
	"umzugsbuero/backend/internal/app/http/handlers"
	"umzugsbuero/backend/internal/app/http/middleware"
)

func NewRouter(cfg config.Config, h *handlers.Handlers, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORSAllowOrigin))

	r.Get("/health", h.Health)

	r.Route("/quote-confirmation/{token}", func(r chi.Router) {
		r.Get("/", h.ViewConfirmation)
		r.Post("/confirm", h.ConfirmQuote)
		r.Post("/decline", h.DeclineQuote)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.InternalAuth(cfg.InternalToken))

		r.Route("/customers", func(r chi.Router) {
			r.Post("/", h.CreateCustomer)
			r.Get("/", h.ListCustomers)
			r.Get("/search", h.SearchCustomers)
			r.Get("/export", h.ExportCustomers)
			r.Get("/{id}", h.GetCustomer)
			r.Put("/{id}", h.UpdateCustomer)
			r.Get("/{id}/quotes", h.CustomerQuotes)
			r.Patch("/{customerId}/quotes/{id}", h.UpdateCustomerQuote)
		})

		r.Route("/quotes", func(r chi.Router) {
			r.Post("/", h.CreateQuote)
			r.Get("/", h.ListQuotes)
			r.Get("/{id}", h.GetQuote)
			r.Post("/{id}/send", h.SendQuote)
			r.Post("/{id}/accept", h.AcceptQuote)
			r.Post("/{id}/reject", h.RejectQuote)
			r.Put("/{id}/payment", h.RecordPayment)
			r.Post("/{id}/invoice", h.CreateInvoice)
			r.Get("/{id}/pdf", h.QuotePDF)
			r.Post("/{id}/sign", h.SignQuote)
		})

		r.Post("/documents/validate", h.ValidateDocument)

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", h.ListInvoices)
			r.Get("/{id}", h.GetInvoice)
			r.Get("/{id}/pdf", h.InvoicePDF)
			r.Post("/{id}/pay", h.PayInvoice)
		})

		r.Post("/calendar/import", h.ImportCalendar)
	})

	return r
}
