package gofpdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"umzugsbuero/backend/internal/domain/customer"
	"umzugsbuero/backend/internal/domain/invoice"
	"umzugsbuero/backend/internal/domain/quote"
	"umzugsbuero/backend/internal/domain/quote/pdf/content"
	apperrors "umzugsbuero/backend/internal/errors"
)

var company = content.Company{Name: "Umzugsbüro Berlin", Street: "Hauptstr. 1", City: "10115 Berlin", Phone: "030 123", IBAN: "DE00 1234"}

func quoteInput() content.Input {
	calc := quote.Estimate(customer.Apartment{Rooms: 3, Area: 60, Floor: 2})
	return content.Input{
		Customer: &customer.Customer{Name: "Jürgen Weiß", Number: "K202507001", FromAddress: "Bahnhofstraße 5, Berlin"},
		Quote: &quote.Quote{
			Number: "AN-202507-001", Price: calc.Total(), Status: quote.StatusDraft, Calculation: &calc,
			Details: quote.Details{PackingRequested: true, HeavyItems: 1, Comment: "Klavier im 2. OG"},
		},
		IssuedAt:        time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC),
		ConfirmationURL: "https://umzug.example/quote-confirmation/abc",
	}
}

func TestGenerateQuote(t *testing.T) {
	g := New(company, "", zap.NewNop())

	res, err := g.GenerateQuote(quoteInput())
	require.NoError(t, err)

	assert.False(t, res.Degraded)
	assert.True(t, bytes.HasPrefix(res.PDF, []byte("%PDF-")))
	assert.Contains(t, string(res.PDF), "/Title (Angebot AN-202507-001)")
	assert.Contains(t, string(res.PDF), "/Count 1")
}

func TestGenerateQuote_GuardReturnsValidationError(t *testing.T) {
	g := New(company, "", zap.NewNop())
	in := quoteInput()
	in.Quote = nil

	res, err := g.GenerateQuote(in)
	assert.Nil(t, res.PDF)
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestGenerateQuote_FallsBackWhenFontsAreMissing(t *testing.T) {
	g := New(company, t.TempDir(), zap.NewNop())

	res, err := g.GenerateQuote(quoteInput())
	require.NoError(t, err)

	assert.True(t, res.Degraded)
	require.Error(t, res.Cause)
	assert.True(t, bytes.HasPrefix(res.PDF, []byte("%PDF-")))
	assert.Contains(t, string(res.PDF), "/Count 1")
}

func TestGenerateQuote_ManyServicesStillRender(t *testing.T) {
	g := New(company, "", zap.NewNop())
	in := quoteInput()
	in.Quote.Details = quote.Details{
		PackingRequested: true, FurnitureDisassembly: true, FurnitureAssembly: true, Cleaning: true,
		Clearance: true, PianoTransport: true, HeavyItems: 3, ParkingPermit: true, StorageDays: 10,
	}

	res, err := g.GenerateQuote(in)
	require.NoError(t, err)
	assert.False(t, res.Degraded)
}

func TestGenerateInvoice(t *testing.T) {
	g := New(company, "", zap.NewNop())
	issued := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)

	res, err := g.GenerateInvoice(content.InvoiceInput{
		Customer: &customer.Customer{Name: "Max Mueller"},
		Invoice: &invoice.Invoice{
			Number: "R202507001", Gross: 1380, IssuedAt: issued, DueDate: issued.AddDate(0, 0, 14),
			Items: []invoice.Item{{Description: "Umzug", Amount: 1380}}, Status: invoice.StatusOpen,
		},
	})
	require.NoError(t, err)
	assert.False(t, res.Degraded)
	assert.Contains(t, string(res.PDF), "/Title (Rechnung R202507001)")
}
