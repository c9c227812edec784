package content

import (
	"strings"
	"time"

	"umzugsbuero/backend/internal/domain/money"
	"umzugsbuero/backend/internal/domain/quote/pdf/layout"
)

// FallbackInput carries only what the minimal document shows. Building it
// never fails.
type FallbackInput struct {
	Title   string
	Company Company
	Name    string
	Price   float64
	Date    time.Time
	Comment string
}

// QuoteFallback extracts the fallback fields from a quote input, tolerating
// missing records.
func QuoteFallback(in Input) FallbackInput {
	fb := FallbackInput{Title: "Angebot", Company: in.Company, Date: in.IssuedAt}
	if in.Customer != nil {
		fb.Name = in.Customer.Name
	}
	if in.Quote != nil {
		fb.Title = "Angebot " + in.Quote.Number
		fb.Price = in.Quote.Price
		fb.Comment = in.Quote.Details.Comment
	}
	return fb
}

func InvoiceFallback(in InvoiceInput) FallbackInput {
	fb := FallbackInput{Title: "Rechnung", Company: in.Company}
	if in.Customer != nil {
		fb.Name = in.Customer.Name
	}
	if in.Invoice != nil {
		fb.Title = "Rechnung " + in.Invoice.Number
		fb.Price = in.Invoice.Gross
		fb.Date = in.Invoice.IssuedAt
	}
	return fb
}

// Fallback is the simplified document emitted when full rendering fails.
func Fallback(in FallbackInput) []layout.Block {
	blocks := []layout.Block{
		layout.Heading{Text: in.Company.Name, Size: 13},
		layout.Heading{Text: in.Title, Rule: true},
		layout.KeyValue{Rows: []layout.Pair{
			{Label: "Name", Value: in.Name},
			{Label: "Betrag", Value: money.FormatEUR(in.Price)},
			{Label: "Datum", Value: in.Date.Format(dateLayout)},
		}, SpaceAfter: 4},
	}
	if c := strings.TrimSpace(in.Comment); c != "" {
		blocks = append(blocks, layout.Paragraph{Text: c, SpaceAfter: 4})
	}
	return append(blocks, layout.Paragraph{
		Text: "Vereinfachte Darstellung. Das vollständige Dokument erhalten Sie auf Anfrage.",
		Font: layout.Small,
	})
}
