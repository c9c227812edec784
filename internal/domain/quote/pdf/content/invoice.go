package content

import (
	"fmt"

	"umzugsbuero/backend/internal/domain/customer"
	"umzugsbuero/backend/internal/domain/invoice"
	"umzugsbuero/backend/internal/domain/money"
	"umzugsbuero/backend/internal/domain/quote/pdf/layout"
	apperrors "umzugsbuero/backend/internal/errors"
)

type InvoiceInput struct {
	Company  Company
	Customer *customer.Customer
	Invoice  *invoice.Invoice
}

func AssembleInvoice(in InvoiceInput) ([]layout.Block, error) {
	if in.Customer == nil || in.Invoice == nil {
		return nil, apperrors.NewValidationError("cannot build document", apperrors.ValidationDetail{
			Field:   "invoice",
			Message: "customer and invoice are required",
		})
	}
	c, inv := in.Customer, in.Invoice

	rows := make([][]string, 0, len(inv.Items)+3)
	for _, it := range inv.Items {
		rows = append(rows, []string{it.Description, money.FormatEUR(it.Amount)})
	}
	rows = append(rows, totals(inv.Gross)...)

	blocks := letterhead(in.Company)
	blocks = append(blocks,
		layout.Heading{Text: "Rechnung " + inv.Number, Rule: true},
		layout.KeyValue{Rows: []layout.Pair{
			{Label: "Rechnungsnummer", Value: inv.Number},
			{Label: "Rechnungsdatum", Value: inv.IssuedAt.Format(dateLayout)},
			{Label: "Fällig am", Value: inv.DueDate.Format(dateLayout)},
			{Label: "Kundennummer", Value: c.Number},
		}, SpaceAfter: 3},
		layout.KeyValue{Title: "Rechnungsempfänger", Rows: []layout.Pair{
			{Label: "Name", Value: c.Name},
			{Label: "Anschrift", Value: c.ToAddress},
			{Label: "E-Mail", Value: c.Email},
		}, SpaceAfter: 4},
		layout.Table{
			Columns:    []layout.Column{{Header: "Leistung"}, {Header: "Betrag", Width: 40, Align: "R"}},
			Rows:       rows,
			Emphasis:   3,
			SpaceAfter: 4,
		},
		layout.Paragraph{Text: paymentNote(in.Company, inv), SpaceAfter: 3},
	)
	return blocks, nil
}

func paymentNote(co Company, inv *invoice.Invoice) string {
	if inv.Status == invoice.StatusPaid && inv.PaidAt != nil {
		return fmt.Sprintf("Betrag dankend erhalten am %s.", inv.PaidAt.Format(dateLayout))
	}
	note := fmt.Sprintf("Bitte überweisen Sie den Gesamtbetrag bis zum %s unter Angabe der Rechnungsnummer %s.",
		inv.DueDate.Format(dateLayout), inv.Number)
	if account := joinNonEmpty(" · ", co.Bank, prefixed("IBAN ", co.IBAN), prefixed("BIC ", co.BIC)); account != "" {
		note += "\nBankverbindung: " + account
	}
	return note
}
