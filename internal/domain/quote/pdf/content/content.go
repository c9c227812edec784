// Package content turns customers, quotes and invoices into the ordered
// blocks the layout engine places.
package content

import (
	"fmt"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"

	"umzugsbuero/backend/internal/domain/customer"
	"umzugsbuero/backend/internal/domain/money"
	"umzugsbuero/backend/internal/domain/quote"
	"umzugsbuero/backend/internal/domain/quote/pdf/layout"
	apperrors "umzugsbuero/backend/internal/errors"
)

const dateLayout = "02.01.2006"

// Company is the letterhead printed on every document.
type Company struct {
	Name     string
	Street   string
	City     string
	Phone    string
	Email    string
	Web      string
	Bank     string
	IBAN     string
	BIC      string
	TaxID    string
	Director string
}

type Input struct {
	Company         Company
	Customer        *customer.Customer
	Quote           *quote.Quote
	IssuedAt        time.Time
	ConfirmationURL string
}

// Lines that every quote carries regardless of the booked options.
const (
	TransportLine = "Transport des Umzugsguts mit Fahrzeug und Umzugspersonal"
	LiabilityLine = "Haftung nach § 451e HGB (620 € je m³ Umzugsgut)"
)

// IncludedServices lists one line per booked option in a fixed order,
// followed by the transport line and the liability clause.
func IncludedServices(d quote.Details) []string {
	var items []string
	if d.PackingRequested {
		items = append(items, "Verpackungsservice (Ein- und Auspacken)")
	}
	if d.FurnitureDisassembly {
		items = append(items, "Möbeldemontage")
	}
	if d.FurnitureAssembly {
		items = append(items, "Möbelmontage")
	}
	if d.Cleaning {
		items = append(items, "Endreinigung der alten Wohnung")
	}
	if d.Clearance {
		items = append(items, "Entrümpelung")
	}
	if d.PianoTransport {
		items = append(items, "Klaviertransport")
	}
	if d.HeavyItems > 0 {
		items = append(items, fmt.Sprintf("Schwerlasttransport (%d Teile)", d.HeavyItems))
	}
	if d.ParkingPermit {
		items = append(items, "Halteverbotszone beantragen und einrichten")
	}
	if d.StorageDays > 0 {
		items = append(items, fmt.Sprintf("Zwischenlagerung (%d Tage)", d.StorageDays))
	}
	return append(items, TransportLine, LiabilityLine)
}

// AssembleQuote builds the quote document. It fails before producing any
// block when the customer or the quote is missing.
func AssembleQuote(in Input) ([]layout.Block, error) {
	if err := guard(in.Customer, in.Quote); err != nil {
		return nil, err
	}
	c, q := in.Customer, in.Quote

	blocks := letterhead(in.Company)
	blocks = append(blocks,
		layout.Heading{Text: "Angebot " + q.Number, Rule: true},
		layout.KeyValue{Rows: []layout.Pair{
			{Label: "Angebotsnummer", Value: q.Number},
			{Label: "Datum", Value: in.IssuedAt.Format(dateLayout)},
			{Label: "Kundennummer", Value: c.Number},
		}, SpaceAfter: 3},
		customerBlock(c),
		layout.ServiceList{Title: "Leistungsumfang", Items: IncludedServices(q.Details), MaxRows: 6},
		layout.Table{
			Columns:    []layout.Column{{Header: "Position"}, {Header: "Betrag", Width: 40, Align: "R"}},
			Rows:       pricingRows(q),
			Emphasis:   3,
			SpaceAfter: 4,
		},
	)

	if comment := strings.TrimSpace(q.Details.Comment); comment != "" {
		blocks = append(blocks, layout.Paragraph{Text: "Anmerkungen: " + comment, SpaceAfter: 3})
	}
	if in.ConfirmationURL != "" {
		blocks = append(blocks, confirmationBlock(in.ConfirmationURL))
	}
	blocks = append(blocks,
		layout.Paragraph{
			Text:       "Dieses Angebot ist 14 Tage gültig. Alle Preise verstehen sich inklusive der gesetzlichen Mehrwertsteuer.",
			Font:       layout.Small,
			SpaceAfter: 2,
		},
		layout.Signatures{
			CustomerLabel: "Ort, Datum, Unterschrift Auftraggeber",
			CompanyLabel:  "Unterschrift " + in.Company.Name,
		},
	)
	return blocks, nil
}

func guard(c *customer.Customer, q *quote.Quote) error {
	var details []apperrors.ValidationDetail
	if c == nil {
		details = append(details, apperrors.ValidationDetail{Field: "customer", Message: "customer is required"})
	}
	if q == nil {
		details = append(details, apperrors.ValidationDetail{Field: "quote", Message: "quote is required"})
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("cannot build document", details...)
	}
	return nil
}

func letterhead(co Company) []layout.Block {
	address := joinNonEmpty(" · ", co.Street, co.City, co.Phone, co.Email)
	return []layout.Block{
		layout.Heading{Text: co.Name, Size: 13},
		layout.Paragraph{Text: address, Font: layout.Small, SpaceAfter: 4},
	}
}

func customerBlock(c *customer.Customer) layout.KeyValue {
	rows := []layout.Pair{{Label: "Name", Value: c.Name}}
	for _, p := range []layout.Pair{
		{Label: "Telefon", Value: c.Phone},
		{Label: "E-Mail", Value: c.Email},
		{Label: "Auszugsadresse", Value: c.FromAddress},
		{Label: "Einzugsadresse", Value: c.ToAddress},
	} {
		if strings.TrimSpace(p.Value) != "" {
			rows = append(rows, p)
		}
	}
	if c.MoveDate != nil {
		rows = append(rows, layout.Pair{Label: "Umzugstermin", Value: c.MoveDate.Format(dateLayout)})
	}
	rows = append(rows, layout.Pair{Label: "Wohnung", Value: ApartmentSummary(c.Apartment)})
	return layout.KeyValue{Title: "Auftraggeber", Rows: rows, SpaceAfter: 4}
}

// ApartmentSummary renders "3 Zimmer, 60 m², 2. OG, ohne Aufzug".
func ApartmentSummary(a customer.Apartment) string {
	floor := "EG"
	if a.Floor > 0 {
		floor = fmt.Sprintf("%d. OG", a.Floor)
	} else if a.Floor < 0 {
		floor = fmt.Sprintf("%d. UG", -a.Floor)
	}
	elevator := "ohne Aufzug"
	if a.Elevator {
		elevator = "mit Aufzug"
	}
	return fmt.Sprintf("%s Zimmer, %s m², %s, %s", money.FormatNumber(a.Rooms), money.FormatNumber(a.Area), floor, elevator)
}

// pricingRows lists the non-zero calculation lines, an adjustment when they
// do not add up to the quoted price, and the net/VAT/gross totals.
func pricingRows(q *quote.Quote) [][]string {
	var rows [][]string
	if q.Calculation != nil && len(q.Calculation.Lines) > 0 {
		for _, l := range q.Calculation.Lines {
			if l.Amount == 0 {
				continue
			}
			rows = append(rows, []string{l.Description, money.FormatEUR(l.Amount)})
		}
		if diff := q.Price - q.Calculation.Total(); money.Round(diff) != 0 {
			label := "Nachlass"
			if diff > 0 {
				label = "Zuschlag"
			}
			rows = append(rows, []string{label, money.FormatEUR(diff)})
		}
	} else {
		rows = append(rows, []string{"Umzugsleistung pauschal", money.FormatEUR(q.Price)})
	}
	return append(rows, totals(q.Price)...)
}

func totals(gross float64) [][]string {
	net, vat := quote.SplitVAT(gross)
	return [][]string{
		{"Nettobetrag", money.FormatEUR(net)},
		{"zzgl. 19 % MwSt.", money.FormatEUR(vat)},
		{"Gesamtbetrag", money.FormatEUR(gross)},
	}
}

func confirmationBlock(url string) layout.Block {
	caption := "Angebot online ansehen und bestätigen:\n" + url
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		return layout.Paragraph{Text: caption, Font: layout.Small, SpaceAfter: 3}
	}
	return layout.Image{Name: "confirmation-qr", Data: png, Size: 24, Caption: caption}
}

// FooterLines is the company block printed at the bottom of every page.
func FooterLines(co Company) []string {
	lines := []string{
		joinNonEmpty(" · ", co.Name, co.Street, co.City, prefixed("Geschäftsführer: ", co.Director)),
		joinNonEmpty(" · ", prefixed("Tel. ", co.Phone), co.Email, co.Web),
		joinNonEmpty(" · ", co.Bank, prefixed("IBAN ", co.IBAN), prefixed("BIC ", co.BIC), prefixed("St.-Nr. ", co.TaxID)),
	}
	out := lines[:0]
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func prefixed(prefix, v string) string {
	if v == "" {
		return ""
	}
	return prefix + v
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
