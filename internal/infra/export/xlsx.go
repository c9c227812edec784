// Package export writes the customer and quote overview as an XLSX
// workbook for the office.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"umzugsbuero/backend/internal/domain/customer"
	"umzugsbuero/backend/internal/domain/quote"
)

const (
	SheetCustomers = "Kunden"
	SheetQuotes    = "Angebote"
)

var (
	customerHeader = []any{"Kundennummer", "Name", "Telefon", "E-Mail", "Auszugsadresse", "Einzugsadresse", "Zimmer", "Fläche m²", "Etage", "Aufzug", "Umzugstermin", "Quelle", "Angelegt"}
	quoteHeader    = []any{"Angebotsnummer", "Kundennummer", "Kunde", "Status", "Preis brutto", "Zahlung", "Angelegt", "Geändert"}
)

// Workbook builds the export. Quotes whose customer is not in customers
// are still listed, without customer columns.
func Workbook(customers []customer.Customer, quotes []quote.Quote, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(SheetCustomers)
	if err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if _, err := f.NewSheet(SheetQuotes); err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("deleting default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}
	euro := "#,##0.00 €"
	priceStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &euro})
	if err != nil {
		return nil, fmt.Errorf("creating price style: %w", err)
	}

	byID := make(map[string]customer.Customer, len(customers))
	for i, c := range customers {
		byID[c.ID] = c
		if err := setRow(f, SheetCustomers, i+2, customerRow(c, loc)); err != nil {
			return nil, err
		}
	}
	for i, q := range quotes {
		if err := setRow(f, SheetQuotes, i+2, quoteRow(q, byID[q.CustomerID], loc)); err != nil {
			return nil, err
		}
	}

	sheets := []struct {
		name   string
		header []any
		rows   int
	}{
		{SheetCustomers, customerHeader, len(customers)},
		{SheetQuotes, quoteHeader, len(quotes)},
	}
	for _, s := range sheets {
		if err := setRow(f, s.name, 1, s.header); err != nil {
			return nil, err
		}
		last, _ := excelize.CoordinatesToCellName(len(s.header), 1)
		if err := f.SetCellStyle(s.name, "A1", last, headerStyle); err != nil {
			return nil, err
		}
		lastCol, _ := excelize.ColumnNumberToName(len(s.header))
		if err := f.SetColWidth(s.name, "A", lastCol, 18); err != nil {
			return nil, err
		}
		if err := f.SetPanes(s.name, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return nil, err
		}
	}
	if len(quotes) > 0 {
		if err := f.SetCellStyle(SheetQuotes, "E2", fmt.Sprintf("E%d", len(quotes)+1), priceStyle); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}

func customerRow(c customer.Customer, loc *time.Location) []any {
	move := ""
	if c.MoveDate != nil {
		move = c.MoveDate.Format("02.01.2006")
	}
	elevator := "nein"
	if c.Apartment.Elevator {
		elevator = "ja"
	}
	return []any{
		c.Number, c.Name, c.Phone, c.Email, c.FromAddress, c.ToAddress,
		c.Apartment.Rooms, c.Apartment.Area, c.Apartment.Floor, elevator,
		move, string(c.Source), c.CreatedAt.In(loc).Format("02.01.2006 15:04"),
	}
}

func quoteRow(q quote.Quote, c customer.Customer, loc *time.Location) []any {
	payment := ""
	if q.Payment != nil {
		payment = string(q.Payment.Status)
	}
	return []any{
		q.Number, c.Number, c.Name, string(q.Status), q.Price, payment,
		q.CreatedAt.In(loc).Format("02.01.2006 15:04"),
		q.UpdatedAt.In(loc).Format("02.01.2006 15:04"),
	}
}
