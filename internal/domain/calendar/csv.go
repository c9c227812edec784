// Package calendar turns calendar exports (Outlook, Google, Apple) into
// customer records. Parsing and field extraction are pure; persistence is
// done by the caller.
package calendar

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	apperrors "umzugsbuero/backend/internal/errors"
)

// Field is one of the columns the importer understands.
type Field string

const (
	FieldSubject     Field = "subject"
	FieldStartDate   Field = "startDate"
	FieldLocation    Field = "location"
	FieldDescription Field = "description"
)

// synonyms maps lower-cased header names to fields. Exports differ by
// vendor and UI language.
var synonyms = map[string]Field{
	"subject":      FieldSubject,
	"betreff":      FieldSubject,
	"titel":        FieldSubject,
	"title":        FieldSubject,
	"start date":   FieldStartDate,
	"startdatum":   FieldStartDate,
	"beginnt am":   FieldStartDate,
	"start":        FieldStartDate,
	"datum":        FieldStartDate,
	"location":     FieldLocation,
	"ort":          FieldLocation,
	"adresse":      FieldLocation,
	"description":  FieldDescription,
	"beschreibung": FieldDescription,
	"notizen":      FieldDescription,
	"notes":        FieldDescription,
}

// Event is one data row of the export.
type Event struct {
	Row         int
	Subject     string
	StartRaw    string
	Start       time.Time
	Location    string
	Description string
}

// Text joins the free-text columns in the order extraction expects: the
// subject line first.
func (e Event) Text() string {
	return joinLines(e.Subject, e.Location, e.Description)
}

// RowError reports a row that could not be read.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// DetectDelimiter picks ';' or ',' by counting them in the header line.
func DetectDelimiter(data string) rune {
	header, _, _ := strings.Cut(data, "\n")
	if strings.Count(header, ";") > strings.Count(header, ",") {
		return ';'
	}
	return ','
}

// MapHeader resolves header cells to column indices. The first column that
// matches a field wins.
func MapHeader(header []string) map[Field]int {
	cols := make(map[Field]int)
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if f, ok := synonyms[name]; ok {
			if _, seen := cols[f]; !seen {
				cols[f] = i
			}
		}
	}
	return cols
}

// Parse reads the export. Rows with an unreadable date are returned as
// RowErrors and do not stop the parse; a missing header or missing
// subject/start columns is a ValidationError.
func Parse(data string, loc *time.Location) ([]Event, []RowError, error) {
	data = strings.ReplaceAll(data, "\r\n", "\n")
	if strings.TrimSpace(data) == "" {
		return nil, nil, apperrors.NewValidationError("invalid calendar export",
			apperrors.ValidationDetail{Field: "csvData", Message: "csvData is empty"})
	}

	reader := csv.NewReader(strings.NewReader(data))
	reader.Comma = DetectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("reading CSV header: %w", err)
	}
	cols := MapHeader(header)

	var details []apperrors.ValidationDetail
	for _, f := range []Field{FieldSubject, FieldStartDate} {
		if _, ok := cols[f]; !ok {
			details = append(details, apperrors.ValidationDetail{Field: "csvData", Message: fmt.Sprintf("missing required column: %s", f)})
		}
	}
	if len(details) > 0 {
		return nil, nil, apperrors.NewValidationError("invalid calendar export", details...)
	}

	var (
		events  []Event
		rowErrs []RowError
	)
	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: row, Message: err.Error()})
			continue
		}
		if blank(record) {
			continue
		}

		ev := Event{
			Row:         row,
			Subject:     cell(record, cols, FieldSubject),
			StartRaw:    cell(record, cols, FieldStartDate),
			Location:    cell(record, cols, FieldLocation),
			Description: cell(record, cols, FieldDescription),
		}
		start, err := ParseDate(ev.StartRaw, loc)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: row, Message: err.Error()})
			continue
		}
		ev.Start = start
		events = append(events, ev)
	}
	return events, rowErrs, nil
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"2.1.2006 15:04",
	"02.01.2006",
	"2.1.2006",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04",
	"1/2/2006",
}

// ParseDate accepts ISO, German and US calendar date formats.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised start date %q", raw)
}

// FilterSince drops events that start before the cutoff day.
func FilterSince(events []Event, since time.Time) []Event {
	if since.IsZero() {
		return events
	}
	y, m, d := since.Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, since.Location())
	out := events[:0:0]
	for _, ev := range events {
		if !ev.Start.Before(cutoff) {
			out = append(out, ev)
		}
	}
	return out
}

func cell(record []string, cols map[Field]int, f Field) string {
	i, ok := cols[f]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func joinLines(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}
