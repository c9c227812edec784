package calendar

import (
	"umzugsbuero/backend/internal/domain/customer"
)

// Draft is the customer a calendar event describes, before it gets an id
// and number.
type Draft struct {
	Event    Event
	Customer customer.Customer
}

// BuildDraft combines the extracted fields with the event columns. The
// event location stands in for the pickup address when the text names
// none. ok is false when no customer name could be resolved.
func BuildDraft(ev Event) (Draft, bool) {
	rec := ExtractFields(ev.Text())
	if rec.Name == "" {
		return Draft{}, false
	}
	from := rec.FromAddress
	if from == "" {
		from = ev.Location
	}
	move := customer.DateOnly(ev.Start)
	c := customer.Customer{
		Name:        rec.Name,
		Phone:       rec.Phone,
		Email:       rec.Email,
		FromAddress: from,
		ToAddress:   rec.ToAddress,
		Apartment:   rec.Apartment(),
		MoveDate:    &move,
		Notes:       ev.Description,
		Source:      customer.SourceCalendar,
	}
	c.Normalize()
	return Draft{Event: ev, Customer: c}, true
}

type ImportedCustomer struct {
	ID      string  `json:"id"`
	Number  string  `json:"number"`
	Name    string  `json:"name"`
	QuoteID string  `json:"quoteId"`
	Price   float64 `json:"price"`
}

// Report summarises an import. Per-row failures are counted and listed;
// they never abort the batch.
type Report struct {
	Success           bool               `json:"success"`
	TotalEvents       int                `json:"totalEvents"`
	Imported          int                `json:"imported"`
	Skipped           int                `json:"skipped"`
	Errors            int                `json:"errors"`
	Duplicates        int                `json:"duplicates"`
	ImportedCustomers []ImportedCustomer `json:"importedCustomers"`
	ErrorDetails      []RowError         `json:"errorDetails"`
}

func (r *Report) Fail(row int, msg string) {
	r.Errors++
	r.ErrorDetails = append(r.ErrorDetails, RowError{Row: row, Message: msg})
}
