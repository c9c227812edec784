package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"umzugsbuero/backend/internal/domain/calendar"
	"umzugsbuero/backend/internal/domain/customer"
	"umzugsbuero/backend/internal/domain/quote"
)

// CalendarImporter turns a calendar export into customers with draft
// quotes.
type CalendarImporter struct {
	deps Deps
}

func NewCalendarImporter(deps Deps) *CalendarImporter {
	return &CalendarImporter{deps: deps.withDefaults()}
}

// Import processes the export row by row. Only a malformed export as a
// whole fails; everything else is reported per row. Events starting
// before since are ignored when since is set.
func (s *CalendarImporter) Import(ctx context.Context, csvData string, since *time.Time) (calendar.Report, error) {
	events, rowErrs, err := calendar.Parse(csvData, s.deps.Settings.Location)
	if err != nil {
		return calendar.Report{}, err
	}
	if since != nil {
		y, m, d := since.Date()
		events = calendar.FilterSince(events, time.Date(y, m, d, 0, 0, 0, 0, s.deps.Settings.Location))
	}

	rep := calendar.Report{
		Success:           true,
		TotalEvents:       len(events),
		ImportedCustomers: []calendar.ImportedCustomer{},
		ErrorDetails:      []calendar.RowError{},
	}
	for _, re := range rowErrs {
		rep.Fail(re.Row, re.Message)
	}

	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		draft, ok := calendar.BuildDraft(ev)
		if !ok {
			rep.Skipped++
			continue
		}
		imported, dup, err := s.importOne(ctx, draft)
		switch {
		case err != nil:
			rep.Fail(ev.Row, err.Error())
			s.deps.Logger.Warn("calendar row failed", zap.Int("row", ev.Row), zap.Error(err))
		case dup:
			rep.Duplicates++
		default:
			rep.Imported++
			rep.ImportedCustomers = append(rep.ImportedCustomers, imported)
		}
	}

	s.deps.Logger.Info("calendar import finished",
		zap.Int("totalEvents", rep.TotalEvents),
		zap.Int("imported", rep.Imported),
		zap.Int("skipped", rep.Skipped),
		zap.Int("duplicates", rep.Duplicates),
		zap.Int("errors", rep.Errors),
	)
	return rep, nil
}

func (s *CalendarImporter) importOne(ctx context.Context, d calendar.Draft) (calendar.ImportedCustomer, bool, error) {
	c := d.Customer
	if err := c.Validate(); err != nil {
		return calendar.ImportedCustomer{}, false, err
	}
	existing, err := s.deps.Store.Customers.FindDuplicate(ctx, c.DuplicateQuery())
	if err != nil {
		return calendar.ImportedCustomer{}, false, err
	}
	if existing != nil {
		return calendar.ImportedCustomer{}, true, nil
	}

	now := s.deps.now()
	c.ID = s.deps.NewID()
	c.CreatedAt, c.UpdatedAt = now, now
	if c.Number, err = s.deps.nextNumber(ctx, ScopeCustomer, now, customer.FormatNumber); err != nil {
		return calendar.ImportedCustomer{}, false, err
	}
	if err := s.deps.Store.Customers.Create(ctx, c); err != nil {
		return calendar.ImportedCustomer{}, false, fmt.Errorf("creating customer: %w", err)
	}

	number, err := s.deps.nextNumber(ctx, ScopeQuote, now, quote.FormatNumber)
	if err != nil {
		return calendar.ImportedCustomer{}, false, err
	}
	calc := quote.Estimate(c.Apartment)
	q := quote.Quote{
		ID:          s.deps.NewID(),
		CustomerID:  c.ID,
		Number:      number,
		Price:       calc.Total(),
		Status:      quote.StatusDraft,
		Calculation: &calc,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.deps.Store.Quotes.Create(ctx, q); err != nil {
		return calendar.ImportedCustomer{}, false, fmt.Errorf("creating draft quote for %s: %w", c.Number, err)
	}
	return calendar.ImportedCustomer{ID: c.ID, Number: c.Number, Name: c.Name, QuoteID: q.ID, Price: q.Price}, false, nil
}
