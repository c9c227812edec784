package invoice

import (
	"fmt"
	"time"

	"umzugsbuero/backend/internal/domain/quote"
	apperrors "umzugsbuero/backend/internal/errors"
)

type Status string

const (
	StatusOpen      Status = "open"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

type Item struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

type Invoice struct {
	ID         string     `json:"id"`
	Number     string     `json:"number"`
	QuoteID    string     `json:"quoteId"`
	CustomerID string     `json:"customerId"`
	Net        float64    `json:"net"`
	Tax        float64    `json:"tax"`
	Gross      float64    `json:"gross"`
	Items      []Item     `json:"items"`
	IssuedAt   time.Time  `json:"issuedAt"`
	DueDate    time.Time  `json:"dueDate"`
	PaidAt     *time.Time `json:"paidAt,omitempty"`
	Status     Status     `json:"status"`
}

// FormatNumber renders the invoice number R{yyyy}{mm}{nnn}.
func FormatNumber(year int, month time.Month, seq int64) string {
	return fmt.Sprintf("R%04d%02d%03d", year, int(month), seq)
}

// FromQuote converts a confirmed or accepted quote into an invoice. Line
// items come from the quote's calculation when it adds up to the price;
// otherwise the invoice carries a single line over the full amount.
func FromQuote(q quote.Quote, id, number string, issuedAt time.Time, paymentDays int) (Invoice, error) {
	if q.Status != quote.StatusConfirmed && q.Status != quote.StatusAccepted {
		return Invoice{}, apperrors.NewConflictError(fmt.Sprintf("quote in status %s cannot be invoiced", q.Status))
	}
	if q.Price <= 0 {
		return Invoice{}, apperrors.NewValidationError("quote has no price", apperrors.ValidationDetail{
			Field:   "price",
			Message: "price must be positive to invoice",
		})
	}

	net, tax := quote.SplitVAT(q.Price)
	inv := Invoice{
		ID:         id,
		Number:     number,
		QuoteID:    q.ID,
		CustomerID: q.CustomerID,
		Net:        net,
		Tax:        tax,
		Gross:      q.Price,
		IssuedAt:   issuedAt,
		DueDate:    issuedAt.AddDate(0, 0, paymentDays),
		Status:     StatusOpen,
	}

	if q.Calculation != nil && len(q.Calculation.Lines) > 0 && almostEqual(q.Calculation.Total(), q.Price) {
		for _, l := range q.Calculation.Lines {
			if l.Amount == 0 {
				continue
			}
			inv.Items = append(inv.Items, Item{Description: l.Description, Amount: l.Amount})
		}
	} else {
		inv.Items = []Item{{Description: fmt.Sprintf("Umzugsleistung laut Angebot %s", q.Number), Amount: q.Price}}
	}
	return inv, nil
}

func (inv Invoice) Overdue(now time.Time) bool {
	return inv.Status == StatusOpen && now.After(inv.DueDate)
}

func almostEqual(a, b float64) bool {
	d := a - b
	return d < 0.005 && d > -0.005
}
