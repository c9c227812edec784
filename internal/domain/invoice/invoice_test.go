package invoice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umzugsbuero/backend/internal/domain/quote"
	apperrors "umzugsbuero/backend/internal/errors"
)

var issued = time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

func TestFromQuote_UsesCalculationLines(t *testing.T) {
	q := quote.Quote{
		ID: "q1", CustomerID: "c1", Number: "AN-1", Price: 1380, Status: quote.StatusAccepted,
		Calculation: &quote.Calculation{Lines: []quote.Line{
			{Description: "Grundpreis", Amount: 450},
			{Description: "Zimmer", Amount: 450},
			{Description: "Fläche", Amount: 480},
			{Description: "Etage", Amount: 0},
		}},
	}

	inv, err := FromQuote(q, "i1", "R202507001", issued, 14)
	require.NoError(t, err)

	assert.Equal(t, "c1", inv.CustomerID)
	assert.Equal(t, "q1", inv.QuoteID)
	assert.Len(t, inv.Items, 3)
	assert.Equal(t, 1380.0, inv.Gross)
	assert.InDelta(t, 1380.0/1.19, inv.Net, 1e-9)
	assert.InDelta(t, inv.Gross, inv.Net+inv.Tax, 1e-9)
	assert.Equal(t, issued.AddDate(0, 0, 14), inv.DueDate)
	assert.Equal(t, StatusOpen, inv.Status)
}

func TestFromQuote_SingleLineWhenCalculationDiffers(t *testing.T) {
	q := quote.Quote{
		ID: "q1", Number: "AN-1", Price: 1500, Status: quote.StatusConfirmed,
		Calculation: &quote.Calculation{Lines: []quote.Line{{Description: "Grundpreis", Amount: 450}}},
	}

	inv, err := FromQuote(q, "i1", "R1", issued, 14)
	require.NoError(t, err)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, 1500.0, inv.Items[0].Amount)
	assert.Contains(t, inv.Items[0].Description, "AN-1")
}

func TestFromQuote_RejectsWrongStatus(t *testing.T) {
	_, err := FromQuote(quote.Quote{Price: 100, Status: quote.StatusDraft}, "i1", "R1", issued, 14)
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestFromQuote_RejectsZeroPrice(t *testing.T) {
	_, err := FromQuote(quote.Quote{Price: 0, Status: quote.StatusAccepted}, "i1", "R1", issued, 14)
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestInvoice_Overdue(t *testing.T) {
	inv := Invoice{Status: StatusOpen, DueDate: issued}
	assert.True(t, inv.Overdue(issued.Add(time.Hour)))
	assert.False(t, inv.Overdue(issued.Add(-time.Hour)))

	inv.Status = StatusPaid
	assert.False(t, inv.Overdue(issued.Add(time.Hour)))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "R202507003", FormatNumber(2025, time.July, 3))
}
