// Package service holds the use cases of the back office. Each service
// depends on the narrow interfaces in ports.go and is wired in app.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Settings are the business parameters shared by the services.
type Settings struct {
	PublicBaseURL      string
	TokenTTL           time.Duration
	InvoicePaymentDays int
	OfficeEmail        string
	CompanyName        string
	Location           *time.Location
}

// Deps bundles what every service needs. Clock and NewID default to
// time.Now and uuid.NewString.
type Deps struct {
	Store     Store
	Documents Documents
	Signer    SignatureRenderer
	Mailer    Mailer
	Settings  Settings
	Logger    *zap.Logger
	Clock     func() time.Time
	NewID     func() string
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Settings.Location == nil {
		d.Settings.Location = time.UTC
	}
	if d.Settings.TokenTTL <= 0 {
		d.Settings.TokenTTL = 14 * 24 * time.Hour
	}
	if d.Settings.InvoicePaymentDays <= 0 {
		d.Settings.InvoicePaymentDays = 14
	}
	return d
}

func (d Deps) now() time.Time {
	return d.Clock().In(d.Settings.Location)
}

// Counter scopes.
const (
	ScopeCustomer = "customer"
	ScopeQuote    = "quote"
	ScopeInvoice  = "invoice"
)

// nextNumber mints a sequential number for the month of now.
func (d Deps) nextNumber(ctx context.Context, scope string, now time.Time, format func(int, time.Month, int64) string) (string, error) {
	seq, err := d.Store.Counter.Next(ctx, scope, now.Year(), now.Month())
	if err != nil {
		return "", fmt.Errorf("next %s number: %w", scope, err)
	}
	return format(now.Year(), now.Month(), seq), nil
}

// Outcome reports a best-effort side effect. The primary action succeeded
// regardless of Sent.
type Outcome struct {
	Sent   bool   `json:"sent"`
	Reason string `json:"reason,omitempty"`
}

func outcomeOf(err error) Outcome {
	if err != nil {
		return Outcome{Reason: err.Error()}
	}
	return Outcome{Sent: true}
}
