package quote

import (
	"fmt"
	"time"

	apperrors "umzugsbuero/backend/internal/errors"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusConfirmed Status = "confirmed"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusInvoiced  Status = "invoiced"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusConfirmed, StatusAccepted, StatusRejected, StatusInvoiced:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusInvoiced
}

// Editable reports whether price, details and calculation may still change.
func (s Status) Editable() bool {
	return s == StatusDraft || s == StatusSent
}

type Action string

const (
	ActionSend    Action = "send"
	ActionConfirm Action = "confirm"
	ActionAccept  Action = "accept"
	ActionReject  Action = "reject"
	ActionInvoice Action = "invoice"
)

var transitions = map[Action]struct {
	from []Status
	to   Status
}{
	ActionSend:    {from: []Status{StatusDraft}, to: StatusSent},
	ActionConfirm: {from: []Status{StatusSent}, to: StatusConfirmed},
	ActionAccept:  {from: []Status{StatusSent, StatusConfirmed}, to: StatusAccepted},
	ActionReject:  {from: []Status{StatusDraft, StatusSent, StatusConfirmed}, to: StatusRejected},
	ActionInvoice: {from: []Status{StatusConfirmed, StatusAccepted}, to: StatusInvoiced},
}

// Transition returns the status reached by applying a to a quote in status
// from, or a ConflictError when the action is not allowed there.
func Transition(from Status, a Action) (Status, error) {
	t, ok := transitions[a]
	if !ok {
		return from, fmt.Errorf("unknown quote action %q", a)
	}
	for _, s := range t.from {
		if s == from {
			return t.to, nil
		}
	}
	return from, apperrors.NewConflictError(fmt.Sprintf("cannot %s a quote in status %s", a, from))
}

// Details holds the optional services. Each truthy or non-zero field adds one
// line to the included-services list of the quote document.
type Details struct {
	PackingRequested     bool   `json:"packingRequested"`
	FurnitureDisassembly bool   `json:"furnitureDisassembly"`
	FurnitureAssembly    bool   `json:"furnitureAssembly"`
	Cleaning             bool   `json:"cleaning"`
	Clearance            bool   `json:"clearance"`
	PianoTransport       bool   `json:"pianoTransport"`
	HeavyItems           int    `json:"heavyItems"`
	ParkingPermit        bool   `json:"parkingPermit"`
	StorageDays          int    `json:"storageDays"`
	Comment              string `json:"comment"`
}

type Line struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

type Calculation struct {
	Lines []Line `json:"lines"`
}

func (c Calculation) Total() float64 {
	var sum float64
	for _, l := range c.Lines {
		sum += l.Amount
	}
	return sum
}

type Quote struct {
	ID                    string       `json:"id"`
	CustomerID            string       `json:"customerId"`
	Number                string       `json:"number"`
	Price                 float64      `json:"price"`
	Status                Status       `json:"status"`
	Details               Details      `json:"details"`
	Calculation           *Calculation `json:"calculation,omitempty"`
	Payment               *PaymentInfo `json:"payment,omitempty"`
	ConfirmationTokenHash string       `json:"-"`
	CreatedAt             time.Time    `json:"createdAt"`
	UpdatedAt             time.Time    `json:"updatedAt"`
}

// FormatNumber renders the quote number AN-{yyyy}{mm}-{nnn}.
func FormatNumber(year int, month time.Month, seq int64) string {
	return fmt.Sprintf("AN-%04d%02d-%03d", year, int(month), seq)
}

func (q Quote) Validate() error {
	var details []apperrors.ValidationDetail
	if q.CustomerID == "" {
		details = append(details, apperrors.ValidationDetail{Field: "customerId", Message: "customerId is required"})
	}
	if q.Price < 0 {
		details = append(details, apperrors.ValidationDetail{Field: "price", Message: "price must be non-negative"})
	}
	if q.Details.HeavyItems < 0 || q.Details.StorageDays < 0 {
		details = append(details, apperrors.ValidationDetail{Field: "details", Message: "counts must be non-negative"})
	}
	if !q.Status.Valid() {
		details = append(details, apperrors.ValidationDetail{Field: "status", Message: "unknown status"})
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid quote", details...)
	}
	return nil
}

// Patch is a partial update of a quote. It deliberately has no customer
// field: the owning customer is passed separately to every update and is
// part of the update predicate.
type Patch struct {
	Price                 *float64     `json:"price,omitempty"`
	Details               *Details     `json:"details,omitempty"`
	Calculation           *Calculation `json:"calculation,omitempty"`
	Status                *Status      `json:"status,omitempty"`
	Payment               *PaymentInfo `json:"payment,omitempty"`
	ConfirmationTokenHash *string      `json:"-"`
}

func (p Patch) Empty() bool {
	return p.Price == nil && p.Details == nil && p.Calculation == nil &&
		p.Status == nil && p.Payment == nil && p.ConfirmationTokenHash == nil
}

func (p Patch) Apply(q *Quote, now time.Time) {
	if p.Price != nil {
		q.Price = *p.Price
	}
	if p.Details != nil {
		q.Details = *p.Details
	}
	if p.Calculation != nil {
		c := *p.Calculation
		q.Calculation = &c
	}
	if p.Status != nil {
		q.Status = *p.Status
	}
	if p.Payment != nil {
		pi := *p.Payment
		q.Payment = &pi
	}
	if p.ConfirmationTokenHash != nil {
		q.ConfirmationTokenHash = *p.ConfirmationTokenHash
	}
	q.UpdatedAt = now
}
