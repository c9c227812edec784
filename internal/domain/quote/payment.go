package quote

import (
	"time"

	apperrors "umzugsbuero/backend/internal/errors"
)

type PaymentMethod string

const (
	PaymentCard     PaymentMethod = "card"
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentOther    PaymentMethod = "other"
)

type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "unpaid"
	PaymentPending       PaymentStatus = "pending"
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
	PaymentPaid          PaymentStatus = "paid"
	PaymentPaidOnSite    PaymentStatus = "paid_on_site"
)

type PaymentInfo struct {
	Method        PaymentMethod `json:"method"`
	Status        PaymentStatus `json:"status"`
	Amount        float64       `json:"amount"`
	ConfirmedBy   string        `json:"confirmedBy,omitempty"`
	ReceiptNumber string        `json:"receiptNumber,omitempty"`
	RecordedAt    time.Time     `json:"recordedAt"`
}

func (p PaymentInfo) Validate() error {
	var details []apperrors.ValidationDetail
	switch p.Method {
	case PaymentCard, PaymentCash, PaymentTransfer, PaymentOther:
	default:
		details = append(details, apperrors.ValidationDetail{Field: "method", Message: "method must be card, cash, transfer or other"})
	}
	switch p.Status {
	case PaymentUnpaid, PaymentPending, PaymentPartiallyPaid, PaymentPaid, PaymentPaidOnSite:
	default:
		details = append(details, apperrors.ValidationDetail{Field: "status", Message: "unknown payment status"})
	}
	if p.Amount < 0 {
		details = append(details, apperrors.ValidationDetail{Field: "amount", Message: "amount must be non-negative"})
	}
	if (p.Status == PaymentPaid || p.Status == PaymentPaidOnSite) && p.ConfirmedBy == "" {
		details = append(details, apperrors.ValidationDetail{Field: "confirmedBy", Message: "a paid status needs the confirming staff member"})
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid payment info", details...)
	}
	return nil
}
