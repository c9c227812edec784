package customer

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	apperrors "umzugsbuero/backend/internal/errors"
)

type Source string

const (
	SourceManual   Source = "manual"
	SourceCalendar Source = "calendar"
)

type Apartment struct {
	Rooms    float64 `json:"rooms"`
	Area     float64 `json:"area"`
	Floor    int     `json:"floor"`
	Elevator bool    `json:"elevator"`
}

type Customer struct {
	ID          string     `json:"id"`
	Number      string     `json:"number"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email"`
	FromAddress string     `json:"fromAddress"`
	ToAddress   string     `json:"toAddress"`
	Apartment   Apartment  `json:"apartment"`
	MoveDate    *time.Time `json:"moveDate,omitempty"`
	Notes       string     `json:"notes"`
	Source      Source     `json:"source"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// DuplicateQuery describes the identity of a prospective customer. A stored
// customer is a duplicate when it shares the email, or the phone, or the
// name together with the move date.
type DuplicateQuery struct {
	Email    string
	Phone    string
	Name     string
	MoveDate *time.Time
}

func (q DuplicateQuery) Empty() bool {
	return q.Email == "" && q.Phone == "" && (q.Name == "" || q.MoveDate == nil)
}

func (c *Customer) Normalize() {
	c.Name = strings.Join(strings.Fields(c.Name), " ")
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = NormalizePhone(c.Phone)
	c.FromAddress = strings.TrimSpace(c.FromAddress)
	c.ToAddress = strings.TrimSpace(c.ToAddress)
	if c.MoveDate != nil {
		d := DateOnly(*c.MoveDate)
		c.MoveDate = &d
	}
	if c.Source == "" {
		c.Source = SourceManual
	}
}

func (c Customer) Validate() error {
	var details []apperrors.ValidationDetail
	if strings.TrimSpace(c.Name) == "" {
		details = append(details, apperrors.ValidationDetail{Field: "name", Message: "name is required"})
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			details = append(details, apperrors.ValidationDetail{Field: "email", Message: "email is not a valid address"})
		}
	}
	if c.Apartment.Rooms < 0 || c.Apartment.Area < 0 || c.Apartment.Floor < -3 {
		details = append(details, apperrors.ValidationDetail{Field: "apartment", Message: "apartment values must not be negative"})
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid customer", details...)
	}
	return nil
}

func (c Customer) DuplicateQuery() DuplicateQuery {
	return DuplicateQuery{Email: c.Email, Phone: c.Phone, Name: c.Name, MoveDate: c.MoveDate}
}

// DateOnly strips the clock from t, keeping its calendar day, so move dates
// compare equal regardless of how they were parsed.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two optional dates fall on the same calendar day.
func SameDay(a, b *time.Time) bool {
	if a == nil || b == nil {
		return false
	}
	return DateOnly(*a).Equal(DateOnly(*b))
}

// Matches reports whether c is a duplicate of q.
func (q DuplicateQuery) Matches(c Customer) bool {
	if q.Email != "" && strings.EqualFold(q.Email, c.Email) {
		return true
	}
	if q.Phone != "" && q.Phone == c.Phone {
		return true
	}
	return q.Name != "" && strings.EqualFold(q.Name, c.Name) && SameDay(q.MoveDate, c.MoveDate)
}

// FormatNumber renders the customer number K{yyyy}{mm}{nnn}.
func FormatNumber(year int, month time.Month, seq int64) string {
	return fmt.Sprintf("K%04d%02d%03d", year, int(month), seq)
}

// NormalizePhone reduces a German phone number to E.164. Numbers without a
// country prefix are assumed to be German.
func NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	var b strings.Builder
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case strings.HasPrefix(digits, "+"):
		return digits
	case strings.HasPrefix(digits, "00"):
		return "+" + digits[2:]
	case strings.HasPrefix(digits, "0"):
		return "+49" + digits[1:]
	case digits == "":
		return ""
	default:
		return "+49" + digits
	}
}
