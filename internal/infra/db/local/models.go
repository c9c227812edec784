package local

import (
	"time"

	"umzugsbuero/backend/internal/domain/confirmation"
	"umzugsbuero/backend/internal/domain/customer"
	"umzugsbuero/backend/internal/domain/invoice"
	"umzugsbuero/backend/internal/domain/quote"
)

type customerModel struct {
	ID          string `gorm:"primaryKey"`
	Number      string `gorm:"uniqueIndex;not null"`
	Name        string `gorm:"not null"`
	Phone       string `gorm:"index"`
	Email       string `gorm:"index"`
	FromAddress string
	ToAddress   string
	Rooms       float64
	Area        float64
	Floor       int
	Elevator    bool
	MoveDate    *time.Time
	Notes       string
	Source      string
	CreatedAt   time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false"`
}

func (customerModel) TableName() string { return "customers" }

func toCustomerModel(c customer.Customer) customerModel {
	m := customerModel{
		ID: c.ID, Number: c.Number, Name: c.Name, Phone: c.Phone, Email: c.Email,
		FromAddress: c.FromAddress, ToAddress: c.ToAddress,
		Rooms: c.Apartment.Rooms, Area: c.Apartment.Area, Floor: c.Apartment.Floor, Elevator: c.Apartment.Elevator,
		Notes: c.Notes, Source: string(c.Source),
		CreatedAt: c.CreatedAt.UTC(), UpdatedAt: c.UpdatedAt.UTC(),
	}
	if c.MoveDate != nil {
		d := customer.DateOnly(*c.MoveDate)
		m.MoveDate = &d
	}
	return m
}

func (m customerModel) domain() customer.Customer {
	return customer.Customer{
		ID: m.ID, Number: m.Number, Name: m.Name, Phone: m.Phone, Email: m.Email,
		FromAddress: m.FromAddress, ToAddress: m.ToAddress,
		Apartment: customer.Apartment{Rooms: m.Rooms, Area: m.Area, Floor: m.Floor, Elevator: m.Elevator},
		MoveDate: m.MoveDate, Notes: m.Notes, Source: customer.Source(m.Source),
		CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
	}
}

type quoteModel struct {
	ID                    string `gorm:"primaryKey"`
	CustomerID            string `gorm:"index;not null"`
	Number                string `gorm:"uniqueIndex;not null"`
	Price                 float64
	Status                string
	Details               quote.Details      `gorm:"serializer:json"`
	Calculation           *quote.Calculation `gorm:"serializer:json"`
	Payment               *quote.PaymentInfo `gorm:"serializer:json"`
	ConfirmationTokenHash string
	CreatedAt             time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime:false"`
}

func (quoteModel) TableName() string { return "quotes" }

func toQuoteModel(q quote.Quote) quoteModel {
	return quoteModel{
		ID: q.ID, CustomerID: q.CustomerID, Number: q.Number, Price: q.Price, Status: string(q.Status),
		Details: q.Details, Calculation: q.Calculation, Payment: q.Payment,
		ConfirmationTokenHash: q.ConfirmationTokenHash,
		CreatedAt: q.CreatedAt.UTC(), UpdatedAt: q.UpdatedAt.UTC(),
	}
}

func (m quoteModel) domain() quote.Quote {
	return quote.Quote{
		ID: m.ID, CustomerID: m.CustomerID, Number: m.Number, Price: m.Price, Status: quote.Status(m.Status),
		Details: m.Details, Calculation: m.Calculation, Payment: m.Payment,
		ConfirmationTokenHash: m.ConfirmationTokenHash,
		CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
	}
}

type invoiceModel struct {
	ID         string `gorm:"primaryKey"`
	Number     string `gorm:"uniqueIndex;not null"`
	QuoteID    string `gorm:"uniqueIndex;not null"`
	CustomerID string `gorm:"index;not null"`
	Net        float64
	Tax        float64
	Gross      float64
	Items      []invoice.Item `gorm:"serializer:json"`
	IssuedAt   time.Time
	DueDate    time.Time
	PaidAt     *time.Time
	Status     string `gorm:"index"`
}

func (invoiceModel) TableName() string { return "invoices" }

func toInvoiceModel(inv invoice.Invoice) invoiceModel {
	m := invoiceModel{
		ID: inv.ID, Number: inv.Number, QuoteID: inv.QuoteID, CustomerID: inv.CustomerID,
		Net: inv.Net, Tax: inv.Tax, Gross: inv.Gross, Items: inv.Items,
		IssuedAt: inv.IssuedAt.UTC(), DueDate: inv.DueDate.UTC(), Status: string(inv.Status),
	}
	if inv.PaidAt != nil {
		p := inv.PaidAt.UTC()
		m.PaidAt = &p
	}
	return m
}

func (m invoiceModel) domain() invoice.Invoice {
	return invoice.Invoice{
		ID: m.ID, Number: m.Number, QuoteID: m.QuoteID, CustomerID: m.CustomerID,
		Net: m.Net, Tax: m.Tax, Gross: m.Gross, Items: m.Items,
		IssuedAt: m.IssuedAt, DueDate: m.DueDate, PaidAt: m.PaidAt, Status: invoice.Status(m.Status),
	}
}

type tokenModel struct {
	Hash      string    `gorm:"primaryKey"`
	QuoteID   string    `gorm:"index;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
	ExpiresAt time.Time `gorm:"index"`
	UsedAt    *time.Time
}

func (tokenModel) TableName() string { return "confirmation_tokens" }

func toTokenModel(t confirmation.Token) tokenModel {
	m := tokenModel{Hash: t.Hash, QuoteID: t.QuoteID, CreatedAt: t.CreatedAt.UTC(), ExpiresAt: t.ExpiresAt.UTC()}
	if t.UsedAt != nil {
		u := t.UsedAt.UTC()
		m.UsedAt = &u
	}
	return m
}

func (m tokenModel) domain() confirmation.Token {
	return confirmation.Token{Hash: m.Hash, QuoteID: m.QuoteID, CreatedAt: m.CreatedAt, ExpiresAt: m.ExpiresAt, UsedAt: m.UsedAt}
}

type counterModel struct {
	Scope string `gorm:"primaryKey"`
	Year  int    `gorm:"primaryKey;autoIncrement:false"`
	Month int    `gorm:"primaryKey;autoIncrement:false"`
	Value int64
}

func (counterModel) TableName() string { return "counters" }
