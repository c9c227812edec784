package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"umzugsbuero/backend/internal/domain/customer"
	"umzugsbuero/backend/internal/domain/quote"
	apperrors "umzugsbuero/backend/internal/errors"
	"umzugsbuero/backend/internal/infra/export"
)

type CustomerService struct {
	deps Deps
}

func NewCustomerService(deps Deps) *CustomerService {
	return &CustomerService{deps: deps.withDefaults()}
}

// CustomerInput carries the editable customer fields.
type CustomerInput struct {
	Name        string             `json:"name"`
	Phone       string             `json:"phone"`
	Email       string             `json:"email"`
	FromAddress string             `json:"fromAddress"`
	ToAddress   string             `json:"toAddress"`
	Apartment   customer.Apartment `json:"apartment"`
	MoveDate    *Date              `json:"moveDate,omitempty"`
	Notes       string             `json:"notes"`
}

func (in CustomerInput) apply(c *customer.Customer) {
	c.Name = in.Name
	c.Phone = in.Phone
	c.Email = in.Email
	c.FromAddress = in.FromAddress
	c.ToAddress = in.ToAddress
	c.Apartment = in.Apartment
	c.MoveDate = in.MoveDate.Ptr()
	c.Notes = in.Notes
}

// Create stores a new customer. A customer matching an existing one by
// email, phone or name and move date is rejected with a ConflictError.
func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (customer.Customer, error) {
	now := s.deps.now()
	c := customer.Customer{ID: s.deps.NewID(), Source: customer.SourceManual, CreatedAt: now, UpdatedAt: now}
	in.apply(&c)
	c.Normalize()
	if err := c.Validate(); err != nil {
		return customer.Customer{}, err
	}

	dup, err := s.deps.Store.Customers.FindDuplicate(ctx, c.DuplicateQuery())
	if err != nil {
		return customer.Customer{}, err
	}
	if dup != nil {
		return customer.Customer{}, apperrors.NewConflictError(fmt.Sprintf("customer already exists as %s", dup.Number))
	}

	c.Number, err = s.deps.nextNumber(ctx, ScopeCustomer, now, customer.FormatNumber)
	if err != nil {
		return customer.Customer{}, err
	}
	if err := s.deps.Store.Customers.Create(ctx, c); err != nil {
		return customer.Customer{}, err
	}
	s.deps.Logger.Info("customer created", zap.String("customerId", c.ID), zap.String("number", c.Number))
	return c, nil
}

func (s *CustomerService) Get(ctx context.Context, id string) (customer.Customer, error) {
	return s.deps.Store.Customers.Get(ctx, id)
}

func (s *CustomerService) List(ctx context.Context) ([]customer.Customer, error) {
	return s.deps.Store.Customers.List(ctx)
}

// Update replaces the editable fields. Number, source and creation time
// never change.
func (s *CustomerService) Update(ctx context.Context, id string, in CustomerInput) (customer.Customer, error) {
	c, err := s.deps.Store.Customers.Get(ctx, id)
	if err != nil {
		return customer.Customer{}, err
	}
	in.apply(&c)
	c.Normalize()
	if err := c.Validate(); err != nil {
		return customer.Customer{}, err
	}
	c.UpdatedAt = s.deps.now()
	if err := s.deps.Store.Customers.Update(ctx, c); err != nil {
		return customer.Customer{}, err
	}
	return c, nil
}

func (s *CustomerService) Search(ctx context.Context, query string, limit int) ([]customer.Match, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.NewValidationError("invalid search", apperrors.ValidationDetail{Field: "q", Message: "query is required"})
	}
	all, err := s.deps.Store.Customers.List(ctx)
	if err != nil {
		return nil, err
	}
	return customer.Search(all, query, limit), nil
}

// Quotes lists the quotes of one customer.
func (s *CustomerService) Quotes(ctx context.Context, id string) ([]quote.Quote, error) {
	if _, err := s.deps.Store.Customers.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.deps.Store.Quotes.ListByCustomer(ctx, id)
}

// Export returns the XLSX workbook of all customers and quotes.
func (s *CustomerService) Export(ctx context.Context) ([]byte, error) {
	customers, err := s.deps.Store.Customers.List(ctx)
	if err != nil {
		return nil, err
	}
	quotes, err := s.deps.Store.Quotes.List(ctx)
	if err != nil {
		return nil, err
	}
	return export.Workbook(customers, quotes, s.deps.Settings.Location)
}
