package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"umzugsbuero/backend/internal/domain/confirmation"
	"umzugsbuero/backend/internal/domain/customer"
	"umzugsbuero/backend/internal/domain/quote"
	"umzugsbuero/backend/internal/domain/quote/pdf/content"
	apperrors "umzugsbuero/backend/internal/errors"
	"umzugsbuero/backend/internal/infra/mail"
)

// ConfirmationService backs the public quote page reached through the
// emailed link.
type ConfirmationService struct {
	deps Deps
}

func NewConfirmationService(deps Deps) *ConfirmationService {
	return &ConfirmationService{deps: deps.withDefaults()}
}

// QuoteView is what the customer sees on the confirmation page.
type QuoteView struct {
	QuoteNumber  string        `json:"quoteNumber"`
	Status       quote.Status  `json:"status"`
	Price        float64       `json:"price"`
	Details      quote.Details `json:"details"`
	Services     []string      `json:"services"`
	CustomerName string        `json:"customerName"`
	FromAddress  string        `json:"fromAddress"`
	ToAddress    string        `json:"toAddress"`
	MoveDate     *time.Time    `json:"moveDate,omitempty"`
	Company      string        `json:"company"`
	ExpiresAt    time.Time     `json:"expiresAt"`
}

type ActionResult struct {
	Quote              quote.Quote `json:"quote"`
	NotificationSent   bool        `json:"notificationSent"`
	NotificationReason string      `json:"notificationReason,omitempty"`
}

// View resolves a link without consuming it.
func (s *ConfirmationService) View(ctx context.Context, raw string) (QuoteView, error) {
	tok, err := s.viewable(ctx, raw)
	if err != nil {
		return QuoteView{}, err
	}
	q, err := s.deps.Store.Quotes.Get(ctx, tok.QuoteID)
	if err != nil {
		return QuoteView{}, err
	}
	c, err := s.deps.Store.Customers.Get(ctx, q.CustomerID)
	if err != nil {
		return QuoteView{}, err
	}
	return QuoteView{
		QuoteNumber:  q.Number,
		Status:       q.Status,
		Price:        q.Price,
		Details:      q.Details,
		CustomerName: c.Name,
		FromAddress:  c.FromAddress,
		ToAddress:    c.ToAddress,
		MoveDate:     c.MoveDate,
		Company:      s.deps.Settings.CompanyName,
		Services:     content.IncludedServices(q.Details),
		ExpiresAt:    tok.ExpiresAt,
	}, nil
}

// Confirm accepts the quote on behalf of the customer and uses up the link.
func (s *ConfirmationService) Confirm(ctx context.Context, raw string) (ActionResult, error) {
	return s.act(ctx, raw, quote.ActionConfirm, "")
}

// Decline rejects the quote on behalf of the customer and uses up the link.
func (s *ConfirmationService) Decline(ctx context.Context, raw, reason string) (ActionResult, error) {
	return s.act(ctx, raw, quote.ActionReject, strings.TrimSpace(reason))
}

func (s *ConfirmationService) viewable(ctx context.Context, raw string) (confirmation.Token, error) {
	if strings.TrimSpace(raw) == "" {
		return confirmation.Token{}, apperrors.NewNotFoundError("confirmation link not found")
	}
	tok, err := s.deps.Store.Tokens.Get(ctx, confirmation.Hash(raw))
	if err != nil {
		return confirmation.Token{}, err
	}
	if err := tok.CheckViewable(s.deps.now()); err != nil {
		return confirmation.Token{}, err
	}
	return tok, nil
}

// act moves the quote first and consumes the token only once the status
// change is stored, so a link is never used up by an action that did not
// take effect. The conditional quote update admits a single winner among
// concurrent clicks; the losers fail before touching the token.
func (s *ConfirmationService) act(ctx context.Context, raw string, a quote.Action, reason string) (ActionResult, error) {
	tok, err := s.viewable(ctx, raw)
	if err != nil {
		return ActionResult{}, err
	}
	q, err := s.deps.Store.Quotes.Get(ctx, tok.QuoteID)
	if err != nil {
		return ActionResult{}, err
	}
	updated, err := applyTransition(ctx, s.deps, q, a)
	if err != nil {
		return ActionResult{}, err
	}
	if _, err := s.deps.Store.Tokens.Consume(ctx, tok.Hash, s.deps.now()); err != nil {
		// The quote has already left "sent", so the link cannot act again.
		s.deps.Logger.Error("confirmation token not consumed",
			zap.String("quoteId", q.ID), zap.Error(err))
	}

	res := ActionResult{Quote: updated}
	out := outcomeOf(s.notifyOffice(ctx, updated, a == quote.ActionConfirm, reason))
	res.NotificationSent, res.NotificationReason = out.Sent, out.Reason
	if !out.Sent {
		s.deps.Logger.Warn("office notification not sent",
			zap.String("quoteId", q.ID), zap.String("reason", out.Reason))
	}
	return res, nil
}

func (s *ConfirmationService) notifyOffice(ctx context.Context, q quote.Quote, confirmed bool, reason string) error {
	if s.deps.Settings.OfficeEmail == "" {
		return errors.New("no office email configured")
	}
	if s.deps.Mailer == nil || !s.deps.Mailer.Enabled() {
		return mail.ErrDisabled
	}
	c, err := s.deps.Store.Customers.Get(ctx, q.CustomerID)
	if err != nil {
		c = customer.Customer{Name: "Unbekannt"}
	}
	msg, err := officeNotice(s.deps.Settings.OfficeEmail, c, q, confirmed, reason)
	if err != nil {
		return err
	}
	return s.deps.Mailer.Send(ctx, msg)
}
