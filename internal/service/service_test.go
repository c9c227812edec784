package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"umzugsbuero/backend/internal/domain/confirmation"
	"umzugsbuero/backend/internal/domain/customer"
	"umzugsbuero/backend/internal/domain/invoice"
	"umzugsbuero/backend/internal/domain/quote"
	"umzugsbuero/backend/internal/domain/quote/pdf"
	"umzugsbuero/backend/internal/domain/quote/pdf/content"
	pdfgen "umzugsbuero/backend/internal/domain/quote/pdf/gofpdf"
	"umzugsbuero/backend/internal/domain/quote/pdf/signature"
	apperrors "umzugsbuero/backend/internal/errors"
	"umzugsbuero/backend/internal/infra/db/local"
	"umzugsbuero/backend/internal/infra/mail"
)

type mockDocuments struct {
	GenerateQuoteFunc   func(in content.Input) (pdf.Result, error)
	GenerateInvoiceFunc func(in content.InvoiceInput) (pdf.Result, error)
}

func (m *mockDocuments) GenerateQuote(in content.Input) (pdf.Result, error) {
	if m.GenerateQuoteFunc != nil {
		return m.GenerateQuoteFunc(in)
	}
	return pdf.Result{PDF: []byte("%PDF-1.3 quote " + in.Quote.Number)}, nil
}

func (m *mockDocuments) GenerateInvoice(in content.InvoiceInput) (pdf.Result, error) {
	if m.GenerateInvoiceFunc != nil {
		return m.GenerateInvoiceFunc(in)
	}
	return pdf.Result{PDF: []byte("%PDF-1.3 invoice " + in.Invoice.Number)}, nil
}

type mockMailer struct {
	mu       sync.Mutex
	disabled bool
	SendFunc func(ctx context.Context, m mail.Message) error
	sent     []mail.Message
}

func (m *mockMailer) Enabled() bool { return !m.disabled }

func (m *mockMailer) Send(ctx context.Context, msg mail.Message) error {
	if m.SendFunc != nil {
		if err := m.SendFunc(ctx, msg); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

type fixture struct {
	deps      Deps
	clock     *time.Time
	mailer    *mockMailer
	documents *mockDocuments

	customers     *CustomerService
	quotes        *QuoteService
	confirmations *ConfirmationService
	invoices      *InvoiceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := local.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC)
	f := &fixture{clock: &now, mailer: &mockMailer{}, documents: &mockDocuments{}}
	f.deps = Deps{
		Store: Store{
			Customers: local.NewCustomerRepository(db),
			Quotes:    local.NewQuoteRepository(db),
			Invoices:  local.NewInvoiceRepository(db),
			Tokens:    local.NewTokenRepository(db),
			Counter:   local.NewCounter(db),
		},
		Documents: f.documents,
		Signer:    signature.NewEmbedder(time.UTC, zap.NewNop()),
		Mailer:    f.mailer,
		Settings: Settings{
			PublicBaseURL: "https://umzug.example",
			TokenTTL:      14 * 24 * time.Hour,
			OfficeEmail:   "buero@umzug.example",
			CompanyName:   "Umzugsbüro",
		},
		Logger: zap.NewNop(),
		Clock:  func() time.Time { return *f.clock },
	}
	f.customers = NewCustomerService(f.deps)
	f.quotes = NewQuoteService(f.deps)
	f.confirmations = NewConfirmationService(f.deps)
	f.invoices = NewInvoiceService(f.deps)
	return f
}

func (f *fixture) advance(d time.Duration) { *f.clock = f.clock.Add(d) }

func moveDate() *Date {
	return &Date{Time: time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)}
}

func (f *fixture) customer(t *testing.T) customer.Customer {
	t.Helper()
	c, err := f.customers.Create(context.Background(), CustomerInput{
		Name:      "Max  Mueller",
		Phone:     "030 1234567",
		Email:     "Max@Example.de",
		Apartment: customer.Apartment{Rooms: 3, Area: 60},
		MoveDate:  moveDate(),
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) sentQuote(t *testing.T) (quote.Quote, string) {
	t.Helper()
	c := f.customer(t)
	q, err := f.quotes.Create(context.Background(), CreateQuoteInput{CustomerID: c.ID})
	require.NoError(t, err)
	res, err := f.quotes.Send(context.Background(), q.ID)
	require.NoError(t, err)
	raw := strings.TrimPrefix(res.ConfirmationURL, "https://umzug.example/quote-confirmation/")
	require.NotEqual(t, res.ConfirmationURL, raw)
	return res.Quote, raw
}

func TestCustomerService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.customer(t)
	assert.Equal(t, "K202507001", c.Number)
	assert.Equal(t, "Max Mueller", c.Name)
	assert.Equal(t, "+49301234567", c.Phone)
	assert.Equal(t, "max@example.de", c.Email)
	assert.Equal(t, customer.SourceManual, c.Source)

	_, err := f.customers.Create(ctx, CustomerInput{Name: "Someone Else", Phone: "+49 30 1234567"})
	ce, ok := apperrors.IsConflictError(err)
	require.True(t, ok)
	assert.Contains(t, ce.Message, "K202507001")

	other, err := f.customers.Create(ctx, CustomerInput{Name: "Erika Muster"})
	require.NoError(t, err)
	assert.Equal(t, "K202507002", other.Number)

	_, err = f.customers.Create(ctx, CustomerInput{Email: "x@example.de"})
	_, ok = apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestCustomerService_UpdateAndSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t)

	updated, err := f.customers.Update(ctx, c.ID, CustomerInput{Name: "Max Mueller", Email: "max@example.de", Notes: "Klavier"})
	require.NoError(t, err)
	assert.Equal(t, c.Number, updated.Number)
	assert.Equal(t, "Klavier", updated.Notes)

	matches, err := f.customers.Search(ctx, "mueller", 5)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, c.ID, matches[0].Customer.ID)

	_, err = f.customers.Search(ctx, "  ", 5)
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)

	_, err = f.customers.Get(ctx, "missing")
	_, ok = apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestCustomerService_Export(t *testing.T) {
	f := newFixture(t)
	f.sentQuote(t)
	out, err := f.customers.Export(context.Background())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("PK")), "xlsx is a zip archive")
}

func TestQuoteService_CreatePricing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t)

	estimated, err := f.quotes.Create(ctx, CreateQuoteInput{CustomerID: c.ID})
	require.NoError(t, err)
	assert.Equal(t, quote.StatusDraft, estimated.Status)
	assert.Equal(t, 1380.0, estimated.Price)
	require.NotNil(t, estimated.Calculation)
	assert.Len(t, estimated.Calculation.Lines, 3)

	calc := &quote.Calculation{Lines: []quote.Line{{Description: "Pauschale", Amount: 900}, {Description: "Klavier", Amount: 250}}}
	fromCalc, err := f.quotes.Create(ctx, CreateQuoteInput{CustomerID: c.ID, Calculation: calc})
	require.NoError(t, err)
	assert.Equal(t, 1150.0, fromCalc.Price)

	price := 999.0
	fixed, err := f.quotes.Create(ctx, CreateQuoteInput{CustomerID: c.ID, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 999.0, fixed.Price)

	negative := -1.0
	_, err = f.quotes.Create(ctx, CreateQuoteInput{CustomerID: c.ID, Price: &negative})
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)

	_, err = f.quotes.Create(ctx, CreateQuoteInput{CustomerID: "missing"})
	_, ok = apperrors.IsNotFoundError(err)
	assert.True(t, ok)

	list, err := f.quotes.List(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestQuoteService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t)
	q, err := f.quotes.Create(ctx, CreateQuoteInput{CustomerID: c.ID})
	require.NoError(t, err)

	price := 1500.0
	updated, err := f.quotes.Update(ctx, c.ID, q.ID, UpdateQuoteInput{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 1500.0, updated.Price)
	assert.Equal(t, c.ID, updated.CustomerID)

	_, err = f.quotes.Update(ctx, "other-customer", q.ID, UpdateQuoteInput{Price: &price})
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)

	_, err = f.quotes.Update(ctx, c.ID, q.ID, UpdateQuoteInput{})
	_, ok = apperrors.IsValidationError(err)
	assert.True(t, ok)

	_, err = f.quotes.Reject(ctx, q.ID)
	require.NoError(t, err)
	_, err = f.quotes.Update(ctx, c.ID, q.ID, UpdateQuoteInput{Price: &price})
	_, ok = apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestQuoteService_Send(t *testing.T) {
	f := newFixture(t)
	q, raw := f.sentQuote(t)

	assert.Equal(t, quote.StatusSent, q.Status)
	assert.NotEmpty(t, raw)
	require.Len(t, f.mailer.sent, 1)
	msg := f.mailer.sent[0]
	assert.Equal(t, []string{"max@example.de"}, msg.To)
	assert.Contains(t, msg.HTML, raw)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "application/pdf", msg.Attachments[0].ContentType)

	again, err := f.quotes.Send(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, quote.StatusSent, again.Quote.Status)
	assert.True(t, again.EmailSent)
}

func TestQuoteService_SendEmailIsBestEffort(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mailer.SendFunc = func(context.Context, mail.Message) error { return errors.New("connection refused") }

	c := f.customer(t)
	q, err := f.quotes.Create(ctx, CreateQuoteInput{CustomerID: c.ID})
	require.NoError(t, err)
	res, err := f.quotes.Send(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, quote.StatusSent, res.Quote.Status)
	assert.False(t, res.EmailSent)
	assert.Contains(t, res.EmailReason, "connection refused")

	f.mailer.disabled = true
	res, err = f.quotes.Send(ctx, q.ID)
	require.NoError(t, err)
	assert.False(t, res.EmailSent)
	assert.Equal(t, mail.ErrDisabled.Error(), res.EmailReason)
}

func TestQuoteService_SendRejectedQuote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t)
	q, err := f.quotes.Create(ctx, CreateQuoteInput{CustomerID: c.ID})
	require.NoError(t, err)
	_, err = f.quotes.Reject(ctx, q.ID)
	require.NoError(t, err)

	_, err = f.quotes.Send(ctx, q.ID)
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestConfirmationService_ConfirmOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q, raw := f.sentQuote(t)

	view, err := f.confirmations.View(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, q.Number, view.QuoteNumber)
	assert.Equal(t, "Max Mueller", view.CustomerName)
	assert.NotEmpty(t, view.Services)

	res, err := f.confirmations.Confirm(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, quote.StatusConfirmed, res.Quote.Status)
	assert.True(t, res.NotificationSent)
	last := f.mailer.sent[len(f.mailer.sent)-1]
	assert.Equal(t, []string{"buero@umzug.example"}, last.To)
	assert.Equal(t, "max@example.de", last.ReplyTo)

	_, err = f.confirmations.Confirm(ctx, raw)
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
	_, err = f.confirmations.View(ctx, raw)
	_, ok = apperrors.IsConflictError(err)
	assert.True(t, ok, "used links no longer show the quote")
}

func TestConfirmationService_ConcurrentConfirm(t *testing.T) {
	f := newFixture(t)
	_, raw := f.sentQuote(t)

	const n = 5
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.confirmations.Confirm(context.Background(), raw)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok int
	for err := range results {
		if err == nil {
			ok++
		}
	}
	assert.Equal(t, 1, ok)
}

func TestConfirmationService_Decline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, raw := f.sentQuote(t)

	res, err := f.confirmations.Decline(ctx, raw, "  zu teuer ")
	require.NoError(t, err)
	assert.Equal(t, quote.StatusRejected, res.Quote.Status)
	last := f.mailer.sent[len(f.mailer.sent)-1]
	assert.Contains(t, last.HTML, "zu teuer")
	assert.Contains(t, last.Subject, "abgelehnt")
}

func TestConfirmationService_InvalidTransitionKeepsLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q, raw := f.sentQuote(t)

	_, err := f.quotes.Accept(ctx, q.ID)
	require.NoError(t, err)
	_, err = f.confirmations.Confirm(ctx, raw)
	_, ok := apperrors.IsConflictError(err)
	require.True(t, ok)

	_, err = f.confirmations.View(ctx, raw)
	assert.NoError(t, err)
}

// conflictingQuotes fails the next status update as if another request had
// moved the quote first.
type conflictingQuotes struct {
	QuoteRepository
	fail bool
}

func (r *conflictingQuotes) Update(ctx context.Context, customerID, id string, expect quote.Status, p quote.Patch, now time.Time) (quote.Quote, error) {
	if r.fail {
		r.fail = false
		return quote.Quote{}, apperrors.NewConflictError("quote " + id + " changed concurrently")
	}
	return r.QuoteRepository.Update(ctx, customerID, id, expect, p, now)
}

func TestConfirmationService_FailedUpdateKeepsLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q, raw := f.sentQuote(t)

	quotes := &conflictingQuotes{QuoteRepository: f.deps.Store.Quotes, fail: true}
	deps := f.deps
	deps.Store.Quotes = quotes
	svc := NewConfirmationService(deps)

	_, err := svc.Confirm(ctx, raw)
	_, ok := apperrors.IsConflictError(err)
	require.True(t, ok)

	tok, err := deps.Store.Tokens.Get(ctx, confirmation.Hash(raw))
	require.NoError(t, err)
	assert.Nil(t, tok.UsedAt, "link stays usable when the quote did not move")

	res, err := svc.Confirm(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, quote.StatusConfirmed, res.Quote.Status)
	assert.Equal(t, q.ID, res.Quote.ID)

	tok, err = deps.Store.Tokens.Get(ctx, confirmation.Hash(raw))
	require.NoError(t, err)
	assert.NotNil(t, tok.UsedAt)
}

func TestConfirmationService_ExpiredAndUnknown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, raw := f.sentQuote(t)

	f.advance(15 * 24 * time.Hour)
	_, err := f.confirmations.View(ctx, raw)
	ce, ok := apperrors.IsConflictError(err)
	require.True(t, ok)
	assert.Contains(t, ce.Message, "expired")

	_, err = f.confirmations.Confirm(ctx, "does-not-exist")
	_, ok = apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestConfirmationService_NotificationFailureStillConfirms(t *testing.T) {
	f := newFixture(t)
	_, raw := f.sentQuote(t)
	f.mailer.disabled = true

	res, err := f.confirmations.Confirm(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, quote.StatusConfirmed, res.Quote.Status)
	assert.False(t, res.NotificationSent)
	assert.NotEmpty(t, res.NotificationReason)
}

func TestQuoteService_PaymentAndInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q, raw := f.sentQuote(t)

	_, err := f.quotes.CreateInvoice(ctx, q.ID)
	_, ok := apperrors.IsConflictError(err)
	require.True(t, ok, "sent quotes cannot be invoiced")

	_, err = f.confirmations.Confirm(ctx, raw)
	require.NoError(t, err)

	paid, err := f.quotes.RecordPayment(ctx, q.ID, quote.PaymentInfo{
		Method: quote.PaymentCash, Status: quote.PaymentPaidOnSite, Amount: 1380, ConfirmedBy: "Jana",
	})
	require.NoError(t, err)
	require.NotNil(t, paid.Payment)
	assert.Equal(t, "Jana", paid.Payment.ConfirmedBy)

	inv, err := f.quotes.CreateInvoice(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "R202507001", inv.Number)
	assert.Equal(t, invoice.StatusOpen, inv.Status)
	assert.Equal(t, 1380.0, inv.Gross)
	assert.InDelta(t, inv.Gross, inv.Net+inv.Tax, 0.001)

	stored, err := f.quotes.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, quote.StatusInvoiced, stored.Status)

	_, err = f.quotes.CreateInvoice(ctx, q.ID)
	_, ok = apperrors.IsConflictError(err)
	assert.True(t, ok)

	doc, got, err := f.invoices.Document(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)
	assert.Contains(t, string(doc.PDF), "R202507001")

	settled, err := f.invoices.MarkPaid(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPaid, settled.Status)
	_, err = f.invoices.MarkPaid(ctx, inv.ID)
	_, ok = apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestQuoteService_RecordPaymentOnRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q, _ := f.sentQuote(t)
	_, err := f.quotes.Reject(ctx, q.ID)
	require.NoError(t, err)

	_, err = f.quotes.RecordPayment(ctx, q.ID, quote.PaymentInfo{Method: quote.PaymentCard, Status: quote.PaymentPaid, ConfirmedBy: "Jana"})
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestQuoteService_DocumentIsStable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var issued []time.Time
	f.documents.GenerateQuoteFunc = func(in content.Input) (pdf.Result, error) {
		issued = append(issued, in.IssuedAt)
		return pdf.Result{PDF: []byte("%PDF-1.3"), Degraded: true}, nil
	}
	c := f.customer(t)
	q, err := f.quotes.Create(ctx, CreateQuoteInput{CustomerID: c.ID})
	require.NoError(t, err)

	res, _, err := f.quotes.Document(ctx, q.ID)
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	f.advance(48 * time.Hour)
	_, _, err = f.quotes.Document(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, issued, 2)
	assert.True(t, issued[0].Equal(issued[1]))
}

func signaturePNG(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 300, 100))
	for x := 10; x < 290; x++ {
		img.Set(x, 50+(x%20)-10, color.NRGBA{A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestQuoteService_Sign(t *testing.T) {
	f := newFixture(t)
	f.deps.Documents = pdfgen.New(content.Company{Name: "Umzugsbüro"}, "", zap.NewNop())
	svc := NewQuoteService(f.deps)
	ctx := context.Background()
	c := f.customer(t)
	q, err := svc.Create(ctx, CreateQuoteInput{CustomerID: c.ID})
	require.NoError(t, err)

	res, _, err := svc.Sign(ctx, q.ID, SignInput{
		Customer: &SignatureInput{Image: signaturePNG(t), SignerName: "Max Mueller"},
		IP:       "203.0.113.7",
	})
	require.NoError(t, err)
	assert.False(t, res.Degraded)
	assert.Equal(t, signature.StatePartiallySigned, res.State)

	v := signature.Validate(res.PDF)
	assert.True(t, v.Valid)
	require.Len(t, v.Signers, 1)

	_, _, err = svc.Sign(ctx, q.ID, SignInput{})
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)

	_, _, err = svc.Sign(ctx, q.ID, SignInput{Company: &SignatureInput{Image: "not base64!", SignerName: "Büro"}})
	_, ok = apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestQuoteService_SignReportsDegradedBaseDocument(t *testing.T) {
	f := newFixture(t)
	gen := pdfgen.New(content.Company{Name: "Umzugsbüro"}, "", zap.NewNop())
	f.documents.GenerateQuoteFunc = func(in content.Input) (pdf.Result, error) {
		res, err := gen.GenerateQuote(in)
		res.Degraded = true
		res.Cause = errors.New("font directory missing")
		return res, err
	}
	ctx := context.Background()
	c := f.customer(t)
	q, err := f.quotes.Create(ctx, CreateQuoteInput{CustomerID: c.ID})
	require.NoError(t, err)

	res, _, err := f.quotes.Sign(ctx, q.ID, SignInput{
		Customer: &SignatureInput{Image: signaturePNG(t), SignerName: "Max Mueller"},
	})
	require.NoError(t, err)
	assert.Equal(t, signature.StatePartiallySigned, res.State)
	assert.True(t, res.Degraded)
	assert.EqualError(t, res.Cause, "font directory missing")
}

func TestCalendarImporter_Import(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	importer := NewCalendarImporter(f.deps)

	data := "Subject,Start Date,Location,Description\n" +
		"Umzug Max Mueller,2025-07-01,Bahnhofstr 5 Berlin,Tel: 030-1234567\n" +
		"Besprechung,2025-07-02,,\n" +
		"Umzug Erika Muster,kaputt,,\n" +
		"Umzug Max Mueller,2025-07-01,Bahnhofstr 5 Berlin,Tel: 030-1234567\n" +
		"Umzug Alt Kunde,2025-05-01,,\n"
	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	rep, err := importer.Import(ctx, data, &since)
	require.NoError(t, err)
	assert.True(t, rep.Success)
	assert.Equal(t, 3, rep.TotalEvents)
	assert.Equal(t, 1, rep.Imported)
	assert.Equal(t, 1, rep.Duplicates)
	assert.Equal(t, 1, rep.Errors)
	require.Len(t, rep.ErrorDetails, 1)
	assert.Equal(t, 4, rep.ErrorDetails[0].Row)

	require.Len(t, rep.ImportedCustomers, 1)
	imported := rep.ImportedCustomers[0]
	assert.Equal(t, "Max Mueller", imported.Name)
	assert.Equal(t, "K202507001", imported.Number)
	assert.Equal(t, 1380.0, imported.Price)

	c, err := f.customers.Get(ctx, imported.ID)
	require.NoError(t, err)
	assert.Equal(t, "+49301234567", c.Phone)
	assert.Equal(t, customer.SourceCalendar, c.Source)

	q, err := f.quotes.Get(ctx, imported.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, quote.StatusDraft, q.Status)

	rep, err = importer.Import(ctx, data, &since)
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Imported)
	assert.Equal(t, 2, rep.Duplicates)

	_, err = importer.Import(ctx, "", nil)
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestCalendarImporter_QuoteNumbersAreUnique(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	data := "Subject,Start Date,Location,Description\n" +
		"Umzug Max Mueller,2025-07-01,Bahnhofstr 5 Berlin,Tel: 030-1234567\n" +
		"Umzug Erika Muster,2025-07-03,Hauptstr 1 Hamburg,Tel: 040-7654321\n"

	rep, err := NewCalendarImporter(f.deps).Import(ctx, data, nil)
	require.NoError(t, err)
	require.Len(t, rep.ImportedCustomers, 2)

	first, err := f.quotes.Get(ctx, rep.ImportedCustomers[0].QuoteID)
	require.NoError(t, err)
	second, err := f.quotes.Get(ctx, rep.ImportedCustomers[1].QuoteID)
	require.NoError(t, err)
	assert.Equal(t, "AN-202507-001", first.Number)
	assert.Equal(t, "AN-202507-002", second.Number)

	manual, err := f.quotes.Create(ctx, CreateQuoteInput{CustomerID: first.CustomerID})
	require.NoError(t, err)
	assert.Equal(t, "AN-202507-003", manual.Number)
}

func TestMaintenance_Run(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q, raw := f.sentQuote(t)
	_, err := f.confirmations.Confirm(ctx, raw)
	require.NoError(t, err)
	inv, err := f.quotes.CreateInvoice(ctx, q.ID)
	require.NoError(t, err)

	_, err = f.quotes.Send(ctx, q.ID)
	_, ok := apperrors.IsConflictError(err)
	require.True(t, ok)

	f.advance(30 * 24 * time.Hour)
	rep, err := NewMaintenance(f.deps).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rep.TokensDeleted)
	assert.Equal(t, int64(1), rep.InvoicesOverdue)

	stored, err := f.invoices.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusOverdue, stored.Status)
}
