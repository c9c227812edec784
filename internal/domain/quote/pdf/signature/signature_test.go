package signature

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"umzugsbuero/backend/internal/domain/customer"
	"umzugsbuero/backend/internal/domain/quote"
	"umzugsbuero/backend/internal/domain/quote/pdf/content"
	pdfgen "umzugsbuero/backend/internal/domain/quote/pdf/gofpdf"
	"umzugsbuero/backend/internal/domain/quote/pdf/layout"
	apperrors "umzugsbuero/backend/internal/errors"
)

var signedAt = time.Date(2025, 7, 2, 14, 5, 0, 0, time.UTC)

func signaturePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 300, 100))
	for x := 10; x < 290; x++ {
		img.Set(x, 50+(x%20)-10, color.NRGBA{A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func baseQuote(t *testing.T) []byte {
	t.Helper()
	calc := quote.Estimate(customer.Apartment{Rooms: 3, Area: 60})
	g := pdfgen.New(content.Company{Name: "Umzugsbüro"}, "", zap.NewNop())
	res, err := g.GenerateQuote(content.Input{
		Customer: &customer.Customer{Name: "Max Mueller"},
		Quote:    &quote.Quote{Number: "AN-202507-001", Price: 1380, Calculation: &calc},
		IssuedAt: signedAt,
	})
	require.NoError(t, err)
	require.False(t, res.Degraded)
	return res.PDF
}

func data(t *testing.T, name string) Data {
	return Data{
		Image:      signaturePNG(t),
		SignerName: name,
		SignedAt:   signedAt,
		IP:         "203.0.113.7",
		Velocities: []float64{1, 2, 3},
		Timestamps: []int64{1000, 1400, 1900},
	}
}

func TestDocument_StateMachine(t *testing.T) {
	doc := NewDocument([]byte("%PDF-1.3"))
	assert.Equal(t, StateUnsigned, doc.State())

	require.NoError(t, doc.Embed(layout.SlotCustomer, data(t, "Max Mueller")))
	assert.Equal(t, StatePartiallySigned, doc.State())

	require.NoError(t, doc.Embed(layout.SlotCustomer, data(t, "Maximilian Mueller")))
	assert.Equal(t, StatePartiallySigned, doc.State())
	got, _ := doc.Signature(layout.SlotCustomer)
	assert.Equal(t, "Maximilian Mueller", got.SignerName)

	require.NoError(t, doc.Embed(layout.SlotCompany, data(t, "Büro")))
	assert.Equal(t, StateFullySigned, doc.State())
}

func TestDocument_EmbedValidates(t *testing.T) {
	doc := NewDocument([]byte("%PDF-1.3"))

	err := doc.Embed("witness", Data{SignerName: "", Image: []byte("jpeg")})
	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.Details, 3)
	assert.Equal(t, StateUnsigned, doc.State())
}

func TestDecodeImage(t *testing.T) {
	raw := signaturePNG(t)
	enc := base64.StdEncoding.EncodeToString(raw)

	got, err := DecodeImage("data:image/png;base64," + enc)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	got, err = DecodeImage(enc)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	_, err = DecodeImage("data:image/png;base64,***")
	assert.Error(t, err)
}

func TestEmbedder_SignsAndValidates(t *testing.T) {
	base := baseQuote(t)
	doc := NewDocument(base)
	require.NoError(t, doc.Embed(layout.SlotCustomer, data(t, "Max Mueller")))
	require.NoError(t, doc.Embed(layout.SlotCompany, data(t, "Umzugsbüro")))

	e := NewEmbedder(time.UTC, zap.NewNop())
	res, err := e.Render(doc)
	require.NoError(t, err)
	require.False(t, res.Degraded, "cause: %v", res.Cause)
	assert.Equal(t, StateFullySigned, res.State)
	assert.NotEqual(t, base, res.PDF)

	v := Validate(res.PDF)
	assert.True(t, v.Valid, v.Errors)
	assert.Equal(t, StateFullySigned, v.State)
	assert.Equal(t, "Angebot AN-202507-001 (digital signiert)", v.Title)
	require.Len(t, v.Signers, 2)
	assert.Equal(t, layout.SlotCustomer, v.Signers[0].Slot)
	assert.Equal(t, "Max Mueller", v.Signers[0].Name)
	assert.Equal(t, 3, v.Signers[0].Samples)
	assert.Equal(t, 2.0, v.Signers[0].AvgVelocity)
	assert.Equal(t, int64(900), v.Signers[0].DurationMS)
}

func TestEmbedder_ResignSameSlotOverwrites(t *testing.T) {
	doc := NewDocument(baseQuote(t))
	e := NewEmbedder(time.UTC, zap.NewNop())

	require.NoError(t, doc.Embed(layout.SlotCustomer, data(t, "Erste")))
	require.NoError(t, doc.Embed(layout.SlotCustomer, data(t, "Zweite")))

	res, err := e.Render(doc)
	require.NoError(t, err)
	assert.Equal(t, StatePartiallySigned, res.State)

	v := Validate(res.PDF)
	require.Len(t, v.Signers, 1)
	assert.Equal(t, "Zweite", v.Signers[0].Name)
}

func TestEmbedder_UnsignedReturnsBase(t *testing.T) {
	base := baseQuote(t)
	res, err := NewEmbedder(nil, zap.NewNop()).Render(NewDocument(base))
	require.NoError(t, err)
	assert.Equal(t, base, res.PDF)
	assert.Equal(t, StateUnsigned, res.State)
	assert.False(t, res.Degraded)
}

func TestEmbedder_FailureReturnsBase(t *testing.T) {
	base := []byte("%PDF-1.3 this is not a real document")
	doc := NewDocument(base)
	require.NoError(t, doc.Embed(layout.SlotCustomer, data(t, "Max")))

	res, err := NewEmbedder(time.UTC, zap.NewNop()).Render(doc)
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Error(t, res.Cause)
	assert.Equal(t, base, res.PDF)
	assert.Equal(t, StateUnsigned, res.State)
}

func TestEmbedder_AlreadySignedBase(t *testing.T) {
	doc := NewDocument(baseQuote(t))
	require.NoError(t, doc.Embed(layout.SlotCustomer, data(t, "Max")))
	e := NewEmbedder(time.UTC, zap.NewNop())
	signed, err := e.Render(doc)
	require.NoError(t, err)

	again := NewDocument(signed.PDF)
	require.NoError(t, again.Embed(layout.SlotCompany, data(t, "Büro")))
	res, err := e.Render(again)
	require.NoError(t, err)

	assert.True(t, res.Degraded)
	assert.True(t, errors.Is(res.Cause, ErrAlreadySigned))
	assert.Equal(t, signed.PDF, res.PDF)
	assert.Equal(t, StatePartiallySigned, res.State)
}

func TestValidate_Unsigned(t *testing.T) {
	v := Validate(baseQuote(t))
	assert.False(t, v.Valid)
	assert.Equal(t, StateUnsigned, v.State)
	assert.Contains(t, v.Errors, "document is not marked as signed")

	v = Validate([]byte("hello"))
	assert.Contains(t, v.Errors, "not a PDF document")
}

func TestReadLiteral(t *testing.T) {
	got, ok := readLiteral([]byte(`Angebot \(digital\) (x) \\ end) trailing`))
	require.True(t, ok)
	assert.Equal(t, `Angebot (digital) (x) \ end`, got)

	_, ok = readLiteral([]byte("unterminated"))
	assert.False(t, ok)
}
