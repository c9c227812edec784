package signature

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"umzugsbuero/backend/internal/domain/quote/pdf"
	"umzugsbuero/backend/internal/domain/quote/pdf/layout"
)

var ErrAlreadySigned = errors.New("document is already signed")

// pixels per millimetre of the scaled signature image
const imageDensity = 8

type Result struct {
	PDF      []byte
	State    State
	Degraded bool
	Cause    error
}

type Embedder struct {
	geometry layout.Geometry
	location *time.Location
	logger   *zap.Logger
}

func NewEmbedder(loc *time.Location, logger *zap.Logger) *Embedder {
	if loc == nil {
		loc = time.UTC
	}
	return &Embedder{geometry: layout.A4, location: loc, logger: logger}
}

// Render produces the signed document. When anything goes wrong the
// unsigned base document is returned with Degraded set, so the caller
// always has a document to hand out.
func (e *Embedder) Render(doc *Document) (Result, error) {
	if doc.State() == StateUnsigned {
		return Result{PDF: doc.Base(), State: StateUnsigned}, nil
	}
	res, err := pdf.Render(
		func() ([]byte, error) { return e.overlay(doc) },
		func() ([]byte, error) { return doc.Base(), nil },
	)
	if err != nil {
		return Result{}, err
	}
	if res.Degraded {
		e.logger.Warn("signature embedding failed, returning base document", zap.Error(res.Cause))
		return Result{PDF: res.PDF, State: Validate(res.PDF).State, Degraded: true, Cause: res.Cause}, nil
	}
	return Result{PDF: res.PDF, State: doc.State()}, nil
}

func (e *Embedder) overlay(doc *Document) ([]byte, error) {
	base := doc.Base()
	title, _ := infoString(base, infoTitleKey)
	if strings.HasSuffix(title, TitleSuffix) {
		return nil, ErrAlreadySigned
	}

	g := e.geometry
	out := gofpdf.New("P", "mm", "A4", "")
	out.SetAutoPageBreak(false, 0)
	tr := out.UnicodeTranslatorFromDescriptor("")

	imp := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(base))
	tpl := imp.ImportPageFromStream(out, &rs, 1, "/MediaBox")
	pages := len(imp.GetPageSizes())
	if pages == 0 {
		return nil, errors.New("base document has no pages")
	}
	for i := 1; i <= pages; i++ {
		out.AddPage()
		if i > 1 {
			tpl = imp.ImportPageFromStream(out, &rs, i, "/MediaBox")
		}
		imp.UseImportedTemplate(out, tpl, 0, 0, g.Width, g.Height)
	}

	cert := Certificate{Version: stampVersion, Type: stampType, Title: title, BaseSHA256: sha256Hex(base)}
	for _, slot := range doc.filled() {
		data, _ := doc.Signature(slot)
		if err := e.drawSignature(out, tr, slot, data); err != nil {
			return nil, fmt.Errorf("slot %s: %w", slot, err)
		}
		cert.Signers = append(cert.Signers, newSigner(slot, data))
	}

	keywords, err := cert.encode()
	if err != nil {
		return nil, err
	}
	out.SetTitle(title+TitleSuffix, false)
	out.SetProducer(Producer, false)
	out.SetKeywords(keywords, false)
	if err := out.Error(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := out.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing signed pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Embedder) drawSignature(out *gofpdf.Fpdf, tr func(string) string, slot layout.Slot, d Data) error {
	a := layout.SignatureAnchor(e.geometry, slot)

	scaled, w, h, err := fitImage(d.Image, a.Image.W, a.Image.H)
	if err != nil {
		return err
	}
	name := "signature-" + string(slot)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	out.RegisterImageOptionsReader(name, opts, bytes.NewReader(scaled))
	out.ImageOptions(name, a.Image.X, a.Image.Y+a.Image.H-h, w, h, false, opts, 0, "")

	out.SetFont("Helvetica", "", 8)
	out.SetXY(a.Name.X, a.Name.Y)
	out.CellFormat(a.Name.W, a.Name.H, tr(d.SignerName), "", 0, "L", false, 0, "")
	out.SetXY(a.Date.X, a.Date.Y)
	out.CellFormat(a.Date.W, a.Date.H, tr(d.SignedAt.In(e.location).Format("02.01.2006 15:04 Uhr")), "", 0, "L", false, 0, "")
	return nil
}

// fitImage scales a PNG into a w×h millimetre box keeping its aspect ratio,
// flattened onto white. It returns the encoded image and its size in mm.
func fitImage(src []byte, boxW, boxH float64) ([]byte, float64, float64, error) {
	img, err := png.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decoding signature image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, 0, 0, errors.New("signature image is empty")
	}
	scale := min(boxW/float64(b.Dx()), boxH/float64(b.Dy()))
	w, h := float64(b.Dx())*scale, float64(b.Dy())*scale

	px := image.Rect(0, 0, max(1, int(w*imageDensity)), max(1, int(h*imageDensity)))
	dst := image.NewRGBA(px)
	draw.Draw(dst, px, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, px, img, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, 0, 0, fmt.Errorf("encoding signature image: %w", err)
	}
	return buf.Bytes(), w, h, nil
}
