package gofpdf

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"umzugsbuero/backend/internal/domain/quote/pdf"
	"umzugsbuero/backend/internal/domain/quote/pdf/content"
	"umzugsbuero/backend/internal/domain/quote/pdf/layout"
)

const (
	utf8Family = "DejaVu"
	coreFamily = "Helvetica"
	producer   = "Umzugsbüro Dokumentenservice"
)

type Generator struct {
	company content.Company
	fontDir string
	logger  *zap.Logger
}

// New returns a generator. With an empty fontDir the core Helvetica font is
// used and text is translated to cp1252.
func New(company content.Company, fontDir string, logger *zap.Logger) *Generator {
	return &Generator{company: company, fontDir: fontDir, logger: logger}
}

var _ pdf.Generator = (*Generator)(nil)

func (g *Generator) GenerateQuote(in content.Input) (pdf.Result, error) {
	in.Company = g.company
	blocks, err := content.AssembleQuote(in)
	if err != nil {
		return pdf.Result{}, err
	}
	return g.render("Angebot "+in.Quote.Number, blocks, content.QuoteFallback(in))
}

func (g *Generator) GenerateInvoice(in content.InvoiceInput) (pdf.Result, error) {
	in.Company = g.company
	blocks, err := content.AssembleInvoice(in)
	if err != nil {
		return pdf.Result{}, err
	}
	return g.render("Rechnung "+in.Invoice.Number, blocks, content.InvoiceFallback(in))
}

func (g *Generator) render(title string, blocks []layout.Block, fb content.FallbackInput) (pdf.Result, error) {
	res, err := pdf.Render(
		func() ([]byte, error) { return g.draw(title, blocks, g.fontDir) },
		func() ([]byte, error) { return g.draw(fb.Title, content.Fallback(fb), "") },
	)
	if err != nil {
		g.logger.Error("document fallback failed", zap.String("title", title), zap.Error(err))
		return res, err
	}
	if res.Degraded {
		g.logger.Warn("document rendered as fallback", zap.String("title", title), zap.Error(res.Cause))
	}
	return res, nil
}

// surface is one document under construction together with its font setup.
type surface struct {
	pdf    *gofpdf.Fpdf
	family string
	tr     func(string) string
}

func newSurface(fontDir string) *surface {
	p := gofpdf.New("P", "mm", "A4", "")
	p.SetAutoPageBreak(false, 0)
	s := &surface{pdf: p}
	if fontDir == "" {
		s.family = coreFamily
		s.tr = p.UnicodeTranslatorFromDescriptor("")
		return s
	}
	p.AddUTF8Font(utf8Family, "", filepath.Join(fontDir, "DejaVuSans.ttf"))
	p.AddUTF8Font(utf8Family, "B", filepath.Join(fontDir, "DejaVuSans-Bold.ttf"))
	s.family = utf8Family
	s.tr = func(v string) string { return v }
	return s
}

func (s *surface) setFont(f layout.Font) {
	s.pdf.SetFont(s.family, f.Style, f.Size)
}

// StringWidth makes the surface the layout measurer, so wrapping uses the
// real font metrics.
func (s *surface) StringWidth(f layout.Font, v string) float64 {
	s.setFont(f)
	return s.pdf.GetStringWidth(s.tr(v))
}

func (g *Generator) draw(title string, blocks []layout.Block, fontDir string) ([]byte, error) {
	s := newSurface(fontDir)
	if err := s.pdf.Error(); err != nil {
		return nil, fmt.Errorf("loading fonts from %s: %w", fontDir, err)
	}
	geo := layout.A4
	s.pdf.SetTitle(title, false)
	s.pdf.SetProducer(producer, true)
	s.pdf.SetCreator(g.company.Name, true)
	s.pdf.AliasNbPages("")
	s.pdf.SetFooterFunc(func() { s.footer(geo, content.FooterLines(g.company)) })

	plan := layout.Compute(geo, s, blocks)
	for page := 0; page < plan.Pages; page++ {
		s.pdf.AddPage()
		for _, op := range plan.PageOps(page) {
			s.apply(op)
		}
	}

	var buf bytes.Buffer
	if err := s.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *surface) apply(op layout.Op) {
	p := s.pdf
	switch o := op.(type) {
	case layout.TextOp:
		s.setFont(o.Font)
		p.SetXY(o.X, o.Y)
		p.CellFormat(o.W, o.H, s.tr(o.Text), "", 0, o.Align, false, 0, "")
	case layout.RectOp:
		style := ""
		if o.Filled {
			p.SetFillColor(o.Fill, o.Fill, o.Fill)
			style += "F"
		}
		if o.Stroked {
			style += "D"
		}
		if style == "" {
			return
		}
		p.Rect(o.X, o.Y, o.W, o.H, style)
	case layout.LineOp:
		p.Line(o.X1, o.Y1, o.X2, o.Y2)
	case layout.ImageOp:
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		p.RegisterImageOptionsReader(o.Name, opts, bytes.NewReader(o.Data))
		p.ImageOptions(o.Name, o.X, o.Y, o.W, o.H, false, opts, 0, "")
	}
}

func (s *surface) footer(geo layout.Geometry, lines []string) {
	p := s.pdf
	y := geo.FooterTop()
	p.SetDrawColor(160, 160, 160)
	p.Line(geo.Margin, y-1, geo.Width-geo.Margin, y-1)
	p.SetDrawColor(0, 0, 0)

	s.setFont(layout.Small)
	lh := layout.LineHeight(layout.Small)
	for i, line := range lines {
		p.SetXY(geo.Margin, y+float64(i)*lh)
		p.CellFormat(geo.ContentWidth()-30, lh, s.tr(line), "", 0, "L", false, 0, "")
	}
	p.SetXY(geo.Width-geo.Margin-30, y)
	p.CellFormat(30, lh, fmt.Sprintf("Seite %d von {nb}", p.PageNo()), "", 0, "R", false, 0, "")
}
