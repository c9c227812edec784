// Package layout computes absolute page positions for document blocks.
//
// Compute is a pure function of its inputs: the same geometry, measurer and
// blocks always yield the same plan. Drawing is left to a writer that
// replays the operations of each placement.
package layout

// Geometry is a page size and its margins in millimetres.
type Geometry struct {
	Width        float64
	Height       float64
	Margin       float64
	FooterHeight float64
}

var A4 = Geometry{Width: 210, Height: 297, Margin: 15, FooterHeight: 18}

func (g Geometry) Top() float64          { return g.Margin }
func (g Geometry) Bottom() float64       { return g.Height - g.Margin - g.FooterHeight }
func (g Geometry) ContentWidth() float64 { return g.Width - 2*g.Margin }

// FooterTop is where the per-page footer starts.
func (g Geometry) FooterTop() float64 { return g.Height - g.Margin - g.FooterHeight + 4 }

type Rect struct {
	X, Y, W, H float64
}

type Font struct {
	Style string // "" or "B"
	Size  float64
}

var (
	Regular = Font{Size: 10}
	Bold    = Font{Style: "B", Size: 10}
	Small   = Font{Size: 8}
)

// LineHeight is the vertical advance of one text line in f.
func LineHeight(f Font) float64 {
	return f.Size * 0.42
}

// Measurer reports the rendered width of a string in millimetres.
type Measurer interface {
	StringWidth(f Font, s string) float64
}

// MonoMeasurer gives every rune the same advance per point of font size.
type MonoMeasurer struct {
	Advance float64
}

func (m MonoMeasurer) StringWidth(f Font, s string) float64 {
	return float64(len([]rune(s))) * f.Size * m.Advance
}

// Op is one drawing operation in absolute page coordinates.
type Op interface {
	isOp()
}

type TextOp struct {
	X, Y, W, H float64
	Text       string
	Font       Font
	Align      string // "L", "C" or "R"
}

type RectOp struct {
	X, Y, W, H float64
	Fill       int // grey level 0..255 when Filled
	Filled     bool
	Stroked    bool
}

type LineOp struct {
	X1, Y1, X2, Y2 float64
}

type ImageOp struct {
	X, Y, W, H float64
	Name       string
	Data       []byte
}

func (TextOp) isOp()  {}
func (RectOp) isOp()  {}
func (LineOp) isOp()  {}
func (ImageOp) isOp() {}

// Block is a unit of content. Height is measured for a given column width;
// Draw emits the operations for the rectangle the block was assigned.
type Block interface {
	Kind() string
	Height(m Measurer, width float64) float64
	Draw(m Measurer, r Rect) []Op
}

type Placement struct {
	Page int
	Kind string
	Rect Rect
	Ops  []Op
}

type Plan struct {
	Geometry   Geometry
	Pages      int
	Placements []Placement
}

// PageOps returns the operations of one page in placement order.
func (p Plan) PageOps(page int) []Op {
	var ops []Op
	for _, pl := range p.Placements {
		if pl.Page == page {
			ops = append(ops, pl.Ops...)
		}
	}
	return ops
}

// Splitter is a block that can continue on the next page. Split returns
// the part that fits into avail and the remainder; ok is false when not even
// one line fits.
type Splitter interface {
	Split(m Measurer, width, avail float64) (head, tail Block, ok bool)
}

// Compute assigns every block to a page and rectangle. Blocks advance a
// vertical cursor; a block that does not fit into the remaining space moves
// to the next page whole. A Splitter taller than a full page is cut at the
// bottom margin and continues on the following pages. Signature blocks are
// pinned to the bottom of the last page regardless of where they appear in
// the input.
func Compute(g Geometry, m Measurer, blocks []Block) Plan {
	plan := Plan{Geometry: g}
	width := g.ContentWidth()
	page, y := 0, g.Top()

	var pinned []Block
	for _, b := range blocks {
		if _, ok := b.(Signatures); ok {
			pinned = append(pinned, b)
			continue
		}
		for b != nil {
			h := b.Height(m, width)
			var rest Block
			if y+h > g.Bottom() {
				split := false
				if s, ok := b.(Splitter); ok && h > g.Bottom()-g.Top() {
					if head, tail, ok := s.Split(m, width, g.Bottom()-y); ok {
						b, rest, h = head, tail, head.Height(m, width)
						split = true
					}
				}
				if !split && y > g.Top() {
					page++
					y = g.Top()
					continue
				}
			}
			r := Rect{X: g.Margin, Y: y, W: width, H: h}
			plan.Placements = append(plan.Placements, Placement{Page: page, Kind: b.Kind(), Rect: r, Ops: b.Draw(m, r)})
			y += h
			b = rest
			if rest != nil {
				page++
				y = g.Top()
			}
		}
	}

	for _, b := range pinned {
		h := b.Height(m, width)
		if y+h > g.Bottom() {
			page++
		}
		r := Rect{X: g.Margin, Y: g.Bottom() - h, W: width, H: h}
		plan.Placements = append(plan.Placements, Placement{Page: page, Kind: b.Kind(), Rect: r, Ops: b.Draw(m, r)})
		y = g.Bottom()
	}

	plan.Pages = page + 1
	return plan
}
