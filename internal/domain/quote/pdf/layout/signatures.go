package layout

type Slot string

const (
	SlotCustomer Slot = "customer"
	SlotCompany  Slot = "company"
)

var Slots = []Slot{SlotCustomer, SlotCompany}

func (s Slot) Valid() bool {
	return s == SlotCustomer || s == SlotCompany
}

const (
	SignatureBlockHeight = 40
	signatureGap         = 10
)

// Anchor is the fixed area reserved for one signature on the last page.
type Anchor struct {
	Image Rect
	LineY float64
	Label Rect
	Name  Rect
	Date  Rect
}

// SignatureAnchor returns the anchor of slot for documents laid out with g.
// It matches what the Signatures block draws.
func SignatureAnchor(g Geometry, slot Slot) Anchor {
	block := Rect{X: g.Margin, Y: g.Bottom() - SignatureBlockHeight, W: g.ContentWidth(), H: SignatureBlockHeight}
	return anchorIn(block, slot)
}

func anchorIn(block Rect, slot Slot) Anchor {
	colW := (block.W - signatureGap) / 2
	x := block.X
	if slot == SlotCompany {
		x += colW + signatureGap
	}
	y := block.Y
	return Anchor{
		Image: Rect{X: x, Y: y + 2, W: colW, H: 22},
		LineY: y + 26,
		Label: Rect{X: x, Y: y + 27, W: colW, H: 4},
		Name:  Rect{X: x, Y: y + 32, W: colW, H: 4},
		Date:  Rect{X: x, Y: y + 36, W: colW, H: 4},
	}
}

// Signatures draws the two signature lines with their captions. It is always
// placed at the bottom of the last page.
type Signatures struct {
	CustomerLabel string
	CompanyLabel  string
}

func (Signatures) Kind() string { return "signatures" }

func (Signatures) Height(Measurer, float64) float64 { return SignatureBlockHeight }

func (s Signatures) Draw(m Measurer, r Rect) []Op {
	var ops []Op
	for _, slot := range Slots {
		a := anchorIn(r, slot)
		label := s.CustomerLabel
		if slot == SlotCompany {
			label = s.CompanyLabel
		}
		ops = append(ops,
			LineOp{X1: a.Image.X, Y1: a.LineY, X2: a.Image.X + a.Image.W, Y2: a.LineY},
			TextOp{X: a.Label.X, Y: a.Label.Y, W: a.Label.W, H: a.Label.H, Text: Truncate(m, Small, label, a.Label.W), Font: Small, Align: "L"},
		)
	}
	return ops
}
