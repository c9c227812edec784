package layout

import "math"

const cellPadding = 1.5

// Heading is a single bold line, optionally followed by a rule.
type Heading struct {
	Text string
	Size float64
	Rule bool
}

func (Heading) Kind() string { return "heading" }

func (h Heading) font() Font {
	size := h.Size
	if size == 0 {
		size = 16
	}
	return Font{Style: "B", Size: size}
}

func (h Heading) Height(Measurer, float64) float64 {
	return LineHeight(h.font()) + 3
}

func (h Heading) Draw(m Measurer, r Rect) []Op {
	f := h.font()
	ops := []Op{TextOp{X: r.X, Y: r.Y, W: r.W, H: LineHeight(f), Text: Truncate(m, f, h.Text, r.W), Font: f, Align: "L"}}
	if h.Rule {
		y := r.Y + LineHeight(f) + 1
		ops = append(ops, LineOp{X1: r.X, Y1: y, X2: r.X + r.W, Y2: y})
	}
	return ops
}

// Paragraph is wrapped free text.
type Paragraph struct {
	Text       string
	Font       Font
	Align      string
	SpaceAfter float64
}

func (Paragraph) Kind() string { return "paragraph" }

func (p Paragraph) fontOrDefault() Font {
	if p.Font.Size == 0 {
		return Regular
	}
	return p.Font
}

func (p Paragraph) wrapped(m Measurer, width float64) textLines {
	f := p.fontOrDefault()
	align := p.Align
	if align == "" {
		align = "L"
	}
	return textLines{lines: Wrap(m, f, p.Text, width), font: f, align: align, spaceAfter: p.SpaceAfter}
}

func (p Paragraph) Height(m Measurer, width float64) float64 {
	return p.wrapped(m, width).Height(m, width)
}

func (p Paragraph) Draw(m Measurer, r Rect) []Op {
	return p.wrapped(m, r.W).Draw(m, r)
}

func (p Paragraph) Split(m Measurer, width, avail float64) (Block, Block, bool) {
	return p.wrapped(m, width).Split(m, width, avail)
}

// textLines is a paragraph already wrapped to the column width, so a
// continuation never re-wraps differently from its first part.
type textLines struct {
	lines      []string
	font       Font
	align      string
	spaceAfter float64
}

func (textLines) Kind() string { return "paragraph" }

func (t textLines) Height(Measurer, float64) float64 {
	return float64(len(t.lines))*LineHeight(t.font) + t.spaceAfter
}

func (t textLines) Draw(_ Measurer, r Rect) []Op {
	var ops []Op
	lh := LineHeight(t.font)
	for i, line := range t.lines {
		ops = append(ops, TextOp{X: r.X, Y: r.Y + float64(i)*lh, W: r.W, H: lh, Text: line, Font: t.font, Align: t.align})
	}
	return ops
}

func (t textLines) Split(_ Measurer, _ float64, avail float64) (Block, Block, bool) {
	n := int(avail / LineHeight(t.font))
	if n < 1 || n >= len(t.lines) {
		return nil, nil, false
	}
	head := textLines{lines: t.lines[:n], font: t.font, align: t.align}
	tail := t
	tail.lines = t.lines[n:]
	return head, tail, true
}

type Pair struct {
	Label string
	Value string
}

// KeyValue is a two-column list: a fixed label column and a wrapped value
// column. Rows grow with the number of value lines.
type KeyValue struct {
	Title      string
	Rows       []Pair
	LabelWidth float64
	SpaceAfter float64
}

func (KeyValue) Kind() string { return "keyvalue" }

func (kv KeyValue) labelWidth(width float64) float64 {
	if kv.LabelWidth > 0 {
		return kv.LabelWidth
	}
	return width * 0.3
}

func (kv KeyValue) rowLines(m Measurer, width float64) [][]string {
	vw := width - kv.labelWidth(width)
	out := make([][]string, len(kv.Rows))
	for i, row := range kv.Rows {
		lines := Wrap(m, Regular, row.Value, vw)
		if len(lines) == 0 {
			lines = []string{"-"}
		}
		out[i] = lines
	}
	return out
}

func (kv KeyValue) Height(m Measurer, width float64) float64 {
	h := kv.SpaceAfter
	if kv.Title != "" {
		h += LineHeight(Bold) + 1
	}
	for _, lines := range kv.rowLines(m, width) {
		h += float64(len(lines)) * LineHeight(Regular)
	}
	return h
}

func (kv KeyValue) Draw(m Measurer, r Rect) []Op {
	var ops []Op
	y := r.Y
	lh := LineHeight(Regular)
	if kv.Title != "" {
		ops = append(ops, TextOp{X: r.X, Y: y, W: r.W, H: LineHeight(Bold), Text: kv.Title, Font: Bold, Align: "L"})
		y += LineHeight(Bold) + 1
	}
	lw := kv.labelWidth(r.W)
	for i, lines := range kv.rowLines(m, r.W) {
		label := Truncate(m, Bold, kv.Rows[i].Label, lw-2)
		ops = append(ops, TextOp{X: r.X, Y: y, W: lw, H: lh, Text: label, Font: Bold, Align: "L"})
		for j, line := range lines {
			ops = append(ops, TextOp{X: r.X + lw, Y: y + float64(j)*lh, W: r.W - lw, H: lh, Text: line, Font: Regular, Align: "L"})
		}
		y += float64(len(lines)) * lh
	}
	return ops
}

type Column struct {
	Header string
	Width  float64 // millimetres; 0 takes the remaining width
	Align  string
}

// Table draws a header row and body rows with wrapped cells. The last
// Emphasis rows are set in bold below a rule, for totals.
type Table struct {
	Columns    []Column
	Rows       [][]string
	Emphasis   int
	SpaceAfter float64
}

func (Table) Kind() string { return "table" }

func (t Table) widths(width float64) []float64 {
	out := make([]float64, len(t.Columns))
	fixed, flex := 0.0, 0
	for i, c := range t.Columns {
		out[i] = c.Width
		fixed += c.Width
		if c.Width == 0 {
			flex++
		}
	}
	if flex > 0 {
		rest := math.Max(width-fixed, 0) / float64(flex)
		for i := range out {
			if out[i] == 0 {
				out[i] = rest
			}
		}
	}
	return out
}

func (t Table) rowFont(i int) Font {
	if i >= len(t.Rows)-t.Emphasis {
		return Bold
	}
	return Regular
}

func (t Table) cellLines(m Measurer, f Font, text string, w float64) []string {
	lines := Wrap(m, f, text, w-2*cellPadding)
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

func (t Table) rowHeight(m Measurer, i int, widths []float64) float64 {
	n := 1
	f := t.rowFont(i)
	for j, cell := range t.Rows[i] {
		if j >= len(widths) {
			break
		}
		if l := len(t.cellLines(m, f, cell, widths[j])); l > n {
			n = l
		}
	}
	return float64(n)*LineHeight(f) + 2
}

func (t Table) headerHeight() float64 { return LineHeight(Bold) + 2 }

func (t Table) Height(m Measurer, width float64) float64 {
	widths := t.widths(width)
	h := t.headerHeight() + t.SpaceAfter
	for i := range t.Rows {
		h += t.rowHeight(m, i, widths)
	}
	return h
}

func (t Table) Draw(m Measurer, r Rect) []Op {
	widths := t.widths(r.W)
	hh := t.headerHeight()
	ops := []Op{RectOp{X: r.X, Y: r.Y, W: r.W, H: hh, Fill: 230, Filled: true}}
	x := r.X
	for j, c := range t.Columns {
		ops = append(ops, TextOp{X: x + cellPadding, Y: r.Y + 1, W: widths[j] - 2*cellPadding, H: LineHeight(Bold), Text: Truncate(m, Bold, c.Header, widths[j]-2*cellPadding), Font: Bold, Align: alignOf(c)})
		x += widths[j]
	}

	y := r.Y + hh
	for i, row := range t.Rows {
		f := t.rowFont(i)
		rh := t.rowHeight(m, i, widths)
		if t.Emphasis > 0 && i == len(t.Rows)-t.Emphasis {
			ops = append(ops, LineOp{X1: r.X, Y1: y, X2: r.X + r.W, Y2: y})
		}
		x = r.X
		for j, cell := range row {
			if j >= len(widths) {
				break
			}
			lh := LineHeight(f)
			for k, line := range t.cellLines(m, f, cell, widths[j]) {
				ops = append(ops, TextOp{X: x + cellPadding, Y: y + 1 + float64(k)*lh, W: widths[j] - 2*cellPadding, H: lh, Text: line, Font: f, Align: alignOf(t.Columns[j])})
			}
			x += widths[j]
		}
		y += rh
	}
	return ops
}

func alignOf(c Column) string {
	if c.Align == "" {
		return "L"
	}
	return c.Align
}

// ServiceList is a fixed-size framed box. Items fill a column top to bottom
// and continue in a further column after MaxRows.
type ServiceList struct {
	Title     string
	Items     []string
	MaxRows   int
	RowHeight float64
}

func (ServiceList) Kind() string { return "services" }

func (s ServiceList) maxRows() int {
	if s.MaxRows <= 0 {
		return 6
	}
	return s.MaxRows
}

func (s ServiceList) rowHeight() float64 {
	if s.RowHeight <= 0 {
		return LineHeight(Regular) + 0.5
	}
	return s.RowHeight
}

// Columns is the number of columns the items occupy.
func (s ServiceList) Columns() int {
	n := (len(s.Items) + s.maxRows() - 1) / s.maxRows()
	if n < 1 {
		return 1
	}
	return n
}

func (s ServiceList) Height(Measurer, float64) float64 {
	return LineHeight(Bold) + 2 + float64(s.maxRows())*s.rowHeight() + 2*cellPadding + 3
}

func (s ServiceList) Draw(m Measurer, r Rect) []Op {
	ops := []Op{TextOp{X: r.X, Y: r.Y, W: r.W, H: LineHeight(Bold), Text: s.Title, Font: Bold, Align: "L"}}
	boxY := r.Y + LineHeight(Bold) + 2
	boxH := float64(s.maxRows())*s.rowHeight() + 2*cellPadding
	ops = append(ops, RectOp{X: r.X, Y: boxY, W: r.W, H: boxH, Fill: 248, Filled: true, Stroked: true})

	colW := (r.W - 2*cellPadding) / float64(s.Columns())
	for i, item := range s.Items {
		col, row := i/s.maxRows(), i%s.maxRows()
		x := r.X + cellPadding + float64(col)*colW
		y := boxY + cellPadding + float64(row)*s.rowHeight()
		text := Truncate(m, Regular, "• "+item, colW-cellPadding)
		ops = append(ops, TextOp{X: x, Y: y, W: colW - cellPadding, H: s.rowHeight(), Text: text, Font: Regular, Align: "L"})
	}
	return ops
}

// Image is a fixed-size picture with an optional caption to its right.
type Image struct {
	Name    string
	Data    []byte
	Size    float64
	Caption string
}

func (Image) Kind() string { return "image" }

func (i Image) Height(Measurer, float64) float64 { return i.Size + 3 }

func (i Image) Draw(m Measurer, r Rect) []Op {
	ops := []Op{ImageOp{X: r.X, Y: r.Y, W: i.Size, H: i.Size, Name: i.Name, Data: i.Data}}
	if i.Caption != "" {
		cw := r.W - i.Size - 4
		lh := LineHeight(Small)
		for k, line := range Wrap(m, Small, i.Caption, cw) {
			ops = append(ops, TextOp{X: r.X + i.Size + 4, Y: r.Y + 2 + float64(k)*lh, W: cw, H: lh, Text: line, Font: Small, Align: "L"})
		}
	}
	return ops
}

type Spacer struct {
	Size float64
}

func (Spacer) Kind() string                       { return "spacer" }
func (s Spacer) Height(Measurer, float64) float64 { return s.Size }
func (Spacer) Draw(Measurer, Rect) []Op           { return nil }
