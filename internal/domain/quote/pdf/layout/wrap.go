package layout

import "strings"

const ellipsis = "…"

// Wrap breaks text into lines no wider than width. Explicit newlines are
// kept; words wider than the column are split by rune. Empty text yields no
// lines.
func Wrap(m Measurer, f Font, text string, width float64) []string {
	text = strings.TrimRight(text, "\n ")
	if text == "" {
		return nil
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := ""
		for _, w := range words {
			for m.StringWidth(f, w) > width {
				if cur != "" {
					lines = append(lines, cur)
					cur = ""
				}
				head, tail := splitAt(m, f, w, width)
				lines = append(lines, head)
				w = tail
			}
			if w == "" {
				continue
			}
			candidate := w
			if cur != "" {
				candidate = cur + " " + w
			}
			if m.StringWidth(f, candidate) <= width {
				cur = candidate
				continue
			}
			lines = append(lines, cur)
			cur = w
		}
		if cur != "" {
			lines = append(lines, cur)
		}
	}
	return lines
}

// splitAt returns the longest prefix of w that fits and the rest. At least
// one rune is always taken so the caller makes progress.
func splitAt(m Measurer, f Font, w string, width float64) (string, string) {
	r := []rune(w)
	n := 1
	for n < len(r) && m.StringWidth(f, string(r[:n+1])) <= width {
		n++
	}
	return string(r[:n]), string(r[n:])
}

// Truncate shortens s with an ellipsis until it fits into width.
func Truncate(m Measurer, f Font, s string, width float64) string {
	if m.StringWidth(f, s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && m.StringWidth(f, string(r)+ellipsis) > width {
		r = r[:len(r)-1]
	}
	return strings.TrimRight(string(r), " ") + ellipsis
}
