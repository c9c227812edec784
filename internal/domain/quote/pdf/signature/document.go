// Package signature overlays handwritten signatures onto rendered documents
// and reads the provenance stamp back.
//
// The stamp is not a cryptographic signature. It records who signed, when,
// and hashes of the signature images, but nothing ties it to the document
// content: anyone able to write PDF metadata can forge it.
package signature

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/png"
	"strings"
	"time"

	"umzugsbuero/backend/internal/domain/quote/pdf/layout"
	apperrors "umzugsbuero/backend/internal/errors"
)

type State string

const (
	StateUnsigned        State = "unsigned"
	StatePartiallySigned State = "partially_signed"
	StateFullySigned     State = "fully_signed"
)

func stateFor(n int) State {
	switch {
	case n <= 0:
		return StateUnsigned
	case n < len(layout.Slots):
		return StatePartiallySigned
	default:
		return StateFullySigned
	}
}

// Data is one signing action. Velocities and Timestamps are the pointer
// samples recorded while drawing; they are summarised in the stamp only.
type Data struct {
	Image      []byte
	SignerName string
	SignedAt   time.Time
	IP         string
	Velocities []float64
	Timestamps []int64
}

// DecodeImage accepts a PNG as a data URL or as plain base64.
func DecodeImage(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ","); strings.HasPrefix(s, "data:") && i > 0 {
		s = s[i+1:]
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding signature image: %w", err)
	}
	return b, nil
}

// Document is an unsigned base document plus at most one signature per
// slot. Rendering always starts from the base, so re-embedding a slot
// replaces the earlier signature instead of stacking a second one.
type Document struct {
	base  []byte
	slots map[layout.Slot]Data
}

func NewDocument(base []byte) *Document {
	return &Document{base: base, slots: make(map[layout.Slot]Data, len(layout.Slots))}
}

func (d *Document) Base() []byte { return d.base }

func (d *Document) Embed(slot layout.Slot, data Data) error {
	var details []apperrors.ValidationDetail
	if !slot.Valid() {
		details = append(details, apperrors.ValidationDetail{Field: "slot", Message: fmt.Sprintf("unknown slot %q", slot)})
	}
	if strings.TrimSpace(data.SignerName) == "" {
		details = append(details, apperrors.ValidationDetail{Field: "signerName", Message: "signer name is required"})
	}
	if len(data.Image) == 0 {
		details = append(details, apperrors.ValidationDetail{Field: "image", Message: "signature image is required"})
	} else if _, format, err := image.DecodeConfig(bytes.NewReader(data.Image)); err != nil || format != "png" {
		details = append(details, apperrors.ValidationDetail{Field: "image", Message: "signature image must be a PNG"})
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid signature", details...)
	}
	if data.SignedAt.IsZero() {
		data.SignedAt = time.Now()
	}
	d.slots[slot] = data
	return nil
}

func (d *Document) Signature(slot layout.Slot) (Data, bool) {
	s, ok := d.slots[slot]
	return s, ok
}

func (d *Document) State() State {
	return stateFor(len(d.slots))
}

// filled returns the signed slots in fixed slot order.
func (d *Document) filled() []layout.Slot {
	var out []layout.Slot
	for _, s := range layout.Slots {
		if _, ok := d.slots[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
