package signature

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"umzugsbuero/backend/internal/domain/quote/pdf/layout"
)

const (
	TitleSuffix     = " (digital signiert)"
	Producer        = "Umzugsbuero Signaturdienst"
	keywordsPrefix  = "signature-stamp:"
	stampType       = "provenance-stamp"
	stampVersion    = 1
	infoTitleKey    = "/Title"
	infoKeywordsKey = "/Keywords"
)

type Signer struct {
	Slot        layout.Slot `json:"slot"`
	Name        string      `json:"name"`
	SignedAt    time.Time   `json:"signedAt"`
	IP          string      `json:"ip,omitempty"`
	ImageSHA256 string      `json:"imageSha256"`
	Samples     int         `json:"samples,omitempty"`
	AvgVelocity float64     `json:"avgVelocity,omitempty"`
	DurationMS  int64       `json:"durationMs,omitempty"`
}

// Certificate is the provenance stamp written into the document keywords.
type Certificate struct {
	Version    int      `json:"version"`
	Type       string   `json:"type"`
	Title      string   `json:"title"`
	BaseSHA256 string   `json:"baseSha256"`
	Signers    []Signer `json:"signers"`
}

func newSigner(slot layout.Slot, d Data) Signer {
	s := Signer{
		Slot:        slot,
		Name:        d.SignerName,
		SignedAt:    d.SignedAt.UTC(),
		IP:          d.IP,
		ImageSHA256: sha256Hex(d.Image),
		Samples:     len(d.Velocities),
	}
	if len(d.Velocities) > 0 {
		var sum float64
		for _, v := range d.Velocities {
			sum += v
		}
		s.AvgVelocity = sum / float64(len(d.Velocities))
	}
	if n := len(d.Timestamps); n > 1 {
		s.DurationMS = d.Timestamps[n-1] - d.Timestamps[0]
	}
	return s
}

func (c Certificate) encode() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encoding certificate: %w", err)
	}
	return keywordsPrefix + base64.StdEncoding.EncodeToString(b), nil
}

func decodeCertificate(keywords string) (Certificate, error) {
	var c Certificate
	raw, ok := strings.CutPrefix(keywords, keywordsPrefix)
	if !ok {
		return c, errors.New("signature certificate missing")
	}
	b, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return c, fmt.Errorf("signature certificate is not base64: %w", err)
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("signature certificate is malformed: %w", err)
	}
	return c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// infoString returns the last literal string stored under key in the
// document information dictionary. Incremental updates append a newer
// dictionary, so the last occurrence wins.
func infoString(doc []byte, key string) (string, bool) {
	i := bytes.LastIndex(doc, []byte(key+" ("))
	if i < 0 {
		return "", false
	}
	return readLiteral(doc[i+len(key)+2:])
}

// readLiteral reads a PDF literal string body up to its closing parenthesis,
// resolving escapes and balanced inner parentheses.
func readLiteral(b []byte) (string, bool) {
	var out bytes.Buffer
	depth := 0
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch c {
		case '\\':
			if i+1 >= len(b) {
				return "", false
			}
			i++
			switch b[i] {
			case 'n':
				out.WriteByte('\n')
			case 'r':
				out.WriteByte('\r')
			case 't':
				out.WriteByte('\t')
			default:
				out.WriteByte(b[i])
			}
		case '(':
			depth++
			out.WriteByte(c)
		case ')':
			if depth == 0 {
				return out.String(), true
			}
			depth--
			out.WriteByte(c)
		default:
			out.WriteByte(c)
		}
	}
	return "", false
}
