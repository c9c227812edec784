package confirmation

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	apperrors "umzugsbuero/backend/internal/errors"
)

const tokenBytes = 32

// Token is the server-side record of a confirmation link. Only the hash of
// the opaque string handed out in the URL is stored.
type Token struct {
	Hash      string     `json:"-"`
	QuoteID   string     `json:"quoteId"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
}

// Issue mints a new token for a quote. The returned string goes into the
// URL; the Token is what gets persisted.
func Issue(quoteID string, now time.Time, ttl time.Duration) (string, Token, error) {
	raw, err := GenerateOpaqueToken(tokenBytes)
	if err != nil {
		return "", Token{}, err
	}
	return raw, Token{
		Hash:      Hash(raw),
		QuoteID:   quoteID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

func GenerateOpaqueToken(byteLength int) (string, error) {
	if byteLength <= 0 {
		byteLength = tokenBytes
	}
	b := make([]byte, byteLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand.Read: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (t Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func (t Token) Used() bool {
	return t.UsedAt != nil
}

// CheckViewable reports whether the token still grants access to the quote
// page. Viewing never consumes the token.
func (t Token) CheckViewable(now time.Time) error {
	if t.Used() {
		return apperrors.NewConflictError("confirmation link has already been used")
	}
	if t.Expired(now) {
		return apperrors.NewConflictError("confirmation link has expired")
	}
	return nil
}

// URL builds the public confirmation link for a raw token.
func URL(baseURL, raw string) string {
	return baseURL + "/quote-confirmation/" + raw
}
