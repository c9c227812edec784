package pdf

import (
	"fmt"

	"umzugsbuero/backend/internal/domain/quote/pdf/content"
)

type Generator interface {
	GenerateQuote(in content.Input) (Result, error)
	GenerateInvoice(in content.InvoiceInput) (Result, error)
}

// Result is a rendered document. Degraded is set when the full document
// could not be produced and the minimal fallback was emitted instead; Cause
// then holds the primary failure.
type Result struct {
	PDF      []byte
	Degraded bool
	Cause    error
}

// RenderError is returned only when both the primary document and the
// fallback failed.
type RenderError struct {
	Primary  error
	Fallback error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render document: %v; fallback: %v", e.Primary, e.Fallback)
}

func (e *RenderError) Unwrap() error { return e.Fallback }

// Render runs primary and, when it fails or panics, fallback.
func Render(primary, fallback func() ([]byte, error)) (Result, error) {
	out, err := protect(primary)
	if err == nil {
		return Result{PDF: out}, nil
	}
	fb, fbErr := protect(fallback)
	if fbErr != nil {
		return Result{}, &RenderError{Primary: err, Fallback: fbErr}
	}
	return Result{PDF: fb, Degraded: true, Cause: err}, nil
}

func protect(fn func() ([]byte, error)) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("render panic: %v", r)
		}
	}()
	out, err = fn()
	if err == nil && len(out) == 0 {
		err = fmt.Errorf("render produced an empty document")
	}
	return out, err
}
