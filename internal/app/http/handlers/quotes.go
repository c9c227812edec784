package handlers

import (
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"umzugsbuero/backend/internal/domain/quote"
	"umzugsbuero/backend/internal/domain/quote/pdf/signature"
	apperrors "umzugsbuero/backend/internal/errors"
	"umzugsbuero/backend/internal/service"
)

func (h *Handlers) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var in service.CreateQuoteInput
	if err := decodeJSON(w, r, maxJSONBody, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	q, err := h.Quotes.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

func (h *Handlers) ListQuotes(w http.ResponseWriter, r *http.Request) {
	list, err := h.Quotes.List(r.Context(), r.URL.Query().Get("customerId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) GetQuote(w http.ResponseWriter, r *http.Request) {
	q, err := h.Quotes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handlers) SendQuote(w http.ResponseWriter, r *http.Request) {
	res, err := h.Quotes.Send(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) AcceptQuote(w http.ResponseWriter, r *http.Request) {
	q, err := h.Quotes.Accept(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handlers) RejectQuote(w http.ResponseWriter, r *http.Request) {
	q, err := h.Quotes.Reject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handlers) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var in quote.PaymentInfo
	if err := decodeJSON(w, r, maxJSONBody, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	q, err := h.Quotes.RecordPayment(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handlers) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Quotes.CreateInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (h *Handlers) QuotePDF(w http.ResponseWriter, r *http.Request) {
	res, q, err := h.Quotes.Document(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writePDF(w, "Angebot-"+q.Number+".pdf", res.PDF, res.Degraded)
}

func (h *Handlers) SignQuote(w http.ResponseWriter, r *http.Request) {
	var in service.SignInput
	if err := decodeJSON(w, r, maxDocumentBody, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	in.IP = clientIP(r)
	res, q, err := h.Quotes.Sign(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("X-Signature-State", string(res.State))
	writePDF(w, "Angebot-"+q.Number+"-unterschrieben.pdf", res.PDF, res.Degraded)
}

// ValidateDocument reads the provenance stamp of an uploaded PDF.
func (h *Handlers) ValidateDocument(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBody))
	if err != nil {
		h.writeError(w, r, apperrors.NewValidationError("invalid document",
			apperrors.ValidationDetail{Field: "body", Message: "document exceeds " + strconv.Itoa(maxDocumentBody) + " bytes"}))
		return
	}
	if len(body) == 0 {
		h.writeError(w, r, apperrors.NewValidationError("invalid document",
			apperrors.ValidationDetail{Field: "body", Message: "request body is empty"}))
		return
	}
	writeJSON(w, http.StatusOK, signature.Validate(body))
}

// clientIP relies on chi's RealIP middleware having rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
