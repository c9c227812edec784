package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// The confirmation routes are public; the token in the path is the only
// credential.

func (h *Handlers) ViewConfirmation(w http.ResponseWriter, r *http.Request) {
	v, err := h.Confirmations.View(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handlers) ConfirmQuote(w http.ResponseWriter, r *http.Request) {
	res, err := h.Confirmations.Confirm(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type declineRequest struct {
	Reason string `json:"reason"`
}

func (h *Handlers) DeclineQuote(w http.ResponseWriter, r *http.Request) {
	var req declineRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
			h.writeError(w, r, err)
			return
		}
	}
	res, err := h.Confirmations.Decline(r.Context(), chi.URLParam(r, "token"), req.Reason)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
