package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"umzugsbuero/backend/internal/service"
)

func (h *Handlers) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var in service.CustomerInput
	if err := decodeJSON(w, r, maxJSONBody, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.Customers.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handlers) ListCustomers(w http.ResponseWriter, r *http.Request) {
	list, err := h.Customers.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.Customers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handlers) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var in service.CustomerInput
	if err := decodeJSON(w, r, maxJSONBody, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.Customers.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handlers) SearchCustomers(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	matches, err := h.Customers.Search(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (h *Handlers) CustomerQuotes(w http.ResponseWriter, r *http.Request) {
	list, err := h.Customers.Quotes(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// UpdateCustomerQuote edits a quote through its owning customer, so the
// quote can never be moved to another customer.
func (h *Handlers) UpdateCustomerQuote(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateQuoteInput
	if err := decodeJSON(w, r, maxJSONBody, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	q, err := h.Quotes.Update(r.Context(), chi.URLParam(r, "customerId"), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handlers) ExportCustomers(w http.ResponseWriter, r *http.Request) {
	data, err := h.Customers.Export(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeFile(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "kunden.xlsx", data)
}
