package handlers

import (
	"net/http"

	"umzugsbuero/backend/internal/service"
)

type calendarImportRequest struct {
	CSVData   string        `json:"csvData"`
	StartDate *service.Date `json:"startDate,omitempty"`
}

func (h *Handlers) ImportCalendar(w http.ResponseWriter, r *http.Request) {
	var req calendarImportRequest
	if err := decodeJSON(w, r, maxCSVBody, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	rep, err := h.Calendar.Import(r.Context(), req.CSVData, req.StartDate.Ptr())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
