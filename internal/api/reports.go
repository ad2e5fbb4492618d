package api

import "net/http"

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.reports.Summary(r.Context())
	if err != nil {
		h.respondDomainError(w, r, "build summary", err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}
