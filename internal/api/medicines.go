package api

import (
	"net/http"

	"medbill/m/domain"
)

func (h *Handler) listMedicines(w http.ResponseWriter, r *http.Request) {
	medicines, err := h.medicines.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.respondDomainError(w, r, "list medicines", err)
		return
	}
	respondJSON(w, http.StatusOK, medicines)
}

func (h *Handler) createMedicine(w http.ResponseWriter, r *http.Request) {
	var req domain.MedicineInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := h.medicines.Create(r.Context(), req)
	if err != nil {
		h.respondDomainError(w, r, "create medicine", err)
		return
	}
	respondJSON(w, http.StatusCreated, m)
}

func (h *Handler) getMedicine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	m, err := h.medicines.Get(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, r, "load medicine", err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (h *Handler) updateMedicine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	var req domain.MedicineInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := h.medicines.Update(r.Context(), id, req)
	if err != nil {
		h.respondDomainError(w, r, "update medicine", err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (h *Handler) deleteMedicine(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleOwner) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	if err := h.medicines.Delete(r.Context(), id); err != nil {
		h.respondDomainError(w, r, "delete medicine", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
