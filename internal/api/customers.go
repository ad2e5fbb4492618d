package api

import (
	"net/http"

	"medbill/m/domain"
)

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.respondDomainError(w, r, "list customers", err)
		return
	}
	respondJSON(w, http.StatusOK, customers)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.CustomerInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.customers.Create(r.Context(), req)
	if err != nil {
		h.respondDomainError(w, r, "create customer", err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	c, err := h.customers.Get(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, r, "load customer", err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	var req domain.CustomerInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.customers.Update(r.Context(), id, req)
	if err != nil {
		h.respondDomainError(w, r, "update customer", err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleOwner) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	if err := h.customers.Delete(r.Context(), id); err != nil {
		h.respondDomainError(w, r, "delete customer", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
