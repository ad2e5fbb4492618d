package api

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"medbill/m/domain"
	"medbill/m/internal/report"
)

// customerFilter reads the optional ?customer= query parameter.
func customerFilter(r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("customer"))
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	customerID, ok := customerFilter(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid customer")
		return
	}
	invoices, err := h.invoices.ListInvoices(r.Context(), customerID)
	if err != nil {
		h.respondDomainError(w, r, "list invoices", err)
		return
	}
	respondJSON(w, http.StatusOK, invoices)
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req domain.InvoiceInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	inv, err := h.invoices.CreateInvoice(r.Context(), req)
	if err != nil {
		h.respondDomainError(w, r, "create invoice", err)
		return
	}
	respondJSON(w, http.StatusCreated, inv)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}
	inv, err := h.invoices.GetInvoice(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, r, "load invoice", err)
		return
	}
	respondJSON(w, http.StatusOK, inv)
}

func (h *Handler) updateInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}
	var req domain.InvoiceUpdate
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	inv, err := h.invoices.UpdateInvoice(r.Context(), id, req)
	if err != nil {
		h.respondDomainError(w, r, "update invoice", err)
		return
	}
	respondJSON(w, http.StatusOK, inv)
}

func (h *Handler) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}
	if err := h.invoices.DeleteInvoice(r.Context(), id); err != nil {
		h.respondDomainError(w, r, "delete invoice", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) invoicePDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}
	doc, err := h.documents.RenderInvoice(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, r, "render invoice", err)
		return
	}
	respondFile(w, doc.ContentType, doc.Filename, doc.Body)
}

func (h *Handler) exportInvoices(w http.ResponseWriter, r *http.Request) {
	customerID, ok := customerFilter(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid customer")
		return
	}
	invoices, err := h.invoices.ListInvoices(r.Context(), customerID)
	if err != nil {
		h.respondDomainError(w, r, "export invoices", err)
		return
	}
	var buf bytes.Buffer
	if err := report.ExportInvoices(&buf, invoices); err != nil {
		h.respondDomainError(w, r, "export invoices", err)
		return
	}
	respondFile(w, report.XLSXContentType, report.ExportFilename, buf.Bytes())
}
