package v1

import (
	"net/http"

	"kaluste-backend/internal/domain"
	"kaluste-backend/internal/usecase"
	"kaluste-backend/pkg/utils"
)

type AdminInvoiceHandler struct {
	invoices *usecase.InvoiceUsecase
}

func NewAdminInvoiceHandler(invoices *usecase.InvoiceUsecase) *AdminInvoiceHandler {
	return &AdminInvoiceHandler{invoices: invoices}
}

// GET /api/v1/admin/invoices
func (h *AdminInvoiceHandler) GetInvoices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.InvoiceFilter{
		Status: q.Get("status"),
		Query:  q.Get("q"),
		Limit:  utils.ParseInt(q.Get("limit"), 20),
		Offset: utils.ParseInt(q.Get("offset"), 0),
	}

	invoices, total, err := h.invoices.List(r.Context(), filter)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Data:    invoices,
		Meta:    map[string]int64{"total": total},
	})
}

// GET /api/v1/admin/invoices/{id}
func (h *AdminInvoiceHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.invoices.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err, http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, invoice)
}

// POST /api/v1/admin/invoices
func (h *AdminInvoiceHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var invoice domain.Invoice
	if err := decode(r, &invoice); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.invoices.Create(r.Context(), &invoice); err != nil {
		handleError(w, err, http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, invoice)
}

// PUT /api/v1/admin/invoices/{id}
func (h *AdminInvoiceHandler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	var invoice domain.Invoice
	if err := decode(r, &invoice); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	invoice.ID = r.PathValue("id")

	if err := h.invoices.Update(r.Context(), &invoice); err != nil {
		handleError(w, err, http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusOK, invoice)
}

// PATCH /api/v1/admin/invoices/{id}/status
func (h *AdminInvoiceHandler) UpdateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.invoices.UpdateStatus(r.Context(), r.PathValue("id"), req.Status); err != nil {
		handleError(w, err, http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/v1/admin/invoices/{id}
func (h *AdminInvoiceHandler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := h.invoices.Delete(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, err, http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
