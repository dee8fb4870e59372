package v1

import (
	"net/http"

	"kaluste-backend/internal/domain"
	"kaluste-backend/internal/usecase"
	"kaluste-backend/pkg/utils"
)

// TradeInHandler covers the customer-facing reservation and trade-in intake
// plus their admin views.
type TradeInHandler struct {
	reservations *usecase.ReservationUsecase
	tradeIns     *usecase.TradeInUsecase
}

func NewTradeInHandler(reservations *usecase.ReservationUsecase, tradeIns *usecase.TradeInUsecase) *TradeInHandler {
	return &TradeInHandler{reservations: reservations, tradeIns: tradeIns}
}

// POST /api/v1/reservations
func (h *TradeInHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var res domain.Reservation
	if err := decode(r, &res); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.reservations.Create(r.Context(), &res); err != nil {
		handleError(w, err, http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, res)
}

// POST /api/v1/trade-in-requests
func (h *TradeInHandler) CreateTradeIn(w http.ResponseWriter, r *http.Request) {
	var req domain.TradeInRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.tradeIns.Create(r.Context(), &req); err != nil {
		handleError(w, err, http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, req)
}

// --- Admin ---

// GET /api/v1/admin/reservations
func (h *TradeInHandler) GetReservations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	reservations, total, err := h.reservations.List(r.Context(),
		q.Get("status"), utils.ParseInt(q.Get("limit"), 20), utils.ParseInt(q.Get("offset"), 0))
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Data:    reservations,
		Meta:    map[string]int64{"total": total},
	})
}

// PATCH /api/v1/admin/reservations/{id}/status
func (h *TradeInHandler) UpdateReservationStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.reservations.UpdateStatus(r.Context(), r.PathValue("id"), req.Status); err != nil {
		handleError(w, err, http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/admin/trade-in-requests
func (h *TradeInHandler) GetTradeIns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	requests, total, err := h.tradeIns.List(r.Context(),
		q.Get("status"), utils.ParseInt(q.Get("limit"), 20), utils.ParseInt(q.Get("offset"), 0))
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Data:    requests,
		Meta:    map[string]int64{"total": total},
	})
}

// GET /api/v1/admin/trade-in-requests/{id}
func (h *TradeInHandler) GetTradeIn(w http.ResponseWriter, r *http.Request) {
	req, err := h.tradeIns.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err, http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, req)
}

// PATCH /api/v1/admin/trade-in-requests/{id}
func (h *TradeInHandler) ReviewTradeIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status       string   `json:"status"`
		OfferedPrice *float64 `json:"offeredPrice"`
		AdminNote    string   `json:"adminNote"`
	}
	if err := decode(r, &body); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.tradeIns.Review(r.Context(), r.PathValue("id"), body.Status, body.OfferedPrice, body.AdminNote)
	if err != nil {
		handleError(w, err, http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusOK, updated)
}
