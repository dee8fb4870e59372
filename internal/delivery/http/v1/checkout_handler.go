package v1

import (
	"errors"
	"net/http"

	"kaluste-backend/internal/domain"
	"kaluste-backend/internal/metrics"
	"kaluste-backend/internal/usecase"
	"kaluste-backend/internal/validator"
	"kaluste-backend/pkg/utils"
)

type CheckoutHandler struct {
	checkout *usecase.CheckoutUsecase
}

func NewCheckoutHandler(checkout *usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// POST /api/v1/checkout/create-session
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req usecase.CheckoutRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validator.Struct(req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.checkout.CreateSession(r.Context(), req)
	if err != nil {
		metrics.CheckoutSessionsTotal.WithLabelValues(metrics.CheckoutFailed).Inc()
		if errors.Is(err, domain.ErrShippingUnavailable) {
			// The storefront should re-run the shipping step, not retry payment
			utils.WriteError(w, http.StatusUnprocessableEntity, "delivery is not available for this address")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			utils.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	metrics.CheckoutSessionsTotal.WithLabelValues(metrics.CheckoutCreated).Inc()
	utils.WriteJSON(w, http.StatusCreated, session)
}
