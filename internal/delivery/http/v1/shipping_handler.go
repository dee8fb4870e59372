package v1

import (
	"errors"
	"net/http"

	"kaluste-backend/internal/domain"
	"kaluste-backend/internal/metrics"
	"kaluste-backend/internal/usecase"
	"kaluste-backend/pkg/utils"
)

type ShippingHandler struct {
	shipping *usecase.ShippingUsecase
}

func NewShippingHandler(shipping *usecase.ShippingUsecase) *ShippingHandler {
	return &ShippingHandler{shipping: shipping}
}

type calculateRequest struct {
	PostalCode     string             `json:"postal_code"`
	DeliveryMethod string             `json:"delivery_method"`
	Products       []usecase.CartItem `json:"products"`
	// ProductIDs is the simple form: each id counts as quantity 1.
	ProductIDs []string `json:"product_ids"`
}

// POST /api/v1/shipping/calculate
func (h *ShippingHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := decode(r, &req); err != nil {
		metrics.ShippingQuotesTotal.WithLabelValues(metrics.QuoteInvalidInput).Inc()
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := req.Products
	for _, id := range req.ProductIDs {
		items = append(items, usecase.CartItem{ProductID: id, Quantity: 1})
	}

	quote, err := h.shipping.CalculateQuote(r.Context(), req.PostalCode, req.DeliveryMethod, items)
	if err != nil {
		// Unavailability is a valid outcome, not a request failure
		if errors.Is(err, domain.ErrShippingUnavailable) {
			metrics.ShippingQuotesTotal.WithLabelValues(metrics.QuoteUnavailable).Inc()
			utils.WriteJSON(w, http.StatusOK, quote)
			return
		}
		metrics.ShippingQuotesTotal.WithLabelValues(metrics.QuoteInvalidInput).Inc()
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	metrics.ShippingQuotesTotal.WithLabelValues(metrics.QuoteAvailable).Inc()
	utils.WriteJSON(w, http.StatusOK, quote)
}
