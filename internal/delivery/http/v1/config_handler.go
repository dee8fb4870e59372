package v1

import (
	"net/http"
	"time"

	"kaluste-backend/internal/domain"
	"kaluste-backend/internal/usecase"
	"kaluste-backend/pkg/cache"
	"kaluste-backend/pkg/utils"
)

const enumsCacheKey = "system:config:enums"

type ConfigHandler struct {
	cache    cache.CacheService
	shipping *usecase.ShippingUsecase
	enumsTTL time.Duration
}

func NewConfigHandler(cacheService cache.CacheService, shipping *usecase.ShippingUsecase, enumsTTL time.Duration) *ConfigHandler {
	return &ConfigHandler{cache: cacheService, shipping: shipping, enumsTTL: enumsTTL}
}

// GET /api/v1/config/enums
func (h *ConfigHandler) GetEnums(w http.ResponseWriter, r *http.Request) {
	if val, found := h.cache.Get(enumsCacheKey); found {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		utils.WriteJSON(w, http.StatusOK, val)
		return
	}

	zones, err := h.shipping.ListActiveZones(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to load shipping zones")
		return
	}

	response := map[string]interface{}{
		"rule_types":           domain.RuleTypes,
		"product_conditions":   domain.ProductConditions,
		"rule_conditions":      domain.RuleConditions,
		"delivery_methods":     domain.DeliveryMethods,
		"invoice_statuses":     domain.InvoiceStatuses,
		"reservation_statuses": domain.ReservationStatuses,
		"trade_in_statuses":    domain.TradeInStatuses,
		"shipping_zones":       zones,
	}

	h.cache.Set(enumsCacheKey, response, h.enumsTTL)

	w.Header().Set("Cache-Control", "public, max-age=3600")
	utils.WriteJSON(w, http.StatusOK, response)
}
