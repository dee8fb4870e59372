package v1

import (
	"net/http"

	"kaluste-backend/internal/domain"
	"kaluste-backend/internal/usecase"
	"kaluste-backend/pkg/utils"
)

// AdminShippingHandler exposes the zone, rule and zone-price administration
// endpoints behind the admin middleware.
type AdminShippingHandler struct {
	shipping *usecase.ShippingUsecase
}

func NewAdminShippingHandler(shipping *usecase.ShippingUsecase) *AdminShippingHandler {
	return &AdminShippingHandler{shipping: shipping}
}

// --- Zones ---

// zonePayload accepts ranges either structured or as free text, the way the
// dashboard's textarea submits them.
type zonePayload struct {
	Name                string                   `json:"name"`
	DistanceFromStoreKm float64                  `json:"distance_from_store_km"`
	IsActive            bool                     `json:"is_active"`
	PostalCodes         []domain.PostalCodeRange `json:"postal_codes"`
	PostalCodesText     string                   `json:"postal_codes_text"`
	AllFinland          bool                     `json:"all_finland"`
}

func (p *zonePayload) toZone() (*domain.ShippingZone, error) {
	zone := &domain.ShippingZone{
		Name:                p.Name,
		DistanceFromStoreKm: p.DistanceFromStoreKm,
		IsActive:            p.IsActive,
		PostalCodes:         p.PostalCodes,
	}
	if p.PostalCodesText != "" {
		ranges, err := domain.ParsePostalCodeRanges(p.PostalCodesText)
		if err != nil {
			return nil, err
		}
		zone.PostalCodes = append(zone.PostalCodes, ranges...)
	}
	if p.AllFinland {
		zone.PostalCodes = append(zone.PostalCodes, domain.AllFinlandRange())
	}
	return zone, nil
}

// GET /api/v1/admin/shipping/zones
func (h *AdminShippingHandler) GetAllZones(w http.ResponseWriter, r *http.Request) {
	zones, err := h.shipping.ListZones(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, zones)
}

// POST /api/v1/admin/shipping/zones
func (h *AdminShippingHandler) CreateZone(w http.ResponseWriter, r *http.Request) {
	var payload zonePayload
	if err := decode(r, &payload); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	zone, err := payload.toZone()
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.shipping.CreateZone(r.Context(), zone)
	if err != nil {
		handleError(w, err, http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, created)
}

// PATCH /api/v1/admin/shipping/zones/{id}
func (h *AdminShippingHandler) UpdateZone(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID32(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var payload zonePayload
	if err := decode(r, &payload); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	zone, err := payload.toZone()
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	zone.ID = id

	updated, err := h.shipping.UpdateZone(r.Context(), zone)
	if err != nil {
		handleError(w, err, http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusOK, updated)
}

// DELETE /api/v1/admin/shipping/zones/{id}
func (h *AdminShippingHandler) DeleteZone(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID32(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.shipping.DeleteZone(r.Context(), id); err != nil {
		handleError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Rules ---

// GET /api/v1/admin/shipping/rules
func (h *AdminShippingHandler) GetAllRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.shipping.ListRules(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, rules)
}

// GET /api/v1/admin/shipping/rules/{id}
func (h *AdminShippingHandler) GetRule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID32(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	rule, err := h.shipping.GetRule(r.Context(), id)
	if err != nil {
		handleError(w, err, http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, rule)
}

// POST /api/v1/admin/shipping/rules
// An embedded zone_prices array is persisted with the rule in one
// transaction.
func (h *AdminShippingHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var rule domain.ShippingRule
	if err := decode(r, &rule); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.shipping.CreateRule(r.Context(), &rule)
	if err != nil {
		handleError(w, err, http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, created)
}

// PATCH /api/v1/admin/shipping/rules/{id}
func (h *AdminShippingHandler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID32(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var rule domain.ShippingRule
	if err := decode(r, &rule); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	rule.ID = id

	updated, err := h.shipping.UpdateRule(r.Context(), &rule)
	if err != nil {
		handleError(w, err, http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusOK, updated)
}

// DELETE /api/v1/admin/shipping/rules/{id}
func (h *AdminShippingHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID32(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.shipping.DeleteRule(r.Context(), id); err != nil {
		handleError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Zone prices ---

// GET /api/v1/admin/shipping/zone-prices
func (h *AdminShippingHandler) GetAllZonePrices(w http.ResponseWriter, r *http.Request) {
	prices, err := h.shipping.ListZonePrices(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, prices)
}

// POST /api/v1/admin/shipping/zone-prices (upsert on rule+zone)
func (h *AdminShippingHandler) UpsertZonePrice(w http.ResponseWriter, r *http.Request) {
	var price domain.ShippingZonePrice
	if err := decode(r, &price); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.shipping.UpsertZonePrice(r.Context(), &price)
	if err != nil {
		handleError(w, err, http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusOK, saved)
}

// PATCH /api/v1/admin/shipping/zone-prices/{id}
func (h *AdminShippingHandler) UpdateZonePrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID32(r)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var price domain.ShippingZonePrice
	if err := decode(r, &price); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	price.ID = id

	saved, err := h.shipping.UpdateZonePrice(r.Context(), &price)
	if err != nil {
		handleError(w, err, http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusOK, saved)
}
