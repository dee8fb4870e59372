package usecase

import (
	"sort"

	"kaluste-backend/internal/domain"
)

// ShippingConfig is an immutable snapshot of the shipping configuration used
// for quote resolution. Loaded from the repository and cached by the usecase.
type ShippingConfig struct {
	Zones  []domain.ShippingZone
	Rules  []domain.ShippingRule
	Prices []domain.ShippingZonePrice
}

// MatchZone finds the zone covering a postal code. When zones overlap the
// closest one wins (smallest distance_from_store_km, then lowest id) so that
// distance-based pricing never charges for a farther zone than necessary.
// Returns nil when no active zone covers the code.
func (cfg ShippingConfig) MatchZone(postalCode string) *domain.ShippingZone {
	var best *domain.ShippingZone
	for i := range cfg.Zones {
		z := &cfg.Zones[i]
		if !z.IsActive || !z.MatchesPostalCode(postalCode) {
			continue
		}
		if best == nil ||
			z.DistanceFromStoreKm < best.DistanceFromStoreKm ||
			(z.DistanceFromStoreKm == best.DistanceFromStoreKm && z.ID < best.ID) {
			best = z
		}
	}
	return best
}

// zonePriceFor returns the enabled override for a (rule, zone) pair, or nil.
func (cfg ShippingConfig) zonePriceFor(ruleID, zoneID int32) *domain.ShippingZonePrice {
	for i := range cfg.Prices {
		p := &cfg.Prices[i]
		if p.ShippingRuleID == ruleID && p.ShippingZoneID == zoneID && p.OverrideEnabled {
			return p
		}
	}
	return nil
}

// ResolveQuote computes a shipping quote for the request. Pure: no I/O, no
// state. Unavailability comes back as domain.ErrNoZoneForPostalCode or
// domain.ErrNoEligibleRule, both unwrapping to domain.ErrShippingUnavailable.
func ResolveQuote(cfg ShippingConfig, req domain.QuoteRequest) (domain.ShippingQuote, error) {
	// In-person pickup bypasses rule evaluation entirely.
	if req.DeliveryMethod == domain.DeliveryMethodPickup {
		return domain.ShippingQuote{Available: true, Cost: 0}, nil
	}

	code, err := domain.NormalizePostalCode(req.PostalCode)
	if err != nil {
		return domain.ShippingQuote{}, err
	}

	subtotal := req.Subtotal()
	cartCategories := make(map[string]bool)
	var hasNew, hasUsed bool
	for _, item := range req.Items {
		for _, id := range item.CategoryIDs {
			cartCategories[id] = true
		}
		switch item.Condition {
		case domain.ConditionUsed:
			hasUsed = true
		default:
			hasNew = true
		}
	}

	var candidates []domain.ShippingRule
	for _, rule := range cfg.Rules {
		if !rule.IsActive {
			continue
		}
		if rule.MinOrderValue > subtotal {
			continue
		}
		if !rule.CoversCondition(hasNew, hasUsed) {
			continue
		}
		if !rule.AppliesTo(cartCategories) {
			continue
		}
		candidates = append(candidates, rule)
	}

	if len(candidates) == 0 {
		return unavailableQuote(), domain.ErrNoEligibleRule
	}

	// Lowest priority number wins; equal priorities break on rule id so
	// selection stays deterministic.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority < candidates[j].Priority
		}
		return candidates[i].ID < candidates[j].ID
	})

	zone := cfg.MatchZone(code)
	zoneRequired := false
	skippedForDistance := false

	for _, rule := range candidates {
		switch rule.RuleType {
		case domain.RuleTypeFlatRate:
			return successQuote(rule, rule.FlatRatePrice, skippedForDistance), nil

		case domain.RuleTypeDistanceBased:
			// Distance is zone-attached in this model, so even distance
			// pricing needs a zone match.
			if zone == nil {
				zoneRequired = true
				continue
			}
			if rule.MaxDistanceKm > 0 && zone.DistanceFromStoreKm > rule.MaxDistanceKm {
				skippedForDistance = true
				continue
			}
			cost := rule.BasePrice + rule.PricePerKm*zone.DistanceFromStoreKm
			return successQuote(rule, cost, skippedForDistance), nil

		case domain.RuleTypeZoneBased:
			if zone == nil {
				zoneRequired = true
				continue
			}
			price := cfg.zonePriceFor(rule.ID, zone.ID)
			if price == nil {
				// No enabled override for this destination; the rule
				// yields no price here.
				continue
			}
			return successQuote(rule, price.OverridePrice, skippedForDistance), nil
		}
	}

	if zone == nil && zoneRequired {
		return unavailableQuote(), domain.ErrNoZoneForPostalCode
	}
	return unavailableQuote(), domain.ErrNoEligibleRule
}

func successQuote(rule domain.ShippingRule, cost float64, skippedForDistance bool) domain.ShippingQuote {
	q := domain.ShippingQuote{
		Available:             true,
		Cost:                  cost,
		RuleID:                rule.ID,
		RuleName:              rule.Name,
		EstimatedDeliveryDays: rule.EstimatedDeliveryDays,
	}
	if skippedForDistance {
		q.Message = "Some delivery options were excluded for this distance"
	}
	return q
}

func unavailableQuote() domain.ShippingQuote {
	return domain.ShippingQuote{
		Available: false,
		Message:   "Delivery is not available for this address",
	}
}
