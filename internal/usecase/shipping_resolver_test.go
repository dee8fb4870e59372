package usecase

import (
	"testing"

	"kaluste-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testZone(id int32, name string, distance float64, ranges ...domain.PostalCodeRange) domain.ShippingZone {
	return domain.ShippingZone{
		ID:                  id,
		Name:                name,
		DistanceFromStoreKm: distance,
		IsActive:            true,
		PostalCodes:         ranges,
	}
}

func flatRule(id int32, priority int32, price float64) domain.ShippingRule {
	return domain.ShippingRule{
		ID:               id,
		Name:             "Flat",
		RuleType:         domain.RuleTypeFlatRate,
		IsActive:         true,
		Priority:         priority,
		CategoryScope:    domain.CategoryScopeAll,
		ProductCondition: domain.ConditionBoth,
		FlatRatePrice:    price,
	}
}

func singleItemRequest(postalCode string) domain.QuoteRequest {
	return domain.QuoteRequest{
		PostalCode:     postalCode,
		DeliveryMethod: domain.DeliveryMethodHomeDelivery,
		Items: []domain.QuoteItem{
			{ProductID: "p1", CategoryIDs: []string{"cat-1"}, Condition: domain.ConditionNew, UnitPrice: 100, Quantity: 1},
		},
	}
}

func TestResolveQuote_FlatRateIgnoresDestination(t *testing.T) {
	cfg := ShippingConfig{Rules: []domain.ShippingRule{flatRule(1, 1, 20)}}

	for _, code := range []string{"00100", "96100", "20500"} {
		quote, err := ResolveQuote(cfg, singleItemRequest(code))
		require.NoError(t, err)
		assert.True(t, quote.Available)
		assert.Equal(t, 20.0, quote.Cost, "flat rate is constant regardless of destination")
	}
}

func TestResolveQuote_DistanceBased(t *testing.T) {
	assertions := assert.New(t)

	rule := domain.ShippingRule{
		ID: 1, Name: "By distance", RuleType: domain.RuleTypeDistanceBased,
		IsActive: true, Priority: 1,
		CategoryScope: domain.CategoryScopeAll, ProductCondition: domain.ConditionBoth,
		BasePrice: 10, PricePerKm: 2, MaxDistanceKm: 50,
	}
	cfg := ShippingConfig{
		Zones: []domain.ShippingZone{
			testZone(1, "Near", 30, domain.PostalCodeRange{Start: "00100", End: "00200"}),
			testZone(2, "Far", 60, domain.PostalCodeRange{Start: "90100", End: "90200"}),
		},
		Rules: []domain.ShippingRule{rule},
	}

	quote, err := ResolveQuote(cfg, singleItemRequest("00150"))
	require.NoError(t, err)
	assertions.True(quote.Available)
	assertions.Equal(70.0, quote.Cost, "10 + 2*30")

	// Beyond max_distance_km the rule is excluded, and with no fallback the
	// quote is unavailable.
	quote, err = ResolveQuote(cfg, singleItemRequest("90150"))
	assertions.ErrorIs(err, domain.ErrShippingUnavailable)
	assertions.False(quote.Available)
}

func TestResolveQuote_DistanceCapFallsThroughToNextRule(t *testing.T) {
	distance := domain.ShippingRule{
		ID: 1, Name: "Cheap nearby", RuleType: domain.RuleTypeDistanceBased,
		IsActive: true, Priority: 1,
		CategoryScope: domain.CategoryScopeAll, ProductCondition: domain.ConditionBoth,
		BasePrice: 5, PricePerKm: 1, MaxDistanceKm: 20,
	}
	cfg := ShippingConfig{
		Zones: []domain.ShippingZone{
			testZone(1, "Far", 60, domain.PostalCodeRange{Start: "90100", End: "90200"}),
		},
		Rules: []domain.ShippingRule{distance, flatRule(2, 5, 49)},
	}

	quote, err := ResolveQuote(cfg, singleItemRequest("90150"))
	require.NoError(t, err)
	assert.True(t, quote.Available)
	assert.Equal(t, 49.0, quote.Cost, "falls back to the flat rule")
	assert.Equal(t, int32(2), quote.RuleID)
	assert.NotEmpty(t, quote.Message, "skipped distance candidate is surfaced as a warning")
}

func TestResolveQuote_ZoneBased(t *testing.T) {
	assertions := assert.New(t)

	rule := domain.ShippingRule{
		ID: 7, Name: "Zone pricing", RuleType: domain.RuleTypeZoneBased,
		IsActive: true, Priority: 1,
		CategoryScope: domain.CategoryScopeAll, ProductCondition: domain.ConditionBoth,
	}
	cfg := ShippingConfig{
		Zones: []domain.ShippingZone{
			testZone(1, "Covered", 10, domain.PostalCodeRange{Start: "00100", End: "00200"}),
			testZone(2, "Uncovered", 15, domain.PostalCodeRange{Start: "00500", End: "00600"}),
		},
		Rules: []domain.ShippingRule{rule},
		Prices: []domain.ShippingZonePrice{
			{ID: 1, ShippingRuleID: 7, ShippingZoneID: 1, OverridePrice: 45, OverrideEnabled: true},
		},
	}

	quote, err := ResolveQuote(cfg, singleItemRequest("00150"))
	require.NoError(t, err)
	assertions.Equal(45.0, quote.Cost)

	// Matched zone has no enabled override row: unavailable
	quote, err = ResolveQuote(cfg, singleItemRequest("00550"))
	assertions.ErrorIs(err, domain.ErrShippingUnavailable)
	assertions.False(quote.Available)

	// Disabled overrides don't count
	cfg.Prices[0].OverrideEnabled = false
	_, err = ResolveQuote(cfg, singleItemRequest("00150"))
	assertions.ErrorIs(err, domain.ErrShippingUnavailable)
}

func TestResolveQuote_PriorityOrdering(t *testing.T) {
	cfg := ShippingConfig{
		Rules: []domain.ShippingRule{flatRule(1, 2, 30), flatRule(2, 1, 15)},
	}

	quote, err := ResolveQuote(cfg, singleItemRequest("00100"))
	require.NoError(t, err)
	assert.Equal(t, 15.0, quote.Cost, "priority 1 beats priority 2")
	assert.Equal(t, int32(2), quote.RuleID)
}

func TestResolveQuote_EqualPriorityBreaksOnRuleID(t *testing.T) {
	cfg := ShippingConfig{
		Rules: []domain.ShippingRule{flatRule(9, 1, 30), flatRule(3, 1, 15)},
	}

	quote, err := ResolveQuote(cfg, singleItemRequest("00100"))
	require.NoError(t, err)
	assert.Equal(t, int32(3), quote.RuleID, "lowest rule id wins a priority tie")
}

func TestResolveQuote_ScopingFilters(t *testing.T) {
	assertions := assert.New(t)

	minOrder := flatRule(1, 1, 10)
	minOrder.MinOrderValue = 500

	usedOnly := flatRule(2, 2, 12)
	usedOnly.ProductCondition = domain.ConditionUsed

	otherCategory := flatRule(3, 3, 14)
	otherCategory.CategoryScope = domain.CategoryScopeListed
	otherCategory.CategoryIDs = []string{"cat-other"}

	catchAll := flatRule(4, 9, 25)

	cfg := ShippingConfig{Rules: []domain.ShippingRule{minOrder, usedOnly, otherCategory, catchAll}}

	// A 100 EUR cart of new items in cat-1 skips the first three rules.
	quote, err := ResolveQuote(cfg, singleItemRequest("00100"))
	require.NoError(t, err)
	assertions.Equal(int32(4), quote.RuleID)
	assertions.Equal(25.0, quote.Cost)

	// Inactive rules never participate.
	cfg.Rules[3].IsActive = false
	quote, err = ResolveQuote(cfg, singleItemRequest("00100"))
	assertions.ErrorIs(err, domain.ErrNoEligibleRule)
	assertions.False(quote.Available)
}

func TestResolveQuote_PickupIsAlwaysFree(t *testing.T) {
	// Even with an expensive flat rule configured, pickup short-circuits.
	cfg := ShippingConfig{Rules: []domain.ShippingRule{flatRule(1, 1, 99)}}

	req := singleItemRequest("00100")
	req.DeliveryMethod = domain.DeliveryMethodPickup
	// Pickup doesn't even need a valid postal code
	req.PostalCode = ""

	quote, err := ResolveQuote(cfg, req)
	require.NoError(t, err)
	assert.True(t, quote.Available)
	assert.Equal(t, 0.0, quote.Cost)
}

func TestResolveQuote_NoZoneForPostalCode(t *testing.T) {
	rule := domain.ShippingRule{
		ID: 1, Name: "By distance", RuleType: domain.RuleTypeDistanceBased,
		IsActive: true, Priority: 1,
		CategoryScope: domain.CategoryScopeAll, ProductCondition: domain.ConditionBoth,
		BasePrice: 5, PricePerKm: 1,
	}
	cfg := ShippingConfig{
		Zones: []domain.ShippingZone{testZone(1, "Helsinki", 5, domain.PostalCodeRange{Start: "00100", End: "00200"})},
		Rules: []domain.ShippingRule{rule},
	}

	quote, err := ResolveQuote(cfg, singleItemRequest("96100"))
	assert.ErrorIs(t, err, domain.ErrNoZoneForPostalCode)
	assert.ErrorIs(t, err, domain.ErrShippingUnavailable)
	assert.False(t, quote.Available)
	assert.NotEmpty(t, quote.Message)
}

func TestResolveQuote_InvalidPostalCode(t *testing.T) {
	cfg := ShippingConfig{Rules: []domain.ShippingRule{flatRule(1, 1, 20)}}

	_, err := ResolveQuote(cfg, singleItemRequest("12"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrShippingUnavailable, "bad input is not an availability condition")
}

func TestResolveQuote_OverlappingZonesPickClosest(t *testing.T) {
	rule := domain.ShippingRule{
		ID: 1, Name: "By distance", RuleType: domain.RuleTypeDistanceBased,
		IsActive: true, Priority: 1,
		CategoryScope: domain.CategoryScopeAll, ProductCondition: domain.ConditionBoth,
		BasePrice: 0, PricePerKm: 1,
	}
	cfg := ShippingConfig{
		Zones: []domain.ShippingZone{
			testZone(1, "Wide", 40, domain.AllFinlandRange()),
			testZone(2, "Center", 5, domain.PostalCodeRange{Start: "00600", End: "00650"}),
		},
		Rules: []domain.ShippingRule{rule},
	}

	quote, err := ResolveQuote(cfg, singleItemRequest("00620"))
	require.NoError(t, err)
	assert.Equal(t, 5.0, quote.Cost, "the closer overlapping zone wins")
}

// End-to-end scenario: 120 EUR cart to 00620, "Helsinki Center" zone 5 km out
// covering 00600-00650, one active distance rule 5 + 1/km capped at 100 km.
func TestResolveQuote_HelsinkiCenterScenario(t *testing.T) {
	rule := domain.ShippingRule{
		ID: 1, Name: "Home delivery", RuleType: domain.RuleTypeDistanceBased,
		IsActive: true, Priority: 1,
		CategoryScope: domain.CategoryScopeAll, ProductCondition: domain.ConditionBoth,
		BasePrice: 5, PricePerKm: 1, MaxDistanceKm: 100,
	}
	cfg := ShippingConfig{
		Zones: []domain.ShippingZone{
			testZone(1, "Helsinki Center", 5, domain.PostalCodeRange{Start: "00600", End: "00650"}),
		},
		Rules: []domain.ShippingRule{rule},
	}

	req := domain.QuoteRequest{
		PostalCode:     "00620",
		DeliveryMethod: domain.DeliveryMethodHomeDelivery,
		Items: []domain.QuoteItem{
			{ProductID: "sofa", CategoryIDs: []string{"cat-sofas"}, Condition: domain.ConditionUsed, UnitPrice: 120, Quantity: 1},
		},
	}
	require.Equal(t, 120.0, req.Subtotal())

	quote, err := ResolveQuote(cfg, req)
	require.NoError(t, err)
	assert.True(t, quote.Available)
	assert.Equal(t, 10.0, quote.Cost, "5 + 1*5")
	assert.Equal(t, "Home delivery", quote.RuleName)
}
