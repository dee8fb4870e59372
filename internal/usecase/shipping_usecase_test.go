package usecase

import (
	"context"
	"testing"
	"time"

	"kaluste-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShippingFixture() (*ShippingUsecase, *fakeShippingRepo, *fakeProductRepo, *fakeCache, *fakeTxManager) {
	repo := newFakeShippingRepo()
	products := newFakeProductRepo(
		domain.Product{ID: "p-sofa", Name: "Sofa", Price: 100, Condition: domain.ConditionNew, IsActive: true, CategoryIDs: []string{"cat-sofas"}},
		domain.Product{ID: "p-table", Name: "Table", Price: 20, Condition: domain.ConditionUsed, IsActive: true, CategoryIDs: []string{"cat-tables"}},
		domain.Product{ID: "p-gone", Name: "Sold", Price: 50, Condition: domain.ConditionUsed, IsActive: false},
	)
	cacheSvc := newFakeCache()
	tx := &fakeTxManager{}
	uc := NewShippingUsecase(repo, products, tx, cacheSvc, 5*time.Minute)
	return uc, repo, products, cacheSvc, tx
}

func TestShippingUsecase_ActiveConfigCaching(t *testing.T) {
	assertions := assert.New(t)
	uc, repo, _, cacheSvc, _ := newShippingFixture()
	ctx := context.Background()

	repo.zones = []domain.ShippingZone{
		{ID: 1, Name: "Active", IsActive: true},
		{ID: 2, Name: "Disabled", IsActive: false},
	}

	cfg, err := uc.ActiveConfig(ctx)
	require.NoError(t, err)
	assertions.Len(cfg.Zones, 1, "inactive zones are excluded from the snapshot")
	assertions.Equal(1, repo.loadCalls)

	// Second call is served from cache
	_, err = uc.ActiveConfig(ctx)
	require.NoError(t, err)
	assertions.Equal(1, repo.loadCalls)
	assertions.Equal(1, cacheSvc.sets)
}

func TestShippingUsecase_WritesInvalidateCache(t *testing.T) {
	uc, repo, _, _, _ := newShippingFixture()
	ctx := context.Background()

	_, err := uc.ActiveConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.loadCalls)

	zone := &domain.ShippingZone{Name: "Helsinki", IsActive: true}
	_, err = uc.CreateZone(ctx, zone)
	require.NoError(t, err)

	// Next config read goes back to the repository
	_, err = uc.ActiveConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.loadCalls)
}

func TestShippingUsecase_CalculateQuote(t *testing.T) {
	assertions := assert.New(t)
	uc, repo, _, _, _ := newShippingFixture()
	ctx := context.Background()

	repo.zones = []domain.ShippingZone{{
		ID: 1, Name: "Helsinki Center", DistanceFromStoreKm: 5, IsActive: true,
		PostalCodes: []domain.PostalCodeRange{{Start: "00600", End: "00650"}},
	}}
	repo.rules = []domain.ShippingRule{{
		ID: 1, Name: "Home delivery", RuleType: domain.RuleTypeDistanceBased,
		IsActive: true, Priority: 1,
		CategoryScope: domain.CategoryScopeAll, ProductCondition: domain.ConditionBoth,
		BasePrice: 5, PricePerKm: 1, MaxDistanceKm: 100,
	}}

	quote, err := uc.CalculateQuote(ctx, "00620", domain.DeliveryMethodHomeDelivery, []CartItem{
		{ProductID: "p-sofa", Quantity: 1},
		{ProductID: "p-table", Quantity: 1},
	})
	require.NoError(t, err)
	assertions.True(quote.Available)
	assertions.Equal(10.0, quote.Cost)

	// Pickup never touches zones or rules
	quote, err = uc.CalculateQuote(ctx, "", domain.DeliveryMethodPickup, []CartItem{
		{ProductID: "p-sofa", Quantity: 1},
	})
	require.NoError(t, err)
	assertions.Equal(0.0, quote.Cost)
}

func TestShippingUsecase_CalculateQuoteRejectsBadCarts(t *testing.T) {
	assertions := assert.New(t)
	uc, _, _, _, _ := newShippingFixture()
	ctx := context.Background()

	_, err := uc.CalculateQuote(ctx, "00100", domain.DeliveryMethodHomeDelivery, nil)
	assertions.Error(err, "empty cart")

	_, err = uc.CalculateQuote(ctx, "00100", domain.DeliveryMethodHomeDelivery, []CartItem{
		{ProductID: "does-not-exist", Quantity: 1},
	})
	assertions.Error(err, "unknown product")

	_, err = uc.CalculateQuote(ctx, "00100", domain.DeliveryMethodHomeDelivery, []CartItem{
		{ProductID: "p-gone", Quantity: 1},
	})
	assertions.Error(err, "inactive product")

	_, err = uc.CalculateQuote(ctx, "00100", domain.DeliveryMethodHomeDelivery, []CartItem{
		{ProductID: "p-sofa", Quantity: 0},
	})
	assertions.Error(err, "zero quantity")
}

func TestShippingUsecase_CreateRuleWithZonePrices(t *testing.T) {
	assertions := assert.New(t)
	uc, repo, _, _, tx := newShippingFixture()
	ctx := context.Background()

	rule := &domain.ShippingRule{
		Name: "Zone pricing", RuleType: domain.RuleTypeZoneBased,
		IsActive: true, Priority: 1,
		CategoryScope: domain.CategoryScopeAll, ProductCondition: domain.ConditionBoth,
		ZonePrices: []domain.ShippingZonePrice{
			{ShippingZoneID: 1, OverridePrice: 45, OverrideEnabled: true},
			{ShippingZoneID: 2, OverridePrice: 60, OverrideEnabled: false},
		},
	}

	created, err := uc.CreateRule(ctx, rule)
	require.NoError(t, err)
	assertions.Equal(1, tx.calls, "rule and overrides are saved in one transaction")
	assertions.Len(created.ZonePrices, 2)
	assertions.Equal(created.ID, created.ZonePrices[0].ShippingRuleID)

	stored, err := repo.GetZonePricesByRule(ctx, created.ID)
	require.NoError(t, err)
	assertions.Len(stored, 2)
}

func TestShippingUsecase_UpdateRuleReplacesOverrides(t *testing.T) {
	assertions := assert.New(t)
	uc, repo, _, _, _ := newShippingFixture()
	ctx := context.Background()

	created, err := uc.CreateRule(ctx, &domain.ShippingRule{
		Name: "Zone pricing", RuleType: domain.RuleTypeZoneBased,
		IsActive: true, Priority: 1,
		CategoryScope: domain.CategoryScopeAll, ProductCondition: domain.ConditionBoth,
		ZonePrices: []domain.ShippingZonePrice{
			{ShippingZoneID: 1, OverridePrice: 45, OverrideEnabled: true},
			{ShippingZoneID: 2, OverridePrice: 60, OverrideEnabled: true},
		},
	})
	require.NoError(t, err)

	created.ZonePrices = []domain.ShippingZonePrice{
		{ShippingZoneID: 3, OverridePrice: 30, OverrideEnabled: true},
	}
	updated, err := uc.UpdateRule(ctx, created)
	require.NoError(t, err)

	assertions.Len(updated.ZonePrices, 1, "old overrides are replaced, not merged")
	assertions.Equal(int32(3), updated.ZonePrices[0].ShippingZoneID)

	stored, err := repo.GetZonePricesByRule(ctx, created.ID)
	require.NoError(t, err)
	assertions.Len(stored, 1)
}

func TestShippingUsecase_CreateRuleValidation(t *testing.T) {
	uc, repo, _, _, _ := newShippingFixture()
	ctx := context.Background()

	_, err := uc.CreateRule(ctx, &domain.ShippingRule{
		Name: "Bad", RuleType: "per_weight", Priority: 1,
		CategoryScope: domain.CategoryScopeAll, ProductCondition: domain.ConditionBoth,
	})
	assert.Error(t, err)
	assert.Empty(t, repo.rules, "nothing is persisted on validation failure")
}

func TestShippingUsecase_ListRulesAttachesZonePrices(t *testing.T) {
	uc, repo, _, _, _ := newShippingFixture()
	ctx := context.Background()

	repo.rules = []domain.ShippingRule{
		{ID: 1, Name: "A", RuleType: domain.RuleTypeZoneBased, IsActive: true},
		{ID: 2, Name: "B", RuleType: domain.RuleTypeFlatRate, IsActive: true},
	}
	repo.prices = []domain.ShippingZonePrice{
		{ID: 1, ShippingRuleID: 1, ShippingZoneID: 1, OverridePrice: 45, OverrideEnabled: true},
	}

	rules, err := uc.ListRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Len(t, rules[0].ZonePrices, 1)
	assert.Empty(t, rules[1].ZonePrices)
}
