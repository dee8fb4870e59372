package usecase

import (
	"context"
	"fmt"
	"time"

	"kaluste-backend/internal/domain"
	"kaluste-backend/pkg/cache"
	"kaluste-backend/pkg/logger"
)

const shippingConfigCacheKey = "shipping:config"

// CartItem is a storefront cart line: product reference plus quantity.
// Prices and category data are always loaded server-side.
type CartItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// ShippingUsecase serves quote calculation and the admin CRUD for zones,
// rules and zone price overrides. The active configuration snapshot is cached
// and invalidated on every admin write.
type ShippingUsecase struct {
	repo        domain.ShippingRepository
	productRepo domain.ProductRepository
	txManager   domain.TransactionManager
	cache       cache.CacheService
	configTTL   time.Duration
}

func NewShippingUsecase(
	repo domain.ShippingRepository,
	productRepo domain.ProductRepository,
	txManager domain.TransactionManager,
	cacheService cache.CacheService,
	configTTL time.Duration,
) *ShippingUsecase {
	return &ShippingUsecase{
		repo:        repo,
		productRepo: productRepo,
		txManager:   txManager,
		cache:       cacheService,
		configTTL:   configTTL,
	}
}

// ActiveConfig returns the cached snapshot of active zones, active rules and
// all overrides, loading it from the repository on a miss.
func (uc *ShippingUsecase) ActiveConfig(ctx context.Context) (ShippingConfig, error) {
	if cached, found := uc.cache.Get(shippingConfigCacheKey); found {
		if cfg, ok := cached.(ShippingConfig); ok {
			return cfg, nil
		}
	}

	zones, err := uc.repo.GetActiveZones(ctx)
	if err != nil {
		return ShippingConfig{}, fmt.Errorf("load active zones: %w", err)
	}
	rules, err := uc.repo.GetActiveRules(ctx)
	if err != nil {
		return ShippingConfig{}, fmt.Errorf("load active rules: %w", err)
	}
	prices, err := uc.repo.GetAllZonePrices(ctx)
	if err != nil {
		return ShippingConfig{}, fmt.Errorf("load zone prices: %w", err)
	}

	cfg := ShippingConfig{Zones: zones, Rules: rules, Prices: prices}
	uc.cache.Set(shippingConfigCacheKey, cfg, uc.configTTL)
	return cfg, nil
}

func (uc *ShippingUsecase) invalidateConfig() {
	uc.cache.Delete(shippingConfigCacheKey)
}

// CalculateQuote resolves a shipping quote for a cart of product references.
// Prices, categories and conditions come from the product catalog, never from
// the client.
func (uc *ShippingUsecase) CalculateQuote(ctx context.Context, postalCode, deliveryMethod string, items []CartItem) (domain.ShippingQuote, error) {
	if len(items) == 0 {
		return domain.ShippingQuote{}, fmt.Errorf("cart is empty")
	}
	if deliveryMethod == "" {
		deliveryMethod = domain.DeliveryMethodHomeDelivery
	}

	quoteItems, err := uc.loadQuoteItems(ctx, items)
	if err != nil {
		return domain.ShippingQuote{}, err
	}

	cfg, err := uc.ActiveConfig(ctx)
	if err != nil {
		return domain.ShippingQuote{}, err
	}

	req := domain.QuoteRequest{
		PostalCode:     postalCode,
		DeliveryMethod: deliveryMethod,
		Items:          quoteItems,
	}
	quote, err := ResolveQuote(cfg, req)
	if err != nil {
		logger.WithContext(ctx).Debug().
			Err(err).
			Str("postal_code", postalCode).
			Msg("shipping quote not available")
	}
	return quote, err
}

func (uc *ShippingUsecase) loadQuoteItems(ctx context.Context, items []CartItem) ([]domain.QuoteItem, error) {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("product %s: quantity must be >= 1", item.ProductID)
		}
		ids = append(ids, item.ProductID)
	}

	products, err := uc.productRepo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load cart products: %w", err)
	}
	byID := make(map[string]*domain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	quoteItems := make([]domain.QuoteItem, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %s not found", item.ProductID)
		}
		if !product.IsActive {
			return nil, fmt.Errorf("product %s is no longer available", item.ProductID)
		}
		quoteItems = append(quoteItems, domain.QuoteItem{
			ProductID:   product.ID,
			CategoryIDs: product.CategoryIDs,
			Condition:   product.Condition,
			UnitPrice:   product.EffectivePrice(),
			Quantity:    item.Quantity,
		})
	}
	return quoteItems, nil
}

// --- Zone administration ---

func (uc *ShippingUsecase) ListZones(ctx context.Context) ([]domain.ShippingZone, error) {
	return uc.repo.GetAllZones(ctx)
}

func (uc *ShippingUsecase) ListActiveZones(ctx context.Context) ([]domain.ShippingZone, error) {
	return uc.repo.GetActiveZones(ctx)
}

func (uc *ShippingUsecase) GetZone(ctx context.Context, id int32) (*domain.ShippingZone, error) {
	return uc.repo.GetZoneByID(ctx, id)
}

func (uc *ShippingUsecase) CreateZone(ctx context.Context, zone *domain.ShippingZone) (*domain.ShippingZone, error) {
	if err := zone.Validate(); err != nil {
		return nil, err
	}
	created, err := uc.repo.CreateZone(ctx, zone)
	if err != nil {
		return nil, err
	}
	uc.invalidateConfig()
	logger.WithContext(ctx).Info().Int32("zone_id", created.ID).Str("name", created.Name).Msg("shipping zone created")
	return created, nil
}

func (uc *ShippingUsecase) UpdateZone(ctx context.Context, zone *domain.ShippingZone) (*domain.ShippingZone, error) {
	if err := zone.Validate(); err != nil {
		return nil, err
	}
	updated, err := uc.repo.UpdateZone(ctx, zone)
	if err != nil {
		return nil, err
	}
	uc.invalidateConfig()
	return updated, nil
}

// DeleteZone removes a zone. Postal code ranges and zone price overrides
// referencing it are removed by the database cascade.
func (uc *ShippingUsecase) DeleteZone(ctx context.Context, id int32) error {
	if err := uc.repo.DeleteZone(ctx, id); err != nil {
		return err
	}
	uc.invalidateConfig()
	logger.WithContext(ctx).Info().Int32("zone_id", id).Msg("shipping zone deleted")
	return nil
}

// --- Rule administration ---

// ListRules returns all rules with their zone price overrides attached.
func (uc *ShippingUsecase) ListRules(ctx context.Context) ([]domain.ShippingRule, error) {
	rules, err := uc.repo.GetAllRules(ctx)
	if err != nil {
		return nil, err
	}
	prices, err := uc.repo.GetAllZonePrices(ctx)
	if err != nil {
		return nil, err
	}
	byRule := make(map[int32][]domain.ShippingZonePrice)
	for _, p := range prices {
		byRule[p.ShippingRuleID] = append(byRule[p.ShippingRuleID], p)
	}
	for i := range rules {
		rules[i].ZonePrices = byRule[rules[i].ID]
	}
	return rules, nil
}

func (uc *ShippingUsecase) GetRule(ctx context.Context, id int32) (*domain.ShippingRule, error) {
	rule, err := uc.repo.GetRuleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	prices, err := uc.repo.GetZonePricesByRule(ctx, id)
	if err != nil {
		return nil, err
	}
	rule.ZonePrices = prices
	return rule, nil
}

// CreateRule persists a rule and any embedded zone price overrides in a
// single transaction, so a rule never becomes visible with half its prices.
func (uc *ShippingUsecase) CreateRule(ctx context.Context, rule *domain.ShippingRule) (*domain.ShippingRule, error) {
	if err := uc.validateRule(rule); err != nil {
		return nil, err
	}

	var created *domain.ShippingRule
	err := uc.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		created, err = uc.repo.CreateRule(ctx, rule)
		if err != nil {
			return err
		}
		if len(rule.ZonePrices) > 0 {
			if err := uc.repo.ReplaceZonePricesForRule(ctx, created.ID, rule.ZonePrices); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateConfig()
	logger.WithContext(ctx).Info().
		Int32("rule_id", created.ID).
		Str("rule_type", created.RuleType).
		Msg("shipping rule created")
	return uc.GetRule(ctx, created.ID)
}

// UpdateRule replaces a rule and, when ZonePrices is present, its full set of
// overrides, transactionally.
func (uc *ShippingUsecase) UpdateRule(ctx context.Context, rule *domain.ShippingRule) (*domain.ShippingRule, error) {
	if err := uc.validateRule(rule); err != nil {
		return nil, err
	}

	var updated *domain.ShippingRule
	err := uc.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		updated, err = uc.repo.UpdateRule(ctx, rule)
		if err != nil {
			return err
		}
		if rule.ZonePrices != nil {
			if err := uc.repo.ReplaceZonePricesForRule(ctx, rule.ID, rule.ZonePrices); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateConfig()
	return uc.GetRule(ctx, updated.ID)
}

func (uc *ShippingUsecase) DeleteRule(ctx context.Context, id int32) error {
	if err := uc.repo.DeleteRule(ctx, id); err != nil {
		return err
	}
	uc.invalidateConfig()
	logger.WithContext(ctx).Info().Int32("rule_id", id).Msg("shipping rule deleted")
	return nil
}

func (uc *ShippingUsecase) validateRule(rule *domain.ShippingRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	for i := range rule.ZonePrices {
		if err := rule.ZonePrices[i].Validate(); err != nil {
			return fmt.Errorf("zone price %d: %w", i, err)
		}
	}
	return nil
}

// --- Zone price administration ---

func (uc *ShippingUsecase) ListZonePrices(ctx context.Context) ([]domain.ShippingZonePrice, error) {
	return uc.repo.GetAllZonePrices(ctx)
}

func (uc *ShippingUsecase) UpsertZonePrice(ctx context.Context, price *domain.ShippingZonePrice) (*domain.ShippingZonePrice, error) {
	if err := price.Validate(); err != nil {
		return nil, err
	}
	if price.ShippingRuleID == 0 {
		return nil, fmt.Errorf("shipping_rule_id is required")
	}
	saved, err := uc.repo.UpsertZonePrice(ctx, price)
	if err != nil {
		return nil, err
	}
	uc.invalidateConfig()
	return saved, nil
}

func (uc *ShippingUsecase) UpdateZonePrice(ctx context.Context, price *domain.ShippingZonePrice) (*domain.ShippingZonePrice, error) {
	if err := price.Validate(); err != nil {
		return nil, err
	}
	saved, err := uc.repo.UpdateZonePrice(ctx, price)
	if err != nil {
		return nil, err
	}
	uc.invalidateConfig()
	return saved, nil
}
