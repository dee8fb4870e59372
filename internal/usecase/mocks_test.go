package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"kaluste-backend/internal/domain"
)

// In-memory fakes shared by the usecase tests.

type fakeCache struct {
	mu    sync.Mutex
	items map[string]interface{}

	sets    int
	deletes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[string]interface{}{}}
}

func (c *fakeCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *fakeCache) Set(key string, value interface{}, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	c.sets++
}

func (c *fakeCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	c.deletes++
}

func (c *fakeCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = map[string]interface{}{}
}

type fakeTxManager struct {
	calls int
}

func (m *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type fakeShippingRepo struct {
	zones  []domain.ShippingZone
	rules  []domain.ShippingRule
	prices []domain.ShippingZonePrice

	nextZoneID  int32
	nextRuleID  int32
	nextPriceID int32

	loadCalls int

	createRuleErr error
	replaceErr    error
}

func newFakeShippingRepo() *fakeShippingRepo {
	return &fakeShippingRepo{nextZoneID: 1, nextRuleID: 1, nextPriceID: 1}
}

func (r *fakeShippingRepo) GetAllZones(context.Context) ([]domain.ShippingZone, error) {
	return r.zones, nil
}

func (r *fakeShippingRepo) GetActiveZones(context.Context) ([]domain.ShippingZone, error) {
	r.loadCalls++
	var out []domain.ShippingZone
	for _, z := range r.zones {
		if z.IsActive {
			out = append(out, z)
		}
	}
	return out, nil
}

func (r *fakeShippingRepo) GetZoneByID(_ context.Context, id int32) (*domain.ShippingZone, error) {
	for i := range r.zones {
		if r.zones[i].ID == id {
			z := r.zones[i]
			return &z, nil
		}
	}
	return nil, fmt.Errorf("zone %d not found", id)
}

func (r *fakeShippingRepo) CreateZone(_ context.Context, zone *domain.ShippingZone) (*domain.ShippingZone, error) {
	z := *zone
	z.ID = r.nextZoneID
	r.nextZoneID++
	r.zones = append(r.zones, z)
	return &z, nil
}

func (r *fakeShippingRepo) UpdateZone(_ context.Context, zone *domain.ShippingZone) (*domain.ShippingZone, error) {
	for i := range r.zones {
		if r.zones[i].ID == zone.ID {
			r.zones[i] = *zone
			z := *zone
			return &z, nil
		}
	}
	return nil, fmt.Errorf("zone %d not found", zone.ID)
}

func (r *fakeShippingRepo) DeleteZone(_ context.Context, id int32) error {
	for i := range r.zones {
		if r.zones[i].ID == id {
			r.zones = append(r.zones[:i], r.zones[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("zone %d not found", id)
}

func (r *fakeShippingRepo) GetAllRules(context.Context) ([]domain.ShippingRule, error) {
	return r.rules, nil
}

func (r *fakeShippingRepo) GetActiveRules(context.Context) ([]domain.ShippingRule, error) {
	var out []domain.ShippingRule
	for _, rule := range r.rules {
		if rule.IsActive {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (r *fakeShippingRepo) GetRuleByID(_ context.Context, id int32) (*domain.ShippingRule, error) {
	for i := range r.rules {
		if r.rules[i].ID == id {
			rule := r.rules[i]
			return &rule, nil
		}
	}
	return nil, fmt.Errorf("rule %d not found", id)
}

func (r *fakeShippingRepo) CreateRule(_ context.Context, rule *domain.ShippingRule) (*domain.ShippingRule, error) {
	if r.createRuleErr != nil {
		return nil, r.createRuleErr
	}
	created := *rule
	created.ID = r.nextRuleID
	created.ZonePrices = nil
	r.nextRuleID++
	r.rules = append(r.rules, created)
	return &created, nil
}

func (r *fakeShippingRepo) UpdateRule(_ context.Context, rule *domain.ShippingRule) (*domain.ShippingRule, error) {
	for i := range r.rules {
		if r.rules[i].ID == rule.ID {
			updated := *rule
			updated.ZonePrices = nil
			r.rules[i] = updated
			return &updated, nil
		}
	}
	return nil, fmt.Errorf("rule %d not found", rule.ID)
}

func (r *fakeShippingRepo) DeleteRule(_ context.Context, id int32) error {
	for i := range r.rules {
		if r.rules[i].ID == id {
			r.rules = append(r.rules[:i], r.rules[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("rule %d not found", id)
}

func (r *fakeShippingRepo) GetAllZonePrices(context.Context) ([]domain.ShippingZonePrice, error) {
	return r.prices, nil
}

func (r *fakeShippingRepo) GetZonePricesByRule(_ context.Context, ruleID int32) ([]domain.ShippingZonePrice, error) {
	var out []domain.ShippingZonePrice
	for _, p := range r.prices {
		if p.ShippingRuleID == ruleID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeShippingRepo) UpsertZonePrice(_ context.Context, price *domain.ShippingZonePrice) (*domain.ShippingZonePrice, error) {
	for i := range r.prices {
		if r.prices[i].ShippingRuleID == price.ShippingRuleID && r.prices[i].ShippingZoneID == price.ShippingZoneID {
			price.ID = r.prices[i].ID
			r.prices[i] = *price
			p := *price
			return &p, nil
		}
	}
	p := *price
	p.ID = r.nextPriceID
	r.nextPriceID++
	r.prices = append(r.prices, p)
	return &p, nil
}

func (r *fakeShippingRepo) UpdateZonePrice(_ context.Context, price *domain.ShippingZonePrice) (*domain.ShippingZonePrice, error) {
	for i := range r.prices {
		if r.prices[i].ID == price.ID {
			r.prices[i] = *price
			p := *price
			return &p, nil
		}
	}
	return nil, fmt.Errorf("zone price %d not found", price.ID)
}

func (r *fakeShippingRepo) ReplaceZonePricesForRule(_ context.Context, ruleID int32, prices []domain.ShippingZonePrice) error {
	if r.replaceErr != nil {
		return r.replaceErr
	}
	kept := r.prices[:0]
	for _, p := range r.prices {
		if p.ShippingRuleID != ruleID {
			kept = append(kept, p)
		}
	}
	r.prices = kept
	for _, p := range prices {
		p.ShippingRuleID = ruleID
		p.ID = r.nextPriceID
		r.nextPriceID++
		r.prices = append(r.prices, p)
	}
	return nil
}

type fakeProductRepo struct {
	products map[string]domain.Product
}

func newFakeProductRepo(products ...domain.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: map[string]domain.Product{}}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

func (r *fakeProductRepo) GetCategoryTree(context.Context) ([]domain.Category, error) {
	return nil, nil
}

func (r *fakeProductRepo) GetCategoriesFlat(context.Context, *bool) ([]domain.Category, error) {
	return nil, nil
}

func (r *fakeProductRepo) CreateCategory(context.Context, *domain.Category) error { return nil }
func (r *fakeProductRepo) UpdateCategory(context.Context, *domain.Category) error { return nil }
func (r *fakeProductRepo) DeleteCategory(context.Context, string) error           { return nil }

func (r *fakeProductRepo) GetProducts(context.Context, domain.ProductFilter) ([]domain.Product, int64, error) {
	return nil, 0, nil
}

func (r *fakeProductRepo) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s not found", id)
	}
	return &p, nil
}

func (r *fakeProductRepo) GetProductsByIDs(_ context.Context, ids []string) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) CreateProduct(_ context.Context, p *domain.Product) error {
	r.products[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) UpdateProduct(_ context.Context, p *domain.Product) error {
	r.products[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) UpdateProductStatus(_ context.Context, id string, isActive bool) error {
	p, ok := r.products[id]
	if !ok {
		return fmt.Errorf("product %s not found", id)
	}
	p.IsActive = isActive
	r.products[id] = p
	return nil
}

func (r *fakeProductRepo) DeleteProduct(_ context.Context, id string) error {
	delete(r.products, id)
	return nil
}
