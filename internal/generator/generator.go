// Package generator produces realistic demo data for local development:
// a category tree, a mixed new/used product catalog and a shipping setup
// covering the usual Finnish delivery areas.
package generator

import (
	"fmt"

	"kaluste-backend/internal/domain"
	"kaluste-backend/pkg/utils"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

var furnitureNames = map[string][]string{
	"sofas":   {"Fabric Sofa", "Corner Sofa", "Leather Sofa", "Sofa Bed", "Loveseat"},
	"tables":  {"Dining Table", "Coffee Table", "Side Table", "Desk", "Console Table"},
	"chairs":  {"Dining Chair", "Armchair", "Office Chair", "Bar Stool", "Rocking Chair"},
	"storage": {"Bookcase", "Sideboard", "Wardrobe", "TV Stand", "Chest of Drawers"},
	"beds":    {"Bed Frame", "Bunk Bed", "Daybed", "Headboard", "Bedside Table"},
}

// Categories returns the fixed top-level category set the storefront expects.
func Categories() []domain.Category {
	names := []string{"Sofas", "Tables", "Chairs", "Storage", "Beds"}
	categories := make([]domain.Category, 0, len(names))
	for i, name := range names {
		categories = append(categories, domain.Category{
			ID:         uuid.New().String(),
			Name:       name,
			Slug:       utils.GenerateSlug(name),
			OrderIndex: i,
			IsActive:   true,
		})
	}
	return categories
}

// NewProduct returns one random product assigned to the given category.
// Roughly half the catalog is second-hand, which drives the reservation flow.
func NewProduct(category domain.Category) domain.Product {
	names := furnitureNames[category.Slug]
	if len(names) == 0 {
		names = []string{"Furniture Piece"}
	}
	name := fmt.Sprintf("%s %s", gofakeit.RandomString(names), gofakeit.Color())

	product := domain.Product{
		ID:          uuid.New().String(),
		Name:        name,
		Slug:        utils.GenerateSlug(name) + "-" + uuid.New().String()[:8],
		Description: gofakeit.Paragraph(1, 3, 12, " "),
		Price:       float64(gofakeit.Number(39, 1499)),
		Condition:   domain.ConditionNew,
		Stock:       gofakeit.Number(1, 12),
		IsActive:    true,
		CategoryIDs: []string{category.ID},
	}

	if gofakeit.Bool() {
		product.Condition = domain.ConditionUsed
		product.Stock = 1
		product.Price = float64(gofakeit.Number(15, 600))
	} else if gofakeit.Number(1, 5) == 1 {
		sale := product.Price * 0.8
		product.SalePrice = &sale
	}
	return product
}

// Zones returns delivery zones for the capital region and the largest cities,
// with driving distances measured from the Helsinki store.
func Zones() []domain.ShippingZone {
	mustRange := func(start, end, city string) domain.PostalCodeRange {
		r, err := domain.NewPostalCodeRange(start, end, city)
		if err != nil {
			panic(err)
		}
		return r
	}

	return []domain.ShippingZone{
		{
			Name: "Helsinki", DistanceFromStoreKm: 8, IsActive: true,
			PostalCodes: []domain.PostalCodeRange{mustRange("00100", "00990", "Helsinki")},
		},
		{
			Name: "Espoo & Kauniainen", DistanceFromStoreKm: 20, IsActive: true,
			PostalCodes: []domain.PostalCodeRange{
				mustRange("02100", "02980", "Espoo"),
				mustRange("02700", "02700", "Kauniainen"),
			},
		},
		{
			Name: "Vantaa", DistanceFromStoreKm: 22, IsActive: true,
			PostalCodes: []domain.PostalCodeRange{mustRange("01200", "01770", "Vantaa")},
		},
		{
			Name: "Tampere", DistanceFromStoreKm: 180, IsActive: true,
			PostalCodes: []domain.PostalCodeRange{mustRange("33100", "33900", "Tampere")},
		},
		{
			Name: "Turku", DistanceFromStoreKm: 165, IsActive: true,
			PostalCodes: []domain.PostalCodeRange{mustRange("20100", "20960", "Turku")},
		},
	}
}

// Rules returns a pricing setup that exercises every rule type: distance
// pricing for the capital region, zone overrides for the remote cities and a
// free-delivery tier for large orders.
func Rules() []domain.ShippingRule {
	return []domain.ShippingRule{
		{
			Name: "Free delivery over 500", RuleType: domain.RuleTypeFlatRate,
			IsActive: true, Priority: 1,
			CategoryScope: domain.CategoryScopeAll, ProductCondition: domain.ConditionBoth,
			MinOrderValue: 500, FlatRatePrice: 0, EstimatedDeliveryDays: 3,
		},
		{
			Name: "Capital region delivery", RuleType: domain.RuleTypeDistanceBased,
			IsActive: true, Priority: 2,
			CategoryScope: domain.CategoryScopeAll, ProductCondition: domain.ConditionBoth,
			BasePrice: 9, PricePerKm: 1.2, MaxDistanceKm: 40, EstimatedDeliveryDays: 2,
		},
		{
			Name: "Long distance delivery", RuleType: domain.RuleTypeZoneBased,
			IsActive: true, Priority: 3,
			CategoryScope: domain.CategoryScopeAll, ProductCondition: domain.ConditionBoth,
			EstimatedDeliveryDays: 7,
		},
	}
}

// ZonePrices returns overrides binding the zone-based rule to the remote
// city zones. Zone names are resolved to IDs by the seeder after insert.
func ZonePrices(ruleID int32, zoneIDByName map[string]int32) []domain.ShippingZonePrice {
	prices := []domain.ShippingZonePrice{}
	for name, price := range map[string]float64{
		"Tampere": 89,
		"Turku":   85,
	} {
		zoneID, ok := zoneIDByName[name]
		if !ok {
			continue
		}
		prices = append(prices, domain.ShippingZonePrice{
			ShippingRuleID:  ruleID,
			ShippingZoneID:  zoneID,
			OverridePrice:   price,
			OverrideEnabled: true,
		})
	}
	return prices
}
