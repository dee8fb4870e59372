package domain

import (
	"context"
	"time"
)

// --- Interfaces ---

type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type Category struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Slug       string     `json:"slug"`
	ParentID   *string    `json:"parentId"`
	Children   []Category `json:"children"`
	OrderIndex int        `json:"orderIndex"`
	IsActive   bool       `json:"isActive"`
}

// Product is a furniture listing. Condition is "new" or "used"; used items
// are one-offs with stock 1 and are what the reservation flow exists for.
type Product struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	SalePrice   *float64   `json:"salePrice"`
	Condition   string     `json:"condition"`
	Stock       int        `json:"stock"`
	IsActive    bool       `json:"isActive"`
	Media       RawJSON    `json:"media"`
	Images      []string   `json:"images"` // Mapped from Media
	CategoryIDs []string   `json:"categoryIds"`
	Categories  []Category `json:"categories"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// EffectivePrice is the price charged at checkout.
func (p *Product) EffectivePrice() float64 {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

type ProductFilter struct {
	CategorySlug string
	Query        string
	Condition    string // "", "new" or "used"
	MinPrice     float64
	MaxPrice     float64
	Sort         string // newest, price_asc, price_desc
	Limit        int
	Offset       int
	IsActive     *bool // nil = all, true = active, false = inactive
}

type ProductRepository interface {
	// Category Management
	GetCategoryTree(ctx context.Context) ([]Category, error)
	GetCategoriesFlat(ctx context.Context, isActive *bool) ([]Category, error)
	CreateCategory(ctx context.Context, category *Category) error
	UpdateCategory(ctx context.Context, category *Category) error
	DeleteCategory(ctx context.Context, id string) error

	// Products
	GetProducts(ctx context.Context, filter ProductFilter) ([]Product, int64, error)
	GetProductByID(ctx context.Context, id string) (*Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]Product, error)
	CreateProduct(ctx context.Context, product *Product) error
	UpdateProduct(ctx context.Context, product *Product) error
	UpdateProductStatus(ctx context.Context, id string, isActive bool) error
	DeleteProduct(ctx context.Context, id string) error
}
