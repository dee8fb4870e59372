package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kaluste-backend/internal/domain"
	"kaluste-backend/pkg/cache"
	"kaluste-backend/pkg/logger"
	"kaluste-backend/pkg/utils"
)

const categoryTreeCacheKey = "catalog:categories:tree"

// CatalogUsecase serves the public product listing and the admin CRUD for
// products and categories. The category tree is cached; product listings hit
// the database directly since filters make the key space unbounded.
type CatalogUsecase struct {
	repo       domain.ProductRepository
	cache      cache.CacheService
	catalogTTL time.Duration
}

func NewCatalogUsecase(repo domain.ProductRepository, cacheService cache.CacheService, catalogTTL time.Duration) *CatalogUsecase {
	return &CatalogUsecase{repo: repo, cache: cacheService, catalogTTL: catalogTTL}
}

// --- Public reads ---

func (uc *CatalogUsecase) GetProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 24
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.repo.GetProducts(ctx, filter)
}

func (uc *CatalogUsecase) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return uc.repo.GetProductByID(ctx, id)
}

func (uc *CatalogUsecase) GetCategoryTree(ctx context.Context) ([]domain.Category, error) {
	if cached, found := uc.cache.Get(categoryTreeCacheKey); found {
		if tree, ok := cached.([]domain.Category); ok {
			return tree, nil
		}
	}
	tree, err := uc.repo.GetCategoryTree(ctx)
	if err != nil {
		return nil, err
	}
	uc.cache.Set(categoryTreeCacheKey, tree, uc.catalogTTL)
	return tree, nil
}

func (uc *CatalogUsecase) GetCategoriesFlat(ctx context.Context, isActive *bool) ([]domain.Category, error) {
	return uc.repo.GetCategoriesFlat(ctx, isActive)
}

// --- Admin: products ---

func (uc *CatalogUsecase) CreateProduct(ctx context.Context, product *domain.Product) error {
	if err := uc.validateProduct(product); err != nil {
		return err
	}
	if product.ID == "" {
		product.ID = utils.GenerateUUID()
	}
	if product.Slug == "" {
		product.Slug = utils.GenerateSlug(product.Name)
	}
	if err := uc.repo.CreateProduct(ctx, product); err != nil {
		return err
	}
	uc.cache.Delete(categoryTreeCacheKey)
	logger.WithContext(ctx).Info().Str("product_id", product.ID).Str("name", product.Name).Msg("product created")
	return nil
}

func (uc *CatalogUsecase) UpdateProduct(ctx context.Context, product *domain.Product) error {
	if err := uc.validateProduct(product); err != nil {
		return err
	}
	if product.Slug == "" {
		product.Slug = utils.GenerateSlug(product.Name)
	}
	return uc.repo.UpdateProduct(ctx, product)
}

func (uc *CatalogUsecase) UpdateProductStatus(ctx context.Context, id string, isActive bool) error {
	return uc.repo.UpdateProductStatus(ctx, id, isActive)
}

func (uc *CatalogUsecase) DeleteProduct(ctx context.Context, id string) error {
	if err := uc.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	logger.WithContext(ctx).Info().Str("product_id", id).Msg("product deleted")
	return nil
}

func (uc *CatalogUsecase) validateProduct(product *domain.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return fmt.Errorf("product name is required")
	}
	if product.Price < 0 {
		return fmt.Errorf("price must be >= 0")
	}
	if product.SalePrice != nil && *product.SalePrice < 0 {
		return fmt.Errorf("sale price must be >= 0")
	}
	switch product.Condition {
	case domain.ConditionNew, domain.ConditionUsed:
	default:
		return fmt.Errorf("condition must be %q or %q", domain.ConditionNew, domain.ConditionUsed)
	}
	if product.Stock < 0 {
		return fmt.Errorf("stock must be >= 0")
	}
	// One-off used items never carry warehouse stock
	if product.Condition == domain.ConditionUsed && product.Stock > 1 {
		return fmt.Errorf("used items are one-offs, stock cannot exceed 1")
	}
	return nil
}

// --- Admin: categories ---

func (uc *CatalogUsecase) CreateCategory(ctx context.Context, category *domain.Category) error {
	if strings.TrimSpace(category.Name) == "" {
		return fmt.Errorf("category name is required")
	}
	if category.ID == "" {
		category.ID = utils.GenerateUUID()
	}
	if category.Slug == "" {
		category.Slug = utils.GenerateSlug(category.Name)
	}
	if err := uc.repo.CreateCategory(ctx, category); err != nil {
		return err
	}
	uc.cache.Delete(categoryTreeCacheKey)
	return nil
}

func (uc *CatalogUsecase) UpdateCategory(ctx context.Context, category *domain.Category) error {
	if strings.TrimSpace(category.Name) == "" {
		return fmt.Errorf("category name is required")
	}
	if category.ParentID != nil && *category.ParentID == category.ID {
		return fmt.Errorf("category cannot be its own parent")
	}
	if err := uc.repo.UpdateCategory(ctx, category); err != nil {
		return err
	}
	uc.cache.Delete(categoryTreeCacheKey)
	return nil
}

func (uc *CatalogUsecase) DeleteCategory(ctx context.Context, id string) error {
	if err := uc.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	uc.cache.Delete(categoryTreeCacheKey)
	return nil
}
