package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kaluste-backend/internal/domain"
)

// ProductRepo persists the catalog: categories and products with their
// category links.
type ProductRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

// --- Categories ---

const categoryColumns = "id, name, slug, parent_id, order_index, is_active"

func (r *ProductRepo) GetCategoriesFlat(ctx context.Context, isActive *bool) ([]domain.Category, error) {
	db := dbFrom(ctx, r.pool)

	query := "SELECT " + categoryColumns + " FROM categories"
	var args []any
	if isActive != nil {
		query += " WHERE is_active = $1"
		args = append(args, *isActive)
	}
	query += " ORDER BY order_index, name"

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.OrderIndex, &c.IsActive); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategoryTree assembles the parent/child hierarchy from the flat list.
// Only active categories appear in the public tree.
func (r *ProductRepo) GetCategoryTree(ctx context.Context) ([]domain.Category, error) {
	active := true
	flat, err := r.GetCategoriesFlat(ctx, &active)
	if err != nil {
		return nil, err
	}

	return buildCategoryTree(flat, nil), nil
}

// buildCategoryTree nests children under their parents, depth first. The flat
// list arrives in display order, so siblings stay sorted.
func buildCategoryTree(flat []domain.Category, parentID *string) []domain.Category {
	var out []domain.Category
	for _, c := range flat {
		switch {
		case parentID == nil && c.ParentID != nil:
			continue
		case parentID != nil && (c.ParentID == nil || *c.ParentID != *parentID):
			continue
		}
		c.Children = buildCategoryTree(flat, &c.ID)
		out = append(out, c)
	}
	return out
}

func (r *ProductRepo) CreateCategory(ctx context.Context, category *domain.Category) error {
	db := dbFrom(ctx, r.pool)

	_, err := db.Exec(ctx, `
		INSERT INTO categories (id, name, slug, parent_id, order_index, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		category.ID, category.Name, category.Slug, category.ParentID, category.OrderIndex, category.IsActive)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *ProductRepo) UpdateCategory(ctx context.Context, category *domain.Category) error {
	db := dbFrom(ctx, r.pool)

	tag, err := db.Exec(ctx, `
		UPDATE categories
		SET name = $2, slug = $3, parent_id = $4, order_index = $5, is_active = $6
		WHERE id = $1`,
		category.ID, category.Name, category.Slug, category.ParentID, category.OrderIndex, category.IsActive)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %s: %w", category.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *ProductRepo) DeleteCategory(ctx context.Context, id string) error {
	db := dbFrom(ctx, r.pool)

	tag, err := db.Exec(ctx, "DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// --- Products ---

const productColumns = "p.id, p.name, p.slug, p.description, p.price, p.sale_price, p.condition, p.stock, p.is_active, p.media, p.created_at, p.updated_at"

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	var media []byte
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.SalePrice,
		&p.Condition, &p.Stock, &p.IsActive, &media, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	p.Media = domain.RawJSON(media)
	p.Images = imagesFromMedia(media)
	return p, nil
}

// imagesFromMedia pulls the flat image URL list out of the media document.
func imagesFromMedia(media []byte) []string {
	if len(media) == 0 {
		return nil
	}
	var doc struct {
		Images []string `json:"images"`
	}
	if err := json.Unmarshal(media, &doc); err != nil {
		return nil
	}
	return doc.Images
}

func (r *ProductRepo) GetProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	db := dbFrom(ctx, r.pool)

	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.IsActive != nil {
		where = append(where, "p.is_active = "+arg(*filter.IsActive))
	}
	if filter.Condition != "" {
		where = append(where, "p.condition = "+arg(filter.Condition))
	}
	if filter.MinPrice > 0 {
		where = append(where, "COALESCE(p.sale_price, p.price) >= "+arg(filter.MinPrice))
	}
	if filter.MaxPrice > 0 {
		where = append(where, "COALESCE(p.sale_price, p.price) <= "+arg(filter.MaxPrice))
	}
	if filter.Query != "" {
		p := arg("%" + filter.Query + "%")
		where = append(where, "(p.name ILIKE "+p+" OR p.description ILIKE "+p+")")
	}
	if filter.CategorySlug != "" {
		where = append(where, `p.id IN (
			SELECT pc.product_id FROM product_categories pc
			JOIN categories c ON c.id = pc.category_id
			WHERE c.slug = `+arg(filter.CategorySlug)+")")
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := db.QueryRow(ctx, "SELECT count(*) FROM products p"+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	orderBy := "p.created_at DESC"
	switch filter.Sort {
	case "price_asc":
		orderBy = "COALESCE(p.sale_price, p.price) ASC"
	case "price_desc":
		orderBy = "COALESCE(p.sale_price, p.price) DESC"
	}

	query := "SELECT " + productColumns + " FROM products p" + whereClause +
		" ORDER BY " + orderBy +
		" LIMIT " + arg(filter.Limit) + " OFFSET " + arg(filter.Offset)

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.attachCategories(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *ProductRepo) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	db := dbFrom(ctx, r.pool)

	p, err := scanProduct(db.QueryRow(ctx, "SELECT "+productColumns+" FROM products p WHERE p.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}

	products := []domain.Product{p}
	if err := r.attachCategories(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

func (r *ProductRepo) GetProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	db := dbFrom(ctx, r.pool)

	rows, err := db.Query(ctx, "SELECT "+productColumns+" FROM products p WHERE p.id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("query products by ids: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachCategories(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// attachCategories fills CategoryIDs and Categories for a product batch.
func (r *ProductRepo) attachCategories(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	db := dbFrom(ctx, r.pool)

	ids := make([]string, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}

	rows, err := db.Query(ctx, `
		SELECT pc.product_id, c.id, c.name, c.slug, c.parent_id, c.order_index, c.is_active
		FROM product_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.product_id = ANY($1)
		ORDER BY c.order_index, c.name`, ids)
	if err != nil {
		return fmt.Errorf("query product categories: %w", err)
	}
	defer rows.Close()

	byProduct := make(map[string][]domain.Category)
	for rows.Next() {
		var productID string
		var c domain.Category
		if err := rows.Scan(&productID, &c.ID, &c.Name, &c.Slug, &c.ParentID, &c.OrderIndex, &c.IsActive); err != nil {
			return fmt.Errorf("scan product category: %w", err)
		}
		byProduct[productID] = append(byProduct[productID], c)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range products {
		cats := byProduct[products[i].ID]
		products[i].Categories = cats
		products[i].CategoryIDs = make([]string, len(cats))
		for j, c := range cats {
			products[i].CategoryIDs[j] = c.ID
		}
	}
	return nil
}

func (r *ProductRepo) CreateProduct(ctx context.Context, product *domain.Product) error {
	return runInTx(ctx, r.pool, func(ctx context.Context) error {
		db := dbFrom(ctx, r.pool)

		err := db.QueryRow(ctx, `
			INSERT INTO products (id, name, slug, description, price, sale_price, condition, stock, is_active, media)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING created_at, updated_at`,
			product.ID, product.Name, product.Slug, product.Description, product.Price,
			product.SalePrice, product.Condition, product.Stock, product.IsActive, mediaBytes(product.Media),
		).Scan(&product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		return r.replaceProductCategories(ctx, product.ID, product.CategoryIDs)
	})
}

func (r *ProductRepo) UpdateProduct(ctx context.Context, product *domain.Product) error {
	return runInTx(ctx, r.pool, func(ctx context.Context) error {
		db := dbFrom(ctx, r.pool)

		tag, err := db.Exec(ctx, `
			UPDATE products SET
				name = $2, slug = $3, description = $4, price = $5, sale_price = $6,
				condition = $7, stock = $8, is_active = $9, media = $10, updated_at = now()
			WHERE id = $1`,
			product.ID, product.Name, product.Slug, product.Description, product.Price,
			product.SalePrice, product.Condition, product.Stock, product.IsActive, mediaBytes(product.Media))
		if err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("product %s: %w", product.ID, domain.ErrNotFound)
		}
		return r.replaceProductCategories(ctx, product.ID, product.CategoryIDs)
	})
}

func mediaBytes(media domain.RawJSON) []byte {
	if len(media) == 0 {
		return nil
	}
	return []byte(media)
}

func (r *ProductRepo) replaceProductCategories(ctx context.Context, productID string, categoryIDs []string) error {
	db := dbFrom(ctx, r.pool)

	if _, err := db.Exec(ctx, "DELETE FROM product_categories WHERE product_id = $1", productID); err != nil {
		return fmt.Errorf("clear product categories: %w", err)
	}
	for _, categoryID := range categoryIDs {
		_, err := db.Exec(ctx,
			"INSERT INTO product_categories (product_id, category_id) VALUES ($1, $2)",
			productID, categoryID)
		if err != nil {
			return fmt.Errorf("link category %s: %w", categoryID, err)
		}
	}
	return nil
}

func (r *ProductRepo) UpdateProductStatus(ctx context.Context, id string, isActive bool) error {
	db := dbFrom(ctx, r.pool)

	tag, err := db.Exec(ctx,
		"UPDATE products SET is_active = $2, updated_at = now() WHERE id = $1", id, isActive)
	if err != nil {
		return fmt.Errorf("update product status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *ProductRepo) DeleteProduct(ctx context.Context, id string) error {
	db := dbFrom(ctx, r.pool)

	tag, err := db.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
