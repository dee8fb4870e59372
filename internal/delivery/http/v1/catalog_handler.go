package v1

import (
	"net/http"
	"strconv"

	"kaluste-backend/internal/domain"
	"kaluste-backend/internal/usecase"
	"kaluste-backend/pkg/utils"
)

type CatalogHandler struct {
	catalog *usecase.CatalogUsecase
}

func NewCatalogHandler(catalog *usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GET /api/v1/products
func (h *CatalogHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	active := true
	filter := domain.ProductFilter{
		CategorySlug: q.Get("category"),
		Query:        q.Get("q"),
		Condition:    q.Get("condition"),
		Sort:         q.Get("sort"),
		Limit:        utils.ParseInt(q.Get("limit"), 24),
		IsActive:     &active,
	}
	if v, err := strconv.ParseFloat(q.Get("min_price"), 64); err == nil {
		filter.MinPrice = v
	}
	if v, err := strconv.ParseFloat(q.Get("max_price"), 64); err == nil {
		filter.MaxPrice = v
	}
	page := utils.ParseInt(q.Get("page"), 1)
	if page < 1 {
		page = 1
	}
	filter.Offset = (page - 1) * filter.Limit

	products, total, err := h.catalog.GetProducts(r.Context(), filter)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to load products")
		return
	}

	totalPages := 0
	if filter.Limit > 0 {
		totalPages = int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Data:    products,
		Meta: domain.Pagination{
			Page:       page,
			Limit:      filter.Limit,
			TotalItems: total,
			TotalPages: totalPages,
		},
	})
}

// GET /api/v1/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err, http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, product)
}

// GET /api/v1/categories/tree
func (h *CatalogHandler) GetCategoryTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.catalog.GetCategoryTree(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to load categories")
		return
	}
	utils.WriteJSON(w, http.StatusOK, tree)
}
