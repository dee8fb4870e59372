package v1

import (
	"net/http"

	"kaluste-backend/internal/domain"
	"kaluste-backend/internal/usecase"
	"kaluste-backend/pkg/utils"
)

type AdminCatalogHandler struct {
	catalog *usecase.CatalogUsecase
}

func NewAdminCatalogHandler(catalog *usecase.CatalogUsecase) *AdminCatalogHandler {
	return &AdminCatalogHandler{catalog: catalog}
}

// --- Products ---

// GET /api/v1/admin/products (includes inactive)
func (h *AdminCatalogHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := domain.ProductFilter{
		Query:     q.Get("q"),
		Condition: q.Get("condition"),
		Limit:     utils.ParseInt(q.Get("limit"), 50),
		Offset:    utils.ParseInt(q.Get("offset"), 0),
	}
	switch q.Get("status") {
	case "active":
		active := true
		filter.IsActive = &active
	case "inactive":
		inactive := false
		filter.IsActive = &inactive
	}

	products, total, err := h.catalog.GetProducts(r.Context(), filter)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{
		Success: true,
		Data:    products,
		Meta:    map[string]int64{"total": total},
	})
}

// POST /api/v1/admin/products
func (h *AdminCatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := decode(r, &product); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.catalog.CreateProduct(r.Context(), &product); err != nil {
		handleError(w, err, http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, product)
}

// PUT /api/v1/admin/products/{id}
func (h *AdminCatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := decode(r, &product); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	product.ID = r.PathValue("id")

	if err := h.catalog.UpdateProduct(r.Context(), &product); err != nil {
		handleError(w, err, http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusOK, product)
}

// PATCH /api/v1/admin/products/{id}/status
func (h *AdminCatalogHandler) UpdateProductStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsActive bool `json:"isActive"`
	}
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.catalog.UpdateProductStatus(r.Context(), r.PathValue("id"), req.IsActive); err != nil {
		handleError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/v1/admin/products/{id}
func (h *AdminCatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Categories ---

// GET /api/v1/admin/categories (flat, includes inactive)
func (h *AdminCatalogHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.GetCategoriesFlat(r.Context(), nil)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, categories)
}

// POST /api/v1/admin/categories
func (h *AdminCatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var category domain.Category
	if err := decode(r, &category); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.catalog.CreateCategory(r.Context(), &category); err != nil {
		handleError(w, err, http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, category)
}

// PUT /api/v1/admin/categories/{id}
func (h *AdminCatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var category domain.Category
	if err := decode(r, &category); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	category.ID = r.PathValue("id")

	if err := h.catalog.UpdateCategory(r.Context(), &category); err != nil {
		handleError(w, err, http.StatusBadRequest)
		return
	}
	utils.WriteJSON(w, http.StatusOK, category)
}

// DELETE /api/v1/admin/categories/{id}
func (h *AdminCatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
