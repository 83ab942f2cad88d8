package handler

import (
	"net/http"
	"strconv"
	"strings"

	"marketplace-api/internal/container"
	"marketplace-api/internal/domain"
	apperrors "marketplace-api/pkg/errors"
)

// ProductHandler handles product and category requests
type ProductHandler struct {
	container *container.Container
}

func NewProductHandler(container *container.Container) *ProductHandler {
	return &ProductHandler{container: container}
}

// CreateCategory handles POST /api/v1/category
func (h *ProductHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}

	category, err := h.container.Services.Categories.Create(r.Context(), req)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	respondJSON(w, r, http.StatusCreated, "Category created successfully", category, h.container.Logger)
}

// ListCategories handles GET /api/v1/category
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.container.Services.Categories.List(r.Context())
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	respondJSON(w, r, http.StatusOK, "", categories, h.container.Logger)
}

// Create handles POST /api/v1/product
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, err := caller(r)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}

	var req domain.CreateProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}

	product, err := h.container.Services.Products.Create(r.Context(), c, req)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	respondJSON(w, r, http.StatusCreated, "Product created successfully", product, h.container.Logger)
}

// parseProductQuery reads page, limit, sortBy and sortType. Missing values
// are left for the service to default.
func parseProductQuery(r *http.Request) (domain.ProductQuery, error) {
	values := r.URL.Query()
	query := domain.ProductQuery{SortBy: values.Get("sortBy"), SortDesc: true}
	details := map[string]interface{}{}

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			details["page"] = "must be a positive integer"
		}
		query.Page = page
	}
	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			details["limit"] = "must be a positive integer"
		}
		query.Limit = limit
	}
	switch strings.ToLower(values.Get("sortType")) {
	case "", "desc":
	case "asc":
		query.SortDesc = false
	default:
		details["sortType"] = "must be asc or desc"
	}

	if len(details) > 0 {
		return query, apperrors.NewValidationError("Invalid query parameters", details)
	}
	return query, nil
}

// List handles GET /api/v1/product
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query, err := parseProductQuery(r)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	h.list(w, r, query)
}

// Search handles GET /api/v1/product/search?q=
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	query, err := parseProductQuery(r)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	query.Search = strings.TrimSpace(r.URL.Query().Get("q"))
	if query.Search == "" {
		respondError(w, r, apperrors.NewValidationError("Search query is required", map[string]interface{}{"q": "cannot be blank"}), h.container.Logger)
		return
	}
	h.list(w, r, query)
}

// ListByOwner handles GET /api/v1/product/user/{id}
func (h *ProductHandler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	query, err := parseProductQuery(r)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	query.OwnerID = ownerID
	h.list(w, r, query)
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request, query domain.ProductQuery) {
	page, err := h.container.Services.Products.List(r.Context(), query)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	respondJSON(w, r, http.StatusOK, "", page, h.container.Logger)
}

// Get handles GET /api/v1/product/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}

	product, err := h.container.Services.Products.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	respondJSON(w, r, http.StatusOK, "", product, h.container.Logger)
}

// Update handles PUT /api/v1/product/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	c, err := caller(r)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}

	var req domain.UpdateProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}

	product, err := h.container.Services.Products.Update(r.Context(), c, id, req)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	respondJSON(w, r, http.StatusOK, "Product updated successfully", product, h.container.Logger)
}

// UpdateImages handles PUT /api/v1/product/{id}/images
func (h *ProductHandler) UpdateImages(w http.ResponseWriter, r *http.Request) {
	c, err := caller(r)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}

	var req domain.UpdateProductImagesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}

	product, err := h.container.Services.Products.UpdateImages(r.Context(), c, id, req)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	respondJSON(w, r, http.StatusOK, "Product images updated successfully", product, h.container.Logger)
}

// Delete handles DELETE /api/v1/product/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, err := caller(r)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}

	if err := h.container.Services.Products.Delete(r.Context(), c, id); err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	respondJSON(w, r, http.StatusOK, "Product deleted successfully", nil, h.container.Logger)
}
