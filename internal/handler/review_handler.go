package handler

import (
	"net/http"
	"strconv"

	"marketplace-api/internal/container"
	"marketplace-api/internal/domain"
	apperrors "marketplace-api/pkg/errors"
)

// ReviewHandler handles review requests
type ReviewHandler struct {
	container *container.Container
}

func NewReviewHandler(container *container.Container) *ReviewHandler {
	return &ReviewHandler{container: container}
}

// Add handles POST /api/v1/review/product/{id}
func (h *ReviewHandler) Add(w http.ResponseWriter, r *http.Request) {
	c, err := caller(r)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	productID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}

	var req domain.ReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}

	review, err := h.container.Services.Reviews.Add(r.Context(), c, productID, req)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	respondJSON(w, r, http.StatusCreated, "Review added successfully", review, h.container.Logger)
}

// Edit handles PUT /api/v1/review/{reviewId}
func (h *ReviewHandler) Edit(w http.ResponseWriter, r *http.Request) {
	c, err := caller(r)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	reviewID, err := pathID(r, "reviewId")
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}

	var req domain.ReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}

	review, err := h.container.Services.Reviews.Edit(r.Context(), c, reviewID, req)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	respondJSON(w, r, http.StatusOK, "Review updated successfully", review, h.container.Logger)
}

// Delete handles DELETE /api/v1/review/{reviewId}
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, err := caller(r)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	reviewID, err := pathID(r, "reviewId")
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}

	if err := h.container.Services.Reviews.Delete(r.Context(), c, reviewID); err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	respondJSON(w, r, http.StatusOK, "Review deleted successfully", nil, h.container.Logger)
}

// Get handles GET /api/v1/review/{reviewId}
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	reviewID, err := pathID(r, "reviewId")
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}

	review, err := h.container.Services.Reviews.Get(r.Context(), reviewID)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	respondJSON(w, r, http.StatusOK, "", review, h.container.Logger)
}

// List handles GET /api/v1/review with an optional productId filter
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	var productID int64
	if raw := r.URL.Query().Get("productId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondError(w, r, apperrors.NewValidationError("Invalid query parameters",
				map[string]interface{}{"productId": "must be a positive integer"}), h.container.Logger)
			return
		}
		productID = id
	}

	reviews, err := h.container.Services.Reviews.List(r.Context(), productID)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	respondJSON(w, r, http.StatusOK, "", reviews, h.container.Logger)
}
