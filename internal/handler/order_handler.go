package handler

import (
	"net/http"

	"marketplace-api/internal/container"
	"marketplace-api/internal/domain"
)

type OrderHandler struct {
	container *container.Container
}

func NewOrderHandler(container *container.Container) *OrderHandler {
	return &OrderHandler{container: container}
}

// PlaceOrder handles POST /api/v1/order/product/{id}
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
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

	var req domain.PlaceOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}

	order, err := h.container.Services.Orders.Place(r.Context(), c, productID, req)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	respondJSON(w, r, http.StatusCreated, "Order placed successfully", order, h.container.Logger)
}

// MyOrders handles GET /api/v1/order/mine
func (h *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	c, err := caller(r)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}

	orders, err := h.container.Services.Orders.ListMine(r.Context(), c)
	if err != nil {
		respondError(w, r, err, h.container.Logger)
		return
	}
	respondJSON(w, r, http.StatusOK, "", orders, h.container.Logger)
}
