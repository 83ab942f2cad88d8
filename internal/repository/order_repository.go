package repository

import (
	"context"

	"marketplace-api/internal/domain"
	"marketplace-api/pkg/database"
)

type orderRepository struct {
	db *database.PostgresDB
}

func NewOrderRepository(db *database.PostgresDB) *orderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO orders (product_id, buyer_id, full_name, mobile_number, province, city, area, address, landmark, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`,
		order.ProductID,
		order.BuyerID,
		order.FullName,
		order.MobileNumber,
		order.Province,
		order.City,
		order.Area,
		order.Address,
		order.Landmark,
		order.Status,
	).Scan(&order.ID, &order.CreatedAt)
	return mapError("create order", err)
}

func (r *orderRepository) ListByBuyer(ctx context.Context, buyerID int64) ([]*domain.Order, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, product_id, buyer_id, full_name, mobile_number, province, city, area, address, landmark, status, created_at
		FROM orders
		WHERE buyer_id = $1
		ORDER BY created_at DESC, id DESC
	`, buyerID)
	if err != nil {
		return nil, mapError("list orders", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.ProductID, &o.BuyerID, &o.FullName, &o.MobileNumber,
			&o.Province, &o.City, &o.Area, &o.Address, &o.Landmark, &o.Status, &o.CreatedAt); err != nil {
			return nil, mapError("scan order", err)
		}
		orders = append(orders, &o)
	}
	return orders, mapError("iterate orders", rows.Err())
}
