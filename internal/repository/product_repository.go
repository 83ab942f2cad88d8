package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"marketplace-api/internal/domain"
	"marketplace-api/pkg/database"
)

// sortColumns whitelists ORDER BY targets
var sortColumns = map[string]string{
	domain.SortByCreatedAt: "p.created_at",
	domain.SortByPrice:     "p.price",
	domain.SortByTitle:     "p.title",
}

const productColumns = `p.id, p.owner_id, p.category_id, c.name, p.title, p.description, p.address, p.price::float8, p.images, p.created_at, p.updated_at`

type productRepository struct {
	db *database.PostgresDB
}

func NewProductRepository(db *database.PostgresDB) *productRepository {
	return &productRepository{db: db}
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.OwnerID, &p.CategoryID, &p.Category, &p.Title, &p.Description,
		&p.Address, &p.Price, &p.Images, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a product and fills in its ID and timestamps
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO products (owner_id, category_id, title, description, address, price, images)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.Pool.QueryRow(ctx, query,
		product.OwnerID,
		product.CategoryID,
		product.Title,
		product.Description,
		product.Address,
		product.Price,
		product.Images,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	return mapError("create product", err)
}

// GetByID returns nil when the product does not exist
func (r *productRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products p JOIN categories c ON c.id = p.category_id WHERE p.id = $1`

	product, err := scanProduct(r.db.Pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("get product", err)
	}
	return product, nil
}

// List returns one page of products filtered by owner and title search
func (r *productRepository) List(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = sortColumns[domain.SortByCreatedAt]
	}
	direction := "ASC"
	if q.SortDesc {
		direction = "DESC"
	}

	where := `WHERE ($1 = 0 OR p.owner_id = $1) AND ($2 = '' OR p.title ILIKE '%' || $2 || '%')`

	var total int64
	countQuery := `SELECT COUNT(*) FROM products p ` + where
	if err := r.db.Pool.QueryRow(ctx, countQuery, q.OwnerID, q.Search).Scan(&total); err != nil {
		return nil, mapError("count products", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN categories c ON c.id = p.category_id
		%s
		ORDER BY %s %s, p.id %s
		LIMIT $3 OFFSET $4
	`, productColumns, where, column, direction, direction)

	rows, err := r.db.Pool.Query(ctx, query, q.OwnerID, q.Search, q.Limit, q.Offset())
	if err != nil {
		return nil, mapError("list products", err)
	}
	defer rows.Close()

	products := make([]*domain.Product, 0, q.Limit)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, mapError("scan product", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate products", err)
	}

	return &domain.ProductPage{Products: products, Page: q.Page, Limit: q.Limit, Total: total}, nil
}

// Update writes title, description and price
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	query := `
		UPDATE products SET title = $2, description = $3, price = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.Pool.QueryRow(ctx, query, product.ID, product.Title, product.Description, product.Price).
		Scan(&product.UpdatedAt)
	return mapError("update product", err)
}

// UpdateImages replaces the image references of a product
func (r *productRepository) UpdateImages(ctx context.Context, id int64, images []string) (*domain.Product, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	if _, err := r.db.Pool.Exec(ctx, `UPDATE products SET images = $2, updated_at = NOW() WHERE id = $1`, id, images); err != nil {
		return nil, mapError("update product images", err)
	}
	return r.GetByID(ctx, id)
}

// Delete removes a product
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	_, err := r.db.Pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	return mapError("delete product", err)
}
