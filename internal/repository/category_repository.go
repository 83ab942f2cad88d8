package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"marketplace-api/internal/domain"
	"marketplace-api/pkg/database"
)

type categoryRepository struct {
	db *database.PostgresDB
}

func NewCategoryRepository(db *database.PostgresDB) *categoryRepository {
	return &categoryRepository{db: db}
}

// Create inserts a category; a duplicate name is a conflict
func (r *categoryRepository) Create(ctx context.Context, name string) (*domain.Category, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	category := &domain.Category{Name: name}
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id, created_at`, name,
	).Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		return nil, mapError("create category", err)
	}
	return category, nil
}

// GetByName returns nil when no category has that name
func (r *categoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	var category domain.Category
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM categories WHERE name = $1`, name,
	).Scan(&category.ID, &category.Name, &category.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("get category", err)
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, `SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, mapError("list categories", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, mapError("scan category", err)
		}
		categories = append(categories, &c)
	}
	return categories, mapError("iterate categories", rows.Err())
}
