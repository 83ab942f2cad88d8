package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"marketplace-api/internal/domain"
	"marketplace-api/pkg/database"
)

const reviewColumns = `r.id, r.product_id, r.reviewer_id, u.username, r.content, r.created_at, r.updated_at`

type reviewRepository struct {
	db *database.PostgresDB
}

func NewReviewRepository(db *database.PostgresDB) *reviewRepository {
	return &reviewRepository{db: db}
}

func scanReview(row pgx.Row) (*domain.Review, error) {
	var rv domain.Review
	if err := row.Scan(&rv.ID, &rv.ProductID, &rv.ReviewerID, &rv.Reviewer, &rv.Content, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO reviews (product_id, reviewer_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, review.ProductID, review.ReviewerID, review.Content).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
	return mapError("create review", err)
}

// GetByID returns nil when the review does not exist
func (r *reviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	review, err := scanReview(r.db.Pool.QueryRow(ctx,
		`SELECT `+reviewColumns+` FROM reviews r JOIN users u ON u.id = r.reviewer_id WHERE r.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("get review", err)
	}
	return review, nil
}

// List returns reviews, newest first. productID of zero lists all.
func (r *reviewRepository) List(ctx context.Context, productID int64) ([]*domain.Review, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews r JOIN users u ON u.id = r.reviewer_id
		WHERE ($1 = 0 OR r.product_id = $1)
		ORDER BY r.created_at DESC, r.id DESC
	`, productID)
	if err != nil {
		return nil, mapError("list reviews", err)
	}
	defer rows.Close()

	reviews := []*domain.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, mapError("scan review", err)
		}
		reviews = append(reviews, review)
	}
	return reviews, mapError("iterate reviews", rows.Err())
}

func (r *reviewRepository) UpdateContent(ctx context.Context, id int64, content string) (*domain.Review, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	if _, err := r.db.Pool.Exec(ctx, `UPDATE reviews SET content = $2, updated_at = NOW() WHERE id = $1`, id, content); err != nil {
		return nil, mapError("update review", err)
	}
	return r.GetByID(ctx, id)
}

func (r *reviewRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	_, err := r.db.Pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	return mapError("delete review", err)
}
