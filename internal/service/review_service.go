package service

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"marketplace-api/internal/authz"
	"marketplace-api/internal/domain"
	"marketplace-api/internal/metrics"
	"marketplace-api/internal/repository"
	apperrors "marketplace-api/pkg/errors"
	"marketplace-api/pkg/logger"
)

type reviewService struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	metrics  metrics.AuthRecorder
	logger   *logger.Logger
}

// NewReviewService creates a ReviewService. Only the reviewer may edit or delete a review.
func NewReviewService(reviews repository.ReviewRepository, products repository.ProductRepository, recorder metrics.AuthRecorder, log *logger.Logger) ReviewService {
	return &reviewService{
		reviews:  reviews,
		products: products,
		metrics:  recorderOrNop(recorder),
		logger:   log.Named("review"),
	}
}

func validateReview(req *domain.ReviewRequest) error {
	req.Content = strings.TrimSpace(req.Content)
	err := validation.ValidateStruct(req,
		validation.Field(&req.Content, validation.Required, validation.Length(1, 2000)),
	)
	return ValidationFailed(err)
}

func (s *reviewService) Add(ctx context.Context, caller domain.CallerIdentity, productID int64, req domain.ReviewRequest) (*domain.Review, error) {
	if caller.ID <= 0 {
		return nil, apperrors.NewAuthenticationError("Authentication required")
	}
	if err := validateReview(&req); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, StoreFailed("Failed to get product", err)
	}
	if product == nil {
		return nil, apperrors.NewNotFoundError("Product not found")
	}

	review := &domain.Review{
		ProductID:  productID,
		ReviewerID: caller.ID,
		Content:    req.Content,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, StoreFailed("Failed to add review", err)
	}

	s.logger.Info("review added", zap.Int64("review_id", review.ID), zap.Int64("product_id", productID))
	return review, nil
}

func (s *reviewService) Get(ctx context.Context, id int64) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, StoreFailed("Failed to get review", err)
	}
	if review == nil {
		return nil, apperrors.NewNotFoundError("Review not found")
	}
	return review, nil
}

// List returns reviews for productID, or all reviews when productID is zero
func (s *reviewService) List(ctx context.Context, productID int64) ([]*domain.Review, error) {
	if productID < 0 {
		return nil, apperrors.NewValidationError("Invalid input", map[string]interface{}{"productId": "must be a positive integer"})
	}
	reviews, err := s.reviews.List(ctx, productID)
	if err != nil {
		return nil, StoreFailed("Failed to list reviews", err)
	}
	return reviews, nil
}

func (s *reviewService) loadOwned(ctx context.Context, caller domain.CallerIdentity, id int64) (*domain.Review, error) {
	review, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(s.metrics, caller, review.ReviewerID, authz.ResourceReview); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) Edit(ctx context.Context, caller domain.CallerIdentity, reviewID int64, req domain.ReviewRequest) (*domain.Review, error) {
	if _, err := s.loadOwned(ctx, caller, reviewID); err != nil {
		return nil, err
	}
	if err := validateReview(&req); err != nil {
		return nil, err
	}

	review, err := s.reviews.UpdateContent(ctx, reviewID, req.Content)
	if err != nil {
		return nil, StoreFailed("Failed to edit review", err)
	}
	if review == nil {
		return nil, apperrors.NewNotFoundError("Review not found")
	}
	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, caller domain.CallerIdentity, reviewID int64) error {
	if _, err := s.loadOwned(ctx, caller, reviewID); err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		return StoreFailed("Failed to delete review", err)
	}
	s.logger.Info("review deleted", zap.Int64("review_id", reviewID))
	return nil
}
