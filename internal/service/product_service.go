package service

import (
	"context"
	"fmt"
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

// Listing bounds
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

type productService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	metrics    metrics.AuthRecorder
	logger     *logger.Logger
}

// NewProductService creates a ProductService. Mutations are restricted to the product owner.
func NewProductService(products repository.ProductRepository, categories repository.CategoryRepository, recorder metrics.AuthRecorder, log *logger.Logger) ProductService {
	return &productService{
		products:   products,
		categories: categories,
		metrics:    recorderOrNop(recorder),
		logger:     log.Named("product"),
	}
}

// validateImages requires at least one non-blank image reference
func validateImages(images []string) error {
	if len(images) == 0 {
		return apperrors.NewValidationError("Invalid input", map[string]interface{}{"images": "at least one image is required"})
	}
	for i, image := range images {
		if strings.TrimSpace(image) == "" {
			return apperrors.NewValidationError("Invalid input", map[string]interface{}{
				"images": fmt.Sprintf("image %d cannot be blank", i),
			})
		}
	}
	return nil
}

func trimAll(values []string) []string {
	trimmed := make([]string, len(values))
	for i, v := range values {
		trimmed[i] = strings.TrimSpace(v)
	}
	return trimmed
}

func (s *productService) Create(ctx context.Context, caller domain.CallerIdentity, req domain.CreateProductRequest) (*domain.Product, error) {
	if caller.ID <= 0 {
		return nil, apperrors.NewAuthenticationError("Authentication required")
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Address = strings.TrimSpace(req.Address)
	req.Category = strings.TrimSpace(req.Category)

	err := validation.ValidateStruct(&req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Description, validation.Required, validation.Length(1, 5000)),
		validation.Field(&req.Address, validation.Required, validation.Length(1, 500)),
		validation.Field(&req.Price, validation.Min(0.0)),
		validation.Field(&req.Category, validation.Required),
	)
	if err != nil {
		return nil, ValidationFailed(err)
	}
	if err := validateImages(req.Images); err != nil {
		return nil, err
	}

	category, err := s.categories.GetByName(ctx, req.Category)
	if err != nil {
		return nil, StoreFailed("Failed to look up category", err)
	}
	if category == nil {
		return nil, apperrors.NewNotFoundError("Category not found")
	}

	product := &domain.Product{
		OwnerID:     caller.ID,
		CategoryID:  category.ID,
		Category:    category.Name,
		Title:       req.Title,
		Description: req.Description,
		Address:     req.Address,
		Price:       req.Price,
		Images:      trimAll(req.Images),
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, StoreFailed("Failed to create product", err)
	}

	s.logger.Info("product created", zap.Int64("product_id", product.ID), zap.Int64("owner_id", caller.ID))
	return product, nil
}

func (s *productService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, StoreFailed("Failed to get product", err)
	}
	if product == nil {
		return nil, apperrors.NewNotFoundError("Product not found")
	}
	return product, nil
}

// NormalizeProductQuery applies listing defaults and rejects unknown sort columns.
// Limits above MaxPageLimit are clamped.
func NormalizeProductQuery(q domain.ProductQuery) (domain.ProductQuery, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	q.Search = strings.TrimSpace(q.Search)
	if q.SortBy == "" {
		q.SortBy = domain.SortByCreatedAt
	}

	err := validation.ValidateStruct(&q,
		validation.Field(&q.SortBy, validation.In(domain.SortByCreatedAt, domain.SortByPrice, domain.SortByTitle)),
		validation.Field(&q.OwnerID, validation.Min(int64(0))),
	)
	if err != nil {
		return q, ValidationFailed(err)
	}
	return q, nil
}

func (s *productService) List(ctx context.Context, query domain.ProductQuery) (*domain.ProductPage, error) {
	query, err := NormalizeProductQuery(query)
	if err != nil {
		return nil, err
	}

	page, err := s.products.List(ctx, query)
	if err != nil {
		return nil, StoreFailed("Failed to list products", err)
	}
	return page, nil
}

// loadOwned fetches a product and checks the caller owns it
func (s *productService) loadOwned(ctx context.Context, caller domain.CallerIdentity, id int64) (*domain.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(s.metrics, caller, product.OwnerID, authz.ResourceProduct); err != nil {
		s.logger.Warn("product mutation by non-owner",
			zap.Int64("product_id", id),
			zap.Int64("caller_id", caller.ID),
		)
		return nil, err
	}
	return product, nil
}

func (s *productService) Update(ctx context.Context, caller domain.CallerIdentity, id int64, req domain.UpdateProductRequest) (*domain.Product, error) {
	product, err := s.loadOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	err = validation.ValidateStruct(&req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Description, validation.Required, validation.Length(1, 5000)),
		validation.Field(&req.Price, validation.Min(0.0)),
	)
	if err != nil {
		return nil, ValidationFailed(err)
	}

	product.Title = req.Title
	product.Description = req.Description
	product.Price = req.Price
	if err := s.products.Update(ctx, product); err != nil {
		return nil, StoreFailed("Failed to update product", err)
	}

	s.logger.Info("product updated", zap.Int64("product_id", id))
	return product, nil
}

func (s *productService) UpdateImages(ctx context.Context, caller domain.CallerIdentity, id int64, req domain.UpdateProductImagesRequest) (*domain.Product, error) {
	if _, err := s.loadOwned(ctx, caller, id); err != nil {
		return nil, err
	}
	if err := validateImages(req.Images); err != nil {
		return nil, err
	}

	product, err := s.products.UpdateImages(ctx, id, trimAll(req.Images))
	if err != nil {
		return nil, StoreFailed("Failed to update product images", err)
	}
	if product == nil {
		return nil, apperrors.NewNotFoundError("Product not found")
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, caller domain.CallerIdentity, id int64) error {
	if _, err := s.loadOwned(ctx, caller, id); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return StoreFailed("Failed to delete product", err)
	}

	s.logger.Info("product deleted", zap.Int64("product_id", id), zap.Int64("owner_id", caller.ID))
	return nil
}
