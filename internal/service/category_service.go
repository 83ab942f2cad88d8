package service

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"marketplace-api/internal/domain"
	"marketplace-api/internal/repository"
	"marketplace-api/pkg/logger"
)

type categoryService struct {
	categories repository.CategoryRepository
	logger     *logger.Logger
}

func NewCategoryService(categories repository.CategoryRepository, log *logger.Logger) CategoryService {
	return &categoryService{categories: categories, logger: log.Named("category")}
}

func (s *categoryService) Create(ctx context.Context, req domain.CreateCategoryRequest) (*domain.Category, error) {
	req.Name = strings.TrimSpace(req.Name)
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 64)),
	)
	if err != nil {
		return nil, ValidationFailed(err)
	}

	category, err := s.categories.Create(ctx, req.Name)
	if err != nil {
		return nil, StoreFailed("Failed to create category", err)
	}

	s.logger.Info("category created", zap.Int64("category_id", category.ID), zap.String("name", category.Name))
	return category, nil
}

func (s *categoryService) List(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, StoreFailed("Failed to list categories", err)
	}
	return categories, nil
}
