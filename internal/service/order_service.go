package service

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"marketplace-api/internal/domain"
	"marketplace-api/internal/repository"
	apperrors "marketplace-api/pkg/errors"
	"marketplace-api/pkg/logger"
	"marketplace-api/pkg/utils"
)

type orderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	logger   *logger.Logger
}

func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, log *logger.Logger) OrderService {
	return &orderService{orders: orders, products: products, logger: log.Named("order")}
}

var mobileNumber = validation.NewStringRule(utils.IsMobileNumber, "must be a valid mobile number")

func validateOrder(req *domain.PlaceOrderRequest) error {
	for _, field := range []*string{&req.FullName, &req.MobileNumber, &req.Province, &req.City, &req.Area, &req.Address, &req.Landmark} {
		*field = strings.TrimSpace(*field)
	}
	return validation.ValidateStruct(req,
		validation.Field(&req.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.MobileNumber, validation.Required, mobileNumber),
		validation.Field(&req.Province, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.City, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Area, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Address, validation.Required, validation.Length(1, 500)),
		validation.Field(&req.Landmark, validation.Required, validation.Length(1, 200)),
	)
}

// Place records an order for productID by the caller. Orders are created fulfilled.
func (s *orderService) Place(ctx context.Context, caller domain.CallerIdentity, productID int64, req domain.PlaceOrderRequest) (*domain.Order, error) {
	if caller.ID <= 0 {
		return nil, apperrors.NewAuthenticationError("Authentication required")
	}
	if err := validateOrder(&req); err != nil {
		return nil, ValidationFailed(err)
	}
	mobile, err := utils.NormalizeMobileNumber(req.MobileNumber)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid input", map[string]interface{}{"mobileNumber": err.Error()})
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, StoreFailed("Failed to get product", err)
	}
	if product == nil {
		return nil, apperrors.NewNotFoundError("Product not found")
	}

	order := &domain.Order{
		ProductID:    productID,
		BuyerID:      caller.ID,
		FullName:     req.FullName,
		MobileNumber: mobile,
		Province:     req.Province,
		City:         req.City,
		Area:         req.Area,
		Address:      req.Address,
		Landmark:     req.Landmark,
		Status:       domain.OrderStatusFulfilled,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, StoreFailed("Failed to place order", err)
	}

	s.logger.Info("order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("product_id", productID),
		zap.Int64("buyer_id", caller.ID),
		zap.String("mobile", utils.MaskMobileNumber(mobile)),
	)
	return order, nil
}

func (s *orderService) ListMine(ctx context.Context, caller domain.CallerIdentity) ([]*domain.Order, error) {
	if caller.ID <= 0 {
		return nil, apperrors.NewAuthenticationError("Authentication required")
	}
	orders, err := s.orders.ListByBuyer(ctx, caller.ID)
	if err != nil {
		return nil, StoreFailed("Failed to list orders", err)
	}
	return orders, nil
}
