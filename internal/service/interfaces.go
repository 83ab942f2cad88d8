package service

import (
	"context"

	"marketplace-api/internal/domain"
)

// AuthService signs identities up and in, and resolves tokens back to live identities
type AuthService interface {
	// SignUp registers a new identity without authenticating it
	SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.Identity, error)

	// SignIn checks credentials and issues a token
	SignIn(ctx context.Context, req domain.SignInRequest) (*domain.SignInResult, error)

	// SignOut acknowledges a sign-out; tokens stay valid until they expire
	SignOut(ctx context.Context, caller domain.CallerIdentity) error

	// Authenticate verifies a raw token and confirms its subject still exists
	Authenticate(ctx context.Context, rawToken string) (*domain.Identity, error)
}

// AccountService manages an identity's own account
type AccountService interface {
	Get(ctx context.Context, id int64) (*domain.Identity, error)
	Update(ctx context.Context, caller domain.CallerIdentity, id int64, req domain.UpdateAccountRequest) (*domain.Identity, error)
	Delete(ctx context.Context, caller domain.CallerIdentity, id int64) error
}

// CategoryService manages product categories
type CategoryService interface {
	Create(ctx context.Context, req domain.CreateCategoryRequest) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
}

// ProductService manages listings; mutations are owner-only
type ProductService interface {
	Create(ctx context.Context, caller domain.CallerIdentity, req domain.CreateProductRequest) (*domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, query domain.ProductQuery) (*domain.ProductPage, error)
	Update(ctx context.Context, caller domain.CallerIdentity, id int64, req domain.UpdateProductRequest) (*domain.Product, error)
	UpdateImages(ctx context.Context, caller domain.CallerIdentity, id int64, req domain.UpdateProductImagesRequest) (*domain.Product, error)
	Delete(ctx context.Context, caller domain.CallerIdentity, id int64) error
}

// ReviewService manages product reviews; edits are reviewer-only
type ReviewService interface {
	Add(ctx context.Context, caller domain.CallerIdentity, productID int64, req domain.ReviewRequest) (*domain.Review, error)
	Edit(ctx context.Context, caller domain.CallerIdentity, reviewID int64, req domain.ReviewRequest) (*domain.Review, error)
	Delete(ctx context.Context, caller domain.CallerIdentity, reviewID int64) error
	Get(ctx context.Context, id int64) (*domain.Review, error)
	List(ctx context.Context, productID int64) ([]*domain.Review, error)
}

// OrderService places and lists orders
type OrderService interface {
	Place(ctx context.Context, caller domain.CallerIdentity, productID int64, req domain.PlaceOrderRequest) (*domain.Order, error)
	ListMine(ctx context.Context, caller domain.CallerIdentity) ([]*domain.Order, error)
}

// Services aggregates all service interfaces
type Services struct {
	Auth       AuthService
	Accounts   AccountService
	Categories CategoryService
	Products   ProductService
	Reviews    ReviewService
	Orders     OrderService
}
