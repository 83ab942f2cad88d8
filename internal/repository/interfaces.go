package repository

import (
	"context"

	"marketplace-api/internal/domain"
)

// CredentialStore is the narrow contract the auth subsystem needs from
// identity storage. Finders return (nil, nil) when nothing matches.
// Uniqueness of email and username is enforced by the store; a violation
// surfaces as a conflict error.
type CredentialStore interface {
	// FindByEmailOrUsername returns an identity matching either value.
	// Empty arguments are ignored.
	FindByEmailOrUsername(ctx context.Context, email, username string) (*domain.Identity, error)

	// Create persists a new identity
	Create(ctx context.Context, fields domain.NewIdentity) (*domain.Identity, error)

	// FindByID retrieves an identity by ID
	FindByID(ctx context.Context, id int64) (*domain.Identity, error)

	// Update applies patch and returns the updated identity
	Update(ctx context.Context, id int64, patch domain.IdentityPatch) (*domain.Identity, error)

	// Delete removes an identity, returning what was removed
	Delete(ctx context.Context, id int64) (*domain.Identity, error)
}

// CategoryRepository defines category persistence
type CategoryRepository interface {
	Create(ctx context.Context, name string) (*domain.Category, error)
	GetByName(ctx context.Context, name string) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
}

// ProductRepository defines product persistence
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, query domain.ProductQuery) (*domain.ProductPage, error)
	Update(ctx context.Context, product *domain.Product) error
	UpdateImages(ctx context.Context, id int64, images []string) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

// ReviewRepository defines review persistence
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, id int64) (*domain.Review, error)
	List(ctx context.Context, productID int64) ([]*domain.Review, error)
	UpdateContent(ctx context.Context, id int64, content string) (*domain.Review, error)
	Delete(ctx context.Context, id int64) error
}

// OrderRepository defines order persistence
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	ListByBuyer(ctx context.Context, buyerID int64) ([]*domain.Order, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users      CredentialStore
	Categories CategoryRepository
	Products   ProductRepository
	Reviews    ReviewRepository
	Orders     OrderRepository
}
