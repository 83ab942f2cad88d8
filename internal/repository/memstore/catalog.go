package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"marketplace-api/internal/domain"
	apperrors "marketplace-api/pkg/errors"
)

// Catalog keeps categories, products, reviews and orders in memory.
// Its Categories, Products, Reviews and Orders views implement the
// matching repository interfaces over shared state, so deleting a
// product also removes its reviews and orders as the schema's cascades do.
type Catalog struct {
	mu sync.RWMutex

	nextCategoryID int64
	nextProductID  int64
	nextReviewID   int64
	nextOrderID    int64

	categories map[int64]domain.Category
	products   map[int64]domain.Product
	reviews    map[int64]domain.Review
	orders     map[int64]domain.Order

	// Usernames resolves reviewer names for listings. Optional.
	Usernames func(id int64) string

	// Err, when set, is returned by every call.
	Err error
}

// NewCatalog returns an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		categories: make(map[int64]domain.Category),
		products:   make(map[int64]domain.Product),
		reviews:    make(map[int64]domain.Review),
		orders:     make(map[int64]domain.Order),
	}
}

func (c *Catalog) Categories() *CategoryStore { return &CategoryStore{c} }
func (c *Catalog) Products() *ProductStore    { return &ProductStore{c} }
func (c *Catalog) Reviews() *ReviewStore      { return &ReviewStore{c} }
func (c *Catalog) Orders() *OrderStore        { return &OrderStore{c} }

// CategoryStore is the category view of a Catalog
type CategoryStore struct{ c *Catalog }

func (s *CategoryStore) Create(ctx context.Context, name string) (*domain.Category, error) {
	if s.c.Err != nil {
		return nil, s.c.Err
	}
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	for _, existing := range s.c.categories {
		if existing.Name == name {
			return nil, apperrors.NewConflictError("Category already exists", nil)
		}
	}
	s.c.nextCategoryID++
	category := domain.Category{ID: s.c.nextCategoryID, Name: name, CreatedAt: time.Now().UTC()}
	s.c.categories[category.ID] = category
	return &category, nil
}

func (s *CategoryStore) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	if s.c.Err != nil {
		return nil, s.c.Err
	}
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	for _, category := range s.c.categories {
		if category.Name == name {
			found := category
			return &found, nil
		}
	}
	return nil, nil
}

func (s *CategoryStore) List(ctx context.Context) ([]*domain.Category, error) {
	if s.c.Err != nil {
		return nil, s.c.Err
	}
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	categories := make([]*domain.Category, 0, len(s.c.categories))
	for _, category := range s.c.categories {
		copied := category
		categories = append(categories, &copied)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

// ProductStore is the product view of a Catalog
type ProductStore struct{ c *Catalog }

func (s *ProductStore) Create(ctx context.Context, product *domain.Product) error {
	if s.c.Err != nil {
		return s.c.Err
	}
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	category, ok := s.c.categories[product.CategoryID]
	if !ok {
		return apperrors.NewNotFoundError("Category not found")
	}
	s.c.nextProductID++
	now := time.Now().UTC()
	product.ID = s.c.nextProductID
	product.Category = category.Name
	product.CreatedAt = now
	product.UpdatedAt = now
	s.c.products[product.ID] = cloneProduct(*product)
	return nil
}

func (s *ProductStore) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	if s.c.Err != nil {
		return nil, s.c.Err
	}
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	product, ok := s.c.products[id]
	if !ok {
		return nil, nil
	}
	found := cloneProduct(product)
	return &found, nil
}

func (s *ProductStore) List(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error) {
	if s.c.Err != nil {
		return nil, s.c.Err
	}
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	search := strings.ToLower(q.Search)
	matched := make([]*domain.Product, 0, len(s.c.products))
	for _, product := range s.c.products {
		if q.OwnerID != 0 && product.OwnerID != q.OwnerID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(product.Title), search) {
			continue
		}
		copied := cloneProduct(product)
		matched = append(matched, &copied)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if q.SortDesc {
			a, b = b, a
		}
		switch q.SortBy {
		case domain.SortByPrice:
			if a.Price != b.Price {
				return a.Price < b.Price
			}
		case domain.SortByTitle:
			if a.Title != b.Title {
				return a.Title < b.Title
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	})

	page := &domain.ProductPage{Products: []*domain.Product{}, Page: q.Page, Limit: q.Limit, Total: int64(len(matched))}
	start := q.Offset()
	if start >= len(matched) {
		return page, nil
	}
	end := start + q.Limit
	if q.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	page.Products = matched[start:end]
	return page, nil
}

func (s *ProductStore) Update(ctx context.Context, product *domain.Product) error {
	if s.c.Err != nil {
		return s.c.Err
	}
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	stored, ok := s.c.products[product.ID]
	if !ok {
		return apperrors.NewNotFoundError("Product not found")
	}
	stored.Title = product.Title
	stored.Description = product.Description
	stored.Price = product.Price
	stored.UpdatedAt = time.Now().UTC()
	s.c.products[product.ID] = stored
	product.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *ProductStore) UpdateImages(ctx context.Context, id int64, images []string) (*domain.Product, error) {
	if s.c.Err != nil {
		return nil, s.c.Err
	}
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	stored, ok := s.c.products[id]
	if !ok {
		return nil, nil
	}
	stored.Images = append([]string(nil), images...)
	stored.UpdatedAt = time.Now().UTC()
	s.c.products[id] = stored
	updated := cloneProduct(stored)
	return &updated, nil
}

func (s *ProductStore) Delete(ctx context.Context, id int64) error {
	if s.c.Err != nil {
		return s.c.Err
	}
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	delete(s.c.products, id)
	for reviewID, review := range s.c.reviews {
		if review.ProductID == id {
			delete(s.c.reviews, reviewID)
		}
	}
	for orderID, order := range s.c.orders {
		if order.ProductID == id {
			delete(s.c.orders, orderID)
		}
	}
	return nil
}

// Len returns the number of stored products
func (s *ProductStore) Len() int {
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()
	return len(s.c.products)
}

func cloneProduct(p domain.Product) domain.Product {
	p.Images = append([]string(nil), p.Images...)
	return p
}

// ReviewStore is the review view of a Catalog
type ReviewStore struct{ c *Catalog }

func (s *ReviewStore) Create(ctx context.Context, review *domain.Review) error {
	if s.c.Err != nil {
		return s.c.Err
	}
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	if _, ok := s.c.products[review.ProductID]; !ok {
		return apperrors.NewNotFoundError("Product not found")
	}
	s.c.nextReviewID++
	now := time.Now().UTC()
	review.ID = s.c.nextReviewID
	review.CreatedAt = now
	review.UpdatedAt = now
	s.c.reviews[review.ID] = *review
	return nil
}

func (s *ReviewStore) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	if s.c.Err != nil {
		return nil, s.c.Err
	}
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	review, ok := s.c.reviews[id]
	if !ok {
		return nil, nil
	}
	s.c.fillReviewer(&review)
	return &review, nil
}

func (s *ReviewStore) List(ctx context.Context, productID int64) ([]*domain.Review, error) {
	if s.c.Err != nil {
		return nil, s.c.Err
	}
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	reviews := []*domain.Review{}
	for _, review := range s.c.reviews {
		if productID != 0 && review.ProductID != productID {
			continue
		}
		copied := review
		s.c.fillReviewer(&copied)
		reviews = append(reviews, &copied)
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].ID > reviews[j].ID })
	return reviews, nil
}

func (s *ReviewStore) UpdateContent(ctx context.Context, id int64, content string) (*domain.Review, error) {
	if s.c.Err != nil {
		return nil, s.c.Err
	}
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	review, ok := s.c.reviews[id]
	if !ok {
		return nil, nil
	}
	review.Content = content
	review.UpdatedAt = time.Now().UTC()
	s.c.reviews[id] = review
	s.c.fillReviewer(&review)
	return &review, nil
}

func (s *ReviewStore) Delete(ctx context.Context, id int64) error {
	if s.c.Err != nil {
		return s.c.Err
	}
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	delete(s.c.reviews, id)
	return nil
}

func (c *Catalog) fillReviewer(review *domain.Review) {
	if c.Usernames != nil {
		review.Reviewer = c.Usernames(review.ReviewerID)
	}
}

// OrderStore is the order view of a Catalog
type OrderStore struct{ c *Catalog }

func (s *OrderStore) Create(ctx context.Context, order *domain.Order) error {
	if s.c.Err != nil {
		return s.c.Err
	}
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	if _, ok := s.c.products[order.ProductID]; !ok {
		return apperrors.NewNotFoundError("Product not found")
	}
	s.c.nextOrderID++
	order.ID = s.c.nextOrderID
	order.CreatedAt = time.Now().UTC()
	s.c.orders[order.ID] = *order
	return nil
}

func (s *OrderStore) ListByBuyer(ctx context.Context, buyerID int64) ([]*domain.Order, error) {
	if s.c.Err != nil {
		return nil, s.c.Err
	}
	s.c.mu.RLock()
	defer s.c.mu.RUnlock()

	orders := []*domain.Order{}
	for _, order := range s.c.orders {
		if order.BuyerID == buyerID {
			copied := order
			orders = append(orders, &copied)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders, nil
}
