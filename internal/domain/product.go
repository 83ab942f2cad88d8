package domain

import "time"

// Category groups products by name
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Product is a listing owned by a single identity
type Product struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"ownerId"`
	CategoryID  int64     `json:"categoryId"`
	Category    string    `json:"category,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	Price       float64   `json:"price"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateProductRequest is the body of POST /product
type CreateProductRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Images      []string `json:"images"`
}

// UpdateProductRequest is the body of PUT /product/{id}
type UpdateProductRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// UpdateProductImagesRequest is the body of PUT /product/{id}/images
type UpdateProductImagesRequest struct {
	Images []string `json:"images"`
}

// CreateCategoryRequest is the body of POST /category
type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// Sort columns accepted by product listings
const (
	SortByCreatedAt = "created_at"
	SortByPrice     = "price"
	SortByTitle     = "title"
)

// ProductQuery controls paging and ordering of product listings
type ProductQuery struct {
	Page     int
	Limit    int
	SortBy   string
	SortDesc bool
	// Search filters by case-insensitive title substring when non-empty.
	Search string
	// OwnerID restricts to one owner when non-zero.
	OwnerID int64
}

// Offset returns the row offset for the requested page
func (q ProductQuery) Offset() int {
	if q.Page <= 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// ProductPage is one page of a product listing
type ProductPage struct {
	Products []*Product `json:"products"`
	Page     int        `json:"page"`
	Limit    int        `json:"limit"`
	Total    int64      `json:"total"`
}
