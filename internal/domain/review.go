package domain

import "time"

// Review is written by one identity about one product
type Review struct {
	ID         int64     `json:"id"`
	ProductID  int64     `json:"productId"`
	ReviewerID int64     `json:"reviewerId"`
	Reviewer   string    `json:"reviewer,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ReviewRequest is the body for adding or editing a review
type ReviewRequest struct {
	Content string `json:"content"`
}
