package domain

import "time"

// OrderStatusFulfilled is the status new orders are placed with
const OrderStatusFulfilled = "fulfilled"

// Order is a purchase of one product by one buyer
type Order struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"productId"`
	BuyerID      int64     `json:"buyerId"`
	FullName     string    `json:"fullName"`
	MobileNumber string    `json:"mobileNumber"`
	Province     string    `json:"province"`
	City         string    `json:"city"`
	Area         string    `json:"area"`
	Address      string    `json:"address"`
	Landmark     string    `json:"landmark"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PlaceOrderRequest is the body of POST /order/product/{id}
type PlaceOrderRequest struct {
	FullName     string `json:"fullName"`
	MobileNumber string `json:"mobileNumber"`
	Province     string `json:"province"`
	City         string `json:"city"`
	Area         string `json:"area"`
	Address      string `json:"address"`
	Landmark     string `json:"landmark"`
}
