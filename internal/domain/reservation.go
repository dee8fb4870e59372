package domain

import (
	"context"
	"time"
)

// Reservation holds a one-off (usually used) furniture item for a customer
// until pickup or expiry. No payment is attached; it just takes the item off
// the floor.
type Reservation struct {
	ID            string     `json:"id"`
	ProductID     string     `json:"productId"`
	ProductName   string     `json:"productName,omitempty"`
	CustomerName  string     `json:"customerName"`
	CustomerEmail string     `json:"customerEmail"`
	CustomerPhone string     `json:"customerPhone"`
	Note          string     `json:"note,omitempty"`
	Status        string     `json:"status"`
	ExpiresAt     *time.Time `json:"expiresAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// TradeInRequest is a customer's offer to sell furniture to the store.
type TradeInRequest struct {
	ID            string   `json:"id"`
	CustomerName  string   `json:"customerName"`
	CustomerEmail string   `json:"customerEmail"`
	CustomerPhone string   `json:"customerPhone"`
	Description   string   `json:"description"`
	CategoryID    *string  `json:"categoryId"`
	Condition     string   `json:"condition"`
	PhotoURLs     []string `json:"photoUrls"`
	// OfferedPrice is set by staff once the item has been reviewed.
	OfferedPrice *float64  `json:"offeredPrice"`
	Status       string    `json:"status"`
	AdminNote    string    `json:"adminNote,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ReservationRepository interface {
	Create(ctx context.Context, res *Reservation) error
	GetByID(ctx context.Context, id string) (*Reservation, error)
	GetAll(ctx context.Context, status string, limit, offset int) ([]Reservation, int64, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type TradeInRepository interface {
	Create(ctx context.Context, req *TradeInRequest) error
	GetByID(ctx context.Context, id string) (*TradeInRequest, error)
	GetAll(ctx context.Context, status string, limit, offset int) ([]TradeInRequest, int64, error)
	Update(ctx context.Context, req *TradeInRequest) error
}
