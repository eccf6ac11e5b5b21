package model

import "time"

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type GroceryItem struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	Name         string     `json:"name"`
	Quantity     int        `json:"quantity"`
	Unit         string     `json:"unit"`
	Price        float64    `json:"price"`
	CategoryID   int64      `json:"category_id"`
	CategoryName string     `json:"category_name"`
	Purchased    bool       `json:"purchased"`
	PurchasedAt  *time.Time `json:"purchased_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ItemFields carries the writable columns of a GroceryItem.
type ItemFields struct {
	Name       string
	Quantity   int
	Unit       string
	Price      float64
	CategoryID int64
}

// ItemPatch carries a partial update; nil fields are left unchanged.
type ItemPatch struct {
	Name       *string
	Quantity   *int
	Unit       *string
	Price      *float64
	CategoryID *int64
}

func (p ItemPatch) Empty() bool {
	return p.Name == nil && p.Quantity == nil && p.Unit == nil && p.Price == nil && p.CategoryID == nil
}
