package store

import (
	"time"

	"github.com/google/uuid"
)

// ItemKeyStreakFreeze marks the consumable that interacts with the streak
// reset logic; at most one may be held at a time.
const ItemKeyStreakFreeze = "streak_freeze"

type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ItemKey     string    `json:"item_key" db:"item_key"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category" db:"category"`
	BasePrice   float64   `json:"base_price" db:"base_price"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ProductWithDiscount is a catalog entry priced for the caller's tier.
type ProductWithDiscount struct {
	Product
	DiscountPercent int     `json:"discount_percentage"`
	DiscountedPrice float64 `json:"discounted_price"`
}

// Purchase is an immutable fact; price and tier are frozen at purchase
// time and never re-derived.
type Purchase struct {
	ID              uuid.UUID `json:"id" db:"id"`
	UserID          uuid.UUID `json:"user_id" db:"user_id"`
	ProductID       uuid.UUID `json:"product_id" db:"product_id"`
	OriginalPrice   float64   `json:"original_price" db:"original_price"`
	DiscountApplied int       `json:"discount_applied" db:"discount_applied"`
	FinalPrice      float64   `json:"final_price" db:"final_price"`
	TierAtPurchase  string    `json:"tier_at_purchase" db:"tier_at_purchase"`
	PurchaseDate    time.Time `json:"purchase_date" db:"purchase_date"`
}

type PurchaseRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

type CatalogResponse struct {
	Products        []*ProductWithDiscount `json:"products"`
	UserTier        string                 `json:"user_tier"`
	DiscountPercent int                    `json:"discount_percentage"`
}
