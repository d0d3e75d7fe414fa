package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartItem struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int32           `json:"quantity"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Stock     int32           `json:"stock"`
}

type Cart struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	Items     []CartItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// EmptyCart is what a user without a persisted cart sees.
func EmptyCart(userId uuid.UUID) Cart {
	return Cart{
		UserID: userId,
		Items:  []CartItem{},
		Total:  decimal.Zero,
	}
}
