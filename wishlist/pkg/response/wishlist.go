package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WishlistItem struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	IsOnSale  bool            `json:"isOnSale"`
	Stock     int32           `json:"stock"`
	AddedAt   time.Time       `json:"addedAt"`
}

type Wishlist struct {
	ID     uuid.UUID      `json:"id"`
	UserID uuid.UUID      `json:"userId"`
	Items  []WishlistItem `json:"items"`
}

func EmptyWishlist(userId uuid.UUID) Wishlist {
	return Wishlist{UserID: userId, Items: []WishlistItem{}}
}
