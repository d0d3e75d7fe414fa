package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID                 uuid.UUID           `json:"id"`
	Name               string              `json:"name"`
	Price              decimal.Decimal     `json:"price"`
	EffectivePrice     decimal.Decimal     `json:"effectivePrice"`
	OriginalPrice      decimal.NullDecimal `json:"originalPrice,omitempty"`
	Image              string              `json:"image"`
	Images             []string            `json:"images"`
	Sex                string              `json:"sex"`
	CategorySlug       string              `json:"category_slug"`
	SubcategorySlug    string              `json:"subcategory_slug"`
	Description        string              `json:"description"`
	Sizes              []string            `json:"sizes"`
	Colors             []string            `json:"colors"`
	Material           string              `json:"material"`
	Care               string              `json:"care"`
	IsFeatured         bool                `json:"isFeatured"`
	IsNewArrival       bool                `json:"isNewArrival"`
	IsOnSale           bool                `json:"isOnSale"`
	DiscountPercentage decimal.NullDecimal `json:"discountPercentage,omitempty"`
	Stock              int32               `json:"stock"`
	Tags               []string            `json:"tags"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

type Subcategory struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

type Category struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	Slug          string        `json:"slug"`
	Subcategories []Subcategory `json:"subcategories"`
}

type Review struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	UserID    uuid.UUID `json:"userId"`
	Username  string    `json:"username"`
	Rating    int32     `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}
