package request

import "github.com/google/uuid"

type AddCartItem struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int32     `json:"quantity"  validate:"required,gte=1"`
	Size      string    `json:"size"      validate:"required"`
	Color     string    `json:"color"     validate:"required"`
}

type UpdateCartItem struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int32     `json:"quantity"  validate:"required,gte=1"`
	Size      string    `json:"size"      validate:"required"`
	Color     string    `json:"color"     validate:"required"`
}

type RemoveCartItem struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Size      string    `json:"size"      validate:"required"`
	Color     string    `json:"color"     validate:"required"`
}
