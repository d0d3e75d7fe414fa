package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int32     `json:"quantity"  validate:"required,gte=1"`
	Size      string    `json:"size"      validate:"required"`
	Color     string    `json:"color"     validate:"required"`
}

type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

type CreateOrder struct {
	OrderItems      []OrderItem     `json:"orderItems"      validate:"required,min=1,dive"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"   validate:"required"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Notes           string          `json:"notes"`
}

type UpdateOrder struct {
	Status          *string          `json:"orderStatus"`
	Notes           *string          `json:"notes"`
	DeliveryDate    *time.Time       `json:"deliveryDate"`
	ShippingAddress *ShippingAddress `json:"shippingAddress"`
}
