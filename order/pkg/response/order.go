package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velora/commerce/order/pkg/request"
)

type OrderItem struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int32           `json:"quantity"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
}

type Order struct {
	ID              uuid.UUID               `json:"id"`
	UserID          uuid.UUID               `json:"userId"`
	Items           []OrderItem             `json:"items"`
	TotalAmount     decimal.Decimal         `json:"totalAmount"`
	Status          string                  `json:"orderStatus"`
	ShippingAddress request.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                  `json:"paymentMethod"`
	Notes           string                  `json:"notes"`
	OrderDate       time.Time               `json:"orderDate"`
	DeliveryDate    *time.Time              `json:"deliveryDate,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}
