package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced = "OrderPlaced"
)

type Envelope struct {
	EventID    string      `json:"event_id"`
	EventType  string      `json:"event_type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Producer   string      `json:"producer"`
	RequestID  string      `json:"request_id,omitempty"`
	Payload    interface{} `json:"payload"`
}

type OrderPlacedItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int32           `json:"quantity"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
}

type OrderPlacedPayload struct {
	OrderID       uuid.UUID         `json:"order_id"`
	UserID        uuid.UUID         `json:"user_id"`
	Items         []OrderPlacedItem `json:"items"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	PaymentMethod string            `json:"payment_method"`
	OrderDate     time.Time         `json:"order_date"`
}
