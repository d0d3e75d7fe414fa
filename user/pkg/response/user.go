package response

import (
	"time"

	"github.com/google/uuid"

	"github.com/velora/commerce/user/pkg/request"
)

type User struct {
	ID              uuid.UUID                `json:"id"`
	Username        string                   `json:"username"`
	Email           string                   `json:"email"`
	IsVerified      bool                     `json:"isVerified"`
	ShippingAddress *request.ShippingAddress `json:"shippingAddress,omitempty"`
	CreatedAt       time.Time                `json:"createdAt"`
}
