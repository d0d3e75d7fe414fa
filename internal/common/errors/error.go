package errors

import (
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/velora/commerce/internal/otel"
)

var (
	ErrUnauthorized      = errors.New("Unauthorized")
	ErrTokenInvalid      = errors.New("invalid token")
	ErrProductNotFound   = errors.New("Product not found")
	ErrCartNotFound      = errors.New("Cart not found")
	ErrCartItemNotFound  = errors.New("Item not found in cart")
	ErrOrderNotFound     = errors.New("Order not found")
	ErrWishlistNotFound  = errors.New("Wishlist not found")
	ErrUserNotFound      = errors.New("User not found")
	ErrItemInCart        = errors.New("Item already in cart")
	ErrProductInWishlist = errors.New("Product already in wishlist")
	ErrEmailTaken        = errors.New("Email already registered")
	ErrInsufficientStock = errors.New("Insufficient stock")
	ErrPasswordMismatch  = errors.New("Invalid email or password")
	ErrTotalMismatch     = errors.New("Order total does not match item prices")
)

// ValidationError names the offending field the way the storefront client
// expects, e.g. "fullName is required in shipping address".
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// StatusCode maps the error taxonomy onto HTTP statuses. Conflict and
// insufficient-stock map to 400 to match the storefront client's handling.
func StatusCode(err error) int {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}
	switch {
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrCartNotFound),
		errors.Is(err, ErrCartItemNotFound),
		errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrWishlistNotFound),
		errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrItemInCart),
		errors.Is(err, ErrProductInWishlist),
		errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrPasswordMismatch),
		errors.Is(err, ErrTotalMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func HandleError(err error, span trace.Span) {
	otel.RecordError(err, span)
}
