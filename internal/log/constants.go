package log

const (
	KeyAppName       = "app-name"
	KeyTag           = "tag"
	KeyProcess       = "process"
	KeyConfig        = "config"
	KeyRequestID     = "request-id"
	KeyTraceID       = "trace-id"
	KeySpanID        = "span-id"
	KeyRequest       = "request"
	KeyRequestHost   = "request-host"
	KeyRequestIP     = "request-ip"
	KeyRequestMethod = "request-method"
	KeyRequestURI    = "request-uri"
	KeyHeader        = "header"
	KeyBody          = "body"
	KeyDbURL         = "db-url"
	KeyCacheKey      = "cache-key"
	KeyUserID        = "user-id"
	KeyEmail         = "email"
	KeyProductID     = "product-id"
	KeyCartItems     = "cart-items"
	KeyCartTotal     = "cart-total"
	KeyOrderID       = "order-id"
	KeyOrderItems    = "order-items"
	KeyOrderStatus   = "order-status"
	KeyQuantity      = "quantity"
	KeySize          = "size"
	KeyColor         = "color"
	KeyTopic         = "topic"
)
