package constants

const (
	AppStorefront = "velora-storefront"

	AudienceStorefront = "velora-storefront-user"

	// CookieToken is the HTTP-only cookie carrying the signed session token.
	CookieToken = "token"

	HeaderRequestID = "X-Request-Id"
)
