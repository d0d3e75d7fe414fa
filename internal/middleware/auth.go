package middleware

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/velora/commerce/internal/common"
	"github.com/velora/commerce/internal/common/constants"
	commonErrors "github.com/velora/commerce/internal/common/errors"
	"github.com/velora/commerce/internal/common/response"
	"github.com/velora/commerce/internal/log"
)

// Auth resolves the session cookie to a user id and stashes it in the request
// context. Missing cookie, bad signature and expiry all collapse into the
// same 401 so the client learns nothing about which check failed.
func Auth(secretKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).
				With().
				Str(log.KeyTag, "middleware auth").
				Logger()
			c := logger.WithContext(r.Context())

			cookie, err := r.Cookie(constants.CookieToken)
			if err != nil || cookie.Value == "" {
				logger.Error().
					Err(commonErrors.ErrUnauthorized).
					Msg("missing session cookie")
				response.WriteErrorResponse(c, w, commonErrors.ErrUnauthorized)
				return
			}

			userId, err := common.VerifyToken(c, cookie.Value, secretKey)
			if err != nil {
				logger.Error().Err(err).Msg("invalid session token")
				response.WriteErrorResponse(c, w, commonErrors.ErrUnauthorized)
				return
			}

			c = common.AttachUserIdToContext(c, userId)
			logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()
			c = logger.WithContext(c)

			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}
