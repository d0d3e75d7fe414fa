package common

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/velora/commerce/internal/common/constants"
	commonErrors "github.com/velora/commerce/internal/common/errors"
	"github.com/velora/commerce/internal/log"
)

// CreateToken signs a session token for userId. The subject claim carries the
// user id; everything else is the usual registered claim set.
func CreateToken(userId uuid.UUID, secretKey string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(
		jwt.SigningMethodHS256,
		jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{constants.AudienceStorefront},
			Issuer:    constants.AppStorefront,
			Subject:   userId.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	)
	signed, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("failed signing token with error=%w", err)
	}
	return signed, nil
}

// VerifyToken validates signature, expiry, issuer and audience, and returns
// the user id from the subject claim.
func VerifyToken(c context.Context, tokenString string, secretKey string) (uuid.UUID, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "VerifyToken").
		Logger()

	claims := jwt.RegisteredClaims{}
	jwtToken, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		},
		jwt.WithAudience(constants.AudienceStorefront),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(constants.AppStorefront),
	)
	if err != nil {
		err = fmt.Errorf("failed parsing with claims with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return uuid.Nil, commonErrors.ErrTokenInvalid
	}
	if !jwtToken.Valid {
		logger.Error().Err(commonErrors.ErrTokenInvalid).Msg(commonErrors.ErrTokenInvalid.Error())
		return uuid.Nil, commonErrors.ErrTokenInvalid
	}

	userId, err := uuid.Parse(claims.Subject)
	if err != nil {
		err = fmt.Errorf("failed parsing subject with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return uuid.Nil, commonErrors.ErrTokenInvalid
	}
	return userId, nil
}

type userIdKey struct{}

func AttachUserIdToContext(c context.Context, userId uuid.UUID) context.Context {
	return context.WithValue(c, userIdKey{}, userId)
}

// UserIdFromContext returns the authenticated user id stashed by the auth
// middleware; ErrUnauthorized when the request never went through it.
func UserIdFromContext(c context.Context) (uuid.UUID, error) {
	userId, ok := c.Value(userIdKey{}).(uuid.UUID)
	if !ok {
		return uuid.Nil, commonErrors.ErrUnauthorized
	}
	return userId, nil
}
