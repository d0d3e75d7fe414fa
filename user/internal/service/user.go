package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/velora/commerce/internal/common"
	commonErrors "github.com/velora/commerce/internal/common/errors"
	"github.com/velora/commerce/internal/log"
	inOtel "github.com/velora/commerce/internal/otel"
	"github.com/velora/commerce/user/internal/repository"
	"github.com/velora/commerce/user/pkg/request"
	"github.com/velora/commerce/user/pkg/response"
)

const (
	tokenTTL         = 24 * time.Hour
	verifyTokenTTL   = 24 * time.Hour
	passwordResetTTL = time.Hour
)

type Mailer interface {
	SendVerificationEmail(c context.Context, to string, token string) error
	SendPasswordResetEmail(c context.Context, to string, token string) error
}

type UserService struct {
	repository repository.UserRepository
	mailer     Mailer
	secretKey  string
}

func NewUserService(
	repo repository.UserRepository,
	mailer Mailer,
	secretKey string,
) UserService {
	return UserService{repository: repo, mailer: mailer, secretKey: secretKey}
}

func toResponse(user repository.User) response.User {
	return response.User{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		IsVerified:      user.IsVerified,
		ShippingAddress: user.ShippingAddress,
		CreatedAt:       user.CreatedAt,
	}
}

func (svc UserService) Signup(
	c context.Context,
	param request.Signup,
) (response.User, error) {
	c, span := inOtel.Tracer.Start(c, "UserService Signup")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "UserService Signup").
		Str(log.KeyEmail, param.Email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "hashing password").Logger()
	logger.Trace().Msg("hashing password")
	span.AddEvent("hashing password")
	hashed, err := bcrypt.GenerateFromPassword([]byte(param.Password), bcrypt.DefaultCost)
	if err != nil {
		err = fmt.Errorf("failed hashing password with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	span.AddEvent("hashed password")

	logger = logger.With().Str(log.KeyProcess, "inserting user to database").Logger()
	logger.Trace().Msg("inserting user to database")
	span.AddEvent("inserting user to database")
	verifyToken := uuid.NewString()
	user, err := svc.repository.InsertUser(c, repository.InsertUserParams{
		Username:          param.Username,
		Email:             param.Email,
		HashedPassword:    string(hashed),
		VerifyToken:       verifyToken,
		VerifyTokenExpiry: time.Now().Add(verifyTokenTTL),
	})
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	span.AddEvent("inserted user to database")
	logger = logger.With().Str(log.KeyUserID, user.ID.String()).Logger()
	logger.Info().Msg("inserted user to database")

	logger = logger.With().Str(log.KeyProcess, "sending verification email").Logger()
	logger.Trace().Msg("sending verification email")
	span.AddEvent("sending verification email")
	if err := svc.mailer.SendVerificationEmail(c, user.Email, verifyToken); err != nil {
		// signup already succeeded, the user can request a new email later
		err = fmt.Errorf("failed sending verification email with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	} else {
		span.AddEvent("sent verification email")
		logger.Info().Msg("sent verification email")
	}

	return toResponse(user), nil
}

func (svc UserService) Login(
	c context.Context,
	param request.Login,
) (string, response.User, error) {
	c, span := inOtel.Tracer.Start(c, "UserService Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "UserService Login").
		Str(log.KeyEmail, param.Email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding user in database").Logger()
	logger.Trace().Msg("finding user in database")
	span.AddEvent("finding user in database")
	user, err := svc.repository.FindUserByEmail(c, param.Email)
	if err != nil {
		// an unknown email reads the same as a wrong password
		if errors.Is(err, commonErrors.ErrUserNotFound) {
			err = commonErrors.ErrPasswordMismatch
		}
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", response.User{}, err
	}
	span.AddEvent("found user in database")

	logger = logger.With().Str(log.KeyProcess, "comparing password").Logger()
	logger.Trace().Msg("comparing password")
	span.AddEvent("comparing password")
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(param.Password)); err != nil {
		err = commonErrors.ErrPasswordMismatch
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", response.User{}, err
	}
	span.AddEvent("compared password")

	logger = logger.With().Str(log.KeyProcess, "creating token").Logger()
	logger.Trace().Msg("creating token")
	span.AddEvent("creating token")
	token, err := common.CreateToken(user.ID, svc.secretKey, tokenTTL)
	if err != nil {
		err = fmt.Errorf("failed creating token with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", response.User{}, err
	}
	span.AddEvent("created token")
	logger.Info().Str(log.KeyUserID, user.ID.String()).Msg("logged in")

	return token, toResponse(user), nil
}

func (svc UserService) FindUserById(
	c context.Context,
	userId uuid.UUID,
) (response.User, error) {
	c, span := inOtel.Tracer.Start(c, "UserService FindUserById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "UserService FindUserById").
		Str(log.KeyUserID, userId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding user in database").Logger()
	logger.Trace().Msg("finding user in database")
	span.AddEvent("finding user in database")
	user, err := svc.repository.FindUserById(c, userId)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	span.AddEvent("found user in database")
	logger.Info().Msg("found user in database")

	return toResponse(user), nil
}

func (svc UserService) VerifyEmail(
	c context.Context,
	token string,
) (response.User, error) {
	c, span := inOtel.Tracer.Start(c, "UserService VerifyEmail")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "UserService VerifyEmail").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "verifying email").Logger()
	logger.Trace().Msg("verifying email")
	span.AddEvent("verifying email")
	user, err := svc.repository.VerifyUserByToken(c, token)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	span.AddEvent("verified email")
	logger.Info().Str(log.KeyUserID, user.ID.String()).Msg("verified email")

	return toResponse(user), nil
}

func (svc UserService) ForgotPassword(c context.Context, email string) error {
	c, span := inOtel.Tracer.Start(c, "UserService ForgotPassword")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "UserService ForgotPassword").
		Str(log.KeyEmail, email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding user in database").Logger()
	logger.Trace().Msg("finding user in database")
	span.AddEvent("finding user in database")
	user, err := svc.repository.FindUserByEmail(c, email)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	span.AddEvent("found user in database")

	logger = logger.With().Str(log.KeyProcess, "setting password reset token").Logger()
	logger.Trace().Msg("setting password reset token")
	span.AddEvent("setting password reset token")
	resetToken := uuid.NewString()
	err = svc.repository.SetForgotPasswordToken(
		c,
		user.ID,
		resetToken,
		time.Now().Add(passwordResetTTL),
	)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	span.AddEvent("set password reset token")

	logger = logger.With().Str(log.KeyProcess, "sending password reset email").Logger()
	logger.Trace().Msg("sending password reset email")
	span.AddEvent("sending password reset email")
	if err := svc.mailer.SendPasswordResetEmail(c, user.Email, resetToken); err != nil {
		err = fmt.Errorf("failed sending password reset email with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	span.AddEvent("sent password reset email")
	logger.Info().Msg("sent password reset email")

	return nil
}

func (svc UserService) ResetPassword(
	c context.Context,
	param request.ResetPassword,
) (response.User, error) {
	c, span := inOtel.Tracer.Start(c, "UserService ResetPassword")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "UserService ResetPassword").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "hashing password").Logger()
	logger.Trace().Msg("hashing password")
	span.AddEvent("hashing password")
	hashed, err := bcrypt.GenerateFromPassword([]byte(param.Password), bcrypt.DefaultCost)
	if err != nil {
		err = fmt.Errorf("failed hashing password with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	span.AddEvent("hashed password")

	logger = logger.With().Str(log.KeyProcess, "resetting password").Logger()
	logger.Trace().Msg("resetting password")
	span.AddEvent("resetting password")
	user, err := svc.repository.ResetPasswordByToken(c, param.Token, string(hashed))
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	span.AddEvent("reset password")
	logger.Info().Str(log.KeyUserID, user.ID.String()).Msg("reset password")

	return toResponse(user), nil
}

func (svc UserService) UpdateShippingAddress(
	c context.Context,
	userId uuid.UUID,
	address request.ShippingAddress,
) (response.User, error) {
	c, span := inOtel.Tracer.Start(c, "UserService UpdateShippingAddress")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "UserService UpdateShippingAddress").
		Str(log.KeyUserID, userId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "updating shipping address").Logger()
	logger.Trace().Msg("updating shipping address")
	span.AddEvent("updating shipping address")
	user, err := svc.repository.UpdateShippingAddress(c, userId, address)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	span.AddEvent("updated shipping address")
	logger.Info().Msg("updated shipping address")

	return toResponse(user), nil
}
