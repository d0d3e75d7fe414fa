package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/velora/commerce/internal/common"
	"github.com/velora/commerce/internal/common/constants"
	commonErrors "github.com/velora/commerce/internal/common/errors"
	"github.com/velora/commerce/internal/common/response"
	"github.com/velora/commerce/internal/log"
	inOtel "github.com/velora/commerce/internal/otel"
	"github.com/velora/commerce/user/internal/service"
	"github.com/velora/commerce/user/pkg/request"
)

type UserController struct {
	service *service.UserService
}

func AttachUserController(
	public *mux.Router,
	protected *mux.Router,
	service *service.UserService,
) {
	controller := UserController{service: service}

	public.HandleFunc("/users/signup", controller.Signup).Methods(http.MethodPost)
	public.HandleFunc("/users/login", controller.Login).Methods(http.MethodPost)
	public.HandleFunc("/users/logout", controller.Logout).Methods(http.MethodPost)
	public.HandleFunc("/users/verifyemail", controller.VerifyEmail).Methods(http.MethodPost)
	public.HandleFunc("/users/forgotpassword", controller.ForgotPassword).
		Methods(http.MethodPost)
	public.HandleFunc("/users/resetpassword", controller.ResetPassword).
		Methods(http.MethodPost)

	protected.HandleFunc("/users/me", controller.Me).Methods(http.MethodGet)
	protected.HandleFunc("/users/shipping-address", controller.UpdateShippingAddress).
		Methods(http.MethodPut)
}

func (ctrl UserController) Signup(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "UserController Signup")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "UserController Signup").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	span.AddEvent("decoding request body")
	reqBody := request.Signup{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, commonErrors.NewValidationError("invalid request body"))
		return
	}
	span.AddEvent("decoded request body")
	logger.Trace().Msg("decoded request body")
	logger = logger.With().Str(log.KeyEmail, reqBody.Email).Logger()

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Trace().Msg("validating request body")
	span.AddEvent("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(
			c,
			w,
			commonErrors.NewValidationError(
				"username, email and password of at least 6 characters are required",
			),
		)
		return
	}
	span.AddEvent("validated request body")
	logger.Trace().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "signing up user").Logger()
	logger.Trace().Msg("signing up user")
	span.AddEvent("signing up user")
	c = logger.WithContext(c)
	user, err := ctrl.service.Signup(c, reqBody)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("signed up user")
	logger.Info().Str(log.KeyUserID, user.ID.String()).Msg("signed up user")

	response.WriteJsonResponse(c, w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"user":    user,
	})
}

func (ctrl UserController) Login(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "UserController Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "UserController Login").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	span.AddEvent("decoding request body")
	reqBody := request.Login{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, commonErrors.NewValidationError("invalid request body"))
		return
	}
	span.AddEvent("decoded request body")
	logger.Trace().Msg("decoded request body")
	logger = logger.With().Str(log.KeyEmail, reqBody.Email).Logger()

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Trace().Msg("validating request body")
	span.AddEvent("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(
			c,
			w,
			commonErrors.NewValidationError("email and password are required"),
		)
		return
	}
	span.AddEvent("validated request body")
	logger.Trace().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "logging in user").Logger()
	logger.Trace().Msg("logging in user")
	span.AddEvent("logging in user")
	c = logger.WithContext(c)
	token, user, err := ctrl.service.Login(c, reqBody)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("logged in user")
	logger.Info().Str(log.KeyUserID, user.ID.String()).Msg("logged in user")

	http.SetCookie(w, &http.Cookie{
		Name:     constants.CookieToken,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user,
	})
}

func (ctrl UserController) Logout(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "UserController Logout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "UserController Logout").
		Logger()
	logger.Info().Msg("logging out user")
	span.AddEvent("logging out user")

	http.SetCookie(w, &http.Cookie{
		Name:     constants.CookieToken,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

func (ctrl UserController) Me(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "UserController Me")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "UserController Me").
		Logger()

	userId, err := common.UserIdFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "finding user").Logger()
	logger.Trace().Msg("finding user")
	span.AddEvent("finding user")
	c = logger.WithContext(c)
	user, err := ctrl.service.FindUserById(c, userId)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("found user")
	logger.Info().Msg("found user")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user,
	})
}

func (ctrl UserController) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "UserController VerifyEmail")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "UserController VerifyEmail").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	span.AddEvent("decoding request body")
	reqBody := request.VerifyEmail{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, commonErrors.NewValidationError("invalid request body"))
		return
	}
	span.AddEvent("decoded request body")
	logger.Trace().Msg("decoded request body")

	if reqBody.Token == "" {
		err := commonErrors.NewValidationError("token is required")
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "verifying email").Logger()
	logger.Trace().Msg("verifying email")
	span.AddEvent("verifying email")
	c = logger.WithContext(c)
	user, err := ctrl.service.VerifyEmail(c, reqBody.Token)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("verified email")
	logger.Info().Str(log.KeyUserID, user.ID.String()).Msg("verified email")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user,
	})
}

func (ctrl UserController) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "UserController ForgotPassword")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "UserController ForgotPassword").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	span.AddEvent("decoding request body")
	reqBody := request.ForgotPassword{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, commonErrors.NewValidationError("invalid request body"))
		return
	}
	span.AddEvent("decoded request body")
	logger.Trace().Msg("decoded request body")
	logger = logger.With().Str(log.KeyEmail, reqBody.Email).Logger()

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Trace().Msg("validating request body")
	span.AddEvent("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, commonErrors.NewValidationError("email is required"))
		return
	}
	span.AddEvent("validated request body")
	logger.Trace().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "requesting password reset").Logger()
	logger.Trace().Msg("requesting password reset")
	span.AddEvent("requesting password reset")
	c = logger.WithContext(c)
	if err := ctrl.service.ForgotPassword(c, reqBody.Email); err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("requested password reset")
	logger.Info().Msg("requested password reset")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

func (ctrl UserController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "UserController ResetPassword")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "UserController ResetPassword").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	span.AddEvent("decoding request body")
	reqBody := request.ResetPassword{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, commonErrors.NewValidationError("invalid request body"))
		return
	}
	span.AddEvent("decoded request body")
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Trace().Msg("validating request body")
	span.AddEvent("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(
			c,
			w,
			commonErrors.NewValidationError(
				"token and password of at least 6 characters are required",
			),
		)
		return
	}
	span.AddEvent("validated request body")
	logger.Trace().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "resetting password").Logger()
	logger.Trace().Msg("resetting password")
	span.AddEvent("resetting password")
	c = logger.WithContext(c)
	user, err := ctrl.service.ResetPassword(c, reqBody)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("reset password")
	logger.Info().Str(log.KeyUserID, user.ID.String()).Msg("reset password")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user,
	})
}

func (ctrl UserController) UpdateShippingAddress(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "UserController UpdateShippingAddress")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "UserController UpdateShippingAddress").
		Logger()

	userId, err := common.UserIdFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	span.AddEvent("decoding request body")
	reqBody := request.ShippingAddress{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, commonErrors.NewValidationError("invalid request body"))
		return
	}
	span.AddEvent("decoded request body")
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Trace().Msg("validating request body")
	span.AddEvent("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(
			c,
			w,
			commonErrors.NewValidationError(
				"fullName, address, city, postalCode, country and phone are required",
			),
		)
		return
	}
	span.AddEvent("validated request body")
	logger.Trace().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "updating shipping address").Logger()
	logger.Trace().Msg("updating shipping address")
	span.AddEvent("updating shipping address")
	c = logger.WithContext(c)
	user, err := ctrl.service.UpdateShippingAddress(c, userId, reqBody)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("updated shipping address")
	logger.Info().Msg("updated shipping address")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user,
	})
}
