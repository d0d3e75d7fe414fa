package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/velora/commerce/cart/internal/repository"
	"github.com/velora/commerce/cart/internal/service"
	"github.com/velora/commerce/cart/pkg/request"
	"github.com/velora/commerce/internal/common"
	commonErrors "github.com/velora/commerce/internal/common/errors"
	"github.com/velora/commerce/internal/common/response"
	"github.com/velora/commerce/internal/log"
	inOtel "github.com/velora/commerce/internal/otel"
)

type CartController struct {
	service *service.CartService
}

func AttachCartController(protected *mux.Router, service *service.CartService) {
	controller := CartController{service: service}

	protected.HandleFunc("/cart", controller.FindCart).Methods(http.MethodGet)
	protected.HandleFunc("/cart", controller.AddItem).Methods(http.MethodPost)
	protected.HandleFunc("/cart", controller.UpdateItem).Methods(http.MethodPut)
	protected.HandleFunc("/cart", controller.RemoveItem).Methods(http.MethodDelete)
	protected.HandleFunc("/cart/check", controller.CheckItem).Methods(http.MethodGet)
}

func (ctrl CartController) FindCart(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "CartController FindCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartController FindCart").
		Logger()

	userId, err := common.UserIdFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "finding cart").Logger()
	logger.Trace().Msg("finding cart")
	span.AddEvent("finding cart")
	c = logger.WithContext(c)
	cart, err := ctrl.service.FindCart(c, userId)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("found cart")
	logger.Info().Msg("found cart")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"success": true,
		"cart":    cart,
	})
}

func (ctrl CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "CartController AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartController AddItem").
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
	reqBody := request.AddCartItem{}
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
			commonErrors.NewValidationError("productId, quantity, size and color are required"),
		)
		return
	}
	span.AddEvent("validated request body")
	logger.Trace().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "adding item to cart").Logger()
	logger.Trace().Msg("adding item to cart")
	span.AddEvent("adding item to cart")
	c = logger.WithContext(c)
	cart, err := ctrl.service.AddItem(c, userId, reqBody)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("added item to cart")
	logger.Info().Msg("added item to cart")

	response.WriteJsonResponse(c, w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"cart":    cart,
	})
}

func (ctrl CartController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "CartController UpdateItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartController UpdateItem").
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
	reqBody := request.UpdateCartItem{}
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
			commonErrors.NewValidationError("quantity must be at least 1"),
		)
		return
	}
	span.AddEvent("validated request body")
	logger.Trace().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "updating cart item").Logger()
	logger.Trace().Msg("updating cart item")
	span.AddEvent("updating cart item")
	c = logger.WithContext(c)
	cart, err := ctrl.service.UpdateItem(c, userId, reqBody)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("updated cart item")
	logger.Info().Msg("updated cart item")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"success": true,
		"cart":    cart,
	})
}

func (ctrl CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "CartController RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartController RemoveItem").
		Logger()

	userId, err := common.UserIdFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()

	if clearAll, _ := strconv.ParseBool(r.URL.Query().Get("clearAll")); clearAll {
		logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
		logger.Trace().Msg("clearing cart")
		span.AddEvent("clearing cart")
		c = logger.WithContext(c)
		cart, err := ctrl.service.ClearCart(c, userId)
		if err != nil {
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			response.WriteErrorResponse(c, w, err)
			return
		}
		span.AddEvent("cleared cart")
		logger.Info().Msg("cleared cart")

		response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
			"success": true,
			"cart":    cart,
		})
		return
	}

	query := r.URL.Query()
	productId, err := uuid.Parse(query.Get("productId"))
	if err != nil {
		err = commonErrors.NewValidationError("invalid product id")
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	reqBody := request.RemoveCartItem{
		ProductID: productId,
		Size:      query.Get("size"),
		Color:     query.Get("color"),
	}
	if reqBody.Size == "" || reqBody.Color == "" {
		err = commonErrors.NewValidationError("size and color are required")
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "removing cart item").Logger()
	logger.Trace().Msg("removing cart item")
	span.AddEvent("removing cart item")
	c = logger.WithContext(c)
	cart, err := ctrl.service.RemoveItem(c, userId, reqBody)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("removed cart item")
	logger.Info().Msg("removed cart item")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"success": true,
		"cart":    cart,
	})
}

func (ctrl CartController) CheckItem(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "CartController CheckItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartController CheckItem").
		Logger()

	userId, err := common.UserIdFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()

	query := r.URL.Query()
	productId, err := uuid.Parse(query.Get("productId"))
	if err != nil {
		err = commonErrors.NewValidationError("invalid product id")
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	key := repository.ItemKey{
		ProductID: productId,
		Size:      query.Get("size"),
		Color:     query.Get("color"),
	}
	if key.Size == "" || key.Color == "" {
		err = commonErrors.NewValidationError("size and color are required")
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "checking cart item").Logger()
	logger.Trace().Msg("checking cart item")
	span.AddEvent("checking cart item")
	c = logger.WithContext(c)
	inCart, err := ctrl.service.CheckItem(c, userId, key)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("checked cart item")
	logger.Info().Msg("checked cart item")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"success": true,
		"inCart":  inCart,
	})
}
