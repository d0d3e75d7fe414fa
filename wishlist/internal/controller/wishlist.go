package controller

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/velora/commerce/internal/common"
	commonErrors "github.com/velora/commerce/internal/common/errors"
	"github.com/velora/commerce/internal/common/response"
	"github.com/velora/commerce/internal/log"
	inOtel "github.com/velora/commerce/internal/otel"
	"github.com/velora/commerce/wishlist/internal/service"
)

type wishlistItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
}

type WishlistController struct {
	service *service.WishlistService
}

func AttachWishlistController(protected *mux.Router, service *service.WishlistService) {
	controller := WishlistController{service: service}

	protected.HandleFunc("/wishlist", controller.FindWishlist).Methods(http.MethodGet)
	protected.HandleFunc("/wishlist", controller.AddItem).Methods(http.MethodPost)
	protected.HandleFunc("/wishlist", controller.RemoveItem).Methods(http.MethodDelete)
	protected.HandleFunc("/wishlist/check", controller.CheckItem).Methods(http.MethodGet)
}

func (ctrl WishlistController) FindWishlist(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "WishlistController FindWishlist")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "WishlistController FindWishlist").
		Logger()

	userId, err := common.UserIdFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "finding wishlist").Logger()
	logger.Trace().Msg("finding wishlist")
	span.AddEvent("finding wishlist")
	c = logger.WithContext(c)
	wishlist, err := ctrl.service.FindWishlist(c, userId)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("found wishlist")
	logger.Info().Msg("found wishlist")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"wishlist": wishlist,
	})
}

func (ctrl WishlistController) AddItem(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "WishlistController AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "WishlistController AddItem").
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
	reqBody := wishlistItemRequest{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil || reqBody.ProductID == uuid.Nil {
		err = commonErrors.NewValidationError("productId is required")
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("decoded request body")
	logger = logger.With().Str(log.KeyProductID, reqBody.ProductID.String()).Logger()
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "adding item to wishlist").Logger()
	logger.Trace().Msg("adding item to wishlist")
	span.AddEvent("adding item to wishlist")
	c = logger.WithContext(c)
	wishlist, err := ctrl.service.AddItem(c, userId, reqBody.ProductID)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("added item to wishlist")
	logger.Info().Msg("added item to wishlist")

	response.WriteJsonResponse(c, w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"wishlist": wishlist,
	})
}

func (ctrl WishlistController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "WishlistController RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "WishlistController RemoveItem").
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
		logger = logger.With().Str(log.KeyProcess, "clearing wishlist").Logger()
		logger.Trace().Msg("clearing wishlist")
		span.AddEvent("clearing wishlist")
		c = logger.WithContext(c)
		wishlist, err := ctrl.service.ClearWishlist(c, userId)
		if err != nil {
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			response.WriteErrorResponse(c, w, err)
			return
		}
		span.AddEvent("cleared wishlist")
		logger.Info().Msg("cleared wishlist")

		response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"wishlist": wishlist,
		})
		return
	}

	productId, err := uuid.Parse(r.URL.Query().Get("productId"))
	if err != nil {
		err = commonErrors.NewValidationError("invalid product id")
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyProductID, productId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "removing item from wishlist").Logger()
	logger.Trace().Msg("removing item from wishlist")
	span.AddEvent("removing item from wishlist")
	c = logger.WithContext(c)
	wishlist, err := ctrl.service.RemoveItem(c, userId, productId)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("removed item from wishlist")
	logger.Info().Msg("removed item from wishlist")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"wishlist": wishlist,
	})
}

func (ctrl WishlistController) CheckItem(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "WishlistController CheckItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "WishlistController CheckItem").
		Logger()

	userId, err := common.UserIdFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()

	productId, err := uuid.Parse(r.URL.Query().Get("productId"))
	if err != nil {
		err = commonErrors.NewValidationError("invalid product id")
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyProductID, productId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "checking wishlist item").Logger()
	logger.Trace().Msg("checking wishlist item")
	span.AddEvent("checking wishlist item")
	c = logger.WithContext(c)
	inWishlist, err := ctrl.service.CheckItem(c, userId, productId)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("checked wishlist item")
	logger.Info().Msg("checked wishlist item")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"inWishlist": inWishlist,
	})
}
