package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/velora/commerce/internal/common"
	commonErrors "github.com/velora/commerce/internal/common/errors"
	"github.com/velora/commerce/internal/common/response"
	"github.com/velora/commerce/internal/log"
	inOtel "github.com/velora/commerce/internal/otel"
	"github.com/velora/commerce/order/internal/service"
	"github.com/velora/commerce/order/pkg/request"
)

type OrderController struct {
	service *service.OrderService
}

func AttachOrderController(protected *mux.Router, service *service.OrderService) {
	controller := OrderController{service: service}

	protected.HandleFunc("/orders", controller.FindOrders).Methods(http.MethodGet)
	protected.HandleFunc("/orders", controller.CreateOrder).Methods(http.MethodPost)
	protected.HandleFunc("/orders/{orderId}", controller.FindOrderById).Methods(http.MethodGet)
	protected.HandleFunc("/orders/{orderId}", controller.UpdateOrder).Methods(http.MethodPut)
}

func (ctrl OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "OrderController CreateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "OrderController CreateOrder").
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
	reqBody := request.CreateOrder{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, commonErrors.NewValidationError("invalid request body"))
		return
	}
	span.AddEvent("decoded request body")
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "creating order").Logger()
	logger.Trace().Msg("creating order")
	span.AddEvent("creating order")
	c = logger.WithContext(c)
	order, err := ctrl.service.CreateOrder(c, userId, reqBody)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("created order")
	logger.Info().Str(log.KeyOrderID, order.ID.String()).Msg("created order")

	response.WriteJsonResponse(c, w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"order":   order,
	})
}

func (ctrl OrderController) FindOrders(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "OrderController FindOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "OrderController FindOrders").
		Logger()

	userId, err := common.UserIdFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "finding orders").Logger()
	logger.Trace().Msg("finding orders")
	span.AddEvent("finding orders")
	c = logger.WithContext(c)
	orders, err := ctrl.service.FindOrders(c, userId)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("found orders")
	logger.Info().Int("count", len(orders)).Msg("found orders")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"success": true,
		"orders":  orders,
	})
}

func (ctrl OrderController) FindOrderById(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "OrderController FindOrderById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "OrderController FindOrderById").
		Logger()

	userId, err := common.UserIdFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "getting pathValue orderId").Logger()
	logger.Trace().Msg("getting pathValue orderId")
	orderId, err := uuid.Parse(mux.Vars(r)["orderId"])
	if err != nil {
		err = commonErrors.NewValidationError("invalid order id")
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyOrderID, orderId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "finding order").Logger()
	logger.Trace().Msg("finding order")
	span.AddEvent("finding order")
	c = logger.WithContext(c)
	order, err := ctrl.service.FindOrderById(c, orderId, userId)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("found order")
	logger.Info().Msg("found order")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"success": true,
		"order":   order,
	})
}

func (ctrl OrderController) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "OrderController UpdateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "OrderController UpdateOrder").
		Logger()

	userId, err := common.UserIdFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "getting pathValue orderId").Logger()
	logger.Trace().Msg("getting pathValue orderId")
	orderId, err := uuid.Parse(mux.Vars(r)["orderId"])
	if err != nil {
		err = commonErrors.NewValidationError("invalid order id")
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyOrderID, orderId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	span.AddEvent("decoding request body")
	reqBody := request.UpdateOrder{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, commonErrors.NewValidationError("invalid request body"))
		return
	}
	span.AddEvent("decoded request body")
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "updating order").Logger()
	logger.Trace().Msg("updating order")
	span.AddEvent("updating order")
	c = logger.WithContext(c)
	order, err := ctrl.service.UpdateOrder(c, orderId, userId, reqBody)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("updated order")
	logger.Info().Str(log.KeyOrderStatus, order.Status).Msg("updated order")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"success": true,
		"order":   order,
	})
}
