package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	commonErrors "github.com/velora/commerce/internal/common/errors"
	"github.com/velora/commerce/internal/events"
	"github.com/velora/commerce/internal/log"
	inOtel "github.com/velora/commerce/internal/otel"
	inRepository "github.com/velora/commerce/internal/repository"
	"github.com/velora/commerce/order/internal/repository"
	"github.com/velora/commerce/order/pkg/request"
	"github.com/velora/commerce/order/pkg/response"
)

var totalDriftTolerance = decimal.RequireFromString("0.01")

const defaultCountry = "Pakistan"

type ProductFinder interface {
	FindProductById(c context.Context, id uuid.UUID) (inRepository.Product, error)
}

type OrderPlacedPublisher interface {
	PublishOrderPlaced(c context.Context, payload events.OrderPlacedPayload) error
}

type OrderService struct {
	repository repository.OrderRepository
	products   ProductFinder
	publisher  OrderPlacedPublisher
	cache      *redis.Client
}

func NewOrderService(
	repo repository.OrderRepository,
	products ProductFinder,
	publisher OrderPlacedPublisher,
	cache *redis.Client,
) OrderService {
	return OrderService{repository: repo, products: products, publisher: publisher, cache: cache}
}

func toResponse(order repository.Order) response.Order {
	items := make([]response.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, response.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
		})
	}
	return response.Order{
		ID:              order.ID,
		UserID:          order.UserID,
		Items:           items,
		TotalAmount:     order.TotalAmount,
		Status:          order.Status,
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   order.PaymentMethod,
		Notes:           order.Notes,
		OrderDate:       order.OrderDate,
		DeliveryDate:    order.DeliveryDate,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func validateShippingAddress(address request.ShippingAddress) error {
	addressFields := []struct {
		name  string
		value string
	}{
		{"fullName", address.FullName},
		{"phone", address.Phone},
		{"address", address.Address},
		{"city", address.City},
		{"postalCode", address.PostalCode},
	}
	for _, field := range addressFields {
		if field.value == "" {
			return commonErrors.NewValidationError(
				fmt.Sprintf("%s is required in shipping address", field.name),
			)
		}
	}
	return nil
}

func validateCreateOrder(param request.CreateOrder) error {
	if len(param.OrderItems) == 0 {
		return commonErrors.NewValidationError("Order must contain at least one item")
	}
	for _, item := range param.OrderItems {
		if item.ProductID == uuid.Nil {
			return commonErrors.NewValidationError("Order item productId is required")
		}
		if item.Quantity < 1 {
			return commonErrors.NewValidationError("Order item quantity must be at least 1")
		}
		if item.Size == "" || item.Color == "" {
			return commonErrors.NewValidationError("Order item size and color are required")
		}
	}
	if err := validateShippingAddress(param.ShippingAddress); err != nil {
		return err
	}
	if param.PaymentMethod == "" {
		return commonErrors.NewValidationError("Payment method is required")
	}
	if param.TotalAmount.Sign() <= 0 {
		return commonErrors.NewValidationError("Order totalAmount is required")
	}
	return nil
}

func (svc OrderService) CreateOrder(
	c context.Context,
	userId uuid.UUID,
	param request.CreateOrder,
) (response.Order, error) {
	c, span := inOtel.Tracer.Start(c, "OrderService CreateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "OrderService CreateOrder").
		Str(log.KeyUserID, userId.String()).
		Int(log.KeyOrderItems, len(param.OrderItems)).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating order").Logger()
	logger.Trace().Msg("validating order")
	span.AddEvent("validating order")
	if err := validateCreateOrder(param); err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	if param.ShippingAddress.Country == "" {
		param.ShippingAddress.Country = defaultCountry
	}
	span.AddEvent("validated order")
	logger.Info().Msg("validated order")

	// prices and totals come from the catalog, never from the request
	logger = logger.With().Str(log.KeyProcess, "pricing order items").Logger()
	logger.Trace().Msg("pricing order items")
	span.AddEvent("pricing order items")
	items := make([]repository.OrderItem, 0, len(param.OrderItems))
	total := decimal.Zero
	for _, item := range param.OrderItems {
		product, err := svc.products.FindProductById(c, item.ProductID)
		if err != nil {
			commonErrors.HandleError(err, span)
			logger.Error().
				Err(err).
				Str(log.KeyProductID, item.ProductID.String()).
				Msg(err.Error())
			return response.Order{}, err
		}
		if item.Quantity > product.Stock {
			err = commonErrors.ErrInsufficientStock
			commonErrors.HandleError(err, span)
			logger.Error().
				Err(err).
				Str(log.KeyProductID, item.ProductID.String()).
				Int32("stock", product.Stock).
				Msg(err.Error())
			return response.Order{}, err
		}
		price := product.EffectivePrice()
		items = append(items, repository.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.Image,
			Price:     price,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
		})
		total = total.Add(price.Mul(decimal.NewFromInt32(item.Quantity)))
	}
	span.AddEvent("priced order items")
	logger.Info().Str(log.KeyCartTotal, total.String()).Msg("priced order items")

	if total.Sub(param.TotalAmount).Abs().GreaterThan(totalDriftTolerance) {
		err := commonErrors.ErrTotalMismatch
		commonErrors.HandleError(err, span)
		logger.Error().
			Err(err).
			Str("claimed-total", param.TotalAmount.String()).
			Str("computed-total", total.String()).
			Msg(err.Error())
		return response.Order{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "creating order").Logger()
	logger.Trace().Msg("creating order")
	span.AddEvent("creating order")
	order, err := svc.repository.CreateOrder(c, repository.CreateOrderParams{
		UserID:          userId,
		Items:           items,
		TotalAmount:     total,
		ShippingAddress: param.ShippingAddress,
		PaymentMethod:   param.PaymentMethod,
		Notes:           param.Notes,
	})
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	span.AddEvent("created order")
	logger = logger.With().Str(log.KeyOrderID, order.ID.String()).Logger()
	logger.Info().Msg("created order")

	if err := svc.cache.Del(c, "carts:"+userId.String()).Err(); err != nil {
		logger.Info().Err(err).Msg("failed invalidating cart cache")
	}

	logger = logger.With().Str(log.KeyProcess, "publishing order placed event").Logger()
	logger.Trace().Msg("publishing order placed event")
	span.AddEvent("publishing order placed event")
	eventItems := make([]events.OrderPlacedItem, 0, len(order.Items))
	for _, item := range order.Items {
		eventItems = append(eventItems, events.OrderPlacedItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
		})
	}
	err = svc.publisher.PublishOrderPlaced(c, events.OrderPlacedPayload{
		OrderID:       order.ID,
		UserID:        order.UserID,
		Items:         eventItems,
		TotalAmount:   order.TotalAmount,
		PaymentMethod: order.PaymentMethod,
		OrderDate:     order.OrderDate,
	})
	if err != nil {
		// the order is already committed, a failed publish must not fail the request
		err = fmt.Errorf("failed publishing order placed event with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	} else {
		span.AddEvent("published order placed event")
		logger.Info().Msg("published order placed event")
	}

	return toResponse(order), nil
}

func (svc OrderService) FindOrders(
	c context.Context,
	userId uuid.UUID,
) ([]response.Order, error) {
	c, span := inOtel.Tracer.Start(c, "OrderService FindOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "OrderService FindOrders").
		Str(log.KeyUserID, userId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding orders in database").Logger()
	logger.Trace().Msg("finding orders in database")
	span.AddEvent("finding orders in database")
	orders, err := svc.repository.FindOrdersByUserId(c, userId)
	if err != nil {
		err = fmt.Errorf("failed finding orders in database with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	span.AddEvent("found orders in database")
	logger.Info().Int("count", len(orders)).Msg("found orders in database")

	responses := make([]response.Order, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, toResponse(order))
	}
	return responses, nil
}

func (svc OrderService) FindOrderById(
	c context.Context,
	orderId, userId uuid.UUID,
) (response.Order, error) {
	c, span := inOtel.Tracer.Start(c, "OrderService FindOrderById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "OrderService FindOrderById").
		Str(log.KeyOrderID, orderId.String()).
		Str(log.KeyUserID, userId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding order in database").Logger()
	logger.Trace().Msg("finding order in database")
	span.AddEvent("finding order in database")
	order, err := svc.repository.FindOrderByIdAndUserId(c, orderId, userId)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	span.AddEvent("found order in database")
	logger.Info().Msg("found order in database")

	return toResponse(order), nil
}

func (svc OrderService) UpdateOrder(
	c context.Context,
	orderId, userId uuid.UUID,
	param request.UpdateOrder,
) (response.Order, error) {
	c, span := inOtel.Tracer.Start(c, "OrderService UpdateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "OrderService UpdateOrder").
		Str(log.KeyOrderID, orderId.String()).
		Str(log.KeyUserID, userId.String()).
		Logger()

	if param.Status != nil && !repository.ValidStatus(*param.Status) {
		err := commonErrors.NewValidationError("Invalid order status")
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Str(log.KeyOrderStatus, *param.Status).Msg(err.Error())
		return response.Order{}, err
	}
	if param.ShippingAddress != nil {
		if err := validateShippingAddress(*param.ShippingAddress); err != nil {
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Order{}, err
		}
	}

	logger = logger.With().Str(log.KeyProcess, "updating order in database").Logger()
	logger.Trace().Msg("updating order in database")
	span.AddEvent("updating order in database")
	order, err := svc.repository.UpdateOrder(c, orderId, userId, repository.UpdateOrderParams{
		Status:          param.Status,
		Notes:           param.Notes,
		DeliveryDate:    param.DeliveryDate,
		ShippingAddress: param.ShippingAddress,
	})
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	span.AddEvent("updated order in database")
	logger = logger.With().Str(log.KeyOrderStatus, order.Status).Logger()
	logger.Info().Msg("updated order in database")

	return toResponse(order), nil
}
