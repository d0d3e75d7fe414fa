package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/velora/commerce/cart/internal/repository"
	"github.com/velora/commerce/cart/pkg/request"
	"github.com/velora/commerce/cart/pkg/response"
	commonErrors "github.com/velora/commerce/internal/common/errors"
	"github.com/velora/commerce/internal/log"
	inOtel "github.com/velora/commerce/internal/otel"
	inRepository "github.com/velora/commerce/internal/repository"
)

const keyCarts = "carts:"

// ProductFinder is the slice of the product catalog the cart needs for
// existence, stock and price checks.
type ProductFinder interface {
	FindProductById(c context.Context, id uuid.UUID) (inRepository.Product, error)
}

type CartService struct {
	repository repository.CartRepository
	products   ProductFinder
	cache      *redis.Client
}

func NewCartService(
	repo repository.CartRepository,
	products ProductFinder,
	cache *redis.Client,
) CartService {
	return CartService{repository: repo, products: products, cache: cache}
}

func toResponse(cart repository.Cart) response.Cart {
	items := make([]response.CartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, response.CartItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
			Stock:     item.Stock,
		})
	}
	return response.Cart{
		ID:        cart.ID,
		UserID:    cart.UserID,
		Items:     items,
		Total:     cart.Total,
		UpdatedAt: cart.UpdatedAt,
	}
}

func (svc CartService) invalidateCache(c context.Context, userId uuid.UUID) {
	logger := zerolog.Ctx(c)
	if err := svc.cache.Del(c, keyCarts+userId.String()).Err(); err != nil {
		logger.Info().Err(err).Msg("failed invalidating cart cache")
	}
}

func (svc CartService) FindCart(c context.Context, userId uuid.UUID) (response.Cart, error) {
	c, span := inOtel.Tracer.Start(c, "CartService FindCart")
	defer span.End()

	cacheKey := keyCarts + userId.String()
	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartService FindCart").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding cart in cache").Logger()
	logger.Trace().Msg("finding cart in cache")
	jsonCache, err := svc.cache.Get(c, cacheKey).Result()
	if err == nil && jsonCache != "" {
		var cart response.Cart
		if err := json.Unmarshal([]byte(jsonCache), &cart); err == nil {
			span.AddEvent("found cart in cache")
			logger.Info().Msg("found cart in cache")
			return cart, nil
		}
		logger.Info().Msg("failed unmarshalling cached cart, falling back to database")
	}

	logger = logger.With().Str(log.KeyProcess, "finding cart in database").Logger()
	logger.Trace().Msg("finding cart in database")
	span.AddEvent("finding cart in database")
	cart, err := svc.repository.FindCartByUserId(c, userId)
	if err != nil {
		if errors.Is(err, commonErrors.ErrCartNotFound) {
			span.AddEvent("cart not found, returning empty cart")
			logger.Info().Msg("cart not found, returning empty cart")
			return response.EmptyCart(userId), nil
		}
		err = fmt.Errorf("failed finding cart in database with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	span.AddEvent("found cart in database")
	logger = logger.With().Int(log.KeyCartItems, len(cart.Items)).Logger()
	logger.Info().Msg("found cart in database")

	resp := toResponse(cart)
	if jsonCart, err := json.Marshal(resp); err == nil {
		if err := svc.cache.Set(c, cacheKey, jsonCart, 0).Err(); err != nil {
			logger.Info().Err(err).Msg("failed inserting cart to cache")
		}
	}
	return resp, nil
}

func (svc CartService) AddItem(
	c context.Context,
	userId uuid.UUID,
	param request.AddCartItem,
) (response.Cart, error) {
	c, span := inOtel.Tracer.Start(c, "CartService AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartService AddItem").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, param.ProductID.String()).
		Str(log.KeySize, param.Size).
		Str(log.KeyColor, param.Color).
		Int32(log.KeyQuantity, param.Quantity).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product in database").Logger()
	logger.Trace().Msg("finding product in database")
	span.AddEvent("finding product in database")
	product, err := svc.products.FindProductById(c, param.ProductID)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	span.AddEvent("found product in database")
	logger.Info().Msg("found product in database")

	if param.Quantity > product.Stock {
		err = commonErrors.ErrInsufficientStock
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Int32("stock", product.Stock).Msg(err.Error())
		return response.Cart{}, err
	}

	// the unit price is frozen at add time, later catalog changes do not
	// reprice items already in the cart
	logger = logger.With().Str(log.KeyProcess, "adding item to cart").Logger()
	logger.Trace().Msg("adding item to cart")
	span.AddEvent("adding item to cart")
	cart, err := svc.repository.AddItem(c, userId, repository.AddItemParams{
		ProductID: param.ProductID,
		Price:     product.EffectivePrice(),
		Quantity:  param.Quantity,
		Size:      param.Size,
		Color:     param.Color,
	})
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	span.AddEvent("added item to cart")
	logger.Info().Msg("added item to cart")

	svc.invalidateCache(c, userId)
	return toResponse(cart), nil
}

func (svc CartService) UpdateItem(
	c context.Context,
	userId uuid.UUID,
	param request.UpdateCartItem,
) (response.Cart, error) {
	c, span := inOtel.Tracer.Start(c, "CartService UpdateItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartService UpdateItem").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, param.ProductID.String()).
		Str(log.KeySize, param.Size).
		Str(log.KeyColor, param.Color).
		Int32(log.KeyQuantity, param.Quantity).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product in database").Logger()
	logger.Trace().Msg("finding product in database")
	span.AddEvent("finding product in database")
	product, err := svc.products.FindProductById(c, param.ProductID)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	span.AddEvent("found product in database")

	if param.Quantity > product.Stock {
		err = commonErrors.ErrInsufficientStock
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Int32("stock", product.Stock).Msg(err.Error())
		return response.Cart{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "updating cart item").Logger()
	logger.Trace().Msg("updating cart item")
	span.AddEvent("updating cart item")
	cart, err := svc.repository.UpdateItemQuantity(
		c,
		userId,
		repository.ItemKey{ProductID: param.ProductID, Size: param.Size, Color: param.Color},
		param.Quantity,
	)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	span.AddEvent("updated cart item")
	logger.Info().Msg("updated cart item")

	svc.invalidateCache(c, userId)
	return toResponse(cart), nil
}

func (svc CartService) RemoveItem(
	c context.Context,
	userId uuid.UUID,
	param request.RemoveCartItem,
) (response.Cart, error) {
	c, span := inOtel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartService RemoveItem").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, param.ProductID.String()).
		Str(log.KeySize, param.Size).
		Str(log.KeyColor, param.Color).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "removing cart item").Logger()
	logger.Trace().Msg("removing cart item")
	span.AddEvent("removing cart item")
	cart, err := svc.repository.RemoveItem(
		c,
		userId,
		repository.ItemKey{ProductID: param.ProductID, Size: param.Size, Color: param.Color},
	)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	span.AddEvent("removed cart item")
	logger.Info().Msg("removed cart item")

	svc.invalidateCache(c, userId)
	return toResponse(cart), nil
}

func (svc CartService) ClearCart(c context.Context, userId uuid.UUID) (response.Cart, error) {
	c, span := inOtel.Tracer.Start(c, "CartService ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartService ClearCart").
		Str(log.KeyUserID, userId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Trace().Msg("clearing cart")
	span.AddEvent("clearing cart")
	if err := svc.repository.Clear(c, userId); err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	span.AddEvent("cleared cart")
	logger.Info().Msg("cleared cart")

	svc.invalidateCache(c, userId)
	return response.EmptyCart(userId), nil
}

func (svc CartService) CheckItem(
	c context.Context,
	userId uuid.UUID,
	key repository.ItemKey,
) (bool, error) {
	c, span := inOtel.Tracer.Start(c, "CartService CheckItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartService CheckItem").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, key.ProductID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "checking cart item").Logger()
	logger.Trace().Msg("checking cart item")
	span.AddEvent("checking cart item")
	inCart, err := svc.repository.HasItem(c, userId, key)
	if err != nil {
		err = fmt.Errorf("failed checking cart item with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return false, err
	}
	span.AddEvent("checked cart item")
	logger.Info().Bool("in-cart", inCart).Msg("checked cart item")

	return inCart, nil
}
