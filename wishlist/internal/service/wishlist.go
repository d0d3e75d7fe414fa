package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	commonErrors "github.com/velora/commerce/internal/common/errors"
	"github.com/velora/commerce/internal/log"
	inOtel "github.com/velora/commerce/internal/otel"
	inRepository "github.com/velora/commerce/internal/repository"
	"github.com/velora/commerce/wishlist/internal/repository"
	"github.com/velora/commerce/wishlist/pkg/response"
)

type ProductFinder interface {
	FindProductById(c context.Context, id uuid.UUID) (inRepository.Product, error)
}

type WishlistService struct {
	repository repository.WishlistRepository
	products   ProductFinder
}

func NewWishlistService(
	repo repository.WishlistRepository,
	products ProductFinder,
) WishlistService {
	return WishlistService{repository: repo, products: products}
}

func toResponse(wishlist repository.Wishlist) response.Wishlist {
	items := make([]response.WishlistItem, 0, len(wishlist.Items))
	for _, item := range wishlist.Items {
		items = append(items, response.WishlistItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price,
			IsOnSale:  item.IsOnSale,
			Stock:     item.Stock,
			AddedAt:   item.AddedAt,
		})
	}
	return response.Wishlist{ID: wishlist.ID, UserID: wishlist.UserID, Items: items}
}

func (svc WishlistService) FindWishlist(
	c context.Context,
	userId uuid.UUID,
) (response.Wishlist, error) {
	c, span := inOtel.Tracer.Start(c, "WishlistService FindWishlist")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "WishlistService FindWishlist").
		Str(log.KeyUserID, userId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding wishlist in database").Logger()
	logger.Trace().Msg("finding wishlist in database")
	span.AddEvent("finding wishlist in database")
	wishlist, err := svc.repository.FindWishlistByUserId(c, userId)
	if err != nil {
		if errors.Is(err, commonErrors.ErrWishlistNotFound) {
			span.AddEvent("wishlist not found, returning empty wishlist")
			logger.Info().Msg("wishlist not found, returning empty wishlist")
			return response.EmptyWishlist(userId), nil
		}
		err = fmt.Errorf("failed finding wishlist in database with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Wishlist{}, err
	}
	span.AddEvent("found wishlist in database")
	logger.Info().Int("count", len(wishlist.Items)).Msg("found wishlist in database")

	return toResponse(wishlist), nil
}

func (svc WishlistService) AddItem(
	c context.Context,
	userId, productId uuid.UUID,
) (response.Wishlist, error) {
	c, span := inOtel.Tracer.Start(c, "WishlistService AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "WishlistService AddItem").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, productId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product in database").Logger()
	logger.Trace().Msg("finding product in database")
	span.AddEvent("finding product in database")
	if _, err := svc.products.FindProductById(c, productId); err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Wishlist{}, err
	}
	span.AddEvent("found product in database")

	logger = logger.With().Str(log.KeyProcess, "adding item to wishlist").Logger()
	logger.Trace().Msg("adding item to wishlist")
	span.AddEvent("adding item to wishlist")
	wishlist, err := svc.repository.AddItem(c, userId, productId)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Wishlist{}, err
	}
	span.AddEvent("added item to wishlist")
	logger.Info().Msg("added item to wishlist")

	return toResponse(wishlist), nil
}

func (svc WishlistService) RemoveItem(
	c context.Context,
	userId, productId uuid.UUID,
) (response.Wishlist, error) {
	c, span := inOtel.Tracer.Start(c, "WishlistService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "WishlistService RemoveItem").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, productId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "removing item from wishlist").Logger()
	logger.Trace().Msg("removing item from wishlist")
	span.AddEvent("removing item from wishlist")
	wishlist, err := svc.repository.RemoveItem(c, userId, productId)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Wishlist{}, err
	}
	span.AddEvent("removed item from wishlist")
	logger.Info().Msg("removed item from wishlist")

	return toResponse(wishlist), nil
}

func (svc WishlistService) ClearWishlist(
	c context.Context,
	userId uuid.UUID,
) (response.Wishlist, error) {
	c, span := inOtel.Tracer.Start(c, "WishlistService ClearWishlist")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "WishlistService ClearWishlist").
		Str(log.KeyUserID, userId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "clearing wishlist").Logger()
	logger.Trace().Msg("clearing wishlist")
	span.AddEvent("clearing wishlist")
	if err := svc.repository.Clear(c, userId); err != nil {
		err = fmt.Errorf("failed clearing wishlist with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Wishlist{}, err
	}
	span.AddEvent("cleared wishlist")
	logger.Info().Msg("cleared wishlist")

	return response.EmptyWishlist(userId), nil
}

func (svc WishlistService) CheckItem(
	c context.Context,
	userId, productId uuid.UUID,
) (bool, error) {
	c, span := inOtel.Tracer.Start(c, "WishlistService CheckItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "WishlistService CheckItem").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, productId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "checking wishlist item").Logger()
	logger.Trace().Msg("checking wishlist item")
	span.AddEvent("checking wishlist item")
	inWishlist, err := svc.repository.HasItem(c, userId, productId)
	if err != nil {
		err = fmt.Errorf("failed checking wishlist item with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return false, err
	}
	span.AddEvent("checked wishlist item")
	logger.Info().Bool("in-wishlist", inWishlist).Msg("checked wishlist item")

	return inWishlist, nil
}
