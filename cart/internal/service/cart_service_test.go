package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora/commerce/cart/internal/repository"
	"github.com/velora/commerce/cart/pkg/request"
	commonErrors "github.com/velora/commerce/internal/common/errors"
	inRepository "github.com/velora/commerce/internal/repository"
)

type mockCartRepository struct {
	findCartFn   func(c context.Context, userId uuid.UUID) (repository.Cart, error)
	addItemFn    func(c context.Context, userId uuid.UUID, param repository.AddItemParams) (repository.Cart, error)
	updateItemFn func(c context.Context, userId uuid.UUID, key repository.ItemKey, quantity int32) (repository.Cart, error)
	removeItemFn func(c context.Context, userId uuid.UUID, key repository.ItemKey) (repository.Cart, error)
	clearFn      func(c context.Context, userId uuid.UUID) error
	hasItemFn    func(c context.Context, userId uuid.UUID, key repository.ItemKey) (bool, error)
}

func (m *mockCartRepository) FindCartByUserId(
	c context.Context,
	userId uuid.UUID,
) (repository.Cart, error) {
	return m.findCartFn(c, userId)
}

func (m *mockCartRepository) AddItem(
	c context.Context,
	userId uuid.UUID,
	param repository.AddItemParams,
) (repository.Cart, error) {
	return m.addItemFn(c, userId, param)
}

func (m *mockCartRepository) UpdateItemQuantity(
	c context.Context,
	userId uuid.UUID,
	key repository.ItemKey,
	quantity int32,
) (repository.Cart, error) {
	return m.updateItemFn(c, userId, key, quantity)
}

func (m *mockCartRepository) RemoveItem(
	c context.Context,
	userId uuid.UUID,
	key repository.ItemKey,
) (repository.Cart, error) {
	return m.removeItemFn(c, userId, key)
}

func (m *mockCartRepository) Clear(c context.Context, userId uuid.UUID) error {
	return m.clearFn(c, userId)
}

func (m *mockCartRepository) HasItem(
	c context.Context,
	userId uuid.UUID,
	key repository.ItemKey,
) (bool, error) {
	return m.hasItemFn(c, userId, key)
}

type mockProductFinder struct {
	findFn func(c context.Context, id uuid.UUID) (inRepository.Product, error)
}

func (m *mockProductFinder) FindProductById(
	c context.Context,
	id uuid.UUID,
) (inRepository.Product, error) {
	return m.findFn(c, id)
}

// testCache dials a closed port so every cache operation fails fast and the
// service falls through to the repository.
func testCache() *redis.Client {
	return redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
}

func TestFindCartReturnsEmptyCartWhenMissing(t *testing.T) {
	userId := uuid.New()
	repo := &mockCartRepository{
		findCartFn: func(c context.Context, id uuid.UUID) (repository.Cart, error) {
			return repository.Cart{}, commonErrors.ErrCartNotFound
		},
	}
	svc := NewCartService(repo, &mockProductFinder{}, testCache())

	cart, err := svc.FindCart(context.Background(), userId)

	require.NoError(t, err)
	assert.Equal(t, userId, cart.UserID)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.Total.IsZero())
}

func TestAddItemFreezesEffectivePrice(t *testing.T) {
	userId := uuid.New()
	productId := uuid.New()
	var frozen decimal.Decimal
	repo := &mockCartRepository{
		addItemFn: func(c context.Context, id uuid.UUID, param repository.AddItemParams) (repository.Cart, error) {
			frozen = param.Price
			return repository.Cart{
				ID:     uuid.New(),
				UserID: id,
				Items: []repository.CartItem{{
					ProductID: param.ProductID,
					Price:     param.Price,
					Quantity:  param.Quantity,
					Size:      param.Size,
					Color:     param.Color,
				}},
				Total: param.Price.Mul(decimal.NewFromInt32(param.Quantity)),
			}, nil
		},
	}
	products := &mockProductFinder{
		findFn: func(c context.Context, id uuid.UUID) (inRepository.Product, error) {
			return inRepository.Product{
				ID:                 id,
				Price:              decimal.NewFromInt(100),
				IsOnSale:           true,
				DiscountPercentage: decimal.NewNullDecimal(decimal.NewFromInt(20)),
				Stock:              10,
			}, nil
		},
	}
	svc := NewCartService(repo, products, testCache())

	cart, err := svc.AddItem(context.Background(), userId, request.AddCartItem{
		ProductID: productId,
		Quantity:  2,
		Size:      "M",
		Color:     "black",
	})

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(80).Equal(frozen))
	assert.True(t, decimal.NewFromInt(160).Equal(cart.Total))
}

func TestAddItemUnknownProduct(t *testing.T) {
	products := &mockProductFinder{
		findFn: func(c context.Context, id uuid.UUID) (inRepository.Product, error) {
			return inRepository.Product{}, commonErrors.ErrProductNotFound
		},
	}
	svc := NewCartService(&mockCartRepository{}, products, testCache())

	_, err := svc.AddItem(context.Background(), uuid.New(), request.AddCartItem{
		ProductID: uuid.New(),
		Quantity:  1,
		Size:      "M",
		Color:     "black",
	})

	assert.ErrorIs(t, err, commonErrors.ErrProductNotFound)
}

func TestAddItemInsufficientStock(t *testing.T) {
	products := &mockProductFinder{
		findFn: func(c context.Context, id uuid.UUID) (inRepository.Product, error) {
			return inRepository.Product{ID: id, Price: decimal.NewFromInt(10), Stock: 3}, nil
		},
	}
	svc := NewCartService(&mockCartRepository{}, products, testCache())

	_, err := svc.AddItem(context.Background(), uuid.New(), request.AddCartItem{
		ProductID: uuid.New(),
		Quantity:  4,
		Size:      "M",
		Color:     "black",
	})

	assert.ErrorIs(t, err, commonErrors.ErrInsufficientStock)
}

func TestAddItemDuplicateVariant(t *testing.T) {
	repo := &mockCartRepository{
		addItemFn: func(c context.Context, id uuid.UUID, param repository.AddItemParams) (repository.Cart, error) {
			return repository.Cart{}, commonErrors.ErrItemInCart
		},
	}
	products := &mockProductFinder{
		findFn: func(c context.Context, id uuid.UUID) (inRepository.Product, error) {
			return inRepository.Product{ID: id, Price: decimal.NewFromInt(10), Stock: 5}, nil
		},
	}
	svc := NewCartService(repo, products, testCache())

	_, err := svc.AddItem(context.Background(), uuid.New(), request.AddCartItem{
		ProductID: uuid.New(),
		Quantity:  1,
		Size:      "M",
		Color:     "black",
	})

	assert.ErrorIs(t, err, commonErrors.ErrItemInCart)
}

func TestUpdateItemMissingVariant(t *testing.T) {
	repo := &mockCartRepository{
		updateItemFn: func(c context.Context, id uuid.UUID, key repository.ItemKey, quantity int32) (repository.Cart, error) {
			return repository.Cart{}, commonErrors.ErrCartItemNotFound
		},
	}
	products := &mockProductFinder{
		findFn: func(c context.Context, id uuid.UUID) (inRepository.Product, error) {
			return inRepository.Product{ID: id, Price: decimal.NewFromInt(10), Stock: 5}, nil
		},
	}
	svc := NewCartService(repo, products, testCache())

	_, err := svc.UpdateItem(context.Background(), uuid.New(), request.UpdateCartItem{
		ProductID: uuid.New(),
		Quantity:  2,
		Size:      "L",
		Color:     "white",
	})

	assert.ErrorIs(t, err, commonErrors.ErrCartItemNotFound)
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	userId := uuid.New()
	calls := 0
	repo := &mockCartRepository{
		removeItemFn: func(c context.Context, id uuid.UUID, key repository.ItemKey) (repository.Cart, error) {
			calls++
			return repository.Cart{ID: uuid.New(), UserID: id, Items: []repository.CartItem{}}, nil
		},
	}
	svc := NewCartService(repo, &mockProductFinder{}, testCache())

	param := request.RemoveCartItem{ProductID: uuid.New(), Size: "M", Color: "black"}
	_, err := svc.RemoveItem(context.Background(), userId, param)
	require.NoError(t, err)
	_, err = svc.RemoveItem(context.Background(), userId, param)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestClearCartReturnsEmptyCart(t *testing.T) {
	userId := uuid.New()
	repo := &mockCartRepository{
		clearFn: func(c context.Context, id uuid.UUID) error { return nil },
	}
	svc := NewCartService(repo, &mockProductFinder{}, testCache())

	cart, err := svc.ClearCart(context.Background(), userId)

	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.Total.IsZero())
}

func TestCheckItem(t *testing.T) {
	repo := &mockCartRepository{
		hasItemFn: func(c context.Context, id uuid.UUID, key repository.ItemKey) (bool, error) {
			return key.Size == "M", nil
		},
	}
	svc := NewCartService(repo, &mockProductFinder{}, testCache())

	inCart, err := svc.CheckItem(
		context.Background(),
		uuid.New(),
		repository.ItemKey{ProductID: uuid.New(), Size: "M", Color: "black"},
	)
	require.NoError(t, err)
	assert.True(t, inCart)

	inCart, err = svc.CheckItem(
		context.Background(),
		uuid.New(),
		repository.ItemKey{ProductID: uuid.New(), Size: "S", Color: "black"},
	)
	require.NoError(t, err)
	assert.False(t, inCart)
}
