package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonErrors "github.com/velora/commerce/internal/common/errors"
)

func TestCartRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	c := context.Background()
	pool, cleanup := setupPostgres(t, c)
	defer cleanup()

	repo := NewCartRepository(pool)

	t.Run("FindCartByUserIdMissing", func(t *testing.T) {
		_, err := repo.FindCartByUserId(c, uuid.New())
		assert.ErrorIs(t, err, commonErrors.ErrCartNotFound)
	})

	t.Run("AddItemCreatesCartAndRecomputesTotal", func(t *testing.T) {
		userId := seedUser(t, c, pool)
		productId := seedProduct(t, c, pool, "25.50", 10)

		cart, err := repo.AddItem(c, userId, AddItemParams{
			ProductID: productId,
			Price:     decimal.RequireFromString("25.50"),
			Quantity:  2,
			Size:      "M",
			Color:     "black",
		})
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.True(t, decimal.RequireFromString("51.00").Equal(cart.Total))
		assert.Equal(t, int32(10), cart.Items[0].Stock)
	})

	t.Run("AddItemDuplicateVariantConflicts", func(t *testing.T) {
		userId := seedUser(t, c, pool)
		productId := seedProduct(t, c, pool, "10.00", 10)

		param := AddItemParams{
			ProductID: productId,
			Price:     decimal.NewFromInt(10),
			Quantity:  1,
			Size:      "M",
			Color:     "black",
		}
		_, err := repo.AddItem(c, userId, param)
		require.NoError(t, err)
		_, err = repo.AddItem(c, userId, param)
		assert.ErrorIs(t, err, commonErrors.ErrItemInCart)
	})

	t.Run("AddItemDifferentVariantsCoexist", func(t *testing.T) {
		userId := seedUser(t, c, pool)
		productId := seedProduct(t, c, pool, "10.00", 10)

		_, err := repo.AddItem(c, userId, AddItemParams{
			ProductID: productId, Price: decimal.NewFromInt(10), Quantity: 1, Size: "M", Color: "black",
		})
		require.NoError(t, err)
		cart, err := repo.AddItem(c, userId, AddItemParams{
			ProductID: productId, Price: decimal.NewFromInt(10), Quantity: 1, Size: "L", Color: "black",
		})
		require.NoError(t, err)
		assert.Len(t, cart.Items, 2)
		assert.True(t, decimal.NewFromInt(20).Equal(cart.Total))
	})

	t.Run("ConcurrentAddsYieldOneCart", func(t *testing.T) {
		userId := seedUser(t, c, pool)
		productId := seedProduct(t, c, pool, "10.00", 100)

		sizes := []string{"S", "M", "L"}
		var wg sync.WaitGroup
		for _, size := range sizes {
			wg.Add(1)
			go func(size string) {
				defer wg.Done()
				_, err := repo.AddItem(c, userId, AddItemParams{
					ProductID: productId,
					Price:     decimal.NewFromInt(10),
					Quantity:  1,
					Size:      size,
					Color:     "white",
				})
				assert.NoError(t, err)
			}(size)
		}
		wg.Wait()

		var cartCount int
		err := pool.QueryRow(c, `SELECT COUNT(*) FROM carts WHERE user_id = $1`, userId).
			Scan(&cartCount)
		require.NoError(t, err)
		assert.Equal(t, 1, cartCount)

		cart, err := repo.FindCartByUserId(c, userId)
		require.NoError(t, err)
		assert.Len(t, cart.Items, len(sizes))
		assert.True(t, decimal.NewFromInt(30).Equal(cart.Total))
	})

	t.Run("UpdateItemQuantityRecomputesTotal", func(t *testing.T) {
		userId := seedUser(t, c, pool)
		productId := seedProduct(t, c, pool, "15.00", 10)

		key := ItemKey{ProductID: productId, Size: "S", Color: "white"}
		_, err := repo.AddItem(c, userId, AddItemParams{
			ProductID: productId, Price: decimal.NewFromInt(15), Quantity: 1, Size: "S", Color: "white",
		})
		require.NoError(t, err)

		cart, err := repo.UpdateItemQuantity(c, userId, key, 3)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(45).Equal(cart.Total))
	})

	t.Run("UpdateItemQuantityMissingVariant", func(t *testing.T) {
		userId := seedUser(t, c, pool)
		productId := seedProduct(t, c, pool, "15.00", 10)

		_, err := repo.UpdateItemQuantity(
			c,
			userId,
			ItemKey{ProductID: productId, Size: "XL", Color: "red"},
			2,
		)
		assert.ErrorIs(t, err, commonErrors.ErrCartItemNotFound)
	})

	t.Run("RemoveItemIsIdempotent", func(t *testing.T) {
		userId := seedUser(t, c, pool)
		productId := seedProduct(t, c, pool, "15.00", 10)

		key := ItemKey{ProductID: productId, Size: "M", Color: "white"}
		_, err := repo.AddItem(c, userId, AddItemParams{
			ProductID: productId, Price: decimal.NewFromInt(15), Quantity: 1, Size: "M", Color: "white",
		})
		require.NoError(t, err)

		cart, err := repo.RemoveItem(c, userId, key)
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
		assert.True(t, cart.Total.IsZero())

		cart, err = repo.RemoveItem(c, userId, key)
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
	})

	t.Run("MutationsNeverCreateACart", func(t *testing.T) {
		userId := seedUser(t, c, pool)
		productId := seedProduct(t, c, pool, "15.00", 10)
		key := ItemKey{ProductID: productId, Size: "M", Color: "white"}

		cart, err := repo.RemoveItem(c, userId, key)
		require.NoError(t, err)
		assert.Empty(t, cart.Items)

		_, err = repo.UpdateItemQuantity(c, userId, key, 2)
		assert.ErrorIs(t, err, commonErrors.ErrCartItemNotFound)

		// only a successful add may create the cart row
		var cartCount int
		err = pool.QueryRow(c, `SELECT COUNT(*) FROM carts WHERE user_id = $1`, userId).
			Scan(&cartCount)
		require.NoError(t, err)
		assert.Equal(t, 0, cartCount)
	})

	t.Run("ClearDeletesCart", func(t *testing.T) {
		userId := seedUser(t, c, pool)
		productId := seedProduct(t, c, pool, "15.00", 10)

		_, err := repo.AddItem(c, userId, AddItemParams{
			ProductID: productId, Price: decimal.NewFromInt(15), Quantity: 1, Size: "L", Color: "white",
		})
		require.NoError(t, err)

		require.NoError(t, repo.Clear(c, userId))
		_, err = repo.FindCartByUserId(c, userId)
		assert.ErrorIs(t, err, commonErrors.ErrCartNotFound)
	})

	t.Run("HasItem", func(t *testing.T) {
		userId := seedUser(t, c, pool)
		productId := seedProduct(t, c, pool, "15.00", 10)

		key := ItemKey{ProductID: productId, Size: "S", Color: "black"}
		inCart, err := repo.HasItem(c, userId, key)
		require.NoError(t, err)
		assert.False(t, inCart)

		_, err = repo.AddItem(c, userId, AddItemParams{
			ProductID: productId, Price: decimal.NewFromInt(15), Quantity: 1, Size: "S", Color: "black",
		})
		require.NoError(t, err)

		inCart, err = repo.HasItem(c, userId, key)
		require.NoError(t, err)
		assert.True(t, inCart)
	})
}
