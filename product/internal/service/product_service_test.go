package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonErrors "github.com/velora/commerce/internal/common/errors"
	"github.com/velora/commerce/internal/repository"
)

type mockProductRepository struct {
	findProductsFn      func(c context.Context, filter repository.FindProductsFilter) ([]repository.Product, error)
	findProductByIdFn   func(c context.Context, id uuid.UUID) (repository.Product, error)
	findCategoriesFn    func(c context.Context) ([]repository.Category, error)
	findSubcategoriesFn func(c context.Context, categoryId uuid.UUID) ([]repository.Subcategory, error)
	findReviewsFn       func(c context.Context, productId uuid.UUID) ([]repository.Review, error)
	insertReviewFn      func(c context.Context, param repository.InsertReviewParams) (repository.Review, error)
}

func (m *mockProductRepository) FindProducts(
	c context.Context,
	filter repository.FindProductsFilter,
) ([]repository.Product, error) {
	return m.findProductsFn(c, filter)
}

func (m *mockProductRepository) FindProductById(
	c context.Context,
	id uuid.UUID,
) (repository.Product, error) {
	return m.findProductByIdFn(c, id)
}

func (m *mockProductRepository) FindCategories(c context.Context) ([]repository.Category, error) {
	return m.findCategoriesFn(c)
}

func (m *mockProductRepository) FindSubcategoriesByCategoryId(
	c context.Context,
	categoryId uuid.UUID,
) ([]repository.Subcategory, error) {
	return m.findSubcategoriesFn(c, categoryId)
}

func (m *mockProductRepository) FindReviewsByProductId(
	c context.Context,
	productId uuid.UUID,
) ([]repository.Review, error) {
	return m.findReviewsFn(c, productId)
}

func (m *mockProductRepository) InsertReview(
	c context.Context,
	param repository.InsertReviewParams,
) (repository.Review, error) {
	return m.insertReviewFn(c, param)
}

// testCache dials a closed port so every cache operation fails fast and the
// service falls through to the repository.
func testCache() *redis.Client {
	return redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
}

func TestFindProductsMapsEffectivePrice(t *testing.T) {
	repo := &mockProductRepository{
		findProductsFn: func(c context.Context, filter repository.FindProductsFilter) ([]repository.Product, error) {
			return []repository.Product{{
				ID:                 uuid.New(),
				Name:               "linen shirt",
				Price:              decimal.RequireFromString("80.00"),
				IsOnSale:           true,
				DiscountPercentage: decimal.NewNullDecimal(decimal.NewFromInt(25)),
			}}, nil
		},
	}
	svc := NewProductService(repo, testCache())

	products, err := svc.FindProducts(context.Background(), repository.FindProductsFilter{})

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.True(t, decimal.RequireFromString("80.00").Equal(products[0].Price))
	assert.True(t, decimal.RequireFromString("60.00").Equal(products[0].EffectivePrice))
}

func TestFindProductByIdNotFound(t *testing.T) {
	repo := &mockProductRepository{
		findProductByIdFn: func(c context.Context, id uuid.UUID) (repository.Product, error) {
			return repository.Product{}, commonErrors.ErrProductNotFound
		},
	}
	svc := NewProductService(repo, testCache())

	_, err := svc.FindProductById(context.Background(), uuid.New())

	assert.ErrorIs(t, err, commonErrors.ErrProductNotFound)
}

func TestFindProductByIdDeduplicatesConcurrentLookups(t *testing.T) {
	productId := uuid.New()
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	var calls atomic.Int32
	repo := &mockProductRepository{
		findProductByIdFn: func(c context.Context, id uuid.UUID) (repository.Product, error) {
			calls.Add(1)
			once.Do(func() { close(started) })
			<-release
			return repository.Product{ID: id, Price: decimal.NewFromInt(10)}, nil
		},
	}
	svc := NewProductService(repo, testCache())

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			product, err := svc.FindProductById(context.Background(), productId)
			assert.NoError(t, err)
			assert.Equal(t, productId, product.ID)
		}()
	}
	// let every goroutine join the in-flight lookup before it returns
	<-started
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestFindCategoriesNestsSubcategories(t *testing.T) {
	categoryId := uuid.New()
	repo := &mockProductRepository{
		findCategoriesFn: func(c context.Context) ([]repository.Category, error) {
			return []repository.Category{{ID: categoryId, Name: "Tops", Slug: "tops"}}, nil
		},
		findSubcategoriesFn: func(c context.Context, id uuid.UUID) ([]repository.Subcategory, error) {
			assert.Equal(t, categoryId, id)
			return []repository.Subcategory{{ID: uuid.New(), Name: "Shirts", Slug: "shirts"}}, nil
		},
	}
	svc := NewProductService(repo, testCache())

	categories, err := svc.FindCategories(context.Background())

	require.NoError(t, err)
	require.Len(t, categories, 1)
	require.Len(t, categories[0].Subcategories, 1)
	assert.Equal(t, "shirts", categories[0].Subcategories[0].Slug)
}

func TestInsertReviewUnknownProduct(t *testing.T) {
	repo := &mockProductRepository{
		findProductByIdFn: func(c context.Context, id uuid.UUID) (repository.Product, error) {
			return repository.Product{}, commonErrors.ErrProductNotFound
		},
	}
	svc := NewProductService(repo, testCache())

	_, err := svc.InsertReview(context.Background(), uuid.New(), uuid.New(), 5, "great")

	assert.ErrorIs(t, err, commonErrors.ErrProductNotFound)
}

func TestInsertReviewPassesParams(t *testing.T) {
	userId := uuid.New()
	productId := uuid.New()
	repo := &mockProductRepository{
		findProductByIdFn: func(c context.Context, id uuid.UUID) (repository.Product, error) {
			return repository.Product{ID: id, Price: decimal.NewFromInt(10)}, nil
		},
		insertReviewFn: func(c context.Context, param repository.InsertReviewParams) (repository.Review, error) {
			assert.Equal(t, userId, param.UserID)
			assert.Equal(t, productId, param.ProductID)
			assert.Equal(t, int32(4), param.Rating)
			return repository.Review{
				ID:        uuid.New(),
				ProductID: param.ProductID,
				UserID:    param.UserID,
				Rating:    param.Rating,
				Comment:   param.Comment,
			}, nil
		},
	}
	svc := NewProductService(repo, testCache())

	review, err := svc.InsertReview(context.Background(), userId, productId, 4, "fits well")

	require.NoError(t, err)
	assert.Equal(t, int32(4), review.Rating)
	assert.Equal(t, "fits well", review.Comment)
}
