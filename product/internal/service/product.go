package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	commonErrors "github.com/velora/commerce/internal/common/errors"
	"github.com/velora/commerce/internal/log"
	inOtel "github.com/velora/commerce/internal/otel"
	"github.com/velora/commerce/internal/repository"
	"github.com/velora/commerce/product/pkg/response"
)

const keyProducts = "products:"

type ProductService struct {
	repository repository.ProductRepository
	cache      *redis.Client
	group      *singleflight.Group
}

func NewProductService(
	repo repository.ProductRepository,
	cache *redis.Client,
) ProductService {
	return ProductService{repository: repo, cache: cache, group: &singleflight.Group{}}
}

func toResponse(p repository.Product) response.Product {
	return response.Product{
		ID:                 p.ID,
		Name:               p.Name,
		Price:              p.Price,
		EffectivePrice:     p.EffectivePrice(),
		OriginalPrice:      p.OriginalPrice,
		Image:              p.Image,
		Images:             p.Images,
		Sex:                p.Sex,
		CategorySlug:       p.CategorySlug,
		SubcategorySlug:    p.SubcategorySlug,
		Description:        p.Description,
		Sizes:              p.Sizes,
		Colors:             p.Colors,
		Material:           p.Material,
		Care:               p.Care,
		IsFeatured:         p.IsFeatured,
		IsNewArrival:       p.IsNewArrival,
		IsOnSale:           p.IsOnSale,
		DiscountPercentage: p.DiscountPercentage,
		Stock:              p.Stock,
		Tags:               p.Tags,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func (svc ProductService) FindProducts(
	c context.Context,
	filter repository.FindProductsFilter,
) ([]response.Product, error) {
	c, span := inOtel.Tracer.Start(c, "ProductService FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService FindProducts").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding products in database").Logger()
	logger.Trace().Msg("finding products in database")
	span.AddEvent("finding products in database")
	products, err := svc.repository.FindProducts(c, filter)
	if err != nil {
		err = fmt.Errorf("failed finding products in database with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	span.AddEvent("found products in database")
	logger.Info().Int("count", len(products)).Msg("found products in database")

	responses := make([]response.Product, 0, len(products))
	for _, p := range products {
		responses = append(responses, toResponse(p))
	}
	return responses, nil
}

func (svc ProductService) FindProductById(
	c context.Context,
	id uuid.UUID,
) (response.Product, error) {
	c, span := inOtel.Tracer.Start(c, "ProductService FindProductById")
	defer span.End()

	cacheKey := keyProducts + id.String()
	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService FindProductById").
		Str(log.KeyProductID, id.String()).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product in cache").Logger()
	logger.Trace().Msg("finding product in cache")
	jsonCache, err := svc.cache.Get(c, cacheKey).Result()
	if err == nil && jsonCache != "" {
		var product response.Product
		if err := json.Unmarshal([]byte(jsonCache), &product); err == nil {
			span.AddEvent("found product in cache")
			logger.Info().Msg("found product in cache")
			return product, nil
		}
		logger.Info().Msg("failed unmarshalling cached product, falling back to database")
	}

	logger = logger.With().Str(log.KeyProcess, "finding product in database").Logger()
	logger.Trace().Msg("finding product in database")
	span.AddEvent("finding product in database")
	value, err, _ := svc.group.Do(cacheKey, func() (interface{}, error) {
		product, err := svc.repository.FindProductById(c, id)
		if err != nil {
			return response.Product{}, err
		}
		resp := toResponse(product)
		if jsonProduct, err := json.Marshal(resp); err == nil {
			if err := svc.cache.Set(c, cacheKey, jsonProduct, 0).Err(); err != nil {
				logger.Info().Err(err).Msg("failed inserting product to cache")
			}
		}
		return resp, nil
	})
	if err != nil {
		if err != commonErrors.ErrProductNotFound {
			err = fmt.Errorf("failed finding product in database with error=%w", err)
		}
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	span.AddEvent("found product in database")
	logger.Info().Msg("found product in database")

	return value.(response.Product), nil
}

func (svc ProductService) FindCategories(c context.Context) ([]response.Category, error) {
	c, span := inOtel.Tracer.Start(c, "ProductService FindCategories")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService FindCategories").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding categories in database").Logger()
	logger.Trace().Msg("finding categories in database")
	span.AddEvent("finding categories in database")
	categories, err := svc.repository.FindCategories(c)
	if err != nil {
		err = fmt.Errorf("failed finding categories in database with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	span.AddEvent("found categories in database")
	logger.Info().Int("count", len(categories)).Msg("found categories in database")

	responses := make([]response.Category, 0, len(categories))
	for _, category := range categories {
		subcategories, err := svc.repository.FindSubcategoriesByCategoryId(c, category.ID)
		if err != nil {
			err = fmt.Errorf("failed finding subcategories in database with error=%w", err)
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		subs := make([]response.Subcategory, 0, len(subcategories))
		for _, sub := range subcategories {
			subs = append(subs, response.Subcategory{ID: sub.ID, Name: sub.Name, Slug: sub.Slug})
		}
		responses = append(responses, response.Category{
			ID:            category.ID,
			Name:          category.Name,
			Slug:          category.Slug,
			Subcategories: subs,
		})
	}
	return responses, nil
}

func (svc ProductService) FindReviewsByProductId(
	c context.Context,
	productId uuid.UUID,
) ([]response.Review, error) {
	c, span := inOtel.Tracer.Start(c, "ProductService FindReviewsByProductId")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService FindReviewsByProductId").
		Str(log.KeyProductID, productId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product in database").Logger()
	logger.Trace().Msg("finding product in database")
	span.AddEvent("finding product in database")
	if _, err := svc.FindProductById(c, productId); err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	logger = logger.With().Str(log.KeyProcess, "finding reviews in database").Logger()
	logger.Trace().Msg("finding reviews in database")
	span.AddEvent("finding reviews in database")
	reviews, err := svc.repository.FindReviewsByProductId(c, productId)
	if err != nil {
		err = fmt.Errorf("failed finding reviews in database with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	span.AddEvent("found reviews in database")
	logger.Info().Int("count", len(reviews)).Msg("found reviews in database")

	responses := make([]response.Review, 0, len(reviews))
	for _, review := range reviews {
		responses = append(responses, response.Review{
			ID:        review.ID,
			ProductID: review.ProductID,
			UserID:    review.UserID,
			Username:  review.Username,
			Rating:    review.Rating,
			Comment:   review.Comment,
			CreatedAt: review.CreatedAt,
		})
	}
	return responses, nil
}

func (svc ProductService) InsertReview(
	c context.Context,
	userId uuid.UUID,
	productId uuid.UUID,
	rating int32,
	comment string,
) (response.Review, error) {
	c, span := inOtel.Tracer.Start(c, "ProductService InsertReview")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService InsertReview").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, productId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product in database").Logger()
	logger.Trace().Msg("finding product in database")
	span.AddEvent("finding product in database")
	if _, err := svc.FindProductById(c, productId); err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Review{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "inserting review to database").Logger()
	logger.Trace().Msg("inserting review to database")
	span.AddEvent("inserting review to database")
	review, err := svc.repository.InsertReview(c, repository.InsertReviewParams{
		ProductID: productId,
		UserID:    userId,
		Rating:    rating,
		Comment:   comment,
	})
	if err != nil {
		err = fmt.Errorf("failed inserting review to database with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Review{}, err
	}
	span.AddEvent("inserted review to database")
	logger.Info().Msg("inserted review to database")

	return response.Review{
		ID:        review.ID,
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Username:  review.Username,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}, nil
}
