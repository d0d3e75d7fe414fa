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

	"github.com/velora/commerce/internal/common"
	commonErrors "github.com/velora/commerce/internal/common/errors"
	"github.com/velora/commerce/internal/common/response"
	"github.com/velora/commerce/internal/log"
	inOtel "github.com/velora/commerce/internal/otel"
	"github.com/velora/commerce/internal/repository"
	"github.com/velora/commerce/product/internal/service"
	"github.com/velora/commerce/product/pkg/request"
)

type ProductController struct {
	service *service.ProductService
}

func AttachProductController(
	public *mux.Router,
	protected *mux.Router,
	service *service.ProductService,
) {
	controller := ProductController{service: service}

	public.HandleFunc("/products", controller.FindProducts).Methods(http.MethodGet)
	public.HandleFunc("/products/{productId}", controller.FindProductById).
		Methods(http.MethodGet)
	public.HandleFunc("/products/{productId}/reviews", controller.FindReviews).
		Methods(http.MethodGet)
	public.HandleFunc("/categories", controller.FindCategories).Methods(http.MethodGet)

	protected.HandleFunc("/products/{productId}/reviews", controller.InsertReview).
		Methods(http.MethodPost)
}

func parseBoolFilter(value string) *bool {
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil
	}
	return &parsed
}

func (ctrl ProductController) FindProducts(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "ProductController FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductController FindProducts").
		Logger()

	query := r.URL.Query()
	filter := repository.FindProductsFilter{
		Sex:             query.Get("sex"),
		CategorySlug:    query.Get("category"),
		SubcategorySlug: query.Get("subcategory"),
		Search:          query.Get("search"),
	}
	if value := query.Get("featured"); value != "" {
		filter.IsFeatured = parseBoolFilter(value)
	}
	if value := query.Get("newArrival"); value != "" {
		filter.IsNewArrival = parseBoolFilter(value)
	}
	if value := query.Get("onSale"); value != "" {
		filter.IsOnSale = parseBoolFilter(value)
	}
	if value := query.Get("limit"); value != "" {
		if limit, err := strconv.ParseInt(value, 10, 32); err == nil && limit > 0 {
			filter.Limit = int32(limit)
		}
	}
	if value := query.Get("offset"); value != "" {
		if offset, err := strconv.ParseInt(value, 10, 32); err == nil && offset > 0 {
			filter.Offset = int32(offset)
		}
	}

	logger = logger.With().Str(log.KeyProcess, "finding products").Logger()
	logger.Trace().Msg("finding products")
	span.AddEvent("finding products")
	c = logger.WithContext(c)
	products, err := ctrl.service.FindProducts(c, filter)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("found products")
	logger.Info().Int("count", len(products)).Msg("found products")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"products": products,
	})
}

func (ctrl ProductController) FindProductById(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "ProductController FindProductById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductController FindProductById").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "getting pathValue productId").Logger()
	logger.Trace().Msg("getting pathValue productId")
	id, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		err = commonErrors.NewValidationError("invalid product id")
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyProductID, id.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Trace().Msg("finding product")
	span.AddEvent("finding product")
	c = logger.WithContext(c)
	product, err := ctrl.service.FindProductById(c, id)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("found product")
	logger.Info().Msg("found product")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"success": true,
		"product": product,
	})
}

func (ctrl ProductController) FindCategories(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "ProductController FindCategories")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductController FindCategories").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding categories").Logger()
	logger.Trace().Msg("finding categories")
	span.AddEvent("finding categories")
	c = logger.WithContext(c)
	categories, err := ctrl.service.FindCategories(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("found categories")
	logger.Info().Int("count", len(categories)).Msg("found categories")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"categories": categories,
	})
}

func (ctrl ProductController) FindReviews(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "ProductController FindReviews")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductController FindReviews").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "getting pathValue productId").Logger()
	logger.Trace().Msg("getting pathValue productId")
	productId, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		err = commonErrors.NewValidationError("invalid product id")
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyProductID, productId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "finding reviews").Logger()
	logger.Trace().Msg("finding reviews")
	span.AddEvent("finding reviews")
	c = logger.WithContext(c)
	reviews, err := ctrl.service.FindReviewsByProductId(c, productId)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("found reviews")
	logger.Info().Int("count", len(reviews)).Msg("found reviews")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"success": true,
		"reviews": reviews,
	})
}

func (ctrl ProductController) InsertReview(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "ProductController InsertReview")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductController InsertReview").
		Logger()

	userId, err := common.UserIdFromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "getting pathValue productId").Logger()
	logger.Trace().Msg("getting pathValue productId")
	productId, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		err = commonErrors.NewValidationError("invalid product id")
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyProductID, productId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	span.AddEvent("decoding request body")
	reqBody := request.InsertReview{}
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
			commonErrors.NewValidationError("rating must be between 1 and 5"),
		)
		return
	}
	span.AddEvent("validated request body")
	logger.Trace().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "inserting review").Logger()
	logger.Trace().Msg("inserting review")
	span.AddEvent("inserting review")
	c = logger.WithContext(c)
	review, err := ctrl.service.InsertReview(c, userId, productId, reqBody.Rating, reqBody.Comment)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteErrorResponse(c, w, err)
		return
	}
	span.AddEvent("inserted review")
	logger.Info().Msg("inserted review")

	response.WriteJsonResponse(c, w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"review":  review,
	})
}
