package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	cartCmd "github.com/velora/commerce/cart/cmd"
	"github.com/velora/commerce/internal/common/constants"
	commonErrors "github.com/velora/commerce/internal/common/errors"
	"github.com/velora/commerce/internal/config"
	"github.com/velora/commerce/internal/events"
	"github.com/velora/commerce/internal/infra"
	"github.com/velora/commerce/internal/log"
	"github.com/velora/commerce/internal/mail"
	"github.com/velora/commerce/internal/middleware"
	inOtel "github.com/velora/commerce/internal/otel"
	inRepository "github.com/velora/commerce/internal/repository"
	orderCmd "github.com/velora/commerce/order/cmd"
	productCmd "github.com/velora/commerce/product/cmd"
	userCmd "github.com/velora/commerce/user/cmd"
	wishlistCmd "github.com/velora/commerce/wishlist/cmd"
)

func RunStorefrontService(c context.Context) {
	c, span := inOtel.Tracer.Start(c, "RunStorefrontService")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, constants.AppStorefront).
		Str(log.KeyTag, "main RunStorefrontService").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "init config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, "storefront")
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	otelShutdowns, err := inOtel.InitOtelSdk(c, constants.AppStorefront, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		c = logger.WithContext(c)
		if err := inOtel.ShutdownOtel(c, otelShutdowns); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KeyProcess, "initializing database").Logger()
	logger.Info().Msg("initializing database")
	c = logger.WithContext(c)
	pool := infra.NewDatabaseClient(c, cfg.Database)
	defer func() {
		logger.Info().Msg("shutting down database")
		pool.Close()
		logger.Info().Msg("shutdown database")
	}()
	logger.Info().Msg("initialized database")

	logger = logger.With().Str(log.KeyProcess, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	c = logger.WithContext(c)
	cache := infra.NewCacheClient(c, cfg.Cache)
	defer func() {
		logger.Info().Msg("shutting down cache")
		if err := cache.Close(); err != nil {
			err = fmt.Errorf("failed shutting down cache with error=%w", err)
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown cache")
	}()
	logger.Info().Msg("initialized cache")

	logger = logger.With().Str(log.KeyProcess, "initializing event producer").Logger()
	logger.Info().Msg("initializing event producer")
	producer := events.NewProducer(cfg.Kafka)
	defer func() {
		logger.Info().Msg("shutting down event producer")
		if err := producer.Close(); err != nil {
			err = fmt.Errorf("failed shutting down event producer with error=%w", err)
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("shutdown event producer")
	}()
	logger.Info().Msg("initialized event producer")

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(constants.AppStorefront),
		middleware.Logging,
		middleware.RecoverPanic,
	)
	router.Path("/metrics").Handler(promhttp.Handler())
	public := router.PathPrefix("/api").Subrouter()
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.Auth(cfg.Application.SecretKey))
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(log.KeyProcess, "initializing services").Logger()
	logger.Info().Msg("initializing services")
	mailer := mail.NewMailer(cfg.Smtp, cfg.Application.BaseURL)
	catalog := inRepository.NewProductRepository(pool)

	productCmd.AttachProductService(public, protected, catalog, cache)
	cartCmd.AttachCartService(protected, pool, catalog, cache)
	orderCmd.AttachOrderService(protected, pool, catalog, producer, cache)
	wishlistCmd.AttachWishlistService(protected, pool, catalog)
	userCmd.AttachUserService(public, protected, pool, mailer, cfg.Application.SecretKey)
	logger.Info().Msg("initialized services")

	logger = logger.With().Str(log.KeyProcess, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	httpServer := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return c },
		Handler:      router,
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	logger.Info().Msg("initialized server")

	go func() {
		logger = logger.With().Str(log.KeyProcess, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", httpServer.Addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("error=%w occured while server is running", err)
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())

			c = logger.WithContext(c)
			if err := inOtel.ShutdownOtel(c, otelShutdowns); err != nil {
				err = fmt.Errorf("failed shutting down otel with error=%w", err)
				commonErrors.HandleError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				return
			}
			return
		}
		logger.Info().Msg("shutdown server")
	}()

	<-c.Done()
	logger = logger.With().Str(log.KeyProcess, "shutting down http server").Logger()
	logger.Info().Msg("received interuption signal shutting down")
	if err := httpServer.Shutdown(c); err != nil {
		err = fmt.Errorf("failed shutting down http server with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("shutdown http server")
}
