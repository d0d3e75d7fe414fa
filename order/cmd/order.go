package cmd

import (
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/velora/commerce/internal/events"
	inRepository "github.com/velora/commerce/internal/repository"
	"github.com/velora/commerce/order/internal/controller"
	"github.com/velora/commerce/order/internal/repository"
	"github.com/velora/commerce/order/internal/service"
)

// AttachOrderService wires the order routes onto the authenticated subrouter.
func AttachOrderService(
	protected *mux.Router,
	pool *pgxpool.Pool,
	catalog inRepository.ProductRepository,
	producer *events.Producer,
	cache *redis.Client,
) {
	repo := repository.NewOrderRepository(pool)
	svc := service.NewOrderService(repo, catalog, producer, cache)
	controller.AttachOrderController(protected, &svc)
}
