package cmd

import (
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/velora/commerce/cart/internal/controller"
	"github.com/velora/commerce/cart/internal/repository"
	"github.com/velora/commerce/cart/internal/service"
	inRepository "github.com/velora/commerce/internal/repository"
)

// AttachCartService wires the cart routes onto the authenticated subrouter.
func AttachCartService(
	protected *mux.Router,
	pool *pgxpool.Pool,
	catalog inRepository.ProductRepository,
	cache *redis.Client,
) {
	repo := repository.NewCartRepository(pool)
	svc := service.NewCartService(repo, catalog, cache)
	controller.AttachCartController(protected, &svc)
}
