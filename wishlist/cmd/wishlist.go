package cmd

import (
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	inRepository "github.com/velora/commerce/internal/repository"
	"github.com/velora/commerce/wishlist/internal/controller"
	"github.com/velora/commerce/wishlist/internal/repository"
	"github.com/velora/commerce/wishlist/internal/service"
)

// AttachWishlistService wires the wishlist routes onto the authenticated
// subrouter.
func AttachWishlistService(
	protected *mux.Router,
	pool *pgxpool.Pool,
	catalog inRepository.ProductRepository,
) {
	repo := repository.NewWishlistRepository(pool)
	svc := service.NewWishlistService(repo, catalog)
	controller.AttachWishlistController(protected, &svc)
}
