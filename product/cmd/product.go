package cmd

import (
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	inRepository "github.com/velora/commerce/internal/repository"
	"github.com/velora/commerce/product/internal/controller"
	"github.com/velora/commerce/product/internal/service"
)

// AttachProductService wires the catalog routes. Browsing is public, posting
// reviews requires authentication.
func AttachProductService(
	public *mux.Router,
	protected *mux.Router,
	catalog inRepository.ProductRepository,
	cache *redis.Client,
) {
	svc := service.NewProductService(catalog, cache)
	controller.AttachProductController(public, protected, &svc)
}
