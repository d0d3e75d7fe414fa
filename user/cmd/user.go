package cmd

import (
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velora/commerce/internal/mail"
	"github.com/velora/commerce/user/internal/controller"
	"github.com/velora/commerce/user/internal/repository"
	"github.com/velora/commerce/user/internal/service"
)

// AttachUserService wires the identity routes. Signup, login and the token
// flows are public, profile routes require authentication.
func AttachUserService(
	public *mux.Router,
	protected *mux.Router,
	pool *pgxpool.Pool,
	mailer *mail.Mailer,
	secretKey string,
) {
	repo := repository.NewUserRepository(pool)
	svc := service.NewUserService(repo, mailer, secretKey)
	controller.AttachUserController(public, protected, &svc)
}
