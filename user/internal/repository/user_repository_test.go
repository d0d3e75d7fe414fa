package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/jackc/pgx/v5/pgxpool"

	commonErrors "github.com/velora/commerce/internal/common/errors"
	"github.com/velora/commerce/user/pkg/request"
)

func setupPostgres(t *testing.T, c context.Context) (*pgxpool.Pool, func()) {
	t.Helper()

	migrations := filepath.Join("..", "..", "..", "migrations")
	pgContainer, err := postgres.Run(
		c,
		"postgres:16.6-alpine3.21",
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_DB":       "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_PORT":     "5432",
			"POSTGRES_USER":     "postgres",
		}),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.WithDatabase("postgres"),
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			filepath.Join(migrations, "20250301090000_create_table_users.up.sql"),
		),
	)
	if err != nil {
		t.Fatalf("failed running postgres container with error: %s", err)
	}

	pgConnStr, err := pgContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting postgres connection string with error: %s", err)
	}

	pgConfig, err := pgxpool.ParseConfig(pgConnStr)
	if err != nil {
		t.Fatalf("failed parsing pgx config with error: %s", err)
	}

	pool, err := pgxpool.NewWithConfig(c, pgConfig)
	if err != nil {
		t.Fatalf("failed creating postgres pool with error: %s", err)
	}
	if err = pool.Ping(c); err != nil {
		t.Fatalf("failed ping postgres pool with error: %s", err)
	}

	return pool, func() {
		pool.Close()
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}
}

func TestUserRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	t.Parallel()

	c := context.Background()
	pool, cleanup := setupPostgres(t, c)
	defer cleanup()

	repo := NewUserRepository(pool)

	insert := func(t *testing.T, email string) User {
		t.Helper()
		user, err := repo.InsertUser(c, InsertUserParams{
			Username:          "shopper-" + email,
			Email:             email,
			HashedPassword:    "hashed",
			VerifyToken:       "verify-" + email,
			VerifyTokenExpiry: time.Now().Add(time.Hour),
		})
		require.NoError(t, err)
		return user
	}

	t.Run("InsertAndFindByEmail", func(t *testing.T) {
		inserted := insert(t, "find@example.com")
		assert.False(t, inserted.IsVerified)

		found, err := repo.FindUserByEmail(c, "find@example.com")
		require.NoError(t, err)
		assert.Equal(t, inserted.ID, found.ID)
		assert.Equal(t, "hashed", found.Password)

		_, err = repo.FindUserByEmail(c, "nobody@example.com")
		assert.ErrorIs(t, err, commonErrors.ErrUserNotFound)
	})

	t.Run("DuplicateEmailRejected", func(t *testing.T) {
		insert(t, "taken@example.com")

		_, err := repo.InsertUser(c, InsertUserParams{
			Username:          "another",
			Email:             "taken@example.com",
			HashedPassword:    "hashed",
			VerifyToken:       "verify-other",
			VerifyTokenExpiry: time.Now().Add(time.Hour),
		})
		assert.ErrorIs(t, err, commonErrors.ErrEmailTaken)
	})

	t.Run("VerifyByTokenClearsToken", func(t *testing.T) {
		inserted := insert(t, "verify@example.com")

		verified, err := repo.VerifyUserByToken(c, "verify-verify@example.com")
		require.NoError(t, err)
		assert.Equal(t, inserted.ID, verified.ID)
		assert.True(t, verified.IsVerified)
		assert.Nil(t, verified.VerifyToken)

		_, err = repo.VerifyUserByToken(c, "verify-verify@example.com")
		assert.ErrorIs(t, err, commonErrors.ErrTokenInvalid)
	})

	t.Run("ExpiredVerifyTokenRejected", func(t *testing.T) {
		user := insert(t, "expired@example.com")
		_, err := pool.Exec(c,
			"UPDATE users SET verify_token_expiry = now() - interval '1 minute' WHERE id = $1",
			user.ID,
		)
		require.NoError(t, err)

		_, err = repo.VerifyUserByToken(c, "verify-expired@example.com")
		assert.ErrorIs(t, err, commonErrors.ErrTokenInvalid)
	})

	t.Run("ResetPasswordByToken", func(t *testing.T) {
		user := insert(t, "reset@example.com")

		err := repo.SetForgotPasswordToken(c, user.ID, "reset-token", time.Now().Add(time.Hour))
		require.NoError(t, err)

		updated, err := repo.ResetPasswordByToken(c, "reset-token", "rehashed")
		require.NoError(t, err)
		assert.Equal(t, user.ID, updated.ID)
		assert.Equal(t, "rehashed", updated.Password)
		assert.Nil(t, updated.ForgotPasswordToken)

		_, err = repo.ResetPasswordByToken(c, "reset-token", "again")
		assert.ErrorIs(t, err, commonErrors.ErrTokenInvalid)
	})

	t.Run("UpdateShippingAddressRoundTrips", func(t *testing.T) {
		user := insert(t, "address@example.com")

		address := request.ShippingAddress{
			FullName:   "Amira Rahmawati",
			Address:    "Jl. Melati No. 5",
			City:       "Bandung",
			PostalCode: "40111",
			Country:    "Indonesia",
			Phone:      "+62123456789",
		}
		updated, err := repo.UpdateShippingAddress(c, user.ID, address)
		require.NoError(t, err)
		require.NotNil(t, updated.ShippingAddress)
		assert.Equal(t, address, *updated.ShippingAddress)

		found, err := repo.FindUserById(c, user.ID)
		require.NoError(t, err)
		require.NotNil(t, found.ShippingAddress)
		assert.Equal(t, "40111", found.ShippingAddress.PostalCode)
	})
}
