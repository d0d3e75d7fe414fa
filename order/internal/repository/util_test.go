package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
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
			filepath.Join(migrations, "20250301090200_create_table_products.up.sql"),
			filepath.Join(migrations, "20250301090300_create_table_carts.up.sql"),
			filepath.Join(migrations, "20250301090400_create_table_orders.up.sql"),
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

func seedUser(t *testing.T, c context.Context, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	userId := uuid.New()
	_, err := pool.Exec(c, `
		INSERT INTO users (id, username, email, password, is_verified)
		VALUES ($1, $2, $3, 'hashed', true)`,
		userId, "shopper-"+userId.String()[:8], userId.String()+"@example.com",
	)
	if err != nil {
		t.Fatalf("failed seeding user with error: %s", err)
	}
	return userId
}

func seedProduct(t *testing.T, c context.Context, pool *pgxpool.Pool, price string, stock int32) uuid.UUID {
	t.Helper()
	productId := uuid.New()
	_, err := pool.Exec(c, `
		INSERT INTO products (id, name, price, image, sex, category_slug, sizes, colors, stock)
		VALUES ($1, $2, $3, 'coat.jpg', 'women', 'outerwear', '{S,M,L}', '{navy,black}', $4)`,
		productId, "coat-"+productId.String()[:8], price, stock,
	)
	if err != nil {
		t.Fatalf("failed seeding product with error: %s", err)
	}
	return productId
}

func seedCartWithItem(
	t *testing.T,
	c context.Context,
	pool *pgxpool.Pool,
	userId, productId uuid.UUID,
) {
	t.Helper()
	cartId := uuid.New()
	_, err := pool.Exec(c, `INSERT INTO carts (id, user_id, total) VALUES ($1, $2, 10)`, cartId, userId)
	if err != nil {
		t.Fatalf("failed seeding cart with error: %s", err)
	}
	_, err = pool.Exec(c, `
		INSERT INTO cart_items (id, cart_id, product_id, price, quantity, size, color)
		VALUES ($1, $2, $3, 10, 1, 'M', 'navy')`,
		uuid.New(), cartId, productId,
	)
	if err != nil {
		t.Fatalf("failed seeding cart item with error: %s", err)
	}
}
