package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	commonErrors "github.com/velora/commerce/internal/common/errors"
	"github.com/velora/commerce/internal/log"
	inRepository "github.com/velora/commerce/internal/repository"
)

const pgUniqueViolation = "23505"

type WishlistItem struct {
	ProductID uuid.UUID
	Name      string
	Image     string
	Price     decimal.Decimal
	IsOnSale  bool
	Stock     int32
	AddedAt   time.Time
}

type Wishlist struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Items  []WishlistItem
}

type WishlistRepository interface {
	FindWishlistByUserId(c context.Context, userId uuid.UUID) (Wishlist, error)
	AddItem(c context.Context, userId, productId uuid.UUID) (Wishlist, error)
	RemoveItem(c context.Context, userId, productId uuid.UUID) (Wishlist, error)
	Clear(c context.Context, userId uuid.UUID) error
	HasItem(c context.Context, userId, productId uuid.UUID) (bool, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewWishlistRepository(pool *pgxpool.Pool) WishlistRepository {
	return &postgresRepository{pool: pool}
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func findWishlistByUserId(c context.Context, q querier, userId uuid.UUID) (Wishlist, error) {
	var wishlist Wishlist
	err := q.QueryRow(c, `SELECT id, user_id FROM wishlists WHERE user_id = $1`, userId).
		Scan(&wishlist.ID, &wishlist.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wishlist{}, commonErrors.ErrWishlistNotFound
		}
		return Wishlist{}, fmt.Errorf("failed finding wishlist with error=%w", err)
	}

	rows, err := q.Query(c, `
		SELECT wi.product_id, p.name, p.image, p.price, p.is_on_sale, p.stock, wi.created_at
		FROM wishlist_items wi
		JOIN products p ON p.id = wi.product_id
		WHERE wi.wishlist_id = $1
		ORDER BY wi.created_at DESC`,
		wishlist.ID,
	)
	if err != nil {
		return Wishlist{}, fmt.Errorf("failed finding wishlist items with error=%w", err)
	}
	defer rows.Close()

	wishlist.Items = []WishlistItem{}
	for rows.Next() {
		var (
			item  WishlistItem
			price pgtype.Numeric
		)
		err := rows.Scan(
			&item.ProductID, &item.Name, &item.Image, &price,
			&item.IsOnSale, &item.Stock, &item.AddedAt,
		)
		if err != nil {
			return Wishlist{}, fmt.Errorf("failed scanning wishlist item with error=%w", err)
		}
		item.Price = inRepository.DecimalFromNumeric(price)
		wishlist.Items = append(wishlist.Items, item)
	}
	return wishlist, rows.Err()
}

func (r *postgresRepository) FindWishlistByUserId(
	c context.Context,
	userId uuid.UUID,
) (Wishlist, error) {
	return findWishlistByUserId(c, r.pool, userId)
}

func (r *postgresRepository) AddItem(
	c context.Context,
	userId, productId uuid.UUID,
) (Wishlist, error) {
	logger := zerolog.Ctx(c)

	tx, err := r.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		return Wishlist{}, fmt.Errorf("failed initializing transaction with error=%w", err)
	}
	defer func() {
		if err := tx.Rollback(c); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Error().
				Err(err).
				Str(log.KeyProcess, "rolling back transaction").
				Msg("failed rolling back transaction")
		}
	}()

	_, err = tx.Exec(c, `
		INSERT INTO wishlists (id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING`,
		uuid.New(), userId,
	)
	if err != nil {
		return Wishlist{}, fmt.Errorf("failed upserting wishlist with error=%w", err)
	}

	var wishlistId uuid.UUID
	err = tx.QueryRow(c, `SELECT id FROM wishlists WHERE user_id = $1 FOR UPDATE`, userId).
		Scan(&wishlistId)
	if err != nil {
		return Wishlist{}, fmt.Errorf("failed locking wishlist with error=%w", err)
	}

	_, err = tx.Exec(c, `
		INSERT INTO wishlist_items (id, wishlist_id, product_id)
		VALUES ($1, $2, $3)`,
		uuid.New(), wishlistId, productId,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return Wishlist{}, commonErrors.ErrProductInWishlist
		}
		return Wishlist{}, fmt.Errorf("failed inserting wishlist item with error=%w", err)
	}

	wishlist, err := findWishlistByUserId(c, tx, userId)
	if err != nil {
		return Wishlist{}, err
	}
	if err := tx.Commit(c); err != nil {
		return Wishlist{}, fmt.Errorf("failed committing transaction with error=%w", err)
	}
	return wishlist, nil
}

func (r *postgresRepository) RemoveItem(
	c context.Context,
	userId, productId uuid.UUID,
) (Wishlist, error) {
	// removing an absent item is a no-op
	_, err := r.pool.Exec(c, `
		DELETE FROM wishlist_items wi
		USING wishlists w
		WHERE wi.wishlist_id = w.id AND w.user_id = $1 AND wi.product_id = $2`,
		userId, productId,
	)
	if err != nil {
		return Wishlist{}, fmt.Errorf("failed removing wishlist item with error=%w", err)
	}
	wishlist, err := findWishlistByUserId(c, r.pool, userId)
	if err != nil {
		if errors.Is(err, commonErrors.ErrWishlistNotFound) {
			return Wishlist{UserID: userId, Items: []WishlistItem{}}, nil
		}
		return Wishlist{}, err
	}
	return wishlist, nil
}

func (r *postgresRepository) Clear(c context.Context, userId uuid.UUID) error {
	_, err := r.pool.Exec(c, `DELETE FROM wishlists WHERE user_id = $1`, userId)
	if err != nil {
		return fmt.Errorf("failed clearing wishlist with error=%w", err)
	}
	return nil
}

func (r *postgresRepository) HasItem(
	c context.Context,
	userId, productId uuid.UUID,
) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(c, `
		SELECT EXISTS (
			SELECT 1
			FROM wishlist_items wi
			JOIN wishlists w ON w.id = wi.wishlist_id
			WHERE w.user_id = $1 AND wi.product_id = $2
		)`,
		userId, productId,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed checking wishlist item with error=%w", err)
	}
	return exists, nil
}
