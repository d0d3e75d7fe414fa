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

type CartItem struct {
	ProductID uuid.UUID
	Name      string
	Image     string
	Price     decimal.Decimal
	Quantity  int32
	Size      string
	Color     string
	Stock     int32
}

type Cart struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Items     []CartItem
	Total     decimal.Decimal
	UpdatedAt time.Time
}

type AddItemParams struct {
	ProductID uuid.UUID
	Price     decimal.Decimal
	Quantity  int32
	Size      string
	Color     string
}

type ItemKey struct {
	ProductID uuid.UUID
	Size      string
	Color     string
}

type CartRepository interface {
	FindCartByUserId(c context.Context, userId uuid.UUID) (Cart, error)
	AddItem(c context.Context, userId uuid.UUID, param AddItemParams) (Cart, error)
	UpdateItemQuantity(c context.Context, userId uuid.UUID, key ItemKey, quantity int32) (Cart, error)
	RemoveItem(c context.Context, userId uuid.UUID, key ItemKey) (Cart, error)
	Clear(c context.Context, userId uuid.UUID) error
	HasItem(c context.Context, userId uuid.UUID, key ItemKey) (bool, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) CartRepository {
	return &postgresRepository{pool: pool}
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func findCartByUserId(c context.Context, q querier, userId uuid.UUID) (Cart, error) {
	var (
		cart  Cart
		total pgtype.Numeric
	)
	err := q.QueryRow(
		c,
		`SELECT id, user_id, total, updated_at FROM carts WHERE user_id = $1`,
		userId,
	).Scan(&cart.ID, &cart.UserID, &total, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Cart{}, commonErrors.ErrCartNotFound
		}
		return Cart{}, fmt.Errorf("failed finding cart with error=%w", err)
	}
	cart.Total = inRepository.DecimalFromNumeric(total)

	rows, err := q.Query(c, `
		SELECT ci.product_id, p.name, p.image, ci.price, ci.quantity, ci.size, ci.color, p.stock
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at`,
		cart.ID,
	)
	if err != nil {
		return Cart{}, fmt.Errorf("failed finding cart items with error=%w", err)
	}
	defer rows.Close()

	cart.Items = []CartItem{}
	for rows.Next() {
		var (
			item  CartItem
			price pgtype.Numeric
		)
		err := rows.Scan(
			&item.ProductID, &item.Name, &item.Image, &price,
			&item.Quantity, &item.Size, &item.Color, &item.Stock,
		)
		if err != nil {
			return Cart{}, fmt.Errorf("failed scanning cart item with error=%w", err)
		}
		item.Price = inRepository.DecimalFromNumeric(price)
		cart.Items = append(cart.Items, item)
	}
	return cart, rows.Err()
}

// recomputeTotal derives the cart total from its items so a stale or
// concurrently written total can never survive a mutation.
func recomputeTotal(c context.Context, q querier, cartId uuid.UUID) error {
	_, err := q.Exec(c, `
		UPDATE carts
		SET total = (
			SELECT COALESCE(SUM(price * quantity), 0) FROM cart_items WHERE cart_id = $1
		), updated_at = now()
		WHERE id = $1`,
		cartId,
	)
	if err != nil {
		return fmt.Errorf("failed recomputing cart total with error=%w", err)
	}
	return nil
}

// ensureCart upserts the owner's cart row and takes a row lock on it so
// concurrent mutations of the same cart serialize. Only the add-item path
// creates the row; a cart exists solely as the result of a successful add.
func ensureCart(c context.Context, tx pgx.Tx, userId uuid.UUID) (uuid.UUID, error) {
	_, err := tx.Exec(c, `
		INSERT INTO carts (id, user_id, total)
		VALUES ($1, $2, 0)
		ON CONFLICT (user_id) DO NOTHING`,
		uuid.New(), userId,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed upserting cart with error=%w", err)
	}
	return lockCart(c, tx, userId)
}

// lockCart takes a row lock on the owner's cart without creating it.
func lockCart(c context.Context, tx pgx.Tx, userId uuid.UUID) (uuid.UUID, error) {
	var cartId uuid.UUID
	err := tx.QueryRow(c, `SELECT id FROM carts WHERE user_id = $1 FOR UPDATE`, userId).
		Scan(&cartId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, commonErrors.ErrCartNotFound
		}
		return uuid.Nil, fmt.Errorf("failed locking cart with error=%w", err)
	}
	return cartId, nil
}

func (r *postgresRepository) inTx(
	c context.Context,
	fn func(tx pgx.Tx) error,
) error {
	logger := zerolog.Ctx(c)

	tx, err := r.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed initializing transaction with error=%w", err)
	}
	defer func() {
		if err := tx.Rollback(c); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Error().
				Err(err).
				Str(log.KeyProcess, "rolling back transaction").
				Msg("failed rolling back transaction")
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(c); err != nil {
		return fmt.Errorf("failed committing transaction with error=%w", err)
	}
	return nil
}

func (r *postgresRepository) FindCartByUserId(
	c context.Context,
	userId uuid.UUID,
) (Cart, error) {
	return findCartByUserId(c, r.pool, userId)
}

func (r *postgresRepository) AddItem(
	c context.Context,
	userId uuid.UUID,
	param AddItemParams,
) (Cart, error) {
	var cart Cart
	err := r.inTx(c, func(tx pgx.Tx) error {
		cartId, err := ensureCart(c, tx, userId)
		if err != nil {
			return err
		}

		_, err = tx.Exec(c, `
			INSERT INTO cart_items (id, cart_id, product_id, price, quantity, size, color)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New(),
			cartId,
			param.ProductID,
			inRepository.NumericFromDecimal(param.Price),
			param.Quantity,
			param.Size,
			param.Color,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return commonErrors.ErrItemInCart
			}
			return fmt.Errorf("failed inserting cart item with error=%w", err)
		}

		if err := recomputeTotal(c, tx, cartId); err != nil {
			return err
		}
		cart, err = findCartByUserId(c, tx, userId)
		return err
	})
	if err != nil {
		return Cart{}, err
	}
	return cart, nil
}

func (r *postgresRepository) UpdateItemQuantity(
	c context.Context,
	userId uuid.UUID,
	key ItemKey,
	quantity int32,
) (Cart, error) {
	var cart Cart
	err := r.inTx(c, func(tx pgx.Tx) error {
		cartId, err := lockCart(c, tx, userId)
		if err != nil {
			if errors.Is(err, commonErrors.ErrCartNotFound) {
				return commonErrors.ErrCartItemNotFound
			}
			return err
		}

		tag, err := tx.Exec(c, `
			UPDATE cart_items SET quantity = $1
			WHERE cart_id = $2 AND product_id = $3 AND size = $4 AND color = $5`,
			quantity, cartId, key.ProductID, key.Size, key.Color,
		)
		if err != nil {
			return fmt.Errorf("failed updating cart item with error=%w", err)
		}
		if tag.RowsAffected() == 0 {
			return commonErrors.ErrCartItemNotFound
		}

		if err := recomputeTotal(c, tx, cartId); err != nil {
			return err
		}
		cart, err = findCartByUserId(c, tx, userId)
		return err
	})
	if err != nil {
		return Cart{}, err
	}
	return cart, nil
}

func (r *postgresRepository) RemoveItem(
	c context.Context,
	userId uuid.UUID,
	key ItemKey,
) (Cart, error) {
	var cart Cart
	err := r.inTx(c, func(tx pgx.Tx) error {
		cartId, err := lockCart(c, tx, userId)
		if err != nil {
			// removing from a cart that was never created is a no-op
			if errors.Is(err, commonErrors.ErrCartNotFound) {
				cart = Cart{UserID: userId, Items: []CartItem{}}
				return nil
			}
			return err
		}

		// removing an absent item is a no-op
		_, err = tx.Exec(c, `
			DELETE FROM cart_items
			WHERE cart_id = $1 AND product_id = $2 AND size = $3 AND color = $4`,
			cartId, key.ProductID, key.Size, key.Color,
		)
		if err != nil {
			return fmt.Errorf("failed removing cart item with error=%w", err)
		}

		if err := recomputeTotal(c, tx, cartId); err != nil {
			return err
		}
		cart, err = findCartByUserId(c, tx, userId)
		return err
	})
	if err != nil {
		return Cart{}, err
	}
	return cart, nil
}

func (r *postgresRepository) Clear(c context.Context, userId uuid.UUID) error {
	_, err := r.pool.Exec(c, `DELETE FROM carts WHERE user_id = $1`, userId)
	if err != nil {
		return fmt.Errorf("failed clearing cart with error=%w", err)
	}
	return nil
}

func (r *postgresRepository) HasItem(
	c context.Context,
	userId uuid.UUID,
	key ItemKey,
) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(c, `
		SELECT EXISTS (
			SELECT 1
			FROM cart_items ci
			JOIN carts ca ON ca.id = ci.cart_id
			WHERE ca.user_id = $1 AND ci.product_id = $2 AND ci.size = $3 AND ci.color = $4
		)`,
		userId, key.ProductID, key.Size, key.Color,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed checking cart item with error=%w", err)
	}
	return exists, nil
}
