package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	commonErrors "github.com/velora/commerce/internal/common/errors"
	"github.com/velora/commerce/internal/log"
	inRepository "github.com/velora/commerce/internal/repository"
	"github.com/velora/commerce/order/pkg/request"
)

type OrderItem struct {
	ProductID uuid.UUID
	Name      string
	Image     string
	Price     decimal.Decimal
	Quantity  int32
	Size      string
	Color     string
}

type Order struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Items           []OrderItem
	TotalAmount     decimal.Decimal
	Status          string
	ShippingAddress request.ShippingAddress
	PaymentMethod   string
	Notes           string
	OrderDate       time.Time
	DeliveryDate    *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type CreateOrderParams struct {
	UserID          uuid.UUID
	Items           []OrderItem
	TotalAmount     decimal.Decimal
	ShippingAddress request.ShippingAddress
	PaymentMethod   string
	Notes           string
}

type UpdateOrderParams struct {
	Status          *string
	Notes           *string
	DeliveryDate    *time.Time
	ShippingAddress *request.ShippingAddress
}

type OrderRepository interface {
	CreateOrder(c context.Context, param CreateOrderParams) (Order, error)
	FindOrdersByUserId(c context.Context, userId uuid.UUID) ([]Order, error)
	FindOrderByIdAndUserId(c context.Context, orderId, userId uuid.UUID) (Order, error)
	UpdateOrder(c context.Context, orderId, userId uuid.UUID, param UpdateOrderParams) (Order, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &postgresRepository{pool: pool}
}

// CreateOrder persists the order with its items and empties the owner's cart
// in one transaction, a crash between the steps can never leave a placed
// order alongside a still-filled cart.
func (r *postgresRepository) CreateOrder(
	c context.Context,
	param CreateOrderParams,
) (Order, error) {
	logger := zerolog.Ctx(c)

	tx, err := r.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		return Order{}, fmt.Errorf("failed initializing transaction with error=%w", err)
	}
	defer func() {
		if err := tx.Rollback(c); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Error().
				Err(err).
				Str(log.KeyProcess, "rolling back transaction").
				Msg("failed rolling back transaction")
		}
	}()

	address, err := json.Marshal(param.ShippingAddress)
	if err != nil {
		return Order{}, fmt.Errorf("failed marshalling shipping address with error=%w", err)
	}

	orderId := uuid.New()
	var order Order
	err = tx.QueryRow(c, `
		INSERT INTO orders (id, user_id, status, total_amount, shipping_address, payment_method, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, user_id, status, payment_method, notes, order_date, created_at, updated_at`,
		orderId,
		param.UserID,
		StatusPending,
		inRepository.NumericFromDecimal(param.TotalAmount),
		address,
		param.PaymentMethod,
		param.Notes,
	).Scan(
		&order.ID, &order.UserID, &order.Status, &order.PaymentMethod,
		&order.Notes, &order.OrderDate, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return Order{}, fmt.Errorf("failed inserting order with error=%w", err)
	}
	order.TotalAmount = param.TotalAmount
	order.ShippingAddress = param.ShippingAddress

	for _, item := range param.Items {
		_, err = tx.Exec(c, `
			INSERT INTO order_items (id, order_id, product_id, name, image, price, quantity, size, color)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			uuid.New(),
			orderId,
			item.ProductID,
			item.Name,
			item.Image,
			inRepository.NumericFromDecimal(item.Price),
			item.Quantity,
			item.Size,
			item.Color,
		)
		if err != nil {
			return Order{}, fmt.Errorf("failed inserting order item with error=%w", err)
		}
	}
	order.Items = param.Items

	if _, err = tx.Exec(c, `DELETE FROM carts WHERE user_id = $1`, param.UserID); err != nil {
		return Order{}, fmt.Errorf("failed clearing cart with error=%w", err)
	}

	if err = tx.Commit(c); err != nil {
		return Order{}, fmt.Errorf("failed committing transaction with error=%w", err)
	}
	return order, nil
}

func (r *postgresRepository) findOrderItems(
	c context.Context,
	orderId uuid.UUID,
) ([]OrderItem, error) {
	rows, err := r.pool.Query(c, `
		SELECT product_id, name, image, price, quantity, size, color
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at`,
		orderId,
	)
	if err != nil {
		return nil, fmt.Errorf("failed finding order items with error=%w", err)
	}
	defer rows.Close()

	items := []OrderItem{}
	for rows.Next() {
		var (
			item  OrderItem
			price pgtype.Numeric
		)
		err := rows.Scan(
			&item.ProductID, &item.Name, &item.Image, &price,
			&item.Quantity, &item.Size, &item.Color,
		)
		if err != nil {
			return nil, fmt.Errorf("failed scanning order item with error=%w", err)
		}
		item.Price = inRepository.DecimalFromNumeric(price)
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		order   Order
		total   pgtype.Numeric
		address []byte
	)
	err := row.Scan(
		&order.ID, &order.UserID, &order.Status, &total, &address,
		&order.PaymentMethod, &order.Notes, &order.OrderDate,
		&order.DeliveryDate, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return Order{}, err
	}
	order.TotalAmount = inRepository.DecimalFromNumeric(total)
	if err := json.Unmarshal(address, &order.ShippingAddress); err != nil {
		return Order{}, fmt.Errorf("failed unmarshalling shipping address with error=%w", err)
	}
	return order, nil
}

const orderColumns = `id, user_id, status, total_amount, shipping_address,
	payment_method, notes, order_date, delivery_date, created_at, updated_at`

func (r *postgresRepository) FindOrdersByUserId(
	c context.Context,
	userId uuid.UUID,
) ([]Order, error) {
	rows, err := r.pool.Query(
		c,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY order_date DESC`,
		userId,
	)
	if err != nil {
		return nil, fmt.Errorf("failed finding orders with error=%w", err)
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed scanning order with error=%w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := r.findOrderItems(c, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *postgresRepository) FindOrderByIdAndUserId(
	c context.Context,
	orderId, userId uuid.UUID,
) (Order, error) {
	row := r.pool.QueryRow(
		c,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`,
		orderId, userId,
	)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, commonErrors.ErrOrderNotFound
		}
		return Order{}, fmt.Errorf("failed finding order with error=%w", err)
	}

	items, err := r.findOrderItems(c, order.ID)
	if err != nil {
		return Order{}, err
	}
	order.Items = items
	return order, nil
}

func (r *postgresRepository) UpdateOrder(
	c context.Context,
	orderId, userId uuid.UUID,
	param UpdateOrderParams,
) (Order, error) {
	var address []byte
	if param.ShippingAddress != nil {
		marshalled, err := json.Marshal(param.ShippingAddress)
		if err != nil {
			return Order{}, fmt.Errorf("failed marshalling shipping address with error=%w", err)
		}
		address = marshalled
	}

	row := r.pool.QueryRow(c, `
		UPDATE orders
		SET status = COALESCE($1, status),
			notes = COALESCE($2, notes),
			delivery_date = COALESCE($3, delivery_date),
			shipping_address = COALESCE($4, shipping_address),
			updated_at = now()
		WHERE id = $5 AND user_id = $6
		RETURNING `+orderColumns,
		param.Status, param.Notes, param.DeliveryDate, address, orderId, userId,
	)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, commonErrors.ErrOrderNotFound
		}
		return Order{}, fmt.Errorf("failed updating order with error=%w", err)
	}

	items, err := r.findOrderItems(c, order.ID)
	if err != nil {
		return Order{}, err
	}
	order.Items = items
	return order, nil
}
