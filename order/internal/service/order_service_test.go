package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonErrors "github.com/velora/commerce/internal/common/errors"
	"github.com/velora/commerce/internal/events"
	inRepository "github.com/velora/commerce/internal/repository"
	"github.com/velora/commerce/order/internal/repository"
	"github.com/velora/commerce/order/pkg/request"
)

type mockOrderRepository struct {
	createFn      func(c context.Context, param repository.CreateOrderParams) (repository.Order, error)
	findByUserFn  func(c context.Context, userId uuid.UUID) ([]repository.Order, error)
	findByIdFn    func(c context.Context, orderId, userId uuid.UUID) (repository.Order, error)
	updateFn      func(c context.Context, orderId, userId uuid.UUID, param repository.UpdateOrderParams) (repository.Order, error)
	createdParams []repository.CreateOrderParams
}

func (m *mockOrderRepository) CreateOrder(
	c context.Context,
	param repository.CreateOrderParams,
) (repository.Order, error) {
	m.createdParams = append(m.createdParams, param)
	return m.createFn(c, param)
}

func (m *mockOrderRepository) FindOrdersByUserId(
	c context.Context,
	userId uuid.UUID,
) ([]repository.Order, error) {
	return m.findByUserFn(c, userId)
}

func (m *mockOrderRepository) FindOrderByIdAndUserId(
	c context.Context,
	orderId, userId uuid.UUID,
) (repository.Order, error) {
	return m.findByIdFn(c, orderId, userId)
}

func (m *mockOrderRepository) UpdateOrder(
	c context.Context,
	orderId, userId uuid.UUID,
	param repository.UpdateOrderParams,
) (repository.Order, error) {
	return m.updateFn(c, orderId, userId, param)
}

type mockProductFinder struct {
	products map[uuid.UUID]inRepository.Product
}

func (m *mockProductFinder) FindProductById(
	c context.Context,
	id uuid.UUID,
) (inRepository.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return inRepository.Product{}, commonErrors.ErrProductNotFound
	}
	return product, nil
}

type mockPublisher struct {
	published []events.OrderPlacedPayload
	err       error
}

func (m *mockPublisher) PublishOrderPlaced(
	c context.Context,
	payload events.OrderPlacedPayload,
) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, payload)
	return nil
}

func testCache() *redis.Client {
	return redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
}

func echoCreate(c context.Context, param repository.CreateOrderParams) (repository.Order, error) {
	return repository.Order{
		ID:              uuid.New(),
		UserID:          param.UserID,
		Items:           param.Items,
		TotalAmount:     param.TotalAmount,
		Status:          repository.StatusPending,
		ShippingAddress: param.ShippingAddress,
		PaymentMethod:   param.PaymentMethod,
		Notes:           param.Notes,
	}, nil
}

func validAddress() request.ShippingAddress {
	return request.ShippingAddress{
		FullName:   "Ada Lovelace",
		Address:    "12 Analytical Way",
		City:       "London",
		PostalCode: "EC1A 1BB",
		Country:    "UK",
		Phone:      "+44 20 7946 0001",
	}
}

func TestCreateOrderRecomputesTotalAndPublishes(t *testing.T) {
	productId := uuid.New()
	products := &mockProductFinder{products: map[uuid.UUID]inRepository.Product{
		productId: {
			ID:                 productId,
			Name:               "Linen Shirt",
			Price:              decimal.NewFromInt(100),
			IsOnSale:           true,
			DiscountPercentage: decimal.NewNullDecimal(decimal.NewFromInt(10)),
			Stock:              5,
		},
	}}
	repo := &mockOrderRepository{createFn: echoCreate}
	publisher := &mockPublisher{}
	svc := NewOrderService(repo, products, publisher, testCache())

	order, err := svc.CreateOrder(context.Background(), uuid.New(), request.CreateOrder{
		OrderItems: []request.OrderItem{
			{ProductID: productId, Quantity: 2, Size: "M", Color: "white"},
		},
		ShippingAddress: validAddress(),
		PaymentMethod:   "card",
		TotalAmount:     decimal.NewFromInt(180),
	})

	require.NoError(t, err)
	assert.Equal(t, repository.StatusPending, order.Status)
	assert.True(t, decimal.NewFromInt(180).Equal(order.TotalAmount))
	require.Len(t, publisher.published, 1)
	assert.Equal(t, order.ID, publisher.published[0].OrderID)
}

func TestCreateOrderDefaultsCountry(t *testing.T) {
	productId := uuid.New()
	products := &mockProductFinder{products: map[uuid.UUID]inRepository.Product{
		productId: {ID: productId, Name: "Linen Shirt", Price: decimal.NewFromInt(100), Stock: 5},
	}}
	repo := &mockOrderRepository{createFn: echoCreate}
	svc := NewOrderService(repo, products, &mockPublisher{}, testCache())

	address := validAddress()
	address.Country = ""
	order, err := svc.CreateOrder(context.Background(), uuid.New(), request.CreateOrder{
		OrderItems: []request.OrderItem{
			{ProductID: productId, Quantity: 1, Size: "M", Color: "white"},
		},
		ShippingAddress: address,
		PaymentMethod:   "card",
		TotalAmount:     decimal.NewFromInt(100),
	})

	require.NoError(t, err)
	assert.Equal(t, "Pakistan", order.ShippingAddress.Country)
}

func TestCreateOrderRejectsTamperedTotal(t *testing.T) {
	productId := uuid.New()
	products := &mockProductFinder{products: map[uuid.UUID]inRepository.Product{
		productId: {ID: productId, Name: "Linen Shirt", Price: decimal.NewFromInt(100), Stock: 5},
	}}
	repo := &mockOrderRepository{createFn: echoCreate}
	svc := NewOrderService(repo, products, &mockPublisher{}, testCache())

	_, err := svc.CreateOrder(context.Background(), uuid.New(), request.CreateOrder{
		OrderItems: []request.OrderItem{
			{ProductID: productId, Quantity: 1, Size: "M", Color: "white"},
		},
		ShippingAddress: validAddress(),
		PaymentMethod:   "card",
		TotalAmount:     decimal.NewFromInt(1),
	})

	assert.ErrorIs(t, err, commonErrors.ErrTotalMismatch)
	assert.Empty(t, repo.createdParams)
}

func TestCreateOrderToleratesRoundingDrift(t *testing.T) {
	productId := uuid.New()
	products := &mockProductFinder{products: map[uuid.UUID]inRepository.Product{
		productId: {ID: productId, Name: "Socks", Price: decimal.RequireFromString("9.99"), Stock: 5},
	}}
	repo := &mockOrderRepository{createFn: echoCreate}
	svc := NewOrderService(repo, products, &mockPublisher{}, testCache())

	_, err := svc.CreateOrder(context.Background(), uuid.New(), request.CreateOrder{
		OrderItems: []request.OrderItem{
			{ProductID: productId, Quantity: 1, Size: "M", Color: "white"},
		},
		ShippingAddress: validAddress(),
		PaymentMethod:   "card",
		TotalAmount:     decimal.RequireFromString("10.00"),
	})

	require.NoError(t, err)
}

func TestCreateOrderNamesMissingAddressField(t *testing.T) {
	address := validAddress()
	address.PostalCode = ""
	svc := NewOrderService(
		&mockOrderRepository{},
		&mockProductFinder{},
		&mockPublisher{},
		testCache(),
	)

	_, err := svc.CreateOrder(context.Background(), uuid.New(), request.CreateOrder{
		OrderItems: []request.OrderItem{
			{ProductID: uuid.New(), Quantity: 1, Size: "M", Color: "white"},
		},
		ShippingAddress: address,
		PaymentMethod:   "card",
	})

	require.Error(t, err)
	assert.Equal(t, "postalCode is required in shipping address", err.Error())
}

func TestCreateOrderChecksAddressFieldsInOrder(t *testing.T) {
	address := validAddress()
	address.Phone = ""
	address.City = ""
	svc := NewOrderService(
		&mockOrderRepository{},
		&mockProductFinder{},
		&mockPublisher{},
		testCache(),
	)

	_, err := svc.CreateOrder(context.Background(), uuid.New(), request.CreateOrder{
		OrderItems: []request.OrderItem{
			{ProductID: uuid.New(), Quantity: 1, Size: "M", Color: "white"},
		},
		ShippingAddress: address,
		PaymentMethod:   "card",
	})

	require.Error(t, err)
	assert.Equal(t, "phone is required in shipping address", err.Error())
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	svc := NewOrderService(
		&mockOrderRepository{},
		&mockProductFinder{},
		&mockPublisher{},
		testCache(),
	)

	_, err := svc.CreateOrder(context.Background(), uuid.New(), request.CreateOrder{
		ShippingAddress: validAddress(),
		PaymentMethod:   "card",
	})

	require.Error(t, err)
	assert.Equal(t, "Order must contain at least one item", err.Error())
}

func TestCreateOrderRejectsMissingTotalAmount(t *testing.T) {
	svc := NewOrderService(
		&mockOrderRepository{},
		&mockProductFinder{},
		&mockPublisher{},
		testCache(),
	)

	// a body without totalAmount decodes to zero and must fail as a missing
	// field, not as a price mismatch
	_, err := svc.CreateOrder(context.Background(), uuid.New(), request.CreateOrder{
		OrderItems: []request.OrderItem{
			{ProductID: uuid.New(), Quantity: 1, Size: "M", Color: "white"},
		},
		ShippingAddress: validAddress(),
		PaymentMethod:   "card",
	})

	require.Error(t, err)
	assert.NotErrorIs(t, err, commonErrors.ErrTotalMismatch)
	assert.Equal(t, "Order totalAmount is required", err.Error())
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	productId := uuid.New()
	products := &mockProductFinder{products: map[uuid.UUID]inRepository.Product{
		productId: {ID: productId, Name: "Coat", Price: decimal.NewFromInt(200), Stock: 1},
	}}
	svc := NewOrderService(
		&mockOrderRepository{},
		products,
		&mockPublisher{},
		testCache(),
	)

	_, err := svc.CreateOrder(context.Background(), uuid.New(), request.CreateOrder{
		OrderItems: []request.OrderItem{
			{ProductID: productId, Quantity: 3, Size: "M", Color: "navy"},
		},
		ShippingAddress: validAddress(),
		PaymentMethod:   "card",
		TotalAmount:     decimal.NewFromInt(600),
	})

	assert.ErrorIs(t, err, commonErrors.ErrInsufficientStock)
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	svc := NewOrderService(
		&mockOrderRepository{},
		&mockProductFinder{},
		&mockPublisher{},
		testCache(),
	)

	_, err := svc.CreateOrder(context.Background(), uuid.New(), request.CreateOrder{
		OrderItems: []request.OrderItem{
			{ProductID: uuid.New(), Quantity: 1, Size: "M", Color: "white"},
		},
		ShippingAddress: validAddress(),
		PaymentMethod:   "card",
	})

	assert.ErrorIs(t, err, commonErrors.ErrProductNotFound)
}

func TestCreateOrderSucceedsWhenPublishFails(t *testing.T) {
	productId := uuid.New()
	products := &mockProductFinder{products: map[uuid.UUID]inRepository.Product{
		productId: {ID: productId, Name: "Belt", Price: decimal.NewFromInt(30), Stock: 5},
	}}
	repo := &mockOrderRepository{createFn: echoCreate}
	publisher := &mockPublisher{err: assert.AnError}
	svc := NewOrderService(repo, products, publisher, testCache())

	order, err := svc.CreateOrder(context.Background(), uuid.New(), request.CreateOrder{
		OrderItems: []request.OrderItem{
			{ProductID: productId, Quantity: 1, Size: "M", Color: "brown"},
		},
		ShippingAddress: validAddress(),
		PaymentMethod:   "card",
		TotalAmount:     decimal.NewFromInt(30),
	})

	require.NoError(t, err)
	assert.Equal(t, repository.StatusPending, order.Status)
}

func TestUpdateOrderRejectsUnknownStatus(t *testing.T) {
	svc := NewOrderService(
		&mockOrderRepository{},
		&mockProductFinder{},
		&mockPublisher{},
		testCache(),
	)

	status := "TELEPORTED"
	_, err := svc.UpdateOrder(context.Background(), uuid.New(), uuid.New(), request.UpdateOrder{
		Status: &status,
	})

	require.Error(t, err)
	assert.Equal(t, "Invalid order status", err.Error())
}

func TestUpdateOrderScopedToOwner(t *testing.T) {
	repo := &mockOrderRepository{
		updateFn: func(c context.Context, orderId, userId uuid.UUID, param repository.UpdateOrderParams) (repository.Order, error) {
			return repository.Order{}, commonErrors.ErrOrderNotFound
		},
	}
	svc := NewOrderService(repo, &mockProductFinder{}, &mockPublisher{}, testCache())

	status := repository.StatusCancelled
	_, err := svc.UpdateOrder(context.Background(), uuid.New(), uuid.New(), request.UpdateOrder{
		Status: &status,
	})

	assert.ErrorIs(t, err, commonErrors.ErrOrderNotFound)
}
