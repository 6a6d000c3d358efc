package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"pedidos-api/internal/entities"
	"pedidos-api/internal/normalizer"
	"pedidos-api/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) CreateOrder(ctx context.Context, o entities.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockOrderRepo) CreateItems(ctx context.Context, orderID string, items []entities.Item) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *mockOrderRepo) DeleteItems(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *mockOrderRepo) UpdateOrder(ctx context.Context, orderID string, value float64, creationDate time.Time) error {
	args := m.Called(ctx, orderID, value, creationDate)
	return args.Error(0)
}

func (m *mockOrderRepo) GetOrderByID(ctx context.Context, orderID string) (entities.Order, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(entities.Order), args.Error(1)
}

func (m *mockOrderRepo) ListOrders(ctx context.Context, offset, limit int) ([]entities.Order, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Order), args.Error(1)
}

func (m *mockOrderRepo) CountOrders(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOrderRepo) DeleteOrder(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

// passthroughTxManager runs the callback without a real transaction.
type passthroughTxManager struct{}

func (passthroughTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// orderAPI mirrors the exported surface of the order service so the
// constructor's unexported return type can be named in this package.
type orderAPI interface {
	Create(ctx context.Context, payload []byte) (entities.Order, error)
	Get(ctx context.Context, orderID string) (entities.Order, error)
	List(ctx context.Context, page, size int) (entities.OrderList, error)
	Update(ctx context.Context, orderID string, payload []byte) (entities.Order, error)
	Delete(ctx context.Context, orderID string) error
}

func newOrderService(repo *mockOrderRepo) orderAPI {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.NewOrderService(logger, passthroughTxManager{}, repo, normalizer.New())
}

const legacyPayload = `{
	"numeroPedido": "o-1",
	"valorTotal": 100,
	"dataCriacao": "2023-01-01T00:00:00Z",
	"items": [{"idItem": "7", "quantidadeItem": 2, "valorItem": 50}]
}`

var storedOrder = entities.Order{
	OrderID:      "o-1",
	Value:        100,
	CreationDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	Items:        []entities.Item{{ProductID: 7, Quantity: 2, Price: 50}},
}

func TestOrderService_Create(t *testing.T) {
	t.Run("persists and reads back the order", func(t *testing.T) {
		repo := new(mockOrderRepo)
		repo.On("CreateOrder", mock.Anything, mock.MatchedBy(func(o entities.Order) bool {
			return o.OrderID == "o-1" && len(o.Items) == 1 && o.Items[0].ProductID == 7
		})).Return(nil).Once()
		repo.On("CreateItems", mock.Anything, "o-1", storedOrder.Items).Return(nil).Once()
		repo.On("GetOrderByID", mock.Anything, "o-1").Return(storedOrder, nil).Once()

		svc := newOrderService(repo)
		got, err := svc.Create(context.Background(), []byte(legacyPayload))

		require.NoError(t, err)
		assert.Equal(t, storedOrder, got)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate id surfaces as DUPLICATE_ORDER", func(t *testing.T) {
		repo := new(mockOrderRepo)
		repo.On("CreateOrder", mock.Anything, mock.Anything).
			Return(entities.ErrOrderAlreadyExists).Once()

		svc := newOrderService(repo)
		_, err := svc.Create(context.Background(), []byte(legacyPayload))

		assert.ErrorIs(t, err, entities.ErrOrderAlreadyExists)
		repo.AssertNotCalled(t, "CreateItems", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid payload never touches the repo", func(t *testing.T) {
		repo := new(mockOrderRepo)

		svc := newOrderService(repo)
		_, err := svc.Create(context.Background(), []byte(`{"numeroPedido": "o-1"}`))

		var domainErr *entities.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, entities.CodeValidation, domainErr.Code)
		repo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("other storage failures propagate unclassified", func(t *testing.T) {
		dbErr := errors.New("db error")
		repo := new(mockOrderRepo)
		repo.On("CreateOrder", mock.Anything, mock.Anything).Return(dbErr).Once()

		svc := newOrderService(repo)
		_, err := svc.Create(context.Background(), []byte(legacyPayload))

		assert.ErrorIs(t, err, dbErr)
		var domainErr *entities.Error
		assert.False(t, errors.As(err, &domainErr))
	})
}

func TestOrderService_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo := new(mockOrderRepo)
		repo.On("GetOrderByID", mock.Anything, "o-1").Return(storedOrder, nil).Once()

		svc := newOrderService(repo)
		got, err := svc.Get(context.Background(), "o-1")

		require.NoError(t, err)
		assert.Equal(t, storedOrder, got)
	})

	t.Run("absent is NOT_FOUND", func(t *testing.T) {
		repo := new(mockOrderRepo)
		repo.On("GetOrderByID", mock.Anything, "nope").
			Return(entities.Order{}, entities.ErrOrderNotFound).Once()

		svc := newOrderService(repo)
		_, err := svc.Get(context.Background(), "nope")

		assert.ErrorIs(t, err, entities.ErrOrderNotFound)
	})
}

func TestOrderService_List(t *testing.T) {
	testCases := []struct {
		name       string
		page, size int
		wantOffset int
		wantLimit  int
		wantPage   int
		wantSize   int
	}{
		{name: "defaults", page: 0, size: 0, wantOffset: 0, wantLimit: 10, wantPage: 1, wantSize: 10},
		{name: "explicit page and size", page: 3, size: 5, wantOffset: 10, wantLimit: 5, wantPage: 3, wantSize: 5},
		{name: "size capped at 100", page: 2, size: 500, wantOffset: 100, wantLimit: 100, wantPage: 2, wantSize: 100},
		{name: "negative page treated as first", page: -2, size: 10, wantOffset: 0, wantLimit: 10, wantPage: 1, wantSize: 10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(mockOrderRepo)
			repo.On("CountOrders", mock.Anything).Return(int64(42), nil).Once()
			repo.On("ListOrders", mock.Anything, tc.wantOffset, tc.wantLimit).
				Return([]entities.Order{storedOrder}, nil).Once()

			svc := newOrderService(repo)
			list, err := svc.List(context.Background(), tc.page, tc.size)

			require.NoError(t, err)
			assert.Equal(t, int64(42), list.Total)
			assert.Equal(t, tc.wantPage, list.Page)
			assert.Equal(t, tc.wantSize, list.Size)
			assert.Equal(t, []entities.Order{storedOrder}, list.Data)
			repo.AssertExpectations(t)
		})
	}
}

func TestOrderService_Update(t *testing.T) {
	updatePayload := `{
		"numeroPedido": "o-1",
		"valorTotal": 200,
		"dataCriacao": "2023-02-01T00:00:00Z",
		"items": [{"idItem": "9", "quantidadeItem": 1, "valorItem": 200}]
	}`
	newDate := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
	newItems := []entities.Item{{ProductID: 9, Quantity: 1, Price: 200}}
	updatedOrder := entities.Order{OrderID: "o-1", Value: 200, CreationDate: newDate, Items: newItems}

	t.Run("replaces the whole item set", func(t *testing.T) {
		repo := new(mockOrderRepo)
		repo.On("GetOrderByID", mock.Anything, "o-1").Return(storedOrder, nil).Once()
		repo.On("DeleteItems", mock.Anything, "o-1").Return(nil).Once()
		repo.On("UpdateOrder", mock.Anything, "o-1", float64(200), newDate).Return(nil).Once()
		repo.On("CreateItems", mock.Anything, "o-1", newItems).Return(nil).Once()
		repo.On("GetOrderByID", mock.Anything, "o-1").Return(updatedOrder, nil).Once()

		svc := newOrderService(repo)
		got, err := svc.Update(context.Background(), "o-1", []byte(updatePayload))

		require.NoError(t, err)
		assert.Equal(t, updatedOrder, got)
		repo.AssertExpectations(t)
	})

	t.Run("absent order is NOT_FOUND before normalization", func(t *testing.T) {
		repo := new(mockOrderRepo)
		repo.On("GetOrderByID", mock.Anything, "nope").
			Return(entities.Order{}, entities.ErrOrderNotFound).Once()

		svc := newOrderService(repo)
		_, err := svc.Update(context.Background(), "nope", []byte(`garbage`))

		assert.ErrorIs(t, err, entities.ErrOrderNotFound)
		repo.AssertNotCalled(t, "DeleteItems", mock.Anything, mock.Anything)
	})

	t.Run("invalid payload stops before any write", func(t *testing.T) {
		repo := new(mockOrderRepo)
		repo.On("GetOrderByID", mock.Anything, "o-1").Return(storedOrder, nil).Once()

		svc := newOrderService(repo)
		_, err := svc.Update(context.Background(), "o-1", []byte(`{"numeroPedido": "o-1"}`))

		var domainErr *entities.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, entities.CodeValidation, domainErr.Code)
		repo.AssertNotCalled(t, "DeleteItems", mock.Anything, mock.Anything)
	})
}

func TestOrderService_Delete(t *testing.T) {
	t.Run("existing order", func(t *testing.T) {
		repo := new(mockOrderRepo)
		repo.On("GetOrderByID", mock.Anything, "o-1").Return(storedOrder, nil).Once()
		repo.On("DeleteOrder", mock.Anything, "o-1").Return(nil).Once()

		svc := newOrderService(repo)
		err := svc.Delete(context.Background(), "o-1")

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("absent order is NOT_FOUND", func(t *testing.T) {
		repo := new(mockOrderRepo)
		repo.On("GetOrderByID", mock.Anything, "nope").
			Return(entities.Order{}, entities.ErrOrderNotFound).Once()

		svc := newOrderService(repo)
		err := svc.Delete(context.Background(), "nope")

		assert.ErrorIs(t, err, entities.ErrOrderNotFound)
		repo.AssertNotCalled(t, "DeleteOrder", mock.Anything, mock.Anything)
	})
}
