package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pedidos-api/internal/entities"
	"pedidos-api/pkg/trm"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
)

type OrderRepo interface {
	CreateOrder(ctx context.Context, o entities.Order) error
	CreateItems(ctx context.Context, orderID string, items []entities.Item) error
	DeleteItems(ctx context.Context, orderID string) error
	UpdateOrder(ctx context.Context, orderID string, value float64, creationDate time.Time) error
	GetOrderByID(ctx context.Context, orderID string) (entities.Order, error)
	ListOrders(ctx context.Context, offset, limit int) ([]entities.Order, error)
	CountOrders(ctx context.Context) (int64, error)
	DeleteOrder(ctx context.Context, orderID string) error
}

type OrderNormalizer interface {
	Normalize(payload []byte) (entities.Order, error)
}

type orderService struct {
	logger     *slog.Logger
	txManager  trm.Manager
	repo       OrderRepo
	normalizer OrderNormalizer
}

func NewOrderService(logger *slog.Logger, txManager trm.Manager, repo OrderRepo, normalizer OrderNormalizer) *orderService {
	return &orderService{
		logger:     logger.With(slog.String("service", "order")),
		txManager:  txManager,
		repo:       repo,
		normalizer: normalizer,
	}
}

// Create normalizes the raw payload and persists the order and its items in
// one transaction. A conflicting order_id surfaces as ErrOrderAlreadyExists;
// any other storage failure propagates unclassified.
func (s *orderService) Create(ctx context.Context, payload []byte) (entities.Order, error) {
	order, err := s.normalizer.Normalize(payload)
	if err != nil {
		return entities.Order{}, err
	}

	var created entities.Order
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateOrder(ctx, order); err != nil {
			return err
		}
		if err := s.repo.CreateItems(ctx, order.OrderID, order.Items); err != nil {
			return err
		}

		stored, err := s.repo.GetOrderByID(ctx, order.OrderID)
		if err != nil {
			return fmt.Errorf("failed to read back order: %w", err)
		}
		created = stored
		return nil
	})
	if err != nil {
		return entities.Order{}, err
	}

	s.logger.DebugContext(ctx, "order created", slog.String("order_id", created.OrderID))
	return created, nil
}

func (s *orderService) Get(ctx context.Context, orderID string) (entities.Order, error) {
	return s.repo.GetOrderByID(ctx, orderID)
}

// List returns one page of orders, most recent first, plus the unconditional
// total count. page defaults to 1, size to 10 and is capped at 100.
func (s *orderService) List(ctx context.Context, page, size int) (entities.OrderList, error) {
	if page < 1 {
		page = defaultPage
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	total, err := s.repo.CountOrders(ctx)
	if err != nil {
		return entities.OrderList{}, err
	}

	data, err := s.repo.ListOrders(ctx, (page-1)*size, size)
	if err != nil {
		return entities.OrderList{}, err
	}

	return entities.OrderList{Total: total, Page: page, Size: size, Data: data}, nil
}

// Update replaces the whole order: scalar fields and the complete item set,
// atomically. There is no merge or partial-item update; concurrent updates
// are not fenced, the last transaction to commit wins.
func (s *orderService) Update(ctx context.Context, orderID string, payload []byte) (entities.Order, error) {
	if _, err := s.repo.GetOrderByID(ctx, orderID); err != nil {
		return entities.Order{}, err
	}

	order, err := s.normalizer.Normalize(payload)
	if err != nil {
		return entities.Order{}, err
	}

	var updated entities.Order
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.repo.DeleteItems(ctx, orderID); err != nil {
			return err
		}
		if err := s.repo.UpdateOrder(ctx, orderID, order.Value, order.CreationDate); err != nil {
			return err
		}
		if err := s.repo.CreateItems(ctx, orderID, order.Items); err != nil {
			return err
		}

		stored, err := s.repo.GetOrderByID(ctx, orderID)
		if err != nil {
			return fmt.Errorf("failed to read back order: %w", err)
		}
		updated = stored
		return nil
	})
	if err != nil {
		return entities.Order{}, err
	}

	s.logger.DebugContext(ctx, "order updated", slog.String("order_id", orderID))
	return updated, nil
}

func (s *orderService) Delete(ctx context.Context, orderID string) error {
	if _, err := s.repo.GetOrderByID(ctx, orderID); err != nil {
		return err
	}
	if err := s.repo.DeleteOrder(ctx, orderID); err != nil {
		return err
	}

	s.logger.DebugContext(ctx, "order deleted", slog.String("order_id", orderID))
	return nil
}
