// Package kv implements the repositories on top of the key/value store. Each
// collection lives under one key and is rewritten whole on every mutation.
package kv

import (
	"context"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/kvstore"
	"storefront/internal/repository"
)

const OrdersKey = "orders"

type orderRepo struct {
	store kvstore.Store
	mu    sync.Mutex
}

func NewOrderRepository(store kvstore.Store) repository.OrderRepository {
	return &orderRepo{store: store}
}

func (r *orderRepo) load(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if _, err := kvstore.LoadJSON(ctx, r.store, OrdersKey, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Create prepends, keeping the stored list newest first.
func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range orders {
		if orders[i].ID == order.ID {
			return repository.ErrDuplicate
		}
	}
	orders = append([]domain.Order{*order}, orders...)
	return kvstore.SetJSON(ctx, r.store, OrdersKey, orders)
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	orders, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}
	return nil, nil
}

func (r *orderRepo) List(ctx context.Context, limit int) ([]domain.Order, error) {
	orders, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Order
	for _, o := range orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range orders {
		if orders[i].ID == order.ID {
			orders[i].Status = order.Status
			orders[i].UpdatedAt = order.UpdatedAt
			return kvstore.SetJSON(ctx, r.store, OrdersKey, orders)
		}
	}
	return nil
}
