// Package gormrepo implements the repositories on a relational database via
// gorm. The dialector (MySQL, PostgreSQL, SQLite in tests) is chosen by the
// caller.
package gormrepo

import (
	"context"
	"errors"
	"log/slog"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("row_id ASC")
	})
}

// Create inserts the order and its items in one transaction. A taken id is
// reported as repository.ErrDuplicate.
func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.Order{}).Where("id = ?", order.ID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return repository.ErrDuplicate
		}
		return tx.Create(order).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = repository.ErrDuplicate
	}
	if err != nil {
		slog.Error("order insert failed", "order_id", order.ID, "error", err)
		return err
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := preloadItems(r.db.WithContext(ctx)).First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context, limit int) ([]domain.Order, error) {
	q := preloadItems(r.db.WithContext(ctx)).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.Order
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	err := preloadItems(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":     order.Status,
			"updated_at": order.UpdatedAt,
		}).Error
}
