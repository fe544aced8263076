package repository

import (
	"context"
	"errors"

	"storefront/internal/domain"
)

// ErrDuplicate is returned when a unique field (order id, user email) is
// already taken.
var ErrDuplicate = errors.New("repository: duplicate record")

// Lookups return (nil, nil) when the record does not exist; the services turn
// that into their own not-found errors.

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	// List returns orders newest first; limit <= 0 means all.
	List(ctx context.Context, limit int) ([]domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	// UpdateStatus writes status and UpdatedAt only; items and totals are frozen.
	UpdateStatus(ctx context.Context, order *domain.Order) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Count(ctx context.Context) (int64, error)
}

type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	Save(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) (bool, error)
}
