package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/kvstore"
)

// ProductLookup resolves catalog products. Unknown ids return
// ErrProductNotFound.
type ProductLookup interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
}

func CartKey(deviceID string) string {
	return "cart:" + deviceID
}

// CartService keeps one cart per device. Every mutation stores the whole
// cart; concurrent writers from different processes race, last write wins.
type CartService struct {
	store   kvstore.Store
	catalog ProductLookup
	mu      sync.Mutex
}

var _ CartClearer = (*CartService)(nil)

func NewCartService(store kvstore.Store, catalog ProductLookup) *CartService {
	return &CartService{store: store, catalog: catalog}
}

// Get loads the cart. A stored value that no longer parses is wiped and the
// cart starts empty.
func (s *CartService) Get(ctx context.Context, deviceID string) (*domain.Cart, error) {
	cart := &domain.Cart{}
	_, err := kvstore.LoadJSON(ctx, s.store, CartKey(deviceID), cart)
	var decodeErr *kvstore.DecodeError
	if errors.As(err, &decodeErr) {
		slog.Warn("discarding unreadable cart", "device_id", deviceID, "error", err)
		if err := s.store.Delete(ctx, CartKey(deviceID)); err != nil {
			return nil, err
		}
		return &domain.Cart{Items: []domain.CartItem{}}, nil
	}
	if err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return cart, nil
}

func (s *CartService) mutate(ctx context.Context, deviceID string, fn func(*domain.Cart) (bool, error)) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.Get(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	changed, err := fn(cart)
	if err != nil {
		return nil, err
	}
	if !changed {
		return cart, nil
	}
	if err := kvstore.SetJSON(ctx, s.store, CartKey(deviceID), cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem adds one unit of the product at its current effective price.
// Products the catalog does not know are ignored.
func (s *CartService) AddItem(ctx context.Context, deviceID, productID string) (*domain.Cart, error) {
	return s.mutate(ctx, deviceID, func(c *domain.Cart) (bool, error) {
		p, err := s.catalog.Get(ctx, productID)
		if errors.Is(err, ErrProductNotFound) {
			slog.Debug("add to cart ignored, unknown product", "product_id", productID)
			return false, nil
		}
		if err != nil {
			return false, err
		}
		c.Add(*p)
		return true, nil
	})
}

func (s *CartService) RemoveItem(ctx context.Context, deviceID, productID string) (*domain.Cart, error) {
	return s.mutate(ctx, deviceID, func(c *domain.Cart) (bool, error) {
		before := len(c.Items)
		c.Remove(productID)
		return len(c.Items) != before, nil
	})
}

// SetQuantity overwrites a line's quantity; zero removes the line.
func (s *CartService) SetQuantity(ctx context.Context, deviceID, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 0 {
		return nil, invalid("quantity must not be negative")
	}
	return s.mutate(ctx, deviceID, func(c *domain.Cart) (bool, error) {
		return c.SetQuantity(productID, quantity), nil
	})
}

// Replace stores a client-held snapshot as is, after merging duplicate lines.
func (s *CartService) Replace(ctx context.Context, deviceID string, items []domain.CartItem) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := &domain.Cart{Items: append([]domain.CartItem(nil), items...)}
	cart.Normalize()
	for _, it := range cart.Items {
		if it.Price < 0 {
			return nil, invalid("item %s: price must not be negative", it.ProductID)
		}
	}
	if err := kvstore.SetJSON(ctx, s.store, CartKey(deviceID), cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear empties the cart and removes its stored value.
func (s *CartService) Clear(ctx context.Context, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Delete(ctx, CartKey(deviceID))
}
