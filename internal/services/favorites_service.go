package services

import (
	"context"
	"slices"
	"sync"

	"storefront/internal/kvstore"
)

func FavoritesKey(deviceID string) string {
	return "favorites:" + deviceID
}

// FavoritesService keeps a set of product ids per device, in insertion order.
type FavoritesService struct {
	store kvstore.Store
	mu    sync.Mutex
}

func NewFavoritesService(store kvstore.Store) *FavoritesService {
	return &FavoritesService{store: store}
}

func (s *FavoritesService) List(ctx context.Context, deviceID string) ([]string, error) {
	ids := []string{}
	if _, err := kvstore.LoadJSON(ctx, s.store, FavoritesKey(deviceID), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *FavoritesService) Contains(ctx context.Context, deviceID, productID string) (bool, error) {
	ids, err := s.List(ctx, deviceID)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, productID), nil
}

// Add is idempotent.
func (s *FavoritesService) Add(ctx context.Context, deviceID, productID string) ([]string, error) {
	if productID == "" {
		return nil, invalid("product id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.List(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if slices.Contains(ids, productID) {
		return ids, nil
	}
	ids = append(ids, productID)
	return ids, kvstore.SetJSON(ctx, s.store, FavoritesKey(deviceID), ids)
}

func (s *FavoritesService) Remove(ctx context.Context, deviceID, productID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.List(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	i := slices.Index(ids, productID)
	if i < 0 {
		return ids, nil
	}
	ids = slices.Delete(ids, i, i+1)
	return ids, kvstore.SetJSON(ctx, s.store, FavoritesKey(deviceID), ids)
}
