package kv

import (
	"context"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/kvstore"
	"storefront/internal/repository"
)

const ProductsKey = "products"

type productRepo struct {
	store kvstore.Store
	mu    sync.Mutex
}

func NewProductRepository(store kvstore.Store) repository.ProductRepository {
	return &productRepo{store: store}
}

func (r *productRepo) List(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if _, err := kvstore.LoadJSON(ctx, r.store, ProductsKey, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	products, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, nil
}

// Save replaces the product with the same id, or appends it.
func (r *productRepo) Save(ctx context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.List(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range products {
		if products[i].ID == product.ID {
			products[i] = *product
			replaced = true
			break
		}
	}
	if !replaced {
		products = append(products, *product)
	}
	return kvstore.SetJSON(ctx, r.store, ProductsKey, products)
}

func (r *productRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	products, err := r.List(ctx)
	if err != nil {
		return false, err
	}
	kept := products[:0]
	for _, p := range products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(products) {
		return false, nil
	}
	return true, kvstore.SetJSON(ctx, r.store, ProductsKey, kept)
}
