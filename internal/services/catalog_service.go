package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/repository"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const productCacheKeyPrefix = "product:"

// ProductPage is one page of search results. Total counts every match.
type ProductPage struct {
	Items []domain.Product `json:"items"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

type CatalogService struct {
	repo        repository.ProductRepository
	redisClient *redis.Client
	cacheTTL    time.Duration
	lookups     singleflight.Group
	now         func() time.Time
}

var _ ProductLookup = (*CatalogService)(nil)

func NewCatalogService(r repository.ProductRepository) *CatalogService {
	return &CatalogService{
		repo:     r,
		cacheTTL: time.Minute,
		now:      time.Now,
	}
}

// SetRedisClient enables the read-through cache for single product lookups.
func (s *CatalogService) SetRedisClient(client *redis.Client, ttl time.Duration) {
	s.redisClient = client
	if ttl > 0 {
		s.cacheTTL = ttl
	}
}

func cacheKey(id string) string {
	return productCacheKeyPrefix + id
}

// Get returns the product or ErrProductNotFound. Concurrent misses for the
// same id share one repository read.
func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Product, error) {
	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, cacheKey(id)).Bytes()
		switch {
		case err == nil:
			var p domain.Product
			if err := json.Unmarshal(cached, &p); err == nil {
				metrics.RecordCacheLookup("hit")
				return &p, nil
			}
			metrics.RecordCacheLookup("error")
		case errors.Is(err, redis.Nil):
			metrics.RecordCacheLookup("miss")
		default:
			metrics.RecordCacheLookup("error")
			slog.Warn("product cache unavailable", "product_id", id, "error", err)
		}
	}

	v, err, _ := s.lookups.Do(id, func() (any, error) {
		p, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, ErrProductNotFound
		}
		s.cache(ctx, p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	p := *v.(*domain.Product)
	return &p, nil
}

func (s *CatalogService) cache(ctx context.Context, p *domain.Product) {
	if s.redisClient == nil {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := s.redisClient.Set(ctx, cacheKey(p.ID), data, s.cacheTTL).Err(); err != nil {
		slog.Warn("failed to cache product", "product_id", p.ID, "error", err)
	}
}

func (s *CatalogService) invalidate(ctx context.Context, id string) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, cacheKey(id)).Err(); err != nil {
		slog.Warn("failed to invalidate product cache", "product_id", id, "error", err)
	}
}

func (s *CatalogService) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// Search filters, sorts and pages the catalog. Without a limit every match
// is returned.
func (s *CatalogService) Search(ctx context.Context, f domain.ProductFilter) (*ProductPage, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if f.Match(p) {
			matched = append(matched, p)
		}
	}
	if f.SortBy != "" {
		if err := sortProducts(matched, f.SortBy, f.SortDesc); err != nil {
			return nil, err
		}
	}

	page := &ProductPage{Total: len(matched), Page: 1, Limit: f.Limit}
	if f.Limit <= 0 {
		page.Items = matched
		return page, nil
	}
	if f.Page > 1 {
		page.Page = f.Page
	}
	start := (page.Page - 1) * f.Limit
	if start >= len(matched) {
		page.Items = []domain.Product{}
		return page, nil
	}
	end := min(start+f.Limit, len(matched))
	page.Items = matched[start:end]
	return page, nil
}

// sortProducts orders strings with French collation and prices numerically.
func sortProducts(products []domain.Product, field domain.SortField, desc bool) error {
	var cmp func(a, b domain.Product) int
	switch field {
	case domain.SortByPrice:
		cmp = func(a, b domain.Product) int {
			switch {
			case a.Price < b.Price:
				return -1
			case a.Price > b.Price:
				return 1
			}
			return 0
		}
	case domain.SortByName, domain.SortByBrand:
		col := collate.New(language.French)
		cmp = func(a, b domain.Product) int {
			if field == domain.SortByName {
				return col.CompareString(a.Name, b.Name)
			}
			return col.CompareString(a.Brand, b.Brand)
		}
	default:
		return invalid("unknown sort field %q", field)
	}
	sort.SliceStable(products, func(i, j int) bool {
		c := cmp(products[i], products[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
	return nil
}

func (s *CatalogService) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if err := p.Validate(); err != nil {
		return nil, asValidation(err)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	} else {
		existing, err := s.repo.FindByID(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, invalid("product %s already exists", p.ID)
		}
	}
	now := s.now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.repo.Save(ctx, &p); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	slog.Info("product created", "product_id", p.ID)
	return &p, nil
}

// Update merges the patch and validates the result before saving.
func (s *CatalogService) Update(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrProductNotFound
	}
	updated, err := patch.Apply(*current)
	if err != nil {
		return nil, asValidation(err)
	}
	updated.UpdatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, &updated); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	s.invalidate(ctx, id)
	return &updated, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrProductNotFound
	}
	s.invalidate(ctx, id)
	slog.Info("product deleted", "product_id", id)
	return nil
}

func (s *CatalogService) filtered(ctx context.Context, keep func(domain.Product) bool) ([]domain.Product, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Product{}
	for _, p := range all {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *CatalogService) Featured(ctx context.Context) ([]domain.Product, error) {
	return s.filtered(ctx, func(p domain.Product) bool { return p.IsFeatured })
}

func (s *CatalogService) NewArrivals(ctx context.Context) ([]domain.Product, error) {
	return s.filtered(ctx, func(p domain.Product) bool { return p.IsNew })
}

func (s *CatalogService) OnSale(ctx context.Context) ([]domain.Product, error) {
	return s.filtered(ctx, func(p domain.Product) bool { return p.IsOnSale })
}

// Seed saves products only when the catalog is empty. It reports how many
// were written.
func (s *CatalogService) Seed(ctx context.Context, products []domain.Product) (int, error) {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	now := s.now().UTC()
	for i := range products {
		p := products[i]
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		p.UpdatedAt = now
		if err := s.repo.Save(ctx, &p); err != nil {
			return i, err
		}
	}
	return len(products), nil
}

// DefaultCatalog is the starter assortment used when SEED_CATALOG is on.
func DefaultCatalog() []domain.Product {
	return []domain.Product{
		{
			ID:          "1",
			Name:        "J'adore",
			Brand:       "Dior",
			Price:       85000,
			Image:       "https://images.unsplash.com/photo-1541643600914-78b084683601?q=80&w=2069",
			Category:    "Pour Elle",
			Description: "Une fragrance florale lumineuse aux notes de rose et de jasmin",
			IsNew:       true,
			Stock:       12,
			IsFeatured:  true,
		},
		{
			ID:          "2",
			Name:        "N°5",
			Brand:       "Chanel",
			Price:       95000,
			Image:       "https://images.unsplash.com/photo-1523293182086-7651a899d37f?q=80&w=2070",
			Category:    "Pour Elle",
			Description: "L'essence même de la féminité dans un flacon iconique",
			IsOnSale:    true,
			Discount:    20,
			Stock:       8,
			IsFeatured:  true,
		},
	}
}
