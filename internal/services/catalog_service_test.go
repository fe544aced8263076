package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/kvstore"
	"storefront/internal/repository"
	"storefront/internal/repository/kv"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func seededCatalog(t *testing.T) (*CatalogService, repository.ProductRepository) {
	t.Helper()
	repo := kv.NewProductRepository(kvstore.NewMemory())
	service := NewCatalogService(repo)
	products := []domain.Product{
		{ID: "a", Name: "Éclat", Brand: "Lanvin", Price: 40000, Category: "Pour Elle", IsNew: true},
		{ID: "b", Name: "bois d'argent", Brand: "Dior", Price: 120000, Category: "Unisexe", IsOnSale: true, Discount: 10},
		{ID: "c", Name: "Ambre Nuit", Brand: "Dior", Price: 95000, Category: "Unisexe", IsFeatured: true},
		{ID: "d", Name: "Coco", Brand: "Chanel", Price: 85000, Category: "Pour Elle", Description: "notes ambrées"},
	}
	n, err := service.Seed(context.Background(), products)
	require.NoError(t, err)
	require.Equal(t, len(products), n)
	return service, repo
}

func ids(products []domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestCatalogService_Search(t *testing.T) {
	tests := []struct {
		name          string
		filter        domain.ProductFilter
		expectedIDs   []string
		expectedTotal int
		expectError   bool
	}{
		{
			name:          "no filter keeps insertion order",
			filter:        domain.ProductFilter{},
			expectedIDs:   []string{"a", "b", "c", "d"},
			expectedTotal: 4,
		},
		{
			name:          "query matches name, brand and description case-insensitively",
			filter:        domain.ProductFilter{Query: "AMBR"},
			expectedIDs:   []string{"c", "d"},
			expectedTotal: 2,
		},
		{
			name:          "category and brand combine",
			filter:        domain.ProductFilter{Category: "Unisexe", Brand: "Dior"},
			expectedIDs:   []string{"b", "c"},
			expectedTotal: 2,
		},
		{
			name:          "price range is inclusive",
			filter:        domain.ProductFilter{MinPrice: ptr(int64(85000)), MaxPrice: ptr(int64(95000))},
			expectedIDs:   []string{"c", "d"},
			expectedTotal: 2,
		},
		{
			name:          "flags",
			filter:        domain.ProductFilter{IsNew: ptr(true)},
			expectedIDs:   []string{"a"},
			expectedTotal: 1,
		},
		{
			name:          "sort by price descending",
			filter:        domain.ProductFilter{SortBy: domain.SortByPrice, SortDesc: true},
			expectedIDs:   []string{"b", "c", "d", "a"},
			expectedTotal: 4,
		},
		{
			name:          "sort by name uses French collation",
			filter:        domain.ProductFilter{SortBy: domain.SortByName},
			expectedIDs:   []string{"c", "b", "d", "a"},
			expectedTotal: 4,
		},
		{
			name:          "sort by brand is stable",
			filter:        domain.ProductFilter{SortBy: domain.SortByBrand},
			expectedIDs:   []string{"d", "b", "c", "a"},
			expectedTotal: 4,
		},
		{
			name:          "second page",
			filter:        domain.ProductFilter{SortBy: domain.SortByPrice, Page: 2, Limit: 3},
			expectedIDs:   []string{"b"},
			expectedTotal: 4,
		},
		{
			name:          "page past the end",
			filter:        domain.ProductFilter{Page: 5, Limit: 3},
			expectedIDs:   []string{},
			expectedTotal: 4,
		},
		{
			name:        "unknown sort field",
			filter:      domain.ProductFilter{SortBy: "popularity"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _ := seededCatalog(t)

			page, err := service.Search(context.Background(), tt.filter)

			if tt.expectError {
				assert.True(t, IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedIDs, ids(page.Items))
			assert.Equal(t, tt.expectedTotal, page.Total)
		})
	}
}

func TestCatalogService_Collections(t *testing.T) {
	service, _ := seededCatalog(t)
	ctx := context.Background()

	featured, err := service.Featured(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids(featured))

	arrivals, err := service.NewArrivals(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(arrivals))

	sale, err := service.OnSale(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(sale))
}

func TestCatalogService_Create(t *testing.T) {
	tests := []struct {
		name        string
		product     domain.Product
		expectError bool
	}{
		{
			name:    "generates an id",
			product: domain.Product{Name: "Oud", Brand: "Maison", Price: 1000},
		},
		{
			name:    "keeps a new explicit id",
			product: domain.Product{ID: "z", Name: "Oud", Brand: "Maison", Price: 1000},
		},
		{
			name:        "duplicate id",
			product:     domain.Product{ID: "a", Name: "Oud", Brand: "Maison", Price: 1000},
			expectError: true,
		},
		{
			name:        "missing name",
			product:     domain.Product{Brand: "Maison", Price: 1000},
			expectError: true,
		},
		{
			name:        "discount over 100",
			product:     domain.Product{Name: "Oud", Brand: "Maison", Price: 1000, Discount: 120},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo := seededCatalog(t)

			created, err := service.Create(context.Background(), tt.product)

			if tt.expectError {
				assert.True(t, IsValidation(err), "got %v", err)
				all, err := repo.List(context.Background())
				require.NoError(t, err)
				assert.Len(t, all, 4)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, created.ID)
			if tt.product.ID != "" {
				assert.Equal(t, tt.product.ID, created.ID)
			}
			assert.False(t, created.CreatedAt.IsZero())

			got, err := service.Get(context.Background(), created.ID)
			require.NoError(t, err)
			assert.Equal(t, "Oud", got.Name)
		})
	}
}

func TestCatalogService_UpdateAndDelete(t *testing.T) {
	service, _ := seededCatalog(t)
	ctx := context.Background()

	updated, err := service.Update(ctx, "a", domain.ProductPatch{Price: ptr(int64(42000)), IsOnSale: ptr(true), Discount: ptr(50)})
	require.NoError(t, err)
	assert.Equal(t, int64(42000), updated.Price)
	assert.Equal(t, int64(21000), updated.EffectivePrice())
	assert.Equal(t, "Éclat", updated.Name)

	_, err = service.Update(ctx, "a", domain.ProductPatch{Name: ptr(" ")})
	assert.True(t, IsValidation(err))

	_, err = service.Update(ctx, "nope", domain.ProductPatch{})
	assert.ErrorIs(t, err, ErrProductNotFound)

	require.NoError(t, service.Delete(ctx, "a"))
	_, err = service.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, service.Delete(ctx, "a"), ErrProductNotFound)
}

func TestCatalogService_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	service, repo := seededCatalog(t)
	service.SetRedisClient(client, time.Minute)
	ctx := context.Background()

	p, err := service.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "Ambre Nuit", p.Name)
	assert.True(t, mr.Exists("product:c"))
	assert.Equal(t, time.Minute, mr.TTL("product:c"))

	// A write that bypasses the service is not seen until the entry goes.
	stale := *p
	stale.Name = "Renamed"
	require.NoError(t, repo.Save(ctx, &stale))
	cached, err := service.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "Ambre Nuit", cached.Name)

	_, err = service.Update(ctx, "c", domain.ProductPatch{Stock: ptr(3)})
	require.NoError(t, err)
	assert.False(t, mr.Exists("product:c"))

	fresh, err := service.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", fresh.Name)
	assert.Equal(t, 3, fresh.Stock)

	_, err = service.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.False(t, mr.Exists("product:missing"))
}

func TestCatalogService_SeedOnlyWhenEmpty(t *testing.T) {
	service, _ := seededCatalog(t)

	n, err := service.Seed(context.Background(), DefaultCatalog())
	require.NoError(t, err)
	assert.Zero(t, n)

	fresh := NewCatalogService(kv.NewProductRepository(kvstore.NewMemory()))
	n, err = fresh.Seed(context.Background(), DefaultCatalog())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	no5, err := fresh.Get(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, int64(76000), no5.EffectivePrice())
}

func TestCatalogService_XLSXRoundTrip(t *testing.T) {
	source, _ := seededCatalog(t)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, source.ExportXLSX(ctx, &buf))

	target := NewCatalogService(kv.NewProductRepository(kvstore.NewMemory()))
	_, err := target.Create(ctx, domain.Product{ID: "a", Name: "Old", Brand: "Old", Price: 1})
	require.NoError(t, err)

	data := buf.Bytes()
	result, err := target.ImportXLSX(ctx, bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Zero(t, result.Skipped)

	all, err := target.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	b, err := target.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "bois d'argent", b.Name)
	assert.Equal(t, int64(120000), b.Price)
	assert.True(t, b.IsOnSale)
	assert.Equal(t, 10, b.Discount)

	a, err := target.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Éclat", a.Name)
}

func TestCatalogService_ImportRejectsGarbage(t *testing.T) {
	service := NewCatalogService(kv.NewProductRepository(kvstore.NewMemory()))
	data := []byte("not a spreadsheet")

	_, err := service.ImportXLSX(context.Background(), bytes.NewReader(data), int64(len(data)))
	assert.True(t, IsValidation(err))
}
