package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_EffectivePrice(t *testing.T) {
	tests := []struct {
		name     string
		product  Product
		expected int64
	}{
		{name: "on sale", product: Product{Price: 10000, IsOnSale: true, Discount: 20}, expected: 8000},
		{name: "discount without sale flag", product: Product{Price: 10000, Discount: 20}, expected: 10000},
		{name: "sale without discount", product: Product{Price: 10000, IsOnSale: true}, expected: 10000},
		{name: "rounds half away from zero", product: Product{Price: 999, IsOnSale: true, Discount: 50}, expected: 500},
		{name: "full discount", product: Product{Price: 4200, IsOnSale: true, Discount: 100}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.product.EffectivePrice())
		})
	}
}

func TestProductPatch_Apply(t *testing.T) {
	base := Product{ID: "p1", Name: "Oud", Brand: "Maison", Price: 1000, Stock: 3}

	price := int64(2500)
	got, err := ProductPatch{Price: &price}.Apply(base)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), got.Price)
	assert.Equal(t, "Oud", got.Name)
	assert.Equal(t, int64(1000), base.Price)

	stock := -1
	_, err = ProductPatch{Stock: &stock}.Apply(base)
	assert.EqualError(t, err, "stock must be positive")
}

func TestProductFilter_Match(t *testing.T) {
	p := Product{Name: "Sauvage", Brand: "Dior", Category: "Pour Lui", Price: 70000, IsNew: true, Description: "Bergamote"}
	low, high := int64(60000), int64(65000)
	yes, no := true, false

	tests := []struct {
		name     string
		filter   ProductFilter
		expected bool
	}{
		{name: "empty filter", filter: ProductFilter{}, expected: true},
		{name: "query in description", filter: ProductFilter{Query: "bergam"}, expected: true},
		{name: "query miss", filter: ProductFilter{Query: "vanille"}, expected: false},
		{name: "category exact", filter: ProductFilter{Category: "Pour Lui"}, expected: true},
		{name: "brand mismatch", filter: ProductFilter{Brand: "Chanel"}, expected: false},
		{name: "above max", filter: ProductFilter{MaxPrice: &high}, expected: false},
		{name: "above min", filter: ProductFilter{MinPrice: &low}, expected: true},
		{name: "new flag", filter: ProductFilter{IsNew: &yes}, expected: true},
		{name: "sale flag", filter: ProductFilter{IsOnSale: &yes}, expected: false},
		{name: "not on sale", filter: ProductFilter{IsOnSale: &no}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.filter.Match(p))
		})
	}
}
