package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;size:64"`
	Name        string    `json:"name" gorm:"size:200;not null"`
	Brand       string    `json:"brand" gorm:"size:120;index"`
	Price       int64     `json:"price" gorm:"not null"`
	Image       string    `json:"image" gorm:"size:500"`
	Category    string    `json:"category" gorm:"size:120;index"`
	Description string    `json:"description" gorm:"type:text"`
	IsNew       bool      `json:"isNew"`
	IsOnSale    bool      `json:"isOnSale"`
	Discount    int       `json:"discount"`
	Stock       int       `json:"stock"`
	IsFeatured  bool      `json:"isFeatured"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// EffectivePrice applies the sale discount, rounded to the nearest minor
// unit. Products not on sale, or without a discount, keep their base price.
func (p Product) EffectivePrice() int64 {
	if !p.IsOnSale || p.Discount <= 0 {
		return p.Price
	}
	factor := hundred.Sub(decimal.NewFromInt(int64(p.Discount))).Div(hundred)
	return decimal.NewFromInt(p.Price).Mul(factor).Round(0).IntPart()
}

func (p Product) Validate() error {
	var problems []string
	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(p.Brand) == "" {
		problems = append(problems, "brand is required")
	}
	if p.Price < 0 {
		problems = append(problems, "price must be positive")
	}
	if p.Discount < 0 || p.Discount > 100 {
		problems = append(problems, "discount must be between 0 and 100")
	}
	if p.Stock < 0 {
		problems = append(problems, "stock must be positive")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// ProductPatch is a partial update; nil fields are left untouched.
type ProductPatch struct {
	Name        *string `json:"name"`
	Brand       *string `json:"brand"`
	Price       *int64  `json:"price"`
	Image       *string `json:"image"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	IsNew       *bool   `json:"isNew"`
	IsOnSale    *bool   `json:"isOnSale"`
	Discount    *int    `json:"discount"`
	Stock       *int    `json:"stock"`
	IsFeatured  *bool   `json:"isFeatured"`
}

// Apply returns a copy of p with the patch merged in, validated as a whole.
func (pp ProductPatch) Apply(p Product) (Product, error) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Brand != nil {
		p.Brand = *pp.Brand
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Image != nil {
		p.Image = *pp.Image
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.IsNew != nil {
		p.IsNew = *pp.IsNew
	}
	if pp.IsOnSale != nil {
		p.IsOnSale = *pp.IsOnSale
	}
	if pp.Discount != nil {
		p.Discount = *pp.Discount
	}
	if pp.Stock != nil {
		p.Stock = *pp.Stock
	}
	if pp.IsFeatured != nil {
		p.IsFeatured = *pp.IsFeatured
	}
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

type SortField string

const (
	SortByPrice SortField = "price"
	SortByName  SortField = "name"
	SortByBrand SortField = "brand"
)

// ProductFilter combines predicates conjunctively. Nil pointers and empty
// strings mean "no constraint".
type ProductFilter struct {
	Query    string
	Category string
	Brand    string
	MinPrice *int64
	MaxPrice *int64
	IsNew    *bool
	IsOnSale *bool
	SortBy   SortField
	SortDesc bool
	Page     int
	Limit    int
}

func (f ProductFilter) Match(p Product) bool {
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Brand), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Brand != "" && p.Brand != f.Brand {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.IsNew != nil && p.IsNew != *f.IsNew {
		return false
	}
	if f.IsOnSale != nil && p.IsOnSale != *f.IsOnSale {
		return false
	}
	return true
}
