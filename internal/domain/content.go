package domain

import (
	"errors"
	"strings"
	"time"
)

type Brand struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Active      bool   `json:"active"`
}

type BrandPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

func (bp BrandPatch) Apply(b Brand) (Brand, error) {
	if bp.Name != nil {
		b.Name = strings.TrimSpace(*bp.Name)
	}
	if bp.Description != nil {
		b.Description = *bp.Description
	}
	if bp.Active != nil {
		b.Active = *bp.Active
	}
	if b.Name == "" {
		return Brand{}, errors.New("name is required")
	}
	return b, nil
}

type HeroSlide struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	ButtonText  string `json:"buttonText"`
	ButtonLink  string `json:"buttonLink"`
}

type Promotion struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Discount    int       `json:"discount"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	ProductIDs  []string  `json:"perfumeIds"`
}

func (p Promotion) Validate() error {
	var problems []string
	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, "name is required")
	}
	if p.Discount <= 0 || p.Discount > 100 {
		problems = append(problems, "discount must be between 1 and 100")
	}
	if !p.EndDate.After(p.StartDate) {
		problems = append(problems, "endDate must be after startDate")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func (p Promotion) ActiveAt(t time.Time) bool {
	return !t.Before(p.StartDate) && t.Before(p.EndDate)
}

type PromotionPatch struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Discount    *int       `json:"discount"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	ProductIDs  *[]string  `json:"perfumeIds"`
}

func (pp PromotionPatch) Apply(p Promotion) (Promotion, error) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Discount != nil {
		p.Discount = *pp.Discount
	}
	if pp.StartDate != nil {
		p.StartDate = *pp.StartDate
	}
	if pp.EndDate != nil {
		p.EndDate = *pp.EndDate
	}
	if pp.ProductIDs != nil {
		p.ProductIDs = append([]string(nil), (*pp.ProductIDs)...)
	}
	if err := p.Validate(); err != nil {
		return Promotion{}, err
	}
	return p, nil
}

// CountdownSettings drives the flash-sale banner.
type CountdownSettings struct {
	EndDate     time.Time `json:"endDate"`
	IsActive    bool      `json:"isActive"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
}

type RemainingTime struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// Remaining is nil when the banner is inactive or already over.
func (s CountdownSettings) Remaining(now time.Time) *RemainingTime {
	if !s.IsActive {
		return nil
	}
	d := s.EndDate.Sub(now)
	if d <= 0 {
		return nil
	}
	total := int(d / time.Second)
	return &RemainingTime{
		Days:    total / 86400,
		Hours:   total % 86400 / 3600,
		Minutes: total % 3600 / 60,
		Seconds: total % 60,
	}
}

// DefaultCountdown is a three-day flash sale starting at now.
func DefaultCountdown(now time.Time) CountdownSettings {
	return CountdownSettings{
		EndDate:     now.Add(72 * time.Hour),
		IsActive:    true,
		Title:       "Vente Flash",
		Description: "Profitez de nos offres exceptionnelles",
	}
}
