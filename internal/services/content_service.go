package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/kvstore"

	"github.com/google/uuid"
)

const (
	BrandsKey     = "brands"
	HeroSlidesKey = "heroSlides"
	PromotionsKey = "promotions"
	CountdownKey  = "countdownSettings"
)

// ContentService manages the admin-edited storefront content: brands, hero
// slides, promotions and the countdown banner. Each collection is one key.
type ContentService struct {
	store kvstore.Store
	now   func() time.Time
	mu    sync.Mutex
}

func NewContentService(store kvstore.Store) *ContentService {
	return &ContentService{store: store, now: time.Now}
}

func (s *ContentService) Brands(ctx context.Context) ([]domain.Brand, error) {
	brands := []domain.Brand{}
	if _, err := kvstore.LoadJSON(ctx, s.store, BrandsKey, &brands); err != nil {
		return nil, err
	}
	return brands, nil
}

func (s *ContentService) CreateBrand(ctx context.Context, patch domain.BrandPatch) (*domain.Brand, error) {
	brand, err := patch.Apply(domain.Brand{ID: uuid.NewString(), Active: true})
	if err != nil {
		return nil, asValidation(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	brands, err := s.Brands(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range brands {
		if strings.EqualFold(b.Name, brand.Name) {
			return nil, invalid("brand %q already exists", brand.Name)
		}
	}
	brands = append(brands, brand)
	if err := kvstore.SetJSON(ctx, s.store, BrandsKey, brands); err != nil {
		return nil, err
	}
	return &brand, nil
}

func (s *ContentService) UpdateBrand(ctx context.Context, id string, patch domain.BrandPatch) (*domain.Brand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	brands, err := s.Brands(ctx)
	if err != nil {
		return nil, err
	}
	for i := range brands {
		if brands[i].ID != id {
			continue
		}
		updated, err := patch.Apply(brands[i])
		if err != nil {
			return nil, asValidation(err)
		}
		brands[i] = updated
		if err := kvstore.SetJSON(ctx, s.store, BrandsKey, brands); err != nil {
			return nil, err
		}
		return &updated, nil
	}
	return nil, ErrBrandNotFound
}

func (s *ContentService) DeleteBrand(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	brands, err := s.Brands(ctx)
	if err != nil {
		return err
	}
	for i := range brands {
		if brands[i].ID == id {
			brands = append(brands[:i], brands[i+1:]...)
			return kvstore.SetJSON(ctx, s.store, BrandsKey, brands)
		}
	}
	return ErrBrandNotFound
}

func (s *ContentService) HeroSlides(ctx context.Context) ([]domain.HeroSlide, error) {
	slides := []domain.HeroSlide{}
	if _, err := kvstore.LoadJSON(ctx, s.store, HeroSlidesKey, &slides); err != nil {
		return nil, err
	}
	return slides, nil
}

// ReplaceHeroSlides stores the carousel as given, assigning ids to new slides.
func (s *ContentService) ReplaceHeroSlides(ctx context.Context, slides []domain.HeroSlide) ([]domain.HeroSlide, error) {
	out := make([]domain.HeroSlide, 0, len(slides))
	for i, sl := range slides {
		if strings.TrimSpace(sl.Title) == "" || strings.TrimSpace(sl.Image) == "" {
			return nil, invalid("slide %d: title and image are required", i)
		}
		if sl.ID == "" {
			sl.ID = uuid.NewString()
		}
		out = append(out, sl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := kvstore.SetJSON(ctx, s.store, HeroSlidesKey, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ContentService) Promotions(ctx context.Context) ([]domain.Promotion, error) {
	promos := []domain.Promotion{}
	if _, err := kvstore.LoadJSON(ctx, s.store, PromotionsKey, &promos); err != nil {
		return nil, err
	}
	return promos, nil
}

// ActivePromotions returns the promotions running now.
func (s *ContentService) ActivePromotions(ctx context.Context) ([]domain.Promotion, error) {
	promos, err := s.Promotions(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	active := []domain.Promotion{}
	for _, p := range promos {
		if p.ActiveAt(now) {
			active = append(active, p)
		}
	}
	return active, nil
}

func (s *ContentService) CreatePromotion(ctx context.Context, p domain.Promotion) (*domain.Promotion, error) {
	if err := p.Validate(); err != nil {
		return nil, asValidation(err)
	}
	p.ID = uuid.NewString()
	if p.ProductIDs == nil {
		p.ProductIDs = []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	promos, err := s.Promotions(ctx)
	if err != nil {
		return nil, err
	}
	promos = append(promos, p)
	if err := kvstore.SetJSON(ctx, s.store, PromotionsKey, promos); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ContentService) UpdatePromotion(ctx context.Context, id string, patch domain.PromotionPatch) (*domain.Promotion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	promos, err := s.Promotions(ctx)
	if err != nil {
		return nil, err
	}
	for i := range promos {
		if promos[i].ID != id {
			continue
		}
		updated, err := patch.Apply(promos[i])
		if err != nil {
			return nil, asValidation(err)
		}
		promos[i] = updated
		if err := kvstore.SetJSON(ctx, s.store, PromotionsKey, promos); err != nil {
			return nil, err
		}
		return &updated, nil
	}
	return nil, ErrPromotionNotFound
}

func (s *ContentService) DeletePromotion(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	promos, err := s.Promotions(ctx)
	if err != nil {
		return err
	}
	for i := range promos {
		if promos[i].ID == id {
			promos = append(promos[:i], promos[i+1:]...)
			return kvstore.SetJSON(ctx, s.store, PromotionsKey, promos)
		}
	}
	return ErrPromotionNotFound
}

// CountdownView is the banner settings plus the time left, nil once over.
type CountdownView struct {
	domain.CountdownSettings
	Remaining *domain.RemainingTime `json:"remaining"`
}

// Countdown returns the stored settings, or a three day sale from now when
// none were saved.
func (s *ContentService) Countdown(ctx context.Context) (*CountdownView, error) {
	var settings domain.CountdownSettings
	found, err := kvstore.LoadJSON(ctx, s.store, CountdownKey, &settings)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !found {
		settings = domain.DefaultCountdown(now)
	}
	return &CountdownView{CountdownSettings: settings, Remaining: settings.Remaining(now)}, nil
}

func (s *ContentService) UpdateCountdown(ctx context.Context, settings domain.CountdownSettings) (*CountdownView, error) {
	if settings.IsActive && settings.EndDate.IsZero() {
		return nil, invalid("endDate is required for an active countdown")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := kvstore.SetJSON(ctx, s.store, CountdownKey, settings); err != nil {
		return nil, err
	}
	return &CountdownView{CountdownSettings: settings, Remaining: settings.Remaining(s.now())}, nil
}
