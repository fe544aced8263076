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

const PaymentsKey = "payments"

var paymentMethods = []domain.PaymentMethod{
	{ID: "orange-money", Type: "MOBILE_MONEY", Provider: "ORANGE", Name: "Orange Money", Icon: "/icons/orange-money.png", Enabled: true},
	{ID: "mtn-money", Type: "MOBILE_MONEY", Provider: "MTN", Name: "MTN Mobile Money", Icon: "/icons/mtn-money.png", Enabled: true},
	{ID: "moov-money", Type: "MOBILE_MONEY", Provider: "MOOV", Name: "Moov Money", Icon: "/icons/moov-money.png", Enabled: true},
	{ID: "wave", Type: "MOBILE_MONEY", Provider: "WAVE", Name: "Wave", Icon: "/icons/wave.png", Enabled: true},
}

type CreateIntentInput struct {
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	PaymentMethodID string `json:"paymentMethodId"`
	OrderID         string `json:"orderId"`
}

// PaymentService records payment intents. No provider is called: confirming
// an intent marks it succeeded.
type PaymentService struct {
	store kvstore.Store
	now   func() time.Time
	mu    sync.Mutex
}

func NewPaymentService(store kvstore.Store) *PaymentService {
	return &PaymentService{store: store, now: time.Now}
}

func (s *PaymentService) Methods() []domain.PaymentMethod {
	return append([]domain.PaymentMethod(nil), paymentMethods...)
}

func knownMethod(id string) bool {
	for _, m := range paymentMethods {
		if m.ID == id && m.Enabled {
			return true
		}
	}
	return false
}

func (s *PaymentService) load(ctx context.Context) (map[string]domain.PaymentIntent, error) {
	intents := map[string]domain.PaymentIntent{}
	if _, err := kvstore.LoadJSON(ctx, s.store, PaymentsKey, &intents); err != nil {
		return nil, err
	}
	return intents, nil
}

func (s *PaymentService) CreateIntent(ctx context.Context, userID string, in CreateIntentInput) (*domain.PaymentIntent, error) {
	var problems []string
	if in.Amount < 0 {
		problems = append(problems, "amount must not be negative")
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = domain.PaymentCurrency
	}
	if currency != domain.PaymentCurrency {
		problems = append(problems, "currency must be "+domain.PaymentCurrency)
	}
	if !knownMethod(in.PaymentMethodID) {
		problems = append(problems, "unknown payment method")
	}
	if strings.TrimSpace(in.OrderID) == "" {
		problems = append(problems, "orderId is required")
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	now := s.now().UTC()
	intent := domain.PaymentIntent{
		ID:              uuid.NewString(),
		Amount:          in.Amount,
		Currency:        currency,
		PaymentMethodID: in.PaymentMethodID,
		OrderID:         in.OrderID,
		UserID:          userID,
		Status:          domain.PaymentPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	intents, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	intents[intent.ID] = intent
	if err := kvstore.SetJSON(ctx, s.store, PaymentsKey, intents); err != nil {
		return nil, err
	}
	return &intent, nil
}

func (s *PaymentService) Confirm(ctx context.Context, id string) (*domain.PaymentIntent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	intents, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	intent, ok := intents[id]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	intent.Status = domain.PaymentSucceeded
	intent.UpdatedAt = s.now().UTC()
	intents[id] = intent
	if err := kvstore.SetJSON(ctx, s.store, PaymentsKey, intents); err != nil {
		return nil, err
	}
	return &intent, nil
}

func (s *PaymentService) Status(ctx context.Context, id string) (*domain.PaymentIntent, error) {
	intents, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	intent, ok := intents[id]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	return &intent, nil
}
