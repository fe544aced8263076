package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/notify"
	"storefront/internal/repository"
)

// orderNumberSpace is the count of distinct four digit order numbers.
const orderNumberSpace = 10000

const maxIDAttempts = 64

// IDGenerator proposes an order number in [0, 9999].
type IDGenerator func() int

func RandomOrderNumber() int {
	return rand.IntN(orderNumberSpace)
}

// CartClearer empties a device cart once its order is placed.
type CartClearer interface {
	Clear(ctx context.Context, deviceID string) error
}

type OrderService struct {
	repo      repository.OrderRepository
	publisher notify.Publisher
	carts     CartClearer
	nextID    IDGenerator
	strict    bool
	now       func() time.Time

	// mu serializes writers so the uniqueness check on order numbers and the
	// status read-modify-write are not interleaved.
	mu sync.Mutex
}

var _ notify.Commander = (*OrderService)(nil)

func NewOrderService(r repository.OrderRepository, pub notify.Publisher) *OrderService {
	if pub == nil {
		pub = notify.Discard{}
	}
	return &OrderService{
		repo:      r,
		publisher: pub,
		nextID:    RandomOrderNumber,
		now:       time.Now,
	}
}

func (s *OrderService) SetCartClearer(c CartClearer) {
	s.carts = c
}

func (s *OrderService) SetIDGenerator(g IDGenerator) {
	s.nextID = g
}

// SetStrictTransitions rejects status changes that leave the lifecycle path,
// including cancelling anything but a pending order.
func (s *OrderService) SetStrictTransitions(strict bool) {
	s.strict = strict
}

func validateCreate(req domain.CreateOrderRequest) error {
	var problems []string
	if len(req.Items) == 0 {
		problems = append(problems, "order must contain at least one item")
	}
	for i, it := range req.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			problems = append(problems, fmt.Sprintf("item %d: product id is required", i))
		}
		if it.Quantity <= 0 {
			problems = append(problems, fmt.Sprintf("item %d: quantity must be positive", i))
		}
		if it.Price < 0 {
			problems = append(problems, fmt.Sprintf("item %d: price must not be negative", i))
		}
	}
	if missing := req.ShippingAddress.MissingFields(); len(missing) > 0 {
		problems = append(problems, "incomplete shipping address: missing "+strings.Join(missing, ", "))
	}
	if req.DeliveryFee < 0 {
		problems = append(problems, "delivery fee must not be negative")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Create validates, numbers and persists a PENDING order, then clears the
// originating device cart and announces the order.
func (s *OrderService) Create(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error) {
	if err := validateCreate(req); err != nil {
		metrics.RecordOrderOperation("create", false)
		return nil, err
	}

	items := make([]domain.OrderItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = domain.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
		}
	}

	s.mu.Lock()
	id, err := s.newOrderID(ctx)
	if err != nil {
		s.mu.Unlock()
		metrics.RecordOrderOperation("create", false)
		return nil, err
	}

	now := s.now().UTC()
	order := &domain.Order{
		ID:              id,
		UserID:          req.UserID,
		DeviceID:        req.DeviceID,
		Items:           items,
		DeliveryFee:     req.DeliveryFee,
		Status:          domain.StatusPending,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	order.Total = order.ItemsTotal() + order.DeliveryFee

	err = s.repo.Create(ctx, order)
	s.mu.Unlock()
	if err != nil {
		metrics.RecordOrderOperation("create", false)
		return nil, fmt.Errorf("save order: %w", err)
	}
	metrics.RecordOrderOperation("create", true)
	slog.Info("order created", "order_id", order.ID, "total", order.Total, "items", len(order.Items))

	if req.DeviceID != "" && s.carts != nil {
		if err := s.carts.Clear(ctx, req.DeviceID); err != nil {
			slog.Error("failed to clear cart after order", "order_id", order.ID, "device_id", req.DeviceID, "error", err)
		}
	}

	s.publish(ctx, domain.OrderCreatedEvent{Order: *order})
	return order, nil
}

// newOrderID draws numbers until one is not taken. Callers hold s.mu.
func (s *OrderService) newOrderID(ctx context.Context) (string, error) {
	for range maxIDAttempts {
		id := domain.FormatOrderID(s.nextID() % orderNumberSpace)
		existing, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return id, nil
		}
	}
	return "", ErrOrderIDSpaceExhausted
}

// UpdateStatus overwrites the status and update time; items and total stay
// as created.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status string) (*domain.Order, error) {
	next, err := domain.ParseOrderStatus(status)
	if err != nil {
		metrics.RecordOrderOperation("update_status", false)
		return nil, &ValidationError{Problems: []string{err.Error()}}
	}

	s.mu.Lock()
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.mu.Unlock()
		metrics.RecordOrderOperation("update_status", false)
		return nil, err
	}
	if order == nil {
		s.mu.Unlock()
		metrics.RecordOrderOperation("update_status", false)
		return nil, ErrOrderNotFound
	}

	if !order.Status.CanTransitionTo(next) {
		if s.strict {
			s.mu.Unlock()
			metrics.RecordOrderOperation("update_status", false)
			return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, next)
		}
		slog.Warn("order status change outside lifecycle", "order_id", id, "from", order.Status, "to", next)
	}

	order.Status = next
	order.UpdatedAt = s.now().UTC()
	err = s.repo.UpdateStatus(ctx, order)
	s.mu.Unlock()
	if err != nil {
		metrics.RecordOrderOperation("update_status", false)
		return nil, fmt.Errorf("save order status: %w", err)
	}
	metrics.RecordOrderOperation("update_status", true)
	slog.Info("order status updated", "order_id", id, "status", next)

	s.publish(ctx, domain.OrderUpdatedEvent{Order: *order})
	return order, nil
}

func (s *OrderService) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	return s.UpdateStatus(ctx, id, string(domain.StatusCancelled))
}

func (s *OrderService) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// List returns every order, newest first.
func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (s *OrderService) Recent(ctx context.Context, n int) ([]domain.Order, error) {
	return s.repo.List(ctx, n)
}

func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// publish is best-effort; the order is already stored.
func (s *OrderService) publish(ctx context.Context, event domain.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.Error("failed to publish event", "event", event.Name(), "error", err)
	}
}
