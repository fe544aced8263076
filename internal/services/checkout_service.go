package services

import (
	"context"
	"strings"

	"storefront/internal/domain"
)

type CheckoutRequest struct {
	DeviceID      string              `json:"-"`
	UserID        string              `json:"-"`
	Zone          string              `json:"zone"`
	Area          string              `json:"area"`
	DeliveryType  domain.DeliveryType `json:"deliveryType"`
	Address       string              `json:"address"`
	FullName      string              `json:"fullName"`
	Phone         string              `json:"phone"`
	Email         string              `json:"email"`
	PaymentMethod string              `json:"paymentMethod"`
}

// CheckoutService turns a device cart into an order, pricing delivery from
// the zone table.
type CheckoutService struct {
	carts  *CartService
	orders *OrderService
}

func NewCheckoutService(carts *CartService, orders *OrderService) *CheckoutService {
	return &CheckoutService{carts: carts, orders: orders}
}

// Quote returns the delivery fee for a zone and delivery type.
func Quote(zoneKey string, t domain.DeliveryType) (int64, error) {
	zone, ok := domain.LookupZone(zoneKey)
	if !ok {
		return 0, invalid("unknown delivery zone %q", zoneKey)
	}
	if t == "" {
		t = domain.DeliveryNormal
	}
	fee, ok := zone.Fee(t)
	if !ok {
		return 0, invalid("zone %s does not offer %s delivery", zone.Name, t)
	}
	return fee, nil
}

func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*domain.Order, error) {
	fee, err := Quote(req.Zone, req.DeliveryType)
	if err != nil {
		return nil, err
	}
	cart, err := s.carts.Get(ctx, req.DeviceID)
	if err != nil {
		return nil, err
	}
	if cart.Empty() {
		return nil, invalid("cart is empty")
	}

	paymentMethod := strings.TrimSpace(req.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = "cash"
	}
	return s.orders.Create(ctx, domain.CreateOrderRequest{
		Items: cart.OrderItems(),
		ShippingAddress: domain.ShippingAddress{
			FullName: strings.TrimSpace(req.FullName),
			Phone:    strings.TrimSpace(req.Phone),
			Email:    strings.TrimSpace(req.Email),
			Address:  strings.TrimSpace(req.Address),
			City:     strings.TrimSpace(req.Area),
			Zone:     req.Zone,
		},
		DeliveryFee:   fee,
		PaymentMethod: paymentMethod,
		UserID:        req.UserID,
		DeviceID:      req.DeviceID,
	})
}
