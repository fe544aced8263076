package domain

import (
	"fmt"
	"strings"
	"time"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipping   OrderStatus = "SHIPPING"
	StatusCompleted  OrderStatus = "COMPLETED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusPending,
	StatusProcessing,
	StatusShipping,
	StatusCompleted,
	StatusCancelled,
}

// ParseOrderStatus accepts any casing ("shipping", "Shipping").
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("invalid order status %q", s)
	}
	return st, nil
}

func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is expected from s.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo follows the linear lifecycle; CANCELLED is only reachable
// from PENDING. Re-applying the current status is allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusPending:
		return next == StatusProcessing || next == StatusCancelled
	case StatusProcessing:
		return next == StatusShipping
	case StatusShipping:
		return next == StatusCompleted
	default:
		return false
	}
}

type ShippingAddress struct {
	FullName string `json:"fullName" gorm:"size:200"`
	Phone    string `json:"phone" gorm:"size:40"`
	Email    string `json:"email,omitempty" gorm:"size:200"`
	Address  string `json:"address" gorm:"size:500"`
	City     string `json:"city" gorm:"size:120"`
	Zone     string `json:"zone" gorm:"size:120"`
}

// MissingFields returns the names of required address fields that are blank.
func (a ShippingAddress) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(a.Zone) == "" {
		missing = append(missing, "zone")
	}
	if strings.TrimSpace(a.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(a.Address) == "" {
		missing = append(missing, "address")
	}
	return missing
}

type OrderItem struct {
	RowID     uint   `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   string `json:"-" gorm:"size:8;index"`
	ProductID string `json:"productId" gorm:"size:64;not null"`
	Name      string `json:"name" gorm:"size:200"`
	Quantity  int    `json:"quantity" gorm:"not null"`
	Price     int64  `json:"price" gorm:"not null"`
}

func (i OrderItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;size:8"`
	UserID          string          `json:"userId,omitempty" gorm:"size:64;index"`
	DeviceID        string          `json:"deviceId,omitempty" gorm:"size:64"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Total           int64           `json:"total" gorm:"not null"`
	DeliveryFee     int64           `json:"deliveryFee" gorm:"not null"`
	Status          OrderStatus     `json:"status" gorm:"size:16;default:'PENDING';index"`
	ShippingAddress ShippingAddress `json:"shippingAddress" gorm:"embedded;embeddedPrefix:ship_"`
	PaymentMethod   string          `json:"paymentMethod" gorm:"size:40"`
	CreatedAt       time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// ItemsTotal sums price × quantity over the line items.
func (o *Order) ItemsTotal() int64 {
	var sum int64
	for _, it := range o.Items {
		sum += it.Subtotal()
	}
	return sum
}

// OrderIDFormat renders the public order number.
const OrderIDFormat = "%04d"

// FormatOrderID zero-pads n to the four digit public order number.
func FormatOrderID(n int) string {
	return fmt.Sprintf(OrderIDFormat, n)
}

// CreateOrderRequest is what checkout and the realtime channel hand to the
// order service.
type CreateOrderRequest struct {
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	DeliveryFee     int64           `json:"deliveryFee"`
	PaymentMethod   string          `json:"paymentMethod"`
	UserID          string          `json:"userId,omitempty"`
	DeviceID        string          `json:"deviceId,omitempty"`
}
