package http

import "storefront/internal/domain"

type OrderItemRequest struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest     `json:"items"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	DeliveryFee     int64                  `json:"deliveryFee"`
	PaymentMethod   string                 `json:"paymentMethod"`
}

func (r CreateOrderRequest) toDomain() domain.CreateOrderRequest {
	items := make([]domain.OrderItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = domain.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
		}
	}
	return domain.CreateOrderRequest{
		Items:           items,
		ShippingAddress: r.ShippingAddress,
		DeliveryFee:     r.DeliveryFee,
		PaymentMethod:   r.PaymentMethod,
	}
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" binding:"required"`
}

type PasswordConfirmRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AddCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

type SetQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type ReplaceCartRequest struct {
	Items []domain.CartItem `json:"items"`
}

type CartResponse struct {
	Items      []domain.CartItem `json:"items"`
	TotalItems int               `json:"totalItems"`
	TotalPrice int64             `json:"totalPrice"`
}

func newCartResponse(c *domain.Cart) CartResponse {
	items := c.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	return CartResponse{Items: items, TotalItems: c.TotalItemCount(), TotalPrice: c.TotalPrice()}
}

type QuoteResponse struct {
	Zone         string              `json:"zone"`
	DeliveryType domain.DeliveryType `json:"deliveryType"`
	Fee          int64               `json:"fee"`
}
