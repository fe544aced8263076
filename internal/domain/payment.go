package domain

import "time"

type PaymentMethod struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Provider string `json:"provider"`
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	Enabled  bool   `json:"enabled"`
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
)

// PaymentCurrency is the only currency accepted by payment intents.
const PaymentCurrency = "XOF"

type PaymentIntent struct {
	ID              string        `json:"id"`
	Amount          int64         `json:"amount"`
	Currency        string        `json:"currency"`
	PaymentMethodID string        `json:"paymentMethodId"`
	OrderID         string        `json:"orderId"`
	UserID          string        `json:"userId,omitempty"`
	Status          PaymentStatus `json:"status"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}
