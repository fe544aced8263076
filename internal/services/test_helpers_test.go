package services

import (
	"sync"
	"time"

	"storefront/internal/domain"
)

const (
	TestProductID    = "p-oud"
	TestProductName  = "Oud Royal"
	TestProductPrice = int64(5000)
	TestDeviceID     = "device-1"
)

func CreateMockOrder(id string, status domain.OrderStatus) *domain.Order {
	return &domain.Order{
		ID:              id,
		Items:           []domain.OrderItem{{ProductID: TestProductID, Name: TestProductName, Quantity: 2, Price: TestProductPrice}},
		Total:           2*TestProductPrice + 2000,
		DeliveryFee:     2000,
		Status:          status,
		ShippingAddress: validAddress(),
		PaymentMethod:   "cash",
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
}

func CreateMockProduct(id, name string, price int64) *domain.Product {
	return &domain.Product{
		ID:       id,
		Name:     name,
		Brand:    "Maison Test",
		Price:    price,
		Category: "Pour Lui",
		Stock:    10,
	}
}

func validAddress() domain.ShippingAddress {
	return domain.ShippingAddress{
		FullName: "Awa Kone",
		Phone:    "0700000000",
		Address:  "Rue des Jardins 12",
		City:     "Cocody",
		Zone:     "abidjan-nord",
	}
}

func createRequest() domain.CreateOrderRequest {
	return domain.CreateOrderRequest{
		Items:           []domain.OrderItem{{ProductID: TestProductID, Name: TestProductName, Quantity: 2, Price: TestProductPrice}},
		ShippingAddress: validAddress(),
		DeliveryFee:     2000,
		PaymentMethod:   "cash",
		DeviceID:        TestDeviceID,
	}
}

// sequentialIDs replays ns, then repeats the last one.
func sequentialIDs(ns ...int) IDGenerator {
	var mu sync.Mutex
	i := 0
	return func() int {
		mu.Lock()
		defer mu.Unlock()
		n := ns[min(i, len(ns)-1)]
		i++
		return n
	}
}
