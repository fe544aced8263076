package services

import (
	"context"
	"sort"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

type DashboardStats struct {
	TotalSales     int64                      `json:"totalSales"`
	OrdersCount    int                        `json:"ordersCount"`
	Customers      int64                      `json:"newCustomers"`
	ConversionRate float64                    `json:"conversionRate"`
	StatusCounts   map[domain.OrderStatus]int `json:"statusCounts"`
	TopProducts    []ProductSales             `json:"topProducts"`
	RecentOrders   []domain.Order             `json:"recentOrders"`
}

type ProductSales struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Revenue   int64  `json:"revenue"`
}

const (
	dashboardTopProducts  = 5
	dashboardRecentOrders = 5
)

type DashboardService struct {
	orders repository.OrderRepository
	users  repository.UserRepository
}

func NewDashboardService(orders repository.OrderRepository, users repository.UserRepository) *DashboardService {
	return &DashboardService{orders: orders, users: users}
}

// Stats aggregates the stored orders. Cancelled orders count toward the
// status breakdown but not toward sales.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	orders, err := s.orders.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	customers, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		OrdersCount:  len(orders),
		Customers:    customers,
		StatusCounts: make(map[domain.OrderStatus]int, len(domain.OrderStatuses)),
		TopProducts:  []ProductSales{},
		RecentOrders: []domain.Order{},
	}
	for _, st := range domain.OrderStatuses {
		stats.StatusCounts[st] = 0
	}

	byProduct := map[string]*ProductSales{}
	for _, o := range orders {
		stats.StatusCounts[o.Status]++
		if o.Status == domain.StatusCancelled {
			continue
		}
		stats.TotalSales += o.Total
		for _, it := range o.Items {
			ps, ok := byProduct[it.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: it.ProductID, Name: it.Name}
				byProduct[it.ProductID] = ps
			}
			ps.Quantity += it.Quantity
			ps.Revenue += it.Subtotal()
		}
	}

	if customers > 0 {
		stats.ConversionRate = float64(len(orders)) / float64(customers)
	}

	for _, ps := range byProduct {
		stats.TopProducts = append(stats.TopProducts, *ps)
	}
	sort.Slice(stats.TopProducts, func(i, j int) bool {
		a, b := stats.TopProducts[i], stats.TopProducts[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.ProductID < b.ProductID
	})
	if len(stats.TopProducts) > dashboardTopProducts {
		stats.TopProducts = stats.TopProducts[:dashboardTopProducts]
	}

	if len(orders) > dashboardRecentOrders {
		stats.RecentOrders = orders[:dashboardRecentOrders]
	} else if len(orders) > 0 {
		stats.RecentOrders = orders
	}
	return stats, nil
}
