package services

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_Stats(t *testing.T) {
	cancelled := CreateMockOrder("0003", domain.StatusCancelled)
	completed := CreateMockOrder("0002", domain.StatusCompleted)
	completed.Items = append(completed.Items, domain.OrderItem{ProductID: "p-musk", Name: "White Musk", Quantity: 5, Price: 1000})
	completed.Total = completed.ItemsTotal() + completed.DeliveryFee
	pending := CreateMockOrder("0001", domain.StatusPending)
	orders := []domain.Order{*cancelled, *completed, *pending}

	tests := []struct {
		name          string
		setupMocks    func(*mocks.MockOrderRepository, *mocks.MockUserRepository)
		expectedError string
		check         func(*testing.T, *DashboardStats)
	}{
		{
			name: "aggregates orders",
			setupMocks: func(o *mocks.MockOrderRepository, u *mocks.MockUserRepository) {
				o.On("List", mock.Anything, 0).Return(orders, nil)
				u.On("Count", mock.Anything).Return(int64(6), nil)
			},
			check: func(t *testing.T, s *DashboardStats) {
				assert.Equal(t, int64(17000+12000), s.TotalSales)
				assert.Equal(t, 3, s.OrdersCount)
				assert.Equal(t, int64(6), s.Customers)
				assert.InDelta(t, 0.5, s.ConversionRate, 1e-9)
				assert.Equal(t, 1, s.StatusCounts[domain.StatusCancelled])
				assert.Equal(t, 0, s.StatusCounts[domain.StatusShipping])
				require.Len(t, s.TopProducts, 2)
				assert.Equal(t, "p-musk", s.TopProducts[0].ProductID)
				assert.Equal(t, 5, s.TopProducts[0].Quantity)
				assert.Equal(t, TestProductID, s.TopProducts[1].ProductID)
				assert.Equal(t, 4, s.TopProducts[1].Quantity)
				assert.Equal(t, int64(20000), s.TopProducts[1].Revenue)
				assert.Len(t, s.RecentOrders, 3)
			},
		},
		{
			name: "empty store",
			setupMocks: func(o *mocks.MockOrderRepository, u *mocks.MockUserRepository) {
				o.On("List", mock.Anything, 0).Return([]domain.Order(nil), nil)
				u.On("Count", mock.Anything).Return(int64(0), nil)
			},
			check: func(t *testing.T, s *DashboardStats) {
				assert.Zero(t, s.TotalSales)
				assert.Zero(t, s.ConversionRate)
				assert.NotNil(t, s.TopProducts)
				assert.NotNil(t, s.RecentOrders)
				assert.Len(t, s.StatusCounts, len(domain.OrderStatuses))
			},
		},
		{
			name: "repository error",
			setupMocks: func(o *mocks.MockOrderRepository, u *mocks.MockUserRepository) {
				o.On("List", mock.Anything, 0).Return(nil, errors.New("database error"))
			},
			expectedError: "database error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderRepo := new(mocks.MockOrderRepository)
			userRepo := new(mocks.MockUserRepository)
			tt.setupMocks(orderRepo, userRepo)

			stats, err := NewDashboardService(orderRepo, userRepo).Stats(context.Background())

			if tt.expectedError != "" {
				assert.EqualError(t, err, tt.expectedError)
				assert.Nil(t, stats)
			} else {
				require.NoError(t, err)
				tt.check(t, stats)
			}
			orderRepo.AssertExpectations(t)
			userRepo.AssertExpectations(t)
		})
	}
}
