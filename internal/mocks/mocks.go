package mocks

import (
	"context"

	"checkout-service/internal/domain"
	"checkout-service/internal/infra/payments"

	"github.com/stretchr/testify/mock"
)

type MockOrderStore struct {
	mock.Mock
}

type MockPaymentClient struct {
	mock.Mock
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockOrderStore) Put(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderStore) Get(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderStore) ListAll(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderStore) Update(ctx context.Context, id string, fn func(*domain.Order)) (*domain.Order, error) {
	args := m.Called(ctx, id, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	order := args.Get(0).(*domain.Order)
	fn(order)
	return order, args.Error(1)
}

func (m *MockPaymentClient) CreatePreference(ctx context.Context, pref *payments.PreferenceRequest) (*payments.Preference, error) {
	args := m.Called(ctx, pref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.Preference), args.Error(1)
}

func (m *MockPaymentClient) GetPayment(ctx context.Context, id string) (*payments.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.Payment), args.Error(1)
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	args := m.Called(ctx, routingKey, data)
	return args.Error(0)
}
