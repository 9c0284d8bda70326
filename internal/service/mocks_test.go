package service_test

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/sundarvel/pawnbook/internal/domain"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, record *domain.CustomerRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockCustomerRepository) GetByApplicationNumber(ctx context.Context, applicationNumber string) (*domain.CustomerRecord, error) {
	args := m.Called(ctx, applicationNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustomerRecord), args.Error(1)
}

func (m *MockCustomerRepository) List(ctx context.Context) ([]*domain.CustomerRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CustomerRecord), args.Error(1)
}

func (m *MockCustomerRepository) Update(ctx context.Context, record *domain.CustomerRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockCustomerRepository) UpdateStatus(ctx context.Context, applicationNumber string, status string) error {
	args := m.Called(ctx, applicationNumber, status)
	return args.Error(0)
}

func (m *MockCustomerRepository) AppendPayment(ctx context.Context, entry *domain.PaymentEntry, newPending decimal.Decimal) error {
	args := m.Called(ctx, entry, newPending)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, applicationNumber string) error {
	args := m.Called(ctx, applicationNumber)
	return args.Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) ListByApplicationNumber(ctx context.Context, applicationNumber string) ([]*domain.PaymentEntry, error) {
	args := m.Called(ctx, applicationNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PaymentEntry), args.Error(1)
}

func (m *MockPaymentRepository) TotalPaid(ctx context.Context, applicationNumber string) (decimal.Decimal, error) {
	args := m.Called(ctx, applicationNumber)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
