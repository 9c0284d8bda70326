package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/sundarvel/pawnbook/internal/domain"
)

// CustomerRepository is the keyed store behind the ledger: one record per
// application number, single-record writes. Implementations return
// apperrors.ErrCustomerNotFound (wrapped) when a key is absent.
type CustomerRepository interface {
	// Create inserts a new customer record
	Create(ctx context.Context, record *domain.CustomerRecord) error

	// GetByApplicationNumber retrieves one record by its primary key
	GetByApplicationNumber(ctx context.Context, applicationNumber string) (*domain.CustomerRecord, error)

	// List retrieves the full snapshot, payments not hydrated
	List(ctx context.Context) ([]*domain.CustomerRecord, error)

	// Update overwrites the record's mutable fields
	Update(ctx context.Context, record *domain.CustomerRecord) error

	// UpdateStatus replaces only the status field
	UpdateStatus(ctx context.Context, applicationNumber string, status string) error

	// AppendPayment writes the new payment entry and the reconciled pending
	// amount in one transaction; the two are never visible half-applied
	AppendPayment(ctx context.Context, entry *domain.PaymentEntry, newPending decimal.Decimal) error

	// Delete hard-deletes the record and its payments
	Delete(ctx context.Context, applicationNumber string) error
}

// PaymentRepository reads the append-only payment history.
type PaymentRepository interface {
	// ListByApplicationNumber retrieves all payments in insertion order
	ListByApplicationNumber(ctx context.Context, applicationNumber string) ([]*domain.PaymentEntry, error)

	// TotalPaid sums the recorded payments for one application
	TotalPaid(ctx context.Context, applicationNumber string) (decimal.Decimal, error)
}
