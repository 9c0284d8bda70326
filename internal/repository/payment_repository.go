package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/sundarvel/pawnbook/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) ListByApplicationNumber(ctx context.Context, applicationNumber string) ([]*domain.PaymentEntry, error) {
	query := `
		SELECT id, application_number, occurred_at, amount
		FROM payments
		WHERE application_number = $1
		ORDER BY occurred_at, id
	`

	entries := []*domain.PaymentEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, applicationNumber); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *paymentRepository) TotalPaid(ctx context.Context, applicationNumber string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE application_number = $1
	`

	var total decimal.Decimal
	if err := r.db.GetContext(ctx, &total, query, applicationNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}

	return total, nil
}
