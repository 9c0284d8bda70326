package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/sundarvel/pawnbook/internal/domain"
	"github.com/sundarvel/pawnbook/pkg/apperrors"
)

type customerRepository struct {
	db *sqlx.DB
}

func NewCustomerRepository(db *sqlx.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, record *domain.CustomerRecord) error {
	query := `
		INSERT INTO customers (application_number, username, address, phone_number, item_weight,
			principal_amount, pending_amount, start_date, end_date, status, note, images, created_at, updated_at)
		VALUES (:application_number, :username, :address, :phone_number, :item_weight,
			:principal_amount, :pending_amount, :start_date, :end_date, :status, :note, :images, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, record)
	return err
}

func (r *customerRepository) GetByApplicationNumber(ctx context.Context, applicationNumber string) (*domain.CustomerRecord, error) {
	query := `
		SELECT application_number, username, address, phone_number, item_weight,
			principal_amount, pending_amount, start_date, end_date, status, note, images, created_at, updated_at
		FROM customers
		WHERE application_number = $1
	`

	var record domain.CustomerRecord
	if err := r.db.GetContext(ctx, &record, query, applicationNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapCustomerNotFound(applicationNumber)
		}
		return nil, err
	}

	return &record, nil
}

func (r *customerRepository) List(ctx context.Context) ([]*domain.CustomerRecord, error) {
	query := `
		SELECT application_number, username, address, phone_number, item_weight,
			principal_amount, pending_amount, start_date, end_date, status, note, images, created_at, updated_at
		FROM customers
		ORDER BY created_at
	`

	records := []*domain.CustomerRecord{}
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *customerRepository) Update(ctx context.Context, record *domain.CustomerRecord) error {
	query := `
		UPDATE customers
		SET username = $2, address = $3, phone_number = $4, start_date = $5, end_date = $6,
			note = $7, images = $8, updated_at = $9
		WHERE application_number = $1
	`

	res, err := r.db.ExecContext(ctx, query,
		record.ApplicationNumber,
		record.Username,
		record.Address,
		record.PhoneNumber,
		record.StartDate,
		record.EndDate,
		record.Note,
		record.Images,
		time.Now(),
	)
	if err != nil {
		return err
	}

	return requireRow(res, record.ApplicationNumber)
}

func (r *customerRepository) UpdateStatus(ctx context.Context, applicationNumber string, status string) error {
	query := `
		UPDATE customers
		SET status = $2, updated_at = $3
		WHERE application_number = $1
	`

	res, err := r.db.ExecContext(ctx, query, applicationNumber, status, time.Now())
	if err != nil {
		return err
	}

	return requireRow(res, applicationNumber)
}

// AppendPayment inserts the payment entry and writes the reconciled balance
// in a single transaction so the caller never observes one without the other.
func (r *customerRepository) AppendPayment(ctx context.Context, entry *domain.PaymentEntry, newPending decimal.Decimal) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insertPayment := `
		INSERT INTO payments (id, application_number, occurred_at, amount)
		VALUES ($1, $2, $3, $4)
	`
	if _, err = tx.ExecContext(ctx, insertPayment,
		entry.ID,
		entry.ApplicationNumber,
		entry.OccurredAt,
		entry.Amount,
	); err != nil {
		return err
	}

	updateBalance := `
		UPDATE customers
		SET pending_amount = $2, updated_at = $3
		WHERE application_number = $1
	`
	res, err := tx.ExecContext(ctx, updateBalance, entry.ApplicationNumber, newPending, entry.OccurredAt)
	if err != nil {
		return err
	}
	if err = requireRow(res, entry.ApplicationNumber); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *customerRepository) Delete(ctx context.Context, applicationNumber string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM payments WHERE application_number = $1`, applicationNumber); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM customers WHERE application_number = $1`, applicationNumber)
	if err != nil {
		return err
	}
	if err = requireRow(res, applicationNumber); err != nil {
		return err
	}

	return tx.Commit()
}

func requireRow(res sql.Result, applicationNumber string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.WrapCustomerNotFound(applicationNumber)
	}
	return nil
}
