package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentEntry is an immutable record of one partial payment against a
// customer's application. Entries are append-only; insertion order is
// chronological order.
type PaymentEntry struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	ApplicationNumber string          `json:"application_number" db:"application_number"`
	OccurredAt        time.Time       `json:"occurred_at" db:"occurred_at"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
}

func (PaymentEntry) TableName() string {
	return "payments"
}
