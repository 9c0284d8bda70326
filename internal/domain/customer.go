package domain

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	CustomerStatusPending   = "pending"
	CustomerStatusCompleted = "completed"

	// StatusAll is accepted by status filters as the identity transform.
	StatusAll = "all"
)

// ValidStatus reports whether s is an operator-settable customer status.
func ValidStatus(s string) bool {
	return s == CustomerStatusPending || s == CustomerStatusCompleted
}

// CustomerRecord is one loan application's full state: identity, loan terms,
// running balance, payment history and operator-driven status.
//
// ApplicationNumber is the primary key. PhoneNumber is not unique; one
// customer may hold several applications. ItemWeight and PrincipalAmount are
// fixed at intake. PendingAmount is derived from the payment history and
// persisted alongside it for fast display.
type CustomerRecord struct {
	ApplicationNumber string          `json:"application_number" db:"application_number"`
	Username          string          `json:"username" db:"username"`
	Address           string          `json:"address" db:"address"`
	PhoneNumber       string          `json:"phone_number" db:"phone_number"`
	ItemWeight        decimal.Decimal `json:"item_weight" db:"item_weight"`
	PrincipalAmount   decimal.Decimal `json:"principal_amount" db:"principal_amount"`
	PendingAmount     decimal.Decimal `json:"pending_amount" db:"pending_amount"`
	StartDate         time.Time       `json:"start_date" db:"start_date"`
	EndDate           time.Time       `json:"end_date" db:"end_date"`
	Status            string          `json:"status" db:"status"`
	Note              string          `json:"note" db:"note"`
	Images            pq.StringArray  `json:"images" db:"images"`
	Payments          []*PaymentEntry `json:"payments,omitempty" db:"-"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// Clone returns a deep copy. Views and store callers hand out clones so that
// derived snapshots never alias stored records.
func (c *CustomerRecord) Clone() *CustomerRecord {
	cp := *c
	cp.Images = append(pq.StringArray(nil), c.Images...)
	if c.Payments != nil {
		cp.Payments = make([]*PaymentEntry, len(c.Payments))
		for i, p := range c.Payments {
			entry := *p
			cp.Payments[i] = &entry
		}
	}
	return &cp
}

// DTOs for requests and responses

// CreateCustomerRequest carries the intake form fields. Amount-like fields
// arrive as strings (the form is multipart) and are parsed at the handler
// boundary; alternate external field names never leak past it.
type CreateCustomerRequest struct {
	ApplicationNumber string `json:"application_number" validate:"required"`
	Username          string `json:"username" validate:"required"`
	Address           string `json:"address" validate:"required"`
	PhoneNumber       string `json:"phone_number" validate:"required,len=10,numeric"`
	ItemWeight        string `json:"item_weight" validate:"required"`
	PrincipalAmount   string `json:"principal_amount" validate:"required"`
	StartDate         string `json:"start_date" validate:"required"`
	EndDate           string `json:"end_date" validate:"required"`
	Note              string `json:"note"`
	Images            []string
}

// UpdateCustomerRequest carries operator edits to identity fields. Loan terms
// (item weight, principal) are immutable after intake and deliberately absent.
type UpdateCustomerRequest struct {
	Username    string `json:"username" validate:"required"`
	Address     string `json:"address" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required,len=10,numeric"`
	StartDate   string `json:"start_date" validate:"required"`
	EndDate     string `json:"end_date" validate:"required"`
	Note        string `json:"note"`
	Images      []string
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending completed"`
}

type RecordPaymentRequest struct {
	Amount string `json:"amount" validate:"required"`
}

// DashboardCounts are the aggregate card values on the admin dashboard.
type DashboardCounts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Due       int `json:"due"`
}

// CustomerListResponse is the list endpoint payload. PhoneCounts maps each
// phone number to its application count so the table can flag customers
// holding multiple applications.
type CustomerListResponse struct {
	Customers   []*CustomerRecord `json:"customers"`
	PhoneCounts map[string]int    `json:"phone_counts"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
