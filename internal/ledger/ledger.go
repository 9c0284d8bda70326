// Package ledger holds the pure customer-ledger logic: balance
// reconciliation from a payment history and the read-only filter, sort and
// search views over a snapshot of customer records. Nothing in this package
// touches storage; every function returns fresh values and leaves its inputs
// untouched.
package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sundarvel/pawnbook/internal/domain"
	"github.com/sundarvel/pawnbook/pkg/apperrors"
)

// Sort directions accepted by SortBy. Anything other than SortDesc sorts
// ascending.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Sortable record fields. Unknown fields fall back to the application number.
const (
	FieldApplicationNumber = "application_number"
	FieldUsername          = "username"
	FieldPhoneNumber       = "phone_number"
	FieldItemWeight        = "item_weight"
	FieldPrincipalAmount   = "principal_amount"
	FieldPendingAmount     = "pending_amount"
	FieldStartDate         = "start_date"
	FieldEndDate           = "end_date"
	FieldStatus            = "status"
)

// ComputePending reconciles the outstanding balance: principal minus the sum
// of all recorded payments, rounded to two decimal places. The result is not
// clamped; overpayment drives the balance negative, which signals a refund
// owed rather than being silently zeroed.
func ComputePending(principal decimal.Decimal, payments []*domain.PaymentEntry) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return principal.Sub(total).Round(2)
}

// ApplyPayment returns a copy of rec with a new payment entry appended and
// the pending amount reconciled. The input record is not mutated, so a
// failed persist leaves no half-applied state behind. amount must be
// non-negative.
func ApplyPayment(rec *domain.CustomerRecord, amount decimal.Decimal, at time.Time) (*domain.CustomerRecord, *domain.PaymentEntry, error) {
	if amount.IsNegative() {
		return nil, nil, apperrors.WrapInvalidPaymentAmount(amount.String())
	}

	entry := &domain.PaymentEntry{
		ID:                uuid.New(),
		ApplicationNumber: rec.ApplicationNumber,
		OccurredAt:        at,
		Amount:            amount,
	}

	updated := rec.Clone()
	updated.Payments = append(updated.Payments, entry)
	updated.PendingAmount = ComputePending(updated.PrincipalAmount, updated.Payments)
	updated.UpdatedAt = at

	return updated, entry, nil
}

// SetStatus returns a copy of rec with the status replaced. The transition is
// operator-driven in either direction and deliberately independent of the
// balance: a record may be completed with money outstanding, or reopened
// after being paid off.
func SetStatus(rec *domain.CustomerRecord, status string) (*domain.CustomerRecord, error) {
	if !domain.ValidStatus(status) {
		return nil, apperrors.WrapInvalidStatus(status)
	}
	updated := rec.Clone()
	updated.Status = status
	return updated, nil
}

// FilterByPhone returns the records whose phone number contains query as a
// substring. An empty query returns the input unchanged.
func FilterByPhone(records []*domain.CustomerRecord, query string) []*domain.CustomerRecord {
	if query == "" {
		return records
	}
	out := make([]*domain.CustomerRecord, 0, len(records))
	for _, r := range records {
		if strings.Contains(r.PhoneNumber, query) {
			out = append(out, r)
		}
	}
	return out
}

// FilterByStatus returns the records matching status exactly. The status
// "all" (or empty) is the identity transform.
func FilterByStatus(records []*domain.CustomerRecord, status string) []*domain.CustomerRecord {
	if status == "" || status == domain.StatusAll {
		return records
	}
	out := make([]*domain.CustomerRecord, 0, len(records))
	for _, r := range records {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

// SortBy returns a new slice sorted on the given field. Numeric and date
// fields use their natural total order, text fields sort lexicographically.
// The sort is stable, so records comparing equal keep their snapshot order;
// descending is the exact reverse of ascending.
func SortBy(records []*domain.CustomerRecord, field, direction string) []*domain.CustomerRecord {
	out := make([]*domain.CustomerRecord, len(records))
	copy(out, records)

	less := lessFunc(field)
	if direction == SortDesc {
		asc := less
		less = func(a, b *domain.CustomerRecord) bool { return asc(b, a) }
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func lessFunc(field string) func(a, b *domain.CustomerRecord) bool {
	switch field {
	case FieldUsername:
		return func(a, b *domain.CustomerRecord) bool { return a.Username < b.Username }
	case FieldPhoneNumber:
		return func(a, b *domain.CustomerRecord) bool { return a.PhoneNumber < b.PhoneNumber }
	case FieldItemWeight:
		return func(a, b *domain.CustomerRecord) bool { return a.ItemWeight.LessThan(b.ItemWeight) }
	case FieldPrincipalAmount:
		return func(a, b *domain.CustomerRecord) bool { return a.PrincipalAmount.LessThan(b.PrincipalAmount) }
	case FieldPendingAmount:
		return func(a, b *domain.CustomerRecord) bool { return a.PendingAmount.LessThan(b.PendingAmount) }
	case FieldStartDate:
		return func(a, b *domain.CustomerRecord) bool { return a.StartDate.Before(b.StartDate) }
	case FieldEndDate:
		return func(a, b *domain.CustomerRecord) bool { return a.EndDate.Before(b.EndDate) }
	case FieldStatus:
		return func(a, b *domain.CustomerRecord) bool { return a.Status < b.Status }
	default:
		return func(a, b *domain.CustomerRecord) bool { return a.ApplicationNumber < b.ApplicationNumber }
	}
}

// CountByPhone maps each phone number to the number of applications held
// under it. Counts above one flag a customer with multiple open applications.
func CountByPhone(records []*domain.CustomerRecord) map[string]int {
	counts := make(map[string]int, len(records))
	for _, r := range records {
		counts[r.PhoneNumber]++
	}
	return counts
}

// DeleteRecord removes the record with the given application number from the
// slice and reports whether it was present. A second delete with the same
// key is a no-op.
func DeleteRecord(records []*domain.CustomerRecord, applicationNumber string) ([]*domain.CustomerRecord, bool) {
	for i, r := range records {
		if r.ApplicationNumber == applicationNumber {
			out := make([]*domain.CustomerRecord, 0, len(records)-1)
			out = append(out, records[:i]...)
			return append(out, records[i+1:]...), true
		}
	}
	return records, false
}

// IsDue reports whether a record is a due-date customer: its end date has
// passed while money is still outstanding. A record past its end date with a
// zero or negative balance is not due.
func IsDue(rec *domain.CustomerRecord, now time.Time) bool {
	return rec.EndDate.Before(now) && rec.PendingAmount.GreaterThan(decimal.Zero)
}

// FilterDue returns the due-date customers as of now.
func FilterDue(records []*domain.CustomerRecord, now time.Time) []*domain.CustomerRecord {
	out := make([]*domain.CustomerRecord, 0, len(records))
	for _, r := range records {
		if IsDue(r, now) {
			out = append(out, r)
		}
	}
	return out
}

// Counts aggregates the dashboard card values over a snapshot.
func Counts(records []*domain.CustomerRecord, now time.Time) domain.DashboardCounts {
	counts := domain.DashboardCounts{Total: len(records)}
	for _, r := range records {
		switch r.Status {
		case domain.CustomerStatusPending:
			counts.Pending++
		case domain.CustomerStatusCompleted:
			counts.Completed++
		}
		if IsDue(r, now) {
			counts.Due++
		}
	}
	return counts
}
