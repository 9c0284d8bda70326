package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sundarvel/pawnbook/internal/domain"
	"github.com/sundarvel/pawnbook/internal/repository"
	"github.com/sundarvel/pawnbook/pkg/apperrors"
)

func seedRecord(appNo, phone string) *domain.CustomerRecord {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.CustomerRecord{
		ApplicationNumber: appNo,
		Username:          "Ravi Kumar",
		PhoneNumber:       phone,
		ItemWeight:        decimal.RequireFromString("15.5"),
		PrincipalAmount:   decimal.NewFromInt(1000),
		PendingAmount:     decimal.NewFromInt(1000),
		StartDate:         now,
		EndDate:           now.AddDate(0, 6, 0),
		Status:            domain.CustomerStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	store := repository.NewMemoryStore("")
	ctx := context.Background()

	rec := seedRecord("APP-1", "9876543210")
	require.NoError(t, store.Create(ctx, rec))

	err := store.Create(ctx, seedRecord("APP-1", "9876543210"))
	assert.ErrorIs(t, err, apperrors.ErrCustomerAlreadyExists)

	got, err := store.GetByApplicationNumber(ctx, "APP-1")
	require.NoError(t, err)
	assert.Equal(t, "APP-1", got.ApplicationNumber)

	// The store hands out clones; mutating the result must not leak back.
	got.Username = "tampered"
	again, err := store.GetByApplicationNumber(ctx, "APP-1")
	require.NoError(t, err)
	assert.Equal(t, "Ravi Kumar", again.Username)

	_, err = store.GetByApplicationNumber(ctx, "APP-404")
	assert.ErrorIs(t, err, apperrors.ErrCustomerNotFound)
}

func TestMemoryStore_ListOrder(t *testing.T) {
	store := repository.NewMemoryStore("")
	ctx := context.Background()

	early := seedRecord("APP-B", "9000000001")
	early.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := seedRecord("APP-A", "9000000002")
	late.CreatedAt = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tied := seedRecord("APP-C", "9000000003")
	tied.CreatedAt = early.CreatedAt

	for _, r := range []*domain.CustomerRecord{late, early, tied} {
		require.NoError(t, store.Create(ctx, r))
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "APP-B", list[0].ApplicationNumber)
	assert.Equal(t, "APP-C", list[1].ApplicationNumber)
	assert.Equal(t, "APP-A", list[2].ApplicationNumber)
}

func TestMemoryStore_UpdatePreservesLoanTerms(t *testing.T) {
	store := repository.NewMemoryStore("")
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, seedRecord("APP-1", "9876543210")))

	edit := seedRecord("APP-1", "9123456789")
	edit.Username = "Meena"
	edit.ItemWeight = decimal.NewFromInt(99)
	edit.PrincipalAmount = decimal.NewFromInt(9)
	require.NoError(t, store.Update(ctx, edit))

	got, err := store.GetByApplicationNumber(ctx, "APP-1")
	require.NoError(t, err)
	assert.Equal(t, "Meena", got.Username)
	assert.Equal(t, "9123456789", got.PhoneNumber)
	assert.True(t, got.ItemWeight.Equal(decimal.RequireFromString("15.5")))
	assert.True(t, got.PrincipalAmount.Equal(decimal.NewFromInt(1000)))

	err = store.Update(ctx, seedRecord("APP-404", "9876543210"))
	assert.ErrorIs(t, err, apperrors.ErrCustomerNotFound)
}

func TestMemoryStore_AppendPayment(t *testing.T) {
	store := repository.NewMemoryStore("")
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, seedRecord("APP-1", "9876543210")))

	entry := &domain.PaymentEntry{
		ID:                uuid.New(),
		ApplicationNumber: "APP-1",
		OccurredAt:        time.Now(),
		Amount:            decimal.NewFromInt(400),
	}
	require.NoError(t, store.AppendPayment(ctx, entry, decimal.NewFromInt(600)))

	got, err := store.GetByApplicationNumber(ctx, "APP-1")
	require.NoError(t, err)
	assert.True(t, got.PendingAmount.Equal(decimal.NewFromInt(600)))

	payments, err := store.ListByApplicationNumber(ctx, "APP-1")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.True(t, payments[0].Amount.Equal(decimal.NewFromInt(400)))

	total, err := store.TotalPaid(ctx, "APP-1")
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(400)))

	err = store.AppendPayment(ctx, &domain.PaymentEntry{ApplicationNumber: "APP-404"}, decimal.Zero)
	assert.ErrorIs(t, err, apperrors.ErrCustomerNotFound)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := repository.NewMemoryStore("")
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, seedRecord("APP-1", "9876543210")))
	require.NoError(t, store.AppendPayment(ctx, &domain.PaymentEntry{
		ID: uuid.New(), ApplicationNumber: "APP-1", Amount: decimal.NewFromInt(100),
	}, decimal.NewFromInt(900)))

	require.NoError(t, store.Delete(ctx, "APP-1"))

	err := store.Delete(ctx, "APP-1")
	assert.ErrorIs(t, err, apperrors.ErrCustomerNotFound)

	payments, err := store.ListByApplicationNumber(ctx, "APP-1")
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestMemoryStore_SnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	ctx := context.Background()

	store := repository.NewMemoryStore(path)
	require.NoError(t, store.Create(ctx, seedRecord("APP-1", "9876543210")))
	require.NoError(t, store.AppendPayment(ctx, &domain.PaymentEntry{
		ID: uuid.New(), ApplicationNumber: "APP-1", OccurredAt: time.Now(), Amount: decimal.NewFromInt(250),
	}, decimal.NewFromInt(750)))

	reloaded := repository.NewMemoryStore(path)
	got, err := reloaded.GetByApplicationNumber(ctx, "APP-1")
	require.NoError(t, err)
	assert.True(t, got.PendingAmount.Equal(decimal.NewFromInt(750)))

	payments, err := reloaded.ListByApplicationNumber(ctx, "APP-1")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.True(t, payments[0].Amount.Equal(decimal.NewFromInt(250)))
}

func TestMemoryStore_MalformedSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := repository.NewMemoryStore(path)
	list, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	// The store stays usable and overwrites the bad file on the next write.
	require.NoError(t, store.Create(context.Background(), seedRecord("APP-1", "9876543210")))
	reloaded := repository.NewMemoryStore(path)
	_, err = reloaded.GetByApplicationNumber(context.Background(), "APP-1")
	assert.NoError(t, err)
}
