package service_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sundarvel/pawnbook/internal/config"
	"github.com/sundarvel/pawnbook/internal/domain"
	"github.com/sundarvel/pawnbook/internal/repository"
	"github.com/sundarvel/pawnbook/internal/service"
)

func exportFixture(t *testing.T) *service.ExportService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewMemoryStore("")
	ledgerSvc := service.NewLedgerService(store, store, nil, &config.Config{}, logger)

	date := func(v string) time.Time {
		d, err := time.Parse("2006-01-02", v)
		require.NoError(t, err)
		return d
	}
	records := []*domain.CustomerRecord{
		{
			ApplicationNumber: "APP-1",
			Username:          "Ravi Kumar",
			Address:           "12 Bazaar Street",
			PhoneNumber:       "9876543210",
			ItemWeight:        decimal.RequireFromString("15.5"),
			PrincipalAmount:   decimal.NewFromInt(1000),
			PendingAmount:     decimal.RequireFromString("599.995"),
			StartDate:         date("2024-01-10"),
			EndDate:           date("2024-07-10"),
			Status:            domain.CustomerStatusPending,
			Note:              "gold chain, 22k",
			Images:            []string{"a.png", "b.png"},
			CreatedAt:         date("2024-01-10"),
		},
		{
			ApplicationNumber: "APP-2",
			Username:          "Meena",
			PhoneNumber:       "9123456789",
			ItemWeight:        decimal.NewFromInt(8),
			PrincipalAmount:   decimal.NewFromInt(500),
			PendingAmount:     decimal.Zero,
			StartDate:         date("2024-02-01"),
			EndDate:           date("2024-08-01"),
			Status:            domain.CustomerStatusCompleted,
			CreatedAt:         date("2024-02-01"),
		},
	}
	for _, r := range records {
		require.NoError(t, store.Create(context.Background(), r))
	}

	return service.NewExportService(ledgerSvc, logger)
}

func TestWriteCSV(t *testing.T) {
	svc := exportFixture(t)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteCSV(context.Background(), &buf, service.ListFilter{}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"Application Number", "Username", "Address", "Phone Number",
		"Item Weight", "Amount", "Pending Amount", "Starting Date",
		"Ending Date", "Status", "Notes", "Images",
	}, rows[0])

	assert.Equal(t, []string{
		"APP-1", "Ravi Kumar", "12 Bazaar Street", "9876543210",
		"15.50", "1000.00", "600.00", "2024-01-10",
		"2024-07-10", "pending", "gold chain, 22k", "a.png|b.png",
	}, rows[1])

	// Empty image list stays an empty cell, not a stray separator.
	assert.Equal(t, "", rows[2][11])
	assert.Equal(t, "0.00", rows[2][6])
}

func TestWriteCSV_Filtered(t *testing.T) {
	svc := exportFixture(t)

	var buf bytes.Buffer
	err := svc.WriteCSV(context.Background(), &buf, service.ListFilter{Status: domain.CustomerStatusCompleted})
	require.NoError(t, err)

	rows, readErr := csv.NewReader(&buf).ReadAll()
	require.NoError(t, readErr)
	require.Len(t, rows, 2)
	assert.Equal(t, "APP-2", rows[1][0])
}
