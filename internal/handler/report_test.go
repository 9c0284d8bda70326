package handler_test

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sundarvel/pawnbook/internal/domain"
	"github.com/sundarvel/pawnbook/internal/handler"
	"github.com/sundarvel/pawnbook/internal/service"
)

func TestCustomersCSVHandler(t *testing.T) {
	f := newCustomerFixture(t)
	future := time.Now().AddDate(0, 6, 0)
	f.seed(t, "APP-1", "9876543210", domain.CustomerStatusPending, 1000, future)
	f.seed(t, "APP-2", "9123456789", domain.CustomerStatusCompleted, 500, future)

	export := service.NewExportService(f.svc, discardLogger())
	h := handler.NewReportHandler(export)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/customers.csv?status=pending", nil)
	rec := httptest.NewRecorder()
	h.CustomersCSV(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), service.ReportFileName)

	rows, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Application Number", rows[0][0])
	assert.Equal(t, "APP-1", rows[1][0])
}
