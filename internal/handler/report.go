package handler

import (
	"fmt"
	"net/http"

	"github.com/sundarvel/pawnbook/internal/service"
	"github.com/sundarvel/pawnbook/pkg/response"
)

type ReportHandler struct {
	export *service.ExportService
}

func NewReportHandler(export *service.ExportService) *ReportHandler {
	return &ReportHandler{export: export}
}

// CustomersCSV streams the customer report as a CSV attachment. The same
// phone/status query params as the list endpoint narrow the export.
func (h *ReportHandler) CustomersCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", service.ReportFileName))

	if err := h.export.WriteCSV(r.Context(), w, listFilter(r)); err != nil {
		// Headers may already be out; the truncated body is the best signal left.
		response.InternalServerError(w, "report generation failed", err)
	}
}
