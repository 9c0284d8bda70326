package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ReportFileName is the attachment name the admin console expects.
const ReportFileName = "customers_report.csv"

// csvHeader is the fixed column order of the report, matching the customer
// table's display fields.
var csvHeader = []string{
	"Application Number",
	"Username",
	"Address",
	"Phone Number",
	"Item Weight",
	"Amount",
	"Pending Amount",
	"Starting Date",
	"Ending Date",
	"Status",
	"Notes",
	"Images",
}

// ExportService renders the customer report as one flat CSV file.
type ExportService struct {
	ledger *LedgerService
	logger *slog.Logger
}

func NewExportService(ledger *LedgerService, logger *slog.Logger) *ExportService {
	return &ExportService{
		ledger: ledger,
		logger: logger.With(slog.String("component", "exportService")),
	}
}

// WriteCSV streams the filtered customer snapshot to w. Multi-value fields
// (the image list) are joined with a literal | separator inside one cell;
// quoting follows CSV rules.
func (s *ExportService) WriteCSV(ctx context.Context, w io.Writer, filter ListFilter) error {
	list, err := s.ledger.ListCustomers(ctx, filter)
	if err != nil {
		return fmt.Errorf("listing customers for report: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing report header: %w", err)
	}

	for _, c := range list.Customers {
		row := []string{
			c.ApplicationNumber,
			c.Username,
			c.Address,
			c.PhoneNumber,
			c.ItemWeight.StringFixed(2),
			c.PrincipalAmount.StringFixed(2),
			c.PendingAmount.StringFixed(2),
			c.StartDate.Format("2006-01-02"),
			c.EndDate.Format("2006-01-02"),
			c.Status,
			c.Note,
			strings.Join(c.Images, "|"),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing report row for %s: %w", c.ApplicationNumber, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing report: %w", err)
	}

	s.logger.InfoContext(ctx, "report exported", slog.Int("rows", len(list.Customers)))
	return nil
}
