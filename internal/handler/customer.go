package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/sundarvel/pawnbook/internal/domain"
	"github.com/sundarvel/pawnbook/internal/service"
	"github.com/sundarvel/pawnbook/pkg/apperrors"
	"github.com/sundarvel/pawnbook/pkg/response"
)

const maxUploadBytes = 32 << 20

type CustomerHandler struct {
	service   *service.LedgerService
	validator *validator.Validate
	uploadDir string
	logger    *slog.Logger
}

func NewCustomerHandler(svc *service.LedgerService, uploadDir string, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		service:   svc,
		validator: validator.New(),
		uploadDir: uploadDir,
		logger:    logger.With(slog.String("component", "customerHandler")),
	}
}

// Create handles the intake form: a multipart submission with identity
// fields, loan terms and optional pledged-item photos. Validation failures
// block the submission; nothing is persisted until every check passes.
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		response.BadRequest(w, "expected multipart form data", err)
		return
	}

	req := &domain.CreateCustomerRequest{
		ApplicationNumber: formValue(r, "application_number", "app_no"),
		Username:          formValue(r, "username"),
		Address:           formValue(r, "address"),
		PhoneNumber:       formValue(r, "phone_number", "ph_no"),
		ItemWeight:        formValue(r, "item_weight"),
		PrincipalAmount:   formValue(r, "principal_amount", "amount"),
		StartDate:         formValue(r, "start_date"),
		EndDate:           formValue(r, "end_date"),
		Note:              formValue(r, "note"),
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, "form validation failed", apperrors.WrapValidationError(err))
		return
	}

	images, err := h.saveImages(r)
	if err != nil {
		response.InternalServerError(w, "could not store uploaded images", err)
		return
	}
	req.Images = images

	record, err := h.service.CreateCustomer(r.Context(), req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, record)
}

// Get returns one record with its payment history.
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.GetCustomer(r.Context(), mux.Vars(r)["appNo"])
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, record)
}

// List returns the filtered, sorted customer table. Query params: phone
// (substring), status (pending|completed|all), sort_by, order (asc|desc).
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListCustomers(r.Context(), listFilter(r))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, list)
}

// Update applies operator edits to identity fields. Accepts the same
// multipart shape as Create minus the loan terms; new image uploads replace
// the stored list.
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		response.BadRequest(w, "expected multipart form data", err)
		return
	}

	req := &domain.UpdateCustomerRequest{
		Username:    formValue(r, "username"),
		Address:     formValue(r, "address"),
		PhoneNumber: formValue(r, "phone_number", "ph_no"),
		StartDate:   formValue(r, "start_date"),
		EndDate:     formValue(r, "end_date"),
		Note:        formValue(r, "note"),
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, "form validation failed", apperrors.WrapValidationError(err))
		return
	}

	if r.MultipartForm != nil && len(r.MultipartForm.File["images"]) > 0 {
		images, err := h.saveImages(r)
		if err != nil {
			response.InternalServerError(w, "could not store uploaded images", err)
			return
		}
		req.Images = images
	}

	record, err := h.service.UpdateCustomer(r.Context(), mux.Vars(r)["appNo"], req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, record)
}

// SetStatus toggles a record between pending and completed.
func (h *CustomerHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "status must be pending or completed", apperrors.WrapValidationError(err))
		return
	}

	record, err := h.service.SetStatus(r.Context(), mux.Vars(r)["appNo"], req.Status)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, record)
}

// RecordPayment appends a payment to a record and returns the updated
// record with the reconciled balance.
func (h *CustomerHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "amount is required", apperrors.WrapValidationError(err))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.BadRequest(w, "amount must be numeric", apperrors.WrapInvalidPaymentAmount(req.Amount))
		return
	}

	record, err := h.service.ApplyPayment(r.Context(), mux.Vars(r)["appNo"], amount)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, record)
}

// Delete hard-deletes a record. A repeat delete reports not-found.
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	appNo := mux.Vars(r)["appNo"]
	if err := h.service.DeleteCustomer(r.Context(), appNo); err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, map[string]string{"application_number": appNo, "deleted": "true"})
}

// Pending lists customers still marked pending.
func (h *CustomerHandler) Pending(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.PendingCustomers(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, records)
}

// Completed lists customers marked completed.
func (h *CustomerHandler) Completed(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.CompletedCustomers(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, records)
}

// Due lists customers past their end date with money outstanding.
func (h *CustomerHandler) Due(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.DueCustomers(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, records)
}

// Dashboard returns the aggregate counts for the admin landing page.
func (h *CustomerHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.DashboardCounts(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, counts)
}

// formValue reads the first non-empty value among the given field names.
// Older console generations submit alternate names (app_no, ph_no); the
// translation stops here and never reaches the ledger.
func formValue(r *http.Request, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(r.FormValue(name)); v != "" {
			return v
		}
	}
	return ""
}

func listFilter(r *http.Request) service.ListFilter {
	q := r.URL.Query()
	return service.ListFilter{
		Phone:     q.Get("phone"),
		Status:    q.Get("status"),
		SortField: q.Get("sort_by"),
		SortOrder: q.Get("order"),
	}
}

func (h *CustomerHandler) saveImages(r *http.Request) ([]string, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		return nil, nil
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := h.saveImage(fh)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (h *CustomerHandler) saveImage(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("opening upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	ext := filepath.Ext(fh.Filename)
	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(h.uploadDir, name))
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("writing upload file: %w", err)
	}

	return "/uploads/" + name, nil
}
