package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/sundarvel/pawnbook/internal/config"
	"github.com/sundarvel/pawnbook/internal/domain"
	"github.com/sundarvel/pawnbook/internal/ledger"
	"github.com/sundarvel/pawnbook/internal/repository"
	"github.com/sundarvel/pawnbook/pkg/apperrors"
)

const dashboardCacheKey = "pawnbook:dashboard"

// ListFilter narrows and orders the customer snapshot.
type ListFilter struct {
	Phone     string
	Status    string
	SortField string
	SortOrder string
}

// LedgerService owns the customer ledger: intake, payment application,
// status toggles, deletion and the derived views. All reads work on a fresh
// snapshot from the repository; writes go through the keyed store one record
// at a time. Last-write-wins between concurrent operator sessions.
type LedgerService struct {
	CustomerRepo repository.CustomerRepository
	PaymentRepo  repository.PaymentRepository
	redis        *redis.Client
	config       *config.Config
	logger       *slog.Logger
	now          func() time.Time
}

func NewLedgerService(
	customerRepo repository.CustomerRepository,
	paymentRepo repository.PaymentRepository,
	redisClient *redis.Client,
	cfg *config.Config,
	logger *slog.Logger,
) *LedgerService {
	return &LedgerService{
		CustomerRepo: customerRepo,
		PaymentRepo:  paymentRepo,
		redis:        redisClient,
		config:       cfg,
		logger:       logger.With(slog.String("component", "ledgerService")),
		now:          time.Now,
	}
}

// CreateCustomer registers a new loan application: zero payments, pending
// balance equal to the principal, status pending.
func (s *LedgerService) CreateCustomer(ctx context.Context, req *domain.CreateCustomerRequest) (*domain.CustomerRecord, error) {
	existing, err := s.CustomerRepo.GetByApplicationNumber(ctx, req.ApplicationNumber)
	if err == nil && existing != nil {
		return nil, apperrors.WrapCustomerAlreadyExists(req.ApplicationNumber)
	}
	if err != nil && !errors.Is(err, apperrors.ErrCustomerNotFound) {
		return nil, apperrors.WrapDatabaseError(err)
	}

	itemWeight, err := decimal.NewFromString(req.ItemWeight)
	if err != nil || itemWeight.IsNegative() {
		return nil, apperrors.WrapValidationError(errors.New("item_weight must be a non-negative number"))
	}
	principal, err := decimal.NewFromString(req.PrincipalAmount)
	if err != nil || principal.IsNegative() {
		return nil, apperrors.WrapValidationError(errors.New("principal_amount must be a non-negative number"))
	}
	startDate, endDate, err := parseLoanWindow(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	now := s.now()
	record := &domain.CustomerRecord{
		ApplicationNumber: req.ApplicationNumber,
		Username:          req.Username,
		Address:           req.Address,
		PhoneNumber:       req.PhoneNumber,
		ItemWeight:        itemWeight,
		PrincipalAmount:   principal,
		PendingAmount:     principal.Round(2),
		StartDate:         startDate,
		EndDate:           endDate,
		Status:            domain.CustomerStatusPending,
		Note:              req.Note,
		Images:            pq.StringArray(req.Images),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.CustomerRepo.Create(ctx, record); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	s.invalidateDashboard(ctx)
	s.logger.InfoContext(ctx, "customer created",
		slog.String("application_number", record.ApplicationNumber))
	return record, nil
}

// GetCustomer loads one record with its payment history hydrated.
func (s *LedgerService) GetCustomer(ctx context.Context, applicationNumber string) (*domain.CustomerRecord, error) {
	record, err := s.CustomerRepo.GetByApplicationNumber(ctx, applicationNumber)
	if err != nil {
		return nil, err
	}

	payments, err := s.PaymentRepo.ListByApplicationNumber(ctx, applicationNumber)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	record.Payments = payments

	return record, nil
}

// ListCustomers returns the filtered, sorted snapshot plus the per-phone
// application counts. Filters and sorting never mutate stored records.
func (s *LedgerService) ListCustomers(ctx context.Context, filter ListFilter) (*domain.CustomerListResponse, error) {
	records, err := s.CustomerRepo.List(ctx)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	view := ledger.FilterByPhone(records, filter.Phone)
	view = ledger.FilterByStatus(view, filter.Status)
	if filter.SortField != "" {
		view = ledger.SortBy(view, filter.SortField, filter.SortOrder)
	}

	return &domain.CustomerListResponse{
		Customers:   view,
		PhoneCounts: ledger.CountByPhone(records),
	}, nil
}

// UpdateCustomer applies operator edits to identity fields. Loan terms and
// the payment history are untouched.
func (s *LedgerService) UpdateCustomer(ctx context.Context, applicationNumber string, req *domain.UpdateCustomerRequest) (*domain.CustomerRecord, error) {
	record, err := s.CustomerRepo.GetByApplicationNumber(ctx, applicationNumber)
	if err != nil {
		return nil, err
	}

	startDate, endDate, err := parseLoanWindow(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	record.Username = req.Username
	record.Address = req.Address
	record.PhoneNumber = req.PhoneNumber
	record.StartDate = startDate
	record.EndDate = endDate
	record.Note = req.Note
	if req.Images != nil {
		record.Images = pq.StringArray(req.Images)
	}

	if err := s.CustomerRepo.Update(ctx, record); err != nil {
		return nil, err
	}

	s.invalidateDashboard(ctx)
	return record, nil
}

// ApplyPayment appends a payment timestamped now, reconciles the balance and
// persists both in one transaction. The returned record reflects exactly the
// appended entry: payment count up by one, pending reduced by the amount,
// negative when payments overshoot the principal.
func (s *LedgerService) ApplyPayment(ctx context.Context, applicationNumber string, amount decimal.Decimal) (*domain.CustomerRecord, error) {
	record, err := s.GetCustomer(ctx, applicationNumber)
	if err != nil {
		return nil, err
	}

	updated, entry, err := ledger.ApplyPayment(record, amount, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.CustomerRepo.AppendPayment(ctx, entry, updated.PendingAmount); err != nil {
		if errors.Is(err, apperrors.ErrCustomerNotFound) {
			return nil, err
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	s.invalidateDashboard(ctx)
	s.logger.InfoContext(ctx, "payment recorded",
		slog.String("application_number", applicationNumber),
		slog.String("amount", amount.StringFixed(2)),
		slog.String("pending", updated.PendingAmount.StringFixed(2)))
	return updated, nil
}

// SetStatus toggles the operator-driven status. The balance is deliberately
// not consulted: completed-with-outstanding-balance is a legal state and the
// due views are the place that surfaces the contradiction.
func (s *LedgerService) SetStatus(ctx context.Context, applicationNumber string, status string) (*domain.CustomerRecord, error) {
	if !domain.ValidStatus(status) {
		return nil, apperrors.WrapInvalidStatus(status)
	}

	if err := s.CustomerRepo.UpdateStatus(ctx, applicationNumber, status); err != nil {
		return nil, err
	}

	s.invalidateDashboard(ctx)
	return s.GetCustomer(ctx, applicationNumber)
}

// DeleteCustomer hard-deletes a record and its payments. Deleting an absent
// record reports not-found; nothing is ever restored.
func (s *LedgerService) DeleteCustomer(ctx context.Context, applicationNumber string) error {
	if err := s.CustomerRepo.Delete(ctx, applicationNumber); err != nil {
		return err
	}
	s.invalidateDashboard(ctx)
	return nil
}

// PendingCustomers returns the records still marked pending.
func (s *LedgerService) PendingCustomers(ctx context.Context) ([]*domain.CustomerRecord, error) {
	return s.byStatus(ctx, domain.CustomerStatusPending)
}

// CompletedCustomers returns the records marked completed by an operator.
func (s *LedgerService) CompletedCustomers(ctx context.Context) ([]*domain.CustomerRecord, error) {
	return s.byStatus(ctx, domain.CustomerStatusCompleted)
}

func (s *LedgerService) byStatus(ctx context.Context, status string) ([]*domain.CustomerRecord, error) {
	records, err := s.CustomerRepo.List(ctx)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return ledger.FilterByStatus(records, status), nil
}

// DueCustomers returns records whose end date has passed while money is
// still outstanding.
func (s *LedgerService) DueCustomers(ctx context.Context) ([]*domain.CustomerRecord, error) {
	records, err := s.CustomerRepo.List(ctx)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return ledger.FilterDue(records, s.now()), nil
}

// DashboardCounts serves the aggregate card values, cached in Redis for the
// configured TTL. Cache failures degrade to a recompute, never to an error.
func (s *LedgerService) DashboardCounts(ctx context.Context) (*domain.DashboardCounts, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, dashboardCacheKey).Result()
		if err == nil {
			var counts domain.DashboardCounts
			if jsonErr := json.Unmarshal([]byte(cached), &counts); jsonErr == nil {
				return &counts, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.WarnContext(ctx, "dashboard cache read failed", slog.Any("error", err))
		}
	}

	counts, err := s.RefreshDashboard(ctx)
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// RefreshDashboard recomputes the counts from the snapshot and rewrites the
// cache. The scheduler calls this on its daily tick to keep the cache warm.
func (s *LedgerService) RefreshDashboard(ctx context.Context) (*domain.DashboardCounts, error) {
	records, err := s.CustomerRepo.List(ctx)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	counts := ledger.Counts(records, s.now())

	if s.redis != nil {
		data, err := json.Marshal(counts)
		if err == nil {
			if err := s.redis.Set(ctx, dashboardCacheKey, data, s.config.Redis.DashboardTTL).Err(); err != nil {
				s.logger.WarnContext(ctx, "dashboard cache write failed", slog.Any("error", err))
			}
		}
	}

	return &counts, nil
}

func (s *LedgerService) invalidateDashboard(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, dashboardCacheKey).Err(); err != nil {
		s.logger.WarnContext(ctx, "dashboard cache invalidation failed", slog.Any("error", err))
	}
}

func parseLoanWindow(start, end string) (time.Time, time.Time, error) {
	startDate, err := time.Parse("2006-01-02", start)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.WrapValidationError(errors.New("start_date must be YYYY-MM-DD"))
	}
	endDate, err := time.Parse("2006-01-02", end)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.WrapValidationError(errors.New("end_date must be YYYY-MM-DD"))
	}
	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, apperrors.WrapValidationError(errors.New("end_date must not precede start_date"))
	}
	return startDate, endDate, nil
}
