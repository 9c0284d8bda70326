package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sundarvel/pawnbook/internal/domain"
	"github.com/sundarvel/pawnbook/pkg/apperrors"
)

// MemoryStore is a keyed in-memory implementation of CustomerRepository and
// PaymentRepository: a map from application number to record instead of one
// serialized blob, so a single-record write never rewrites the whole
// collection. With a snapshot path set it persists the keyed map to disk on
// every mutation and reloads it on startup; malformed snapshot data is
// replaced with an empty store rather than propagated.
type MemoryStore struct {
	mu       sync.RWMutex
	records  map[string]*domain.CustomerRecord
	payments map[string][]*domain.PaymentEntry
	path     string
}

type snapshot struct {
	Records  map[string]*domain.CustomerRecord `json:"records"`
	Payments map[string][]*domain.PaymentEntry `json:"payments"`
}

// NewMemoryStore creates an empty store. path may be empty for a purely
// in-memory store; otherwise the snapshot file is loaded if present.
func NewMemoryStore(path string) *MemoryStore {
	s := &MemoryStore{
		records:  make(map[string]*domain.CustomerRecord),
		payments: make(map[string][]*domain.PaymentEntry),
		path:     path,
	}
	s.load()
	return s
}

var _ CustomerRepository = (*MemoryStore)(nil)
var _ PaymentRepository = (*MemoryStore)(nil)

func (s *MemoryStore) load() {
	if s.path == "" {
		return
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return
	}
	if snap.Records != nil {
		s.records = snap.Records
	}
	if snap.Payments != nil {
		s.payments = snap.Payments
	}
}

// persist writes the snapshot atomically. Callers hold the write lock.
func (s *MemoryStore) persist() {
	if s.path == "" {
		return
	}
	data, err := json.Marshal(snapshot{Records: s.records, Payments: s.payments})
	if err != nil {
		return
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return
	}
	_ = os.Rename(tmp, s.path)
}

func (s *MemoryStore) Create(_ context.Context, record *domain.CustomerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[record.ApplicationNumber]; ok {
		return apperrors.WrapCustomerAlreadyExists(record.ApplicationNumber)
	}
	s.records[record.ApplicationNumber] = record.Clone()
	s.persist()
	return nil
}

func (s *MemoryStore) GetByApplicationNumber(_ context.Context, applicationNumber string) (*domain.CustomerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[applicationNumber]
	if !ok {
		return nil, apperrors.WrapCustomerNotFound(applicationNumber)
	}
	return record.Clone(), nil
}

func (s *MemoryStore) List(_ context.Context) ([]*domain.CustomerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.CustomerRecord, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ApplicationNumber < out[j].ApplicationNumber
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, record *domain.CustomerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[record.ApplicationNumber]
	if !ok {
		return apperrors.WrapCustomerNotFound(record.ApplicationNumber)
	}

	updated := existing.Clone()
	updated.Username = record.Username
	updated.Address = record.Address
	updated.PhoneNumber = record.PhoneNumber
	updated.StartDate = record.StartDate
	updated.EndDate = record.EndDate
	updated.Note = record.Note
	updated.Images = record.Images
	updated.UpdatedAt = time.Now()

	s.records[record.ApplicationNumber] = updated
	s.persist()
	return nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, applicationNumber string, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[applicationNumber]
	if !ok {
		return apperrors.WrapCustomerNotFound(applicationNumber)
	}
	record.Status = status
	record.UpdatedAt = time.Now()
	s.persist()
	return nil
}

func (s *MemoryStore) AppendPayment(_ context.Context, entry *domain.PaymentEntry, newPending decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[entry.ApplicationNumber]
	if !ok {
		return apperrors.WrapCustomerNotFound(entry.ApplicationNumber)
	}

	e := *entry
	s.payments[entry.ApplicationNumber] = append(s.payments[entry.ApplicationNumber], &e)
	record.PendingAmount = newPending
	record.UpdatedAt = entry.OccurredAt
	s.persist()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, applicationNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[applicationNumber]; !ok {
		return apperrors.WrapCustomerNotFound(applicationNumber)
	}
	delete(s.records, applicationNumber)
	delete(s.payments, applicationNumber)
	s.persist()
	return nil
}

func (s *MemoryStore) ListByApplicationNumber(_ context.Context, applicationNumber string) ([]*domain.PaymentEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.payments[applicationNumber]
	out := make([]*domain.PaymentEntry, len(entries))
	for i, e := range entries {
		entry := *e
		out[i] = &entry
	}
	return out, nil
}

func (s *MemoryStore) TotalPaid(_ context.Context, applicationNumber string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, e := range s.payments[applicationNumber] {
		total = total.Add(e.Amount)
	}
	return total, nil
}
