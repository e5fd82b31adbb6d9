package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xraph/paylater"
	"github.com/xraph/paylater/account"
	"github.com/xraph/paylater/id"
	"github.com/xraph/paylater/invoice"
	"github.com/xraph/paylater/journal"
	"github.com/xraph/paylater/report"
	"github.com/xraph/paylater/scheduler"
)

// Store is an in-memory backend for tests and single-process embedding.
// Every read returns a copy, so callers can mutate results freely; state
// changes only through the Store methods.
type Store struct {
	mu sync.RWMutex

	// Account storage, keyed by normalized phone
	accounts map[string]*account.Account

	// Invoice storage, keyed by the caller-supplied invoice ID
	invoices map[string]*invoice.Invoice

	// Ledger storage, append-only
	entries []journal.Entry

	// Settings storage
	settings map[string]string

	// Schedule storage, keyed by job name
	schedules map[string]*scheduler.Schedule

	// Report storage
	reports []report.Report
}

func New() *Store {
	return &Store{
		accounts:  make(map[string]*account.Account),
		invoices:  make(map[string]*invoice.Invoice),
		entries:   make([]journal.Entry, 0),
		settings:  make(map[string]string),
		schedules: make(map[string]*scheduler.Schedule),
		reports:   make([]report.Report, 0),
	}
}

// Account Store implementation
func (s *Store) CreateAccount(_ context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[a.Phone]; exists {
		return paylater.ErrAlreadyExists
	}
	cp := *a
	s.accounts[a.Phone] = &cp
	return nil
}

func (s *Store) GetAccount(_ context.Context, phone string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a, ok := s.accounts[phone]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, paylater.ErrAccountNotFound
}

func (s *Store) UpdateAccount(_ context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.accounts[a.Phone]
	if !exists {
		return paylater.ErrAccountNotFound
	}
	if current.Version != a.Version {
		return paylater.ErrVersionConflict
	}
	cp := *a
	cp.Version++
	s.accounts[a.Phone] = &cp
	a.Version = cp.Version
	return nil
}

func (s *Store) ListAccounts(_ context.Context, opts account.ListOpts) ([]*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*account.Account, 0)
	for _, a := range s.accounts {
		if opts.Status == "" || a.Status == opts.Status {
			cp := *a
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Phone < result[j].Phone })

	return page(result, opts.Limit, opts.Offset), nil
}

// Invoice Store implementation
func (s *Store) CreateInvoice(_ context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[inv.ID]; exists {
		return paylater.ErrInvoiceExists
	}
	cp := *inv
	s.invoices[inv.ID] = &cp
	return nil
}

func (s *Store) GetInvoice(_ context.Context, invoiceID string) (*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if inv, ok := s.invoices[invoiceID]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, paylater.ErrInvoiceNotFound
}

func (s *Store) UpdateInvoice(_ context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[inv.ID]; !exists {
		return paylater.ErrInvoiceNotFound
	}
	cp := *inv
	s.invoices[inv.ID] = &cp
	return nil
}

func (s *Store) ListInvoices(_ context.Context, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*invoice.Invoice, 0)
	for _, inv := range s.invoices {
		if opts.Phone != "" && inv.Phone != opts.Phone {
			continue
		}
		if opts.Status != "" && inv.Status != opts.Status {
			continue
		}
		cp := *inv
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return page(result, opts.Limit, opts.Offset), nil
}

func (s *Store) ActiveInvoicesByPhone(_ context.Context, phone string) ([]*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*invoice.Invoice, 0)
	for _, inv := range s.invoices {
		if inv.Phone == phone && inv.Status.Open() {
			cp := *inv
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) InvoicesDueBetween(_ context.Context, from, to time.Time) ([]*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*invoice.Invoice, 0)
	for _, inv := range s.invoices {
		if !inv.Status.Open() {
			continue
		}
		if inv.DueDate.Before(from) || !inv.DueDate.Before(to) {
			continue
		}
		cp := *inv
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DueDate.Before(result[j].DueDate)
	})
	return result, nil
}

// Ledger Store implementation
func (s *Store) AppendEntry(_ context.Context, e *journal.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.RefID != "" {
		for i := range s.entries {
			if s.entries[i].Phone == e.Phone && s.entries[i].Type == e.Type && s.entries[i].RefID == e.RefID {
				return paylater.ErrAlreadyExists
			}
		}
	}
	s.entries = append(s.entries, *e)
	return nil
}

func (s *Store) GetEntry(_ context.Context, entryID string) (*journal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.entries {
		if s.entries[i].ID.String() == entryID {
			cp := s.entries[i]
			return &cp, nil
		}
	}
	return nil, paylater.ErrEntryNotFound
}

func (s *Store) ListEntries(_ context.Context, opts journal.ListOpts) ([]*journal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*journal.Entry, 0)
	for i := range s.entries {
		e := s.entries[i]
		if opts.Phone != "" && e.Phone != opts.Phone {
			continue
		}
		if opts.Type != "" && e.Type != opts.Type {
			continue
		}
		if opts.RefID != "" && e.RefID != opts.RefID {
			continue
		}
		cp := e
		result = append(result, &cp)
	}

	return page(result, opts.Limit, opts.Offset), nil
}

func (s *Store) EntryExists(_ context.Context, phone string, t journal.Type, refID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.entries {
		if s.entries[i].Phone == phone && s.entries[i].Type == t && s.entries[i].RefID == refID {
			return true, nil
		}
	}
	return false, nil
}

// Settings Store implementation
func (s *Store) GetSettings(_ context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.settings))
	for k, v := range s.settings {
		out[k] = v
	}
	return out, nil
}

func (s *Store) PutSetting(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key = strings.TrimSpace(key)
	if key == "" {
		return paylater.ErrInvalidInput
	}
	s.settings[key] = value
	return nil
}

func (s *Store) DeleteSetting(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.settings, key)
	return nil
}

// Schedule Store implementation
func (s *Store) InstallSchedule(_ context.Context, sched *scheduler.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *sched
	s.schedules[sched.Name] = &cp
	return nil
}

func (s *Store) RemoveSchedule(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.schedules, name)
	return nil
}

func (s *Store) GetSchedule(_ context.Context, name string) (*scheduler.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sched, ok := s.schedules[name]; ok {
		cp := *sched
		return &cp, nil
	}
	return nil, paylater.ErrScheduleNotFound
}

func (s *Store) ListSchedules(_ context.Context) ([]*scheduler.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*scheduler.Schedule, 0, len(s.schedules))
	for _, sched := range s.schedules {
		cp := *sched
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *Store) UpdateSchedule(_ context.Context, sched *scheduler.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.schedules[sched.Name]; !exists {
		return paylater.ErrScheduleNotFound
	}
	cp := *sched
	s.schedules[sched.Name] = &cp
	return nil
}

// Report Store implementation
func (s *Store) CreateReport(_ context.Context, r *report.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports = append(s.reports, *r)
	return nil
}

func (s *Store) GetReport(_ context.Context, reportID id.ReportID) (*report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.reports {
		if s.reports[i].ID == reportID {
			cp := s.reports[i]
			return &cp, nil
		}
	}
	return nil, paylater.ErrReportNotFound
}

func (s *Store) ListReports(_ context.Context, limit, offset int) ([]*report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*report.Report, 0, len(s.reports))
	for i := range s.reports {
		cp := s.reports[i]
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].PeriodStart.After(result[j].PeriodStart)
	})
	return page(result, limit, offset), nil
}

// Store management
func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	return nil // Always available
}

func (s *Store) Close() error {
	return nil // Nothing to close
}

// Helper functions
func page[T any](items []T, limit, offset int) []T {
	start := offset
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if limit == 0 || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
