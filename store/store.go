package store

import (
	"context"
	"time"

	"github.com/xraph/paylater/account"
	"github.com/xraph/paylater/id"
	"github.com/xraph/paylater/invoice"
	"github.com/xraph/paylater/journal"
	"github.com/xraph/paylater/report"
	"github.com/xraph/paylater/scheduler"
)

// Store is the unified storage interface for all PayLater entities.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
type Store interface {
	// Account methods. Accounts are keyed by normalized phone; UpdateAccount
	// is CAS-guarded on the Version field and must return a version-conflict
	// error when the row moved underneath the caller.
	CreateAccount(ctx context.Context, a *account.Account) error
	GetAccount(ctx context.Context, phone string) (*account.Account, error)
	UpdateAccount(ctx context.Context, a *account.Account) error
	ListAccounts(ctx context.Context, opts account.ListOpts) ([]*account.Account, error)

	// Invoice methods. Invoice IDs are caller-supplied idempotency keys;
	// CreateInvoice must fail on duplicates.
	CreateInvoice(ctx context.Context, inv *invoice.Invoice) error
	GetInvoice(ctx context.Context, invoiceID string) (*invoice.Invoice, error)
	UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error
	ListInvoices(ctx context.Context, opts invoice.ListOpts) ([]*invoice.Invoice, error)
	ActiveInvoicesByPhone(ctx context.Context, phone string) ([]*invoice.Invoice, error)
	InvoicesDueBetween(ctx context.Context, from, to time.Time) ([]*invoice.Invoice, error)

	// Ledger methods. Entries are append-only.
	AppendEntry(ctx context.Context, e *journal.Entry) error
	GetEntry(ctx context.Context, entryID string) (*journal.Entry, error)
	ListEntries(ctx context.Context, opts journal.ListOpts) ([]*journal.Entry, error)
	EntryExists(ctx context.Context, phone string, t journal.Type, refID string) (bool, error)

	// Settings methods. Raw key/value rows; config.Resolve interprets them.
	GetSettings(ctx context.Context) (map[string]string, error)
	PutSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error

	// Schedule methods
	InstallSchedule(ctx context.Context, s *scheduler.Schedule) error
	RemoveSchedule(ctx context.Context, name string) error
	GetSchedule(ctx context.Context, name string) (*scheduler.Schedule, error)
	ListSchedules(ctx context.Context) ([]*scheduler.Schedule, error)
	UpdateSchedule(ctx context.Context, s *scheduler.Schedule) error

	// Report methods
	CreateReport(ctx context.Context, r *report.Report) error
	GetReport(ctx context.Context, reportID id.ReportID) (*report.Report, error)
	ListReports(ctx context.Context, limit, offset int) ([]*report.Report, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
