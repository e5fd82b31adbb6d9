package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/paylater"
	"github.com/xraph/paylater/account"
	"github.com/xraph/paylater/id"
	"github.com/xraph/paylater/invoice"
	"github.com/xraph/paylater/journal"
	"github.com/xraph/paylater/report"
	"github.com/xraph/paylater/scheduler"
	paystore "github.com/xraph/paylater/store"
)

// compile-time interface check
var _ paystore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("paylater/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("paylater/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Account Store ====================

func (s *Store) CreateAccount(ctx context.Context, a *account.Account) error {
	m := toAccountModel(a)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetAccount(ctx context.Context, phone string) (*account.Account, error) {
	m := new(accountModel)
	err := s.pg.NewSelect(m).
		Where("phone = ?", phone).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, paylater.ErrAccountNotFound
		}
		return nil, err
	}
	return fromAccountModel(m)
}

// UpdateAccount writes the account guarded by its version column. A zero
// row count means the row moved under the caller (or vanished) and maps to
// a version conflict, not a silent overwrite.
func (s *Store) UpdateAccount(ctx context.Context, a *account.Account) error {
	m := toAccountModel(a)
	res, err := s.pg.NewUpdate((*accountModel)(nil)).
		Set("user_id = ?", m.UserID).
		Set("credit_limit = ?", m.CreditLimit).
		Set("available_limit = ?", m.AvailableLimit).
		Set("used_limit = ?", m.UsedLimit).
		Set("status = ?", m.Status).
		Set("admin_initial_limit = ?", m.AdminInitialLimit).
		Set("limit_growth_total = ?", m.LimitGrowthTotal).
		Set("version = ?", m.Version+1).
		Set("updated_at = ?", now()).
		Where("phone = ?", m.Phone).
		Where("version = ?", m.Version).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return paylater.ErrVersionConflict
	}
	a.Version = m.Version + 1
	return nil
}

func (s *Store) ListAccounts(ctx context.Context, opts account.ListOpts) ([]*account.Account, error) {
	var models []accountModel
	q := s.pg.NewSelect(&models)

	if opts.Status != "" {
		q = q.Where("status = ?", string(opts.Status))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("phone ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*account.Account, len(models))
	for i := range models {
		a, err := fromAccountModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = a
	}
	return result, nil
}

// ==================== Invoice Store ====================

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	m := toInvoiceModel(inv)
	res, err := s.pg.NewInsert(m).
		OnConflict("(id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return paylater.ErrInvoiceExists
	}
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, invoiceID string) (*invoice.Invoice, error) {
	m := new(invoiceModel)
	err := s.pg.NewSelect(m).
		Where("id = ?", invoiceID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, paylater.ErrInvoiceNotFound
		}
		return nil, err
	}
	return fromInvoiceModel(m), nil
}

func (s *Store) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	m := toInvoiceModel(inv)
	m.UpdatedAt = now()
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return paylater.ErrInvoiceNotFound
	}
	return nil
}

func (s *Store) ListInvoices(ctx context.Context, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	var models []invoiceModel
	q := s.pg.NewSelect(&models)

	if opts.Phone != "" {
		q = q.Where("phone = ?", opts.Phone)
	}
	if opts.Status != "" {
		q = q.Where("status = ?", string(opts.Status))
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*invoice.Invoice, len(models))
	for i := range models {
		result[i] = fromInvoiceModel(&models[i])
	}
	return result, nil
}

func (s *Store) ActiveInvoicesByPhone(ctx context.Context, phone string) ([]*invoice.Invoice, error) {
	var models []invoiceModel
	err := s.pg.NewSelect(&models).
		Where("phone = ?", phone).
		Where("status IN (?, ?)", string(invoice.StatusActive), string(invoice.StatusOverdue)).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*invoice.Invoice, len(models))
	for i := range models {
		result[i] = fromInvoiceModel(&models[i])
	}
	return result, nil
}

func (s *Store) InvoicesDueBetween(ctx context.Context, from, to time.Time) ([]*invoice.Invoice, error) {
	var models []invoiceModel
	err := s.pg.NewSelect(&models).
		Where("status IN (?, ?)", string(invoice.StatusActive), string(invoice.StatusOverdue)).
		Where("due_date >= ?", from).
		Where("due_date < ?", to).
		OrderExpr("due_date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*invoice.Invoice, len(models))
	for i := range models {
		result[i] = fromInvoiceModel(&models[i])
	}
	return result, nil
}

// ==================== Ledger Store ====================

func (s *Store) AppendEntry(ctx context.Context, e *journal.Entry) error {
	m := toEntryModel(e)
	q := s.pg.NewInsert(m)
	if e.RefID != "" {
		q = q.OnConflict("(phone, entry_type, ref_id) WHERE ref_id != '' DO NOTHING")
	}
	res, err := q.Exec(ctx)
	if err != nil {
		return err
	}
	if e.RefID != "" {
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return paylater.ErrAlreadyExists
		}
	}
	return nil
}

func (s *Store) GetEntry(ctx context.Context, entryID string) (*journal.Entry, error) {
	m := new(entryModel)
	err := s.pg.NewSelect(m).
		Where("id = ?", entryID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, paylater.ErrEntryNotFound
		}
		return nil, err
	}
	return fromEntryModel(m)
}

func (s *Store) ListEntries(ctx context.Context, opts journal.ListOpts) ([]*journal.Entry, error) {
	var models []entryModel
	q := s.pg.NewSelect(&models)

	if opts.Phone != "" {
		q = q.Where("phone = ?", opts.Phone)
	}
	if opts.Type != "" {
		q = q.Where("entry_type = ?", string(opts.Type))
	}
	if opts.RefID != "" {
		q = q.Where("ref_id = ?", opts.RefID)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*journal.Entry, len(models))
	for i := range models {
		e, err := fromEntryModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = e
	}
	return result, nil
}

func (s *Store) EntryExists(ctx context.Context, phone string, t journal.Type, refID string) (bool, error) {
	var count int64
	err := s.pg.NewRaw(`
		SELECT COUNT(1) FROM paylater_ledger
		WHERE phone = ? AND entry_type = ? AND ref_id = ?
	`, phone, string(t), refID).Scan(ctx, &count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ==================== Settings Store ====================

func (s *Store) GetSettings(ctx context.Context) (map[string]string, error) {
	var models []settingModel
	if err := s.pg.NewSelect(&models).Scan(ctx); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(models))
	for i := range models {
		out[models[i].Key] = models[i].Value
	}
	return out, nil
}

func (s *Store) PutSetting(ctx context.Context, key, value string) error {
	if key == "" {
		return paylater.ErrInvalidInput
	}
	m := &settingModel{Key: key, Value: value, UpdatedAt: now()}
	_, err := s.pg.NewInsert(m).
		OnConflict("(key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) DeleteSetting(ctx context.Context, key string) error {
	_, err := s.pg.NewDelete((*settingModel)(nil)).
		Where("key = ?", key).
		Exec(ctx)
	return err
}

// ==================== Schedule Store ====================

func (s *Store) InstallSchedule(ctx context.Context, sched *scheduler.Schedule) error {
	m := toScheduleModel(sched)
	_, err := s.pg.NewInsert(m).
		OnConflict("(name) DO UPDATE").
		Set("every_ns = EXCLUDED.every_ns").
		Set("enabled = EXCLUDED.enabled").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (s *Store) RemoveSchedule(ctx context.Context, name string) error {
	_, err := s.pg.NewDelete((*scheduleModel)(nil)).
		Where("name = ?", name).
		Exec(ctx)
	return err
}

func (s *Store) GetSchedule(ctx context.Context, name string) (*scheduler.Schedule, error) {
	m := new(scheduleModel)
	err := s.pg.NewSelect(m).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, paylater.ErrScheduleNotFound
		}
		return nil, err
	}
	return fromScheduleModel(m)
}

func (s *Store) ListSchedules(ctx context.Context) ([]*scheduler.Schedule, error) {
	var models []scheduleModel
	err := s.pg.NewSelect(&models).
		OrderExpr("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*scheduler.Schedule, len(models))
	for i := range models {
		sched, err := fromScheduleModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = sched
	}
	return result, nil
}

func (s *Store) UpdateSchedule(ctx context.Context, sched *scheduler.Schedule) error {
	m := toScheduleModel(sched)
	m.UpdatedAt = now()
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return paylater.ErrScheduleNotFound
	}
	return nil
}

// ==================== Report Store ====================

func (s *Store) CreateReport(ctx context.Context, r *report.Report) error {
	m := toReportModel(r)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetReport(ctx context.Context, reportID id.ReportID) (*report.Report, error) {
	m := new(reportModel)
	err := s.pg.NewSelect(m).
		Where("id = ?", reportID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, paylater.ErrReportNotFound
		}
		return nil, err
	}
	return fromReportModel(m)
}

func (s *Store) ListReports(ctx context.Context, limit, offset int) ([]*report.Report, error) {
	var models []reportModel
	q := s.pg.NewSelect(&models)

	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	q = q.OrderExpr("period_start DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*report.Report, len(models))
	for i := range models {
		r, err := fromReportModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = r
	}
	return result, nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
