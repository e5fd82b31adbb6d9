package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/paylater"
	"github.com/xraph/paylater/account"
	"github.com/xraph/paylater/id"
	"github.com/xraph/paylater/invoice"
	"github.com/xraph/paylater/journal"
	"github.com/xraph/paylater/report"
	"github.com/xraph/paylater/scheduler"
	paystore "github.com/xraph/paylater/store"
)

// Collection name constants.
const (
	colAccounts  = "paylater_accounts"
	colInvoices  = "paylater_invoices"
	colLedger    = "paylater_ledger"
	colSettings  = "paylater_settings"
	colSchedules = "paylater_schedules"
	colReports   = "paylater_reports"
)

// compile-time interface check
var _ paystore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all paylater collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("paylater/mongo: migrate %s indexes: %w", col, err)
		}
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
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return paylater.ErrAlreadyExists
		}
		return fmt.Errorf("paylater/mongo: create account: %w", err)
	}
	return nil
}

func (s *Store) GetAccount(ctx context.Context, phone string) (*account.Account, error) {
	var m accountModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": phone}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, paylater.ErrAccountNotFound
		}
		return nil, fmt.Errorf("paylater/mongo: get account: %w", err)
	}
	return fromAccountModel(&m)
}

// UpdateAccount filters on (_id, version) so a concurrent writer surfaces as
// a version conflict instead of a lost update.
func (s *Store) UpdateAccount(ctx context.Context, a *account.Account) error {
	m := toAccountModel(a)
	res, err := s.mdb.NewUpdate((*accountModel)(nil)).
		Filter(bson.M{"_id": m.Phone, "version": m.Version}).
		Set("user_id", m.UserID).
		Set("credit_limit", m.CreditLimit).
		Set("available_limit", m.AvailableLimit).
		Set("used_limit", m.UsedLimit).
		Set("status", m.Status).
		Set("admin_initial_limit", m.AdminInitialLimit).
		Set("limit_growth_total", m.LimitGrowthTotal).
		Set("version", m.Version+1).
		Set("updated_at", now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("paylater/mongo: update account: %w", err)
	}
	if res.MatchedCount() == 0 {
		return paylater.ErrVersionConflict
	}
	a.Version = m.Version + 1
	return nil
}

func (s *Store) ListAccounts(ctx context.Context, opts account.ListOpts) ([]*account.Account, error) {
	var models []accountModel

	filter := bson.M{}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "_id", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("paylater/mongo: list accounts: %w", err)
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
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return paylater.ErrInvoiceExists
		}
		return fmt.Errorf("paylater/mongo: create invoice: %w", err)
	}
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, invoiceID string) (*invoice.Invoice, error) {
	var m invoiceModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": invoiceID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, paylater.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("paylater/mongo: get invoice: %w", err)
	}
	return fromInvoiceModel(&m), nil
}

func (s *Store) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	m := toInvoiceModel(inv)
	m.UpdatedAt = now()

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("paylater/mongo: update invoice: %w", err)
	}
	if res.MatchedCount() == 0 {
		return paylater.ErrInvoiceNotFound
	}
	return nil
}

func (s *Store) ListInvoices(ctx context.Context, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	var models []invoiceModel

	filter := bson.M{}
	if opts.Phone != "" {
		filter["phone"] = opts.Phone
	}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("paylater/mongo: list invoices: %w", err)
	}

	result := make([]*invoice.Invoice, len(models))
	for i := range models {
		result[i] = fromInvoiceModel(&models[i])
	}
	return result, nil
}

func (s *Store) ActiveInvoicesByPhone(ctx context.Context, phone string) ([]*invoice.Invoice, error) {
	var models []invoiceModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{
			"phone":  phone,
			"status": bson.M{"$in": bson.A{string(invoice.StatusActive), string(invoice.StatusOverdue)}},
		}).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("paylater/mongo: active invoices: %w", err)
	}

	result := make([]*invoice.Invoice, len(models))
	for i := range models {
		result[i] = fromInvoiceModel(&models[i])
	}
	return result, nil
}

func (s *Store) InvoicesDueBetween(ctx context.Context, from, to time.Time) ([]*invoice.Invoice, error) {
	var models []invoiceModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{
			"status":   bson.M{"$in": bson.A{string(invoice.StatusActive), string(invoice.StatusOverdue)}},
			"due_date": bson.M{"$gte": from, "$lt": to},
		}).
		Sort(bson.D{{Key: "due_date", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("paylater/mongo: invoices due: %w", err)
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
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return paylater.ErrAlreadyExists
		}
		return fmt.Errorf("paylater/mongo: append entry: %w", err)
	}
	return nil
}

func (s *Store) GetEntry(ctx context.Context, entryID string) (*journal.Entry, error) {
	var m entryModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": entryID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, paylater.ErrEntryNotFound
		}
		return nil, fmt.Errorf("paylater/mongo: get entry: %w", err)
	}
	return fromEntryModel(&m)
}

func (s *Store) ListEntries(ctx context.Context, opts journal.ListOpts) ([]*journal.Entry, error) {
	var models []entryModel

	filter := bson.M{}
	if opts.Phone != "" {
		filter["phone"] = opts.Phone
	}
	if opts.Type != "" {
		filter["entry_type"] = string(opts.Type)
	}
	if opts.RefID != "" {
		filter["ref_id"] = opts.RefID
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("paylater/mongo: list entries: %w", err)
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
	var m entryModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"phone": phone, "entry_type": string(t), "ref_id": refID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return false, nil
		}
		return false, fmt.Errorf("paylater/mongo: entry exists: %w", err)
	}
	return true, nil
}

// ==================== Settings Store ====================

func (s *Store) GetSettings(ctx context.Context) (map[string]string, error) {
	var models []settingModel
	if err := s.mdb.NewFind(&models).Filter(bson.M{}).Scan(ctx); err != nil {
		return nil, fmt.Errorf("paylater/mongo: get settings: %w", err)
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
	_, err := s.mdb.NewUpdate((*settingModel)(nil)).
		Filter(bson.M{"_id": key}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":        key,
			"value":      value,
			"updated_at": now(),
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("paylater/mongo: put setting: %w", err)
	}
	return nil
}

func (s *Store) DeleteSetting(ctx context.Context, key string) error {
	_, err := s.mdb.NewDelete((*settingModel)(nil)).
		Filter(bson.M{"_id": key}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("paylater/mongo: delete setting: %w", err)
	}
	return nil
}

// ==================== Schedule Store ====================

func (s *Store) InstallSchedule(ctx context.Context, sched *scheduler.Schedule) error {
	m := toScheduleModel(sched)
	_, err := s.mdb.NewUpdate((*scheduleModel)(nil)).
		Filter(bson.M{"_id": m.Name}).
		SetUpdate(bson.M{
			"$set": bson.M{
				"every_ns":   m.EveryNS,
				"enabled":    m.Enabled,
				"updated_at": now(),
			},
			"$setOnInsert": bson.M{
				"_id":        m.Name,
				"id":         m.ID,
				"last_err":   "",
				"run_count":  int64(0),
				"created_at": m.CreatedAt,
			},
		}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("paylater/mongo: install schedule: %w", err)
	}
	return nil
}

func (s *Store) RemoveSchedule(ctx context.Context, name string) error {
	_, err := s.mdb.NewDelete((*scheduleModel)(nil)).
		Filter(bson.M{"_id": name}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("paylater/mongo: remove schedule: %w", err)
	}
	return nil
}

func (s *Store) GetSchedule(ctx context.Context, name string) (*scheduler.Schedule, error) {
	var m scheduleModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": name}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, paylater.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("paylater/mongo: get schedule: %w", err)
	}
	return fromScheduleModel(&m)
}

func (s *Store) ListSchedules(ctx context.Context) ([]*scheduler.Schedule, error) {
	var models []scheduleModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("paylater/mongo: list schedules: %w", err)
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

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.Name}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("paylater/mongo: update schedule: %w", err)
	}
	if res.MatchedCount() == 0 {
		return paylater.ErrScheduleNotFound
	}
	return nil
}

// ==================== Report Store ====================

func (s *Store) CreateReport(ctx context.Context, r *report.Report) error {
	m := toReportModel(r)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("paylater/mongo: create report: %w", err)
	}
	return nil
}

func (s *Store) GetReport(ctx context.Context, reportID id.ReportID) (*report.Report, error) {
	var m reportModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": reportID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, paylater.ErrReportNotFound
		}
		return nil, fmt.Errorf("paylater/mongo: get report: %w", err)
	}
	return fromReportModel(&m)
}

func (s *Store) ListReports(ctx context.Context, limit, offset int) ([]*report.Report, error) {
	var models []reportModel

	q := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "period_start", Value: -1}})

	if limit > 0 {
		q = q.Limit(int64(limit))
	}
	if offset > 0 {
		q = q.Skip(int64(offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("paylater/mongo: list reports: %w", err)
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

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all paylater collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colAccounts: {
			{
				Keys:    bson.D{{Key: "id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		colInvoices: {
			{Keys: bson.D{{Key: "phone", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "due_date", Value: 1}}},
		},
		colLedger: {
			{Keys: bson.D{{Key: "phone", Value: 1}, {Key: "created_at", Value: 1}}},
			{
				Keys: bson.D{{Key: "phone", Value: 1}, {Key: "entry_type", Value: 1}, {Key: "ref_id", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"ref_id": bson.M{"$ne": ""}}),
			},
		},
		colSettings:  {},
		colSchedules: {},
		colReports: {
			{Keys: bson.D{{Key: "period_start", Value: -1}}},
		},
	}
}
