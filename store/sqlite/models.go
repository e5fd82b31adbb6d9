package sqlite

import (
	"encoding/json"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/paylater/account"
	"github.com/xraph/paylater/id"
	"github.com/xraph/paylater/invoice"
	"github.com/xraph/paylater/journal"
	"github.com/xraph/paylater/report"
	"github.com/xraph/paylater/scheduler"
	"github.com/xraph/paylater/types"
)

// ==================== Account models ====================

type accountModel struct {
	grove.BaseModel `grove:"table:paylater_accounts"`

	Phone             string    `grove:"phone,pk"`
	ID                string    `grove:"id"`
	UserID            string    `grove:"user_id"`
	CreditLimit       int64     `grove:"credit_limit"`
	AvailableLimit    int64     `grove:"available_limit"`
	UsedLimit         int64     `grove:"used_limit"`
	Status            string    `grove:"status"`
	AdminInitialLimit int64     `grove:"admin_initial_limit"`
	LimitGrowthTotal  int64     `grove:"limit_growth_total"`
	Version           int64     `grove:"version"`
	CreatedAt         time.Time `grove:"created_at"`
	UpdatedAt         time.Time `grove:"updated_at"`
}

func toAccountModel(a *account.Account) *accountModel {
	return &accountModel{
		Phone:             a.Phone,
		ID:                a.ID.String(),
		UserID:            a.UserID,
		CreditLimit:       a.CreditLimit,
		AvailableLimit:    a.AvailableLimit,
		UsedLimit:         a.UsedLimit,
		Status:            string(a.Status),
		AdminInitialLimit: a.AdminInitialLimit,
		LimitGrowthTotal:  a.LimitGrowthTotal,
		Version:           a.Version,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func fromAccountModel(m *accountModel) (*account.Account, error) {
	acctID, err := id.ParseAccountID(m.ID)
	if err != nil {
		return nil, err
	}

	return &account.Account{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:                acctID,
		Phone:             m.Phone,
		UserID:            m.UserID,
		CreditLimit:       m.CreditLimit,
		AvailableLimit:    m.AvailableLimit,
		UsedLimit:         m.UsedLimit,
		Status:            account.Status(m.Status),
		AdminInitialLimit: m.AdminInitialLimit,
		LimitGrowthTotal:  m.LimitGrowthTotal,
		Version:           m.Version,
	}, nil
}

// ==================== Invoice models ====================

type invoiceModel struct {
	grove.BaseModel `grove:"table:paylater_invoices"`

	ID                 string     `grove:"id,pk"`
	Phone              string     `grove:"phone"`
	SourceOrderID      string     `grove:"source_order_id"`
	Principal          int64      `grove:"principal"`
	TenorWeeks         int        `grove:"tenor_weeks"`
	FeePercent         float64    `grove:"fee_percent"`
	FeeAmount          int64      `grove:"fee_amount"`
	TotalBeforePenalty int64      `grove:"total_before_penalty"`
	PenaltyAmount      int64      `grove:"penalty_amount"`
	TotalDue           int64      `grove:"total_due"`
	PaidAmount         int64      `grove:"paid_amount"`
	DueDate            time.Time  `grove:"due_date"`
	PaidAt             *time.Time `grove:"paid_at"`
	Status             string     `grove:"status"`
	Notes              string     `grove:"notes"`
	CreatedAt          time.Time  `grove:"created_at"`
	UpdatedAt          time.Time  `grove:"updated_at"`
}

func toInvoiceModel(inv *invoice.Invoice) *invoiceModel {
	return &invoiceModel{
		ID:                 inv.ID,
		Phone:              inv.Phone,
		SourceOrderID:      inv.SourceOrderID,
		Principal:          inv.Principal,
		TenorWeeks:         inv.TenorWeeks,
		FeePercent:         inv.FeePercent,
		FeeAmount:          inv.FeeAmount,
		TotalBeforePenalty: inv.TotalBeforePenalty,
		PenaltyAmount:      inv.PenaltyAmount,
		TotalDue:           inv.TotalDue,
		PaidAmount:         inv.PaidAmount,
		DueDate:            inv.DueDate,
		PaidAt:             inv.PaidAt,
		Status:             string(inv.Status),
		Notes:              inv.Notes,
		CreatedAt:          inv.CreatedAt,
		UpdatedAt:          inv.UpdatedAt,
	}
}

func fromInvoiceModel(m *invoiceModel) *invoice.Invoice {
	return &invoice.Invoice{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:                 m.ID,
		Phone:              m.Phone,
		SourceOrderID:      m.SourceOrderID,
		Principal:          m.Principal,
		TenorWeeks:         m.TenorWeeks,
		FeePercent:         m.FeePercent,
		FeeAmount:          m.FeeAmount,
		TotalBeforePenalty: m.TotalBeforePenalty,
		PenaltyAmount:      m.PenaltyAmount,
		TotalDue:           m.TotalDue,
		PaidAmount:         m.PaidAmount,
		DueDate:            m.DueDate,
		PaidAt:             m.PaidAt,
		Status:             invoice.Status(m.Status),
		Notes:              m.Notes,
	}
}

// ==================== Ledger models ====================

type entryModel struct {
	grove.BaseModel `grove:"table:paylater_ledger"`

	ID            string    `grove:"id,pk"`
	Phone         string    `grove:"phone"`
	EntryType     string    `grove:"entry_type"`
	Amount        int64     `grove:"amount"`
	BalanceBefore int64     `grove:"balance_before"`
	BalanceAfter  int64     `grove:"balance_after"`
	RefID         string    `grove:"ref_id"`
	Actor         string    `grove:"actor"`
	Notes         string    `grove:"notes"`
	CreatedAt     time.Time `grove:"created_at"`
	UpdatedAt     time.Time `grove:"updated_at"`
}

func toEntryModel(e *journal.Entry) *entryModel {
	return &entryModel{
		ID:            e.ID.String(),
		Phone:         e.Phone,
		EntryType:     string(e.Type),
		Amount:        e.Amount,
		BalanceBefore: e.Balance.Before,
		BalanceAfter:  e.Balance.After,
		RefID:         e.RefID,
		Actor:         e.Actor,
		Notes:         e.Notes,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func fromEntryModel(m *entryModel) (*journal.Entry, error) {
	entryID, err := id.ParseEntryID(m.ID)
	if err != nil {
		return nil, err
	}

	return &journal.Entry{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:     entryID,
		Phone:  m.Phone,
		Type:   journal.Type(m.EntryType),
		Amount: m.Amount,
		Balance: journal.Balance{
			Before: m.BalanceBefore,
			After:  m.BalanceAfter,
		},
		RefID: m.RefID,
		Actor: m.Actor,
		Notes: m.Notes,
	}, nil
}

// ==================== Settings models ====================

type settingModel struct {
	grove.BaseModel `grove:"table:paylater_settings"`

	Key       string    `grove:"key,pk"`
	Value     string    `grove:"value"`
	UpdatedAt time.Time `grove:"updated_at"`
}

// ==================== Schedule models ====================

type scheduleModel struct {
	grove.BaseModel `grove:"table:paylater_schedules"`

	Name      string     `grove:"name,pk"`
	ID        string     `grove:"id"`
	EveryNS   int64      `grove:"every_ns"`
	Enabled   bool       `grove:"enabled"`
	LastRun   *time.Time `grove:"last_run"`
	LastErr   string     `grove:"last_err"`
	RunCount  int64      `grove:"run_count"`
	CreatedAt time.Time  `grove:"created_at"`
	UpdatedAt time.Time  `grove:"updated_at"`
}

func toScheduleModel(s *scheduler.Schedule) *scheduleModel {
	return &scheduleModel{
		Name:      s.Name,
		ID:        s.ID.String(),
		EveryNS:   int64(s.Every),
		Enabled:   s.Enabled,
		LastRun:   s.LastRun,
		LastErr:   s.LastErr,
		RunCount:  s.RunCount,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func fromScheduleModel(m *scheduleModel) (*scheduler.Schedule, error) {
	jobID, err := id.ParseJobID(m.ID)
	if err != nil {
		return nil, err
	}

	return &scheduler.Schedule{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:       jobID,
		Name:     m.Name,
		Every:    time.Duration(m.EveryNS),
		Enabled:  m.Enabled,
		LastRun:  m.LastRun,
		LastErr:  m.LastErr,
		RunCount: m.RunCount,
	}, nil
}

// ==================== Report models ====================

type reportModel struct {
	grove.BaseModel `grove:"table:paylater_reports"`

	ID          string          `grove:"id,pk"`
	PeriodStart time.Time       `grove:"period_start"`
	PeriodEnd   time.Time       `grove:"period_end"`
	Stats       json.RawMessage `grove:"stats"`
	CreatedAt   time.Time       `grove:"created_at"`
	UpdatedAt   time.Time       `grove:"updated_at"`
}

func toReportModel(r *report.Report) *reportModel {
	stats, _ := json.Marshal(r.Stats) //nolint:errcheck // best-effort

	return &reportModel{
		ID:          r.ID.String(),
		PeriodStart: r.PeriodStart,
		PeriodEnd:   r.PeriodEnd,
		Stats:       stats,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func fromReportModel(m *reportModel) (*report.Report, error) {
	reportID, err := id.ParseReportID(m.ID)
	if err != nil {
		return nil, err
	}

	var stats report.Stats
	if len(m.Stats) > 0 {
		_ = json.Unmarshal(m.Stats, &stats) //nolint:errcheck // best-effort
	}

	return &report.Report{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:          reportID,
		PeriodStart: m.PeriodStart,
		PeriodEnd:   m.PeriodEnd,
		Stats:       stats,
	}, nil
}
