package mongo

import (
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

	Phone             string    `grove:"phone,pk"            bson:"_id"`
	ID                string    `grove:"id"                  bson:"id"`
	UserID            string    `grove:"user_id"             bson:"user_id"`
	CreditLimit       int64     `grove:"credit_limit"        bson:"credit_limit"`
	AvailableLimit    int64     `grove:"available_limit"     bson:"available_limit"`
	UsedLimit         int64     `grove:"used_limit"          bson:"used_limit"`
	Status            string    `grove:"status"              bson:"status"`
	AdminInitialLimit int64     `grove:"admin_initial_limit" bson:"admin_initial_limit"`
	LimitGrowthTotal  int64     `grove:"limit_growth_total"  bson:"limit_growth_total"`
	Version           int64     `grove:"version"             bson:"version"`
	CreatedAt         time.Time `grove:"created_at"          bson:"created_at"`
	UpdatedAt         time.Time `grove:"updated_at"          bson:"updated_at"`
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

	ID                 string     `grove:"id,pk"                bson:"_id"`
	Phone              string     `grove:"phone"                bson:"phone"`
	SourceOrderID      string     `grove:"source_order_id"      bson:"source_order_id"`
	Principal          int64      `grove:"principal"            bson:"principal"`
	TenorWeeks         int        `grove:"tenor_weeks"          bson:"tenor_weeks"`
	FeePercent         float64    `grove:"fee_percent"          bson:"fee_percent"`
	FeeAmount          int64      `grove:"fee_amount"           bson:"fee_amount"`
	TotalBeforePenalty int64      `grove:"total_before_penalty" bson:"total_before_penalty"`
	PenaltyAmount      int64      `grove:"penalty_amount"       bson:"penalty_amount"`
	TotalDue           int64      `grove:"total_due"            bson:"total_due"`
	PaidAmount         int64      `grove:"paid_amount"          bson:"paid_amount"`
	DueDate            time.Time  `grove:"due_date"             bson:"due_date"`
	PaidAt             *time.Time `grove:"paid_at"              bson:"paid_at,omitempty"`
	Status             string     `grove:"status"               bson:"status"`
	Notes              string     `grove:"notes"                bson:"notes"`
	CreatedAt          time.Time  `grove:"created_at"           bson:"created_at"`
	UpdatedAt          time.Time  `grove:"updated_at"           bson:"updated_at"`
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

	ID            string    `grove:"id,pk"          bson:"_id"`
	Phone         string    `grove:"phone"          bson:"phone"`
	EntryType     string    `grove:"entry_type"     bson:"entry_type"`
	Amount        int64     `grove:"amount"         bson:"amount"`
	BalanceBefore int64     `grove:"balance_before" bson:"balance_before"`
	BalanceAfter  int64     `grove:"balance_after"  bson:"balance_after"`
	RefID         string    `grove:"ref_id"         bson:"ref_id"`
	Actor         string    `grove:"actor"          bson:"actor"`
	Notes         string    `grove:"notes"          bson:"notes"`
	CreatedAt     time.Time `grove:"created_at"     bson:"created_at"`
	UpdatedAt     time.Time `grove:"updated_at"     bson:"updated_at"`
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

	Key       string    `grove:"key,pk"     bson:"_id"`
	Value     string    `grove:"value"      bson:"value"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
}

// ==================== Schedule models ====================

type scheduleModel struct {
	grove.BaseModel `grove:"table:paylater_schedules"`

	Name      string     `grove:"name,pk"    bson:"_id"`
	ID        string     `grove:"id"         bson:"id"`
	EveryNS   int64      `grove:"every_ns"   bson:"every_ns"`
	Enabled   bool       `grove:"enabled"    bson:"enabled"`
	LastRun   *time.Time `grove:"last_run"   bson:"last_run,omitempty"`
	LastErr   string     `grove:"last_err"   bson:"last_err"`
	RunCount  int64      `grove:"run_count"  bson:"run_count"`
	CreatedAt time.Time  `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `grove:"updated_at" bson:"updated_at"`
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

	ID          string          `grove:"id,pk"        bson:"_id"`
	PeriodStart time.Time       `grove:"period_start" bson:"period_start"`
	PeriodEnd   time.Time       `grove:"period_end"   bson:"period_end"`
	Stats       reportStatModel `grove:"stats"        bson:"stats"`
	CreatedAt   time.Time       `grove:"created_at"   bson:"created_at"`
	UpdatedAt   time.Time       `grove:"updated_at"   bson:"updated_at"`
}

type reportStatModel struct {
	InvoicesOpened    int    `bson:"invoices_opened"`
	InvoicesPaid      int    `bson:"invoices_paid"`
	InvoicesOverdue   int    `bson:"invoices_overdue"`
	InvoicesDefaulted int    `bson:"invoices_defaulted"`
	PrincipalIssued   int64  `bson:"principal_issued"`
	FeesCharged       int64  `bson:"fees_charged"`
	PenaltiesAccrued  int64  `bson:"penalties_accrued"`
	PaymentsReceived  int64  `bson:"payments_received"`
	LimitGranted      int64  `bson:"limit_granted"`
	LimitReversed     int64  `bson:"limit_reversed"`
	AccountsFrozen    int    `bson:"accounts_frozen"`
	AccountsLocked    int    `bson:"accounts_locked"`
	OutstandingDue    int64  `bson:"outstanding_due"`
	Currency          string `bson:"currency"`
}

func toReportModel(r *report.Report) *reportModel {
	return &reportModel{
		ID:          r.ID.String(),
		PeriodStart: r.PeriodStart,
		PeriodEnd:   r.PeriodEnd,
		Stats: reportStatModel{
			InvoicesOpened:    r.Stats.InvoicesOpened,
			InvoicesPaid:      r.Stats.InvoicesPaid,
			InvoicesOverdue:   r.Stats.InvoicesOverdue,
			InvoicesDefaulted: r.Stats.InvoicesDefaulted,
			PrincipalIssued:   r.Stats.PrincipalIssued.Amount,
			FeesCharged:       r.Stats.FeesCharged.Amount,
			PenaltiesAccrued:  r.Stats.PenaltiesAccrued.Amount,
			PaymentsReceived:  r.Stats.PaymentsReceived.Amount,
			LimitGranted:      r.Stats.LimitGranted.Amount,
			LimitReversed:     r.Stats.LimitReversed.Amount,
			AccountsFrozen:    r.Stats.AccountsFrozen,
			AccountsLocked:    r.Stats.AccountsLocked,
			OutstandingDue:    r.Stats.OutstandingDue.Amount,
			Currency:          r.Stats.PrincipalIssued.Currency,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func fromReportModel(m *reportModel) (*report.Report, error) {
	reportID, err := id.ParseReportID(m.ID)
	if err != nil {
		return nil, err
	}

	currency := m.Stats.Currency
	if currency == "" {
		currency = "idr"
	}

	return &report.Report{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:          reportID,
		PeriodStart: m.PeriodStart,
		PeriodEnd:   m.PeriodEnd,
		Stats: report.Stats{
			InvoicesOpened:    m.Stats.InvoicesOpened,
			InvoicesPaid:      m.Stats.InvoicesPaid,
			InvoicesOverdue:   m.Stats.InvoicesOverdue,
			InvoicesDefaulted: m.Stats.InvoicesDefaulted,
			PrincipalIssued:   types.Money{Amount: m.Stats.PrincipalIssued, Currency: currency},
			FeesCharged:       types.Money{Amount: m.Stats.FeesCharged, Currency: currency},
			PenaltiesAccrued:  types.Money{Amount: m.Stats.PenaltiesAccrued, Currency: currency},
			PaymentsReceived:  types.Money{Amount: m.Stats.PaymentsReceived, Currency: currency},
			LimitGranted:      types.Money{Amount: m.Stats.LimitGranted, Currency: currency},
			LimitReversed:     types.Money{Amount: m.Stats.LimitReversed, Currency: currency},
			AccountsFrozen:    m.Stats.AccountsFrozen,
			AccountsLocked:    m.Stats.AccountsLocked,
			OutstandingDue:    types.Money{Amount: m.Stats.OutstandingDue, Currency: currency},
		},
	}, nil
}
