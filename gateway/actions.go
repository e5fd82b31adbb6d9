package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/xraph/paylater"
	"github.com/xraph/paylater/account"
	"github.com/xraph/paylater/id"
	"github.com/xraph/paylater/preview"
	"github.com/xraph/paylater/scheduler"
	"github.com/xraph/paylater/types"
)

// Action names accepted by the gateway.
const (
	ActionAccountGet      = "credit_account_get"
	ActionAccountUpsert   = "credit_account_upsert"
	ActionAccountStatus   = "credit_account_set_status"
	ActionInvoicePreview  = "credit_invoice_preview"
	ActionInvoiceCreate   = "credit_invoice_create"
	ActionInvoicePay      = "credit_invoice_pay"
	ActionApplyPenalty    = "credit_invoice_apply_penalty"
	ActionLimitFromProfit = "credit_limit_from_profit"
	ActionLimitReversal   = "credit_limit_refund_reversal"
	ActionProcessOrders   = "process_paylater_limit_from_orders"

	ActionInstallLimitScheduler = "install_paylater_limit_scheduler"
	ActionRemoveLimitScheduler  = "remove_paylater_limit_scheduler"
	ActionGetLimitScheduler     = "get_paylater_limit_scheduler"

	ActionRunDueNotifications      = "run_paylater_due_notifications"
	ActionInstallDueNoticeSchedule = "install_paylater_due_notification_scheduler"
	ActionRemoveDueNoticeSchedule  = "remove_paylater_due_notification_scheduler"
	ActionGetDueNoticeSchedule     = "get_paylater_due_notification_scheduler"

	ActionRunPostmortem     = "run_paylater_postmortem_two_weeks"
	ActionGetPostmortemLogs = "get_paylater_postmortem_logs"
)

// Wire error codes.
const (
	codeInvalidInput      = "INVALID_INPUT"
	codeUnknownAction     = "UNKNOWN_ACTION"
	codeForbidden         = "FORBIDDEN"
	codeNotFound          = "NOT_FOUND"
	codeConflict          = "CONFLICT"
	codeDisabled          = "PAYLATER_DISABLED"
	codeAccountFrozen     = "ACCOUNT_FROZEN"
	codeAccountLocked     = "ACCOUNT_LOCKED"
	codeAccountInactive   = "ACCOUNT_INACTIVE"
	codeActiveInvoice     = "ACTIVE_INVOICE_EXISTS"
	codeBelowMinOrder     = "BELOW_MIN_ORDER"
	codeInsufficientLimit = "INSUFFICIENT_LIMIT"
	codeAlreadyTerminal   = "ALREADY_TERMINAL"
	codeLockTimeout       = "LOCK_TIMEOUT"
	codeUnknownJob        = "UNKNOWN_JOB"
	codeInternal          = "INTERNAL"
)

// errorCode maps an engine error to its HTTP status and wire code.
func errorCode(err error) (int, string) {
	var verr paylater.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, codeInvalidInput
	case errors.Is(err, paylater.ErrDisabled):
		return http.StatusForbidden, codeDisabled
	case errors.Is(err, paylater.ErrAccountFrozen):
		return http.StatusForbidden, codeAccountFrozen
	case errors.Is(err, paylater.ErrAccountLocked):
		return http.StatusForbidden, codeAccountLocked
	case errors.Is(err, paylater.ErrAccountInactive):
		return http.StatusForbidden, codeAccountInactive
	case errors.Is(err, paylater.ErrActiveInvoice):
		return http.StatusConflict, codeActiveInvoice
	case errors.Is(err, paylater.ErrBelowMinOrder):
		return http.StatusBadRequest, codeBelowMinOrder
	case errors.Is(err, paylater.ErrInsufficientLimit):
		return http.StatusConflict, codeInsufficientLimit
	case errors.Is(err, paylater.ErrUnknownJob):
		return http.StatusBadRequest, codeUnknownJob
	case paylater.IsTerminal(err):
		return http.StatusConflict, codeAlreadyTerminal
	case errors.Is(err, paylater.ErrLockTimeout):
		return http.StatusServiceUnavailable, codeLockTimeout
	case paylater.IsNotFound(err):
		return http.StatusNotFound, codeNotFound
	case paylater.IsConflict(err):
		return http.StatusConflict, codeConflict
	}
	return http.StatusInternalServerError, codeInternal
}

// actionHandler decodes one action's payload and invokes the engine.
type actionHandler func(r *http.Request, data json.RawMessage) (any, error)

func (s *Server) actions() map[string]actionHandler {
	return map[string]actionHandler{
		ActionAccountGet:      s.actionAccountGet,
		ActionAccountUpsert:   s.actionAccountUpsert,
		ActionAccountStatus:   s.actionAccountStatus,
		ActionInvoicePreview:  s.actionInvoicePreview,
		ActionInvoiceCreate:   s.actionInvoiceCreate,
		ActionInvoicePay:      s.actionInvoicePay,
		ActionApplyPenalty:    s.actionApplyPenalty,
		ActionLimitFromProfit: s.actionLimitFromProfit,
		ActionLimitReversal:   s.actionLimitReversal,
		ActionProcessOrders:   s.actionProcessOrders,

		ActionInstallLimitScheduler: s.installScheduler(scheduler.JobLimitGrant),
		ActionRemoveLimitScheduler:  s.removeScheduler(scheduler.JobLimitGrant),
		ActionGetLimitScheduler:     s.getScheduler(scheduler.JobLimitGrant),

		ActionRunDueNotifications:      s.actionRunDueNotifications,
		ActionInstallDueNoticeSchedule: s.installScheduler(scheduler.JobDueNotice),
		ActionRemoveDueNoticeSchedule:  s.removeScheduler(scheduler.JobDueNotice),
		ActionGetDueNoticeSchedule:     s.getScheduler(scheduler.JobDueNotice),

		ActionRunPostmortem:     s.actionRunPostmortem,
		ActionGetPostmortemLogs: s.actionGetPostmortemLogs,
	}
}

func decode[T any](data json.RawMessage) (T, error) {
	var v T
	if len(data) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, paylater.ValidationError{Field: "data", Message: "malformed payload"}
	}
	return v, nil
}

func (s *Server) actionAccountGet(r *http.Request, data json.RawMessage) (any, error) {
	req, err := decode[struct {
		Phone string `json:"phone"`
	}](data)
	if err != nil {
		return nil, err
	}
	return s.engine.GetSnapshot(r.Context(), req.Phone)
}

func (s *Server) actionAccountUpsert(r *http.Request, data json.RawMessage) (any, error) {
	req, err := decode[struct {
		Phone       string `json:"phone"`
		UserID      string `json:"user_id"`
		CreditLimit int64  `json:"credit_limit"`
	}](data)
	if err != nil {
		return nil, err
	}
	return s.engine.UpsertAccount(r.Context(), req.Phone, req.UserID, req.CreditLimit)
}

func (s *Server) actionAccountStatus(r *http.Request, data json.RawMessage) (any, error) {
	req, err := decode[struct {
		Phone  string `json:"phone"`
		Status string `json:"status"`
		Actor  string `json:"actor"`
	}](data)
	if err != nil {
		return nil, err
	}
	return s.engine.SetAccountStatus(r.Context(), req.Phone, account.Status(req.Status), req.Actor)
}

// actionInvoicePreview quotes fees and installments through the same math
// the calculator uses, fed from the live resolved settings.
func (s *Server) actionInvoicePreview(r *http.Request, data json.RawMessage) (any, error) {
	req, err := decode[struct {
		Principal  int64 `json:"principal"`
		TenorWeeks int   `json:"tenor_weeks"`
	}](data)
	if err != nil {
		return nil, err
	}
	if req.Principal <= 0 {
		return nil, paylater.ValidationError{Field: "principal", Message: "must be positive"}
	}

	cfg := s.engine.Config(r.Context())
	q := preview.QuoteFor(req.Principal, req.TenorWeeks, preview.Terms{
		TenorFees:           cfg.TenorFees,
		DailyPenaltyPercent: cfg.DailyPenaltyPercent,
		PenaltyCapPercent:   cfg.PenaltyCapPercent,
	})
	return struct {
		preview.Quote
		Display quoteDisplay `json:"display"`
	}{
		Quote: q,
		Display: quoteDisplay{
			FeeAmount:          types.IDR(q.FeeAmount),
			TotalBeforePenalty: types.Sum(types.IDR(q.Principal), types.IDR(q.FeeAmount)),
			WeeklyInstallment:  types.IDR(q.WeeklyInstallment),
		},
	}, nil
}

// quoteDisplay renders the quoted amounts in the ledger currency so
// clients get formatted rupiah strings alongside the raw figures.
type quoteDisplay struct {
	FeeAmount          types.Money `json:"fee_amount"`
	TotalBeforePenalty types.Money `json:"total_before_penalty"`
	WeeklyInstallment  types.Money `json:"weekly_installment"`
}

func (s *Server) actionInvoiceCreate(r *http.Request, data json.RawMessage) (any, error) {
	req, err := decode[paylater.OpenInvoiceRequest](data)
	if err != nil {
		return nil, err
	}
	return s.engine.OpenInvoice(r.Context(), req)
}

func (s *Server) actionInvoicePay(r *http.Request, data json.RawMessage) (any, error) {
	req, err := decode[paylater.PayRequest](data)
	if err != nil {
		return nil, err
	}
	return s.engine.PayInvoice(r.Context(), req)
}

// actionApplyPenalty targets one invoice when invoice_id is set, otherwise
// sweeps every overdue invoice.
func (s *Server) actionApplyPenalty(r *http.Request, data json.RawMessage) (any, error) {
	req, err := decode[struct {
		InvoiceID string `json:"invoice_id"`
		Actor     string `json:"actor"`
	}](data)
	if err != nil {
		return nil, err
	}
	if req.InvoiceID != "" {
		return s.engine.ApplyPenalty(r.Context(), req.InvoiceID, req.Actor)
	}
	return s.engine.SweepPenalties(r.Context())
}

func (s *Server) actionLimitFromProfit(r *http.Request, data json.RawMessage) (any, error) {
	req, err := decode[struct {
		Phone     string `json:"phone"`
		OrderID   string `json:"order_id"`
		ProfitNet int64  `json:"profit_net"`
		Actor     string `json:"actor"`
	}](data)
	if err != nil {
		return nil, err
	}
	return s.engine.GrantLimitFromProfit(r.Context(), req.Phone, req.OrderID, req.ProfitNet, req.Actor)
}

func (s *Server) actionLimitReversal(r *http.Request, data json.RawMessage) (any, error) {
	req, err := decode[struct {
		Phone   string `json:"phone"`
		OrderID string `json:"order_id"`
		Actor   string `json:"actor"`
	}](data)
	if err != nil {
		return nil, err
	}
	return s.engine.ReverseLimitGrant(r.Context(), req.Phone, req.OrderID, req.Actor)
}

func (s *Server) actionProcessOrders(r *http.Request, _ json.RawMessage) (any, error) {
	granted, err := s.engine.ProcessLimitFromOrders(r.Context())
	if err != nil {
		return nil, err
	}
	return map[string]any{"granted": granted}, nil
}

func (s *Server) actionRunDueNotifications(r *http.Request, _ json.RawMessage) (any, error) {
	notified, err := s.engine.NotifyDueSoon(r.Context())
	if err != nil {
		return nil, err
	}
	return map[string]any{"notified": notified}, nil
}

func (s *Server) installScheduler(job string) actionHandler {
	return func(r *http.Request, data json.RawMessage) (any, error) {
		req, err := decode[struct {
			Every string `json:"every"`
		}](data)
		if err != nil {
			return nil, err
		}

		every := 24 * time.Hour
		if req.Every != "" {
			every, err = time.ParseDuration(req.Every)
			if err != nil {
				return nil, paylater.ValidationError{Field: "every", Message: "malformed duration"}
			}
		}
		return s.engine.InstallSchedule(r.Context(), job, every)
	}
}

func (s *Server) removeScheduler(job string) actionHandler {
	return func(r *http.Request, _ json.RawMessage) (any, error) {
		if err := s.engine.RemoveSchedule(r.Context(), job); err != nil {
			return nil, err
		}
		return map[string]any{"removed": job}, nil
	}
}

func (s *Server) getScheduler(job string) actionHandler {
	return func(r *http.Request, _ json.RawMessage) (any, error) {
		return s.engine.GetSchedule(r.Context(), job)
	}
}

func (s *Server) actionRunPostmortem(r *http.Request, _ json.RawMessage) (any, error) {
	return s.engine.GeneratePostmortemTwoWeeks(r.Context())
}

func (s *Server) actionGetPostmortemLogs(r *http.Request, data json.RawMessage) (any, error) {
	req, err := decode[struct {
		ReportID string `json:"report_id"`
		Limit    int    `json:"limit"`
		Offset   int    `json:"offset"`
	}](data)
	if err != nil {
		return nil, err
	}
	if req.ReportID != "" {
		rid, err := id.ParseReportID(req.ReportID)
		if err != nil {
			return nil, paylater.ValidationError{Field: "report_id", Message: "malformed id"}
		}
		return s.engine.GetReport(r.Context(), rid)
	}
	return s.engine.ListReports(r.Context(), req.Limit, req.Offset)
}
