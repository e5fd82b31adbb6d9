package paylater

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/xraph/paylater/account"
	"github.com/xraph/paylater/config"
	"github.com/xraph/paylater/eligibility"
	"github.com/xraph/paylater/id"
	"github.com/xraph/paylater/invoice"
	"github.com/xraph/paylater/journal"
	"github.com/xraph/paylater/lock"
	"github.com/xraph/paylater/order"
	"github.com/xraph/paylater/plugin"
	"github.com/xraph/paylater/store"
	"github.com/xraph/paylater/types"
)

// Engine is the main PayLater credit engine. Every mutating operation is
// idempotent by a caller-supplied reference id and serializes its
// read-modify-write on a per-account lock.
type Engine struct {
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger
	locks   *lock.Keyed
	orders  order.Source

	// Background workers
	stopChan chan struct{}
	wg       sync.WaitGroup

	// Configuration
	lockWait      time.Duration
	jobTick       time.Duration
	dueSoonWindow time.Duration
	orderBatch    int

	// now is swappable for tests.
	now func() time.Time
}

// New creates a new Engine instance.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:         s,
		plugins:       plugin.NewRegistry(),
		logger:        slog.Default(),
		stopChan:      make(chan struct{}),
		lockWait:      5 * time.Second,
		jobTick:       time.Minute,
		dueSoonWindow: 24 * time.Hour,
		orderBatch:    100,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.locks = lock.New(e.lockWait)

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithOrderSource wires the finalized-order feed consumed by the
// profit-to-limit sweep.
func WithOrderSource(src order.Source) Option {
	return func(e *Engine) {
		e.orders = src
	}
}

// WithLockWait bounds how long a mutating operation waits for the account
// lock before failing with ErrLockTimeout.
func WithLockWait(wait time.Duration) Option {
	return func(e *Engine) {
		e.lockWait = wait
	}
}

// WithJobTick sets how often the background runner polls installed
// schedules.
func WithJobTick(tick time.Duration) Option {
	return func(e *Engine) {
		e.jobTick = tick
	}
}

// WithDueSoonWindow sets how far ahead the due-notification sweep looks.
func WithDueSoonWindow(window time.Duration) Option {
	return func(e *Engine) {
		e.dueSoonWindow = window
	}
}

// WithClock overrides the engine's time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Start migrates the store and begins the background job runner.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.store.Migrate(ctx); err != nil {
		return err
	}

	e.plugins.EmitInit(ctx, e)

	e.wg.Add(1)
	go e.jobRunner(ctx)

	e.logger.Info("paylater engine started",
		"lock_wait", e.lockWait,
		"job_tick", e.jobTick,
		"plugins", e.plugins.Count(),
	)

	return nil
}

// Stop shuts down the Engine.
func (e *Engine) Stop() error {
	close(e.stopChan)
	e.wg.Wait()

	ctx := context.Background()
	e.plugins.EmitShutdown(ctx)

	return e.store.Close()
}

// Plugins exposes the hook registry, mainly so embedding apps can register
// hooks after construction.
func (e *Engine) Plugins() *plugin.Registry {
	return e.plugins
}

// Config resolves the current configuration from the settings table,
// falling back to documented defaults for missing or unreadable keys.
func (e *Engine) Config(ctx context.Context) config.Config {
	settings, err := e.store.GetSettings(ctx)
	if err != nil {
		e.logger.Warn("failed to load settings, using defaults", "error", err)
		return config.Default()
	}
	return config.Resolve(settings)
}

// PutSetting writes one raw configuration value.
func (e *Engine) PutSetting(ctx context.Context, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return ValidationError{Field: "key", Message: "must not be empty"}
	}
	return e.store.PutSetting(ctx, key, value)
}

// ──────────────────────────────────────────────────
// Accounts
// ──────────────────────────────────────────────────

// UpsertAccount creates the credit account for a phone number or adjusts
// its admin-granted limit. The new limit never drops below the amount
// currently reserved by open invoices.
func (e *Engine) UpsertAccount(ctx context.Context, phone, userID string, creditLimit int64) (*account.Account, error) {
	phone = account.NormalizePhone(phone)
	if phone == "" {
		return nil, ValidationError{Field: "phone", Message: "must contain digits"}
	}
	if creditLimit < 0 {
		return nil, ValidationError{Field: "credit_limit", Message: "must be non-negative"}
	}

	unlock, err := e.acquire(ctx, phone)
	if err != nil {
		return nil, err
	}
	defer unlock()

	a, err := e.store.GetAccount(ctx, phone)
	if IsNotFound(err) {
		a = &account.Account{
			Entity:            types.NewEntity(),
			ID:                id.NewAccountID(),
			Phone:             phone,
			UserID:            userID,
			CreditLimit:       creditLimit,
			AvailableLimit:    creditLimit,
			Status:            account.StatusActive,
			AdminInitialLimit: creditLimit,
		}
		if err := e.store.CreateAccount(ctx, a); err != nil {
			return nil, err
		}
		e.logger.Info("account created", "phone", phone, "credit_limit", creditLimit)
		return a, nil
	}
	if err != nil {
		return nil, err
	}

	if creditLimit < a.UsedLimit {
		creditLimit = a.UsedLimit
	}
	a.CreditLimit = creditLimit
	a.AvailableLimit = creditLimit - a.UsedLimit
	a.AdminInitialLimit = creditLimit
	if userID != "" {
		a.UserID = userID
	}
	a.Touch()

	if err := e.store.UpdateAccount(ctx, a); err != nil {
		return nil, err
	}

	e.logger.Info("account limit adjusted", "phone", phone, "credit_limit", a.CreditLimit)
	return a, nil
}

// GetAccount retrieves an account by phone number.
func (e *Engine) GetAccount(ctx context.Context, phone string) (*account.Account, error) {
	phone = account.NormalizePhone(phone)
	if phone == "" {
		return nil, ValidationError{Field: "phone", Message: "must contain digits"}
	}
	return e.store.GetAccount(ctx, phone)
}

// ListAccounts lists accounts.
func (e *Engine) ListAccounts(ctx context.Context, opts account.ListOpts) ([]*account.Account, error) {
	return e.store.ListAccounts(ctx, opts)
}

// Snapshot bundles an account with its open invoices and recent journal
// entries for read-only display.
type Snapshot struct {
	Account       *account.Account   `json:"account"`
	OpenInvoices  []*invoice.Invoice `json:"open_invoices"`
	RecentEntries []*journal.Entry   `json:"recent_entries"`
}

// GetSnapshot returns the account together with its open invoices and the
// most recent journal entries. Reads are lock-free and may trail an
// in-flight mutation.
func (e *Engine) GetSnapshot(ctx context.Context, phone string) (*Snapshot, error) {
	a, err := e.GetAccount(ctx, phone)
	if err != nil {
		return nil, err
	}

	open, err := e.store.ActiveInvoicesByPhone(ctx, a.Phone)
	if err != nil {
		return nil, err
	}

	entries, err := e.store.ListEntries(ctx, journal.ListOpts{Phone: a.Phone, Limit: 20})
	if err != nil {
		return nil, err
	}

	return &Snapshot{Account: a, OpenInvoices: open, RecentEntries: entries}, nil
}

// SetAccountStatus transitions an account between active, frozen and
// locked. Freezing and locking append a journal entry; reactivation does
// not touch the ledger.
func (e *Engine) SetAccountStatus(ctx context.Context, phone string, status account.Status, actor string) (*account.Account, error) {
	if !status.Valid() {
		return nil, ValidationError{Field: "status", Message: "unknown status"}
	}
	phone = account.NormalizePhone(phone)
	if phone == "" {
		return nil, ValidationError{Field: "phone", Message: "must contain digits"}
	}

	unlock, err := e.acquire(ctx, phone)
	if err != nil {
		return nil, err
	}
	defer unlock()

	a, err := e.store.GetAccount(ctx, phone)
	if err != nil {
		return nil, err
	}
	if a.Status == status {
		return a, nil
	}

	from := a.Status
	a.Status = status
	a.Touch()
	if err := e.store.UpdateAccount(ctx, a); err != nil {
		return nil, err
	}

	switch status {
	case account.StatusFrozen:
		_ = e.append(ctx, a, journal.TypeFrozen, 0, "", actor, "manual freeze") //nolint:errcheck // status already persisted
	case account.StatusLocked:
		_ = e.append(ctx, a, journal.TypeLocked, 0, "", actor, "manual lock") //nolint:errcheck // status already persisted
	}

	e.plugins.EmitAccountStatusChanged(ctx, a, from, status)
	e.logger.Info("account status changed", "phone", phone, "from", from, "to", status, "actor", actor)
	return a, nil
}

// CheckEligibility runs the ordered eligibility checks for a proposed
// financing. An orderAmount of zero is a pure probe that skips the
// order-size and limit checks.
func (e *Engine) CheckEligibility(ctx context.Context, phone string, orderAmount int64) (eligibility.Result, error) {
	cfg := e.Config(ctx)

	phone = account.NormalizePhone(phone)
	a, err := e.store.GetAccount(ctx, phone)
	if err != nil && !IsNotFound(err) {
		return eligibility.Result{}, err
	}

	var active int
	if a != nil {
		open, err := e.store.ActiveInvoicesByPhone(ctx, phone)
		if err != nil {
			return eligibility.Result{}, err
		}
		active = len(open)
	}

	return eligibility.Evaluate(cfg, eligibility.Request{
		Account:        a,
		ActiveInvoices: active,
		OrderAmount:    orderAmount,
	}), nil
}

// ──────────────────────────────────────────────────
// Invoices
// ──────────────────────────────────────────────────

// OpenInvoiceRequest carries the inputs for OpenInvoice. InvoiceID is the
// caller's idempotency key; replaying it returns the original invoice.
type OpenInvoiceRequest struct {
	Phone         string `json:"phone"`
	Principal     int64  `json:"principal"`
	TenorWeeks    int    `json:"tenor_weeks"`
	InvoiceID     string `json:"invoice_id"`
	SourceOrderID string `json:"source_order_id"`
	Actor         string `json:"actor"`
}

// InvoiceResult is the outcome of an invoice mutation. Dedup marks an
// idempotent replay: the prior result was returned and nothing mutated.
type InvoiceResult struct {
	Invoice *invoice.Invoice `json:"invoice"`
	Dedup   bool             `json:"dedup,omitempty"`
}

// OpenInvoice finances an order: it re-validates eligibility under the
// account lock, computes the tenor fee, reserves total_before_penalty
// against the available limit and appends an "open" journal entry.
func (e *Engine) OpenInvoice(ctx context.Context, req OpenInvoiceRequest) (*InvoiceResult, error) {
	phone := account.NormalizePhone(req.Phone)
	if phone == "" {
		return nil, ValidationError{Field: "phone", Message: "must contain digits"}
	}
	if req.InvoiceID == "" {
		return nil, ValidationError{Field: "invoice_id", Message: "must not be empty"}
	}
	if req.Principal <= 0 {
		return nil, ValidationError{Field: "principal", Message: "must be positive"}
	}

	cfg := e.Config(ctx)

	unlock, err := e.acquire(ctx, phone)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Idempotent replay: the invoice id was already consumed. Stored
	// invoices carry the clamped tenor, so compare against the clamp of
	// the incoming value.
	if prior, err := e.store.GetInvoice(ctx, req.InvoiceID); err == nil {
		if prior.Phone != phone || prior.Principal != req.Principal ||
			prior.TenorWeeks != config.ClampTenor(req.TenorWeeks) ||
			prior.SourceOrderID != req.SourceOrderID {
			return nil, ErrInvoiceExists
		}
		return &InvoiceResult{Invoice: prior, Dedup: true}, nil
	} else if !IsNotFound(err) {
		return nil, err
	}

	a, err := e.store.GetAccount(ctx, phone)
	if IsNotFound(err) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	open, err := e.store.ActiveInvoicesByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	res := eligibility.Evaluate(cfg, eligibility.Request{
		Account:        a,
		ActiveInvoices: len(open),
		OrderAmount:    req.Principal,
	})
	if !res.Eligible {
		return nil, eligibilityErr(res.Reason)
	}

	now := e.now()
	terms := invoice.Build(req.Principal, req.TenorWeeks, cfg)
	inv := &invoice.Invoice{
		Entity:             types.NewEntity(),
		ID:                 req.InvoiceID,
		Phone:              phone,
		SourceOrderID:      req.SourceOrderID,
		Principal:          terms.Principal,
		TenorWeeks:         terms.TenorWeeks,
		FeePercent:         terms.FeePercent,
		FeeAmount:          terms.FeeAmount,
		TotalBeforePenalty: terms.TotalBeforePenalty,
		TotalDue:           terms.TotalBeforePenalty,
		DueDate:            invoice.DueDate(now, req.TenorWeeks),
		Status:             invoice.StatusActive,
	}

	if err := e.store.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	a.AvailableLimit -= terms.TotalBeforePenalty
	a.UsedLimit += terms.TotalBeforePenalty
	a.Touch()
	if err := e.store.UpdateAccount(ctx, a); err != nil {
		return nil, err
	}

	if err := e.append(ctx, a, journal.TypeOpen, terms.TotalBeforePenalty, inv.ID, req.Actor, "invoice opened"); err != nil {
		return nil, err
	}

	e.plugins.EmitInvoiceOpened(ctx, inv)
	e.logger.Info("invoice opened",
		"phone", phone,
		"invoice_id", inv.ID,
		"principal", inv.Principal,
		"tenor_weeks", inv.TenorWeeks,
		"total_due", inv.TotalDue,
	)

	return &InvoiceResult{Invoice: inv}, nil
}

// PayRequest carries the inputs for PayInvoice. PaymentRefID is the
// caller's idempotency key for this payment.
type PayRequest struct {
	InvoiceID    string `json:"invoice_id"`
	Amount       int64  `json:"amount"`
	PaymentRefID string `json:"payment_ref_id"`
	Actor        string `json:"actor"`
}

// PaymentResult is the outcome of PayInvoice.
type PaymentResult struct {
	Invoice *invoice.Invoice `json:"invoice"`
	Settled bool             `json:"settled"`
	Dedup   bool             `json:"dedup,omitempty"`
}

// PayInvoice records a payment. Partial payments accumulate; once the paid
// amount covers total_due the invoice settles and the full reserved amount
// returns to the available limit.
func (e *Engine) PayInvoice(ctx context.Context, req PayRequest) (*PaymentResult, error) {
	if req.InvoiceID == "" {
		return nil, ValidationError{Field: "invoice_id", Message: "must not be empty"}
	}
	if req.PaymentRefID == "" {
		return nil, ValidationError{Field: "payment_ref_id", Message: "must not be empty"}
	}
	if req.Amount <= 0 {
		return nil, ValidationError{Field: "amount", Message: "must be positive"}
	}

	probe, err := e.store.GetInvoice(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}

	unlock, err := e.acquire(ctx, probe.Phone)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Re-read under the lock; the probe may be stale.
	inv, err := e.store.GetInvoice(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}

	exists, err := e.store.EntryExists(ctx, inv.Phone, journal.TypePayment, req.PaymentRefID)
	if err != nil {
		return nil, err
	}
	if exists {
		return &PaymentResult{Invoice: inv, Settled: inv.Status == invoice.StatusPaid, Dedup: true}, nil
	}

	if inv.Status.Terminal() {
		return nil, ErrInvoiceTerminal
	}

	a, err := e.store.GetAccount(ctx, inv.Phone)
	if err != nil {
		return nil, err
	}

	// Clamp to the outstanding balance so paid_amount never exceeds
	// total_due; the excess of an overpayment is not absorbed here.
	applied := req.Amount
	if remaining := inv.TotalDue - inv.PaidAmount; applied > remaining {
		applied = remaining
	}

	inv.PaidAmount += applied
	settled := inv.PaidAmount >= inv.TotalDue
	if settled {
		now := e.now()
		inv.Status = invoice.StatusPaid
		inv.PaidAt = &now
	}
	inv.Touch()

	if err := e.store.UpdateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	if err := e.append(ctx, a, journal.TypePayment, applied, req.PaymentRefID, req.Actor, "payment for "+inv.ID); err != nil {
		return nil, err
	}

	if settled {
		// Release the full reserved amount, fee and penalty included.
		a.UsedLimit -= inv.TotalDue
		a.AvailableLimit += inv.TotalDue
		a.Touch()
		if err := e.store.UpdateAccount(ctx, a); err != nil {
			return nil, err
		}
		if err := e.append(ctx, a, journal.TypeLimitRelease, inv.TotalDue, inv.ID, req.Actor, "invoice settled"); err != nil {
			return nil, err
		}
	}

	e.plugins.EmitInvoicePaid(ctx, inv, applied, settled)
	e.logger.Info("payment recorded",
		"phone", inv.Phone,
		"invoice_id", inv.ID,
		"amount", applied,
		"settled", settled,
	)

	return &PaymentResult{Invoice: inv, Settled: settled}, nil
}

// GetInvoice retrieves an invoice by its id.
func (e *Engine) GetInvoice(ctx context.Context, invoiceID string) (*invoice.Invoice, error) {
	return e.store.GetInvoice(ctx, invoiceID)
}

// ListInvoices lists invoices.
func (e *Engine) ListInvoices(ctx context.Context, opts invoice.ListOpts) ([]*invoice.Invoice, error) {
	return e.store.ListInvoices(ctx, opts)
}

// ListEntries lists journal entries.
func (e *Engine) ListEntries(ctx context.Context, opts journal.ListOpts) ([]*journal.Entry, error) {
	return e.store.ListEntries(ctx, opts)
}

// ──────────────────────────────────────────────────
// Limit grants
// ──────────────────────────────────────────────────

// GrantResult is the outcome of a limit grant or reversal.
type GrantResult struct {
	Account *account.Account `json:"account"`
	Amount  int64            `json:"amount"`
	Dedup   bool             `json:"dedup,omitempty"`
}

// GrantLimitFromProfit converts a share of realized order profit into
// additional credit limit. Idempotent by orderID; an order clamped to zero
// by the limit cap is still consumed.
func (e *Engine) GrantLimitFromProfit(ctx context.Context, phone, orderID string, profitNet int64, actor string) (*GrantResult, error) {
	phone = account.NormalizePhone(phone)
	if phone == "" {
		return nil, ValidationError{Field: "phone", Message: "must contain digits"}
	}
	if orderID == "" {
		return nil, ValidationError{Field: "order_id", Message: "must not be empty"}
	}

	cfg := e.Config(ctx)

	unlock, err := e.acquire(ctx, phone)
	if err != nil {
		return nil, err
	}
	defer unlock()

	a, err := e.store.GetAccount(ctx, phone)
	if err != nil {
		return nil, err
	}

	if prior, ok, err := e.findEntry(ctx, phone, journal.TypeLimitIncrease, orderID); err != nil {
		return nil, err
	} else if ok {
		return &GrantResult{Account: a, Amount: prior.Amount, Dedup: true}, nil
	}

	inc := invoice.LimitIncreaseFromProfit(profitNet, cfg)
	if cfg.MaxLimit > 0 && a.CreditLimit+inc > cfg.MaxLimit {
		inc = cfg.MaxLimit - a.CreditLimit
		if inc < 0 {
			inc = 0
		}
	}

	a.CreditLimit += inc
	a.AvailableLimit += inc
	a.LimitGrowthTotal += inc
	a.Touch()
	if err := e.store.UpdateAccount(ctx, a); err != nil {
		return nil, err
	}

	entry, err := e.appendEntry(ctx, a, journal.TypeLimitIncrease, inc, orderID, actor, "profit share grant")
	if err != nil {
		return nil, err
	}

	e.plugins.EmitLimitGranted(ctx, a, entry)
	e.logger.Info("limit granted",
		"phone", phone,
		"order_id", orderID,
		"amount", inc,
		"credit_limit", a.CreditLimit,
	)

	return &GrantResult{Account: a, Amount: inc}, nil
}

// ReverseLimitGrant rolls back a prior profit-share grant after an order
// refund. The reversal is bounded so the limit never drops below the
// amount currently in use and never takes back more than was granted.
func (e *Engine) ReverseLimitGrant(ctx context.Context, phone, orderID, actor string) (*GrantResult, error) {
	phone = account.NormalizePhone(phone)
	if phone == "" {
		return nil, ValidationError{Field: "phone", Message: "must contain digits"}
	}
	if orderID == "" {
		return nil, ValidationError{Field: "order_id", Message: "must not be empty"}
	}

	unlock, err := e.acquire(ctx, phone)
	if err != nil {
		return nil, err
	}
	defer unlock()

	a, err := e.store.GetAccount(ctx, phone)
	if err != nil {
		return nil, err
	}

	if prior, ok, err := e.findEntry(ctx, phone, journal.TypeLimitReversal, orderID); err != nil {
		return nil, err
	} else if ok {
		return &GrantResult{Account: a, Amount: prior.Amount, Dedup: true}, nil
	}

	grant, ok, err := e.findEntry(ctx, phone, journal.TypeLimitIncrease, orderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrGrantNotFound
	}

	dec := grant.Amount
	if dec > a.LimitGrowthTotal {
		dec = a.LimitGrowthTotal
	}
	if avail := a.CreditLimit - a.UsedLimit; dec > avail {
		dec = avail
	}
	if dec < 0 {
		dec = 0
	}

	a.CreditLimit -= dec
	a.AvailableLimit -= dec
	a.LimitGrowthTotal -= dec
	a.Touch()
	if err := e.store.UpdateAccount(ctx, a); err != nil {
		return nil, err
	}

	entry, err := e.appendEntry(ctx, a, journal.TypeLimitReversal, dec, orderID, actor, "refund reversal")
	if err != nil {
		return nil, err
	}

	e.plugins.EmitLimitReversed(ctx, a, entry)
	e.logger.Info("limit grant reversed",
		"phone", phone,
		"order_id", orderID,
		"amount", dec,
		"credit_limit", a.CreditLimit,
	)

	return &GrantResult{Account: a, Amount: dec}, nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

// acquire takes the account lock, translating the lock package's timeout
// into the engine's error taxonomy.
func (e *Engine) acquire(ctx context.Context, phone string) (func(), error) {
	unlock, err := e.locks.Acquire(ctx, phone)
	if err == lock.ErrTimeout {
		return nil, ErrLockTimeout
	}
	if err != nil {
		return nil, err
	}
	return unlock, nil
}

// append writes a journal entry snapshotting the available limit around the
// mutation that was just applied to a.
func (e *Engine) append(ctx context.Context, a *account.Account, t journal.Type, amount int64, refID, actor, notes string) error {
	_, err := e.appendEntry(ctx, a, t, amount, refID, actor, notes)
	return err
}

func (e *Engine) appendEntry(ctx context.Context, a *account.Account, t journal.Type, amount int64, refID, actor, notes string) (*journal.Entry, error) {
	before := a.AvailableLimit
	switch t {
	case journal.TypeOpen, journal.TypePenalty, journal.TypeLimitReversal, journal.TypeLimitReduce:
		before += amount
	case journal.TypeLimitIncrease, journal.TypeLimitRelease:
		before -= amount
	}

	entry := &journal.Entry{
		Entity:  types.NewEntity(),
		ID:      id.NewEntryID(),
		Phone:   a.Phone,
		Type:    t,
		Amount:  amount,
		Balance: journal.Balance{Before: before, After: a.AvailableLimit},
		RefID:   refID,
		Actor:   actor,
		Notes:   notes,
	}
	if err := e.store.AppendEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// findEntry returns the journal entry of the given type referencing refID,
// if one exists.
func (e *Engine) findEntry(ctx context.Context, phone string, t journal.Type, refID string) (*journal.Entry, bool, error) {
	entries, err := e.store.ListEntries(ctx, journal.ListOpts{Phone: phone, Type: t, RefID: refID, Limit: 1})
	if err != nil {
		return nil, false, err
	}
	if len(entries) == 0 {
		return nil, false, nil
	}
	return entries[0], true, nil
}

// eligibilityErr maps an eligibility denial to its sentinel error.
func eligibilityErr(reason eligibility.Reason) error {
	switch reason {
	case eligibility.ReasonDisabled:
		return ErrDisabled
	case eligibility.ReasonAccountNotFound:
		return ErrAccountNotFound
	case eligibility.ReasonAccountFrozen:
		return ErrAccountFrozen
	case eligibility.ReasonAccountLocked:
		return ErrAccountLocked
	case eligibility.ReasonAccountInactive:
		return ErrAccountInactive
	case eligibility.ReasonActiveInvoiceExists:
		return ErrActiveInvoice
	case eligibility.ReasonBelowMinOrder:
		return ErrBelowMinOrder
	case eligibility.ReasonInsufficientLimit:
		return ErrInsufficientLimit
	}
	return ErrInvalidInput
}
