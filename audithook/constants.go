package audithook

// Action constants for audit events.
const (
	// Account actions
	ActionAccountFrozen        = "account.frozen"
	ActionAccountLocked        = "account.locked"
	ActionAccountStatusChanged = "account.status_changed"

	// Invoice actions
	ActionInvoiceOpened    = "invoice.opened"
	ActionInvoicePaid      = "invoice.paid"
	ActionInvoiceOverdue   = "invoice.overdue"
	ActionInvoiceDefaulted = "invoice.defaulted"
	ActionPenaltyApplied   = "invoice.penalty_applied"

	// Limit actions
	ActionLimitGranted  = "limit.granted"
	ActionLimitReversed = "limit.reversed"
	ActionLimitReduced  = "limit.reduced"

	// Sweep actions
	ActionSweepCompleted = "sweep.completed"
)

// Resource constants for audit events.
const (
	ResourceAccount = "account"
	ResourceInvoice = "invoice"
	ResourceLimit   = "limit"
	ResourceSweep   = "sweep"
)

// Category constants for audit events.
const (
	CategoryCredit     = "credit"
	CategoryPayment    = "payment"
	CategoryCollection = "collection"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
