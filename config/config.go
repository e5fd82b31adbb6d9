// Package config resolves the typed PayLater configuration from the
// settings table.
//
// Business logic never reads free-form setting keys; it receives a fully
// resolved Config with every missing key already replaced by its documented
// default, so a partially populated settings store is always safe.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Setting keys recognized in the settings table. Values are stored as
// strings; anything unparseable falls back to the default.
const (
	KeyEnabled              = "paylater_enabled"
	KeyProfitToLimitPercent = "paylater_profit_to_limit_percent"
	KeyDailyPenaltyPercent  = "paylater_daily_penalty_percent"
	KeyPenaltyCapPercent    = "paylater_penalty_cap_percent"
	KeyMaxActiveInvoices    = "paylater_max_active_invoices"
	KeyMaxLimit             = "paylater_max_limit"
	KeyMinOrderAmount       = "paylater_min_order_amount"
	KeyFreezeOverdueDays    = "paylater_freeze_overdue_days"
	KeyLockOverdueDays      = "paylater_lock_overdue_days"
	KeyReduceOverdueDays    = "paylater_reduce_limit_overdue_days"
	KeyReduceLimitPercent   = "paylater_reduce_limit_percent"
	KeyDefaultOverdueDays   = "paylater_default_overdue_days"

	// Tenor fee keys are KeyTenorFeePrefix + weeks, e.g. "paylater_fee_tenor_2".
	KeyTenorFeePrefix = "paylater_fee_tenor_"
)

// Tenor bounds in weeks.
const (
	MinTenorWeeks = 1
	MaxTenorWeeks = 4
)

// Config is the fully resolved PayLater configuration.
type Config struct {
	// Enabled gates all new financing; existing invoices are still
	// collectible when disabled.
	Enabled bool `json:"enabled"`

	// ProfitToLimitPercent is the share of realized order profit converted
	// into a credit limit grant.
	ProfitToLimitPercent float64 `json:"profit_to_limit_percent"`

	// TenorFees maps tenor weeks (1..4) to the flat fee percent.
	TenorFees map[int]float64 `json:"tenor_fees"`

	// DailyPenaltyPercent accrues on the pre-penalty total per day late.
	DailyPenaltyPercent float64 `json:"daily_penalty_percent"`

	// PenaltyCapPercent caps the accrued penalty as a percent of the
	// pre-penalty total.
	PenaltyCapPercent float64 `json:"penalty_cap_percent"`

	// MaxActiveInvoices is the number of simultaneously open invoices an
	// account may hold.
	MaxActiveInvoices int `json:"max_active_invoices"`

	// MaxLimit bounds automatic profit-share limit growth. Zero means no cap.
	MaxLimit int64 `json:"max_limit"`

	// MinOrderAmount is the smallest order that may be financed. Zero
	// disables the check.
	MinOrderAmount int64 `json:"min_order_amount"`

	// Overdue escalation thresholds, in whole days past due.
	FreezeOverdueDays      int `json:"freeze_overdue_days"`
	LockOverdueDays        int `json:"lock_overdue_days"`
	ReduceLimitOverdueDays int `json:"reduce_limit_overdue_days"`
	DefaultOverdueDays     int `json:"default_overdue_days"`

	// ReduceLimitPercent is the credit limit haircut applied at the
	// reduce-limit threshold.
	ReduceLimitPercent float64 `json:"reduce_limit_percent"`
}

// Default returns the documented fallback configuration.
func Default() Config {
	return Config{
		Enabled:              true,
		ProfitToLimitPercent: 10,
		TenorFees: map[int]float64{
			1: 5,
			2: 10,
			3: 15,
			4: 20,
		},
		DailyPenaltyPercent:    0.5,
		PenaltyCapPercent:      15,
		MaxActiveInvoices:      1,
		MaxLimit:               0,
		MinOrderAmount:         0,
		FreezeOverdueDays:      3,
		LockOverdueDays:        14,
		ReduceLimitOverdueDays: 7,
		ReduceLimitPercent:     10,
		DefaultOverdueDays:     30,
	}
}

// TenorFee returns the fee percent for the given tenor, clamping the tenor
// into [MinTenorWeeks, MaxTenorWeeks]. Absent entries yield 0.
func (c Config) TenorFee(tenorWeeks int) float64 {
	return c.TenorFees[ClampTenor(tenorWeeks)]
}

// ClampTenor forces a tenor into the supported range.
func ClampTenor(tenorWeeks int) int {
	if tenorWeeks < MinTenorWeeks {
		return MinTenorWeeks
	}
	if tenorWeeks > MaxTenorWeeks {
		return MaxTenorWeeks
	}
	return tenorWeeks
}

// Resolve builds a Config from raw settings rows, filling every missing or
// malformed value from Default(). It has no side effects.
func Resolve(settings map[string]string) Config {
	cfg := Default()
	if len(settings) == 0 {
		return cfg
	}

	if v, ok := settings[KeyEnabled]; ok {
		cfg.Enabled = parseBool(v, cfg.Enabled)
	}
	cfg.ProfitToLimitPercent = parseFloat(settings[KeyProfitToLimitPercent], cfg.ProfitToLimitPercent)
	cfg.DailyPenaltyPercent = parseFloat(settings[KeyDailyPenaltyPercent], cfg.DailyPenaltyPercent)
	cfg.PenaltyCapPercent = parseFloat(settings[KeyPenaltyCapPercent], cfg.PenaltyCapPercent)
	cfg.MaxActiveInvoices = parseInt(settings[KeyMaxActiveInvoices], cfg.MaxActiveInvoices)
	cfg.MaxLimit = parseInt64(settings[KeyMaxLimit], cfg.MaxLimit)
	cfg.MinOrderAmount = parseInt64(settings[KeyMinOrderAmount], cfg.MinOrderAmount)
	cfg.FreezeOverdueDays = parseInt(settings[KeyFreezeOverdueDays], cfg.FreezeOverdueDays)
	cfg.LockOverdueDays = parseInt(settings[KeyLockOverdueDays], cfg.LockOverdueDays)
	cfg.ReduceLimitOverdueDays = parseInt(settings[KeyReduceOverdueDays], cfg.ReduceLimitOverdueDays)
	cfg.ReduceLimitPercent = parseFloat(settings[KeyReduceLimitPercent], cfg.ReduceLimitPercent)
	cfg.DefaultOverdueDays = parseInt(settings[KeyDefaultOverdueDays], cfg.DefaultOverdueDays)

	fees := make(map[int]float64, MaxTenorWeeks)
	for tenor := MinTenorWeeks; tenor <= MaxTenorWeeks; tenor++ {
		fees[tenor] = parseFloat(settings[fmt.Sprintf("%s%d", KeyTenorFeePrefix, tenor)], cfg.TenorFees[tenor])
	}
	cfg.TenorFees = fees

	return cfg
}

func parseBool(raw string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	return fallback
}

func parseFloat(raw string, fallback float64) float64 {
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func parseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func parseInt64(raw string, fallback int64) int64 {
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
