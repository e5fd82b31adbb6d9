package invoice

import (
	"testing"
	"time"

	"github.com/xraph/paylater/config"
)

func TestBuild(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		name      string
		principal int64
		tenor     int
		wantFee   int64
		wantTotal int64
	}{
		{"one week", 100_000, 1, 5_000, 105_000},
		{"two weeks", 100_000, 2, 10_000, 110_000},
		{"three weeks", 100_000, 3, 15_000, 115_000},
		{"four weeks", 100_000, 4, 20_000, 120_000},
		{"tenor clamped low", 100_000, 0, 5_000, 105_000},
		{"tenor clamped high", 100_000, 9, 20_000, 120_000},
		{"rounds half up", 33_333, 1, 1_667, 35_000},
		{"zero principal", 0, 2, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := Build(tt.principal, tt.tenor, cfg)
			if terms.FeeAmount != tt.wantFee {
				t.Errorf("FeeAmount = %d, want %d", terms.FeeAmount, tt.wantFee)
			}
			if terms.TotalBeforePenalty != tt.wantTotal {
				t.Errorf("TotalBeforePenalty = %d, want %d", terms.TotalBeforePenalty, tt.wantTotal)
			}
			if terms.Principal+terms.FeeAmount != terms.TotalBeforePenalty {
				t.Errorf("terms are inconsistent: %+v", terms)
			}
		})
	}
}

func TestBuildCustomFees(t *testing.T) {
	cfg := config.Default()
	cfg.TenorFees = map[int]float64{2: 7.5}

	terms := Build(200_000, 2, cfg)
	if terms.FeeAmount != 15_000 {
		t.Errorf("FeeAmount = %d, want 15000", terms.FeeAmount)
	}

	// A tenor absent from the fee table charges nothing.
	terms = Build(200_000, 3, cfg)
	if terms.FeeAmount != 0 {
		t.Errorf("FeeAmount for unlisted tenor = %d, want 0", terms.FeeAmount)
	}
}

func TestAccruePenalty(t *testing.T) {
	cfg := config.Default() // 0.5% daily, 15% cap

	tests := []struct {
		name        string
		total       int64
		daysLate    int
		wantPenalty int64
	}{
		{"not late", 110_000, 0, 0},
		{"negative days treated as zero", 110_000, -3, 0},
		{"one day", 100_000, 1, 500},
		{"ten days", 100_000, 10, 5_000},
		{"exactly at cap", 100_000, 30, 15_000},
		{"capped", 100_000, 60, 15_000},
		{"capped far past", 100_000, 365, 15_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := AccruePenalty(tt.total, tt.daysLate, cfg)
			if p.PenaltyAmount != tt.wantPenalty {
				t.Errorf("PenaltyAmount = %d, want %d", p.PenaltyAmount, tt.wantPenalty)
			}
			if p.TotalDue != tt.total+tt.wantPenalty {
				t.Errorf("TotalDue = %d, want %d", p.TotalDue, tt.total+tt.wantPenalty)
			}
		})
	}
}

func TestAccruePenaltyIdempotent(t *testing.T) {
	cfg := config.Default()

	// Re-running the accrual for the same day must not compound.
	first := AccruePenalty(110_000, 5, cfg)
	second := AccruePenalty(110_000, 5, cfg)
	if first.PenaltyAmount != second.PenaltyAmount {
		t.Errorf("accrual is not idempotent: %d vs %d", first.PenaltyAmount, second.PenaltyAmount)
	}
}

func TestLimitIncreaseFromProfit(t *testing.T) {
	cfg := config.Default() // 10%

	tests := []struct {
		profit int64
		want   int64
	}{
		{100_000, 10_000},
		{55, 6}, // 5.5 rounds half up
		{0, 0},
		{-40_000, 0},
	}

	for _, tt := range tests {
		if got := LimitIncreaseFromProfit(tt.profit, cfg); got != tt.want {
			t.Errorf("LimitIncreaseFromProfit(%d) = %d, want %d", tt.profit, got, tt.want)
		}
	}
}

func TestDueDate(t *testing.T) {
	opened := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	got := DueDate(opened, 2)
	want := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DueDate = %v, want %v", got, want)
	}
}

func TestDaysLate(t *testing.T) {
	due := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	inv := &Invoice{DueDate: due, Status: StatusActive}

	tests := []struct {
		now  time.Time
		want int
	}{
		{due.Add(-time.Hour), 0},
		{due, 0},
		{due.Add(12 * time.Hour), 0},
		{due.Add(24 * time.Hour), 1},
		{due.AddDate(0, 0, 10), 10},
	}

	for _, tt := range tests {
		if got := inv.DaysLate(tt.now); got != tt.want {
			t.Errorf("DaysLate(%v) = %d, want %d", tt.now, got, tt.want)
		}
	}
}
