package config

import "testing"

func TestDefault(t *testing.T) {
	cfg := Default()

	if !cfg.Enabled {
		t.Error("expected enabled by default")
	}
	wantFees := map[int]float64{1: 5, 2: 10, 3: 15, 4: 20}
	for tenor, want := range wantFees {
		if got := cfg.TenorFees[tenor]; got != want {
			t.Errorf("tenor %d fee: got %v, want %v", tenor, got, want)
		}
	}
	if cfg.DailyPenaltyPercent != 0.5 {
		t.Errorf("daily penalty: got %v, want 0.5", cfg.DailyPenaltyPercent)
	}
	if cfg.PenaltyCapPercent != 15 {
		t.Errorf("penalty cap: got %v, want 15", cfg.PenaltyCapPercent)
	}
	if cfg.MaxActiveInvoices != 1 {
		t.Errorf("max active invoices: got %d, want 1", cfg.MaxActiveInvoices)
	}
	if cfg.FreezeOverdueDays != 3 || cfg.LockOverdueDays != 14 ||
		cfg.ReduceLimitOverdueDays != 7 || cfg.DefaultOverdueDays != 30 {
		t.Errorf("unexpected overdue thresholds: %+v", cfg)
	}
	if cfg.ReduceLimitPercent != 10 {
		t.Errorf("reduce limit percent: got %v, want 10", cfg.ReduceLimitPercent)
	}
}

func TestResolveEmpty(t *testing.T) {
	cfg := Resolve(nil)
	if cfg.TenorFees[2] != 10 {
		t.Errorf("expected defaults from empty settings, got %+v", cfg)
	}

	cfg = Resolve(map[string]string{})
	if !cfg.Enabled || cfg.MaxActiveInvoices != 1 {
		t.Errorf("expected defaults from empty map, got %+v", cfg)
	}
}

func TestResolveOverrides(t *testing.T) {
	cfg := Resolve(map[string]string{
		KeyEnabled:              "false",
		KeyProfitToLimitPercent: "7.5",
		KeyTenorFeePrefix + "2": "12",
		KeyDailyPenaltyPercent:  "1",
		KeyPenaltyCapPercent:    "20",
		KeyMaxActiveInvoices:    "3",
		KeyMaxLimit:             "5000000",
		KeyMinOrderAmount:       "25000",
		KeyFreezeOverdueDays:    "5",
	})

	if cfg.Enabled {
		t.Error("expected disabled")
	}
	if cfg.ProfitToLimitPercent != 7.5 {
		t.Errorf("profit percent: got %v", cfg.ProfitToLimitPercent)
	}
	if cfg.TenorFees[2] != 12 {
		t.Errorf("tenor 2 fee override: got %v", cfg.TenorFees[2])
	}
	if cfg.TenorFees[3] != 15 {
		t.Errorf("tenor 3 fee default: got %v", cfg.TenorFees[3])
	}
	if cfg.DailyPenaltyPercent != 1 || cfg.PenaltyCapPercent != 20 {
		t.Errorf("penalty overrides: %+v", cfg)
	}
	if cfg.MaxActiveInvoices != 3 || cfg.MaxLimit != 5000000 || cfg.MinOrderAmount != 25000 {
		t.Errorf("limit overrides: %+v", cfg)
	}
	if cfg.FreezeOverdueDays != 5 {
		t.Errorf("freeze days: got %d", cfg.FreezeOverdueDays)
	}
	// Untouched keys keep defaults.
	if cfg.LockOverdueDays != 14 {
		t.Errorf("lock days default: got %d", cfg.LockOverdueDays)
	}
}

func TestResolveMalformed(t *testing.T) {
	cfg := Resolve(map[string]string{
		KeyDailyPenaltyPercent: "not a number",
		KeyMaxActiveInvoices:   "-2",
		KeyMaxLimit:            "12.5",
		KeyEnabled:             "maybe",
	})

	if cfg.DailyPenaltyPercent != 0.5 {
		t.Errorf("malformed float should fall back: got %v", cfg.DailyPenaltyPercent)
	}
	if cfg.MaxActiveInvoices != 1 {
		t.Errorf("negative int should fall back: got %d", cfg.MaxActiveInvoices)
	}
	if cfg.MaxLimit != 0 {
		t.Errorf("malformed int64 should fall back: got %d", cfg.MaxLimit)
	}
	if !cfg.Enabled {
		t.Error("malformed bool should fall back to enabled")
	}
}

func TestClampTenor(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 1}, {-3, 1}, {1, 1}, {2, 2}, {4, 4}, {5, 4}, {100, 4},
	}
	for _, tt := range tests {
		if got := ClampTenor(tt.in); got != tt.want {
			t.Errorf("ClampTenor(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTenorFee(t *testing.T) {
	cfg := Default()
	if got := cfg.TenorFee(2); got != 10 {
		t.Errorf("TenorFee(2) = %v, want 10", got)
	}
	// Out-of-range tenors clamp.
	if got := cfg.TenorFee(9); got != 20 {
		t.Errorf("TenorFee(9) = %v, want 20", got)
	}
	if got := cfg.TenorFee(0); got != 5 {
		t.Errorf("TenorFee(0) = %v, want 5", got)
	}
}
