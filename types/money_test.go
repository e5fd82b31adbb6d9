package types

import (
	"encoding/json"
	"testing"
)

func TestMoneyConstructors(t *testing.T) {
	tests := []struct {
		name     string
		money    Money
		amount   int64
		currency string
		display  string
	}{
		{"IDR", IDR(150000), 150000, "idr", "Rp150.000"},
		{"IDR small", IDR(500), 500, "idr", "Rp500"},
		{"IDR millions", IDR(2500000), 2500000, "idr", "Rp2.500.000"},
		{"USD", USD(4900), 4900, "usd", "$49.00"},
		{"Zero IDR", Zero("IDR"), 0, "idr", "Rp0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.money.Amount != tt.amount {
				t.Errorf("Amount: got %d, want %d", tt.money.Amount, tt.amount)
			}
			if tt.money.Currency != tt.currency {
				t.Errorf("Currency: got %s, want %s", tt.money.Currency, tt.currency)
			}
			if tt.money.String() != tt.display {
				t.Errorf("Display: got %s, want %s", tt.money.String(), tt.display)
			}
		})
	}
}

func TestMoneyArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Money
		expected Money
	}{
		{"Add", func() Money { return IDR(100).Add(IDR(200)) }, IDR(300)},
		{"Subtract", func() Money { return IDR(500).Subtract(IDR(200)) }, IDR(300)},
		{"Multiply", func() Money { return IDR(100).Multiply(3) }, IDR(300)},
		{"Negate", func() Money { return IDR(100).Negate() }, IDR(-100)},
		{"Min left", func() Money { return IDR(100).Min(IDR(300)) }, IDR(100)},
		{"Min right", func() Money { return IDR(300).Min(IDR(100)) }, IDR(100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.op()
			if !result.Equal(tt.expected) {
				t.Errorf("Got %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMoneyCurrencyMismatch(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for currency mismatch")
		}
	}()

	_ = IDR(100).Add(USD(100))
}

func TestMoneyComparison(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Money
		less    bool
		greater bool
		equal   bool
	}{
		{"Equal", IDR(100), IDR(100), false, false, true},
		{"Less", IDR(50), IDR(100), true, false, false},
		{"Greater", IDR(200), IDR(100), false, true, false},
		{"Zero equal", IDR(0), Zero("idr"), false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.LessThan(tt.b); got != tt.less {
				t.Errorf("LessThan: got %v, want %v", got, tt.less)
			}
			if got := tt.a.GreaterThan(tt.b); got != tt.greater {
				t.Errorf("GreaterThan: got %v, want %v", got, tt.greater)
			}
			if got := tt.a.Equal(tt.b); got != tt.equal {
				t.Errorf("Equal: got %v, want %v", got, tt.equal)
			}
		})
	}
}

func TestBasisPoints(t *testing.T) {
	tests := []struct {
		percent float64
		bps     int64
	}{
		{5, 500},
		{10, 1000},
		{15, 1500},
		{20, 2000},
		{0.5, 50},
		{0, 0},
		{12.34, 1234},
	}

	for _, tt := range tests {
		if got := BasisPoints(tt.percent); got != tt.bps {
			t.Errorf("BasisPoints(%v): got %d, want %d", tt.percent, got, tt.bps)
		}
	}
}

func TestApplyBasisPoints(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		bps    int64
		want   int64
	}{
		{"10 percent of 100000", 100000, 1000, 10000},
		{"15 percent cap of 100000", 100000, 1500, 15000},
		{"0.5 percent of 100000", 100000, 50, 500},
		{"round half up", 999, 50, 5},      // 4.995 -> 5
		{"round down below half", 998, 50, 5}, // 4.99 -> 5
		{"small round down", 100, 49, 0},   // 0.49 -> 0
		{"zero amount", 0, 1000, 0},
		{"zero bps", 100000, 0, 0},
		{"negative amount clamps", -100, 1000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplyBasisPoints(tt.amount, tt.bps); got != tt.want {
				t.Errorf("ApplyBasisPoints(%d, %d): got %d, want %d", tt.amount, tt.bps, got, tt.want)
			}
		})
	}
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(IDR(110000))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Display  string `json:"display"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Amount != 110000 || decoded.Currency != "idr" || decoded.Display != "Rp110.000" {
		t.Errorf("unexpected JSON payload: %+v", decoded)
	}
}
