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
		{"INR", INR(49900), 49900, "inr", "₹499.00"},
		{"USD", USD(4900), 4900, "usd", "$49.00"},
		{"EUR", EUR(19900), 19900, "eur", "€199.00"},
		{"GBP", GBP(9900), 9900, "gbp", "£99.00"},
		{"Zero INR", Zero("INR"), 0, "inr", "₹0.00"},
		{"Zero USD", Zero("USD"), 0, "usd", "$0.00"},
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
		{"Add", func() Money { return INR(100).Add(INR(200)) }, INR(300)},
		{"Subtract", func() Money { return INR(500).Subtract(INR(200)) }, INR(300)},
		{"Subtract below zero", func() Money { return INR(200).Subtract(INR(500)) }, INR(-300)},
		{"Multiply", func() Money { return INR(100).Multiply(3) }, INR(300)},
		{"Divide", func() Money { return INR(900).Divide(3) }, INR(300)},
		{"Negate", func() Money { return INR(100).Negate() }, INR(-100)},
		{"Abs positive", func() Money { return INR(100).Abs() }, INR(100)},
		{"Abs negative", func() Money { return INR(-100).Abs() }, INR(100)},
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

func TestMoneyPercent(t *testing.T) {
	tests := []struct {
		name     string
		base     Money
		rate     float64
		expected Money
	}{
		{"18% GST on 100.00", INR(10000), 18, INR(1800)},
		{"18% GST on 99.99", INR(9999), 18, INR(1800)}, // 1799.82 rounds to 1800
		{"12% on 1.05", INR(105), 12, INR(13)},         // 12.6 rounds up
		{"5% on 0.50", INR(50), 5, INR(3)},             // 2.5 rounds half away
		{"zero rate", INR(10000), 0, INR(0)},
		{"negative base", INR(-10000), 18, INR(-1800)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.base.Percent(tt.rate)
			if !got.Equal(tt.expected) {
				t.Errorf("Percent(%v): got %v, want %v", tt.rate, got, tt.expected)
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

	// This should panic
	_ = INR(100).Add(USD(100))
}

func TestMoneyDivisionByZero(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for division by zero")
		}
	}()

	_ = INR(100).Divide(0)
}

func TestMoneyComparison(t *testing.T) {
	small := INR(100)
	big := INR(200)

	if !small.LessThan(big) {
		t.Error("100 should be less than 200")
	}
	if !big.GreaterThan(small) {
		t.Error("200 should be greater than 100")
	}
	if !small.Equal(INR(100)) {
		t.Error("equal amounts should be Equal")
	}
	if small.Equal(USD(100)) {
		t.Error("different currencies should not be Equal")
	}
}

func TestMoneyFormatMajor(t *testing.T) {
	tests := []struct {
		money    Money
		expected string
	}{
		{INR(4900), "49.00"},
		{INR(505), "5.05"},
		{INR(-505), "-5.05"},
		{Money{Amount: 100, Currency: "jpy"}, "100"},
	}

	for _, tt := range tests {
		if got := tt.money.FormatMajor(); got != tt.expected {
			t.Errorf("FormatMajor(%+v): got %q, want %q", tt.money, got, tt.expected)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(INR(49900))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded["amount"].(float64) != 49900 {
		t.Errorf("amount: got %v, want 49900", decoded["amount"])
	}
	if decoded["currency"] != "inr" {
		t.Errorf("currency: got %v, want inr", decoded["currency"])
	}
	if decoded["display"] != "₹499.00" {
		t.Errorf("display: got %v, want ₹499.00", decoded["display"])
	}
}

func TestSum(t *testing.T) {
	total := Sum(INR(100), INR(200), INR(300))
	if !total.Equal(INR(600)) {
		t.Errorf("Sum: got %v, want %v", total, INR(600))
	}

	empty := Sum()
	if !empty.IsZero() {
		t.Errorf("Sum(): got %v, want zero", empty)
	}
}
