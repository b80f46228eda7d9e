package money

import (
	"errors"
	"testing"
)

func TestArithmetic(t *testing.T) {
	a := New(1250, "USD")
	b := New(250, "USD")

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if sum.Cents != 1500 {
		t.Errorf("Add = %d, want 1500", sum.Cents)
	}

	diff, err := a.Sub(b)
	if err != nil {
		t.Fatalf("Sub failed: %v", err)
	}
	if diff.Cents != 1000 {
		t.Errorf("Sub = %d, want 1000", diff.Cents)
	}

	if a.Neg().Cents != -1250 {
		t.Errorf("Neg = %d, want -1250", a.Neg().Cents)
	}

	cmp, err := a.Cmp(b)
	if err != nil || cmp != 1 {
		t.Errorf("Cmp = %d, %v, want 1, nil", cmp, err)
	}

	if _, err := a.Add(New(1, "EUR")); !errors.Is(err, ErrCurrencyMismatch) {
		t.Errorf("Add across currencies = %v, want ErrCurrencyMismatch", err)
	}
	if _, err := a.Cmp(New(1, "EUR")); !errors.Is(err, ErrCurrencyMismatch) {
		t.Errorf("Cmp across currencies = %v, want ErrCurrencyMismatch", err)
	}
}

func TestIsZeroAndSign(t *testing.T) {
	if !Zero("USD").IsZero() {
		t.Error("Zero should be zero")
	}
	if New(1, "USD").IsZero() {
		t.Error("one cent is not zero")
	}
	if s := New(-5, "USD").Sign(); s != -1 {
		t.Errorf("Sign = %d, want -1", s)
	}
	if !New(5, "USD").IsPositive() {
		t.Error("5 cents should be positive")
	}
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name  string
		cents int64
		n     int
		want  []int64
	}{
		{"even split", 300, 3, []int64{100, 100, 100}},
		{"remainder to first", 100, 3, []int64{34, 33, 33}},
		{"two remainder cents", 302, 3, []int64{101, 101, 100}},
		{"single share", 55, 1, []int64{55}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := New(tt.cents, "USD").Allocate(tt.n)
			if err != nil {
				t.Fatalf("Allocate failed: %v", err)
			}
			var sum int64
			for i, s := range shares {
				if s.Cents != tt.want[i] {
					t.Errorf("share[%d] = %d, want %d", i, s.Cents, tt.want[i])
				}
				sum += s.Cents
			}
			if sum != tt.cents {
				t.Errorf("shares sum to %d, want %d", sum, tt.cents)
			}
		})
	}

	if _, err := New(100, "USD").Allocate(0); err == nil {
		t.Error("Allocate(0) should fail")
	}
}

func TestAllocateBasisPoints(t *testing.T) {
	// 50% / 25% / 25% of $10.01: floors are 500/250/250, the leftover
	// cent goes to the first share.
	shares, err := New(1001, "USD").AllocateBasisPoints([]int64{5000, 2500, 2500})
	if err != nil {
		t.Fatalf("AllocateBasisPoints failed: %v", err)
	}
	want := []int64{501, 250, 250}
	for i, s := range shares {
		if s.Cents != want[i] {
			t.Errorf("share[%d] = %d, want %d", i, s.Cents, want[i])
		}
	}

	// Proportions are taken against the actual sum, so a tolerance-skewed
	// vector still conserves the total exactly.
	shares, err = New(10000, "USD").AllocateBasisPoints([]int64{3334, 3333, 3333})
	if err != nil {
		t.Fatalf("AllocateBasisPoints failed: %v", err)
	}
	var sum int64
	for _, s := range shares {
		sum += s.Cents
	}
	if sum != 10000 {
		t.Errorf("shares sum to %d, want 10000", sum)
	}

	if _, err := New(100, "USD").AllocateBasisPoints(nil); err == nil {
		t.Error("empty basis points should fail")
	}
	if _, err := New(100, "USD").AllocateBasisPoints([]int64{-1, 10001}); err == nil {
		t.Error("negative basis points should fail")
	}
}

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"12", 1200, false},
		{"0.5", 50, false},
		{"12.345", 1234, false},
		{"12.346", 1235, false},
		{"0", 0, false},
		{"", 0, true},
		{"-1.00", 0, true},
		{"+1.00", 0, true},
		{"1.2.3", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDecimalToCents(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDecimalToCents(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatCents(t *testing.T) {
	if got := FormatCents(1205); got != "12.05" {
		t.Errorf("FormatCents(1205) = %q, want %q", got, "12.05")
	}
	if got := FormatCents(-5); got != "-0.05" {
		t.Errorf("FormatCents(-5) = %q, want %q", got, "-0.05")
	}
	if got := New(-1205, "EUR").String(); got != "-12.05 EUR" {
		t.Errorf("String() = %q, want %q", got, "-12.05 EUR")
	}
}
