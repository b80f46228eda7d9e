// Package money provides fixed-precision monetary values in minor units.
//
// All arithmetic is integer arithmetic on cents; binary floating point is
// never used for accumulation. Amounts that do not divide evenly are
// allocated with a deterministic remainder rule so totals always reconcile
// exactly.
package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var (
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrInvalidAmount    = errors.New("invalid amount")
)

// Money is an amount in minor units (cents) tagged with a currency code.
// The zero value is zero units of the empty currency.
type Money struct {
	Cents    int64  `json:"cents"`
	Currency string `json:"currency"`
}

// New creates a Money value from minor units.
func New(cents int64, currency string) Money {
	return Money{Cents: cents, Currency: currency}
}

// Zero returns the zero amount in the given currency.
func Zero(currency string) Money {
	return Money{Currency: currency}
}

// Add returns m + other. Fails if the currencies differ.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("%w: cannot add %s to %s", ErrCurrencyMismatch, other.Currency, m.Currency)
	}
	return Money{Cents: m.Cents + other.Cents, Currency: m.Currency}, nil
}

// Sub returns m - other. Fails if the currencies differ.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("%w: cannot subtract %s from %s", ErrCurrencyMismatch, other.Currency, m.Currency)
	}
	return Money{Cents: m.Cents - other.Cents, Currency: m.Currency}, nil
}

// Neg returns the amount with its sign flipped.
func (m Money) Neg() Money {
	return Money{Cents: -m.Cents, Currency: m.Currency}
}

// Cmp compares two amounts of the same currency: -1 if m < other, 0 if
// equal, +1 if m > other.
func (m Money) Cmp(other Money) (int, error) {
	if m.Currency != other.Currency {
		return 0, fmt.Errorf("%w: cannot compare %s with %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	switch {
	case m.Cents < other.Cents:
		return -1, nil
	case m.Cents > other.Cents:
		return 1, nil
	default:
		return 0, nil
	}
}

// IsZero reports whether the amount is exactly zero. The representation is
// integral, so "within epsilon" means within the smallest minor unit: there
// is nothing between zero and one cent.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.Cents > 0
}

// Sign returns -1, 0 or +1 depending on the sign of the amount.
func (m Money) Sign() int {
	switch {
	case m.Cents < 0:
		return -1
	case m.Cents > 0:
		return 1
	default:
		return 0
	}
}

// Allocate splits the amount into n shares that sum exactly to the original.
// Each share gets the integer quotient; the remaining cents are handed out
// one each to the first shares in order, so the split is deterministic.
func (m Money) Allocate(n int) ([]Money, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: cannot allocate among %d shares", ErrInvalidAmount, n)
	}
	base := m.Cents / int64(n)
	remainder := m.Cents % int64(n)
	shares := make([]Money, n)
	for i := range shares {
		cents := base
		if int64(i) < remainder {
			cents++
		}
		shares[i] = Money{Cents: cents, Currency: m.Currency}
	}
	return shares, nil
}

// AllocateBasisPoints splits the amount proportionally to the given basis
// points. The proportions are taken against the actual sum of the basis
// points, so after flooring each share the remainder is always smaller than
// the number of shares; it is distributed one cent each to the first shares
// in order. The shares always sum exactly to the original amount.
func (m Money) AllocateBasisPoints(bps []int64) ([]Money, error) {
	if len(bps) == 0 {
		return nil, fmt.Errorf("%w: cannot allocate among zero shares", ErrInvalidAmount)
	}
	var total int64
	for _, bp := range bps {
		if bp < 0 {
			return nil, fmt.Errorf("%w: negative basis points %d", ErrInvalidAmount, bp)
		}
		total += bp
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: basis points sum to zero", ErrInvalidAmount)
	}

	shares := make([]Money, len(bps))
	var allocated int64
	for i, bp := range bps {
		cents := m.Cents * bp / total
		shares[i] = Money{Cents: cents, Currency: m.Currency}
		allocated += cents
	}
	for i := 0; allocated < m.Cents; i++ {
		shares[i%len(shares)].Cents++
		allocated++
	}
	return shares, nil
}

// String formats the amount as a decimal with two fraction digits, e.g.
// "-12.05 USD".
func (m Money) String() string {
	return FormatCents(m.Cents) + " " + m.Currency
}

// FormatCents renders minor units as a decimal string with two fraction
// digits.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// ParseDecimalToCents converts a decimal string to minor units. It accepts
// both dot (12.34) and comma (12,34) separators and performs half-up
// rounding on the third decimal place. Signs are rejected; the result is
// always non-negative.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}
