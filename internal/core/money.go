// Package core holds the ledger domain: money arithmetic, account and
// transaction types with their validation rules, filter evaluation and
// period summaries. Everything here is pure; the stateful book lives in
// internal/ledger.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is a fixed-point amount in minor units (paise). All arithmetic is
// integer arithmetic so repeated small postings never drift.
type Money struct {
	Cents int64
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }
func (m Money) Negate() Money     { return Money{Cents: -m.Cents} }

// Units returns the major-unit value as a float64 for display only.
// Calculations must stay on Cents.
func (m Money) Units() float64 { return float64(m.Cents) / 100.0 }

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return NewValidationError("amount must be greater than zero")
	}
	return nil
}

// ParseDecimalToCents converts a decimal string to minor units. Both dot and
// comma separators are accepted; the third decimal digit rounds half-up.
// Signs, zero and non-numeric input are rejected: user-entered amounts are
// always strictly positive.
func ParseDecimalToCents(s string) (int64, error) {
	cents, err := parseCents(s)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, NewValidationError("amount must be greater than zero")
	}
	return cents, nil
}

// ParseNonNegativeCents is the opening-balance variant: zero is allowed,
// signs still are not.
func ParseNonNegativeCents(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return parseCents(s)
}

func parseCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, NewValidationError("invalid amount %q", s)
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if strings.Contains(fracPart, ".") {
		return 0, NewValidationError("invalid amount %q", s)
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, NewValidationError("invalid amount %q", s)
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, NewValidationError("invalid amount %q", s)
	}
	const maxBeforeCents = (1<<63 - 1) / 100
	if iv > maxBeforeCents {
		return 0, NewValidationError("amount %q out of range", s)
	}

	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}

	return iv*100 + frac, nil
}
