// Package core provides the financial domain types shared by every layer:
// records, money parsing and formatting, date text conversion and the
// dashboard aggregate shapes.
//
// This file contains money handling. Amounts are stored as integer cents
// to avoid floating-point drift in balance and limit arithmetic.
package core

import (
	"strings"
	"unicode"
)

type Money struct {
	Cents int64
}

// ParseCurrency converts localized currency text to Money.
//
// It tolerates the "R$" symbol, surrounding whitespace, thousands dots and
// either decimal comma (1.234,56) or decimal dot (1234.56). A third decimal
// digit is rounded half-up. Empty or digit-free input yields zero; the
// function is total and never fails.
//
// ParseCurrency is the exact inverse of Money.Format for any value
// representable with two decimals.
func ParseCurrency(s string) Money {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}
	}

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, "+")

	// With a decimal comma present, dots are thousands separators.
	// Otherwise a single dot is the decimal separator.
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}

	parts := strings.SplitN(s, ".", 2)
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}

	var iv int64
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			continue
		}
		iv = iv*10 + int64(r-'0')
	}

	// First two fractional digits, half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 && unicode.IsDigit(rune(fracPart[0])) {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 && unicode.IsDigit(rune(fracPart[1])) {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' && fracPart[2] <= '9' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if negative {
		cents = -cents
	}
	return Money{Cents: cents}
}

// Format renders the amount as Brazilian currency text, e.g. "R$ 1.234,56".
func (m Money) Format() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	intPart := cents / 100
	frac := cents % 100

	digits := []byte{}
	if intPart == 0 {
		digits = []byte{'0'}
	}
	for intPart > 0 {
		digits = append([]byte{byte('0' + intPart%10)}, digits...)
		intPart /= 10
	}

	var b strings.Builder
	b.WriteString(sign)
	b.WriteString("R$ ")
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteByte(d)
	}
	b.WriteByte(',')
	b.WriteByte(byte('0' + frac/10))
	b.WriteByte(byte('0' + frac%10))
	return b.String()
}

// Add returns m plus other.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns m minus other.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// Mul returns m multiplied by an integer factor.
func (m Money) Mul(factor int) Money {
	return Money{Cents: m.Cents * int64(factor)}
}

// Neg returns the negated amount.
func (m Money) Neg() Money {
	return Money{Cents: -m.Cents}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
