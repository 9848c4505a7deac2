// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer minor units (cents) so that aggregate totals
// are exact. On the wire they travel as plain JSON numbers in major units,
// the same shape the dashboard has always persisted (e.g. 15000 or 12.5).
package core

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"unicode"
)

type Money struct {
	Cents int64
}

// ParseAmount converts a decimal string to a Money value with half-up rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// on the third decimal place. Zero is allowed (a booking without deposit);
// negative values and malformed input return ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234 cents
//	ParseAmount("12,345") -> 1235 cents (rounds up)
//	ParseAmount("0")      -> 0 cents
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	if strings.ContainsAny(s, "eE") {
		return parseExponent(s)
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
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
			return Money{}, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return Money{}, ErrInvalidAmount
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
	return Money{Cents: iv*100 + fracCents}, nil
}

func parseExponent(s string) (Money, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || math.IsInf(f, 0) || f*100 > math.MaxInt64 {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: int64(math.Round(f * 100))}, nil
}

// FitsCents reports whether an amount literal (optionally JSON-quoted) has at
// most two significant decimals, so ParseAmount keeps it without rounding.
func FitsCents(s string) bool {
	s = strings.Trim(strings.TrimSpace(s), `"`)
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if strings.ContainsAny(s, "eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return false
		}
		c := f * 100
		return math.Abs(c-math.Round(c)) < 1e-6
	}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(strings.TrimRight(s[i+1:], "0")) <= 2
	}
	return true
}

// Units returns the amount in major units for display purposes.
// Use Cents for calculations.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

// Decimal renders the amount in major units without grouping, trimming a zero fraction ("15000", "12.5").
func (m Money) Decimal() string {
	return m.format(false)
}

// Grouped renders the amount with thousands separators ("30,000", "1,234.5").
func (m Money) Grouped() string {
	return m.format(true)
}

func (m Money) format(group bool) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)
	if group {
		whole = groupThousands(whole)
	}
	out := whole
	if rem := cents % 100; rem != 0 {
		frac := strings.TrimRight(strconv.FormatInt(100+rem, 10)[1:], "0")
		out += "." + frac
	}
	if neg {
		return "-" + out
	}
	return out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// WithSymbol prefixes the grouped amount with a currency symbol.
func (m Money) WithSymbol(symbol string) string {
	if m.Cents < 0 {
		return "-" + symbol + Money{Cents: -m.Cents}.Grouped()
	}
	return symbol + m.Grouped()
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		m.Cents = 0
		return nil
	}
	// Form inputs occasionally arrive quoted.
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
		if len(bytes.TrimSpace(data)) == 0 {
			m.Cents = 0
			return nil
		}
	}
	parsed, err := ParseAmount(string(data))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
