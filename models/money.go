// ABOUTME: Money representation in integer cents
// ABOUTME: Parses and formats dollar amounts without floating point drift
package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Cents is a monetary amount in the smallest currency unit.
type Cents int64

// Dollars returns the amount as a float for ratio math.
func (c Cents) Dollars() float64 {
	return float64(c) / 100
}

// String formats the amount as $1234.56.
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s$%d.%02d", sign, v/100, v%100)
}

// ParseCents parses "450", "450.5", "$1,200.00" into cents. Negative amounts are rejected.
func ParseCents(s string) (Cents, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(raw, "$")
	raw = strings.ReplaceAll(raw, ",", "")
	if raw == "" {
		return 0, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(raw, "-") {
		return 0, fmt.Errorf("amount %q must not be negative", s)
	}

	whole, frac, hasFrac := strings.Cut(raw, ".")
	if hasFrac {
		if len(frac) > 2 {
			return 0, fmt.Errorf("amount %q has more than two decimal places", s)
		}
		for len(frac) < 2 {
			frac += "0"
		}
	} else {
		frac = "00"
	}
	if whole == "" {
		whole = "0"
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return Cents(w*100 + f), nil
}
