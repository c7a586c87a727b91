// internal/app/features/accounting/money.go
package accounting

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var (
	errAmountFormat    = errors.New("must be a number like 1250 or 1250.50")
	errAmountPrecision = errors.New("must have at most two decimal places")
	errAmountNegative  = errors.New("must not be negative")
)

// maxCents caps a single amount at one billion.
const maxCents = 100_000_000_000

// ParseCents converts a form amount such as "1,250.5" into cents. An empty
// string is zero.
func ParseCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errAmountFormat
	}
	if d.Sign() < 0 {
		return 0, errAmountNegative
	}
	if d.Exponent() < -2 && !d.Equal(d.Truncate(2)) {
		return 0, errAmountPrecision
	}
	cents := d.Shift(2)
	if cents.GreaterThan(decimal.New(maxCents, 0)) {
		return 0, errAmountFormat
	}
	return cents.IntPart(), nil
}

// FormatCents renders cents as "12,500.00".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s.%02d", sign, humanize.Comma(cents/100), cents%100)
}
