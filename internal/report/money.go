package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// Formatter renders decimal amounts in a currency, rounding to the
// currency's minor unit.
type Formatter struct {
	code   string
	layout *money.Formatter
}

// NewFormatter returns a Formatter for an ISO 4217 code such as "USD".
func NewFormatter(code string) (*Formatter, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	cur := money.GetCurrency(code)
	if cur == nil {
		return nil, fmt.Errorf("unknown currency %q", code)
	}
	return &Formatter{code: code, layout: cur.Formatter()}, nil
}

// Round rounds amount to the currency's minor unit, half away from zero.
func (f *Formatter) Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(int32(f.layout.Fraction))
}

// Format renders amount, e.g. "$10.50". Amounts whose minor units do not
// fit in an int64 are laid out from the decimal digits directly.
func (f *Formatter) Format(amount decimal.Decimal) string {
	minor := f.Round(amount).Shift(int32(f.layout.Fraction))
	if minor.LessThanOrEqual(maxMinor) && minor.GreaterThanOrEqual(minMinor) {
		return money.New(minor.IntPart(), f.code).Display()
	}
	return f.display(minor)
}

// display mirrors money.Formatter.Format for an integral minor amount of
// any size.
func (f *Formatter) display(minor decimal.Decimal) string {
	l := f.layout
	sa := minor.Abs().StringFixed(0)
	if len(sa) <= l.Fraction {
		sa = strings.Repeat("0", l.Fraction-len(sa)+1) + sa
	}
	if l.Thousand != "" {
		for i := len(sa) - l.Fraction - 3; i > 0; i -= 3 {
			sa = sa[:i] + l.Thousand + sa[i:]
		}
	}
	if l.Fraction > 0 {
		sa = sa[:len(sa)-l.Fraction] + l.Decimal + sa[len(sa)-l.Fraction:]
	}
	sa = strings.Replace(l.Template, "1", sa, 1)
	sa = strings.Replace(sa, "$", l.Grapheme, 1)
	if minor.IsNegative() {
		sa = "-" + sa
	}
	return sa
}

// Code returns the currency code.
func (f *Formatter) Code() string {
	return f.code
}
