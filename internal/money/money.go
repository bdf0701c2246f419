package money

import (
	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is the only currency the dashboard displays.
const Currency = gomoney.USD

// Cents rounds d half away from zero to whole cents.
func Cents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// Format renders d as a dollar amount, e.g. $1,234.50.
func Format(d decimal.Decimal) string {
	return gomoney.New(Cents(d), Currency).Display()
}

// FormatAbs renders the absolute value of d.
func FormatAbs(d decimal.Decimal) string {
	return Format(d.Abs())
}

// Parse reads a user-entered amount. Blank input is an error.
func Parse(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
