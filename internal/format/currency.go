package format

import (
	"fmt"

	"github.com/dafibh/fortuna/fortuna-report/internal/util"
	"github.com/shopspring/decimal"
)

// DefaultCurrencySymbol is used when no symbol is configured
const DefaultCurrencySymbol = "$"

var hundred = decimal.NewFromInt(100)

// Currency renders an amount with two decimals; negatives keep the sign before the symbol (-$10.00)
func Currency(amount decimal.Decimal, symbol string) string {
	if amount.IsNegative() {
		return "-" + symbol + amount.Neg().StringFixed(2)
	}
	return symbol + amount.StringFixed(2)
}

// Percentage renders a ratio as a percent with one decimal (0.255 -> "25.5%")
func Percentage(ratio decimal.Decimal) string {
	return ratio.Mul(hundred).StringFixed(1) + "%"
}

// MonthYear renders "May 2023"
func MonthYear(month, year int) string {
	return fmt.Sprintf("%s %d", util.MonthName(month), year)
}
