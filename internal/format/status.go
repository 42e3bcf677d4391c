package format

import (
	"github.com/dafibh/fortuna/fortuna-report/internal/domain"
	"github.com/shopspring/decimal"
)

// BudgetStatus renders a status label together with the usage percentage, e.g. "Warning (80.0%)"
func BudgetStatus(status domain.BudgetStatusLabel, ratio decimal.Decimal) string {
	pct := Percentage(ratio)
	switch status {
	case domain.BudgetStatusExceeded:
		return "EXCEEDED! (" + pct + ")"
	case domain.BudgetStatusCritical:
		return "Critical (" + pct + ")"
	case domain.BudgetStatusWarning:
		return "Warning (" + pct + ")"
	default:
		return "Good (" + pct + ")"
	}
}

// AlertState labels a budget for the status view: EXCEEDED! at or over 100%,
// WARNING once its alert threshold is reached, otherwise OK
func AlertState(st *domain.BudgetStatus) string {
	switch {
	case st.PercentageUsed.GreaterThanOrEqual(domain.ExceededRatio):
		return "EXCEEDED!"
	case st.Alert:
		return "WARNING"
	default:
		return "OK"
	}
}
