package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type BudgetStatusLabel string

const (
	BudgetStatusGood     BudgetStatusLabel = "good"
	BudgetStatusWarning  BudgetStatusLabel = "warning"
	BudgetStatusCritical BudgetStatusLabel = "critical"
	BudgetStatusExceeded BudgetStatusLabel = "exceeded"
)

// Usage ratios at which a budget moves to the next status
var (
	WarningRatio  = decimal.NewFromFloat(0.75)
	CriticalRatio = decimal.NewFromFloat(0.9)
	ExceededRatio = decimal.NewFromInt(1)
)

// DefaultAlertThreshold is the usage ratio at which a budget is flagged
var DefaultAlertThreshold = decimal.NewFromFloat(0.8)

type Budget struct {
	ID             int32           `json:"id"`
	UserID         int32           `json:"userId"`
	CategoryID     int32           `json:"categoryId"`
	Category       string          `json:"category"`
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	Amount         decimal.Decimal `json:"amount"`
	AlertThreshold decimal.Decimal `json:"alertThreshold"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// BudgetFilter narrows a budget listing. Zero month/year and an empty category match everything.
type BudgetFilter struct {
	UserID   int32
	Month    int
	Year     int
	Category string
}

// BudgetSpending is a budget joined with what was spent in its category that month
type BudgetSpending struct {
	Category       string
	Amount         decimal.Decimal
	Spent          decimal.Decimal
	AlertThreshold decimal.Decimal
}

// BudgetStatus compares planned vs. actual spending for a category in a month.
// PercentageUsed is a ratio (1 == 100%) and is zero when the budget is zero.
type BudgetStatus struct {
	Category       string            `json:"category"`
	Budget         decimal.Decimal   `json:"budget"`
	Spent          decimal.Decimal   `json:"spent"`
	Remaining      decimal.Decimal   `json:"remaining"`
	PercentageUsed decimal.Decimal   `json:"percentageUsed"`
	Status         BudgetStatusLabel `json:"status"`
	AlertThreshold decimal.Decimal   `json:"alertThreshold"`
	Alert          bool              `json:"alert"`
}

// StatusForRatio maps a usage ratio to its status label
func StatusForRatio(ratio decimal.Decimal) BudgetStatusLabel {
	switch {
	case ratio.GreaterThanOrEqual(ExceededRatio):
		return BudgetStatusExceeded
	case ratio.GreaterThanOrEqual(CriticalRatio):
		return BudgetStatusCritical
	case ratio.GreaterThanOrEqual(WarningRatio):
		return BudgetStatusWarning
	default:
		return BudgetStatusGood
	}
}

type BudgetRepository interface {
	Upsert(ctx context.Context, budget *Budget) (*Budget, error)
	GetWithSpending(ctx context.Context, userID int32, year, month int, start, end time.Time) ([]*BudgetSpending, error)
	List(ctx context.Context, filter BudgetFilter) ([]*Budget, error)
	Delete(ctx context.Context, id, userID int32) (bool, error)
}

// BudgetStatusProvider provides budget vs. actual rows to the report service
type BudgetStatusProvider interface {
	GetBudgetStatus(ctx context.Context, month, year int, userID int32) ([]*BudgetStatus, error)
}
