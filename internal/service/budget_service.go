package service

import (
	"context"

	"github.com/dafibh/fortuna/fortuna-report/internal/domain"
	"github.com/dafibh/fortuna/fortuna-report/internal/util"
	"github.com/shopspring/decimal"
)

// BudgetService manages category budgets and derives their status
type BudgetService struct {
	budgetRepo  domain.BudgetRepository
	expenseRepo domain.ExpenseRepository
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgetRepo domain.BudgetRepository, expenseRepo domain.ExpenseRepository) *BudgetService {
	return &BudgetService{
		budgetRepo:  budgetRepo,
		expenseRepo: expenseRepo,
	}
}

// SetBudgetInput holds the input for setting a category budget
type SetBudgetInput struct {
	UserID         int32
	Category       string
	Amount         decimal.Decimal
	Month          int
	Year           int
	AlertThreshold *decimal.Decimal
}

// SetBudget creates or replaces the budget of a category for one month
func (s *BudgetService) SetBudget(ctx context.Context, input SetBudgetInput) (*domain.Budget, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.NewValidationError("amount", "Invalid amount: must be greater than zero")
	}

	month, year, err := util.ValidateMonthYear(input.Month, input.Year)
	if err != nil {
		return nil, err
	}

	threshold := domain.DefaultAlertThreshold
	if input.AlertThreshold != nil {
		threshold = *input.AlertThreshold
		if threshold.IsNegative() || threshold.GreaterThan(decimal.NewFromInt(1)) {
			return nil, domain.NewValidationError("alert_threshold", "Threshold must be between 0 and 1")
		}
	}

	category, err := normalizeCategory(input.Category)
	if err != nil {
		return nil, err
	}

	cat, err := s.expenseRepo.GetOrCreateCategory(ctx, category)
	if err != nil {
		return nil, &domain.ProviderError{Op: "get or create category", Err: err}
	}

	budget, err := s.budgetRepo.Upsert(ctx, &domain.Budget{
		UserID:         input.UserID,
		CategoryID:     cat.ID,
		Category:       cat.Name,
		Year:           year,
		Month:          month,
		Amount:         input.Amount,
		AlertThreshold: threshold,
	})
	if err != nil {
		return nil, &domain.ProviderError{Op: "upsert budget", Err: err}
	}
	return budget, nil
}

// GetBudgetStatus returns budget vs. actual spending for every budgeted category in a month
func (s *BudgetService) GetBudgetStatus(ctx context.Context, month, year int, userID int32) ([]*domain.BudgetStatus, error) {
	start, end := util.MonthRange(year, month)
	rows, err := s.budgetRepo.GetWithSpending(ctx, userID, year, month, start, end)
	if err != nil {
		return nil, &domain.ProviderError{Op: "get budget status", Err: err}
	}

	statuses := make([]*domain.BudgetStatus, 0, len(rows))
	for _, row := range rows {
		statuses = append(statuses, budgetStatusFromSpending(row))
	}
	return statuses, nil
}

// ListBudgets returns the budgets matching filter, latest month first
func (s *BudgetService) ListBudgets(ctx context.Context, filter domain.BudgetFilter) ([]*domain.Budget, error) {
	if filter.Month != 0 && (filter.Month < 1 || filter.Month > 12) {
		return nil, domain.NewValidationError("month", "Month must be between 1 and 12")
	}
	if filter.Year != 0 {
		if err := util.ValidateYear(filter.Year); err != nil {
			return nil, err
		}
	}

	budgets, err := s.budgetRepo.List(ctx, filter)
	if err != nil {
		return nil, &domain.ProviderError{Op: "list budgets", Err: err}
	}
	return budgets, nil
}

// DeleteBudget removes one of the user's budgets. It reports false when no such budget exists.
func (s *BudgetService) DeleteBudget(ctx context.Context, id, userID int32) (bool, error) {
	deleted, err := s.budgetRepo.Delete(ctx, id, userID)
	if err != nil {
		return false, &domain.ProviderError{Op: "delete budget", Err: err}
	}
	return deleted, nil
}

// budgetStatusFromSpending derives remaining, usage and status. A zero budget reports 0% used.
func budgetStatusFromSpending(row *domain.BudgetSpending) *domain.BudgetStatus {
	ratio := decimal.Zero
	if row.Amount.IsPositive() {
		ratio = row.Spent.Div(row.Amount)
	}

	return &domain.BudgetStatus{
		Category:       row.Category,
		Budget:         row.Amount,
		Spent:          row.Spent,
		Remaining:      row.Amount.Sub(row.Spent),
		PercentageUsed: ratio,
		Status:         domain.StatusForRatio(ratio),
		AlertThreshold: row.AlertThreshold,
		Alert:          ratio.GreaterThanOrEqual(row.AlertThreshold),
	}
}
