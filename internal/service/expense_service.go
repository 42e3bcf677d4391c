package service

import (
	"context"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-report/internal/domain"
	"github.com/dafibh/fortuna/fortuna-report/internal/util"
	"github.com/shopspring/decimal"
)

// ExpenseService records expenses and aggregates them for reports
type ExpenseService struct {
	expenseRepo domain.ExpenseRepository
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(expenseRepo domain.ExpenseRepository) *ExpenseService {
	return &ExpenseService{expenseRepo: expenseRepo}
}

// AddExpenseInput holds the input for recording an expense
type AddExpenseInput struct {
	UserID      int32
	Amount      decimal.Decimal
	Category    string
	Description *string
	Date        *time.Time
}

// AddExpense validates and stores an expense, creating its category on first use
func (s *ExpenseService) AddExpense(ctx context.Context, input AddExpenseInput) (*domain.Expense, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.NewValidationError("amount", "Invalid amount: must be greater than zero")
	}

	category, err := normalizeCategory(input.Category)
	if err != nil {
		return nil, err
	}

	var description *string
	if input.Description != nil {
		trimmed := strings.TrimSpace(*input.Description)
		if trimmed != "" {
			if len(trimmed) > domain.MaxDescriptionLength {
				return nil, domain.NewValidationError("description", "description cannot exceed 200 characters")
			}
			description = &trimmed
		}
	}

	// Default date to today if not provided
	date := time.Now().UTC().Truncate(24 * time.Hour)
	if input.Date != nil {
		date = *input.Date
	}

	cat, err := s.expenseRepo.GetOrCreateCategory(ctx, category)
	if err != nil {
		return nil, &domain.ProviderError{Op: "get or create category", Err: err}
	}

	expense, err := s.expenseRepo.Create(ctx, &domain.Expense{
		UserID:      input.UserID,
		CategoryID:  cat.ID,
		Category:    cat.Name,
		Amount:      input.Amount,
		Description: description,
		Date:        date,
	})
	if err != nil {
		return nil, &domain.ProviderError{Op: "create expense", Err: err}
	}
	return expense, nil
}

// ListExpenses returns the user's expenses matching filter, newest first
func (s *ExpenseService) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]*domain.Expense, error) {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, domain.NewValidationError("date", "start date cannot be after end date")
	}
	filter.Category = strings.TrimSpace(filter.Category)

	expenses, err := s.expenseRepo.List(ctx, filter)
	if err != nil {
		return nil, &domain.ProviderError{Op: "list expenses", Err: err}
	}
	return expenses, nil
}

// DeleteExpense removes one of the user's expenses. It reports false when no such expense exists.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id, userID int32) (bool, error) {
	deleted, err := s.expenseRepo.Delete(ctx, id, userID)
	if err != nil {
		return false, &domain.ProviderError{Op: "delete expense", Err: err}
	}
	return deleted, nil
}

// GetExpenseTotalsByCategory returns per-category totals for one month
func (s *ExpenseService) GetExpenseTotalsByCategory(ctx context.Context, month, year int, userID int32) ([]*domain.CategoryTotal, error) {
	start, end := util.MonthRange(year, month)
	totals, err := s.expenseRepo.SumByCategory(ctx, userID, start, end)
	if err != nil {
		return nil, &domain.ProviderError{Op: "get expense totals by category", Err: err}
	}
	return totals, nil
}

// GetExpenseTotalsByMonth returns per-month totals for one year, months without expenses omitted
func (s *ExpenseService) GetExpenseTotalsByMonth(ctx context.Context, year int, userID int32) ([]*domain.MonthlyTotal, error) {
	start, end := util.YearRange(year)
	totals, err := s.expenseRepo.SumByMonth(ctx, userID, start, end)
	if err != nil {
		return nil, &domain.ProviderError{Op: "get expense totals by month", Err: err}
	}
	return totals, nil
}
