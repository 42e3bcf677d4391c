package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/dafibh/fortuna/fortuna-report/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericConversion(t *testing.T) {
	for _, s := range []string{"0", "25.5", "1050.00", "0.8", "-10.25"} {
		t.Run(s, func(t *testing.T) {
			d := decimal.RequireFromString(s)
			num, err := decimalToPgNumeric(d)
			require.NoError(t, err)
			assert.True(t, pgNumericToDecimal(num).Equal(d))
		})
	}

	assert.True(t, pgNumericToDecimal(pgtype.Numeric{}).IsZero())
}

// Runs against a real server only when TEST_DATABASE_URL is set
func TestRepositories_Integration(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	pool, err := Connect(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	// A user id unlikely to collide with real data
	userID := int32(time.Now().Unix() % 1_000_000_000)
	expenseRepo := NewExpenseRepository(pool)
	budgetRepo := NewBudgetRepository(pool)

	food, err := expenseRepo.GetOrCreateCategory(ctx, "food")
	require.NoError(t, err)
	assert.Equal(t, "Food", food.Name)

	_, err = expenseRepo.Create(ctx, &domain.Expense{
		UserID: userID, CategoryID: food.ID,
		Amount: decimal.RequireFromString("25.50"),
		Date:   time.Date(2023, 5, 14, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	start := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	totals, err := expenseRepo.SumByCategory(ctx, userID, start, end)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.True(t, totals[0].Total.Equal(decimal.RequireFromString("25.50")))

	months, err := expenseRepo.SumByMonth(ctx, userID, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, months, 1)
	assert.Equal(t, 5, months[0].Month)

	_, err = budgetRepo.Upsert(ctx, &domain.Budget{
		UserID: userID, CategoryID: food.ID, Year: 2023, Month: 5,
		Amount: decimal.NewFromInt(100), AlertThreshold: domain.DefaultAlertThreshold,
	})
	require.NoError(t, err)

	rows, err := budgetRepo.GetWithSpending(ctx, userID, 2023, 5, start, end)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Spent.Equal(decimal.RequireFromString("25.50")))

	expenses, err := expenseRepo.List(ctx, domain.ExpenseFilter{UserID: userID, From: &start, Category: "FOOD"})
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "Food", expenses[0].Category)
	assert.Equal(t, 14, expenses[0].Date.Day())

	budgets, err := budgetRepo.List(ctx, domain.BudgetFilter{UserID: userID, Year: 2023})
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.True(t, budgets[0].AlertThreshold.Equal(domain.DefaultAlertThreshold))

	deleted, err := budgetRepo.Delete(ctx, budgets[0].ID, userID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = expenseRepo.Delete(ctx, expenses[0].ID, userID+1)
	require.NoError(t, err)
	assert.False(t, deleted)
	deleted, err = expenseRepo.Delete(ctx, expenses[0].ID, userID)
	require.NoError(t, err)
	assert.True(t, deleted)
}
