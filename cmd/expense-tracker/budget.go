package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dafibh/fortuna/fortuna-report/internal/domain"
	"github.com/dafibh/fortuna/fortuna-report/internal/format"
	"github.com/dafibh/fortuna/fortuna-report/internal/service"
)

var budgetListHeaders = []string{"ID", "Month", "Category", "Amount", "Alert At"}

func (a *app) setBudget(ctx context.Context, args []string) error {
	fs := a.newFlagSet("budget set")
	category := fs.String("category", "", "Budget category")
	amountStr := fs.String("amount", "", "Budget amount")
	month := fs.Int("month", 0, "Month (1-12)")
	year := fs.Int("year", 0, "Year")
	thresholdStr := fs.String("alert-threshold", "", "Alert threshold (0.0-1.0)")
	rawUserID := a.userIDFlag(fs)

	if err := parseFlags(fs, args, "category", "amount", "month", "year"); err != nil {
		return err
	}
	uid, err := userID(*rawUserID)
	if err != nil {
		return err
	}

	amount, err := service.ParseAmount(*amountStr)
	if err != nil {
		return err
	}

	input := service.SetBudgetInput{
		UserID:   uid,
		Category: *category,
		Amount:   amount,
		Month:    *month,
		Year:     *year,
	}
	if *thresholdStr != "" {
		threshold, err := service.ParseThreshold(*thresholdStr)
		if err != nil {
			return err
		}
		input.AlertThreshold = &threshold
	}

	budget, err := a.budgets.SetBudget(ctx, input)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Budget set successfully: %s for %s in %s\n",
		format.Currency(budget.Amount, a.cfg.CurrencySymbol), budget.Category, format.MonthYear(budget.Month, budget.Year))
	return nil
}

func (a *app) listBudgets(ctx context.Context, args []string) error {
	fs := a.newFlagSet("budget list")
	month := fs.Int("month", 0, "Filter by month (1-12)")
	year := fs.Int("year", 0, "Filter by year")
	category := fs.String("category", "", "Filter by category")
	rawUserID := a.userIDFlag(fs)

	if err := parseFlags(fs, args); err != nil {
		return err
	}
	uid, err := userID(*rawUserID)
	if err != nil {
		return err
	}

	budgets, err := a.budgets.ListBudgets(ctx, domain.BudgetFilter{
		UserID:   uid,
		Month:    *month,
		Year:     *year,
		Category: *category,
	})
	if err != nil {
		return err
	}
	if len(budgets) == 0 {
		fmt.Fprintln(a.stdout, "No budgets found.")
		return nil
	}

	rows := make([][]string, 0, len(budgets))
	for _, b := range budgets {
		rows = append(rows, []string{
			strconv.Itoa(int(b.ID)),
			format.MonthYear(b.Month, b.Year),
			b.Category,
			format.Currency(b.Amount, a.cfg.CurrencySymbol),
			format.Percentage(b.AlertThreshold),
		})
	}

	fmt.Fprint(a.stdout, format.Table(fmt.Sprintf("Budgets (%d)", len(budgets)), budgetListHeaders, rows))
	return nil
}

func (a *app) deleteBudget(ctx context.Context, args []string) error {
	fs := a.newFlagSet("budget delete")
	rawUserID := a.userIDFlag(fs)

	id, err := parseFlagsWithID(fs, args, "budget")
	if err != nil {
		return err
	}
	uid, err := userID(*rawUserID)
	if err != nil {
		return err
	}

	deleted, err := a.budgets.DeleteBudget(ctx, id, uid)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("budget %d not found or you don't have permission to delete it", id)
	}

	fmt.Fprintf(a.stdout, "Budget %d deleted successfully.\n", id)
	return nil
}
