package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dafibh/fortuna/fortuna-report/internal/domain"
	"github.com/dafibh/fortuna/fortuna-report/internal/format"
	"github.com/dafibh/fortuna/fortuna-report/internal/service"
	"github.com/shopspring/decimal"
)

const maxListedDescription = 37

var expenseListHeaders = []string{"ID", "Date", "Category", "Amount", "Description"}

func (a *app) addExpense(ctx context.Context, args []string) error {
	fs := a.newFlagSet("expense add")
	amountStr := fs.String("amount", "", "Expense amount")
	category := fs.String("category", "", "Expense category")
	description := fs.String("description", "", "Expense description")
	dateStr := fs.String("date", "", "Expense date (YYYY-MM-DD)")
	rawUserID := a.userIDFlag(fs)

	if err := parseFlags(fs, args, "amount", "category"); err != nil {
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
	date, err := service.ParseDate(*dateStr)
	if err != nil {
		return err
	}

	input := service.AddExpenseInput{
		UserID:   uid,
		Amount:   amount,
		Category: *category,
		Date:     date,
	}
	if *description != "" {
		input.Description = description
	}

	expense, err := a.expenses.AddExpense(ctx, input)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Expense added successfully: %s for %s on %s\n",
		format.Currency(expense.Amount, a.cfg.CurrencySymbol), expense.Category, expense.Date.Format(service.DateLayout))
	return nil
}

func (a *app) listExpenses(ctx context.Context, args []string) error {
	fs := a.newFlagSet("expense list")
	fromStr := fs.String("from", "", "Start date (YYYY-MM-DD)")
	toStr := fs.String("to", "", "End date (YYYY-MM-DD)")
	category := fs.String("category", "", "Filter by category")
	rawUserID := a.userIDFlag(fs)

	if err := parseFlags(fs, args); err != nil {
		return err
	}
	uid, err := userID(*rawUserID)
	if err != nil {
		return err
	}

	from, err := service.ParseDate(*fromStr)
	if err != nil {
		return err
	}
	to, err := service.ParseDate(*toStr)
	if err != nil {
		return err
	}

	expenses, err := a.expenses.ListExpenses(ctx, domain.ExpenseFilter{
		UserID:   uid,
		From:     from,
		To:       to,
		Category: *category,
	})
	if err != nil {
		return err
	}
	if len(expenses) == 0 {
		fmt.Fprintln(a.stdout, "No expenses found.")
		return nil
	}

	total := decimal.Zero
	rows := make([][]string, 0, len(expenses)+1)
	for _, e := range expenses {
		description := ""
		if e.Description != nil {
			description = format.Truncate(*e.Description, maxListedDescription)
		}
		rows = append(rows, []string{
			strconv.Itoa(int(e.ID)),
			e.Date.Format(service.DateLayout),
			e.Category,
			format.Currency(e.Amount, a.cfg.CurrencySymbol),
			description,
		})
		total = total.Add(e.Amount)
	}
	rows = append(rows, []string{"", "", domain.TotalLabel, format.Currency(total, a.cfg.CurrencySymbol), ""})

	fmt.Fprint(a.stdout, format.Table(fmt.Sprintf("Expenses (%d)", len(expenses)), expenseListHeaders, rows))
	return nil
}

func (a *app) deleteExpense(ctx context.Context, args []string) error {
	fs := a.newFlagSet("expense delete")
	rawUserID := a.userIDFlag(fs)

	id, err := parseFlagsWithID(fs, args, "expense")
	if err != nil {
		return err
	}
	uid, err := userID(*rawUserID)
	if err != nil {
		return err
	}

	deleted, err := a.expenses.DeleteExpense(ctx, id, uid)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("expense %d not found or you don't have permission to delete it", id)
	}

	fmt.Fprintf(a.stdout, "Expense %d deleted successfully.\n", id)
	return nil
}
