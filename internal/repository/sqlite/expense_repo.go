package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-report/internal/domain"
)

// ExpenseRepository implements domain.ExpenseRepository using SQLite
type ExpenseRepository struct {
	db *sql.DB
}

// NewExpenseRepository creates a new ExpenseRepository
func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create stores a new expense
func (r *ExpenseRepository) Create(ctx context.Context, expense *domain.Expense) (*domain.Expense, error) {
	var description sql.NullString
	if expense.Description != nil {
		description = sql.NullString{String: *expense.Description, Valid: true}
	}

	var createdAt string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO expenses (user_id, category_id, amount_cents, description, date)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, created_at`,
		expense.UserID, expense.CategoryID, toCents(expense.Amount), description, formatDate(expense.Date),
	).Scan(&expense.ID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}

	expense.Amount = fromCents(toCents(expense.Amount))
	expense.CreatedAt = parseTimestamp(createdAt)
	return expense, nil
}

// GetOrCreateCategory returns the category matching name case-insensitively, creating it if missing
func (r *ExpenseRepository) GetOrCreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	category, err := r.getCategoryByName(ctx, name)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, domain.ErrCategoryNotFound) {
		return nil, err
	}

	if _, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO categories (name) VALUES (?)`, name); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return r.getCategoryByName(ctx, name)
}

func (r *ExpenseRepository) getCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	var (
		category    domain.Category
		description sql.NullString
		createdAt   string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, is_default, created_at
		FROM categories
		WHERE name = ? COLLATE NOCASE`, name,
	).Scan(&category.ID, &category.Name, &description, &category.IsDefault, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}

	if description.Valid {
		category.Description = &description.String
	}
	category.CreatedAt = parseTimestamp(createdAt)
	return &category, nil
}

// SumByCategory totals expenses per category in [start, end), ordered by category name
func (r *ExpenseRepository) SumByCategory(ctx context.Context, userID int32, start, end time.Time) ([]*domain.CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.name, SUM(e.amount_cents)
		FROM expenses e
		JOIN categories c ON c.id = e.category_id
		WHERE e.user_id = ? AND e.date >= ? AND e.date < ?
		GROUP BY c.id, c.name
		ORDER BY c.name`,
		userID, formatDate(start), formatDate(end),
	)
	if err != nil {
		return nil, fmt.Errorf("sum expenses by category: %w", err)
	}
	defer rows.Close()

	var totals []*domain.CategoryTotal
	for rows.Next() {
		var (
			name  string
			cents int64
		)
		if err := rows.Scan(&name, &cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, &domain.CategoryTotal{Category: name, Total: fromCents(cents)})
	}
	return totals, rows.Err()
}

// SumByMonth totals expenses per calendar month in [start, end), ordered by month
func (r *ExpenseRepository) SumByMonth(ctx context.Context, userID int32, start, end time.Time) ([]*domain.MonthlyTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT CAST(strftime('%m', date) AS INTEGER) AS month, SUM(amount_cents)
		FROM expenses
		WHERE user_id = ? AND date >= ? AND date < ?
		GROUP BY month
		ORDER BY month`,
		userID, formatDate(start), formatDate(end),
	)
	if err != nil {
		return nil, fmt.Errorf("sum expenses by month: %w", err)
	}
	defer rows.Close()

	var totals []*domain.MonthlyTotal
	for rows.Next() {
		var (
			month int
			cents int64
		)
		if err := rows.Scan(&month, &cents); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		totals = append(totals, &domain.MonthlyTotal{Month: month, Total: fromCents(cents)})
	}
	return totals, rows.Err()
}

// List returns the user's expenses matching filter, newest first
func (r *ExpenseRepository) List(ctx context.Context, filter domain.ExpenseFilter) ([]*domain.Expense, error) {
	where := []string{"e.user_id = ?"}
	args := []any{filter.UserID}
	if filter.From != nil {
		where = append(where, "e.date >= ?")
		args = append(args, formatDate(*filter.From))
	}
	if filter.To != nil {
		where = append(where, "e.date <= ?")
		args = append(args, formatDate(*filter.To))
	}
	if filter.Category != "" {
		where = append(where, "c.name = ? COLLATE NOCASE")
		args = append(args, filter.Category)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT e.id, e.user_id, e.category_id, c.name, e.amount_cents, e.description, e.date, e.created_at
		FROM expenses e
		JOIN categories c ON c.id = e.category_id
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY e.date DESC, e.id DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*domain.Expense
	for rows.Next() {
		var (
			expense     domain.Expense
			cents       int64
			description sql.NullString
			date        string
			createdAt   string
		)
		if err := rows.Scan(&expense.ID, &expense.UserID, &expense.CategoryID, &expense.Category,
			&cents, &description, &date, &createdAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}

		expense.Amount = fromCents(cents)
		if description.Valid {
			expense.Description = &description.String
		}
		expense.Date, err = time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parse expense date %q: %w", date, err)
		}
		expense.CreatedAt = parseTimestamp(createdAt)
		expenses = append(expenses, &expense)
	}
	return expenses, rows.Err()
}

// Delete removes the expense if it belongs to userID and reports whether a row was deleted
func (r *ExpenseRepository) Delete(ctx context.Context, id, userID int32) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete expense: %w", err)
	}
	return n > 0, nil
}
