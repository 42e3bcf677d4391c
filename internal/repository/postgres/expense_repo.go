package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-report/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ExpenseRepository implements domain.ExpenseRepository using PostgreSQL
type ExpenseRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository creates a new ExpenseRepository
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

// Create stores a new expense
func (r *ExpenseRepository) Create(ctx context.Context, expense *domain.Expense) (*domain.Expense, error) {
	amount, err := decimalToPgNumeric(expense.Amount)
	if err != nil {
		return nil, err
	}

	var (
		returned  pgtype.Numeric
		createdAt time.Time
	)
	err = r.pool.QueryRow(ctx, `
		INSERT INTO expenses (user_id, category_id, amount, description, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, amount, created_at`,
		expense.UserID, expense.CategoryID, amount, expense.Description,
		pgtype.Date{Time: expense.Date, Valid: true},
	).Scan(&expense.ID, &returned, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}

	expense.Amount = pgNumericToDecimal(returned)
	expense.CreatedAt = createdAt
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

	if _, err := r.pool.Exec(ctx, `INSERT INTO categories (name) VALUES ($1) ON CONFLICT DO NOTHING`, name); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return r.getCategoryByName(ctx, name)
}

func (r *ExpenseRepository) getCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	var category domain.Category
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description, is_default, created_at
		FROM categories
		WHERE LOWER(name) = LOWER($1)`, name,
	).Scan(&category.ID, &category.Name, &category.Description, &category.IsDefault, &category.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &category, nil
}

// SumByCategory totals expenses per category in [start, end), ordered by category name
func (r *ExpenseRepository) SumByCategory(ctx context.Context, userID int32, start, end time.Time) ([]*domain.CategoryTotal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.name, SUM(e.amount)
		FROM expenses e
		JOIN categories c ON c.id = e.category_id
		WHERE e.user_id = $1 AND e.date >= $2 AND e.date < $3
		GROUP BY c.id, c.name
		ORDER BY c.name`,
		userID, pgtype.Date{Time: start, Valid: true}, pgtype.Date{Time: end, Valid: true},
	)
	if err != nil {
		return nil, fmt.Errorf("sum expenses by category: %w", err)
	}

	totals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.CategoryTotal, error) {
		var (
			name  string
			total pgtype.Numeric
		)
		if err := row.Scan(&name, &total); err != nil {
			return nil, err
		}
		return &domain.CategoryTotal{Category: name, Total: pgNumericToDecimal(total)}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan category totals: %w", err)
	}
	return totals, nil
}

// SumByMonth totals expenses per calendar month in [start, end), ordered by month
func (r *ExpenseRepository) SumByMonth(ctx context.Context, userID int32, start, end time.Time) ([]*domain.MonthlyTotal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT EXTRACT(MONTH FROM date)::int AS month, SUM(amount)
		FROM expenses
		WHERE user_id = $1 AND date >= $2 AND date < $3
		GROUP BY month
		ORDER BY month`,
		userID, pgtype.Date{Time: start, Valid: true}, pgtype.Date{Time: end, Valid: true},
	)
	if err != nil {
		return nil, fmt.Errorf("sum expenses by month: %w", err)
	}

	totals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.MonthlyTotal, error) {
		var (
			month int32
			total pgtype.Numeric
		)
		if err := row.Scan(&month, &total); err != nil {
			return nil, err
		}
		return &domain.MonthlyTotal{Month: int(month), Total: pgNumericToDecimal(total)}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan monthly totals: %w", err)
	}
	return totals, nil
}

// List returns the user's expenses matching filter, newest first
func (r *ExpenseRepository) List(ctx context.Context, filter domain.ExpenseFilter) ([]*domain.Expense, error) {
	q := newWhere("e.user_id", filter.UserID)
	if filter.From != nil {
		q.add("e.date >=", pgtype.Date{Time: *filter.From, Valid: true})
	}
	if filter.To != nil {
		q.add("e.date <=", pgtype.Date{Time: *filter.To, Valid: true})
	}
	if filter.Category != "" {
		q.addLower("c.name", filter.Category)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT e.id, e.user_id, e.category_id, c.name, e.amount, e.description, e.date, e.created_at
		FROM expenses e
		JOIN categories c ON c.id = e.category_id
		WHERE `+q.String()+`
		ORDER BY e.date DESC, e.id DESC`,
		q.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	expenses, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Expense, error) {
		var (
			expense domain.Expense
			amount  pgtype.Numeric
			date    pgtype.Date
		)
		if err := row.Scan(&expense.ID, &expense.UserID, &expense.CategoryID, &expense.Category,
			&amount, &expense.Description, &date, &expense.CreatedAt); err != nil {
			return nil, err
		}
		expense.Amount = pgNumericToDecimal(amount)
		expense.Date = date.Time
		return &expense, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan expenses: %w", err)
	}
	return expenses, nil
}

// Delete removes the expense if it belongs to userID and reports whether a row was deleted
func (r *ExpenseRepository) Delete(ctx context.Context, id, userID int32) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete expense: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// where accumulates AND-ed conditions with numbered placeholders
type where struct {
	conds []string
	args  []any
}

func newWhere(column string, value any) *where {
	w := &where{}
	w.add(column+" =", value)
	return w
}

// add appends "<expr> $n", e.g. add("e.date >=", from)
func (w *where) add(expr string, value any) {
	w.args = append(w.args, value)
	w.conds = append(w.conds, fmt.Sprintf("%s $%d", expr, len(w.args)))
}

func (w *where) addLower(column string, value string) {
	w.args = append(w.args, value)
	w.conds = append(w.conds, fmt.Sprintf("LOWER(%s) = LOWER($%d)", column, len(w.args)))
}

func (w *where) String() string {
	return strings.Join(w.conds, " AND ")
}
