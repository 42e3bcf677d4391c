package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dafibh/fortuna/fortuna-report/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

// Upsert creates or replaces the budget for (user, category, year, month)
func (r *BudgetRepository) Upsert(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	amount, err := decimalToPgNumeric(budget.Amount)
	if err != nil {
		return nil, err
	}
	threshold, err := decimalToPgNumeric(budget.AlertThreshold)
	if err != nil {
		return nil, err
	}

	var returned pgtype.Numeric
	err = r.pool.QueryRow(ctx, `
		INSERT INTO budgets (user_id, category_id, year, month, amount, alert_threshold)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, category_id, year, month)
		DO UPDATE SET amount = EXCLUDED.amount, alert_threshold = EXCLUDED.alert_threshold
		RETURNING id, amount, created_at`,
		budget.UserID, budget.CategoryID, int32(budget.Year), int32(budget.Month), amount, threshold,
	).Scan(&budget.ID, &returned, &budget.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert budget: %w", err)
	}

	budget.Amount = pgNumericToDecimal(returned)
	return budget, nil
}

// GetWithSpending returns the month's budgets joined with what was spent in each category
func (r *BudgetRepository) GetWithSpending(ctx context.Context, userID int32, year, month int, start, end time.Time) ([]*domain.BudgetSpending, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.name, b.amount, b.alert_threshold, COALESCE(SUM(e.amount), 0)
		FROM budgets b
		JOIN categories c ON c.id = b.category_id
		LEFT JOIN expenses e ON e.category_id = b.category_id
			AND e.user_id = b.user_id
			AND e.date >= $4 AND e.date < $5
		WHERE b.user_id = $1 AND b.year = $2 AND b.month = $3
		GROUP BY b.id, c.name, b.amount, b.alert_threshold
		ORDER BY c.name`,
		userID, int32(year), int32(month),
		pgtype.Date{Time: start, Valid: true}, pgtype.Date{Time: end, Valid: true},
	)
	if err != nil {
		return nil, fmt.Errorf("get budgets with spending: %w", err)
	}

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.BudgetSpending, error) {
		var (
			name              string
			amount, threshold pgtype.Numeric
			spent             pgtype.Numeric
		)
		if err := row.Scan(&name, &amount, &threshold, &spent); err != nil {
			return nil, err
		}
		return &domain.BudgetSpending{
			Category:       name,
			Amount:         pgNumericToDecimal(amount),
			Spent:          pgNumericToDecimal(spent),
			AlertThreshold: pgNumericToDecimal(threshold),
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan budgets: %w", err)
	}
	return result, nil
}

// List returns the user's budgets matching filter, latest month first
func (r *BudgetRepository) List(ctx context.Context, filter domain.BudgetFilter) ([]*domain.Budget, error) {
	q := newWhere("b.user_id", filter.UserID)
	if filter.Month != 0 {
		q.add("b.month =", int32(filter.Month))
	}
	if filter.Year != 0 {
		q.add("b.year =", int32(filter.Year))
	}
	if filter.Category != "" {
		q.addLower("c.name", filter.Category)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT b.id, b.user_id, b.category_id, c.name, b.year, b.month, b.amount, b.alert_threshold, b.created_at
		FROM budgets b
		JOIN categories c ON c.id = b.category_id
		WHERE `+q.String()+`
		ORDER BY b.year DESC, b.month DESC, c.name`,
		q.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	budgets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Budget, error) {
		var (
			budget            domain.Budget
			year, month       int32
			amount, threshold pgtype.Numeric
		)
		if err := row.Scan(&budget.ID, &budget.UserID, &budget.CategoryID, &budget.Category,
			&year, &month, &amount, &threshold, &budget.CreatedAt); err != nil {
			return nil, err
		}
		budget.Year = int(year)
		budget.Month = int(month)
		budget.Amount = pgNumericToDecimal(amount)
		budget.AlertThreshold = pgNumericToDecimal(threshold)
		return &budget, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan budgets: %w", err)
	}
	return budgets, nil
}

// Delete removes the budget if it belongs to userID and reports whether a row was deleted
func (r *BudgetRepository) Delete(ctx context.Context, id, userID int32) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete budget: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
