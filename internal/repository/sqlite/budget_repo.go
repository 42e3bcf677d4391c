package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-report/internal/domain"
	"github.com/shopspring/decimal"
)

// BudgetRepository implements domain.BudgetRepository using SQLite
type BudgetRepository struct {
	db *sql.DB
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(db *sql.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// Upsert creates or replaces the budget for (user, category, year, month)
func (r *BudgetRepository) Upsert(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	var createdAt string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO budgets (user_id, category_id, year, month, amount_cents, alert_threshold)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, category_id, year, month)
		DO UPDATE SET amount_cents = excluded.amount_cents, alert_threshold = excluded.alert_threshold
		RETURNING id, created_at`,
		budget.UserID, budget.CategoryID, budget.Year, budget.Month,
		toCents(budget.Amount), budget.AlertThreshold.String(),
	).Scan(&budget.ID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("upsert budget: %w", err)
	}

	budget.Amount = fromCents(toCents(budget.Amount))
	budget.CreatedAt = parseTimestamp(createdAt)
	return budget, nil
}

// GetWithSpending returns the month's budgets joined with what was spent in each category
func (r *BudgetRepository) GetWithSpending(ctx context.Context, userID int32, year, month int, start, end time.Time) ([]*domain.BudgetSpending, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.name, b.amount_cents, b.alert_threshold,
			COALESCE((
				SELECT SUM(e.amount_cents)
				FROM expenses e
				WHERE e.user_id = b.user_id
					AND e.category_id = b.category_id
					AND e.date >= ? AND e.date < ?
			), 0) AS spent_cents
		FROM budgets b
		JOIN categories c ON c.id = b.category_id
		WHERE b.user_id = ? AND b.year = ? AND b.month = ?
		ORDER BY c.name`,
		formatDate(start), formatDate(end), userID, year, month,
	)
	if err != nil {
		return nil, fmt.Errorf("get budgets with spending: %w", err)
	}
	defer rows.Close()

	var result []*domain.BudgetSpending
	for rows.Next() {
		var (
			name        string
			amountCents int64
			threshold   string
			spentCents  int64
		)
		if err := rows.Scan(&name, &amountCents, &threshold, &spentCents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}

		result = append(result, &domain.BudgetSpending{
			Category:       name,
			Amount:         fromCents(amountCents),
			Spent:          fromCents(spentCents),
			AlertThreshold: parseThreshold(threshold),
		})
	}
	return result, rows.Err()
}

// List returns the user's budgets matching filter, latest month first
func (r *BudgetRepository) List(ctx context.Context, filter domain.BudgetFilter) ([]*domain.Budget, error) {
	where := []string{"b.user_id = ?"}
	args := []any{filter.UserID}
	if filter.Month != 0 {
		where = append(where, "b.month = ?")
		args = append(args, filter.Month)
	}
	if filter.Year != 0 {
		where = append(where, "b.year = ?")
		args = append(args, filter.Year)
	}
	if filter.Category != "" {
		where = append(where, "c.name = ? COLLATE NOCASE")
		args = append(args, filter.Category)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT b.id, b.user_id, b.category_id, c.name, b.year, b.month, b.amount_cents, b.alert_threshold, b.created_at
		FROM budgets b
		JOIN categories c ON c.id = b.category_id
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY b.year DESC, b.month DESC, c.name`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*domain.Budget
	for rows.Next() {
		var (
			budget    domain.Budget
			cents     int64
			threshold string
			createdAt string
		)
		if err := rows.Scan(&budget.ID, &budget.UserID, &budget.CategoryID, &budget.Category,
			&budget.Year, &budget.Month, &cents, &threshold, &createdAt); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budget.Amount = fromCents(cents)
		budget.AlertThreshold = parseThreshold(threshold)
		budget.CreatedAt = parseTimestamp(createdAt)
		budgets = append(budgets, &budget)
	}
	return budgets, rows.Err()
}

// Delete removes the budget if it belongs to userID and reports whether a row was deleted
func (r *BudgetRepository) Delete(ctx context.Context, id, userID int32) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete budget: %w", err)
	}
	return n > 0, nil
}

func parseThreshold(s string) decimal.Decimal {
	threshold, err := decimal.NewFromString(s)
	if err != nil {
		return domain.DefaultAlertThreshold
	}
	return threshold
}
