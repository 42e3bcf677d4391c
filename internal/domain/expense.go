package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          int32     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	IsDefault   bool      `json:"isDefault"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Expense struct {
	ID          int32           `json:"id"`
	UserID      int32           `json:"userId"`
	CategoryID  int32           `json:"categoryId"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description *string         `json:"description,omitempty"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// CategoryTotal is the aggregated expense amount for one category within a period
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// MonthlyTotal is the aggregated expense amount for one calendar month (1-12)
type MonthlyTotal struct {
	Month int             `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// ExpenseFilter narrows an expense listing. Nil dates and an empty category leave that field
// unfiltered; From and To are both inclusive.
type ExpenseFilter struct {
	UserID   int32
	From     *time.Time
	To       *time.Time
	Category string
}

// DefaultCategory seeds the category table on first use of a store
type DefaultCategory struct {
	Name        string
	Description string
}

var DefaultCategories = []DefaultCategory{
	{Name: "Food", Description: "Groceries, restaurants, and food delivery"},
	{Name: "Transport", Description: "Public transport, taxis, and fuel"},
	{Name: "Entertainment", Description: "Movies, events, and other leisure activities"},
	{Name: "Housing", Description: "Rent, mortgage, and home maintenance"},
	{Name: "Utilities", Description: "Electricity, water, and internet bills"},
	{Name: "Healthcare", Description: "Medical expenses and health insurance"},
	{Name: "Shopping", Description: "Clothing, electronics, and other retail purchases"},
	{Name: "Personal", Description: "Personal care and miscellaneous expenses"},
}

// ExpenseRepository is the storage boundary for expenses.
// Ranges are half-open: start <= date < end.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *Expense) (*Expense, error)
	GetOrCreateCategory(ctx context.Context, name string) (*Category, error)
	SumByCategory(ctx context.Context, userID int32, start, end time.Time) ([]*CategoryTotal, error)
	SumByMonth(ctx context.Context, userID int32, start, end time.Time) ([]*MonthlyTotal, error)
	List(ctx context.Context, filter ExpenseFilter) ([]*Expense, error)
	Delete(ctx context.Context, id, userID int32) (bool, error)
}

// ExpenseAggregator provides expense totals to the report service
type ExpenseAggregator interface {
	GetExpenseTotalsByCategory(ctx context.Context, month, year int, userID int32) ([]*CategoryTotal, error)
	GetExpenseTotalsByMonth(ctx context.Context, year int, userID int32) ([]*MonthlyTotal, error)
}
