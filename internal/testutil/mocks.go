package testutil

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-report/internal/domain"
	"github.com/shopspring/decimal"
)

// MockExpenseRepository is a mock implementation of domain.ExpenseRepository
type MockExpenseRepository struct {
	Expenses        []*domain.Expense
	Categories      map[string]*domain.Category
	nextID          int32
	nextCatID       int32
	CreateFn        func(expense *domain.Expense) (*domain.Expense, error)
	CategoryFn      func(name string) (*domain.Category, error)
	SumByCategoryFn func(userID int32, start, end time.Time) ([]*domain.CategoryTotal, error)
	SumByMonthFn    func(userID int32, start, end time.Time) ([]*domain.MonthlyTotal, error)
	ListFn          func(filter domain.ExpenseFilter) ([]*domain.Expense, error)
	DeleteFn        func(id, userID int32) (bool, error)
}

// NewMockExpenseRepository creates a new MockExpenseRepository
func NewMockExpenseRepository() *MockExpenseRepository {
	return &MockExpenseRepository{
		Categories: make(map[string]*domain.Category),
	}
}

// Create stores an expense
func (m *MockExpenseRepository) Create(ctx context.Context, expense *domain.Expense) (*domain.Expense, error) {
	if m.CreateFn != nil {
		return m.CreateFn(expense)
	}
	m.nextID++
	expense.ID = m.nextID
	expense.CreatedAt = time.Now()
	m.Expenses = append(m.Expenses, expense)
	return expense, nil
}

// GetOrCreateCategory returns the category by case-insensitive name, creating it if missing
func (m *MockExpenseRepository) GetOrCreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	if m.CategoryFn != nil {
		return m.CategoryFn(name)
	}
	key := strings.ToLower(name)
	if cat, ok := m.Categories[key]; ok {
		return cat, nil
	}
	m.nextCatID++
	cat := &domain.Category{ID: m.nextCatID, Name: name, CreatedAt: time.Now()}
	m.Categories[key] = cat
	return cat, nil
}

// AddExpense is a helper to seed an expense for a category
func (m *MockExpenseRepository) AddExpense(userID int32, category string, amount string, date time.Time) {
	cat, _ := m.GetOrCreateCategory(context.Background(), category)
	m.nextID++
	m.Expenses = append(m.Expenses, &domain.Expense{
		ID:         m.nextID,
		UserID:     userID,
		CategoryID: cat.ID,
		Category:   cat.Name,
		Amount:     decimal.RequireFromString(amount),
		Date:       date,
	})
}

func (m *MockExpenseRepository) inRange(userID int32, start, end time.Time) []*domain.Expense {
	var result []*domain.Expense
	for _, e := range m.Expenses {
		if e.UserID == userID && !e.Date.Before(start) && e.Date.Before(end) {
			result = append(result, e)
		}
	}
	return result
}

// SumByCategory aggregates seeded expenses by category name
func (m *MockExpenseRepository) SumByCategory(ctx context.Context, userID int32, start, end time.Time) ([]*domain.CategoryTotal, error) {
	if m.SumByCategoryFn != nil {
		return m.SumByCategoryFn(userID, start, end)
	}
	sums := make(map[string]decimal.Decimal)
	for _, e := range m.inRange(userID, start, end) {
		sums[e.Category] = sums[e.Category].Add(e.Amount)
	}
	totals := make([]*domain.CategoryTotal, 0, len(sums))
	for name, total := range sums {
		totals = append(totals, &domain.CategoryTotal{Category: name, Total: total})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Category < totals[j].Category })
	return totals, nil
}

// SumByMonth aggregates seeded expenses by calendar month
func (m *MockExpenseRepository) SumByMonth(ctx context.Context, userID int32, start, end time.Time) ([]*domain.MonthlyTotal, error) {
	if m.SumByMonthFn != nil {
		return m.SumByMonthFn(userID, start, end)
	}
	sums := make(map[int]decimal.Decimal)
	for _, e := range m.inRange(userID, start, end) {
		month := int(e.Date.Month())
		sums[month] = sums[month].Add(e.Amount)
	}
	totals := make([]*domain.MonthlyTotal, 0, len(sums))
	for month, total := range sums {
		totals = append(totals, &domain.MonthlyTotal{Month: month, Total: total})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Month < totals[j].Month })
	return totals, nil
}

// List returns matching expenses newest first
func (m *MockExpenseRepository) List(ctx context.Context, filter domain.ExpenseFilter) ([]*domain.Expense, error) {
	if m.ListFn != nil {
		return m.ListFn(filter)
	}
	var result []*domain.Expense
	for _, e := range m.Expenses {
		if e.UserID != filter.UserID {
			continue
		}
		if filter.From != nil && e.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.Date.After(*filter.To) {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(e.Category, filter.Category) {
			continue
		}
		result = append(result, e)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

// Delete removes the user's expense by id
func (m *MockExpenseRepository) Delete(ctx context.Context, id, userID int32) (bool, error) {
	if m.DeleteFn != nil {
		return m.DeleteFn(id, userID)
	}
	for i, e := range m.Expenses {
		if e.ID == id && e.UserID == userID {
			m.Expenses = append(m.Expenses[:i], m.Expenses[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// MockBudgetRepository is a mock implementation of domain.BudgetRepository.
// Spending is read from the linked expense repository when set.
type MockBudgetRepository struct {
	Budgets    map[string]*domain.Budget
	Expenses   *MockExpenseRepository
	nextID     int32
	UpsertFn   func(budget *domain.Budget) (*domain.Budget, error)
	SpendingFn func(userID int32, year, month int) ([]*domain.BudgetSpending, error)
	ListFn     func(filter domain.BudgetFilter) ([]*domain.Budget, error)
	DeleteFn   func(id, userID int32) (bool, error)
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository(expenses *MockExpenseRepository) *MockBudgetRepository {
	return &MockBudgetRepository{
		Budgets:  make(map[string]*domain.Budget),
		Expenses: expenses,
	}
}

func budgetKey(userID, categoryID int32, year, month int) string {
	return fmt.Sprintf("%d:%d:%d:%d", userID, categoryID, year, month)
}

// Upsert creates or replaces a budget keyed by user, category and month
func (m *MockBudgetRepository) Upsert(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	if m.UpsertFn != nil {
		return m.UpsertFn(budget)
	}
	key := budgetKey(budget.UserID, budget.CategoryID, budget.Year, budget.Month)
	if existing, ok := m.Budgets[key]; ok {
		budget.ID = existing.ID
		budget.CreatedAt = existing.CreatedAt
	} else {
		m.nextID++
		budget.ID = m.nextID
		budget.CreatedAt = time.Now()
	}
	m.Budgets[key] = budget
	return budget, nil
}

// GetWithSpending joins the month's budgets with spent amounts, ordered by category
func (m *MockBudgetRepository) GetWithSpending(ctx context.Context, userID int32, year, month int, start, end time.Time) ([]*domain.BudgetSpending, error) {
	if m.SpendingFn != nil {
		return m.SpendingFn(userID, year, month)
	}
	spent := make(map[int32]decimal.Decimal)
	if m.Expenses != nil {
		for _, e := range m.Expenses.inRange(userID, start, end) {
			spent[e.CategoryID] = spent[e.CategoryID].Add(e.Amount)
		}
	}

	var rows []*domain.BudgetSpending
	for _, b := range m.Budgets {
		if b.UserID != userID || b.Year != year || b.Month != month {
			continue
		}
		rows = append(rows, &domain.BudgetSpending{
			Category:       b.Category,
			Amount:         b.Amount,
			Spent:          spent[b.CategoryID],
			AlertThreshold: b.AlertThreshold,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Category < rows[j].Category })
	return rows, nil
}

// List returns matching budgets, latest month first then by category
func (m *MockBudgetRepository) List(ctx context.Context, filter domain.BudgetFilter) ([]*domain.Budget, error) {
	if m.ListFn != nil {
		return m.ListFn(filter)
	}
	var result []*domain.Budget
	for _, b := range m.Budgets {
		if b.UserID != filter.UserID ||
			(filter.Month != 0 && b.Month != filter.Month) ||
			(filter.Year != 0 && b.Year != filter.Year) ||
			(filter.Category != "" && !strings.EqualFold(b.Category, filter.Category)) {
			continue
		}
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		if a.Month != b.Month {
			return a.Month > b.Month
		}
		return a.Category < b.Category
	})
	return result, nil
}

// Delete removes the user's budget by id
func (m *MockBudgetRepository) Delete(ctx context.Context, id, userID int32) (bool, error) {
	if m.DeleteFn != nil {
		return m.DeleteFn(id, userID)
	}
	for key, b := range m.Budgets {
		if b.ID == id && b.UserID == userID {
			delete(m.Budgets, key)
			return true, nil
		}
	}
	return false, nil
}

// MockExpenseAggregator is a mock implementation of domain.ExpenseAggregator
type MockExpenseAggregator struct {
	ByCategory    []*domain.CategoryTotal
	ByMonth       []*domain.MonthlyTotal
	ByCategoryFn  func(month, year int, userID int32) ([]*domain.CategoryTotal, error)
	ByMonthFn     func(year int, userID int32) ([]*domain.MonthlyTotal, error)
	CategoryCalls int
	MonthCalls    int
}

// NewMockExpenseAggregator creates a new MockExpenseAggregator
func NewMockExpenseAggregator() *MockExpenseAggregator {
	return &MockExpenseAggregator{}
}

// GetExpenseTotalsByCategory returns the configured category totals
func (m *MockExpenseAggregator) GetExpenseTotalsByCategory(ctx context.Context, month, year int, userID int32) ([]*domain.CategoryTotal, error) {
	m.CategoryCalls++
	if m.ByCategoryFn != nil {
		return m.ByCategoryFn(month, year, userID)
	}
	return m.ByCategory, nil
}

// GetExpenseTotalsByMonth returns the configured monthly totals
func (m *MockExpenseAggregator) GetExpenseTotalsByMonth(ctx context.Context, year int, userID int32) ([]*domain.MonthlyTotal, error) {
	m.MonthCalls++
	if m.ByMonthFn != nil {
		return m.ByMonthFn(year, userID)
	}
	return m.ByMonth, nil
}

// AddCategoryTotal is a helper to add a category total
func (m *MockExpenseAggregator) AddCategoryTotal(category, total string) {
	m.ByCategory = append(m.ByCategory, &domain.CategoryTotal{Category: category, Total: decimal.RequireFromString(total)})
}

// AddMonthlyTotal is a helper to add a monthly total
func (m *MockExpenseAggregator) AddMonthlyTotal(month int, total string) {
	m.ByMonth = append(m.ByMonth, &domain.MonthlyTotal{Month: month, Total: decimal.RequireFromString(total)})
}

// MockBudgetStatusProvider is a mock implementation of domain.BudgetStatusProvider
type MockBudgetStatusProvider struct {
	Statuses []*domain.BudgetStatus
	StatusFn func(month, year int, userID int32) ([]*domain.BudgetStatus, error)
	Calls    int
}

// NewMockBudgetStatusProvider creates a new MockBudgetStatusProvider
func NewMockBudgetStatusProvider() *MockBudgetStatusProvider {
	return &MockBudgetStatusProvider{}
}

// GetBudgetStatus returns the configured budget status rows
func (m *MockBudgetStatusProvider) GetBudgetStatus(ctx context.Context, month, year int, userID int32) ([]*domain.BudgetStatus, error) {
	m.Calls++
	if m.StatusFn != nil {
		return m.StatusFn(month, year, userID)
	}
	return m.Statuses, nil
}

// MockReportObjectStore is a mock implementation of domain.ReportObjectStore
type MockReportObjectStore struct {
	Bucket  string
	Objects map[string][]byte
	Types   map[string]string
	PutFn   func(key string, body io.Reader, contentType string) (string, error)
}

// NewMockReportObjectStore creates a new MockReportObjectStore
func NewMockReportObjectStore(bucket string) *MockReportObjectStore {
	return &MockReportObjectStore{
		Bucket:  bucket,
		Objects: make(map[string][]byte),
		Types:   make(map[string]string),
	}
}

// Put stores the object body and returns its s3:// location
func (m *MockReportObjectStore) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if m.PutFn != nil {
		return m.PutFn(key, body, contentType)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.Objects[key] = data
	m.Types[key] = contentType
	return fmt.Sprintf("s3://%s/%s", m.Bucket, key), nil
}
