package service

import (
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-report/internal/domain"
	"github.com/shopspring/decimal"
)

// DateLayout is the accepted expense date format
const DateLayout = "2006-01-02"

// ParseAmount parses a positive decimal amount, accepting ',' as the decimal separator
func ParseAmount(s string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	amount, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, domain.NewValidationError("amount", "Invalid amount: must be a number")
	}
	if !amount.IsPositive() {
		return decimal.Zero, domain.NewValidationError("amount", "Invalid amount: must be greater than zero")
	}
	return amount, nil
}

// ParseThreshold parses an alert threshold ratio between 0 and 1
func ParseThreshold(s string) (decimal.Decimal, error) {
	threshold, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || threshold.IsNegative() || threshold.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, domain.NewValidationError("alert_threshold", "Threshold must be between 0 and 1")
	}
	return threshold, nil
}

// ParseDate parses a YYYY-MM-DD date. An empty string yields nil so callers default to today.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	date, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, domain.NewValidationError("date", "Invalid date format. Use YYYY-MM-DD")
	}
	return &date, nil
}

// normalizeCategory trims a category name and rejects empty, overlong and reserved names
func normalizeCategory(name string) (string, error) {
	category := strings.TrimSpace(name)
	switch {
	case category == "":
		return "", domain.NewValidationError("category", "category cannot be empty")
	case len(category) > domain.MaxCategoryNameLength:
		return "", domain.NewValidationError("category", "category cannot exceed 50 characters")
	case strings.EqualFold(category, domain.TotalLabel):
		return "", domain.NewValidationError("category", "category name TOTAL is reserved")
	}
	return category, nil
}
