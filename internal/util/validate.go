package util

import "github.com/dafibh/fortuna/fortuna-report/internal/domain"

// Accepted year window for reports and budgets
const (
	MinYear = 2000
	MaxYear = 2100
)

// ValidateMonthYear checks a month (1-12) and year pair
func ValidateMonthYear(month, year int) (int, int, error) {
	if month < 1 || month > 12 {
		return 0, 0, domain.NewValidationError("month", "Month must be between 1 and 12")
	}
	if err := ValidateYear(year); err != nil {
		return 0, 0, err
	}
	return month, year, nil
}

// ValidateYear checks a year on its own, for reports spanning a whole year
func ValidateYear(year int) error {
	if year < MinYear || year > MaxYear {
		return domain.NewValidationError("year", "Year must be between 2000 and 2100")
	}
	return nil
}
