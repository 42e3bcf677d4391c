package util

import (
	"errors"
	"testing"

	"github.com/dafibh/fortuna/fortuna-report/internal/domain"
)

func TestValidateMonthYear(t *testing.T) {
	tests := []struct {
		name      string
		month     int
		year      int
		wantErr   bool
		wantField string
	}{
		{"january accepted", 1, 2023, false, ""},
		{"december accepted", 12, 2023, false, ""},
		{"month zero rejected", 0, 2023, true, "month"},
		{"month thirteen rejected", 13, 2023, true, "month"},
		{"negative month rejected", -1, 2023, true, "month"},
		{"lower year bound accepted", 6, 2000, false, ""},
		{"upper year bound accepted", 6, 2100, false, ""},
		{"two digit year rejected", 6, 23, true, "year"},
		{"five digit year rejected", 6, 20230, true, "year"},
		{"year below window rejected", 6, 1999, true, "year"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			month, year, err := ValidateMonthYear(tt.month, tt.year)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if month != tt.month || year != tt.year {
					t.Errorf("got (%d, %d), want (%d, %d)", month, year, tt.month, tt.year)
				}
				return
			}

			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
			var vErr *domain.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected *domain.ValidationError, got %T", err)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("field = %q, want %q", vErr.Field, tt.wantField)
			}
		})
	}
}

func TestValidateYear(t *testing.T) {
	if err := ValidateYear(2023); err != nil {
		t.Errorf("ValidateYear(2023) = %v", err)
	}
	if err := ValidateYear(999); err == nil {
		t.Error("ValidateYear(999) should fail")
	}
}
