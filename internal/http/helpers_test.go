package http

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Vijay-1289/Expense-Tracker/internal/core"
)

func TestFormatINR(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "₹0"},
		{"100", "₹100"},
		{"1000", "₹1,000"},
		{"123456.78", "₹1,23,456.78"},
		{"1234567", "₹12,34,567"},
		{"12345678", "₹1,23,45,678"},
		{"150.5", "₹150.5"},
		{"-850", "-₹850"},
	}
	for _, tt := range tests {
		d := decimal.RequireFromString(tt.in)
		if got := formatINR(d); got != tt.want {
			t.Errorf("formatINR(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestValidationMessage(t *testing.T) {
	msg, ok := validationMessage(core.ErrDateRange)
	if !ok || msg != "Start date cannot be after end date." {
		t.Fatalf("validationMessage(ErrDateRange) = %q, %v", msg, ok)
	}

	// Wrapped sentinels still match.
	wrapped := errors.Join(errors.New("start date"), core.ErrInvalidDate)
	if _, ok := validationMessage(wrapped); !ok {
		t.Fatal("wrapped sentinel should still map to a message")
	}

	if _, ok := validationMessage(errors.New("disk full")); ok {
		t.Fatal("unknown errors must not map to validation messages")
	}
}

func TestCategoryNames(t *testing.T) {
	names := categoryNames()
	if len(names) != 8 {
		t.Fatalf("categoryNames returned %d entries, want 8", len(names))
	}
	if names[0] != "Food" || names[len(names)-1] != "Others" {
		t.Fatalf("unexpected category order: %v", names)
	}
}
