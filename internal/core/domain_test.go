package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func validExpense() Expense {
	return Expense{
		Owner:    "user-1",
		Title:    "Coffee",
		Amount:   decimal.NewFromInt(150),
		Category: Food,
		Date:     NewDate(2024, 3, 1),
	}
}

func TestExpense_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Expense)
		wantErr error
	}{
		{
			name:   "valid expense",
			mutate: func(e *Expense) {},
		},
		{
			name:    "missing owner",
			mutate:  func(e *Expense) { e.Owner = "" },
			wantErr: ErrNotSignedIn,
		},
		{
			name:    "empty title",
			mutate:  func(e *Expense) { e.Title = "   " },
			wantErr: ErrEmptyTitle,
		},
		{
			name:    "oversized title",
			mutate:  func(e *Expense) { e.Title = strings.Repeat("x", 201) },
			wantErr: ErrTitleTooLong,
		},
		{
			name:    "zero amount",
			mutate:  func(e *Expense) { e.Amount = decimal.Zero },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			mutate:  func(e *Expense) { e.Amount = decimal.NewFromInt(-5) },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "unknown category",
			mutate:  func(e *Expense) { e.Category = "Groceries" },
			wantErr: ErrInvalidCategory,
		},
		{
			name:    "zero date",
			mutate:  func(e *Expense) { e.Date = Date{} },
			wantErr: ErrInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validExpense()
			tt.mutate(&e)
			err := e.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBudget_Validate(t *testing.T) {
	valid := Budget{
		Owner:     "user-1",
		Amount:    decimal.NewFromInt(1000),
		StartDate: NewDate(2024, 3, 1),
		EndDate:   NewDate(2024, 3, 31),
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("valid budget rejected: %v", err)
	}

	t.Run("start after end", func(t *testing.T) {
		b := valid
		b.StartDate = NewDate(2024, 3, 10)
		b.EndDate = NewDate(2024, 3, 1)
		if err := b.Validate(); !errors.Is(err, ErrDateRange) {
			t.Fatalf("Validate() = %v, want ErrDateRange", err)
		}
	})

	t.Run("single day window", func(t *testing.T) {
		b := valid
		b.EndDate = b.StartDate
		if err := b.Validate(); err != nil {
			t.Fatalf("start == end should be accepted, got %v", err)
		}
	})

	t.Run("non-positive amount", func(t *testing.T) {
		b := valid
		b.Amount = decimal.Zero
		if err := b.Validate(); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("Validate() = %v, want ErrInvalidAmount", err)
		}
	})

	t.Run("missing owner", func(t *testing.T) {
		b := valid
		b.Owner = ""
		if err := b.Validate(); !errors.Is(err, ErrNotSignedIn) {
			t.Fatalf("Validate() = %v, want ErrNotSignedIn", err)
		}
	})
}

func TestCategory_Valid(t *testing.T) {
	for _, c := range Categories() {
		if !c.Valid() {
			t.Errorf("Categories() returned invalid category %q", c)
		}
	}
	if Category("Misc").Valid() {
		t.Error("unknown category should not validate")
	}
	if Category("food").Valid() {
		t.Error("category check should be case-sensitive")
	}
}
