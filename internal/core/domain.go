package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Food           Category = "Food"
	Transportation Category = "Transportation"
	Entertainment  Category = "Entertainment"
	Shopping       Category = "Shopping"
	Bills          Category = "Bills"
	Health         Category = "Health"
	Education      Category = "Education"
	Others         Category = "Others"
)

type (
	// Identity is the opaque reference to an authenticated user. Every
	// expense and budget row is scoped by one.
	Identity string

	Category string

	Expense struct {
		ID        string
		Owner     Identity
		Title     string
		Amount    decimal.Decimal
		Category  Category
		Date      Date
		CreatedAt time.Time
	}

	Budget struct {
		ID        string
		Owner     Identity
		Amount    decimal.Decimal
		StartDate Date
		EndDate   Date
		CreatedAt time.Time
	}
)

var (
	ErrNotSignedIn     = errors.New("not signed in")
	ErrEmptyTitle      = errors.New("empty title")
	ErrTitleTooLong    = errors.New("title too long (max 200 characters)")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidDate     = errors.New("invalid date")
	ErrDateRange       = errors.New("start date cannot be after end date")
)

// Categories returns the fixed category set, in menu order.
func Categories() []Category {
	return []Category{Food, Transportation, Entertainment, Shopping, Bills, Health, Education, Others}
}

func (c Category) Valid() bool {
	switch c {
	case Food, Transportation, Entertainment, Shopping, Bills, Health, Education, Others:
		return true
	default:
		return false
	}
}

func (c Category) String() string {
	return string(c)
}

func (i Identity) Empty() bool {
	return i == ""
}

func (e Expense) Validate() error {
	if e.Owner.Empty() {
		return ErrNotSignedIn
	}
	if len(strings.TrimSpace(e.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(e.Title) > 200 {
		return ErrTitleTooLong
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	return nil
}

func (b Budget) Validate() error {
	if b.Owner.Empty() {
		return ErrNotSignedIn
	}
	if !b.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if err := b.StartDate.Validate(); err != nil {
		return fmt.Errorf("start date: %w", err)
	}
	if err := b.EndDate.Validate(); err != nil {
		return fmt.Errorf("end date: %w", err)
	}
	if b.StartDate.After(b.EndDate) {
		return ErrDateRange
	}
	return nil
}
