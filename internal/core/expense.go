package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	MaxDescriptionLength = 500
	MaxCategoryLength    = 100
)

type (
	// Date is a calendar date without a time component.
	Date struct {
		time.Time
	}

	// Expense is a stored record. ID and CreatedAt are assigned on creation
	// and never change afterwards.
	Expense struct {
		ID          int64
		Amount      decimal.Decimal
		Description string
		Date        Date
		Category    string
		CreatedAt   time.Time
	}

	// ExpenseCreate stages a new record before identity is assigned.
	ExpenseCreate struct {
		Amount      decimal.Decimal
		Description string
		Date        Date
		Category    string
	}

	// ExpenseUpdate describes a partial change to a stored expense. The shape
	// is part of the data model but no operation consumes it yet.
	ExpenseUpdate struct {
		Amount      *decimal.Decimal
		Description *string
		Date        *Date
		Category    *string
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidDate      = errors.New("invalid date")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String renders the date in YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (c ExpenseCreate) Validate() error {
	if err := c.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Description) == "" {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(c.Description) > MaxDescriptionLength {
		return fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
	}
	if strings.TrimSpace(c.Category) == "" {
		return ErrEmptyCategory
	}
	if utf8.RuneCountInString(c.Category) > MaxCategoryLength {
		return fmt.Errorf("category too long (max %d characters)", MaxCategoryLength)
	}
	if !c.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if c.Amount.GreaterThan(MaxAmount) {
		return ErrInvalidAmount
	}
	// Reject amounts with sub-cent precision regardless of representation.
	if !c.Amount.Equal(c.Amount.Round(2)) {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	return ExpenseCreate{
		Amount:      e.Amount,
		Description: e.Description,
		Date:        e.Date,
		Category:    e.Category,
	}.Validate()
}
