// Package schedule holds the calendar rules behind expense schedules: how a
// day-of-month resolves to a due date, which fields each schedule type
// accepts, and whether a schedule owes an item for a given month.
//
// Nothing here touches storage. Callers translate rows into Fields, call
// Parse to obtain a typed Schedule and ask it questions.
package schedule

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Type identifies one of the four schedule kinds.
type Type string

const (
	TypeOneTime          Type = "one_time"
	TypeEndlessRecurring Type = "endless_recurring"
	TypeSplitPayment     Type = "split_payment"
	TypeRecurringWithEnd Type = "recurring_with_end"
)

// Types lists every schedule type in display order.
var Types = []Type{TypeEndlessRecurring, TypeSplitPayment, TypeOneTime, TypeRecurringWithEnd}

// Valid reports whether t is a known schedule type.
func (t Type) Valid() bool {
	switch t {
	case TypeOneTime, TypeEndlessRecurring, TypeSplitPayment, TypeRecurringWithEnd:
		return true
	}
	return false
}

// Label returns the human-readable name of the type.
func (t Type) Label() string {
	switch t {
	case TypeOneTime:
		return "One Time"
	case TypeEndlessRecurring:
		return "Endless Recurring"
	case TypeSplitPayment:
		return "Split Payment"
	case TypeRecurringWithEnd:
		return "Recurring with End Date"
	}
	return string(t)
}

// Fields are the flat, type-dependent columns of an expense.
type Fields struct {
	Type       Type
	StartDate  civil.Date
	DayOfMonth int
	TotalParts int
	SkipParts  int
	EndDate    *civil.Date
}

// Schedule is implemented by OneTime, EndlessRecurring, SplitPayment and
// RecurringWithEnd. The set is closed.
type Schedule interface {
	Type() Type
	// RequiredItems is the number of items that fully realize the
	// schedule, or 0 when it is open-ended.
	RequiredItems() int
	// AutoCloses reports whether paying every required item closes the expense.
	AutoCloses() bool
	// Editable reports whether an open expense of this type may be edited.
	Editable() bool

	accrues(start civil.Date, target Month, existing Existing) bool
	sealed()
}

// OneTime produces a single item in whichever month first processes it.
type OneTime struct{}

// EndlessRecurring produces one item per month until manually closed.
type EndlessRecurring struct{}

// SplitPayment produces TotalParts-SkipParts monthly installments.
type SplitPayment struct {
	TotalParts int
	SkipParts  int
}

// RecurringWithEnd produces one item per month through EndDate's month.
type RecurringWithEnd struct {
	EndDate civil.Date
}

func (OneTime) Type() Type          { return TypeOneTime }
func (EndlessRecurring) Type() Type { return TypeEndlessRecurring }
func (SplitPayment) Type() Type     { return TypeSplitPayment }
func (RecurringWithEnd) Type() Type { return TypeRecurringWithEnd }

func (OneTime) RequiredItems() int          { return 1 }
func (EndlessRecurring) RequiredItems() int { return 0 }
func (s SplitPayment) RequiredItems() int   { return s.RemainingParts() }
func (RecurringWithEnd) RequiredItems() int { return 0 }

func (OneTime) AutoCloses() bool          { return true }
func (EndlessRecurring) AutoCloses() bool { return false }
func (SplitPayment) AutoCloses() bool     { return true }
func (RecurringWithEnd) AutoCloses() bool { return false }

func (OneTime) Editable() bool          { return true }
func (EndlessRecurring) Editable() bool { return true }
func (SplitPayment) Editable() bool     { return false }
func (RecurringWithEnd) Editable() bool { return false }

func (OneTime) sealed()          {}
func (EndlessRecurring) sealed() {}
func (SplitPayment) sealed()     {}
func (RecurringWithEnd) sealed() {}

// RemainingParts is the number of installments still to be generated and paid.
func (s SplitPayment) RemainingParts() int {
	if n := s.TotalParts - s.SkipParts; n > 0 {
		return n
	}
	return 0
}

// PaymentsCount is the number of monthly charges from start through EndDate, inclusive.
func (s RecurringWithEnd) PaymentsCount(start civil.Date) int {
	return MonthOf(start).MonthsUntil(MonthOf(s.EndDate))
}

// TotalCost is the full amount a schedule commits to: amount per installment
// times the part count for split payments, amount otherwise.
func TotalCost(s Schedule, amount decimal.Decimal) decimal.Decimal {
	if sp, ok := s.(SplitPayment); ok {
		return amount.Mul(decimal.NewFromInt(int64(sp.TotalParts)))
	}
	return amount
}

// FieldError is a validation failure on a single expense field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Message }

func fieldErr(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Parse validates f and returns the matching Schedule variant.
func Parse(f Fields) (Schedule, error) {
	if !f.Type.Valid() {
		return nil, fieldErr("expense_type", "unknown expense type %q", f.Type)
	}
	if f.DayOfMonth < 1 || f.DayOfMonth > 31 {
		return nil, fieldErr("day_of_month", "day of month must be between 1 and 31")
	}
	if !f.StartDate.IsValid() {
		return nil, fieldErr("start_date", "start date is required")
	}

	if f.Type == TypeSplitPayment {
		if f.TotalParts <= 0 {
			return nil, fieldErr("total_parts", "split payments must have total_parts > 0")
		}
		if f.SkipParts < 0 {
			return nil, fieldErr("skip_parts", "skip parts cannot be negative")
		}
		if f.SkipParts >= f.TotalParts {
			return nil, fieldErr("skip_parts", "skip parts must be less than total parts count")
		}
	} else {
		if f.TotalParts != 0 {
			return nil, fieldErr("total_parts", "only split payments can have total_parts > 0")
		}
		if f.SkipParts != 0 {
			return nil, fieldErr("skip_parts", "skip parts can only be used with split payment expenses")
		}
	}

	if f.Type == TypeRecurringWithEnd {
		if f.EndDate == nil {
			return nil, fieldErr("end_date", "recurring with end date expenses must have an end date")
		}
		if f.EndDate.Before(f.StartDate) {
			return nil, fieldErr("end_date", "end date must be on or after the start date")
		}
	} else if f.EndDate != nil {
		return nil, fieldErr("end_date", "only recurring with end date expenses can have an end date")
	}

	switch f.Type {
	case TypeOneTime:
		return OneTime{}, nil
	case TypeEndlessRecurring:
		return EndlessRecurring{}, nil
	case TypeSplitPayment:
		return SplitPayment{TotalParts: f.TotalParts, SkipParts: f.SkipParts}, nil
	default:
		return RecurringWithEnd{EndDate: *f.EndDate}, nil
	}
}
