package schedule

import "cloud.google.com/go/civil"

// Existing summarizes the items already generated for an expense.
type Existing struct {
	// Total is the number of items ever created for the expense.
	Total int
	// InMonth reports whether one of them belongs to the target month.
	InMonth bool
}

// Accrual is a positive decision to generate an item.
type Accrual struct {
	DueDate civil.Date
}

// Decide reports whether an open expense owes an item for target, and if so
// on which date it falls due. At most one item is ever owed per call.
func Decide(s Schedule, start civil.Date, dayOfMonth int, target Month, existing Existing) (Accrual, bool) {
	// One-time expenses may be pulled back into a month before their start date.
	if s.Type() != TypeOneTime && target.LastDay().Before(start) {
		return Accrual{}, false
	}
	if !s.accrues(start, target, existing) {
		return Accrual{}, false
	}
	return Accrual{DueDate: DueDate(target.Year, target.Month, dayOfMonth)}, true
}

func (OneTime) accrues(_ civil.Date, _ Month, existing Existing) bool {
	return existing.Total == 0
}

func (EndlessRecurring) accrues(_ civil.Date, _ Month, existing Existing) bool {
	return !existing.InMonth
}

func (s SplitPayment) accrues(_ civil.Date, _ Month, existing Existing) bool {
	return !existing.InMonth && existing.Total < s.RemainingParts()
}

func (s RecurringWithEnd) accrues(_ civil.Date, target Month, existing Existing) bool {
	return !existing.InMonth && !target.After(MonthOf(s.EndDate))
}

// Complete reports whether an expense has realized its schedule: the required
// number of items exist and paid of them are fully paid. Open-ended schedules
// never complete on their own.
func Complete(s Schedule, items, paid int) bool {
	if !s.AutoCloses() {
		return false
	}
	required := s.RequiredItems()
	return items >= required && paid >= required
}
