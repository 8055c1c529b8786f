// Package errors provides the application error taxonomy.
// Service-layer failures are returned as *AppError so handlers can map them
// to a status code and a stable machine-readable code without leaking
// storage details to clients.
package errors

import (
	"fmt"
	"net/http"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is matches AppErrors by code so wrapped copies compare equal to their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Validationf builds an ErrValidation with a formatted message.
func Validationf(format string, args ...any) *AppError {
	return WithMessage(ErrValidation, fmt.Sprintf(format, args...))
}

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrValidation     = &AppError{Code: "VALIDATION_FAILED", Message: "Validation failed", StatusCode: http.StatusUnprocessableEntity}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Budget errors.
var (
	ErrBudgetNotFound        = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
	ErrBudgetHasMonths       = &AppError{Code: "BUDGET_HAS_MONTHS", Message: "Budget cannot be deleted while it has months", StatusCode: http.StatusConflict}
	ErrBudgetStartDateLocked = &AppError{Code: "BUDGET_START_DATE_LOCKED", Message: "Start date cannot be changed when budget has existing months", StatusCode: http.StatusConflict}
)

// Month errors.
var (
	ErrMonthNotFound     = &AppError{Code: "MONTH_NOT_FOUND", Message: "Month not found", StatusCode: http.StatusNotFound}
	ErrInvalidMonthRange = &AppError{Code: "INVALID_MONTH_RANGE", Message: "Year must be between 2020 and 2099 and month between 1 and 12", StatusCode: http.StatusBadRequest}
	ErrMonthNotLatest    = &AppError{Code: "MONTH_NOT_LATEST", Message: "Only the most recent month can be deleted", StatusCode: http.StatusConflict}
	ErrMonthNotNext      = &AppError{Code: "MONTH_NOT_NEXT", Message: "Months must be processed in order", StatusCode: http.StatusConflict}
	ErrMonthHasPaidItems = &AppError{Code: "MONTH_HAS_PAID_ITEMS", Message: "Month contains paid expenses", StatusCode: http.StatusConflict}
	ErrNoProcessedMonth  = &AppError{Code: "NO_PROCESSED_MONTH", Message: "Budget has no processed months yet", StatusCode: http.StatusConflict}
)

// Expense errors.
var (
	ErrExpenseNotFound      = &AppError{Code: "EXPENSE_NOT_FOUND", Message: "Expense not found", StatusCode: http.StatusNotFound}
	ErrExpenseNotEditable   = &AppError{Code: "EXPENSE_NOT_EDITABLE", Message: "This expense cannot be edited", StatusCode: http.StatusConflict}
	ErrExpenseNotDeletable  = &AppError{Code: "EXPENSE_NOT_DELETABLE", Message: "Expense has paid items and cannot be deleted", StatusCode: http.StatusConflict}
	ErrExpenseAlreadyClosed = &AppError{Code: "EXPENSE_ALREADY_CLOSED", Message: "Expense is already closed", StatusCode: http.StatusConflict}
)

// Expense item errors.
var (
	ErrExpenseItemNotFound     = &AppError{Code: "EXPENSE_ITEM_NOT_FOUND", Message: "Expense item not found", StatusCode: http.StatusNotFound}
	ErrExpenseItemNotDeletable = &AppError{Code: "EXPENSE_ITEM_NOT_DELETABLE", Message: "Only unpaid one-time items in the current month can be deleted", StatusCode: http.StatusConflict}
)

// Payment errors.
var (
	ErrPaymentNotFound         = &AppError{Code: "PAYMENT_NOT_FOUND", Message: "Payment not found", StatusCode: http.StatusNotFound}
	ErrPaymentExceedsRemaining = &AppError{Code: "PAYMENT_EXCEEDS_REMAINING", Message: "Payment amount cannot exceed remaining balance", StatusCode: http.StatusUnprocessableEntity}
	ErrItemAlreadyPaid         = &AppError{Code: "ITEM_ALREADY_PAID", Message: "Expense item is already fully paid", StatusCode: http.StatusConflict}
)

// Reference data errors.
var (
	ErrPaymentMethodNotFound = &AppError{Code: "PAYMENT_METHOD_NOT_FOUND", Message: "Payment method not found", StatusCode: http.StatusNotFound}
	ErrPaymentMethodInUse    = &AppError{Code: "PAYMENT_METHOD_IN_USE", Message: "Payment method is used by existing payments", StatusCode: http.StatusConflict}
	ErrPayeeNotFound         = &AppError{Code: "PAYEE_NOT_FOUND", Message: "Payee not found", StatusCode: http.StatusNotFound}
	ErrPayeeNotDeletable     = &AppError{Code: "PAYEE_NOT_DELETABLE", Message: "Payee is hidden or referenced by expenses", StatusCode: http.StatusConflict}
	ErrDuplicateName         = &AppError{Code: "DUPLICATE_NAME", Message: "A record with this name already exists", StatusCode: http.StatusConflict}
)
