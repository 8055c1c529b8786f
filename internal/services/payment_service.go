package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "pyggy/internal/errors"
	"pyggy/internal/logger"
	"pyggy/internal/models"
	"pyggy/internal/uuid"
)

// paymentService handles the payment ledger.
type paymentService struct {
	db *gorm.DB
}

// NewPaymentService creates a new PaymentServicer.
func NewPaymentService(db *gorm.DB) PaymentServicer {
	return &paymentService{db: db}
}

// RecordPayment adds a payment to an item and closes the expense when the
// payment completes it, in one transaction.
func (s *paymentService) RecordPayment(budgetID, itemID string, in PaymentInput) (*PaymentResult, error) {
	var result *PaymentResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		item, err := findItem(tx, budgetID, itemID)
		if err != nil {
			return err
		}
		payment, closed, err := recordPaymentWithDB(tx, item, in)
		if err != nil {
			return err
		}
		result = &PaymentResult{Payment: *payment, ExpenseClosed: closed}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PayInFull records a payment for whatever remains on the item. in.Amount is
// ignored.
func (s *paymentService) PayInFull(budgetID, itemID string, in PaymentInput) (*PaymentResult, error) {
	var result *PaymentResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		item, err := findItem(tx, budgetID, itemID)
		if err != nil {
			return err
		}
		in.Amount = item.RemainingAmount()
		if in.Amount.IsZero() {
			return apperrors.ErrItemAlreadyPaid
		}
		payment, closed, err := recordPaymentWithDB(tx, item, in)
		if err != nil {
			return err
		}
		result = &PaymentResult{Payment: *payment, ExpenseClosed: closed}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// recordPaymentWithDB validates and stores a payment on tx, then runs the
// completion check. item must carry its Expense and Payments.
func recordPaymentWithDB(tx *gorm.DB, item *models.ExpenseItem, in PaymentInput) (*models.Payment, bool, error) {
	if !in.Amount.IsPositive() {
		return nil, false, apperrors.Validationf("payment amount must be greater than zero")
	}
	remaining := item.RemainingAmount()
	if remaining.IsZero() {
		return nil, false, apperrors.ErrItemAlreadyPaid
	}
	if in.Amount.GreaterThan(remaining) {
		return nil, false, apperrors.WithMessage(apperrors.ErrPaymentExceedsRemaining,
			fmt.Sprintf("Payment amount (%s) cannot exceed remaining balance (%s)", in.Amount.StringFixed(2), remaining.StringFixed(2)))
	}
	if in.PaymentMethodID != nil {
		if _, err := findPaymentMethod(tx, *in.PaymentMethodID); err != nil {
			return nil, false, err
		}
	}

	date := in.PaymentDate
	if date.IsZero() {
		date = time.Now()
	}

	payment := &models.Payment{
		ExpenseItemID:   item.ID,
		Amount:          in.Amount,
		PaymentDate:     date.UTC(),
		PaymentMethodID: in.PaymentMethodID,
		TransactionID:   strings.TrimSpace(in.TransactionID),
	}
	if err := tx.Create(payment).Error; err != nil {
		return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	item.Payments = append(item.Payments, *payment)

	closed, err := CheckExpenseCompletion(tx, item.Expense)
	if err != nil {
		return nil, false, err
	}

	logger.Named("payments").Debugw("payment recorded",
		"expense_item_id", item.ID,
		"amount", payment.Amount.String(),
		"item_status", item.Status(),
		"expense_closed", closed,
	)
	return payment, closed, nil
}

// ListItemPayments returns an item's payments, latest first.
func (s *paymentService) ListItemPayments(budgetID, itemID string) ([]models.Payment, error) {
	item, err := findItem(s.db, budgetID, itemID)
	if err != nil {
		return nil, err
	}
	var payments []models.Payment
	if err := s.db.Preload("PaymentMethod").
		Where("expense_item_id = ?", item.ID).
		Order("payment_date DESC, created_at DESC").
		Find(&payments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return payments, nil
}

// DeletePayment removes a ledger entry. A closed expense stays closed.
func (s *paymentService) DeletePayment(budgetID, paymentID string) error {
	if !uuid.IsValid(paymentID) {
		return apperrors.ErrPaymentNotFound
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.Where("id = ?", paymentID).First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrPaymentNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if _, err := findItem(tx, budgetID, payment.ExpenseItemID); err != nil {
			if errors.Is(err, apperrors.ErrExpenseItemNotFound) {
				return apperrors.ErrPaymentNotFound
			}
			return err
		}
		if err := tx.Delete(&payment).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

func findPaymentMethod(db *gorm.DB, methodID string) (*models.PaymentMethod, error) {
	if !uuid.IsValid(methodID) {
		return nil, apperrors.ErrPaymentMethodNotFound
	}
	var method models.PaymentMethod
	if err := db.Where("id = ?", methodID).First(&method).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPaymentMethodNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &method, nil
}
