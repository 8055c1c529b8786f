package services

import (
	"strings"

	"gorm.io/gorm"

	apperrors "pyggy/internal/errors"
	"pyggy/internal/models"
)

// paymentMethodService handles payment method reference data.
type paymentMethodService struct {
	db *gorm.DB
}

// NewPaymentMethodService creates a new PaymentMethodServicer.
func NewPaymentMethodService(db *gorm.DB) PaymentMethodServicer {
	return &paymentMethodService{db: db}
}

// CreatePaymentMethod creates a payment method with a unique name.
func (s *paymentMethodService) CreatePaymentMethod(name string) (*models.PaymentMethod, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validationf("name is required")
	}
	if err := ensureUniqueName(s.db, &models.PaymentMethod{}, name, ""); err != nil {
		return nil, err
	}

	method := &models.PaymentMethod{Name: name}
	if err := s.db.Create(method).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return method, nil
}

// ListPaymentMethods returns all payment methods ordered by name.
func (s *paymentMethodService) ListPaymentMethods() ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	if err := s.db.Order("name").Find(&methods).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return methods, nil
}

// GetPaymentMethodByID returns a payment method by ID.
func (s *paymentMethodService) GetPaymentMethodByID(methodID string) (*models.PaymentMethod, error) {
	return findPaymentMethod(s.db, methodID)
}

// UpdatePaymentMethod renames a payment method.
func (s *paymentMethodService) UpdatePaymentMethod(methodID, name string) (*models.PaymentMethod, error) {
	method, err := findPaymentMethod(s.db, methodID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validationf("name is required")
	}
	if name == method.Name {
		return method, nil
	}
	if err := ensureUniqueName(s.db, &models.PaymentMethod{}, name, method.ID); err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.PaymentMethod{}).Where("id = ?", method.ID).Update("name", name).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return findPaymentMethod(s.db, method.ID)
}

// DeletePaymentMethod deletes a payment method no payment refers to.
func (s *paymentMethodService) DeletePaymentMethod(methodID string) error {
	method, err := findPaymentMethod(s.db, methodID)
	if err != nil {
		return err
	}
	var used int64
	if err := s.db.Model(&models.Payment{}).Where("payment_method_id = ?", method.ID).Count(&used).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if used > 0 {
		return apperrors.ErrPaymentMethodInUse
	}
	if err := s.db.Delete(&models.PaymentMethod{}, "id = ?", method.ID).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
