package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "pyggy/internal/errors"
	"pyggy/internal/models"
)

// payeeService handles payee reference data.
type payeeService struct {
	db *gorm.DB
}

// NewPayeeService creates a new PayeeServicer.
func NewPayeeService(db *gorm.DB) PayeeServicer {
	return &payeeService{db: db}
}

// CreatePayee creates a payee with a unique name.
func (s *payeeService) CreatePayee(name string) (*models.Payee, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validationf("name is required")
	}
	if err := ensureUniqueName(s.db, &models.Payee{}, name, ""); err != nil {
		return nil, err
	}

	payee := &models.Payee{Name: name}
	if err := s.db.Create(payee).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return payee, nil
}

// ListPayees returns payees ordered by name. Hidden payees are listed only
// on request.
func (s *payeeService) ListPayees(includeHidden bool) ([]models.Payee, error) {
	query := s.db.Order("name")
	if !includeHidden {
		query = query.Where("hidden_at IS NULL")
	}
	var payees []models.Payee
	if err := query.Find(&payees).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return payees, nil
}

// GetPayeeByID returns a payee by ID.
func (s *payeeService) GetPayeeByID(payeeID string) (*models.Payee, error) {
	return findPayee(s.db, payeeID)
}

// UpdatePayee renames a payee.
func (s *payeeService) UpdatePayee(payeeID, name string) (*models.Payee, error) {
	payee, err := findPayee(s.db, payeeID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validationf("name is required")
	}
	if name == payee.Name {
		return payee, nil
	}
	if err := ensureUniqueName(s.db, &models.Payee{}, name, payee.ID); err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Payee{}).Where("id = ?", payee.ID).Update("name", name).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return findPayee(s.db, payee.ID)
}

// HidePayee removes a payee from selection lists without deleting it.
func (s *payeeService) HidePayee(payeeID string) (*models.Payee, error) {
	payee, err := findPayee(s.db, payeeID)
	if err != nil {
		return nil, err
	}
	if payee.IsHidden() {
		return payee, nil
	}
	if err := s.db.Model(&models.Payee{}).Where("id = ?", payee.ID).Update("hidden_at", time.Now().UTC()).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return findPayee(s.db, payee.ID)
}

// UnhidePayee makes a hidden payee selectable again.
func (s *payeeService) UnhidePayee(payeeID string) (*models.Payee, error) {
	payee, err := findPayee(s.db, payeeID)
	if err != nil {
		return nil, err
	}
	if !payee.IsHidden() {
		return payee, nil
	}
	if err := s.db.Model(&models.Payee{}).Where("id = ?", payee.ID).Update("hidden_at", nil).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return findPayee(s.db, payee.ID)
}

// DeletePayee deletes a visible payee no expense refers to.
func (s *payeeService) DeletePayee(payeeID string) error {
	payee, err := findPayee(s.db, payeeID)
	if err != nil {
		return err
	}
	if payee.IsHidden() {
		return apperrors.ErrPayeeNotDeletable
	}
	var used int64
	if err := s.db.Model(&models.Expense{}).Where("payee_id = ?", payee.ID).Count(&used).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if used > 0 {
		return apperrors.ErrPayeeNotDeletable
	}
	if err := s.db.Delete(&models.Payee{}, "id = ?", payee.ID).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ensureUniqueName rejects name when another row of model's table has it.
func ensureUniqueName(db *gorm.DB, model interface{}, name, exceptID string) error {
	query := db.Model(model).Where("name = ?", name)
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateName
	}
	return nil
}
