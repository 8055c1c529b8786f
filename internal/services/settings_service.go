package services

import (
	"strings"

	"gorm.io/gorm"

	apperrors "pyggy/internal/errors"
	"pyggy/internal/models"
	"pyggy/internal/money"
)

// fallbackSettings seed the settings row when nothing else has.
var fallbackSettings = models.Settings{Currency: "USD", Locale: "en_US"}

// settingsService handles the application settings singleton.
type settingsService struct {
	db       *gorm.DB
	defaults models.Settings
}

// NewSettingsService creates a new SettingsServicer. currency and locale seed
// the settings row the first time it is read.
func NewSettingsService(db *gorm.DB, currency, locale string) SettingsServicer {
	defaults := fallbackSettings
	if money.ValidCurrency(strings.ToUpper(currency)) {
		defaults.Currency = strings.ToUpper(currency)
	}
	if money.ValidLocale(locale) {
		defaults.Locale = locale
	}
	return &settingsService{db: db, defaults: defaults}
}

// GetSettings returns the settings row, creating it on first use.
func (s *settingsService) GetSettings() (*models.Settings, error) {
	return loadSettingsWithDefaults(s.db, s.defaults)
}

// UpdateSettings changes the display currency and locale. Empty values are
// left untouched.
func (s *settingsService) UpdateSettings(currency, locale string) (*models.Settings, error) {
	settings, err := s.GetSettings()
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if currency != "" {
		currency = strings.ToUpper(currency)
		if !money.ValidCurrency(currency) {
			return nil, apperrors.Validationf("currency %q is not an ISO 4217 code", currency)
		}
		updates["currency"] = currency
	}
	if locale != "" {
		if !money.ValidLocale(locale) {
			return nil, apperrors.Validationf("locale %q is not recognised", locale)
		}
		updates["locale"] = locale
	}

	if len(updates) > 0 {
		if err := s.db.Model(settings).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.GetSettings()
}

func loadSettings(db *gorm.DB) (*models.Settings, error) {
	return loadSettingsWithDefaults(db, fallbackSettings)
}

func loadSettingsWithDefaults(db *gorm.DB, defaults models.Settings) (*models.Settings, error) {
	defaults.ID = models.SettingsID
	var settings models.Settings
	if err := db.Where("id = ?", models.SettingsID).Attrs(defaults).FirstOrCreate(&settings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &settings, nil
}
