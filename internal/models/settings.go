package models

// SettingsID is the primary key of the single settings row.
const SettingsID = "00000000-0000-0000-0000-000000000001"

// Settings holds application-wide display preferences.
type Settings struct {
	Base
	Currency string `gorm:"size:3;not null;default:USD" json:"currency"`
	Locale   string `gorm:"size:10;not null;default:en_US" json:"locale"`
}

// TableName pins the table name of the singleton row.
func (Settings) TableName() string {
	return "settings"
}
