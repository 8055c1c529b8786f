package models

import "time"

// Payee is who an expense is paid to.
type Payee struct {
	Base
	Name     string     `gorm:"not null;size:255;uniqueIndex" json:"name"`
	HiddenAt *time.Time `json:"hidden_at,omitempty"`
}

// IsHidden reports whether the payee is excluded from selection lists.
func (p *Payee) IsHidden() bool {
	return p.HiddenAt != nil
}
