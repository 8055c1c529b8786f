package models

// PaymentMethod is how a payment was made (card, transfer, cash, ...).
type PaymentMethod struct {
	Base
	Name string `gorm:"not null;size:255;uniqueIndex" json:"name"`
}
