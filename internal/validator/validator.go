// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"pyggy/internal/money"
	"pyggy/internal/schedule"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("iso4217", validateISO4217)
		_ = v.RegisterValidation("expense_type", validateExpenseType)
		_ = v.RegisterValidation("locale_tag", validateLocaleTag)
	}
}

func validateISO4217(fl validator.FieldLevel) bool {
	return money.ValidCurrency(strings.ToUpper(fl.Field().String()))
}

func validateExpenseType(fl validator.FieldLevel) bool {
	return schedule.Type(fl.Field().String()).Valid()
}

func validateLocaleTag(fl validator.FieldLevel) bool {
	return money.ValidLocale(fl.Field().String())
}
