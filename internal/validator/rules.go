package validator

import (
	"log"
	"regexp"

	"resumeai_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	currencyPattern   = regexp.MustCompile(`^[A-Z]{3}$`)
	actionKindPattern = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)
)

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-currency", validateCurrency)
	mustRegister("is-action-kind", validateActionKind)
	mustRegister("is-order-purpose", validateOrderPurpose)
}

// Пустые значения пропускаем, для этого есть 'required'

func validateCurrency(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || currencyPattern.MatchString(value)
}

func validateActionKind(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || actionKindPattern.MatchString(value)
}

func validateOrderPurpose(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.OrderPurpose(value).Valid()
}
