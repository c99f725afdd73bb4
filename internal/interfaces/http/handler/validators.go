package handler

import (
	"github.com/shulesync/backend/internal/domain/billing"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs domain-aware validations on gin's binding
// engine. Must run once before routes are registered.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
		return billing.PaymentMethod(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("fee_kind", func(fl validator.FieldLevel) bool {
		return billing.FeeKind(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("expense_category", func(fl validator.FieldLevel) bool {
		return billing.ExpenseCategory(fl.Field().String()).IsValid()
	})
}
