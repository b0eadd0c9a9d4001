package request

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sangkips/posbilling/internal/domain/billing"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RegisterValidators adds the decimal rules used by the request structs to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return RegisterDecimalRules(v)
}

// RegisterDecimalRules registers dgte0, dlte100 and dmoney on v.
// dmoney caps a value at what a numeric(12,2) column stores.
func RegisterDecimalRules(v *validator.Validate) error {
	rules := map[string]func(decimal.Decimal) bool{
		"dgte0":   func(d decimal.Decimal) bool { return !d.IsNegative() },
		"dlte100": func(d decimal.Decimal) bool { return d.LessThanOrEqual(hundred) },
		"dmoney":  func(d decimal.Decimal) bool { return d.LessThanOrEqual(billing.MaxAmount) },
	}
	for tag, check := range rules {
		if err := v.RegisterValidation(tag, decimalRule(check)); err != nil {
			return err
		}
	}
	return nil
}

func decimalRule(check func(decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		switch d := fl.Field().Interface().(type) {
		case decimal.Decimal:
			return check(d)
		case *decimal.Decimal:
			return d == nil || check(*d)
		default:
			return false
		}
	}
}
