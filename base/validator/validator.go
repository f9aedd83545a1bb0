package validator

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// NewCustomValidator wraps v for echo. decimal.Decimal fields are compared as
// numbers, so tags like `gt=0` work on amounts.
func NewCustomValidator(v *validator.Validate) echo.Validator {
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	return &CustomValidator{v}
}

type CustomValidator struct {
	validator *validator.Validate
}

func (v *CustomValidator) Validate(i interface{}) error {
	if err := v.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func decimalValue(field reflect.Value) interface{} {
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	f, _ := d.Float64()
	return f
}
