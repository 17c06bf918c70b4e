// Package validation checks request payloads with go-playground/validator and
// turns failures into apperr validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"immofds/server/internal/apperr"
)

var belgianPostalCode = regexp.MustCompile(`^[1-9][0-9]{3}$`)

// AllowedImageTypes lists the accepted image content types.
var AllowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

var (
	once     sync.Once
	instance *validator.Validate
)

// IsBelgianPostalCode accepts four digits in 1000-9999. The empty string is
// accepted as well, presence is checked by the required rule.
func IsBelgianPostalCode(s string) bool {
	return s == "" || belgianPostalCode.MatchString(s)
}

func IsAllowedImageType(contentType string) bool {
	return AllowedImageTypes[strings.ToLower(strings.TrimSpace(contentType))]
}

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		_ = v.RegisterValidation("be_postal", func(fl validator.FieldLevel) bool {
			return IsBelgianPostalCode(fl.Field().String())
		})
		_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
			e, ok := fl.Field().Interface().(interface{ IsValid() bool })
			return ok && e.IsValid()
		})
		instance = v
	})
	return instance
}

// decimalValue exposes decimals to the numeric rules such as gt and gte.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

// Struct validates s and returns an apperr validation error listing every
// failing field, or nil.
func Struct(s interface{}) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate payload: %w", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, message(fe))
	}
	return apperr.Validation(fields...)
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "be_postal":
		return field + " must be a Belgian postal code (1000-9999)"
	case "enum":
		return fmt.Sprintf("%s has an unsupported value %v", field, fe.Value())
	case "gt":
		return field + " must be greater than " + fe.Param()
	case "gte":
		return field + " must be at least " + fe.Param()
	case "lte":
		return field + " must be at most " + fe.Param()
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	default:
		return field + " is invalid"
	}
}
