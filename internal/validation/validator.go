package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/localnerve/sharmers-menus/internal/models"
	"github.com/localnerve/sharmers-menus/internal/types"
	"github.com/shopspring/decimal"
)

// emailPattern is the shape check used by the registration and restaurant forms.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validator checks request input and reports ValidationFailed errors keyed by JSON field name.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the custom menu tags registered.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Prices are checked as their decimal string form
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	for tag, fn := range map[string]validator.Func{
		"nonblank":     validateNonBlank,
		"email_shape":  validateEmailShape,
		"dietary":      validateDietary,
		"decimal_gte0": validateDecimalGTE0,
		"decimal_max":  validateDecimalMax,
		"accepted":     validateAccepted,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("validation: register %q: %v", tag, err))
		}
	}

	return &Validator{validate: v}
}

// Struct validates s. The returned error is a *types.Error of kind ValidationFailed.
func (v *Validator) Struct(op string, s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &types.Error{Kind: types.KindValidationFailed, Op: op, Message: "invalid input", Err: err}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fieldName(fe)
		if _, exists := fields[name]; !exists {
			fields[name] = message(fe)
		}
	}
	return types.Validation(op, fields)
}

// IsEmail reports whether s has a plausible email shape.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// fieldName strips the top level struct name from the namespace.
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "nonblank":
		return "is required"
	case "email_shape":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "eqfield":
		return "does not match"
	case "dietary":
		return fmt.Sprintf("must be one of %s", strings.Join(models.DietaryTags(models.DietaryOptions).Strings(), ", "))
	case "decimal_gte0":
		return "must be a non-negative amount"
	case "decimal_max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "accepted":
		return "must be accepted"
	case "url":
		return "must be a valid URL"
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

func validateNonBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateEmailShape(fl validator.FieldLevel) bool {
	return IsEmail(fl.Field().String())
}

func validateDietary(fl validator.FieldLevel) bool {
	_, ok := models.ParseDietary(fl.Field().String())
	return ok
}

func validateDecimalGTE0(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return !d.IsNegative()
}

// validateDecimalMax compares the amount as stored, rounded to cents, against the tag parameter.
func validateDecimalMax(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	limit, err := decimal.NewFromString(fl.Param())
	if err != nil {
		panic(fmt.Sprintf("validation: decimal_max parameter %q: %v", fl.Param(), err))
	}
	return d.Round(2).LessThanOrEqual(limit)
}

func validateAccepted(fl validator.FieldLevel) bool {
	return fl.Field().Kind() == reflect.Bool && fl.Field().Bool()
}
