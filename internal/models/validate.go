package models

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("roi_qp", validateRoiQP)

	// Report JSON names so API errors match the request body.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// FieldError describes a single rejected field.
type FieldError struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Value   any    `json:"value"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("profile %d: %s: %s", e.Index, e.Field, e.Message)
}

// ValidationErrors collects every field error found in one validation pass.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the parameter bundle of a single profile.
func (p TxProfile) Validate() error {
	if errs := validateOne(-1, p); len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateAll checks every profile in the list and reports all failures.
func ValidateAll(profiles []TxProfile) error {
	var errs ValidationErrors
	for i, p := range profiles {
		errs = append(errs, validateOne(i, p)...)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateOne(index int, p TxProfile) ValidationErrors {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Index: index, Field: "profile", Message: err.Error()}}
	}
	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, FieldError{
			Index:   index,
			Field:   fe.Field(),
			Value:   fe.Value(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("minimum value is %s", fe.Param())
	case "max":
		return fmt.Sprintf("maximum value is %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "ltefield":
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "gtefield":
		return fmt.Sprintf("must not be below %s", fe.Param())
	case "roi_qp":
		return "must be four comma separated integers"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// validateRoiQP accepts exactly four comma separated integers.
func validateRoiQP(fl validator.FieldLevel) bool {
	parts := strings.Split(fl.Field().String(), ",")
	if len(parts) != 4 {
		return false
	}
	for _, part := range parts {
		if _, err := strconv.Atoi(strings.TrimSpace(part)); err != nil {
			return false
		}
	}
	return true
}
