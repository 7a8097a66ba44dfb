package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	slotPattern  = regexp.MustCompile(`^(0[0-9]|1[0-9]|2[0-3]):[0-5][0-9]$`)
)

// Validator validates request structs using `validate` tags.
type Validator struct {
	v *validator.Validate
}

var std = mustNew()

func mustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// ValidPhone reports whether s looks like a dialable phone number.
func ValidPhone(s string) bool {
	return std.v.Var(s, "phone") == nil
}

// ValidSlotTime reports whether s is a 24h clock label like "09:30".
func ValidSlotTime(s string) bool {
	return std.v.Var(s, "slottime") == nil
}

func New() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("failed to register phone validation: %w", err)
	}

	// 24h clock times like "09:30", used for appointment slots.
	if err := v.RegisterValidation("slottime", func(fl validator.FieldLevel) bool {
		return slotPattern.MatchString(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("failed to register slottime validation: %w", err)
	}

	return &Validator{v: v}, nil
}

// Validate checks the struct and returns a single human-readable error
// naming the first failing field.
func (val *Validator) Validate(obj interface{}) error {
	err := val.v.Struct(obj)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if ok := asValidationErrors(err, &verrs); ok && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%s failed validation on %s", strings.ToLower(fe.Field()), fe.Tag())
	}
	return err
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}
