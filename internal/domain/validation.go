package domain

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Form-field patterns. Letters include accented and other non-ASCII letters.
var (
	personPattern = regexp.MustCompile(`^[\p{L}\s]+$`)
	wordsPattern  = regexp.MustCompile(`^[\p{L}\s-]+$`)
	titlePattern  = regexp.MustCompile(`^[\p{L}0-9\s.,:-]+$`)
	dniPattern    = regexp.MustCompile(`^\d{7,8}$`)
	phonePattern  = regexp.MustCompile(`^\d{4}-\d{6}$`)
	digitsPattern = regexp.MustCompile(`^\d+$`)
)

// validationRules maps custom validator tags to the pattern they enforce.
var validationRules = map[string]*regexp.Regexp{
	"person": personPattern,
	"words":  wordsPattern,
	"title":  titlePattern,
	"dni":    dniPattern,
	"phone":  phonePattern,
	"digits": digitsPattern,
}

// RegisterValidations installs the library's custom tags on v.
func RegisterValidations(v *validator.Validate) error {
	for tag, pattern := range validationRules {
		re := pattern
		err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		})
		if err != nil {
			return fmt.Errorf("register %q validation: %w", tag, err)
		}
	}
	return nil
}

// NewValidator returns a validator with the library's custom tags installed.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := RegisterValidations(v); err != nil {
		// ALLOW-PANIC: tag registration only fails on programmer error
		panic(err)
	}
	return v
}
