package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/iota-uz/iota-admin/pkg/serrors"
)

const (
	MinPasswordLength = 8
	MaxSlugLength     = 64
)

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	validate    = newValidate()
)

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Required fails with code when value is blank.
func Required(value, code, message string) Result {
	if strings.TrimSpace(value) == "" {
		return Fail(code, message)
	}
	return OK()
}

func Email(value string) Result {
	value = strings.TrimSpace(value)
	if value == "" {
		return Fail(serrors.RequiredEmail, "email is required")
	}
	if err := validate.Var(value, "email,max=254"); err != nil {
		return Fail(serrors.InvalidEmail, "email is not a valid address")
	}
	return OK()
}

// Password requires MinPasswordLength characters mixing lower case, upper
// case and digits.
func Password(value string) Result {
	if value == "" {
		return Fail(serrors.RequiredPassword, "password is required")
	}
	if len([]rune(value)) < MinPasswordLength {
		return Fail(serrors.PasswordTooShort, "password must be at least 8 characters")
	}
	var lower, upper, digit bool
	for _, r := range value {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !lower || !upper || !digit {
		return Fail(serrors.PasswordWeak, "password must contain lower case, upper case and numeric characters")
	}
	return OK()
}

// Slug accepts lower-case alphanumeric words separated by single hyphens.
func Slug(value string) Result {
	if strings.TrimSpace(value) == "" {
		return Fail(serrors.RequiredSlug, "slug is required")
	}
	if err := validate.Var(value, "slug,max=64"); err != nil {
		return Fail(serrors.InvalidSlug, "slug may contain lower-case letters, digits and single hyphens")
	}
	return OK()
}

// NormalizeEmail is the form emails are compared and stored in.
func NormalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
