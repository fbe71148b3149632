// Package validate checks a user draft and reports per-field errors.
//
// Field rules live as validate:"..." tags on types.Draft and are checked
// by go-playground/validator. The tags "notblank", "letters",
// "emailshape" and "agerange" are registered here. The duplicate-email
// rule needs the current collection, so it runs after the struct pass.
package validate

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/aanand-mishra/local-crud/internal/types"
	"github.com/go-playground/validator/v10"
)

// Age bounds, inclusive.
const (
	MinAge = 1
	MaxAge = 120
)

// Messages shown to the user, keyed by field and then by failing tag.
var messages = map[string]map[string]string{
	types.FieldName: {
		"notblank": "Name is required!",
		"letters":  "Name should only contain alphabets",
	},
	types.FieldEmail: {
		"required":   "Email is required!",
		"emailshape": "Email is invalid",
	},
	types.FieldAge: {
		"required": "Age is required!",
		"agerange": fmt.Sprintf("Age must be between %d and %d", MinAge, MaxAge),
	},
}

// MsgEmailExists is reported when an added draft reuses an email.
const MsgEmailExists = "Email already exists"

var (
	lettersRe = regexp.MustCompile(`^[A-Za-z\s]*$`)
	emailRe   = regexp.MustCompile(`^\S+@\S+\.\S+$`)
)

// ErrNotNumeric is returned by ParseAge for input that is not a number.
var ErrNotNumeric = errors.New("age is not numeric")

// v is safe for concurrent use and caches struct metadata, so one
// instance is shared.
var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()

	// Report json names ("name") instead of Go names ("Name").
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(val, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(val, "letters", func(fl validator.FieldLevel) bool {
		return lettersRe.MatchString(fl.Field().String())
	})
	mustRegister(val, "emailshape", func(fl validator.FieldLevel) bool {
		return emailRe.MatchString(fl.Field().String())
	})
	mustRegister(val, "agerange", func(fl validator.FieldLevel) bool {
		age, err := ParseAge(fl.Field().String())
		return err == nil && age >= MinAge && age <= MaxAge
	})

	return val
}

func mustRegister(val *validator.Validate, tag string, fn validator.Func) {
	if err := val.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validate: register %q: %v", tag, err))
	}
}

// Draft checks draft against the field rules and, outside edit mode,
// against the emails already present in users. It has no side effects.
// The returned map is empty when the draft is valid.
func Draft(draft types.Draft, users []types.User, editMode bool) types.FieldErrors {
	errs := make(types.FieldErrors)

	if err := v.Struct(draft); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			// Only reachable through a programming error (bad tag).
			panic(fmt.Sprintf("validate: %v", err))
		}
		for _, fe := range verrs {
			if _, seen := errs[fe.Field()]; seen {
				continue
			}
			errs[fe.Field()] = message(fe.Field(), fe.Tag())
		}
	}

	if _, bad := errs[types.FieldEmail]; !bad && !editMode {
		for _, u := range users {
			if u.Email == draft.Email {
				errs[types.FieldEmail] = MsgEmailExists
				break
			}
		}
	}

	return errs
}

func message(field, tag string) string {
	if m, ok := messages[field][tag]; ok {
		return m
	}
	return fmt.Sprintf("%s is invalid", field)
}

// ParseAge parses a numeric age, ignoring surrounding whitespace.
// Fractions are accepted; NaN and infinities are not numbers here.
func ParseAge(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, s)
	}
	return f, nil
}

// CoerceAge converts a validated age to an integer, truncating any
// fractional part.
func CoerceAge(s string) (int, error) {
	f, err := ParseAge(s)
	if err != nil {
		return 0, err
	}
	return int(math.Trunc(f)), nil
}
