// Package inputval validates form input structs using struct tags.
//
// Handlers declare an input struct with `validate` rules and a human-readable
// `label` tag, then call Validate and re-render the form with Result.First()
// when it fails:
//
//	type createInput struct {
//		Name string `validate:"required,max=120" label:"Portfolio name"`
//		Slug string `validate:"required,slug" label:"Slug"`
//	}
package inputval

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// slugPattern matches public URL slugs: lowercase letters, digits, hyphens,
// no leading/trailing hyphen.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report field names from the label tag so messages read naturally.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		return fld.Name
	})

	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})

	return v
}

// IsValidSlug reports whether s is an acceptable public slug.
func IsValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// Result holds validation failures as user-facing messages.
type Result struct {
	Errors []string
}

// HasErrors reports whether any rule failed.
func (r Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// First returns the first failure message, or "".
func (r Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0]
}

// Validate checks input against its struct tags.
func Validate(input any) Result {
	err := validate.Struct(input)
	if err == nil {
		return Result{}
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Result{Errors: []string{"Invalid input."}}
	}

	var out Result
	for _, fe := range verrs {
		out.Errors = append(out.Errors, message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address.", fe.Field())
	case "slug":
		return fmt.Sprintf("%s may contain only lowercase letters, digits, and hyphens.", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid.", fe.Field())
	}
}
