package middleware

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/arbicart/backend/internal/domain/pricing"
)

// SetupValidator registers the custom tags and reports fields by their
// query or JSON names. It must run before the router serves requests.
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	// zipcode checks the trimmed value; blank means "use the default ZIP"
	return v.RegisterValidation("zipcode", func(fl validator.FieldLevel) bool {
		zip := strings.TrimSpace(fl.Field().String())
		return zip == "" || pricing.IsZipFormat(zip)
	})
}

// ValidationMessage turns a binding error into one client-facing sentence
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid query parameters"
	}
	e := verrs[0]
	switch e.Tag() {
	case "zipcode":
		return "ZIP must be 5 digits"
	case "max":
		return "Parameter " + e.Field() + " must be at most " + e.Param() + " characters"
	case "required":
		return "Parameter " + e.Field() + " is required"
	default:
		return "Parameter " + e.Field() + " is invalid"
	}
}
