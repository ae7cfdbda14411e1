package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-library-cms/internal/domain"
	"github.com/go-playground/validator/v10"
)

// v is the package-level singleton validator. Custom tags are registered in
// init before the first call to Struct.
var v = validator.New()

func init() {
	// Report the JSON field name so messages match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return domain.ValidRole(fl.Field().String())
	})
}

// Struct validates the given struct using its validate tags.
// Returns a human-readable error string or nil.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msgs = append(msgs, message(fe))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min", "max":
		return fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
	case "role":
		return fmt.Sprintf("%s must be one of SUPER_ADMIN, EDITOR, CONTRIBUTOR, VIEWER", fe.Field())
	}
	return fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag())
}
