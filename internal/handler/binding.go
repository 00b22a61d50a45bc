package handler

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/reviewhub/reviewhub/internal/models"
)

var (
	// Word characters plus . @ + - (the legacy Django username charset).
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)
	slugRegex     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// RegisterValidators installs the custom binding validators on gin's
// validator engine. Called once at startup (and from test setup).
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Report fields by their json names so error payloads match the wire.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if models.ReservedUsernames[value] {
			return false
		}
		return usernameRegex.MatchString(value)
	})

	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRegex.MatchString(fl.Field().String())
	})
}

// bindingErrorPayload turns a binding failure into a field-keyed payload.
func bindingErrorPayload(err error) gin.H {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := gin.H{}
		for _, fe := range verrs {
			fields[fe.Field()] = validationMessage(fe)
		}
		return gin.H{"errors": fields}
	}
	return gin.H{"error": "Invalid request body"}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "invalid email address"
	case "username":
		return "only letters, digits and ./@/+/-/_ are allowed; 'me' is reserved"
	case "slug":
		return "only letters, digits, hyphens and underscores are allowed"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must contain at least %s items", fe.Param())
	default:
		return "invalid value"
	}
}
