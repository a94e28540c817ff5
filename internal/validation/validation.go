// Package validation binds request payloads through gin and turns validator
// failures into 400 errors with readable messages.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/monocle-dev/rolodex/internal/apperr"
)

var (
	EmailPattern     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[a-zA-Z]{2,}(\.[a-zA-Z]{2,})*$`)
	BirthDatePattern = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)

	registerOnce sync.Once
)

// Register installs the custom tags on gin's validator. It is safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(fieldName)
		_ = v.RegisterValidation("emailaddr", matches(EmailPattern))
		_ = v.RegisterValidation("birthdate", matches(BirthDatePattern))
	})
}

func matches(pattern *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	}
}

func fieldName(field reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name := strings.SplitN(field.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return field.Name
}

// BindJSON decodes and validates the JSON body into dst.
func BindJSON(ctx *gin.Context, dst any) error {
	Register()

	if err := ctx.ShouldBindJSON(dst); err != nil {
		return translate(err)
	}
	return nil
}

// BindQuery decodes and validates the query string into dst.
func BindQuery(ctx *gin.Context, dst any) error {
	Register()

	if err := ctx.ShouldBindQuery(dst); err != nil {
		return translate(err)
	}
	return nil
}

func translate(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		return apperr.BadRequest(Message(validationErrs[0]))
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperr.BadRequest(fmt.Sprintf("%q must be of type %s", typeErr.Field, typeErr.Type.Kind()))
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return apperr.BadRequest("Request body is not valid JSON")
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return apperr.BadRequest(fmt.Sprintf("Value %q is invalid", numErr.Num))
	}

	if errors.Is(err, io.EOF) {
		return apperr.BadRequest("Request body is required")
	}

	return apperr.BadRequest(err.Error())
}

// Message renders a single field failure.
func Message(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%q length must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%q must be greater than or equal to %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%q length must be less than or equal to %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%q must be less than or equal to %s", field, fe.Param())
	case "alphanum":
		return fmt.Sprintf("%q must only contain alpha-numeric characters", field)
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", field, fe.Param())
	case "emailaddr", "birthdate":
		return fmt.Sprintf("%q with value %q fails to match the required pattern", field, fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}
