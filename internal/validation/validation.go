// Package validation binds request input to typed structs and turns
// failures into field-level violations.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/docket-dev/docket/internal/apperr"
	"github.com/docket-dev/docket/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const msgValidationFailed = "Validation failed"

var setupOnce sync.Once

// Setup registers the custom tags on gin's validator. Safe to call more
// than once.
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)

		if !ok {
			panic("validation: gin binding engine is not validator/v10")
		}

		v.RegisterTagNameFunc(fieldName)

		mustRegister(v, "case_status", func(fl validator.FieldLevel) bool {
			return models.CaseStatus(fl.Field().String()).Valid()
		})

		mustRegister(v, "appointment_status", func(fl validator.FieldLevel) bool {
			return models.AppointmentStatus(fl.Field().String()).Valid()
		})

		mustRegister(v, "iso_datetime", func(fl validator.FieldLevel) bool {
			_, err := ParseTime(fl.Field().String())
			return err == nil
		})
	})
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: registering %s: %v", tag, err))
	}
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]

		if name == "-" {
			return ""
		}

		if name != "" {
			return name
		}
	}

	return fld.Name
}

// ParseTime accepts ISO 8601 date-times with an offset or Z.
func ParseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}

// BindJSON decodes and validates the JSON body into obj.
func BindJSON(ctx *gin.Context, obj any) error {
	if err := ctx.ShouldBindWith(obj, binding.JSON); err != nil {
		return translate(err)
	}

	return nil
}

// BindQuery validates query parameters into obj.
func BindQuery(ctx *gin.Context, obj any) error {
	if err := ctx.ShouldBindQuery(obj); err != nil {
		return translate(err)
	}

	return nil
}

// ParamID returns the path parameter name after checking it is a UUID.
func ParamID(ctx *gin.Context, name string) (string, error) {
	value := ctx.Param(name)

	if err := CheckID(name, value); err != nil {
		return "", err
	}

	return value, nil
}

func CheckID(field, value string) error {
	if _, err := uuid.Parse(value); err != nil {
		return apperr.Validation(msgValidationFailed, apperr.FieldError{Field: field, Message: "Invalid ID format"})
	}

	return nil
}

func translate(err error) error {
	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &verrs):
		fields := make([]apperr.FieldError, 0, len(verrs))

		for _, fe := range verrs {
			fields = append(fields, apperr.FieldError{Field: fieldPath(fe), Message: message(fe)})
		}

		return apperr.Validation(msgValidationFailed, fields...)
	case errors.As(err, &typeErr):
		return apperr.Validation(msgValidationFailed, apperr.FieldError{
			Field:   typeErr.Field,
			Message: "must be of type " + jsonType(typeErr.Type),
		})
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return apperr.Validation("Malformed JSON body")
	case errors.Is(err, io.EOF):
		return apperr.Validation("Request body is required")
	default:
		return apperr.Validation(err.Error())
	}
}

// fieldPath drops the root struct name: "CaseRequest.contactInfo.email"
// becomes "contactInfo.email".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()

	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}

	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "uuid", "uuid4":
		return "Invalid ID format"
	case "case_status":
		return "must be one of: " + join(models.CaseStatuses)
	case "appointment_status":
		return "must be one of: " + join(models.AppointmentStatuses)
	case "iso_datetime":
		return "must be an ISO 8601 date-time, e.g. 2026-03-01T09:30:00Z"
	default:
		return "failed on the " + fe.Tag() + " rule"
	}
}

func join[T ~string](values []T) string {
	parts := make([]string, len(values))

	for i, v := range values {
		parts[i] = string(v)
	}

	return strings.Join(parts, ", ")
}

func jsonType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}
