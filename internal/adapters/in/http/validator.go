package http

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"manifest/internal/pkg/errs"
)

// RequestError lists request fields that failed validation, keyed by JSON name.
type RequestError struct {
	Fields map[string]string
}

func (e *RequestError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name, tag := range e.Fields {
		names = append(names, name+"="+tag)
	}
	sort.Strings(names)
	return fmt.Sprintf("%s: request (%s)", errs.ErrValueIsInvalid, strings.Join(names, ", "))
}

func (e *RequestError) Unwrap() error {
	return errs.ErrValueIsInvalid
}

// requestValidator plugs go-playground/validator into echo.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{validate: v}
}

func (rv *requestValidator) Validate(i any) error {
	err := rv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs.NewValueIsInvalidErrorWithCause("request", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return &RequestError{Fields: fields}
}
