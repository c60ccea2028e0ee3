package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrObjectNotFound is the sentinel for lookups that found nothing.
	ErrObjectNotFound = errors.New("object not found")
	// ErrValueIsInvalid is the sentinel for values that break a domain rule.
	ErrValueIsInvalid = errors.New("value is invalid")
	// ErrValueIsOutOfRange is the sentinel for values outside an allowed interval.
	ErrValueIsOutOfRange = errors.New("value is out of range")
	// ErrValueIsRequired is the sentinel for missing required values.
	ErrValueIsRequired = errors.New("value is required")
	// ErrDuplicateCode is the sentinel for a tracking code already held by an active item.
	ErrDuplicateCode = errors.New("duplicate code")
	// ErrExternalService is the sentinel for failures of decoding, geocoding or sync collaborators.
	ErrExternalService = errors.New("external service failed")
	// ErrPersistence is the sentinel for snapshot or repository write failures.
	ErrPersistence = errors.New("persistence failed")
)

// IsValidation reports whether err belongs to the validation family
// (required, invalid or out-of-range values). Validation errors never change state.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValueIsRequired) ||
		errors.Is(err, ErrValueIsInvalid) ||
		errors.Is(err, ErrValueIsOutOfRange)
}

// ObjectNotFoundError reports a missing object identified by ParamName and ID.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

// NewObjectNotFoundError creates an ObjectNotFoundError without a cause.
func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

// NewObjectNotFoundErrorWithCause creates an ObjectNotFoundError wrapping cause.
func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)",
			ErrObjectNotFound, e.ParamName, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, e.ID)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError reports a value that breaks a domain rule.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

// NewValueIsInvalidError creates a ValueIsInvalidError without a cause.
func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

// NewValueIsInvalidErrorWithCause creates a ValueIsInvalidError wrapping cause.
func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsInvalid, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError reports a value outside [Min, Max].
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

// NewValueIsOutOfRangeError creates a ValueIsOutOfRangeError without a cause.
func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue}
}

// NewValueIsOutOfRangeErrorWithCause creates a ValueIsOutOfRangeError wrapping cause.
func NewValueIsOutOfRangeErrorWithCause(
	paramName string,
	value, minValue, maxValue any,
	cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue, Cause: cause}
}

func (e *ValueIsOutOfRangeError) Error() string {
	msg := fmt.Sprintf("%s: %v is %s, min value is %v, max value is %v",
		ErrValueIsInvalid, sanitize(e.Value), e.ParamName, sanitize(e.Min), sanitize(e.Max))
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ValueIsRequiredError reports a missing required value.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

// NewValueIsRequiredError creates a ValueIsRequiredError without a cause.
func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

// NewValueIsRequiredErrorWithCause creates a ValueIsRequiredError wrapping cause.
func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsRequired, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// DuplicateCodeError reports that Code is already held by the active item ExistingID.
type DuplicateCodeError struct {
	Code       string
	ExistingID string
}

// NewDuplicateCodeError creates a DuplicateCodeError.
func NewDuplicateCodeError(code string, existingID string) *DuplicateCodeError {
	return &DuplicateCodeError{Code: code, ExistingID: existingID}
}

func (e *DuplicateCodeError) Error() string {
	return fmt.Sprintf("%s: %s is held by active item %s", ErrDuplicateCode, sanitize(e.Code), e.ExistingID)
}

func (e *DuplicateCodeError) Unwrap() error {
	return ErrDuplicateCode
}

// ExternalServiceError reports a failed call to an external collaborator.
// Retryable marks failures the operator may simply try again (sensor busy, timeouts).
type ExternalServiceError struct {
	Service   string
	Retryable bool
	Cause     error
}

// NewExternalServiceError creates a non-retryable ExternalServiceError.
func NewExternalServiceError(service string, cause error) *ExternalServiceError {
	return &ExternalServiceError{Service: service, Cause: cause}
}

// NewRetryableExternalServiceError creates a retryable ExternalServiceError.
func NewRetryableExternalServiceError(service string, cause error) *ExternalServiceError {
	return &ExternalServiceError{Service: service, Retryable: true, Cause: cause}
}

func (e *ExternalServiceError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrExternalService, e.Service)
	if e.Retryable {
		msg += " (retryable)"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

func (e *ExternalServiceError) Unwrap() error {
	return ErrExternalService
}

// PersistenceError reports a failed write of state that was already applied in memory.
type PersistenceError struct {
	Operation string
	Cause     error
}

// NewPersistenceError creates a PersistenceError for operation.
func NewPersistenceError(operation string, cause error) *PersistenceError {
	return &PersistenceError{Operation: operation, Cause: cause}
}

func (e *PersistenceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrPersistence, e.Operation, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrPersistence, e.Operation)
}

func (e *PersistenceError) Unwrap() error {
	return ErrPersistence
}

func sanitize(v any) string {
	s := fmt.Sprintf("%v", v)
	return strings.ReplaceAll(s, "\n", " ")
}
