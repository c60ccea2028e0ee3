// Package errs provides standardized error types for the delivery-manifest engine.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes:
//   - ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError: the validation
//     family, reported when a field is missing or breaks a rule (see IsValidation)
//   - ObjectNotFoundError: for when an item or record cannot be found
//   - DuplicateCodeError: a tracking code is already held by an active item
//   - ExternalServiceError: a decoding, geocoding or sync collaborator failed
//   - PersistenceError: a state write failed after the in-memory change was applied
//
// Each error type follows the same pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method returning the sentinel, so errors.Is classifies it
//
// None of these conditions is fatal; every one leaves the manifest usable.
package errs
