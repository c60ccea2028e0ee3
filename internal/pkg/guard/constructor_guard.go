// Package guard provides ConstructorGuard, a marker that distinguishes values
// built through their constructor from zero values.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard is embedded in value objects, commands and queries so a zero
// value can be detected and rejected.
//
// Example:
//
//	type Coordinates struct {
//	    lat, lng float64
//	    guard    guard.ConstructorGuard
//	}
//
//	func (c Coordinates) Validate() error {
//	    return c.guard.Validate(ErrCoordinatesNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marked as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil for a constructed guard, otherwise validationError
// (or ErrDefaultConstructorGuard when validationError is nil).
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
