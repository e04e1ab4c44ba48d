package hxel

import (
	"errors"
	"fmt"
)

// Sentinel errors for declaration, construction and snapshot operations.
var (
	ErrDuplicateDeclaration = errors.New("hxel: property already declared")
	ErrUnknownProperty      = errors.New("hxel: unknown property")
	ErrUnmappedAttribute    = errors.New("hxel: attribute is not mapped to a property")
	ErrMalformedComputed    = errors.New("hxel: malformed computed property")
	ErrDependencyCycle      = errors.New("hxel: computed property dependency cycle")
	ErrDuplicateClass       = errors.New("hxel: class already defined")
	ErrClassSealed          = errors.New("hxel: class is sealed")
	ErrInvalidTagName       = errors.New("hxel: invalid custom element name")
	ErrDuplicateElement     = errors.New("hxel: element already defined")
	ErrUnknownElement       = errors.New("hxel: element not defined")
	ErrInvalidFormat        = errors.New("hxel: invalid snapshot format")
	ErrSignatureInvalid     = errors.New("hxel: snapshot signature verification failed")
	ErrDecryptFailed        = errors.New("hxel: snapshot decryption failed")
)

// PropertyError reports a failure tied to one property of one class.
type PropertyError struct {
	// Class is the name of the class the failure was detected on.
	Class string
	// Property is the property (or attribute) name involved.
	Property string
	// Err is the underlying sentinel.
	Err error
}

func (e *PropertyError) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Class, e.Property, e.Err)
}

func (e *PropertyError) Unwrap() error {
	return e.Err
}

// RenderError reports a failed render pass.
type RenderError struct {
	Class string
	Op    string // "render", "patch" or "resolve"
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("hxel: %s %s: %v", e.Class, e.Op, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

func propertyErr(class, property string, err error) error {
	return &PropertyError{Class: class, Property: property, Err: err}
}

// IsUnknownProperty checks if err is an unknown-property error.
func IsUnknownProperty(err error) bool {
	return errors.Is(err, ErrUnknownProperty)
}

// IsDeclarationError checks if err describes a misconfigured class:
// a duplicate, malformed or cyclic declaration, or a late declaration
// on a sealed class.
func IsDeclarationError(err error) bool {
	return errors.Is(err, ErrDuplicateDeclaration) ||
		errors.Is(err, ErrMalformedComputed) ||
		errors.Is(err, ErrDependencyCycle) ||
		errors.Is(err, ErrClassSealed)
}

// IsDecryptionError checks if err is a decryption or signature error.
func IsDecryptionError(err error) bool {
	return errors.Is(err, ErrDecryptFailed) || errors.Is(err, ErrSignatureInvalid)
}
