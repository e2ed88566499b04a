package roboguice

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyConfigured is returned when an Assembler is configured twice.
	ErrAlreadyConfigured = errors.New("assembler already configured")
	// ErrMissingAccessor is returned when a service binding is active but no context accessor was supplied.
	ErrMissingAccessor = errors.New("service bindings require a context accessor")
)

// NoActiveContextError represents a context-dependent request made with no current context.
type NoActiveContextError struct {
	Type string
	// Handle is the current handle when one was active but could not supply Type.
	Handle ContextHandle
}

func (e *NoActiveContextError) Error() string {
	if e.Handle != nil {
		return fmt.Sprintf("no active context supplies type %s (current context %v)", e.Type, e.Handle)
	}
	return fmt.Sprintf("no active context for type: %s", e.Type)
}

// ScopeReentryError represents an enter with a handle other than the current one.
type ScopeReentryError struct {
	Current   ContextHandle
	Requested ContextHandle
}

func (e *ScopeReentryError) Error() string {
	return fmt.Sprintf("cannot enter context %v while context %v is current", e.Requested, e.Current)
}

// UnknownServiceError represents a service type or lookup key with no platform resolution.
type UnknownServiceError struct {
	Type string
	Key  LookupKey
}

func (e *UnknownServiceError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("platform has no service %q for type: %s", e.Key, e.Type)
	}
	return fmt.Sprintf("no lookup key registered for service type: %s", e.Type)
}

// UnboundTypeError represents resolution of a type whose binding was filtered out.
type UnboundTypeError struct {
	Type string
}

func (e *UnboundTypeError) Error() string {
	return fmt.Sprintf("type %s was filtered out by the usage registry", e.Type)
}

// BindingNotFoundError represents a missing binding error.
type BindingNotFoundError struct {
	Type string
}

func (e *BindingNotFoundError) Error() string {
	return fmt.Sprintf("no binding found for type: %s", e.Type)
}

// CircularDependencyError represents a circular dependency detection error.
type CircularDependencyError struct {
	Type string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected for type: %s", e.Type)
}

// DuplicateBindingError represents a second definition for an already bound type.
type DuplicateBindingError struct {
	Type string
}

func (e *DuplicateBindingError) Error() string {
	return fmt.Sprintf("type %s is bound more than once", e.Type)
}

// InvalidHandleError represents a context handle that cannot key a scope segment.
type InvalidHandleError struct {
	Handle ContextHandle
	Reason string
}

func (e *InvalidHandleError) Error() string {
	return fmt.Sprintf("invalid context handle %v: %s", e.Handle, e.Reason)
}

// InitializationError represents a provider failure.
type InitializationError struct {
	Type string
	Err  error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("initialization failed for type %s: %v", e.Type, e.Err)
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}

// ShutdownError represents a context-bound instance failing to shut down.
type ShutdownError struct {
	Type string
	Err  error
}

func (e *ShutdownError) Error() string {
	return fmt.Sprintf("shutdown failed for type %s: %v", e.Type, e.Err)
}

func (e *ShutdownError) Unwrap() error {
	return e.Err
}

// TypeMismatchError represents a type assertion failure.
type TypeMismatchError struct {
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, got %s", e.Expected, e.Got)
}
