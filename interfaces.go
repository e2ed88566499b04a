package roboguice

import "reflect"

// TypeID identifies an abstract service type by its fully-qualified name.
// The same names populate a UsageRegistry, so filtering and lookup share one key.
type TypeID string

// LookupKey names a platform service at the host boundary.
type LookupKey string

// ContextHandle is the host's reference to a running context (a screen or a
// background unit). Handles must be comparable; pointers are keyed by identity.
type ContextHandle interface{}

// TypedHandle is implemented by handles that should also satisfy abstract
// context types other than their own concrete type while they are current.
type TypedHandle interface {
	ContextTypes() []TypeID
}

// ContextAccessor fetches the platform service named by key under handle.
// A nil result with a nil error means the platform has no such service.
type ContextAccessor func(handle ContextHandle, key LookupKey) (any, error)

// Shutdowner is implemented by context-bound instances holding resources that
// must be released when their context exits, such as listeners registered
// with the host.
type Shutdowner interface {
	// OnShutdown is called once, after the last session for the instance's
	// handle exits.
	OnShutdown(ctx *ContainerContext) error
}

// Provider produces an instance for a binding.
type Provider interface {
	Get(ctx *ContainerContext) (any, error)
}

// Scope defines the lifetime and sharing behavior of a binding.
type Scope string

// Available binding scopes
const (
	// ScopeTransient recomputes the instance on every resolution
	ScopeTransient Scope = "transient"
	// ScopeContext shares an instance while one context handle is current
	ScopeContext Scope = "context"
	// ScopeSingleton shares a single instance across the process
	ScopeSingleton Scope = "singleton"
)

// TypeIDOf returns the TypeID for T.
func TypeIDOf[T any]() TypeID {
	return TypeID(typeName(reflect.TypeOf((*T)(nil)).Elem()))
}

func typeIDOfValue(v any) TypeID {
	return TypeID(typeName(reflect.TypeOf(v)))
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	if t.Kind() == reflect.Pointer {
		return "*" + typeName(t.Elem())
	}
	return t.String()
}
