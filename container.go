package roboguice

import (
	"reflect"

	"github.com/go-logr/logr"
	"go.uber.org/dig"

	"github.com/mstian06/roboguice/metrics"
)

// Injector holds the configured bindings and resolves them.
// Bindings are read-only after Configure returns.
type Injector struct {
	bindings map[TypeID]*Binding
	order    []TypeID
	scope    *ContextScope
	usage    UsageRegistry
	log      logr.Logger
	metrics  *metrics.Collector
}

// Scope returns the context scope shared by the injector's context-bound bindings.
func (i *Injector) Scope() *ContextScope {
	return i.scope
}

// Usage returns the usage registry the bindings were filtered with.
func (i *Injector) Usage() UsageRegistry {
	return i.usage
}

// Binding returns the binding configured for id, active or not.
func (i *Injector) Binding(id TypeID) (*Binding, bool) {
	b, ok := i.bindings[id]
	return b, ok
}

// Bindings returns all bindings in definition order.
func (i *Injector) Bindings() []*Binding {
	out := make([]*Binding, 0, len(i.order))
	for _, id := range i.order {
		out = append(out, i.bindings[id])
	}
	return out
}

// Resolve returns the instance bound to id for the execution carried by ctx.
// Returns BindingNotFoundError if id was never declared.
// Returns UnboundTypeError if id was filtered out.
// Returns CircularDependencyError if id is already being resolved in ctx.
func (i *Injector) Resolve(ctx *ContainerContext, id TypeID) (any, error) {
	v, err := i.resolve(ctx, id)
	i.metrics.Resolution(err)
	return v, err
}

func (i *Injector) resolve(ctx *ContainerContext, id TypeID) (any, error) {
	if ctx == nil {
		ctx = NewContainerContext(nil)
	}
	b, ok := i.bindings[id]
	if !ok {
		return nil, &BindingNotFoundError{Type: string(id)}
	}
	if b.state == BindingNoOp {
		return nil, &UnboundTypeError{Type: string(id)}
	}
	if ctx.isResolving(id) {
		return nil, &CircularDependencyError{Type: string(id)}
	}
	return b.get(ctx.withResolving(id))
}

// Get resolves T from inj.
// Returns TypeMismatchError if the bound value is not a T.
func Get[T any](ctx *ContainerContext, inj *Injector) (T, error) {
	var zero T
	id := TypeIDOf[T]()
	v, err := inj.Resolve(ctx, id)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	typed, ok := v.(T)
	if !ok {
		return zero, &TypeMismatchError{Expected: string(id), Got: reflect.TypeOf(v).String()}
	}
	return typed, nil
}

// TypedProvider resolves T from an injector on demand. It is what the injector
// installs into a dig container, so constructors can depend on context-bound
// types without resolving them at construction time.
type TypedProvider[T any] struct {
	inj *Injector
}

func (p *TypedProvider[T]) Get(ctx *ContainerContext) (T, error) {
	return Get[T](ctx, p.inj)
}

// Install provides every active binding to c as *TypedProvider[T]; instance
// and singleton bindings are provided as T as well. No-op bindings install nothing.
func (i *Injector) Install(c *dig.Container) error {
	for _, id := range i.order {
		b := i.bindings[id]
		if b.state == BindingNoOp {
			continue
		}
		if err := b.def.install(c, i); err != nil {
			return &InitializationError{Type: string(id), Err: err}
		}
	}
	return nil
}
