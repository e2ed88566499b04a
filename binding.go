package roboguice

import (
	"sync"

	"go.uber.org/dig"
)

type bindingKind int

const (
	kindInstance bindingKind = iota
	kindFactory
	kindService
	kindSentinel
)

// Definition is a candidate binding. The Assembler decides whether it is
// registered or replaced by a no-op binding.
type Definition struct {
	id              TypeID
	kind            bindingKind
	scope           Scope
	value           any
	factory         func(*ContainerContext) (any, error)
	requiresContext bool
	install         func(c *dig.Container, inj *Injector) error
}

// Type returns the type the definition binds.
func (d Definition) Type() TypeID {
	return d.id
}

// Scope returns the lifetime the definition asks for.
func (d Definition) Scope() Scope {
	return d.scope
}

// Instance binds T to a constant value.
func Instance[T any](v T) Definition {
	return Definition{
		id:      TypeIDOf[T](),
		kind:    kindInstance,
		scope:   ScopeSingleton,
		value:   v,
		install: installValue[T],
	}
}

// Singleton binds T to factory, called at most once per process.
func Singleton[T any](factory func(*ContainerContext) (T, error)) Definition {
	return Definition{
		id:      TypeIDOf[T](),
		kind:    kindFactory,
		scope:   ScopeSingleton,
		factory: erase(factory),
		install: installValue[T],
	}
}

// Transient binds T to factory, called on every resolution.
func Transient[T any](factory func(*ContainerContext) (T, error)) Definition {
	return Definition{
		id:      TypeIDOf[T](),
		kind:    kindFactory,
		scope:   ScopeTransient,
		factory: erase(factory),
		install: installProvider[T],
	}
}

// ContextSingleton binds T to factory, called at most once per entered context handle.
func ContextSingleton[T any](factory func(*ContainerContext) (T, error)) Definition {
	return Definition{
		id:      TypeIDOf[T](),
		kind:    kindFactory,
		scope:   ScopeContext,
		factory: erase(factory),
		install: installProvider[T],
	}
}

// SystemService binds T to the platform service registered for it in the
// lookup registry. Outside any context it is fetched under the application handle.
func SystemService[T any]() Definition {
	return Definition{
		id:      TypeIDOf[T](),
		kind:    kindService,
		scope:   ScopeTransient,
		install: installProvider[T],
	}
}

// ContextSystemService binds T to a platform service that must be fetched
// under the current context, shared within that context.
func ContextSystemService[T any]() Definition {
	return Definition{
		id:              TypeIDOf[T](),
		kind:            kindService,
		scope:           ScopeContext,
		requiresContext: true,
		install:         installProvider[T],
	}
}

// ContextDependent binds T to a value only a current context can supply, such
// as the current screen. A handle supplies it by being, or declaring, T.
func ContextDependent[T any]() Definition {
	return Definition{
		id:      TypeIDOf[T](),
		kind:    kindSentinel,
		scope:   ScopeContext,
		install: installProvider[T],
	}
}

func erase[T any](factory func(*ContainerContext) (T, error)) func(*ContainerContext) (any, error) {
	return func(ctx *ContainerContext) (any, error) {
		v, err := factory(ctx)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

func installProvider[T any](c *dig.Container, inj *Injector) error {
	return c.Provide(func() *TypedProvider[T] {
		return &TypedProvider[T]{inj: inj}
	})
}

func installValue[T any](c *dig.Container, inj *Injector) error {
	if err := installProvider[T](c, inj); err != nil {
		return err
	}
	return c.Provide(func() (T, error) {
		return Get[T](NewContainerContext(nil), inj)
	})
}

// BindingState tags a binding as registered or filtered out.
type BindingState int

const (
	BindingActive BindingState = iota
	BindingNoOp
)

func (s BindingState) String() string {
	if s == BindingNoOp {
		return "noop"
	}
	return "active"
}

// Binding is the configured form of a Definition.
type Binding struct {
	def      Definition
	state    BindingState
	provider Provider
	scope    *ContextScope

	mu          sync.Mutex
	initialized bool
	instance    any
}

func (b *Binding) Type() TypeID {
	return b.def.id
}

func (b *Binding) State() BindingState {
	return b.state
}

func (b *Binding) Scope() Scope {
	return b.def.scope
}

// Provider returns the provider behind an active binding, nil for a no-op one.
func (b *Binding) Provider() Provider {
	return b.provider
}

func (b *Binding) get(ctx *ContainerContext) (any, error) {
	switch b.def.scope {
	case ScopeSingleton:
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.initialized {
			return b.instance, nil
		}
		// process singletons never see the current context
		v, err := b.provider.Get(ctx.withSession(nil))
		if err != nil {
			return nil, err
		}
		b.instance = v
		b.initialized = true
		return v, nil
	case ScopeContext:
		if b.def.kind == kindSentinel {
			if h, ok := b.scope.Supplied(ctx, b.def.id); ok {
				return h, nil
			}
			return b.provider.Get(ctx)
		}
		return b.scope.GetOrCreate(ctx, b.def.id, func() (any, error) {
			return b.provider.Get(ctx)
		})
	default:
		return b.provider.Get(ctx)
	}
}
