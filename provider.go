package roboguice

// ServiceProvider resolves a platform service lazily, on every call, through
// the lookup registry and the context accessor. It never caches; a binding
// that should share the result is placed in the context scope.
type ServiceProvider struct {
	id              TypeID
	lookup          *LookupRegistry
	accessor        ContextAccessor
	application     ContextHandle
	requiresContext bool
}

// NewServiceProvider creates a provider for service type id. When
// requiresContext is false and no context is current, the service is fetched
// under the application handle from caps.
func NewServiceProvider(id TypeID, lookup *LookupRegistry, caps Capabilities, requiresContext bool) *ServiceProvider {
	return &ServiceProvider{
		id:              id,
		lookup:          lookup,
		accessor:        caps.Accessor,
		application:     caps.Application,
		requiresContext: requiresContext,
	}
}

func (p *ServiceProvider) Get(ctx *ContainerContext) (any, error) {
	key, ok := p.lookup.Key(p.id)
	if !ok {
		return nil, &UnknownServiceError{Type: string(p.id)}
	}

	handle, ok := ctx.Handle()
	if !ok {
		if p.requiresContext || p.application == nil {
			return nil, &NoActiveContextError{Type: string(p.id)}
		}
		handle = p.application
	}

	v, err := p.accessor(handle, key)
	if err != nil {
		return nil, &InitializationError{Type: string(p.id), Err: err}
	}
	if v == nil {
		return nil, &UnknownServiceError{Type: string(p.id), Key: key}
	}
	return v, nil
}

// SentinelProvider stands in for a context-dependent type that only an active
// context can supply. Resolving it always fails with NoActiveContextError.
type SentinelProvider struct {
	id TypeID
}

func NewSentinelProvider(id TypeID) *SentinelProvider {
	return &SentinelProvider{id: id}
}

func (p *SentinelProvider) Get(ctx *ContainerContext) (any, error) {
	handle, _ := ctx.Handle()
	return nil, &NoActiveContextError{Type: string(p.id), Handle: handle}
}

type funcProvider struct {
	id TypeID
	fn func(*ContainerContext) (any, error)
}

func (p *funcProvider) Get(ctx *ContainerContext) (any, error) {
	v, err := p.fn(ctx)
	if err != nil {
		return nil, &InitializationError{Type: string(p.id), Err: err}
	}
	return v, nil
}

type constantProvider struct {
	value any
}

func (p *constantProvider) Get(*ContainerContext) (any, error) {
	return p.value, nil
}
