package roboguice

import (
	"sync/atomic"

	"github.com/go-logr/logr"

	"github.com/mstian06/roboguice/metrics"
)

// Capabilities are the host integrations the assembler needs.
type Capabilities struct {
	// Accessor fetches platform services. Required when any service binding is active.
	Accessor ContextAccessor
	// Application is the process-wide handle used for services that do not need a current context.
	Application ContextHandle
}

// Assembler turns candidate definitions into the bindings exposed to an injector.
// Deciding (Plan) is separate from registering (Configure) so the filtering
// outcome can be inspected on its own.
type Assembler struct {
	usage      UsageRegistry
	lookup     *LookupRegistry
	caps       Capabilities
	scope      *ContextScope
	log        logr.Logger
	metrics    *metrics.Collector
	defaults   bool
	configured atomic.Bool
}

// NewAssembler creates an assembler. Unless WithScope is given it creates its own ContextScope.
func NewAssembler(usage UsageRegistry, lookup *LookupRegistry, caps Capabilities, opts ...Option) *Assembler {
	o := buildOptions(opts)
	scope := o.scope
	if scope == nil {
		scope = NewContextScope(opts...)
	}
	return &Assembler{
		usage:    usage,
		lookup:   lookup,
		caps:     caps,
		scope:    scope,
		log:      o.log.WithName("assembler"),
		metrics:  o.metrics,
		defaults: o.defaults,
	}
}

// Scope returns the context scope context-bound bindings are cached in.
func (a *Assembler) Scope() *ContextScope {
	return a.scope
}

// Application wraps the process-wide handle so it resolves apart from the
// current context handle.
type Application struct {
	Handle ContextHandle
}

// DefaultDefinitions returns the bindings every injector starts with:
// the application handle (when caps has one), the context scope itself, and
// the current context handle.
func DefaultDefinitions(caps Capabilities, scope *ContextScope) []Definition {
	defs := make([]Definition, 0, 3)
	if caps.Application != nil {
		defs = append(defs, Instance(Application{Handle: caps.Application}))
	}
	return append(defs,
		Instance(scope),
		ContextDependent[ContextHandle](),
	)
}

func (a *Assembler) withDefaults(defs []Definition) []Definition {
	if !a.defaults {
		return defs
	}
	given := make(map[TypeID]struct{}, len(defs))
	for _, def := range defs {
		given[def.id] = struct{}{}
	}
	all := make([]Definition, 0, len(defs)+3)
	for _, def := range DefaultDefinitions(a.caps, a.scope) {
		if _, ok := given[def.id]; ok {
			continue
		}
		all = append(all, def)
	}
	return append(all, defs...)
}

// Plan decides every definition against the usage registry and builds its
// binding without registering anything. With WithDefaults the default
// definitions are planned first and filtered like any other.
func (a *Assembler) Plan(defs ...Definition) ([]*Binding, error) {
	defs = a.withDefaults(defs)
	seen := make(map[TypeID]struct{}, len(defs))
	bindings := make([]*Binding, 0, len(defs))

	for _, def := range defs {
		if _, dup := seen[def.id]; dup {
			return nil, &DuplicateBindingError{Type: string(def.id)}
		}
		seen[def.id] = struct{}{}

		b := &Binding{def: def, scope: a.scope}
		if !ShouldBind(string(def.id), a.usage) {
			b.state = BindingNoOp
			bindings = append(bindings, b)
			continue
		}

		b.state = BindingActive
		switch def.kind {
		case kindInstance:
			b.provider = &constantProvider{value: def.value}
		case kindFactory:
			b.provider = &funcProvider{id: def.id, fn: def.factory}
		case kindService:
			if a.caps.Accessor == nil {
				return nil, ErrMissingAccessor
			}
			b.provider = NewServiceProvider(def.id, a.lookup, a.caps, def.requiresContext)
		case kindSentinel:
			b.provider = NewSentinelProvider(def.id)
		}
		bindings = append(bindings, b)
	}
	return bindings, nil
}

// Configure plans defs and registers the active bindings in a new Injector.
// An assembler configures once; after a successful call later calls return
// ErrAlreadyConfigured. A call that fails leaves the assembler unconfigured.
func (a *Assembler) Configure(defs ...Definition) (*Injector, error) {
	if !a.configured.CompareAndSwap(false, true) {
		return nil, ErrAlreadyConfigured
	}

	bindings, err := a.Plan(defs...)
	if err != nil {
		a.configured.Store(false)
		return nil, err
	}

	inj := &Injector{
		bindings: make(map[TypeID]*Binding, len(bindings)),
		order:    make([]TypeID, 0, len(bindings)),
		scope:    a.scope,
		usage:    a.usage,
		log:      a.log,
		metrics:  a.metrics,
	}

	var active, noop int
	for _, b := range bindings {
		inj.bindings[b.def.id] = b
		inj.order = append(inj.order, b.def.id)
		if b.state == BindingNoOp {
			noop++
			a.log.V(1).Info("binding filtered", "type", b.def.id)
			continue
		}
		active++
	}

	a.metrics.SetBindings(active, noop)
	a.metrics.SetUsageUnknown(a.usage.Unknown())
	a.log.Info("bindings configured",
		"active", active,
		"filtered", noop,
		"usageKnown", !a.usage.Unknown(),
		"lookupKeys", a.lookup.Len(),
	)
	return inj, nil
}

// Configure assembles defs with a fresh assembler.
func Configure(usage UsageRegistry, lookup *LookupRegistry, caps Capabilities, defs []Definition, opts ...Option) (*Injector, error) {
	return NewAssembler(usage, lookup, caps, opts...).Configure(defs...)
}
