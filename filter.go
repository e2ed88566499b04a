package roboguice

import "sort"

// UsageRegistry is the set of type names the application is known to request.
// An empty registry disables filtering. An unknown registry records that the
// usage scan failed; it also allows everything, but says so.
type UsageRegistry struct {
	names   map[string]struct{}
	unknown bool
	cause   error
}

// NewUsageRegistry builds a known registry from names.
func NewUsageRegistry(names ...string) UsageRegistry {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return UsageRegistry{names: set}
}

// UnknownUsageRegistry is the allow-all fallback used when the usage scan failed with cause.
func UnknownUsageRegistry(cause error) UsageRegistry {
	return UsageRegistry{unknown: true, cause: cause}
}

// Unknown reports whether the registry is the fallback state.
func (r UsageRegistry) Unknown() bool {
	return r.unknown
}

// Cause returns the usage scan failure behind an unknown registry.
func (r UsageRegistry) Cause() error {
	return r.cause
}

// Filtering reports whether the registry excludes anything at all.
func (r UsageRegistry) Filtering() bool {
	return !r.unknown && len(r.names) > 0
}

// Contains reports whether name is a known-used type.
func (r UsageRegistry) Contains(name string) bool {
	_, ok := r.names[name]
	return ok
}

func (r UsageRegistry) Len() int {
	return len(r.names)
}

// Names returns the registry contents, sorted.
func (r UsageRegistry) Names() []string {
	out := make([]string, 0, len(r.names))
	for n := range r.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ShouldBind reports whether a binding for typeName should be registered.
func ShouldBind(typeName string, registry UsageRegistry) bool {
	return !registry.Filtering() || registry.Contains(typeName)
}
