package roboguice

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mstian06/roboguice/config"
	"github.com/mstian06/roboguice/logging"
	"github.com/mstian06/roboguice/metrics"
)

// LoadUsageRegistry builds the usage registry described by cfg. A registry
// file that cannot be read yields UnknownUsageRegistry, which allows every
// binding and reports the failure through Cause.
func LoadUsageRegistry(cfg config.UsageConfig, log logr.Logger) UsageRegistry {
	if cfg.Disabled || cfg.RegistryFile == "" {
		return NewUsageRegistry()
	}
	names, err := config.ReadUsageFile(cfg.RegistryFile)
	if err != nil {
		log.Error(err, "usage registry unavailable, binding every type", "file", cfg.RegistryFile)
		return UnknownUsageRegistry(err)
	}
	return NewUsageRegistry(names...)
}

// LookupFromConfig builds a lookup registry from configured type name to key pairs.
func LookupFromConfig(entries map[string]string) *LookupRegistry {
	keys := make(map[TypeID]LookupKey, len(entries))
	for typeName, key := range entries {
		keys[TypeID(typeName)] = LookupKey(key)
	}
	return NewLookupRegistry(keys)
}

// FromConfig is the single initialization point: it builds the logger, the
// metrics collector (when enabled and reg is non-nil), the usage and lookup
// registries, and returns an assembler ready to Configure. The assembler plans
// DefaultDefinitions ahead of whatever it is given.
func FromConfig(cfg *config.Config, caps Capabilities, reg prometheus.Registerer) (*Assembler, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	log, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	var collector *metrics.Collector
	if cfg.Metrics.Enabled && reg != nil {
		collector, err = metrics.NewCollector(reg)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	usage := LoadUsageRegistry(cfg.Usage, log)
	lookup := LookupFromConfig(cfg.Lookup)

	return NewAssembler(usage, lookup, caps, WithLogger(log), WithMetrics(collector), WithDefaults()), nil
}
