package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)
	require.NotNil(t, c)

	_, err = NewCollector(reg)
	assert.Error(t, err, "registering twice on one registry should fail")
}

func TestCollectorRecords(t *testing.T) {
	c, err := NewCollector(prometheus.NewRegistry())
	require.NoError(t, err)

	c.ScopeHit()
	c.ScopeMiss()
	c.ScopeMiss()
	assert.Equal(t, 1.0, testutil.ToFloat64(c.scopeCache.WithLabelValues(ResultHit)))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.scopeCache.WithLabelValues(ResultMiss)))

	c.ContextEntered()
	c.ContextEntered()
	c.ContextExited()
	assert.Equal(t, 1.0, testutil.ToFloat64(c.activeContexts))

	c.SetBindings(3, 2)
	assert.Equal(t, 3.0, testutil.ToFloat64(c.bindings.WithLabelValues(StateActive)))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.bindings.WithLabelValues(StateNoOp)))

	c.Resolution(nil)
	c.Resolution(errors.New("boom"))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.resolutions.WithLabelValues(ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.resolutions.WithLabelValues(ResultError)))

	c.SetUsageUnknown(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.usageUnknown))
	c.SetUsageUnknown(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(c.usageUnknown))

	c.ShutdownFailed()
	assert.Equal(t, 1.0, testutil.ToFloat64(c.shutdownErrors))
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ScopeHit()
		c.ScopeMiss()
		c.ContextEntered()
		c.ContextExited()
		c.SetBindings(1, 1)
		c.Resolution(nil)
		c.SetUsageUnknown(true)
		c.ShutdownFailed()
	})
}
