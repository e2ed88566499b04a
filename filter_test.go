package roboguice_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mstian06/roboguice"
)

func TestShouldBind(t *testing.T) {
	tests := []struct {
		name     string
		registry roboguice.UsageRegistry
		typeName string
		want     bool
	}{
		{name: "empty registry allows everything", registry: roboguice.NewUsageRegistry(), typeName: "ServiceY", want: true},
		{name: "member is bound", registry: roboguice.NewUsageRegistry("ServiceX"), typeName: "ServiceX", want: true},
		{name: "non-member is filtered", registry: roboguice.NewUsageRegistry("ServiceX"), typeName: "ServiceY", want: false},
		{name: "unknown registry allows everything", registry: roboguice.UnknownUsageRegistry(errors.New("scan failed")), typeName: "ServiceY", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				assert.Equal(t, tt.want, roboguice.ShouldBind(tt.typeName, tt.registry), "decision must be stable")
			}
		})
	}
}

func TestEmptyRegistryPassesAnyName(t *testing.T) {
	empty := roboguice.NewUsageRegistry()
	for _, name := range []string{"", "ServiceX", "example.com/app.Anything", "*example.com/app.Ptr"} {
		assert.True(t, roboguice.ShouldBind(name, empty), name)
	}
	assert.False(t, empty.Filtering())
	assert.False(t, empty.Unknown())
}

func TestUsageRegistry(t *testing.T) {
	r := roboguice.NewUsageRegistry("b", "a", "a")
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"a", "b"}, r.Names())
	assert.True(t, r.Contains("a"))
	assert.False(t, r.Contains("c"))
	assert.True(t, r.Filtering())
	assert.NoError(t, r.Cause())

	cause := errors.New("scanner crashed")
	unknown := roboguice.UnknownUsageRegistry(cause)
	assert.True(t, unknown.Unknown())
	assert.False(t, unknown.Filtering())
	assert.ErrorIs(t, unknown.Cause(), cause)
	assert.Zero(t, unknown.Len())
}
