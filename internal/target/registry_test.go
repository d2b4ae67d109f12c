package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_Default(t *testing.T) {
	reg, err := NewRegistry(Default())
	require.NoError(t, err)

	assert.Equal(t, []string{"cpp", "rust", "go", "csharp", "node", "python", "ruby"}, reg.IDs())
	assert.Len(t, Compiled(reg.List()), 4)

	node, ok := reg.Get("node")
	require.True(t, ok)
	assert.False(t, node.HasBuild())
}

func TestNewRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		targets []Target
	}{
		{"empty id", []Target{{Command: "x"}}},
		{"empty command", []Target{{ID: "a"}}},
		{"duplicate", []Target{{ID: "a", Command: "x"}, {ID: "a", Command: "y"}}},
		{"path id", []Target{{ID: "a/b", Command: "x"}}},
		{"dot id", []Target{{ID: "..", Command: "x"}}},
		{"unknown color", []Target{{ID: "a", Command: "x", Color: "orange"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.targets)
			assert.Error(t, err)
		})
	}
}

func TestNewRegistry_NameDefaultsToID(t *testing.T) {
	reg, err := NewRegistry([]Target{{ID: "zig", Command: "./bench"}})
	require.NoError(t, err)

	zig, _ := reg.Get("zig")
	assert.Equal(t, "zig", zig.Name)
}

func TestRegistry_ListIsCopy(t *testing.T) {
	reg, err := NewRegistry([]Target{{ID: "a", Command: "x"}})
	require.NoError(t, err)

	list := reg.List()
	list[0].Command = "mutated"

	a, _ := reg.Get("a")
	assert.Equal(t, "x", a.Command)
}
