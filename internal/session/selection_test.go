package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ppiankov/benchforge/internal/target"
)

func catalog() []target.Target {
	return []target.Target{
		{ID: "cpp", Name: "C++", Command: "./bench", Build: "make", Compiled: true},
		{ID: "go", Name: "Go", Command: "./bench", Build: "go build", Compiled: true},
		{ID: "node", Name: "Node.js", Command: "node index.js"},
		{ID: "python", Name: "Python", Command: "python3 main.py"},
	}
}

func idsOf(ts []target.Target) []string {
	var out []string
	for _, t := range ts {
		out = append(out, t.ID)
	}
	return out
}

func TestSelectTargets(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single index", "3", []string{"node"}},
		{"indices keep registry order", "4, 1", []string{"cpp", "python"}},
		{"duplicates collapse", "2,2,go", []string{"go"}},
		{"ids", "python,CPP", []string{"cpp", "python"}},
		{"all keyword", "all", []string{"cpp", "go", "node", "python"}},
		{"all index", "5", []string{"cpp", "go", "node", "python"}},
		{"compiled keyword", "compiled", []string{"cpp", "go"}},
		{"compiled index", "6", []string{"cpp", "go"}},
		{"compiled plus id", "compiled,node", []string{"cpp", "go", "node"}},
		{"unknown ignored", "0, 9, ruby, 1", []string{"cpp"}},
		{"empty", "", nil},
		{"garbage", "what", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, idsOf(SelectTargets(tt.input, catalog())))
		})
	}
}

func TestSelectTargets_DoesNotAliasInput(t *testing.T) {
	avail := catalog()
	got := SelectTargets("all", avail)
	got[0].Command = "mutated"
	assert.Equal(t, "./bench", avail[0].Command)
}

func TestSelectModes(t *testing.T) {
	all := target.AllModes()
	tests := []struct {
		input string
		want  []target.Mode
	}{
		{"1", []target.Mode{target.ModeCPU}},
		{"2", []target.Mode{target.ModeIO}},
		{"3", []target.Mode{target.ModeHeavyIO}},
		{"4", all},
		{"all", all},
		{"heavy-io", []target.Mode{target.ModeHeavyIO}},
		{"io,cpu", []target.Mode{target.ModeCPU, target.ModeIO}},
		{"", []target.Mode{target.ModeCPU}},
		{"7", []target.Mode{target.ModeCPU}},
		{"gpu", []target.Mode{target.ModeCPU}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SelectModes(tt.input), "SelectModes(%q)", tt.input)
	}
}

func TestConfirmed(t *testing.T) {
	for _, yes := range []string{"y", "Y", "yes", " YES "} {
		assert.True(t, Confirmed(yes), yes)
	}
	for _, no := range []string{"", "n", "no", "yep", "1"} {
		assert.False(t, Confirmed(no), no)
	}
}
