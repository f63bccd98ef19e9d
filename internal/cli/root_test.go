package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRootCmdRegistersEveryVerb(t *testing.T) {
	root := NewRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"match", "convert", "sync", "detect-encoding", "config", "cache", "generate-completion"} {
		assert.True(t, names[want], "missing verb %q", want)
	}
}

func TestNewConfigCmdRegistersSubcommands(t *testing.T) {
	root := NewRootCmd()
	for _, c := range root.Commands() {
		if c.Name() != "config" {
			continue
		}
		names := map[string]bool{}
		for _, sub := range c.Commands() {
			names[sub.Name()] = true
		}
		assert.True(t, names["get"])
		assert.True(t, names["set"])
		assert.True(t, names["list"])
		assert.True(t, names["reset"])
		return
	}
	t.Fatal("config command not found")
}
