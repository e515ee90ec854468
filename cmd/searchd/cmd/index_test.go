package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexCmd_HasSubcommands(t *testing.T) {
	// Given: the index command group
	cmd := newIndexCmd()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}

	// Then: create, delete, stats all exist
	for _, want := range []string{"create", "delete", "stats"} {
		assert.Contains(t, names, want)
	}
}

func TestIndexCreateCmd_RequiresUID(t *testing.T) {
	// Given: the index create command
	cmd := newIndexCreateCmd()

	// When: run without a uid argument
	err := cmd.Execute()

	// Then: it reports a missing argument
	assert.Error(t, err)
}
