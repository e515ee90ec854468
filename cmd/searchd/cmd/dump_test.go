package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpCmd_HasCreateSubcommand(t *testing.T) {
	// Given: the dump command group
	cmd := newDumpCmd()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}

	// Then: create exists
	assert.Contains(t, names, "create")
}

func TestDumpCreateCmd_ShowsHelp(t *testing.T) {
	// Given: the dump create command
	cmd := newDumpCreateCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	// When: requesting help
	err := cmd.Execute()

	// Then: the JSON-vs-binary distinction is explained
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "JSON")
}
