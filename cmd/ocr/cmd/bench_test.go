package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBenchCommand(t *testing.T) {
	assert.NotNil(t, benchCmd)
	assert.True(t, strings.HasPrefix(benchCmd.Use, "bench"))
	assert.NotEmpty(t, benchCmd.Short)
	assert.NotNil(t, benchCmd.Flags().Lookup("duration"))
}

func TestBenchCommandHelp(t *testing.T) {
	buf := new(bytes.Buffer)
	benchCmd.SetOut(buf)
	benchCmd.SetErr(buf)
	err := benchCmd.Help()
	require.NoError(t, err)
	output := strings.TrimSpace(buf.String())
	assert.Contains(t, output, "Usage:")
}

func TestBenchCommandWithNonExistentFile(t *testing.T) {
	err := runBenchCmd(benchCmd, []string{"/non/existent/file.jpg"})
	assert.Error(t, err)
}
