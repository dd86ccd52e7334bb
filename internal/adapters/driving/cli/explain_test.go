package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplainCmd_Use(t *testing.T) {
	assert.Equal(t, "explain [query...]", explainCmd.Use)
}

func TestExplainCmd_RequiresQuery(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"explain"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestExplainCmd_PrintsParse(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"explain", `"foo bar" -baz format:json OR term`})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Boolean mode:   OR")
	assert.Contains(t, out, `"foo bar"`)
	assert.Contains(t, out, "format:json")
	assert.Contains(t, out, `"baz"`)
	assert.Contains(t, out, "Keyword query:")
	assert.Contains(t, out, "Semantic query:")
}

func TestExplainCmd_EmptyProjections(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	// A filter-only query has no keyword or semantic text.
	rootCmd.SetArgs([]string{"explain", "format:json"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Keyword query:  (none)")
	assert.Contains(t, buf.String(), "Semantic query: (none)")
}

func TestExplainCmd_JSONOutput(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"explain", "--json", "hello world"})
	defer func() {
		rootCmd.SetArgs(nil)
		explainJSON = false
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "\"booleanOp\": \"AND\"")
	assert.Contains(t, buf.String(), "\"semanticQuery\": \"hello world\"")
}
