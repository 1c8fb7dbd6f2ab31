//go:build lean

package treesitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParser_MissingGrammarNamesSearchPaths(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()

	_, err := NewParser(LanguageJavaScript, a, b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "searched "+a+", "+b)
	assert.Contains(t, err.Error(), "shared library not found")
}
