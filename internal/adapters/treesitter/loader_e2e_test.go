//go:build !lean

package treesitter

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDynamicLoader_LoadAndParse_EndToEnd compiles the JavaScript grammar to a
// shared library, loads it via purego, and verifies it renders the same tree as
// the compiled-in grammar.
func TestDynamicLoader_LoadAndParse_EndToEnd(t *testing.T) {
	goPath := os.Getenv("GOPATH")
	if goPath == "" {
		home, err := os.UserHomeDir()
		require.NoError(t, err)
		goPath = filepath.Join(home, "go")
	}

	jsSrc := filepath.Join(goPath, "pkg", "mod", "github.com", "tree-sitter",
		"tree-sitter-javascript@v0.23.1", "src")
	parserC := filepath.Join(jsSrc, "parser.c")
	scannerC := filepath.Join(jsSrc, "scanner.c")

	if _, err := os.Stat(parserC); err != nil {
		t.Skipf("JavaScript grammar source not in module cache: %v", err)
	}
	if _, err := exec.LookPath("gcc"); err != nil {
		t.Skip("gcc not available")
	}

	dir := t.TempDir()
	soPath := filepath.Join(dir, "javascript"+LibExtension())
	cmd := exec.Command("gcc", "-shared", "-fPIC", "-I"+jsSrc, "-o", soPath, parserC, scannerC)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "gcc failed: %s", out)

	loader := NewDynamicLoader([]string{dir})
	lang, err := loader.LoadGrammar(LanguageJavaScript)
	require.NoError(t, err)
	dynamic := &Parser{name: LanguageJavaScript, language: lang, loader: loader}
	assert.True(t, dynamic.Dynamic())

	builtin, err := NewParser(LanguageJavaScript)
	require.NoError(t, err)
	assert.False(t, builtin.Dynamic())

	source := []byte("import fs from 'fs';\nfunction read(p) { return fs.readFileSync(p); }\n")

	dynTree, err := dynamic.Parse(source)
	require.NoError(t, err)
	defer dynTree.Close()
	builtinTree, err := builtin.Parse(source)
	require.NoError(t, err)
	defer builtinTree.Close()

	assert.Equal(t, builtinTree.Sexp(), dynTree.Sexp())
}
