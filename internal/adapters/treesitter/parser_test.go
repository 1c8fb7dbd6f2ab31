//go:build !lean

package treesitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser(LanguageJavaScript)
	require.NoError(t, err)
	return p
}

func TestNewParser_JavaScript(t *testing.T) {
	p := newJSParser(t)
	assert.Equal(t, "javascript", p.Language())
	assert.False(t, p.Dynamic())
}

func TestNewParser_Alias(t *testing.T) {
	p, err := NewParser(" JS ")
	require.NoError(t, err)
	assert.Equal(t, LanguageJavaScript, p.Language())
}

func TestNewParser_Unsupported(t *testing.T) {
	for _, lang := range []string{"python", "typescript", ""} {
		t.Run(lang, func(t *testing.T) {
			p, err := NewParser(lang)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, ErrUnsupportedLanguage)
		})
	}
}

func TestParser_ParseRendersProgram(t *testing.T) {
	p := newJSParser(t)

	tree, err := p.Parse([]byte("const x = 1;"))
	require.NoError(t, err)
	defer tree.Close()

	sexp := tree.Sexp()
	assert.True(t, strings.HasPrefix(sexp, "(program"), sexp)
	assert.Equal(t, 1, strings.Count(sexp, "(lexical_declaration"), "one top-level declaration")
	assert.Contains(t, sexp, "(variable_declarator")
	assert.Contains(t, sexp, "(number)")
	assert.Equal(t, "program", tree.RootKind())
	assert.False(t, tree.HasError())
	assert.Equal(t, []byte("const x = 1;"), tree.Source())
}

func TestParser_ParseEmptySource(t *testing.T) {
	p := newJSParser(t)

	for _, src := range [][]byte{nil, {}} {
		tree, err := p.Parse(src)
		require.NoError(t, err)
		assert.Equal(t, "(program)", tree.Sexp())
		assert.False(t, tree.HasError())
		tree.Close()
	}
}

func TestParser_ParseIsRepeatable(t *testing.T) {
	p := newJSParser(t)
	src := []byte("let a = [1, 2].map((n) => n * 2);\nconsole.log(a);\n")

	first, err := p.Parse(src)
	require.NoError(t, err)
	defer first.Close()
	second, err := p.Parse(src)
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, first.Sexp(), second.Sexp())
}

func TestParser_MalformedInputRecovers(t *testing.T) {
	p := newJSParser(t)

	tree, err := p.Parse([]byte("function (\n"))
	require.NoError(t, err)
	defer tree.Close()

	assert.True(t, tree.HasError())
	assert.True(t, strings.HasPrefix(tree.Sexp(), "(program"))
}

func TestTree_CloseIsIdempotent(t *testing.T) {
	p := newJSParser(t)
	tree, err := p.Parse([]byte("1;"))
	require.NoError(t, err)
	tree.Close()
	tree.Close()
}

func TestParser_SupportsExtension(t *testing.T) {
	p := newJSParser(t)

	for _, ext := range []string{".js", ".JS", ".mjs", ".cjs", ".jsx"} {
		assert.True(t, p.SupportsExtension(ext), ext)
	}
	for _, ext := range []string{".ts", ".py", "", "js"} {
		assert.False(t, p.SupportsExtension(ext), ext)
	}
	assert.Equal(t, []string{".cjs", ".js", ".jsx", ".mjs"}, p.SupportedExtensions())
}
