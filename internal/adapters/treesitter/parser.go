// Package treesitter implements JavaScript parsing using the tree-sitter grammar.
// It turns source bytes into syntax trees, renders them as s-expressions, and
// extracts declaration summaries (functions, classes, imports) from them.
//
// The grammar is compiled in via CGo by default. Lean builds (-tags lean)
// load it at runtime from a shared library via purego.
package treesitter

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/corey/jstree/internal/ports"
)

// LanguageJavaScript is the only grammar this package serves.
const LanguageJavaScript = "javascript"

// ErrUnsupportedLanguage is returned by NewParser for any language other than JavaScript.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// languageAliases maps accepted spellings to the canonical grammar name.
var languageAliases = map[string]string{
	"javascript": LanguageJavaScript,
	"js":         LanguageJavaScript,
}

// javascriptExtensions lists file extensions parsed with the JavaScript grammar.
var javascriptExtensions = map[string]bool{
	".js":  true,
	".mjs": true,
	".cjs": true,
	".jsx": true,
}

// Parser parses source bytes with a single, fixed grammar.
// Parse calls are independent: no tree is reused between them.
type Parser struct {
	name     string
	language *tree_sitter.Language
	loader   *DynamicLoader // non-nil only when the grammar came from a shared library
}

// NewParser returns a parser configured for the named language.
// The compiled-in grammar is preferred; when none is compiled in, the grammar
// is loaded from a shared library found in grammarPaths.
func NewParser(language string, grammarPaths ...string) (*Parser, error) {
	name, ok := languageAliases[strings.ToLower(strings.TrimSpace(language))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}

	if lang := builtinLanguage(name); lang != nil {
		return &Parser{name: name, language: lang}, nil
	}

	loader := NewDynamicLoader(grammarPaths)
	lang, err := loader.LoadGrammar(name)
	if err != nil {
		return nil, fmt.Errorf("no compiled-in grammar for %s (searched %s): %w",
			name, strings.Join(loader.SearchPaths(), ", "), err)
	}
	return &Parser{name: name, language: lang, loader: loader}, nil
}

// Language returns the canonical grammar name.
func (p *Parser) Language() string {
	return p.name
}

// Parse parses source into a new tree. Empty source is valid and yields a bare
// root node. The returned tree must be closed by the caller.
func (p *Parser) Parse(source []byte) (ports.SyntaxTree, error) {
	return p.ParseTree(source)
}

// ParseTree is Parse with the concrete tree type, for callers that walk nodes.
func (p *Parser) ParseTree(source []byte) (*Tree, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(p.language); err != nil {
		return nil, fmt.Errorf("set language %s: %w", p.name, err)
	}

	if source == nil {
		source = []byte{}
	}
	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("%s parser returned no tree", p.name)
	}
	return newTree(tree, source), nil
}

// SupportsExtension returns true if the parser recognizes this file extension.
func (p *Parser) SupportsExtension(ext string) bool {
	return javascriptExtensions[strings.ToLower(ext)]
}

// SupportedExtensions returns all registered file extensions, sorted.
func (p *Parser) SupportedExtensions() []string {
	exts := make([]string, 0, len(javascriptExtensions))
	for ext := range javascriptExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Dynamic reports whether the grammar was loaded from a shared library.
func (p *Parser) Dynamic() bool {
	return p.loader != nil
}
