//go:build !lean

package treesitter

// This file compiles the JavaScript grammar into the binary. It is included in
// the default build but excluded with -tags lean, which produces a binary that
// loads the grammar dynamically from a .so/.dylib file.

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

// builtinLanguage returns the compiled-in grammar for a canonical language name.
func builtinLanguage(name string) *tree_sitter.Language {
	if name != LanguageJavaScript {
		return nil
	}
	return tree_sitter.NewLanguage(ts_javascript.Language())
}
