//go:build lean

package treesitter

import tree_sitter "github.com/tree-sitter/go-tree-sitter"

// builtinLanguage has no grammars in lean builds.
// All grammar loading happens through the DynamicLoader.
func builtinLanguage(string) *tree_sitter.Language {
	return nil
}
