package treesitter

import (
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Tree wraps a tree-sitter tree together with the bytes it was parsed from.
// It implements ports.SyntaxTree.
type Tree struct {
	tree      *tree_sitter.Tree
	source    []byte
	closeOnce sync.Once
}

func newTree(t *tree_sitter.Tree, source []byte) *Tree {
	return &Tree{tree: t, source: source}
}

// RootNode returns the root of the tree.
func (t *Tree) RootNode() *tree_sitter.Node {
	return t.tree.RootNode()
}

// Sexp renders the root node as an s-expression.
func (t *Tree) Sexp() string {
	return t.RootNode().ToSexp()
}

// RootKind returns the root node type.
func (t *Tree) RootKind() string {
	return t.RootNode().Kind()
}

// HasError reports whether the parse needed error recovery anywhere.
func (t *Tree) HasError() bool {
	return t.RootNode().HasError()
}

// Source returns the parsed bytes.
func (t *Tree) Source() []byte {
	return t.source
}

// Close frees the C tree. Idempotent.
func (t *Tree) Close() {
	t.closeOnce.Do(func() {
		t.tree.Close()
	})
}
