package ports

// Parser turns JavaScript source bytes into a syntax tree.
// The concrete implementation (tree-sitter) lives in internal/adapters/treesitter.
// A Parser value is configured for exactly one language at construction time and
// carries no state between Parse calls.
type Parser interface {
	// Language returns the grammar name this parser was built for (e.g. "javascript").
	Language() string

	// Parse parses the full source and returns a tree owned by the caller.
	// Malformed input is not an error: the grammar recovers and the tree
	// reports it through HasError. Empty input yields a bare root node.
	Parse(source []byte) (SyntaxTree, error)

	// SupportsExtension returns true if files with this extension (leading dot
	// included, e.g. ".js") are written in the parser's language.
	SupportsExtension(ext string) bool
}

// SyntaxTree is an opaque parse result. It is never mutated after Parse returns.
// Callers must Close it once they are done rendering or walking it.
type SyntaxTree interface {
	// Sexp renders the root node in the grammar's canonical s-expression form,
	// e.g. "(program (expression_statement (number)))".
	Sexp() string

	// RootKind returns the root node type ("program" for JavaScript).
	RootKind() string

	// HasError reports whether the tree contains ERROR or MISSING nodes.
	HasError() bool

	// Source returns the bytes the tree was parsed from.
	Source() []byte

	// Close releases the underlying tree. Safe to call more than once.
	Close()
}

// FileAnalyzer reads, parses and summarizes one source file. Each value is
// owned by a single goroutine; concurrent callers create one per worker.
type FileAnalyzer interface {
	// AnalyzeFile summarizes the file at path. rel is the project-relative
	// path recorded in the result.
	AnalyzeFile(path, rel string) (FileStructure, error)

	// SupportsExtension reports whether files with this extension are analyzed.
	SupportsExtension(ext string) bool
}
