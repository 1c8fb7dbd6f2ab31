package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/corey/jstree/internal/ports"
)

// Sentinel errors returned by ReadTree and PrintTree.
var (
	ErrFileNotFound = ports.ErrFileNotFound
	ErrReadFailed   = ports.ErrReadFailed
	ErrParseFailed  = ports.ErrParseFailed
)

// ReadTree loads the file at path and parses its full contents with p.
// A missing path or a directory yields ErrFileNotFound without touching the
// parser. The file handle is released on every return path.
func ReadTree(p ports.Parser, path string) (ports.SyntaxTree, error) {
	source, err := readSource(path)
	if err != nil {
		return nil, err
	}
	tree, err := p.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParseFailed, path, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("%w: %s: parser returned no tree", ErrParseFailed, path)
	}
	return tree, nil
}

func readSource(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrReadFailed, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrFileNotFound, path)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrReadFailed, path, err)
	}
	defer f.Close()

	source, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadFailed, path, err)
	}
	return source, nil
}

// PrintTree parses path and writes a report of the tree to w:
//
//	Parsed file: <path>
//	Language: <language>
//	<s-expression>
//	Tree: <root kind>, <n> bytes, errors=<bool>
//
// A missing file writes "File not found: <path>" followed by
// "Parsed file: None" and returns ErrFileNotFound. The returned tree is owned
// by the caller.
func PrintTree(w io.Writer, p ports.Parser, path string) (ports.SyntaxTree, error) {
	tree, err := ReadTree(p, path)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			fmt.Fprintf(w, "File not found: %s\n", path)
			fmt.Fprintln(w, "Parsed file: None")
		}
		return nil, err
	}

	fmt.Fprintf(w, "Parsed file: %s\n", path)
	fmt.Fprintf(w, "Language: %s\n", p.Language())
	fmt.Fprintln(w, tree.Sexp())
	fmt.Fprintf(w, "Tree: %s, %d bytes, errors=%t\n", tree.RootKind(), len(tree.Source()), tree.HasError())
	return tree, nil
}

// Greeting is the fixed reply of the ping command.
func Greeting() string {
	return "helo"
}
