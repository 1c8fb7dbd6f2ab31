package treesitter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/corey/jstree/internal/ports"
)

// Extract walks a JavaScript tree and collects declared functions, classes and
// import specifiers in source order. Name and Path are left for the caller.
func Extract(tree *Tree) ports.FileStructure {
	x := &extractor{
		source:    tree.Source(),
		imports:   []string{},
		functions: []string{},
		classes:   []string{},
	}
	x.walk(tree.RootNode())
	return ports.FileStructure{
		Imports:   x.imports,
		Functions: x.functions,
		Classes:   x.classes,
		HasError:  tree.HasError(),
	}
}

// AnalyzeFile reads, parses and extracts one file. rel is the slash-separated
// path recorded in the result.
func AnalyzeFile(p *Parser, path, rel string) (ports.FileStructure, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return ports.FileStructure{}, fmt.Errorf("read %s: %w", path, err)
	}
	tree, err := p.ParseTree(source)
	if err != nil {
		return ports.FileStructure{}, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	fs := Extract(tree)
	fs.Name = filepath.Base(path)
	fs.Path = filepath.ToSlash(rel)
	return fs, nil
}

type extractor struct {
	source    []byte
	imports   []string
	functions []string
	classes   []string
}

func (x *extractor) walk(n *tree_sitter.Node) {
	switch n.Kind() {
	case "function_declaration", "generator_function_declaration":
		if name := n.ChildByFieldName("name"); name != nil {
			x.functions = appendUnique(x.functions, nodeText(name, x.source))
		}
	case "variable_declarator":
		name := n.ChildByFieldName("name")
		value := n.ChildByFieldName("value")
		if name != nil && value != nil && name.Kind() == "identifier" && isFunctionValue(value.Kind()) {
			x.functions = appendUnique(x.functions, nodeText(name, x.source))
		}
	case "class_declaration":
		x.class(n)
	case "import_statement":
		if src := n.ChildByFieldName("source"); src != nil {
			x.imports = appendUnique(x.imports, unquote(nodeText(src, x.source)))
		}
	case "call_expression":
		if spec, ok := x.requireSpec(n); ok {
			x.imports = appendUnique(x.imports, spec)
		}
	}

	for i := uint(0); i < uint(n.ChildCount()); i++ {
		x.walk(n.Child(i))
	}
}

// class records the class name and its methods as Class.method.
func (x *extractor) class(n *tree_sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, x.source)
	x.classes = appendUnique(x.classes, name)

	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := uint(0); i < uint(body.ChildCount()); i++ {
		m := body.Child(i)
		if m.Kind() != "method_definition" {
			continue
		}
		if mn := m.ChildByFieldName("name"); mn != nil {
			x.functions = appendUnique(x.functions, name+"."+nodeText(mn, x.source))
		}
	}
}

// requireSpec matches require("spec") calls with a string literal argument.
func (x *extractor) requireSpec(n *tree_sitter.Node) (string, bool) {
	fn := n.ChildByFieldName("function")
	if fn == nil || fn.Kind() != "identifier" || nodeText(fn, x.source) != "require" {
		return "", false
	}
	args := n.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return "", false
	}
	first := args.NamedChild(0)
	if first.Kind() != "string" {
		return "", false
	}
	return unquote(nodeText(first, x.source)), true
}

func isFunctionValue(kind string) bool {
	switch kind {
	case "arrow_function", "function_expression", "function", "generator_function":
		return true
	}
	return false
}

// nodeText returns the source text for a node.
func nodeText(n *tree_sitter.Node, source []byte) string {
	return string(source[n.StartByte():n.EndByte()])
}

// unquote strips the surrounding quotes from a string literal.
func unquote(s string) string {
	return strings.Trim(s, "'\"`")
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

// AnalyzeFile implements ports.FileAnalyzer.
func (p *Parser) AnalyzeFile(path, rel string) (ports.FileStructure, error) {
	return AnalyzeFile(p, path, rel)
}
