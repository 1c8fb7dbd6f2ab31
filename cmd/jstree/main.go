// jstree prints the tree-sitter syntax tree of a JavaScript file and keeps a
// queryable graph of a project's functions, classes and imports.
package main

import (
	"fmt"
	"os"

	"github.com/corey/jstree/cmd/jstree/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		if code := cmd.ExitCode(err); code >= 0 {
			os.Exit(code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
