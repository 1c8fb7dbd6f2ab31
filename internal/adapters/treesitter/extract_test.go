//go:build !lean

package treesitter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extract(t *testing.T, src string) (imports, functions, classes []string, hasError bool) {
	t.Helper()
	p := newJSParser(t)
	tree, err := p.ParseTree([]byte(src))
	require.NoError(t, err)
	defer tree.Close()
	fs := Extract(tree)
	return fs.Imports, fs.Functions, fs.Classes, fs.HasError
}

func TestExtract_ImportsFunctionsClasses(t *testing.T) {
	imports, functions, classes, hasError := extract(t, `import a from "./a";
const b = require('b');
function f() {}
class C {
  m() {}
  static s() {}
}
`)
	assert.Equal(t, []string{"./a", "b"}, imports)
	assert.Equal(t, []string{"f", "C.m", "C.s"}, functions)
	assert.Equal(t, []string{"C"}, classes)
	assert.False(t, hasError)
}

func TestExtract_FunctionValuedVariables(t *testing.T) {
	_, functions, _, _ := extract(t, `const add = (a, b) => a + b;
let mul = function (a, b) { return a * b; };
var notAFunction = 42;
`)
	assert.Equal(t, []string{"add", "mul"}, functions)
}

func TestExtract_ExportedDeclarations(t *testing.T) {
	imports, functions, classes, _ := extract(t, `export { x } from './x.js';
export function main() {}
export class Service {
  run() {}
}
`)
	assert.Empty(t, imports, "re-exports are not imports")
	assert.Equal(t, []string{"main", "Service.run"}, functions)
	assert.Equal(t, []string{"Service"}, classes)
}

func TestExtract_DuplicateImportsCollapsed(t *testing.T) {
	imports, _, _, _ := extract(t, `import { a } from "lib";
import { b } from "lib";
const c = require("lib");
const d = require(name);
`)
	assert.Equal(t, []string{"lib"}, imports)
}

func TestExtract_EmptySource(t *testing.T) {
	imports, functions, classes, hasError := extract(t, "")
	assert.NotNil(t, imports)
	assert.Empty(t, imports)
	assert.Empty(t, functions)
	assert.Empty(t, classes)
	assert.False(t, hasError)
}

func TestAnalyzeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src", "app.js")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("import x from 'x';\nfunction start() {}\n"), 0644))

	fs, err := AnalyzeFile(newJSParser(t), path, filepath.Join("src", "app.js"))
	require.NoError(t, err)
	assert.Equal(t, "app.js", fs.Name)
	assert.Equal(t, "src/app.js", fs.Path)
	assert.Equal(t, []string{"x"}, fs.Imports)
	assert.Equal(t, []string{"start"}, fs.Functions)
}

func TestAnalyzeFile_Missing(t *testing.T) {
	_, err := AnalyzeFile(newJSParser(t), filepath.Join(t.TempDir(), "nope.js"), "nope.js")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
