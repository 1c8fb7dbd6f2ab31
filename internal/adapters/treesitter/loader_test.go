package treesitter

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestCSymbolName(t *testing.T) {
	assert.Equal(t, "tree_sitter_javascript", CSymbolName("javascript"))
	assert.Equal(t, "tree_sitter_c_sharp", CSymbolName("c-sharp"))
}

func TestLibExtension(t *testing.T) {
	ext := LibExtension()
	switch runtime.GOOS {
	case "darwin":
		assert.Equal(t, ".dylib", ext)
	default:
		assert.Equal(t, ".so", ext)
	}
}

func TestDefaultGrammarPaths(t *testing.T) {
	paths := DefaultGrammarPaths("/project/root")
	require.GreaterOrEqual(t, len(paths), 1)
	assert.Equal(t, filepath.Join("/project/root", ".jstree", "grammars"), paths[0])

	if len(paths) > 1 {
		home, _ := os.UserHomeDir()
		assert.Equal(t, filepath.Join(home, ".jstree", "grammars"), paths[1])
	}
}

func TestDefaultGrammarPaths_EmptyRoot(t *testing.T) {
	paths := DefaultGrammarPaths("")
	if home, err := os.UserHomeDir(); err == nil {
		require.Equal(t, 1, len(paths))
		assert.Equal(t, filepath.Join(home, ".jstree", "grammars"), paths[0])
	}
}

func TestDynamicLoader_LoadGrammar_NotFound(t *testing.T) {
	dl := NewDynamicLoader([]string{"/nonexistent/path"})
	_, err := dl.LoadGrammar("javascript")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found in search paths")
}

func TestDynamicLoader_GrammarPath(t *testing.T) {
	dir := t.TempDir()
	soPath := filepath.Join(dir, "javascript"+LibExtension())
	touch(t, soPath)

	dl := NewDynamicLoader([]string{dir})
	assert.Equal(t, soPath, dl.GrammarPath("javascript"))
	assert.Equal(t, "", dl.GrammarPath("typescript"))
}

func TestDynamicLoader_GrammarPath_IgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "javascript"+LibExtension()), 0755))

	dl := NewDynamicLoader([]string{dir})
	assert.Equal(t, "", dl.GrammarPath("javascript"))
}

func TestDynamicLoader_SearchPathPriority(t *testing.T) {
	dir1 := t.TempDir()
	dir2 := t.TempDir()
	path1 := filepath.Join(dir1, "javascript"+LibExtension())
	touch(t, path1)
	touch(t, filepath.Join(dir2, "javascript"+LibExtension()))

	dl := NewDynamicLoader([]string{dir1, dir2})
	assert.Equal(t, path1, dl.GrammarPath("javascript"))
}

func TestDynamicLoader_Close(t *testing.T) {
	dl := NewDynamicLoader([]string{"/tmp"})
	dl.Close()
	assert.Empty(t, dl.loaded)
	assert.Nil(t, dl.handles)
}

func TestDynamicLoader_SearchPaths(t *testing.T) {
	paths := []string{"/a", "/b"}
	dl := NewDynamicLoader(paths)
	assert.Equal(t, paths, dl.SearchPaths())
}
