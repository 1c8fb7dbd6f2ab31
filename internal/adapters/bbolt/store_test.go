package bbolt

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/jstree/internal/ports"
)

// newTestStore creates a temporary bbolt store for testing.
func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

// makeTestAnalysis creates a small project graph.
func makeTestAnalysis() *ports.ProjectAnalysis {
	return &ports.ProjectAnalysis{
		Project: "shop",
		Boxes: []ports.FileStructure{
			{
				Name:      "index.js",
				Path:      "index.js",
				Imports:   []string{"./cart", "express"},
				Functions: []string{"main"},
				Classes:   []string{},
			},
			{
				Name:      "cart.js",
				Path:      "src/cart.js",
				Imports:   []string{"lodash"},
				Functions: []string{"addItem", "Cart.total"},
				Classes:   []string{"Cart"},
			},
			{
				Name:      "api.js",
				Path:      "src/api.js",
				Imports:   []string{"express", "lodash"},
				Functions: []string{"main"},
				Classes:   []string{},
				HasError:  true,
			},
		},
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveAnalysis(makeTestAnalysis()))

	got, err := store.LoadAnalysis("shop")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "shop", got.Project)
	require.Len(t, got.Boxes, 3)

	// Loaded in path order
	assert.Equal(t, "index.js", got.Boxes[0].Path)
	assert.Equal(t, "src/api.js", got.Boxes[1].Path)
	assert.Equal(t, "src/cart.js", got.Boxes[2].Path)
	assert.True(t, got.Boxes[1].HasError)
	assert.Equal(t, []string{"Cart"}, got.Boxes[2].Classes)
}

func TestStore_LoadUnknownProject(t *testing.T) {
	store, _ := newTestStore(t)
	got, err := store.LoadAnalysis("nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_ImportersAndDeclarers(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveAnalysis(makeTestAnalysis()))

	importers, err := store.Importers("shop", "express")
	require.NoError(t, err)
	assert.Equal(t, []string{"index.js", "src/api.js"}, importers)

	importers, err = store.Importers("shop", "lodash")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/api.js", "src/cart.js"}, importers)

	declarers, err := store.Declarers("shop", "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"index.js", "src/api.js"}, declarers)

	none, err := store.Importers("shop", "react")
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none)

	none, err = store.Importers("other", "express")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_SaveReplacesProject(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveAnalysis(makeTestAnalysis()))

	require.NoError(t, store.SaveAnalysis(&ports.ProjectAnalysis{
		Project: "shop",
		Boxes: []ports.FileStructure{
			{Name: "only.js", Path: "only.js", Imports: []string{"react"}},
		},
	}))

	got, err := store.LoadAnalysis("shop")
	require.NoError(t, err)
	require.Len(t, got.Boxes, 1)

	importers, err := store.Importers("shop", "express")
	require.NoError(t, err)
	assert.Empty(t, importers, "stale index entries must be gone")
}

func TestStore_PutFileUpdatesIndexes(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveAnalysis(makeTestAnalysis()))

	// api.js drops express and picks up axios
	require.NoError(t, store.PutFile("shop", ports.FileStructure{
		Name:    "api.js",
		Path:    "src/api.js",
		Imports: []string{"axios", "lodash"},
	}))

	importers, err := store.Importers("shop", "express")
	require.NoError(t, err)
	assert.Equal(t, []string{"index.js"}, importers)

	importers, err = store.Importers("shop", "axios")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/api.js"}, importers)

	declarers, err := store.Declarers("shop", "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"index.js"}, declarers)
}

func TestStore_PutFileNewProject(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.PutFile("fresh", ports.FileStructure{Path: "a.js", Imports: []string{"x", ""}}))

	got, err := store.LoadAnalysis("fresh")
	require.NoError(t, err)
	require.Len(t, got.Boxes, 1)

	importers, err := store.Importers("fresh", "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.js"}, importers)
}

func TestStore_PutFileRequiresPath(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Error(t, store.PutFile("p", ports.FileStructure{Name: "x.js"}))
}

func TestStore_DeleteFile(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveAnalysis(makeTestAnalysis()))

	require.NoError(t, store.DeleteFile("shop", "src/cart.js"))

	got, err := store.LoadAnalysis("shop")
	require.NoError(t, err)
	assert.Len(t, got.Boxes, 2)

	importers, err := store.Importers("shop", "lodash")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/api.js"}, importers)

	declarers, err := store.Declarers("shop", "Cart.total")
	require.NoError(t, err)
	assert.Empty(t, declarers)

	// Idempotent, including for unknown projects
	require.NoError(t, store.DeleteFile("shop", "src/cart.js"))
	require.NoError(t, store.DeleteFile("ghost", "x.js"))

	projects, err := store.Projects()
	require.NoError(t, err)
	assert.Equal(t, []string{"shop"}, projects, "deleting from unknown project must not create it")
}

func TestStore_ProjectsAndDeleteProject(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveAnalysis(makeTestAnalysis()))
	require.NoError(t, store.PutFile("blog", ports.FileStructure{Path: "post.js"}))

	projects, err := store.Projects()
	require.NoError(t, err)
	assert.Equal(t, []string{"blog", "shop"}, projects)

	require.NoError(t, store.DeleteProject("blog"))
	require.NoError(t, store.DeleteProject("blog"))

	projects, err = store.Projects()
	require.NoError(t, err)
	assert.Equal(t, []string{"shop"}, projects)
}

func TestStore_ClassDeclarers(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveAnalysis(makeTestAnalysis()))

	declarers, err := store.ClassDeclarers("shop", "Cart")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/cart.js"}, declarers)

	// Classes and functions are separate namespaces.
	declarers, err = store.Declarers("shop", "Cart")
	require.NoError(t, err)
	assert.Empty(t, declarers)

	require.NoError(t, store.PutFile("shop", ports.FileStructure{
		Name: "cart.js", Path: "src/cart.js", Classes: []string{"Basket"},
	}))
	declarers, err = store.ClassDeclarers("shop", "Cart")
	require.NoError(t, err)
	assert.Empty(t, declarers)
	declarers, err = store.ClassDeclarers("shop", "Basket")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/cart.js"}, declarers)

	require.NoError(t, store.DeleteFile("shop", "src/cart.js"))
	declarers, err = store.ClassDeclarers("shop", "Basket")
	require.NoError(t, err)
	assert.Empty(t, declarers)
}

func TestStore_DeleteDir(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.SaveAnalysis(makeTestAnalysis()))
	require.NoError(t, store.PutFile("shop", ports.FileStructure{
		Name: "util.js", Path: "srcx/util.js", Imports: []string{"lodash"},
	}))

	removed, err := store.DeleteDir("shop", "src")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/api.js", "src/cart.js"}, removed)

	got, err := store.LoadAnalysis("shop")
	require.NoError(t, err)
	require.Len(t, got.Boxes, 2)
	assert.Equal(t, "index.js", got.Boxes[0].Path)
	assert.Equal(t, "srcx/util.js", got.Boxes[1].Path, "sibling with a shared prefix survives")

	importers, err := store.Importers("shop", "lodash")
	require.NoError(t, err)
	assert.Equal(t, []string{"srcx/util.js"}, importers)
	classes, err := store.ClassDeclarers("shop", "Cart")
	require.NoError(t, err)
	assert.Empty(t, classes)

	// Trailing slash, unknown directories and unknown projects are fine.
	removed, err = store.DeleteDir("shop", "srcx/")
	require.NoError(t, err)
	assert.Equal(t, []string{"srcx/util.js"}, removed)
	removed, err = store.DeleteDir("shop", "nope")
	require.NoError(t, err)
	assert.Empty(t, removed)
	_, err = store.DeleteDir("ghost", "src")
	require.NoError(t, err)

	_, err = store.DeleteDir("shop", ".")
	assert.Error(t, err)
}

func TestStore_LockedByAnotherHandle(t *testing.T) {
	_, path := newTestStore(t)

	_, err := NewStore(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLocked))
}

func TestStore_SaveAnalysisRejectsInvalid(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Error(t, store.SaveAnalysis(nil))
	assert.Error(t, store.SaveAnalysis(&ports.ProjectAnalysis{}))
}

func TestStore_SurvivesReopen(t *testing.T) {
	store, path := newTestStore(t)
	require.NoError(t, store.SaveAnalysis(makeTestAnalysis()))
	require.NoError(t, store.Close())

	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, path, reopened.Path())

	importers, err := reopened.Importers("shop", "express")
	require.NoError(t, err)
	assert.Equal(t, []string{"index.js", "src/api.js"}, importers)
}

func TestStore_ConcurrentPutFile(t *testing.T) {
	store, _ := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := filepath.ToSlash(filepath.Join("src", string(rune('a'+i))+".js"))
			assert.NoError(t, store.PutFile("race", ports.FileStructure{Path: path, Imports: []string{"shared"}}))
		}(i)
	}
	wg.Wait()

	importers, err := store.Importers("race", "shared")
	require.NoError(t, err)
	assert.Len(t, importers, 20)
}
