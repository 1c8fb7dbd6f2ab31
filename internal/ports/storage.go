// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

// FileStructure is the declaration summary of one JavaScript file.
type FileStructure struct {
	Name      string   `json:"name"`      // base name, e.g. "index.js"
	Path      string   `json:"path"`      // slash-separated, relative to the project root
	Imports   []string `json:"imports"`   // module specifiers, quotes stripped
	Functions []string `json:"functions"` // declared function names; methods as Class.method
	Classes   []string `json:"classes"`   // declared class names
	HasError  bool     `json:"has_error"` // tree contains ERROR/MISSING nodes
}

// ProjectAnalysis is the result of analyzing every source file under a root.
type ProjectAnalysis struct {
	Project string          `json:"project"` // base name of the project root
	Boxes   []FileStructure `json:"boxes"`   // sorted by Path
}

// Storage persists analyzed files and answers graph queries over them.
// The backing store (bbolt) is project-scoped: each project name gets its own
// namespace. Concurrent reads are safe; writes are serialized by the adapter.
//
// Crash safety: every write is transactional. The import and function indexes
// are updated in the same transaction as the file record they derive from.
type Storage interface {
	// SaveAnalysis replaces everything stored for analysis.Project.
	SaveAnalysis(analysis *ProjectAnalysis) error

	// LoadAnalysis returns the stored files for a project sorted by path.
	// Returns nil, nil if the project has never been saved.
	LoadAnalysis(project string) (*ProjectAnalysis, error)

	// PutFile inserts or replaces a single file record.
	PutFile(project string, file FileStructure) error

	// DeleteFile removes a file record. Deleting an unknown path is not an error.
	DeleteFile(project, path string) error

	// DeleteDir removes every file under a slash-separated directory and
	// returns the removed paths. The project root itself is rejected.
	DeleteDir(project, dir string) ([]string, error)

	// DeleteProject removes everything stored for a project. Idempotent.
	DeleteProject(project string) error

	// Importers returns the paths of files importing spec, sorted.
	Importers(project, spec string) ([]string, error)

	// Declarers returns the paths of files declaring the function name, sorted.
	Declarers(project, function string) ([]string, error)

	// ClassDeclarers returns the paths of files declaring the class name, sorted.
	ClassDeclarers(project, class string) ([]string, error)

	// Projects lists stored project names.
	Projects() ([]string, error)
}
