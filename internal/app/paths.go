package app

import (
	"os"
	"path/filepath"
)

// Paths holds all resolved filesystem paths for the .jstree/ project directory.
type Paths struct {
	Root string // .jstree/
	DB   string // .jstree/jstree.db

	RunDir   string // .jstree/run/
	PortFile string // .jstree/run/http.port

	GrammarsDir string // .jstree/grammars/
}

// NewPaths constructs all resolved paths from a project root directory.
func NewPaths(projectRoot string) *Paths {
	root := filepath.Join(projectRoot, ".jstree")
	return &Paths{
		Root: root,
		DB:   filepath.Join(root, "jstree.db"),

		RunDir:   filepath.Join(root, "run"),
		PortFile: filepath.Join(root, "run", "http.port"),

		GrammarsDir: filepath.Join(root, "grammars"),
	}
}

// EnsureDirs creates all subdirectories under .jstree/. Idempotent.
func (p *Paths) EnsureDirs() error {
	for _, d := range []string{p.Root, p.RunDir, p.GrammarsDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// CleanEphemeral removes runtime files. Called on clean shutdown.
func (p *Paths) CleanEphemeral() {
	os.Remove(p.PortFile)
}
