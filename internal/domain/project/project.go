// Package project discovers JavaScript files under a root directory and
// summarizes them in parallel into a ports.ProjectAnalysis.
package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/corey/jstree/internal/ports"
)

// ignoreDirs lists directory names never descended into.
var ignoreDirs = map[string]bool{
	".git":             true,
	"node_modules":     true,
	"bower_components": true,
	".jstree":          true,
	"vendor":           true,
	"dist":             true,
	"build":            true,
	"coverage":         true,
	".next":            true,
	".idea":            true,
	".vscode":          true,
}

// IgnoreDir reports whether a directory with this base name is skipped.
func IgnoreDir(name string) bool {
	return ignoreDirs[name]
}

// AnalyzerFactory returns a fresh FileAnalyzer. It is called once per worker.
type AnalyzerFactory func() (ports.FileAnalyzer, error)

// Analyzer walks a project root and summarizes every supported file.
type Analyzer struct {
	root    string
	factory AnalyzerFactory
	workers int
}

// NewAnalyzer creates an analyzer for root. workers < 1 means 1.
func NewAnalyzer(root string, factory AnalyzerFactory, workers int) (*Analyzer, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", root, err)
	}
	if workers < 1 {
		workers = 1
	}
	return &Analyzer{root: abs, factory: factory, workers: workers}, nil
}

// Root returns the absolute project root.
func (a *Analyzer) Root() string {
	return a.root
}

// ProjectName returns the base name of the root, used as the storage key.
func (a *Analyzer) ProjectName() string {
	return filepath.Base(a.root)
}

// Rel converts an absolute path under the root into a slash-separated
// relative path. ok is false for paths outside the root.
func (a *Analyzer) Rel(path string) (rel string, ok bool) {
	r, err := filepath.Rel(a.root, path)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(r), true
}

// Scan returns absolute paths of supported files under the root, sorted.
func (a *Analyzer) Scan(supports func(ext string) bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(a.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == a.root {
				return err
			}
			return nil // skip inaccessible paths
		}
		if d.IsDir() {
			if path != a.root && IgnoreDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if supports(filepath.Ext(path)) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", a.root, err)
	}
	sort.Strings(files)
	return files, nil
}

// Analyze scans the root and summarizes every file with bounded parallelism.
// Each worker owns one FileAnalyzer. The first failure cancels the rest.
func (a *Analyzer) Analyze(ctx context.Context) (*ports.ProjectAnalysis, error) {
	first, err := a.factory()
	if err != nil {
		return nil, err
	}
	files, err := a.Scan(first.SupportsExtension)
	if err != nil {
		return nil, err
	}

	workers := min(a.workers, max(len(files), 1))
	analyzers := []ports.FileAnalyzer{first}
	for len(analyzers) < workers {
		fa, err := a.factory()
		if err != nil {
			return nil, err
		}
		analyzers = append(analyzers, fa)
	}

	boxes := make([]ports.FileStructure, len(files))
	jobs := make(chan int)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i := range files {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for _, fa := range analyzers {
		g.Go(func() error {
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					return err
				}
				rel, _ := a.Rel(files[i])
				fs, err := fa.AnalyzeFile(files[i], rel)
				if err != nil {
					return err
				}
				boxes[i] = fs
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ports.ProjectAnalysis{Project: a.ProjectName(), Boxes: boxes}, nil
}

// AnalyzeOne summarizes a single file under the root.
func (a *Analyzer) AnalyzeOne(path string) (ports.FileStructure, error) {
	rel, ok := a.Rel(path)
	if !ok {
		return ports.FileStructure{}, fmt.Errorf("%s is outside project root %s", path, a.root)
	}
	fa, err := a.factory()
	if err != nil {
		return ports.FileStructure{}, err
	}
	return fa.AnalyzeFile(path, rel)
}
