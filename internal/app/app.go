// Package app wires together all adapters and domain logic.
// It prints single-file syntax trees and provides lifecycle management for
// project analysis: create, open, start, stop.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/corey/jstree/internal/adapters/bbolt"
	fsw "github.com/corey/jstree/internal/adapters/fsnotify"
	"github.com/corey/jstree/internal/adapters/treesitter"
	"github.com/corey/jstree/internal/adapters/web"
	"github.com/corey/jstree/internal/config"
	"github.com/corey/jstree/internal/domain/project"
	"github.com/corey/jstree/internal/pkg/logger"
	"github.com/corey/jstree/internal/ports"
)

// ErrStoreClosed is returned by store-backed queries before Open.
var ErrStoreClosed = errors.New("store not open")

// App is the top-level container wiring all components together.
type App struct {
	Config *config.Config
	Log    *logger.Logger
	Paths  *Paths

	// Parser is shared by every caller. Each Parse call builds its own
	// tree-sitter parser, so the value is safe for concurrent use.
	Parser    *treesitter.Parser
	Analyzer  *project.Analyzer
	Store     *bbolt.Store // nil until Open
	Watcher   ports.Watcher
	WebServer *web.Server

	stopOnce sync.Once
}

var _ web.Queries = (*App)(nil)

// New creates an App for cfg.Root. The parser is created eagerly so an
// unsupported language fails here. Does not open the store or start services.
func New(cfg *config.Config, log *logger.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if log == nil {
		log = logger.Discard()
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", cfg.Root, err)
	}
	paths := NewPaths(root)

	parser, err := treesitter.NewParser(cfg.Language, grammarPaths(cfg, root)...)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config: cfg,
		Log:    log,
		Paths:  paths,
		Parser: parser,
	}
	a.Analyzer, err = project.NewAnalyzer(root, a.fileAnalyzer, cfg.Workers)
	if err != nil {
		return nil, err
	}
	if parser.Dynamic() {
		log.Debug("grammar loaded from shared library", "language", parser.Language())
	}
	return a, nil
}

// NewParser builds the configured parser without a project, for the
// single-file printer.
func NewParser(cfg *config.Config) (*treesitter.Parser, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		root = cfg.Root
	}
	return treesitter.NewParser(cfg.Language, grammarPaths(cfg, root)...)
}

// grammarPaths lists where lean builds look for a grammar library.
func grammarPaths(cfg *config.Config, root string) []string {
	var paths []string
	if cfg.GrammarDir != "" {
		paths = append(paths, cfg.GrammarDir)
	}
	return append(paths, treesitter.DefaultGrammarPaths(root)...)
}

func (a *App) fileAnalyzer() (ports.FileAnalyzer, error) {
	return a.Parser, nil
}

// Open creates .jstree/ and opens the store.
func (a *App) Open() error {
	if a.Store != nil {
		return nil
	}
	if err := a.Paths.EnsureDirs(); err != nil {
		return fmt.Errorf("create %s: %w", a.Paths.Root, err)
	}

	dbPath := a.Config.DBPath
	if dbPath == "" {
		dbPath = a.Paths.DB
	} else if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}

	store, err := bbolt.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	a.Store = store
	a.Log.Debug("store opened", "path", store.Path())
	return nil
}

// StartWatcher keeps the store current as files change. Requires Open.
func (a *App) StartWatcher() error {
	if a.Store == nil {
		return ErrStoreClosed
	}
	w, err := fsw.NewWatcher(
		fsw.WithIgnoreDir(project.IgnoreDir),
		fsw.WithErrorHandler(func(err error) {
			a.Log.WithError(err).Warn("watch error")
		}),
	)
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	if err := w.Watch(a.Analyzer.Root(), a.onFileChanged); err != nil {
		w.Stop()
		return fmt.Errorf("watch %s: %w", a.Analyzer.Root(), err)
	}
	a.Watcher = w
	a.Log.Info("watching", "root", a.Analyzer.Root())
	return nil
}

// StartServer starts the HTTP API on the configured address.
func (a *App) StartServer() error {
	srv := web.NewServer(a, web.Options{
		RateLimit:      a.Config.HTTP.RateLimit,
		RateBurst:      a.Config.HTTP.RateBurst,
		TrustedProxies: a.Config.HTTP.TrustedProxies,
		PortFile:       a.Paths.PortFile,
		Log:            a.Log,
	})
	if err := srv.Start(a.Config.Address()); err != nil {
		return err
	}
	a.WebServer = srv
	a.Log.Info("http server listening", "url", srv.URL())
	return nil
}

// Stop shuts down services and closes the store. Idempotent.
func (a *App) Stop() error {
	var err error
	a.stopOnce.Do(func() {
		if a.Watcher != nil {
			a.Watcher.Stop()
		}
		if a.WebServer != nil {
			a.WebServer.Stop()
			a.Paths.CleanEphemeral()
		}
		if a.Store != nil {
			err = a.Store.Close()
		}
	})
	return err
}

// ProjectName returns the storage key for this root.
func (a *App) ProjectName() string {
	return a.Analyzer.ProjectName()
}

// Language returns the canonical grammar name.
func (a *App) Language() string {
	return a.Parser.Language()
}

// Analyze summarizes every file under the root. When the store is open the
// result replaces what was stored for the project.
func (a *App) Analyze(ctx context.Context) (*ports.ProjectAnalysis, error) {
	analysis, err := a.Analyzer.Analyze(ctx)
	if err != nil {
		return nil, err
	}
	log := a.Log.WithProject(analysis.Project)
	log.Info("analyzed", "files", len(analysis.Boxes))

	if a.Store != nil {
		if err := a.Store.SaveAnalysis(analysis); err != nil {
			return nil, fmt.Errorf("save analysis: %w", err)
		}
		log.Debug("analysis saved")
	}
	return analysis, nil
}

// Tree parses the file at a slash-separated path relative to the root.
func (a *App) Tree(rel string) (ports.SyntaxTree, error) {
	path := filepath.Join(a.Analyzer.Root(), filepath.FromSlash(rel))
	if _, ok := a.Analyzer.Rel(path); !ok {
		return nil, fmt.Errorf("%w: %s is outside %s", ErrFileNotFound, rel, a.Analyzer.Root())
	}
	return ReadTree(a.Parser, path)
}

// Importers lists stored files that import spec. Requires Open.
func (a *App) Importers(spec string) ([]string, error) {
	if a.Store == nil {
		return nil, ErrStoreClosed
	}
	return a.Store.Importers(a.ProjectName(), spec)
}

// Declarers lists stored files that declare the function name. Requires Open.
func (a *App) Declarers(function string) ([]string, error) {
	if a.Store == nil {
		return nil, ErrStoreClosed
	}
	return a.Store.Declarers(a.ProjectName(), function)
}

// ClassDeclarers lists stored files that declare the class name. Requires Open.
func (a *App) ClassDeclarers(class string) ([]string, error) {
	if a.Store == nil {
		return nil, ErrStoreClosed
	}
	return a.Store.ClassDeclarers(a.ProjectName(), class)
}

// Cached returns the last saved analysis without re-parsing anything.
// It is nil when the project was never saved. Requires Open.
func (a *App) Cached() (*ports.ProjectAnalysis, error) {
	if a.Store == nil {
		return nil, ErrStoreClosed
	}
	return a.Store.LoadAnalysis(a.ProjectName())
}

// Projects lists every project saved in the store. Requires Open.
func (a *App) Projects() ([]string, error) {
	if a.Store == nil {
		return nil, ErrStoreClosed
	}
	return a.Store.Projects()
}

// Wipe deletes everything saved for this project. Requires Open.
func (a *App) Wipe() error {
	if a.Store == nil {
		return ErrStoreClosed
	}
	if err := a.Store.DeleteProject(a.ProjectName()); err != nil {
		return err
	}
	a.Log.WithProject(a.ProjectName()).Info("project wiped")
	return nil
}
