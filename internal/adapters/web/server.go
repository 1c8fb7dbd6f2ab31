// Package web serves the analysis JSON API over HTTP.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/corey/jstree/internal/pkg/logger"
	"github.com/corey/jstree/internal/ports"
)

// Queries is what the API reads from the application.
type Queries interface {
	// Language returns the grammar name trees are parsed with.
	Language() string
	// Analyze summarizes the project and persists the result.
	Analyze(ctx context.Context) (*ports.ProjectAnalysis, error)
	// Tree parses the file at a project-relative path. The caller closes it.
	Tree(rel string) (ports.SyntaxTree, error)
	// Cached returns the last saved analysis, or nil if none was saved.
	Cached() (*ports.ProjectAnalysis, error)
	// Importers lists files that import spec.
	Importers(spec string) ([]string, error)
	// ClassDeclarers lists files that declare the class name.
	ClassDeclarers(class string) ([]string, error)
}

// Options configures a Server.
type Options struct {
	RateLimit      float64 // requests/sec per client, 0 = unlimited
	RateBurst      int
	TrustedProxies []string // peers whose forwarding headers name the client
	PortFile       string   // bound port is written here when set
	Log            *logger.Logger
}

// Server serves the JSON API over HTTP.
type Server struct {
	queries  Queries
	opts     Options
	log      *logger.Logger
	limiter  *RateLimiter
	handler  http.Handler
	listener net.Listener
	httpSrv  *http.Server
	started  time.Time
	stopOnce sync.Once
}

// NewServer creates an API server. It does not listen until Start.
func NewServer(queries Queries, opts Options) *Server {
	s := &Server{
		queries: queries,
		opts:    opts,
		log:     opts.Log,
		started: time.Now(),
	}
	if s.log == nil {
		s.log = logger.Discard()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /analyze", s.handleAnalyze)
	mux.HandleFunc("GET /api/tree", s.handleTree)
	mux.HandleFunc("GET /api/importers", s.handleImporters)
	mux.HandleFunc("GET /api/declarers", s.handleDeclarers)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	s.handler = mux
	if opts.RateLimit > 0 {
		s.limiter = NewRateLimiter(opts.RateLimit, opts.RateBurst, opts.TrustedProxies)
		s.handler = s.limiter.Middleware(mux)
	}
	return s
}

// Handler returns the routed, rate-limited handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening on addr (host:port, port 0 picks a free one).
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln
	s.started = time.Now()
	s.httpSrv = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.opts.PortFile != "" {
		port := ln.Addr().(*net.TCPAddr).Port
		if err := os.WriteFile(s.opts.PortFile, []byte(fmt.Sprintf("%d", port)), 0644); err != nil {
			s.log.WithError(err).Warn("write port file", "path", s.opts.PortFile)
		}
	}

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("http server stopped")
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server. Idempotent.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.httpSrv.Shutdown(ctx)
		}
		if s.limiter != nil {
			s.limiter.Close()
		}
		if s.opts.PortFile != "" {
			os.Remove(s.opts.PortFile)
		}
	})
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// URL returns the base URL of the API.
func (s *Server) URL() string {
	return "http://" + s.Addr()
}

// TreeResult is the body of GET /api/tree.
type TreeResult struct {
	Path     string `json:"path"`
	Language string `json:"language"`
	Sexp     string `json:"sexp"`
	HasError bool   `json:"has_error"`
}

// ImportersResult is the body of GET /api/importers.
type ImportersResult struct {
	Spec  string   `json:"spec"`
	Files []string `json:"files"`
}

// DeclarersResult is the body of GET /api/declarers.
type DeclarersResult struct {
	Class string   `json:"class"`
	Files []string `json:"files"`
}

// HealthResult is the body of GET /api/health.
type HealthResult struct {
	Status   string `json:"status"`
	Language string `json:"language"`
	Uptime   string `json:"uptime"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if cached, _ := strconv.ParseBool(r.URL.Query().Get("cached")); cached {
		s.handleCached(w)
		return
	}
	analysis, err := s.queries.Analyze(r.Context())
	if err != nil {
		s.log.WithError(err).Error("analyze failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleCached(w http.ResponseWriter) {
	analysis, err := s.queries.Cached()
	if err != nil {
		s.log.WithError(err).Error("load cached analysis failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if analysis == nil {
		writeError(w, http.StatusNotFound, "no saved analysis")
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Query().Get("path")
	if rel == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		writeError(w, http.StatusBadRequest, "path must stay inside the project root")
		return
	}

	tree, err := s.queries.Tree(rel)
	switch {
	case errors.Is(err, ports.ErrFileNotFound):
		writeError(w, http.StatusNotFound, "file not found: "+rel)
		return
	case errors.Is(err, ports.ErrParseFailed):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		s.log.WithFile(rel).WithError(err).Error("tree failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer tree.Close()

	writeJSON(w, http.StatusOK, TreeResult{
		Path:     rel,
		Language: s.queries.Language(),
		Sexp:     tree.Sexp(),
		HasError: tree.HasError(),
	})
}

func (s *Server) handleImporters(w http.ResponseWriter, r *http.Request) {
	spec := r.URL.Query().Get("spec")
	if spec == "" {
		writeError(w, http.StatusBadRequest, "spec is required")
		return
	}
	files, err := s.queries.Importers(spec)
	if err != nil {
		s.log.WithError(err).Error("importers failed", "spec", spec)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if files == nil {
		files = []string{}
	}
	writeJSON(w, http.StatusOK, ImportersResult{Spec: spec, Files: files})
}

func (s *Server) handleDeclarers(w http.ResponseWriter, r *http.Request) {
	class := r.URL.Query().Get("class")
	if class == "" {
		writeError(w, http.StatusBadRequest, "class is required")
		return
	}
	files, err := s.queries.ClassDeclarers(class)
	if err != nil {
		s.log.WithError(err).Error("declarers failed", "class", class)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if files == nil {
		files = []string{}
	}
	writeJSON(w, http.StatusOK, DeclarersResult{Class: class, Files: files})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResult{
		Status:   "ok",
		Language: s.queries.Language(),
		Uptime:   time.Since(s.started).Round(time.Second).String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
