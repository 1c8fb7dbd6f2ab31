// Package bbolt implements the ports.Storage interface using bbolt (embedded B+ tree).
// Each project gets its own top-level bucket. Within that bucket, "files" holds
// JSON-serialized file structures keyed by relative path, and "imports",
// "functions" and "classes" hold reverse indexes (name -> sorted list of paths). Writes are
// transactional. A crash mid-write cannot corrupt previously committed data.
package bbolt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
	bolterrors "go.etcd.io/bbolt/errors"

	"github.com/corey/jstree/internal/ports"
)

// Bucket keys
var (
	bucketFiles     = []byte("files")
	bucketImports   = []byte("imports")
	bucketFunctions = []byte("functions")
	bucketClasses   = []byte("classes")
)

// ErrLocked is returned by NewStore when another process holds the database.
var ErrLocked = errors.New("database is locked")

// Store implements ports.Storage backed by bbolt.
type Store struct {
	db *bolt.DB
}

var _ ports.Storage = (*Store)(nil)

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if errors.Is(err, bolterrors.ErrTimeout) {
		return nil, fmt.Errorf("bbolt open %s: %w", path, ErrLocked)
	}
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.db.Path()
}

// SaveAnalysis replaces everything stored for the analysis' project.
func (s *Store) SaveAnalysis(analysis *ports.ProjectAnalysis) error {
	if analysis == nil {
		return fmt.Errorf("nil analysis")
	}
	if analysis.Project == "" {
		return fmt.Errorf("analysis has no project name")
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		name := []byte(analysis.Project)
		if tx.Bucket(name) != nil {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
		}
		pb, err := projectBuckets(tx, analysis.Project)
		if err != nil {
			return err
		}
		for _, f := range analysis.Boxes {
			if err := pb.put(f); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadAnalysis returns the stored files for a project sorted by path.
// Returns nil, nil if no such project exists.
func (s *Store) LoadAnalysis(project string) (*ports.ProjectAnalysis, error) {
	var result *ports.ProjectAnalysis
	err := s.db.View(func(tx *bolt.Tx) error {
		proj := tx.Bucket([]byte(project))
		if proj == nil {
			return nil
		}
		result = &ports.ProjectAnalysis{Project: project, Boxes: []ports.FileStructure{}}
		fb := proj.Bucket(bucketFiles)
		if fb == nil {
			return nil
		}
		// bbolt iterates keys in byte order, which is path order.
		return fb.ForEach(func(k, v []byte) error {
			var f ports.FileStructure
			if err := json.Unmarshal(v, &f); err != nil {
				return fmt.Errorf("unmarshal file %s: %w", k, err)
			}
			result.Boxes = append(result.Boxes, f)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PutFile inserts or replaces one file record and updates the indexes.
func (s *Store) PutFile(project string, file ports.FileStructure) error {
	if file.Path == "" {
		return fmt.Errorf("file has no path")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		pb, err := projectBuckets(tx, project)
		if err != nil {
			return err
		}
		if err := pb.remove(file.Path); err != nil {
			return err
		}
		return pb.put(file)
	})
}

// DeleteFile removes one file record and its index entries. Idempotent.
func (s *Store) DeleteFile(project, path string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(project)) == nil {
			return nil
		}
		pb, err := projectBuckets(tx, project)
		if err != nil {
			return err
		}
		return pb.remove(path)
	})
}

// DeleteDir removes every file record under the slash-separated directory
// dir and returns the removed paths, sorted.
func (s *Store) DeleteDir(project, dir string) ([]string, error) {
	dir = strings.TrimSuffix(dir, "/")
	if dir == "" || dir == "." {
		return nil, fmt.Errorf("refusing to delete project root")
	}
	prefix := []byte(dir + "/")

	var removed []string
	err := s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(project)) == nil {
			return nil
		}
		pb, err := projectBuckets(tx, project)
		if err != nil {
			return err
		}
		// Collect first: deleting while iterating a cursor skips keys.
		c := pb.files.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			removed = append(removed, string(k))
		}
		for _, path := range removed {
			if err := pb.remove(path); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// Importers returns the paths of files importing spec, sorted.
func (s *Store) Importers(project, spec string) ([]string, error) {
	return s.lookup(project, bucketImports, spec)
}

// Declarers returns the paths of files declaring the function name, sorted.
func (s *Store) Declarers(project, function string) ([]string, error) {
	return s.lookup(project, bucketFunctions, function)
}

// ClassDeclarers returns the paths of files declaring the class name, sorted.
func (s *Store) ClassDeclarers(project, class string) ([]string, error) {
	return s.lookup(project, bucketClasses, class)
}

// Projects lists stored project names in byte order.
func (s *Store) Projects() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			names = append(names, string(name))
			return nil
		})
	})
	return names, err
}

// DeleteProject removes all data for a project. Idempotent.
func (s *Store) DeleteProject(project string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		err := tx.DeleteBucket([]byte(project))
		if errors.Is(err, bolterrors.ErrBucketNotFound) {
			return nil
		}
		return err
	})
}

func (s *Store) lookup(project string, bucket []byte, key string) ([]string, error) {
	paths := []string{}
	err := s.db.View(func(tx *bolt.Tx) error {
		proj := tx.Bucket([]byte(project))
		if proj == nil {
			return nil
		}
		b := proj.Bucket(bucket)
		if b == nil {
			return nil
		}
		v := b.Get([]byte(key))
		if v == nil {
			return nil
		}
		// Unmarshal copies out of the mmap'd page, which is only valid inside tx.
		return json.Unmarshal(v, &paths)
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// projectTx groups one project's buckets inside a write transaction.
type projectTx struct {
	files, imports, functions, classes *bolt.Bucket
}

func projectBuckets(tx *bolt.Tx, project string) (*projectTx, error) {
	if project == "" {
		return nil, fmt.Errorf("empty project name")
	}
	proj, err := tx.CreateBucketIfNotExists([]byte(project))
	if err != nil {
		return nil, err
	}
	pb := &projectTx{}
	if pb.files, err = proj.CreateBucketIfNotExists(bucketFiles); err != nil {
		return nil, err
	}
	if pb.imports, err = proj.CreateBucketIfNotExists(bucketImports); err != nil {
		return nil, err
	}
	if pb.functions, err = proj.CreateBucketIfNotExists(bucketFunctions); err != nil {
		return nil, err
	}
	if pb.classes, err = proj.CreateBucketIfNotExists(bucketClasses); err != nil {
		return nil, err
	}
	return pb, nil
}

func (pb *projectTx) put(f ports.FileStructure) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal file %s: %w", f.Path, err)
	}
	if err := pb.files.Put([]byte(f.Path), data); err != nil {
		return err
	}
	for _, spec := range f.Imports {
		if err := updateIndex(pb.imports, spec, f.Path, true); err != nil {
			return err
		}
	}
	for _, fn := range f.Functions {
		if err := updateIndex(pb.functions, fn, f.Path, true); err != nil {
			return err
		}
	}
	for _, class := range f.Classes {
		if err := updateIndex(pb.classes, class, f.Path, true); err != nil {
			return err
		}
	}
	return nil
}

// remove deletes a file record and unlinks it from the indexes.
func (pb *projectTx) remove(path string) error {
	v := pb.files.Get([]byte(path))
	if v == nil {
		return nil
	}
	var old ports.FileStructure
	if err := json.Unmarshal(v, &old); err != nil {
		return fmt.Errorf("unmarshal file %s: %w", path, err)
	}
	for _, spec := range old.Imports {
		if err := updateIndex(pb.imports, spec, path, false); err != nil {
			return err
		}
	}
	for _, fn := range old.Functions {
		if err := updateIndex(pb.functions, fn, path, false); err != nil {
			return err
		}
	}
	for _, class := range old.Classes {
		if err := updateIndex(pb.classes, class, path, false); err != nil {
			return err
		}
	}
	return pb.files.Delete([]byte(path))
}

// updateIndex adds or removes path from the sorted list stored under key.
// Empty lists are deleted; empty keys are not indexed.
func updateIndex(b *bolt.Bucket, key, path string, add bool) error {
	if key == "" {
		return nil
	}
	var paths []string
	if v := b.Get([]byte(key)); v != nil {
		if err := json.Unmarshal(v, &paths); err != nil {
			return fmt.Errorf("unmarshal index %s: %w", key, err)
		}
	}

	i := sort.SearchStrings(paths, path)
	found := i < len(paths) && paths[i] == path
	switch {
	case add && !found:
		paths = append(paths, "")
		copy(paths[i+1:], paths[i:])
		paths[i] = path
	case !add && found:
		paths = append(paths[:i], paths[i+1:]...)
	default:
		return nil
	}

	if len(paths) == 0 {
		return b.Delete([]byte(key))
	}
	data, err := json.Marshal(paths)
	if err != nil {
		return err
	}
	return b.Put([]byte(key), data)
}
