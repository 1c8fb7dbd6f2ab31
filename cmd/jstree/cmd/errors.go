package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/corey/jstree/internal/adapters/bbolt"
	"github.com/corey/jstree/internal/app"
)

// exitError carries a specific exit code for an error already shown to the user.
type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string { return e.err.Error() }
func (e exitError) Unwrap() error { return e.err }

// ExitCode extracts the exit code from an exitError.
// Returns -1 if the error has not been reported yet.
func ExitCode(err error) int {
	var ee exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return -1
}

// isDBLockError reports whether the store could not take the file lock.
func isDBLockError(err error) bool {
	return errors.Is(err, bbolt.ErrLocked)
}

// diagnoseDBLock returns actionable guidance when the store is held by
// another process, usually a running watch or serve.
func diagnoseDBLock(paths *app.Paths) string {
	if url, ok := serverURL(paths); ok {
		return fmt.Sprintf("database is locked by jstree serve at %s\n"+
			"  → stop it first, or query it:  jstree health", url)
	}
	return "database is locked by another process\n" +
		"  → find the process:  ps aux | grep 'jstree'\n" +
		"  → stop it (jstree watch / jstree serve), then retry"
}

// serverURL returns the base URL of a running jstree serve, read from the
// port file it leaves behind.
func serverURL(paths *app.Paths) (string, bool) {
	data, err := os.ReadFile(paths.PortFile)
	if err != nil {
		return "", false
	}
	port := strings.TrimSpace(string(data))
	if port == "" {
		return "", false
	}
	return "http://127.0.0.1:" + port, true
}
