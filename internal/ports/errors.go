package ports

import "errors"

// Errors shared by every surface that reads a source file and parses it.
// Callers wrap them with context and test with errors.Is.
var (
	ErrFileNotFound = errors.New("file not found")
	ErrReadFailed   = errors.New("read failed")
	ErrParseFailed  = errors.New("parse failed")
)
