package load

import (
	"fmt"
	"strings"
)

// DuplicateKeyError reports a key occurring twice in one mapping. Line and
// column are 1-based and zero when the format does not track positions.
type DuplicateKeyError struct {
	Key       string
	Path      string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("duplicate key %q at %s (%d:%d, first at %d:%d)", e.Key, e.Path, e.Line, e.Col, e.FirstLine, e.FirstCol)
	}
	return fmt.Sprintf("duplicate key %q at %s", e.Key, e.Path)
}

// FileError wraps a failure to read or parse one document source.
type FileError struct {
	File   string
	Format Format
	Err    error
}

func (e *FileError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("load %s: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("load %s %s: %v", e.Format, e.File, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// pointer appends one JSON Pointer segment.
func pointer(base string, seg any) string {
	s := fmt.Sprint(seg)
	s = strings.ReplaceAll(s, "~", "~0")
	s = strings.ReplaceAll(s, "/", "~1")
	if base == "/" {
		return "/" + s
	}
	return base + "/" + s
}
