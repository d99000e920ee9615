package load

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/reoring/bindery"
)

// Format names a document syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatHCL  Format = "hcl"
)

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".json":
		return FormatJSON, true
	case ".hcl":
		return FormatHCL, true
	}
	return "", false
}

// Bytes decodes data in format f. YAML streams may hold several documents;
// JSON and HCL hold exactly one.
func Bytes(f Format, data []byte, name string, opts ...Option) ([]any, error) {
	switch f {
	case FormatYAML:
		return YAML(data, opts...)
	case FormatJSON:
		v, err := JSON(data, opts...)
		if err != nil {
			return nil, err
		}
		return []any{v}, nil
	case FormatHCL:
		v, err := HCL(data, name)
		if err != nil {
			return nil, err
		}
		return []any{v}, nil
	}
	return nil, &FileError{File: name, Format: f, Err: fmt.Errorf("unknown format %q", f)}
}

// File reads the documents of the file at path.
func File(path string, opts ...Option) ([]any, error) {
	f, ok := FormatOf(path)
	if !ok {
		return nil, &FileError{File: path, Err: fmt.Errorf("unknown extension %q", filepath.Ext(path))}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{File: path, Format: f, Err: err}
	}
	docs, err := Bytes(f, data, path, opts...)
	if err != nil {
		var fe *FileError
		if errors.As(err, &fe) && fe.File == "" {
			fe.File = path
		}
		return nil, err
	}
	o := newOptions(opts)
	o.log.V(1).Info("loaded file", "path", path, "format", string(f), "documents", len(docs))
	return docs, nil
}

// Decode reads the file at path and converts each of its documents to rec.
// Conversion stops at the first failing document.
func Decode(e *bindery.Engine, rec *bindery.Record, path string, opts ...Option) ([]any, error) {
	docs, err := File(path, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, len(docs))
	for i, d := range docs {
		v, err := e.Convert(rec, d)
		if err != nil {
			return out, fmt.Errorf("%s: document %d: %w", path, i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
