package load

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/reoring/bindery"
)

// JSON decodes one JSON document. Objects keep their key order, integral
// numbers become int and other numbers float64.
func JSON(data []byte, opts ...Option) (any, error) {
	o := newOptions(opts)
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	r := &jsonReader{dec: dec, opts: o}
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty document")
		}
		return nil, &FileError{Format: FormatJSON, Err: err}
	}
	v, err := r.value(tok, "/")
	if err != nil {
		return nil, &FileError{Format: FormatJSON, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after the document")
		}
		return nil, &FileError{Format: FormatJSON, Err: err}
	}
	return v, nil
}

type jsonReader struct {
	dec  *json.Decoder
	opts options
}

func (r *jsonReader) value(tok json.Token, path string) (any, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return r.object(path)
		case '[':
			return r.array(path)
		}
		return nil, fmt.Errorf("unexpected %q at %s", rune(t), path)
	case json.Number:
		return number(t)
	case float64:
		return t, nil
	case string, bool, nil:
		return t, nil
	}
	return nil, fmt.Errorf("unexpected token %T at %s", tok, path)
}

func (r *jsonReader) object(path string) (any, error) {
	obj := bindery.NewObject()
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			return obj, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key at %s", path)
		}
		if _, dup := obj.Get(key); dup && !r.opts.allowDup {
			return nil, &DuplicateKeyError{Key: key, Path: path}
		}
		tok, err = r.dec.Token()
		if err != nil {
			return nil, err
		}
		v, err := r.value(tok, pointer(path, key))
		if err != nil {
			return nil, err
		}
		obj.Set(key, v)
	}
}

func (r *jsonReader) array(path string) (any, error) {
	arr := []any{}
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(json.Delim); ok && d == ']' {
			return arr, nil
		}
		v, err := r.value(tok, pointer(path, len(arr)))
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

func number(n json.Number) (any, error) {
	if i, err := n.Int64(); err == nil && int64(int(i)) == i {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, err
	}
	return f, nil
}
