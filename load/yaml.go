package load

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/reoring/bindery"
)

// YAML decodes the documents of a YAML stream. An empty stream yields no
// documents.
func YAML(data []byte, opts ...Option) ([]any, error) {
	o := newOptions(opts)
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var out []any
	for {
		var root yaml.Node
		if err := dec.Decode(&root); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, &FileError{Format: FormatYAML, Err: err}
		}
		v, err := o.yamlValue(&root, "/")
		if err != nil {
			return nil, &FileError{Format: FormatYAML, Err: err}
		}
		out = append(out, v)
	}
}

type yamlPos struct{ line, col int }

func (o options) yamlValue(n *yaml.Node, path string) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return o.yamlValue(n.Content[0], path)
	case yaml.AliasNode:
		return o.yamlValue(n.Alias, path)
	case yaml.MappingNode:
		return o.yamlMapping(n, path)
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := o.yamlValue(c, pointer(path, i))
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return yamlScalar(n)
	}
	return nil, fmt.Errorf("unexpected YAML node kind %d at %s", n.Kind, path)
}

// yamlMapping keeps document order for string keys. A mapping with any other
// key becomes map[any]any.
func (o options) yamlMapping(n *yaml.Node, path string) (any, error) {
	stringKeys := true
	for i := 0; i < len(n.Content); i += 2 {
		if k := resolveAlias(n.Content[i]); k.Kind != yaml.ScalarNode || k.ShortTag() != "!!str" {
			stringKeys = false
			break
		}
	}
	first := make(map[string]yamlPos, len(n.Content)/2)
	var obj *bindery.Object
	var m map[any]any
	if stringKeys {
		obj = bindery.NewObject()
	} else {
		m = make(map[any]any, len(n.Content)/2)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		kn := resolveAlias(n.Content[i])
		key, err := o.yamlValue(kn, path)
		if err != nil {
			return nil, err
		}
		ks := fmt.Sprint(key)
		if pos, dup := first[ks]; dup && !o.allowDup {
			return nil, &DuplicateKeyError{Key: ks, Path: path, FirstLine: pos.line, FirstCol: pos.col, Line: kn.Line, Col: kn.Column}
		}
		first[ks] = yamlPos{kn.Line, kn.Column}
		v, err := o.yamlValue(n.Content[i+1], pointer(path, ks))
		if err != nil {
			return nil, err
		}
		if obj != nil {
			obj.Set(ks, v)
			continue
		}
		if !hashable(key) {
			return nil, fmt.Errorf("mapping key at %s (%d:%d) is not a scalar", path, kn.Line, kn.Column)
		}
		m[key] = v
	}
	if obj != nil {
		return obj, nil
	}
	return m, nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func yamlScalar(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!str":
		return n.Value, nil
	case "!!null":
		return nil, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case int64:
		if int64(int(t)) == t {
			return int(t), nil
		}
	case uint64:
		if t <= uint64(^uint(0)>>1) {
			return int(t), nil
		}
	}
	return v, nil
}

func hashable(v any) bool {
	switch v.(type) {
	case nil, []any, map[any]any, *bindery.Object:
		return false
	}
	return true
}
