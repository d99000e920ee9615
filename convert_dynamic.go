package bindery

import (
	"fmt"
	"time"
)

// dynamicConverter handles the untyped variants. Parse copies containers
// structurally; render dispatches on the runtime type of each value.
type dynamicConverter struct {
	e     *Engine
	shape Shape
}

func (d *dynamicConverter) parse(raw any, w *walk) (any, error) {
	switch d.shape {
	case ShapeList:
		items, ok := asSequence(raw)
		if !ok {
			return nil, invalidType(w.path, fmt.Sprintf("expected a sequence, got %T", raw))
		}
		out := make([]any, len(items))
		for i, it := range items {
			out[i] = deepCopy(it)
		}
		return out, nil
	case ShapeMap:
		entries, ok := asMapping(raw)
		if !ok {
			iss := newIssue(CodeNotAMapping, w.path)
			iss.Hint = fmt.Sprintf("got %T", raw)
			return nil, iss
		}
		return copyEntries(entries), nil
	}
	return deepCopy(raw), nil
}

func (d *dynamicConverter) render(v any, w *walk) (any, error) {
	switch d.shape {
	case ShapeList:
		if _, ok := asSequence(v); !ok {
			return nil, invalidType(w.path, fmt.Sprintf("expected a list, got %T", v))
		}
	case ShapeMap:
		if _, ok := asMapping(v); !ok {
			iss := newIssue(CodeNotAMapping, w.path)
			iss.Hint = fmt.Sprintf("got %T", v)
			return nil, iss
		}
	}
	return d.renderValue(v, w)
}

func (d *dynamicConverter) renderValue(v any, w *walk) (any, error) {
	if rec, ok := d.e.RecordOf(v); ok {
		conv, err := d.e.converter(rec.Type())
		if err != nil {
			return nil, err
		}
		return conv.render(v, w)
	}
	switch t := v.(type) {
	case time.Time:
		return FormatDateTime(t), nil
	case Path:
		return string(t), nil
	case []byte:
		return append([]byte(nil), t...), nil
	case *Object:
		out := NewObject()
		for _, k := range t.keys {
			r, err := d.renderValue(t.vals[k], w.at(k))
			if err != nil {
				return nil, err
			}
			out.Set(k, r)
		}
		return out, nil
	}
	if items, ok := asSequence(v); ok {
		out := make([]any, len(items))
		for i, it := range items {
			r, err := d.renderValue(it, w.at(i))
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}
	if entries, ok := asMapping(v); ok {
		for i := range entries {
			r, err := d.renderValue(entries[i].value, w.at(entries[i].key))
			if err != nil {
				return nil, err
			}
			entries[i].value = r
		}
		return fromEntries(entries), nil
	}
	return v, nil
}

func (d *dynamicConverter) accepts(v any) bool {
	switch d.shape {
	case ShapeList:
		_, ok := v.([]any)
		return ok
	case ShapeMap:
		switch v.(type) {
		case map[string]any, map[any]any:
			return true
		}
		return false
	}
	return true
}

// deepCopy copies containers recursively. Typed record values and scalars
// are returned as they are.
func deepCopy(v any) any {
	switch t := v.(type) {
	case []byte:
		return append([]byte(nil), t...)
	case *Object:
		out := NewObject()
		for _, k := range t.keys {
			out.Set(k, deepCopy(t.vals[k]))
		}
		return out
	}
	if items, ok := asSequence(v); ok {
		out := make([]any, len(items))
		for i, it := range items {
			out[i] = deepCopy(it)
		}
		return out
	}
	if entries, ok := asMapping(v); ok {
		return copyEntries(entries)
	}
	return v
}

func copyEntries(entries []entry) any {
	for i := range entries {
		entries[i].value = deepCopy(entries[i].value)
	}
	return fromEntries(entries)
}

// fromEntries builds map[string]any when every key is a string and
// map[any]any otherwise.
func fromEntries(entries []entry) any {
	allStrings := true
	for _, en := range entries {
		if _, ok := en.key.(string); !ok {
			allStrings = false
			break
		}
	}
	if allStrings {
		out := make(map[string]any, len(entries))
		for _, en := range entries {
			out[en.key.(string)] = en.value
		}
		return out
	}
	out := make(map[any]any, len(entries))
	for _, en := range entries {
		out[en.key] = en.value
	}
	return out
}
