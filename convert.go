package bindery

import (
	"fmt"
	"sort"
	"sync"
)

// converter parses raw values into typed values of one declared type and
// renders them back. Converters are immutable once built; failures are never
// recovered internally.
type converter interface {
	parse(raw any, w *walk) (any, error)
	render(v any, w *walk) (any, error)
	// accepts reports whether v belongs to the result type set.
	accepts(v any) bool
}

// walk carries the per-call state of one conversion.
type walk struct {
	path      string
	preparing map[*Record]struct{}
}

func newWalk() *walk { return &walk{path: "/", preparing: map[*Record]struct{}{}} }

func (w *walk) at(seg any) *walk {
	return &walk{path: childPath(w.path, seg), preparing: w.preparing}
}

// convRef is a lazy reference to the converter of a child type. It is
// resolved through the engine on first use, which keeps building converters
// free of recursion.
type convRef struct {
	e    *Engine
	t    Type
	once sync.Once
	c    converter
	err  error
}

func (e *Engine) ref(t Type) *convRef { return &convRef{e: e, t: t} }

func (r *convRef) get() (converter, error) {
	r.once.Do(func() {
		r.c, r.err = r.e.converter(r.t)
	})
	return r.c, r.err
}

func (r *convRef) parse(raw any, w *walk) (any, error) {
	c, err := r.get()
	if err != nil {
		return nil, err
	}
	return c.parse(raw, w)
}

func (r *convRef) render(v any, w *walk) (any, error) {
	c, err := r.get()
	if err != nil {
		return nil, err
	}
	return c.render(v, w)
}

func (r *convRef) accepts(v any) bool {
	c, err := r.get()
	return err == nil && c.accepts(v)
}

// strictConverter asserts that every parse result belongs to the declared
// result type set.
type strictConverter struct {
	inner converter
	t     Type
}

func (s strictConverter) parse(raw any, w *walk) (any, error) {
	v, err := s.inner.parse(raw, w)
	if err != nil {
		return nil, err
	}
	if !s.inner.accepts(v) {
		iss := newIssue(CodeResultTypeMismatch, w.path)
		iss.Hint = fmt.Sprintf("%T vs %s", v, s.t)
		return nil, iss
	}
	return v, nil
}

func (s strictConverter) render(v any, w *walk) (any, error) { return s.inner.render(v, w) }
func (s strictConverter) accepts(v any) bool                 { return s.inner.accepts(v) }

// ---- null / optional ----

type nullConverter struct{}

func (nullConverter) parse(raw any, w *walk) (any, error) {
	if raw == nil {
		return nil, nil
	}
	return nil, invalidType(w.path, fmt.Sprintf("invalid type %T for null field", raw))
}

func (nullConverter) render(v any, w *walk) (any, error) {
	if v == nil {
		return nil, nil
	}
	return nil, invalidType(w.path, fmt.Sprintf("invalid type %T for null field", v))
}

func (nullConverter) accepts(v any) bool { return v == nil }

type optionalConverter struct{ inner *convRef }

func (o *optionalConverter) parse(raw any, w *walk) (any, error) {
	if isNil(raw) {
		return nil, nil
	}
	return o.inner.parse(raw, w)
}

func (o *optionalConverter) render(v any, w *walk) (any, error) {
	if isNil(v) {
		return nil, nil
	}
	return o.inner.render(v, w)
}

func (o *optionalConverter) accepts(v any) bool { return v == nil || o.inner.accepts(v) }

// isNil treats nil interfaces and typed nil pointers of records as null.
func isNil(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case *Instance:
		return t == nil
	case *Object:
		return t == nil
	}
	return false
}

// ---- list ----

type listConverter struct{ item *convRef }

func (l *listConverter) parse(raw any, w *walk) (any, error) {
	items, ok := asSequence(raw)
	if !ok {
		return nil, invalidType(w.path, fmt.Sprintf("expected a sequence, got %T", raw))
	}
	out := make([]any, len(items))
	for i, it := range items {
		v, err := l.item.parse(it, w.at(i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (l *listConverter) render(v any, w *walk) (any, error) {
	items, ok := asSequence(v)
	if !ok {
		return nil, invalidType(w.path, fmt.Sprintf("expected a list, got %T", v))
	}
	out := make([]any, len(items))
	for i, it := range items {
		r, err := l.item.render(it, w.at(i))
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func (l *listConverter) accepts(v any) bool {
	_, ok := v.([]any)
	return ok
}

// asSequence views the ordered sequences produced by document loaders.
func asSequence(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		return spread(t), true
	case []int:
		return spread(t), true
	case []int64:
		return spread(t), true
	case []float64:
		return spread(t), true
	case []bool:
		return spread(t), true
	case []map[string]any:
		return spread(t), true
	}
	return nil, false
}

func spread[T any](s []T) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

// ---- map ----

type mapConverter struct {
	key, value *convRef
	stringKeys bool
}

func (m *mapConverter) parse(raw any, w *walk) (any, error) {
	entries, ok := asMapping(raw)
	if !ok {
		iss := newIssue(CodeNotAMapping, w.path)
		iss.Hint = fmt.Sprintf("got %T", raw)
		return nil, iss
	}
	out := make(map[any]any, len(entries))
	from := make(map[any]any, len(entries))
	for _, en := range entries {
		k, err := m.key.parse(en.key, w.at(en.key))
		if err != nil {
			return nil, err
		}
		if prev, dup := from[k]; dup {
			iss := invalidType(w.path, fmt.Sprintf("keys %#v and %#v both convert to %#v", prev, en.key, k))
			return nil, iss
		}
		from[k] = en.key
		v, err := m.value.parse(en.value, w.at(en.key))
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	if !m.stringKeys {
		return out, nil
	}
	typed := make(map[string]any, len(out))
	for k, v := range out {
		typed[k.(string)] = v
	}
	return typed, nil
}

func (m *mapConverter) render(v any, w *walk) (any, error) {
	entries, ok := asMapping(v)
	if !ok {
		iss := newIssue(CodeNotAMapping, w.path)
		iss.Hint = fmt.Sprintf("got %T", v)
		return nil, iss
	}
	keys := make([]any, len(entries))
	vals := make([]any, len(entries))
	allStrings := true
	for i, en := range entries {
		k, err := m.key.render(en.key, w.at(en.key))
		if err != nil {
			return nil, err
		}
		val, err := m.value.render(en.value, w.at(en.key))
		if err != nil {
			return nil, err
		}
		if _, ok := k.(string); !ok {
			allStrings = false
		}
		keys[i], vals[i] = k, val
	}
	if allStrings {
		out := make(map[string]any, len(keys))
		for i, k := range keys {
			out[k.(string)] = vals[i]
		}
		return out, nil
	}
	out := make(map[any]any, len(keys))
	for i, k := range keys {
		out[k] = vals[i]
	}
	return out, nil
}

func (m *mapConverter) accepts(v any) bool {
	if m.stringKeys {
		_, ok := v.(map[string]any)
		return ok
	}
	_, ok := v.(map[any]any)
	return ok
}

type entry struct {
	key, value any
	sortKey    string
}

func (en entry) less(o entry) bool {
	if en.sortKey != o.sortKey {
		return en.sortKey < o.sortKey
	}
	return fmt.Sprintf("%T", en.key) < fmt.Sprintf("%T", o.key)
}

// asMapping views the key-value mappings produced by document loaders and by
// Render. Entries of unordered maps are sorted by their formatted key, then by
// key type, so that conversion results and errors are reproducible.
func asMapping(v any) ([]entry, bool) {
	var out []entry
	switch t := v.(type) {
	case *Object:
		if t == nil {
			return nil, false
		}
		out = make([]entry, 0, len(t.keys))
		for _, k := range t.keys {
			out = append(out, entry{key: k, value: t.vals[k]})
		}
		return out, true
	case map[string]any:
		out = make([]entry, 0, len(t))
		for k, val := range t {
			out = append(out, entry{key: k, value: val, sortKey: k})
		}
	case map[string]string:
		out = make([]entry, 0, len(t))
		for k, val := range t {
			out = append(out, entry{key: k, value: val, sortKey: k})
		}
	case map[any]any:
		out = make([]entry, 0, len(t))
		for k, val := range t {
			out = append(out, entry{key: k, value: val, sortKey: fmt.Sprint(k)})
		}
	default:
		return nil, false
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].less(out[j]) })
	return out, true
}
