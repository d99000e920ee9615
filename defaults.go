package bindery

import (
	"fmt"
	"time"
)

type defaultKind int

const (
	defaultRequired defaultKind = iota
	defaultValue
	defaultFactory
)

// Default is a field's default policy. The zero value means the field is
// required.
type Default struct {
	kind    defaultKind
	value   any
	factory func() any
}

// Required is the policy of a field without default.
func Required() Default { return Default{} }

// Value declares a default value. The value is converted through the field's
// type; results that are not immutable scalars are handed out as fresh
// copies on every construction.
func Value(v any) Default { return Default{kind: defaultValue, value: v} }

// Factory declares a default produced by calling fn on every construction.
func Factory(fn func() any) Default {
	if fn == nil {
		return Default{}
	}
	return Default{kind: defaultFactory, factory: fn}
}

func (d Default) IsRequired() bool { return d.kind == defaultRequired }
func (d Default) IsFactory() bool  { return d.kind == defaultFactory }

// Raw returns the declared default value and whether one was declared with
// Value.
func (d Default) Raw() (any, bool) { return d.value, d.kind == defaultValue }

// resolvedDefault is the per-construction policy computed from a Default.
type resolvedDefault struct {
	constant bool
	value    any
	make     func(w *walk) (any, error)
}

func (rd resolvedDefault) get(w *walk) (any, error) {
	if rd.make != nil {
		return rd.make(w)
	}
	return rd.value, nil
}

// resolveDefault converts a declared Value default through conv and decides
// whether it can be shared. In strict mode factory results are checked
// against the field type. Mutable results become factories that re-parse a
// rendered snapshot, so two constructions never alias one container.
func resolveDefault(d Default, conv converter, w *walk, strict bool) (resolvedDefault, error) {
	switch d.kind {
	case defaultFactory:
		fn := d.factory
		if !strict {
			return resolvedDefault{make: func(*walk) (any, error) { return fn(), nil }}, nil
		}
		return resolvedDefault{make: func(w *walk) (any, error) {
			v := fn()
			if !conv.accepts(v) {
				iss := newIssue(CodeResultTypeMismatch, w.path)
				iss.Hint = fmt.Sprintf("factory returned %T", v)
				return nil, iss
			}
			return v, nil
		}}, nil
	case defaultValue:
		v, err := conv.parse(d.value, w)
		if err != nil {
			return resolvedDefault{}, err
		}
		if isImmutable(v) {
			return resolvedDefault{constant: true, value: v}, nil
		}
		snapshot, err := conv.render(v, w)
		if err != nil {
			return resolvedDefault{}, err
		}
		return resolvedDefault{make: func(w *walk) (any, error) {
			return conv.parse(snapshot, &walk{path: "/", preparing: w.preparing})
		}}, nil
	}
	return resolvedDefault{}, nil
}

// isImmutable reports whether v can be shared between constructions.
func isImmutable(v any) bool {
	switch v.(type) {
	case nil, bool, string, Path, time.Time,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64, complex64, complex128:
		return true
	}
	return false
}

// prepare resolves the defaults of every field once. Preparation runs under
// the engine's prepare lock; nested preparations triggered by converting a
// default reuse the lock held by the outermost one, and a record met again on
// the same walk is a cyclic default.
func (r *Record) prepare(e *Engine, w *walk) error {
	if r.ready.Load() {
		return r.prepareErr
	}
	if _, cyc := w.preparing[r]; cyc {
		iss := declIssue(CodeMalformedDeclaration, "default value of "+r.id+" depends on itself")
		return iss
	}
	if len(w.preparing) == 0 {
		e.prepareMu.Lock()
		defer e.prepareMu.Unlock()
		if r.ready.Load() {
			return r.prepareErr
		}
	}
	w.preparing[r] = struct{}{}
	defer delete(w.preparing, r)

	var err error
	for _, f := range r.fields {
		if f.Default.IsRequired() {
			continue
		}
		var conv converter
		conv, err = e.converter(f.Type)
		if err != nil {
			err = fieldDeclIssue(r, f, err)
			break
		}
		var rd resolvedDefault
		rd, err = resolveDefault(f.Default, conv, w, e.strict)
		if err != nil {
			err = fieldDeclIssue(r, f, err)
			break
		}
		f.def = rd
	}
	r.prepareErr = err
	r.ready.Store(true)
	if err == nil {
		e.log.V(1).Info("prepared record defaults", "record", r.id)
	}
	return err
}

func fieldDeclIssue(r *Record, f *Field, err error) error {
	iss, ok := AsIssue(err)
	if !ok {
		return &Issue{Code: CodeMalformedDeclaration, Field: f.Name, Message: err.Error(), Cause: err}
	}
	out := *iss
	out.Field = f.Name
	out.Hint = fmt.Sprintf("default of %s.%s", r.id, f.Name)
	return &out
}
