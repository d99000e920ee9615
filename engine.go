package bindery

import (
	"sort"
	"sync"

	"github.com/go-logr/logr"
	"go.uber.org/multierr"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for declaration and converter build events.
func WithLogger(log logr.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithStrictResults enables result-type checking of every parsed value.
// Intended for tests and debug builds.
func WithStrictResults(enabled bool) Option {
	return func(e *Engine) {
		e.strict = enabled
	}
}

// Engine owns one universe of declared records and the converters built
// for their types. Converters are built on first use and cached for the
// lifetime of the engine. An Engine is safe for concurrent use.
type Engine struct {
	log    logr.Logger
	strict bool

	convMu sync.RWMutex
	convs  map[string]converter

	recMu   sync.RWMutex
	records map[string]*Record
	order   []string
	lookups []func(any) (*Record, bool)

	prepareMu sync.Mutex
}

// New creates an empty Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		log:     logr.Discard(),
		convs:   map[string]converter{},
		records: map[string]*Record{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Strict reports whether result-type checking is enabled.
func (e *Engine) Strict() bool { return e.strict }

// Record returns the record declared under id.
func (e *Engine) Record(id string) (*Record, bool) {
	e.recMu.RLock()
	defer e.recMu.RUnlock()
	r, ok := e.records[id]
	return r, ok
}

// Records returns all records in declaration order.
func (e *Engine) Records() []*Record {
	e.recMu.RLock()
	defer e.recMu.RUnlock()
	out := make([]*Record, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.records[id])
	}
	return out
}

// AddLookup registers a function identifying typed values produced by a
// custom Binder. Render consults lookups after *Instance values.
func (e *Engine) AddLookup(fn func(v any) (*Record, bool)) {
	if fn == nil {
		return
	}
	e.recMu.Lock()
	e.lookups = append(e.lookups, fn)
	e.recMu.Unlock()
}

// RecordOf returns the record of a typed record value.
func (e *Engine) RecordOf(v any) (*Record, bool) {
	if inst, ok := v.(*Instance); ok {
		if inst == nil {
			return nil, false
		}
		return inst.rec, true
	}
	e.recMu.RLock()
	lookups := e.lookups
	e.recMu.RUnlock()
	for _, fn := range lookups {
		if r, ok := fn(v); ok {
			return r, true
		}
	}
	return nil, false
}

// Convert builds a typed value of rec from a raw value.
func (e *Engine) Convert(rec *Record, raw any) (any, error) {
	return e.ConvertType(rec.Type(), raw)
}

// ConvertType parses raw against an arbitrary declared type.
func (e *Engine) ConvertType(t Type, raw any) (any, error) {
	conv, err := e.converter(t)
	if err != nil {
		return nil, err
	}
	return conv.parse(raw, newWalk())
}

// Render serializes a typed record value back to raw form.
func (e *Engine) Render(v any) (any, error) {
	rec, ok := e.RecordOf(v)
	if !ok {
		return nil, invalidType("/", "not a record value")
	}
	return e.RenderType(rec.Type(), v)
}

// RenderType serializes v as a value of the declared type t.
func (e *Engine) RenderType(t Type, v any) (any, error) {
	conv, err := e.converter(t)
	if err != nil {
		return nil, err
	}
	return conv.render(v, newWalk())
}

// Validate checks that every record referenced by a field is declared and
// resolves the defaults of every record. All failures are reported at once.
func (e *Engine) Validate() error {
	var err error
	for _, r := range e.Records() {
		for _, f := range r.fields {
			err = multierr.Append(err, e.checkRefs(r, f, f.Type))
		}
		err = multierr.Append(err, r.prepare(e, newWalk()))
	}
	return err
}

func (e *Engine) checkRefs(r *Record, f *Field, t Type) error {
	switch t.kind {
	case KindRecord:
		if _, ok := e.Record(t.record); !ok {
			iss := declIssue(CodeUnsupportedType, "unknown record "+t.record)
			iss.Field = f.Name
			iss.Hint = "field " + r.id + "." + f.Name + " references undeclared record " + t.record
			return iss
		}
	case KindOptional, KindList, KindMap:
		var err error
		for _, a := range t.args {
			err = multierr.Append(err, e.checkRefs(r, f, a))
		}
		return err
	}
	return nil
}

// converter returns the cached converter for t, building it on first use.
// Building never resolves other converters, so the lock is held only for
// the build-and-insert step and self-referential types terminate.
func (e *Engine) converter(t Type) (converter, error) {
	key := t.Key()
	e.convMu.RLock()
	c, ok := e.convs[key]
	e.convMu.RUnlock()
	if ok {
		return c, nil
	}
	e.convMu.Lock()
	defer e.convMu.Unlock()
	if c, ok := e.convs[key]; ok {
		return c, nil
	}
	c, err := e.build(t)
	if err != nil {
		return nil, err
	}
	e.convs[key] = c
	e.log.V(1).Info("built converter", "type", key)
	return c, nil
}

// build is the exhaustive match over type kinds.
func (e *Engine) build(t Type) (converter, error) {
	var c converter
	switch t.kind {
	case KindNull:
		c = nullConverter{}
	case KindScalar:
		c = newScalarConverter(t.scalar)
	case KindOptional:
		c = &optionalConverter{inner: e.ref(t.args[0])}
	case KindList:
		c = &listConverter{item: e.ref(t.args[0])}
	case KindMap:
		if kt := t.args[0]; kt.kind != KindScalar || kt.scalar == ScalarBytes {
			return nil, declIssue(CodeUnsupportedType, "map keys of type "+kt.String()+" are not supported; use a scalar key type")
		}
		c = &mapConverter{key: e.ref(t.args[0]), value: e.ref(t.args[1]), stringKeys: isStringType(t.args[0])}
	case KindRecord:
		rec, ok := e.Record(t.record)
		if !ok {
			return nil, declIssue(CodeUnsupportedType, "unknown record "+t.record)
		}
		c = &recordConverter{e: e, rec: rec}
	case KindDynamic:
		c = &dynamicConverter{e: e, shape: t.shape}
	default:
		return nil, declIssue(CodeUnsupportedType, "unknown type kind "+t.kind.String())
	}
	if e.strict {
		c = strictConverter{inner: c, t: t}
	}
	return c, nil
}

func isStringType(t Type) bool { return t.kind == KindScalar && t.scalar == ScalarString }

// sortedKeys returns the keys of a set in ascending order.
func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
