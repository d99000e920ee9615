package dsl

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/reoring/bindery"
	"github.com/reoring/bindery/i18n"
)

// Binding derives records from Go struct types and materializes converted
// values as pointers to those structs. Nested struct types are bound on first
// reference.
type Binding struct {
	e *bindery.Engine

	mu      sync.RWMutex
	byType  map[reflect.Type]*structRecord
	pending map[reflect.Type]string
}

type structRecord struct {
	rec   *bindery.Record
	rt    reflect.Type
	index [][]int // per record field, in declaration order
}

// NewBinding creates a Binding declaring its records with e.
func NewBinding(e *bindery.Engine) *Binding {
	b := &Binding{
		e:       e,
		byType:  map[reflect.Type]*structRecord{},
		pending: map[reflect.Type]string{},
	}
	e.AddLookup(b.lookup)
	return b
}

// Engine returns the engine records are declared with.
func (b *Binding) Engine() *bindery.Engine { return b.e }

// StructOption configures the record derived from a struct type.
type StructOption func(*structConfig)

type structConfig struct {
	name            string
	discriminator   string
	tag             string
	ignoreExtraKeys bool
}

// WithName overrides the record id, which defaults to the Go type name.
func WithName(name string) StructOption { return func(c *structConfig) { c.name = name } }

// WithDiscriminator makes the record the root of a polymorphic tree.
func WithDiscriminator(key string) StructOption {
	return func(c *structConfig) { c.discriminator = key }
}

// WithTag sets the type tag of the record.
func WithTag(tag string) StructOption { return func(c *structConfig) { c.tag = tag } }

// WithIgnoreExtraKeys discards unknown document keys.
func WithIgnoreExtraKeys() StructOption { return func(c *structConfig) { c.ignoreExtraKeys = true } }

// Struct declares the record of struct type T. Field keys resolve as
// bindery:"key" > json:"key" > Go field name, and bindery:"-" skips a field.
// A default:"..." tag holds a YAML literal used as default value, and a
// type:"..." tag replaces the derived type with a type expression. An
// embedded struct is the base record.
func Struct[T any](b *Binding, opts ...StructOption) (*bindery.Record, error) {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	var cfg structConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return b.bind(rt, cfg)
}

// MustStruct is like Struct but panics on error.
func MustStruct[T any](b *Binding, opts ...StructOption) *bindery.Record {
	r, err := Struct[T](b, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Decode converts raw into a T using the record bound to T.
func Decode[T any](b *Binding, raw any) (T, error) {
	var zero T
	rt := reflect.TypeOf((*T)(nil)).Elem()
	sr, ok := b.recordOf(rt)
	if !ok {
		var err error
		if _, err = b.bind(rt, structConfig{}); err != nil {
			return zero, err
		}
		sr, _ = b.recordOf(rt)
	}
	v, err := b.e.Convert(sr.rec, raw)
	if err != nil {
		return zero, err
	}
	p, ok := v.(*T)
	if !ok {
		got, _ := b.e.RecordOf(v)
		return zero, &bindery.Issue{
			Code:    bindery.CodeInvalidType,
			Path:    "/",
			Message: i18n.T(bindery.CodeInvalidType, nil),
			Hint:    fmt.Sprintf("value resolved to record %s, not %s", got, sr.rec.ID()),
		}
	}
	return *p, nil
}

// Encode renders a bound struct value, or a pointer to one, to raw form.
func Encode(b *Binding, v any) (any, error) { return b.e.Render(v) }

func (b *Binding) lookup(v any) (*bindery.Record, bool) {
	rt := reflect.TypeOf(v)
	if rt == nil {
		return nil, false
	}
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	sr, ok := b.recordOf(rt)
	if !ok {
		return nil, false
	}
	return sr.rec, true
}

func (b *Binding) recordOf(rt reflect.Type) (*structRecord, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	sr, ok := b.byType[rt]
	return sr, ok
}

func (b *Binding) bind(rt reflect.Type, cfg structConfig) (*bindery.Record, error) {
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil, declIssue(bindery.CodeUnsupportedType, fmt.Sprintf("%s is not a struct type", rt))
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bindLocked(rt, cfg)
}

func (b *Binding) bindLocked(rt reflect.Type, cfg structConfig) (*bindery.Record, error) {
	if sr, ok := b.byType[rt]; ok {
		return sr.rec, nil
	}
	name := cfg.name
	if name == "" {
		name = rt.Name()
	}
	if name == "" {
		return nil, declIssue(bindery.CodeUnsupportedType, fmt.Sprintf("anonymous struct %s needs WithName", rt))
	}
	b.pending[rt] = name
	defer delete(b.pending, rt)

	spec := bindery.RecordSpec{
		Name:             name,
		DiscriminatorKey: cfg.discriminator,
		Tag:              cfg.tag,
		IgnoreExtraKeys:  cfg.ignoreExtraKeys,
	}
	paths := map[string][]int{}
	var base *structRecord
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && base == nil {
			if _, err := b.bindLocked(sf.Type, structConfig{}); err != nil {
				return nil, err
			}
			base = b.byType[sf.Type]
			spec.Base = base.rec.ID()
			for j, f := range base.rec.Fields() {
				if _, own := paths[f.Name]; !own {
					paths[f.Name] = append([]int{i}, base.index[j]...)
				}
			}
			continue
		}
		if !sf.IsExported() {
			continue
		}
		key := ResolveStructKey(sf)
		if key == "-" || key == "" {
			continue
		}
		fs, err := b.fieldSpec(name, sf, key)
		if err != nil {
			return nil, err
		}
		spec.Fields = append(spec.Fields, fs)
		paths[sf.Name] = []int{i}
	}

	sr := &structRecord{rt: rt}
	spec.Binder = structBinder{sr: sr}
	rec, err := b.e.Declare(spec)
	if err != nil {
		return nil, err
	}
	sr.rec = rec
	for _, f := range rec.Fields() {
		sr.index = append(sr.index, paths[f.Name])
	}
	b.byType[rt] = sr
	return rec, nil
}

func (b *Binding) fieldSpec(record string, sf reflect.StructField, key string) (bindery.FieldSpec, error) {
	fs := bindery.FieldSpec{Name: sf.Name, Key: key}
	if expr, ok := sf.Tag.Lookup("type"); ok {
		t, err := bindery.ParseType(expr)
		if err != nil {
			return fs, withField(err, record, sf.Name)
		}
		fs.Type = t
	} else {
		t, err := b.typeOf(sf.Type)
		if err != nil {
			return fs, withField(err, record, sf.Name)
		}
		fs.Type = t
	}
	if lit, ok := sf.Tag.Lookup("default"); ok {
		var v any
		if err := yaml.Unmarshal([]byte(lit), &v); err != nil {
			iss := declIssue(bindery.CodeMalformedDeclaration, fmt.Sprintf("default of %s.%s is not a YAML literal", record, sf.Name))
			iss.Field = sf.Name
			iss.Cause = err
			return fs, iss
		}
		fs.Default = bindery.Value(v)
	}
	return fs, nil
}

// ResolveStructKey resolves the document key of a struct field.
// Priority: bindery:"key" > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if bt, ok := sf.Tag.Lookup("bindery"); ok {
		name, _, _ := strings.Cut(bt, ",")
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			if jt[:i] != "" {
				return jt[:i]
			}
			return sf.Name
		}
		return jt
	}
	return sf.Name
}

func declIssue(code, hint string) *bindery.Issue {
	return &bindery.Issue{Code: code, Message: i18n.T(code, nil), Hint: hint}
}
