package dsl

import (
	"go.uber.org/multierr"

	"github.com/reoring/bindery"
)

type recordBuilder struct {
	spec   bindery.RecordSpec
	fields []fieldDecl
	known  func(name string) bool
}

type fieldDecl struct {
	name string
	expr string
	opts []FieldOption
}

// FieldOption configures one field declared with Field.
type FieldOption func(*bindery.FieldSpec)

// Record starts the declaration of a record named name.
func Record(name string) *recordBuilder {
	return &recordBuilder{spec: bindery.RecordSpec{Name: name}}
}

// Extends makes base the parent record. Its fields precede the own fields.
func (b *recordBuilder) Extends(base string) *recordBuilder {
	b.spec.Base = base
	return b
}

// Discriminator makes the record the root of a polymorphic tree keyed by key.
func (b *recordBuilder) Discriminator(key string) *recordBuilder {
	b.spec.DiscriminatorKey = key
	return b
}

// Tag sets the type tag identifying the record within its tree.
func (b *recordBuilder) Tag(tag string) *recordBuilder {
	b.spec.Tag = tag
	return b
}

// IgnoreExtraKeys discards unknown document keys instead of failing.
func (b *recordBuilder) IgnoreExtraKeys() *recordBuilder {
	b.spec.IgnoreExtraKeys = true
	return b
}

// Binder sets a custom binder for the typed values of the record.
func (b *recordBuilder) Binder(bd bindery.Binder) *recordBuilder {
	b.spec.Binder = bd
	return b
}

// Field declares a field whose type is the type expression expr, for example
// "list[int]", "Optional[Node]" or "dict[str, float] | None".
func (b *recordBuilder) Field(name, expr string, opts ...FieldOption) *recordBuilder {
	b.fields = append(b.fields, fieldDecl{name: name, expr: expr, opts: opts})
	return b
}

// Key sets the document key of the field.
func Key(k string) FieldOption {
	return func(fs *bindery.FieldSpec) { fs.Key = k }
}

// Default sets a default value. It is converted through the field type.
func Default(v any) FieldOption {
	return func(fs *bindery.FieldSpec) { fs.Default = bindery.Value(v) }
}

// DefaultFunc sets a default produced by fn on every construction.
func DefaultFunc(fn func() any) FieldOption {
	return func(fs *bindery.FieldSpec) { fs.Default = bindery.Factory(fn) }
}

// Spec resolves the type expressions and returns the declaration. All
// expression errors are reported together.
func (b *recordBuilder) Spec() (bindery.RecordSpec, error) {
	spec := b.spec
	spec.Fields = make([]bindery.FieldSpec, 0, len(b.fields))
	var errs error
	for _, fd := range b.fields {
		t, err := bindery.ParseTypeFunc(fd.expr, b.known)
		if err != nil {
			errs = multierr.Append(errs, withField(err, b.spec.Name, fd.name))
			continue
		}
		fs := bindery.FieldSpec{Name: fd.name, Type: t}
		for _, opt := range fd.opts {
			opt(&fs)
		}
		spec.Fields = append(spec.Fields, fs)
	}
	if errs != nil {
		return bindery.RecordSpec{}, errs
	}
	return spec, nil
}

// Declare registers the record with e.
func (b *recordBuilder) Declare(e *bindery.Engine) (*bindery.Record, error) {
	spec, err := b.Spec()
	if err != nil {
		return nil, err
	}
	return e.Declare(spec)
}

// MustDeclare is like Declare but panics on error.
func (b *recordBuilder) MustDeclare(e *bindery.Engine) *bindery.Record {
	r, err := b.Declare(e)
	if err != nil {
		panic(err)
	}
	return r
}

// withField attributes err to one field of a record.
func withField(err error, record, field string) error {
	iss, ok := bindery.AsIssue(err)
	if !ok {
		return err
	}
	out := *iss
	out.Field = field
	if out.Hint == "" {
		out.Hint = "record " + record
	} else {
		out.Hint = out.Hint + "; record " + record
	}
	return &out
}
