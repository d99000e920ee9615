package bindery

import (
	"sync"
	"sync/atomic"
)

// FieldSpec declares one record field.
type FieldSpec struct {
	Name    string
	Key     string // Document key; defaults to Name.
	Type    Type
	Default Default
}

// RecordSpec is the resolved declaration of a record handed to Declare. The
// fields are the record's own; the fields of Base precede them.
type RecordSpec struct {
	Name            string
	Base            string // Id of the parent record, if any.
	Fields          []FieldSpec
	IgnoreExtraKeys bool
	// DiscriminatorKey makes the record the root of a polymorphic tree.
	DiscriminatorKey string
	// Tag identifies the record within the tree of its root.
	Tag string
	// Binder materializes typed values; nil builds *Instance values.
	Binder Binder
}

// Binder builds and takes apart the typed values of one record.
type Binder interface {
	// New builds a typed value from field values in declaration order.
	New(values []any) (any, error)
	// Values returns the field values of v in declaration order, and whether
	// v is a value of this record.
	Values(v any) ([]any, bool)
}

// Canonicalizer is implemented by binders that recognize more than one form
// of their typed values. Canonical returns v in the form New produces; typed
// values handed to a conversion are passed through in that form.
type Canonicalizer interface {
	Canonical(v any) any
}

// Field is the resolved metadata of one record field.
type Field struct {
	Name    string
	Key     string
	Type    Type
	Default Default

	conv *convRef
	// resolved by Record.prepare
	def resolvedDefault
}

// Required reports whether the field has no default.
func (f *Field) Required() bool { return f.Default.IsRequired() }

// Discriminator links a record into a polymorphic tree.
type Discriminator struct {
	Key string
	Tag string

	mu       sync.RWMutex
	children map[string]*Record
}

// Children returns the records reachable by tag from the owner, keyed by tag.
func (d *Discriminator) Children() map[string]*Record {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]*Record, len(d.children))
	for k, v := range d.children {
		out[k] = v
	}
	return out
}

func (d *Discriminator) child(tag string) (*Record, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.children[tag]
	return r, ok
}

func (d *Discriminator) register(tag string, r *Record) {
	d.mu.Lock()
	d.children[tag] = r
	d.mu.Unlock()
}

// Record is the immutable descriptor of a declared record.
type Record struct {
	id              string
	base            *Record
	fields          []*Field
	byName          map[string]int
	ignoreExtraKeys bool
	disc            *Discriminator
	binder          Binder

	ready      atomic.Bool
	prepareErr error
}

func (r *Record) ID() string     { return r.id }
func (r *Record) Base() *Record  { return r.base }
func (r *Record) String() string { return r.id }

// Fields returns the fields in declaration order.
func (r *Record) Fields() []*Field {
	out := make([]*Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Field looks up a field by name.
func (r *Record) Field(name string) (*Field, bool) {
	i, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.fields[i], true
}

// IgnoreExtraKeys reports whether unknown document keys are discarded.
func (r *Record) IgnoreExtraKeys() bool { return r.ignoreExtraKeys }

// Discriminator returns the polymorphism info, or nil.
func (r *Record) Discriminator() *Discriminator { return r.disc }

// Type returns the type referencing r.
func (r *Record) Type() Type { return RecordOf(r.id) }

// HasRequired reports whether any field lacks a default.
func (r *Record) HasRequired() bool {
	for _, f := range r.fields {
		if f.Required() {
			return true
		}
	}
	return false
}

// IsAncestorOf reports whether r is a strict ancestor of o.
func (r *Record) IsAncestorOf(o *Record) bool {
	for p := o.base; p != nil; p = p.base {
		if p == r {
			return true
		}
	}
	return false
}

// reaches reports whether a value of o may stand where r is expected.
func (r *Record) reaches(o *Record) bool {
	if r == o {
		return true
	}
	if r.disc == nil || o.disc == nil || o.disc.Tag == "" {
		return false
	}
	c, ok := r.disc.child(o.disc.Tag)
	return ok && c == o
}
