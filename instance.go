package bindery

// Instance is the typed value of a record built without a custom Binder.
// Field values are stored in declaration order.
type Instance struct {
	rec  *Record
	vals []any
}

// NewInstance builds an instance of rec from its field values in declaration
// order. Missing trailing values are nil.
func NewInstance(rec *Record, values ...any) *Instance {
	vals := make([]any, len(rec.fields))
	copy(vals, values)
	return &Instance{rec: rec, vals: vals}
}

// Record returns the concrete record of the instance.
func (in *Instance) Record() *Record { return in.rec }

// Get returns the value of the named field, or nil.
func (in *Instance) Get(name string) any {
	v, _ := in.Lookup(name)
	return v
}

// Lookup returns the value of the named field and whether the field exists.
func (in *Instance) Lookup(name string) (any, bool) {
	i, ok := in.rec.byName[name]
	if !ok {
		return nil, false
	}
	return in.vals[i], true
}

// Set replaces the value of the named field. It reports false when the record
// has no such field. The value is not converted.
func (in *Instance) Set(name string, v any) bool {
	i, ok := in.rec.byName[name]
	if !ok {
		return false
	}
	in.vals[i] = v
	return true
}

// Values returns a copy of the field values in declaration order.
func (in *Instance) Values() []any {
	out := make([]any, len(in.vals))
	copy(out, in.vals)
	return out
}

// Equal reports whether o is an instance of the same record with equal
// field values.
func (in *Instance) Equal(o *Instance) bool {
	if in == nil || o == nil {
		return in == o
	}
	if in.rec != o.rec || len(in.vals) != len(o.vals) {
		return false
	}
	for i := range in.vals {
		if !Equal(in.vals[i], o.vals[i]) {
			return false
		}
	}
	return true
}

type instanceBinder struct{ rec *Record }

func (b instanceBinder) New(values []any) (any, error) {
	return &Instance{rec: b.rec, vals: values}, nil
}

func (b instanceBinder) Values(v any) ([]any, bool) {
	in, ok := v.(*Instance)
	if !ok || in == nil || in.rec != b.rec {
		return nil, false
	}
	return in.vals, true
}
