package bindery

import (
	"fmt"
	"unicode"
)

// Declare registers a record. The base's fields come first, and an own field
// with the name of a base field replaces it in place. When the record names a
// type tag it is registered into the discriminator children of every
// ancestor.
func (e *Engine) Declare(spec RecordSpec) (*Record, error) {
	if err := checkRecordName(spec.Name); err != nil {
		return nil, err
	}

	e.recMu.Lock()
	defer e.recMu.Unlock()

	if _, dup := e.records[spec.Name]; dup {
		return nil, declIssue(CodeMalformedDeclaration, "record "+spec.Name+" is already declared")
	}
	r := &Record{id: spec.Name, ignoreExtraKeys: spec.IgnoreExtraKeys, byName: map[string]int{}}
	if spec.Base != "" {
		base, ok := e.records[spec.Base]
		if !ok {
			return nil, declIssue(CodeUnsupportedType, "base record "+spec.Base+" of "+spec.Name+" is not declared")
		}
		r.base = base
		for _, bf := range base.fields {
			r.byName[bf.Name] = len(r.fields)
			r.fields = append(r.fields, &Field{Name: bf.Name, Key: bf.Key, Type: bf.Type, Default: bf.Default})
		}
	}

	own := map[string]struct{}{}
	for _, fs := range spec.Fields {
		if fs.Name == "" {
			return nil, declIssue(CodeMalformedDeclaration, "record "+spec.Name+" has a field without a name")
		}
		if _, dup := own[fs.Name]; dup {
			iss := declIssue(CodeMalformedDeclaration, "duplicate field in record "+spec.Name)
			iss.Field = fs.Name
			return nil, iss
		}
		own[fs.Name] = struct{}{}
		if fs.Type.IsZero() {
			iss := declIssue(CodeMalformedDeclaration, "field of record "+spec.Name+" has no type")
			iss.Field = fs.Name
			return nil, iss
		}
		key := fs.Key
		if key == "" {
			key = fs.Name
		}
		f := &Field{Name: fs.Name, Key: key, Type: fs.Type, Default: fs.Default}
		if i, ok := r.byName[fs.Name]; ok {
			r.fields[i] = f
			continue
		}
		r.byName[fs.Name] = len(r.fields)
		r.fields = append(r.fields, f)
	}

	keys := make(map[string]string, len(r.fields))
	for _, f := range r.fields {
		if other, dup := keys[f.Key]; dup {
			iss := declIssue(CodeMalformedDeclaration, fmt.Sprintf("fields %s and %s of record %s share the key %q", other, f.Name, spec.Name, f.Key))
			iss.Field = f.Name
			return nil, iss
		}
		keys[f.Key] = f.Name
		f.conv = e.ref(f.Type)
	}

	disc, err := e.discriminatorFor(r, spec, keys)
	if err != nil {
		return nil, err
	}
	r.disc = disc

	r.binder = spec.Binder
	if r.binder == nil {
		r.binder = instanceBinder{rec: r}
	}

	if disc != nil && disc.Tag != "" {
		for p := r.base; p != nil; p = p.base {
			if p.disc != nil {
				p.disc.register(disc.Tag, r)
			}
		}
	}
	e.records[r.id] = r
	e.order = append(e.order, r.id)
	e.log.V(1).Info("declared record", "record", r.id, "fields", len(r.fields), "base", spec.Base, "tag", spec.Tag)
	return r, nil
}

// discriminatorFor builds the discriminator of r. A root declares the key;
// descendants inherit it and may only add a tag.
func (e *Engine) discriminatorFor(r *Record, spec RecordSpec, keys map[string]string) (*Discriminator, error) {
	var inherited *Discriminator
	if r.base != nil {
		inherited = r.base.disc
	}
	if spec.DiscriminatorKey != "" && inherited != nil {
		iss := declIssue(CodeDuplicateDiscriminatorKey, fmt.Sprintf("record %s declares key %q but inherits %q from %s", spec.Name, spec.DiscriminatorKey, inherited.Key, r.base.id))
		return nil, iss
	}
	key := spec.DiscriminatorKey
	if inherited != nil {
		key = inherited.Key
	}
	if key == "" {
		if spec.Tag != "" {
			iss := declIssue(CodeMalformedDeclaration, "record "+spec.Name+" has a type tag but no discriminator key in its ancestry")
			iss.Tag = spec.Tag
			return nil, iss
		}
		return nil, nil
	}
	if name, clash := keys[key]; clash {
		iss := declIssue(CodeMalformedDeclaration, fmt.Sprintf("discriminator key %q of record %s is also the key of field %s", key, spec.Name, name))
		iss.Field = name
		return nil, iss
	}
	if spec.Tag != "" {
		root := r.base
		for root != nil && root.base != nil && root.base.disc != nil {
			root = root.base
		}
		if root != nil {
			_, taken := root.disc.child(spec.Tag)
			if taken || root.disc.Tag == spec.Tag {
				iss := declIssue(CodeMalformedDeclaration, "type tag is already used under root "+root.id)
				iss.Tag = spec.Tag
				return nil, iss
			}
		}
	}
	return &Discriminator{Key: key, Tag: spec.Tag, children: map[string]*Record{}}, nil
}

// checkRecordName rejects ids that the type expression language could not
// refer to.
func checkRecordName(name string) error {
	if name == "" {
		return declIssue(CodeMalformedDeclaration, "record name is empty")
	}
	if IsReservedName(name) {
		return declIssue(CodeMalformedDeclaration, fmt.Sprintf("record name %q is a reserved type name", name))
	}
	for i, c := range name {
		switch {
		case c == '_' || unicode.IsLetter(c):
		case i > 0 && (c == '.' || unicode.IsDigit(c)):
		default:
			return declIssue(CodeMalformedDeclaration, fmt.Sprintf("record name %q is not an identifier", name))
		}
	}
	return nil
}
