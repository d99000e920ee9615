package bindery

import (
	js "github.com/reoring/bindery/jsonschema"
)

// JSONSchema projects rec and every record reachable from it into a JSON
// Schema document. Records live under "$defs" and are referenced with "$ref",
// so recursive records terminate. A record with registered descendants
// becomes a "oneOf" over itself and each descendant.
func (e *Engine) JSONSchema(rec *Record) (*js.Schema, error) {
	x := &schemaExport{e: e, defs: map[string]*js.Schema{}}
	x.queue = append(x.queue, rec)
	x.seen = map[*Record]bool{rec: true}
	for len(x.queue) > 0 {
		r := x.queue[0]
		x.queue = x.queue[1:]
		def, err := x.recordDef(r)
		if err != nil {
			return nil, err
		}
		x.defs[r.id] = def
	}
	return &js.Schema{Schema: js.Draft, Ref: js.DefRef(rec.id), Defs: x.defs}, nil
}

type schemaExport struct {
	e     *Engine
	defs  map[string]*js.Schema
	queue []*Record
	seen  map[*Record]bool
}

func (x *schemaExport) enqueue(id string) (string, error) {
	r, ok := x.e.Record(id)
	if !ok {
		return "", declIssue(CodeUnsupportedType, "unknown record "+id)
	}
	if !x.seen[r] {
		x.seen[r] = true
		x.queue = append(x.queue, r)
	}
	return js.DefRef(id), nil
}

func (x *schemaExport) recordDef(r *Record) (*js.Schema, error) {
	own, err := x.object(r, false)
	if err != nil {
		return nil, err
	}
	if r.disc == nil {
		return own, nil
	}
	children := r.disc.Children()
	if len(children) == 0 {
		return own, nil
	}
	union := &js.Schema{Title: r.id, OneOf: []*js.Schema{own}}
	for _, tag := range sortedKeys(tagSet(children)) {
		obj, err := x.object(children[tag], true)
		if err != nil {
			return nil, err
		}
		union.OneOf = append(union.OneOf, obj)
	}
	return union, nil
}

func tagSet(m map[string]*Record) map[string]struct{} {
	out := make(map[string]struct{}, len(m))
	for k := range m {
		out[k] = struct{}{}
	}
	return out
}

// object emits the object schema of one concrete record. A variant reached
// through an ancestor must carry its tag; the record itself may omit it.
func (x *schemaExport) object(r *Record, variant bool) (*js.Schema, error) {
	if err := r.prepare(x.e, newWalk()); err != nil {
		return nil, err
	}
	s := &js.Schema{Title: r.id, Type: "object", Properties: map[string]*js.Schema{}}
	if !r.ignoreExtraKeys {
		s.AdditionalProperties = false
	}
	if d := r.disc; d != nil && d.Tag != "" {
		s.Properties[d.Key] = &js.Schema{Type: "string", Const: js.Const(d.Tag)}
		if variant {
			s.Required = append(s.Required, d.Key)
		}
	}
	for _, f := range r.fields {
		fs, err := x.typeSchema(f.Type)
		if err != nil {
			return nil, err
		}
		if f.Required() {
			s.Required = append(s.Required, f.Key)
		} else if !f.Default.IsFactory() {
			def, err := x.renderDefault(f)
			if err != nil {
				return nil, err
			}
			fs.Default = def
		}
		s.Properties[f.Key] = fs
	}
	return s, nil
}

func (x *schemaExport) renderDefault(f *Field) (any, error) {
	w := newWalk()
	v, err := f.def.get(w)
	if err != nil {
		return nil, err
	}
	return f.conv.render(v, w)
}

func (x *schemaExport) typeSchema(t Type) (*js.Schema, error) {
	switch t.kind {
	case KindNull:
		return &js.Schema{Type: "null"}, nil
	case KindScalar:
		return scalarSchema(t.scalar), nil
	case KindOptional:
		inner, err := x.typeSchema(t.args[0])
		if err != nil {
			return nil, err
		}
		return &js.Schema{AnyOf: []*js.Schema{inner, {Type: "null"}}}, nil
	case KindList:
		item, err := x.typeSchema(t.args[0])
		if err != nil {
			return nil, err
		}
		return &js.Schema{Type: "array", Items: item}, nil
	case KindMap:
		v, err := x.typeSchema(t.args[1])
		if err != nil {
			return nil, err
		}
		s := &js.Schema{Type: "object", AdditionalProperties: v}
		if !isStringType(t.args[0]) {
			s.PropertyNames = &js.Schema{Description: "keys convertible to " + t.args[0].String()}
		}
		return s, nil
	case KindRecord:
		ref, err := x.enqueue(t.record)
		if err != nil {
			return nil, err
		}
		return &js.Schema{Ref: ref}, nil
	case KindDynamic:
		switch t.shape {
		case ShapeList:
			return &js.Schema{Type: "array"}, nil
		case ShapeMap:
			return &js.Schema{Type: "object"}, nil
		}
		return &js.Schema{}, nil
	}
	return nil, declIssue(CodeUnsupportedType, "unknown type kind "+t.kind.String())
}

func scalarSchema(k ScalarKind) *js.Schema {
	switch k {
	case ScalarBool:
		return &js.Schema{Type: "boolean"}
	case ScalarInt:
		return &js.Schema{Type: "integer"}
	case ScalarFloat:
		return &js.Schema{Type: "number"}
	case ScalarComplex:
		return &js.Schema{Type: "string", Format: "complex"}
	case ScalarBytes:
		return &js.Schema{Type: "string", ContentEnc: "base64"}
	case ScalarPath:
		return &js.Schema{Type: "string", Format: "path"}
	case ScalarDateTime:
		return &js.Schema{Type: "string", Format: "date-time"}
	}
	return &js.Schema{Type: "string"}
}
