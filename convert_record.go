package bindery

import (
	"fmt"
)

// recordConverter parses mappings into typed values of one record, resolving
// the concrete record through the discriminator when the record is part of a
// polymorphic tree.
type recordConverter struct {
	e   *Engine
	rec *Record
}

func (c *recordConverter) parse(raw any, w *walk) (any, error) {
	if got, ok := c.e.RecordOf(raw); ok {
		if c.rec.reaches(got) {
			if cz, ok := got.binder.(Canonicalizer); ok {
				return cz.Canonical(raw), nil
			}
			return raw, nil
		}
		iss := newIssue(CodeNotAMapping, w.path)
		iss.Hint = fmt.Sprintf("value of record %s cannot stand for %s", got.id, c.rec.id)
		return nil, iss
	}
	entries, ok := asMapping(raw)
	if !ok {
		iss := newIssue(CodeNotAMapping, w.path)
		iss.Hint = fmt.Sprintf("got %T for record %s", raw, c.rec.id)
		return nil, iss
	}
	work := make(map[string]any, len(entries))
	var foreign []string
	for _, en := range entries {
		k, ok := en.key.(string)
		if !ok {
			foreign = append(foreign, fmt.Sprint(en.key))
			continue
		}
		work[k] = en.value
	}

	target, err := c.resolve(work, w)
	if err != nil {
		return nil, err
	}
	if err := target.prepare(c.e, w); err != nil {
		return nil, err
	}

	values := make([]any, len(target.fields))
	for i, f := range target.fields {
		fw := w.at(f.Key)
		if rv, ok := work[f.Key]; ok {
			v, err := f.conv.parse(rv, fw)
			if err != nil {
				return nil, err
			}
			values[i] = v
			delete(work, f.Key)
			continue
		}
		if f.Required() {
			iss := newIssue(CodeRequired, fw.path)
			iss.Field = f.Name
			iss.Hint = "record " + target.id
			return nil, iss
		}
		v, err := f.def.get(fw)
		if err != nil {
			return nil, fieldDeclIssue(target, f, err)
		}
		values[i] = v
	}

	if (len(work) > 0 || len(foreign) > 0) && !target.ignoreExtraKeys {
		set := make(map[string]struct{}, len(work)+len(foreign))
		for k := range work {
			set[k] = struct{}{}
		}
		for _, k := range foreign {
			set[k] = struct{}{}
		}
		iss := newIssue(CodeExtraKeys, w.path)
		iss.Keys = sortedKeys(set)
		iss.Hint = "record " + target.id
		return nil, iss
	}

	v, err := target.binder.New(values)
	if err != nil {
		iss := invalidType(w.path, "cannot build "+target.id)
		iss.Cause = err
		return nil, iss
	}
	return v, nil
}

// resolve picks the concrete record named by the discriminator and removes
// the discriminator entry from work. Only the record itself and the
// descendants registered under it are reachable.
func (c *recordConverter) resolve(work map[string]any, w *walk) (*Record, error) {
	d := c.rec.disc
	if d == nil {
		return c.rec, nil
	}
	rawTag, ok := work[d.Key]
	if !ok {
		return c.rec, nil
	}
	delete(work, d.Key)
	tag, isString := rawTag.(string)
	if !isString {
		iss := newIssue(CodeUnknownTypeTag, w.at(d.Key).path)
		iss.Tag = fmt.Sprint(rawTag)
		iss.Hint = fmt.Sprintf("type tag must be a string, got %T", rawTag)
		return nil, iss
	}
	if tag == d.Tag {
		return c.rec, nil
	}
	if child, ok := d.child(tag); ok {
		return child, nil
	}
	iss := newIssue(CodeUnknownTypeTag, w.at(d.Key).path)
	iss.Tag = tag
	iss.Hint = "not reachable from record " + c.rec.id
	return nil, iss
}

func (c *recordConverter) render(v any, w *walk) (any, error) {
	rec, ok := c.e.RecordOf(v)
	if !ok {
		return nil, invalidType(w.path, fmt.Sprintf("expected a value of record %s, got %T", c.rec.id, v))
	}
	if !c.rec.reaches(rec) {
		return nil, invalidType(w.path, fmt.Sprintf("value of record %s cannot stand for %s", rec.id, c.rec.id))
	}
	vals, ok := rec.binder.Values(v)
	if !ok || len(vals) != len(rec.fields) {
		return nil, invalidType(w.path, fmt.Sprintf("binder of %s does not recognize %T", rec.id, v))
	}
	out := NewObject()
	if rec.disc != nil && rec.disc.Tag != "" {
		out.Set(rec.disc.Key, rec.disc.Tag)
	}
	for i, f := range rec.fields {
		rv, err := f.conv.render(vals[i], w.at(f.Key))
		if err != nil {
			return nil, err
		}
		out.Set(f.Key, rv)
	}
	return out, nil
}

func (c *recordConverter) accepts(v any) bool {
	rec, ok := c.e.RecordOf(v)
	return ok && c.rec.reaches(rec)
}
