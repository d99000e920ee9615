package dsl

import (
	"fmt"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/reoring/bindery"
)

// schemaFile is the YAML form of a set of record declarations:
//
//	records:
//	  - name: Node
//	    fields:
//	      - {name: name, type: str}
//	      - {name: children, type: "list[Node]", default: []}
type schemaFile struct {
	Records []recordDoc `yaml:"records"`
}

type recordDoc struct {
	Name            string     `yaml:"name"`
	Extends         string     `yaml:"extends"`
	Discriminator   string     `yaml:"discriminator"`
	Tag             string     `yaml:"tag"`
	IgnoreExtraKeys bool       `yaml:"ignore_extra_keys"`
	Fields          []fieldDoc `yaml:"fields"`
}

type fieldDoc struct {
	Name    string     `yaml:"name"`
	Key     string     `yaml:"key"`
	Type    string     `yaml:"type"`
	Default *yaml.Node `yaml:"default"`
}

// UnmarshalYAML keeps the default node even when it is null, so that
// "default: null" differs from an absent default.
func (f *fieldDoc) UnmarshalYAML(n *yaml.Node) error {
	type plain fieldDoc
	if err := n.Decode((*plain)(f)); err != nil {
		return err
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == "default" {
			f.Default = n.Content[i+1]
		}
	}
	return nil
}

// LoadSchema declares the records of a YAML schema document with e. Records
// may appear before their base. Type expressions may only reference records
// of the document or records already declared with e. Every failing record
// is reported; the records that could be declared stay declared.
func LoadSchema(e *bindery.Engine, data []byte) ([]*bindery.Record, error) {
	var doc schemaFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		iss := declIssue(bindery.CodeMalformedDeclaration, "schema document is not valid YAML")
		iss.Cause = err
		return nil, iss
	}

	inDoc := make(map[string]struct{}, len(doc.Records))
	for _, rd := range doc.Records {
		inDoc[rd.Name] = struct{}{}
	}
	known := func(name string) bool {
		if _, ok := inDoc[name]; ok {
			return true
		}
		_, ok := e.Record(name)
		return ok
	}

	var errs error
	builders := make([]*recordBuilder, len(doc.Records))
	for i, rd := range doc.Records {
		b, err := rd.builder(known)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		builders[i] = b
	}

	out := make([]*bindery.Record, len(doc.Records))
	for progress := true; progress; {
		progress = false
		for i, b := range builders {
			if b == nil || out[i] != nil {
				continue
			}
			if base := b.spec.Base; base != "" {
				if _, ok := e.Record(base); !ok {
					if _, later := inDoc[base]; later {
						continue
					}
				}
			}
			r, err := b.Declare(e)
			builders[i] = nil
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			out[i] = r
			progress = true
		}
	}
	for i, b := range builders {
		if b != nil {
			errs = multierr.Append(errs, declIssue(bindery.CodeUnsupportedType,
				fmt.Sprintf("base %s of record %s could not be declared", b.spec.Base, doc.Records[i].Name)))
		}
	}

	recs := make([]*bindery.Record, 0, len(out))
	for _, r := range out {
		if r != nil {
			recs = append(recs, r)
		}
	}
	return recs, errs
}

func (rd recordDoc) builder(known func(string) bool) (*recordBuilder, error) {
	b := Record(rd.Name).Extends(rd.Extends).Discriminator(rd.Discriminator).Tag(rd.Tag)
	b.known = known
	if rd.IgnoreExtraKeys {
		b.IgnoreExtraKeys()
	}
	var errs error
	for _, fd := range rd.Fields {
		if fd.Type == "" {
			iss := declIssue(bindery.CodeMalformedDeclaration, "field has no type; record "+rd.Name)
			iss.Field = fd.Name
			errs = multierr.Append(errs, iss)
			continue
		}
		var opts []FieldOption
		if fd.Key != "" {
			opts = append(opts, Key(fd.Key))
		}
		if fd.Default != nil {
			var v any
			if err := fd.Default.Decode(&v); err != nil {
				iss := declIssue(bindery.CodeMalformedDeclaration, "default is not decodable; record "+rd.Name)
				iss.Field = fd.Name
				iss.Cause = err
				errs = multierr.Append(errs, iss)
				continue
			}
			opts = append(opts, Default(v))
		}
		b.Field(fd.Name, fd.Type, opts...)
	}
	if errs != nil {
		return nil, errs
	}
	return b, nil
}
