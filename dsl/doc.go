// Package dsl declares bindery records.
//
// Overview
//   - Builder API: declare a record from type expressions with Record(name).Field(name, expr, opts...).Declare(e).
//   - Struct binding: derive records from Go struct types with Struct[T](NewBinding(e)); converted values are *T.
//   - Schema files: declare a set of records from a YAML document with LoadSchema.
//
// Entry points
//   - Record(name): builder; chain Extends/Discriminator/Tag/IgnoreExtraKeys/Field, then Declare or MustDeclare.
//   - NewBinding(e), Struct[T](b, opts...): bind a struct type; Decode[T] and Encode convert with it.
//   - LoadSchema(e, data): declare every record of a schema document, reporting all failures.
//
// Struct tags
//   - bindery:"key" sets the document key (json:"key" is used otherwise); bindery:"-" skips the field.
//   - default:"<yaml literal>" sets a default value, converted through the field type.
//   - type:"<type expression>" replaces the type derived from the Go type, for example to hold
//     polymorphic records in an any-typed field.
//
// Example (builder)
//
//	e := bindery.New()
//	g.Record("Base").Discriminator("type").Field("common", "int", g.Default(1)).MustDeclare(e)
//	g.Record("A1").Extends("Base").Tag("A1").Field("a", "str", g.Default("a1")).MustDeclare(e)
//	base, _ := e.Record("Base")
//	v, _ := e.Convert(base, map[string]any{"type": "A1"}) // *bindery.Instance of A1
//
// Example (struct binding)
//
//	type Node struct {
//	    Name     string  `json:"name"`
//	    Children []*Node `json:"children" default:"[]"`
//	}
//
//	b := g.NewBinding(bindery.New())
//	g.MustStruct[Node](b)
//	n, err := g.Decode[Node](b, map[string]any{"name": "root"})
//
// Example (schema file)
//
//	records:
//	  - name: Node
//	    fields:
//	      - {name: name, type: str}
//	      - {name: children, type: "list[Node]", default: []}
package dsl
