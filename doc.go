// Package bindery provides:
//
// - Type-directed conversion of untyped trees (maps, lists, scalars) into typed record values and back
// - Record declarations with inheritance, defaults and discriminator-based polymorphism
// - A stable error model via *Issue (JSON Pointer, code, message)
// - JSON Schema export of declared records
//
// Design policy:
// - Keep only the conversion engine in the root package; declaration front-ends live under dsl/.
// - Place document loaders under load/ and the CLI under cmd/bindery.
// - The engine performs no reflection and no I/O.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	e := bindery.New()
//	node, _ := e.Declare(bindery.RecordSpec{
//		Name: "Node",
//		Fields: []bindery.FieldSpec{
//			{Name: "name", Type: bindery.String()},
//			{Name: "children", Type: bindery.List(bindery.RecordOf("Node")), Default: bindery.Value([]any{})},
//		},
//	})
//	v, err := e.Convert(node, map[string]any{"name": "root"})
//	raw, err := e.Render(v)
package bindery
