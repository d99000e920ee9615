package bindery_test

import (
	"testing"

	"github.com/goccy/go-json"

	"github.com/reoring/bindery"
	js "github.com/reoring/bindery/jsonschema"
)

func TestJSONSchema_RecursiveRecord(t *testing.T) {
	e, node := nodeEngine(t)
	s, err := e.JSONSchema(node)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	if s.Ref != js.DefRef("Node") || s.Schema != js.Draft {
		t.Fatalf("root: %+v", s)
	}
	def := s.Defs["Node"]
	if def == nil || def.Type != "object" || def.AdditionalProperties != false {
		t.Fatalf("def: %+v", def)
	}
	if len(def.Required) != 1 || def.Required[0] != "name" {
		t.Fatalf("required: %v", def.Required)
	}
	children := def.Properties["children"]
	if children.Type != "array" || children.Items.Ref != js.DefRef("Node") {
		t.Fatalf("children: %+v", children)
	}
	if d, ok := children.Default.([]any); !ok || len(d) != 0 {
		t.Fatalf("default: %#v", children.Default)
	}
	if _, err := json.Marshal(s); err != nil {
		t.Fatalf("marshal: %v", err)
	}
}

func TestJSONSchema_Polymorphic(t *testing.T) {
	e, base, _, _, _ := polyEngine(t)
	holder := declare(t, e, bindery.RecordSpec{Name: "Holder", Fields: []bindery.FieldSpec{
		{Name: "item", Type: bindery.Optional(bindery.RecordOf("Base")), Default: bindery.Value(nil)},
	}})
	s, err := e.JSONSchema(holder)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	item := s.Defs["Holder"].Properties["item"]
	if len(item.AnyOf) != 2 || item.AnyOf[0].Ref != js.DefRef("Base") || item.AnyOf[1].Type != "null" {
		t.Fatalf("optional: %+v", item)
	}
	union := s.Defs[base.ID()]
	if len(union.OneOf) != 4 {
		t.Fatalf("expected Base and 3 variants, got %d", len(union.OneOf))
	}
	a1 := union.OneOf[1]
	if a1.Title != "A1" || a1.Properties["type"].Const == nil || *a1.Properties["type"].Const != "A1" {
		t.Fatalf("variant: %+v", a1)
	}
	if a1.Required[0] != "type" {
		t.Fatalf("variant tag must be required: %v", a1.Required)
	}
	if _, ok := union.OneOf[0].Properties["type"]; ok {
		t.Fatalf("untagged root must not carry the discriminator")
	}
}
