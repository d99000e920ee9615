package jsonschema_test

import (
	"testing"

	"github.com/goccy/go-json"

	js "github.com/reoring/bindery/jsonschema"
)

func TestSchema_MarshalOmitsEmpty(t *testing.T) {
	s := &js.Schema{
		Schema: js.Draft,
		Ref:    js.DefRef("Node"),
		Defs: map[string]*js.Schema{
			"Node": {Type: "object", Properties: map[string]*js.Schema{"kind": {Type: "string", Const: js.Const("leaf")}}},
		},
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"$schema":"https://json-schema.org/draft/2020-12/schema","$ref":"#/$defs/Node","$defs":{"Node":{"type":"object","properties":{"kind":{"type":"string","const":"leaf"}}}}}`
	if string(b) != want {
		t.Fatalf("got %s\nwant %s", b, want)
	}
}

func TestSchema_ZeroDefaultIsKept(t *testing.T) {
	b, err := json.Marshal(&js.Schema{Type: "integer", Default: 0})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"type":"integer","default":0}` {
		t.Fatalf("got %s", b)
	}
}
