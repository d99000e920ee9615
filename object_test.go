package bindery_test

import (
	"reflect"
	"testing"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/bindery"
)

func TestObject_KeepsInsertionOrder(t *testing.T) {
	o := bindery.NewObject()
	o.Set("b", 1)
	o.Set("a", "x")
	o.Set("b", 2)
	if !reflect.DeepEqual(o.Keys(), []string{"b", "a"}) {
		t.Fatalf("keys: %v", o.Keys())
	}
	if v, ok := o.Get("b"); !ok || v != 2 {
		t.Fatalf("get: %v", v)
	}

	inner := bindery.NewObject()
	inner.Set("z", true)
	o.Set("inner", inner)

	b, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if string(b) != `{"b":2,"a":"x","inner":{"z":true}}` {
		t.Fatalf("json: %s", b)
	}

	y, err := yaml.Marshal(o)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if string(y) != "b: 2\na: x\ninner:\n    z: true\n" {
		t.Fatalf("yaml: %q", y)
	}

	want := map[string]any{"b": 2, "a": "x", "inner": map[string]any{"z": true}}
	if !reflect.DeepEqual(o.Map(), want) {
		t.Fatalf("map: %#v", o.Map())
	}
}

func TestObject_Equal(t *testing.T) {
	a := bindery.NewObject()
	a.Set("x", []any{1})
	b := bindery.NewObject()
	b.Set("x", []any{1})
	if !bindery.Equal(a, b) {
		t.Fatalf("expected equal objects")
	}
	b.Set("y", nil)
	if bindery.Equal(a, b) {
		t.Fatalf("expected different objects")
	}
	var nilObj *bindery.Object
	if nilObj.Len() != 0 || nilObj.Keys() != nil {
		t.Fatalf("nil object")
	}
}
