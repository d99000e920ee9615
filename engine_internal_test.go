package bindery

import (
	"errors"
	"sync"
	"testing"
)

func TestConverter_ConcurrentFirstUseYieldsOneInstance(t *testing.T) {
	e := New()
	typ := List(Optional(Int()))
	got := make([]converter, 64)
	var wg sync.WaitGroup
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := e.converter(typ)
			if err != nil {
				t.Errorf("converter: %v", err)
				return
			}
			got[i] = c
		}(i)
	}
	wg.Wait()
	for i := range got {
		if got[i] != got[0] {
			t.Fatalf("goroutine %d saw a different converter", i)
		}
	}
	if n := len(e.convs); n != 1 {
		t.Fatalf("expected only the list converter to be built, got %d", n)
	}
}

func TestConverter_BuildDoesNotResolveChildren(t *testing.T) {
	e := New()
	if _, err := e.converter(List(RecordOf("Later"))); err != nil {
		t.Fatalf("building must not look up the item record: %v", err)
	}
	if _, err := e.ConvertType(List(RecordOf("Later")), []any{}); err != nil {
		t.Fatalf("empty list needs no item converter: %v", err)
	}
	if _, err := e.ConvertType(List(RecordOf("Later")), []any{map[string]any{}}); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected unsupported type for undeclared record, got %v", err)
	}
}

type lyingConverter struct{ scalarConverter }

func (lyingConverter) parse(raw any, w *walk) (any, error) { return "not an int", nil }

func TestStrictResults_Mismatch(t *testing.T) {
	c := strictConverter{inner: lyingConverter{scalarConverter{kind: ScalarInt}}, t: Int()}
	_, err := c.parse(1, newWalk())
	if !errors.Is(err, ErrResultTypeMismatch) {
		t.Fatalf("expected result type mismatch, got %v", err)
	}
	e := New(WithStrictResults(true))
	if !e.Strict() {
		t.Fatalf("strict option not applied")
	}
	v, err := e.ConvertType(List(Int()), []any{"1", 2.0})
	if err != nil {
		t.Fatalf("strict convert: %v", err)
	}
	if got := v.([]any); got[0] != 1 || got[1] != 2 {
		t.Fatalf("got %v", got)
	}
}
