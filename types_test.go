package bindery_test

import (
	"testing"

	"github.com/reoring/bindery"
)

func TestParseType_Keys(t *testing.T) {
	cases := map[string]string{
		"int":                     "int",
		"string":                  "str",
		"bytearray":               "bytes",
		"Optional[list[int]]":     "Optional[list[int]]",
		"Optional[Optional[int]]": "Optional[int]",
		"dict[str, Node]":         "dict[str, Node]",
		"Dict[str, list[float]]":  "dict[str, list[float]]",
		"list":                    "list",
		"dict":                    "dict",
		"any":                     "any",
		"None":                    "None",
		"Optional[None]":          "None",
		"pkg.Node | None":         "Optional[pkg.Node]",
		"datetime":                "datetime",
		"Path":                    "path",
	}
	for expr, want := range cases {
		typ, err := bindery.ParseType(expr)
		if err != nil {
			t.Fatalf("%q: %v", expr, err)
		}
		if typ.Key() != want {
			t.Fatalf("%q: got %s want %s", expr, typ.Key(), want)
		}
	}
}

func TestParseType_Errors(t *testing.T) {
	cases := []struct {
		expr string
		want error
	}{
		{"int | str", bindery.ErrUnsupportedType},
		{"int | str | None", bindery.ErrUnsupportedType},
		{"None | None", bindery.ErrUnsupportedType},
		{"list[int, str]", bindery.ErrMalformedDeclaration},
		{"dict[str]", bindery.ErrMalformedDeclaration},
		{"Optional[int, str]", bindery.ErrMalformedDeclaration},
		{"int[str]", bindery.ErrMalformedDeclaration},
		{"list[int", bindery.ErrMalformedDeclaration},
		{"", bindery.ErrMalformedDeclaration},
		{"int]", bindery.ErrMalformedDeclaration},
		{"tuple[int]", bindery.ErrUnsupportedType},
		{"list<int>", bindery.ErrMalformedDeclaration},
	}
	for _, tc := range cases {
		_, err := bindery.ParseType(tc.expr)
		wantIssue(t, err, tc.want)
	}
}

func TestParseTypeFunc_UnknownRecord(t *testing.T) {
	known := func(name string) bool { return name == "Node" }
	if _, err := bindery.ParseTypeFunc("list[Node]", known); err != nil {
		t.Fatalf("known record: %v", err)
	}
	_, err := bindery.ParseTypeFunc("list[Nod]", known)
	wantIssue(t, err, bindery.ErrUnsupportedType)
}

func TestTypeConstructors(t *testing.T) {
	if !bindery.Optional(bindery.Optional(bindery.Int())).Equal(bindery.Optional(bindery.Int())) {
		t.Fatalf("nested optional did not collapse")
	}
	if !bindery.Optional(bindery.Null()).Equal(bindery.Null()) {
		t.Fatalf("optional of null is null")
	}
	u, err := bindery.Union(bindery.Null(), bindery.String())
	if err != nil || !u.Equal(bindery.Optional(bindery.String())) {
		t.Fatalf("union: %v %v", u, err)
	}
	m := bindery.Map(bindery.String(), bindery.List(bindery.RecordOf("Node")))
	if m.Kind() != bindery.KindMap || m.KeyType().Kind() != bindery.KindScalar || m.Elem().Elem().RecordID() != "Node" {
		t.Fatalf("accessors: %s", m)
	}
	if !(bindery.Type{}).IsZero() || bindery.Null().IsZero() {
		t.Fatalf("IsZero")
	}
	if bindery.MustParseType("list[int]").String() != "list[int]" {
		t.Fatalf("String")
	}
	if !bindery.IsReservedName("Optional") || bindery.IsReservedName("Node") {
		t.Fatalf("IsReservedName")
	}
}
