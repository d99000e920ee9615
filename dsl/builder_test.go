package dsl_test

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/reoring/bindery"
	g "github.com/reoring/bindery/dsl"
)

func TestBuilder_PolymorphicTree(t *testing.T) {
	e := bindery.New(bindery.WithStrictResults(true))
	base := g.Record("Base").Discriminator("type").Field("common", "int", g.Default(1)).MustDeclare(e)
	a1 := g.Record("A1").Extends("Base").Tag("A1").Field("a", "str", g.Default("a1")).MustDeclare(e)
	a2 := g.Record("A2").Extends("A1").Tag("A2").Field("a", "str", g.Default("a2")).MustDeclare(e)

	v, err := e.Convert(base, map[string]any{"type": "A1"})
	require.NoError(t, err)
	inst := v.(*bindery.Instance)
	require.Same(t, a1, inst.Record())
	require.Equal(t, []any{1, "a1"}, inst.Values())

	_, err = e.Convert(a2, map[string]any{"type": "A1"})
	require.ErrorIs(t, err, bindery.ErrUnknownTypeTag)

	v, err = e.Convert(a2, map[string]any{})
	require.NoError(t, err)
	out, err := e.Render(v)
	require.NoError(t, err)
	b, err := json.Marshal(out)
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"A2","common":1,"a":"a2"}`, string(b))
	require.Equal(t, []string{"type", "common", "a"}, out.(*bindery.Object).Keys())
}

func TestBuilder_KeysAndDefaults(t *testing.T) {
	e := bindery.New()
	n := 0
	rec := g.Record("Server").
		Field("listenAddr", "str", g.Key("listen_addr"), g.Default(":8080")).
		Field("tags", "list[str]", g.Default([]any{"a"})).
		Field("seq", "int", g.DefaultFunc(func() any { n++; return n })).
		Field("timeout", "float | None", g.Default(nil)).
		IgnoreExtraKeys().
		MustDeclare(e)

	v, err := e.Convert(rec, map[string]any{"listen_addr": ":9090", "other": true})
	require.NoError(t, err)
	inst := v.(*bindery.Instance)
	require.Equal(t, ":9090", inst.Get("listenAddr"))
	require.Equal(t, []any{"a"}, inst.Get("tags"))
	require.Equal(t, 1, inst.Get("seq"))
	require.Nil(t, inst.Get("timeout"))

	v2, err := e.Convert(rec, map[string]any{})
	require.NoError(t, err)
	require.Equal(t, 2, v2.(*bindery.Instance).Get("seq"))
	require.Equal(t, ":8080", v2.(*bindery.Instance).Get("listenAddr"))
}

func TestBuilder_ExpressionErrorsAggregated(t *testing.T) {
	spec, err := g.Record("Bad").
		Field("a", "int | str").
		Field("b", "list[int, int]").
		Field("c", "int").
		Spec()
	require.Error(t, err)
	require.Empty(t, spec.Name)
	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	require.True(t, errors.Is(errs[0], bindery.ErrUnsupportedType))
	require.True(t, errors.Is(errs[1], bindery.ErrMalformedDeclaration))
	iss, ok := bindery.AsIssue(errs[1])
	require.True(t, ok)
	require.Equal(t, "b", iss.Field)
}

func TestBuilder_MustDeclarePanics(t *testing.T) {
	e := bindery.New()
	g.Record("Dup").MustDeclare(e)
	require.Panics(t, func() { g.Record("Dup").MustDeclare(e) })
}
