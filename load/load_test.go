package load_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/reoring/bindery"
	g "github.com/reoring/bindery/dsl"
	"github.com/reoring/bindery/load"
)

func marshal(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestYAML_OrderAndScalars(t *testing.T) {
	docs, err := load.YAML([]byte(`
zeta: 1
alpha: [true, 2.5, ~, "3"]
base: &b {x: 1}
copy: *b
---
second: doc
`))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	obj, ok := docs[0].(*bindery.Object)
	require.True(t, ok)
	require.Equal(t, []string{"zeta", "alpha", "base", "copy"}, obj.Keys())
	require.Equal(t, `{"zeta":1,"alpha":[true,2.5,null,"3"],"base":{"x":1},"copy":{"x":1}}`, marshal(t, obj))
	z, _ := obj.Get("zeta")
	require.IsType(t, 0, z)
}

func TestYAML_NonStringKeys(t *testing.T) {
	docs, err := load.YAML([]byte("1: one\n2: two\n"))
	require.NoError(t, err)
	require.Equal(t, map[any]any{1: "one", 2: "two"}, docs[0])

	e := bindery.New()
	v, err := e.ConvertType(bindery.Map(bindery.Int(), bindery.String()), docs[0])
	require.NoError(t, err)
	require.Equal(t, map[any]any{1: "one", 2: "two"}, v)
}

func TestYAML_DuplicateKeys(t *testing.T) {
	src := []byte("a: 1\nb:\n  c: 1\n  c: 2\n")
	_, err := load.YAML(src)
	var dup *load.DuplicateKeyError
	require.True(t, errors.As(err, &dup), "got %v", err)
	require.Equal(t, "c", dup.Key)
	require.Equal(t, "/b", dup.Path)
	require.Equal(t, 4, dup.Line)
	require.Equal(t, 3, dup.FirstLine)

	docs, err := load.YAML(src, load.AllowDuplicateKeys())
	require.NoError(t, err)
	require.Equal(t, `{"a":1,"b":{"c":2}}`, marshal(t, docs[0]))
}

func TestJSON_OrderNumbersAndErrors(t *testing.T) {
	v, err := load.JSON([]byte(`{"b": 1, "a": [1.5, 1e2, -3, "x", null, false], "n": {}}`))
	require.NoError(t, err)
	obj := v.(*bindery.Object)
	require.Equal(t, []string{"b", "a", "n"}, obj.Keys())
	a, _ := obj.Get("a")
	require.Equal(t, []any{1.5, 100.0, -3, "x", nil, false}, a)

	_, err = load.JSON([]byte(`{"k": 1, "k": 2}`))
	var dup *load.DuplicateKeyError
	require.True(t, errors.As(err, &dup))
	require.Equal(t, "/", dup.Path)

	_, err = load.JSON([]byte(`{} {}`))
	require.Error(t, err)
	_, err = load.JSON([]byte(``))
	var fe *load.FileError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, load.FormatJSON, fe.Format)
}

func TestHCL_Attributes(t *testing.T) {
	v, err := load.HCL([]byte(`
name   = "svc"
port   = 8080
ratio  = 0.5
tags   = ["a", "b"]
limits = { mem = "1Gi", cpu = 2 }
none   = null
`), "svc.hcl")
	require.NoError(t, err)
	require.Equal(t, `{"name":"svc","port":8080,"ratio":0.5,"tags":["a","b"],"limits":{"cpu":2,"mem":"1Gi"},"none":null}`, marshal(t, v))
	port, _ := v.(*bindery.Object).Get("port")
	require.IsType(t, 0, port)

	_, err = load.HCL([]byte(`block "x" {}`), "bad.hcl")
	require.Error(t, err)
}

func TestFile_ByExtensionAndDecode(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		return p
	}
	yml := write("svc.yml", "name: a\nport: 1\n---\nname: b\n")
	js := write("svc.json", `{"name": "c", "port": "3"}`)
	hc := write("svc.hcl", "name = \"d\"\nport = 4\n")
	txt := write("svc.txt", "name: e")

	e := bindery.New()
	rec := g.Record("Service").Field("name", "str").Field("port", "int", g.Default(80)).MustDeclare(e)

	got := map[string][]any{}
	for _, p := range []string{yml, js, hc} {
		vals, err := load.Decode(e, rec, p)
		require.NoError(t, err)
		for _, v := range vals {
			inst := v.(*bindery.Instance)
			got[filepath.Ext(p)] = append(got[filepath.Ext(p)], inst.Values())
		}
	}
	require.Equal(t, map[string][]any{
		".yml":  {[]any{"a", 1}, []any{"b", 80}},
		".json": {[]any{"c", 3}},
		".hcl":  {[]any{"d", 4}},
	}, got)

	_, err := load.File(txt)
	var fe *load.FileError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, txt, fe.File)

	_, err = load.File(filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := write("bad.yaml", "name: 1\nextra: true\n")
	_, err = load.Decode(e, rec, bad)
	require.ErrorIs(t, err, bindery.ErrExtraKeysPresent)
}
