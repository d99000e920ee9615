package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSchema = `
records:
  - name: Shape
    discriminator: kind
    fields:
      - {name: color, type: str, default: black}
  - name: Circle
    extends: Shape
    tag: circle
    fields:
      - {name: radius, type: float}
  - name: Canvas
    fields:
      - {name: shapes, type: "list[Shape]", default: []}
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	return dir
}

func runCLI(args ...string) (int, string, string) {
	var out, errOut bytes.Buffer
	code := run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestConvert_JSONAndYAML(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"schema.yaml": testSchema,
		"a.yaml":      "shapes:\n  - {kind: circle, radius: 1}\n---\n{}\n",
		"b.json":      `{"shapes": [{"kind": "circle", "radius": 2.5, "color": "red"}]}`,
	})
	schema := filepath.Join(dir, "schema.yaml")

	code, out, errOut := runCLI("convert", "-schema", schema, "-record", "Canvas",
		filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.json"))
	require.Equal(t, 0, code, errOut)
	require.Equal(t, strings.Join([]string{
		`{"shapes":[{"kind":"circle","color":"black","radius":1}]}`,
		`{"shapes":[]}`,
		`{"shapes":[{"kind":"circle","color":"red","radius":2.5}]}`,
	}, "\n")+"\n", out)

	code, out, errOut = runCLI("convert", "-schema", schema, "-record", "Canvas", "-o", "yaml",
		filepath.Join(dir, "b.json"))
	require.Equal(t, 0, code, errOut)
	require.Equal(t, "shapes:\n  - kind: circle\n    color: red\n    radius: 2.5\n", out)
}

func TestConvert_DumpAndVerbose(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"schema.yaml": testSchema,
		"a.hcl":       "shapes = [{ kind = \"circle\", radius = 3 }]\n",
	})
	code, out, errOut := runCLI("convert", "-dump", "-v", "-schema", filepath.Join(dir, "schema.yaml"),
		"-record", "Canvas", filepath.Join(dir, "a.hcl"))
	require.Equal(t, 0, code, errOut)
	require.Contains(t, out, "bindery.Instance")
	require.Contains(t, out, "Circle")
	require.Contains(t, out, "black")
	require.Contains(t, errOut, "converted documents")
}

func TestConvert_Errors(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"schema.yaml": testSchema,
		"bad.yaml":    "shapes:\n  - {kind: square}\n",
	})
	schema := filepath.Join(dir, "schema.yaml")

	code, _, errOut := runCLI("convert", "-schema", schema, "-record", "Canvas", filepath.Join(dir, "bad.yaml"))
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "square")

	code, _, errOut = runCLI("convert", "-schema", schema, "-record", "Nope", filepath.Join(dir, "bad.yaml"))
	require.Equal(t, 1, code)
	require.Contains(t, errOut, `record "Nope" is not declared`)

	code, _, _ = runCLI("convert", "-schema", schema)
	require.Equal(t, 2, code)

	code, _, _ = runCLI("frobnicate")
	require.Equal(t, 2, code)
}

func TestSchemaAndRecords(t *testing.T) {
	dir := writeFiles(t, map[string]string{"schema.yaml": testSchema})
	schema := filepath.Join(dir, "schema.yaml")

	code, out, errOut := runCLI("schema", "-schema", schema, "-record", "Canvas")
	require.Equal(t, 0, code, errOut)
	require.Contains(t, out, `"$schema": "https://json-schema.org/draft/2020-12/schema"`)
	require.Contains(t, out, `"$ref": "#/$defs/Shape"`)

	code, out, errOut = runCLI("records", "-schema", schema)
	require.Equal(t, 0, code, errOut)
	require.Equal(t, "Shape [kind=]: color str\n"+
		"Circle extends Shape [kind=circle]: color str, radius float\n"+
		"Canvas: shapes list[Shape]\n", out)
}
