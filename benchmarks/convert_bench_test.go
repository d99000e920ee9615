package bindery_test

import (
	"bytes"
	"fmt"
	"strconv"
	"testing"

	"github.com/reoring/bindery"
	g "github.com/reoring/bindery/dsl"
	"github.com/reoring/bindery/load"
)

// ---- Helpers ----

func itemEngine(tb testing.TB) (*bindery.Engine, *bindery.Record) {
	tb.Helper()
	e := bindery.New()
	g.Record("Meta").Field("score", "int").MustDeclare(e)
	rec, err := g.Record("Item").
		Field("id", "str").
		Field("name", "str").
		Field("age", "int").
		Field("active", "bool", g.Default(false)).
		Field("meta", "Optional[Meta]", g.Default(nil)).
		IgnoreExtraKeys().
		Declare(e)
	if err != nil {
		tb.Fatalf("declare failed: %v", err)
	}
	return e, rec
}

// generateItems returns a JSON array of objects of the form:
// [{"id":"obj_0","name":"n0","age":0,"active":true,"meta":{"score":0},"k0":"v0",...}, ...]
func generateItems(numObjects int, extraFields int) []byte {
	var buf bytes.Buffer
	buf.Grow(numObjects * (64 + extraFields*16))
	buf.WriteByte('[')
	for i := 0; i < numObjects; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		fmt.Fprintf(&buf, "\"id\":\"obj_%d\",", i)
		fmt.Fprintf(&buf, "\"name\":\"n%d\",", i)
		fmt.Fprintf(&buf, "\"age\":%d,", i)
		if i%2 == 0 {
			buf.WriteString("\"active\":true,")
		} else {
			buf.WriteString("\"active\":false,")
		}
		fmt.Fprintf(&buf, "\"meta\":{\"score\":%d}", i)
		for k := 0; k < extraFields; k++ {
			buf.WriteString(",\"k" + strconv.Itoa(k) + "\":\"v" + strconv.Itoa(i) + "_" + strconv.Itoa(k) + "\"")
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

func treeDoc(depth, fanout int) map[string]any {
	n := map[string]any{"name": "n" + strconv.Itoa(depth)}
	if depth == 0 {
		return n
	}
	children := make([]any, fanout)
	for i := range children {
		children[i] = treeDoc(depth-1, fanout)
	}
	n["children"] = children
	return n
}

// ---- Benchmarks ----

func Benchmark_Convert_Items(b *testing.B) {
	e, rec := itemEngine(b)
	data := generateItems(1000, 4)
	raw, err := load.JSON(data)
	if err != nil {
		b.Fatal(err)
	}
	list := bindery.List(rec.Type())
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.ConvertType(list, raw); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_LoadJSONAndConvert_Items(b *testing.B) {
	e, rec := itemEngine(b)
	data := generateItems(1000, 4)
	list := bindery.List(rec.Type())
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		raw, err := load.JSON(data)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := e.ConvertType(list, raw); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_ConvertRender_Tree(b *testing.B) {
	e := bindery.New()
	rec := g.Record("Node").Field("name", "str").Field("children", "list[Node]", g.Default([]any{})).MustDeclare(e)
	raw := treeDoc(5, 4)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v, err := e.Convert(rec, raw)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := e.Render(v); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Convert_Polymorphic(b *testing.B) {
	e := bindery.New()
	g.Record("Shape").Discriminator("kind").Field("color", "str", g.Default("black")).MustDeclare(e)
	g.Record("Circle").Extends("Shape").Tag("circle").Field("radius", "float").MustDeclare(e)
	g.Record("Square").Extends("Shape").Tag("square").Field("side", "float").MustDeclare(e)
	shapes := make([]any, 1000)
	for i := range shapes {
		if i%2 == 0 {
			shapes[i] = map[string]any{"kind": "circle", "radius": float64(i)}
		} else {
			shapes[i] = map[string]any{"kind": "square", "side": float64(i), "color": "red"}
		}
	}
	list := bindery.List(bindery.RecordOf("Shape"))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.ConvertType(list, shapes); err != nil {
			b.Fatal(err)
		}
	}
}

type benchNode struct {
	Name     string       `json:"name"`
	Children []*benchNode `json:"children" default:"[]"`
}

func Benchmark_StructDecode_Tree(b *testing.B) {
	bd := g.NewBinding(bindery.New())
	if _, err := g.Struct[benchNode](bd, g.WithName("Node")); err != nil {
		b.Fatal(err)
	}
	raw := treeDoc(5, 4)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := g.Decode[benchNode](bd, raw); err != nil {
			b.Fatal(err)
		}
	}
}
