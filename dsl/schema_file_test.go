package dsl_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/reoring/bindery"
	g "github.com/reoring/bindery/dsl"
)

const shapesSchema = `
records:
  - name: Circle
    extends: Shape
    tag: circle
    fields:
      - {name: radius, type: float}
  - name: Shape
    discriminator: kind
    fields:
      - {name: color, type: str, default: black}
      - {name: note, type: "str | None", default: null}
  - name: Canvas
    fields:
      - {name: shapes, type: "list[Shape]", default: []}
      - {name: titleText, key: title, type: str}
`

func TestLoadSchema_BaseDeclaredLater(t *testing.T) {
	e := bindery.New()
	recs, err := g.LoadSchema(e, []byte(shapesSchema))
	require.NoError(t, err)
	require.Len(t, recs, 3)
	require.NoError(t, e.Validate())

	canvas, ok := e.Record("Canvas")
	require.True(t, ok)
	f, _ := canvas.Field("titleText")
	require.Equal(t, "title", f.Key)

	shape, _ := e.Record("Shape")
	note, _ := shape.Field("note")
	require.False(t, note.Required(), "explicit null default makes the field optional")

	v, err := e.Convert(canvas, map[string]any{
		"title":  "t",
		"shapes": []any{map[string]any{"kind": "circle", "radius": 1}},
	})
	require.NoError(t, err)
	shapes := v.(*bindery.Instance).Get("shapes").([]any)
	c := shapes[0].(*bindery.Instance)
	require.Equal(t, "Circle", c.Record().ID())
	require.Equal(t, []any{"black", nil, 1.0}, c.Values())
}

func TestLoadSchema_ReportsEveryFailure(t *testing.T) {
	e := bindery.New()
	recs, err := g.LoadSchema(e, []byte(`
records:
  - name: Good
    fields:
      - {name: a, type: int}
  - name: UsesUnknown
    fields:
      - {name: x, type: "list[Missing]"}
  - name: Untyped
    fields:
      - {name: y}
  - name: Orphan
    extends: Nowhere
  - name: Good
`))
	require.Error(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "Good", recs[0].ID())

	errs := multierr.Errors(err)
	require.Len(t, errs, 4)
	require.ErrorIs(t, errs[0], bindery.ErrMalformedDeclaration) // Untyped, found before declaring
	require.ErrorIs(t, errs[1], bindery.ErrUnsupportedType)      // UsesUnknown
	require.ErrorIs(t, errs[2], bindery.ErrUnsupportedType)      // Orphan
	require.ErrorIs(t, errs[3], bindery.ErrMalformedDeclaration)
}

func TestLoadSchema_InvalidYAML(t *testing.T) {
	_, err := g.LoadSchema(bindery.New(), []byte("records: [unclosed"))
	require.ErrorIs(t, err, bindery.ErrMalformedDeclaration)
}
