package load

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/reoring/bindery"
)

// HCL decodes the top-level attributes of an HCL body into one mapping in
// source order. Blocks are not supported; nested values use object
// expressions. Expressions are evaluated without variables or functions.
func HCL(data []byte, filename string) (any, error) {
	p := hclparse.NewParser()
	f, diags := p.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, &FileError{File: filename, Format: FormatHCL, Err: diags}
	}
	attrs, diags := f.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, &FileError{File: filename, Format: FormatHCL, Err: diags}
	}
	list := make([]*hcl.Attribute, 0, len(attrs))
	for _, a := range attrs {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Range.Start.Byte < list[j].Range.Start.Byte })

	obj := bindery.NewObject()
	for _, a := range list {
		val, diags := a.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, &FileError{File: filename, Format: FormatHCL, Err: diags}
		}
		v, err := ctyToGo(val, pointer("/", a.Name))
		if err != nil {
			return nil, &FileError{File: filename, Format: FormatHCL, Err: err}
		}
		obj.Set(a.Name, v)
	}
	return obj, nil
}

// ctyToGo converts an evaluated value. Whole numbers that fit become int.
func ctyToGo(v cty.Value, path string) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, fmt.Errorf("value at %s is not known", path)
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty == cty.Number:
		var i int
		if err := gocty.FromCtyValue(v, &i); err == nil {
			return i, nil
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("number at %s: %w", path, err)
		}
		return f, nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, ev := it.Element()
			gv, err := ctyToGo(ev, pointer(path, len(out)))
			if err != nil {
				return nil, err
			}
			out = append(out, gv)
		}
		return out, nil
	case ty.IsObjectType() || ty.IsMapType():
		obj := bindery.NewObject()
		it := v.ElementIterator()
		for it.Next() {
			k, ev := it.Element()
			key := k.AsString()
			gv, err := ctyToGo(ev, pointer(path, key))
			if err != nil {
				return nil, err
			}
			obj.Set(key, gv)
		}
		return obj, nil
	}
	return nil, fmt.Errorf("unsupported value type %s at %s", ty.FriendlyName(), path)
}
