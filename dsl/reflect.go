package dsl

import (
	"fmt"
	"reflect"
	"time"

	"github.com/reoring/bindery"
)

var (
	timeType  = reflect.TypeOf(time.Time{})
	pathType  = reflect.TypeOf(bindery.Path(""))
	bytesType = reflect.TypeOf([]byte(nil))
	anyType   = reflect.TypeOf((*any)(nil)).Elem()
)

// typeOf maps a Go type to a declared type. Struct types become record
// references and are bound when first met. Must be called with b.mu held.
func (b *Binding) typeOf(rt reflect.Type) (bindery.Type, error) {
	switch rt {
	case timeType:
		return bindery.DateTime(), nil
	case pathType:
		return bindery.PathType(), nil
	case bytesType:
		return bindery.Bytes(), nil
	case anyType:
		return bindery.Any(), nil
	}
	switch rt.Kind() {
	case reflect.Bool:
		return bindery.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return bindery.Int(), nil
	case reflect.Float32, reflect.Float64:
		return bindery.Float(), nil
	case reflect.Complex64, reflect.Complex128:
		return bindery.Complex(), nil
	case reflect.String:
		return bindery.String(), nil
	case reflect.Pointer:
		inner, err := b.typeOf(rt.Elem())
		if err != nil {
			return bindery.Type{}, err
		}
		return bindery.Optional(inner), nil
	case reflect.Slice:
		if rt.Elem() == anyType {
			return bindery.AnyList(), nil
		}
		item, err := b.typeOf(rt.Elem())
		if err != nil {
			return bindery.Type{}, err
		}
		return bindery.List(item), nil
	case reflect.Map:
		if rt.Key().Kind() == reflect.String && rt.Elem() == anyType {
			return bindery.AnyMap(), nil
		}
		k, err := b.typeOf(rt.Key())
		if err != nil {
			return bindery.Type{}, err
		}
		v, err := b.typeOf(rt.Elem())
		if err != nil {
			return bindery.Type{}, err
		}
		return bindery.Map(k, v), nil
	case reflect.Struct:
		if name, ok := b.pending[rt]; ok {
			return bindery.RecordOf(name), nil
		}
		rec, err := b.bindLocked(rt, structConfig{})
		if err != nil {
			return bindery.Type{}, err
		}
		return rec.Type(), nil
	}
	return bindery.Type{}, declIssue(bindery.CodeUnsupportedType, fmt.Sprintf("Go type %s has no declared type", rt))
}

// structBinder builds *T values from field values and takes them apart.
type structBinder struct{ sr *structRecord }

func (sb structBinder) New(values []any) (any, error) {
	p := reflect.New(sb.sr.rt)
	for i, idx := range sb.sr.index {
		dst := p.Elem().FieldByIndex(idx)
		if err := assign(dst, values[i]); err != nil {
			return nil, fmt.Errorf("field %s: %w", sb.sr.rec.Fields()[i].Name, err)
		}
	}
	return p.Interface(), nil
}

func (sb structBinder) Values(v any) ([]any, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() || rv.Type() != sb.sr.rt {
		return nil, false
	}
	out := make([]any, len(sb.sr.index))
	for i, idx := range sb.sr.index {
		out[i] = export(rv.FieldByIndex(idx))
	}
	return out, true
}

// Canonical turns a struct value into a pointer to a copy, the form New
// produces.
func (sb structBinder) Canonical(v any) any {
	rv := reflect.ValueOf(v)
	if rv.IsValid() && rv.Type() == sb.sr.rt {
		p := reflect.New(sb.sr.rt)
		p.Elem().Set(rv)
		return p.Interface()
	}
	return v
}

// assign stores a converted value into a Go value of a possibly different
// but compatible type.
func assign(dst reflect.Value, v any) error {
	if v == nil {
		dst.SetZero()
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(dst.Type()) {
		dst.Set(rv)
		return nil
	}
	switch dst.Kind() {
	case reflect.Pointer:
		if rv.Kind() == reflect.Pointer && rv.Elem().Type().AssignableTo(dst.Type().Elem()) {
			p := reflect.New(dst.Type().Elem())
			p.Elem().Set(rv.Elem())
			dst.Set(p)
			return nil
		}
		p := reflect.New(dst.Type().Elem())
		if err := assign(p.Elem(), v); err != nil {
			return err
		}
		dst.Set(p)
		return nil
	case reflect.Struct:
		if rv.Kind() == reflect.Pointer && rv.Elem().Type().AssignableTo(dst.Type()) {
			dst.Set(rv.Elem())
			return nil
		}
	case reflect.Slice:
		items, ok := v.([]any)
		if !ok {
			break
		}
		s := reflect.MakeSlice(dst.Type(), len(items), len(items))
		for i, it := range items {
			if err := assign(s.Index(i), it); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
		dst.Set(s)
		return nil
	case reflect.Map:
		m := reflect.MakeMap(dst.Type())
		put := func(k, val any) error {
			kv := reflect.New(dst.Type().Key()).Elem()
			if err := assign(kv, k); err != nil {
				return fmt.Errorf("key %v: %w", k, err)
			}
			vv := reflect.New(dst.Type().Elem()).Elem()
			if err := assign(vv, val); err != nil {
				return fmt.Errorf("key %v: %w", k, err)
			}
			m.SetMapIndex(kv, vv)
			return nil
		}
		switch t := v.(type) {
		case map[string]any:
			for k, val := range t {
				if err := put(k, val); err != nil {
					return err
				}
			}
		case map[any]any:
			for k, val := range t {
				if err := put(k, val); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("cannot assign %T to %s", v, dst.Type())
		}
		dst.Set(m)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if i, ok := v.(int); ok {
			if dst.OverflowInt(int64(i)) {
				return fmt.Errorf("%d overflows %s", i, dst.Type())
			}
			dst.SetInt(int64(i))
			return nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if i, ok := v.(int); ok {
			if i < 0 || dst.OverflowUint(uint64(i)) {
				return fmt.Errorf("%d overflows %s", i, dst.Type())
			}
			dst.SetUint(uint64(i))
			return nil
		}
	case reflect.Float32, reflect.Float64:
		if f, ok := v.(float64); ok {
			dst.SetFloat(f)
			return nil
		}
	case reflect.Complex64, reflect.Complex128:
		if c, ok := v.(complex128); ok {
			dst.SetComplex(c)
			return nil
		}
	}
	if rv.Type().ConvertibleTo(dst.Type()) && rv.Kind() == dst.Kind() {
		dst.Set(rv.Convert(dst.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", v, dst.Type())
}

// export turns a Go field value into the typed-value form the converters
// render.
func export(fv reflect.Value) any {
	switch fv.Type() {
	case timeType, pathType, bytesType:
		return fv.Interface()
	}
	switch fv.Kind() {
	case reflect.Interface:
		if fv.IsNil() {
			return nil
		}
		return fv.Interface()
	case reflect.Pointer:
		if fv.IsNil() {
			return nil
		}
		if fv.Elem().Kind() == reflect.Struct {
			return fv.Interface()
		}
		return export(fv.Elem())
	case reflect.Bool:
		return fv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(fv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(fv.Uint())
	case reflect.Float32, reflect.Float64:
		return fv.Float()
	case reflect.Complex64, reflect.Complex128:
		return fv.Complex()
	case reflect.String:
		return fv.String()
	case reflect.Slice:
		if fv.Type().Elem() == anyType {
			return fv.Interface()
		}
		out := make([]any, fv.Len())
		for i := range out {
			out[i] = export(fv.Index(i))
		}
		return out
	case reflect.Map:
		if fv.Type().Key().Kind() == reflect.String {
			out := make(map[string]any, fv.Len())
			iter := fv.MapRange()
			for iter.Next() {
				out[iter.Key().String()] = export(iter.Value())
			}
			return out
		}
		out := make(map[any]any, fv.Len())
		iter := fv.MapRange()
		for iter.Next() {
			out[export(iter.Key())] = export(iter.Value())
		}
		return out
	}
	return fv.Interface()
}
