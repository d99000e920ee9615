package bindery

import "strings"

// Kind enumerates the shapes a declared type can take.
type Kind int

const (
	KindNull Kind = iota
	KindScalar
	KindOptional
	KindList
	KindMap
	KindRecord
	KindDynamic
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindOptional:
		return "optional"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindRecord:
		return "record"
	case KindDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// ScalarKind enumerates the primitive types.
type ScalarKind int

const (
	ScalarBool ScalarKind = iota
	ScalarInt
	ScalarFloat
	ScalarComplex
	ScalarString
	ScalarBytes
	ScalarPath
	ScalarDateTime
)

func (s ScalarKind) String() string {
	switch s {
	case ScalarBool:
		return "bool"
	case ScalarInt:
		return "int"
	case ScalarFloat:
		return "float"
	case ScalarComplex:
		return "complex"
	case ScalarString:
		return "str"
	case ScalarBytes:
		return "bytes"
	case ScalarPath:
		return "path"
	case ScalarDateTime:
		return "datetime"
	default:
		return "unknown"
	}
}

// Shape distinguishes the untyped passthrough variants.
type Shape int

const (
	ShapeAny Shape = iota // Any value.
	ShapeList             // A sequence with untyped items.
	ShapeMap              // A mapping with untyped keys and values.
)

// Type is an immutable descriptor of a declared field type. Two types are
// equal when their Key values are equal.
type Type struct {
	kind   Kind
	scalar ScalarKind
	shape  Shape
	record string
	args   []Type
	key    string
}

func newType(t Type) Type {
	t.key = t.render()
	return t
}

var (
	nullType     = newType(Type{kind: KindNull})
	anyType      = newType(Type{kind: KindDynamic, shape: ShapeAny})
	anyListType  = newType(Type{kind: KindDynamic, shape: ShapeList})
	anyMapType   = newType(Type{kind: KindDynamic, shape: ShapeMap})
	scalarByKind = map[ScalarKind]Type{}
)

func init() {
	for k := ScalarBool; k <= ScalarDateTime; k++ {
		scalarByKind[k] = newType(Type{kind: KindScalar, scalar: k})
	}
}

// Null is the type whose only value is nil.
func Null() Type { return nullType }

// Scalar returns the primitive type of kind k.
func Scalar(k ScalarKind) Type { return scalarByKind[k] }

func Bool() Type     { return Scalar(ScalarBool) }
func Int() Type      { return Scalar(ScalarInt) }
func Float() Type    { return Scalar(ScalarFloat) }
func Complex() Type  { return Scalar(ScalarComplex) }
func String() Type   { return Scalar(ScalarString) }
func Bytes() Type    { return Scalar(ScalarBytes) }
func PathType() Type { return Scalar(ScalarPath) }
func DateTime() Type { return Scalar(ScalarDateTime) }

// Optional returns the type accepting nil or a value of inner.
// Optional(Optional(T)) is Optional(T) and Optional(Null) is Null.
func Optional(inner Type) Type {
	switch inner.kind {
	case KindOptional, KindNull:
		return inner
	}
	return newType(Type{kind: KindOptional, args: []Type{inner}})
}

// List returns the homogeneous list type of item.
func List(item Type) Type { return newType(Type{kind: KindList, args: []Type{item}}) }

// Map returns the homogeneous mapping type from key to value.
func Map(key, value Type) Type {
	return newType(Type{kind: KindMap, args: []Type{key, value}})
}

// RecordOf references the record declared under id.
func RecordOf(id string) Type { return newType(Type{kind: KindRecord, record: id}) }

// Any accepts any value and copies it structurally.
func Any() Type { return anyType }

// AnyList accepts a sequence of untyped items.
func AnyList() Type { return anyListType }

// AnyMap accepts a mapping of untyped keys and values.
func AnyMap() Type { return anyMapType }

// Union normalizes a union of members. One member yields that member; two
// members of which one is Null yield Optional of the other, in either order.
// Any other shape is unsupported.
func Union(members ...Type) (Type, error) {
	switch len(members) {
	case 1:
		return members[0], nil
	case 2:
		a, b := members[0], members[1]
		if a.kind == KindNull && b.kind != KindNull {
			return Optional(b), nil
		}
		if b.kind == KindNull && a.kind != KindNull {
			return Optional(a), nil
		}
	}
	parts := make([]string, len(members))
	for i, m := range members {
		parts[i] = m.String()
	}
	return Type{}, declIssue(CodeUnsupportedType, "union with members ["+strings.Join(parts, ", ")+"] is not supported; only T | None is")
}

func (t Type) Kind() Kind             { return t.kind }
func (t Type) ScalarKind() ScalarKind { return t.scalar }
func (t Type) Shape() Shape           { return t.shape }

// RecordID returns the referenced record id for KindRecord types.
func (t Type) RecordID() string { return t.record }

// Elem returns the inner type of an Optional and the item type of a List.
func (t Type) Elem() Type {
	switch t.kind {
	case KindOptional, KindList:
		return t.args[0]
	case KindMap:
		return t.args[1]
	}
	return Type{}
}

// KeyType returns the key type of a Map.
func (t Type) KeyType() Type {
	if t.kind == KindMap {
		return t.args[0]
	}
	return Type{}
}

// Key returns the canonical text of the type, used as the converter cache key.
func (t Type) Key() string {
	if t.key == "" {
		return t.render()
	}
	return t.key
}

func (t Type) String() string { return t.Key() }

// Equal reports structural equality.
func (t Type) Equal(o Type) bool { return t.Key() == o.Key() }

// IsZero reports whether t was never constructed.
func (t Type) IsZero() bool { return t.key == "" && t.kind == KindNull && t.args == nil }

func (t Type) render() string {
	switch t.kind {
	case KindNull:
		return "None"
	case KindScalar:
		return t.scalar.String()
	case KindOptional:
		return "Optional[" + t.args[0].Key() + "]"
	case KindList:
		return "list[" + t.args[0].Key() + "]"
	case KindMap:
		return "dict[" + t.args[0].Key() + ", " + t.args[1].Key() + "]"
	case KindRecord:
		return t.record
	case KindDynamic:
		switch t.shape {
		case ShapeList:
			return "list"
		case ShapeMap:
			return "dict"
		}
		return "any"
	}
	return "?"
}
