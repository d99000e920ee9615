package bindery

import (
	"fmt"
	"strings"
	"unicode"
)

var scalarNames = map[string]ScalarKind{
	"bool":      ScalarBool,
	"int":       ScalarInt,
	"float":     ScalarFloat,
	"complex":   ScalarComplex,
	"str":       ScalarString,
	"string":    ScalarString,
	"bytes":     ScalarBytes,
	"bytearray": ScalarBytes,
	"path":      ScalarPath,
	"Path":      ScalarPath,
	"datetime":  ScalarDateTime,
}

var reservedNames = map[string]struct{}{
	"None": {}, "null": {}, "Optional": {}, "Union": {},
	"list": {}, "List": {}, "dict": {}, "Dict": {}, "map": {},
	"any": {}, "Any": {},
}

// IsReservedName reports whether name is a keyword of the type expression
// language and therefore cannot be used as a record id.
func IsReservedName(name string) bool {
	if _, ok := scalarNames[name]; ok {
		return true
	}
	_, ok := reservedNames[name]
	return ok
}

// ParseType translates a declared type expression such as
// "Optional[list[int]]", "dict[str, Node]" or "int | None" into a Type.
// Identifiers that are not keywords become record references.
func ParseType(expr string) (Type, error) { return ParseTypeFunc(expr, nil) }

// ParseTypeFunc is ParseType with a record-name check. When isRecord is
// non-nil, identifiers it rejects are unsupported types.
func ParseTypeFunc(expr string, isRecord func(name string) bool) (Type, error) {
	p := &typeParser{src: expr, isRecord: isRecord}
	if err := p.tokenize(); err != nil {
		return Type{}, err
	}
	t, err := p.parseType()
	if err != nil {
		return Type{}, err
	}
	if p.pos < len(p.toks) {
		return Type{}, p.malformed("unexpected %q", p.toks[p.pos])
	}
	return t, nil
}

// MustParseType is like ParseType but panics on error.
func MustParseType(expr string) Type {
	t, err := ParseType(expr)
	if err != nil {
		panic(err)
	}
	return t
}

type typeParser struct {
	src      string
	toks     []string
	pos      int
	isRecord func(string) bool
}

func (p *typeParser) malformed(format string, args ...any) *Issue {
	iss := declIssue(CodeMalformedDeclaration, fmt.Sprintf(format, args...))
	iss.Hint = fmt.Sprintf("%s in type expression %q", iss.Hint, p.src)
	return iss
}

func (p *typeParser) tokenize() error {
	s := p.src
	for i := 0; i < len(s); {
		c := rune(s[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case strings.ContainsRune("[],|", c):
			p.toks = append(p.toks, string(c))
			i++
		case c == '_' || unicode.IsLetter(c):
			j := i + 1
			for j < len(s) && (s[j] == '_' || s[j] == '.' || unicode.IsLetter(rune(s[j])) || unicode.IsDigit(rune(s[j]))) {
				j++
			}
			p.toks = append(p.toks, s[i:j])
			i = j
		default:
			return p.malformed("unexpected character %q", c)
		}
	}
	if len(p.toks) == 0 {
		return p.malformed("empty")
	}
	return nil
}

func (p *typeParser) peek() string {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return ""
}

func (p *typeParser) next() string {
	t := p.peek()
	if t != "" {
		p.pos++
	}
	return t
}

func (p *typeParser) parseType() (Type, error) {
	first, err := p.parseMember()
	if err != nil {
		return Type{}, err
	}
	if p.peek() != "|" {
		return first, nil
	}
	members := []Type{first}
	for p.peek() == "|" {
		p.next()
		m, err := p.parseMember()
		if err != nil {
			return Type{}, err
		}
		members = append(members, m)
	}
	return Union(members...)
}

// parseParams reads an optional bracketed parameter list.
func (p *typeParser) parseParams() ([]Type, bool, error) {
	if p.peek() != "[" {
		return nil, false, nil
	}
	p.next()
	var params []Type
	for {
		t, err := p.parseType()
		if err != nil {
			return nil, true, err
		}
		params = append(params, t)
		switch p.next() {
		case ",":
			continue
		case "]":
			return params, true, nil
		default:
			return nil, true, p.malformed("missing ']'")
		}
	}
}

func (p *typeParser) parseMember() (Type, error) {
	name := p.next()
	switch name {
	case "":
		return Type{}, p.malformed("unexpected end")
	case "[", "]", ",", "|":
		return Type{}, p.malformed("unexpected %q", name)
	}
	params, bracketed, err := p.parseParams()
	if err != nil {
		return Type{}, err
	}
	if sk, ok := scalarNames[name]; ok {
		if bracketed {
			return Type{}, p.malformed("%s takes no type parameters", name)
		}
		return Scalar(sk), nil
	}
	switch name {
	case "None", "null":
		if bracketed {
			return Type{}, p.malformed("None takes no type parameters")
		}
		return Null(), nil
	case "any", "Any":
		if bracketed {
			return Type{}, p.malformed("any takes no type parameters")
		}
		return Any(), nil
	case "Optional":
		if len(params) != 1 {
			return Type{}, p.malformed("Optional requires exactly 1 type parameter, got %d", len(params))
		}
		return Optional(params[0]), nil
	case "Union":
		if len(params) == 0 {
			return Type{}, p.malformed("Union requires type parameters")
		}
		return Union(params...)
	case "list", "List":
		if !bracketed {
			return AnyList(), nil
		}
		if len(params) != 1 {
			return Type{}, p.malformed("list requires exactly 1 type parameter, got %d", len(params))
		}
		return List(params[0]), nil
	case "dict", "Dict", "map":
		if !bracketed {
			return AnyMap(), nil
		}
		if len(params) != 2 {
			return Type{}, p.malformed("dict requires exactly 2 type parameters, got %d", len(params))
		}
		return Map(params[0], params[1]), nil
	}
	if bracketed {
		iss := declIssue(CodeUnsupportedType, fmt.Sprintf("generic type %q is not supported", name))
		return Type{}, iss
	}
	if p.isRecord != nil && !p.isRecord(name) {
		return Type{}, declIssue(CodeUnsupportedType, fmt.Sprintf("unknown type %q", name))
	}
	return RecordOf(name), nil
}
