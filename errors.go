package bindery

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/bindery/i18n"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeUnsupportedType           = "unsupported_type"
	CodeMalformedDeclaration      = "malformed_declaration"
	CodeNotAMapping               = "not_a_mapping"
	CodeInvalidType               = "invalid_type"
	CodeRequired                  = "required"
	CodeExtraKeys                 = "extra_keys"
	CodeUnknownTypeTag            = "unknown_type_tag"
	CodeDuplicateDiscriminatorKey = "duplicate_discriminator_key"
	CodeInvalidScalar             = "invalid_scalar"
	CodeResultTypeMismatch        = "result_type_mismatch"
)

// Sentinels matched by errors.Is against an *Issue of the same code.
var (
	ErrUnsupportedType           = errors.New("bindery: unsupported type")
	ErrMalformedDeclaration      = errors.New("bindery: malformed declaration")
	ErrNotAMapping               = errors.New("bindery: not a mapping")
	ErrInvalidType               = errors.New("bindery: invalid type")
	ErrRequiredFieldMissing      = errors.New("bindery: required field missing")
	ErrExtraKeysPresent          = errors.New("bindery: extra keys present")
	ErrUnknownTypeTag            = errors.New("bindery: unknown type tag")
	ErrDuplicateDiscriminatorKey = errors.New("bindery: duplicate discriminator key")
	ErrInvalidScalarCoercion     = errors.New("bindery: invalid scalar coercion")
	ErrResultTypeMismatch        = errors.New("bindery: result type mismatch")
)

var sentinels = map[string]error{
	CodeUnsupportedType:           ErrUnsupportedType,
	CodeMalformedDeclaration:      ErrMalformedDeclaration,
	CodeNotAMapping:               ErrNotAMapping,
	CodeInvalidType:               ErrInvalidType,
	CodeRequired:                  ErrRequiredFieldMissing,
	CodeExtraKeys:                 ErrExtraKeysPresent,
	CodeUnknownTypeTag:            ErrUnknownTypeTag,
	CodeDuplicateDiscriminatorKey: ErrDuplicateDiscriminatorKey,
	CodeInvalidScalar:             ErrInvalidScalarCoercion,
	CodeResultTypeMismatch:        ErrResultTypeMismatch,
}

// Issue describes the failure of a declaration or a conversion call.
type Issue struct {
	Code    string   // One of the codes listed above.
	Path    string   // JSON Pointer into the raw value (for example: /children/2/name).
	Field   string   // Field name, when the issue is about one field.
	Tag     string   // Offending discriminator value.
	Keys    []string // Extra keys, sorted.
	Message string
	Hint    string // Optional: remediation hints, type names, etc.
	Cause   error  // Optional: underlying error.
}

func (i *Issue) Error() string {
	b := &strings.Builder{}
	b.WriteString(i.Code)
	if i.Path != "" {
		fmt.Fprintf(b, " at %s", i.Path)
	}
	if i.Message != "" {
		fmt.Fprintf(b, ": %s", i.Message)
	}
	if i.Field != "" {
		fmt.Fprintf(b, " (field %q)", i.Field)
	}
	if i.Tag != "" {
		fmt.Fprintf(b, " (tag %q)", i.Tag)
	}
	if len(i.Keys) > 0 {
		fmt.Fprintf(b, " (keys %s)", strings.Join(i.Keys, ", "))
	}
	if i.Hint != "" {
		fmt.Fprintf(b, "; %s", i.Hint)
	}
	if i.Cause != nil {
		fmt.Fprintf(b, ": %v", i.Cause)
	}
	return b.String()
}

// Is reports whether target is the sentinel for the issue's code.
func (i *Issue) Is(target error) bool {
	s, ok := sentinels[i.Code]
	return ok && s == target
}

func (i *Issue) Unwrap() error { return i.Cause }

// AsIssue extracts an *Issue from an error using errors.As internally.
func AsIssue(err error) (*Issue, bool) {
	if err == nil {
		return nil, false
	}
	var iss *Issue
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

func newIssue(code, path string) *Issue {
	return &Issue{Code: code, Path: path, Message: i18n.T(code, nil)}
}

func invalidType(path, hint string) *Issue {
	iss := newIssue(CodeInvalidType, path)
	iss.Hint = hint
	return iss
}

func declIssue(code, hint string) *Issue {
	iss := newIssue(code, "")
	iss.Hint = hint
	return iss
}

// childPath appends one JSON Pointer segment, escaping '~' and '/'.
func childPath(base string, seg any) string {
	s := fmt.Sprint(seg)
	s = strings.ReplaceAll(s, "~", "~0")
	s = strings.ReplaceAll(s, "/", "~1")
	if base == "/" {
		return "/" + s
	}
	return base + "/" + s
}
