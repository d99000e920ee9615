package jsonschema

// Draft is the dialect written to the "$schema" keyword.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is a minimal JSON Schema representation used for export.
type Schema struct {
	// Core
	Schema      string  `json:"$schema,omitempty"`
	Ref         string  `json:"$ref,omitempty"`
	Title       string  `json:"title,omitempty"`
	Type        string  `json:"type,omitempty"`
	Format      string  `json:"format,omitempty"`
	Default     any     `json:"default,omitempty"`
	Const       *string `json:"const,omitempty"`
	ContentEnc  string  `json:"contentEncoding,omitempty"`
	Description string  `json:"description,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`
	PropertyNames        *Schema            `json:"propertyNames,omitempty"`

	// Array
	Items *Schema `json:"items,omitempty"`

	// Union
	OneOf []*Schema `json:"oneOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty"`

	// Definitions referenced through "#/$defs/<name>".
	Defs map[string]*Schema `json:"$defs,omitempty"`
}

// DefRef returns the reference to a named definition.
func DefRef(name string) string { return "#/$defs/" + name }

// Const returns a pointer to s for the Const keyword.
func Const(s string) *string { return &s }
