// Package load reads YAML, JSON and HCL documents into the raw form bindery
// converts: *bindery.Object for string-keyed mappings (document order kept),
// map[any]any for YAML mappings with non-string keys, []any for sequences,
// and int, float64, bool, string or nil for scalars.
//
// Duplicate mapping keys are errors unless AllowDuplicateKeys is given.
//
//	docs, err := load.File("config.yaml")
//	vals, err := load.Decode(e, rec, "config.yaml")
package load
