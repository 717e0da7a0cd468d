// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against an embedded schema.
//
// ParseAndDecode compiles the schema, unifies the user document with one of
// its definitions, validates the result and decodes it:
//
//	//go:embed config_schema.cue
//	var schema string
//
//	result, err := cueutil.ParseAndDecodeString[map[string]any](
//	    schema, data, "#Config",
//	    cueutil.WithFilename(path),
//	    cueutil.WithConcrete(false),
//	)
//
// Errors are reported as "<file>: <path>: <message>" with array indices
// rendered in brackets.
package cueutil
