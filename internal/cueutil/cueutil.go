// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared helpers for validating user-supplied
// documents against embedded CUE schemas and decoding them into Go values.
// Both the harness config and the release plan loaders build on it.
package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// DefaultMaxFileSize bounds user-supplied documents. Schema unification is
// quadratic in pathological inputs, so oversized files are rejected before
// the CUE evaluator ever sees them.
const DefaultMaxFileSize int64 = 1 << 20 // 1 MiB

type (
	// Option adjusts Decode behavior.
	Option func(*options)

	options struct {
		filename    string
		concrete    bool
		maxFileSize int64
	}
)

// WithFilename sets the filename used in error messages.
func WithFilename(name string) Option {
	return func(o *options) { o.filename = name }
}

// WithConcrete requires all fields to be concrete after unification.
// Leave unset for documents where optional fields fall back to defaults.
func WithConcrete() Option {
	return func(o *options) { o.concrete = true }
}

// WithMaxFileSize overrides the default document size limit.
func WithMaxFileSize(n int64) Option {
	return func(o *options) { o.maxFileSize = n }
}

func defaultOptions() options {
	return options{maxFileSize: DefaultMaxFileSize}
}

// Decode validates data against the definition at defPath inside the
// embedded schema and decodes the unified value into T:
//
//  1. Compile the embedded schema (a failure here is an internal error).
//  2. Compile the user document and unify it with the schema definition.
//  3. Validate, then decode into the Go value.
//
// Validation errors are rewritten with JSON-path prefixes so the user sees
// "artifacts[1].url: ..." rather than raw CUE positions.
func Decode[T any](schema, data []byte, defPath string, opts ...Option) (*T, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	filename := o.filename
	if filename == "" {
		filename = "<input>"
	}

	if err := CheckFileSize(data, o.maxFileSize, filename); err != nil {
		return nil, err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileBytes(schema)
	if schemaValue.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(filename))
	if userValue.Err() != nil {
		return nil, FormatError(userValue.Err(), filename)
	}

	schemaRoot := schemaValue.LookupPath(cue.ParsePath(defPath))
	if schemaRoot.Err() != nil {
		return nil, fmt.Errorf("internal error: schema definition %s not found: %w", defPath, schemaRoot.Err())
	}

	unified := schemaRoot.Unify(userValue)
	if err := unified.Validate(cue.Concrete(o.concrete)); err != nil {
		return nil, FormatError(err, filename)
	}

	var result T
	if err := unified.Decode(&result); err != nil {
		return nil, FormatError(err, filename)
	}

	return &result, nil
}

// DecodeMap validates data against the definition at defPath and decodes the
// result into a generic map. Used by the config loader, which merges the
// document into Viper instead of decoding into a struct directly.
func DecodeMap(schema, data []byte, defPath, filename string) (map[string]any, error) {
	m, err := Decode[map[string]any](schema, data, defPath, WithFilename(filename))
	if err != nil {
		return nil, err
	}
	return *m, nil
}

// CheckFileSize verifies that data does not exceed maxSize.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes",
			filename, len(data), maxSize)
	}
	return nil
}
