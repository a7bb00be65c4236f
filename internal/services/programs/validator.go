package programs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// FormValidator checks application answers against an opportunity's form
// schema. Compiled schemas are cached by their canonical JSON.
type FormValidator struct {
	cache *lru.Cache[string, *jsonschema.Schema]
}

// NewFormValidator creates a validator caching up to cacheSize schemas.
func NewFormValidator(cacheSize int) (*FormValidator, error) {
	if cacheSize <= 0 {
		cacheSize = 128
	}
	cache, err := lru.New[string, *jsonschema.Schema](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create schema cache: %w", err)
	}
	return &FormValidator{cache: cache}, nil
}

// Check compiles schema and reports ErrInvalidSchema when it is not a
// usable JSON Schema. An empty schema is accepted.
func (v *FormValidator) Check(schema map[string]any) error {
	if len(schema) == 0 {
		return nil
	}
	if _, err := v.compiled(schema); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	return nil
}

// Validate checks answers against schema. An empty schema accepts anything.
func (v *FormValidator) Validate(schema, answers map[string]any) error {
	if len(schema) == 0 {
		return nil
	}
	compiled, err := v.compiled(schema)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}

	// round-trip so numbers reach the validator as json.Number
	raw, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAnswers, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAnswers, err)
	}
	if err := compiled.Validate(doc); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAnswers, formatValidationError(err))
	}
	return nil
}

// Len returns the number of cached schemas.
func (v *FormValidator) Len() int { return v.cache.Len() }

func (v *FormValidator) compiled(schema map[string]any) (*jsonschema.Schema, error) {
	// encoding/json sorts map keys, so equal schemas share a key
	key, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("encode schema: %w", err)
	}
	if s, ok := v.cache.Get(string(key)); ok {
		return s, nil
	}

	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(key))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft7)
	const url = "form.json"
	if err := compiler.AddResource(url, parsed); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	s, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	v.cache.Add(string(key), s)
	return s, nil
}

// formatValidationError renders the failing location as a $.a.b path.
func formatValidationError(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	path := "$"
	var parts []string
	for _, p := range ve.InstanceLocation {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 {
		path += "." + strings.Join(parts, ".")
	}
	msg := ve.Error()
	if len(msg) > 200 {
		msg = msg[:200] + "... (truncated)"
	}
	return fmt.Sprintf("validation failed at '%s': %s", path, msg)
}
