package schema

import (
	"fmt"
	"sort"

	"github.com/aretw0/botcraft/pkg/domain"
)

// Field describes one config key.
type Field struct {
	Type     Type
	Required bool
}

// Schema is a map of config keys to their field rules.
type Schema map[string]Field

// Keys returns the schema keys in sorted order.
func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ValidateField checks a single edit. Empty values are always accepted.
func (s Schema) ValidateField(key, value string) error {
	f, ok := s[key]
	if !ok {
		return &ValidationError{Key: key, Reason: "not defined in schema"}
	}
	if value == "" || f.Type == nil {
		return nil
	}
	if err := f.Type.Validate(value); err != nil {
		return &ValidationError{Key: key, Reason: err.Error(), Value: value}
	}
	return nil
}

// Validate checks if data conforms to the schema.
// Returns an error with all validation failures found.
func Validate(schema Schema, data map[string]string) error {
	if len(schema) == 0 {
		// No schema = no validation
		return nil
	}

	var errs []error

	for _, key := range schema.Keys() {
		f := schema[key]
		value := data[key]
		if value == "" {
			if f.Required {
				errs = append(errs, &ValidationError{Key: key, Reason: "required"})
			}
			continue
		}
		if f.Type == nil {
			continue
		}
		if err := f.Type.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    key,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}

	return nil
}

// ValidateConfig validates a node config against the schema of its kind.
func ValidateConfig(c domain.Config) error {
	if c == nil {
		return fmt.Errorf("schema: nil config")
	}
	return Validate(For(c.Kind()), domain.Fields(c))
}
