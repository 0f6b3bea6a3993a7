package schema

import (
	"fmt"

	"github.com/goccy/go-json"
)

type fieldJSON struct {
	Type     string `json:"type"`
	Required bool   `json:"required,omitempty"`
}

// MarshalJSON serializes the schema as a map of field names to type descriptions.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}

	raw := make(map[string]fieldJSON, len(s))
	for key, f := range s {
		if f.Type == nil {
			return nil, fmt.Errorf("field %s: type is nil", key)
		}
		raw[key] = fieldJSON{Type: f.Type.Name(), Required: f.Required}
	}

	return json.Marshal(raw)
}
