package memory

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Veraticus/qflow/internal/model"
)

// storedMapping is the persisted form of one learned phrase. Older documents
// hold a bare category string; newer ones hold {"category", "sub"}.
type storedMapping struct {
	Category string
	Sub      string
	Legacy   bool
}

type storedMappingObject struct {
	Category string `json:"category"`
	Sub      string `json:"sub"`
}

// UnmarshalJSON accepts both the legacy string and the object form.
func (m *storedMapping) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var category string
		if err := json.Unmarshal(data, &category); err != nil {
			return err
		}
		*m = storedMapping{Category: category, Legacy: true}
		return nil
	}

	var obj storedMappingObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("keyword mapping must be a string or object: %w", err)
	}
	*m = storedMapping{Category: obj.Category, Sub: obj.Sub}
	return nil
}

// MarshalJSON writes legacy values back in their original shape.
func (m storedMapping) MarshalJSON() ([]byte, error) {
	if m.Legacy {
		return json.Marshal(m.Category)
	}
	return json.Marshal(storedMappingObject{Category: m.Category, Sub: m.Sub})
}

func (m storedMapping) classification() model.Classification {
	if m.Legacy {
		return model.Classification{Program: m.Category}
	}
	return model.Classification{Program: m.Category, Sub: m.Sub}
}

func decodeMappings(raw string) (map[string]storedMapping, error) {
	mappings := make(map[string]storedMapping)
	if raw == "" {
		return mappings, nil
	}
	if err := json.Unmarshal([]byte(raw), &mappings); err != nil {
		return nil, fmt.Errorf("failed to decode keyword mappings: %w", err)
	}
	if mappings == nil {
		mappings = make(map[string]storedMapping)
	}
	return mappings, nil
}

func decodeAliases(raw string) ([]model.BranchAlias, error) {
	if raw == "" {
		return nil, nil
	}
	var aliases []model.BranchAlias
	if err := json.Unmarshal([]byte(raw), &aliases); err != nil {
		return nil, fmt.Errorf("failed to decode branch aliases: %w", err)
	}
	return aliases, nil
}
