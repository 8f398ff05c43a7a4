package db

import (
	"encoding/json"
	"errors"
	"strings"
)

// IndexDefinition is the body of an index creation request.
// Settings and Mappings are passed to the engine as-is.
type IndexDefinition struct {
	Name     string
	Settings map[string]any
	Mappings map[string]any
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIndexName(idx.Name) {
		return errors.New("index name contains invalid characters: " + idx.Name)
	}
	return nil
}

// Body renders the create-index request body. Nil when there is nothing to send.
func (idx *IndexDefinition) Body() ([]byte, error) {
	if len(idx.Settings) == 0 && len(idx.Mappings) == 0 {
		return nil, nil
	}
	body := make(map[string]any, 2)
	if len(idx.Settings) > 0 {
		body["settings"] = idx.Settings
	}
	if len(idx.Mappings) > 0 {
		body["mappings"] = idx.Mappings
	}
	return json.Marshal(body)
}

// IsValidIndexName applies the engine's index naming rules: lowercase, no
// reserved characters, not starting with '-', '_' or '+', not "." or "..".
func IsValidIndexName(s string) bool {
	if s == "" || s == "." || s == ".." || len(s) > 255 {
		return false
	}
	switch s[0] {
	case '-', '_', '+':
		return false
	}
	if strings.ContainsAny(s, "\\/*?\"<>| ,#:") {
		return false
	}
	return s == strings.ToLower(s)
}
