package db

import (
	"strings"
	"testing"
)

func TestIsValidIndexName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"articles", true},
		{"articles-v2", true},
		{"logs.2024", true},
		{"", false},
		{".", false},
		{"..", false},
		{"Articles", false},
		{"_hidden", false},
		{"-dash", false},
		{"+plus", false},
		{"a b", false},
		{"a,b", false},
		{"a*", false},
		{"a:b", false},
		{strings.Repeat("a", 256), false},
	}
	for _, tc := range tests {
		if got := IsValidIndexName(tc.name); got != tc.want {
			t.Errorf("IsValidIndexName(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIndexDefinition_Body(t *testing.T) {
	empty := &IndexDefinition{Name: "a"}
	body, err := empty.Body()
	if err != nil || body != nil {
		t.Fatalf("expected nil body, got %s %v", body, err)
	}

	def := &IndexDefinition{
		Name:     "a",
		Settings: map[string]any{"number_of_shards": 1},
		Mappings: map[string]any{"properties": map[string]any{"title": map[string]any{"type": "text"}}},
	}
	body, err = def.Body()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"mappings":{"properties":{"title":{"type":"text"}}},"settings":{"number_of_shards":1}}`
	if string(body) != want {
		t.Errorf("body = %s", body)
	}
}

func TestIndexDefinition_Validate(t *testing.T) {
	if err := (&IndexDefinition{}).Validate(); err == nil {
		t.Error("expected error for empty name")
	}
	if err := (&IndexDefinition{Name: "UPPER"}).Validate(); err == nil {
		t.Error("expected error for invalid name")
	}
	if err := (&IndexDefinition{Name: "ok"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
