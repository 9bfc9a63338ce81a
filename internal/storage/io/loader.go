package io

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/slok/csflow/internal/model"
)

// PropertiesYAMLRepository loads component domain properties from YAML (or JSON) files.
type PropertiesYAMLRepository struct {
	fs fs.FS
}

// NewPropertiesYAMLRepository creates a new YAML properties repository.
func NewPropertiesYAMLRepository(filesystem fs.FS) *PropertiesYAMLRepository {
	return &PropertiesYAMLRepository{fs: filesystem}
}

// GetProperties loads the domain properties from a file.
func (r *PropertiesYAMLRepository) GetProperties(ctx context.Context, path string) (model.ComponentProperties, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.ComponentProperties{}, fmt.Errorf("reading properties file: %w", err)
	}

	if ctx.Err() != nil {
		return model.ComponentProperties{}, ctx.Err()
	}

	return ParseProperties(data)
}

// ParseProperties decodes a domain properties payload. JSON payloads are accepted
// as they are a YAML subset. A payload with a single top level `domain` key is
// unwrapped.
func ParseProperties(data []byte) (model.ComponentProperties, error) {
	if strings.TrimSpace(string(data)) == "" {
		return model.ComponentProperties{}, fmt.Errorf("empty properties payload: %w", model.ErrNotValid)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return model.ComponentProperties{}, fmt.Errorf("parsing YAML: %w: %w", model.ErrNotValid, err)
	}
	if raw == nil {
		return model.ComponentProperties{}, fmt.Errorf("properties payload must be an object: %w", model.ErrNotValid)
	}

	if len(raw) == 1 {
		if domain, ok := raw["domain"]; ok {
			m, ok := domain.(map[string]any)
			if !ok {
				return model.ComponentProperties{}, fmt.Errorf("domain must be an object: %w", model.ErrNotValid)
			}
			raw = m
		}
	}

	return model.ComponentProperties{Domain: raw}, nil
}
