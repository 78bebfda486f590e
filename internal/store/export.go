// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// ExportYAML writes every stored trial row to path as YAML.
func (s *Store) ExportYAML(ctx context.Context, path string) error {
	rows, err := s.Rows(ctx)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	data, err := yaml.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes every stored trial row to path as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, path string) error {
	rows, err := s.Rows(ctx)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
