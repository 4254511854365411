package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"gsweb/internal/models"

	"gopkg.in/yaml.v3"
)

type yamlDocument struct {
	Profiles []models.TxProfile `yaml:"profiles"`
}

// YAMLStore keeps profiles as a YAML document under a "profiles" key.
type YAMLStore struct {
	path string
}

// NewYAMLStore creates a store backed by the YAML file at path.
func NewYAMLStore(path string) *YAMLStore {
	return &YAMLStore{path: path}
}

// Load reads the document. A missing file is an empty table.
func (s *YAMLStore) Load(ctx context.Context) ([]models.TxProfile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.TxProfile{}, nil
		}
		return nil, fmt.Errorf("failed to read profiles %s: %w", s.path, err)
	}

	var doc yamlDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profiles yaml: %w", err)
	}
	if doc.Profiles == nil {
		doc.Profiles = []models.TxProfile{}
	}
	return doc.Profiles, nil
}

// Save overwrites the document.
func (s *YAMLStore) Save(ctx context.Context, profiles []models.TxProfile) error {
	var b bytes.Buffer
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(yamlDocument{Profiles: profiles}); err != nil {
		return fmt.Errorf("failed to encode profiles: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode profiles: %w", err)
	}
	return writeFileAtomic(s.path, b.Bytes())
}

// Close is a no-op.
func (s *YAMLStore) Close() error { return nil }
