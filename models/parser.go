package models

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// file is the top-level structure of a catalogue file.
type file struct {
	Models []*Model `yaml:"models"`
}

// Parse loads a model catalogue from a YAML file.
//
// Example:
//
//	cat, err := models.Parse("models.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Loaded %d models\n", len(cat))
func Parse(path string) (Catalogue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f)
}

// ParseReader loads a model catalogue from any io.Reader.
// Unknown keys are rejected and every model is validated.
//
// Example:
//
//	cat, err := models.ParseReader(strings.NewReader(catalogueYAML))
func ParseReader(r io.Reader) (Catalogue, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty file")
		}
		return nil, fmt.Errorf("failed to decode catalogue: %w", err)
	}

	if len(f.Models) == 0 {
		return nil, fmt.Errorf("no models found in file")
	}

	seen := make(map[string]bool, len(f.Models))
	for i, m := range f.Models {
		if m == nil {
			return nil, fmt.Errorf("model %d: empty entry", i+1)
		}
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("model %d: %w", i+1, err)
		}

		key := strings.ToLower(m.Name)
		if seen[key] {
			return nil, fmt.Errorf("model %d: duplicate name %q", i+1, m.Name)
		}
		seen[key] = true
	}

	return Catalogue(f.Models), nil
}
