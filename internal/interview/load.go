package interview

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Sections []Section `yaml:"sections"`
}

// LoadCatalog decodes and validates a YAML questionnaire.
func LoadCatalog(r io.Reader) ([]Section, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	if len(f.Sections) == 0 {
		return nil, fmt.Errorf("catalog has no sections")
	}
	if err := Validate(f.Sections); err != nil {
		return nil, fmt.Errorf("validating catalog: %w", err)
	}
	return f.Sections, nil
}

// LoadCatalogFile reads a catalog from path, or returns the built-in catalog
// when path is empty.
func LoadCatalogFile(path string) ([]Section, error) {
	if path == "" {
		sections := DefaultCatalog()
		if err := Validate(sections); err != nil {
			return nil, fmt.Errorf("validating built-in catalog: %w", err)
		}
		return sections, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}
