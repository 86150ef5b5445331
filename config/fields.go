package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aluiziolira/go-manga-series/models"
)

//go:embed fields.yaml
var defaultFields []byte

type fieldsFile struct {
	Fields []models.FieldSpec `yaml:"fields"`
}

// LoadFieldSpecs reads extraction rules from path, or the built-in rules when path is empty.
func LoadFieldSpecs(path string) ([]models.FieldSpec, error) {
	data := defaultFields
	source := "embedded fields.yaml"
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read fields file: %w", err)
		}
		data = raw
		source = path
	}
	return ParseFieldSpecs(data, source)
}

// ParseFieldSpecs decodes a YAML rule document. Transform defaults to text.
func ParseFieldSpecs(data []byte, source string) ([]models.FieldSpec, error) {
	var doc fieldsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	if len(doc.Fields) == 0 {
		return nil, fmt.Errorf("%s: no fields defined", source)
	}
	for i := range doc.Fields {
		if doc.Fields[i].Transform == "" {
			doc.Fields[i].Transform = models.TransformText
		}
	}
	return doc.Fields, nil
}
