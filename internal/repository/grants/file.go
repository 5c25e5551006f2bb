package grants

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/grantdex/internal/domain/grant"
)

// FileSource loads grants from a YAML or JSON file. The file holds either a
// list of records or a document with a top-level "grants" list.
type FileSource struct {
	path   string
	logger *zap.Logger
}

// NewFileSource creates a file-backed grant source.
func NewFileSource(path string, logger *zap.Logger) *FileSource {
	return &FileSource{path: path, logger: logger}
}

// Load reads and parses the file.
func (s *FileSource) Load(_ context.Context) ([]grant.Grant, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read grants file: %w", err)
	}
	records, err := parseRecords(data)
	if err != nil {
		return nil, fmt.Errorf("parse grants file %s: %w", s.path, err)
	}
	return fromRecords(records, s.path, s.logger), nil
}

func parseRecords(data []byte) ([]grant.Record, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var records []grant.Record
		if err := root.Decode(&records); err != nil {
			return nil, err
		}
		return records, nil
	case yaml.MappingNode:
		var doc struct {
			Grants []grant.Record `yaml:"grants"`
		}
		if err := root.Decode(&doc); err != nil {
			return nil, err
		}
		return doc.Grants, nil
	default:
		return nil, fmt.Errorf("unexpected document kind %d", root.Kind)
	}
}
