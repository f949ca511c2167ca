package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/de-tools/bucket-freshness/pkg/models/domain"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var ErrEmptyDocument = errors.New("configuration document is empty")

type checkEntry struct {
	Prefix        *string `yaml:"prefix" validate:"required"`
	TimedeltaDays *int    `yaml:"timedelta_days" validate:"required,gte=0"`
}

var checkFields = map[string]struct{}{
	"prefix":         {},
	"timedelta_days": {},
}

// LoadChecks reads the bucket -> checks document at path. JSON and YAML are
// both accepted. Bucket order follows the document.
func LoadChecks(path string) (*domain.Configuration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	return ParseChecks(f)
}

func ParseChecks(r io.Reader) (*domain.Configuration, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDocument
		}
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of bucket names to checks", root.Line)
	}

	validate := validator.New()
	cfg := &domain.Configuration{}
	seen := make(map[string]struct{}, len(root.Content)/2)

	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valueNode := root.Content[i], root.Content[i+1]
		bucket := keyNode.Value
		if bucket == "" {
			return nil, fmt.Errorf("line %d: bucket name cannot be empty", keyNode.Line)
		}
		if _, dup := seen[bucket]; dup {
			return nil, fmt.Errorf("line %d: bucket %q is configured twice", keyNode.Line, bucket)
		}
		seen[bucket] = struct{}{}

		checks, err := parseBucketChecks(validate, bucket, valueNode)
		if err != nil {
			return nil, err
		}
		cfg.Buckets = append(cfg.Buckets, domain.BucketChecks{Bucket: bucket, Checks: checks})
	}

	return cfg, nil
}

func parseBucketChecks(validate *validator.Validate, bucket string, node *yaml.Node) ([]domain.CheckSpec, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: checks for bucket %q must be a list", node.Line, bucket)
	}

	checks := make([]domain.CheckSpec, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: check for bucket %q must be a mapping", item.Line, bucket)
		}
		for j := 0; j < len(item.Content); j += 2 {
			if _, ok := checkFields[item.Content[j].Value]; !ok {
				return nil, fmt.Errorf("line %d: unknown field %q in check for bucket %q",
					item.Content[j].Line, item.Content[j].Value, bucket)
			}
		}

		var entry checkEntry
		if err := item.Decode(&entry); err != nil {
			return nil, fmt.Errorf("line %d: invalid check for bucket %q: %w", item.Line, bucket, err)
		}
		if err := validate.Struct(entry); err != nil {
			return nil, fmt.Errorf("line %d: invalid check for bucket %q: %w", item.Line, bucket, err)
		}

		checks = append(checks, domain.CheckSpec{
			Prefix:            *entry.Prefix,
			RecencyWindowDays: *entry.TimedeltaDays,
		})
	}
	return checks, nil
}
