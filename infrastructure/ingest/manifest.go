package ingest

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/helixml/minimodel/domain/pipeline"
	"gopkg.in/yaml.v3"
)

// Source types a manifest can name.
const (
	SourceFile   = "file"
	SourceObject = "object"
	SourceQuery  = "query"
)

// Manifest describes where a dataset comes from and how to decode it.
//
//	source:
//	  type: file
//	  path: people.csv.gz
//	schema:
//	  - name: id
//	    type: integer
type Manifest struct {
	Source SourceSpec  `yaml:"source"`
	Schema []FieldSpec `yaml:"schema"`

	// dir resolves relative file paths; set by LoadManifest.
	dir string
}

// SourceSpec selects and configures a source.
type SourceSpec struct {
	Type        string `yaml:"type"`
	Path        string `yaml:"path"`
	Bucket      string `yaml:"bucket"`
	Key         string `yaml:"key"`
	URL         string `yaml:"url"`
	Query       string `yaml:"query"`
	Format      string `yaml:"format"`
	Compression string `yaml:"compression"`
	Delimiter   string `yaml:"delimiter"`
}

// FieldSpec declares the type of one column.
type FieldSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// LoadManifest reads a manifest file. Relative file paths in it are
// resolved against the manifest's directory.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// ParseManifest decodes and validates manifest YAML.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// Validate checks that the manifest names a known source with the settings
// it needs.
func (m Manifest) Validate() error {
	s := m.Source
	switch strings.ToLower(s.Type) {
	case SourceFile:
		if s.Path == "" {
			return errors.New("file source requires path")
		}
	case SourceObject:
		if s.Bucket == "" || s.Key == "" {
			return errors.New("object source requires bucket and key")
		}
	case SourceQuery:
		if s.URL == "" || s.Query == "" {
			return errors.New("query source requires url and query")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSource, s.Type)
	}
	if _, err := m.schema(); err != nil {
		return err
	}
	_, err := m.options()
	return err
}

// Ingester builds the source the manifest describes. The object store
// settings are used only by object sources.
func (m Manifest) Ingester(store ObjectStoreConfig, logger *slog.Logger) (pipeline.Ingester, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	opts, _ := m.options()
	schema, _ := m.schema()
	s := m.Source

	switch strings.ToLower(s.Type) {
	case SourceFile:
		path := s.Path
		if !filepath.IsAbs(path) && m.dir != "" {
			path = filepath.Join(m.dir, path)
		}
		return NewFileSource(path, opts...), nil
	case SourceObject:
		client, err := NewObjectClient(store)
		if err != nil {
			return nil, err
		}
		return NewObjectSource(client, s.Bucket, s.Key, opts...), nil
	case SourceQuery:
		return NewQuerySource(s.URL, s.Query, WithQuerySchema(schema), WithQueryLogger(logger)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, s.Type)
	}
}

func (m Manifest) schema() (Schema, error) {
	schema := make(Schema, 0, len(m.Schema))
	for _, decl := range m.Schema {
		field, err := ParseField(decl.Name, decl.Type)
		if err != nil {
			return nil, err
		}
		schema = append(schema, field)
	}
	return schema, nil
}

func (m Manifest) options() ([]Option, error) {
	s := m.Source
	var opts []Option

	if s.Format != "" {
		f, err := ParseFormat(s.Format)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithFormat(f))
	}
	if s.Compression != "" {
		c, err := ParseCompression(s.Compression)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithCompression(c))
	}
	if s.Delimiter != "" {
		r := []rune(s.Delimiter)
		if s.Delimiter == `\t` {
			r = []rune{'\t'}
		}
		if len(r) != 1 {
			return nil, fmt.Errorf("delimiter must be a single character, got %q", s.Delimiter)
		}
		opts = append(opts, WithDelimiter(r[0]))
	}

	schema, err := m.schema()
	if err != nil {
		return nil, err
	}
	if len(schema) > 0 {
		opts = append(opts, WithSchema(schema))
	}
	return opts, nil
}
