// Package configfile loads CORS configurations from YAML or JSON files.
//
// A file holds the options recognized by [cors.FromMap], either at its top
// level or under a "cors" key:
//
//	cors:
//	  paths:
//	    - api/*
//	    - admin.example.com:
//	        - admin/*
//	  allowed_origins: ["https://*.example.com"]
//	  allowed_methods: ["*"]
//	  supports_credentials: true
//	  max_age: 600
package configfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pathcors/cors"
)

// Section is the top-level key under which options may be nested.
const Section = "cors"

// Format identifies the syntax of a configuration file.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf infers the format of the file at path from its extension.
func FormatOf(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported config file extension %q: use .json, .yaml, or .yml", ext)
	}
}

// Load reads and parses the configuration file at path.
// Configuration errors can be inspected with [errors.As]
// and the types of package [github.com/pathcors/cors/cfgerrors].
func Load(path string) (cors.Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return cors.Config{}, err
	}
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return cors.Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data, format)
}

// Parse parses configuration data in the given format.
func Parse(data []byte, format Format) (cors.Config, error) {
	opts, err := decode(data, format)
	if err != nil {
		return cors.Config{}, err
	}
	if section, ok := opts[Section]; ok {
		switch section := section.(type) {
		case map[string]any:
			opts = section
		case nil:
			opts = nil
		default:
			return cors.Config{}, fmt.Errorf("%q section is a %T, not a mapping", Section, section)
		}
	}
	cfg, err := cors.FromMap(opts)
	if err != nil {
		return cors.Config{}, fmt.Errorf("invalid CORS config: %w", err)
	}
	return cfg, nil
}

func decode(data []byte, format Format) (map[string]any, error) {
	var opts map[string]any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &opts); err != nil {
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&opts); err != nil {
			return nil, fmt.Errorf("parsing JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	return opts, nil
}

// Marshal encodes cfg in the given format, under the "cors" key.
func Marshal(cfg *cors.Config, format Format) ([]byte, error) {
	doc := map[string]*cors.Config{Section: cfg}
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encoding YAML config: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encoding YAML config: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding JSON config: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
}
