// SPDX-License-Identifier: MPL-2.0

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a configuration document syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatCUE  Format = "cue"

	// maxConfigSize bounds the document size read from disk.
	maxConfigSize = 1 << 20
)

//go:embed config_schema.cue
var configSchema string

// ErrUnsupportedFormat is returned for file extensions gmw cannot read.
var ErrUnsupportedFormat = errors.New("unsupported configuration format")

// FormatFromPath derives the document format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Parse decodes, schema-checks and semantically validates a configuration
// document. name is used in error messages only.
func Parse(data []byte, format Format, name string) (*Config, error) {
	if len(data) > maxConfigSize {
		return nil, fmt.Errorf("%s: file exceeds %d bytes", name, maxConfigSize)
	}

	ctx := cuecontext.New()

	schema := ctx.CompileString(configSchema, cue.Filename("config_schema.cue"))
	if schema.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile schema: %w", schema.Err())
	}
	root := schema.LookupPath(cue.ParsePath("#Config"))
	if root.Err() != nil {
		return nil, fmt.Errorf("internal error: schema definition #Config not found: %w", root.Err())
	}

	doc, err := compileDocument(ctx, data, format, name)
	if err != nil {
		return nil, err
	}

	unified := root.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err, name)
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return nil, formatCUEError(err, name)
	}
	cfg.deprecated = legacyKeys(unified)

	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// compileDocument turns the raw document into a CUE value. YAML and TOML are
// decoded to plain maps first so that keys keep their original case.
func compileDocument(ctx *cue.Context, data []byte, format Format, name string) (cue.Value, error) {
	var (
		raw map[string]any
		err error
	)
	switch format {
	case FormatCUE:
		v := ctx.CompileBytes(data, cue.Filename(name))
		if v.Err() != nil {
			return cue.Value{}, formatCUEError(v.Err(), name)
		}
		if !hasNullModule(v) {
			return v, nil
		}
		if err := v.Decode(&raw); err != nil {
			return cue.Value{}, formatCUEError(err, name)
		}
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	case FormatTOML:
		err = toml.Unmarshal(data, &raw)
	default:
		return cue.Value{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return cue.Value{}, fmt.Errorf("%s: %w", name, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	nullModulesToEmpty(raw)

	v := ctx.Encode(raw)
	if v.Err() != nil {
		return cue.Value{}, formatCUEError(v.Err(), name)
	}
	return v, nil
}

// legacyProjectKeys are project keys of older documents that gmw accepts
// but no longer reads.
var legacyProjectKeys = []string{"global_modules", "ignored_modules"}

// nullModulesToEmpty rewrites module entries written without a value
// ("core:" in YAML) to "", the normal deployment marker.
func nullModulesToEmpty(raw map[string]any) {
	projects, _ := raw["projects"].(map[string]any)
	for _, p := range projects {
		proj, _ := p.(map[string]any)
		modules, _ := proj["modules"].(map[string]any)
		for name, v := range modules {
			if v == nil {
				modules[name] = ""
			}
		}
	}
}

func hasNullModule(doc cue.Value) bool {
	projects, err := doc.LookupPath(cue.ParsePath("projects")).Fields()
	if err != nil {
		return false
	}
	for projects.Next() {
		modules, err := projects.Value().LookupPath(cue.ParsePath("modules")).Fields()
		if err != nil {
			continue
		}
		for modules.Next() {
			if modules.Value().IsNull() {
				return true
			}
		}
	}
	return false
}

// legacyKeys lists the legacy project keys present in v as dotted paths.
func legacyKeys(v cue.Value) []string {
	projects, err := v.LookupPath(cue.ParsePath("projects")).Fields()
	if err != nil {
		return nil
	}
	var found []string
	for projects.Next() {
		fields, err := projects.Value().Fields()
		if err != nil {
			continue
		}
		for fields.Next() {
			if key := fields.Selector().Unquoted(); slices.Contains(legacyProjectKeys, key) {
				found = append(found, "projects."+projects.Selector().Unquoted()+"."+key)
			}
		}
	}
	slices.Sort(found)
	return found
}

// formatCUEError flattens CUE errors into "<file>: <path>: <message>" lines.
func formatCUEError(err error, name string) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return fmt.Errorf("%s: %w", name, err)
	}

	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		path := strings.Join(e.Path(), ".")
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if path != "" {
			msg = path + ": " + msg
		}
		lines = append(lines, msg)
	}

	if len(lines) == 1 {
		return &ValidationError{Field: name, Message: lines[0]}
	}
	return &ValidationError{Field: name, Message: "schema validation failed:\n  " + strings.Join(lines, "\n  ")}
}

// expandPaths resolves a leading ~ in every local path.
func (c *Config) expandPaths() error {
	for name, p := range c.Projects {
		base, err := homedir.Expand(p.BasePath)
		if err != nil {
			return fmt.Errorf("projects.%s.base_path: %w", name, err)
		}
		root, err := homedir.Expand(p.WildFlyRoot)
		if err != nil {
			return fmt.Errorf("projects.%s.wildfly_root: %w", name, err)
		}
		p.BasePath = filepath.Clean(base)
		p.WildFlyRoot = filepath.Clean(root)
		c.Projects[name] = p
	}
	return nil
}
