// Package export serialises a parsed Spec for the external generator.
package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/btouchard/seed/internal/compiler/ast"
)

// Format names a serialisation format.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	TOML Format = "toml"
)

// Formats lists the supported formats.
var Formats = []Format{JSON, YAML, TOML}

// ParseFormat accepts a format name, case-insensitively. "yml" is an alias
// for YAML.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case JSON, YAML, TOML:
		return f, nil
	case "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("unsupported export format %q (want json, yaml or toml)", name)
}

// Ext returns the file extension for f, dot included.
func (f Format) Ext() string {
	return "." + string(f)
}

// Marshal encodes spec in format f.
func Marshal(spec *ast.Spec, f Format) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch f {
	case JSON:
		// ConfigStd sorts map keys so exports are stable
		data, err = sonic.ConfigStd.MarshalIndent(spec, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case YAML:
		data, err = yaml.Marshal(spec)
	case TOML:
		var buf bytes.Buffer
		enc := toml.NewEncoder(&buf)
		enc.SetIndentTables(true)
		err = enc.Encode(spec)
		data = buf.Bytes()
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode spec as %s: %w", f, err)
	}
	return data, nil
}

// Write encodes spec in format f to w.
func Write(w io.Writer, spec *ast.Spec, f Format) error {
	data, err := Marshal(spec, f)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Unmarshal decodes a Spec previously written by Marshal. Source positions
// are not part of the export and stay zero.
func Unmarshal(data []byte, f Format) (*ast.Spec, error) {
	spec := ast.NewSpec()
	var err error
	switch f {
	case JSON:
		err = sonic.ConfigStd.Unmarshal(data, spec)
	case YAML:
		err = yaml.Unmarshal(data, spec)
	case TOML:
		err = toml.Unmarshal(data, spec)
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s spec: %w", f, err)
	}
	normalizeTrees(spec)
	return spec, nil
}

// normalizeTrees turns the generic maps produced by the decoders back into
// ast.Tree values so that Lookup and Flatten work on decoded themes.
func normalizeTrees(spec *ast.Spec) {
	themes := spec.Themes
	if spec.ActiveTheme != nil {
		themes = append(themes[:len(themes):len(themes)], spec.ActiveTheme)
	}
	for _, t := range themes {
		t.Properties = toTree(t.Properties)
	}
}

func toTree(m map[string]any) ast.Tree {
	out := make(ast.Tree, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case ast.Tree:
			out[k] = toTree(val)
		case map[string]any:
			out[k] = toTree(val)
		case string:
			out[k] = val
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}
