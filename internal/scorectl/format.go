package scorectl

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a file encoding understood by scorectl.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml. An empty string yields "".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// formatFor picks the explicit format, else the one implied by the file
// extension, else JSON.
func formatFor(explicit Format, path string) Format {
	if explicit != "" {
		return explicit
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// toWire converts a file body to the JSON the API accepts.
func toWire(raw []byte, f Format) ([]byte, error) {
	if f != FormatYAML {
		return raw, nil
	}
	var v any
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("convert yaml: %w", err)
	}
	return out, nil
}

// fromWire renders an API JSON body in the requested format.
func fromWire(raw []byte, f Format) ([]byte, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: invalid response body: %w", ErrAPI, err)
	}
	if f == FormatYAML {
		out, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("render yaml: %w", err)
		}
		return out, nil
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render json: %w", err)
	}
	return append(out, '\n'), nil
}
