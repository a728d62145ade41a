package input

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"gopkg.in/yaml.v3"

	"landed-cost/internal/errors"
)

// Format is a shipment document encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// FormatFromPath infers the document format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".hcl":
		return FormatHCL, nil
	}
	return "", errors.NotSupported("shipment file extension " + filepath.Ext(path))
}

// LoadFile reads and decodes a shipment document
func LoadFile(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "read %s", path)
	}
	return Decode(format, filepath.Base(path), data)
}

// Decode parses data in the given format. name is only used in diagnostics.
// Unknown keys are rejected in every format.
func Decode(format Format, name string, data []byte) (*Document, error) {
	doc := &Document{}
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(doc); err != nil {
			return nil, errors.Parsing("decode JSON shipment "+name, err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(doc); err != nil && err != io.EOF {
			return nil, errors.Parsing("decode YAML shipment "+name, err)
		}
	case FormatHCL:
		// hclsimple picks the syntax from the file name
		if !strings.HasSuffix(name, ".hcl") {
			name += ".hcl"
		}
		if err := hclsimple.Decode(name, data, nil, doc); err != nil {
			return nil, errors.Parsing("decode HCL shipment "+name, err)
		}
	default:
		return nil, errors.NotSupported("shipment format " + string(format))
	}
	return doc, nil
}
