package inspection

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of an input document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension. ok is false for
// extensions that are not inspection documents.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	default:
		return "", false
	}
}

// Document is an inspection as handed over by the backend: a header and the
// still-raw items.
type Document struct {
	Header *Header
	Items  any
}

// Decode reads an input document of the form {"header": {...}, "items": [...]}.
// "inspection" is accepted in place of "header". Items are left raw; the
// export pipeline validates and normalizes them.
func Decode(r io.Reader, format Format) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	var root any
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&root); err != nil {
			return nil, fmt.Errorf("parse json document: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("parse yaml document: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported document format %q", format)
	}

	obj, ok := asObject(root)
	if !ok {
		return nil, fmt.Errorf("document must be an object with header and items")
	}

	doc := &Document{}
	for _, key := range []string{"header", "Header", "inspection", "Inspection"} {
		if raw, present := obj[key]; present {
			doc.Header, _ = NormalizeHeader(raw)
			break
		}
	}
	for _, key := range []string{"items", "Items"} {
		if raw, present := obj[key]; present {
			doc.Items = raw
			break
		}
	}
	return doc, nil
}
