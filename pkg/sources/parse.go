package sources

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/tidwall/gjson"

	"github.com/agentstation/liftmap/pkg/errors"
)

// Format is the encoding of a source document.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the format of a file from its extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// wrapperKeys are object keys that may hold the exercise array when a
// document is not a bare array.
var wrapperKeys = []string{"exercises", "data", "items"}

// Parse reads a document into raw exercise records. The records are the
// elements of a top-level array, or of an array under one of the wrapper keys.
// Every element is kept, objects or not, so malformed entries reach validation.
func Parse(body []byte, format Format) (records []gjson.Result, warnings []string, err error) {
	if format == FormatYAML {
		body, err = yamlToJSON(body)
		if err != nil {
			return nil, nil, err
		}
	}
	if !gjson.ValidBytes(body) {
		return nil, nil, &errors.ParseError{Format: string(FormatJSON), Message: "payload is not valid JSON"}
	}

	doc := gjson.ParseBytes(body)
	arr := doc
	if !doc.IsArray() {
		arr = gjson.Result{}
		if doc.IsObject() {
			for _, key := range wrapperKeys {
				if v := doc.Get(key); v.IsArray() {
					arr = v
					warnings = append(warnings, fmt.Sprintf("payload is not an array; using %q", key))
					break
				}
			}
		}
		if !arr.IsArray() {
			return nil, nil, &errors.ParseError{Format: string(FormatJSON), Message: "payload is not an array of exercises"}
		}
	}

	records = arr.Array()
	if records == nil {
		records = []gjson.Result{}
	}
	return records, warnings, nil
}

func yamlToJSON(body []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(body, &doc); err != nil {
		return nil, errors.WrapParse(string(FormatYAML), "", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.WrapParse(string(FormatYAML), "", err)
	}
	return out, nil
}
