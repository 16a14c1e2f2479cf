package format

import (
	"strings"

	"conf_surgeon/value"

	"github.com/cockroachdb/errors"
)

// Format represents textual serialization format of a document
type Format string

const (
	JSON  Format = "json"
	JSONC Format = "jsonc"
	YAML  Format = "yaml"
)

// UnknownFormatError represents error thrown if an unsupported format is requested
type UnknownFormatError struct {
	Format Format
}

// Error is used to satisfy golang error interface
func (e UnknownFormatError) Error() string {
	return "Unknown document format: " + string(e.Format)
}

// Parse returns value tree parsed from <text> as <f>.
//
// JSON is parsed strictly, JSONC tolerates comments and trailing commas, YAML keeps date-like scalars as strings.
func Parse(text string, f Format) (value.Value, error) {
	switch f {
	case JSON:
		return parseJSON(text)
	case JSONC:
		return parseJSONC(text)
	case YAML:
		return parseYAML(text)
	}
	return nil, errors.WithStack(UnknownFormatError{Format: f})
}

// ParseTolerant returns value tree parsed from <text> with the most forgiving codec for <f>.
//
// It is the parse used to recover the old value of a document before patching: JSON input goes through the JSONC
// codec so stray comments or trailing commas never force a destructive re-serialization.
func ParseTolerant(text string, f Format) (value.Value, error) {
	if f == JSON {
		f = JSONC
	}
	return Parse(text, f)
}

// Serialize returns <v> rendered as <f> without any comment awareness
func Serialize(v value.Value, f Format) (string, error) {
	switch f {
	case JSON, JSONC:
		return serializeJSON(v), nil
	case YAML:
		return serializeYAML(v)
	}
	return "", errors.WithStack(UnknownFormatError{Format: f})
}

// Detect returns format guessed from raw <text>.
//
// Content leading with '{' or '[' which parses under the tolerant JSON codec classifies as JSON, or as JSONC if
// comment markers appear anywhere in it. Everything else, including empty input, classifies as YAML.
func Detect(text string) Format {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		if _, err := parseJSONC(text); err == nil {
			if strings.Contains(text, "//") || strings.Contains(text, "/*") {
				return JSONC
			}
			return JSON
		}
	}
	return YAML
}
