package patch

import (
	"strconv"
	"strings"

	"conf_surgeon/format"
	"conf_surgeon/value"
)

// scalarString returns the textual token for scalar <v> as it should appear in patched output.
//
// Strings containing ':' or '#', with leading or trailing whitespace, or which would re-parse as a different
// scalar type, are double-quoted with internal quotes escaped. Booleans render as true/false, null and absent
// values as null, numbers via their canonical decimal literal.
func scalarString(v value.Value) string {
	switch t := v.(type) {
	case nil, value.Null:
		return "null"
	case value.Bool:
		return strconv.FormatBool(bool(t))
	case value.Number:
		return string(t)
	case value.String:
		s := string(t)
		if needsQuoting(s) {
			return format.QuoteJSONString(s)
		}
		return s
	}
	return "null"
}

// needsQuoting returns true if plain string <s> can not be emitted bare without changing meaning
func needsQuoting(s string) bool {
	if s == "" || s != strings.TrimSpace(s) {
		return true
	}
	if strings.ContainsAny(s, ":#\"'\n") {
		return true
	}
	// Bare tokens YAML would resolve into non-strings
	switch strings.ToLower(s) {
	case "null", "~", "true", "false", "yes", "no", "on", "off":
		return true
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	return strings.ContainsAny(string(s[0]), "-?[]{}&*!|>%@`,")
}
