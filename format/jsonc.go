package format

import (
	"strings"

	"conf_surgeon/value"
)

// parseJSONC returns value tree parsed from <text>, tolerating '//' and '/* */' comments and trailing commas.
//
// If the tolerant path fails to produce a well-formed document, the strict parser gets a chance before giving up.
func parseJSONC(text string) (value.Value, error) {
	v, err := parseJSON(dropTrailingCommas(StripJSONComments(text)))
	if err == nil {
		return v, nil
	}
	if v, strictErr := parseJSON(text); strictErr == nil {
		return v, nil
	}
	return nil, err
}

// StripJSONComments returns <text> with '//' and '/* */' comments outside of string literals blanked out with
// spaces, so byte offsets of the remaining content stay unchanged
func StripJSONComments(text string) string {
	out := []byte(text)
	const (
		code = iota
		inString
		inLineComment
		inBlockComment
	)
	state := code
	for i := 0; i < len(out); i++ {
		c := out[i]
		switch state {
		case code:
			switch {
			case c == '"':
				state = inString
			case c == '/' && i+1 < len(out) && out[i+1] == '/':
				state = inLineComment
				out[i] = ' '
			case c == '/' && i+1 < len(out) && out[i+1] == '*':
				state = inBlockComment
				out[i] = ' '
			}
		case inString:
			if c == '\\' {
				i++
			} else if c == '"' {
				state = code
			}
		case inLineComment:
			if c == '\n' {
				state = code
			} else if c != '\r' {
				out[i] = ' '
			}
		case inBlockComment:
			if c == '*' && i+1 < len(out) && out[i+1] == '/' {
				out[i] = ' '
				out[i+1] = ' '
				state = code
				i++
			} else if c != '\n' && c != '\r' {
				out[i] = ' '
			}
		}
	}
	return string(out)
}

// dropTrailingCommas returns <text> with commas directly preceding a closing bracket removed
func dropTrailingCommas(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	inString := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			sb.WriteByte(c)
			if c == '\\' && i+1 < len(text) {
				sb.WriteByte(text[i+1])
				i++
			} else if c == '"' {
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			sb.WriteByte(c)
			continue
		}
		if c == ',' {
			j := i + 1
			for j < len(text) && isJSONSpace(text[j]) {
				j++
			}
			if j < len(text) && (text[j] == '}' || text[j] == ']') {
				continue
			}
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// isJSONSpace returns true if <c> is insignificant whitespace in JSON
func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
