package parse

import (
	"regexp"
	"strings"
)

// indentRx represents regex which 1st capturing group contains 1 or more space characters in the beginnging of the line
var indentRx = regexp.MustCompile(`^( +).*`)

// GetIndent returns amount of space characters in the beginning of the <line>
func GetIndent(line string) int {
	if matches := indentRx.FindStringSubmatch(line); len(matches) > 1 {
		return len(matches[1])
	}
	return 0
}

// SplitKeyLine splits a YAML block mapping <line> of the form 'key: value' or 'key:'.
//
// <prefix> is the raw line text up to and including the colon (indentation and original key quoting kept verbatim),
// <key> is the unquoted key and <rest> is everything after the colon. Returns ok false for blank lines, comments,
// sequence items and scalar continuation lines.
func SplitKeyLine(line string) (prefix, key, rest string, ok bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" || trimmed[0] == '#' || trimmed[0] == '-' {
		return "", "", "", false
	}
	indentLen := len(line) - len(trimmed)
	if trimmed[0] == '"' || trimmed[0] == '\'' {
		quote := trimmed[0]
		end := -1
		for i := 1; i < len(trimmed); i++ {
			if quote == '"' && trimmed[i] == '\\' {
				i++
				continue
			}
			if quote == '\'' && trimmed[i] == '\'' && i+1 < len(trimmed) && trimmed[i+1] == '\'' {
				i++
				continue
			}
			if trimmed[i] == quote {
				end = i
				break
			}
		}
		if end < 0 {
			return "", "", "", false
		}
		after := trimmed[end+1:]
		colon := strings.IndexByte(after, ':')
		if colon < 0 || strings.TrimSpace(after[:colon]) != "" {
			return "", "", "", false
		}
		prefix = line[:indentLen+end+1+colon+1]
		key = unquoteKey(trimmed[:end+1])
		rest = after[colon+1:]
		return prefix, key, rest, true
	}
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] != ':' {
			continue
		}
		// A colon starts a mapping only when followed by whitespace or end of line
		if i+1 < len(trimmed) && !strings.ContainsRune(" \t\r", rune(trimmed[i+1])) {
			continue
		}
		prefix = line[:indentLen+i+1]
		key = strings.TrimSpace(trimmed[:i])
		rest = trimmed[i+1:]
		return prefix, key, rest, true
	}
	return "", "", "", false
}

// SplitInlineComment splits <rest> (text after the colon of a mapping line) into the value part and the trailing
// '#' comment including the whitespace separating them, both verbatim
func SplitInlineComment(rest string) (valuePart, comment string) {
	inSingle, inDouble := false, false
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case '\'':
			if !inDouble {
				inSingle = !inSingle
			}
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
		case '#':
			if inSingle || inDouble {
				continue
			}
			if i > 0 && rest[i-1] != ' ' && rest[i-1] != '\t' {
				continue
			}
			j := i
			for j > 0 && (rest[j-1] == ' ' || rest[j-1] == '\t') {
				j--
			}
			return rest[:j], rest[j:]
		}
	}
	return rest, ""
}

// unquoteKey returns <s> without surrounding YAML quotes, resolving the basic escapes
func unquoteKey(s string) string {
	if len(s) < 2 {
		return s
	}
	body := s[1 : len(s)-1]
	if s[0] == '\'' {
		return strings.ReplaceAll(body, "''", "'")
	}
	body = strings.ReplaceAll(body, `\"`, `"`)
	return strings.ReplaceAll(body, `\\`, `\`)
}
