package patch

import (
	"strings"

	"conf_surgeon/format"
	"conf_surgeon/schema"
	"conf_surgeon/util/parse"
	"conf_surgeon/value"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// patchYAML returns <original> YAML text edited in place, line by line, to represent <newValue>.
//
// Indentation depth is the sole structural signal: only block style survives surgical edits, flow style values are
// replaced like scalars. <schemaV> supplies the property order hint placing newly inserted keys.
func patchYAML(original string, newValue value.Value, schemaV value.Value) (string, error) {
	oldValue, err := format.Parse(original, format.YAML)
	if err != nil {
		return "", err
	}
	if value.Equal(oldValue, newValue) {
		return original, nil
	}
	oldM, ok := oldValue.(value.Map)
	newM, okNew := newValue.(value.Map)
	if !ok || !okNew {
		return "", errors.New("Only mapping documents can be patched in place")
	}
	lines := strings.Split(original, "\n")
	lines, err = patchMapScope(lines, 0, 0, oldM, newM, value.Path{}, schemaV)
	if err != nil {
		return "", err
	}
	out := strings.Join(lines, "\n")
	if err = verifyYAML(out, newValue); err != nil {
		return "", err
	}
	return out, nil
}

// verifyYAML returns error if <text> does not parse back to <want>.
//
// The line scanner can not follow every YAML construct (flow style roots, anchors losing their definition), so
// every patched text is reparsed before it leaves the patcher.
func verifyYAML(text string, want value.Value) error {
	patched, err := format.Parse(text, format.YAML)
	if err != nil {
		return errors.Wrap(err, "Reparse patched text")
	}
	if _, ok := patched.(value.Null); ok {
		// A document stripped of it's every key parses as null but still represents an empty mapping
		patched = value.Value(value.Map{})
	}
	if !value.Equal(patched, want) {
		return errors.New("Patched text does not represent the new value")
	}
	return nil
}

// scopeEntry represents one mapping key found at the current indentation level
type scopeEntry struct {
	key  string
	line int
}

// scanScope returns mapping entries whose indentation equals <indent>, scanning <lines> from <start> until a
// non-blank, non-comment line with lower indentation exits the scope. <end> is the exclusive scope boundary.
func scanScope(lines []string, start, indent int) (entries []scopeEntry, end int) {
	end = len(lines)
	for i := start; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		ind := parse.GetIndent(lines[i])
		if ind < indent {
			return entries, i
		}
		if ind > indent {
			continue
		}
		if _, key, _, ok := parse.SplitKeyLine(lines[i]); ok {
			entries = append(entries, scopeEntry{key: key, line: i})
		}
	}
	return entries, end
}

// yamlBlockEnd returns the exclusive line index where the block of the key at <keyLine> ends.
//
// Continuation is every following line indented deeper than <indent>, plus indentless sequence items sitting at the
// key's own indentation. Blank lines inside the block are included, trailing ones are not.
func yamlBlockEnd(lines []string, keyLine, indent int) int {
	end := keyLine + 1
	for j := keyLine + 1; j < len(lines); j++ {
		trimmed := strings.TrimSpace(lines[j])
		if trimmed == "" {
			continue
		}
		ind := parse.GetIndent(lines[j])
		if ind > indent || (ind == indent && (strings.HasPrefix(trimmed, "- ") || trimmed == "-")) {
			end = j + 1
			continue
		}
		break
	}
	return end
}

// splice returns <lines> with the range [from, to) replaced by <repl>
func splice(lines []string, from, to int, repl ...string) []string {
	out := make([]string, 0, len(lines)-(to-from)+len(repl))
	out = append(out, lines[:from]...)
	out = append(out, repl...)
	return append(out, lines[to:]...)
}

// patchMapScope rewrites the mapping scope of <lines> at <indent> starting from <start> so it represents <newM>
// instead of <oldM>, touching only the lines whose keys actually changed
func patchMapScope(lines []string, start, indent int, oldM, newM value.Map, p value.Path, schemaV value.Value) ([]string, error) {
	entries, end := scanScope(lines, start, indent)

	find := func(key string) *scopeEntry {
		for i := range entries {
			if entries[i].key == key {
				return &entries[i]
			}
		}
		return nil
	}
	shift := func(from, delta int) {
		if delta == 0 {
			return
		}
		for i := range entries {
			if entries[i].line >= from {
				entries[i].line += delta
			}
		}
		end += delta
	}

	// Keys no longer present lose their line and every continuation line, sibling comments stay
	for _, field := range oldM {
		if _, kept := newM.Find(field.Key); kept {
			continue
		}
		e := find(field.Key)
		if e == nil {
			return nil, errors.Errorf("Can not find line of removed key: %v", field.Key)
		}
		blockEnd := yamlBlockEnd(lines, e.line, indent)
		lines = splice(lines, e.line, blockEnd)
		shift(e.line, -(blockEnd - e.line))
		entries = lo.Reject(entries, func(it scopeEntry, _ int) bool { return it.key == field.Key })
	}

	for _, field := range newM {
		oldChild, existed := oldM.Find(field.Key)
		if existed && value.Equal(oldChild, field.Value) {
			continue
		}

		if !existed {
			block := serializeYAMLEntry(field.Key, field.Value, indent)
			at := insertAt(lines, entries, start, end, field.Key, schema.PropertyOrder(schemaV, p), indent)
			lines = splice(lines, at, at, block...)
			shift(at, len(block))
			entries = append(entries, scopeEntry{key: field.Key, line: at})
			continue
		}

		e := find(field.Key)
		if e == nil {
			return nil, errors.Errorf("Can not find line of changed key: %v", field.Key)
		}
		line := strings.TrimSuffix(lines[e.line], "\r")
		prefix, _, rest, ok := parse.SplitKeyLine(line)
		if !ok {
			return nil, errors.Errorf("Can not parse key line: %v", lines[e.line])
		}
		valuePart, comment := parse.SplitInlineComment(rest)
		hasInlineValue := strings.TrimSpace(valuePart) != ""
		blockEnd := yamlBlockEnd(lines, e.line, indent)

		if newChildMap, isMap := field.Value.(value.Map); isMap && len(newChildMap) > 0 && !hasInlineValue {
			if oldChildMap, wasMap := oldChild.(value.Map); wasMap {
				sub, err := patchMapScope(lines, e.line+1, indent+2, oldChildMap, newChildMap, p.Child(value.Prop(field.Key)), schemaV)
				if err != nil {
					return nil, err
				}
				shift(e.line+1, len(sub)-len(lines))
				lines = sub
				continue
			}
		}

		if isScalarKind(field.Value) && blockEnd == e.line+1 {
			cr := ""
			if strings.HasSuffix(lines[e.line], "\r") {
				cr = "\r"
			}
			sep := valuePart[:len(valuePart)-len(strings.TrimLeft(valuePart, " \t"))]
			if !hasInlineValue {
				sep = " "
			}
			lines[e.line] = prefix + sep + scalarString(field.Value) + comment + cr
			continue
		}

		// Lists and structural type changes replace the whole block, so their comments do not survive
		block := serializeYAMLEntry(field.Key, field.Value, indent)
		lines = splice(lines, e.line, blockEnd, block...)
		shift(e.line+1, len(block)-(blockEnd-e.line))
	}

	return lines, nil
}

// isScalarKind returns true if <v> renders as a single token on the key's own line
func isScalarKind(v value.Value) bool {
	if v == nil {
		return true
	}
	switch v.Kind() {
	case value.KindList, value.KindMap:
		return false
	}
	return true
}

// insertAt returns line index where a block for <key> should be inserted.
//
// With an <order> hint the block lands after the nearest preceding sibling that already exists, else before the
// nearest following one. Without a hint (or existing siblings) it lands at the end of the scope, before any
// trailing blank lines.
func insertAt(lines []string, entries []scopeEntry, start, end int, key string, order []string, indent int) int {
	find := func(k string) *scopeEntry {
		for i := range entries {
			if entries[i].key == k {
				return &entries[i]
			}
		}
		return nil
	}
	if pos := lo.IndexOf(order, key); pos >= 0 {
		for i := pos - 1; i >= 0; i-- {
			if e := find(order[i]); e != nil {
				return yamlBlockEnd(lines, e.line, indent)
			}
		}
		for i := pos + 1; i < len(order); i++ {
			if e := find(order[i]); e != nil {
				return e.line
			}
		}
	}
	at := end
	for at > start && at <= len(lines) && strings.TrimSpace(lines[at-1]) == "" {
		at--
	}
	return at
}

// serializeYAMLEntry returns fresh block lines for '<key>: <v>' indented by <indent> spaces
func serializeYAMLEntry(key string, v value.Value, indent int) []string {
	ind := strings.Repeat(" ", indent)
	keyTok := yamlKeyToken(key)
	switch t := v.(type) {
	case value.Map:
		if len(t) == 0 {
			return []string{ind + keyTok + ": {}"}
		}
		out := []string{ind + keyTok + ":"}
		for _, field := range t {
			out = append(out, serializeYAMLEntry(field.Key, field.Value, indent+2)...)
		}
		return out
	case value.List:
		if len(t) == 0 {
			return []string{ind + keyTok + ": []"}
		}
		out := []string{ind + keyTok + ":"}
		for _, item := range t {
			out = append(out, serializeYAMLItem(item, indent+2)...)
		}
		return out
	}
	return []string{ind + keyTok + ": " + scalarString(v)}
}

// serializeYAMLItem returns '- ' prefixed block lines for list element <item> indented by <indent> spaces
func serializeYAMLItem(item value.Value, indent int) []string {
	ind := strings.Repeat(" ", indent)
	switch t := item.(type) {
	case value.Map:
		if len(t) == 0 {
			return []string{ind + "- {}"}
		}
		var out []string
		for i, field := range t {
			sub := serializeYAMLEntry(field.Key, field.Value, indent+2)
			if i == 0 {
				sub[0] = ind + "- " + strings.TrimLeft(sub[0], " ")
			}
			out = append(out, sub...)
		}
		return out
	case value.List:
		if len(t) == 0 {
			return []string{ind + "- []"}
		}
		out := []string{ind + "-"}
		for _, sub := range t {
			out = append(out, serializeYAMLItem(sub, indent+2)...)
		}
		return out
	}
	return []string{ind + "- " + scalarString(item)}
}

// yamlKeyToken returns <key> quoted when emitting it bare would change it's meaning
func yamlKeyToken(key string) string {
	if needsQuoting(key) {
		return format.QuoteJSONString(key)
	}
	return key
}
