package patch

import (
	"strings"

	"conf_surgeon/format"
	"conf_surgeon/value"

	"github.com/cockroachdb/errors"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

// patchJSON returns <original> JSON or JSONC text edited in place to represent <newValue>
func patchJSON(original string, newValue value.Value) (string, error) {
	oldValue, err := format.ParseTolerant(original, format.JSONC)
	if err != nil {
		return "", err
	}
	if value.Equal(oldValue, newValue) {
		return original, nil
	}
	var edits []edit
	diffValues(value.Path{}, oldValue, newValue, &edits)
	text := original
	for _, e := range edits {
		if text, err = applyJSONEdit(text, e); err != nil {
			return "", err
		}
	}
	if err = verifyJSON(text, newValue); err != nil {
		return "", err
	}
	return text, nil
}

// verifyJSON returns error if <text> does not parse back to <want>
func verifyJSON(text string, want value.Value) error {
	patched, err := format.Parse(text, format.JSONC)
	if err != nil {
		return errors.Wrap(err, "Reparse patched text")
	}
	gotText, err := format.Serialize(patched, format.JSON)
	if err != nil {
		return err
	}
	wantText, err := format.Serialize(want, format.JSON)
	if err != nil {
		return err
	}
	if !jsonpatch.Equal([]byte(gotText), []byte(wantText)) {
		return errors.New("Patched text does not represent the new value")
	}
	return nil
}

// applyJSONEdit returns <text> with single edit <e> applied, resolving it's byte range against the current text
func applyJSONEdit(text string, e edit) (string, error) {
	t, err := locateJSON(text, e.path)
	if err != nil {
		return "", err
	}
	switch e.kind {
	case editRemove:
		if !t.found {
			return text, nil
		}
		return removeJSONMember(text, t), nil
	case editSet:
		if t.found {
			indent := lineIndentAt(text, t.keyStart)
			return text[:t.valStart] + format.RenderJSON(e.val, indent) + text[t.valEnd:], nil
		}
		if !t.canInsert || len(e.path) == 0 {
			return "", errors.Errorf("Can not locate path in text: %v", e.path)
		}
		last := e.path[len(e.path)-1]
		if last.Kind != value.Property {
			return "", errors.Errorf("Can not insert list element at path: %v", e.path)
		}
		return insertJSONMember(text, t, last.Key, e.val), nil
	}
	return text, nil
}

// removeJSONMember returns <text> without the object member at <t>, eating the separating comma and, if the member
// occupied whole lines, the emptied lines themselves
func removeJSONMember(text string, t target) string {
	start := t.keyStart
	end := t.valEnd
	switch {
	case t.nextCommaPos >= 0:
		end = t.nextCommaPos + 1
	case t.prevCommaPos >= 0:
		start = t.prevCommaPos
	}
	// Swallow trailing spaces, and the whole line if nothing else remains on it
	for end < len(text) && (text[end] == ' ' || text[end] == '\t') {
		end++
	}
	lineStart := strings.LastIndexByte(text[:start], '\n') + 1
	if strings.TrimSpace(text[lineStart:start]) == "" && end < len(text) && text[end] == '\n' {
		start = lineStart
		end++
	}
	return text[:start] + text[end:]
}

// insertJSONMember returns <text> with member <key>: <v> appended to the object described by <t>
func insertJSONMember(text string, t target, key string, v value.Value) string {
	multiline := strings.Contains(text[t.openPos:t.closePos], "\n")
	if t.lastElemEnd < 0 {
		// Empty object
		indent := lineIndentAt(text, t.openPos)
		member := format.QuoteJSONString(key) + ": " + format.RenderJSON(v, indent+"  ")
		if multiline {
			return text[:t.openPos+1] + "\n" + indent + "  " + member + "\n" + indent + text[t.closePos:]
		}
		return text[:t.openPos+1] + " " + member + " " + text[t.closePos:]
	}
	indent := t.memberIndent
	member := format.QuoteJSONString(key) + ": " + format.RenderJSON(v, indent)
	if t.trailingComma >= 0 {
		at := lineCommentEnd(text, t.trailingComma+1)
		if multiline {
			return text[:at] + "\n" + indent + member + text[at:]
		}
		return text[:at] + " " + member + text[at:]
	}
	comma := t.lastElemEnd
	at := lineCommentEnd(text, comma)
	if multiline {
		return text[:comma] + "," + text[comma:at] + "\n" + indent + member + text[at:]
	}
	return text[:comma] + "," + text[comma:at] + " " + member + text[at:]
}

// lineCommentEnd returns the index right after a comment following <at> on the same line or <at> itself if the
// line carries none.
//
// Members are inserted after such a comment so the annotation stays attached to the member it describes.
func lineCommentEnd(text string, at int) int {
	i := at
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	if strings.HasPrefix(text[i:], "//") {
		for i < len(text) && text[i] != '\n' {
			i++
		}
		return i
	}
	if strings.HasPrefix(text[i:], "/*") {
		end := strings.Index(text[i+2:], "*/")
		if end >= 0 && !strings.Contains(text[i:i+2+end], "\n") {
			return i + 2 + end + 2
		}
	}
	return at
}
