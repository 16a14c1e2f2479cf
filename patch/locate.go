package patch

import (
	"strings"

	"conf_surgeon/value"

	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"
)

// target represents the textual location a path resolves to in JSON/JSONC source.
//
// When the final segment is a map key missing from the text, found is false and the container fields describe the
// enclosing object so a new member can be spliced in.
type target struct {
	found bool

	keyStart     int // start of the member key token, or of the element value for list items
	valStart     int
	valEnd       int // exclusive
	prevCommaPos int // comma before this member, -1 if it is the first
	nextCommaPos int // comma after this member, -1 if it is the last

	canInsert       bool
	openPos         int    // position of the container '{'
	closePos        int    // position of the container '}'
	lastElemEnd     int    // exclusive end of the last member value, -1 if the object is empty
	trailingComma   int    // position of a tolerated comma after the last member, -1 if none
	lastMemberStart int    // key start of the last member, -1 if the object is empty
	memberIndent    string // line indent of the last member
}

// jsonCursor represents a position inside JSON/JSONC text, able to step over whitespace, comments and whole values
type jsonCursor struct {
	text string
	pos  int
}

// skipSpace advances past whitespace and '//' and '/* */' comments
func (c *jsonCursor) skipSpace() {
	for c.pos < len(c.text) {
		ch := c.text[c.pos]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			c.pos++
		case ch == '/' && c.pos+1 < len(c.text) && c.text[c.pos+1] == '/':
			if end := strings.IndexByte(c.text[c.pos:], '\n'); end >= 0 {
				c.pos += end
			} else {
				c.pos = len(c.text)
			}
		case ch == '/' && c.pos+1 < len(c.text) && c.text[c.pos+1] == '*':
			if end := strings.Index(c.text[c.pos+2:], "*/"); end >= 0 {
				c.pos += end + 4
			} else {
				c.pos = len(c.text)
			}
		default:
			return
		}
	}
}

// skipString advances past the string literal at the current position
func (c *jsonCursor) skipString() error {
	if c.pos >= len(c.text) || c.text[c.pos] != '"' {
		return errors.Errorf("Expected string at offset %v", c.pos)
	}
	for i := c.pos + 1; i < len(c.text); i++ {
		switch c.text[i] {
		case '\\':
			i++
		case '"':
			c.pos = i + 1
			return nil
		}
	}
	return errors.New("Unterminated string literal")
}

// readString returns the decoded string literal at the current position and advances past it
func (c *jsonCursor) readString() (string, error) {
	start := c.pos
	if err := c.skipString(); err != nil {
		return "", err
	}
	var out string
	if err := json.Unmarshal([]byte(c.text[start:c.pos]), &out); err != nil {
		return "", errors.Wrap(err, "Decode object key")
	}
	return out, nil
}

// skipValue advances past one complete value of any shape
func (c *jsonCursor) skipValue() error {
	c.skipSpace()
	if c.pos >= len(c.text) {
		return errors.New("Unexpected end of document")
	}
	switch c.text[c.pos] {
	case '"':
		return c.skipString()
	case '{', '[':
		open := c.text[c.pos]
		closing := byte('}')
		if open == '[' {
			closing = ']'
		}
		c.pos++
		for {
			c.skipSpace()
			if c.pos >= len(c.text) {
				return errors.New("Unterminated container")
			}
			if c.text[c.pos] == closing {
				c.pos++
				return nil
			}
			if c.text[c.pos] == ',' || c.text[c.pos] == ':' {
				c.pos++
				continue
			}
			if err := c.skipValue(); err != nil {
				return err
			}
		}
	default:
		// Bare scalar: number, boolean or null
		for c.pos < len(c.text) && !strings.ContainsRune(" \t\r\n,}]/", rune(c.text[c.pos])) {
			c.pos++
		}
		return nil
	}
}

// locateJSON returns the textual location of <p> in <text>.
//
// It resolves against the live text on every call, so previously applied edits never invalidate the offsets.
func locateJSON(text string, p value.Path) (target, error) {
	c := &jsonCursor{text: text}
	c.skipSpace()
	if len(p) == 0 {
		start := c.pos
		if err := c.skipValue(); err != nil {
			return target{}, err
		}
		return target{found: true, keyStart: start, valStart: start, valEnd: c.pos, prevCommaPos: -1, nextCommaPos: -1}, nil
	}
	for i, seg := range p {
		final := i == len(p)-1
		switch seg.Kind {
		case value.Property:
			t, descend, err := c.findMember(seg.Key, final)
			if err != nil {
				return target{}, err
			}
			if final {
				return t, nil
			}
			if !descend {
				return target{}, errors.Errorf("Missing intermediate key: %v", seg.Key)
			}
		case value.Index:
			descend, err := c.findElement(seg.Index, final)
			if err != nil {
				return target{}, err
			}
			if final {
				return descend, nil
			}
		}
	}
	return target{}, errors.New("Unreachable path walk state")
}

// findMember positions the cursor for object member <key>.
//
// If the member exists and <final> is false, the cursor is left at the member value so the walk can descend and
// descend is true. If <final> is true, the full member location is returned. A missing key yields an insertable
// not-found target.
func (c *jsonCursor) findMember(key string, final bool) (target, bool, error) {
	c.skipSpace()
	if c.pos >= len(c.text) || c.text[c.pos] != '{' {
		return target{}, false, errors.Errorf("Expected object at offset %v", c.pos)
	}
	t := target{
		canInsert:       true,
		openPos:         c.pos,
		prevCommaPos:    -1,
		nextCommaPos:    -1,
		lastElemEnd:     -1,
		trailingComma:   -1,
		lastMemberStart: -1,
	}
	c.pos++
	prevComma := -1
	for {
		c.skipSpace()
		if c.pos >= len(c.text) {
			return target{}, false, errors.New("Unterminated object")
		}
		if c.text[c.pos] == '}' {
			t.closePos = c.pos
			t.memberIndent = lineIndentAt(c.text, t.lastMemberStart)
			return t, false, nil
		}
		keyStart := c.pos
		memberKey, err := c.readString()
		if err != nil {
			return target{}, false, err
		}
		c.skipSpace()
		if c.pos >= len(c.text) || c.text[c.pos] != ':' {
			return target{}, false, errors.Errorf("Expected ':' at offset %v", c.pos)
		}
		c.pos++
		c.skipSpace()
		valStart := c.pos
		if memberKey == key && !final {
			return target{}, true, nil
		}
		if err := c.skipValue(); err != nil {
			return target{}, false, err
		}
		valEnd := c.pos
		if memberKey == key {
			t.found = true
			t.keyStart = keyStart
			t.valStart = valStart
			t.valEnd = valEnd
			t.prevCommaPos = prevComma
			c.skipSpace()
			if c.pos < len(c.text) && c.text[c.pos] == ',' {
				t.nextCommaPos = c.pos
			} else {
				t.nextCommaPos = -1
			}
			return t, false, nil
		}
		t.lastElemEnd = valEnd
		t.lastMemberStart = keyStart
		t.trailingComma = -1
		c.skipSpace()
		if c.pos < len(c.text) && c.text[c.pos] == ',' {
			prevComma = c.pos
			t.trailingComma = c.pos
			c.pos++
		}
	}
}

// findElement positions the cursor for list element <index>, returning its location when <final> is true
func (c *jsonCursor) findElement(index int, final bool) (target, error) {
	c.skipSpace()
	if c.pos >= len(c.text) || c.text[c.pos] != '[' {
		return target{}, errors.Errorf("Expected array at offset %v", c.pos)
	}
	c.pos++
	prevComma := -1
	for i := 0; ; i++ {
		c.skipSpace()
		if c.pos >= len(c.text) {
			return target{}, errors.New("Unterminated array")
		}
		if c.text[c.pos] == ']' {
			return target{}, errors.Errorf("Array index out of range: %v", index)
		}
		valStart := c.pos
		if i == index && !final {
			return target{}, nil
		}
		if err := c.skipValue(); err != nil {
			return target{}, err
		}
		if i == index {
			t := target{found: true, keyStart: valStart, valStart: valStart, valEnd: c.pos, prevCommaPos: prevComma, nextCommaPos: -1}
			c.skipSpace()
			if c.pos < len(c.text) && c.text[c.pos] == ',' {
				t.nextCommaPos = c.pos
			}
			return t, nil
		}
		c.skipSpace()
		if c.pos < len(c.text) && c.text[c.pos] == ',' {
			prevComma = c.pos
			c.pos++
		}
	}
}

// lineIndentAt returns leading whitespace of the line containing offset <pos> or empty string for invalid offsets
func lineIndentAt(text string, pos int) string {
	if pos < 0 || pos > len(text) {
		return ""
	}
	lineStart := strings.LastIndexByte(text[:pos], '\n') + 1
	end := lineStart
	for end < len(text) && (text[end] == ' ' || text[end] == '\t') {
		end++
	}
	return text[lineStart:end]
}
