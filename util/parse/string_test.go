package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetIndent(t *testing.T) {
	assert.Exactly(t, 0, GetIndent(""), "should return that amount of initial space characters")
	assert.Exactly(t, 0, GetIndent("a b"), "should return that amount of initial space characters")
	assert.Exactly(t, 1, GetIndent(" a"), "should return that amount of initial space characters")
	assert.Exactly(t, 1, GetIndent(" a b  "), "should return that amount of initial space characters")
	assert.Exactly(t, 3, GetIndent("   "), "should return that amount of initial space characters")
	assert.Exactly(t, 0, GetIndent("	a"), "should return that amount of initial space characters") // Tab
}

func TestSplitKeyLine(t *testing.T) {
	prefix, key, rest, ok := SplitKeyLine("name: value")
	assert.True(t, ok, "should split the line")
	assert.Exactly(t, "name:", prefix, "should keep the prefix verbatim")
	assert.Exactly(t, "name", key, "should return the key")
	assert.Exactly(t, " value", rest, "should return everything after the colon")

	prefix, key, rest, ok = SplitKeyLine("  nested:")
	assert.True(t, ok, "should split key without value")
	assert.Exactly(t, "  nested:", prefix, "should keep the indentation in the prefix")
	assert.Exactly(t, "nested", key, "should return the key")
	assert.Exactly(t, "", rest, "should return empty rest")

	prefix, key, rest, ok = SplitKeyLine(`"quoted: key": 1`)
	assert.True(t, ok, "should split quoted key")
	assert.Exactly(t, `"quoted: key":`, prefix, "should keep the original quoting in the prefix")
	assert.Exactly(t, "quoted: key", key, "should unquote the key")
	assert.Exactly(t, " 1", rest, "should return everything after the colon")

	_, key, _, ok = SplitKeyLine("'it''s': 1")
	assert.True(t, ok, "should split single quoted key")
	assert.Exactly(t, "it's", key, "should resolve the quote escape")

	_, key, rest, ok = SplitKeyLine("url: http://host:8080/path")
	assert.True(t, ok, "should not split on colons inside the value")
	assert.Exactly(t, "url", key, "should return the key")
	assert.Exactly(t, " http://host:8080/path", rest, "should keep the value intact")

	_, _, _, ok = SplitKeyLine("")
	assert.False(t, ok, "should reject blank line")
	_, _, _, ok = SplitKeyLine("   ")
	assert.False(t, ok, "should reject blank line")
	_, _, _, ok = SplitKeyLine("# comment")
	assert.False(t, ok, "should reject comment line")
	_, _, _, ok = SplitKeyLine("- item")
	assert.False(t, ok, "should reject sequence item")
	_, _, _, ok = SplitKeyLine("plain text")
	assert.False(t, ok, "should reject scalar continuation line")
	_, _, _, ok = SplitKeyLine("no:colon")
	assert.False(t, ok, "should reject colon not followed by whitespace")
}

func TestSplitInlineComment(t *testing.T) {
	valuePart, comment := SplitInlineComment(" value # note")
	assert.Exactly(t, " value", valuePart, "should return the value part")
	assert.Exactly(t, " # note", comment, "should include the separating whitespace in the comment")

	valuePart, comment = SplitInlineComment(" value")
	assert.Exactly(t, " value", valuePart, "should return the whole rest")
	assert.Exactly(t, "", comment, "should return empty comment")

	valuePart, comment = SplitInlineComment(` "a # b" # real`)
	assert.Exactly(t, ` "a # b"`, valuePart, "should ignore '#' inside double quotes")
	assert.Exactly(t, " # real", comment, "should return the real comment")

	valuePart, comment = SplitInlineComment(" 'a # b' # real")
	assert.Exactly(t, " 'a # b'", valuePart, "should ignore '#' inside single quotes")
	assert.Exactly(t, " # real", comment, "should return the real comment")

	valuePart, comment = SplitInlineComment(" a#b")
	assert.Exactly(t, " a#b", valuePart, "should not treat '#' without preceding whitespace as a comment")
	assert.Exactly(t, "", comment, "should return empty comment")
}
