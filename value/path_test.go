package value

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestPathString(t *testing.T) {
	assert.Exactly(t, "", Path{}.String(), "should render empty path as empty string")
	assert.Exactly(t, "a.b", Path{Prop("a"), Prop("b")}.String(), "should join properties with dots")
	assert.Exactly(t, "a[0].b", Path{Prop("a"), Idx(0), Prop("b")}.String(), "should render indexes in brackets")
}

func TestPathChild(t *testing.T) {
	p := Path{Prop("a")}
	p2 := p.Child(Prop("b"))
	assert.Exactly(t, Path{Prop("a"), Prop("b")}, p2, "should append the segment")
	assert.Exactly(t, Path{Prop("a")}, p, "should not modify the original")
}

func TestParsePath(t *testing.T) {
	assert.Exactly(t, Path{}, ParsePath(""), "should parse empty input as root")
	assert.Exactly(t, Path{Prop("a")}, ParsePath("a"), "should parse single property")
	assert.Exactly(t, Path{Prop("a"), Prop("b"), Prop("c")}, ParsePath("a.b.c"), "should parse dotted properties")
	assert.Exactly(t, Path{Prop("a"), Idx(0)}, ParsePath("a[0]"), "should parse index after property")
	assert.Exactly(t, Path{Prop("a"), Idx(2), Prop("b")}, ParsePath("a[2].b"), "should parse mixed path")
	assert.Exactly(t, Path{Idx(1), Idx(2)}, ParsePath("[1][2]"), "should parse consecutive indexes")
}

func newTestTree() Value {
	return Map{
		{Key: "name", Value: String("test")},
		{Key: "items", Value: List{
			Map{{Key: "id", Value: Number("1")}},
			Map{{Key: "id", Value: Number("2")}},
		}},
		{Key: "nested", Value: Map{{Key: "flag", Value: Bool(true)}}},
	}
}

func TestGet(t *testing.T) {
	tree := newTestTree()

	v, ok := Get(tree, Path{})
	assert.True(t, ok, "should resolve the root")
	assert.Exactly(t, tree, v, "should return the tree itself")

	v, ok = Get(tree, ParsePath("name"))
	assert.True(t, ok, "should resolve the property")
	assert.Exactly(t, Value(String("test")), v, "should return this value")

	v, ok = Get(tree, ParsePath("items[1].id"))
	assert.True(t, ok, "should resolve the nested path")
	assert.Exactly(t, Value(Number("2")), v, "should return this value")

	_, ok = Get(tree, ParsePath("missing"))
	assert.False(t, ok, "should not resolve missing property")

	_, ok = Get(tree, ParsePath("items[5]"))
	assert.False(t, ok, "should not resolve out of range index")

	_, ok = Get(tree, ParsePath("name.sub"))
	assert.False(t, ok, "should not resolve property of a scalar")
}

func TestHas(t *testing.T) {
	tree := Map{{Key: "zero", Value: Number("0")}, {Key: "empty", Value: String("")}, {Key: "x", Value: Null{}}}
	assert.True(t, Has(tree, ParsePath("zero")), "should treat falsy values as present")
	assert.True(t, Has(tree, ParsePath("empty")), "should treat falsy values as present")
	assert.True(t, Has(tree, ParsePath("x")), "should treat null as present")
	assert.False(t, Has(tree, ParsePath("x.y")), "should not resolve property of null")
	assert.False(t, Has(tree, ParsePath("missing")), "should treat missing node as absent")
}

func TestSet(t *testing.T) {
	tree := newTestTree()

	out := Set(tree, Path{}, String("root"))
	assert.Exactly(t, Value(String("root")), out, "should replace the root for empty path")

	out = Set(tree, ParsePath("name"), String("renamed"))
	v, _ := Get(out, ParsePath("name"))
	assert.Exactly(t, Value(String("renamed")), v, "should replace existing value")
	v, _ = Get(tree, ParsePath("name"))
	assert.Exactly(t, Value(String("test")), v, "should not modify the original")

	out = Set(tree, ParsePath("a.b.c"), Number("1"))
	v, _ = Get(out, ParsePath("a.b.c"))
	assert.Exactly(t, Value(Number("1")), v, "should create intermediate maps")

	out = Set(tree, ParsePath("items[2]"), String("new"))
	v, _ = Get(out, ParsePath("items[2]"))
	assert.Exactly(t, Value(String("new")), v, "should append at index equal to list length")

	out = Set(tree, ParsePath("items[10]"), String("new"))
	assert.Exactly(t, tree, out, "should ignore index past list length")

	out = Set(tree, ParsePath("fresh[0]"), Number("7"))
	v, _ = Get(out, ParsePath("fresh[0]"))
	assert.Exactly(t, Value(Number("7")), v, "should create intermediate list for index segment")
}

func TestDelete(t *testing.T) {
	tree := newTestTree()

	out := Delete(tree, ParsePath("name"))
	assert.False(t, Has(out, ParsePath("name")), "should remove the field")
	assert.True(t, Has(tree, ParsePath("name")), "should not modify the original")

	out = Delete(tree, ParsePath("items[0]"))
	items, _ := Get(out, ParsePath("items"))
	assert.Len(t, items, 1, "should remove the list element")
	v, _ := Get(out, ParsePath("items[0].id"))
	assert.Exactly(t, Value(Number("2")), v, "should shift following elements")

	out = Delete(tree, ParsePath("missing.path"))
	assert.Exactly(t, tree, out, "should keep reference identity when nothing was removed")

	out = Delete(tree, Path{})
	assert.Exactly(t, tree, out, "should keep reference identity for empty path")
}

func TestMoveListElement(t *testing.T) {
	tree := Map{{Key: "l", Value: List{String("a"), String("b"), String("c"), String("d")}}}

	out, err := MoveListElement(tree, ParsePath("l"), 0, 2)
	assert.NoError(t, err, "should not return error")
	v, _ := Get(out, ParsePath("l"))
	assert.Exactly(t, Value(List{String("b"), String("c"), String("a"), String("d")}), v,
		"should move the element to the target position")
	v, _ = Get(tree, ParsePath("l"))
	assert.Exactly(t, Value(List{String("a"), String("b"), String("c"), String("d")}), v,
		"should not modify the original")

	out, err = MoveListElement(tree, ParsePath("l"), 3, 0)
	assert.NoError(t, err, "should not return error")
	v, _ = Get(out, ParsePath("l"))
	assert.Exactly(t, Value(List{String("d"), String("a"), String("b"), String("c")}), v,
		"should move the element backwards")

	out, err = MoveListElement(tree, ParsePath("l"), -5, 100)
	assert.NoError(t, err, "should not return error")
	v, _ = Get(out, ParsePath("l"))
	assert.Exactly(t, Value(List{String("b"), String("c"), String("d"), String("a")}), v,
		"should clamp out of range indexes")

	out, err = MoveListElement(tree, ParsePath("l"), 1, 1)
	assert.NoError(t, err, "should not return error")
	assert.Exactly(t, tree, out, "should keep reference identity when indexes match")

	_, err = MoveListElement(tree, ParsePath("missing"), 0, 1)
	assert.True(t, errors.Is(err, NotAListError{Path: "missing"}), "should return this error for missing path")

	tree2 := Map{{Key: "s", Value: String("scalar")}}
	_, err = MoveListElement(tree2, ParsePath("s"), 0, 1)
	assert.True(t, errors.Is(err, NotAListError{Path: "s"}), "should return this error for non list target")

	tree3 := Map{{Key: "l", Value: List{}}}
	out, err = MoveListElement(tree3, ParsePath("l"), 0, 1)
	assert.NoError(t, err, "should not return error for empty list")
	assert.Exactly(t, tree3, out, "should keep reference identity for empty list")
}
