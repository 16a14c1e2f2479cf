package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// SegmentKind represents the addressing mode of a path segment
type SegmentKind uint8

const (
	// Property addresses a map field by key
	Property SegmentKind = iota
	// Index addresses a list element by position
	Index
)

// Segment represents single step of a Path
type Segment struct {
	Kind  SegmentKind
	Key   string
	Index int
}

// Prop returns property segment for <key>
func Prop(key string) Segment {
	return Segment{Kind: Property, Key: key}
}

// Idx returns index segment for <i>
func Idx(i int) Segment {
	return Segment{Kind: Index, Index: i}
}

// Path represents ordered sequence of segments addressing a location in a Value tree. Empty path denotes the root.
type Path []Segment

// String is used to satisfy fmt.Stringer interface
func (p Path) String() string {
	var sb strings.Builder
	for i, seg := range p {
		if seg.Kind == Index {
			sb.WriteString(fmt.Sprintf("[%v]", seg.Index))
			continue
		}
		if i > 0 {
			sb.WriteString(".")
		}
		sb.WriteString(seg.Key)
	}
	return sb.String()
}

// Child returns copy of <p> with <seg> appended
func (p Path) Child(seg Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// ParsePath returns path parsed from dotted <input> such as 'streams.inputs[0].url'
func ParsePath(input string) Path {
	path := Path{}
	for _, part := range strings.Split(input, ".") {
		for {
			open := strings.IndexByte(part, '[')
			if open < 0 {
				if part != "" {
					path = append(path, Prop(part))
				}
				break
			}
			if key := part[:open]; key != "" {
				path = append(path, Prop(key))
			}
			closing := strings.IndexByte(part, ']')
			if closing < open {
				break
			}
			if i, err := strconv.Atoi(part[open+1 : closing]); err == nil {
				path = append(path, Idx(i))
			}
			part = part[closing+1:]
		}
	}
	return path
}

// NotAListError represents error thrown if a path expected to address a list resolves to something else
type NotAListError struct {
	Path string
}

// Error is used to satisfy golang error interface
func (e NotAListError) Error() string {
	return fmt.Sprintf("The specified path does not resolve to a list: %v", e.Path)
}

// Get returns value at <p> in <v> and false if the path does not resolve to anything.
//
// Empty path returns <v> itself.
func Get(v Value, p Path) (Value, bool) {
	cur := v
	for _, seg := range p {
		if cur == nil {
			return nil, false
		}
		switch seg.Kind {
		case Property:
			m, ok := cur.(Map)
			if !ok {
				return nil, false
			}
			child, ok := m.Find(seg.Key)
			if !ok {
				return nil, false
			}
			cur = child
		case Index:
			l, ok := cur.(List)
			if !ok || seg.Index < 0 || seg.Index >= len(l) {
				return nil, false
			}
			cur = l[seg.Index]
		}
	}
	return cur, true
}

// Has returns true if <p> resolves to a present value in <v>.
//
// Falsy values such as 0, false and "" count as present; only a missing node counts as absent.
func Has(v Value, p Path) bool {
	_, ok := Get(v, p)
	return ok
}

// Set returns copy of <v> with value at <p> replaced by <nv>, sharing unmodified substructure with <v>.
//
// Missing intermediate nodes are created as maps for property segments and as lists for index segments.
// An index segment equal to the list length appends; larger indexes are silently ignored.
func Set(v Value, p Path, nv Value) Value {
	if len(p) == 0 {
		return nv
	}
	seg := p[0]
	switch seg.Kind {
	case Property:
		m, _ := v.(Map)
		child, _ := m.Find(seg.Key)
		return m.With(seg.Key, Set(child, p[1:], nv))
	case Index:
		l, isList := v.(List)
		if !isList {
			l = List{}
		}
		if seg.Index < 0 || seg.Index > len(l) {
			return v
		}
		if seg.Index == len(l) {
			out := make(List, len(l), len(l)+1)
			copy(out, l)
			return append(out, Set(nil, p[1:], nv))
		}
		out := make(List, len(l))
		copy(out, l)
		out[seg.Index] = Set(l[seg.Index], p[1:], nv)
		return out
	}
	return v
}

// Delete returns copy of <v> with value at <p> removed.
//
// If the path does not resolve to anything (or is empty), <v> is returned as is, preserving reference identity.
func Delete(v Value, p Path) Value {
	out, _ := deleteAt(v, p)
	return out
}

// deleteAt returns <v> without the node at <p> and true if anything was actually removed
func deleteAt(v Value, p Path) (Value, bool) {
	if len(p) == 0 {
		return v, false
	}
	seg := p[0]
	last := len(p) == 1
	switch seg.Kind {
	case Property:
		m, ok := v.(Map)
		if !ok {
			return v, false
		}
		child, ok := m.Find(seg.Key)
		if !ok {
			return v, false
		}
		if last {
			return m.Without(seg.Key), true
		}
		newChild, changed := deleteAt(child, p[1:])
		if !changed {
			return v, false
		}
		return m.With(seg.Key, newChild), true
	case Index:
		l, ok := v.(List)
		if !ok || seg.Index < 0 || seg.Index >= len(l) {
			return v, false
		}
		if last {
			out := make(List, 0, len(l)-1)
			out = append(out, l[:seg.Index]...)
			return append(out, l[seg.Index+1:]...), true
		}
		newChild, changed := deleteAt(l[seg.Index], p[1:])
		if !changed {
			return v, false
		}
		out := make(List, len(l))
		copy(out, l)
		out[seg.Index] = newChild
		return out, true
	}
	return v, false
}

// MoveListElement returns copy of <v> with element of the list at <p> moved from index <from> to index <to>.
//
// Returns NotAListError if <p> does not resolve to a list. Out of range indexes are clamped to the list bounds.
func MoveListElement(v Value, p Path, from, to int) (Value, error) {
	target, ok := Get(v, p)
	if !ok {
		return v, errors.WithStack(NotAListError{Path: p.String()})
	}
	l, ok := target.(List)
	if !ok {
		return v, errors.WithStack(NotAListError{Path: p.String()})
	}
	if len(l) == 0 {
		return v, nil
	}
	from = lo.Clamp(from, 0, len(l)-1)
	to = lo.Clamp(to, 0, len(l)-1)
	if from == to {
		return v, nil
	}
	removed := make(List, 0, len(l)-1)
	removed = append(removed, l[:from]...)
	removed = append(removed, l[from+1:]...)
	out := make(List, 0, len(l))
	out = append(out, removed[:to]...)
	out = append(out, l[from])
	out = append(out, removed[to:]...)
	return Set(v, p, out), nil
}
