// Package patch rewrites JSON, JSONC and YAML source text to reflect a new value tree while keeping every
// unrelated byte of the original: comments, blank lines, indentation and quoting style survive the edit.
package patch

import (
	"conf_surgeon/format"
	"conf_surgeon/value"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Repo represents patching dependencies holder
type Repo struct {
	log *logrus.Logger
}

// NewRepo returns patching repository
func NewRepo(log *logrus.Logger) Repo {
	return Repo{log: log}
}

// Apply returns <original> text of format <f> surgically edited so it parses back to <newValue>.
//
// If <original> already represents <newValue>, it is returned byte-identical. If anything goes wrong during the
// diff or the textual edits, a warning is logged and the result degrades to a plain re-serialization of
// <newValue>, losing comments but never failing the caller.
//
// <schemaV> is an optional JSON-Schema-like tree consulted only for the insertion position of newly added YAML keys.
func (r Repo) Apply(original string, newValue value.Value, f format.Format, schemaV value.Value) string {
	out, err := r.apply(original, newValue, f, schemaV)
	if err == nil {
		return out
	}
	r.log.Warnf("Can not patch %v document in place, re-serializing without comments: %v", f, err)
	out, serErr := format.Serialize(newValue, f)
	if serErr != nil {
		r.log.Warnf("Can not re-serialize document: %v", serErr)
		return original
	}
	return out
}

// apply returns <original> patched to represent <newValue> or error if in-place patching is impossible
func (r Repo) apply(original string, newValue value.Value, f format.Format, schemaV value.Value) (string, error) {
	switch f {
	case format.JSON, format.JSONC:
		return patchJSON(original, newValue)
	case format.YAML:
		return patchYAML(original, newValue, schemaV)
	}
	return "", errors.WithStack(format.UnknownFormatError{Format: f})
}

// editKind represents the effect of a single structural edit
type editKind uint8

const (
	editSet editKind = iota
	editRemove
)

// edit represents one path-addressed change produced by the diff
type edit struct {
	path value.Path
	kind editKind
	val  value.Value
}

// diffValues appends the minimal edit set turning <oldV> into <newV> at <p> to <edits>.
//
// Equal subtrees emit nothing. Lists are patched per index only when lengths match; a length change replaces the
// whole list so textual granularity stays predictable. Type mismatches replace the whole subtree.
func diffValues(p value.Path, oldV, newV value.Value, edits *[]edit) {
	if value.Equal(oldV, newV) {
		return
	}
	if om, ok := oldV.(value.Map); ok {
		if nm, ok := newV.(value.Map); ok {
			for _, field := range om {
				if _, kept := nm.Find(field.Key); !kept {
					*edits = append(*edits, edit{path: p.Child(value.Prop(field.Key)), kind: editRemove})
				}
			}
			for _, field := range nm {
				oldChild, existed := om.Find(field.Key)
				if !existed {
					*edits = append(*edits, edit{path: p.Child(value.Prop(field.Key)), kind: editSet, val: field.Value})
					continue
				}
				diffValues(p.Child(value.Prop(field.Key)), oldChild, field.Value, edits)
			}
			return
		}
	}
	if ol, ok := oldV.(value.List); ok {
		if nl, ok := newV.(value.List); ok && len(ol) == len(nl) {
			for i := range nl {
				diffValues(p.Child(value.Idx(i)), ol[i], nl[i], edits)
			}
			return
		}
	}
	*edits = append(*edits, edit{path: p, kind: editSet, val: newV})
}
