package edit

import (
	"fmt"
	"strconv"
	"strings"

	"conf_surgeon/cli"
	"conf_surgeon/deps"
	"conf_surgeon/doc"
	"conf_surgeon/format"
	"conf_surgeon/value"

	"github.com/cockroachdb/errors"
)

// OpKind represents the type of a document operation
type OpKind uint8

const (
	OpSet OpKind = iota
	OpDelete
	OpMove
)

// Op represents single path-addressed operation on a document
type Op struct {
	Kind OpKind
	Path value.Path
	Val  value.Value
	From int
	To   int
}

// run executes <op> on <d>
func (op Op) run(r deps.Global, d *doc.Document) error {
	switch op.Kind {
	case OpSet:
		r.Log().Debugf("Setting value at %v", op.Path)
		d.SetValue(op.Path, op.Val)
	case OpDelete:
		r.Log().Debugf("Deleting value at %v", op.Path)
		d.DeleteValue(op.Path)
	case OpMove:
		r.Log().Debugf("Moving element of list at %v from %v to %v", op.Path, op.From, op.To)
		moved, err := value.MoveListElement(d.Value(), op.Path, op.From, op.To)
		if err != nil {
			return errors.Wrap(err, "Move list element")
		}
		d.SetData(moved)
	}
	return nil
}

// BadOpError represents error thrown if a command line operation can not be parsed
type BadOpError struct {
	Input  string
	Reason string
}

// Error is used to satisfy golang error interface
func (e BadOpError) Error() string {
	return fmt.Sprintf("%v: %v", e.Reason, e.Input)
}

// ParseOps returns document operations built from command line <flags>.
//
// Sets apply first, then deletes, then moves.
func ParseOps(flags cli.Flags) ([]Op, error) {
	var ops []Op
	for _, input := range flags.Sets {
		path, rawVal, found := strings.Cut(input, "=")
		if !found || strings.TrimSpace(path) == "" {
			return nil, errors.WithStack(BadOpError{Input: input, Reason: "Set operation must be formatted as path=value"})
		}
		ops = append(ops, Op{Kind: OpSet, Path: value.ParsePath(path), Val: parseOpValue(rawVal)})
	}
	for _, input := range flags.Deletes {
		if strings.TrimSpace(input) == "" {
			return nil, errors.WithStack(BadOpError{Input: input, Reason: "Delete operation must name a path"})
		}
		ops = append(ops, Op{Kind: OpDelete, Path: value.ParsePath(input)})
	}
	for _, input := range flags.Moves {
		parts := strings.Split(input, ":")
		if len(parts) != 3 {
			return nil, errors.WithStack(BadOpError{Input: input, Reason: "Move operation must be formatted as path:from:to"})
		}
		from, errFrom := strconv.Atoi(parts[1])
		to, errTo := strconv.Atoi(parts[2])
		if errFrom != nil || errTo != nil {
			return nil, errors.WithStack(BadOpError{Input: input, Reason: "Move operation indexes must be integers"})
		}
		ops = append(ops, Op{Kind: OpMove, Path: value.ParsePath(parts[0]), From: from, To: to})
	}
	return ops, nil
}

// parseOpValue returns <raw> parsed as a JSON value, falling back to a plain string for anything that does not parse
func parseOpValue(raw string) value.Value {
	if v, err := format.Parse(raw, format.JSON); err == nil {
		return v
	}
	return value.String(raw)
}
