// Package doc owns the pairing of a logical value tree with its raw source text, keeping the two synchronized
// through every mutation without re-serializing the parts of the text that did not change.
package doc

import (
	"reflect"

	"conf_surgeon/format"
	"conf_surgeon/patch"
	"conf_surgeon/value"

	"github.com/sirupsen/logrus"
)

// Listener represents change notification callback
type Listener func(*Document)

// listenerEntry represents registered listener with it's identity
type listenerEntry struct {
	id uintptr
	fn Listener
}

// Document represents a mutable document: one logical value, the raw text it came from, and the metadata needed to
// keep them in sync.
//
// A Document assumes exclusive ownership by one logical actor: there is no internal locking.
type Document struct {
	log     *logrus.Logger
	patcher patch.Repo

	val     value.Value
	rawText string
	fmt     format.Format
	schema  value.Value

	listeners []listenerEntry
	notifying bool
	pending   int
}

// New returns document built directly from <v> with empty raw text
func New(log *logrus.Logger, v value.Value, schemaV value.Value, f format.Format) *Document {
	if v == nil {
		v = value.Map{}
	}
	return &Document{log: log, patcher: patch.NewRepo(log), val: v, fmt: f, schema: schemaV}
}

// Deserialize returns document parsed from <text> as <f>.
//
// Parse failures and non-mapping roots degrade to an empty mapping instead of erroring: editing tools feed this
// transient invalid text and must never crash on it. The raw text is retained as given either way.
func Deserialize(log *logrus.Logger, text string, f format.Format, schemaV value.Value) *Document {
	d := New(log, nil, schemaV, f)
	d.rawText = text
	d.val = parseOrEmpty(log, text, f)
	return d
}

// parseOrEmpty returns mapping parsed from <text> or an empty mapping if it does not parse to one
func parseOrEmpty(log *logrus.Logger, text string, f format.Format) value.Value {
	v, err := format.ParseTolerant(text, f)
	if err != nil {
		log.Debugf("Can not parse %v document, starting from an empty mapping: %v", f, err)
		return value.Map{}
	}
	if _, ok := v.(value.Map); !ok {
		return value.Map{}
	}
	return v
}

// Value returns current value tree of <d>
func (d *Document) Value() value.Value {
	return d.val
}

// RawText returns current raw text of <d>
func (d *Document) RawText() string {
	return d.rawText
}

// Format returns current format of <d>
func (d *Document) Format() format.Format {
	return d.fmt
}

// GetValue returns value at <p> and false if the path does not resolve to anything
func (d *Document) GetValue(p value.Path) (value.Value, bool) {
	return value.Get(d.val, p)
}

// SetValue sets value at <p> to <v>, resynchronizes the raw text and notifies listeners.
//
// Listeners are notified even if the resulting value is unchanged; the byte-identical short circuit lives inside
// the patcher, not here.
func (d *Document) SetValue(p value.Path, v value.Value) {
	d.val = value.Set(d.val, p, v)
	d.resync()
	d.notify()
}

// DeleteValue removes value at <p>, resynchronizes the raw text and notifies listeners
func (d *Document) DeleteValue(p value.Path) {
	d.val = value.Delete(d.val, p)
	d.resync()
	d.notify()
}

// SetData replaces the whole value of <d> with <v>, resynchronizes the raw text and notifies listeners
func (d *Document) SetData(v value.Value) {
	if v == nil {
		v = value.Map{}
	}
	d.val = v
	d.resync()
	d.notify()
}

// SetSchema replaces the schema used for property order hints and notifies listeners
func (d *Document) SetSchema(schemaV value.Value) {
	d.schema = schemaV
	d.resync()
	d.notify()
}

// SetFormat switches <d> to format <f>, re-serializing the raw text from scratch.
//
// The structural basis of the old text is gone after a format switch, so comments do not survive it.
func (d *Document) SetFormat(f format.Format) {
	d.fmt = f
	out, err := format.Serialize(d.val, f)
	if err != nil {
		d.log.Warnf("Can not serialize document as %v: %v", f, err)
		out = ""
	}
	d.rawText = out
	d.notify()
}

// Serialize returns raw text of <d> or, if the document never had any, a plain serialization of it's value
func (d *Document) Serialize() string {
	if d.rawText != "" {
		return d.rawText
	}
	out, err := format.Serialize(d.val, d.fmt)
	if err != nil {
		d.log.Warnf("Can not serialize document as %v: %v", d.fmt, err)
		return ""
	}
	return out
}

// UpdateFromContent replaces both value and raw text of <d> from externally edited <text> and notifies listeners.
//
// If <text> does not parse, the last good state stays untouched and listeners are not notified.
func (d *Document) UpdateFromContent(text string) {
	v, err := format.ParseTolerant(text, d.fmt)
	if err != nil {
		d.log.Debugf("Ignoring unparseable content update: %v", err)
		return
	}
	if _, ok := v.(value.Map); !ok {
		v = value.Map{}
	}
	d.val = v
	d.rawText = text
	d.notify()
}

// Subscribe registers <fn> for change notifications and returns a function removing the registration.
//
// Listeners are deduplicated by function identity: subscribing the same function twice has no additional effect.
func (d *Document) Subscribe(fn Listener) func() {
	id := reflect.ValueOf(fn).Pointer()
	exists := false
	for _, e := range d.listeners {
		if e.id == id {
			exists = true
			break
		}
	}
	if !exists {
		d.listeners = append(d.listeners, listenerEntry{id: id, fn: fn})
	}
	return func() {
		for i, e := range d.listeners {
			if e.id == id {
				d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
				return
			}
		}
	}
}

// resync patches the raw text of <d> so it reflects the current value, preserving unrelated bytes.
//
// A document without raw text has nothing to preserve and serializes from scratch.
func (d *Document) resync() {
	if d.rawText == "" {
		out, err := format.Serialize(d.val, d.fmt)
		if err != nil {
			d.log.Warnf("Can not serialize document as %v: %v", d.fmt, err)
			return
		}
		d.rawText = out
		return
	}
	d.rawText = d.patcher.Apply(d.rawText, d.val, d.fmt, d.schema)
}

// notify invokes every current subscriber exactly once per mutating call.
//
// Reentrant mutations are queued and drained: a listener mutating the document mid-callback completes its state
// change immediately, but the notification round it triggers runs only after the current round finishes.
func (d *Document) notify() {
	d.pending++
	if d.notifying {
		return
	}
	d.notifying = true
	defer func() { d.notifying = false }()
	for d.pending > 0 {
		d.pending--
		current := make([]listenerEntry, len(d.listeners))
		copy(current, d.listeners)
		for _, e := range current {
			e.fn(d)
		}
	}
}
