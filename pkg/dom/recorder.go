package dom

import "fmt"

// OpKind is the type of a recorded live-tree mutation.
type OpKind uint8

const (
	OpCreateElement  OpKind = iota + 1 // CreateElement
	OpCreateText                       // CreateText
	OpSetAttr                          // SetAttribute
	OpRemoveAttr                       // RemoveAttribute
	OpAddListener                      // AddListener
	OpRemoveListener                   // RemoveListener
	OpInsert                           // InsertChild
	OpRemove                           // RemoveChild
	OpSetText                          // SetText
)

var opNames = map[OpKind]string{
	OpCreateElement:  "create_element",
	OpCreateText:     "create_text",
	OpSetAttr:        "set_attr",
	OpRemoveAttr:     "remove_attr",
	OpAddListener:    "add_listener",
	OpRemoveListener: "remove_listener",
	OpInsert:         "insert",
	OpRemove:         "remove",
	OpSetText:        "set_text",
}

// String returns the snake_case name of the op.
func (k OpKind) String() string {
	if name, ok := opNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the op by name.
func (k OpKind) MarshalText() ([]byte, error) {
	if _, ok := opNames[k]; !ok {
		return nil, fmt.Errorf("dom: unknown op kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes an op name.
func (k *OpKind) UnmarshalText(b []byte) error {
	for kind, name := range opNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("dom: unknown op %q", b)
}

// OpKinds lists every op kind in declaration order.
func OpKinds() []OpKind {
	return []OpKind{
		OpCreateElement, OpCreateText, OpSetAttr, OpRemoveAttr,
		OpAddListener, OpRemoveListener, OpInsert, OpRemove, OpSetText,
	}
}

// Op is one recorded mutation. Fields not used by an op kind are zero.
type Op struct {
	Kind   OpKind `json:"op"`
	Node   NodeID `json:"node"`
	Parent NodeID `json:"parent,omitempty"`
	Before NodeID `json:"before,omitempty"`
	Tag    string `json:"tag,omitempty"`
	Name   string `json:"name,omitempty"`
	Value  string `json:"value,omitempty"`
}

// Recorder is a Document that forwards to another Document and records
// every call.
type Recorder struct {
	inner   Document
	pending []Op
	counts  map[OpKind]int
	subs    []func([]Op)
}

// NewRecorder wraps inner.
func NewRecorder(inner Document) *Recorder {
	return &Recorder{
		inner:  inner,
		counts: make(map[OpKind]int),
	}
}

// Inner returns the wrapped document.
func (r *Recorder) Inner() Document {
	return r.inner
}

// Subscribe registers fn to receive each flushed batch. Batches passed to
// fn must not be modified.
func (r *Recorder) Subscribe(fn func([]Op)) {
	r.subs = append(r.subs, fn)
}

// Flush implements Flusher. Empty batches are not delivered.
func (r *Recorder) Flush() {
	if len(r.pending) == 0 {
		return
	}
	batch := r.pending
	r.pending = nil
	for _, fn := range r.subs {
		fn(batch)
	}
}

// Pending returns a copy of the ops recorded since the last flush.
func (r *Recorder) Pending() []Op {
	return append([]Op(nil), r.pending...)
}

// Count returns how many ops of kind were recorded since the last Reset.
func (r *Recorder) Count(kind OpKind) int {
	return r.counts[kind]
}

// Total returns how many ops were recorded since the last Reset.
func (r *Recorder) Total() int {
	total := 0
	for _, n := range r.counts {
		total += n
	}
	return total
}

// Reset clears counters and drops pending ops without delivering them.
func (r *Recorder) Reset() {
	r.pending = nil
	r.counts = make(map[OpKind]int)
}

func (r *Recorder) record(op Op) {
	r.pending = append(r.pending, op)
	r.counts[op.Kind]++
}

// CreateElement implements Document.
func (r *Recorder) CreateElement(tag string) Handle {
	h := r.inner.CreateElement(tag)
	r.record(Op{Kind: OpCreateElement, Node: IDOf(h), Tag: tag})
	return h
}

// CreateText implements Document.
func (r *Recorder) CreateText(value string) Handle {
	h := r.inner.CreateText(value)
	r.record(Op{Kind: OpCreateText, Node: IDOf(h), Value: value})
	return h
}

// SetAttribute implements Document.
func (r *Recorder) SetAttribute(h Handle, name, value string) {
	r.inner.SetAttribute(h, name, value)
	r.record(Op{Kind: OpSetAttr, Node: IDOf(h), Name: name, Value: value})
}

// RemoveAttribute implements Document.
func (r *Recorder) RemoveAttribute(h Handle, name string) {
	r.inner.RemoveAttribute(h, name)
	r.record(Op{Kind: OpRemoveAttr, Node: IDOf(h), Name: name})
}

// AddListener implements Document.
func (r *Recorder) AddListener(h Handle, event string, fn Listener) {
	r.inner.AddListener(h, event, fn)
	r.record(Op{Kind: OpAddListener, Node: IDOf(h), Name: event})
}

// RemoveListener implements Document.
func (r *Recorder) RemoveListener(h Handle, event string) {
	r.inner.RemoveListener(h, event)
	r.record(Op{Kind: OpRemoveListener, Node: IDOf(h), Name: event})
}

// InsertChild implements Document.
func (r *Recorder) InsertChild(parent, child, before Handle) {
	r.inner.InsertChild(parent, child, before)
	r.record(Op{Kind: OpInsert, Node: IDOf(child), Parent: IDOf(parent), Before: IDOf(before)})
}

// RemoveChild implements Document.
func (r *Recorder) RemoveChild(parent, child Handle) {
	r.inner.RemoveChild(parent, child)
	r.record(Op{Kind: OpRemove, Node: IDOf(child), Parent: IDOf(parent)})
}

// SetText implements Document.
func (r *Recorder) SetText(h Handle, value string) {
	r.inner.SetText(h, value)
	r.record(Op{Kind: OpSetText, Node: IDOf(h), Value: value})
}
