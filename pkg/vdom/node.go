package vdom

import (
	"github.com/vango-dev/canopy/pkg/dom"
	"github.com/vango-dev/canopy/pkg/mailbox"
)

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement VKind = iota // <div>, <button>, etc.
	KindText                 // Plain text node
	KindEmpty                // Renders nothing, keeps its position
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindEmpty:
		return "Empty"
	default:
		return "Unknown"
	}
}

// Node is a declarative tree node. The only implementations are *Element,
// *TextNode and *EmptyNode.
type Node interface {
	Kind() VKind

	// Handle returns the live node this node is bound to, or nil when the
	// node has not been reconciled or has been torn down.
	Handle() dom.Handle

	sealed()
}

// Element is an element node.
type Element struct {
	Tag       string
	Attrs     []Attr     // Later entries win over earlier ones with the same name
	Listeners []Listener // Several listeners may share an event name
	Children  []Node
	Hooks     []Hook

	handle dom.Handle
	events map[string]*eventSlot
}

// TextNode is a text node.
type TextNode struct {
	Value string

	handle dom.Handle
}

// EmptyNode renders nothing.
type EmptyNode struct{}

func (*Element) Kind() VKind   { return KindElement }
func (*TextNode) Kind() VKind  { return KindText }
func (*EmptyNode) Kind() VKind { return KindEmpty }

func (e *Element) Handle() dom.Handle  { return e.handle }
func (t *TextNode) Handle() dom.Handle { return t.handle }
func (*EmptyNode) Handle() dom.Handle  { return nil }

func (*Element) sealed()   {}
func (*TextNode) sealed()  {}
func (*EmptyNode) sealed() {}

// Attr is a single attribute.
type Attr struct {
	Name  string
	Value string
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Name == ""
}

// Listener binds a handler to an event name.
type Listener struct {
	Event   string // "click", "input", etc.
	Handler func(dom.Event) mailbox.Msg
}

// HookKind identifies when a lifecycle hook fires.
type HookKind uint8

const (
	HookMount HookKind = iota
	HookUpdate
	HookUnmount
)

// String returns the string representation of the HookKind.
func (k HookKind) String() string {
	switch k {
	case HookMount:
		return "mount"
	case HookUpdate:
		return "update"
	case HookUnmount:
		return "unmount"
	default:
		return "unknown"
	}
}

// Hook is a lifecycle callback bound to an element.
type Hook struct {
	Kind HookKind
	Fn   func(dom.Handle)
}

// GetAttr returns the effective value of the named attribute.
func (e *Element) GetAttr(name string) (string, bool) {
	for i := len(e.Attrs) - 1; i >= 0; i-- {
		if e.Attrs[i].Name == name {
			return e.Attrs[i].Value, true
		}
	}
	return "", false
}

// effectiveAttrs collapses duplicate names. Each name keeps the position of
// its first occurrence and the value of its last.
func (e *Element) effectiveAttrs() []Attr {
	if len(e.Attrs) < 2 {
		return e.Attrs
	}
	out := make([]Attr, 0, len(e.Attrs))
	index := make(map[string]int, len(e.Attrs))
	for _, a := range e.Attrs {
		if i, ok := index[a.Name]; ok {
			out[i].Value = a.Value
			continue
		}
		index[a.Name] = len(out)
		out = append(out, a)
	}
	return out
}

// hooks returns the element's hooks of the given kind in declared order.
func (e *Element) hooks(kind HookKind) []func(dom.Handle) {
	var out []func(dom.Handle)
	for _, h := range e.Hooks {
		if h.Kind == kind && h.Fn != nil {
			out = append(out, h.Fn)
		}
	}
	return out
}

// orEmpty maps a nil Node to an EmptyNode.
func orEmpty(n Node) Node {
	switch v := n.(type) {
	case nil:
		return &EmptyNode{}
	case *Element:
		if v == nil {
			return &EmptyNode{}
		}
	case *TextNode:
		if v == nil {
			return &EmptyNode{}
		}
	case *EmptyNode:
		if v == nil {
			return &EmptyNode{}
		}
	}
	return n
}
