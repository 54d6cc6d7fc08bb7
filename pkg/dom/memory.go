package dom

import (
	"fmt"
	"sort"
	"strings"
)

type nodeKind uint8

const (
	elementNode nodeKind = iota
	textNode
)

// node is a Memory live node.
type node struct {
	id        NodeID
	kind      nodeKind
	tag       string
	text      string
	attrs     []attribute
	listeners map[string]Listener
	parent    *node
	children  []*node
}

type attribute struct {
	name  string
	value string
}

// NodeID implements Handle.
func (n *node) NodeID() NodeID {
	if n == nil {
		return 0
	}
	return n.id
}

// Memory is an in-memory live tree.
//
// Memory owns a body element created by NewMemory; applications mount
// below it. Nodes removed from the tree are forgotten and their handles
// become stale.
type Memory struct {
	nextID NodeID
	nodes  map[NodeID]*node
	body   *node
}

// NewMemory creates an empty in-memory document with a body element.
func NewMemory() *Memory {
	m := &Memory{nodes: make(map[NodeID]*node)}
	m.body = m.alloc(elementNode)
	m.body.tag = "body"
	return m
}

func (m *Memory) alloc(kind nodeKind) *node {
	m.nextID++
	n := &node{id: m.nextID, kind: kind}
	m.nodes[n.id] = n
	return n
}

// must resolves h to a node owned by m. Foreign or stale handles are
// programming errors in the caller.
func (m *Memory) must(h Handle) *node {
	n, ok := h.(*node)
	if !ok || n == nil {
		panic(fmt.Sprintf("dom: handle %v does not belong to this document", h))
	}
	if m.nodes[n.id] != n {
		panic(fmt.Sprintf("dom: stale handle %d", n.id))
	}
	return n
}

// Body returns the document's root element.
func (m *Memory) Body() Handle {
	return m.body
}

// Len returns the number of nodes the document tracks, body included.
func (m *Memory) Len() int {
	return len(m.nodes)
}

// Lookup returns the live node with the given id.
func (m *Memory) Lookup(id NodeID) (Handle, bool) {
	n, ok := m.nodes[id]
	if !ok {
		return nil, false
	}
	return n, true
}

// CreateElement implements Document.
func (m *Memory) CreateElement(tag string) Handle {
	n := m.alloc(elementNode)
	n.tag = strings.ToLower(tag)
	return n
}

// CreateText implements Document.
func (m *Memory) CreateText(value string) Handle {
	n := m.alloc(textNode)
	n.text = value
	return n
}

// SetAttribute implements Document.
func (m *Memory) SetAttribute(h Handle, name, value string) {
	n := m.must(h)
	for i := range n.attrs {
		if n.attrs[i].name == name {
			n.attrs[i].value = value
			return
		}
	}
	n.attrs = append(n.attrs, attribute{name: name, value: value})
}

// RemoveAttribute implements Document.
func (m *Memory) RemoveAttribute(h Handle, name string) {
	n := m.must(h)
	for i := range n.attrs {
		if n.attrs[i].name == name {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			return
		}
	}
}

// AddListener implements Document.
func (m *Memory) AddListener(h Handle, event string, fn Listener) {
	n := m.must(h)
	if n.listeners == nil {
		n.listeners = make(map[string]Listener)
	}
	n.listeners[event] = fn
}

// RemoveListener implements Document.
func (m *Memory) RemoveListener(h Handle, event string) {
	n := m.must(h)
	delete(n.listeners, event)
}

// InsertChild implements Document. A child that already has a parent is
// moved.
func (m *Memory) InsertChild(parent, child, before Handle) {
	p := m.must(parent)
	c := m.must(child)
	if p.kind != elementNode {
		panic("dom: text nodes cannot have children")
	}
	if c.parent != nil {
		c.parent.detach(c)
	}

	idx := len(p.children)
	if before != nil {
		b := m.must(before)
		idx = p.indexOf(b)
		if idx < 0 {
			panic(fmt.Sprintf("dom: node %d is not a child of %d", b.id, p.id))
		}
	}

	p.children = append(p.children, nil)
	copy(p.children[idx+1:], p.children[idx:])
	p.children[idx] = c
	c.parent = p
}

// RemoveChild implements Document. The removed subtree is forgotten.
func (m *Memory) RemoveChild(parent, child Handle) {
	p := m.must(parent)
	c := m.must(child)
	if c.parent != p {
		panic(fmt.Sprintf("dom: node %d is not a child of %d", c.id, p.id))
	}
	p.detach(c)
	m.forget(c)
}

// SetText implements Document.
func (m *Memory) SetText(h Handle, value string) {
	n := m.must(h)
	if n.kind != textNode {
		panic(fmt.Sprintf("dom: node %d is not a text node", n.id))
	}
	n.text = value
}

func (m *Memory) forget(n *node) {
	delete(m.nodes, n.id)
	for _, c := range n.children {
		m.forget(c)
	}
}

func (n *node) indexOf(c *node) int {
	for i, child := range n.children {
		if child == c {
			return i
		}
	}
	return -1
}

func (n *node) detach(c *node) {
	if i := n.indexOf(c); i >= 0 {
		n.children = append(n.children[:i], n.children[i+1:]...)
	}
	c.parent = nil
}

// Fire delivers ev to the listener bound to ev.Type on h. It reports
// whether a listener was found. Events do not bubble.
func (m *Memory) Fire(h Handle, ev Event) bool {
	n := m.must(h)
	fn, ok := n.listeners[ev.Type]
	if !ok {
		return false
	}
	ev.Target = n
	fn(ev)
	return true
}

// FireID is Fire addressed by node id. Unknown ids report false.
func (m *Memory) FireID(id NodeID, ev Event) bool {
	n, ok := m.nodes[id]
	if !ok {
		return false
	}
	return m.Fire(n, ev)
}

// Parent returns the parent of h, or nil when h is detached.
func (m *Memory) Parent(h Handle) Handle {
	n := m.must(h)
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// Children returns the children of h in order.
func (m *Memory) Children(h Handle) []Handle {
	n := m.must(h)
	out := make([]Handle, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

// Tag returns the element tag of h, or "" for text nodes.
func (m *Memory) Tag(h Handle) string {
	return m.must(h).tag
}

// IsText reports whether h is a text node.
func (m *Memory) IsText(h Handle) bool {
	return m.must(h).kind == textNode
}

// Attr returns the value of the named attribute.
func (m *Memory) Attr(h Handle, name string) (string, bool) {
	for _, a := range m.must(h).attrs {
		if a.name == name {
			return a.value, true
		}
	}
	return "", false
}

// Listeners returns the sorted event names bound on h.
func (m *Memory) Listeners(h Handle) []string {
	n := m.must(h)
	out := make([]string, 0, len(n.listeners))
	for name := range n.listeners {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// TextContent returns the concatenated text of h and its descendants.
func (m *Memory) TextContent(h Handle) string {
	var b strings.Builder
	m.must(h).writeText(&b)
	return b.String()
}

func (n *node) writeText(b *strings.Builder) {
	if n.kind == textNode {
		b.WriteString(n.text)
		return
	}
	for _, c := range n.children {
		c.writeText(b)
	}
}
