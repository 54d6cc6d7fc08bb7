package dom

import "sort"

// WireNode is a JSON-friendly copy of a live subtree.
type WireNode struct {
	ID       NodeID      `json:"id"`
	Tag      string      `json:"tag,omitempty"`
	Text     *string     `json:"text,omitempty"`
	Attrs    [][2]string `json:"attrs,omitempty"`
	Events   []string    `json:"events,omitempty"`
	Children []WireNode  `json:"children,omitempty"`
}

// Snapshot copies the subtree rooted at h.
func (m *Memory) Snapshot(h Handle) WireNode {
	return m.must(h).wire()
}

func (n *node) wire() WireNode {
	w := WireNode{ID: n.id}
	if n.kind == textNode {
		text := n.text
		w.Text = &text
		return w
	}
	w.Tag = n.tag
	for _, a := range n.attrs {
		w.Attrs = append(w.Attrs, [2]string{a.name, a.value})
	}
	for name := range n.listeners {
		w.Events = append(w.Events, name)
	}
	sort.Strings(w.Events)
	for _, c := range n.children {
		w.Children = append(w.Children, c.wire())
	}
	return w
}
