package vdom

import (
	"fmt"

	"github.com/vango-dev/canopy/pkg/dom"
)

// Text creates a text node.
func Text(content string) *TextNode {
	return &TextNode{Value: content}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *TextNode {
	return Text(fmt.Sprintf(format, args...))
}

// Empty creates a node that renders nothing but keeps its position.
func Empty() *EmptyNode {
	return &EmptyNode{}
}

// If returns node when cond holds and Empty otherwise, so the positions of
// the siblings after it never depend on cond.
func If(cond bool, node Node) Node {
	if cond {
		return node
	}
	return Empty()
}

// OnMount runs fn once the element's subtree is attached.
func OnMount(fn func(dom.Handle)) Hook { return Hook{Kind: HookMount, Fn: fn} }

// OnUpdate runs fn after a render pass that mutated the element's subtree.
func OnUpdate(fn func(dom.Handle)) Hook { return Hook{Kind: HookUpdate, Fn: fn} }

// OnUnmount runs fn before the element leaves the live tree.
func OnUnmount(fn func(dom.Handle)) Hook { return Hook{Kind: HookUnmount, Fn: fn} }
