package vdom

import (
	"fmt"
	"runtime/debug"
	"sort"

	"github.com/vango-dev/canopy/pkg/dom"
	"github.com/vango-dev/canopy/pkg/mailbox"
)

// eventSlot is the handler list behind one live listener. The live
// listener is bound once per event name and reads the slot when fired, so
// a new render can swap handlers without touching the live tree.
type eventSlot struct {
	handlers []func(dom.Event) mailbox.Msg
}

// HookPanic is raised by Reconcile and Unmount when a lifecycle hook
// panicked. It is raised only once the live tree and all bindings are
// consistent, so the caller may recover it and keep reconciling.
type HookPanic struct {
	Kind  HookKind
	Value any
	Stack []byte
}

func (p *HookPanic) Error() string {
	return fmt.Sprintf("vdom: %s hook panicked: %v", p.Kind, p.Value)
}

// reconciler carries the collaborators of one Reconcile call.
type reconciler struct {
	doc dom.Document
	mb  mailbox.Mailbox

	// hookPanic is the first hook panic of the pass.
	hookPanic *HookPanic
}

// runHook calls fn, recording the first panic instead of unwinding through
// a half-applied mutation.
func (r *reconciler) runHook(kind HookKind, fn func(dom.Handle), h dom.Handle) {
	defer func() {
		if v := recover(); v != nil && r.hookPanic == nil {
			r.hookPanic = &HookPanic{Kind: kind, Value: v, Stack: debug.Stack()}
		}
	}()
	fn(h)
}

// finish re-raises a recorded hook panic.
func (r *reconciler) finish() {
	if r.hookPanic != nil {
		panic(r.hookPanic)
	}
}

// Reconcile makes the live tree under parent match next, given that old is
// what was last reconciled there. A nil old or next is treated as Empty.
//
// before is the live sibling a freshly mounted next is inserted in front
// of; nil appends. After Reconcile, next holds the live bindings and old
// holds none. Messages produced by listeners are sent to mb.
//
// Reconcile reports whether it mutated the live tree. A panicking hook does
// not interrupt the pass; the first such panic is raised as a *HookPanic
// after the whole tree has been reconciled.
func Reconcile(doc dom.Document, old, next Node, parent, before dom.Handle, mb mailbox.Mailbox) bool {
	r := &reconciler{doc: doc, mb: mb}
	changed := r.patch(orEmpty(old), orEmpty(next), parent, before)
	r.finish()
	return changed
}

// Mount attaches a never-reconciled tree under parent.
func Mount(doc dom.Document, node Node, parent, before dom.Handle, mb mailbox.Mailbox) bool {
	return Reconcile(doc, nil, node, parent, before, mb)
}

// Unmount tears down a reconciled tree, firing its unmount hooks.
func Unmount(doc dom.Document, node Node, parent dom.Handle) bool {
	r := &reconciler{doc: doc}
	removed := r.teardown(orEmpty(node), parent)
	r.finish()
	return removed
}

// patch reconciles one position.
func (r *reconciler) patch(old, next Node, parent, before dom.Handle) bool {
	switch n := next.(type) {
	case *Element:
		if o, ok := old.(*Element); ok && o.Tag == n.Tag && o.handle != nil {
			return r.patchElement(o, n)
		}
	case *TextNode:
		if o, ok := old.(*TextNode); ok && o.handle != nil {
			return r.patchText(o, n)
		}
	case *EmptyNode:
		if _, ok := old.(*EmptyNode); ok {
			return false
		}
	}

	// Different kind or tag: replace in place. The new subtree goes in
	// front of the old live node, whose unmount hooks fire before any of
	// the new mount hooks.
	if h := old.Handle(); h != nil {
		before = h
	}
	var hooked []*Element
	mounted := r.build(next, parent, before, &hooked)
	removed := r.teardown(old, parent)
	r.fireMount(hooked)
	return removed || mounted
}

func (r *reconciler) patchText(o, n *TextNode) bool {
	h := o.handle
	o.handle = nil
	n.handle = h

	if o.Value == n.Value {
		return false
	}
	r.doc.SetText(h, n.Value)
	return true
}

func (r *reconciler) patchElement(o, n *Element) bool {
	h := o.handle
	events := o.events
	o.handle, o.events = nil, nil
	n.handle, n.events = h, events

	changed := r.patchAttrs(h, o, n)
	if r.patchListeners(h, n) {
		changed = true
	}
	if r.patchChildren(h, o.Children, n.Children) {
		changed = true
	}

	if changed {
		for _, fn := range n.hooks(HookUpdate) {
			r.runHook(HookUpdate, fn, h)
		}
	}
	return changed
}

func (r *reconciler) patchAttrs(h dom.Handle, o, n *Element) bool {
	prev := o.effectiveAttrs()
	next := n.effectiveAttrs()
	if len(prev) == 0 && len(next) == 0 {
		return false
	}

	nextValues := make(map[string]string, len(next))
	for _, a := range next {
		nextValues[a.Name] = a.Value
	}
	prevValues := make(map[string]string, len(prev))
	for _, a := range prev {
		prevValues[a.Name] = a.Value
	}

	changed := false
	for _, a := range prev {
		if _, ok := nextValues[a.Name]; !ok {
			r.doc.RemoveAttribute(h, a.Name)
			changed = true
		}
	}
	for _, a := range next {
		if v, ok := prevValues[a.Name]; !ok || v != a.Value {
			r.doc.SetAttribute(h, a.Name, a.Value)
			changed = true
		}
	}
	return changed
}

// patchListeners brings the live listeners of h in line with n.Listeners.
// n.events already holds the slots taken over from the old element.
func (r *reconciler) patchListeners(h dom.Handle, n *Element) bool {
	names, groups := groupListeners(n.Listeners)
	changed := false

	if len(n.events) > 0 {
		stale := make([]string, 0)
		for name := range n.events {
			if _, ok := groups[name]; !ok {
				stale = append(stale, name)
			}
		}
		sort.Strings(stale)
		for _, name := range stale {
			r.doc.RemoveListener(h, name)
			delete(n.events, name)
			changed = true
		}
	}

	for _, name := range names {
		if slot, ok := n.events[name]; ok {
			slot.handlers = groups[name]
			continue
		}
		r.bind(h, n, name, groups[name])
		changed = true
	}
	return changed
}

func (r *reconciler) bind(h dom.Handle, n *Element, name string, handlers []func(dom.Event) mailbox.Msg) {
	if n.events == nil {
		n.events = make(map[string]*eventSlot)
	}
	slot := &eventSlot{handlers: handlers}
	n.events[name] = slot

	mb := r.mb
	r.doc.AddListener(h, name, func(ev dom.Event) {
		for _, fn := range slot.handlers {
			mb.Send(fn(ev))
		}
	})
}

// groupListeners groups handlers by event name, keeping first-seen order.
func groupListeners(ls []Listener) ([]string, map[string][]func(dom.Event) mailbox.Msg) {
	if len(ls) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(ls))
	groups := make(map[string][]func(dom.Event) mailbox.Msg, len(ls))
	for _, l := range ls {
		if l.Event == "" || l.Handler == nil {
			continue
		}
		if _, ok := groups[l.Event]; !ok {
			names = append(names, l.Event)
		}
		groups[l.Event] = append(groups[l.Event], l.Handler)
	}
	return names, groups
}

// patchChildren matches children by position.
func (r *reconciler) patchChildren(h dom.Handle, old, next []Node) bool {
	changed := false
	for i, child := range next {
		var prev Node = &EmptyNode{}
		if i < len(old) {
			prev = orEmpty(old[i])
		}
		if r.patch(prev, orEmpty(child), h, boundAfter(old, i)) {
			changed = true
		}
	}
	for i := len(next); i < len(old); i++ {
		if r.teardown(orEmpty(old[i]), h) {
			changed = true
		}
	}
	return changed
}

// boundAfter returns the live node of the first old child after position i
// that is still attached. Nodes freshly mounted at i go in front of it.
func boundAfter(old []Node, i int) dom.Handle {
	for j := i + 1; j < len(old); j++ {
		if old[j] == nil {
			continue
		}
		if h := orEmpty(old[j]).Handle(); h != nil {
			return h
		}
	}
	return nil
}

// fireMount runs mount hooks top-down once the new subtree is attached.
func (r *reconciler) fireMount(mounted []*Element) {
	for _, el := range mounted {
		for _, fn := range el.hooks(HookMount) {
			r.runHook(HookMount, fn, el.handle)
		}
	}
}

// build creates and attaches n, then its children. Elements with mount
// hooks are collected in pre-order.
func (r *reconciler) build(n Node, parent, before dom.Handle, mounted *[]*Element) bool {
	switch v := n.(type) {
	case *EmptyNode:
		return false

	case *TextNode:
		v.handle = r.doc.CreateText(v.Value)
		r.doc.InsertChild(parent, v.handle, before)
		return true

	case *Element:
		h := r.doc.CreateElement(v.Tag)
		v.handle = h
		v.events = nil
		for _, a := range v.effectiveAttrs() {
			r.doc.SetAttribute(h, a.Name, a.Value)
		}
		names, groups := groupListeners(v.Listeners)
		for _, name := range names {
			r.bind(h, v, name, groups[name])
		}
		r.doc.InsertChild(parent, h, before)

		if len(v.hooks(HookMount)) > 0 {
			*mounted = append(*mounted, v)
		}
		for _, child := range v.Children {
			r.build(orEmpty(child), h, nil, mounted)
		}
		return true
	}
	return false
}

// teardown removes n from parent. Listeners are detached and unmount hooks
// fire bottom-up before the live node is removed.
func (r *reconciler) teardown(n Node, parent dom.Handle) bool {
	h := n.Handle()
	if h == nil {
		return false
	}
	r.release(n)
	r.doc.RemoveChild(parent, h)
	r.clear(n)
	return true
}

// release detaches listeners and fires unmount hooks, children first.
func (r *reconciler) release(n Node) {
	el, ok := n.(*Element)
	if !ok || el.handle == nil {
		return
	}
	for _, child := range el.Children {
		r.release(orEmpty(child))
	}
	if len(el.events) > 0 {
		names := make([]string, 0, len(el.events))
		for name := range el.events {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			r.doc.RemoveListener(el.handle, name)
		}
	}
	for _, fn := range el.hooks(HookUnmount) {
		r.runHook(HookUnmount, fn, el.handle)
	}
}

// clear drops the bindings of n and its descendants.
func (r *reconciler) clear(n Node) {
	switch v := n.(type) {
	case *TextNode:
		v.handle = nil
	case *Element:
		v.handle = nil
		v.events = nil
		for _, child := range v.Children {
			r.clear(orEmpty(child))
		}
	}
}
