// Package vdom provides the declarative tree and the reconciler that keeps a
// live tree in step with it.
//
// # Core Types
//
// Node is a closed union of three kinds: *Element, *TextNode and *EmptyNode.
// EmptyNode renders nothing but still occupies its position among its
// siblings, so switching a position between "nothing" and "something" never
// shifts the positions of the nodes around it.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1("Title"),
//	    P(Text("Content")),
//	    OnClick(Emit(Increment{})),
//	    OnMount(func(h dom.Handle) { ... }),
//	)
//
// # Reconciliation
//
// Reconcile compares an old tree with a freshly built one and drives a
// dom.Document until the live tree matches the new tree. Nodes at the same
// position with the same kind and tag keep their live node; everything else
// is torn down and mounted fresh. Children are matched by position only.
// Reordering a list therefore remounts the shifted items instead of moving
// them.
//
// Lifecycle hooks follow one calling convention: OnMount fires top-down once
// a new subtree is attached, OnUpdate fires after children for elements whose
// subtree produced a live mutation, and OnUnmount fires bottom-up before the
// live node leaves its parent.
package vdom
