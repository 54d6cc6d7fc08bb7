// Package dom defines the live-tree adapter contract used by the reconciler
// and provides an in-memory live tree.
//
// The reconciler in package vdom never touches a presentation layer
// directly. It drives a Document, which creates nodes, edits attributes,
// binds listeners and moves children around. Anything that can honor the
// Document contract can host an application: a browser bridge, a test
// double, or the in-memory tree in this package.
//
// # Core Types
//
// Handle identifies one live node. Handles are only ever produced by the
// Document that owns them and compare by identity.
//
// Memory is a complete Document kept in process memory. It supports event
// firing (Fire), HTML serialization (HTML, InnerHTML) and wire snapshots
// (Snapshot) so it can back tests, the inspect command and the remote bridge.
//
// Recorder wraps any Document and records each call as an Op. Calling Flush
// hands the batch recorded since the last flush to every subscriber.
package dom
