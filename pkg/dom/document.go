package dom

// NodeID is the stable identifier of a live node within its Document.
type NodeID uint64

// Handle identifies a node in the live tree.
type Handle interface {
	NodeID() NodeID
}

// Event is what a live node reports to its listeners.
type Event struct {
	// Type is the event name without the "on" prefix ("click", "input").
	Type string

	// Target is the node the event was fired on.
	Target Handle

	// Value carries the payload of value-bearing events such as input.
	Value string
}

// Listener receives events fired on a live node.
type Listener func(Event)

// Document is the live-tree adapter the reconciler drives.
//
// Implementations are not required to be safe for concurrent use. The
// application runtime calls a Document from a single goroutine.
type Document interface {
	// CreateElement creates a detached element node.
	CreateElement(tag string) Handle

	// CreateText creates a detached text node.
	CreateText(value string) Handle

	SetAttribute(h Handle, name, value string)
	RemoveAttribute(h Handle, name string)

	// AddListener binds fn to the named event, replacing any listener
	// already bound to that name.
	AddListener(h Handle, event string, fn Listener)
	RemoveListener(h Handle, event string)

	// InsertChild attaches child to parent before the given sibling.
	// A nil before appends.
	InsertChild(parent, child, before Handle)
	RemoveChild(parent, child Handle)

	SetText(h Handle, value string)
}

// Flusher is implemented by documents that buffer mutations until the end
// of a render pass.
type Flusher interface {
	Flush()
}

// IDOf returns the node id of h, or zero for a nil handle.
func IDOf(h Handle) NodeID {
	if h == nil {
		return 0
	}
	return h.NodeID()
}
