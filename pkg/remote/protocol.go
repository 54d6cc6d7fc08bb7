package remote

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vango-dev/canopy/pkg/dom"
)

// Frame types.
const (
	FrameSnapshot = "snapshot"
	FrameOps      = "ops"
	FrameEvent    = "event"
)

// ErrInvalidFrame is returned for client frames that cannot be handled.
var ErrInvalidFrame = errors.New("remote: invalid frame")

// SnapshotFrame carries the whole mirrored tree.
type SnapshotFrame struct {
	Type string       `json:"type"`
	Seq  uint64       `json:"seq"`
	Root dom.WireNode `json:"root"`
}

// OpsFrame carries one flushed batch of mutations.
type OpsFrame struct {
	Type string   `json:"type"`
	Seq  uint64   `json:"seq"`
	Ops  []dom.Op `json:"ops"`
}

// EventFrame is an event reported by a client.
type EventFrame struct {
	Type  string     `json:"type"`
	Node  dom.NodeID `json:"node"`
	Event string     `json:"event"`
	Value string     `json:"value,omitempty"`
}

// DecodeEvent parses and checks a client frame.
func DecodeEvent(data []byte) (EventFrame, error) {
	var ev EventFrame
	if err := json.Unmarshal(data, &ev); err != nil {
		return EventFrame{}, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	switch {
	case ev.Type != FrameEvent:
		return EventFrame{}, fmt.Errorf("%w: unexpected type %q", ErrInvalidFrame, ev.Type)
	case ev.Node == 0:
		return EventFrame{}, fmt.Errorf("%w: missing node", ErrInvalidFrame)
	case ev.Event == "":
		return EventFrame{}, fmt.Errorf("%w: missing event", ErrInvalidFrame)
	}
	return ev, nil
}
