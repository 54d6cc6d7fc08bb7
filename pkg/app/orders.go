package app

import (
	"context"
	"time"

	"github.com/vango-dev/canopy/pkg/mailbox"
)

// Cmd is an asynchronous computation issued by update logic. It runs on its
// own goroutine and yields at most one message; a nil result is discarded.
//
// The context carries the values of the context passed to Run but is never
// canceled. Commands that outlive the application deliver into a closed
// mailbox, which drops the message.
type Cmd func(ctx context.Context) mailbox.Msg

// RenderInfo describes a completed render pass.
type RenderInfo struct {
	// Frame counts render passes, starting at 1 for the initial render.
	Frame uint64

	// Timestamp is the frame boundary the pass ran on.
	Timestamp time.Time

	// Previous is the timestamp of the pass before, zero for the first.
	Previous time.Time

	// Delta is Timestamp minus Previous, zero for the first pass.
	Delta time.Duration

	// Mutated reports whether the pass changed the live tree.
	Mutated bool
}

// Orders collects what one update invocation asks of the runtime. A fresh
// Orders is passed to every update call and is drained as soon as update
// returns; do not retain it.
type Orders struct {
	mb        mailbox.Mailbox
	skip      bool
	force     bool
	renderNow bool
	msgs      []mailbox.Msg
	cmds      []Cmd
	after     []func(RenderInfo) mailbox.Msg
}

func newOrders(mb mailbox.Mailbox) *Orders {
	return &Orders{mb: mb}
}

// Skip marks the model as unchanged for view purposes, so this cycle does
// not request a render. Messages and commands are still delivered, and a
// render requested by an earlier cycle still happens.
func (o *Orders) Skip() *Orders {
	if !o.force {
		o.skip = true
	}
	return o
}

// ForceRender requests a render for this cycle even if Skip was called.
func (o *Orders) ForceRender() *Orders {
	o.skip = false
	o.force = true
	return o
}

// SendMsg queues msg for its own update invocation right after the current
// one. Queued messages are handled in the order sent and all of them before
// the next render. A nil msg is ignored.
func (o *Orders) SendMsg(msg mailbox.Msg) *Orders {
	if msg != nil {
		o.msgs = append(o.msgs, msg)
	}
	return o
}

// PerformCmd starts cmd once update returns. Completion order among
// commands is unspecified.
func (o *Orders) PerformCmd(cmd Cmd) *Orders {
	if cmd != nil {
		o.cmds = append(o.cmds, cmd)
	}
	return o
}

// AfterNextRender calls fn once the next render pass has been applied to
// the live tree and sends its result, if any, through the mailbox.
func (o *Orders) AfterNextRender(fn func(RenderInfo) mailbox.Msg) *Orders {
	if fn != nil {
		o.after = append(o.after, fn)
	}
	return o
}

// RenderNow renders as soon as the queued messages are drained instead of
// waiting for the next frame boundary.
func (o *Orders) RenderNow() *Orders {
	o.renderNow = true
	return o
}

// Mailbox returns the application's mailbox, for subscriptions that send
// messages long after this cycle.
func (o *Orders) Mailbox() mailbox.Mailbox {
	return o.mb
}

// Skipped reports whether Skip is in effect.
func (o *Orders) Skipped() bool {
	return o.skip
}
