// Package mailbox provides the handle through which live-tree listeners,
// asynchronous commands and update logic hand messages back to an
// application.
package mailbox

// Msg is an application message. A nil Msg means "no message".
type Msg = any

// Mailbox routes messages into an application's update cycle.
//
// A Mailbox is a small value; copy it freely. The zero Mailbox discards
// everything, so a Mailbox that outlives its application is harmless.
type Mailbox struct {
	deliver func(Msg)
}

// New creates a Mailbox that hands each message to deliver.
//
// deliver must enqueue rather than run the update function in place; the
// runtime in package app relies on this to keep every message in its own
// update-render cycle.
func New(deliver func(Msg)) Mailbox {
	return Mailbox{deliver: deliver}
}

// Send delivers msg. Nil messages are dropped.
func (m Mailbox) Send(msg Msg) {
	if msg == nil || m.deliver == nil {
		return
	}
	m.deliver(msg)
}

// Map returns a Mailbox that transforms each message with fn before
// delivering it here. A nil result from fn is dropped.
func (m Mailbox) Map(fn func(Msg) Msg) Mailbox {
	return Mailbox{deliver: func(msg Msg) {
		m.Send(fn(msg))
	}}
}

// IsZero reports whether m discards everything.
func (m Mailbox) IsZero() bool {
	return m.deliver == nil
}
