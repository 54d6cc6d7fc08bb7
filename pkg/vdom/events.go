package vdom

import (
	"github.com/vango-dev/canopy/pkg/dom"
	"github.com/vango-dev/canopy/pkg/mailbox"
)

// On creates a Listener for the named event. The name has no "on" prefix.
func On(event string, handler func(dom.Event) mailbox.Msg) Listener {
	return Listener{Event: event, Handler: handler}
}

// Emit returns a handler that always produces msg.
func Emit(msg mailbox.Msg) func(dom.Event) mailbox.Msg {
	return func(dom.Event) mailbox.Msg { return msg }
}

// withValue adapts a value handler to an event handler.
func withValue(fn func(string) mailbox.Msg) func(dom.Event) mailbox.Msg {
	return func(ev dom.Event) mailbox.Msg { return fn(ev.Value) }
}

// Mouse events

// OnClick handles click events.
func OnClick(handler func(dom.Event) mailbox.Msg) Listener { return On("click", handler) }

// OnDblClick handles double-click events.
func OnDblClick(handler func(dom.Event) mailbox.Msg) Listener { return On("dblclick", handler) }

// OnMouseEnter handles mouseenter events.
func OnMouseEnter(handler func(dom.Event) mailbox.Msg) Listener { return On("mouseenter", handler) }

// OnMouseLeave handles mouseleave events.
func OnMouseLeave(handler func(dom.Event) mailbox.Msg) Listener { return On("mouseleave", handler) }

// Keyboard events

// OnKeyDown handles keydown events. The event value carries the key.
func OnKeyDown(handler func(dom.Event) mailbox.Msg) Listener { return On("keydown", handler) }

// Form events

// OnInput handles input events with the current value.
func OnInput(handler func(value string) mailbox.Msg) Listener {
	return On("input", withValue(handler))
}

// OnChange handles change events with the committed value.
func OnChange(handler func(value string) mailbox.Msg) Listener {
	return On("change", withValue(handler))
}

// OnSubmit handles form submission.
func OnSubmit(handler func(dom.Event) mailbox.Msg) Listener { return On("submit", handler) }

// Focus events

// OnFocus handles focus events.
func OnFocus(handler func(dom.Event) mailbox.Msg) Listener { return On("focus", handler) }

// OnBlur handles blur events.
func OnBlur(handler func(dom.Event) mailbox.Msg) Listener { return On("blur", handler) }
