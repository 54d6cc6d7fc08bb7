package app

import "time"

// CommandResult classifies how a command finished.
type CommandResult string

// Command results.
const (
	CommandMessage CommandResult = "message"
	CommandEmpty   CommandResult = "empty"
	CommandPanic   CommandResult = "panic"
)

// Observer receives runtime events. Methods are called from the loop
// goroutine except CommandFinished, which runs on the command's goroutine.
// Implementations must be safe for that.
type Observer interface {
	MessageHandled()
	RenderSkipped()
	Rendered(info RenderInfo, took time.Duration)
	CommandStarted()
	CommandFinished(result CommandResult)
	Panicked(where string)
}

// NopObserver ignores every event. Embed it to implement a subset.
type NopObserver struct{}

func (NopObserver) MessageHandled()                    {}
func (NopObserver) RenderSkipped()                     {}
func (NopObserver) Rendered(RenderInfo, time.Duration) {}
func (NopObserver) CommandStarted()                    {}
func (NopObserver) CommandFinished(CommandResult)      {}
func (NopObserver) Panicked(string)                    {}

// Observers fans events out to each of obs.
func Observers(obs ...Observer) Observer {
	return multiObserver(obs)
}

type multiObserver []Observer

func (m multiObserver) MessageHandled() {
	for _, o := range m {
		o.MessageHandled()
	}
}

func (m multiObserver) RenderSkipped() {
	for _, o := range m {
		o.RenderSkipped()
	}
}

func (m multiObserver) Rendered(info RenderInfo, took time.Duration) {
	for _, o := range m {
		o.Rendered(info, took)
	}
}

func (m multiObserver) CommandStarted() {
	for _, o := range m {
		o.CommandStarted()
	}
}

func (m multiObserver) CommandFinished(result CommandResult) {
	for _, o := range m {
		o.CommandFinished(result)
	}
}

func (m multiObserver) Panicked(where string) {
	for _, o := range m {
		o.Panicked(where)
	}
}
