package app

import (
	"context"
	"testing"

	"github.com/vango-dev/canopy/pkg/mailbox"
)

func TestOrdersAccumulate(t *testing.T) {
	var sent []mailbox.Msg
	mb := mailbox.New(func(m mailbox.Msg) { sent = append(sent, m) })
	o := newOrders(mb)

	o.SendMsg("a").SendMsg(nil).SendMsg("b")
	o.PerformCmd(func(context.Context) mailbox.Msg { return nil }).PerformCmd(nil)
	o.AfterNextRender(func(RenderInfo) mailbox.Msg { return nil }).AfterNextRender(nil)

	if len(o.msgs) != 2 || o.msgs[0] != "a" || o.msgs[1] != "b" {
		t.Errorf("msgs = %v", o.msgs)
	}
	if len(o.cmds) != 1 {
		t.Errorf("cmds = %d, nil commands are ignored", len(o.cmds))
	}
	if len(o.after) != 1 {
		t.Errorf("after = %d, nil callbacks are ignored", len(o.after))
	}

	o.Mailbox().Send("direct")
	if len(sent) != 1 || sent[0] != "direct" {
		t.Errorf("sent = %v", sent)
	}
}

func TestOrdersSkipAndForce(t *testing.T) {
	tests := []struct {
		name  string
		apply func(*Orders)
		skip  bool
	}{
		{"default", func(*Orders) {}, false},
		{"skip", func(o *Orders) { o.Skip() }, true},
		{"skip then force", func(o *Orders) { o.Skip().ForceRender() }, false},
		{"force then skip", func(o *Orders) { o.ForceRender().Skip() }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newOrders(mailbox.Mailbox{})
			tt.apply(o)
			if o.Skipped() != tt.skip {
				t.Errorf("Skipped() = %v, want %v", o.Skipped(), tt.skip)
			}
		})
	}
}

func TestObserversFanOut(t *testing.T) {
	a, b := &countingObserver{}, &countingObserver{}
	obs := Observers(a, b)
	obs.MessageHandled()
	obs.RenderSkipped()
	obs.Rendered(RenderInfo{}, 0)
	obs.CommandStarted()
	obs.CommandFinished(CommandEmpty)
	obs.Panicked("view")

	for i, o := range []*countingObserver{a, b} {
		if o.messages.Load() != 1 || o.skipped.Load() != 1 || o.renders.Load() != 1 || o.started.Load() != 1 {
			t.Errorf("observer %d missed events", i)
		}
		if o.result(CommandEmpty) != 1 || o.panicCount("view") != 1 {
			t.Errorf("observer %d missed command or panic events", i)
		}
	}
}
