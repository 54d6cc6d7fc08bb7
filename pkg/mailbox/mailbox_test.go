package mailbox

import "testing"

func TestSendDelivers(t *testing.T) {
	var got []Msg
	mb := New(func(m Msg) { got = append(got, m) })

	mb.Send("a")
	clone := mb
	clone.Send(2)

	if len(got) != 2 || got[0] != "a" || got[1] != 2 {
		t.Errorf("got %v", got)
	}
}

func TestSendDropsNil(t *testing.T) {
	calls := 0
	mb := New(func(Msg) { calls++ })
	mb.Send(nil)
	if calls != 0 {
		t.Errorf("nil message delivered %d times", calls)
	}
}

func TestZeroMailboxIsNoop(t *testing.T) {
	var mb Mailbox
	if !mb.IsZero() {
		t.Error("zero mailbox should report IsZero")
	}
	mb.Send("ignored")
	mb.Map(func(m Msg) Msg { return m }).Send("ignored")
}

func TestMap(t *testing.T) {
	type wrapped struct{ inner Msg }

	var got []Msg
	parent := New(func(m Msg) { got = append(got, m) })
	child := parent.Map(func(m Msg) Msg {
		if m == "skip" {
			return nil
		}
		return wrapped{m}
	})

	child.Send("click")
	child.Send("skip")

	if len(got) != 1 {
		t.Fatalf("got %d messages, want 1", len(got))
	}
	if w, ok := got[0].(wrapped); !ok || w.inner != "click" {
		t.Errorf("got %#v", got[0])
	}
}
