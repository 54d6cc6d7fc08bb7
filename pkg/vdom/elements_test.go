package vdom

import (
	"testing"

	"github.com/vango-dev/canopy/pkg/dom"
	"github.com/vango-dev/canopy/pkg/mailbox"
)

func TestCreateElementArguments(t *testing.T) {
	var nilEl *Element
	el := Div(
		nil,
		ID("main"),
		[]Attr{Class("a"), {}, Data("x", "1")},
		Disabled(false),
		"hello",
		nilEl,
		Empty(),
		[]Node{Text("t"), nil},
		OnClick(Emit("c")),
		OnMount(func(dom.Handle) {}),
		[]Hook{OnUnmount(func(dom.Handle) {})},
	)

	if el.Tag != "div" {
		t.Errorf("Tag = %q", el.Tag)
	}
	if len(el.Attrs) != 3 {
		t.Errorf("Attrs = %+v, want 3 (empty attrs skipped)", el.Attrs)
	}
	if len(el.Children) != 3 {
		t.Fatalf("Children = %d, want 3", len(el.Children))
	}
	if el.Children[0].Kind() != KindText || el.Children[1].Kind() != KindEmpty {
		t.Errorf("child kinds = %v, %v", el.Children[0].Kind(), el.Children[1].Kind())
	}
	if len(el.Listeners) != 1 || el.Listeners[0].Event != "click" {
		t.Errorf("Listeners = %+v", el.Listeners)
	}
	if len(el.Hooks) != 2 || el.Hooks[0].Kind != HookMount || el.Hooks[1].Kind != HookUnmount {
		t.Errorf("Hooks = %+v", el.Hooks)
	}
	if el.Handle() != nil {
		t.Error("a freshly built element has no binding")
	}
}

func TestGetAttrLastWriteWins(t *testing.T) {
	el := Div(Class("a"), Class("b"))
	if v, ok := el.GetAttr("class"); !ok || v != "b" {
		t.Errorf("class = %q, %v", v, ok)
	}
	if _, ok := el.GetAttr("id"); ok {
		t.Error("id is not set")
	}
	if got := el.effectiveAttrs(); len(got) != 1 || got[0].Value != "b" {
		t.Errorf("effectiveAttrs = %+v", got)
	}
}

func TestKindStrings(t *testing.T) {
	tests := []struct {
		node Node
		want string
	}{
		{Div(), "Element"},
		{Text("x"), "Text"},
		{Empty(), "Empty"},
	}
	for _, tt := range tests {
		if got := tt.node.Kind().String(); got != tt.want {
			t.Errorf("Kind() = %q, want %q", got, tt.want)
		}
	}
	if VKind(99).String() != "Unknown" {
		t.Error("unknown kinds should stringify as Unknown")
	}
	if HookUnmount.String() != "unmount" {
		t.Errorf("HookUnmount = %q", HookUnmount.String())
	}
}

func TestIfKeepsPosition(t *testing.T) {
	if If(false, Text("x")).Kind() != KindEmpty {
		t.Error("If(false) should be Empty")
	}
	if If(true, Text("x")).Kind() != KindText {
		t.Error("If(true) should return the node")
	}
}

func TestEventHelpers(t *testing.T) {
	l := OnInput(func(v string) mailbox.Msg { return "got " + v })
	if l.Event != "input" {
		t.Errorf("Event = %q", l.Event)
	}
	if got := l.Handler(dom.Event{Type: "input", Value: "x"}); got != "got x" {
		t.Errorf("Handler = %v", got)
	}
	if got := Emit(3)(dom.Event{}); got != 3 {
		t.Errorf("Emit = %v", got)
	}
}

func TestTextf(t *testing.T) {
	if got := Textf("%d items", 3).Value; got != "3 items" {
		t.Errorf("Textf = %q", got)
	}
}
