package vdom

import (
	"fmt"
	"testing"

	"github.com/vango-dev/canopy/pkg/dom"
	"github.com/vango-dev/canopy/pkg/mailbox"
)

func createList(n int, label string) *Element {
	items := make([]Node, n)
	for i := range items {
		items[i] = Li(Class("item"), OnClick(Emit(i)), fmt.Sprintf("%s %d", label, i))
	}
	return Ul(items)
}

func BenchmarkReconcile(b *testing.B) {
	for _, size := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("unchanged %d", size), func(b *testing.B) {
			mem := dom.NewMemory()
			var prev Node = createList(size, "item")
			Mount(mem, prev, mem.Body(), nil, mailbox.Mailbox{})
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				next := createList(size, "item")
				Reconcile(mem, prev, next, mem.Body(), nil, mailbox.Mailbox{})
				prev = next
			}
		})

		b.Run(fmt.Sprintf("text changed %d", size), func(b *testing.B) {
			mem := dom.NewMemory()
			var prev Node = createList(size, "a")
			Mount(mem, prev, mem.Body(), nil, mailbox.Mailbox{})
			labels := [2]string{"a", "b"}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				next := createList(size, labels[i%2])
				Reconcile(mem, prev, next, mem.Body(), nil, mailbox.Mailbox{})
				prev = next
			}
		})
	}
}

func BenchmarkMountDeepTree(b *testing.B) {
	for i := 0; i < b.N; i++ {
		mem := dom.NewMemory()
		Mount(mem, createDeepTree(10), mem.Body(), nil, mailbox.Mailbox{})
	}
}

func createDeepTree(depth int) *Element {
	if depth == 0 {
		return Span("leaf")
	}
	return Div(Class("level"), createDeepTree(depth-1))
}
