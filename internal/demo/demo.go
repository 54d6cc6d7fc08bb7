// Package demo is the example application served and inspected by the
// canopy command: a counter, a frame-driven animation and a slow lookup
// run as a command.
package demo

import (
	"context"
	"fmt"
	"time"

	"github.com/vango-dev/canopy/pkg/app"
	"github.com/vango-dev/canopy/pkg/dom"
	"github.com/vango-dev/canopy/pkg/mailbox"
	"github.com/vango-dev/canopy/pkg/vdom"
)

// Messages.
type (
	Increment struct{}
	Decrement struct{}
	Reset     struct{}

	// Lookup starts a lookup for the current count.
	Lookup struct{}

	// LookupDone carries a finished lookup.
	LookupDone struct {
		Count  int
		Result string
	}

	// ToggleAnimation starts or stops the animation.
	ToggleAnimation struct{}

	// AnimationFrame reports a render that happened while animating.
	AnimationFrame struct {
		Delta time.Duration
	}

	// Rename updates the label from the text input.
	Rename struct {
		Label string
	}
)

// Model is the demo state.
type Model struct {
	Label     string
	Count     int
	Looking   bool
	Result    string
	Animating bool
	Frames    int
	Elapsed   time.Duration
	Lookups   int
}

// Options tune the demo.
type Options struct {
	// Label is the initial counter label.
	Label string

	// LookupDelay is how long a lookup takes.
	LookupDelay time.Duration

	// MaxFrames stops the animation after that many frames. Zero runs it
	// until toggled off.
	MaxFrames int
}

// Program bundles the demo's init, update and view functions.
type Program struct {
	opts Options
}

// New returns the demo program.
func New(opts Options) *Program {
	if opts.Label == "" {
		opts.Label = "Counter"
	}
	return &Program{opts: opts}
}

// Build returns an app.Builder for the demo. The caller mounts it.
func (p *Program) Build() *app.Builder[Model] {
	return app.Build(p.Init, p.Update, p.View)
}

// Init returns the first model.
func (p *Program) Init(*app.Orders) Model {
	return Model{Label: p.opts.Label}
}

// Update folds msg into m.
func (p *Program) Update(msg mailbox.Msg, m *Model, o *app.Orders) {
	switch msg := msg.(type) {
	case Increment:
		m.Count++
	case Decrement:
		m.Count--
	case Reset:
		m.Count = 0
		m.Result = ""
		o.SendMsg(stopAnimation{})

	case Rename:
		m.Label = msg.Label

	case Lookup:
		if m.Looking {
			o.Skip()
			return
		}
		m.Looking = true
		m.Lookups++
		o.PerformCmd(p.lookup(m.Count))

	case LookupDone:
		m.Looking = false
		m.Result = msg.Result

	case ToggleAnimation:
		if m.Animating {
			o.SendMsg(stopAnimation{})
			o.Skip()
			return
		}
		m.Animating = true
		m.Frames = 0
		m.Elapsed = 0
		o.AfterNextRender(nextFrame)

	case AnimationFrame:
		if !m.Animating {
			o.Skip()
			return
		}
		m.Frames++
		m.Elapsed += msg.Delta
		if p.opts.MaxFrames > 0 && m.Frames >= p.opts.MaxFrames {
			m.Animating = false
			return
		}
		o.AfterNextRender(nextFrame)

	case stopAnimation:
		m.Animating = false

	default:
		o.Skip()
	}
}

type stopAnimation struct{}

func nextFrame(info app.RenderInfo) mailbox.Msg {
	return AnimationFrame{Delta: info.Delta}
}

func (p *Program) lookup(count int) app.Cmd {
	delay := p.opts.LookupDelay
	return func(ctx context.Context) mailbox.Msg {
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil
			}
		}
		return LookupDone{Count: count, Result: describe(count)}
	}
}

func describe(n int) string {
	switch {
	case n == 0:
		return "0 is neither positive nor negative"
	case n < 0:
		return fmt.Sprintf("%d is negative", n)
	case n%2 == 0:
		return fmt.Sprintf("%d is even", n)
	default:
		return fmt.Sprintf("%d is odd", n)
	}
}

// View renders m.
func (p *Program) View(m *Model) vdom.Node {
	return vdom.Main(vdom.Class("demo"),
		vdom.H1(m.Label),
		vdom.Section(vdom.Class("counter"),
			vdom.Button(vdom.ID("dec"), vdom.OnClick(vdom.Emit(Decrement{})), "-"),
			vdom.Span(vdom.ID("count"), vdom.Textf("%d", m.Count)),
			vdom.Button(vdom.ID("inc"), vdom.OnClick(vdom.Emit(Increment{})), "+"),
			vdom.Button(vdom.ID("reset"), vdom.Disabled(m.Count == 0), vdom.OnClick(vdom.Emit(Reset{})), "reset"),
		),
		vdom.Section(vdom.Class("label"),
			vdom.Input(vdom.ID("label"), vdom.Value(m.Label), vdom.OnInput(func(v string) mailbox.Msg {
				return Rename{Label: v}
			})),
		),
		vdom.Section(vdom.Class("lookup"),
			vdom.Button(vdom.ID("lookup"), vdom.Disabled(m.Looking), vdom.OnClick(vdom.Emit(Lookup{})), "look up"),
			vdom.If(m.Looking, vdom.Span(vdom.Class("pending"), "looking up...")),
			vdom.If(m.Result != "", vdom.P(vdom.ID("result"), m.Result)),
		),
		vdom.Section(vdom.Class("animation"),
			vdom.Button(vdom.ID("animate"), vdom.OnClick(vdom.Emit(ToggleAnimation{})), animateLabel(m.Animating)),
			vdom.If(m.Animating || m.Frames > 0,
				vdom.P(vdom.ID("frames"), vdom.Textf("%d frames in %s", m.Frames, m.Elapsed.Round(time.Millisecond))),
			),
		),
	)
}

func animateLabel(on bool) string {
	if on {
		return "stop"
	}
	return "animate"
}

// Find returns the first element below root whose id attribute is id.
func Find(doc *dom.Memory, root dom.Handle, id string) (dom.Handle, bool) {
	if v, ok := doc.Attr(root, "id"); ok && v == id && !doc.IsText(root) {
		return root, true
	}
	for _, c := range doc.Children(root) {
		if doc.IsText(c) {
			continue
		}
		if h, ok := Find(doc, c, id); ok {
			return h, true
		}
	}
	return nil, false
}
