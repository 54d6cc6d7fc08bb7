package app

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vango-dev/canopy/pkg/dom"
	"github.com/vango-dev/canopy/pkg/frame"
	"github.com/vango-dev/canopy/pkg/mailbox"
	"github.com/vango-dev/canopy/pkg/vdom"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// App is a running application instance.
type App[M any] struct {
	id       string
	init     InitFunc[M]
	update   UpdateFunc[M]
	view     ViewFunc[M]
	doc      dom.Document
	target   dom.Handle
	frames   frame.Source
	logger   *slog.Logger
	observer Observer
	tracer   trace.Tracer
	mb       mailbox.Mailbox

	// mu guards inbox, running and closed.
	mu      sync.Mutex
	inbox   []mailbox.Msg
	running bool
	closed  bool

	wake       chan struct{}
	dispatchCh chan func()
	quit       chan struct{}
	done       chan struct{}
	closeOnce  sync.Once

	last atomic.Pointer[RenderInfo]

	// Owned by the loop goroutine.
	ctx       context.Context
	cmdCtx    context.Context
	model     M
	tree      vdom.Node
	frameCh   <-chan time.Time
	after     []func(RenderInfo) mailbox.Msg
	renderNow bool
	booting   bool
	lastFrame time.Time
	renders   uint64
}

// ID returns the application's identifier, as logged under app_id.
func (a *App[M]) ID() string {
	return a.id
}

// Mailbox returns the application's mailbox.
func (a *App[M]) Mailbox() mailbox.Mailbox {
	return a.mb
}

// Run starts the event loop. init runs on the loop, its orders are
// drained and the initial view is rendered immediately; later renders wait
// for frame boundaries. Run returns at once.
//
// The loop stops when ctx is done or Close is called. Commands receive a
// context carrying ctx's values that is never canceled.
func (a *App[M]) Run(ctx context.Context) error {
	a.mu.Lock()
	switch {
	case a.closed:
		a.mu.Unlock()
		return ErrClosed
	case a.running:
		a.mu.Unlock()
		return ErrAlreadyRunning
	}
	a.running = true
	a.mu.Unlock()

	a.ctx = ctx
	a.cmdCtx = context.WithoutCancel(ctx)
	go a.loop()
	return nil
}

// Update injects msg as if a listener had sent it. A nil msg is dropped.
func (a *App[M]) Update(msg mailbox.Msg) {
	a.mb.Send(msg)
}

// Dispatch runs fn on the loop goroutine, where it may touch the live
// document. Callbacks run in the order dispatched. After Close, or when the
// queue is full, fn is discarded.
func (a *App[M]) Dispatch(fn func()) {
	if fn == nil || a.isClosed() {
		return
	}
	select {
	case a.dispatchCh <- fn:
	case <-a.quit:
	default:
		a.logger.Warn("dispatch queue full, discarding callback")
	}
}

// Close stops the loop. Messages delivered afterwards are dropped. Close
// does not wait for the loop to exit; use Done for that.
func (a *App[M]) Close() {
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		a.inbox = nil
		started := a.running
		a.mu.Unlock()

		close(a.quit)
		if !started {
			close(a.done)
		}
	})
}

// Done is closed once the loop has exited.
func (a *App[M]) Done() <-chan struct{} {
	return a.done
}

// LastRender returns the most recent render pass, if any.
func (a *App[M]) LastRender() (RenderInfo, bool) {
	info := a.last.Load()
	if info == nil {
		return RenderInfo{}, false
	}
	return *info, true
}

func (a *App[M]) isClosed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

// deliver is the mailbox's delivery function. It only enqueues.
func (a *App[M]) deliver(msg mailbox.Msg) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		a.logger.Debug("message dropped after close", "msg_type", fmt.Sprintf("%T", msg))
		return
	}
	a.inbox = append(a.inbox, msg)
	a.mu.Unlock()
	a.signal()
}

func (a *App[M]) signal() {
	select {
	case a.wake <- struct{}{}:
	default:
	}
}

func (a *App[M]) loop() {
	defer close(a.done)

	a.boot()

	for {
		select {
		case <-a.wake:
			a.drainInbox()

		case fn := <-a.dispatchCh:
			a.protect("dispatch", fn)

		case ts := <-a.frameCh:
			a.render(ts)

		case <-a.ctx.Done():
			a.Close()
			return

		case <-a.quit:
			return
		}
	}
}

// boot runs init and the initial render.
func (a *App[M]) boot() {
	a.booting = true
	defer func() { a.booting = false }()

	o := newOrders(a.mb)
	if perr := a.protect("init", func() { a.model = a.init(o) }); perr != nil {
		o = newOrders(a.mb)
	}
	a.settle(o)
	a.render(time.Now())
}

// drainInbox handles the messages queued so far. Messages that arrive in
// the meantime wait for the next loop iteration so frames are not starved.
func (a *App[M]) drainInbox() {
	a.mu.Lock()
	batch := a.inbox
	a.inbox = nil
	a.mu.Unlock()

	for i, msg := range batch {
		select {
		case <-a.quit:
			return
		default:
		}
		batch[i] = nil
		a.handle(msg)
	}

	a.mu.Lock()
	more := len(a.inbox) > 0
	a.mu.Unlock()
	if more {
		a.signal()
	}
}

// handle runs the update cycle for one delivered message, including every
// message it chains through SendMsg.
func (a *App[M]) handle(msg mailbox.Msg) {
	_, span := a.tracer.Start(a.ctx, "canopy.update",
		trace.WithAttributes(attribute.String("canopy.msg_type", fmt.Sprintf("%T", msg))))
	cycles := a.settle(a.step(msg))
	span.SetAttributes(attribute.Int("canopy.cycles", cycles+1))
	span.End()
}

// step invokes update once.
func (a *App[M]) step(msg mailbox.Msg) *Orders {
	a.observer.MessageHandled()
	o := newOrders(a.mb)
	if perr := a.protect("update", func() { a.update(msg, &a.model, o) }); perr != nil {
		// Orders from a failed update are discarded.
		return newOrders(a.mb).Skip()
	}
	return o
}

// settle applies o and drains the messages it chains, iteratively and in
// the order they were sent. It returns how many chained messages ran.
func (a *App[M]) settle(o *Orders) int {
	queue := a.apply(o)
	n := 0
	for len(queue) > 0 {
		msg := queue[0]
		queue[0] = nil
		queue = queue[1:]
		queue = append(queue, a.apply(a.step(msg))...)
		n++
	}

	if a.renderNow {
		a.renderNow = false
		a.render(time.Now())
	}
	return n
}

// apply acts on everything in o except its chained messages, which it
// returns.
func (a *App[M]) apply(o *Orders) []mailbox.Msg {
	for _, cmd := range o.cmds {
		a.perform(cmd)
	}
	a.after = append(a.after, o.after...)

	switch {
	case !o.skip:
		a.requestRender()
		if o.renderNow {
			a.renderNow = true
		}
	case a.frameCh == nil && !a.booting:
		a.observer.RenderSkipped()
	}
	return o.msgs
}

// requestRender asks for the next frame unless a request is outstanding.
// While booting the initial render is already due.
func (a *App[M]) requestRender() {
	if a.frameCh == nil && !a.booting {
		a.frameCh = a.frames.Next()
	}
}

func (a *App[M]) perform(cmd Cmd) {
	a.observer.CommandStarted()
	ctx := a.cmdCtx
	go func() {
		result := CommandEmpty
		defer func() {
			if r := recover(); r != nil {
				result = CommandPanic
				a.logger.Error("command panic",
					"panic", r,
					"stack", string(debug.Stack()))
				a.observer.Panicked("command")
			}
			a.observer.CommandFinished(result)
		}()

		if msg := cmd(ctx); msg != nil {
			result = CommandMessage
			a.mb.Send(msg)
		}
	}()
}

// render runs view and reconciles the result onto the live tree.
func (a *App[M]) render(ts time.Time) {
	a.frameCh = nil
	start := time.Now()

	_, span := a.tracer.Start(a.ctx, "canopy.render",
		trace.WithAttributes(attribute.Int64("canopy.frame", int64(a.renders+1))))
	defer span.End()

	var next vdom.Node
	if perr := a.protect("view", func() { next = a.view(&a.model) }); perr != nil {
		span.RecordError(perr)
		span.SetStatus(codes.Error, "view panic")
		return
	}

	var mutated bool
	perr := a.protect("render", func() {
		mutated = vdom.Reconcile(a.doc, a.tree, next, a.target, nil, a.mb)
	})
	// Hook panics are raised after the pass, so next is fully bound here.
	a.tree = next
	if perr != nil {
		span.RecordError(perr)
		span.SetStatus(codes.Error, "render panic")
	}
	if f, ok := a.doc.(dom.Flusher); ok {
		f.Flush()
	}

	a.renders++
	info := RenderInfo{
		Frame:     a.renders,
		Timestamp: ts,
		Previous:  a.lastFrame,
		Mutated:   mutated,
	}
	if !a.lastFrame.IsZero() {
		info.Delta = ts.Sub(a.lastFrame)
	}
	a.lastFrame = ts

	took := time.Since(start)
	span.SetAttributes(attribute.Bool("canopy.mutated", mutated))
	a.observer.Rendered(info, took)
	a.last.Store(&info)
	a.logger.Debug("render",
		"frame", info.Frame,
		"delta", info.Delta,
		"mutated", mutated,
		"took", took)

	after := a.after
	a.after = nil
	for _, fn := range after {
		var msg mailbox.Msg
		a.protect("after_render", func() { msg = fn(info) })
		a.mb.Send(msg)
	}
}

// protect runs fn, recovering and logging a panic.
func (a *App[M]) protect(where string, fn func()) (perr *PanicError) {
	defer func() {
		if r := recover(); r != nil {
			perr = &PanicError{Where: where, Panic: r, Stack: debug.Stack()}
			if hp, ok := r.(*vdom.HookPanic); ok {
				perr.Stack = hp.Stack
			}
			a.logger.Error(where+" panic",
				"panic", r,
				"stack", string(perr.Stack))
			a.observer.Panicked(where)
		}
	}()
	fn()
	return nil
}
