package app

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/vango-dev/canopy/pkg/dom"
	"github.com/vango-dev/canopy/pkg/frame"
	"github.com/vango-dev/canopy/pkg/mailbox"
	"github.com/vango-dev/canopy/pkg/vdom"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTracerName is the tracer used when none is configured.
const DefaultTracerName = "canopy"

// dispatchQueueSize bounds App.Dispatch callbacks waiting for the loop.
const dispatchQueueSize = 256

// InitFunc builds the first model. It may issue Orders like update does.
type InitFunc[M any] func(orders *Orders) M

// UpdateFunc folds msg into the model.
type UpdateFunc[M any] func(msg mailbox.Msg, model *M, orders *Orders)

// ViewFunc renders the model. It must not mutate the model.
type ViewFunc[M any] func(model *M) vdom.Node

var appSeq atomic.Uint64

// Builder configures an App.
type Builder[M any] struct {
	init     InitFunc[M]
	update   UpdateFunc[M]
	view     ViewFunc[M]
	doc      dom.Document
	target   dom.Handle
	frames   frame.Source
	logger   *slog.Logger
	observer Observer
	tracer   trace.Tracer
}

// Build starts configuring an application. A nil init starts from the
// zero model.
func Build[M any](initFn InitFunc[M], update UpdateFunc[M], view ViewFunc[M]) *Builder[M] {
	return &Builder[M]{init: initFn, update: update, view: view}
}

// Mount sets the document and the live node the view is rendered into.
func (b *Builder[M]) Mount(doc dom.Document, target dom.Handle) *Builder[M] {
	b.doc = doc
	b.target = target
	return b
}

// Frames sets the frame source renders wait on. Default: a 60 fps ticker.
func (b *Builder[M]) Frames(src frame.Source) *Builder[M] {
	b.frames = src
	return b
}

// Logger sets the logger. Default: slog.Default().
func (b *Builder[M]) Logger(l *slog.Logger) *Builder[M] {
	b.logger = l
	return b
}

// Observer sets the runtime observer.
func (b *Builder[M]) Observer(o Observer) *Builder[M] {
	b.observer = o
	return b
}

// Tracer sets the tracer for update and render spans. Default: the global
// provider's "canopy" tracer.
func (b *Builder[M]) Tracer(t trace.Tracer) *Builder[M] {
	b.tracer = t
	return b
}

// Finish validates the configuration and returns the application. The
// application does nothing until Run.
func (b *Builder[M]) Finish() (*App[M], error) {
	switch {
	case b.update == nil:
		return nil, ErrNoUpdate
	case b.view == nil:
		return nil, ErrNoView
	case b.doc == nil:
		return nil, ErrNoDocument
	case b.target == nil:
		return nil, ErrNoMountTarget
	}

	initFn := b.init
	if initFn == nil {
		initFn = func(*Orders) M {
			var zero M
			return zero
		}
	}

	id := fmt.Sprintf("app-%d", appSeq.Add(1))

	a := &App[M]{
		id:         id,
		init:       initFn,
		update:     b.update,
		view:       b.view,
		doc:        b.doc,
		target:     b.target,
		frames:     b.frames,
		logger:     b.logger,
		observer:   b.observer,
		tracer:     b.tracer,
		wake:       make(chan struct{}, 1),
		dispatchCh: make(chan func(), dispatchQueueSize),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	if a.frames == nil {
		a.frames = frame.NewTicker(frame.DefaultInterval)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	a.logger = a.logger.With("app_id", id)
	if a.observer == nil {
		a.observer = NopObserver{}
	}
	if a.tracer == nil {
		a.tracer = otel.Tracer(DefaultTracerName)
	}
	a.mb = mailbox.New(a.deliver)
	return a, nil
}
