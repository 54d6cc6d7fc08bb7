package metrics

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/vango-dev/canopy/pkg/app"
	"github.com/vango-dev/canopy/pkg/dom"
	"github.com/vango-dev/canopy/pkg/frame"
	"github.com/vango-dev/canopy/pkg/mailbox"
	"github.com/vango-dev/canopy/pkg/vdom"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	return m.GetGauge().GetValue()
}

func histogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m dto.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestCollectorObserverEvents(t *testing.T) {
	c := New(WithRegistry(prometheus.NewRegistry()))

	c.MessageHandled()
	c.MessageHandled()
	c.RenderSkipped()
	c.Rendered(app.RenderInfo{Frame: 1}, time.Millisecond)
	c.Rendered(app.RenderInfo{Frame: 2, Delta: 16 * time.Millisecond}, time.Millisecond)
	c.CommandStarted()
	c.CommandStarted()
	c.CommandFinished(app.CommandMessage)
	c.Panicked("view")

	if got := counterValue(t, c.messages); got != 2 {
		t.Errorf("messages_total = %v, want 2", got)
	}
	if got := counterValue(t, c.skipped); got != 1 {
		t.Errorf("renders_skipped_total = %v, want 1", got)
	}
	if got := counterValue(t, c.renders); got != 2 {
		t.Errorf("renders_total = %v, want 2", got)
	}
	if got := histogramCount(t, c.renderDuration); got != 2 {
		t.Errorf("render_duration count = %d, want 2", got)
	}
	if got := histogramCount(t, c.frameDelta); got != 1 {
		t.Errorf("frame_delta count = %d, want 1; the first frame has no delta", got)
	}
	if got := gaugeValue(t, c.inflight); got != 1 {
		t.Errorf("commands_inflight = %v, want 1", got)
	}
	if got := counterValue(t, c.commands.WithLabelValues("message")); got != 1 {
		t.Errorf("commands_total{message} = %v, want 1", got)
	}
	if got := counterValue(t, c.panics.WithLabelValues("view")); got != 1 {
		t.Errorf("panics_total{view} = %v, want 1", got)
	}
}

func TestCollectorObserveOps(t *testing.T) {
	c := New(WithRegistry(prometheus.NewRegistry()))
	mem := dom.NewMemory()
	rec := dom.NewRecorder(mem)
	rec.Subscribe(c.ObserveOps)

	div := rec.CreateElement("div")
	rec.SetAttribute(div, "class", "a")
	rec.SetAttribute(div, "id", "b")
	rec.InsertChild(mem.Body(), div, nil)
	rec.Flush()

	if got := counterValue(t, c.domOps.WithLabelValues("set_attr")); got != 2 {
		t.Errorf("dom_ops_total{set_attr} = %v, want 2", got)
	}
	if got := counterValue(t, c.domOps.WithLabelValues("create_element")); got != 1 {
		t.Errorf("dom_ops_total{create_element} = %v, want 1", got)
	}
	if got := counterValue(t, c.domOps.WithLabelValues("insert")); got != 1 {
		t.Errorf("dom_ops_total{insert} = %v, want 1", got)
	}
}

func TestCollectorOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(
		WithRegistry(reg),
		WithNamespace("ui"),
		WithSubsystem("demo"),
		WithConstLabels(prometheus.Labels{"instance": "test"}),
		WithBuckets([]float64{0.1, 1}),
	)
	c.MessageHandled()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var found bool
	for _, f := range families {
		if f.GetName() != "ui_demo_messages_total" {
			continue
		}
		found = true
		labels := f.GetMetric()[0].GetLabel()
		if len(labels) != 1 || labels[0].GetName() != "instance" || labels[0].GetValue() != "test" {
			t.Errorf("labels = %v", labels)
		}
	}
	if !found {
		t.Error("ui_demo_messages_total not registered")
	}
}

func TestCollectorHandler(t *testing.T) {
	c := New(WithRegistry(prometheus.NewRegistry()))
	c.MessageHandled()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "canopy_messages_total 1") {
		t.Errorf("metrics output missing counter:\n%s", rec.Body.String())
	}
}

func TestCollectorWithApp(t *testing.T) {
	c := New(WithRegistry(prometheus.NewRegistry()))
	mem := dom.NewMemory()
	rec := dom.NewRecorder(mem)
	rec.Subscribe(c.ObserveOps)

	handled := make(chan struct{})
	update := func(msg mailbox.Msg, n *int, o *app.Orders) {
		*n++
		o.RenderNow()
		close(handled)
	}
	view := func(n *int) vdom.Node { return vdom.P(vdom.Textf("%d", *n)) }

	a, err := app.Build(nil, update, view).
		Mount(rec, mem.Body()).
		Frames(frame.NewManual()).
		Observer(c).
		Finish()
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	a.Update("go")
	<-handled

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if info, ok := a.LastRender(); ok && info.Frame == 2 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if got := counterValue(t, c.messages); got != 1 {
		t.Errorf("messages_total = %v, want 1", got)
	}
	if got := counterValue(t, c.renders); got != 2 {
		t.Errorf("renders_total = %v, want 2", got)
	}
	if got := counterValue(t, c.domOps.WithLabelValues("set_text")); got != 1 {
		t.Errorf("dom_ops_total{set_text} = %v, want 1", got)
	}
}
