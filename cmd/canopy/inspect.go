package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vango-dev/canopy/internal/demo"
	"github.com/vango-dev/canopy/internal/errors"
	"github.com/vango-dev/canopy/pkg/app"
	"github.com/vango-dev/canopy/pkg/dom"
	"github.com/vango-dev/canopy/pkg/frame"
)

const inspectTimeout = 10 * time.Second

// inspectOptions are the inspect command's flags.
type inspectOptions struct {
	frames  int
	clicks  int
	lookup  bool
	ops     bool
	timeout time.Duration
}

func inspectCmd() *cobra.Command {
	opts := inspectOptions{timeout: inspectTimeout}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Run the demo headless and print the live tree",
		Long: `Run the demo application on an in-memory document without
frame pacing, fire clicks on its increment button, optionally run
the animation for a number of frames, and print the resulting HTML.

Examples:
  canopy inspect
  canopy inspect --clicks=3
  canopy inspect --clicks=4 --lookup --frames=10 --ops`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().IntVar(&opts.frames, "frames", 0, "Run the animation for N frames")
	cmd.Flags().IntVar(&opts.clicks, "clicks", 0, "Click the increment button N times")
	cmd.Flags().BoolVar(&opts.lookup, "lookup", false, "Run a lookup for the final count")
	cmd.Flags().BoolVar(&opts.ops, "ops", false, "Print live-tree mutation counts")

	return cmd
}

func runInspect(ctx context.Context, w io.Writer, opts inspectOptions) error {
	if opts.frames < 0 || opts.clicks < 0 {
		return errors.New("E160").
			WithDetail(fmt.Sprintf("--frames=%d --clicks=%d", opts.frames, opts.clicks)).
			WithSuggestion("Use zero or a positive count")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	mem := dom.NewMemory()
	rec := dom.NewRecorder(mem)
	program := demo.New(demo.Options{MaxFrames: opts.frames})

	a, err := program.Build().
		Mount(rec, mem.Body()).
		Frames(frame.Immediate{}).
		Logger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		Finish()
	if err != nil {
		return errors.New("E121").Wrap(err)
	}
	if err := a.Run(ctx); err != nil {
		return errors.New("E121").Wrap(err)
	}
	defer func() {
		a.Close()
		<-a.Done()
	}()

	h := &inspector{ctx: ctx, app: a, mem: mem}
	for i := 0; i < opts.clicks; i++ {
		if err := h.click("inc"); err != nil {
			return err
		}
	}
	if err := h.waitText("count", func(s string) bool { return s == fmt.Sprint(opts.clicks) }); err != nil {
		return err
	}

	if opts.lookup {
		if err := h.click("lookup"); err != nil {
			return err
		}
		if err := h.waitText("result", func(s string) bool { return s != "" }); err != nil {
			return err
		}
	}

	if opts.frames > 0 {
		if err := h.click("animate"); err != nil {
			return err
		}
		want := fmt.Sprintf("%d frames", opts.frames)
		if err := h.waitText("frames", func(s string) bool { return strings.HasPrefix(s, want) }); err != nil {
			return err
		}
		if err := h.waitText("animate", func(s string) bool { return s == "animate" }); err != nil {
			return err
		}
	}

	var html string
	var counts []string
	err = h.onLoop(func() {
		html = mem.InnerHTML(mem.Body())
		for _, kind := range dom.OpKinds() {
			if n := rec.Count(kind); n > 0 {
				counts = append(counts, fmt.Sprintf("%-16s %d", kind, n))
			}
		}
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(w, html)
	if opts.ops {
		fmt.Fprintln(w)
		for _, line := range counts {
			fmt.Fprintln(w, line)
		}
	}
	if info, ok := a.LastRender(); ok {
		fmt.Fprintf(w, "\nrenders: %d\n", info.Frame)
	}
	return nil
}

// inspector drives a running demo from outside its loop.
type inspector struct {
	ctx context.Context
	app *app.App[demo.Model]
	mem *dom.Memory
}

func (h *inspector) onLoop(fn func()) error {
	done := make(chan struct{})
	h.app.Dispatch(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return nil
	case <-h.ctx.Done():
		return errors.New("E121").WithDetail("the application stopped responding").Wrap(h.ctx.Err())
	}
}

func (h *inspector) click(id string) error {
	var found bool
	err := h.onLoop(func() {
		node, ok := demo.Find(h.mem, h.mem.Body(), id)
		if ok {
			found = h.mem.Fire(node, dom.Event{Type: "click"})
		}
	})
	if err != nil {
		return err
	}
	if !found {
		return errors.Newf(errors.CategoryRuntime, "no clickable #%s in the live tree", id)
	}
	return nil
}

func (h *inspector) waitText(id string, match func(string) bool) error {
	for {
		var text string
		err := h.onLoop(func() {
			if node, ok := demo.Find(h.mem, h.mem.Body(), id); ok {
				text = h.mem.TextContent(node)
			}
		})
		if err != nil {
			return err
		}
		if match(text) {
			return nil
		}
		select {
		case <-time.After(time.Millisecond):
		case <-h.ctx.Done():
			return errors.New("E121").
				WithDetail(fmt.Sprintf("#%s never settled, last %q", id, text)).
				Wrap(h.ctx.Err())
		}
	}
}
