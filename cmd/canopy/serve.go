package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/vango-dev/canopy/internal/config"
	"github.com/vango-dev/canopy/internal/demo"
	"github.com/vango-dev/canopy/internal/errors"
	"github.com/vango-dev/canopy/pkg/app"
	"github.com/vango-dev/canopy/pkg/dom"
	"github.com/vango-dev/canopy/pkg/frame"
	"github.com/vango-dev/canopy/pkg/journal"
	"github.com/vango-dev/canopy/pkg/metrics"
	"github.com/vango-dev/canopy/pkg/remote"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"
)

const shutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo application to browsers",
		Long: `Run the demo application and mirror its live tree to browsers
over WebSocket. Clicks and input in the browser are routed back to
the application.

Configuration is read from --config, or from canopy.json,
canopy.yaml or canopy.yml in the working directory when present.

Examples:
  canopy serve
  canopy serve --addr=0.0.0.0:9000
  canopy serve --config=deploy/canopy.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, addr)
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Configuration file")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from config)")

	return cmd
}

// loadConfig reads the configuration for serve. An explicit path must
// exist; otherwise the working directory is searched and defaults are used
// when nothing is found.
func loadConfig(path, addr string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case path != "":
		cfg, err = config.LoadFile(path)
	case config.Exists("."):
		cfg, err = config.Load(".")
	default:
		cfg = config.New()
	}
	if err != nil {
		return nil, err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// service is everything serve runs, wired from a Config.
type service struct {
	logger  *slog.Logger
	app     *app.App[demo.Model]
	remote  *remote.Server
	journal *journal.Journal
	rotate  time.Duration
	http    *http.Server
}

func newService(cfg *config.Config) (*service, error) {
	logger := cfg.NewLogger(os.Stderr)

	mem := dom.NewMemory()
	rec := dom.NewRecorder(mem)

	builder := demo.New(demo.Options{LookupDelay: 400 * time.Millisecond}).Build().
		Mount(rec, mem.Body()).
		Frames(frame.FPS(cfg.Frames.FPS)).
		Logger(logger)

	if cfg.Tracing.Enabled {
		builder.Tracer(otel.Tracer(cfg.Tracing.TracerName))
	} else {
		builder.Tracer(noop.NewTracerProvider().Tracer(cfg.Tracing.TracerName))
	}

	var remoteOpts []remote.Option
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		collector := metrics.New(
			metrics.WithNamespace(cfg.Metrics.Namespace),
			metrics.WithRegistry(registry),
		)
		builder.Observer(collector)
		rec.Subscribe(collector.ObserveOps)
		remoteOpts = append(remoteOpts, remote.WithMetrics(cfg.Metrics.Path, collector.Handler()))
	}

	s := &service{logger: logger, rotate: cfg.RotateEvery()}
	if cfg.JournalEnabled() {
		j, err := openJournal(cfg, logger)
		if err != nil {
			return nil, err
		}
		rec.Subscribe(j.Observe)
		s.journal = j
	}

	a, err := builder.Finish()
	if err != nil {
		return nil, errors.New("E121").Wrap(err)
	}
	s.app = a

	remoteOpts = append(remoteOpts,
		remote.WithTitle("canopy"),
		remote.WithLogger(logger),
		remote.WithSendQueue(cfg.Server.SendQueue),
		remote.WithMaxMessageSize(cfg.Server.MaxMessageSize),
	)
	if d := cfg.WriteTimeout(); d > 0 {
		remoteOpts = append(remoteOpts, remote.WithWriteTimeout(d))
	}
	s.remote = remote.New(a, mem, rec, mem.Body(), remoteOpts...)

	s.http = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.remote,
		ReadHeaderTimeout: cfg.ReadTimeout(),
	}
	return s, nil
}

// openJournal prefers the S3 sink when a bucket is configured.
func openJournal(cfg *config.Config, logger *slog.Logger) (*journal.Journal, error) {
	if b := cfg.Journal.S3; b.Bucket != "" {
		client := journal.NewS3Client(journal.S3Config{
			Region:   b.Region,
			Endpoint: b.Endpoint,
		})
		logger.Info("journal enabled", "bucket", b.Bucket, "prefix", b.Prefix)
		return journal.New(journal.NewS3Sink(client, b.Bucket, b.Prefix), journal.WithLogger(logger)), nil
	}

	sink, path, err := journal.OpenFile(cfg.Journal.Dir, time.Now())
	if err != nil {
		return nil, errors.New("E140").Wrap(err)
	}
	logger.Info("journal enabled", "path", path)
	return journal.New(sink, journal.WithLogger(logger)), nil
}

func (s *service) run(ctx context.Context) error {
	if err := s.app.Run(ctx); err != nil {
		return errors.New("E121").Wrap(err)
	}

	if s.journal != nil && s.rotate > 0 {
		go s.rotateJournal(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			runErr = errors.New("E120").Wrap(err)
		}
	}
	s.shutdown()
	return runErr
}

func (s *service) rotateJournal(ctx context.Context) {
	ticker := time.NewTicker(s.rotate)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.journal.Rotate(ctx); err != nil {
				s.logger.Warn("journal rotation failed", "error", errors.New("E141").Wrap(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *service) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.remote.Close()
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Warn("http shutdown", "error", err)
	}
	s.app.Close()
	<-s.app.Done()
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			s.logger.Warn("journal close", "error", err)
		}
	}
}

func runServe(cfg *config.Config) error {
	s, err := newService(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			fmt.Println("\n  Shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	success("Serving on http://%s", cfg.Server.Addr)
	if cfg.Metrics.Enabled {
		info("Metrics at http://%s%s", cfg.Server.Addr, cfg.Metrics.Path)
	}
	return s.run(ctx)
}
