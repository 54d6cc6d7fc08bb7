package remote

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/vango-dev/canopy/pkg/dom"
)

//go:embed assets/index.html assets/client.js
var assets embed.FS

var indexTemplate = template.Must(template.ParseFS(assets, "assets/index.html"))

// ErrUnavailable is returned when the application loop does not answer,
// usually because the application was closed.
var ErrUnavailable = errors.New("remote: application unavailable")

// Dispatcher runs functions on the application's loop goroutine.
// *app.App implements it.
type Dispatcher interface {
	Dispatch(fn func())
}

// Config configures a Server.
type Config struct {
	// Title is the page title of the bootstrap page.
	Title string

	// SendQueue is how many frames may wait per client. A client whose
	// queue is full is disconnected.
	SendQueue int

	// WriteTimeout bounds a single WebSocket write.
	WriteTimeout time.Duration

	// PingInterval is how often clients are pinged. A client that does
	// not answer within two intervals is disconnected.
	PingInterval time.Duration

	// MaxMessageSize limits inbound client frames in bytes.
	MaxMessageSize int64

	// DispatchTimeout bounds waiting for the application loop.
	DispatchTimeout time.Duration

	// CheckOrigin validates the Origin of WebSocket upgrades.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// MetricsPath and Metrics mount a metrics handler when both are set.
	MetricsPath string
	Metrics     http.Handler

	// Logger receives connection events. Default: slog.Default().
	Logger *slog.Logger
}

// Option configures a Server.
type Option func(*Config)

// WithTitle sets the bootstrap page title.
func WithTitle(title string) Option {
	return func(c *Config) {
		c.Title = title
	}
}

// WithSendQueue sets the per-client send queue length.
func WithSendQueue(n int) Option {
	return func(c *Config) {
		c.SendQueue = n
	}
}

// WithWriteTimeout sets the WebSocket write timeout.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.WriteTimeout = d
	}
}

// WithPingInterval sets the client ping interval.
func WithPingInterval(d time.Duration) Option {
	return func(c *Config) {
		c.PingInterval = d
	}
}

// WithMaxMessageSize sets the inbound frame size limit.
func WithMaxMessageSize(n int64) Option {
	return func(c *Config) {
		c.MaxMessageSize = n
	}
}

// WithCheckOrigin sets the WebSocket origin check.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(c *Config) {
		c.CheckOrigin = fn
	}
}

// WithDispatchTimeout bounds waiting for the application loop.
func WithDispatchTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.DispatchTimeout = d
	}
}

// WithMetrics serves h on path.
func WithMetrics(path string, h http.Handler) Option {
	return func(c *Config) {
		c.MetricsPath = path
		c.Metrics = h
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

func defaultConfig() Config {
	return Config{
		Title:           "canopy",
		SendQueue:       64,
		WriteTimeout:    10 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  64 * 1024,
		DispatchTimeout: 5 * time.Second,
		CheckOrigin:     SameOriginCheck,
		Logger:          slog.Default(),
	}
}

// SameOriginCheck accepts requests without an Origin header and requests
// whose Origin host matches the request host.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return r.Host != "" && originURL.Host == r.Host
}

// Server serves the bootstrap page and mirrors the live tree to connected
// clients.
type Server struct {
	app      Dispatcher
	doc      *dom.Memory
	root     dom.Handle
	config   Config
	logger   *slog.Logger
	upgrader websocket.Upgrader
	router   chi.Router

	// mu guards clients, seq and closed. seq and client registration only
	// change on the application loop, so a snapshot and the batches that
	// follow it never overlap.
	mu      sync.Mutex
	clients map[*client]struct{}
	seq     uint64
	closed  bool
}

// New creates a Server mirroring the subtree at root. rec must be the
// document the application renders into and wrap doc.
func New(app Dispatcher, doc *dom.Memory, rec *dom.Recorder, root dom.Handle, opts ...Option) *Server {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.CheckOrigin == nil {
		config.CheckOrigin = SameOriginCheck
	}

	s := &Server{
		app:     app,
		doc:     doc,
		root:    root,
		config:  config,
		logger:  config.Logger.With("component", "remote"),
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
	}
	rec.Subscribe(s.broadcast)
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/client.js", s.handleClientJS)
	r.Get("/healthz", s.handleHealth)
	r.Get("/snapshot", s.handleSnapshot)
	r.Get("/ws", s.handleWebSocket)
	if s.config.Metrics != nil && s.config.MetricsPath != "" {
		r.Method(http.MethodGet, s.config.MetricsPath, s.config.Metrics)
	}
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close disconnects every client. Later connections are refused.
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	clients := s.clients
	s.clients = make(map[*client]struct{})
	s.mu.Unlock()

	for c := range clients {
		c.close()
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, struct{ Title string }{s.config.Title}); err != nil {
		s.logger.Error("render index", "error", err)
	}
}

func (s *Server) handleClientJS(w http.ResponseWriter, r *http.Request) {
	data, err := assets.ReadFile("assets/client.js")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	var frame SnapshotFrame
	err := s.onLoop(r.Context(), func() {
		s.mu.Lock()
		frame = SnapshotFrame{Type: FrameSnapshot, Seq: s.seq, Root: s.doc.Snapshot(s.root)}
		s.mu.Unlock()
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(frame)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := newClient(conn, s.config.SendQueue)
	registered := make(chan bool, 1)
	err = s.onLoop(r.Context(), func() {
		registered <- s.register(c)
	})
	if err == nil && !<-registered {
		err = ErrUnavailable
	}
	if err != nil {
		s.abandon(c)
		s.logger.Warn("client refused", "remote", r.RemoteAddr, "error", err)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "unavailable"),
			time.Now().Add(time.Second))
		c.close()
		return
	}
	s.logger.Info("client connected", "remote", r.RemoteAddr, "request_id", middleware.GetReqID(r.Context()))

	go s.writeLoop(c)
	s.readLoop(c)

	s.unregister(c)
	c.close()
	s.logger.Info("client disconnected", "remote", r.RemoteAddr)
}

// onLoop runs fn on the application loop and waits for it.
func (s *Server) onLoop(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	s.app.Dispatch(func() {
		defer close(done)
		fn()
	})

	timer := time.NewTimer(s.config.DispatchTimeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrUnavailable
	}
}

// register adds c and queues its snapshot. It runs on the loop.
func (s *Server) register(c *client) bool {
	snapshot := SnapshotFrame{Type: FrameSnapshot, Root: s.doc.Snapshot(s.root)}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || c.abandoned {
		return false
	}
	snapshot.Seq = s.seq
	data, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Error("encode snapshot", "error", err)
		return false
	}
	s.clients[c] = struct{}{}
	c.enqueue(data)
	return true
}

// abandon marks c as given up on and drops it if a late register already
// added it.
func (s *Server) abandon(c *client) {
	s.mu.Lock()
	c.abandoned = true
	delete(s.clients, c)
	s.mu.Unlock()
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
}

// broadcast sends a flushed batch to every client. It runs on the loop.
func (s *Server) broadcast(ops []dom.Op) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	if len(s.clients) == 0 {
		return
	}
	data, err := json.Marshal(OpsFrame{Type: FrameOps, Seq: s.seq, Ops: ops})
	if err != nil {
		s.logger.Error("encode ops", "error", err)
		return
	}
	for c := range s.clients {
		if !c.enqueue(data) {
			s.logger.Warn("client too slow, disconnecting", "queue", s.config.SendQueue)
			delete(s.clients, c)
			c.close()
		}
	}
}

// fire delivers a client event to the live node. It runs on the loop.
func (s *Server) fire(ev EventFrame) {
	h, ok := s.doc.Lookup(ev.Node)
	if !ok {
		s.logger.Debug("event for unknown node", "node", ev.Node, "event", ev.Event)
		return
	}
	if !s.doc.Fire(h, dom.Event{Type: ev.Event, Target: h, Value: ev.Value}) {
		s.logger.Debug("no listener for event", "node", ev.Node, "event", ev.Event)
	}
}
