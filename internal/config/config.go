package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vango-dev/canopy/internal/errors"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultAddr is the default listen address of the remote bridge.
	DefaultAddr = "localhost:8080"

	// DefaultFPS is the default frame rate renders are aligned to.
	DefaultFPS = 60

	// DefaultSendQueue is the default per-client outbound frame queue.
	DefaultSendQueue = 64

	// DefaultMaxMessageSize is the default limit for inbound client frames.
	DefaultMaxMessageSize = 64 * 1024

	// DefaultMetricsPath is the default metrics endpoint.
	DefaultMetricsPath = "/metrics"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "canopy"
)

// FileNames are the configuration file names Load looks for, in order.
var FileNames = []string{"canopy.json", "canopy.yaml", "canopy.yml"}

// Config represents the complete canopy configuration.
type Config struct {
	// Server configures the HTTP and WebSocket bridge.
	Server ServerConfig `json:"server" yaml:"server"`

	// Frames configures render frame timing.
	Frames FramesConfig `json:"frames" yaml:"frames"`

	// Log configures structured logging.
	Log LogConfig `json:"log" yaml:"log"`

	// Metrics configures Prometheus metrics.
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Tracing configures OpenTelemetry spans.
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`

	// Journal configures the mutation journal.
	Journal JournalConfig `json:"journal" yaml:"journal"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains remote bridge settings.
type ServerConfig struct {
	// Addr is the address to listen on.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`

	// ReadTimeout bounds reading a request, e.g. "10s".
	ReadTimeout string `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`

	// WriteTimeout bounds a single WebSocket write, e.g. "10s".
	WriteTimeout string `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`

	// SendQueue is how many frames may wait per client before it is
	// dropped as too slow.
	SendQueue int `json:"sendQueue,omitempty" yaml:"sendQueue,omitempty"`

	// MaxMessageSize limits inbound client frames in bytes.
	MaxMessageSize int64 `json:"maxMessageSize,omitempty" yaml:"maxMessageSize,omitempty"`
}

// FramesConfig contains render timing settings.
type FramesConfig struct {
	// FPS is the frame rate renders are coalesced to.
	FPS int `json:"fps,omitempty" yaml:"fps,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled serves metrics on Path.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Path is the metrics endpoint.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Namespace overrides the metric name prefix.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled records update and render spans with the global tracer
	// provider.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// TracerName is the instrumentation name spans are recorded under.
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// JournalConfig contains mutation journal settings. The journal is off
// unless Dir or S3.Bucket is set.
type JournalConfig struct {
	// Dir is the directory journal files are written to.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// RotateEvery is how often the S3 journal uploads an object, e.g. "5m".
	RotateEvery string `json:"rotateEvery,omitempty" yaml:"rotateEvery,omitempty"`

	// S3 uploads the journal to a bucket.
	S3 S3Config `json:"s3,omitempty" yaml:"s3,omitempty"`
}

// S3Config locates the journal bucket.
type S3Config struct {
	Bucket   string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region   string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from the first of FileNames found in dir.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E100").
		WithDetail("No canopy.json, canopy.yaml or canopy.yml found in " + dir).
		WithSuggestion("Create one, or run without --config to use defaults")
}

// LoadFile reads configuration from the specified file path. The format
// follows the file extension.
func LoadFile(path string) (*Config, error) {
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E100").
				WithDetail("No configuration file at " + path)
		}
		return nil, errors.New("E101").Wrap(err)
	}

	cfg := &Config{}
	switch format {
	case "json":
		err = json.Unmarshal(data, cfg)
	case "yaml":
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("E101").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid " + strings.ToUpper(format))
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// Exists checks if a configuration file exists in dir.
func Exists(dir string) bool {
	for _, name := range FileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path in the format its extension
// names.
func (c *Config) SaveTo(path string) error {
	format, err := formatOf(path)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case "json":
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	case "yaml":
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return errors.New("E104").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E104").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

func formatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	}
	return "", errors.New("E103").
		WithDetail("Unrecognized extension on " + path)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	// Server
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "10s"
	}
	if c.Server.SendQueue == 0 {
		c.Server.SendQueue = DefaultSendQueue
	}
	if c.Server.MaxMessageSize == 0 {
		c.Server.MaxMessageSize = DefaultMaxMessageSize
	}

	// Frames
	if c.Frames.FPS == 0 {
		c.Frames.FPS = DefaultFPS
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	// Metrics
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "canopy"
	}

	// Tracing
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}

	// Journal
	if c.Journal.RotateEvery == "" {
		c.Journal.RotateEvery = "5m"
	}
}

// ValidationError describes one invalid configuration value.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every invalid value found by Validate.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (es ValidationErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks if the configuration is valid. The returned error wraps
// ValidationErrors.
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Server.Addr == "" {
		add("server.addr", "must not be empty")
	}
	for field, value := range map[string]string{
		"server.readTimeout":  c.Server.ReadTimeout,
		"server.writeTimeout": c.Server.WriteTimeout,
		"journal.rotateEvery": c.Journal.RotateEvery,
	} {
		if d, err := time.ParseDuration(value); err != nil || d <= 0 {
			add(field, "must be a positive duration, got %q", value)
		}
	}
	if c.Server.SendQueue < 1 {
		add("server.sendQueue", "must be at least 1")
	}
	if c.Server.MaxMessageSize < 1 {
		add("server.maxMessageSize", "must be at least 1")
	}
	if c.Frames.FPS < 1 || c.Frames.FPS > 1000 {
		add("frames.fps", "must be between 1 and 1000, got %d", c.Frames.FPS)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		add("log.level", "%v", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		add("log.format", "must be text or json, got %q", c.Log.Format)
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		add("metrics.path", "must start with /")
	}
	if s3 := c.Journal.S3; s3.Bucket != "" && s3.Region == "" {
		add("journal.s3.region", "is required when a bucket is set")
	}

	if len(errs) == 0 {
		return nil
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
	return errors.New("E102").
		WithDetail(errs.Error()).
		Wrap(errs)
}

// ReadTimeout returns Server.ReadTimeout parsed. Call Validate first.
func (c *Config) ReadTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.ReadTimeout)
	return d
}

// WriteTimeout returns Server.WriteTimeout parsed. Call Validate first.
func (c *Config) WriteTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.WriteTimeout)
	return d
}

// RotateEvery returns Journal.RotateEvery parsed. Call Validate first.
func (c *Config) RotateEvery() time.Duration {
	d, _ := time.ParseDuration(c.Journal.RotateEvery)
	return d
}

// JournalEnabled reports whether any journal sink is configured.
func (c *Config) JournalEnabled() bool {
	return c.Journal.Dir != "" || c.Journal.S3.Bucket != ""
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown level %q", s)
	}
	return l, nil
}

// NewLogger builds the logger described by Log, writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
