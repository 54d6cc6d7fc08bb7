package config

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/canopy/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Frames.FPS != DefaultFPS {
		t.Errorf("Frames.FPS = %d, want %d", cfg.Frames.FPS, DefaultFPS)
	}
	if cfg.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Metrics.Path = %q, want %q", cfg.Metrics.Path, DefaultMetricsPath)
	}
	if cfg.Tracing.TracerName != DefaultTracerName {
		t.Errorf("Tracing.TracerName = %q", cfg.Tracing.TracerName)
	}
	if cfg.JournalEnabled() {
		t.Error("journal should be off by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if cfg.ReadTimeout() != 10*time.Second || cfg.RotateEvery() != 5*time.Minute {
		t.Errorf("durations = %v, %v", cfg.ReadTimeout(), cfg.RotateEvery())
	}
}

func TestLoadJSON(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := Load(tmpDir); err == nil {
		t.Error("Expected error for missing config")
	} else {
		var ce *errors.Error
		if !stderrors.As(err, &ce) || ce.Code != "E100" {
			t.Errorf("missing config error = %v", err)
		}
	}

	configJSON := `{
  "server": {"addr": ":9000", "sendQueue": 8},
  "frames": {"fps": 30},
  "log": {"level": "debug", "format": "json"},
  "metrics": {"enabled": true},
  "journal": {"dir": "journal"}
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, "canopy.json"), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}
	if !Exists(tmpDir) {
		t.Error("Exists should find canopy.json")
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.SendQueue != 8 {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Frames.FPS != 30 {
		t.Errorf("Frames.FPS = %d", cfg.Frames.FPS)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
	if cfg.Server.MaxMessageSize != DefaultMaxMessageSize {
		t.Errorf("unset fields should get defaults, MaxMessageSize = %d", cfg.Server.MaxMessageSize)
	}
	if !cfg.JournalEnabled() {
		t.Error("journal dir should enable the journal")
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), tmpDir)
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configYAML := `server:
  addr: "0.0.0.0:8080"
  writeTimeout: 2s
tracing:
  enabled: true
  tracerName: demo
journal:
  rotateEvery: 1m
  s3:
    bucket: journals
    prefix: demo/
    region: eu-west-1
    endpoint: http://localhost:9000
`
	if err := os.WriteFile(filepath.Join(tmpDir, "canopy.yml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != "0.0.0.0:8080" || cfg.WriteTimeout() != 2*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if !cfg.Tracing.Enabled || cfg.Tracing.TracerName != "demo" {
		t.Errorf("Tracing = %+v", cfg.Tracing)
	}
	want := S3Config{Bucket: "journals", Prefix: "demo/", Region: "eu-west-1", Endpoint: "http://localhost:9000"}
	if cfg.Journal.S3 != want {
		t.Errorf("Journal.S3 = %+v", cfg.Journal.S3)
	}
	if cfg.RotateEvery() != time.Minute {
		t.Errorf("RotateEvery = %v", cfg.RotateEvery())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadPrefersJSON(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, "canopy.json"), []byte(`{"frames":{"fps":24}}`), 0644)
	os.WriteFile(filepath.Join(tmpDir, "canopy.yaml"), []byte("frames:\n  fps: 48\n"), 0644)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Frames.FPS != 24 {
		t.Errorf("FPS = %d, canopy.json should win", cfg.Frames.FPS)
	}
}

func TestLoadFileErrors(t *testing.T) {
	tmpDir := t.TempDir()
	badJSON := filepath.Join(tmpDir, "bad.json")
	os.WriteFile(badJSON, []byte(`{"server":`), 0644)
	badYAML := filepath.Join(tmpDir, "bad.yaml")
	os.WriteFile(badYAML, []byte("server: [unclosed\n"), 0644)
	toml := filepath.Join(tmpDir, "canopy.toml")
	os.WriteFile(toml, []byte(""), 0644)

	tests := []struct {
		path string
		code string
	}{
		{badJSON, "E101"},
		{badYAML, "E101"},
		{toml, "E103"},
		{filepath.Join(tmpDir, "missing.json"), "E100"},
	}
	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			_, err := LoadFile(tt.path)
			var ce *errors.Error
			if !stderrors.As(err, &ce) {
				t.Fatalf("err = %v, want coded error", err)
			}
			if ce.Code != tt.code {
				t.Errorf("code = %s, want %s", ce.Code, tt.code)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"canopy.json", "canopy.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := New()
			cfg.Frames.FPS = 120
			cfg.Journal.S3.Bucket = "b"
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo: %v", err)
			}
			if cfg.Path() != path {
				t.Errorf("Path() = %q", cfg.Path())
			}

			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile: %v", err)
			}
			if loaded.Frames.FPS != 120 || loaded.Journal.S3.Bucket != "b" {
				t.Errorf("loaded = %+v", loaded)
			}

			loaded.Frames.FPS = 30
			if err := loaded.Save(); err != nil {
				t.Fatalf("Save: %v", err)
			}
		})
	}

	if err := New().Save(); err == nil {
		t.Error("Save without a path should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		fields []string
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, []string{"server.addr"}},
		{"bad timeout", func(c *Config) { c.Server.ReadTimeout = "soon" }, []string{"server.readTimeout"}},
		{"negative rotation", func(c *Config) { c.Journal.RotateEvery = "-1m" }, []string{"journal.rotateEvery"}},
		{"fps", func(c *Config) { c.Frames.FPS = 0 }, []string{"frames.fps"}},
		{"log", func(c *Config) { c.Log.Level = "loud"; c.Log.Format = "xml" }, []string{"log.format", "log.level"}},
		{"metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, []string{"metrics.path"}},
		{"s3 region", func(c *Config) { c.Journal.S3.Bucket = "b" }, []string{"journal.s3.region"}},
		{"queue", func(c *Config) { c.Server.SendQueue = -1; c.Server.MaxMessageSize = -1 }, []string{"server.maxMessageSize", "server.sendQueue"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()

			var verrs ValidationErrors
			if !stderrors.As(err, &verrs) {
				t.Fatalf("err = %v, want ValidationErrors", err)
			}
			if len(verrs) != len(tt.fields) {
				t.Fatalf("errors = %v, want fields %v", verrs, tt.fields)
			}
			for i, f := range tt.fields {
				if verrs[i].Field != f {
					t.Errorf("field[%d] = %q, want %q", i, verrs[i].Field, f)
				}
			}

			var ce *errors.Error
			if !stderrors.As(err, &ce) || ce.Code != "E102" {
				t.Errorf("err should carry code E102: %v", err)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := New()
	cfg.Log.Level = "warn"
	cfg.Log.Format = "json"
	logger := cfg.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"k":"v"`) {
		t.Errorf("json output = %q", out)
	}
}
