package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/whistle/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew(t *testing.T) {
	cfg := New()

	if time.Duration(cfg.Socket.BaseDelay) != time.Second {
		t.Errorf("Socket.BaseDelay = %v, want 1s", cfg.Socket.BaseDelay)
	}
	if cfg.Socket.MaxDelay != 0 {
		t.Errorf("Socket.MaxDelay = %v, want 0", cfg.Socket.MaxDelay)
	}
	if time.Duration(cfg.Events.DebounceDelay) != 250*time.Millisecond {
		t.Errorf("Events.DebounceDelay = %v, want 250ms", cfg.Events.DebounceDelay)
	}
	if cfg.Log.Level != DefaultLogLevel || cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadJSONC(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(dir); !errors.HasCode(err, "W102") {
		t.Fatalf("Load(empty dir) = %v, want W102", err)
	}

	writeFile(t, dir, "whistle.json", `{
  // comments are allowed
  "socket": {
    "url": "ws://localhost:4000/ws",
    "baseDelay": "500ms",
    "maxDelay": 30000,
  },
  "events": {"debounceDelay": "100ms"},
  "log": {"level": "debug", "format": "json"},
  "debug": {"addr": "127.0.0.1:9090"}
}`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Socket.URL != "ws://localhost:4000/ws" {
		t.Errorf("Socket.URL = %q", cfg.Socket.URL)
	}
	if time.Duration(cfg.Socket.BaseDelay) != 500*time.Millisecond {
		t.Errorf("Socket.BaseDelay = %v, want 500ms", cfg.Socket.BaseDelay)
	}
	if time.Duration(cfg.Socket.MaxDelay) != 30*time.Second {
		t.Errorf("Socket.MaxDelay = %v, want 30s", cfg.Socket.MaxDelay)
	}
	if time.Duration(cfg.Socket.WriteTimeout) != 10*time.Second {
		t.Errorf("Socket.WriteTimeout = %v, want default 10s", cfg.Socket.WriteTimeout)
	}
	if cfg.Debug.Addr != "127.0.0.1:9090" {
		t.Errorf("Debug.Addr = %q", cfg.Debug.Addr)
	}
	if cfg.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), dir)
	}

	sc := cfg.ClientConfig()
	if sc.BaseDelay != 500*time.Millisecond || sc.DebounceDelay != 100*time.Millisecond || sc.MaxDelay != 30*time.Second {
		t.Errorf("ClientConfig() = %+v", sc)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "whistle.yaml", `
socket:
  url: wss://example.com/ws
  baseDelay: 2s
  maxMessageSize: 4096
events:
  debounceDelay: 50
log:
  level: warn
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if time.Duration(cfg.Socket.BaseDelay) != 2*time.Second {
		t.Errorf("Socket.BaseDelay = %v, want 2s", cfg.Socket.BaseDelay)
	}
	if cfg.Socket.MaxMessageSize != 4096 {
		t.Errorf("Socket.MaxMessageSize = %d", cfg.Socket.MaxMessageSize)
	}
	if time.Duration(cfg.Events.DebounceDelay) != 50*time.Millisecond {
		t.Errorf("Events.DebounceDelay = %v, want 50ms", cfg.Events.DebounceDelay)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		code    string
	}{
		{"missing", "", "", "W102"},
		{"bad json", "whistle.json", `{"socket": `, "W100"},
		{"bad yaml", "whistle.yaml", "socket: [", "W100"},
		{"bad duration", "whistle.json", `{"socket": {"baseDelay": "soon"}}`, "W100"},
		{"unsupported", "whistle.toml", "x = 1", "W103"},
		{"negative delay", "whistle.json", `{"socket": {"maxDelay": "-1s"}}`, "W101"},
		{"bad url", "whistle.json", `{"socket": {"url": "http://example.com"}}`, "W101"},
		{"bad level", "whistle.json", `{"log": {"level": "loud"}}`, "W101"},
		{"bad format", "whistle.json", `{"log": {"format": "xml"}}`, "W101"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "absent.json")
			if tt.file != "" {
				path = writeFile(t, dir, tt.file, tt.content)
			}
			_, err := LoadFile(path)
			if !errors.HasCode(err, tt.code) {
				t.Errorf("LoadFile() = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "whistle.yml", "log:\n  level: info\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot error: %v", err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("FindProjectRoot = %q, want %q", got, want)
	}
	if !Exists(root) || Exists(nested) {
		t.Error("Exists mismatch")
	}
}

func TestNewLogger(t *testing.T) {
	cfg := New()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "hidden") {
		t.Error("info should be filtered at warn level")
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("json handler output %q: %v", out, err)
	}
	if rec["msg"] != "shown" || rec["k"] != "v" {
		t.Errorf("record = %v", rec)
	}
}

func TestDurationJSON(t *testing.T) {
	data, err := json.Marshal(Duration(1500 * time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"1.5s"` {
		t.Errorf("Marshal = %s, want \"1.5s\"", data)
	}

	var d Duration
	if err := json.Unmarshal([]byte(`"2m"`), &d); err != nil || time.Duration(d) != 2*time.Minute {
		t.Errorf("Unmarshal(2m) = %v, %v", d, err)
	}
	if err := json.Unmarshal([]byte(`true`), &d); err == nil {
		t.Error("Unmarshal(true) should fail")
	}
}
