package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/clustergraph/pkg/controller"
	cgerrors "github.com/matzehuels/clustergraph/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graph.Path != "" {
		t.Errorf("default graph path should be empty, got %q", cfg.Graph.Path)
	}
	if len(cfg.Commands) != 0 {
		t.Errorf("default commands should be empty, got %d", len(cfg.Commands))
	}

	l := cfg.Layout
	if l.ChargeStrength != -15 || l.ChargeDistanceMax != 80 || l.LinkDistance != 50 {
		t.Errorf("unexpected force parameters: %+v", l)
	}
	if l.CooldownTicks != 100 {
		t.Errorf("expected cooldown ticks 100, got %d", l.CooldownTicks)
	}
	if l.Width != 800 || l.Height != 600 {
		t.Errorf("expected 800x600, got %dx%d", l.Width, l.Height)
	}
	if l.Background != "lightgray" {
		t.Errorf("expected lightgray background, got %q", l.Background)
	}
	if l.ZoomToFitMillis != 400 || l.LabelOffset != 16 {
		t.Errorf("unexpected zoom/label settings: %+v", l)
	}

	if cfg.Cache.Backend != CacheFile {
		t.Errorf("expected file cache backend, got %q", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL.Duration != 24*time.Hour {
		t.Errorf("expected ttl 24h, got %v", cfg.Cache.TTL)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected addr :8080, got %q", cfg.Server.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg")
	if dir := ConfigDir(); dir != "/tmp/test-xdg/clustergraph" {
		t.Errorf("expected /tmp/test-xdg/clustergraph, got %q", dir)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".config", "clustergraph")
	if dir := ConfigDir(); dir != expected {
		t.Errorf("expected %q, got %q", expected, dir)
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/test-cache")
	if dir := CacheDir(); dir != "/tmp/test-cache/clustergraph" {
		t.Errorf("expected /tmp/test-cache/clustergraph, got %q", dir)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load of missing file should not fail: %v", err)
	}
	if cfg.Layout.Width != 800 {
		t.Error("missing file should yield defaults")
	}
}

func TestLoadDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Error("expected defaults")
	}
}

func TestLoadPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[graph]
path = "graph.json"

[[commands]]
name = "animals"
cluster = "4"
label = "Hide/show animals"
key = "a"

[[commands]]
name = "plants"
cluster = "11"

[layout]
width = 1024

[cache]
backend = "redis"
ttl = "90m"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Graph.Path != "graph.json" {
		t.Errorf("graph.path = %q", cfg.Graph.Path)
	}
	want := []controller.Command{
		{Name: "animals", Cluster: "4", Label: "Hide/show animals", Key: "a"},
		{Name: "plants", Cluster: "11"},
	}
	if len(cfg.Commands) != len(want) {
		t.Fatalf("commands = %+v", cfg.Commands)
	}
	for i := range want {
		if cfg.Commands[i] != want[i] {
			t.Errorf("commands[%d] = %+v, want %+v", i, cfg.Commands[i], want[i])
		}
	}
	if cfg.Layout.Width != 1024 {
		t.Errorf("layout.width = %d", cfg.Layout.Width)
	}
	if cfg.Layout.Height != 600 {
		t.Errorf("layout.height should keep default, got %d", cfg.Layout.Height)
	}
	if cfg.Cache.Backend != CacheRedis {
		t.Errorf("cache.backend = %q", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL.Duration != 90*time.Minute {
		t.Errorf("cache.ttl = %v", cfg.Cache.TTL)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("cache.redis_addr should keep default, got %q", cfg.Cache.RedisAddr)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    cgerrors.Code
	}{
		{"malformed", "[graph\npath = 1", cgerrors.ErrCodeInvalidFormat},
		{"bad duration", "[cache]\nttl = \"soon\"", cgerrors.ErrCodeInvalidFormat},
		{"unknown key", "[graph]\nfile = \"x\"", cgerrors.ErrCodeInvalidInput},
		{"unknown backend", "[cache]\nbackend = \"memcached\"", cgerrors.ErrCodeInvalidInput},
		{"negative ttl", "[cache]\nttl = \"-1h\"", cgerrors.ErrCodeInvalidInput},
		{"bad format", "[render]\nformat = \"gif\"", cgerrors.ErrCodeInvalidInput},
		{"zero width", "[layout]\nwidth = 0", cgerrors.ErrCodeInvalidInput},
		{"bad command name", "[[commands]]\nname = \"Bad Name\"\ncluster = \"1\"", cgerrors.ErrCodeInvalidInput},
		{"command without cluster", "[[commands]]\nname = \"x\"", cgerrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := cgerrors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err: %v)", got, tt.code, err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Commands = controller.SampleCommands()
	cfg.Cache.Backend = CacheNone
	cfg.Cache.TTL = Duration{time.Hour}
	cfg.Render.Detailed = true

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Cache.Backend != CacheNone {
		t.Errorf("expected backend none, got %q", loaded.Cache.Backend)
	}
	if loaded.Cache.TTL.Duration != time.Hour {
		t.Errorf("expected ttl 1h, got %v", loaded.Cache.TTL)
	}
	if !loaded.Render.Detailed {
		t.Error("expected detailed render after load")
	}
	if len(loaded.Commands) != 3 || loaded.Commands[2].Cluster != "1" {
		t.Errorf("commands not round-tripped: %+v", loaded.Commands)
	}
}

func TestEnsureExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := EnsureExists(path); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file should exist: %v", err)
	}

	// Existing files are left alone.
	if err := os.WriteFile(path, []byte("[server]\naddr = \":9000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureExists(path); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("EnsureExists overwrote existing file: addr %q", cfg.Server.Addr)
	}
}
