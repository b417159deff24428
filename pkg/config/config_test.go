package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	apperr "github.com/matzehuels/localitree/pkg/errors"
	"github.com/matzehuels/localitree/pkg/render/nodelink"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvSource, EnvConfig, EnvRedisURL, EnvAddr, EnvTimeout} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), false)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"), true)
	if !apperr.Is(err, apperr.ErrCodeNotFound) {
		t.Errorf("Load() error = %v, want NOT_FOUND", err)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
source = "http://localhost:8000/"
formats = ["svg", "html"]
depth_spacing = 120
timeout = "30s"

[canvas]
width = 4000

[canvas.margin]
top = 50

[server]
redis_url = "redis://localhost:6379/1"
`)

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := Default()
	want.Source = "http://localhost:8000/"
	want.Formats = []string{"svg", "html"}
	want.DepthSpacing = 120
	want.Timeout = 30 * time.Second
	want.Canvas.Width = 4000
	want.Canvas.Margin.Top = 50
	want.Server.RedisURL = "redis://localhost:6379/1"

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadPalette(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[palette]
fallback = "#eeeeee"

[[palette.thresholds]]
above = 50
color = "#000000"
`)

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := nodelink.Palette{
		Thresholds: []nodelink.Threshold{{Above: 50, Color: "#000000"}},
		Fallback:   "#eeeeee",
	}
	if diff := cmp.Diff(want, cfg.Palette); diff != "" {
		t.Errorf("Palette mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", `source = `},
		{"unknown key", `colour = "red"`},
		{"bad format", `formats = ["pdf"]`},
		{"bad engine", `engine = "d3"`},
		{"negative timeout", `timeout = "-1s"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeConfig(t, tt.content), true)
			if !apperr.Is(err, apperr.ErrCodeInvalidConfig) {
				t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvSource:   "http://example.com/",
		EnvRedisURL: "redis://cache:6379/0",
		EnvAddr:     ":9090",
		EnvTimeout:  "5s",
	}
	cfg := Default()
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("ApplyEnv() error: %v", err)
	}

	if cfg.Source != "http://example.com/" || cfg.Server.RedisURL != "redis://cache:6379/0" ||
		cfg.Server.Addr != ":9090" || cfg.Timeout != 5*time.Second {
		t.Errorf("ApplyEnv() = %+v", cfg)
	}

	env[EnvTimeout] = "soon"
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); !apperr.Is(err, apperr.ErrCodeInvalidConfig) {
		t.Errorf("ApplyEnv() error = %v, want INVALID_CONFIG", err)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvSource, "http://env/")
	path := writeConfig(t, `source = "http://file/"`)

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Source != "http://env/" {
		t.Errorf("Source = %q, want env value", cfg.Source)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv(EnvSource)
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(EnvSource+"=http://dotenv/\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error: %v", err)
	}
	if got := os.Getenv(EnvSource); got != "http://dotenv/" {
		t.Errorf("%s = %q, want value from .env", EnvSource, got)
	}

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("LoadDotEnv(missing) error: %v", err)
	}
}

func TestPath(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	path, explicit, err := Path()
	if err != nil {
		t.Fatalf("Path() error: %v", err)
	}
	if path != filepath.Join("/tmp/xdg", appName, "config.toml") || explicit {
		t.Errorf("Path() = %q, %v", path, explicit)
	}

	t.Setenv(EnvConfig, "/etc/localitree.toml")
	path, explicit, _ = Path()
	if path != "/etc/localitree.toml" || !explicit {
		t.Errorf("Path() = %q, %v; want env path, explicit", path, explicit)
	}
}

func TestPipelineOptions(t *testing.T) {
	cfg := Default()
	cfg.Source = "http://example.com/"
	opts := cfg.PipelineOptions()

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("options from defaults should validate: %v", err)
	}
	if opts.Canvas != nodelink.DefaultCanvas() || opts.DepthSpacing != 100 {
		t.Errorf("PipelineOptions() = %+v", opts)
	}
}
