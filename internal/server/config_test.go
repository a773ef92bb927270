package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iwvelando/rental-portfolio/pkg/constants"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address == "" {
		t.Fatalf("expected default address, got empty")
	}
	if cfg.UploadSizeBytes() <= 0 {
		t.Fatalf("expected positive default max upload size, got %d", cfg.UploadSizeBytes())
	}
	if cfg.Logging.Level != "" || cfg.Logging.Format != "" || cfg.Logging.OutputFile != "" {
		t.Fatalf("expected empty logging defaults, got %+v", cfg.Logging)
	}
	if cfg.Tracing.ServiceName != constants.DefaultServiceName || cfg.Tracing.Endpoint != "" {
		t.Fatalf("expected in-process tracing defaults, got %+v", cfg.Tracing)
	}
	if cfg.AnalysisConfigPath() != "" {
		t.Fatalf("expected no analysis config, got %s", cfg.AnalysisConfigPath())
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server-config.yaml")

	contents := []byte(`address: 127.0.0.1:9000
maxUploadSize: 2M
logging:
  level: debug
  format: console
  outputFile: /tmp/server.log
analysisConfig: config.yaml
tracing:
  endpoint: collector:4318
  insecure: true
`)
	if err := os.WriteFile(path, contents, 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != "127.0.0.1:9000" {
		t.Fatalf("expected address override, got %s", cfg.Address)
	}
	if cfg.UploadSizeBytes() != 2*1024*1024 {
		t.Fatalf("expected max upload override, got %d", cfg.UploadSizeBytes())
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected logging level debug, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("expected logging format console, got %s", cfg.Logging.Format)
	}
	if cfg.Logging.OutputFile != "/tmp/server.log" {
		t.Fatalf("expected logging outputFile /tmp/server.log, got %s", cfg.Logging.OutputFile)
	}
	if cfg.AnalysisConfigPath() != filepath.Join(dir, "config.yaml") {
		t.Fatalf("expected analysis config beside the server config, got %s", cfg.AnalysisConfigPath())
	}
	if cfg.Tracing.Endpoint != "collector:4318" || !cfg.Tracing.Insecure {
		t.Fatalf("expected tracing override, got %+v", cfg.Tracing)
	}
	if cfg.Tracing.ServiceName != constants.DefaultServiceName {
		t.Fatalf("expected default service name, got %s", cfg.Tracing.ServiceName)
	}
}

func TestLoadConfigInvalidYaml(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")

	if err := os.WriteFile(path, []byte("maxUploadSize: invalid"), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for invalid YAML but got nil")
	}
}

func TestAnalysisConfigPath(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		expected string
	}{
		{name: "unset", cfg: Config{dir: "/etc/portfolio"}, expected: ""},
		{name: "relative", cfg: Config{AnalysisConfig: "config.yaml", dir: "/etc/portfolio"}, expected: filepath.Join("/etc/portfolio", "config.yaml")},
		{name: "absolute", cfg: Config{AnalysisConfig: "/srv/config.yaml", dir: "/etc/portfolio"}, expected: "/srv/config.yaml"},
		{name: "no config file", cfg: Config{AnalysisConfig: " config.yaml "}, expected: "config.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.AnalysisConfigPath(); got != tt.expected {
				t.Errorf("AnalysisConfigPath() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestSetUploadSizeBytes(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	cfg.SetUploadSizeBytes(4096)
	if cfg.UploadSizeBytes() != 4096 || cfg.MaxUploadSize != "4096" {
		t.Errorf("expected 4096 byte limit, got %d (%s)", cfg.UploadSizeBytes(), cfg.MaxUploadSize)
	}

	cfg.SetUploadSizeBytes(0)
	if cfg.UploadSizeBytes() != 4096 {
		t.Errorf("non-positive sizes should be ignored, got %d", cfg.UploadSizeBytes())
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input     string
		expected  int64
		expectErr bool
	}{
		{input: "", expected: constants.DefaultMaxUploadSizeBytes},
		{input: "1024", expected: 1024},
		{input: "512b", expected: 512},
		{input: "256K", expected: 256 * 1024},
		{input: "1m", expected: 1024 * 1024},
		{input: "3MB", expected: 3 * 1024 * 1024},
		{input: "2G", expected: 2 * 1024 * 1024 * 1024},
		{input: "  4096   ", expected: 4096},
		{input: "1TB", expectErr: true},
		{input: "abc", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if (err != nil) != tt.expectErr {
				t.Fatalf("ParseSize(%q) error = %v, expectErr %v", tt.input, err, tt.expectErr)
			}
			if !tt.expectErr && got != tt.expected {
				t.Errorf("ParseSize(%q) = %d, expected %d", tt.input, got, tt.expected)
			}
		})
	}
}
