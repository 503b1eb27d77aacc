package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rupor-github/gencfg"

	"vsdxc/common"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	doc := cfg.Document
	if doc.FixZip || doc.StrictMasters || doc.FileNameTransliterate {
		t.Errorf("Unexpected boolean defaults: %+v", doc)
	}
	if doc.MaxThemes != 64 {
		t.Errorf("MaxThemes = %d, want 64", doc.MaxThemes)
	}
	if doc.OutputFormat != common.OutputFmtText {
		t.Errorf("OutputFormat = %v, want text", doc.OutputFormat)
	}
	if doc.OutputNameTemplate != "" {
		t.Errorf("OutputNameTemplate = %q, want empty", doc.OutputNameTemplate)
	}
	if cfg.Logging.ConsoleLogger.Level != "normal" || cfg.Logging.FileLogger.Level != "none" {
		t.Errorf("Unexpected logging defaults: %+v", cfg.Logging)
	}
	if len(cfg.Reporting.Destination) == 0 {
		t.Error("Reporting destination must have default")
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	path := writeConfig(t, `version: 1
document:
  fix_zip: true
  strict_masters: true
  max_themes: 8
  output_format: yaml
  output_name_template: "{{ .Base }}-{{ .Pages }}"
  file_name_transliterate: true
logging:
  console:
    level: debug
  file:
    level: debug
    destination: `+filepath.Join(t.TempDir(), "test.log")+`
    mode: append
reporting:
  destination: `+filepath.Join(t.TempDir(), "report.zip")+`
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	doc := cfg.Document
	if !doc.FixZip || !doc.StrictMasters || !doc.FileNameTransliterate {
		t.Errorf("Boolean values were not loaded: %+v", doc)
	}
	if doc.MaxThemes != 8 {
		t.Errorf("MaxThemes = %d, want 8", doc.MaxThemes)
	}
	if doc.OutputFormat != common.OutputFmtYaml {
		t.Errorf("OutputFormat = %v, want yaml", doc.OutputFormat)
	}
	// template fields are never expanded during load
	if doc.OutputNameTemplate != "{{ .Base }}-{{ .Pages }}" {
		t.Errorf("OutputNameTemplate = %q", doc.OutputNameTemplate)
	}
	if cfg.Logging.FileLogger.Mode != "append" {
		t.Errorf("Logging mode = %q, want append", cfg.Logging.FileLogger.Mode)
	}
}

func TestLoadConfiguration_MergeWithDefaults(t *testing.T) {
	path := writeConfig(t, `version: 1
document:
  strict_masters: true
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if !cfg.Document.StrictMasters {
		t.Error("Expected StrictMasters to be true from config file")
	}
	if cfg.Document.MaxThemes != 64 {
		t.Errorf("MaxThemes should keep default value, got %d", cfg.Document.MaxThemes)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "invalid yaml",
			content: `version: 1
document:
  fix_zip: true
  invalid indent
`,
		},
		{
			name: "unknown field",
			content: `version: 1
unknown_field: value
`,
		},
		{
			name:    "bad version",
			content: "version: 2\n",
		},
		{
			name: "max themes out of range",
			content: `version: 1
document:
  max_themes: 0
`,
		},
		{
			name: "unknown output format",
			content: `version: 1
document:
  output_format: svg
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.content)); err == nil {
				t.Error("Expected error")
			}
		})
	}

	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {
		// Options are opaque, just test that we can pass them
	}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Prepare() returned empty data")
	}
	if !strings.Contains(string(data), "strict_masters") {
		t.Error("Prepared config misses document section")
	}
	if _, err := unmarshalConfig(data, &Config{}, true); err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg := &Config{
		Version: 1,
		Document: DocumentConfig{
			StrictMasters: true,
			MaxThemes:     3,
			OutputFormat:  common.OutputFmtYaml,
		},
	}

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if !strings.Contains(string(data), "output_format: yaml") {
		t.Errorf("Enum is not dumped as text:\n%s", data)
	}

	cfg2, err := unmarshalConfig(data, &Config{}, false)
	if err != nil {
		t.Fatalf("Dumped config cannot be loaded: %v", err)
	}
	if cfg2.Document != cfg.Document {
		t.Errorf("Document mismatch after dump/load: got %+v, want %+v", cfg2.Document, cfg.Document)
	}
}

func TestUnmarshalConfig_WrapsValidationError(t *testing.T) {
	_, err := unmarshalConfig([]byte("version: 99\n"), &Config{}, true)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "validat") {
		t.Errorf("expected error to mention validation, got: %v", err)
	}
	if errors.Unwrap(err) == nil {
		t.Errorf("expected wrapped error, got bare error: %v", err)
	}
}

func TestCleanFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "drawing", want: "drawing"},
		{in: "a" + string(os.PathSeparator) + "b", want: "ab"},
		{in: string(os.PathSeparator), want: badFileName},
		{in: "", want: badFileName},
	}
	for _, tt := range tests {
		if got := CleanFileName(tt.in); got != tt.want {
			t.Errorf("CleanFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
