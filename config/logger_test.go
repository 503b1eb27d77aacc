package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoggingPrepare_File(t *testing.T) {
	dir := t.TempDir()
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "normal", Destination: filepath.Join(dir, "vsdxc.log"), Mode: "overwrite"},
	}

	log, err := conf.Prepare(nil)
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	log.Debug("invisible")
	log.Info("visible")
	_ = log.Sync()

	data, err := os.ReadFile(conf.FileLogger.Destination)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if !strings.Contains(string(data), "visible") || strings.Contains(string(data), "invisible") {
		t.Errorf("unexpected log content: %q", data)
	}
	if _, err := os.Stat(conf.PanicLogName()); err != nil {
		t.Errorf("panic log is not prepared: %v", err)
	}
}

func TestLoggingPrepare_ReportForcesDebug(t *testing.T) {
	dir := t.TempDir()
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "none", Destination: filepath.Join(dir, "vsdxc.log")},
	}
	rpt := &Report{entries: make(map[string]entry)}

	log, err := conf.Prepare(rpt)
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	log.Debug("debug line")
	_ = log.Sync()

	data, err := os.ReadFile(conf.FileLogger.Destination)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if !strings.Contains(string(data), "debug line") {
		t.Errorf("debug output is missing: %q", data)
	}
	if _, ok := rpt.entries["final.log"]; !ok {
		t.Error("log is not stored in report")
	}
	if _, ok := rpt.entries["panic.log"]; !ok {
		t.Error("panic log is not stored in report")
	}
}

func TestLoggingPrepare_Nothing(t *testing.T) {
	conf := LoggingConfig{
		ConsoleLogger: LoggerConfig{Level: "none"},
		FileLogger:    LoggerConfig{Level: "none"},
	}
	log, err := conf.Prepare(nil)
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}
	if log.Core().Enabled(-1) {
		t.Error("logger must be disabled")
	}
}
