package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_WritesToFileOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "app.log")

	if err := Init(Config{Level: "debug", OutputFile: path, MaxSize: 1}); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	defer Close()

	Infof("hello %s", "wallet")
	WithField("module", "test").Warnf("warned")

	if got := GetCurrentLogFile(); got != path {
		t.Fatalf("current log file = %q, want %q", got, path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "hello wallet") || !strings.Contains(s, "warned") {
		t.Fatalf("log file missing lines: %q", s)
	}
}

func TestInit_BadLevelFallsBackToInfo(t *testing.T) {
	if err := Init(Config{Level: "nope"}); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	if Logger.GetLevel().String() != "info" {
		t.Fatalf("level = %s, want info", Logger.GetLevel())
	}
}
