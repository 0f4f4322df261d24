package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInit(t *testing.T) {
	// Init must tolerate repeated calls (one per command in tests)
	Init("v1.0.0", "abc123", "2026-01-30")
	Init("v1.0.1", "def456", "2026-02-01")

	if got := testutil.CollectAndCount(AppInfo); got != 1 {
		t.Fatalf("AppInfo series = %d, want 1", got)
	}
	if got := testutil.ToFloat64(AppInfo.WithLabelValues("v1.0.1", "def456", "2026-02-01")); got != 1 {
		t.Errorf("AppInfo value = %v, want 1", got)
	}
}

func TestWriteFile(t *testing.T) {
	Init("v1.0.0", "abc123", "2026-01-30")
	path := filepath.Join(t.TempDir(), "calendar.prom")

	if err := WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metrics file: %v", err)
	}
	if !strings.Contains(string(data), "calendar_client_app_info") {
		t.Errorf("metrics file missing app_info:\n%s", data)
	}
}

func TestWriteFile_BadPath(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "missing", "dir", "calendar.prom"))
	if err == nil {
		t.Fatal("expected error for unwritable path")
	}
	if !strings.Contains(err.Error(), "write metrics") {
		t.Errorf("error = %v, want write metrics prefix", err)
	}
}
