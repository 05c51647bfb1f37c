package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestInitializeJSONFile(t *testing.T) {
	t.Cleanup(func() { _ = Initialize(DefaultConfig()) })

	path := filepath.Join(t.TempDir(), "margin.log")
	if err := Initialize(Config{Level: "warn", Format: "json", Output: path}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	Info("below level")
	Warn("catalog missing", zap.String("table", "list_prices"))
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "below level") {
		t.Fatalf("info entry should be filtered at warn level:\n%s", out)
	}
	for _, expected := range []string{`"msg":"catalog missing"`, `"table":"list_prices"`, `"timestamp"`} {
		if !strings.Contains(out, expected) {
			t.Fatalf("expected log to contain %s, got:\n%s", expected, out)
		}
	}
}

func TestInitializeUnknownLevelFallsBackToInfo(t *testing.T) {
	t.Cleanup(func() { _ = Initialize(DefaultConfig()) })

	if err := Initialize(Config{Level: "loud", Format: "console", Output: "stderr"}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !Logger.Core().Enabled(zap.InfoLevel) || Logger.Core().Enabled(zap.DebugLevel) {
		t.Fatalf("expected info level")
	}
}
