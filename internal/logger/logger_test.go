package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/samvad-hq/apicall/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitWritesJSONAtConfiguredLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := initWithWriter(&config.Config{AppName: "apicall", Env: "test", LogLevel: "warn"}, &buf)
	if err != nil {
		t.Fatalf("initWithWriter: %v", err)
	}
	t.Cleanup(func() { S = nil })

	log.InfoObj("dropped", "k", 1)
	log.WarnObj("kept", "k", 2)
	_ = log.Zap().Sync()

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info entry should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"kept"`) || !strings.Contains(out, `"app":"apicall"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestZapLoggerFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := New(zap.New(core))

	log.ErrorObj("call failed", "failure", map[string]any{"status": 404})

	entries := logs.FilterMessage("call failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if _, ok := entries[0].ContextMap()["failure"]; !ok {
		t.Fatalf("missing failure field: %#v", entries[0].ContextMap())
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	if got := parseLevel("verbose"); got != zap.InfoLevel {
		t.Fatalf("expected info, got %v", got)
	}
}
