package zap

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unkn0wn-root/memocache"
)

func TestFieldsReachZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := ZapLogger{L: zap.New(core)}

	l.Warn("compute failed", memocache.Fields{"key": "cached_result", "err": errors.New("boom")})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Level != zapcore.WarnLevel || e.Message != "compute failed" {
		t.Fatalf("unexpected entry: %v %q", e.Level, e.Message)
	}
	ctx := e.ContextMap()
	if ctx["key"] != "cached_result" || ctx["err"] != "boom" {
		t.Fatalf("unexpected fields: %v", ctx)
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	l, err := New("debug")
	if err != nil {
		t.Fatal(err)
	}
	if !l.L.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug level should be enabled")
	}
}
