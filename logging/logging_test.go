package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return &Logger{base: zap.New(core)}, logs
}

func TestMaliciousAttachesPlayerIDAndFields(t *testing.T) {
	l, logs := newObserved()
	l.Malicious(42, "forged position", "delta", 17)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["player_id"] != int64(42) {
		t.Fatalf("expected player_id=42, got %v", ctx["player_id"])
	}
	if ctx["component"] != "malicious" {
		t.Fatalf("expected component=malicious, got %v", ctx["component"])
	}
	if ctx["delta"] != int64(17) {
		t.Fatalf("expected delta=17, got %v", ctx["delta"])
	}
}

func TestConfigErrorOddFieldCountIsDropped(t *testing.T) {
	l, logs := newObserved()
	l.ConfigError("bad key", "onlykey")

	ctx := logs.All()[0].ContextMap()
	if len(ctx) != 1 {
		t.Fatalf("expected only the component field, got %v", ctx)
	}
}

func TestNewBuildsFromLevelString(t *testing.T) {
	l, err := New(Config{Level: "debug", Format: "console"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Sync(); err != nil {
		t.Logf("sync returned %v (expected for stdout on some platforms)", err)
	}
}
