package authgate

import (
	"context"
	"net"
	"testing"

	"github.com/gigamon-dev/subspace-go/core"
)

type mapConfig map[string]string

func (c mapConfig) Get(arena, key string) (string, bool) {
	v, ok := c[key]
	return v, ok
}

type noopLogger struct{ calls int }

func (l *noopLogger) Malicious(playerID int, msg string, fields ...any) { l.calls++ }

type staticAddr struct{ addr string }

func (s staticAddr) RemoteAddr(playerID int) net.Addr {
	return &net.TCPAddr{IP: net.ParseIP(s.addr), Port: 1234}
}

func TestAuthenticateDeniesMissingEntry(t *testing.T) {
	log := &noopLogger{}
	g := &Gate{Config: mapConfig{}, Logger: log}
	allow, reason := g.Authenticate(context.Background(), 1, core.ClientVIE, "nobody")
	if allow || reason != "NoPermission2" {
		t.Fatalf("expected deny, got allow=%v reason=%q", allow, reason)
	}
	if log.calls != 1 {
		t.Fatalf("expected malicious log, got %d calls", log.calls)
	}
}

func TestAuthenticateAllowsAny(t *testing.T) {
	delegated := false
	g := &Gate{
		Config: mapConfig{"VIEnames/bob": "any"},
		Logger: &noopLogger{},
		Next:   func(ctx context.Context, playerID int) { delegated = true },
	}
	allow, _ := g.Authenticate(context.Background(), 1, core.ClientVIE, "bob")
	if !allow || !delegated {
		t.Fatalf("expected allow+delegate, got allow=%v delegated=%v", allow, delegated)
	}
}

func TestAuthenticateChecksAddressPrefix(t *testing.T) {
	g := &Gate{
		Config: mapConfig{"VIEnames/bob": "10.0."},
		Addr:   staticAddr{addr: "10.0.5.6"},
		Logger: &noopLogger{},
	}
	allow, _ := g.Authenticate(context.Background(), 1, core.ClientVIE, "bob")
	if !allow {
		t.Fatalf("expected allow for matching prefix")
	}

	g.Addr = staticAddr{addr: "192.168.1.1"}
	allow, reason := g.Authenticate(context.Background(), 1, core.ClientVIE, "bob")
	if allow || reason != "NoPermission2" {
		t.Fatalf("expected deny for non-matching prefix, got allow=%v reason=%q", allow, reason)
	}
}

func TestAuthenticateSkipsNonVIEKinds(t *testing.T) {
	delegated := false
	g := &Gate{Config: mapConfig{}, Logger: &noopLogger{}, Next: func(ctx context.Context, playerID int) { delegated = true }}
	allow, _ := g.Authenticate(context.Background(), 1, core.ClientContinuum, "anything")
	if !allow || !delegated {
		t.Fatalf("expected non-VIE clients to pass through, got allow=%v delegated=%v", allow, delegated)
	}
}
