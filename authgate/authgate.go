// Package authgate implements AuthVIE (C7, §4.7): a login gate for VIE-kind
// clients that checks the player's name against a configured IP prefix.
// Grounded on the teacher's name/IP based idiom elsewhere in server/ —
// string-prefix checks rather than CIDR math, matching the original
// "any | ip-prefix-string" config format.
package authgate

import (
	"context"
	"net"
	"strings"

	"github.com/gigamon-dev/subspace-go/core"
)

// Config is the minimal config-store seam AuthVIE needs (SPEC_FULL.md
// §4.12, canonical key `VIEnames/<name>`).
type Config interface {
	Get(arena, canonicalKey string) (string, bool)
}

// Logger is the minimal logging seam for the malicious-deny path (§4.7).
type Logger interface {
	Malicious(playerID int, msg string, fields ...any)
}

// Gate implements §4.7. Next is the delegate auth in the chain; it's only
// called when this gate allows (§4.7 "Always delegate to the next auth in
// the chain on allow"). On deny, the caller is responsible for completing
// the auth request with the returned reason — this gate itself only logs
// the malicious attempt, it doesn't own request completion.
type Gate struct {
	Config Config
	Addr   core.AddrOf
	Logger Logger
	Next   func(ctx context.Context, playerID int)
}

// Authenticate implements §4.7's full decision: deny with NoPermission2 if
// the name has no configured entry or it's whitespace; allow unconditionally
// if the value is case-insensitively "any"; otherwise require the player's
// address to start with the configured prefix.
func (g *Gate) Authenticate(ctx context.Context, playerID int, kind core.ClientKind, loginName string) (allow bool, reason string) {
	if kind != core.ClientVIE {
		g.delegate(ctx, playerID)
		return true, ""
	}

	value, ok := g.Config.Get("", "VIEnames/"+loginName)
	if !ok || strings.TrimSpace(value) == "" {
		g.Logger.Malicious(playerID, "VIE login denied: no VIEnames entry", "name", loginName)
		return false, "NoPermission2"
	}

	if strings.EqualFold(value, "any") {
		g.delegate(ctx, playerID)
		return true, ""
	}

	addr := ""
	if g.Addr != nil {
		if a := g.Addr.RemoteAddr(playerID); a != nil {
			addr = addrText(a)
		}
	}
	if strings.HasPrefix(addr, value) {
		g.delegate(ctx, playerID)
		return true, ""
	}

	g.Logger.Malicious(playerID, "VIE login denied: address prefix mismatch", "name", loginName, "addr", addr)
	return false, "NoPermission2"
}

func (g *Gate) delegate(ctx context.Context, playerID int) {
	if g.Next != nil {
		g.Next(ctx, playerID)
	}
}

func addrText(a net.Addr) string {
	host, _, err := net.SplitHostPort(a.String())
	if err != nil {
		return a.String()
	}
	return host
}
