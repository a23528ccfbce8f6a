// Package redirect implements the Redirect Resolver (C8, §4.8): alias
// cache → config lookup → literal ip:port[:arena] parse, with memoization
// of config-sourced aliases.
package redirect

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/gigamon-dev/subspace-go/core"
	"github.com/gigamon-dev/subspace-go/wire"
)

// Endpoint is a resolved redirect destination (§3 "Redirect entry").
type Endpoint struct {
	IP    net.IP
	Port  uint16
	Arena string // empty ⇒ no arena specified
}

// Config is the minimal config seam for `[Redirects]/<alias>` lookups
// (SPEC_FULL.md §4.12).
type Config interface {
	Get(arena, canonicalKey string) (string, bool)
}

// Source reports where a resolved endpoint came from, for the
// `redirect_resolved_total{source}` metric (SPEC_FULL.md §4.14).
type Source string

const (
	SourceCache   Source = "cache"
	SourceConfig  Source = "config"
	SourceLiteral Source = "literal"
)

// Resolver implements C8. The in-memory alias cache lives for the process
// (§3 "Redirect cache entries are created on first successful alias lookup
// and live for the process").
type Resolver struct {
	mu     sync.RWMutex
	cache  map[string]Endpoint
	Config Config

	// group collapses concurrent first-lookups of the same alias into a
	// single config.Get + cache fill, so a burst of reconnecting players
	// hitting an uncached alias at once doesn't hammer the config store
	// with duplicate reads.
	group singleflight.Group
}

// NewResolver returns an empty resolver; Config may be set after
// construction for tests that don't need it.
func NewResolver(cfg Config) *Resolver {
	return &Resolver{cache: make(map[string]Endpoint), Config: cfg}
}

// Resolve implements §4.8's lookup order: alias cache → global config
// `Redirects/<name>` → literal `ip:port[:arena]`.
func (r *Resolver) Resolve(dest string) (Endpoint, Source, error) {
	r.mu.RLock()
	if ep, ok := r.cache[dest]; ok {
		r.mu.RUnlock()
		return ep, SourceCache, nil
	}
	r.mu.RUnlock()

	if r.Config != nil {
		v, err, _ := r.group.Do(dest, func() (interface{}, error) {
			value, ok := r.Config.Get("", "Redirects/"+dest)
			if !ok {
				return nil, nil
			}
			ep, err := parseEndpoint(value)
			if err != nil {
				return nil, fmt.Errorf("redirect alias %q: %w", dest, err)
			}
			r.mu.Lock()
			r.cache[dest] = ep
			r.mu.Unlock()
			return ep, nil
		})
		if err != nil {
			return Endpoint{}, "", err
		}
		if v != nil {
			return v.(Endpoint), SourceConfig, nil
		}
	}

	ep, err := parseEndpoint(dest)
	if err != nil {
		return Endpoint{}, "", fmt.Errorf("redirect literal %q: %w", dest, err)
	}
	return ep, SourceLiteral, nil
}

// parseEndpoint strictly parses "ip:port" or "ip:port:arena".
func parseEndpoint(s string) (Endpoint, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 {
		return Endpoint{}, fmt.Errorf("expected ip:port[:arena]")
	}
	ip := net.ParseIP(parts[0]).To4()
	if ip == nil {
		return Endpoint{}, fmt.Errorf("invalid IPv4 address %q", parts[0])
	}
	port, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return Endpoint{}, fmt.Errorf("invalid port %q: %w", parts[1], err)
	}
	var arena string
	if len(parts) == 3 {
		arena = parts[2]
	}
	return Endpoint{IP: ip, Port: uint16(port), Arena: arena}, nil
}

// EncodeRedirectPacket builds the S2C_Redirect packet for ep (§4.8).
// arenaType is -1 when ep.Arena is empty, -3 otherwise.
func EncodeRedirectPacket(ep Endpoint, loginID uint32) []byte {
	arenaType := int16(-1)
	if ep.Arena != "" {
		arenaType = -3
	}
	ipv4 := binary.BigEndian.Uint32(ep.IP.To4())
	return wire.EncodeRedirect(ipv4, ep.Port, arenaType, ep.Arena, loginID)
}

// SendRedirect resolves dest and reliably sends the S2C_Redirect packet to
// the target (§4.8 "Emit S2C_Redirect ... reliably").
func (r *Resolver) SendRedirect(ctx context.Context, transport core.Transport, playerID int, dest string, loginID uint32) (Source, error) {
	ep, source, err := r.Resolve(dest)
	if err != nil {
		return "", err
	}
	transport.SendTo(ctx, playerID, EncodeRedirectPacket(ep, loginID), core.SendFlags{Reliable: true})
	return source, nil
}
