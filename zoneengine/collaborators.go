package zoneengine

import (
	"context"
	"io"
	"math/rand"
	"sync"

	"github.com/gigamon-dev/subspace-go/core"
)

// LoggingTransport is a dev-harness core.Transport: it doesn't deliver
// anything over a wire (real reliable-UDP delivery is out of scope, §1),
// it just counts bytes and reports them through Logger.Resource so
// cmd/zoneserver is runnable end to end without a real transport wired
// in yet.
type LoggingTransport struct {
	Logger interface {
		Resource(msg string, fields ...any)
	}
}

func (t *LoggingTransport) SendTo(ctx context.Context, playerID int, data []byte, flags core.SendFlags) {
	t.Logger.Resource("transport send", "player_id", playerID, "bytes", len(data), "reliable", flags.Reliable)
}

func (t *LoggingTransport) SendToSet(ctx context.Context, playerIDs []int, data []byte, flags core.SendFlags) {
	t.Logger.Resource("transport send_set", "recipients", len(playerIDs), "bytes", len(data), "reliable", flags.Reliable)
}

func (t *LoggingTransport) SendToSetWithAck(ctx context.Context, playerID int, data []byte, flags core.SendFlags, onAck func()) {
	t.Logger.Resource("transport send_with_ack", "player_id", playerID, "bytes", len(data))
	if onAck != nil {
		onAck()
	}
}

func (t *LoggingTransport) SendSized(ctx context.Context, playerID int, length int64, r core.SizedReader) error {
	n, err := io.Copy(io.Discard, r)
	t.Logger.Resource("transport send_sized", "player_id", playerID, "expected", length, "copied", n)
	return err
}

// SystemRNG is the production core.RNG, backed by math/rand the same way
// the teacher's bot AI draws randomness (server/bots.go), wrapped behind
// the interface so dispatch/shipfreq tests can inject a deterministic
// stub instead (§4.2, §9).
type SystemRNG struct {
	mu  sync.Mutex
	src *rand.Rand
}

// NewSystemRNG seeds a private *rand.Rand so concurrent zones don't
// contend on the package-level global source.
func NewSystemRNG(seed int64) *SystemRNG {
	return &SystemRNG{src: rand.New(rand.NewSource(seed))}
}

func (r *SystemRNG) Intn() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(r.src.Int63n(core.RandMax))
}

// StaticCapabilities is the minimal CapabilityManager backing (SPEC_FULL.md
// §6): a flat map of playerID -> granted capability names, populated from
// config at startup. Real deployments wire a real permission/group system
// (out of scope per §1); this repo ships just enough to make AuthVIE/
// chatcore's capability checks exercise real data end to end.
type StaticCapabilities struct {
	mu     sync.RWMutex
	grants map[int]map[string]bool
}

func NewStaticCapabilities() *StaticCapabilities {
	return &StaticCapabilities{grants: make(map[int]map[string]bool)}
}

func (s *StaticCapabilities) Grant(playerID int, capability string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grants[playerID] == nil {
		s.grants[playerID] = make(map[string]bool)
	}
	s.grants[playerID][capability] = true
}

func (s *StaticCapabilities) Revoke(playerID int, capability string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.grants[playerID], capability)
}

func (s *StaticCapabilities) HasCapability(playerID int, capability string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grants[playerID][capability]
}
