package core

import (
	"context"
	"net"
	"time"
)

// SendFlags mirrors the reliability/priority bits the transport collaborator
// accepts on every outbound send (§6 "the reliable-UDP transport ... is a
// collaborator"). The dispatcher only ever sets these; it never interprets
// how the transport schedules them.
type SendFlags struct {
	Reliable bool
	Priority int8 // e.g. -1 for ModChat/PubMacro per §4.5
}

// Transport is the out-of-scope reliable-UDP collaborator (§1 Non-goals,
// §6). Real delivery, retry and congestion control live outside this
// module; everything here only calls through this seam.
type Transport interface {
	// SendTo delivers data to a single player with the given flags.
	SendTo(ctx context.Context, playerID int, data []byte, flags SendFlags)
	// SendToSet delivers data to every id in playerIDs with the given flags.
	SendToSet(ctx context.Context, playerIDs []int, data []byte, flags SendFlags)
	// SendToSetWithAck is like SendTo but invokes onAck once the transport
	// has confirmed reliable delivery, per §5's ShipChange/during_change
	// ordering guarantee.
	SendToSetWithAck(ctx context.Context, playerID int, data []byte, flags SendFlags, onAck func())
	// SendSized streams length bytes read from r to one player as a
	// reliable sized transfer (§4.11 File Send).
	SendSized(ctx context.Context, playerID int, length int64, r SizedReader) error
}

// SizedReader is the minimal file-like collaborator §4.11 streams from.
type SizedReader interface {
	Read(p []byte) (int, error)
	Close() error
}

// RNG is the out-of-scope randomness collaborator. Real deployments seed
// it from crypto/math rand; tests supply a deterministic stub so radar
// sampling and antiwarp thresholds are reproducible (§4.2, §9).
type RNG interface {
	// Intn returns a uniform value in [0, RandMax].
	Intn() int64
}

// CapabilityManager answers permission questions (§4.5 "mod-chat prefix and
// capability granted", §4.7 AuthVIE delegation target).
type CapabilityManager interface {
	HasCapability(playerID int, capability string) bool
}

// Capability name constants referenced by chat/auth (§4.5, §4.7).
const (
	CapModChat            = "modchat"
	CapAllCmd             = "allcmd"
	CapCanSpam            = "cmd_canspam"
	CapBypassLock         = "bypasslock"
	CapInvisibleSpectator = "seeinvisiblespec"
)

// CommandManager is the out-of-scope command parser/dispatcher (§1, §4.5).
type CommandManager interface {
	RunCommand(ctx context.Context, line string, source int, target CommandTarget)
}

// CommandTarget distinguishes the four addressing modes §4.5 resolves a
// chat command against.
type CommandTarget struct {
	Kind      TargetKind
	PlayerID  int // valid when Kind == TargetPlayer
	Freq      int // valid when Kind == TargetFreq
	Arena     string
}

type TargetKind int

const (
	TargetArena TargetKind = iota
	TargetFreq
	TargetPlayer
)

// FlagGame is the out-of-scope scoring collaborator consulted on death
// (§4.4 "query the flag game for how many flags will transfer").
type FlagGame interface {
	FlagsToTransfer(ctx context.Context, killerID, killedID int) int
}

// MapData is the out-of-scope map-region lookup collaborator (§4.10).
type MapData interface {
	RegionsAt(arena string, tileX, tileY int) []RegionID
}

type RegionID string

// RegionSpec carries an optional auto-warp destination for a region, or the
// zero value when the region carries none (§4.10/§4.11's "auto-warp spec").
type RegionSpec struct {
	NoAntiwarp bool
	NoWeapons  bool
	AutoWarp   *AutoWarpTarget
}

type AutoWarpTarget struct {
	Arena string // empty ⇒ same-arena warp
	X, Y  int16
}

// RegionCatalog resolves a RegionID to its configured behavior; owned by
// the out-of-scope map-data collaborator but consulted by region/ (§4.10).
type RegionCatalog interface {
	Lookup(id RegionID) (RegionSpec, bool)
}

// Persist is the out-of-scope persistence collaborator (§6 "Persisted
// state layout").
type Persist interface {
	Load(ctx context.Context, playerID int, arena, key string) ([]byte, bool, error)
	Save(ctx context.Context, playerID int, arena, key string, value []byte) error
}

// AddrOf is the out-of-scope connection-address lookup AuthVIE needs (§4.7
// "format the player's address as text").
type AddrOf interface {
	RemoteAddr(playerID int) net.Addr
}

// Clock abstracts "now" so dispatch/shipfreq tests can pin tick time (§9
// resolves "what drives Tick" — see SPEC_FULL.md).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the production Clock backed by time.Now.
var SystemClock Clock = systemClock{}
