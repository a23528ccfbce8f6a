// Package core holds the shared data model for the zone engine: players,
// arenas, ships, and the small value types (ticks, squared-pixel deltas)
// that the dispatch, ship/freq, and chat packages all build on.
package core

import (
	"sync"
	"time"
)

// Tick is a 1/100-second server tick, a 32-bit monotonically advancing
// quantity per the GLOSSARY. It wraps like the wire protocol's u32.
type Tick uint32

// Sub returns a-b as a signed tick delta, correct across wraparound.
func (a Tick) Sub(b Tick) int64 {
	return int64(int32(a - b))
}

// SquaredPixels is a distance already squared, kept as a distinct type so a
// configured "warp threshold delta" can never leak into a call site
// expecting a linear pixel value (see SPEC_FULL.md's warp-threshold-units
// open question).
type SquaredPixels int64

// RandMax is the engine's canonical exclusive bound on its uniform RNG; the
// same constant is used for every probability threshold in the spec
// (antiwarp send percent, radar sampling, ignore-weapons proportion).
const RandMax = 0x7fffffff

// ClientKind identifies the protocol family a connected client speaks.
type ClientKind int

const (
	ClientVIE ClientKind = iota
	ClientContinuum
	ClientChat
	ClientFake
)

// ShipType enumerates playable ships plus the synthetic "spec" pseudo-ship.
type ShipType int

const (
	ShipWarbird ShipType = iota
	ShipJavelin
	ShipSpider
	ShipLeviathan
	ShipTerrier
	ShipWeasel
	ShipLancaster
	ShipShark
	ShipSpec // not a real ship; "in spectator mode"
)

// NumRealShips is the count of ShipType values that are actual playable
// ships (excludes ShipSpec).
const NumRealShips = int(ShipSpec)

// WeaponType enumerates the weapon kinds that matter to fast-bomb detection
// and per-weapon send-range lookups.
type WeaponType int

const (
	WeaponNone WeaponType = iota
	WeaponBullet
	WeaponBounceBullet
	WeaponThor
	WeaponBurst
	WeaponBomb
	WeaponProxBomb
	WeaponRepel
	WeaponDecoy
	WeaponShrapnel
)

// IsBombClass reports whether w counts as bomb/prox-bomb/thor for the
// fast-bombing check in the position dispatcher (§4.1).
func (w WeaponType) IsBombClass() bool {
	return w == WeaponBomb || w == WeaponProxBomb || w == WeaponThor
}

// DecodeWeaponType extracts the weapon kind from a position packet's raw
// weapon field. The wire format's internal type/level/alternate-bit split
// is a transport-protocol detail left unspecified by the data model (§6
// lists only `weapon:u16`); this engine carries the type in the low
// 3 bits and treats the rest as level/alternate flags owned by the
// transport collaborator.
func DecodeWeaponType(raw uint16) WeaponType {
	return WeaponType(raw & 0x7)
}

// SeeEnergy controls who is told a player's energy value.
type SeeEnergy int

const (
	SeeEnergyNone SeeEnergy = iota
	SeeEnergyAll
	SeeEnergyTeam
	SeeEnergySpec
)

// Status bits within Position.Status (subset relevant to the dispatcher).
const (
	StatusStealth  uint8 = 1 << 0
	StatusCloak    uint8 = 1 << 1
	StatusXRadar   uint8 = 1 << 2
	StatusAntiwarp uint8 = 1 << 3
	StatusFlash    uint8 = 1 << 4 // warp-toggle bit
	StatusSafezone uint8 = 1 << 5
	StatusUFO      uint8 = 1 << 6
)

// ExtraPositionData is the optional 10-byte EPD suffix (see GLOSSARY). The
// exact field set varies per client per spec.md §6; this engine carries the
// common 10-byte layout (one byte per item/flag) and leaves client-specific
// variants to the transport collaborator.
type ExtraPositionData struct {
	S2CPing uint8
	Timer   uint8
	Shields uint8
	Super   uint8
	Bursts  uint8
	Repels  uint8
	Thors   uint8
	Bricks  uint8
	Decoys  uint8
	Rockets uint8
}

// Position is the last known C2S position snapshot for a player.
type Position struct {
	Rotation uint8
	X, Y     int16
	XSpeed   int16
	YSpeed   int16
	Bounty   uint16
	Status   uint8
	Energy   int16
	Time     Tick
	Weapon   uint16
	Extra    *ExtraPositionData
}

// ShipLock records a temporary restriction on leaving/entering a ship.
type ShipLock struct {
	Ship    ShipType
	Expires time.Time // zero = no expiry
}

// Expired reports whether the lock's deadline has passed as of now.
func (l ShipLock) Expired(now time.Time) bool {
	return !l.Expires.IsZero() && now.After(l.Expires)
}

// Player is the authoritative per-connection gameplay record (§3). Fields
// are exported like the teacher's game.Player: callers are expected to take
// the appropriate named lock (PlayerRegistry's RW-lock, ShipFreqMu, SpecMu,
// or this Player's ChatMu) before touching the corresponding field group,
// per SPEC_FULL.md §5's concurrency model.
type Player struct {
	ID        int
	Name      string
	Kind      ClientKind
	Caps      map[string]bool
	HomeArena string
	Arena     string
	XRes      int16
	YRes      int16

	Ship       ShipType
	Freq       int
	AttachedTo int // -1 when unattached

	IsDead          bool
	SentPosition    bool
	SentWeapon      bool
	DuringChange    bool
	SeeOwnPosition  bool
	SeeAllPositions bool
	ObscenityFilter bool

	Position Position

	// SpeccingID is a weak back-reference: a plain player id plus a
	// lookup through the registry, never an owning reference (§3, §9).
	// -1 means not spectating anyone.
	SpeccingID int

	EPDPlayerWatchCount int
	EPDModuleWatchCount int

	IgnoreWeapons int // [0, RandMax]

	DeathWithoutFiring int
	LastBombTick       Tick
	HasLastBombTick    bool

	LastRegionSet       map[string]struct{} // immutable: replaced wholesale, never mutated in place
	LastRegionCheckTick Tick
	MapRegionNoAnti     bool
	MapRegionNoWeapons  bool

	LastPositionShip ShipType

	Lock    ShipLock
	HasLock bool

	LastDeathTick   Tick
	NextRespawnTick Tick

	FlagsCarried int

	SeeNrg     SeeEnergy
	SeeNrgSpec SeeEnergy
	SeeEPD     bool

	Connected bool

	// Bot/no-human-relay flag: a server-synthesized player that bypasses
	// checksum and timing checks (GLOSSARY: "fake player").
	IsFake bool

	// ChatMu guards the five fields below, independent of every other
	// lock on Player, per §5's "per-player chat state is under a
	// per-player mutex" rule.
	ChatMu        sync.Mutex
	ChatMask      uint32
	MaskExpires   time.Time
	HasMaskExpiry bool
	MessageCount  int32
	LastCheck     time.Time
}

// NewPlayer returns a freshly connected player record with the neutral
// defaults spec.md §3 calls for (unattached, not locked, not spectating).
func NewPlayer(id int, name string, kind ClientKind) *Player {
	return &Player{
		ID:         id,
		Name:       name,
		Kind:       kind,
		Caps:       make(map[string]bool),
		AttachedTo: -1,
		SpeccingID: -1,
		Ship:       ShipSpec,
	}
}

// ResetForArenaEntry clears per-arena transient state on PreEnterArena,
// per §3's lifecycle note, without touching identity fields. Caller must
// hold the registry write lock.
func (p *Player) ResetForArenaEntry() {
	p.Ship = ShipSpec
	p.Freq = 0
	p.AttachedTo = -1
	p.IsDead = false
	p.SentPosition = false
	p.SentWeapon = false
	p.DuringChange = false
	p.Position = Position{}
	p.SpeccingID = -1
	p.EPDPlayerWatchCount = 0
	p.EPDModuleWatchCount = 0
	p.DeathWithoutFiring = 0
	p.HasLastBombTick = false
	p.LastRegionSet = nil
	p.LastRegionCheckTick = 0
	p.MapRegionNoAnti = false
	p.MapRegionNoWeapons = false
	p.LastPositionShip = ShipSpec
	p.HasLock = false
	p.FlagsCarried = 0
}
