package dispatch

import (
	"github.com/gigamon-dev/subspace-go/core"
	"github.com/gigamon-dev/subspace-go/wire"
)

// ShapeInputs bundles everything the shape-selection rule in §4.3 needs.
type ShapeInputs struct {
	SenderID             int
	Pos                  core.Position
	HasWeapon            bool
	BatchFeature         bool // recipient advertises "batched positions"
	BountyUnchangedFor2s bool
	Latency              uint8
	TickLow              uint16
	Extra                *core.ExtraPositionData
}

// ClampLatency enforces the "carry C2S latency clamped to [0,255]" rule
// (§4.3); callers compute raw latency upstream and clamp before filling
// ShapeInputs.Latency.
func ClampLatency(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// BuildShape implements C2 (§4.3): choose exactly one of the four outbound
// shapes, evaluated top to bottom, and build its bytes. Callers build once
// per distinct (extra-class) combination and reuse the bytes across
// matching recipients, per the "build it once and reuse" rule; this
// function is the single build, not the reuse loop (that lives in the
// position dispatcher, which owns the per-extra-class cache).
func BuildShape(in ShapeInputs) []byte {
	p := in.Pos
	status := p.Status

	if in.BatchFeature && !in.HasWeapon && in.BountyUnchangedFor2s && status == 0 && in.Extra == nil &&
		in.SenderID <= 255 && abs16(p.XSpeed) <= 8191 && abs16(p.YSpeed) <= 8191 &&
		inRange(p.X, 0, 16383) && inRange(p.Y, 0, 16383) {
		return wire.EncodeBatchedSmallShape(in.SenderID, p, in.Latency, in.TickLow)
	}

	if in.BatchFeature && in.SenderID <= 1023 && status <= 0x3F && !in.HasWeapon && in.Extra == nil {
		return wire.EncodeBatchedLargeShape(in.SenderID, p, in.Latency, in.TickLow)
	}

	if in.HasWeapon || p.Bounty > 255 || in.SenderID > 255 {
		return wire.EncodeWeaponShape(in.SenderID, p, in.Latency, in.TickLow, in.Extra)
	}

	return wire.EncodePositionShape(in.SenderID, p, in.Latency, in.TickLow, in.Extra)
}

func abs16(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}

func inRange(v int16, lo, hi int16) bool { return v >= lo && v <= hi }
