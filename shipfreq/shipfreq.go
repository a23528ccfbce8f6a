// Package shipfreq implements the ship/freq/spec state machine (C4, §4.4):
// spec-request install/clear, ship-change request and commit, death and
// respawn, lock/unlock, attach/turret-kickoff. Grounded on the teacher's
// ship_management_handlers.go/game_state_handlers.go idiom: lock, look up
// the player record, mutate exported fields directly, fire callbacks.
package shipfreq

import (
	"context"
	"time"

	"github.com/gigamon-dev/subspace-go/core"
	"github.com/gigamon-dev/subspace-go/wire"
)

// Machine holds the collaborators the ship/freq state machine needs beyond
// the registry/arena it's handed per call.
type Machine struct {
	Registry  *core.Registry
	Transport core.Transport
	RNG       core.RNG
	Callbacks core.Callbacks
	Logger    interface {
		Malicious(playerID int, msg string, fields ...any)
		StateWarn(playerID int, msg string, fields ...any)
	}
	FreqManager       core.FreqManager // optional; nil ⇒ no delegation
	FlagGame          core.FlagGame    // optional
	KillAdvisors      []core.KillAdvisor
	KillGreenAdvisors []core.KillGreenAdvisor
}

// HandleSpecRequest implements §4.4's "Spec-request". Caller must already
// hold Registry.SpecMu for the duration of this call (the spec lock is
// named in §5 as "one global mutex... all speccing set/clear...").
func (m *Machine) HandleSpecRequest(ctx context.Context, spectator *core.Player, raw []byte) {
	req := wire.DecodeSpecRequest(raw)

	m.clearSpec(spectator)

	if req.PID < 0 {
		return
	}
	target := m.Registry.Player(int(req.PID))
	if target == nil || target.Arena != spectator.Arena || target.Ship == core.ShipSpec {
		return
	}
	m.installSpec(spectator, target)
}

// installSpec implements §4.4's "Install spec".
func (m *Machine) installSpec(spectator, target *core.Player) {
	spectator.SpeccingID = target.ID
	if spectator.SeeEPD {
		target.EPDPlayerWatchCount++
		if target.EPDPlayerWatchCount == 1 && target.Kind == core.ClientContinuum {
			m.Transport.SendTo(context.Background(), target.ID, wire.EncodeSpecData(true), core.SendFlags{Reliable: true})
		}
	}
	if m.Callbacks.OnSpectateChange != nil {
		m.Callbacks.OnSpectateChange(spectator.ID, target.ID, true)
	}
}

// clearSpec implements §4.4's "Clear spec".
func (m *Machine) clearSpec(spectator *core.Player) {
	if spectator.SpeccingID < 0 {
		return
	}
	targetID := spectator.SpeccingID
	target := m.Registry.Player(targetID)
	if target != nil && spectator.SeeEPD {
		target.EPDPlayerWatchCount--
		if target.EPDPlayerWatchCount == 0 {
			m.Transport.SendTo(context.Background(), target.ID, wire.EncodeSpecData(false), core.SendFlags{Reliable: true})
		}
	}
	spectator.SpeccingID = -1
	if m.Callbacks.OnSpectateChange != nil {
		m.Callbacks.OnSpectateChange(spectator.ID, targetID, false)
	}
}

// ShipChangeResult reports why a ship-change request did not commit, for
// the caller to translate into a chat notice.
type ShipChangeResult int

const (
	ShipChangeOK ShipChangeResult = iota
	ShipChangeRejectedDuringChange
	ShipChangeRejectedSameShip
	ShipChangeRejectedLocked
	ShipChangeRejectedByFreqManager
)

// RequestShipChange implements §4.4's "Ship-change request". Caller must
// hold Registry.ShipFreqMu. nowWall expires the lock clock lazily.
func (m *Machine) RequestShipChange(ctx context.Context, p *core.Player, requestedShip core.ShipType, requestedFreq int, bypassLock bool, nowWall time.Time) ShipChangeResult {
	if p.DuringChange {
		return ShipChangeRejectedDuringChange
	}
	if p.Ship == requestedShip && p.Freq == requestedFreq {
		return ShipChangeRejectedSameShip
	}

	if p.HasLock && p.Lock.Expired(nowWall) {
		p.HasLock = false
	}
	if p.HasLock && !bypassLock && requestedShip != core.ShipSpec {
		return ShipChangeRejectedLocked
	}

	ship, freq := requestedShip, requestedFreq
	if m.FreqManager != nil {
		rewrittenShip, rewrittenFreq, ok, _ := m.FreqManager.ReviewShipFreqChange(p.ID, requestedShip, requestedFreq, int(p.Position.Bounty))
		if !ok {
			return ShipChangeRejectedByFreqManager
		}
		ship, freq = rewrittenShip, rewrittenFreq
	}

	m.commitShipFreqChange(ctx, p, ship, freq)
	return ShipChangeOK
}

// commitShipFreqChange implements §4.4's "Commit ship/freq change".
func (m *Machine) commitShipFreqChange(ctx context.Context, p *core.Player, ship core.ShipType, freq int) {
	if m.Callbacks.OnBeforeShipFreqChange != nil {
		m.Callbacks.OnBeforeShipFreqChange(p.ID, ship, freq)
	}

	p.DuringChange = true
	wasSpec := p.Ship == core.ShipSpec
	p.Ship = ship
	p.Freq = freq
	if wasSpec && ship != core.ShipSpec {
		p.SpeccingID = -1
	}

	pkt := wire.EncodeShipChange(int8(ship), int16(p.ID), int16(freq))
	m.Transport.SendToSetWithAck(ctx, p.ID, pkt, core.SendFlags{Reliable: true}, func() {
		p.DuringChange = false
	})

	if m.Callbacks.OnPreShipFreqChange != nil {
		m.Callbacks.OnPreShipFreqChange(p.ID, ship, freq)
	}
	if m.Callbacks.OnShipFreqChange != nil {
		m.Callbacks.OnShipFreqChange(p.ID, ship, freq)
	}

	reason := core.SpawnShipChange
	if p.IsDead {
		p.IsDead = false
		reason |= core.SpawnAfterDeath
	}
	if wasSpec && ship != core.ShipSpec {
		reason |= core.SpawnInitial
	}
	if m.Callbacks.OnSpawn != nil {
		m.Callbacks.OnSpawn(p.ID, reason)
	}
}

// LockUpdate is one entry in a batch lock/unlock operation (§4.4).
type LockUpdate struct {
	PlayerID   int
	ForceSpec  bool
	LockShip   core.ShipType
	TimeoutSec int64 // 0 ⇒ unlock
	Notify     bool
}

// ApplyLock implements §4.4's "Lock/Unlock" for one target.
func (m *Machine) ApplyLock(ctx context.Context, u LockUpdate, now time.Time) {
	p := m.Registry.Player(u.PlayerID)
	if p == nil {
		return
	}
	if u.ForceSpec && p.Ship != core.ShipSpec {
		m.commitShipFreqChange(ctx, p, core.ShipSpec, p.Freq)
	}
	if u.TimeoutSec == 0 {
		p.HasLock = false
		return
	}
	p.Lock = core.ShipLock{Ship: u.LockShip, Expires: now.Add(time.Duration(u.TimeoutSec) * time.Second)}
	p.HasLock = true
}
