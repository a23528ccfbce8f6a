package dispatch

import (
	"context"

	"github.com/gigamon-dev/subspace-go/core"
	"github.com/gigamon-dev/subspace-go/wire"
)

// ArenaTuning is the subset of core.Arena fields the position dispatcher
// reads; passed by value/pointer from the caller so this package stays
// free of a hard dependency on registry wiring choices.
type ArenaTuning struct {
	WeaponSendRange       WeaponRanges
	PositionRadarPixels   int
	AntiwarpSendThreshold int64
	NoSafeAntiwarp        bool
	WarpThresholdSquared  core.SquaredPixels
	RegionCheckInterval   core.Tick
	ShipBombFireDelay     [core.NumRealShips]core.Tick
	FlaggerBombFireDelay  core.Tick
	FastBombingMode       uint8
	FastBombingThreshold  core.Tick
}

// Dispatcher implements C3 (§4.1), driving C10 (region), C1 and C2.
type Dispatcher struct {
	RNG       core.RNG
	Callbacks core.Callbacks
	Transport core.Transport
	Logger    Logger

	// RegionUpdate is invoked when a position update crosses the region
	// recheck interval; region/ supplies the real implementation. Left as
	// a seam so dispatch/ doesn't import region/ (the dependency runs the
	// other way: region/ is a pure helper, wired in by the caller).
	RegionUpdate func(p *core.Player, tileX, tileY int) (noAnti, noWeapons bool)

	// PositionAdvisor implements §4.1's "Editability" step: it runs after
	// event-firing and may rewrite the snapshot or drop the packet by
	// returning a negative X or Y. advisor.Chain.RunPosition supplies the
	// real implementation; nil means no advisors installed.
	PositionAdvisor func(playerID int, pos core.Position) core.Position

	// ObservePosition fans the final, post-advisor snapshot out to
	// read-only observers (advisor.Chain.ObservePosition) right before it
	// is shaped and sent. nil means no observers installed.
	ObservePosition func(playerID int, pos core.Position)
}

// Logger is the minimal seam dispatch/ needs from the ambient logging
// component (SPEC_FULL.md §4.13); kept narrow so this package doesn't pull
// in zap directly.
type Logger interface {
	Malicious(playerID int, msg string, fields ...any)
	StateWarn(playerID int, msg string, fields ...any)
}

// HandlePosition implements the full §4.1 flow for one inbound Position
// packet. arena must be held for at least a read lock by the caller around
// recipient iteration; this function does not lock anything itself —
// matching the teacher's call-site-locking idiom (core.Registry/core.Arena
// export their mutexes for exactly this reason).
func (d *Dispatcher) HandlePosition(ctx context.Context, raw []byte, sender *core.Player, arena *core.Arena, tuning ArenaTuning, now core.Tick) {
	pos, hasExtra, ok := wire.DecodePosition(raw)
	if !ok {
		d.Logger.Malicious(sender.ID, "bad position packet")
		return
	}
	if pos.X == -1 && pos.Y == -1 {
		return // post-death keepalive, drop silently
	}

	newer := pos.Time > sender.Position.Time || sender.IsFake
	hasWeapon := pos.Weapon != 0

	if !newer && !hasWeapon {
		return
	}

	stored := sender.Position
	if newer {
		sender.Position = pos
		if hasExtra {
			sender.Position.Extra = pos.Extra
		}
	}

	entered := false
	if stored.Status&core.StatusSafezone != pos.Status&core.StatusSafezone {
		entered = pos.Status&core.StatusSafezone != 0
		if d.Callbacks.OnSafezone != nil {
			d.Callbacks.OnSafezone(sender.ID, entered)
		}
	}

	d.detectWarp(sender, stored, pos, tuning.WarpThresholdSquared)
	if newer {
		sender.LastPositionShip = sender.Ship
	}
	d.detectFastBomb(sender, &pos, tuning, now)
	hasWeapon = pos.Weapon != 0

	if newer && !sender.IsFake && now.Sub(sender.LastRegionCheckTick) >= int64(tuning.RegionCheckInterval) {
		tileX, tileY := int(pos.X)>>4, int(pos.Y)>>4
		if d.RegionUpdate != nil {
			noAnti, noWeapons := d.RegionUpdate(sender, tileX, tileY)
			sender.MapRegionNoAnti = noAnti
			sender.MapRegionNoWeapons = noWeapons
		}
		sender.LastRegionCheckTick = now
	}

	// Editability (§4.1): advisors run after events have fired and may
	// rewrite the snapshot or veto the packet by driving X or Y negative.
	if d.PositionAdvisor != nil {
		pos = d.PositionAdvisor(sender.ID, pos)
		if newer {
			sender.Position = pos
		}
		if pos.X < 0 || pos.Y < 0 {
			return
		}
	}

	if d.ObservePosition != nil {
		d.ObservePosition(sender.ID, pos)
	}

	pos.Status = MaskAntiwarp(pos.Status, pos.Status&core.StatusSafezone != 0, tuning.NoSafeAntiwarp)
	d.dispatchToRecipients(ctx, sender, arena, tuning, pos, hasWeapon, entered, now)

	if !sender.SentPosition && !sender.IsFake {
		sender.SentPosition = true
		if d.Callbacks.OnPlayerAction != nil {
			d.Callbacks.OnPlayerAction(sender.ID, core.ActionEnterGame)
		}
	}

	if sender.IsDead && now.Sub(sender.LastDeathTick) >= 50 && sender.NextRespawnTick.Sub(now) <= 50 {
		sender.IsDead = false
		if d.Callbacks.OnSpawn != nil {
			d.Callbacks.OnSpawn(sender.ID, core.SpawnAfterDeath)
		}
	}
}

// dispatchToRecipients implements §4.1's "Then invoke the recipient filter
// (C1) and packet shaper (C2)": it builds the candidate set from arena,
// selects recipients (or sends to everyone under the send-to-all
// override), shapes one packet per distinct extra-class and sends each
// recipient its shape through Transport.
func (d *Dispatcher) dispatchToRecipients(ctx context.Context, sender *core.Player, arena *core.Arena, tuning ArenaTuning, pos core.Position, hasWeapon bool, safezoneEntered bool, now core.Tick) {
	weapon := core.DecodeWeaponType(pos.Weapon)

	candidates := make([]*core.Player, 0, len(arena.Players))
	for _, p := range arena.Players {
		if p.Kind == core.ClientChat {
			continue // not a standard-client protocol recipient (§4.2)
		}
		candidates = append(candidates, p)
	}

	override, reliable := SendToAllOverride(
		false, // mine-drop detection is a transport-protocol detail out of scope here
		weapon,
		pos.Status&core.StatusAntiwarp != 0,
		int64(tuning.AntiwarpSendThreshold),
		d.RNG,
		safezoneEntered,
		pos.Status&core.StatusFlash != 0,
	)

	var recipients []Recipient
	if override {
		recipients = make([]Recipient, 0, len(candidates))
		for _, r := range candidates {
			if r == sender && !sender.SeeOwnPosition {
				continue
			}
			recipients = append(recipients, Recipient{Player: r, Extra: classifyExtra(sender, r, pos)})
		}
	} else {
		recipients = SelectRecipients(sender, pos, hasWeapon, weapon, candidates, tuning.WeaponSendRange, tuning.PositionRadarPixels, d.RNG)
	}
	if len(recipients) == 0 {
		return
	}

	flags := core.SendFlags{Reliable: reliable}
	shapes := make(map[ExtraClass][]byte, 3)
	ids := make(map[ExtraClass][]int, 3)

	for _, r := range recipients {
		if _, ok := shapes[r.Extra]; !ok {
			shapes[r.Extra] = BuildShape(ShapeInputs{
				SenderID:  sender.ID,
				Pos:       pos,
				HasWeapon: hasWeapon,
				TickLow:   uint16(now),
				Extra:     extraFor(r.Extra, pos),
			})
		}
		ids[r.Extra] = append(ids[r.Extra], r.Player.ID)
	}

	for class, pkt := range shapes {
		d.Transport.SendToSet(ctx, ids[class], pkt, flags)
	}
}

// extraFor implements §4.2's "extra-field classification" by picking the
// EPD payload each recipient class is allowed to see.
func extraFor(class ExtraClass, pos core.Position) *core.ExtraPositionData {
	switch class {
	case ExtraFull:
		return pos.Extra
	case ExtraEnergyOnly:
		return wire.EnergyOnlyExtra(pos.Energy)
	default:
		return nil
	}
}

// detectWarp implements §4.1's "Warp" derived event.
func (d *Dispatcher) detectWarp(p *core.Player, stored, incoming core.Position, threshold core.SquaredPixels) {
	flashToggled := stored.Status&core.StatusFlash != incoming.Status&core.StatusFlash
	if !flashToggled || p.Ship == core.ShipSpec || p.Ship != p.LastPositionShip || !p.SentPosition || p.IsDead {
		return
	}
	dx := int64(incoming.X) - int64(stored.X)
	dy := int64(incoming.Y) - int64(stored.Y)
	sq := core.SquaredPixels(dx*dx + dy*dy)
	if sq > threshold && d.Callbacks.OnWarp != nil {
		d.Callbacks.OnWarp(p.ID, stored.X, stored.Y, incoming.X, incoming.Y)
	}
}

// detectFastBomb implements §4.1's "Fast-bomb" derived event.
func (d *Dispatcher) detectFastBomb(p *core.Player, pos *core.Position, t ArenaTuning, now core.Tick) {
	wt := core.DecodeWeaponType(pos.Weapon)
	if !wt.IsBombClass() || !p.HasLastBombTick {
		if wt.IsBombClass() {
			p.LastBombTick = pos.Time
			p.HasLastBombTick = true
		}
		return
	}

	deltaT := pos.Time.Sub(p.LastBombTick)
	if deltaT < 0 {
		deltaT = -deltaT
	}

	shipIdx := int(p.Ship)
	var minDelta core.Tick
	if shipIdx >= 0 && shipIdx < core.NumRealShips {
		base := t.ShipBombFireDelay[shipIdx]
		if base > t.FastBombingThreshold {
			minDelta = base - t.FastBombingThreshold
		}
	}
	if p.FlagsCarried > 0 && t.FlaggerBombFireDelay > 0 {
		var alt core.Tick
		if t.FlaggerBombFireDelay > t.FastBombingThreshold {
			alt = t.FlaggerBombFireDelay - t.FastBombingThreshold
		}
		if alt < minDelta {
			minDelta = alt
		}
	}

	if core.Tick(deltaT) < minDelta {
		d.Logger.StateWarn(p.ID, "fast bombing detected", "delta", deltaT, "min", minDelta)
		if d.Callbacks.OnFastBomb != nil {
			d.Callbacks.OnFastBomb(p.ID, deltaT)
		}
		if t.FastBombingMode&core.FastBombFilter != 0 {
			pos.Weapon = 0
		}
		// Alert/kick actions are left to the caller's chat/registry seams
		// (this package doesn't own chat sends or disconnects); the mode
		// bits are exposed via FastBombingMode for the caller to act on.
	}

	if pos.Time > p.LastBombTick {
		p.LastBombTick = pos.Time
	}
}
