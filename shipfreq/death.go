package shipfreq

import (
	"context"

	"github.com/gigamon-dev/subspace-go/core"
	"github.com/gigamon-dev/subspace-go/wire"
)

// DeathTuning carries the arena tuning death-handling needs beyond the
// player records themselves (§3 "max_death_without_firing", §4.4
// "flagger_kill_multiplier").
type DeathTuning struct {
	EnterDelay            core.Tick
	MaxDeathWithoutFiring  int
	FlaggerKillMultiplier  float64
	TeamkillPrizeEnabled   bool
	TeamkillPrize          uint8
	RandomPrize            func() uint8
}

// HandleDie implements §4.4's "Death". Caller must hold Registry.ShipFreqMu
// and Registry.Mu (read, for the killer lookup).
func (m *Machine) HandleDie(ctx context.Context, victim *core.Player, raw []byte, now core.Tick, tuning DeathTuning) {
	die := wire.DecodeDie(raw)

	killer := m.Registry.Player(int(die.Killer))
	if killer == nil || killer.Arena != victim.Arena || killer.Ship == core.ShipSpec {
		return
	}

	victim.IsDead = true
	victim.LastDeathTick = now
	victim.NextRespawnTick = now + tuning.EnterDelay

	evt := core.KillEvent{KillerID: killer.ID, VictimID: victim.ID, Bounty: int(die.Bounty)}
	totalPoints := 0
	for _, adv := range m.KillAdvisors {
		var pts int
		evt, pts = adv.AdviseKill(evt)
		totalPoints += pts
		if evt.KillerID < 0 || evt.VictimID < 0 {
			return // advisor vetoed the kill by nulling an id (§4.4)
		}
	}

	green := pickGreen(killer, victim, tuning)
	for _, adv := range m.KillGreenAdvisors {
		green = adv.AdviseKillGreen(evt, green)
	}

	flagsTransferred := 0
	if m.FlagGame != nil {
		flagsTransferred = m.FlagGame.FlagsToTransfer(ctx, killer.ID, victim.ID)
	}

	pkt := wire.EncodeKill(green, int16(evt.KillerID), int16(evt.VictimID), int16(evt.Bounty), int16(flagsTransferred))
	arenaPlayers := m.Registry.PlayersInArena(victim.Arena)
	ids := make([]int, 0, len(arenaPlayers))
	for _, p := range arenaPlayers {
		ids = append(ids, p.ID)
	}
	m.Transport.SendToSet(ctx, ids, pkt, core.SendFlags{Reliable: true})

	if victim.FlagsCarried > 0 {
		victim.FlagsCarried -= flagsTransferred
		if victim.FlagsCarried < 0 {
			victim.FlagsCarried = 0
		}
		killer.FlagsCarried += flagsTransferred
	}

	// Clients apply flagger_kill_multiplier themselves on receipt; the
	// local bounty bookkeeping is adjusted after sending to match (§4.4).
	if tuning.FlaggerKillMultiplier != 0 && killer.FlagsCarried > 0 {
		evt.Bounty = int(float64(evt.Bounty) * tuning.FlaggerKillMultiplier)
	}

	if m.Callbacks.OnKill != nil {
		m.Callbacks.OnKill(evt)
	}

	if !victim.SentWeapon {
		victim.DeathWithoutFiring++
		if tuning.MaxDeathWithoutFiring > 0 && victim.DeathWithoutFiring >= tuning.MaxDeathWithoutFiring {
			m.commitShipFreqChange(ctx, victim, core.ShipSpec, victim.Freq)
		}
	}
	victim.SentWeapon = false
}

// pickGreen implements §4.4's "Pick a 'green' prize (team-kill prize if
// teammates and configured, else a random prize)".
func pickGreen(killer, victim *core.Player, tuning DeathTuning) uint8 {
	if tuning.TeamkillPrizeEnabled && killer.Freq == victim.Freq {
		return tuning.TeamkillPrize
	}
	if tuning.RandomPrize != nil {
		return tuning.RandomPrize()
	}
	return 0
}
