package shipfreq

import (
	"context"

	"github.com/gigamon-dev/subspace-go/core"
	"github.com/gigamon-dev/subspace-go/wire"
)

// HandleAttachTo implements §4.4's "Attach/turret-kickoff" validation and
// S2C_Turret notification. OnAttach is called directly on the calling
// goroutine; it is not queued onto a main work queue.
func (m *Machine) HandleAttachTo(ctx context.Context, p *core.Player, raw []byte) {
	req := wire.DecodeAttachTo(raw)

	if req.PID < 0 {
		m.detach(ctx, p)
		return
	}

	target := m.Registry.Player(int(req.PID))
	if target == nil || target.Arena != p.Arena || target.Freq != p.Freq || target.ID == p.ID || target.Ship == core.ShipSpec {
		return
	}

	p.AttachedTo = target.ID
	m.Transport.SendTo(ctx, target.ID, wire.EncodeTurret(int16(p.ID), int16(target.ID)), core.SendFlags{Reliable: true})
	if m.Callbacks.OnAttach != nil {
		m.Callbacks.OnAttach(p.ID, target.ID)
	}
}

func (m *Machine) detach(ctx context.Context, p *core.Player) {
	if p.AttachedTo < 0 {
		return
	}
	p.AttachedTo = -1
	if m.Callbacks.OnAttach != nil {
		m.Callbacks.OnAttach(p.ID, -1)
	}
}

// HandleTurretKickOff implements §4.4's turret-kickoff: detach every
// player attached to p.
func (m *Machine) HandleTurretKickOff(ctx context.Context, p *core.Player) {
	for _, other := range m.Registry.PlayersInArena(p.Arena) {
		if other.AttachedTo != p.ID {
			continue
		}
		other.AttachedTo = -1
		m.Transport.SendTo(ctx, other.ID, wire.EncodeTurretKickoff(int16(p.ID)), core.SendFlags{Reliable: true})
		if m.Callbacks.OnAttach != nil {
			m.Callbacks.OnAttach(other.ID, -1)
		}
	}
}
