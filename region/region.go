// Package region implements the Region Tracker (C10) and Auto-Warp (C11),
// §4.10: an immutable per-player region set diffed on position updates,
// driving enter/exit callbacks and the no-anti/no-weapons flags, with
// auto-warp triggered from region-enter.
package region

import (
	"context"

	"github.com/gigamon-dev/subspace-go/core"
	"github.com/gigamon-dev/subspace-go/wire"
)

// Tracker implements C10.
type Tracker struct {
	MapData core.RegionCatalog
	Lookup  func(arena string, tileX, tileY int) []core.RegionID // seam to the out-of-scope map-data collaborator
	OnEnter func(playerID int, region core.RegionID)
	OnExit  func(playerID int, region core.RegionID)

	autoWarp *AutoWarp
}

// Update implements §4.10's "Region tracker keeps an immutable set per
// player; on position updates it diffs set-wise and invokes enter/exit
// callbacks." Returns the recomputed no-anti/no-weapons flags for the
// caller to store (dispatch/ owns writing them onto the player record).
func (t *Tracker) Update(p *core.Player, arena string, tileX, tileY int) (noAnti, noWeapons bool) {
	var current []core.RegionID
	if t.Lookup != nil {
		current = t.Lookup(arena, tileX, tileY)
	}
	newSet := make(map[string]struct{}, len(current))
	for _, r := range current {
		newSet[string(r)] = struct{}{}
	}

	old := p.LastRegionSet
	for id := range newSet {
		if _, existed := old[id]; !existed {
			if t.OnEnter != nil {
				t.OnEnter(p.ID, core.RegionID(id))
			}
			t.maybeAutoWarp(p, core.RegionID(id))
		}
	}
	for id := range old {
		if _, still := newSet[id]; !still {
			if t.OnExit != nil {
				t.OnExit(p.ID, core.RegionID(id))
			}
		}
	}
	p.LastRegionSet = newSet

	for id := range newSet {
		if t.MapData == nil {
			continue
		}
		if spec, ok := t.MapData.Lookup(core.RegionID(id)); ok {
			noAnti = noAnti || spec.NoAntiwarp
			noWeapons = noWeapons || spec.NoWeapons
		}
	}
	return noAnti, noWeapons
}

// AutoWarp implements C11: on region-enter, warp in-arena or request a
// cross-arena move when the region carries an auto-warp spec (§4.10).
type AutoWarp struct {
	Transport      core.Transport
	RequestCrossArenaMove func(ctx context.Context, playerID int, arena string, x, y int16)
}

func (t *Tracker) maybeAutoWarp(p *core.Player, id core.RegionID) {
	if t.MapData == nil || t.autoWarp == nil {
		return
	}
	spec, ok := t.MapData.Lookup(id)
	if !ok || spec.AutoWarp == nil {
		return
	}
	target := spec.AutoWarp
	if target.Arena == "" {
		t.autoWarp.Transport.SendTo(context.Background(), p.ID, wire.EncodeWarpTo(target.X, target.Y), core.SendFlags{Reliable: true})
		return
	}
	if t.autoWarp.RequestCrossArenaMove != nil {
		t.autoWarp.RequestCrossArenaMove(context.Background(), p.ID, target.Arena, target.X, target.Y)
	}
}

// autoWarp is set via WithAutoWarp so Tracker.Update can trigger it without
// region/'s two types needing a shared constructor dance at call sites.
func (t *Tracker) WithAutoWarp(aw *AutoWarp) *Tracker {
	t.autoWarp = aw
	return t
}
