package region

import (
	"context"
	"testing"

	"github.com/gigamon-dev/subspace-go/core"
)

type staticCatalog map[core.RegionID]core.RegionSpec

func (c staticCatalog) Lookup(id core.RegionID) (core.RegionSpec, bool) {
	spec, ok := c[id]
	return spec, ok
}

func TestUpdateFiresEnterAndExit(t *testing.T) {
	var entered, exited []core.RegionID
	tr := &Tracker{
		Lookup: func(arena string, x, y int) []core.RegionID {
			if x == 0 {
				return []core.RegionID{"a"}
			}
			return []core.RegionID{"b"}
		},
		OnEnter: func(playerID int, r core.RegionID) { entered = append(entered, r) },
		OnExit:  func(playerID int, r core.RegionID) { exited = append(exited, r) },
	}

	p := core.NewPlayer(1, "p", core.ClientContinuum)
	tr.Update(p, "arena", 0, 0)
	if len(entered) != 1 || entered[0] != "a" {
		t.Fatalf("expected enter a, got %v", entered)
	}

	tr.Update(p, "arena", 1, 0)
	if len(exited) != 1 || exited[0] != "a" {
		t.Fatalf("expected exit a, got %v", exited)
	}
	if len(entered) != 2 || entered[1] != "b" {
		t.Fatalf("expected enter b, got %v", entered)
	}
}

func TestUpdateAggregatesNoAntiNoWeapons(t *testing.T) {
	cat := staticCatalog{"safe": core.RegionSpec{NoAntiwarp: true, NoWeapons: true}}
	tr := &Tracker{
		MapData: cat,
		Lookup:  func(arena string, x, y int) []core.RegionID { return []core.RegionID{"safe"} },
	}
	p := core.NewPlayer(1, "p", core.ClientContinuum)
	noAnti, noWeapons := tr.Update(p, "arena", 0, 0)
	if !noAnti || !noWeapons {
		t.Fatalf("expected both flags set, got %v %v", noAnti, noWeapons)
	}
}

func TestAutoWarpSendsWarpToForInArenaTarget(t *testing.T) {
	var sent []int16
	tr := &Tracker{}
	tr.WithAutoWarp(&AutoWarp{
		Transport: stubTransport{onSend: func(playerID int, data []byte) {
			sent = append(sent, int16(playerID))
		}},
	})
	cat := staticCatalog{"warp": core.RegionSpec{AutoWarp: &core.AutoWarpTarget{X: 10, Y: 20}}}
	tr.MapData = cat
	tr.Lookup = func(arena string, x, y int) []core.RegionID { return []core.RegionID{"warp"} }

	p := core.NewPlayer(7, "p", core.ClientContinuum)
	tr.Update(p, "arena", 0, 0)

	if len(sent) != 1 || sent[0] != 7 {
		t.Fatalf("expected warp sent to player 7, got %v", sent)
	}
}

type stubTransport struct {
	onSend func(playerID int, data []byte)
}

func (s stubTransport) SendTo(ctx context.Context, playerID int, data []byte, flags core.SendFlags) {
	s.onSend(playerID, data)
}
func (s stubTransport) SendToSet(ctx context.Context, playerIDs []int, data []byte, flags core.SendFlags) {
}
func (s stubTransport) SendToSetWithAck(ctx context.Context, playerID int, data []byte, flags core.SendFlags, onAck func()) {
}
func (s stubTransport) SendSized(ctx context.Context, playerID int, length int64, r core.SizedReader) error {
	return nil
}
