package dispatch

import (
	"context"
	"testing"

	"github.com/gigamon-dev/subspace-go/core"
	"github.com/gigamon-dev/subspace-go/wire"
)

type recordingTransport struct {
	sets []sentSet
}

type sentSet struct {
	ids   []int
	flags core.SendFlags
	pkt   []byte
}

func (r *recordingTransport) SendTo(ctx context.Context, playerID int, data []byte, flags core.SendFlags) {
	r.sets = append(r.sets, sentSet{ids: []int{playerID}, flags: flags, pkt: data})
}
func (r *recordingTransport) SendToSet(ctx context.Context, playerIDs []int, data []byte, flags core.SendFlags) {
	ids := append([]int(nil), playerIDs...)
	r.sets = append(r.sets, sentSet{ids: ids, flags: flags, pkt: data})
}
func (r *recordingTransport) SendToSetWithAck(ctx context.Context, playerID int, data []byte, flags core.SendFlags, onAck func()) {
}
func (r *recordingTransport) SendSized(ctx context.Context, playerID int, length int64, sr core.SizedReader) error {
	return nil
}

type noopLogger struct{}

func (noopLogger) Malicious(playerID int, msg string, fields ...any) {}
func (noopLogger) StateWarn(playerID int, msg string, fields ...any) {}

func encodeRawPosition(t *testing.T, status uint8, x, y int16, weapon uint16) []byte {
	t.Helper()
	w := wire.NewWriter(wire.C2SPositionType)
	w.U8(0)                       // rotation
	w.U32(100)                    // time
	w.I16(0)                      // xspeed
	w.I16(y)                      //
	checksumOffset := w.Len()
	w.U8(0) // checksum placeholder
	w.U8(status)
	w.I16(x)
	w.I16(0) // yspeed
	w.U16(0) // bounty
	w.I16(0) // energy
	w.U16(weapon)

	raw := w.Out()
	sum := wire.PositionChecksum(raw[:wire.PositionBaseLen])
	w.PutU8At(checksumOffset, sum)
	return w.Out()
}

func newTestDispatcher(transport *recordingTransport) *Dispatcher {
	return &Dispatcher{
		RNG:       zeroRNG{},
		Transport: transport,
		Logger:    noopLogger{},
	}
}

func TestHandlePositionSendsShapedPacketToInRangeRecipient(t *testing.T) {
	transport := &recordingTransport{}
	d := newTestDispatcher(transport)

	arena := core.NewArena("arena")
	sender := core.NewPlayer(1, "sender", core.ClientContinuum)
	sender.Arena = "arena"
	sender.Ship = core.ShipWarbird
	near := core.NewPlayer(2, "near", core.ClientContinuum)
	near.Arena = "arena"
	near.XRes, near.YRes = 400, 300
	arena.Players[sender.ID] = sender
	arena.Players[near.ID] = near

	raw := encodeRawPosition(t, 0, 100, 0, 0)
	d.HandlePosition(context.Background(), raw, sender, arena, ArenaTuning{}, core.Tick(100))

	if len(transport.sets) != 1 {
		t.Fatalf("expected exactly one shaped send, got %d", len(transport.sets))
	}
	if len(transport.sets[0].ids) != 1 || transport.sets[0].ids[0] != near.ID {
		t.Fatalf("expected send to near player only, got %v", transport.sets[0].ids)
	}
}

func TestHandlePositionExcludesOutOfRangeRecipient(t *testing.T) {
	transport := &recordingTransport{}
	d := newTestDispatcher(transport)

	arena := core.NewArena("arena")
	sender := core.NewPlayer(1, "sender", core.ClientContinuum)
	sender.Arena = "arena"
	far := core.NewPlayer(2, "far", core.ClientContinuum)
	far.Arena = "arena"
	far.XRes, far.YRes = 400, 300
	far.Position = core.Position{X: 10000}
	arena.Players[sender.ID] = sender
	arena.Players[far.ID] = far

	raw := encodeRawPosition(t, 0, 0, 0, 0)
	d.HandlePosition(context.Background(), raw, sender, arena, ArenaTuning{}, core.Tick(100))

	if len(transport.sets) != 0 {
		t.Fatalf("expected no send to out-of-range recipient, got %v", transport.sets)
	}
}

func TestHandlePositionPositionAdvisorCanDropPacket(t *testing.T) {
	transport := &recordingTransport{}
	d := newTestDispatcher(transport)
	d.PositionAdvisor = func(playerID int, pos core.Position) core.Position {
		pos.X = -1
		return pos
	}

	arena := core.NewArena("arena")
	sender := core.NewPlayer(1, "sender", core.ClientContinuum)
	sender.Arena = "arena"
	near := core.NewPlayer(2, "near", core.ClientContinuum)
	near.Arena = "arena"
	near.XRes, near.YRes = 400, 300
	arena.Players[sender.ID] = sender
	arena.Players[near.ID] = near

	raw := encodeRawPosition(t, 0, 100, 0, 0)
	d.HandlePosition(context.Background(), raw, sender, arena, ArenaTuning{}, core.Tick(100))

	if len(transport.sets) != 0 {
		t.Fatalf("expected advisor veto to suppress dispatch, got %v", transport.sets)
	}
}

func TestHandlePositionPositionAdvisorCanRewriteSnapshot(t *testing.T) {
	transport := &recordingTransport{}
	d := newTestDispatcher(transport)
	d.PositionAdvisor = func(playerID int, pos core.Position) core.Position {
		pos.X = 5000
		return pos
	}

	arena := core.NewArena("arena")
	sender := core.NewPlayer(1, "sender", core.ClientContinuum)
	sender.Arena = "arena"
	near := core.NewPlayer(2, "near", core.ClientContinuum)
	near.Arena = "arena"
	near.XRes, near.YRes = 400, 300
	arena.Players[sender.ID] = sender
	arena.Players[near.ID] = near

	raw := encodeRawPosition(t, 0, 0, 0, 0)
	d.HandlePosition(context.Background(), raw, sender, arena, ArenaTuning{}, core.Tick(100))

	if sender.Position.X != 5000 {
		t.Fatalf("expected advisor rewrite to stick on the stored snapshot, got x=%d", sender.Position.X)
	}
}

func TestHandlePositionObservePositionSeesFinalSnapshot(t *testing.T) {
	transport := &recordingTransport{}
	d := newTestDispatcher(transport)
	var observed core.Position
	d.ObservePosition = func(playerID int, pos core.Position) { observed = pos }

	arena := core.NewArena("arena")
	sender := core.NewPlayer(1, "sender", core.ClientContinuum)
	sender.Arena = "arena"
	arena.Players[sender.ID] = sender

	raw := encodeRawPosition(t, 0, 42, 7, 0)
	d.HandlePosition(context.Background(), raw, sender, arena, ArenaTuning{}, core.Tick(100))

	if observed.X != 42 || observed.Y != 7 {
		t.Fatalf("expected observer to see the dispatched snapshot, got %+v", observed)
	}
}

func TestHandlePositionExcludesChatOnlyClients(t *testing.T) {
	transport := &recordingTransport{}
	d := newTestDispatcher(transport)

	arena := core.NewArena("arena")
	sender := core.NewPlayer(1, "sender", core.ClientContinuum)
	sender.Arena = "arena"
	chatter := core.NewPlayer(2, "chatter", core.ClientChat)
	chatter.Arena = "arena"
	chatter.XRes, chatter.YRes = 4000, 4000
	arena.Players[sender.ID] = sender
	arena.Players[chatter.ID] = chatter

	raw := encodeRawPosition(t, 0, 0, 0, 0)
	d.HandlePosition(context.Background(), raw, sender, arena, ArenaTuning{}, core.Tick(100))

	if len(transport.sets) != 0 {
		t.Fatalf("expected chat-only client excluded from dispatch, got %v", transport.sets)
	}
}
