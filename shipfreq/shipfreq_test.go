package shipfreq

import (
	"context"
	"testing"
	"time"

	"github.com/gigamon-dev/subspace-go/core"
)

type fakeTransport struct {
	sent []sentPacket
}

type sentPacket struct {
	playerID int
	data     []byte
}

func (f *fakeTransport) SendTo(ctx context.Context, playerID int, data []byte, flags core.SendFlags) {
	f.sent = append(f.sent, sentPacket{playerID, data})
}
func (f *fakeTransport) SendToSet(ctx context.Context, playerIDs []int, data []byte, flags core.SendFlags) {
	for _, id := range playerIDs {
		f.sent = append(f.sent, sentPacket{id, data})
	}
}
func (f *fakeTransport) SendToSetWithAck(ctx context.Context, playerID int, data []byte, flags core.SendFlags, onAck func()) {
	f.sent = append(f.sent, sentPacket{playerID, data})
	onAck()
}
func (f *fakeTransport) SendSized(ctx context.Context, playerID int, length int64, r core.SizedReader) error {
	return nil
}

func newMachine() (*Machine, *fakeTransport) {
	reg := core.NewRegistry()
	tr := &fakeTransport{}
	return &Machine{Registry: reg, Transport: tr}, tr
}

func TestInstallAndClearSpecTogglesEPD(t *testing.T) {
	m, tr := newMachine()
	target := core.NewPlayer(1, "target", core.ClientContinuum)
	m.Registry.AddPlayer(target)

	spectator := core.NewPlayer(2, "spec", core.ClientContinuum)
	spectator.SeeEPD = true
	m.Registry.AddPlayer(spectator)

	m.installSpec(spectator, target)
	if target.EPDPlayerWatchCount != 1 {
		t.Fatalf("expected watch count 1, got %d", target.EPDPlayerWatchCount)
	}
	if len(tr.sent) != 1 {
		t.Fatalf("expected one SpecData(1) send, got %d", len(tr.sent))
	}

	m.clearSpec(spectator)
	if target.EPDPlayerWatchCount != 0 {
		t.Fatalf("expected watch count 0, got %d", target.EPDPlayerWatchCount)
	}
	if spectator.SpeccingID != -1 {
		t.Fatalf("expected speccing cleared, got %d", spectator.SpeccingID)
	}
	if len(tr.sent) != 2 {
		t.Fatalf("expected second SpecData(0) send, got %d", len(tr.sent))
	}
}

func TestRequestShipChangeRejectsDuringChange(t *testing.T) {
	m, _ := newMachine()
	p := core.NewPlayer(1, "p", core.ClientContinuum)
	p.DuringChange = true
	m.Registry.AddPlayer(p)

	got := m.RequestShipChange(context.Background(), p, core.ShipWarbird, 0, false, time.Now())
	if got != ShipChangeRejectedDuringChange {
		t.Fatalf("expected rejection, got %v", got)
	}
}

func TestRequestShipChangeRejectsWhenLocked(t *testing.T) {
	m, _ := newMachine()
	p := core.NewPlayer(1, "p", core.ClientContinuum)
	p.HasLock = true
	p.Lock = core.ShipLock{Ship: core.ShipWarbird, Expires: time.Now().Add(time.Hour)}
	m.Registry.AddPlayer(p)

	got := m.RequestShipChange(context.Background(), p, core.ShipJavelin, 0, false, time.Now())
	if got != ShipChangeRejectedLocked {
		t.Fatalf("expected locked rejection, got %v", got)
	}
}

func TestRequestShipChangeCommitsAndClearsDuringChangeOnAck(t *testing.T) {
	m, tr := newMachine()
	p := core.NewPlayer(1, "p", core.ClientContinuum)
	m.Registry.AddPlayer(p)

	got := m.RequestShipChange(context.Background(), p, core.ShipWarbird, 3, false, time.Now())
	if got != ShipChangeOK {
		t.Fatalf("expected OK, got %v", got)
	}
	if p.Ship != core.ShipWarbird || p.Freq != 3 {
		t.Fatalf("expected ship/freq committed, got ship=%v freq=%v", p.Ship, p.Freq)
	}
	if p.DuringChange {
		t.Fatalf("expected during_change cleared after ack")
	}
	if len(tr.sent) != 1 {
		t.Fatalf("expected one ShipChange send, got %d", len(tr.sent))
	}
}
