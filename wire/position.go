package wire

import "github.com/gigamon-dev/subspace-go/core"

// PositionBaseLen and PositionExtraLen are the two exact inbound lengths
// §4.1 accepts; anything else is a protocol violation ("Rejects... when the
// buffer length is not one of the two exact sizes").
const (
	PositionBaseLen  = 22
	PositionExtraLen = PositionBaseLen + 10
)

// DecodePosition parses a C2S Position packet (§6). ok is false when the
// length doesn't match one of the two accepted sizes; callers must treat
// that as a malicious-log-and-drop per §7.
func DecodePosition(data []byte) (pos core.Position, hasExtra bool, ok bool) {
	if len(data) != PositionBaseLen && len(data) != PositionExtraLen {
		return core.Position{}, false, false
	}

	r := NewReader(data)
	pos.Rotation = r.U8()
	pos.Time = core.Tick(r.U32())
	pos.XSpeed = r.I16()
	pos.Y = r.I16()
	checksum := r.U8()
	pos.Status = r.U8()
	pos.X = r.I16()
	pos.YSpeed = r.I16()
	pos.Bounty = r.U16()
	pos.Energy = r.I16()
	pos.Weapon = r.U16()

	got := PositionChecksum(data[:PositionBaseLen])
	_ = checksum // checksum XORs the whole first 22 bytes (including itself) to 0
	if got != 0 {
		return core.Position{}, false, false
	}

	if len(data) == PositionExtraLen {
		hasExtra = true
		pos.Extra = &core.ExtraPositionData{
			S2CPing: r.U8(),
			Timer:   r.U8(),
			Shields: r.U8(),
			Super:   r.U8(),
			Bursts:  r.U8(),
			Repels:  r.U8(),
			Thors:   r.U8(),
			Bricks:  r.U8(),
			Decoys:  r.U8(),
			Rockets: r.U8(),
		}
	}

	return pos, hasExtra, true
}

// EncodePositionShape builds the "Position" outbound shape (§4.3 shape 4):
// 8-bit rotation, 16-bit position/speed, bounty and sender id truncated to
// 8 bits.
func EncodePositionShape(senderID int, pos core.Position, latency uint8, tickLow uint16, extra *core.ExtraPositionData) []byte {
	w := NewWriter(S2CPositionType)
	w.U8(pos.Rotation)
	w.U32(uint32(pos.Time))
	w.I16(pos.X)
	w.I16(pos.Y)
	w.I16(pos.XSpeed)
	w.I16(pos.YSpeed)
	w.U8(uint8(senderID))
	w.U8(latency)
	w.U8(pos.Status)
	w.U8(uint8(pos.Bounty))
	w.U16(tickLow)
	writeExtra(w, extra)
	return w.Out()
}

// EncodeWeaponShape builds the "Weapon" outbound shape (§4.3 shape 3):
// carries full fields and recomputes the 1-byte XOR checksum over the first
// 22 bytes. Energy stays in the main body at its inbound offset; it is not
// copied into the extra area, which is written only from extra.
func EncodeWeaponShape(senderID int, pos core.Position, latency uint8, tickLow uint16, extra *core.ExtraPositionData) []byte {
	w := NewWriter(S2CWeaponType)
	w.U8(pos.Rotation)
	w.U32(uint32(pos.Time))
	w.I16(pos.XSpeed)
	w.I16(pos.Y)
	checksumOffset := w.Len()
	w.U8(0) // checksum placeholder
	w.U8(pos.Status)
	w.I16(pos.X)
	w.I16(pos.YSpeed)
	w.U16(pos.Bounty)
	w.I16(pos.Energy)
	w.U16(pos.Weapon)
	// First 22 bytes are exactly what's been written so far (type + the
	// 21 payload bytes above), matching the inbound layout's checksum span.
	buf := w.Out()
	sum := PositionChecksum(buf[:PositionBaseLen])
	w.PutU8At(checksumOffset, sum)
	w.U16(uint16(senderID))
	w.U8(latency)
	w.U16(tickLow)
	writeExtra(w, extra)
	return w.Out()
}

// EncodeBatchedSmallShape builds shape 1 (§4.3): compact single-position
// update for clients advertising the "batched positions" feature.
func EncodeBatchedSmallShape(senderID int, pos core.Position, latency uint8, tickLow uint16) []byte {
	w := NewWriter(S2CBatchedSmallType)
	w.U8(uint8(senderID))
	w.U8(pos.Rotation)
	w.I16(pos.X)
	w.I16(pos.Y)
	w.I16(pos.XSpeed)
	w.I16(pos.YSpeed)
	w.U8(latency)
	w.U16(tickLow)
	return w.Out()
}

// EncodeBatchedLargeShape builds shape 2 (§4.3): same as small-batched but
// with a wider id and status field, no weapon.
func EncodeBatchedLargeShape(senderID int, pos core.Position, latency uint8, tickLow uint16) []byte {
	w := NewWriter(S2CBatchedLargeType)
	w.U16(uint16(senderID))
	w.U8(pos.Rotation)
	w.I16(pos.X)
	w.I16(pos.Y)
	w.I16(pos.XSpeed)
	w.I16(pos.YSpeed)
	w.U8(pos.Status)
	w.U8(latency)
	w.U16(tickLow)
	return w.Out()
}

func writeExtra(w *Writer, e *core.ExtraPositionData) {
	if e == nil {
		return
	}
	w.U8(e.S2CPing)
	w.U8(e.Timer)
	w.U8(e.Shields)
	w.U8(e.Super)
	w.U8(e.Bursts)
	w.U8(e.Repels)
	w.U8(e.Thors)
	w.U8(e.Bricks)
	w.U8(e.Decoys)
	w.U8(e.Rockets)
}

// EnergyOnlyExtra returns an EPD payload carrying only the receiving
// player's visible energy, for recipients classified "energy-only" by the
// recipient filter (§4.2).
func EnergyOnlyExtra(energy int16) *core.ExtraPositionData {
	return &core.ExtraPositionData{Shields: uint8(energy & 0xff)}
}
