package wire

// SpecRequest is the C2S "spectate this player" request (§6).
type SpecRequest struct {
	PID int16
}

func DecodeSpecRequest(data []byte) SpecRequest {
	r := NewReader(data)
	return SpecRequest{PID: r.I16()}
}

// SetShip is the C2S ship-change request (§6).
type SetShip struct {
	Ship uint8
}

func DecodeSetShip(data []byte) SetShip {
	r := NewReader(data)
	return SetShip{Ship: r.U8()}
}

// SetFreq is the C2S freq-change request (§6).
type SetFreq struct {
	Freq int16
}

func DecodeSetFreq(data []byte) SetFreq {
	r := NewReader(data)
	return SetFreq{Freq: r.I16()}
}

// Die is the C2S death notification (§6).
type Die struct {
	Killer int16
	Bounty int16
}

func DecodeDie(data []byte) Die {
	r := NewReader(data)
	return Die{Killer: r.I16(), Bounty: r.I16()}
}

// Green is the C2S prize-pickup notification (§6); fixed length.
type Green struct {
	Time  uint32
	X, Y  int16
	Prize uint16
}

func DecodeGreen(data []byte) Green {
	r := NewReader(data)
	return Green{Time: r.U32(), X: r.I16(), Y: r.I16(), Prize: r.U16()}
}

// AttachTo is the C2S attach/detach request (§6); -1 means detach.
type AttachTo struct {
	PID int16
}

func DecodeAttachTo(data []byte) AttachTo {
	r := NewReader(data)
	return AttachTo{PID: r.I16()}
}

// TurretKickOff is the C2S "kick attached players off my turret" request;
// length 1 (type byte only).
type TurretKickOff struct{}

func DecodeTurretKickOff(data []byte) TurretKickOff { return TurretKickOff{} }

// Chat is the C2S chat envelope (§6).
type Chat struct {
	ChatType  uint8
	Sound     uint8
	TargetPID int16
	Message   string
}

func DecodeChat(data []byte) Chat {
	r := NewReader(data)
	c := Chat{ChatType: r.U8(), Sound: r.U8(), TargetPID: r.I16()}
	rest := r.Bytes(r.Remaining())
	// Message is NUL-terminated text; trim the terminator and anything
	// past it defensively.
	if i := indexByte(rest, 0); i >= 0 {
		rest = rest[:i]
	}
	c.Message = string(rest)
	return c
}

func indexByte(b []byte, target byte) int {
	for i, c := range b {
		if c == target {
			return i
		}
	}
	return -1
}

// DamageEntry is one 10-byte entry within a C2S WatchDamage packet (§6).
type DamageEntry struct {
	AttackerPID int16
	Damage      int16
	Weapon      uint16
	X, Y        int16
}

// DecodeWatchDamage parses the repeated 10-byte damage entries following
// the packet header.
func DecodeWatchDamage(data []byte, headerLen int) []DamageEntry {
	if len(data) <= headerLen {
		return nil
	}
	body := data[headerLen:]
	const entryLen = 10
	n := len(body) / entryLen
	out := make([]DamageEntry, 0, n)
	for i := 0; i < n; i++ {
		r := &Reader{data: body[i*entryLen : (i+1)*entryLen], off: 0}
		out = append(out, DamageEntry{
			AttackerPID: r.I16(),
			Damage:      r.I16(),
			Weapon:      r.U16(),
			X:           r.I16(),
			Y:           r.I16(),
		})
	}
	return out
}
