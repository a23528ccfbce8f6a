package wire

// EncodeKill builds the S2C Kill packet (§6).
func EncodeKill(green uint8, killer, killed, bounty, flags int16) []byte {
	w := NewWriter(S2CKillType)
	w.U8(green)
	w.I16(killer)
	w.I16(killed)
	w.I16(bounty)
	w.I16(flags)
	return w.Out()
}

// EncodeShipChange builds the S2C ShipChange packet (§6).
func EncodeShipChange(ship int8, pid int16, freq int16) []byte {
	w := NewWriter(S2CShipChangeType)
	w.I8(ship)
	w.I16(pid)
	w.I16(freq)
	return w.Out()
}

// EncodeFreqChange builds the S2C FreqChange packet (§6).
func EncodeFreqChange(pid int16, freq int16) []byte {
	w := NewWriter(S2CFreqChangeType)
	w.I16(pid)
	w.I16(freq)
	return w.Out()
}

// EncodeTurret builds the S2C Turret packet: sender + target pid (§6).
func EncodeTurret(attacherPID, attachedToPID int16) []byte {
	w := NewWriter(S2CTurretType)
	w.I16(attacherPID)
	w.I16(attachedToPID)
	return w.Out()
}

// EncodeTurretKickoff builds the S2C TurretKickoff packet: sender pid (§6).
func EncodeTurretKickoff(pid int16) []byte {
	w := NewWriter(S2CTurretKickoffType)
	w.I16(pid)
	return w.Out()
}

// EncodeWarpTo builds the S2C WarpTo packet (§6, used by C11 auto-warp).
func EncodeWarpTo(x, y int16) []byte {
	w := NewWriter(S2CWarpToType)
	w.I16(x)
	w.I16(y)
	return w.Out()
}

// EncodePrizeReceive builds the S2C PrizeReceive packet (§6).
func EncodePrizeReceive(count, prize int16) []byte {
	w := NewWriter(S2CPrizeReceiveType)
	w.I16(count)
	w.I16(prize)
	return w.Out()
}

// EncodeShipReset builds the S2C ShipReset packet; length 1 (§6).
func EncodeShipReset() []byte {
	return NewWriter(S2CShipResetType).Out()
}

// EncodeSpecData builds the S2C SpecData toggle (§6, §4.4).
func EncodeSpecData(enabled bool) []byte {
	w := NewWriter(S2CSpecDataType)
	w.U8(boolByte(enabled))
	return w.Out()
}

// EncodeToggleDamage builds the S2C ToggleDamage packet (§6, §4.9).
func EncodeToggleDamage(enabled bool) []byte {
	w := NewWriter(S2CToggleDamageType)
	w.U8(boolByte(enabled))
	return w.Out()
}

// EncodeChat builds the S2C Chat mirror: same envelope as inbound, with the
// sender pid appended (§6).
func EncodeChat(chatType, sound uint8, senderPID int16, message string) []byte {
	w := NewWriter(S2CChatType)
	w.U8(chatType)
	w.U8(sound)
	w.I16(senderPID)
	w.NulString(message)
	return w.Out()
}

// EncodeIncomingFile builds the header for a file transfer: type + 16-byte
// name; file bytes follow separately in the sized-send stream (§4.11, §6).
func EncodeIncomingFile(displayName string) []byte {
	w := NewWriter(S2CIncomingFileType)
	w.FixedString(displayName, 16)
	return w.Out()
}

// EncodeRedirect builds the S2C Redirect packet (§6, §4.8). arenaType is -1
// when no arena is specified, -3 otherwise, per §4.8. ip is encoded
// big-endian (network byte order) per §6's "ip:u32be" — the one field in
// this protocol that breaks from the little-endian convention everywhere
// else, because it's a raw IPv4 address rather than a protocol integer.
func EncodeRedirect(ip uint32, port uint16, arenaType int16, arenaName string, loginID uint32) []byte {
	w := NewWriter(S2CRedirectType)
	w.U32BE(ip)
	w.U16(port)
	w.I16(arenaType)
	w.NulString(arenaName)
	w.U32(loginID)
	return w.Out()
}

// EncodeWatchDamage builds the S2C WatchDamage envelope relayed to
// subscribers (§4.9, §6): sender id + timestamp + the original entries.
func EncodeWatchDamage(senderPID int16, timestamp uint32, entries []DamageEntry) []byte {
	w := NewWriter(S2CWatchDamageType)
	w.I16(senderPID)
	w.U32(timestamp)
	for _, e := range entries {
		w.I16(e.AttackerPID)
		w.I16(e.Damage)
		w.U16(e.Weapon)
		w.I16(e.X)
		w.I16(e.Y)
	}
	return w.Out()
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
