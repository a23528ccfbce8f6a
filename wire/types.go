package wire

// Packet type bytes, C2S and S2C (§6). Values are arbitrary but fixed for
// this implementation; a real deployment would match the wire protocol's
// historical numbering exactly, which is a transport-collaborator concern
// (see SPEC_FULL.md §1) — the dispatch/chat/shipfreq packages only rely on
// these being distinct constants.
const (
	C2SPositionType      uint8 = 0x03
	C2SSpecRequestType   uint8 = 0x08
	C2SSetShipType       uint8 = 0x18
	C2SSetFreqType       uint8 = 0x0F
	C2SDieType           uint8 = 0x05
	C2SGreenType         uint8 = 0x07
	C2SAttachToType      uint8 = 0x16
	C2STurretKickOffType uint8 = 0x1D
	C2SChatType          uint8 = 0x06
	C2SWatchDamageType   uint8 = 0x1C

	S2CPositionType         uint8 = 0x29
	S2CWeaponType           uint8 = 0x28
	S2CBatchedSmallType     uint8 = 0x38
	S2CBatchedLargeType     uint8 = 0x39
	S2CKillType             uint8 = 0x06
	S2CShipChangeType       uint8 = 0x1D
	S2CFreqChangeType       uint8 = 0x0D
	S2CTurretType           uint8 = 0x0A
	S2CTurretKickoffType    uint8 = 0x19
	S2CWarpToType           uint8 = 0x26
	S2CPrizeReceiveType     uint8 = 0x22
	S2CShipResetType        uint8 = 0x21
	S2CSpecDataType         uint8 = 0x1B
	S2CToggleDamageType     uint8 = 0x32
	S2CChatType             uint8 = 0x07
	S2CIncomingFileType     uint8 = 0x10
	S2CRedirectType         uint8 = 0x3B
	S2CWatchDamageType      uint8 = 0x33
)

// Chat message types (GLOSSARY: "chat mask — a bitmap over chat-message
// types"). Bit position i corresponds to ChatType(i).
type ChatType int

const (
	ChatArena ChatType = iota
	ChatPub
	ChatPubMacro
	ChatFreq
	ChatEnemyFreq
	ChatPrivate
	ChatRemotePrivate
	ChatWarning
	ChatSysopWarning
	ChatChat
	ChatModChat
	ChatBillerCommand
	numChatTypes
)

// NumChatTypes is the width of the chat-mask bitmap.
const NumChatTypes = int(numChatTypes)

// Bit returns the chat-mask bit for t.
func (t ChatType) Bit() uint32 { return 1 << uint(t) }
