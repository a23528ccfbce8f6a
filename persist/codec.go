package persist

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

// ChatMaskRecord is the "Chat" persist key's value (spec.md §6):
// {mask_bits, expires?, message_count, last_check}.
type ChatMaskRecord struct {
	Mask         uint32
	Expires      *time.Time
	MessageCount int32
	LastCheck    time.Time
}

// EncodeChatMask serializes r with a presence byte fronting the optional
// Expires field, keeping the layout tagged rather than a fixed-width
// struct dump so a future field can be appended without breaking old rows.
func EncodeChatMask(r ChatMaskRecord) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, r.Mask)
	if r.Expires != nil {
		buf.WriteByte(1)
		binary.Write(&buf, binary.LittleEndian, r.Expires.Unix())
	} else {
		buf.WriteByte(0)
	}
	binary.Write(&buf, binary.LittleEndian, r.MessageCount)
	binary.Write(&buf, binary.LittleEndian, r.LastCheck.Unix())
	return buf.Bytes()
}

// DecodeChatMask parses the layout EncodeChatMask produces. Round-trips
// identically to the original when Expires was set (§8 boundary case).
func DecodeChatMask(data []byte) (ChatMaskRecord, error) {
	var rec ChatMaskRecord
	r := bytes.NewReader(data)

	if err := binary.Read(r, binary.LittleEndian, &rec.Mask); err != nil {
		return rec, fmt.Errorf("decode chat mask bits: %w", err)
	}
	tag, err := r.ReadByte()
	if err != nil {
		return rec, fmt.Errorf("decode chat mask tag: %w", err)
	}
	if tag == 1 {
		var unix int64
		if err := binary.Read(r, binary.LittleEndian, &unix); err != nil {
			return rec, fmt.Errorf("decode chat mask expiry: %w", err)
		}
		t := time.Unix(unix, 0).UTC()
		rec.Expires = &t
	}
	if err := binary.Read(r, binary.LittleEndian, &rec.MessageCount); err != nil {
		return rec, fmt.Errorf("decode chat mask count: %w", err)
	}
	var lastCheck int64
	if err := binary.Read(r, binary.LittleEndian, &lastCheck); err != nil {
		return rec, fmt.Errorf("decode chat mask last_check: %w", err)
	}
	rec.LastCheck = time.Unix(lastCheck, 0).UTC()
	return rec, nil
}

// ShipLockRecord is the "GameShipLock" persist key's value: {expires}.
type ShipLockRecord struct {
	Expires time.Time
}

func EncodeShipLock(r ShipLockRecord) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, r.Expires.Unix())
	return buf.Bytes()
}

func DecodeShipLock(data []byte) (ShipLockRecord, error) {
	var rec ShipLockRecord
	var unix int64
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &unix); err != nil {
		return rec, fmt.Errorf("decode ship lock: %w", err)
	}
	rec.Expires = time.Unix(unix, 0).UTC()
	return rec, nil
}
