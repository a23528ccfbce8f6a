package persist

import (
	"testing"
	"time"
)

func TestChatMaskRoundTripsWithExpiry(t *testing.T) {
	exp := time.Unix(1700000000, 0).UTC()
	in := ChatMaskRecord{
		Mask:         0xF0F0,
		Expires:      &exp,
		MessageCount: 7,
		LastCheck:    time.Unix(1699999999, 0).UTC(),
	}

	out, err := DecodeChatMask(EncodeChatMask(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Mask != in.Mask {
		t.Fatalf("mask mismatch: got %x want %x", out.Mask, in.Mask)
	}
	if out.Expires == nil || !out.Expires.Equal(*in.Expires) {
		t.Fatalf("expires mismatch: got %v want %v", out.Expires, in.Expires)
	}
	if out.MessageCount != in.MessageCount {
		t.Fatalf("message count mismatch: got %d want %d", out.MessageCount, in.MessageCount)
	}
	if !out.LastCheck.Equal(in.LastCheck) {
		t.Fatalf("last_check mismatch: got %v want %v", out.LastCheck, in.LastCheck)
	}
}

func TestChatMaskRoundTripsWithoutExpiry(t *testing.T) {
	in := ChatMaskRecord{
		Mask:         1,
		Expires:      nil,
		MessageCount: 0,
		LastCheck:    time.Unix(1700000000, 0).UTC(),
	}

	out, err := DecodeChatMask(EncodeChatMask(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Expires != nil {
		t.Fatalf("expected nil expires, got %v", out.Expires)
	}
}

func TestShipLockRoundTrips(t *testing.T) {
	in := ShipLockRecord{Expires: time.Unix(1700000500, 0).UTC()}
	out, err := DecodeShipLock(EncodeShipLock(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Expires.Equal(in.Expires) {
		t.Fatalf("expires mismatch: got %v want %v", out.Expires, in.Expires)
	}
}
