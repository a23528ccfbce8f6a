// Package chatcore implements the chat moderation core (C5, §4.5): the
// mask/flood model, inbound dispatch by chat type, the outbound send
// primitive, command multiplexing and line wrapping. The obscenity filter
// (C6) lives alongside it in obscene.go since §4.5's send primitive is its
// only caller.
package chatcore

import (
	"time"

	"github.com/gigamon-dev/subspace-go/core"
	"github.com/gigamon-dev/subspace-go/wire"
)

// ExpireMask implements §4.5's `expire_mask(p)`: clear an elapsed timed
// mask and decay the flood counter. Caller must hold p.ChatMu.
func ExpireMask(p *core.Player, now time.Time) {
	if p.HasMaskExpiry && !now.Before(p.MaskExpires) {
		p.ChatMask = 0
		p.HasMaskExpiry = false
	}

	elapsed := int64(now.Sub(p.LastCheck).Seconds())
	if p.LastCheck.IsZero() {
		elapsed = 0
	}
	if elapsed > 31 {
		elapsed = 31
	}
	if elapsed > 0 {
		p.MessageCount >>= uint(elapsed)
	}
	p.LastCheck = now
}

// Allowed implements §4.5's mask check: `ok(p, type) ⇔ ¬(p.mask | arena.mask)`
// restricts the given type. Caller must hold p.ChatMu and have already
// called ExpireMask.
func Allowed(p *core.Player, arenaMask uint32, t wire.ChatType) bool {
	combined := p.ChatMask | arenaMask
	return combined&t.Bit() == 0
}

// FloodTuning is the arena-configured flood-escalation policy (§4.5,
// config keys `Chat/FloodLimit`, `Chat/FloodShutup`).
type FloodTuning struct {
	FloodLimit  int32
	FloodShutup time.Duration
}

// ApplyFloodEscalation implements §4.5's post-dispatch flood check.
// Returns true if the player was just auto-shut-up by this call. Caller
// must hold p.ChatMu.
func ApplyFloodEscalation(p *core.Player, canSpam bool, tuning FloodTuning, now time.Time) bool {
	p.MessageCount++
	if tuning.FloodLimit <= 0 || canSpam || p.MessageCount < tuning.FloodLimit {
		return false
	}

	p.MessageCount /= 2
	if !p.HasMaskExpiry {
		p.MaskExpires = now.Add(tuning.FloodShutup)
		p.HasMaskExpiry = true
	} else {
		p.MaskExpires = p.MaskExpires.Add(tuning.FloodShutup)
	}

	for i := 0; i < wire.NumChatTypes; i++ {
		t := wire.ChatType(i)
		if isPubliclyVisible(t) {
			p.ChatMask |= t.Bit()
		}
	}
	return true
}

// isPubliclyVisible reports whether a chat type counts as "publicly
// visible" for the flood auto-shutup mask (§4.5 "set all publicly-visible
// chat types to restricted": Pub/PubMacro/Freq/EnemyFreq/Private/
// RemotePrivate/Chat/ModChat/BillerCommand). ChatArena and the
// server-only warning types are excluded: a player never sends those, so
// restricting them accomplishes nothing.
func isPubliclyVisible(t wire.ChatType) bool {
	switch t {
	case wire.ChatPub, wire.ChatPubMacro, wire.ChatFreq, wire.ChatEnemyFreq,
		wire.ChatPrivate, wire.ChatRemotePrivate, wire.ChatChat,
		wire.ChatModChat, wire.ChatBillerCommand:
		return true
	default:
		return false
	}
}
