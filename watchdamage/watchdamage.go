// Package watchdamage implements the Watch-Damage Relay (C9, §4.9): a
// subscription set of who-watches-whom, forwarding a subject's inbound
// damage reports to its subscribers.
package watchdamage

import (
	"context"
	"sync"

	"github.com/gigamon-dev/subspace-go/core"
	"github.com/gigamon-dev/subspace-go/wire"
)

// Relay owns the per-subject subscriber sets. §3's "weak back-references"
// note applies here too: subscribers are held by id, never by pointer
// ownership, and purged explicitly on departure.
type Relay struct {
	mu            sync.Mutex
	subscribers   map[int]map[int]struct{} // subject id -> set of subscriber ids
	callbackCount map[int]int              // subject id -> in-process callback refcount

	Transport core.Transport
	Callback  func(subjectID int, entries []wire.DamageEntry) // optional in-process damage callback
}

func NewRelay(transport core.Transport) *Relay {
	return &Relay{
		subscribers:   make(map[int]map[int]struct{}),
		callbackCount: make(map[int]int),
		Transport:     transport,
	}
}

// Subscribe implements §4.9's "?watchdamage" on-path: add subscriberID to
// subjectID's set, toggling S2C_ToggleDamage(1) on the 0→1 transition when
// the subject is a Continuum client.
func (r *Relay) Subscribe(ctx context.Context, subjectID, subscriberID int, subjectKind core.ClientKind) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.subscribers[subjectID]
	if set == nil {
		set = make(map[int]struct{})
		r.subscribers[subjectID] = set
	}
	wasEmpty := r.watchCountLocked(subjectID) == 0
	set[subscriberID] = struct{}{}

	if wasEmpty && subjectKind == core.ClientContinuum {
		r.Transport.SendTo(ctx, subjectID, wire.EncodeToggleDamage(true), core.SendFlags{Reliable: true})
	}
}

// Unsubscribe implements the reverse: remove subscriberID, toggling
// S2C_ToggleDamage(0) on the 1→0 transition.
func (r *Relay) Unsubscribe(ctx context.Context, subjectID, subscriberID int, subjectKind core.ClientKind) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.subscribers[subjectID]
	if set == nil {
		return
	}
	delete(set, subscriberID)
	if len(set) == 0 {
		delete(r.subscribers, subjectID)
	}
	if r.watchCountLocked(subjectID) == 0 && subjectKind == core.ClientContinuum {
		r.Transport.SendTo(ctx, subjectID, wire.EncodeToggleDamage(false), core.SendFlags{Reliable: true})
	}
}

// AddCallback/RemoveCallback adjust the in-process callback refcount that
// combines with subscribers.len to form WatchCount (§4.9).
func (r *Relay) AddCallback(subjectID int) {
	r.mu.Lock()
	r.callbackCount[subjectID]++
	r.mu.Unlock()
}

func (r *Relay) RemoveCallback(subjectID int) {
	r.mu.Lock()
	if r.callbackCount[subjectID] > 0 {
		r.callbackCount[subjectID]--
	}
	r.mu.Unlock()
}

func (r *Relay) watchCountLocked(subjectID int) int {
	return len(r.subscribers[subjectID]) + r.callbackCount[subjectID]
}

// WatchCount reports the combined subscriber+callback count for subjectID.
func (r *Relay) WatchCount(subjectID int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.watchCountLocked(subjectID)
}

// HandleDamage implements §4.9's inbound relay: forward the original
// damage entries to all subscribers inside an S2C_WatchDamage envelope,
// and fire the in-process callback if one is registered.
func (r *Relay) HandleDamage(ctx context.Context, subjectID int, raw []byte, headerLen int, timestamp uint32) {
	entries := wire.DecodeWatchDamage(raw, headerLen)

	r.mu.Lock()
	set := r.subscribers[subjectID]
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	hasCallback := r.callbackCount[subjectID] > 0
	r.mu.Unlock()

	if len(ids) > 0 {
		pkt := wire.EncodeWatchDamage(int16(subjectID), timestamp, entries)
		r.Transport.SendToSet(ctx, ids, pkt, core.SendFlags{Reliable: true, Priority: -1})
	}
	if hasCallback && r.Callback != nil {
		r.Callback(subjectID, entries)
	}
}

// LeaveArena implements §4.9's departure cleanup: drop the departing
// player's own subscriber set and callback count, and purge it from every
// other subject's subscriber set. No ToggleDamage packet is sent.
func (r *Relay) LeaveArena(ctx context.Context, playerID int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.subscribers, playerID)
	delete(r.callbackCount, playerID)
	for subjectID, set := range r.subscribers {
		if _, ok := set[playerID]; ok {
			delete(set, playerID)
			if len(set) == 0 {
				delete(r.subscribers, subjectID)
			}
		}
	}
}
