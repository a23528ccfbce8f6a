// Package zoneengine wires C1-C12 and A1-A6 together into one runnable
// zone process, the way server.Server wires the teacher's hub and
// game-loop together in server/websocket.go. Zone itself owns no wire
// parsing or packet-type demuxing (that stays in wire/ and the individual
// C-packages); it only holds the shared collaborators and the per-tick
// sweep that runs regardless of traffic: ship-lock expiry and the
// players_online gauge.
package zoneengine

import (
	"context"
	"time"

	"github.com/gigamon-dev/subspace-go/adminhub"
	"github.com/gigamon-dev/subspace-go/authgate"
	"github.com/gigamon-dev/subspace-go/chatcore"
	"github.com/gigamon-dev/subspace-go/core"
	"github.com/gigamon-dev/subspace-go/dispatch"
	"github.com/gigamon-dev/subspace-go/metrics"
	"github.com/gigamon-dev/subspace-go/region"
	"github.com/gigamon-dev/subspace-go/shipfreq"
	"github.com/gigamon-dev/subspace-go/watchdamage"
)

// TickInterval matches spec.md's 1/100s tick (§1 GLOSSARY "Tick").
const TickInterval = 10 * time.Millisecond

// Logger is the ambient logging seam every collaborator below shares.
type Logger interface {
	Malicious(playerID int, msg string, fields ...any)
	StateWarn(playerID int, msg string, fields ...any)
	ConfigError(msg string, fields ...any)
	Resource(msg string, fields ...any)
}

// Zone bundles one process's worth of collaborators: the shared registry
// plus one instance of each C-package, constructed once at startup and
// handed the same Transport/RNG/Callbacks so they agree on identity.
type Zone struct {
	Registry *core.Registry
	Logger   Logger
	Metrics  *metrics.Metrics
	Admin    *adminhub.Hub

	Dispatcher *dispatch.Dispatcher
	Chat       *chatcore.Core
	ShipFreq   *shipfreq.Machine
	Region     *region.Tracker
	WatchDmg   *watchdamage.Relay
	Auth       *authgate.Gate

	tick core.Tick
}

// New assembles a Zone from its already-constructed collaborators. Callers
// (cmd/zoneserver) are responsible for resolving config into the concrete
// ArenaTuning/FloodTuning values dispatch/ and chatcore/ need per call;
// Zone itself only drives the shared tick and houses the shared pieces.
func New(registry *core.Registry, logger Logger, m *metrics.Metrics, admin *adminhub.Hub, d *dispatch.Dispatcher, chat *chatcore.Core, sf *shipfreq.Machine, rt *region.Tracker, wd *watchdamage.Relay, auth *authgate.Gate) *Zone {
	return &Zone{
		Registry:   registry,
		Logger:     logger,
		Metrics:    m,
		Admin:      admin,
		Dispatcher: d,
		Chat:       chat,
		ShipFreq:   sf,
		Region:     rt,
		WatchDmg:   wd,
		Auth:       auth,
	}
}

// Tick advances the shared tick counter and runs the per-tick sweeps that
// don't depend on any one arena's packet traffic: ship-lock expiry and the
// players_online gauge (§5 "tick drives lock-expiry checks"). It does not
// touch chat masks or the arenas_active gauge.
func (z *Zone) Tick(ctx context.Context, now time.Time) {
	z.tick++

	z.Registry.Mu.RLock()
	playerCount := z.Registry.Count()
	z.Registry.Mu.RUnlock()
	if z.Metrics != nil {
		z.Metrics.PlayersOnline.Set(float64(playerCount))
	}

	z.Registry.ShipFreqMu.Lock()
	z.Registry.Mu.RLock()
	z.Registry.Range(func(p *core.Player) {
		if p.HasLock && p.Lock.Expired(now) {
			z.Logger.StateWarn(p.ID, "ship lock expired")
			p.Lock = core.ShipLock{}
			p.HasLock = false
		}
	})
	z.Registry.Mu.RUnlock()
	z.Registry.ShipFreqMu.Unlock()
}

// CurrentTick returns the tick counter Tick has advanced so far.
func (z *Zone) CurrentTick() core.Tick { return z.tick }
