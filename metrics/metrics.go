// Package metrics implements the metrics surface (A3, SPEC_FULL.md §4.14):
// Prometheus counters and gauges for dispatch shapes, chat volume, flood
// shutups, kills, obscenity reloads, redirect resolution source, and
// player/arena counts. Grounded on the teacher-pack's promauto idiom, with
// a per-instance registry (rather than the package-global vars the
// example uses) so the zone process can wire one Metrics per test without
// tripping Prometheus's duplicate-registration panic.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles every counter/gauge this zone process exports.
type Metrics struct {
	Registry *prometheus.Registry

	DispatchPackets  *prometheus.CounterVec // label: shape
	ChatMessages     *prometheus.CounterVec // label: type
	FloodShutups     prometheus.Counter
	Kills            prometheus.Counter
	ObsceneReloads   prometheus.Counter
	RedirectResolved *prometheus.CounterVec // label: source (cache|config|literal)
	PlayersOnline    prometheus.Gauge
	ArenasActive     prometheus.Gauge
}

// New registers every metric against a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	fac := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		DispatchPackets: fac.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_packets_total",
			Help: "Position packets dispatched, by outbound shape.",
		}, []string{"shape"}),
		ChatMessages: fac.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Chat messages handled, by chat type.",
		}, []string{"type"}),
		FloodShutups: fac.NewCounter(prometheus.CounterOpts{
			Name: "flood_shutups_total",
			Help: "Times a player's chat mask was set by flood escalation.",
		}),
		Kills: fac.NewCounter(prometheus.CounterOpts{
			Name: "kills_total",
			Help: "Kills processed.",
		}),
		ObsceneReloads: fac.NewCounter(prometheus.CounterOpts{
			Name: "obscene_reloads_total",
			Help: "Obscenity word-list reload attempts.",
		}),
		RedirectResolved: fac.NewCounterVec(prometheus.CounterOpts{
			Name: "redirect_resolved_total",
			Help: "Redirect destinations resolved, by resolution source.",
		}, []string{"source"}),
		PlayersOnline: fac.NewGauge(prometheus.GaugeOpts{
			Name: "players_online",
			Help: "Currently connected players.",
		}),
		ArenasActive: fac.NewGauge(prometheus.GaugeOpts{
			Name: "arenas_active",
			Help: "Currently active arenas.",
		}),
	}
}

// Handler returns the /metrics HTTP handler bound to this instance's
// registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
