// Package advisor provides the default (no-op) advisor chain plus the
// Lua-scripted freq-manager advisor (SPEC_FULL.md §4.16, A5).
package advisor

import "github.com/gigamon-dev/subspace-go/core"

// Chain bundles the advisor slices a deployment wires into dispatch/,
// shipfreq/, and chatcore/. A freshly built Chain behaves as "no advisors
// installed" everywhere (§4.1, §4.4's "nil chain or empty slice").
type Chain struct {
	Position   []core.PositionAdvisor
	Kill       []core.KillAdvisor
	KillGreen  []core.KillGreenAdvisor
	PlayerPos  []core.PlayerPositionAdvisor
	FreqMgr    core.FreqManager
	CmdRewrite []core.CommandRewriter
}

// NewDefaultChain returns an empty chain: every hook is a pass-through.
func NewDefaultChain() *Chain {
	return &Chain{}
}

// RunPosition applies each position advisor in registration order,
// threading the (possibly rewritten) snapshot through the chain.
func (c *Chain) RunPosition(playerID int, pos core.Position) core.Position {
	for _, a := range c.Position {
		pos = a.AdvisePosition(playerID, pos)
	}
	return pos
}

// RunKill applies each kill advisor in order, summing their point
// contributions; a negative KillerID/VictimID from any advisor stops the
// chain immediately (the kill is vetoed).
func (c *Chain) RunKill(k core.KillEvent) (out core.KillEvent, points int) {
	out = k
	for _, a := range c.Kill {
		var p int
		out, p = a.AdviseKill(out)
		points += p
		if out.KillerID < 0 || out.VictimID < 0 {
			return out, points
		}
	}
	return out, points
}

// RunKillGreen lets each kill-green advisor rewrite the prize in order.
func (c *Chain) RunKillGreen(k core.KillEvent, green uint8) uint8 {
	for _, a := range c.KillGreen {
		green = a.AdviseKillGreen(k, green)
	}
	return green
}

// ObservePosition fans the final shaped position out to every observer;
// observers cannot rewrite, so order and errors don't matter here.
func (c *Chain) ObservePosition(playerID int, pos core.Position) {
	for _, a := range c.PlayerPos {
		a.ObservePosition(playerID, pos)
	}
}

// RewriteCommand gives each rewriter a chance to transform the command
// line; the first one that reports ok=false stops the chain and the
// command is dropped.
func (c *Chain) RewriteCommand(playerID int, line string) (string, bool) {
	for _, a := range c.CmdRewrite {
		var ok bool
		line, ok = a.RewriteCommand(playerID, line)
		if !ok {
			return line, false
		}
	}
	return line, true
}
