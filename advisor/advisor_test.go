package advisor

import (
	"testing"

	"github.com/gigamon-dev/subspace-go/core"
)

type addOnePosition struct{}

func (addOnePosition) AdvisePosition(playerID int, pos core.Position) core.Position {
	pos.X++
	return pos
}

func TestChainRunPositionThreadsThroughAdvisors(t *testing.T) {
	c := NewDefaultChain()
	c.Position = []core.PositionAdvisor{addOnePosition{}, addOnePosition{}}

	out := c.RunPosition(1, core.Position{X: 10})
	if out.X != 12 {
		t.Fatalf("expected X=12, got %d", out.X)
	}
}

type vetoKillAdvisor struct{}

func (vetoKillAdvisor) AdviseKill(k core.KillEvent) (core.KillEvent, int) {
	k.KillerID = -1
	return k, 5
}

type bonusKillAdvisor struct{ called bool }

func (a *bonusKillAdvisor) AdviseKill(k core.KillEvent) (core.KillEvent, int) {
	a.called = true
	return k, 1
}

func TestChainRunKillStopsOnVeto(t *testing.T) {
	c := NewDefaultChain()
	bonus := &bonusKillAdvisor{}
	c.Kill = []core.KillAdvisor{vetoKillAdvisor{}, bonus}

	out, points := c.RunKill(core.KillEvent{KillerID: 1, VictimID: 2})
	if out.KillerID >= 0 {
		t.Fatalf("expected veto to leave KillerID negative")
	}
	if points != 5 {
		t.Fatalf("expected points=5 from the vetoing advisor, got %d", points)
	}
	if bonus.called {
		t.Fatalf("expected chain to stop after veto, but second advisor ran")
	}
}

func TestChainRewriteCommandStopsOnReject(t *testing.T) {
	c := NewDefaultChain()
	c.CmdRewrite = []core.CommandRewriter{
		rewriterFunc(func(playerID int, line string) (string, bool) { return line + "!", true }),
		rewriterFunc(func(playerID int, line string) (string, bool) { return line, false }),
	}

	_, ok := c.RewriteCommand(1, "go")
	if ok {
		t.Fatalf("expected chain to report rejected")
	}
}

type rewriterFunc func(playerID int, line string) (string, bool)

func (f rewriterFunc) RewriteCommand(playerID int, line string) (string, bool) {
	return f(playerID, line)
}
