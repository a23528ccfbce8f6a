package core

import (
	"math"
	"testing"
)

func TestIntHypotMatchesMathWithinOnePixel(t *testing.T) {
	cases := []struct{ dx, dy int64 }{
		{0, 0}, {1, 0}, {0, 1}, {3, 4}, {100, 100},
		{500, 1000}, {16383, 16383}, {250000 / 1000, 0}, {1000, 1000},
	}
	for _, c := range cases {
		got := IntHypot(c.dx, c.dy)
		want := math.Hypot(float64(c.dx), float64(c.dy))
		if diff := math.Abs(float64(got) - want); diff > 1.0001 {
			t.Errorf("IntHypot(%d,%d) = %d, want ~%.3f (diff %.3f)", c.dx, c.dy, got, want, diff)
		}
	}
}

func TestIntHypotWarpScenario(t *testing.T) {
	// §8 scenario 3: stored (1000,1000) -> new (1500,1000), dx=500.
	dx, dy := int64(500), int64(0)
	got := IntHypot(dx, dy)
	if got != 500 {
		t.Errorf("IntHypot(500,0) = %d, want 500", got)
	}
}
