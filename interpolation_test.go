package choreo

import (
	"math"
	"testing"
)

func TestLinearMidpoint(t *testing.T) {
	tr := mustTransform(t, "linear 2.0 xpos 100")

	update(t, tr, 0.016)
	update(t, tr, 1.0)

	if got := tr.State().ResolvePos("xpos", 0); got != 50 {
		t.Errorf("xpos = %f at the midpoint, want 50", got)
	}
}

func TestWarperShapesProgress(t *testing.T) {
	tr := mustTransform(t, "easein_quad 1.0 xpos 100")

	update(t, tr, 0.016)
	update(t, tr, 0.5)

	// InQuad at t=0.5 is 0.25.
	if got := tr.State().ResolvePos("xpos", 0); math.Abs(got-25) > 1e-4 {
		t.Errorf("xpos = %f, want 25", got)
	}
}

func TestPauseReportsDeadline(t *testing.T) {
	tr := mustTransform(t, "pause 5.0\nxpos 1")

	update(t, tr, 0.016)
	if tr.Pause != 5.0 {
		t.Errorf("Pause = %f, want the pause deadline 5.0", tr.Pause)
	}
}

func TestZeroPauseHoldsOneFrame(t *testing.T) {
	tr := mustTransform(t, "pause 0\nxpos 99")

	update(t, tr, 0.016)
	if got := tr.State().ResolvePos("xpos", 0); got != 0 {
		t.Fatalf("xpos = %f on the held frame, want 0", got)
	}

	update(t, tr, 0.016)
	if got := tr.State().ResolvePos("xpos", 0); got != 99 {
		t.Errorf("xpos = %f after the held frame, want 99", got)
	}
}

func TestAngleTakesShortestPath(t *testing.T) {
	tr := mustTransform(t, "angle 350 radius 100\nlinear 1.0 angle 10")

	update(t, tr, 0.016)
	update(t, tr, 0.5)

	// 350 to 10 crosses zero rather than sweeping back through 180.
	if got := tr.State().Float("angle"); math.Abs(got) > 1e-9 {
		t.Errorf("angle = %f at the midpoint, want 0", got)
	}
}

func TestRevolutionClockwise(t *testing.T) {
	tr := mustTransform(t, "xaround 0 yaround 0 radius 100 angle 90\nlinear 1.0 clockwise angle 180")

	update(t, tr, 0.016)
	update(t, tr, 0.5)

	if got := tr.State().Float("angle"); math.Abs(got-135) > 1e-9 {
		t.Errorf("angle = %f, want 135 halfway clockwise", got)
	}
}

func TestRevolutionCounterclockwise(t *testing.T) {
	tr := mustTransform(t, "xaround 0 yaround 0 radius 100 angle 90\nlinear 1.0 counterclockwise angle 180")

	update(t, tr, 0.016)
	update(t, tr, 0.5)

	// Counterclockwise from 90 to 180 goes the long way: 90, 0, 270, 180.
	if got := tr.State().Float("angle"); math.Abs(got-315) > 1e-9 {
		t.Errorf("angle = %f, want 315 halfway counterclockwise", got)
	}
}

func TestRevolutionCircles(t *testing.T) {
	tr := mustTransform(t, "xaround 0 yaround 0 radius 100 angle 0\nlinear 1.0 clockwise circles 1 angle 360")

	update(t, tr, 0.016)
	update(t, tr, 0.5)

	// One extra circle stretches the sweep to 720 degrees; halfway is 360,
	// stored modulo nothing, so the raw interpolated angle applies.
	if got := math.Mod(tr.State().Float("angle"), 360); math.Abs(got) > 1e-6 {
		t.Errorf("angle = %f mod 360, want 0 halfway through a double turn", got)
	}

	update(t, tr, 1.0)
	if !tr.Done() {
		t.Error("revolution did not finish")
	}
}

func TestSplineMidpoint(t *testing.T) {
	tr := mustTransform(t, "linear 1.0 xpos 200 knot 100")

	update(t, tr, 0.016)
	update(t, tr, 0.5)

	// Quadratic curve through start 0, knot 100, end 200: the midpoint of
	// this particular curve is 100.
	if got := tr.State().ResolvePos("xpos", 0); math.Abs(got-100) > 1e-6 {
		t.Errorf("xpos = %f at the spline midpoint, want 100", got)
	}
}

func TestInterpolationSetsUnchangedTargets(t *testing.T) {
	tr := mustTransform(t, "linear 1.0 xpos 0")

	// xpos already reads 0, so there is nothing to move, but the property
	// must still be written so later statements see it as set.
	update(t, tr, 0.016)
	if got := tr.State().Get("xpos"); got == nil {
		t.Error("an unchanged target property was left unset")
	}
}
