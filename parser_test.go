package choreo

import (
	"strings"
	"testing"
)

func TestParseStatementForms(t *testing.T) {
	cfg := DefaultConfig()

	src := strings.Join([]string{
		"linear 1.0 xpos 100",
		"pause 0.5",
		"time 3.0",
		"event climax",
		"repeat 2",
	}, "\n")

	raw := mustParse(t, cfg, src)

	if len(raw.statements) != 5 {
		t.Fatalf("parsed %d statements, want 5", len(raw.statements))
	}

	if _, ok := raw.statements[0].(*rawMultipurpose); !ok {
		t.Errorf("statement 0 is %T", raw.statements[0])
	}
	if _, ok := raw.statements[2].(*rawTime); !ok {
		t.Errorf("statement 2 is %T", raw.statements[2])
	}
	if ev, ok := raw.statements[3].(*rawEvent); !ok || ev.name != "climax" {
		t.Errorf("statement 3 is %T", raw.statements[3])
	}
	if rp, ok := raw.statements[4].(*rawRepeat); !ok || rp.count == nil {
		t.Errorf("statement 4 is %T", raw.statements[4])
	}
}

func TestParseWarperForms(t *testing.T) {
	cfg := DefaultConfig()

	raw := mustParse(t, cfg, "easeout_bounce 2.0 ypos 300")
	rm := raw.statements[0].(*rawMultipurpose)
	if rm.warper != "easeout_bounce" {
		t.Errorf("warper = %q", rm.warper)
	}

	// Without a warper the statement is instant.
	raw = mustParse(t, cfg, "xpos 10")
	rm = raw.statements[0].(*rawMultipurpose)
	if rm.warper != "" || rm.duration != nil {
		t.Errorf("bare property parsed as warper %q", rm.warper)
	}
}

func TestParseBlockFormInterpolation(t *testing.T) {
	cfg := DefaultConfig()

	raw := mustParse(t, cfg, "ease 1.0:\n    xpos 10\n    ypos 20")
	rm := raw.statements[0].(*rawMultipurpose)
	if len(rm.properties) != 2 {
		t.Fatalf("block-form clauses = %d properties, want 2", len(rm.properties))
	}
}

func TestParseSplineKnots(t *testing.T) {
	cfg := DefaultConfig()

	raw := mustParse(t, cfg, "linear 1.0 xpos 100 knot 20 knot 180")
	rm := raw.statements[0].(*rawMultipurpose)

	if len(rm.splines) != 1 {
		t.Fatalf("splines = %d, want 1", len(rm.splines))
	}
	// Knots come first; the property's own value is the destination.
	if got := len(rm.splines[0].exprs); got != 3 {
		t.Errorf("spline control points = %d, want 3", got)
	}
	if rm.splines[0].exprs[2].String() != "100" {
		t.Errorf("last control point = %s, want 100", rm.splines[0].exprs[2].String())
	}
}

func TestParseRevolutionClauses(t *testing.T) {
	cfg := DefaultConfig()

	raw := mustParse(t, cfg, "linear 4.0 clockwise circles 2 angle 360")
	rm := raw.statements[0].(*rawMultipurpose)

	if rm.revolution != "clockwise" {
		t.Errorf("revolution = %q", rm.revolution)
	}
	if rm.circles == nil {
		t.Error("circles clause was dropped")
	}
}

func TestParseMergesAdjacentGroups(t *testing.T) {
	cfg := DefaultConfig()

	src := strings.Join([]string{
		"parallel:",
		"    linear 1.0 xpos 10",
		"parallel:",
		"    linear 1.0 ypos 10",
	}, "\n")

	raw := mustParse(t, cfg, src)
	if len(raw.statements) != 1 {
		t.Fatalf("adjacent parallels = %d statements, want 1", len(raw.statements))
	}
	if p := raw.statements[0].(*rawParallel); len(p.blocks) != 2 {
		t.Errorf("merged parallel holds %d blocks, want 2", len(p.blocks))
	}

	// A pass statement keeps the groups apart.
	src = strings.Join([]string{
		"parallel:",
		"    linear 1.0 xpos 10",
		"pass",
		"parallel:",
		"    linear 1.0 ypos 10",
	}, "\n")

	raw = mustParse(t, cfg, src)
	if len(raw.statements) != 2 {
		t.Fatalf("separated parallels = %d statements, want 2", len(raw.statements))
	}
}

func TestParseChoiceWeights(t *testing.T) {
	cfg := DefaultConfig()

	src := strings.Join([]string{
		"choice:",
		"    xpos 1",
		"choice 3.0:",
		"    xpos 2",
	}, "\n")

	raw := mustParse(t, cfg, src)
	ch := raw.statements[0].(*rawChoice)
	if len(ch.choices) != 2 {
		t.Fatalf("choices = %d, want 2", len(ch.choices))
	}
	if ch.choices[0].chance.String() != "1" {
		t.Errorf("default chance = %s, want 1", ch.choices[0].chance.String())
	}
}

func TestParseOnMultipleNames(t *testing.T) {
	cfg := DefaultConfig()

	raw := mustParse(t, cfg, "on show, default:\n    xpos 5")
	on := raw.statements[0].(*rawOn)

	if len(on.handlers) != 2 {
		t.Fatalf("handlers = %d, want 2", len(on.handlers))
	}
	if on.handlers["show"] != on.handlers["default"] {
		t.Error("shared handler names got distinct blocks")
	}
}

func TestParseCommaSeparatedStatements(t *testing.T) {
	cfg := DefaultConfig()

	raw := mustParse(t, cfg, "linear 0.5 xpos 10, linear 0.5 ypos 20")
	if len(raw.statements) != 2 {
		t.Fatalf("comma-separated statements = %d, want 2", len(raw.statements))
	}

	// Commas separate statements of any form, not only interpolations.
	raw = mustParse(t, cfg, "repeat 2, pause 1.0")
	if len(raw.statements) != 2 {
		t.Fatalf("repeat then pause = %d statements, want 2", len(raw.statements))
	}
	if _, ok := raw.statements[0].(*rawRepeat); !ok {
		t.Errorf("statement 0 is %T, want repeat", raw.statements[0])
	}
	if _, ok := raw.statements[1].(*rawMultipurpose); !ok {
		t.Errorf("statement 1 is %T, want pause", raw.statements[1])
	}
}

func TestParseExpressionEitherSideOfProperty(t *testing.T) {
	cfg := DefaultConfig()

	// A property clause between two expressions separates them; only
	// directly adjacent expressions are suspect.
	raw := mustParse(t, cfg, "linear 1.0 foo xpos 5 bar")
	rm := raw.statements[0].(*rawMultipurpose)
	if len(rm.exprs) != 2 {
		t.Errorf("expressions = %d, want 2", len(rm.exprs))
	}
	if len(rm.properties) != 1 {
		t.Errorf("properties = %d, want 1", len(rm.properties))
	}
}

func TestParseAnimationTimebase(t *testing.T) {
	cfg := DefaultConfig()

	raw := mustParse(t, cfg, "animation\nlinear 1.0 xpos 10")
	if !raw.animation {
		t.Error("animation keyword did not switch the timebase")
	}
}

func TestParseDeferredDiagnostics(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"duplicate property", "linear 1.0 xpos 5 xpos 10", "more than once"},
		{"conflicting properties", "linear 1.0 pos (1, 2) xpos 5", "conflict"},
		{"anchor polar center conflict", "linear 1.0 around (0, 0) xanchoraround 5", "conflict"},
		{"adjacent expressions", "linear 1.0 foo bar", "two expressions in a row"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBlock(cfg, "test", tt.src)
			if err == nil {
				t.Fatal("no diagnostic")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("diagnostic = %q, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestParsePolarPairIsCompatible(t *testing.T) {
	cfg := DefaultConfig()

	// angle and radius both move the position, but together they describe
	// one polar motion and do not conflict.
	if _, err := ParseBlock(cfg, "test", "linear 1.0 angle 90 radius 100"); err != nil {
		t.Errorf("polar pair diagnosed: %v", err)
	}
}

func TestParseBlockFormRequiresWarper(t *testing.T) {
	cfg := DefaultConfig()

	// The indented clause form belongs to warped statements only.
	if _, err := ParseBlock(cfg, "test", "xpos 5:\n    ypos 2"); err == nil {
		t.Error("unwarped statement accepted a clause block")
	}

	// A stray indented block under a plain statement is an error too.
	if _, err := ParseBlock(cfg, "test", "xpos 1\n    ypos 2"); err == nil {
		t.Error("stray block under a plain statement accepted")
	}
}

func TestParseOrientationRejectsSpline(t *testing.T) {
	cfg := DefaultConfig()

	src := "linear 1.0 orientation (0, 0, 90) knot (0, 0, 45)"
	_, err := ParseBlock(cfg, "test", src)
	if err == nil {
		t.Fatal("orientation spline accepted")
	}
	if !strings.Contains(err.Error(), "spline") {
		t.Errorf("error = %q", err)
	}
}

func TestParseRejectsTabs(t *testing.T) {
	cfg := DefaultConfig()

	if _, err := ParseBlock(cfg, "test", "parallel:\n\tlinear 1.0 xpos 1"); err == nil {
		t.Error("tab indentation accepted")
	}
}

func TestParseIndentationErrors(t *testing.T) {
	cfg := DefaultConfig()

	if _, err := ParseBlock(cfg, "test", "    xpos 1\nypos 2"); err == nil {
		t.Error("dedent below the opening indentation accepted")
	}
}
