package choreo

import (
	"strings"
	"testing"
)

func compile(t *testing.T, cfg *Config, src string, scope map[string]any) Statement {
	t.Helper()

	anim := NewAnimation(mustParse(t, cfg, src), cfg, scope)
	s, err := anim.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return s
}

func TestDeepCompareEqualSources(t *testing.T) {
	cfg := DefaultConfig()

	src := strings.Join([]string{
		"linear 1.0 xpos 100",
		"parallel:",
		"    pause 0.5",
		"parallel:",
		"    linear 0.5 alpha 0.0",
		"on start:",
		"    xpos 1",
		"repeat 2",
	}, "\n")

	a := compile(t, cfg, src, nil)
	b := compile(t, cfg, src, nil)

	if !DeepCompare(a, b) {
		t.Error("separately compiled identical sources did not compare equal")
	}
}

func TestDeepCompareScopedValues(t *testing.T) {
	cfg := DefaultConfig()
	src := "linear 1.0 xpos target"

	a := compile(t, cfg, src, map[string]any{"target": 100})
	b := compile(t, cfg, src, map[string]any{"target": 100})
	c := compile(t, cfg, src, map[string]any{"target": 200})

	if !DeepCompare(a, b) {
		t.Error("equal scopes did not compare equal")
	}
	if DeepCompare(a, c) {
		t.Error("different compiled targets compared equal")
	}
}

func TestDeepCompareDistinguishesShape(t *testing.T) {
	cfg := DefaultConfig()

	a := compile(t, cfg, "linear 1.0 xpos 100", nil)

	tests := []struct {
		name string
		src  string
	}{
		{"different duration", "linear 2.0 xpos 100"},
		{"different warper", "ease 1.0 xpos 100"},
		{"different property", "linear 1.0 ypos 100"},
		{"extra statement", "linear 1.0 xpos 100\npause 1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := compile(t, cfg, tt.src, nil)
			if DeepCompare(a, b) {
				t.Error("structurally different blocks compared equal")
			}
		})
	}
}
