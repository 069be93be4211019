package choreo

import (
	"math"
	"testing"
)

func TestPositionFromConversions(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Position
		ok   bool
	}{
		{"float is relative", 0.5, Rel(0.5), true},
		{"int is absolute", 120, Abs(120), true},
		{"absolute stays absolute", Absolute(3.5), Abs(3.5), true},
		{"position passes through", Position{10, 0.25}, Position{10, 0.25}, true},
		{"string is not a position", "left", Position{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PositionFrom(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("PositionFrom(%v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPositionArithmetic(t *testing.T) {
	p := Position{10, 0.5}
	q := Position{4, 0.25}

	if got := p.Add(q); got != (Position{14, 0.75}) {
		t.Errorf("Add = %+v", got)
	}
	if got := p.Sub(q); got != (Position{6, 0.25}) {
		t.Errorf("Sub = %+v", got)
	}
	if got := p.Mul(2); got != (Position{20, 1.0}) {
		t.Errorf("Mul = %+v", got)
	}
	if got := p.Lerp(q, 0.5); got != (Position{7, 0.375}) {
		t.Errorf("Lerp = %+v", got)
	}
}

func TestPositionResolve(t *testing.T) {
	p := Position{10, 0.5}
	if got := p.Resolve(640); got != 330 {
		t.Errorf("Resolve(640) = %f, want 330", got)
	}
	if got := Rel(1.0).Resolve(480); got != 480 {
		t.Errorf("Rel(1).Resolve(480) = %f, want 480", got)
	}
}

func TestPositionSimplify(t *testing.T) {
	tests := []struct {
		name string
		in   Position
		want any
	}{
		{"integral absolute becomes int", Abs(10), 10},
		{"fractional absolute stays absolute", Abs(1.5), Absolute(1.5)},
		{"pure relative becomes float", Rel(0.5), 0.5},
		{"mixed stays a position", Position{10, 0.5}, Position{10, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Simplify(); got != tt.want {
				t.Errorf("Simplify() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDualAngleFrom(t *testing.T) {
	d, ok := DualAngleFrom(90.0)
	if !ok || d != (DualAngle{90, 90}) {
		t.Fatalf("DualAngleFrom(90.0) = %+v, %v", d, ok)
	}

	if _, ok := DualAngleFrom("up"); ok {
		t.Error("DualAngleFrom accepted a string")
	}
}

func TestDualAngleLerp(t *testing.T) {
	a := DualAngle{0, 0}
	b := DualAngle{180, 90}

	got := a.Lerp(b, 0.5)
	if math.Abs(got.Absolute-90) > 1e-9 || math.Abs(got.Relative-45) > 1e-9 {
		t.Errorf("Lerp = %+v, want {90 45}", got)
	}
}
