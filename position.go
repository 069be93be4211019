package choreo

import "math"

// Absolute is a bare pixel offset. It is distinct from float64 on purpose:
// the expression language reads a plain float as a fraction of the container
// and an int or Absolute as a pixel count.
type Absolute float64

// Position combines an absolute pixel offset with a fraction of the
// enclosing container's size. A property value of Position{Absolute: 10,
// Relative: 0.5} resolves to "half the container plus ten pixels".
//
// Arithmetic is component-wise. Positions are immutable values.
type Position struct {
	Absolute float64
	Relative float64
}

// Abs returns a purely absolute position.
func Abs(v float64) Position {
	return Position{Absolute: v}
}

// Rel returns a purely relative position.
func Rel(v float64) Position {
	return Position{Relative: v}
}

// PositionFrom converts a value to a Position. A float64 becomes a relative
// position, an int or Absolute an absolute one, and a Position is returned
// unchanged. The second return value is false if the value is not position
// shaped.
func PositionFrom(v any) (Position, bool) {
	switch x := v.(type) {
	case Position:
		return x, true
	case float64:
		return Rel(x), true
	case int:
		return Abs(float64(x)), true
	case Absolute:
		return Abs(float64(x)), true
	}
	return Position{}, false
}

// Add returns the component-wise sum of p and q.
func (p Position) Add(q Position) Position {
	return Position{p.Absolute + q.Absolute, p.Relative + q.Relative}
}

// Sub returns the component-wise difference of p and q.
func (p Position) Sub(q Position) Position {
	return p.Add(q.Neg())
}

// Neg returns the component-wise negation of p.
func (p Position) Neg() Position {
	return Position{-p.Absolute, -p.Relative}
}

// Mul scales both components of p by k.
func (p Position) Mul(k float64) Position {
	return Position{p.Absolute * k, p.Relative * k}
}

// Div divides both components of p by k.
func (p Position) Div(k float64) Position {
	return p.Mul(1 / k)
}

// Lerp linearly interpolates from p to q, component-wise.
func (p Position) Lerp(q Position, t float64) Position {
	return p.Mul(1 - t).Add(q.Mul(t))
}

// Resolve computes the concrete offset for a container of the given size.
func (p Position) Resolve(size float64) float64 {
	return p.Absolute + p.Relative*size
}

// Simplify collapses p to a plain value when one component is zero: an int
// when the position is purely absolute and integral, an Absolute when purely
// absolute but fractional, a float64 when purely relative, and p itself
// otherwise.
func (p Position) Simplify() any {
	if p.Relative == 0 {
		if p.Absolute == math.Trunc(p.Absolute) {
			return int(p.Absolute)
		}
		return Absolute(p.Absolute)
	}
	if p.Absolute == 0 {
		return p.Relative
	}
	return p
}

// DualAngle is a rotation expressed as a pair of absolute and relative
// angles, in degrees. It follows the same component-wise arithmetic as
// Position.
type DualAngle struct {
	Absolute float64
	Relative float64
}

// DualAngleFrom converts a value to a DualAngle. A plain float sets both
// components to the same angle. The second return value is false if the
// value cannot be converted.
func DualAngleFrom(v any) (DualAngle, bool) {
	switch x := v.(type) {
	case DualAngle:
		return x, true
	case float64:
		return DualAngle{x, x}, true
	case int:
		f := float64(x)
		return DualAngle{f, f}, true
	}
	return DualAngle{}, false
}

// Add returns the component-wise sum of a and b.
func (a DualAngle) Add(b DualAngle) DualAngle {
	return DualAngle{a.Absolute + b.Absolute, a.Relative + b.Relative}
}

// Sub returns the component-wise difference of a and b.
func (a DualAngle) Sub(b DualAngle) DualAngle {
	return a.Add(b.Neg())
}

// Neg returns the component-wise negation of a.
func (a DualAngle) Neg() DualAngle {
	return DualAngle{-a.Absolute, -a.Relative}
}

// Mul scales both components of a by k.
func (a DualAngle) Mul(k float64) DualAngle {
	return DualAngle{a.Absolute * k, a.Relative * k}
}

// Lerp linearly interpolates from a to b, component-wise.
func (a DualAngle) Lerp(b DualAngle, t float64) DualAngle {
	return a.Mul(1 - t).Add(b.Mul(t))
}
