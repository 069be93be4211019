package choreo

import "math"

// Generated is a value produced by a Generator, tagged with the generator
// that made it so a later interpolation can chain from the same origin.
type Generated struct {
	Value  any
	Origin Generator
}

// Generator produces time-varying values. When an interpolation target is a
// Generator, the generator is invoked each frame with the origin of the old
// value and the eased progress, instead of being lerped numerically.
type Generator func(origin Generator, t float64) Generated

// Interpolate computes the value t of the way from a to b.
//
// Opaque values (nil, bool, string, and anything non-numeric) snap to b once
// t reaches 1 and hold a before that. Tuples recurse element-wise with the
// kind broadcast across elements. A Generator target is invoked rather than
// interpolated. Everything else is a + t*(b-a), carried out in the kind's
// numeric type; positions interpolate as dual-coordinate pairs when
// MixedPosition is set.
func (c *Config) Interpolate(t float64, a, b any, kind Kind) any {
	// Step types first.
	switch b.(type) {
	case nil, bool, string:
		return step(t, a, b)
	}

	if tb, ok := b.([]any); ok {
		ta, ok := a.([]any)
		if !ok {
			ta = make([]any, len(tb))
		}
		rv := make([]any, len(tb))
		for i := range tb {
			var av any
			if i < len(ta) {
				av = ta[i]
			}
			rv[i] = c.Interpolate(t, av, tb[i], kind)
		}
		return rv
	}

	if g, ok := b.(Generator); ok {
		var origin Generator
		if ga, ok := a.(Generated); ok {
			origin = ga.Origin
		}
		rv := g(origin, t)
		rv.Origin = g
		return rv
	}

	switch kind {
	case KindPosition:
		pa, aok := PositionFrom(a)
		pb, bok := PositionFrom(b)
		if !bok {
			return step(t, a, b)
		}
		if !aok {
			pa = Position{}
		}
		rv := pa.Lerp(pb, t)
		if c.MixedPosition {
			return rv
		}
		return rv.Simplify()

	case KindDualAngle:
		da, aok := DualAngleFrom(a)
		db, bok := DualAngleFrom(b)
		if !bok {
			return step(t, a, b)
		}
		if !aok {
			da = DualAngle{}
		}
		return da.Lerp(db, t)
	}

	fb, bok := asFloat(b)
	if !bok {
		return step(t, a, b)
	}
	fa, aok := asFloat(a)
	if !aok {
		fa = 0
	}

	rv := fa + t*(fb-fa)

	// The result takes the target's numeric type.
	switch b.(type) {
	case int:
		return int(rv)
	case Absolute:
		return Absolute(rv)
	}
	return rv
}

func step(t float64, a, b any) any {
	if t >= 1.0 {
		return b
	}
	return a
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case Absolute:
		return float64(x), true
	}
	return 0, false
}

// InterpolateSpline evaluates a spline through the given control points at
// progress t. Two points form a line, three a quadratic Bezier, four a cubic
// Bezier; longer sequences evaluate as Catmull-Rom segments over a padded
// control sequence. Tuple control points recurse element-wise.
func (c *Config) InterpolateSpline(t float64, spline []any, kind Kind) any {
	if last, ok := spline[len(spline)-1].([]any); ok {
		// Transpose the tuple control points and evaluate per element.
		rv := make([]any, len(last))
		for i := range last {
			column := make([]any, len(spline))
			for j, cp := range spline {
				if tp, ok := cp.([]any); ok && i < len(tp) {
					column[j] = tp[i]
				}
			}
			rv[i] = c.InterpolateSpline(t, column, kind)
		}
		return rv
	}

	if spline[0] == nil {
		return spline[len(spline)-1]
	}

	if c.MixedPosition && kind == KindPosition {
		converted := make([]any, len(spline))
		for i, cp := range spline {
			if p, ok := PositionFrom(cp); ok {
				converted[i] = p
			} else {
				converted[i] = cp
			}
		}
		spline = converted
	}

	var rv any

	switch n := len(spline); {
	case n == 2:
		rv = addVals(scaleVal(spline[0], 1-t), scaleVal(spline[1], t))

	case n == 3:
		rv = addVals(
			scaleVal(spline[0], (1-t)*(1-t)),
			addVals(
				scaleVal(spline[1], 2*t*(1-t)),
				scaleVal(spline[2], t*t)))

	case n == 4:
		rv = addVals(
			addVals(
				scaleVal(spline[0], (1-t)*(1-t)*(1-t)),
				scaleVal(spline[1], 3*t*(1-t)*(1-t))),
			addVals(
				scaleVal(spline[2], 3*t*t*(1-t)),
				scaleVal(spline[3], t*t*t)))

	case t <= 0.0:
		rv = spline[0]

	case t >= 1.0:
		rv = spline[len(spline)-1]

	default:
		// Catmull-Rom over a padded control sequence: the endpoints are
		// duplicated so every interior segment has four neighbors.
		padded := make([]any, 0, len(spline)+2)
		padded = append(padded, spline[1], spline[0])
		padded = append(padded, spline[2:len(spline)-2]...)
		padded = append(padded, spline[len(spline)-1], spline[len(spline)-2])

		inner := float64(len(spline) - 3)

		sector := int(t*inner) + 1
		t = math.Mod(t, 1.0/inner) * inner

		rv = catmullRom(t, padded[sector-1], padded[sector], padded[sector+1], padded[sector+2])
	}

	return convertLike(rv, spline[len(spline)-1])
}

// catmullRom evaluates one centripetal-free Catmull-Rom segment from its
// closed-form basis, clamping t to [0, 1].
func catmullRom(t float64, p1, p0, q1, q2 any) any {
	t = math.Max(0, math.Min(1, t))

	return scaleVal(
		addVals(
			addVals(
				scaleVal(p1, t*((2-t)*t-1)),
				scaleVal(p0, t*t*(3*t-5)+2)),
			addVals(
				scaleVal(q1, t*((4-3*t)*t+1)),
				scaleVal(q2, (t-1)*t*t))),
		0.5)
}

// scaleVal multiplies a numeric or position value by a scalar weight.
func scaleVal(v any, k float64) any {
	if p, ok := v.(Position); ok {
		return p.Mul(k)
	}
	if f, ok := asFloat(v); ok {
		return f * k
	}
	return v
}

// addVals adds two numeric or position values.
func addVals(a, b any) any {
	pa, aok := a.(Position)
	pb, bok := b.(Position)
	if aok || bok {
		if !aok {
			f, _ := asFloat(a)
			pa = Abs(f)
		}
		if !bok {
			f, _ := asFloat(b)
			pb = Abs(f)
		}
		return pa.Add(pb)
	}

	fa, _ := asFloat(a)
	fb, _ := asFloat(b)
	return fa + fb
}

// convertLike coerces rv to the type of the final control point, matching
// how the lerp result takes the target's numeric type.
func convertLike(rv, last any) any {
	if rv == nil {
		return nil
	}

	switch last.(type) {
	case int:
		if f, ok := asFloat(rv); ok {
			return int(f)
		}
	case Absolute:
		if f, ok := asFloat(rv); ok {
			return Absolute(f)
		}
	}
	return rv
}

// checkSplineValue reports whether a value can appear as a spline control
// point: a number, a position, or a tuple of such values.
func checkSplineValue(v any) bool {
	if _, ok := PositionFrom(v); ok {
		return true
	}
	if tup, ok := v.([]any); ok {
		for _, item := range tup {
			if !checkSplineValue(item) {
				return false
			}
		}
		return true
	}
	return false
}

// --- Orientation slerp ---

// eulerToQuat converts (x, y, z) Euler angles in degrees to a quaternion,
// applying the rotations in x, y, z order.
func eulerToQuat(x, y, z float64) (w, qx, qy, qz float64) {
	x *= math.Pi / 360
	y *= math.Pi / 360
	z *= math.Pi / 360

	cx, sx := math.Cos(x), math.Sin(x)
	cy, sy := math.Cos(y), math.Sin(y)
	cz, sz := math.Cos(z), math.Sin(z)

	w = cx*cy*cz + sx*sy*sz
	qx = sx*cy*cz - cx*sy*sz
	qy = cx*sy*cz + sx*cy*sz
	qz = cx*cy*sz - sx*sy*cz
	return
}

// quatToEuler converts a quaternion back to (x, y, z) Euler angles in
// degrees, inverse of eulerToQuat.
func quatToEuler(w, x, y, z float64) (ex, ey, ez float64) {
	sinp := 2 * (w*y - z*x)

	ex = math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))
	if sinp >= 1 {
		ey = math.Pi / 2
	} else if sinp <= -1 {
		ey = -math.Pi / 2
	} else {
		ey = math.Asin(sinp)
	}
	ez = math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))

	ex *= 180 / math.Pi
	ey *= 180 / math.Pi
	ez *= 180 / math.Pi
	return
}

// eulerSlerp spherically interpolates between two orientations given as
// (x, y, z) Euler-angle tuples in degrees.
func eulerSlerp(t float64, old, new []any) []any {
	ox, _ := asFloat(old[0])
	oy, _ := asFloat(old[1])
	oz, _ := asFloat(old[2])
	nx, _ := asFloat(new[0])
	ny, _ := asFloat(new[1])
	nz, _ := asFloat(new[2])

	aw, ax, ay, az := eulerToQuat(ox, oy, oz)
	bw, bx, by, bz := eulerToQuat(nx, ny, nz)

	dot := aw*bw + ax*bx + ay*by + az*bz
	if dot < 0 {
		bw, bx, by, bz = -bw, -bx, -by, -bz
		dot = -dot
	}

	var ka, kb float64
	if dot > 0.9995 {
		// Nearly parallel; fall back to a normalized lerp.
		ka, kb = 1-t, t
	} else {
		theta := math.Acos(dot)
		sin := math.Sin(theta)
		ka = math.Sin((1-t)*theta) / sin
		kb = math.Sin(t*theta) / sin
	}

	w := ka*aw + kb*bw
	x := ka*ax + kb*bx
	y := ka*ay + kb*by
	z := ka*az + kb*bz

	norm := math.Sqrt(w*w + x*x + y*y + z*z)
	if norm != 0 {
		w, x, y, z = w/norm, x/norm, y/norm, z/norm
	}

	rx, ry, rz := quatToEuler(w, x, y, z)
	return []any{rx, ry, rz}
}
