package choreo

import "math"

// cartesianProps are removed from the linear table once a motion goes
// polar; the polar pairs drive them instead.
var cartesianProps = []string{
	"xpos", "ypos", "xanchor", "yanchor",
	"xaround", "yaround", "xanchoraround", "yanchoraround",
}

// interpolation eases a set of properties from the host's current values to
// compiled targets over a fixed duration.
type interpolation struct {
	node
	cfg        *Config
	warper     string
	fn         WarpFunc
	duration   float64
	properties []PropertyValue
	revolution string // "", "clockwise", or "counterclockwise"
	circles    float64
	splines    []splineValue
	forceFrame bool
}

func newInterpolation(loc Location, cfg *Config, warper string, fn WarpFunc, duration float64, properties []PropertyValue, revolution string, circles float64, splines []splineValue) (*interpolation, error) {
	if fn == nil {
		var ok bool
		fn, ok = cfg.Warpers[warper]
		if !ok {
			return nil, errorf(loc, "warper %q is unknown", warper)
		}
	}

	return &interpolation{
		node:       node{loc},
		cfg:        cfg,
		warper:     warper,
		fn:         fn,
		duration:   duration,
		properties: properties,
		revolution: revolution,
		circles:    circles,
		splines:    splines,
		forceFrame: warper == "pause" && duration == 0 && cfg.OneFrame,
	}, nil
}

// interpState is the interpolation table built on the first call and reused
// on every frame after: what lerps linearly, what moves in polar
// coordinates, and the spline control sequences.
type interpState struct {
	linear       map[string][2]any
	angles       *[2]float64
	radii        *[2]any
	anchorAngles *[2]DualAngle
	anchorRadii  *[2]any
	splines      []splineValue
}

func (i *interpolation) execute(h Host, st float64, state any, events []string) (result, error) {
	forceFrame := state == nil && i.forceFrame

	complete := 1.0
	if i.duration > 0 {
		complete = st / i.duration
	}
	if complete < 0 {
		complete = 0
	} else if complete > 1 {
		complete = 1
	}
	complete = i.fn(complete)

	var s *interpState
	if state == nil {
		var err error
		s, err = i.buildState(h)
		if err != nil {
			return result{}, err
		}
	} else {
		s = state.(*interpState)
	}

	cur := h.State()

	for k, pair := range s.linear {
		old, target := pair[0], pair[1]

		var value any
		if k == "orientation" {
			value = i.orient(complete, old, target)
		} else {
			value = i.cfg.Interpolate(complete, old, target, i.cfg.propertyKind(k))
		}

		if err := cur.Set(k, value); err != nil {
			return result{}, errorf(i.Loc, "%v", err)
		}
	}

	if s.angles != nil {
		angle := s.angles[0] + complete*(s.angles[1]-s.angles[0])
		cur.Set("angle", angle)
	}
	if s.radii != nil {
		cur.Set("radius", i.cfg.Interpolate(complete, s.radii[0], s.radii[1], KindPosition))
	}
	if s.anchorAngles != nil {
		cur.Set("anchorangle", s.anchorAngles[0].Lerp(s.anchorAngles[1], complete))
	}
	if s.anchorRadii != nil {
		cur.Set("anchorradius", i.cfg.Interpolate(complete, s.anchorRadii[0], s.anchorRadii[1], KindPosition))
	}

	for _, sp := range s.splines {
		value := i.cfg.InterpolateSpline(complete, sp.values, i.cfg.propertyKind(sp.name))
		if err := cur.Set(sp.name, value); err != nil {
			return result{}, errorf(i.Loc, "%v", err)
		}
	}

	if st >= i.duration && !forceFrame {
		return next(st - i.duration), nil
	}

	// A bare pause can sleep until its deadline; anything that moves
	// values must be re-run every frame.
	if len(i.properties) == 0 && i.revolution == "" && len(i.splines) == 0 {
		return cont(s, math.Max(0, i.duration-st)), nil
	}
	return cont(s, 0), nil
}

// orient interpolates the orientation property by spherical interpolation,
// treating an absent start as the identity rotation.
func (i *interpolation) orient(complete float64, old, target any) any {
	oldT, _ := old.([]any)
	if oldT == nil {
		oldT = []any{0.0, 0.0, 0.0}
	}

	if newT, ok := target.([]any); ok {
		return eulerSlerp(complete, oldT, newT)
	}
	if complete >= 1 {
		return nil
	}
	return old
}

// buildState snapshots the host's properties, diffs them against the
// targets, and splits the difference into linear, polar, and spline parts.
func (i *interpolation) buildState(h Host) (*interpState, error) {
	cur := h.State()
	target := cur.Clone()

	var hasAngle, hasRadius, hasAnchorAngle, hasAnchorRadius bool

	for _, p := range i.properties {
		if err := target.Set(p.Name, p.Value); err != nil {
			return nil, errorf(i.Loc, "%v", err)
		}

		switch p.Name {
		case "angle":
			hasAngle = true
		case "radius":
			hasRadius = true
		case "anchorangle":
			hasAnchorAngle = true
		case "anchorradius":
			hasAnchorRadius = true
		}
	}

	linear := cur.Diff(target)
	s := &interpState{linear: linear}

	polar := i.revolution != "" ||
		((hasAngle || hasRadius) && i.cfg.PolarMotion) ||
		hasAnchorAngle || hasAnchorRadius

	if polar {
		for _, k := range cartesianProps {
			delete(linear, k)
		}

		if i.revolution != "" {
			i.buildRevolution(cur, target, s)
			for _, k := range []string{"angle", "radius", "anchorangle", "anchorradius"} {
				delete(linear, k)
			}
		} else {
			if hasAngle {
				delete(linear, "angle")
				start := floatOf(cur.Get("angle"))
				end := floatOf(target.Get("angle"))

				// Without a direction, take the short way around.
				if end-start > 180 {
					start += 360
				}
				if end-start < -180 {
					start -= 360
				}
				s.angles = &[2]float64{start, end}
			}

			if hasRadius {
				delete(linear, "radius")
				s.radii = &[2]any{cur.Get("radius"), target.Get("radius")}
			}

			if hasAnchorAngle {
				delete(linear, "anchorangle")
				start := dualOf(cur.Get("anchorangle"))
				end := dualOf(target.Get("anchorangle"))

				if end.Absolute-start.Absolute > 180 {
					start.Absolute += 360
				}
				if end.Absolute-start.Absolute < -180 {
					start.Absolute -= 360
				}
				if end.Relative-start.Relative > 180 {
					start.Relative += 360
				}
				if end.Relative-start.Relative < -180 {
					start.Relative -= 360
				}
				s.anchorAngles = &[2]DualAngle{start, end}
			}

			if hasAnchorRadius {
				delete(linear, "anchorradius")
				s.anchorRadii = &[2]any{cur.Get("anchorradius"), target.Get("anchorradius")}
			}
		}
	}

	for _, sp := range i.splines {
		values := make([]any, 0, len(sp.values)+1)
		values = append(values, cur.Get(sp.name))
		values = append(values, sp.values...)
		s.splines = append(s.splines, splineValue{sp.name, values})
	}

	// Targets the diff considered unchanged still get written once, so the
	// host ends up with every named property set.
	for _, p := range i.properties {
		if _, ok := linear[p.Name]; !ok {
			if err := cur.Set(p.Name, p.Value); err != nil {
				return nil, errorf(i.Loc, "%v", err)
			}
		}
	}

	return s, nil
}

// buildRevolution sets up a directed polar motion: the angles are pushed
// apart by whole turns so the motion sweeps the requested direction and
// circle count.
func (i *interpolation) buildRevolution(cur, target *State, s *interpState) {
	// Revolve around the newly requested point.
	cur.Set("xaround", orZeroPos(target.Get("xaround")))
	cur.Set("yaround", orZeroPos(target.Get("yaround")))
	cur.Set("xanchoraround", target.Get("xanchoraround"))
	cur.Set("yanchoraround", target.Get("yanchoraround"))

	startAngle := floatOf(cur.Get("angle"))
	endAngle := floatOf(target.Get("angle"))
	startAnchor := dualOf(cur.Get("anchorangle"))
	endAnchor := dualOf(target.Get("anchorangle"))

	switch i.revolution {
	case "clockwise":
		if endAngle < startAngle {
			startAngle -= 360
		}
		if endAnchor.Absolute < startAnchor.Absolute {
			endAnchor.Absolute -= 360
		}
		if endAnchor.Relative < startAnchor.Relative {
			endAnchor.Relative -= 360
		}

		startAngle -= i.circles * 360
		startAnchor.Absolute -= i.circles * 360
		startAnchor.Relative -= i.circles * 360

	case "counterclockwise":
		if endAngle > startAngle {
			startAngle += 360
		}
		if endAnchor.Absolute > startAnchor.Absolute {
			endAnchor.Absolute += 360
		}
		if endAnchor.Relative > startAnchor.Relative {
			endAnchor.Relative += 360
		}

		startAngle += i.circles * 360
		startAnchor.Absolute += i.circles * 360
		startAnchor.Relative += i.circles * 360
	}

	s.angles = &[2]float64{startAngle, endAngle}
	s.radii = &[2]any{cur.Get("radius"), target.Get("radius")}
	s.anchorAngles = &[2]DualAngle{startAnchor, endAnchor}
	s.anchorRadii = &[2]any{cur.Get("anchorradius"), target.Get("anchorradius")}
}

func floatOf(v any) float64 {
	f, _ := asFloat(v)
	return f
}

func dualOf(v any) DualAngle {
	d, _ := DualAngleFrom(v)
	return d
}

func orZeroPos(v any) any {
	if v == nil {
		return Abs(0)
	}
	return v
}
