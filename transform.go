package choreo

import (
	"fmt"
	"math/rand/v2"
	"reflect"
	"time"
)

// Host is the object an animation drives. It owns the property state the
// animation writes into, the optional child payload, and the hide/replace
// handshake flags.
type Host interface {
	// State returns the host's animatable property state.
	State() *State

	// Child and RawChild return the displayed and the as-assigned child
	// payloads; SetChild replaces both.
	Child() any
	RawChild() any
	SetChild(raw, displayed any)

	// HideRequested and ReplacedRequested report that the host is being
	// taken off screen; DelayHide asks to stay shown one more frame.
	HideRequested() bool
	ReplacedRequested() bool
	DelayHide()

	// DisplayedTime is the time since the host first appeared, which keeps
	// running across animation restarts.
	DisplayedTime() float64

	// Rand is the source used by weighted random choices.
	Rand() *rand.Rand
}

// State holds the current values of a host's animatable properties. Values
// are stored per component property; compound names split, fan out, or
// special-case on Set.
type State struct {
	cfg    *Config
	values map[string]any
}

func NewState(cfg *Config) *State {
	return &State{cfg: cfg, values: map[string]any{}}
}

// Get returns the current value of a property, or its registered default if
// it has never been set. Compound properties are reassembled from their
// components.
func (s *State) Get(name string) any {
	p, ok := s.cfg.Properties[name]
	if !ok {
		return s.values[name]
	}

	if len(p.Split) > 0 {
		parts := make([]any, len(p.Split))
		for i, c := range p.Split {
			parts[i] = s.Get(c)
		}
		return parts
	}
	if len(p.Fanout) > 0 {
		return s.Get(p.Fanout[0])
	}

	switch name {
	case "xcenter":
		return s.Get("xpos")
	case "ycenter":
		return s.Get("ypos")
	}

	if v, ok := s.values[name]; ok {
		return v
	}
	return p.Default
}

// Set stores a property value, converting it to the property's kind. A nil
// value clears the property back to unset semantics for kinds that allow it.
func (s *State) Set(name string, value any) error {
	p, ok := s.cfg.Properties[name]
	if !ok {
		return fmt.Errorf("property %q is unknown", name)
	}

	if len(p.Split) > 0 {
		if value == nil {
			for _, c := range p.Split {
				if err := s.Set(c, nil); err != nil {
					return err
				}
			}
			return nil
		}

		parts, ok := value.([]any)
		if !ok || len(parts) != len(p.Split) {
			return fmt.Errorf("property %q takes %d components, got %v", name, len(p.Split), value)
		}
		for i, c := range p.Split {
			if err := s.Set(c, parts[i]); err != nil {
				return err
			}
		}
		return nil
	}

	if len(p.Fanout) > 0 {
		for _, c := range p.Fanout {
			if err := s.Set(c, value); err != nil {
				return err
			}
		}
		return nil
	}

	// Centering stores a position and pins the matching anchor to the
	// middle of the host.
	switch name {
	case "xcenter":
		if err := s.Set("xpos", value); err != nil {
			return err
		}
		return s.Set("xanchor", 0.5)
	case "ycenter":
		if err := s.Set("ypos", value); err != nil {
			return err
		}
		return s.Set("yanchor", 0.5)
	}

	v, err := convertKind(p.Kind, value)
	if err != nil {
		return fmt.Errorf("property %q: %v", name, err)
	}
	s.values[name] = v
	return nil
}

func convertKind(kind Kind, value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch kind {
	case KindFloat:
		f, ok := asFloat(value)
		if !ok {
			return nil, fmt.Errorf("want a number, got %T", value)
		}
		return f, nil

	case KindBool:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("want a bool, got %T", value)
		}
		return b, nil

	case KindPosition:
		p, ok := PositionFrom(value)
		if !ok {
			return nil, fmt.Errorf("want a position, got %T", value)
		}
		return p, nil

	case KindDualAngle:
		d, ok := DualAngleFrom(value)
		if !ok {
			return nil, fmt.Errorf("want an angle, got %T", value)
		}
		return d, nil
	}

	return value, nil
}

// Clone returns a copy sharing no storage with the original. Stored values
// themselves are immutable and shared.
func (s *State) Clone() *State {
	values := make(map[string]any, len(s.values))
	for k, v := range s.values {
		values[k] = v
	}
	return &State{cfg: s.cfg, values: values}
}

// Diff pairs every property whose value differs between s and newer, keyed
// by property name, as [old, new].
func (s *State) Diff(newer *State) map[string][2]any {
	diff := map[string][2]any{}
	for k, nv := range newer.values {
		ov := s.Get(k)
		if !reflect.DeepEqual(ov, nv) {
			diff[k] = [2]any{ov, nv}
		}
	}
	return diff
}

// Float returns a scalar property resolved to a float64; unset reads as 0.
func (s *State) Float(name string) float64 {
	return floatOf(s.Get(name))
}

// Bool returns a boolean property; unset reads as false.
func (s *State) Bool(name string) bool {
	b, _ := s.Get(name).(bool)
	return b
}

// ResolvePos resolves a position-valued property against a span of the given
// size. Unset reads as 0.
func (s *State) ResolvePos(name string, span float64) float64 {
	v := s.Get(name)
	if v == nil {
		return 0
	}
	p, ok := PositionFrom(v)
	if !ok {
		return 0
	}
	return p.Resolve(span)
}

// Transform is the stock Host: it owns a State, drives one animation, and
// tracks the hide and replace handshakes. Create one per displayed object.
type Transform struct {
	cfg  *Config
	anim *Animation

	state    *State
	rawChild any
	child    any

	// HideRequest and ReplacedRequest are set by the owner when the object
	// is leaving the screen; the matching Response flags report whether the
	// animation has finished its teardown and the object may be removed.
	HideRequest      bool
	ReplacedRequest  bool
	HideResponse     bool
	ReplacedResponse bool

	// Pause is the scheduling hint from the last Update: how long the
	// driver may wait before the next Update matters, or negative for no
	// deadline.
	Pause float64

	shown     float64
	displayed float64
	rng       *rand.Rand
}

// NewTransform builds a host running the given animation. The animation's
// compiled block is shared where possible; per-host progress lives here.
func NewTransform(cfg *Config, anim *Animation) *Transform {
	t := &Transform{
		cfg:   cfg,
		anim:  anim.instance(),
		state: NewState(cfg),
		Pause: noDeadline,

		HideResponse:     true,
		ReplacedResponse: true,
	}

	// Appearing on screen is itself an event.
	t.anim.SetEvent("show")
	return t
}

func (t *Transform) State() *State { return t.state }

func (t *Transform) Child() any    { return t.child }
func (t *Transform) RawChild() any { return t.rawChild }

func (t *Transform) SetChild(raw, displayed any) {
	t.rawChild = raw
	t.child = displayed
}

func (t *Transform) HideRequested() bool     { return t.HideRequest }
func (t *Transform) ReplacedRequested() bool { return t.ReplacedRequest }

func (t *Transform) DelayHide() {
	if t.HideRequest {
		t.HideResponse = false
	}
	if t.ReplacedRequest {
		t.ReplacedResponse = false
	}
}

func (t *Transform) DisplayedTime() float64 { return t.displayed }

func (t *Transform) Rand() *rand.Rand {
	if t.rng == nil {
		now := uint64(time.Now().UnixNano())
		t.rng = rand.New(rand.NewPCG(now, now>>32))
	}
	return t.rng
}

// SetRand replaces the random source. Useful for deterministic replay.
func (t *Transform) SetRand(r *rand.Rand) { t.rng = r }

// Animation returns the animation instance this transform runs.
func (t *Transform) Animation() *Animation { return t.anim }

// SetEvent queues a named event for the next Update.
func (t *Transform) SetEvent(name string) { t.anim.SetEvent(name) }

// Update advances the clocks by dt and runs the animation for this frame.
func (t *Transform) Update(dt float64) error {
	t.shown += dt
	t.displayed += dt

	// A pending hide or replace resets the response each frame; the
	// animation calls DelayHide to keep the object alive.
	if t.HideRequest {
		t.HideResponse = true
	}
	if t.ReplacedRequest {
		t.ReplacedResponse = true
	}

	pause, err := t.anim.Execute(t, t.shown, t.displayed)
	if err != nil {
		return err
	}
	t.Pause = pause
	return nil
}

// Done reports whether the animation has run to completion.
func (t *Transform) Done() bool { return t.anim.Done() }

// Hide begins the hide handshake and reports whether the transform may be
// removed immediately. While it returns false, keep calling Update and
// checking HideFinished.
func (t *Transform) Hide() bool {
	t.HideRequest = true
	if !t.anim.HandlesEvent("hide") {
		return true
	}
	return false
}

// HideFinished reports whether a requested hide has completed.
func (t *Transform) HideFinished() bool {
	return !t.HideRequest || t.HideResponse
}
