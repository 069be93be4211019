package choreo

import "sort"

// Parameter is one formal parameter of a parameterized animation.
type Parameter struct {
	Name       string
	Default    any
	HasDefault bool
}

// Signature is the parameter list a parameterized animation is declared
// with. Arguments are bound by name through Animation.With.
type Signature struct {
	Parameters []Parameter
}

// Animation binds a parsed block to a configuration and an argument scope.
// The compiled form is built lazily and, for blocks free of per-instance
// bindings, shared between every animation and host using the block.
//
// One Animation value describes the animation; each Transform runs its own
// instance, so a single Animation may drive any number of hosts.
type Animation struct {
	cfg     *Config
	raw     *RawBlock
	context *Context
	params  *Signature
	parent  *Animation

	block      *block
	properties []PropertyValue

	// Per-instance execution state.
	state     any
	done      bool
	started   bool
	stOffset  float64
	event     string
	lastEvent string
}

// NewAnimation binds a parsed block to a configuration and a fixed scope.
// The scope maps the free names the block's expressions may reference; nil
// means none. The animation is queued for Config.CompileAll.
func NewAnimation(raw *RawBlock, cfg *Config, scope map[string]any) *Animation {
	names := make([]string, 0, len(scope))
	for name := range scope {
		names = append(names, name)
	}
	sort.Strings(names)
	raw.analyze(cfg, names)

	a := &Animation{
		cfg:     cfg,
		raw:     raw,
		context: NewContext(cfg, scope),
	}
	cfg.Defer(a)
	return a
}

// NewParameterized binds a parsed block that takes parameters. The animation
// cannot compile until every parameter without a default has been bound with
// With.
func NewParameterized(raw *RawBlock, cfg *Config, sig *Signature) *Animation {
	names := make([]string, 0, len(sig.Parameters))
	for _, p := range sig.Parameters {
		names = append(names, p.Name)
	}
	raw.analyze(cfg, names)

	a := &Animation{
		cfg:     cfg,
		raw:     raw,
		context: NewContext(cfg, nil),
		params:  sig,
	}
	cfg.Defer(a)
	return a
}

// With binds arguments by name and returns the resulting animation. The
// receiver is unchanged, so one parameterized animation can be instantiated
// any number of times.
func (a *Animation) With(args map[string]any) (*Animation, error) {
	if a.params == nil {
		return nil, errorf(a.raw.Loc, "animation takes no parameters")
	}

	declared := map[string]bool{}
	for _, p := range a.params.Parameters {
		declared[p.Name] = true
	}
	for name := range args {
		if !declared[name] {
			return nil, errorf(a.raw.Loc, "animation has no parameter %q", name)
		}
	}

	scope := map[string]any{}
	for k, v := range a.context.scope {
		scope[k] = v
	}
	for k, v := range args {
		scope[k] = v
	}

	na := &Animation{
		cfg:     a.cfg,
		raw:     a.raw,
		context: NewContext(a.cfg, scope),
		params:  a.params,
		parent:  a,
	}
	a.cfg.Defer(na)
	return na, nil
}

// instance returns a copy with fresh execution state, sharing the compiled
// form with the original.
func (a *Animation) instance() *Animation {
	na := *a
	na.state = nil
	na.done = false
	na.started = false
	na.stOffset = 0
	na.event = ""
	na.lastEvent = ""
	return &na
}

// Compile builds the compiled form if it has not been built yet and returns
// it. Globally constant blocks reuse the block-wide shared form; everything
// else compiles against this animation's scope.
func (a *Animation) Compile() (Statement, error) {
	if a.block != nil {
		return a.block, nil
	}

	constant := a.raw.konst == globalConst

	if !constant && a.params != nil {
		for _, p := range a.params.Parameters {
			if p.HasDefault {
				continue
			}
			if _, ok := a.context.scope[p.Name]; !ok {
				return nil, errorf(a.raw.Loc, "animation is missing a value for parameter %q", p.Name)
			}
		}
	}

	if constant && a.raw.compiled != nil {
		a.block = a.raw.compiled
	} else {
		ctx := a.context
		if a.params != nil {
			scope := map[string]any{}
			for _, p := range a.params.Parameters {
				if p.HasDefault {
					scope[p.Name] = p.Default
				}
			}
			for k, v := range a.context.scope {
				scope[k] = v
			}
			ctx = NewContext(a.cfg, scope)
		}

		b, err := a.raw.compileBlock(ctx)
		if err != nil {
			return nil, err
		}
		a.block = b
	}

	a.properties = flattenProperties(a.block)

	// A constant block compiled through a derived animation is handed back
	// to the parent, which would compile to the same thing anyway.
	if constant && a.parent != nil && a.parent.block == nil {
		a.parent.block = a.block
		a.parent.properties = a.properties
	}

	return a.block, nil
}

// flattenProperties reduces a block of instant interpolations to a flat
// property list. Blocks doing anything else flatten to nil.
func flattenProperties(b *block) []PropertyValue {
	var props []PropertyValue
	for _, s := range b.statements {
		i, ok := s.(*interpolation)
		if !ok || i.duration != 0 || len(i.splines) > 0 || i.revolution != "" {
			return nil
		}
		props = append(props, i.properties...)
	}
	return props
}

// Properties returns the animation's flat property list, or nil when the
// animation does more than set properties instantly. Used when one animation
// is included inside another's interpolation.
func (a *Animation) Properties() []PropertyValue {
	if _, err := a.Compile(); err != nil {
		return nil
	}
	return a.properties
}

// SetEvent queues a named event. The event is delivered on the next Execute
// and stays current until a different event is set.
func (a *Animation) SetEvent(name string) { a.event = name }

// Done reports whether execution has run off the end of the block.
func (a *Animation) Done() bool { return a.done }

// HandlesEvent reports whether any handler in the animation responds to the
// named event.
func (a *Animation) HandlesEvent(name string) bool {
	if _, err := a.Compile(); err != nil {
		return false
	}
	return a.block.handlesEvent(name)
}

// Execute runs one frame. st is the time since the host was shown and at the
// time since it first appeared on screen; the returned pause is how long the
// driver may wait before the next call matters, or NoDeadline.
func (a *Animation) Execute(h Host, st, at float64) (float64, error) {
	if a.done {
		return NoDeadline, nil
	}

	if _, err := a.Compile(); err != nil {
		return 0, err
	}

	if !a.started {
		a.started = true
		if a.cfg.StartOnShow {
			a.stOffset = st
		}
	}
	st -= a.stOffset

	var events []string
	if h.HideRequested() {
		events = append(events, "hide")
	}
	if h.ReplacedRequested() {
		events = append(events, "replaced")
	}
	if a.event != "" && a.event != a.lastEvent {
		events = append(events, a.event)
		a.lastEvent = a.event
	}

	// An animation-timebase block keeps its clock running across restarts
	// of the block itself.
	timebase := st
	if a.raw.animation {
		timebase = at
	}

	res, err := a.block.execute(h, timebase, a.state, events)
	if err != nil {
		a.done = true
		return 0, err
	}

	if res.action == actionContinue {
		a.state = res.state
		return res.pause, nil
	}

	a.done = true
	a.state = nil
	return NoDeadline, nil
}

// TakeStateFrom adopts the execution state of another animation instance, so
// a replacement keeps playing where its predecessor was. It reports whether
// the state was transferable: the animations must share a source block and,
// when not globally constant, compile to structurally equal forms.
func (a *Animation) TakeStateFrom(other *Animation) bool {
	if other == nil || a.raw != other.raw {
		return false
	}
	if other.block == nil {
		return false
	}

	if _, err := a.Compile(); err != nil {
		return false
	}

	if a.raw.konst != globalConst && !DeepCompare(a.block, other.block) {
		return false
	}

	a.state = other.state
	a.done = other.done
	a.started = other.started
	a.stOffset = other.stOffset
	a.event = other.event
	a.lastEvent = other.lastEvent
	return true
}
