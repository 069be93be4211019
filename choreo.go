package choreo

import (
	"fmt"

	"github.com/tanema/gween/ease"
)

// Location is a position in animation source text, carried by every parse,
// compile, and execution error.
type Location struct {
	File string
	Line int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Error is a failure in animation code, annotated with the source location
// of the statement that caused it.
type Error struct {
	Loc Location
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Loc, e.Msg)
}

func errorf(loc Location, format string, args ...any) error {
	return &Error{Loc: loc, Msg: fmt.Sprintf(format, args...)}
}

// WarpFunc maps normalized progress in [0, 1] to eased progress. The language
// calls these warpers; the stock set comes from gween's easing catalogue.
type WarpFunc func(t float64) float64

// Kind describes how a property's values interpolate.
type Kind uint8

const (
	KindAny       Kind = iota // step for opaque values, numeric lerp otherwise
	KindFloat                 // plain scalar
	KindBool                  // step function only
	KindPosition              // dual absolute/relative coordinate
	KindDualAngle             // dual absolute/relative angle
)

// Property describes a registered animatable property.
//
// Compound properties either Split a tuple value across several component
// properties (pos stores into xpos and ypos) or Fanout a single scalar into
// several (xalign stores into both xpos and xanchor). Compound properties are
// never stored themselves.
type Property struct {
	Kind    Kind
	Split   []string
	Fanout  []string
	Default any
}

// Config carries the registries and policy switches the parser, compiler,
// and interpreter consult. Hosts build one at startup (usually from
// DefaultConfig), register their properties and constants, and pass it
// everywhere; the package keeps no global state.
type Config struct {
	// Warpers maps easing-function names usable in animation source.
	Warpers map[string]WarpFunc

	// Properties maps animatable property names to their descriptors.
	Properties map[string]Property

	// Constants are the names the expression language may reference outside
	// of any binding context. A block that touches only these stays globally
	// constant and its compiled form is shared across hosts.
	Constants map[string]any

	// MixedPosition interpolates dual-coordinate positions as pairs instead
	// of collapsing them to the target's plain type.
	MixedPosition bool

	// PolarMotion converts angle and radius targets into polar
	// interpolation even without an explicit revolution direction.
	PolarMotion bool

	// OneFrame guarantees a zero-duration pause still displays for one
	// frame before the block advances.
	OneFrame bool

	// StartOnShow measures block time from the first frame the host is
	// actually shown rather than from time zero.
	StartOnShow bool

	// FunctionAlwaysBlocks makes function statements receive the true
	// statement time on their first call instead of zero.
	FunctionAlwaysBlocks bool

	// Animations created before CompileAll runs, so constant blocks can be
	// compiled eagerly once setup finishes.
	compileQueue []*Animation
}

// DefaultConfig returns a Config with the stock warpers, the standard
// transform property set, and the default policy switches.
func DefaultConfig() *Config {
	return &Config{
		Warpers:       defaultWarpers(),
		Properties:    defaultProperties(),
		Constants:     map[string]any{},
		MixedPosition: true,
		PolarMotion:   true,
		OneFrame:      true,
		StartOnShow:   true,
	}
}

// penner adapts a gween easing function to the warper shape. The gween
// catalogue uses Penner's (time, begin, change, duration) signature; warpers
// work on normalized progress.
func penner(fn ease.TweenFunc) WarpFunc {
	return func(t float64) float64 {
		return float64(fn(float32(t), 0, 1, 1))
	}
}

func defaultWarpers() map[string]WarpFunc {
	w := map[string]WarpFunc{
		// pause holds the start value until the full duration has elapsed.
		"pause": func(t float64) float64 {
			if t < 1.0 {
				return 0.0
			}
			return 1.0
		},
		// instant jumps straight to the end value.
		"instant": func(t float64) float64 {
			return 1.0
		},

		"linear":  penner(ease.Linear),
		"ease":    penner(ease.InOutSine),
		"easein":  penner(ease.OutSine),
		"easeout": penner(ease.InSine),
	}

	families := map[string]struct{ in, out, inout ease.TweenFunc }{
		"quad":    {ease.InQuad, ease.OutQuad, ease.InOutQuad},
		"cubic":   {ease.InCubic, ease.OutCubic, ease.InOutCubic},
		"quart":   {ease.InQuart, ease.OutQuart, ease.InOutQuart},
		"quint":   {ease.InQuint, ease.OutQuint, ease.InOutQuint},
		"expo":    {ease.InExpo, ease.OutExpo, ease.InOutExpo},
		"circ":    {ease.InCirc, ease.OutCirc, ease.InOutCirc},
		"back":    {ease.InBack, ease.OutBack, ease.InOutBack},
		"bounce":  {ease.InBounce, ease.OutBounce, ease.InOutBounce},
		"elastic": {ease.InElastic, ease.OutElastic, ease.InOutElastic},
	}

	for name, f := range families {
		w["easein_"+name] = penner(f.in)
		w["easeout_"+name] = penner(f.out)
		w["ease_"+name] = penner(f.inout)
	}

	return w
}

func defaultProperties() map[string]Property {
	p := map[string]Property{
		// Stored scalar properties.
		"xpos":        {Kind: KindPosition, Default: Abs(0)},
		"ypos":        {Kind: KindPosition, Default: Abs(0)},
		"xanchor":     {Kind: KindPosition, Default: Abs(0)},
		"yanchor":     {Kind: KindPosition, Default: Abs(0)},
		"xoffset":     {Kind: KindFloat, Default: 0.0},
		"yoffset":     {Kind: KindFloat, Default: 0.0},
		"rotate":      {Kind: KindFloat},
		"zoom":        {Kind: KindFloat, Default: 1.0},
		"xzoom":       {Kind: KindFloat, Default: 1.0},
		"yzoom":       {Kind: KindFloat, Default: 1.0},
		"alpha":       {Kind: KindFloat, Default: 1.0},
		"additive":    {Kind: KindFloat, Default: 0.0},
		"xsize":       {Kind: KindPosition},
		"ysize":       {Kind: KindPosition},
		"visible":     {Kind: KindBool, Default: true},
		"orientation": {Kind: KindAny},
		"matrixcolor": {Kind: KindAny},
		"mesh":        {Kind: KindBool, Default: false},
		"events":      {Kind: KindBool, Default: true},
		"crop":        {Kind: KindAny},

		// Polar motion.
		"angle":         {Kind: KindFloat},
		"radius":        {Kind: KindPosition},
		"xaround":       {Kind: KindPosition, Default: Abs(0)},
		"yaround":       {Kind: KindPosition, Default: Abs(0)},
		"anchorangle":   {Kind: KindDualAngle},
		"anchorradius":  {Kind: KindPosition},
		"xanchoraround": {Kind: KindFloat},
		"yanchoraround": {Kind: KindFloat},

		// Compound properties.
		"pos":      {Kind: KindPosition, Split: []string{"xpos", "ypos"}},
		"anchor":   {Kind: KindPosition, Split: []string{"xanchor", "yanchor"}},
		"offset":   {Kind: KindFloat, Split: []string{"xoffset", "yoffset"}},
		"around":   {Kind: KindPosition, Split: []string{"xaround", "yaround"}},
		"align":    {Kind: KindPosition, Split: []string{"xalign", "yalign"}},
		"size":     {Kind: KindPosition, Split: []string{"xsize", "ysize"}},
		"xysize":   {Kind: KindPosition, Split: []string{"xsize", "ysize"}},
		"xalign":   {Kind: KindPosition, Fanout: []string{"xpos", "xanchor"}},
		"yalign":   {Kind: KindPosition, Fanout: []string{"ypos", "yanchor"}},
		"xycenter": {Kind: KindPosition, Split: []string{"xcenter", "ycenter"}},

		// xcenter and ycenter store a position and pin the matching anchor
		// to the middle; State.Set treats them specially.
		"xcenter": {Kind: KindPosition},
		"ycenter": {Kind: KindPosition},
	}

	return p
}

// propertyKind looks up the interpolation kind for a property name.
// Unregistered u_ properties are treated as opaque.
func (c *Config) propertyKind(name string) Kind {
	if p, ok := c.Properties[name]; ok {
		return p.Kind
	}
	return KindAny
}

// Defer queues an animation for CompileAll. NewAnimation calls this
// automatically.
func (c *Config) Defer(a *Animation) {
	c.compileQueue = append(c.compileQueue, a)
}

// CompileAll eagerly compiles every queued animation whose block proved
// globally constant, then clears the queue. Hosts call this once setup is
// finished so shared blocks exist before the first frame.
func (c *Config) CompileAll() error {
	queue := c.compileQueue
	c.compileQueue = nil

	for _, a := range queue {
		if a.raw.konst == globalConst {
			if _, err := a.Compile(); err != nil {
				return err
			}
		}
	}

	return nil
}
