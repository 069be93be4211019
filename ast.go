package choreo

import "strings"

// constness records whether a statement's expressions are free of
// per-instance bindings. The zero value is the conservative one.
type constness uint8

const (
	notConst constness = iota
	globalConst
)

func minConst(a, b constness) constness {
	if b < a {
		return b
	}
	return a
}

// analysis carries what markConstant needs: the constant registry and the
// set of names shadowed by parameters.
type analysis struct {
	cfg      *Config
	nonConst map[string]bool
}

// constExpr reports the constness of a single expression. A nil expression
// is trivially constant.
func (an *analysis) constExpr(e Expr) constness {
	if e == nil || e.constant(an) {
		return globalConst
	}
	return notConst
}

// rawStatement is one parsed statement, before expression evaluation.
type rawStatement interface {
	compile(ctx *Context) (Statement, error)
	markConstant(an *analysis)
	konstness() constness
	location() Location
}

// rawNode is the common part of every raw statement.
type rawNode struct {
	Loc   Location
	konst constness
}

func (n *rawNode) konstness() constness { return n.konst }
func (n *rawNode) location() Location   { return n.Loc }

// PropertyValue is a property name paired with its compiled target value.
type PropertyValue struct {
	Name  string
	Value any
}

// --- Block ---

// RawBlock is a parsed animation block, the root of every parsed program.
// Obtain one from ParseBlock and hand it to NewAnimation; a single RawBlock
// may back any number of animations.
type RawBlock struct {
	rawNode

	statements []rawStatement

	// animation switches the timebase from shown-time to displayed-time.
	animation bool

	// compiled is the shared compiled form, cached once the block proves
	// globally constant. It is never mutated after being published.
	compiled *block

	// compiling guards against a block that reaches itself through its own
	// bindings.
	compiling bool

	analyzed bool
}

func (b *RawBlock) compile(ctx *Context) (Statement, error) {
	return b.compileBlock(ctx)
}

func (b *RawBlock) compileBlock(ctx *Context) (*block, error) {
	if b.compiling {
		return nil, errorf(b.Loc, "animation refers to itself in a cycle")
	}
	b.compiling = true
	defer func() { b.compiling = false }()

	statements := make([]Statement, 0, len(b.statements))
	for _, raw := range b.statements {
		s, err := raw.compile(ctx)
		if err != nil {
			return nil, err
		}
		statements = append(statements, s)
	}

	return newBlock(b.Loc, statements), nil
}

// analyze folds constness over the block and, when the block proves globally
// constant, compiles it once against the empty context so every animation
// sharing this block reuses the result. A failure during that eager compile
// downgrades the block to non-constant instead of surfacing.
func (b *RawBlock) analyze(cfg *Config, nonConst []string) {
	if b.analyzed {
		return
	}
	b.analyzed = true

	an := &analysis{cfg: cfg, nonConst: map[string]bool{}}
	for _, name := range nonConst {
		an.nonConst[name] = true
	}

	b.markConstant(an)

	if b.konst != globalConst {
		return
	}

	compiled, err := b.compileBlock(NewContext(cfg, nil))
	if err != nil {
		b.konst = notConst
		return
	}
	b.compiled = compiled
}

func (b *RawBlock) markConstant(an *analysis) {
	konst := globalConst
	for _, s := range b.statements {
		s.markConstant(an)
		konst = minConst(konst, s.konstness())
	}
	b.konst = konst
}

// --- Multipurpose ---

// incompatibleProps lists, for each compound property, the component
// properties it would fight over.
var incompatibleProps = map[string][]string{
	"align":        {"xanchor", "yanchor", "xpos", "ypos"},
	"anchor":       {"xanchor", "yanchor"},
	"angle":        {"xpos", "ypos"},
	"anchorangle":  {"xanchor", "yanchor"},
	"anchorradius": {"xanchor", "yanchor"},
	"around":       {"xaround", "yaround", "xanchoraround", "yanchoraround"},
	"offset":       {"xoffset", "yoffset"},
	"pos":          {"xpos", "ypos"},
	"radius":       {"xpos", "ypos"},
	"size":         {"xsize", "ysize"},
	"xalign":       {"xpos", "xanchor"},
	"xcenter":      {"xpos", "xanchor"},
	"xycenter":     {"xpos", "ypos", "xanchor", "yanchor"},
	"xysize":       {"xsize", "ysize"},
	"yalign":       {"ypos", "yanchor"},
	"ycenter":      {"ypos", "yanchor"},
}

// compatiblePairs are property pairs exempt from the conflict diagnostic:
// together they describe one polar motion.
var compatiblePairs = [][2]string{
	{"radius", "angle"},
	{"anchorradius", "anchorangle"},
}

func propFootprint(name string) []string {
	if props, ok := incompatibleProps[name]; ok {
		return append([]string{name}, props...)
	}
	return []string{name}
}

// rawMultipurpose is the interpolation-shaped statement: a warper and
// duration plus any mix of properties, splines, expressions, and revolution
// clauses. What it compiles to is decided once the expressions have values:
// a pause, an interpolation, an inlined animation, or a child change.
type rawMultipurpose struct {
	rawNode

	warper     string
	duration   Expr
	warpFn     Expr
	properties []rawProperty
	splines    []rawSpline
	exprs      []rawExpression
	revolution string
	circles    Expr
}

type rawProperty struct {
	name string
	expr Expr
}

type rawSpline struct {
	name  string
	exprs []Expr
}

type rawExpression struct {
	expr Expr
	with Expr
}

// addProperty records a property clause and returns the name of a
// previously added property it conflicts with, "" if none. Adding the same
// property twice reports the property itself.
func (rm *rawMultipurpose) addProperty(name string, expr Expr) string {
	newly := propFootprint(name)

	old := ""
	for _, p := range rm.properties {
		held := propFootprint(p.name)
		if intersects(newly, held) {
			old = p.name
			break
		}
	}

	rm.properties = append(rm.properties, rawProperty{name, expr})

	if old != "" && old != name {
		for _, pair := range compatiblePairs {
			if (pair[0] == old && pair[1] == name) || (pair[0] == name && pair[1] == old) {
				return ""
			}
		}
	}

	return old
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func (rm *rawMultipurpose) compile(ctx *Context) (Statement, error) {
	cfg := ctx.cfg

	// With no warper and no properties, a lone expression is a pause, an
	// animation call, or a child change.
	if rm.warper == "" && rm.warpFn == nil &&
		len(rm.properties) == 0 && len(rm.splines) == 0 && len(rm.exprs) == 1 {

		value, err := ctx.Eval(rm.exprs[0].expr)
		if err != nil {
			return nil, errorf(rm.Loc, "could not evaluate expression %s: %v", rm.exprs[0].expr, err)
		}

		if d, ok := asFloat(value); ok {
			return newInterpolation(rm.Loc, cfg, "pause", nil, d, nil, "", 0, nil)
		}

		if anim, ok := value.(*Animation); ok {
			return anim.Compile()
		}

		var transition Transition
		if rm.exprs[0].with != nil {
			tv, err := ctx.Eval(rm.exprs[0].with)
			if err != nil {
				return nil, errorf(rm.Loc, "could not evaluate transition: %v", err)
			}
			t, ok := tv.(Transition)
			if !ok {
				return nil, errorf(rm.Loc, "with clause requires a Transition, got %T", tv)
			}
			transition = t
		}

		return &childStmt{node: node{rm.Loc}, child: value, transition: transition}, nil
	}

	// Otherwise this is an interpolation.
	var fn WarpFunc
	name := rm.warper

	if rm.warpFn != nil {
		v, err := ctx.Eval(rm.warpFn)
		if err != nil {
			return nil, errorf(rm.Loc, "could not evaluate warp function: %v", err)
		}
		switch w := v.(type) {
		case WarpFunc:
			fn = w
		case func(float64) float64:
			fn = w
		default:
			return nil, errorf(rm.Loc, "warp requires a function, got %T", v)
		}
	} else {
		if name == "" {
			name = "instant"
		}
		if _, ok := cfg.Warpers[name]; !ok {
			return nil, errorf(rm.Loc, "warper %q is unknown", name)
		}
	}

	properties := make([]PropertyValue, 0, len(rm.properties))

	for _, p := range rm.properties {
		if _, ok := cfg.Properties[p.name]; !ok && !strings.HasPrefix(p.name, "u_") {
			return nil, errorf(rm.Loc, "property %q is unknown", p.name)
		}
		value, err := ctx.Eval(p.expr)
		if err != nil {
			return nil, errorf(rm.Loc, "could not evaluate property %s: %v", p.name, err)
		}
		properties = append(properties, PropertyValue{p.name, value})
	}

	var splines []splineValue

	for _, s := range rm.splines {
		if _, ok := cfg.Properties[s.name]; !ok && !strings.HasPrefix(s.name, "u_") {
			return nil, errorf(rm.Loc, "property %q is unknown", s.name)
		}

		values := make([]any, 0, len(s.exprs))
		for _, e := range s.exprs {
			v, err := ctx.Eval(e)
			if err != nil {
				return nil, errorf(rm.Loc, "could not evaluate spline knot: %v", err)
			}
			if !checkSplineValue(v) {
				return nil, errorf(rm.Loc, "%s: spline interpolation requires position types", s.name)
			}
			values = append(values, v)
		}
		splines = append(splines, splineValue{s.name, values})
	}

	// Referenced animations contribute their properties, as long as they
	// are simple enough to have any.
	for _, e := range rm.exprs {
		value, err := ctx.Eval(e.expr)
		if err != nil {
			return nil, errorf(rm.Loc, "could not evaluate expression %s: %v", e.expr, err)
		}

		anim, ok := value.(*Animation)
		if !ok {
			return nil, errorf(rm.Loc, "expression %s is not an animation, and so cannot be included in an interpolation", e.expr)
		}
		if _, err := anim.Compile(); err != nil {
			return nil, err
		}
		props := anim.Properties()
		if props == nil {
			return nil, errorf(rm.Loc, "animation %s is too complicated to be included in an interpolation", e.expr)
		}
		properties = append(properties, props...)
	}

	dv, err := ctx.Eval(rm.duration)
	if err != nil {
		return nil, errorf(rm.Loc, "could not evaluate duration: %v", err)
	}
	duration, ok := asFloat(dv)
	if !ok && rm.duration != nil {
		return nil, errorf(rm.Loc, "duration must be a number, got %T", dv)
	}

	circles := 0.0
	if rm.circles != nil {
		cv, err := ctx.Eval(rm.circles)
		if err != nil {
			return nil, errorf(rm.Loc, "could not evaluate circles: %v", err)
		}
		circles, ok = asFloat(cv)
		if !ok {
			return nil, errorf(rm.Loc, "circles must be a number, got %T", cv)
		}
	}

	return newInterpolation(rm.Loc, cfg, name, fn, duration, properties, rm.revolution, circles, splines)
}

func (rm *rawMultipurpose) markConstant(an *analysis) {
	konst := an.constExpr(rm.warpFn)
	konst = minConst(konst, an.constExpr(rm.duration))
	konst = minConst(konst, an.constExpr(rm.circles))

	for _, p := range rm.properties {
		konst = minConst(konst, an.constExpr(p.expr))
	}
	for _, s := range rm.splines {
		for _, e := range s.exprs {
			konst = minConst(konst, an.constExpr(e))
		}
	}
	for _, e := range rm.exprs {
		konst = minConst(konst, an.constExpr(e.expr))
		konst = minConst(konst, an.constExpr(e.with))
	}

	rm.konst = konst
}

// --- Contains ---

// rawContainsExpr substitutes the value of an expression as the host's
// child.
type rawContainsExpr struct {
	rawNode
	expr Expr
}

func (r *rawContainsExpr) compile(ctx *Context) (Statement, error) {
	child, err := ctx.Eval(r.expr)
	if err != nil {
		return nil, errorf(r.Loc, "could not evaluate contains expression: %v", err)
	}
	return &childStmt{node: node{r.Loc}, child: child}, nil
}

func (r *rawContainsExpr) markConstant(an *analysis) {
	r.konst = an.constExpr(r.expr)
}

// rawChild substitutes one or more nested animation blocks as the host's
// child.
type rawChild struct {
	rawNode
	children []*RawBlock
}

func (r *rawChild) compile(ctx *Context) (Statement, error) {
	anims := make([]*Animation, 0, len(r.children))
	for _, c := range r.children {
		anims = append(anims, NewAnimation(c, ctx.cfg, ctx.scope))
	}

	var child any
	if len(anims) == 1 {
		child = anims[0]
	} else {
		child = anims
	}

	return &childStmt{node: node{r.Loc}, child: child}, nil
}

func (r *rawChild) markConstant(an *analysis) {
	konst := globalConst
	for _, c := range r.children {
		c.markConstant(an)
		konst = minConst(konst, c.konstness())
	}
	r.konst = konst
}

// --- Repeat ---

type rawRepeat struct {
	rawNode
	count Expr
}

func (r *rawRepeat) compile(ctx *Context) (Statement, error) {
	count := -1
	if r.count != nil {
		v, err := ctx.Eval(r.count)
		if err != nil {
			return nil, errorf(r.Loc, "could not evaluate repeat count: %v", err)
		}
		f, ok := asFloat(v)
		if !ok {
			return nil, errorf(r.Loc, "repeat count must be a number, got %T", v)
		}
		count = int(f)
	}
	return &repeatStmt{node: node{r.Loc}, count: count}, nil
}

func (r *rawRepeat) markConstant(an *analysis) {
	r.konst = an.constExpr(r.count)
}

// --- Parallel ---

type rawParallel struct {
	rawNode
	blocks []*RawBlock
}

func (r *rawParallel) compile(ctx *Context) (Statement, error) {
	blocks := make([]*block, 0, len(r.blocks))
	for _, b := range r.blocks {
		c, err := b.compileBlock(ctx)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, c)
	}
	return &parallelStmt{node: node{r.Loc}, blocks: blocks}, nil
}

func (r *rawParallel) markConstant(an *analysis) {
	konst := globalConst
	for _, b := range r.blocks {
		b.markConstant(an)
		konst = minConst(konst, b.konstness())
	}
	r.konst = konst
}

// --- Choice ---

type rawChoice struct {
	rawNode
	choices []rawWeighted
}

type rawWeighted struct {
	chance Expr
	block  *RawBlock
}

func (r *rawChoice) compile(ctx *Context) (Statement, error) {
	choices := make([]weightedBlock, 0, len(r.choices))
	for _, c := range r.choices {
		v, err := ctx.Eval(c.chance)
		if err != nil {
			return nil, errorf(r.Loc, "could not evaluate choice weight: %v", err)
		}
		chance, ok := asFloat(v)
		if !ok {
			return nil, errorf(r.Loc, "choice weight must be a number, got %T", v)
		}
		b, err := c.block.compileBlock(ctx)
		if err != nil {
			return nil, err
		}
		choices = append(choices, weightedBlock{chance, b})
	}
	return &choiceStmt{node: node{r.Loc}, choices: choices}, nil
}

func (r *rawChoice) markConstant(an *analysis) {
	konst := globalConst
	for _, c := range r.choices {
		konst = minConst(konst, an.constExpr(c.chance))
		c.block.markConstant(an)
		konst = minConst(konst, c.block.konstness())
	}
	r.konst = konst
}

// --- Time ---

type rawTime struct {
	rawNode
	time Expr
}

func (r *rawTime) compile(ctx *Context) (Statement, error) {
	v, err := ctx.Eval(r.time)
	if err != nil {
		return nil, errorf(r.Loc, "could not evaluate time: %v", err)
	}
	t, ok := asFloat(v)
	if !ok {
		return nil, errorf(r.Loc, "time must be a number, got %T", v)
	}
	return &timeStmt{node: node{r.Loc}, time: t}, nil
}

func (r *rawTime) markConstant(an *analysis) {
	r.konst = an.constExpr(r.time)
}

// --- On ---

type rawOn struct {
	rawNode
	handlers map[string]*RawBlock
}

func (r *rawOn) compile(ctx *Context) (Statement, error) {
	handlers := make(map[string]*block, len(r.handlers))
	for name, b := range r.handlers {
		c, err := b.compileBlock(ctx)
		if err != nil {
			return nil, err
		}
		handlers[name] = c
	}
	return &onStmt{node: node{r.Loc}, handlers: handlers}, nil
}

func (r *rawOn) markConstant(an *analysis) {
	konst := globalConst
	for _, b := range r.handlers {
		b.markConstant(an)
		konst = minConst(konst, b.konstness())
	}
	r.konst = konst
}

// --- Event ---

type rawEvent struct {
	rawNode
	name string
}

func (r *rawEvent) compile(ctx *Context) (Statement, error) {
	return &eventStmt{node: node{r.Loc}, name: r.name}, nil
}

func (r *rawEvent) markConstant(an *analysis) {
	r.konst = globalConst
}

// --- Function ---

type rawFunction struct {
	rawNode
	expr Expr
}

func (r *rawFunction) compile(ctx *Context) (Statement, error) {
	v, err := ctx.Eval(r.expr)
	if err != nil {
		return nil, errorf(r.Loc, "could not evaluate function: %v", err)
	}

	var fn FrameFunc
	switch f := v.(type) {
	case FrameFunc:
		fn = f
	case func(Host, float64, float64) (float64, bool):
		fn = f
	default:
		return nil, errorf(r.Loc, "function statement requires a FrameFunc, got %T", v)
	}

	return &functionStmt{node: node{r.Loc}, fn: fn, alwaysBlocks: ctx.cfg.FunctionAlwaysBlocks}, nil
}

func (r *rawFunction) markConstant(an *analysis) {
	r.konst = an.constExpr(r.expr)
}
