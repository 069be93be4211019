package choreo

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Context binds identifiers for compile-time expression evaluation. The
// mapping is fixed once constructed; two contexts compare equal when their
// bindings are structurally equal.
type Context struct {
	cfg   *Config
	scope map[string]any
}

// NewContext returns a Context evaluating against the given bindings. A nil
// scope is treated as empty.
func NewContext(cfg *Config, scope map[string]any) *Context {
	if scope == nil {
		scope = map[string]any{}
	}
	return &Context{cfg: cfg, scope: scope}
}

// Eval evaluates an expression against the context. A nil expression
// evaluates to nil.
func (c *Context) Eval(e Expr) (any, error) {
	if e == nil {
		return nil, nil
	}
	return e.eval(c)
}

func (c *Context) lookup(name string) (any, bool) {
	if v, ok := c.scope[name]; ok {
		return v, true
	}
	if v, ok := c.cfg.Constants[name]; ok {
		return v, true
	}
	return nil, false
}

func (c *Context) equal(other *Context) bool {
	if other == nil {
		return false
	}
	return reflect.DeepEqual(c.scope, other.scope)
}

// Expr is an expression embedded in an animation statement. Expressions are
// evaluated once, at compile time.
type Expr interface {
	eval(ctx *Context) (any, error)
	constant(an *analysis) bool
	String() string
}

type litExpr struct {
	value any
}

func (e litExpr) eval(ctx *Context) (any, error) { return e.value, nil }
func (e litExpr) constant(an *analysis) bool     { return true }

func (e litExpr) String() string {
	if s, ok := e.value.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprint(e.value)
}

type nameExpr struct {
	name string
}

func (e nameExpr) eval(ctx *Context) (any, error) {
	if v, ok := ctx.lookup(e.name); ok {
		return v, nil
	}
	return nil, fmt.Errorf("name %q is not bound", e.name)
}

// A name is constant only when it refers to a registered constant that is
// not shadowed by a parameter: anything bound per-instance makes the
// enclosing block non-shareable.
func (e nameExpr) constant(an *analysis) bool {
	if an.nonConst[e.name] {
		return false
	}
	_, ok := an.cfg.Constants[e.name]
	return ok
}

func (e nameExpr) String() string { return e.name }

type tupleExpr struct {
	elems []Expr
}

func (e tupleExpr) eval(ctx *Context) (any, error) {
	rv := make([]any, len(e.elems))
	for i, el := range e.elems {
		v, err := el.eval(ctx)
		if err != nil {
			return nil, err
		}
		rv[i] = v
	}
	return rv, nil
}

func (e tupleExpr) constant(an *analysis) bool {
	for _, el := range e.elems {
		if !el.constant(an) {
			return false
		}
	}
	return true
}

func (e tupleExpr) String() string {
	parts := make([]string, len(e.elems))
	for i, el := range e.elems {
		parts[i] = el.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

type unaryExpr struct {
	op      byte
	operand Expr
}

func (e unaryExpr) eval(ctx *Context) (any, error) {
	v, err := e.operand.eval(ctx)
	if err != nil {
		return nil, err
	}
	return negValue(v)
}

func (e unaryExpr) constant(an *analysis) bool { return e.operand.constant(an) }
func (e unaryExpr) String() string             { return string(e.op) + e.operand.String() }

type binaryExpr struct {
	op          byte
	left, right Expr
}

func (e binaryExpr) eval(ctx *Context) (any, error) {
	a, err := e.left.eval(ctx)
	if err != nil {
		return nil, err
	}
	b, err := e.right.eval(ctx)
	if err != nil {
		return nil, err
	}

	switch e.op {
	case '+':
		return addValues(a, b)
	case '-':
		nb, err := negValue(b)
		if err != nil {
			return nil, err
		}
		return addValues(a, nb)
	case '*':
		return mulValues(a, b)
	case '/':
		return divValues(a, b)
	}
	return nil, fmt.Errorf("unknown operator %q", string(e.op))
}

func (e binaryExpr) constant(an *analysis) bool {
	return e.left.constant(an) && e.right.constant(an)
}

func (e binaryExpr) String() string {
	return e.left.String() + " " + string(e.op) + " " + e.right.String()
}

// --- Value arithmetic ---

func negValue(v any) (any, error) {
	switch x := v.(type) {
	case int:
		return -x, nil
	case float64:
		return -x, nil
	case Absolute:
		return -x, nil
	case Position:
		return x.Neg(), nil
	case DualAngle:
		return x.Neg(), nil
	}
	return nil, fmt.Errorf("cannot negate %T", v)
}

func addValues(a, b any) (any, error) {
	if ia, ok := a.(int); ok {
		if ib, ok := b.(int); ok {
			return ia + ib, nil
		}
	}

	if pa, ok := a.(Position); ok {
		if pb, ok := b.(Position); ok {
			return pa.Add(pb), nil
		}
	}
	if da, ok := a.(DualAngle); ok {
		if db, ok := b.(DualAngle); ok {
			return da.Add(db), nil
		}
	}

	fa, aok := asFloat(a)
	fb, bok := asFloat(b)
	if aok && bok {
		return fa + fb, nil
	}
	return nil, fmt.Errorf("cannot add %T and %T", a, b)
}

func mulValues(a, b any) (any, error) {
	if ia, ok := a.(int); ok {
		if ib, ok := b.(int); ok {
			return ia * ib, nil
		}
	}

	if p, ok := a.(Position); ok {
		if k, kok := asFloat(b); kok {
			return p.Mul(k), nil
		}
	}
	if p, ok := b.(Position); ok {
		if k, kok := asFloat(a); kok {
			return p.Mul(k), nil
		}
	}
	if d, ok := a.(DualAngle); ok {
		if k, kok := asFloat(b); kok {
			return d.Mul(k), nil
		}
	}
	if d, ok := b.(DualAngle); ok {
		if k, kok := asFloat(a); kok {
			return d.Mul(k), nil
		}
	}

	fa, aok := asFloat(a)
	fb, bok := asFloat(b)
	if aok && bok {
		return fa * fb, nil
	}
	return nil, fmt.Errorf("cannot multiply %T and %T", a, b)
}

func divValues(a, b any) (any, error) {
	k, ok := asFloat(b)
	if !ok {
		return nil, fmt.Errorf("cannot divide by %T", b)
	}
	if k == 0 {
		return nil, fmt.Errorf("division by zero")
	}

	if p, ok := a.(Position); ok {
		return p.Div(k), nil
	}
	if fa, ok := asFloat(a); ok {
		return fa / k, nil
	}
	return nil, fmt.Errorf("cannot divide %T", a)
}

// --- Expression parsing ---

// parseExpression parses an additive expression from the lexer, or returns
// (nil, nil) when none is present.
func parseExpression(l *lexer) (Expr, error) {
	left, err := parseTerm(l)
	if err != nil || left == nil {
		return left, err
	}

	for {
		cp := l.checkpoint()
		var op byte
		if l.match("+") {
			op = '+'
		} else if l.match("-") {
			op = '-'
		} else {
			return left, nil
		}

		right, err := parseTerm(l)
		if err != nil {
			return nil, err
		}
		if right == nil {
			l.revert(cp)
			return left, nil
		}
		left = binaryExpr{op: op, left: left, right: right}
	}
}

func parseTerm(l *lexer) (Expr, error) {
	left, err := parseUnary(l)
	if err != nil || left == nil {
		return left, err
	}

	for {
		cp := l.checkpoint()
		var op byte
		if l.match("*") {
			op = '*'
		} else if l.match("/") {
			op = '/'
		} else {
			return left, nil
		}

		right, err := parseUnary(l)
		if err != nil {
			return nil, err
		}
		if right == nil {
			l.revert(cp)
			return left, nil
		}
		left = binaryExpr{op: op, left: left, right: right}
	}
}

func parseUnary(l *lexer) (Expr, error) {
	if l.match("-") {
		operand, err := parseUnary(l)
		if err != nil {
			return nil, err
		}
		if operand == nil {
			return nil, errorf(l.loc(), "expected an expression after -")
		}
		return unaryExpr{op: '-', operand: operand}, nil
	}
	return parseAtom(l)
}

func parseAtom(l *lexer) (Expr, error) {
	l.skipSpace()
	text := l.text()

	if l.pos >= len(text) {
		return nil, nil
	}

	switch ch := text[l.pos]; {
	case ch == '(':
		l.pos++
		return parseSequence(l, ')')

	case ch == '[':
		l.pos++
		return parseSequence(l, ']')

	case ch == '"' || ch == '\'':
		return parseString(l, ch)

	case ch >= '0' && ch <= '9' || ch == '.':
		return parseNumber(l)

	case isIdentStart(ch):
		name := l.name()
		switch name {
		case "true":
			return litExpr{true}, nil
		case "false":
			return litExpr{false}, nil
		case "nil":
			return litExpr{nil}, nil
		}
		return nameExpr{name}, nil
	}

	return nil, nil
}

// parseSequence parses a parenthesized or bracketed expression. Both tuples
// and lists evaluate to []any; a parenthesized single expression without a
// trailing comma is just that expression.
func parseSequence(l *lexer, close byte) (Expr, error) {
	var elems []Expr
	trailing := false

	for {
		if l.match(string(close)) {
			break
		}

		e, err := parseExpression(l)
		if err != nil {
			return nil, err
		}
		if e == nil {
			return nil, errorf(l.loc(), "expected an expression")
		}
		elems = append(elems, e)

		if l.match(",") {
			trailing = true
			continue
		}
		if err := l.require(string(close), "closing "+string(close)); err != nil {
			return nil, err
		}
		trailing = false
		break
	}

	if close == ')' && len(elems) == 1 && !trailing {
		return elems[0], nil
	}
	return tupleExpr{elems}, nil
}

func parseString(l *lexer, quote byte) (Expr, error) {
	text := l.text()
	start := l.pos + 1
	i := start

	for i < len(text) && text[i] != quote {
		i++
	}
	if i >= len(text) {
		return nil, errorf(l.loc(), "unterminated string")
	}

	l.pos = i + 1
	return litExpr{text[start:i]}, nil
}

func parseNumber(l *lexer) (Expr, error) {
	text := l.text()
	start := l.pos
	isFloat := false

	for l.pos < len(text) {
		ch := text[l.pos]
		if ch >= '0' && ch <= '9' {
			l.pos++
		} else if ch == '.' && !isFloat {
			isFloat = true
			l.pos++
		} else {
			break
		}
	}

	lit := text[start:l.pos]
	if lit == "" || lit == "." {
		l.pos = start
		return nil, nil
	}

	if isFloat {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, errorf(l.loc(), "bad number %q", lit)
		}
		return litExpr{f}, nil
	}

	n, err := strconv.Atoi(lit)
	if err != nil {
		return nil, errorf(l.loc(), "bad number %q", lit)
	}
	return litExpr{n}, nil
}
