package choreo

import (
	"reflect"
	"testing"
)

// exprLexer builds a lexer over a single line of source.
func exprLexer(t *testing.T, src string) *lexer {
	t.Helper()

	lines, err := splitSource("expr", src)
	if err != nil {
		t.Fatalf("splitSource: %v", err)
	}

	var deferred []error
	l := newLexer(lines, &deferred)
	l.advance()
	return l
}

func evalExpr(t *testing.T, src string, scope map[string]any) any {
	t.Helper()

	l := exprLexer(t, src)
	e, err := parseExpression(l)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	if e == nil {
		t.Fatalf("parse %q: no expression", src)
	}

	v, err := NewContext(DefaultConfig(), scope).Eval(e)
	if err != nil {
		t.Fatalf("eval %q: %v", src, err)
	}
	return v
}

func TestExpressionArithmetic(t *testing.T) {
	tests := []struct {
		src  string
		want any
	}{
		{"3", 3},
		{"3.5", 3.5},
		{"1 + 2", 3},
		{"2 * 3", 6},
		{"1 + 2 * 3", 7},
		{"1 / 2", 0.5},
		{"-5", -5},
		{"2 * (1 + 3)", 8},
		{"1.5 + 2", 3.5},
		{"true", true},
		{"'hello'", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := evalExpr(t, tt.src, nil); got != tt.want {
				t.Errorf("%s = %#v, want %#v", tt.src, got, tt.want)
			}
		})
	}
}

func TestExpressionTuples(t *testing.T) {
	got := evalExpr(t, "(1, 2, 3)", nil)
	if !reflect.DeepEqual(got, []any{1, 2, 3}) {
		t.Errorf("tuple = %#v", got)
	}

	got = evalExpr(t, "[0.5, 100]", nil)
	if !reflect.DeepEqual(got, []any{0.5, 100}) {
		t.Errorf("list = %#v", got)
	}

	// A single parenthesized expression is grouping, not a tuple.
	if got := evalExpr(t, "(4)", nil); got != 4 {
		t.Errorf("(4) = %#v", got)
	}
}

func TestExpressionScopeLookup(t *testing.T) {
	scope := map[string]any{"speed": 2.0}

	if got := evalExpr(t, "speed * 3", scope); got != 6.0 {
		t.Errorf("speed * 3 = %#v", got)
	}

	l := exprLexer(t, "missing")
	e, err := parseExpression(l)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := NewContext(DefaultConfig(), nil).Eval(e); err == nil {
		t.Error("unbound name evaluated without error")
	}
}

func TestExpressionConstness(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Constants["center"] = Abs(320)

	an := &analysis{cfg: cfg, nonConst: map[string]bool{"speed": true}}

	l := exprLexer(t, "center + 10")
	e, _ := parseExpression(l)
	if !e.constant(an) {
		t.Error("constant-only expression reported non-constant")
	}

	l = exprLexer(t, "speed + 10")
	e, _ = parseExpression(l)
	if e.constant(an) {
		t.Error("parameterized expression reported constant")
	}
}
