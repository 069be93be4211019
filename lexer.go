package choreo

import (
	"strings"
)

// srcLine is one logical line of animation source, with any more-indented
// lines that follow it attached as its sub-block.
type srcLine struct {
	loc  Location
	text string
	sub  []srcLine
}

// splitSource breaks source text into a tree of logical lines by
// indentation. Blank lines and # comments are dropped. Indentation must use
// spaces.
func splitSource(filename, source string) ([]srcLine, error) {
	type rawLine struct {
		loc    Location
		indent int
		text   string
	}

	var raws []rawLine

	for i, text := range strings.Split(source, "\n") {
		loc := Location{File: filename, Line: i + 1}

		if strings.ContainsRune(text, '\t') {
			return nil, errorf(loc, "tab characters are not allowed in animation source")
		}

		trimmed := strings.TrimLeft(text, " ")
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if idx := strings.IndexByte(trimmed, '#'); idx >= 0 {
			trimmed = strings.TrimRight(trimmed[:idx], " ")
		}

		raws = append(raws, rawLine{
			loc:    loc,
			indent: len(text) - len(strings.TrimLeft(text, " ")),
			text:   trimmed,
		})
	}

	var build func(pos int, indent int) ([]srcLine, int, error)
	build = func(pos int, indent int) ([]srcLine, int, error) {
		var lines []srcLine

		for pos < len(raws) {
			r := raws[pos]

			if r.indent < indent {
				break
			}

			if r.indent > indent {
				if len(lines) == 0 {
					return nil, 0, errorf(r.loc, "unexpected indentation")
				}
				sub, next, err := build(pos, r.indent)
				if err != nil {
					return nil, 0, err
				}
				lines[len(lines)-1].sub = sub
				pos = next
				continue
			}

			lines = append(lines, srcLine{loc: r.loc, text: r.text})
			pos++
		}

		return lines, pos, nil
	}

	var indent int
	if len(raws) > 0 {
		indent = raws[0].indent
	}

	lines, pos, err := build(0, indent)
	if err != nil {
		return nil, err
	}
	if pos < len(raws) {
		return nil, errorf(raws[pos].loc, "unexpected dedent")
	}

	return lines, nil
}

// lexState is a checkpoint in a lexer, restored with revert.
type lexState struct {
	index int
	pos   int
	eob   bool
}

// lexer walks a sequence of logical lines. Sub-block lexers share the
// deferred-diagnostics accumulator with their parent.
type lexer struct {
	lines    []srcLine
	index    int
	pos      int
	eob      bool
	deferred *[]error
}

func newLexer(lines []srcLine, deferred *[]error) *lexer {
	return &lexer{lines: lines, index: -1, deferred: deferred}
}

// advance moves to the next logical line.
func (l *lexer) advance() {
	l.index++
	l.pos = 0
	l.eob = l.index >= len(l.lines)
}

func (l *lexer) text() string {
	if l.index < 0 || l.index >= len(l.lines) {
		return ""
	}
	return l.lines[l.index].text
}

func (l *lexer) loc() Location {
	if l.index >= 0 && l.index < len(l.lines) {
		return l.lines[l.index].loc
	}
	if len(l.lines) > 0 {
		return l.lines[len(l.lines)-1].loc
	}
	return Location{}
}

func (l *lexer) skipSpace() {
	text := l.text()
	for l.pos < len(text) && text[l.pos] == ' ' {
		l.pos++
	}
}

// eol reports whether the current line has been fully consumed.
func (l *lexer) eol() bool {
	l.skipSpace()
	return l.pos >= len(l.text())
}

func (l *lexer) checkpoint() lexState {
	return lexState{l.index, l.pos, l.eob}
}

func (l *lexer) revert(st lexState) {
	l.index = st.index
	l.pos = st.pos
	l.eob = st.eob
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}

// name consumes and returns an identifier, or "" if none is present.
func (l *lexer) name() string {
	l.skipSpace()
	text := l.text()

	if l.pos >= len(text) || !isIdentStart(text[l.pos]) {
		return ""
	}

	start := l.pos
	for l.pos < len(text) && isIdentPart(text[l.pos]) {
		l.pos++
	}
	return text[start:l.pos]
}

// keyword consumes the given word if it is next on the line.
func (l *lexer) keyword(kw string) bool {
	cp := l.checkpoint()
	if l.name() == kw {
		return true
	}
	l.revert(cp)
	return false
}

// match consumes the given punctuation if it is next on the line.
func (l *lexer) match(s string) bool {
	l.skipSpace()
	if strings.HasPrefix(l.text()[l.pos:], s) {
		l.pos += len(s)
		return true
	}
	return false
}

// require consumes the given punctuation or fails.
func (l *lexer) require(s string, what string) error {
	if l.match(s) {
		return nil
	}
	return errorf(l.loc(), "expected %s", what)
}

// requireName consumes an identifier or fails.
func (l *lexer) requireName() (string, error) {
	name := l.name()
	if name == "" {
		return "", errorf(l.loc(), "expected a name")
	}
	return name, nil
}

// expectEOL fails unless the current line is fully consumed.
func (l *lexer) expectEOL() error {
	if l.eol() {
		return nil
	}
	return errorf(l.loc(), "end of line expected")
}

func (l *lexer) hasBlock() bool {
	return l.index >= 0 && l.index < len(l.lines) && len(l.lines[l.index].sub) > 0
}

// expectBlock fails unless the current line introduces an indented block.
func (l *lexer) expectBlock(what string) error {
	if l.hasBlock() {
		return nil
	}
	return errorf(l.loc(), "%s expects a block", what)
}

// expectNoblock fails if the current line introduces an indented block.
func (l *lexer) expectNoblock(what string) error {
	if !l.hasBlock() {
		return nil
	}
	return errorf(l.loc(), "%s does not take a block", what)
}

// subblockLexer returns a lexer over the current line's sub-block.
func (l *lexer) subblockLexer() *lexer {
	var sub []srcLine
	if l.index >= 0 && l.index < len(l.lines) {
		sub = l.lines[l.index].sub
	}
	return newLexer(sub, l.deferred)
}

// deferredError records a diagnostic to be reported after parsing finishes,
// without aborting the parse.
func (l *lexer) deferredError(format string, args ...any) {
	*l.deferred = append(*l.deferred, errorf(l.loc(), format, args...))
}

// simpleExpression parses an expression starting at the current position.
// It returns (nil, nil) when no expression is present.
func (l *lexer) simpleExpression() (Expr, error) {
	return parseExpression(l)
}

// requireSimpleExpression parses an expression or fails.
func (l *lexer) requireSimpleExpression() (Expr, error) {
	e, err := l.simpleExpression()
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, errorf(l.loc(), "expected an expression")
	}
	return e, nil
}
