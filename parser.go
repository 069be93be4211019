package choreo

import (
	"errors"
	"strings"
)

// ParseBlock parses animation source into a raw block. The filename only
// labels locations in diagnostics.
//
// Diagnostics that do not prevent the source from having a meaning, such as
// conflicting properties on one statement, are collected and returned
// together after the parse; the returned block is still usable alongside
// such an error.
func ParseBlock(cfg *Config, filename, source string) (*RawBlock, error) {
	lines, err := splitSource(filename, source)
	if err != nil {
		return nil, err
	}

	var deferred []error
	l := newLexer(lines, &deferred)

	b, err := parseBlock(cfg, l, Location{File: filename, Line: 1})
	if err != nil {
		return nil, err
	}

	if len(deferred) > 0 {
		return b, errors.Join(deferred...)
	}
	return b, nil
}

func parseBlock(cfg *Config, l *lexer, loc Location) (*RawBlock, error) {
	var statements []rawStatement
	animation := false

	l.advance()

	for !l.eob {
		sloc := l.loc()

		switch {
		case l.keyword("repeat"):
			if err := l.expectNoblock("repeat"); err != nil {
				return nil, err
			}
			count, err := l.simpleExpression()
			if err != nil {
				return nil, err
			}
			statements = append(statements, &rawRepeat{rawNode{Loc: sloc}, count})

		case l.keyword("block"):
			sub, err := parseSub(cfg, l, "block")
			if err != nil {
				return nil, err
			}
			statements = append(statements, sub)

		case l.keyword("contains"):
			expr, err := l.simpleExpression()
			if err != nil {
				return nil, err
			}
			if expr != nil {
				if err := l.expectNoblock("contains"); err != nil {
					return nil, err
				}
				statements = append(statements, &rawContainsExpr{rawNode{Loc: sloc}, expr})
			} else {
				sub, err := parseSub(cfg, l, "contains")
				if err != nil {
					return nil, err
				}
				statements = append(statements, &rawChild{rawNode{Loc: sloc}, []*RawBlock{sub}})
			}

		case l.keyword("parallel"):
			sub, err := parseSub(cfg, l, "parallel")
			if err != nil {
				return nil, err
			}
			statements = append(statements, &rawParallel{rawNode{Loc: sloc}, []*RawBlock{sub}})

		case l.keyword("choice"):
			chance, err := l.simpleExpression()
			if err != nil {
				return nil, err
			}
			if chance == nil {
				chance = litExpr{1.0}
			}
			sub, err := parseSub(cfg, l, "choice")
			if err != nil {
				return nil, err
			}
			statements = append(statements, &rawChoice{rawNode{Loc: sloc}, []rawWeighted{{chance, sub}}})

		case l.keyword("on"):
			name, err := l.requireName()
			if err != nil {
				return nil, err
			}
			names := []string{name}
			for l.match(",") {
				name, err := l.requireName()
				if err != nil {
					return nil, err
				}
				names = append(names, name)
			}
			sub, err := parseSub(cfg, l, "on")
			if err != nil {
				return nil, err
			}
			handlers := make(map[string]*RawBlock, len(names))
			for _, n := range names {
				handlers[n] = sub
			}
			statements = append(statements, &rawOn{rawNode{Loc: sloc}, handlers})

		case l.keyword("time"):
			if err := l.expectNoblock("time"); err != nil {
				return nil, err
			}
			t, err := l.requireSimpleExpression()
			if err != nil {
				return nil, err
			}
			statements = append(statements, &rawTime{rawNode{Loc: sloc}, t})

		case l.keyword("function"):
			if err := l.expectNoblock("function"); err != nil {
				return nil, err
			}
			fn, err := l.requireSimpleExpression()
			if err != nil {
				return nil, err
			}
			statements = append(statements, &rawFunction{rawNode{Loc: sloc}, fn})

		case l.keyword("event"):
			if err := l.expectNoblock("event"); err != nil {
				return nil, err
			}
			name, err := l.requireName()
			if err != nil {
				return nil, err
			}
			statements = append(statements, &rawEvent{rawNode{Loc: sloc}, name})

		case l.keyword("pass"):
			if err := l.expectNoblock("pass"); err != nil {
				return nil, err
			}
			statements = append(statements, nil)

		case l.keyword("animation"):
			if err := l.expectNoblock("animation"); err != nil {
				return nil, err
			}
			animation = true

		default:
			rm, err := parseMultipurpose(cfg, l)
			if err != nil {
				return nil, err
			}
			statements = append(statements, rm)
		}

		// Statements of any form may share a line, separated by commas.
		if l.eol() {
			l.advance()
			continue
		}
		if err := l.require(",", "comma or end of line"); err != nil {
			return nil, err
		}
	}

	return &RawBlock{
		rawNode:    rawNode{Loc: loc},
		statements: mergeStatements(statements),
		animation:  animation,
	}, nil
}

// parseSub parses "<kw>:" followed by an indented block.
func parseSub(cfg *Config, l *lexer, what string) (*RawBlock, error) {
	if err := l.require(":", "a colon after "+what); err != nil {
		return nil, err
	}
	if err := l.expectEOL(); err != nil {
		return nil, err
	}
	if err := l.expectBlock(what); err != nil {
		return nil, err
	}
	return parseBlock(cfg, l.subblockLexer(), l.loc())
}

// parseMultipurpose parses the statement form that covers pauses,
// interpolations, and child changes: an optional warper and duration
// followed by clauses, either on the same line or in an indented block.
func parseMultipurpose(cfg *Config, l *lexer) (*rawMultipurpose, error) {
	rm := &rawMultipurpose{rawNode: rawNode{Loc: l.loc()}}

	cp := l.checkpoint()
	name := l.name()

	if _, ok := cfg.Warpers[name]; ok && name != "" {
		rm.warper = name
		d, err := l.requireSimpleExpression()
		if err != nil {
			return nil, err
		}
		rm.duration = d
	} else if name == "warp" {
		fn, err := l.requireSimpleExpression()
		if err != nil {
			return nil, err
		}
		d, err := l.requireSimpleExpression()
		if err != nil {
			return nil, err
		}
		rm.warpFn = fn
		rm.duration = d
	} else {
		l.revert(cp)
	}

	// Only a warped statement may continue into an indented block of
	// clauses.
	if (rm.warper != "" || rm.warpFn != nil) && l.match(":") {
		if err := l.expectEOL(); err != nil {
			return nil, err
		}
		if err := l.expectBlock("interpolation"); err != nil {
			return nil, err
		}

		ll := l.subblockLexer()
		ll.advance()
		for !ll.eob {
			if err := ll.expectNoblock("interpolation clause"); err != nil {
				return nil, err
			}
			if err := parseClauses(cfg, ll, rm); err != nil {
				return nil, err
			}
			if err := ll.expectEOL(); err != nil {
				return nil, err
			}
			ll.advance()
		}
		return rm, nil
	}

	if err := parseClauses(cfg, l, rm); err != nil {
		return nil, err
	}
	if err := l.expectNoblock("statement"); err != nil {
		return nil, err
	}
	return rm, nil
}

// parseClauses consumes property, revolution, spline, and expression clauses
// until nothing more matches.
func parseClauses(cfg *Config, l *lexer, rm *rawMultipurpose) error {
	lastExpression := false
	thisExpression := false

	for {
		// Expression adjacency is tracked clause by clause, so a property
		// or revolution clause between two expressions separates them.
		lastExpression = thisExpression
		thisExpression = false

		if l.keyword("pass") {
			continue
		}

		if l.keyword("clockwise") {
			rm.revolution = "clockwise"
			continue
		}
		if l.keyword("counterclockwise") {
			rm.revolution = "counterclockwise"
			continue
		}
		if l.keyword("circles") {
			e, err := l.requireSimpleExpression()
			if err != nil {
				return err
			}
			rm.circles = e
			continue
		}

		cp := l.checkpoint()

		prop := l.name()
		_, known := cfg.Properties[prop]
		if known || strings.HasPrefix(prop, "u_") {
			expr, err := l.requireSimpleExpression()
			if err != nil {
				return err
			}

			var knots []Expr
			for l.keyword("knot") {
				k, err := l.requireSimpleExpression()
				if err != nil {
					return err
				}
				knots = append(knots, k)
			}

			if len(knots) > 0 {
				if prop == "orientation" {
					return errorf(l.loc(), "orientation does not support splines")
				}
				knots = append(knots, expr)
				rm.splines = append(rm.splines, rawSpline{prop, knots})
			} else {
				switch old := rm.addProperty(prop, expr); old {
				case "":
				case prop:
					l.deferredError("property %s is given a value more than once", prop)
				default:
					l.deferredError("properties %s and %s conflict, both trying to set the same value", old, prop)
				}
			}
			continue
		}

		l.revert(cp)

		expr, err := l.simpleExpression()
		if err != nil {
			return err
		}
		if expr == nil {
			return nil
		}

		if lastExpression {
			l.deferredError("statement contains two expressions in a row; is one of them a misspelled property? If not, separate them with pass.")
		}
		thisExpression = true

		var with Expr
		if l.keyword("with") {
			with, err = l.requireSimpleExpression()
			if err != nil {
				return err
			}
		}

		rm.exprs = append(rm.exprs, rawExpression{expr, with})
	}
}

// mergeStatements joins adjacent statements of the same grouping kind, so
// consecutive parallel blocks run together, consecutive choices weigh
// against each other, consecutive on statements share a dispatcher, and
// consecutive children form one set. A pass statement separates statements
// that would otherwise merge.
func mergeStatements(statements []rawStatement) []rawStatement {
	var merged []rawStatement

	for _, s := range statements {
		if len(merged) > 0 && s != nil {
			last := merged[len(merged)-1]

			switch cur := s.(type) {
			case *rawParallel:
				if old, ok := last.(*rawParallel); ok {
					old.blocks = append(old.blocks, cur.blocks...)
					continue
				}
			case *rawChoice:
				if old, ok := last.(*rawChoice); ok {
					old.choices = append(old.choices, cur.choices...)
					continue
				}
			case *rawChild:
				if old, ok := last.(*rawChild); ok {
					old.children = append(old.children, cur.children...)
					continue
				}
			case *rawOn:
				if old, ok := last.(*rawOn); ok {
					for name, b := range cur.handlers {
						old.handlers[name] = b
					}
					continue
				}
			}
		}

		merged = append(merged, s)
	}

	out := make([]rawStatement, 0, len(merged))
	for _, s := range merged {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}
