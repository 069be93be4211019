package choreo

import "strings"

// --- Parallel ---

// parallelStmt runs several blocks against the same host at once. It
// finishes when the longest-running block finishes.
type parallelStmt struct {
	node
	blocks []*block
}

type parallelEntry struct {
	index int
	state any
}

func (p *parallelStmt) handlesEvent(name string) bool {
	for _, b := range p.blocks {
		if b.handlesEvent(name) {
			return true
		}
	}
	return false
}

func (p *parallelStmt) execute(h Host, st float64, state any, events []string) (result, error) {
	var entries []parallelEntry
	if state == nil {
		entries = make([]parallelEntry, len(p.blocks))
		for i := range entries {
			entries[i] = parallelEntry{index: i}
		}
	} else {
		entries = state.([]parallelEntry)
	}

	var running []parallelEntry

	leftover := st
	pause := noDeadline

	for _, e := range entries {
		res, err := p.blocks[e.index].execute(h, st, e.state, events)
		if err != nil {
			return result{}, err
		}

		switch res.action {
		case actionContinue:
			running = append(running, parallelEntry{e.index, res.state})
			if res.pause != noDeadline && (pause == noDeadline || res.pause < pause) {
				pause = res.pause
			}

		case actionNext:
			if res.leftover < leftover {
				leftover = res.leftover
			}

		case actionEvent:
			return res, nil
		}
	}

	if len(running) > 0 {
		return cont(running, pause), nil
	}
	return next(leftover), nil
}

// --- Choice ---

// weightedBlock is one alternative of a choice statement.
type weightedBlock struct {
	chance float64
	block  *block
}

// choiceStmt picks one of its blocks at random, weighted by chance, and runs
// it to completion. The pick is made once and recorded in the statement
// state.
type choiceStmt struct {
	node
	choices []weightedBlock
}

type choiceState struct {
	index int
	child any
}

func (c *choiceStmt) handlesEvent(name string) bool {
	for _, w := range c.choices {
		if w.block.handlesEvent(name) {
			return true
		}
	}
	return false
}

func (c *choiceStmt) execute(h Host, st float64, state any, events []string) (result, error) {
	var s choiceState
	if state == nil {
		s = choiceState{index: c.pick(h)}
	} else {
		s = state.(choiceState)
	}

	res, err := c.choices[s.index].block.execute(h, st, s.child, events)
	if err != nil {
		return result{}, err
	}

	if res.action == actionContinue {
		s.child = res.state
		return cont(s, res.pause), nil
	}
	return res, nil
}

func (c *choiceStmt) pick(h Host) int {
	total := 0.0
	for _, w := range c.choices {
		total += w.chance
	}

	r := h.Rand().Float64() * total
	for i, w := range c.choices {
		if r < w.chance {
			return i
		}
		r -= w.chance
	}
	return len(c.choices) - 1
}

// --- On ---

// onStmt dispatches named events to per-event blocks. The start handler runs
// first; hide and replaced handlers hold the host on screen until they
// finish.
type onStmt struct {
	node
	handlers map[string]*block
}

type onState struct {
	name  string // running handler, "" if none
	start float64
	child any
}

func (o *onStmt) handlesEvent(name string) bool {
	_, ok := o.handlers[name]
	return ok
}

func (o *onStmt) execute(h Host, st float64, state any, events []string) (result, error) {
	var s onState
	if state == nil {
		s = onState{name: "start", start: st}
	} else {
		s = state.(onState)
	}

	for _, event := range events {
		name, ok := o.resolve(event)
		if !ok {
			continue
		}

		// The hide and replaced handlers, once entered, run to completion;
		// a later event must not cut the teardown short.
		locked := (s.name == "hide" && h.HideRequested()) ||
			(s.name == "replaced" && h.ReplacedRequested())
		if locked {
			continue
		}

		s.name = name
		s.start = st
		s.child = nil
	}

	for {
		handler, ok := o.handlers[s.name]
		if !ok {
			// No handler for the current event; park until one arrives.
			return cont(s, noDeadline), nil
		}

		res, err := handler.execute(h, st-s.start, s.child, events)
		if err != nil {
			return result{}, err
		}

		switch res.action {
		case actionContinue:
			if s.name == "hide" || s.name == "replaced" {
				h.DelayHide()
			}
			s.child = res.state
			return cont(s, res.pause), nil

		case actionNext:
			// A finished handler falls through to default; a finished
			// default, hide, or replaced handler parks.
			if s.name == "default" || s.name == "hide" || s.name == "replaced" {
				s.name = ""
			} else {
				s.name = "default"
			}
			s.start = st - res.leftover
			s.child = nil

		case actionEvent:
			if _, ok := o.handlers[res.event]; ok {
				s.name = res.event
				start := st - res.leftover
				// Clamp how far back an event may rewind the handler clock.
				if start < st-30 {
					start = st - 30
				}
				s.start = start
				s.child = nil
				continue
			}
			return res, nil
		}
	}
}

// resolve maps an event name to the handler that serves it, falling back by
// stripping leading underscore-separated prefixes: "left_hide" falls back to
// "hide" when no handler names it directly. Events no handler names at any
// level are ignored.
func (o *onStmt) resolve(event string) (string, bool) {
	for event != "" {
		if _, ok := o.handlers[event]; ok {
			return event, true
		}

		_, rest, found := strings.Cut(event, "_")
		if !found {
			break
		}
		event = rest
	}
	return "", false
}
