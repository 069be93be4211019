package choreo

// NoDeadline is the pause value meaning no scheduling deadline: the driver
// may wait indefinitely until something external wakes the animation.
const NoDeadline = -1.0

const noDeadline = NoDeadline

// action is what a statement asks its parent to do after executing.
type action uint8

const (
	// actionContinue re-invokes the same statement next frame.
	actionContinue action = iota
	// actionNext advances to the statement's successor.
	actionNext
	// actionEvent propagates an event up to the nearest handler.
	actionEvent
	// actionRepeat restarts the enclosing block from the top.
	actionRepeat
)

// result is what a statement execution produced. leftover carries the time
// past the statement's nominal end, so the successor starts frame-accurate.
type result struct {
	action   action
	state    any     // actionContinue: state for the next invocation
	leftover float64 // actionNext, actionEvent, actionRepeat
	event    string  // actionEvent
	count    int     // actionRepeat: total repeats, negative if unbounded
	pause    float64 // scheduling hint; noDeadline if none
}

func cont(state any, pause float64) result {
	return result{action: actionContinue, state: state, pause: pause}
}

func next(leftover float64) result {
	return result{action: actionNext, leftover: leftover, pause: noDeadline}
}

func raiseEvent(name string, leftover float64) result {
	return result{action: actionEvent, event: name, leftover: leftover, pause: noDeadline}
}

// Statement is one compiled animation statement. The compiled tree is
// immutable once built; all per-host progress lives in the opaque state
// values threaded through execute.
type Statement interface {
	// execute runs the statement against the host. st is the time since
	// this statement started; state is what the previous call returned, or
	// nil on the first call; events are the names raised this frame.
	execute(h Host, st float64, state any, events []string) (result, error)

	// handlesEvent reports whether this statement or any descendant has a
	// handler for the named event.
	handlesEvent(name string) bool

	location() Location
}

// node is the common part of every compiled statement.
type node struct {
	Loc Location
}

func (n node) location() Location       { return n.Loc }
func (n node) handlesEvent(string) bool { return false }

// Transition combines an outgoing and an incoming child into the value
// shown while a child substitution settles.
type Transition func(oldChild, newChild any) any

// Duplicatable children are copied rather than shared when substituted into
// a host.
type Duplicatable interface {
	Duplicate() any
}

// FrameFunc is a per-frame callback run by a function statement. Returning
// more = true keeps the statement alive and schedules the next call after
// pause; returning false finishes it.
type FrameFunc func(h Host, st, at float64) (pause float64, more bool)

type splineValue struct {
	name   string
	values []any
}

// --- Child ---

// childStmt atomically substitutes the host's child, optionally through a
// transition. It fires exactly once.
type childStmt struct {
	node
	child      any
	transition Transition
}

func (c *childStmt) execute(h Host, st float64, state any, events []string) (result, error) {
	oldChild := h.RawChild()

	child := c.child
	if d, ok := child.(Duplicatable); ok {
		child = d.Duplicate()
	}

	if oldChild != nil && c.transition != nil {
		child = c.transition(h.Child(), child)
	}

	h.SetChild(c.child, child)

	return next(st), nil
}

// --- Repeat ---

// repeatStmt rewinds the enclosing block. Only a block knows how to act on
// it; see block.execute.
type repeatStmt struct {
	node
	count int // negative means repeat forever
}

func (r *repeatStmt) execute(h Host, st float64, state any, events []string) (result, error) {
	return result{action: actionRepeat, count: r.count, leftover: st, pause: 0}, nil
}

// --- Time ---

// timeStmt is a pure timing marker. The enclosing block precomputes a
// breakpoint from it and jumps; executing it directly just parks.
type timeStmt struct {
	node
	time float64
}

func (t *timeStmt) execute(h Host, st float64, state any, events []string) (result, error) {
	return cont(nil, noDeadline), nil
}

// --- Event ---

// eventStmt raises a named event to the nearest ancestor able to handle it.
type eventStmt struct {
	node
	name string
}

func (e *eventStmt) execute(h Host, st float64, state any, events []string) (result, error) {
	return raiseEvent(e.name, st), nil
}

// --- Function ---

// functionStmt invokes a host callback once per frame for as long as the
// callback asks to keep running.
type functionStmt struct {
	node
	fn           FrameFunc
	alwaysBlocks bool
}

func (f *functionStmt) handlesEvent(name string) bool { return true }

func (f *functionStmt) execute(h Host, st float64, state any, events []string) (result, error) {
	blocked := state != nil || f.alwaysBlocks

	callSt := st
	if !blocked {
		callSt = 0
	}

	pause, more := f.fn(h, callSt, h.DisplayedTime())

	// A first call that asks for more frames is re-run with the real time,
	// so the callback sees a consistent clock from then on.
	if !blocked && more {
		blocked = true
		pause, more = f.fn(h, st, h.DisplayedTime())
	}

	if more {
		return cont(true, pause), nil
	}

	if blocked {
		return next(0), nil
	}
	return next(st), nil
}
