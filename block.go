package choreo

import "sort"

// defaultBlockPause caps how long a block lets the driver sleep when no
// time breakpoint is pending.
const defaultBlockPause = 15.0

// timeEntry is a precomputed breakpoint: at the given block time, execution
// jumps directly to the statement at index.
type timeEntry struct {
	time  float64
	index int
}

// blockState is a block's resumable execution state.
type blockState struct {
	index     int         // statement currently executing
	start     float64     // block time the current statement started at
	loopStart float64     // block time the current loop iteration started at
	repeats   int         // completed loop iterations
	times     []timeEntry // breakpoints not yet reached
	child     any         // current statement's state
}

// block runs its statements in sequence, fast-forwarding repeats
// arithmetically and jumping to time breakpoints without scanning.
type block struct {
	node
	statements []Statement
	times      []timeEntry
}

func newBlock(loc Location, statements []Statement) *block {
	b := &block{node: node{loc}, statements: statements}

	// A time statement makes the following statement start at an absolute
	// block time; collect those as sorted breakpoints.
	for i, s := range statements {
		if t, ok := s.(*timeStmt); ok {
			b.times = append(b.times, timeEntry{t.time, i + 1})
		}
	}
	sort.Slice(b.times, func(i, j int) bool { return b.times[i].time < b.times[j].time })

	return b
}

func (b *block) handlesEvent(name string) bool {
	for _, s := range b.statements {
		if s.handlesEvent(name) {
			return true
		}
	}
	return false
}

func (b *block) execute(h Host, st float64, state any, events []string) (result, error) {
	fresh := state == nil

	var s blockState
	if fresh {
		s = blockState{times: b.times}
	} else {
		s = state.(blockState)
	}

	for {
		// target is the time we are willing to execute to this frame, and
		// maxPause how long the driver may sleep before the next call.
		target := st
		maxPause := defaultBlockPause

		if len(s.times) > 0 {
			if t := s.times[0].time; t < target {
				target = t
			}
			maxPause = s.times[0].time - target
		}

		var out result

	statements:
		for {
			if s.index >= len(b.statements) {
				return next(target - s.start), nil
			}

			stmt := b.statements[s.index]
			res, err := stmt.execute(h, target-s.start, s.child, events)
			if err != nil {
				return result{}, err
			}

			switch res.action {
			case actionContinue:
				pause := res.pause
				if pause == noDeadline || pause > maxPause {
					pause = maxPause
				}
				s.child = res.state
				out = cont(s, pause)
				break statements

			case actionEvent:
				return res, nil

			case actionNext:
				s.index++
				s.start = target - res.leftover
				s.child = nil

			case actionRepeat:
				loopEnd := target - res.leftover
				duration := loopEnd - s.loopStart

				if fresh && duration <= 0 {
					return result{}, errorf(b.Loc, "animation appears to be in an infinite loop")
				}

				// Fast-forward: compute how many whole iterations fit
				// between the loop start and now, rather than replaying
				// them one frame at a time.
				newRepeats := 0
				if duration > 0 {
					newRepeats = int((target - s.loopStart) / duration)
				}

				if res.count >= 0 && s.repeats+newRepeats >= res.count {
					newRepeats = res.count - s.repeats
					s.loopStart += float64(newRepeats) * duration
					return next(target - s.loopStart), nil
				}

				s.repeats += newRepeats
				s.loopStart += float64(newRepeats) * duration
				s.start = s.loopStart
				s.index = 0
				s.child = nil
			}
		}

		// If the next breakpoint has been reached, jump straight to its
		// statement and keep executing within this same call; absolute-time
		// statements fire precisely regardless of statement order.
		if len(s.times) > 0 && s.times[0].time <= target {
			entry := s.times[0]
			s.times = s.times[1:]
			s.index = entry.index
			s.start = entry.time
			s.child = nil
			continue
		}

		return out, nil
	}
}
