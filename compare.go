package choreo

import "reflect"

// DeepCompare reports whether two compiled statements are structurally
// equal: same shape, same compiled values, same callbacks. Source locations
// do not participate. Two animations whose non-constant blocks DeepCompare
// equal may hand execution state to each other.
func DeepCompare(a, b Statement) bool {
	switch x := a.(type) {
	case *block:
		y, ok := b.(*block)
		return ok && compareStatements(x.statements, y.statements)

	case *interpolation:
		y, ok := b.(*interpolation)
		return ok &&
			x.warper == y.warper &&
			sameFunc(x.fn, y.fn) &&
			x.duration == y.duration &&
			reflect.DeepEqual(x.properties, y.properties) &&
			x.revolution == y.revolution &&
			x.circles == y.circles &&
			reflect.DeepEqual(x.splines, y.splines) &&
			x.forceFrame == y.forceFrame

	case *childStmt:
		y, ok := b.(*childStmt)
		return ok && compareChild(x.child, y.child) && sameFunc(x.transition, y.transition)

	case *repeatStmt:
		y, ok := b.(*repeatStmt)
		return ok && x.count == y.count

	case *timeStmt:
		y, ok := b.(*timeStmt)
		return ok && x.time == y.time

	case *eventStmt:
		y, ok := b.(*eventStmt)
		return ok && x.name == y.name

	case *functionStmt:
		y, ok := b.(*functionStmt)
		return ok && sameFunc(x.fn, y.fn) && x.alwaysBlocks == y.alwaysBlocks

	case *parallelStmt:
		y, ok := b.(*parallelStmt)
		if !ok || len(x.blocks) != len(y.blocks) {
			return false
		}
		for i := range x.blocks {
			if !DeepCompare(x.blocks[i], y.blocks[i]) {
				return false
			}
		}
		return true

	case *choiceStmt:
		y, ok := b.(*choiceStmt)
		if !ok || len(x.choices) != len(y.choices) {
			return false
		}
		for i := range x.choices {
			if x.choices[i].chance != y.choices[i].chance ||
				!DeepCompare(x.choices[i].block, y.choices[i].block) {
				return false
			}
		}
		return true

	case *onStmt:
		y, ok := b.(*onStmt)
		if !ok || len(x.handlers) != len(y.handlers) {
			return false
		}
		for name, xb := range x.handlers {
			yb, ok := y.handlers[name]
			if !ok || !DeepCompare(xb, yb) {
				return false
			}
		}
		return true
	}

	return false
}

func compareStatements(a, b []Statement) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !DeepCompare(a[i], b[i]) {
			return false
		}
	}
	return true
}

// compareChild compares child payloads. Animations compare by source block
// and scope, not by instance identity.
func compareChild(a, b any) bool {
	if aa, ok := a.(*Animation); ok {
		ba, ok := b.(*Animation)
		return ok && aa.raw == ba.raw && aa.context.equal(ba.context)
	}
	if as, ok := a.([]*Animation); ok {
		bs, ok := b.([]*Animation)
		if !ok || len(as) != len(bs) {
			return false
		}
		for i := range as {
			if as[i].raw != bs[i].raw || !as[i].context.equal(bs[i].context) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// sameFunc compares function-typed values by code pointer. Two closures over
// different captures compare equal if they share a body; that is as precise
// as function identity gets.
func sameFunc[F any](a, b F) bool {
	va := reflect.ValueOf(a)
	vb := reflect.ValueOf(b)
	if va.Kind() != reflect.Func || vb.Kind() != reflect.Func {
		return false
	}
	if va.IsNil() || vb.IsNil() {
		return va.IsNil() && vb.IsNil()
	}
	return va.Pointer() == vb.Pointer()
}
