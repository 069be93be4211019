// Package choreo is a declarative animation language for [Ebitengine] and
// other Go frame loops.
//
// Animation source is a small indentation-structured language: statements
// interpolate named properties over time using easing warpers (from
// [gween]'s catalogue), repeat, run in parallel, pick weighted random
// branches, jump to absolute times, and respond to named events.
//
//	move = `
//	ease 1.0 xpos 420 ypos 120
//	linear 0.5 alpha 0.0
//	repeat
//	`
//
// # Quick start
//
// Build a [Config], parse the source, and drive a [Transform] from your game
// loop:
//
//	cfg := choreo.DefaultConfig()
//	raw, err := choreo.ParseBlock(cfg, "move", move)
//	anim := choreo.NewAnimation(raw, cfg, nil)
//	cfg.CompileAll()
//
//	t := choreo.NewTransform(cfg, anim)
//
//	// each frame:
//	t.Update(dt)
//	choreo.Draw(screen, sprite, t)
//
// # Compilation and sharing
//
// Parsing yields a [RawBlock]; binding it to a scope with [NewAnimation]
// yields an [Animation]. Blocks whose expressions touch only registered
// constants compile once and share their compiled form across every host.
// Everything else compiles lazily per animation, against the scope it was
// bound with. [Config.CompileAll] forces the shared compiles up front.
//
// # Execution
//
// Execution is cooperative and resumable: every Update runs the compiled
// tree against the current clock and returns a pause hint telling the driver
// how long the result stays valid. No goroutines, no timers; hosts own the
// clock.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package choreo
