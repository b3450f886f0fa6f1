// Package scheduler implements the fixed-rate tick loop that drives the
// server core: millisecond-resolution timers and the per-player update
// rate throttle that gates how often the streaming engine scans each
// player. It generalizes the teacher's Update(deltaTime) frame loop
// (opd-ai-venture pkg/engine/game.go EbitenGame.Update) from a 60fps
// render loop to a headless, variable-tick server loop.
package scheduler

// Handler is the callback contract for a timer, matching spec.md §4.6's
// handler.timeout(timer)/handler.free(timer) destructor pair.
type Handler interface {
	OnTimeout(t *Timer)
	OnFree(t *Timer)
}

// Timer is a single scheduled, optionally repeating callback.
type Timer struct {
	handler    Handler
	nextFireAt int64 // ms
	interval   int64 // ms
	remaining  int   // 0 means infinite
	running    bool
}

// Running reports whether the timer is still scheduled to fire.
func (t *Timer) Running() bool {
	return t.running
}

// Kill stops the timer. It is not removed from the scheduler until the
// next sweep; a kill issued mid-callback still lets the current callback
// finish.
func (t *Timer) Kill() {
	t.running = false
}
