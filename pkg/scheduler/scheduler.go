package scheduler

import "github.com/sirupsen/logrus"

// Scheduler owns the insertion-ordered timer list and per-player update
// throttle state for the tick thread. Per spec.md §5 it is exclusively
// owned by that one goroutine; nothing here is safe for concurrent use.
type Scheduler struct {
	timers []*Timer
	logger *logrus.Entry

	lastPlayerUpdate map[uint64]int64 // playerID -> last streamed-at, ms
	streamRateMS     int64

	nowMS int64
}

// New creates a scheduler whose per-player streaming scan throttle fires
// at most once per streamRateMS milliseconds per player.
func New(streamRateMS int64) *Scheduler {
	return NewWithLogger(streamRateMS, nil)
}

// NewWithLogger is New with an optional logger for timer lifecycle
// events.
func NewWithLogger(streamRateMS int64, logger *logrus.Entry) *Scheduler {
	return &Scheduler{
		lastPlayerUpdate: make(map[uint64]int64),
		streamRateMS:     streamRateMS,
		logger:           logger,
	}
}

// SetTimer schedules handler to fire after the given delay, repeating
// every interval thereafter. repeatCount of 0 means infinite repetition,
// matching spec.md §4.6's remaining_calls = 0 sentinel. now is the
// caller's current tick timestamp in milliseconds.
func (s *Scheduler) SetTimer(handler Handler, now, delayMS, intervalMS int64, repeatCount int) *Timer {
	t := &Timer{
		handler:    handler,
		nextFireAt: now + delayMS,
		interval:   intervalMS,
		remaining:  repeatCount,
		running:    true,
	}
	s.timers = append(s.timers, t)
	return t
}

// Tick advances the scheduler to timestamp nowMS, firing every timer
// whose next_fire_at has passed and sweeping out every timer that is no
// longer running. Per spec.md §4.6: overshoot-compensated cadence keeps a
// repeating timer's long-run rate correct even under tick jitter.
func (s *Scheduler) Tick(nowMS int64) {
	s.nowMS = nowMS

	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.running {
			t.handler.OnFree(t)
			continue
		}

		if nowMS >= t.nextFireAt {
			previousFireAt := t.nextFireAt
			t.handler.OnTimeout(t)

			if t.remaining > 0 {
				t.remaining--
				if t.remaining == 0 {
					t.running = false
				}
			}

			if t.running {
				overshoot := nowMS - previousFireAt
				if overshoot < 0 {
					overshoot = 0
				}
				t.nextFireAt = nowMS + t.interval - overshoot
			}
		}

		if t.running {
			live = append(live, t)
		} else {
			t.handler.OnFree(t)
		}
	}
	s.timers = live
}

// ShouldStream reports whether playerID's per-tick streaming scan is due
// at nowMS, gating the engine to at most one scan per streamRateMS per
// player (spec.md §4.4's onPlayerUpdate throttle). It records nowMS as
// the player's last-scanned timestamp as a side effect of returning true.
func (s *Scheduler) ShouldStream(playerID uint64, nowMS int64) bool {
	last, ok := s.lastPlayerUpdate[playerID]
	if ok && nowMS-last < s.streamRateMS {
		return false
	}
	s.lastPlayerUpdate[playerID] = nowMS
	return true
}

// ForgetPlayer drops playerID's throttle state, called when a player
// disconnects so their id can be reused without carrying stale timing.
func (s *Scheduler) ForgetPlayer(playerID uint64) {
	delete(s.lastPlayerUpdate, playerID)
}

// TimerCount reports the number of timers still tracked by the
// scheduler, live or pending sweep.
func (s *Scheduler) TimerCount() int {
	return len(s.timers)
}
