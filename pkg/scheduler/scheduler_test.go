package scheduler

import "testing"

type recordingHandler struct {
	fires []int64
	freed bool
}

func (h *recordingHandler) OnTimeout(t *Timer) { h.fires = append(h.fires, t.nextFireAt) }
func (h *recordingHandler) OnFree(t *Timer)    { h.freed = true }

func TestScheduler_OneShotTimerFiresOnce(t *testing.T) {
	s := New(100)
	h := &recordingHandler{}
	s.SetTimer(h, 0, 50, 0, 1)

	s.Tick(49)
	if len(h.fires) != 0 {
		t.Fatal("expected no fire before the delay elapses")
	}

	s.Tick(50)
	if len(h.fires) != 1 {
		t.Fatalf("expected exactly 1 fire, got %d", len(h.fires))
	}

	s.Tick(200)
	if len(h.fires) != 1 {
		t.Fatalf("expected a one-shot timer not to fire again, got %d fires", len(h.fires))
	}
	if !h.freed {
		t.Fatal("expected OnFree to have been called once the timer stopped running")
	}
}

func TestScheduler_RepeatingTimerCadence(t *testing.T) {
	s := New(100)
	h := &recordingHandler{}
	s.SetTimer(h, 0, 10, 10, 0)

	s.Tick(10)
	s.Tick(20)
	s.Tick(30)

	if len(h.fires) != 3 {
		t.Fatalf("expected 3 fires at 10ms cadence, got %d", len(h.fires))
	}
	if h.freed {
		t.Fatal("expected an infinite-repeat timer not to be freed")
	}
}

func TestScheduler_OvershootCompensation(t *testing.T) {
	s := New(100)
	h := &recordingHandler{}
	s.SetTimer(h, 0, 10, 10, 0)

	// Tick jitter: the scheduler only gets to check at t=25 instead of
	// t=10 and t=20. It must still fire once (catching up) and then
	// resume a 10ms cadence from "now", not drift further behind.
	s.Tick(25)
	if len(h.fires) != 1 {
		t.Fatalf("expected 1 fire after a jittered tick, got %d", len(h.fires))
	}

	s.Tick(35)
	if len(h.fires) != 2 {
		t.Fatalf("expected cadence to resume at +10ms, got %d fires", len(h.fires))
	}
}

func TestScheduler_KillRemovesOnNextSweep(t *testing.T) {
	s := New(100)
	h := &recordingHandler{}
	timer := s.SetTimer(h, 0, 1000, 0, 0)

	timer.Kill()
	if s.TimerCount() != 1 {
		t.Fatal("expected a killed timer to remain until the next sweep")
	}

	s.Tick(1)
	if s.TimerCount() != 0 {
		t.Fatal("expected the killed timer to be swept")
	}
	if !h.freed {
		t.Fatal("expected OnFree to be called for the killed timer")
	}
}

func TestScheduler_ShouldStreamThrottle(t *testing.T) {
	s := New(100)

	if !s.ShouldStream(1, 0) {
		t.Fatal("expected the first scan for a player to be due")
	}
	if s.ShouldStream(1, 50) {
		t.Fatal("expected a scan inside the throttle window to be rejected")
	}
	if !s.ShouldStream(1, 100) {
		t.Fatal("expected a scan at exactly the throttle interval to be due")
	}
}

func TestScheduler_ForgetPlayerResetsThrottle(t *testing.T) {
	s := New(100)
	s.ShouldStream(1, 0)
	s.ForgetPlayer(1)

	if !s.ShouldStream(1, 10) {
		t.Fatal("expected a forgotten player's next scan to be due immediately")
	}
}
