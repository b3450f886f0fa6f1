package core

import (
	"context"
	"testing"
	"time"

	"github.com/opd-ai/sampcore/pkg/config"
	"github.com/opd-ai/sampcore/pkg/network"
)

type joinRecorder struct{ ids []uint64 }

func (j *joinRecorder) OnPlayerJoin(p *Player) { j.ids = append(j.ids, p.PlayerID()) }

type leaveRecorder struct{ ids []uint64 }

func (l *leaveRecorder) OnPlayerLeave(p *Player) { l.ids = append(l.ids, p.PlayerID()) }

func newTestCore() (*Core, *network.MockServer) {
	cfg := config.Default()
	cfg.MaxPlayers = 4
	mock := network.NewMockServer()
	return New(cfg, mock, nil), mock
}

func TestCore_AddPlayerDispatchesJoin(t *testing.T) {
	c, mock := newTestCore()
	rec := &joinRecorder{}
	c.OnPlayerJoin(rec)

	mock.SimulatePlayerJoin(7)
	c.drainTransport()

	if len(rec.ids) != 1 || rec.ids[0] != 7 {
		t.Fatalf("expected join handler to fire for player 7, got %v", rec.ids)
	}
}

func TestCore_RemovePlayerDispatchesLeaveAndReleasesSlot(t *testing.T) {
	c, mock := newTestCore()
	rec := &leaveRecorder{}
	c.OnPlayerLeave(rec)

	mock.SimulatePlayerJoin(9)
	c.drainTransport()
	if c.players.Count() != 1 {
		t.Fatalf("expected 1 player after join, got %d", c.players.Count())
	}

	mock.SimulatePlayerLeave(9)
	c.drainTransport()

	if len(rec.ids) != 1 || rec.ids[0] != 9 {
		t.Fatalf("expected leave handler to fire for player 9, got %v", rec.ids)
	}
	if c.players.Count() != 0 {
		t.Fatalf("expected player slot to be released, count = %d", c.players.Count())
	}
}

func TestCore_PerPlayerUpdateRunsForDuePlayers(t *testing.T) {
	c, mock := newTestCore()
	calls := 0
	c.RegisterPerPlayerUpdate(func(p *Player, nowMS int64) { calls++ })

	mock.SimulatePlayerJoin(1)
	c.drainTransport()

	c.runPerPlayerUpdates(0)
	if calls != 1 {
		t.Fatalf("expected 1 call on the first due tick, got %d", calls)
	}

	c.runPerPlayerUpdates(1) // inside the stream-rate throttle window
	if calls != 1 {
		t.Fatalf("expected the throttle to suppress a too-soon update, got %d calls", calls)
	}
}

func TestCore_RunStopsOnContextCancel(t *testing.T) {
	c, _ := newTestCore()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		c.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected Run to return promptly after context cancellation")
	}
}
