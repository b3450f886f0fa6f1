package streaming

import (
	"testing"

	"github.com/opd-ai/sampcore/pkg/pool"
	"github.com/opd-ai/sampcore/pkg/types"
)

type testActor struct {
	pos          types.Vector3
	world        int32
	attachTarget uint64
	attached     bool
}

func (a testActor) Position() types.Vector3 { return a.pos }
func (a testActor) VirtualWorld() int32     { return a.world }
func (a testActor) AttachmentTarget() (uint64, bool) {
	return a.attachTarget, a.attached
}

type testPlayer struct {
	id      uint64
	pos     types.Vector3
	world   int32
	spawned bool
}

func (p testPlayer) PlayerID() uint64        { return p.id }
func (p testPlayer) Position() types.Vector3 { return p.pos }
func (p testPlayer) VirtualWorld() int32     { return p.world }
func (p testPlayer) StreamEligible() bool    { return p.spawned }

func newTestEngine(cap int) (*pool.Pool[testActor], *Engine[testActor]) {
	p := pool.New[testActor](16)
	cfg := Config{StreamDistance: 200, DistanceMode: Mode2D, Cap: cap}
	e := New(p, cfg)
	return p, e
}

// TestEngine_StreamInAcrossBoundary is scenario S1.
func TestEngine_StreamInAcrossBoundary(t *testing.T) {
	p, e := newTestEngine(0)
	id, _ := p.Emplace(func(id int) testActor {
		return testActor{pos: types.Vector3{X: 0, Y: 0, Z: 0}, world: 0}
	})

	var shownTo []uint64
	var hiddenFrom []uint64
	e.SetShowHide(
		func(playerID uint64, eid int, entity *testActor) { shownTo = append(shownTo, playerID) },
		func(playerID uint64, eid int, entity *testActor) { hiddenFrom = append(hiddenFrom, playerID) },
	)

	player := testPlayer{id: 1, pos: types.Vector3{X: 0, Y: 0, Z: 0}, world: 0, spawned: true}
	e.Update(player)

	if !e.IsStreamed(id, 1) {
		t.Fatal("expected actor to be streamed in after first update")
	}
	if e.CountStreamed(1) != 1 {
		t.Fatalf("expected numStreamed = 1, got %d", e.CountStreamed(1))
	}
	if len(shownTo) != 1 || shownTo[0] != 1 {
		t.Fatalf("expected exactly one show call to player 1, got %v", shownTo)
	}

	player.pos = types.Vector3{X: 300, Y: 0, Z: 0}
	e.Update(player)

	if e.IsStreamed(id, 1) {
		t.Fatal("expected actor to be streamed out after moving past stream_distance")
	}
	if len(hiddenFrom) != 1 {
		t.Fatalf("expected exactly one hide call, got %v", hiddenFrom)
	}
}

// TestEngine_PerPlayerCap is scenario S2.
func TestEngine_PerPlayerCap(t *testing.T) {
	p, e := newTestEngine(2)
	var ids []int
	for i := 0; i < 3; i++ {
		id, _ := p.Emplace(func(id int) testActor {
			return testActor{pos: types.Vector3{X: 0, Y: 0, Z: 0}, world: 0}
		})
		ids = append(ids, id)
	}

	player := testPlayer{id: 1, pos: types.Vector3{X: 0, Y: 0, Z: 0}, world: 0, spawned: true}
	e.Update(player)

	streamedCount := 0
	for _, id := range ids {
		if e.IsStreamed(id, 1) {
			streamedCount++
		}
	}
	if streamedCount != 2 {
		t.Fatalf("expected exactly 2 streamed under the cap, got %d", streamedCount)
	}
	if e.IsStreamed(ids[2], 1) {
		t.Fatal("expected the highest-id actor to lose the tie-break under the cap")
	}
}

func TestEngine_VirtualWorldMismatch(t *testing.T) {
	p, e := newTestEngine(0)
	id, _ := p.Emplace(func(id int) testActor {
		return testActor{pos: types.Vector3{}, world: 5}
	})

	player := testPlayer{id: 1, pos: types.Vector3{}, world: 0, spawned: true}
	e.Update(player)

	if e.IsStreamed(id, 1) {
		t.Fatal("expected a virtual-world mismatch to prevent stream-in")
	}
}

func TestEngine_AnyWorldAlwaysEligible(t *testing.T) {
	p, e := newTestEngine(0)
	id, _ := p.Emplace(func(id int) testActor {
		return testActor{pos: types.Vector3{}, world: AnyWorld}
	})

	player := testPlayer{id: 1, pos: types.Vector3{}, world: 99, spawned: true}
	e.Update(player)

	if !e.IsStreamed(id, 1) {
		t.Fatal("expected an AnyWorld entity to stream regardless of player's world")
	}
}

func TestEngine_NotStreamEligiblePlayer(t *testing.T) {
	p, e := newTestEngine(0)
	id, _ := p.Emplace(func(id int) testActor {
		return testActor{pos: types.Vector3{}, world: 0}
	})

	player := testPlayer{id: 1, pos: types.Vector3{}, world: 0, spawned: false}
	e.Update(player)

	if e.IsStreamed(id, 1) {
		t.Fatal("expected a not-yet-spawned player to never stream entities in")
	}
}

func TestEngine_AttachmentGating(t *testing.T) {
	p, e := newTestEngine(0)
	id, _ := p.Emplace(func(id int) testActor {
		return testActor{pos: types.Vector3{X: 9999, Y: 9999}, world: 0, attached: true, attachTarget: 42}
	})

	targetStreamed := false
	e.SetAttachmentResolvers(
		func(targetID, playerID uint64) bool { return targetStreamed },
		func(targetID uint64) (types.Vector3, bool) { return types.Vector3{X: 0, Y: 0}, true },
	)

	player := testPlayer{id: 1, pos: types.Vector3{X: 0, Y: 0}, world: 0, spawned: true}
	e.Update(player)
	if e.IsStreamed(id, 1) {
		t.Fatal("expected an entity attached to a not-streamed target to stay hidden")
	}

	targetStreamed = true
	e.Update(player)
	if !e.IsStreamed(id, 1) {
		t.Fatal("expected the attached entity to stream once its target is streamed, using the fallthrough position")
	}
}

func TestEngine_Restream(t *testing.T) {
	p, e := newTestEngine(0)
	id, _ := p.Emplace(func(id int) testActor {
		return testActor{pos: types.Vector3{}, world: 0}
	})

	var calls []string
	e.SetShowHide(
		func(playerID uint64, eid int, entity *testActor) { calls = append(calls, "show") },
		func(playerID uint64, eid int, entity *testActor) { calls = append(calls, "hide") },
	)

	player := testPlayer{id: 1, pos: types.Vector3{}, world: 0, spawned: true}
	e.Update(player)
	calls = nil

	e.Restream(id)

	if len(calls) != 2 || calls[0] != "hide" || calls[1] != "show" {
		t.Fatalf("expected restream to hide then show, got %v", calls)
	}
}

func TestEngine_PruneDisconnected(t *testing.T) {
	p, e := newTestEngine(0)
	id, _ := p.Emplace(func(id int) testActor {
		return testActor{pos: types.Vector3{}, world: 0}
	})

	player := testPlayer{id: 1, pos: types.Vector3{}, world: 0, spawned: true}
	e.Update(player)
	if !e.IsStreamed(id, 1) {
		t.Fatal("setup: expected entity to be streamed before disconnect")
	}

	e.PruneDisconnected(1)

	if e.IsStreamed(id, 1) {
		t.Fatal("expected PruneDisconnected to clear the streamed-for entry")
	}
	if e.CountStreamed(1) != 0 {
		t.Fatal("expected PruneDisconnected to zero the per-player counter")
	}
}

// TestEngine_UntrackDestreamsBeforeClearingBookkeeping covers the
// release lifecycle's destream step: a pool.OnDestroy hook calling
// Untrack must hide the entity for every player it was streamed to, not
// just drop the bookkeeping silently.
func TestEngine_UntrackDestreamsBeforeClearingBookkeeping(t *testing.T) {
	p, e := newTestEngine(0)
	id, _ := p.Emplace(func(id int) testActor {
		return testActor{pos: types.Vector3{}, world: 0}
	})

	var hiddenFrom []uint64
	e.SetShowHide(
		func(playerID uint64, eid int, entity *testActor) {},
		func(playerID uint64, eid int, entity *testActor) { hiddenFrom = append(hiddenFrom, playerID) },
	)
	p.OnDestroy(func(id int, _ *testActor) { e.Untrack(id) })

	player1 := testPlayer{id: 1, pos: types.Vector3{}, world: 0, spawned: true}
	player2 := testPlayer{id: 2, pos: types.Vector3{}, world: 0, spawned: true}
	e.Update(player1)
	e.Update(player2)
	if e.CountStreamed(1) != 1 || e.CountStreamed(2) != 1 {
		t.Fatal("setup: expected the entity to be streamed in for both players")
	}

	p.Release(id, false)

	if len(hiddenFrom) != 2 {
		t.Fatalf("expected destroy to hide the entity for both streamed players, got %v", hiddenFrom)
	}
	if e.IsStreamed(id, 1) || e.IsStreamed(id, 2) {
		t.Fatal("expected destroy to clear streamed-for bookkeeping")
	}
	if e.CountStreamed(1) != 0 || e.CountStreamed(2) != 0 {
		t.Fatal("expected destroy to zero both players' per-type counters")
	}
}
