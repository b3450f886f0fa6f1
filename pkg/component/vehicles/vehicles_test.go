package vehicles

import (
	"testing"
	"time"

	"github.com/opd-ai/sampcore/pkg/config"
	"github.com/opd-ai/sampcore/pkg/core"
	"github.com/opd-ai/sampcore/pkg/network"
	"github.com/opd-ai/sampcore/pkg/streaming"
	"github.com/opd-ai/sampcore/pkg/types"
)

func newTestComponent(respawnDelay time.Duration) (*Component, *network.MockServer) {
	cfg := config.Default()
	mock := network.NewMockServer()
	mock.Start()
	c := core.New(cfg, mock, nil)
	return New(c, 8, streaming.Config{StreamDistance: 300, DistanceMode: streaming.Mode2D}, respawnDelay, nil), mock
}

func TestComponent_CreateAndGet(t *testing.T) {
	comp, _ := newTestComponent(10 * time.Second)
	id, ok := comp.Create(400, types.Vector3{}, 0, -1, -1, 0)
	if !ok {
		t.Fatal("expected Create to succeed")
	}
	v, ok := comp.Get(id)
	if !ok || v.model != 400 {
		t.Fatalf("expected vehicle with model 400, got %+v", v)
	}
}

func TestComponent_TrailerAttachmentIsBidirectional(t *testing.T) {
	comp, _ := newTestComponent(10 * time.Second)
	towID, _ := comp.Create(400, types.Vector3{}, 0, -1, -1, 0)
	trailerID, _ := comp.Create(450, types.Vector3{}, 0, -1, -1, 0)

	comp.AttachTrailer(towID, trailerID)

	tow, _ := comp.Get(towID)
	trailer, _ := comp.Get(trailerID)
	if tow.trailer == nil || int(*tow.trailer) != trailerID {
		t.Fatal("expected tow vehicle to reference its trailer")
	}
	if trailer.towedBy == nil || int(*trailer.towedBy) != towID {
		t.Fatal("expected trailer to reference its tow vehicle")
	}
}

func TestComponent_RespawnSweepRespawnsAfterDelay(t *testing.T) {
	comp, _ := newTestComponent(1 * time.Second)
	id, _ := comp.Create(400, types.Vector3{}, 0, -1, -1, 0)

	comp.SetDead(id, 0)
	if !comp.IsDead(id) {
		t.Fatal("expected vehicle to be dead")
	}

	comp.RunRespawnSweep(500) // before the delay elapses
	if !comp.IsDead(id) {
		t.Fatal("expected vehicle to still be dead before the respawn delay elapses")
	}

	comp.RunRespawnSweep(1500) // after the delay elapses
	if comp.IsDead(id) {
		t.Fatal("expected vehicle to respawn once the delay has elapsed")
	}
}

func TestComponent_ClearDriverRemembersLastDriver(t *testing.T) {
	comp, _ := newTestComponent(10 * time.Second)
	id, _ := comp.Create(400, types.Vector3{}, 0, -1, -1, 0)

	comp.SetDriver(id, 7)
	comp.ClearDriver(id)

	v, _ := comp.Get(id)
	if v.hasDriver {
		t.Fatal("expected the vehicle to be unoccupied")
	}
	if v.driver != 7 {
		t.Fatal("expected the last driver id to be remembered")
	}
}
