package objects

import (
	"testing"

	"github.com/opd-ai/sampcore/pkg/config"
	"github.com/opd-ai/sampcore/pkg/core"
	"github.com/opd-ai/sampcore/pkg/network"
	"github.com/opd-ai/sampcore/pkg/streaming"
	"github.com/opd-ai/sampcore/pkg/types"
)

func newTestComponent() *Component {
	cfg := config.Default()
	mock := network.NewMockServer()
	mock.Start()
	c := core.New(cfg, mock, nil)
	return New(c, 8, streaming.Config{StreamDistance: 300, DistanceMode: streaming.Mode3D}, nil)
}

func TestComponent_CreateAndGet(t *testing.T) {
	comp := newTestComponent()
	id, ok := comp.Create(1337, types.Vector3{}, types.Vector3{}, 300, 0)
	if !ok {
		t.Fatal("expected Create to succeed")
	}
	o, ok := comp.Get(id)
	if !ok || o.model != 1337 {
		t.Fatalf("expected object with model 1337, got %+v", o)
	}
}

func TestComponent_MoveAndStop(t *testing.T) {
	comp := newTestComponent()
	id, _ := comp.Create(1337, types.Vector3{}, types.Vector3{}, 300, 0)

	comp.Move(id, MoveData{TargetPos: types.Vector3{X: 10}, Speed: 1})
	if !comp.IsMoving(id) {
		t.Fatal("expected object to be moving")
	}
	comp.Stop(id)
	if comp.IsMoving(id) {
		t.Fatal("expected object to have stopped moving")
	}
}

func TestComponent_AttachToVehicleSetsTarget(t *testing.T) {
	comp := newTestComponent()
	id, _ := comp.Create(1337, types.Vector3{}, types.Vector3{}, 300, 0)
	comp.AttachToVehicle(id, 9)

	o, _ := comp.Get(id)
	target, ok := o.AttachmentTarget()
	if !ok || target != 9 {
		t.Fatalf("expected attachment target 9, got %d ok=%v", target, ok)
	}

	comp.ResetAttachment(id)
	o, _ = comp.Get(id)
	if _, ok := o.AttachmentTarget(); ok {
		t.Fatal("expected attachment to be cleared")
	}
}
