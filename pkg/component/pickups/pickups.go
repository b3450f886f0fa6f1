// Package pickups implements the Pickup entity type: model, pickup
// type, and a pickup event fired when a player reports picking up a
// pickup that is currently streamed in for them (the server does no
// distance check of its own), per spec.md §4.5's
// "follow the template with type-specific show/hide payloads", grounded
// on original_source/SDK/include/Server/Components/Pickups/pickups.hpp
// (IPickup.setModel/setType, PickupEventHandler.onPlayerPickUpPickup).
package pickups

import (
	"bytes"
	"encoding/binary"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/sampcore/pkg/component/wire"
	"github.com/opd-ai/sampcore/pkg/core"
	"github.com/opd-ai/sampcore/pkg/event"
	"github.com/opd-ai/sampcore/pkg/network"
	"github.com/opd-ai/sampcore/pkg/pool"
	"github.com/opd-ai/sampcore/pkg/streaming"
	"github.com/opd-ai/sampcore/pkg/types"
)

// PickupType mirrors the wire's 8-bit pickup behaviour tag (the concrete
// meanings, e.g. "weapon", "money", "once-only", live client-side; the
// core only carries the value through).
type PickupType uint8

// TriggerRadius is the nominal pickup trigger distance. The client
// enforces the trigger itself; the server never compares positions
// against this value, and fires the pickup event on the client's
// PickedUpPickup report for a streamed-in pickup.
const TriggerRadius = 2.0

// Pickup is one pooled pickup entity.
type Pickup struct {
	model int
	kind  PickupType
	pos   types.Vector3
	world int32
}

// Position satisfies streaming.Entity.
func (p *Pickup) Position() types.Vector3 { return p.pos }

// VirtualWorld satisfies streaming.Entity.
func (p *Pickup) VirtualWorld() int32 { return p.world }

// PickupHandler is notified when a player picks up a pickup.
type PickupHandler interface {
	OnPlayerPickUpPickup(playerID uint64, pickupID int)
}

// Component owns the pickup pool and its streaming engine.
type Component struct {
	core    *core.Core
	pool    *pool.Pool[Pickup]
	engine  *streaming.Engine[Pickup]
	pickups *event.Dispatcher[PickupHandler]
	logger  *logrus.Entry
}

// New constructs the pickups component.
func New(c *core.Core, capacity int, cfg streaming.Config, logger *logrus.Entry) *Component {
	p := pool.NewWithLogger[Pickup](capacity, logger)
	eng := streaming.NewWithLogger(p, cfg, logger)

	comp := &Component{core: c, pool: p, engine: eng, pickups: event.New[PickupHandler](), logger: logger}

	eng.SetShowHide(comp.show, comp.hide)
	p.OnDestroy(func(id int, _ *Pickup) { eng.Untrack(id) })

	c.RegisterPerPlayerUpdate(func(pl *core.Player, nowMS int64) { eng.Update(pl) })
	c.RegisterInputHandler("PickedUpPickup", comp.handlePickupInput)
	c.OnPlayerLeave(comp)

	return comp
}

// OnPlayerLeave satisfies core.PlayerLeaveHandler.
func (c *Component) OnPlayerLeave(p *core.Player) { c.engine.PruneDisconnected(p.PlayerID()) }

// OnPickup registers a handler for pickup events.
func (c *Component) OnPickup(h PickupHandler) { c.pickups.Add(h) }

// Create allocates a new pickup.
func (c *Component) Create(model int, kind PickupType, pos types.Vector3, world int32) (id int, ok bool) {
	id, ok = c.pool.Emplace(func(int) Pickup {
		return Pickup{model: model, kind: kind, pos: pos, world: world}
	})
	if ok {
		c.engine.TrackPosition(id, world, pos)
	}
	return id, ok
}

// Release destroys pickup id.
func (c *Component) Release(id int) { c.pool.Release(id, false) }

// Get returns a read view of pickup id.
func (c *Component) Get(id int) (*Pickup, bool) { return c.pool.Get(id) }

func (c *Component) show(playerID uint64, id int, p *Pickup) {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, uint32(p.model))
	binary.Write(buf, binary.LittleEndian, uint8(p.kind))
	wire.PutVector3(buf, p.pos)
	c.core.SendPacket(playerID, &network.Packet{
		RPC:        network.RPCShowPickup,
		EntityID:   uint64(id),
		Components: []network.ComponentData{{Type: "pickup", Data: buf.Bytes()}},
	})
}

func (c *Component) hide(playerID uint64, id int, _ *Pickup) {
	c.core.SendPacket(playerID, &network.Packet{RPC: network.RPCHidePickup, EntityID: uint64(id)})
}

// handlePickupInput accepts a pickup report only if the pickup is
// currently streamed in for the sender, then dispatches the event.
func (c *Component) handlePickupInput(playerID uint64, cmd *network.InputCommand) {
	r := bytes.NewReader(cmd.Data)
	var pickupID uint32
	if err := binary.Read(r, binary.LittleEndian, &pickupID); err != nil {
		return
	}
	if _, ok := c.pool.Get(int(pickupID)); !ok {
		return
	}
	if !c.engine.IsStreamed(int(pickupID), playerID) {
		return
	}
	c.pickups.Dispatch(func(h PickupHandler) { h.OnPlayerPickUpPickup(playerID, int(pickupID)) })
}
