// Package objects implements the Object entity type: model, position,
// Euler rotation, draw distance, camera collision flag, an optional
// move animation, and attachment to a vehicle, per spec.md §4.5's
// "follow the template with type-specific show/hide payloads", grounded
// on original_source/SDK/include/Server/Components/Objects/objects.hpp
// (IBaseObject.setModel/setDrawDistance/move/stop,
// IObject.attachToVehicle).
package objects

import (
	"bytes"
	"encoding/binary"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/sampcore/pkg/component/wire"
	"github.com/opd-ai/sampcore/pkg/core"
	"github.com/opd-ai/sampcore/pkg/network"
	"github.com/opd-ai/sampcore/pkg/pool"
	"github.com/opd-ai/sampcore/pkg/streaming"
	"github.com/opd-ai/sampcore/pkg/types"
)

// MoveData describes an in-flight object translation/rotation, per
// ObjectMoveData.
type MoveData struct {
	TargetPos types.Vector3
	TargetRot types.Vector3
	Speed     float64
}

// Object is one pooled map object entity.
type Object struct {
	model           int
	pos             types.Vector3
	rot             types.Vector3
	world           int32
	drawDist        float64
	cameraCollision bool

	moving bool
	move   MoveData

	attachVehicle *int
}

// Position satisfies streaming.Entity.
func (o *Object) Position() types.Vector3 { return o.pos }

// VirtualWorld satisfies streaming.Entity.
func (o *Object) VirtualWorld() int32 { return o.world }

// AttachmentTarget satisfies streaming.Attached when the object is
// welded to a vehicle.
func (o *Object) AttachmentTarget() (uint64, bool) {
	if o.attachVehicle == nil {
		return 0, false
	}
	return uint64(*o.attachVehicle), true
}

// Component owns the object pool and its streaming engine.
type Component struct {
	core   *core.Core
	pool   *pool.Pool[Object]
	engine *streaming.Engine[Object]
	logger *logrus.Entry
}

// New constructs the objects component. Wire streamed/position resolvers
// for vehicle attachment with SetVehicleResolvers once the vehicles
// component exists.
func New(c *core.Core, capacity int, cfg streaming.Config, logger *logrus.Entry) *Component {
	p := pool.NewWithLogger[Object](capacity, logger)
	eng := streaming.NewWithLogger(p, cfg, logger)

	comp := &Component{core: c, pool: p, engine: eng, logger: logger}

	eng.SetShowHide(comp.show, comp.hide)
	p.OnDestroy(func(id int, _ *Object) { eng.Untrack(id) })

	c.RegisterPerPlayerUpdate(func(pl *core.Player, nowMS int64) { eng.Update(pl) })
	c.OnPlayerLeave(comp)

	return comp
}

// OnPlayerLeave satisfies core.PlayerLeaveHandler.
func (c *Component) OnPlayerLeave(p *core.Player) { c.engine.PruneDisconnected(p.PlayerID()) }

// SetVehicleResolvers wires the callbacks used to resolve a
// vehicle-attached object's streamed state and position.
func (c *Component) SetVehicleResolvers(streamed streaming.AttachmentStreamedFunc, position streaming.AttachmentPositionFunc) {
	c.engine.SetAttachmentResolvers(streamed, position)
}

// Create allocates a new, unattached object.
func (c *Component) Create(model int, pos, rot types.Vector3, drawDist float64, world int32) (id int, ok bool) {
	id, ok = c.pool.Emplace(func(int) Object {
		return Object{model: model, pos: pos, rot: rot, drawDist: drawDist, world: world}
	})
	if ok {
		c.engine.TrackPosition(id, world, pos)
	}
	return id, ok
}

// Release destroys object id.
func (c *Component) Release(id int) { c.pool.Release(id, false) }

// Get returns a read view of object id.
func (c *Component) Get(id int) (*Object, bool) { return c.pool.Get(id) }

// AttachToVehicle welds the object to a vehicle; its effective position
// then falls through to the vehicle's.
func (c *Component) AttachToVehicle(id, vehicleID int) {
	o, ok := c.pool.Get(id)
	if !ok {
		return
	}
	v := vehicleID
	o.attachVehicle = &v
}

// ResetAttachment clears any vehicle attachment.
func (c *Component) ResetAttachment(id int) {
	o, ok := c.pool.Get(id)
	if !ok {
		return
	}
	o.attachVehicle = nil
}

// Move begins animating the object toward data's target pose, per
// IBaseObject.move.
func (c *Component) Move(id int, data MoveData) {
	o, ok := c.pool.Get(id)
	if !ok {
		return
	}
	o.moving = true
	o.move = data
}

// Stop halts any in-flight move animation at its current pose.
func (c *Component) Stop(id int) {
	o, ok := c.pool.Get(id)
	if !ok {
		return
	}
	o.moving = false
}

// IsMoving reports whether object id currently has a move in flight.
func (c *Component) IsMoving(id int) bool {
	o, ok := c.pool.Get(id)
	return ok && o.moving
}

func (c *Component) show(playerID uint64, id int, o *Object) {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, uint32(o.model))
	wire.PutVector3(buf, o.pos)
	wire.PutVector3(buf, o.rot)
	binary.Write(buf, binary.LittleEndian, float32(o.drawDist))
	wire.PutBool(buf, o.cameraCollision)
	c.core.SendPacket(playerID, &network.Packet{
		RPC:        network.RPCShowObjectForPlayer,
		EntityID:   uint64(id),
		Components: []network.ComponentData{{Type: "object", Data: buf.Bytes()}},
	})
}

func (c *Component) hide(playerID uint64, id int, _ *Object) {
	c.core.SendPacket(playerID, &network.Packet{RPC: network.RPCHideObjectForPlayer, EntityID: uint64(id)})
}
