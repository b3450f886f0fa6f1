// Package vehicles implements the Vehicle entity type: model, position,
// Z rotation, paint job/colour/components, driver reference, trailer/tow
// back-references, damage status, and death/respawn timing, per
// spec.md §4.5, grounded on
// original_source/SDK/Server/Components/Vehicles/vehicles.hpp (IVehicle:
// setColour/setPaintJob/setDamageStatus/setDriver/attachTrailer/setTower/
// setDead/respawn/getRespawnDelay).
package vehicles

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/sampcore/pkg/component/wire"
	"github.com/opd-ai/sampcore/pkg/core"
	"github.com/opd-ai/sampcore/pkg/network"
	"github.com/opd-ai/sampcore/pkg/pool"
	"github.com/opd-ai/sampcore/pkg/streaming"
	"github.com/opd-ai/sampcore/pkg/types"
)

// DamageStatus is the fixed panel/door/light/tyre status vector, per
// vehicles.hpp's setDamageStatus/getDamageStatus.
type DamageStatus struct {
	Panels uint32
	Doors  uint32
	Lights uint32
	Tires  uint32
}

// VehicleID identifies a pooled vehicle. Back-references to a vehicle
// (trailer/tow) store this, never a pointer, keeping the trailer↔tower
// cycle representable in arena storage (spec.md §9 "Cyclic references").
type VehicleID int

// Vehicle is one pooled vehicle entity.
type Vehicle struct {
	model    int
	pos      types.Vector3
	world    int32
	zAngle   float64
	colour1  int
	colour2  int
	paintJob int
	plate    string

	driver uint64 // last driver's player id; kept after the driver leaves, occupancy is hasDriver
	hasDriver bool

	damage DamageStatus

	trailer *VehicleID
	towedBy *VehicleID

	dead        bool
	deathTime   time.Time
	respawnSecs float64
}

// Position satisfies streaming.Entity.
func (v *Vehicle) Position() types.Vector3 { return v.pos }

// VirtualWorld satisfies streaming.Entity.
func (v *Vehicle) VirtualWorld() int32 { return v.world }

// Component owns the vehicle pool and its streaming engine, and runs the
// per-tick respawn sweep.
type Component struct {
	core   *core.Core
	pool   *pool.Pool[Vehicle]
	engine *streaming.Engine[Vehicle]
	logger *logrus.Entry

	respawnDelay time.Duration
}

// New constructs the vehicles component.
func New(c *core.Core, capacity int, cfg streaming.Config, respawnDelay time.Duration, logger *logrus.Entry) *Component {
	p := pool.NewWithLogger[Vehicle](capacity, logger)
	eng := streaming.NewWithLogger(p, cfg, logger)

	comp := &Component{core: c, pool: p, engine: eng, logger: logger, respawnDelay: respawnDelay}

	eng.SetShowHide(comp.show, comp.hide)
	p.OnDestroy(func(id int, v *Vehicle) { eng.Untrack(id) })

	c.RegisterPerPlayerUpdate(func(pl *core.Player, nowMS int64) { eng.Update(pl) })
	c.RegisterInputHandler("PlayerVehicleSync", comp.handleVehicleSyncInput)
	c.RegisterInputHandler("PlayerUnoccupiedSync", comp.handleUnoccupiedSyncInput)
	c.OnPlayerLeave(comp)

	return comp
}

// OnPlayerLeave satisfies core.PlayerLeaveHandler.
func (c *Component) OnPlayerLeave(p *core.Player) {
	c.engine.PruneDisconnected(p.PlayerID())
	c.pool.ForEach(func(id int, v *Vehicle) bool {
		if v.hasDriver && v.driver == p.PlayerID() {
			v.hasDriver = false
		}
		return true
	})
}

// Create allocates a new vehicle.
func (c *Component) Create(model int, pos types.Vector3, zAngle float64, colour1, colour2 int, world int32) (id int, ok bool) {
	id, ok = c.pool.Emplace(func(int) Vehicle {
		return Vehicle{model: model, pos: pos, zAngle: zAngle, colour1: colour1, colour2: colour2, world: world}
	})
	if ok {
		c.engine.TrackPosition(id, world, pos)
	}
	return id, ok
}

// Release destroys vehicle id.
func (c *Component) Release(id int) { c.pool.Release(id, false) }

// Get returns a read view of vehicle id.
func (c *Component) Get(id int) (*Vehicle, bool) { return c.pool.Get(id) }

// SetDriver records which player currently drives the vehicle. A
// following PlayerVehicleSync is only authoritative from this player.
func (c *Component) SetDriver(id int, playerID uint64) {
	v, ok := c.pool.Get(id)
	if !ok {
		return
	}
	v.driver = playerID
	v.hasDriver = true
}

// ClearDriver marks the vehicle unoccupied.
func (c *Component) ClearDriver(id int) {
	v, ok := c.pool.Get(id)
	if !ok {
		return
	}
	v.hasDriver = false
}

// AttachTrailer records id as towing trailerID and the reverse
// back-reference, storing only ids across the cyclic edge.
func (c *Component) AttachTrailer(id, trailerID int) {
	tID := VehicleID(trailerID)
	vID := VehicleID(id)
	if v, ok := c.pool.Get(id); ok {
		v.trailer = &tID
	}
	if t, ok := c.pool.Get(trailerID); ok {
		t.towedBy = &vID
	}
}

// DetachTrailer clears a vehicle's trailer back-reference, if any.
func (c *Component) DetachTrailer(id int) {
	v, ok := c.pool.Get(id)
	if !ok {
		return
	}
	if v.trailer != nil {
		if t, ok := c.pool.Get(int(*v.trailer)); ok {
			t.towedBy = nil
		}
	}
	v.trailer = nil
}

// SetDamageStatus updates the panel/door/light/tyre vector and restreams
// the vehicle (spec.md §4.5: restream follows the same rule as
// skin/colour changes).
func (c *Component) SetDamageStatus(id int, status DamageStatus) {
	v, ok := c.pool.Get(id)
	if !ok {
		return
	}
	v.damage = status
	c.engine.Restream(id)
}

// SetDead records the death timestamp the per-tick respawn sweep uses.
// nowMS is the tick's current time, matching the scheduler's clock.
func (c *Component) SetDead(id int, nowMS int64) {
	v, ok := c.pool.Get(id)
	if !ok {
		return
	}
	if v.dead {
		return
	}
	v.dead = true
	v.hasDriver = false
	v.deathTime = time.UnixMilli(nowMS)
}

// IsDead reports whether the vehicle is currently in the dead state.
func (c *Component) IsDead(id int) bool {
	v, ok := c.pool.Get(id)
	return ok && v.dead
}

// Respawn resets the vehicle's dead state immediately, independent of
// the sweep timer.
func (c *Component) Respawn(id int) {
	v, ok := c.pool.Get(id)
	if !ok {
		return
	}
	v.dead = false
	v.damage = DamageStatus{}
	c.engine.Restream(id)
}

// RunRespawnSweep respawns every vehicle that has been dead for at least
// the configured respawn delay. Call once per tick from main, since it
// is not gated by the per-player stream-rate throttle (spec.md §4.5).
func (c *Component) RunRespawnSweep(nowMS int64) {
	now := time.UnixMilli(nowMS)
	var due []int
	c.pool.ForEach(func(id int, v *Vehicle) bool {
		if v.dead && now.Sub(v.deathTime) >= c.respawnDelay {
			due = append(due, id)
		}
		return true
	})
	for _, id := range due {
		c.Respawn(id)
	}
}

func (c *Component) show(playerID uint64, id int, v *Vehicle) {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, uint32(v.model))
	wire.PutVector3(buf, v.pos)
	binary.Write(buf, binary.LittleEndian, float32(v.zAngle))
	binary.Write(buf, binary.LittleEndian, int32(v.colour1))
	binary.Write(buf, binary.LittleEndian, int32(v.colour2))
	binary.Write(buf, binary.LittleEndian, uint32(v.paintJob))
	c.core.SendPacket(playerID, &network.Packet{
		RPC:        network.RPCShowVehicleForPlayer,
		EntityID:   uint64(id),
		Components: []network.ComponentData{{Type: "vehicle", Data: buf.Bytes()}},
	})
}

func (c *Component) hide(playerID uint64, id int, _ *Vehicle) {
	c.core.SendPacket(playerID, &network.Packet{
		RPC:      network.RPCHideVehicleForPlayer,
		EntityID: uint64(id),
	})
}

// handleVehicleSyncInput accepts a driver-occupied vehicle sync only
// from the vehicle's current driver (spec.md §4.5).
func (c *Component) handleVehicleSyncInput(playerID uint64, cmd *network.InputCommand) {
	r := bytes.NewReader(cmd.Data)
	var vehicleID uint32
	if err := binary.Read(r, binary.LittleEndian, &vehicleID); err != nil {
		return
	}
	pos, err := wire.GetVector3(r)
	if err != nil {
		return
	}

	v, ok := c.pool.Get(int(vehicleID))
	if !ok || !v.hasDriver || v.driver != playerID {
		return
	}
	v.pos = pos
	c.engine.TrackPosition(int(vehicleID), v.world, pos)
}

// handleUnoccupiedSyncInput accepts an unoccupied-vehicle sync only when
// the sender was the vehicle's last driver, or, for a trailer, the
// towing vehicle's driver (spec.md §4.5).
func (c *Component) handleUnoccupiedSyncInput(playerID uint64, cmd *network.InputCommand) {
	r := bytes.NewReader(cmd.Data)
	var vehicleID uint32
	if err := binary.Read(r, binary.LittleEndian, &vehicleID); err != nil {
		return
	}
	pos, err := wire.GetVector3(r)
	if err != nil {
		return
	}

	v, ok := c.pool.Get(int(vehicleID))
	if !ok {
		return
	}

	authoritative := !v.hasDriver && v.driver == playerID
	if !authoritative && v.towedBy != nil {
		if tower, ok := c.pool.Get(int(*v.towedBy)); ok && tower.hasDriver && tower.driver == playerID {
			authoritative = true
		}
	}
	if !authoritative {
		return
	}
	v.pos = pos
	c.engine.TrackPosition(int(vehicleID), v.world, pos)
}
