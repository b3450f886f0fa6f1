// Package checkpoints implements the per-player Checkpoint and
// RaceCheckpoint state machines, not pooled world entities: each player
// has at most one of each, tracked in component-owned maps and driven by
// the distance-vs-radius transition spec.md §4.5 and scenario S5
// describe, grounded on
// original_source/SDK/include/Server/Components/Checkpoints/checkpoints.hpp
// (ICheckpointDataBase: setPosition/setRadius/isPlayerInside/enable/disable,
// IRaceCheckpointData, PlayerCheckpointEventHandler).
package checkpoints

import (
	"bytes"
	"encoding/binary"

	"github.com/opd-ai/sampcore/pkg/component/wire"
	"github.com/opd-ai/sampcore/pkg/core"
	"github.com/opd-ai/sampcore/pkg/event"
	"github.com/opd-ai/sampcore/pkg/network"
	"github.com/opd-ai/sampcore/pkg/types"
)

// RaceCheckpointType mirrors RaceCheckpointType: whether this leg has a
// next waypoint, is a finish, or an air checkpoint variant.
type RaceCheckpointType int

const (
	RaceNormal RaceCheckpointType = iota
	RaceFinish
	RaceNothing
	RaceAirNormal
	RaceAirFinish
	RaceAirOne
	RaceAirTwo
	RaceAirThree
	RaceAirFour
	RaceNone
)

// checkpoint is a single player's standard checkpoint state.
type checkpoint struct {
	enabled bool
	inside  bool
	pos     types.Vector3
	radius  float64
}

// raceCheckpoint is a single player's race checkpoint state.
type raceCheckpoint struct {
	enabled bool
	inside  bool
	kind    RaceCheckpointType
	pos     types.Vector3
	nextPos types.Vector3
	radius  float64
}

// CheckpointHandler is notified on standard checkpoint enter/leave.
type CheckpointHandler interface {
	OnPlayerEnterCheckpoint(playerID uint64)
	OnPlayerLeaveCheckpoint(playerID uint64)
}

// RaceCheckpointHandler is notified on race checkpoint enter/leave.
type RaceCheckpointHandler interface {
	OnPlayerEnterRaceCheckpoint(playerID uint64)
	OnPlayerLeaveRaceCheckpoint(playerID uint64)
}

// Component runs the per-player distance-vs-radius scan every tick. Like
// gangzones it keeps its own per-player bookkeeping rather than reusing
// streaming.Engine, since eligibility here is "connected", not
// distance-streamed.
type Component struct {
	core       *core.Core
	events     *event.Dispatcher[CheckpointHandler]
	raceEvents *event.Dispatcher[RaceCheckpointHandler]

	checkpoints     map[uint64]*checkpoint
	raceCheckpoints map[uint64]*raceCheckpoint
}

// New constructs the checkpoints component and registers its per-player
// update with core.
func New(c *core.Core) *Component {
	comp := &Component{
		core:            c,
		events:          event.New[CheckpointHandler](),
		raceEvents:      event.New[RaceCheckpointHandler](),
		checkpoints:     make(map[uint64]*checkpoint),
		raceCheckpoints: make(map[uint64]*raceCheckpoint),
	}
	c.RegisterPerPlayerUpdate(comp.update)
	c.OnPlayerLeave(comp)
	return comp
}

// OnPlayerLeave satisfies core.PlayerLeaveHandler, discarding the
// disconnecting player's checkpoint state.
func (c *Component) OnPlayerLeave(p *core.Player) {
	delete(c.checkpoints, p.PlayerID())
	delete(c.raceCheckpoints, p.PlayerID())
}

// OnCheckpoint registers a handler for standard checkpoint transitions.
func (c *Component) OnCheckpoint(h CheckpointHandler) { c.events.Add(h) }

// OnRaceCheckpoint registers a handler for race checkpoint transitions.
func (c *Component) OnRaceCheckpoint(h RaceCheckpointHandler) { c.raceEvents.Add(h) }

func (c *Component) checkpointFor(playerID uint64) *checkpoint {
	cp := c.checkpoints[playerID]
	if cp == nil {
		cp = &checkpoint{}
		c.checkpoints[playerID] = cp
	}
	return cp
}

func (c *Component) raceCheckpointFor(playerID uint64) *raceCheckpoint {
	rc := c.raceCheckpoints[playerID]
	if rc == nil {
		rc = &raceCheckpoint{}
		c.raceCheckpoints[playerID] = rc
	}
	return rc
}

// SetCheckpoint enables a standard checkpoint at pos/radius for playerID.
// If a checkpoint is already enabled, it is first disabled (a disable
// RPC is sent) then re-enabled with the new parameters, per scenario S5.
func (c *Component) SetCheckpoint(playerID uint64, pos types.Vector3, radius float64) {
	cp := c.checkpointFor(playerID)
	if cp.enabled {
		c.sendDisableCheckpoint(playerID)
	}
	cp.enabled = true
	cp.inside = false
	cp.pos = pos
	cp.radius = radius
	c.sendSetCheckpoint(playerID, pos, radius)
}

// DisableCheckpoint disables playerID's standard checkpoint, if any.
func (c *Component) DisableCheckpoint(playerID uint64) {
	cp := c.checkpointFor(playerID)
	if !cp.enabled {
		return
	}
	cp.enabled = false
	cp.inside = false
	c.sendDisableCheckpoint(playerID)
}

// SetRaceCheckpoint enables a race checkpoint leg for playerID, disabling
// any already-enabled one first, per scenario S5.
func (c *Component) SetRaceCheckpoint(playerID uint64, kind RaceCheckpointType, pos, nextPos types.Vector3, radius float64) {
	rc := c.raceCheckpointFor(playerID)
	if rc.enabled {
		c.sendDisableRaceCheckpoint(playerID)
	}
	rc.enabled = true
	rc.inside = false
	rc.kind = kind
	rc.pos = pos
	rc.nextPos = nextPos
	rc.radius = radius
	c.sendSetRaceCheckpoint(playerID, rc)
}

// DisableRaceCheckpoint disables playerID's race checkpoint, if any.
func (c *Component) DisableRaceCheckpoint(playerID uint64) {
	rc := c.raceCheckpointFor(playerID)
	if !rc.enabled {
		return
	}
	rc.enabled = false
	rc.inside = false
	c.sendDisableRaceCheckpoint(playerID)
}

func (c *Component) update(p *core.Player, nowMS int64) {
	c.scan(p.PlayerID(), p.Position())
}

// scan runs the enter/leave transition check for one player, factored
// out of update so tests can drive it directly without a live
// core.Player.
func (c *Component) scan(playerID uint64, pos types.Vector3) {
	if cp, ok := c.checkpoints[playerID]; ok && cp.enabled {
		within := pos.DistanceSquared(cp.pos) <= cp.radius*cp.radius
		switch {
		case within && !cp.inside:
			cp.inside = true
			c.events.Dispatch(func(h CheckpointHandler) { h.OnPlayerEnterCheckpoint(playerID) })
		case !within && cp.inside:
			cp.inside = false
			c.events.Dispatch(func(h CheckpointHandler) { h.OnPlayerLeaveCheckpoint(playerID) })
		}
	}

	if rc, ok := c.raceCheckpoints[playerID]; ok && rc.enabled {
		within := pos.DistanceSquared(rc.pos) <= rc.radius*rc.radius
		switch {
		case within && !rc.inside:
			rc.inside = true
			c.raceEvents.Dispatch(func(h RaceCheckpointHandler) { h.OnPlayerEnterRaceCheckpoint(playerID) })
		case !within && rc.inside:
			rc.inside = false
			c.raceEvents.Dispatch(func(h RaceCheckpointHandler) { h.OnPlayerLeaveRaceCheckpoint(playerID) })
		}
	}
}

func (c *Component) sendSetCheckpoint(playerID uint64, pos types.Vector3, radius float64) {
	buf := new(bytes.Buffer)
	wire.PutVector3(buf, pos)
	binary.Write(buf, binary.LittleEndian, float32(radius))
	c.core.SendPacket(playerID, &network.Packet{
		RPC:        network.RPCSetCheckpoint,
		EntityID:   playerID,
		Components: []network.ComponentData{{Type: "checkpoint", Data: buf.Bytes()}},
	})
}

func (c *Component) sendDisableCheckpoint(playerID uint64) {
	c.core.SendPacket(playerID, &network.Packet{RPC: network.RPCDisableCheckpoint, EntityID: playerID})
}

func (c *Component) sendSetRaceCheckpoint(playerID uint64, rc *raceCheckpoint) {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, uint8(rc.kind))
	wire.PutVector3(buf, rc.pos)
	wire.PutVector3(buf, rc.nextPos)
	binary.Write(buf, binary.LittleEndian, float32(rc.radius))
	c.core.SendPacket(playerID, &network.Packet{
		RPC:        network.RPCSetRaceCheckpoint,
		EntityID:   playerID,
		Components: []network.ComponentData{{Type: "racecheckpoint", Data: buf.Bytes()}},
	})
}

func (c *Component) sendDisableRaceCheckpoint(playerID uint64) {
	c.core.SendPacket(playerID, &network.Packet{RPC: network.RPCDisableRaceCheckpoint, EntityID: playerID})
}
