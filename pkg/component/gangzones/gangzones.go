// Package gangzones implements the GangZone entity type: an axis-aligned
// rectangle checked for player containment rather than a streaming-
// distance radius, with per-player shown/flashing colour state and
// enter/leave events, grounded on
// original_source/SDK/include/Server/Components/GangZones/gangzones.hpp
// (IGangZone.showForPlayer/flashForPlayer/isPlayerInside,
// GangZoneEventHandler.onPlayerEnterGangZone/onPlayerLeaveGangZone) and
// original_source/Server/Components/GangZones/gangzone.cpp for the
// per-player flash-state bookkeeping.
package gangzones

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

// GangZone is one pooled rectangle. Unlike the other entity types it is
// not distance-streamed: visibility is explicit (ShowForPlayer), while
// enter/leave events fire automatically for any zone with checking
// enabled.
type GangZone struct {
	min, max types.Vector2
	world    int32
	checking bool
}

func contains(z *GangZone, p types.Vector2) bool {
	return p.X >= z.min.X && p.X <= z.max.X && p.Y >= z.min.Y && p.Y <= z.max.Y
}

// EnterLeaveHandler is notified when a player crosses a checked zone's
// boundary.
type EnterLeaveHandler interface {
	OnPlayerEnterGangZone(playerID uint64, zoneID int)
	OnPlayerLeaveGangZone(playerID uint64, zoneID int)
}

// Component owns the gang zone pool and its per-player inside/shown/
// flashing bookkeeping.
type Component struct {
	core   *core.Core
	pool   *pool.Pool[GangZone]
	events *event.Dispatcher[EnterLeaveHandler]
	logger *logrus.Entry

	insideFor map[int]map[uint64]bool
	shownFor  map[int]map[uint64]types.GTAColour
	flashFor  map[int]map[uint64]types.GTAColour
}

// New constructs the gang zones component and registers its per-tick
// containment scan with core.
func New(c *core.Core, capacity int, logger *logrus.Entry) *Component {
	comp := &Component{
		core:      c,
		pool:      pool.NewWithLogger[GangZone](capacity, logger),
		events:    event.New[EnterLeaveHandler](),
		logger:    logger,
		insideFor: make(map[int]map[uint64]bool),
		shownFor:  make(map[int]map[uint64]types.GTAColour),
		flashFor:  make(map[int]map[uint64]types.GTAColour),
	}
	c.RegisterPerPlayerUpdate(comp.update)
	c.OnPlayerLeave(comp)
	return comp
}

// OnPlayerLeave satisfies core.PlayerLeaveHandler, pruning every
// per-player bookkeeping map for the disconnecting player.
func (c *Component) OnPlayerLeave(p *core.Player) {
	for _, set := range c.insideFor {
		delete(set, p.PlayerID())
	}
	for _, set := range c.shownFor {
		delete(set, p.PlayerID())
	}
	for _, set := range c.flashFor {
		delete(set, p.PlayerID())
	}
}

// OnEnterLeave registers a handler for zone enter/leave transitions.
func (c *Component) OnEnterLeave(h EnterLeaveHandler) { c.events.Add(h) }

// Create allocates a new gang zone. checking enables the automatic
// per-tick containment scan (toggleGangZoneCheck's default).
func (c *Component) Create(min, max types.Vector2, world int32, checking bool) (id int, ok bool) {
	return c.pool.Emplace(func(int) GangZone {
		return GangZone{min: min, max: max, world: world, checking: checking}
	})
}

// Release destreams gang zone id — hiding it for every player it is
// currently shown to, per spec.md §3's destream-then-release lifecycle
// step — then destroys it.
func (c *Component) Release(id int) {
	for playerID := range c.shownFor[id] {
		c.HideForPlayer(id, playerID)
	}
	c.pool.Release(id, false)
	delete(c.insideFor, id)
	delete(c.shownFor, id)
	delete(c.flashFor, id)
}

// Get returns a read view of gang zone id.
func (c *Component) Get(id int) (*GangZone, bool) { return c.pool.Get(id) }

// ToggleCheck enables or disables the automatic containment scan for id.
func (c *Component) ToggleCheck(id int, toggle bool) {
	z, ok := c.pool.Get(id)
	if !ok {
		return
	}
	z.checking = toggle
}

func (c *Component) update(p *core.Player, nowMS int64) {
	c.scan(p.PlayerID(), p.Position(), p.VirtualWorld())
}

// scan runs the containment check against every checked zone for one
// player, factored out of update so it can be driven directly by tests
// without needing a live core.Player (whose fields are unexported).
func (c *Component) scan(playerID uint64, pos types.Vector3, world int32) {
	c.pool.ForEach(func(id int, z *GangZone) bool {
		if !z.checking {
			return true
		}
		if z.world != streaming.AnyWorld && z.world != world {
			return true
		}
		inside := contains(z, pos.To2D())
		was := c.insideFor[id] != nil && c.insideFor[id][playerID]

		switch {
		case inside && !was:
			if c.insideFor[id] == nil {
				c.insideFor[id] = make(map[uint64]bool)
			}
			c.insideFor[id][playerID] = true
			c.events.Dispatch(func(h EnterLeaveHandler) { h.OnPlayerEnterGangZone(playerID, id) })
		case !inside && was:
			delete(c.insideFor[id], playerID)
			c.events.Dispatch(func(h EnterLeaveHandler) { h.OnPlayerLeaveGangZone(playerID, id) })
		}
		return true
	})
}

// ShowForPlayer shows zone id to playerID in colour, replacing any
// previous shown colour.
func (c *Component) ShowForPlayer(id int, playerID uint64, colour types.GTAColour) {
	z, ok := c.pool.Get(id)
	if !ok {
		return
	}
	if c.shownFor[id] == nil {
		c.shownFor[id] = make(map[uint64]types.GTAColour)
	}
	c.shownFor[id][playerID] = colour

	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, float32(z.min.X))
	binary.Write(buf, binary.LittleEndian, float32(z.min.Y))
	binary.Write(buf, binary.LittleEndian, float32(z.max.X))
	binary.Write(buf, binary.LittleEndian, float32(z.max.Y))
	wire.PutColour(buf, colour)
	c.core.SendPacket(playerID, &network.Packet{
		RPC:        network.RPCShowGangZone,
		EntityID:   uint64(id),
		Components: []network.ComponentData{{Type: "gangzone", Data: buf.Bytes()}},
	})
}

// HideForPlayer hides zone id for playerID.
func (c *Component) HideForPlayer(id int, playerID uint64) {
	delete(c.shownFor[id], playerID)
	c.core.SendPacket(playerID, &network.Packet{RPC: network.RPCHideGangZone, EntityID: uint64(id)})
}

// IsShownForPlayer reports whether zone id is currently shown to
// playerID.
func (c *Component) IsShownForPlayer(id int, playerID uint64) bool {
	set := c.shownFor[id]
	if set == nil {
		return false
	}
	_, ok := set[playerID]
	return ok
}

// FlashForPlayer starts zone id flashing in colour for playerID.
func (c *Component) FlashForPlayer(id int, playerID uint64, colour types.GTAColour) {
	if c.flashFor[id] == nil {
		c.flashFor[id] = make(map[uint64]types.GTAColour)
	}
	c.flashFor[id][playerID] = colour

	buf := new(bytes.Buffer)
	wire.PutColour(buf, colour)
	c.core.SendPacket(playerID, &network.Packet{
		RPC:        network.RPCFlashGangZone,
		EntityID:   uint64(id),
		Components: []network.ComponentData{{Type: "flash", Data: buf.Bytes()}},
	})
}

// StopFlashForPlayer stops zone id flashing for playerID.
func (c *Component) StopFlashForPlayer(id int, playerID uint64) {
	delete(c.flashFor[id], playerID)
	c.core.SendPacket(playerID, &network.Packet{RPC: network.RPCStopFlashGangZone, EntityID: uint64(id)})
}

// IsFlashingForPlayer reports whether zone id is currently flashing for
// playerID.
func (c *Component) IsFlashingForPlayer(id int, playerID uint64) bool {
	set := c.flashFor[id]
	if set == nil {
		return false
	}
	_, ok := set[playerID]
	return ok
}
