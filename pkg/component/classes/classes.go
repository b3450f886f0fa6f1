// Package classes implements the class-selection pool and the
// per-player spawn info it feeds: a pooled PlayerClass template
// (skin/team/spawn position/angle/weapons) is requested by class id, an
// event handler may veto the request (scenario S3), and an accepted
// request becomes the player's next spawn info, grounded on
// original_source/SDK/include/Server/Components/Classes/classes.hpp
// (PlayerClass, IClassesComponent.create, IPlayerClassData.setSpawnInfo/
// spawnPlayer, ClassEventHandler.onPlayerRequestClass).
package classes

import (
	"bytes"
	"encoding/binary"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/sampcore/pkg/component/wire"
	"github.com/opd-ai/sampcore/pkg/core"
	"github.com/opd-ai/sampcore/pkg/event"
	"github.com/opd-ai/sampcore/pkg/network"
	"github.com/opd-ai/sampcore/pkg/pool"
	"github.com/opd-ai/sampcore/pkg/types"
)

const weaponSlotCount = 13

// WeaponSlot is one of a class's starting weapon/ammo pairs.
type WeaponSlot struct {
	WeaponID int
	Ammo     int
}

// PlayerClass is one pooled class template.
type PlayerClass struct {
	Team    int
	Skin    int
	Spawn   types.Vector3
	Angle   float64
	Weapons [weaponSlotCount]WeaponSlot
}

// ClassEventHandler may veto a class selection request, per
// ClassEventHandler.onPlayerRequestClass.
type ClassEventHandler interface {
	OnPlayerRequestClass(playerID uint64, classID int) bool
}

// Component owns the class template pool and per-player spawn info.
// Spawn info is tracked in a component-owned map rather than the
// player's extension registry, since IPlayerClassData is wholly owned
// by this component and never queried by another.
type Component struct {
	core   *core.Core
	pool   *pool.Pool[PlayerClass]
	events *event.Dispatcher[ClassEventHandler]
	logger *logrus.Entry

	spawnInfo map[uint64]PlayerClass
}

// New constructs the classes component, wiring the PlayerRequestClass
// input type to its handler.
func New(c *core.Core, capacity int, logger *logrus.Entry) *Component {
	comp := &Component{
		core:      c,
		pool:      pool.NewWithLogger[PlayerClass](capacity, logger),
		events:    event.New[ClassEventHandler](),
		logger:    logger,
		spawnInfo: make(map[uint64]PlayerClass),
	}
	c.RegisterInputHandler("PlayerRequestClass", comp.handleRequestClassInput)
	c.OnPlayerLeave(comp)
	return comp
}

// OnPlayerLeave satisfies core.PlayerLeaveHandler, discarding the
// disconnecting player's pending spawn info.
func (c *Component) OnPlayerLeave(p *core.Player) { delete(c.spawnInfo, p.PlayerID()) }

// OnPlayerRequestClass registers a veto-capable handler.
func (c *Component) OnPlayerRequestClass(h ClassEventHandler) { c.events.Add(h) }

// Create registers a new class template.
func (c *Component) Create(skin, team int, spawn types.Vector3, angle float64, weapons [weaponSlotCount]WeaponSlot) (id int, ok bool) {
	return c.pool.Emplace(func(int) PlayerClass {
		return PlayerClass{Team: team, Skin: skin, Spawn: spawn, Angle: angle, Weapons: weapons}
	})
}

// Release destroys class template id.
func (c *Component) Release(id int) { c.pool.Release(id, false) }

// Get returns a read view of class template id.
func (c *Component) Get(id int) (*PlayerClass, bool) { return c.pool.Get(id) }

// RequestClass runs the veto dispatch for playerID requesting classID.
// On approval, the class's spawn info becomes playerID's pending spawn
// info and an approving RPC is sent; on veto or an unknown classID a
// rejecting RPC is sent and no spawn info changes.
func (c *Component) RequestClass(playerID uint64, classID int) bool {
	pc, ok := c.pool.Get(classID)
	if !ok {
		c.sendResponse(playerID, false)
		return false
	}

	approved := c.events.StopAtFalse(func(h ClassEventHandler) bool {
		return h.OnPlayerRequestClass(playerID, classID)
	})
	if !approved {
		c.sendResponse(playerID, false)
		return false
	}

	c.SetSpawnInfo(playerID, *pc)
	c.sendResponse(playerID, true)
	return true
}

// SetSpawnInfo directly assigns playerID's pending spawn info, bypassing
// the class pool and veto dispatch (used for admin-driven team/skin
// changes rather than client class selection).
func (c *Component) SetSpawnInfo(playerID uint64, info PlayerClass) {
	c.spawnInfo[playerID] = info

	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, uint32(info.Team))
	binary.Write(buf, binary.LittleEndian, uint32(info.Skin))
	wire.PutVector3(buf, info.Spawn)
	binary.Write(buf, binary.LittleEndian, float32(info.Angle))
	for _, w := range info.Weapons {
		binary.Write(buf, binary.LittleEndian, uint32(w.WeaponID))
		binary.Write(buf, binary.LittleEndian, uint32(w.Ammo))
	}
	c.core.SendPacket(playerID, &network.Packet{
		RPC:        network.RPCSetSpawnInfo,
		EntityID:   playerID,
		Components: []network.ComponentData{{Type: "spawninfo", Data: buf.Bytes()}},
	})
}

// SpawnInfo returns playerID's currently pending spawn info, if any has
// been set.
func (c *Component) SpawnInfo(playerID uint64) (PlayerClass, bool) {
	info, ok := c.spawnInfo[playerID]
	return info, ok
}

func (c *Component) sendResponse(playerID uint64, approved bool) {
	buf := new(bytes.Buffer)
	wire.PutBool(buf, approved)
	c.core.SendPacket(playerID, &network.Packet{
		RPC:        network.RPCPlayerRequestClassResponse,
		EntityID:   playerID,
		Components: []network.ComponentData{{Type: "classresponse", Data: buf.Bytes()}},
	})
}

func (c *Component) handleRequestClassInput(playerID uint64, cmd *network.InputCommand) {
	if len(cmd.Data) < 4 {
		return
	}
	classID := int(binary.LittleEndian.Uint32(cmd.Data))
	c.RequestClass(playerID, classID)
}
