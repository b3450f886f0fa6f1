// Package textlabels implements the TextLabel entity type: text, colour,
// 3D draw distance, and optional attachment to a player or a vehicle
// (position falls through to the target, visibility gated on the
// target's own streamed/connected state), per spec.md §4.5's "follow
// the template with type-specific show/hide payloads", grounded on
// original_source/SDK/include/Server/Components/TextLabels/textlabels.hpp
// (ITextLabelBase.setText/setColour/setDrawDistance/attachToPlayer/attachToVehicle).
package textlabels

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

type attachKind uint8

const (
	attachNone attachKind = iota
	attachVehicle
	attachPlayer
)

// attachBit tags which sub-resolver a composite attachment key belongs
// to, since streaming.Attached's target id is a single uint64 namespace
// shared by both vehicle ids and player ids.
const attachBit uint64 = 1 << 62

// TextLabel is one pooled text label entity.
type TextLabel struct {
	text        string
	colour      types.GTAColour
	pos         types.Vector3
	world       int32
	drawDist    float64
	testLOS     bool
	attachKind  attachKind
	attachTo    uint64
}

// Position satisfies streaming.Entity.
func (t *TextLabel) Position() types.Vector3 { return t.pos }

// VirtualWorld satisfies streaming.Entity.
func (t *TextLabel) VirtualWorld() int32 { return t.world }

// AttachmentTarget satisfies streaming.Attached, encoding which kind of
// target (vehicle or player) this label follows.
func (t *TextLabel) AttachmentTarget() (uint64, bool) {
	switch t.attachKind {
	case attachVehicle:
		return attachBit | t.attachTo, true
	case attachPlayer:
		return t.attachTo, true
	}
	return 0, false
}

// VehicleStreamedFunc and VehiclePositionFunc resolve a vehicle
// attachment target; PlayerConnectedFunc and PlayerPositionFunc resolve
// a player attachment target. Component decodes the attachBit tag and
// dispatches to the right pair.
type VehicleStreamedFunc func(vehicleID int, playerID uint64) bool
type VehiclePositionFunc func(vehicleID int) (types.Vector3, bool)
type PlayerConnectedFunc func(playerID uint64) bool
type PlayerPositionFunc func(playerID uint64) (types.Vector3, bool)

// Component owns the text label pool and its streaming engine.
type Component struct {
	core   *core.Core
	pool   *pool.Pool[TextLabel]
	engine *streaming.Engine[TextLabel]
	logger *logrus.Entry

	vehicleStreamed VehicleStreamedFunc
	vehiclePosition VehiclePositionFunc
	playerConnected PlayerConnectedFunc
	playerPosition  PlayerPositionFunc
}

// New constructs the text labels component. cfg.DistanceMode is normally
// Mode3D, matching ITextLabel's full-3D draw distance.
func New(c *core.Core, capacity int, cfg streaming.Config, logger *logrus.Entry) *Component {
	p := pool.NewWithLogger[TextLabel](capacity, logger)
	eng := streaming.NewWithLogger(p, cfg, logger)

	comp := &Component{core: c, pool: p, engine: eng, logger: logger}

	eng.SetShowHide(comp.show, comp.hide)
	eng.SetAttachmentResolvers(comp.resolveStreamed, comp.resolvePosition)
	p.OnDestroy(func(id int, _ *TextLabel) { eng.Untrack(id) })

	c.RegisterPerPlayerUpdate(func(pl *core.Player, nowMS int64) { eng.Update(pl) })
	c.OnPlayerLeave(comp)

	return comp
}

// OnPlayerLeave satisfies core.PlayerLeaveHandler.
func (c *Component) OnPlayerLeave(p *core.Player) { c.engine.PruneDisconnected(p.PlayerID()) }

// SetVehicleResolvers wires the callbacks used to resolve a
// vehicle-attached label's streamed state and position, typically the
// vehicles component's IsStreamed/Get methods.
func (c *Component) SetVehicleResolvers(streamed VehicleStreamedFunc, position VehiclePositionFunc) {
	c.vehicleStreamed = streamed
	c.vehiclePosition = position
}

// SetPlayerResolvers wires the callbacks used to resolve a
// player-attached label's connected state and position.
func (c *Component) SetPlayerResolvers(connected PlayerConnectedFunc, position PlayerPositionFunc) {
	c.playerConnected = connected
	c.playerPosition = position
}

func (c *Component) resolveStreamed(targetKey, playerID uint64) bool {
	if targetKey&attachBit != 0 {
		if c.vehicleStreamed == nil {
			return false
		}
		return c.vehicleStreamed(int(targetKey&^attachBit), playerID)
	}
	if c.playerConnected == nil {
		return false
	}
	return c.playerConnected(targetKey)
}

func (c *Component) resolvePosition(targetKey uint64) (types.Vector3, bool) {
	if targetKey&attachBit != 0 {
		if c.vehiclePosition == nil {
			return types.Vector3{}, false
		}
		return c.vehiclePosition(int(targetKey &^ attachBit))
	}
	if c.playerPosition == nil {
		return types.Vector3{}, false
	}
	return c.playerPosition(targetKey)
}

// Create allocates a new, unattached text label.
func (c *Component) Create(text string, colour types.GTAColour, pos types.Vector3, drawDist float64, world int32, testLOS bool) (id int, ok bool) {
	id, ok = c.pool.Emplace(func(int) TextLabel {
		return TextLabel{text: text, colour: colour, pos: pos, drawDist: drawDist, world: world, testLOS: testLOS}
	})
	if ok {
		c.engine.TrackPosition(id, world, pos)
	}
	return id, ok
}

// Release destroys text label id.
func (c *Component) Release(id int) { c.pool.Release(id, false) }

// Get returns a read view of text label id.
func (c *Component) Get(id int) (*TextLabel, bool) { return c.pool.Get(id) }

// AttachToVehicle scopes the label to follow a vehicle's position.
func (c *Component) AttachToVehicle(id, vehicleID int) {
	t, ok := c.pool.Get(id)
	if !ok {
		return
	}
	t.attachKind = attachVehicle
	t.attachTo = uint64(vehicleID)
}

// AttachToPlayer scopes the label to follow a player's position.
func (c *Component) AttachToPlayer(id int, playerID uint64) {
	t, ok := c.pool.Get(id)
	if !ok {
		return
	}
	t.attachKind = attachPlayer
	t.attachTo = playerID
}

// SetColourAndText updates both fields and restreams the label.
func (c *Component) SetColourAndText(id int, colour types.GTAColour, text string) {
	t, ok := c.pool.Get(id)
	if !ok {
		return
	}
	t.colour = colour
	t.text = text
	c.engine.Restream(id)
}

func (c *Component) show(playerID uint64, id int, t *TextLabel) {
	buf := new(bytes.Buffer)
	wire.PutString(buf, t.text)
	wire.PutColour(buf, t.colour)
	wire.PutVector3(buf, t.pos)
	binary.Write(buf, binary.LittleEndian, float32(t.drawDist))
	wire.PutBool(buf, t.testLOS)
	c.core.SendPacket(playerID, &network.Packet{
		RPC:        network.RPCPlayerShowTextLabel,
		EntityID:   uint64(id),
		Components: []network.ComponentData{{Type: "textlabel", Data: buf.Bytes()}},
	})
}

func (c *Component) hide(playerID uint64, id int, _ *TextLabel) {
	c.core.SendPacket(playerID, &network.Packet{RPC: network.RPCPlayerHideTextLabel, EntityID: uint64(id)})
}
