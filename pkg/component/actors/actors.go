// Package actors implements the Actor entity type: a pooled,
// animation-and-health NPC body streamed per spec.md §4.4's generic
// engine and extended with the animation/health/invulnerability logic
// spec.md §4.5 describes, grounded on
// original_source/SDK/Server/Components/Actors/actors.hpp (IActor:
// setSkin/applyAnimation/setHealth/setInvulnerable,
// ActorEventHandler.onPlayerDamageActor).
package actors

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/sampcore/pkg/component/wire"
	"github.com/opd-ai/sampcore/pkg/core"
	"github.com/opd-ai/sampcore/pkg/event"
	"github.com/opd-ai/sampcore/pkg/network"
	"github.com/opd-ai/sampcore/pkg/pool"
	"github.com/opd-ai/sampcore/pkg/streaming"
	"github.com/opd-ai/sampcore/pkg/types"
)

// Animation is an actor's current applied animation, per spec.md §4.5.
type Animation struct {
	Library string
	Name    string
	Delta   float64
	Loop    bool
	LockX   bool
	LockY   bool
	Freeze  bool
	Time    uint32
}

// Actor is one pooled NPC body.
type Actor struct {
	pos          types.Vector3
	world        int32
	skin         int
	facingAngle  float64
	anim         Animation
	health       float64
	invulnerable bool
}

// Position satisfies streaming.Entity.
func (a *Actor) Position() types.Vector3 { return a.pos }

// VirtualWorld satisfies streaming.Entity.
func (a *Actor) VirtualWorld() int32 { return a.world }

// DamageHandler is notified when a streamed-in, non-invulnerable actor
// takes damage from a player. The callback runs under a scoped release
// lock (spec.md S4): the handler may safely call Release(actorID)
// itself without the slot disappearing out from under the dispatch.
type DamageHandler interface {
	OnPlayerDamageActor(playerID uint64, actorID int, amount float64, weaponID uint32, bodyPart int)
}

// Component owns the actor pool, its streaming engine, and the
// damage-event dispatcher.
type Component struct {
	core   *core.Core
	pool   *pool.Pool[Actor]
	engine *streaming.Engine[Actor]
	damage *event.Dispatcher[DamageHandler]
	logger *logrus.Entry

	// allowedAnimLibs is nil when game.validate_animations is unset,
	// meaning every animation library is accepted.
	allowedAnimLibs map[string]struct{}
}

// New constructs the actors component, registers its streaming engine's
// per-player update with core, and wires the GiveDamageActor input RPC.
func New(c *core.Core, capacity int, cfg streaming.Config, validateAnimations bool, allowedAnimLibs []string, logger *logrus.Entry) *Component {
	p := pool.NewWithLogger[Actor](capacity, logger)
	eng := streaming.NewWithLogger(p, cfg, logger)

	comp := &Component{
		core:   c,
		pool:   p,
		engine: eng,
		damage: event.New[DamageHandler](),
		logger: logger,
	}

	if validateAnimations {
		allow := make(map[string]struct{}, len(allowedAnimLibs))
		for _, lib := range allowedAnimLibs {
			allow[lib] = struct{}{}
		}
		comp.allowedAnimLibs = allow
	}

	eng.SetShowHide(comp.show, comp.hide)
	p.OnDestroy(func(id int, a *Actor) { eng.Untrack(id) })

	c.RegisterPerPlayerUpdate(func(pl *core.Player, nowMS int64) { eng.Update(pl) })
	c.RegisterInputHandler("GiveDamageActor", comp.handleDamageInput)
	c.OnPlayerLeave(comp)

	return comp
}

// OnPlayerLeave satisfies core.PlayerLeaveHandler, pruning the
// disconnected player from every actor's streamed-for set.
func (c *Component) OnPlayerLeave(p *core.Player) {
	c.engine.PruneDisconnected(p.PlayerID())
}

// OnDamage registers a handler for actor damage events.
func (c *Component) OnDamage(h DamageHandler) { c.damage.Add(h) }

// Create allocates a new actor and begins tracking its position for
// streaming. Returns ok=false if the pool is at capacity.
func (c *Component) Create(skin int, pos types.Vector3, facingAngle float64, world int32) (id int, ok bool) {
	id, ok = c.pool.Emplace(func(int) Actor {
		return Actor{skin: skin, pos: pos, facingAngle: facingAngle, world: world, health: 100}
	})
	if ok {
		c.engine.TrackPosition(id, world, pos)
	}
	return id, ok
}

// Release destroys actor id. If it is currently locked by a scoped
// release lock (e.g. a damage handler in flight), destruction is
// deferred until the lock is dropped.
func (c *Component) Release(id int) {
	c.pool.Release(id, false)
}

// Get returns a read view of actor id.
func (c *Component) Get(id int) (*Actor, bool) {
	return c.pool.Get(id)
}

// SetPosition moves actor id and updates its broad-phase tracking.
func (c *Component) SetPosition(id int, pos types.Vector3) {
	a, ok := c.pool.Get(id)
	if !ok {
		return
	}
	a.pos = pos
	c.engine.TrackPosition(id, a.world, pos)
}

// ApplyAnimation validates anim's library against the allow-list (if
// configured) and broadcasts it to every player the actor is currently
// streamed in for.
func (c *Component) ApplyAnimation(id int, anim Animation) error {
	if c.allowedAnimLibs != nil {
		if _, ok := c.allowedAnimLibs[anim.Library]; !ok {
			return fmt.Errorf("actors: animation library %q is not in the allow-list", anim.Library)
		}
	}
	a, ok := c.pool.Get(id)
	if !ok {
		return fmt.Errorf("actors: actor %d not found", id)
	}
	a.anim = anim

	buf := new(bytes.Buffer)
	wire.PutString(buf, anim.Library)
	wire.PutString(buf, anim.Name)
	binary.Write(buf, binary.LittleEndian, float32(anim.Delta))
	wire.PutBool(buf, anim.Loop)
	wire.PutBool(buf, anim.LockX)
	wire.PutBool(buf, anim.LockY)
	wire.PutBool(buf, anim.Freeze)
	binary.Write(buf, binary.LittleEndian, anim.Time)

	for _, playerID := range c.engine.StreamedPlayers(id) {
		c.core.SendPacket(playerID, &network.Packet{
			RPC:        network.RPCApplyActorAnimationForPlayer,
			EntityID:   uint64(id),
			Components: []network.ComponentData{{Type: "anim", Data: buf.Bytes()}},
		})
	}
	return nil
}

// ClearAnimation resets the actor to no animation and notifies every
// streamed-in player.
func (c *Component) ClearAnimation(id int) {
	a, ok := c.pool.Get(id)
	if !ok {
		return
	}
	a.anim = Animation{}
	for _, playerID := range c.engine.StreamedPlayers(id) {
		c.core.SendPacket(playerID, &network.Packet{
			RPC:      network.RPCClearActorAnimationsForPlayer,
			EntityID: uint64(id),
		})
	}
}

// SetHealth updates the actor's health and broadcasts it to every
// streamed-in player.
func (c *Component) SetHealth(id int, health float64) {
	a, ok := c.pool.Get(id)
	if !ok {
		return
	}
	a.health = health

	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, float32(health))
	for _, playerID := range c.engine.StreamedPlayers(id) {
		c.core.SendPacket(playerID, &network.Packet{
			RPC:        network.RPCSetActorHealthForPlayer,
			EntityID:   uint64(id),
			Components: []network.ComponentData{{Type: "health", Data: buf.Bytes()}},
		})
	}
}

// Health returns the actor's current health.
func (c *Component) Health(id int) (float64, bool) {
	a, ok := c.pool.Get(id)
	if !ok {
		return 0, false
	}
	return a.health, true
}

// SetInvulnerable toggles whether the actor accepts damage.
func (c *Component) SetInvulnerable(id int, invulnerable bool) {
	a, ok := c.pool.Get(id)
	if !ok {
		return
	}
	a.invulnerable = invulnerable
}

// IsInvulnerable reports whether the actor currently rejects damage.
func (c *Component) IsInvulnerable(id int) bool {
	a, ok := c.pool.Get(id)
	return ok && a.invulnerable
}

func (c *Component) show(playerID uint64, id int, a *Actor) {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, uint32(a.skin))
	wire.PutVector3(buf, a.pos)
	binary.Write(buf, binary.LittleEndian, float32(a.facingAngle))
	c.core.SendPacket(playerID, &network.Packet{
		RPC:        network.RPCShowActorForPlayer,
		EntityID:   uint64(id),
		Components: []network.ComponentData{{Type: "actor", Data: buf.Bytes()}},
	})
}

func (c *Component) hide(playerID uint64, id int, _ *Actor) {
	c.core.SendPacket(playerID, &network.Packet{
		RPC:      network.RPCHideActorForPlayer,
		EntityID: uint64(id),
	})
}

// handleDamageInput decodes a GiveDamageActor sync packet and runs the
// accept/reject/dispatch logic spec.md §4.5 and S4 describe.
func (c *Component) handleDamageInput(playerID uint64, cmd *network.InputCommand) {
	r := bytes.NewReader(cmd.Data)
	var actorID, weaponID, bodyPart uint32
	var amount float32
	if err := binary.Read(r, binary.LittleEndian, &actorID); err != nil {
		return
	}
	if err := binary.Read(r, binary.LittleEndian, &amount); err != nil {
		return
	}
	if err := binary.Read(r, binary.LittleEndian, &weaponID); err != nil {
		return
	}
	if err := binary.Read(r, binary.LittleEndian, &bodyPart); err != nil {
		return
	}

	c.OnPlayerDamageActor(playerID, int(actorID), float64(amount), weaponID, int(bodyPart))
}

// OnPlayerDamageActor runs the accept/reject/dispatch logic directly,
// for callers that already have a decoded damage report (tests, or an
// alternate transport).
func (c *Component) OnPlayerDamageActor(playerID uint64, actorID int, amount float64, weaponID uint32, bodyPart int) {
	a, ok := c.pool.Get(actorID)
	if !ok {
		return
	}
	if !c.engine.IsStreamed(actorID, playerID) {
		return
	}
	if a.invulnerable {
		return
	}

	lock := pool.NewScopedReleaseLock(c.pool, actorID)
	defer lock.Release()

	c.damage.Dispatch(func(h DamageHandler) {
		h.OnPlayerDamageActor(playerID, actorID, amount, weaponID, bodyPart)
	})
}
