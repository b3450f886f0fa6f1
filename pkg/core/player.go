// Package core wires the server's pools, extension registries, event
// dispatchers, scheduler, and transport into the single-threaded tick
// loop, generalizing the teacher's ServerManager lifecycle
// (opd-ai-venture pkg/hostplay/server_manager.go: config + logger +
// running flag + start/stop) into a value owned by main, per spec.md §9
// "Global mutable state" — no package-level state anywhere in core.
package core

import (
	"github.com/opd-ai/sampcore/pkg/extension"
	"github.com/opd-ai/sampcore/pkg/types"
)

// PlayerState tracks a player's connection/spawn choreography. Every
// state except None (Connecting and Spawned) is eligible for streaming
// (spec.md §4.4 eligibility rule 1).
type PlayerState int

const (
	PlayerStateNone PlayerState = iota
	PlayerStateConnecting
	PlayerStateSpawned
)

// Player is the pooled per-connection entity. It satisfies
// streaming.PlayerView directly so every Engine[T] can scan it without
// an adapter.
type Player struct {
	id           uint64
	state        PlayerState
	position     types.Vector3
	virtualWorld int32

	activeDialogID int32 // -1 means none; spec.md S6 id-agreement

	Extensions *extension.Registry
}

func newPlayer(id uint64) Player {
	return Player{
		id:             id,
		state:          PlayerStateNone,
		activeDialogID: -1,
		Extensions:     extension.NewRegistry(),
	}
}

// PlayerID returns the player's pool id widened to uint64, the identity
// streaming.Engine and extension.Registry key on.
func (p *Player) PlayerID() uint64 { return p.id }

// Position returns the player's last known position.
func (p *Player) Position() types.Vector3 { return p.position }

// SetPosition updates the player's position.
func (p *Player) SetPosition(pos types.Vector3) { p.position = pos }

// VirtualWorld returns the player's current virtual world.
func (p *Player) VirtualWorld() int32 { return p.virtualWorld }

// SetVirtualWorld updates the player's current virtual world.
func (p *Player) SetVirtualWorld(world int32) { p.virtualWorld = world }

// State returns the player's connection/spawn state.
func (p *Player) State() PlayerState { return p.state }

// SetState updates the player's connection/spawn state.
func (p *Player) SetState(s PlayerState) { p.state = s }

// StreamEligible reports whether the player's state is anything other
// than PlayerStateNone, satisfying streaming.PlayerView.
func (p *Player) StreamEligible() bool { return p.state != PlayerStateNone }

// ActiveDialogID returns the id of the dialog currently shown to the
// player, or -1 if none.
func (p *Player) ActiveDialogID() int32 { return p.activeDialogID }

// SetActiveDialogID records the dialog currently shown to the player.
func (p *Player) SetActiveDialogID(id int32) { p.activeDialogID = id }

// ClearActiveDialog clears the active dialog id, done once the matching
// response arrives (spec.md S6).
func (p *Player) ClearActiveDialog() { p.activeDialogID = -1 }
