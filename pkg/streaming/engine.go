package streaming

import (
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/sampcore/pkg/pool"
	"github.com/opd-ai/sampcore/pkg/types"
)

// AnyWorld is the virtual world sentinel meaning "visible from every
// world".
const AnyWorld int32 = -1

// Entity is the capability a pooled type must expose to be streamable.
// VirtualWorld returning AnyWorld makes the entity eligible for players
// in any world.
type Entity interface {
	Position() types.Vector3
	VirtualWorld() int32
}

// Attached is implemented by entity types that are scoped to another
// entity (e.g. an object welded to a vehicle). When present, eligibility
// additionally requires the attachment target to be currently streamed
// in for the viewing player, and the entity's effective position falls
// through to the target's.
type Attached interface {
	AttachmentTarget() (targetID uint64, ok bool)
}

// PlayerView is the player-side input to a streaming scan.
type PlayerView interface {
	PlayerID() uint64
	Position() types.Vector3
	VirtualWorld() int32
	// StreamEligible reports whether the player's state is past None
	// (spec's "state != None" gate).
	StreamEligible() bool
}

// AttachmentStreamedFunc reports whether targetID is currently streamed
// in for playerID, resolved against whatever engine owns that target
// (a player is always considered streamed for itself; a vehicle's engine
// answers for vehicle targets, etc). A nil func makes every attached
// entity ineligible, the conservative default.
type AttachmentStreamedFunc func(targetID, playerID uint64) bool

// AttachmentPositionFunc resolves targetID's current position, used for
// the position fallthrough spec.md §4.4 requires for attached entities.
type AttachmentPositionFunc func(targetID uint64) (types.Vector3, bool)

// Mode selects 2D or 3D distance comparison; each entity type declares
// which it uses (actors use 2D, text labels use 3D, etc).
type Mode int

const (
	Mode3D Mode = iota
	Mode2D
)

// Config parameterizes one Engine instance.
type Config struct {
	// StreamDistance is the linear distance (not squared) beyond which an
	// entity is not eligible.
	StreamDistance float64
	// DistanceMode selects 2D or 3D comparison.
	DistanceMode Mode
	// Cap is the maximum number of entities of this type simultaneously
	// streamed in for a single player. Zero means unlimited.
	Cap int
	// UseBroadPhase enables the uniform-grid broad phase (see grid.go)
	// instead of a naive full scan. Purely an optimisation; observable
	// behavior is unchanged.
	UseBroadPhase bool
}

func (c Config) distanceSqr() float64 {
	return c.StreamDistance * c.StreamDistance
}

// Engine is the per-entity-type area-of-interest streaming engine.
type Engine[T Entity] struct {
	pool   *pool.Pool[T]
	config Config
	logger *logrus.Entry

	show func(playerID uint64, id int, e *T)
	hide func(playerID uint64, id int, e *T)

	onStreamIn  []func(id int, playerID uint64)
	onStreamOut []func(id int, playerID uint64)

	// streamedFor[entityID] is the set of player ids the entity is
	// currently shown to.
	streamedFor map[int]map[uint64]bool
	// perPlayerCount[playerID] is the number of entities of this type
	// currently streamed in for that player, enforcing Config.Cap.
	perPlayerCount map[uint64]int

	attachmentStreamed AttachmentStreamedFunc
	attachmentPosition AttachmentPositionFunc

	grid *Grid
}

// New creates a streaming engine over pool p.
func New[T Entity](p *pool.Pool[T], cfg Config) *Engine[T] {
	return NewWithLogger(p, cfg, nil)
}

// NewWithLogger is New with an optional logger for cap-saturation
// diagnostics.
func NewWithLogger[T Entity](p *pool.Pool[T], cfg Config, logger *logrus.Entry) *Engine[T] {
	e := &Engine[T]{
		pool:           p,
		config:         cfg,
		logger:         logger,
		streamedFor:    make(map[int]map[uint64]bool),
		perPlayerCount: make(map[uint64]int),
	}
	if cfg.UseBroadPhase {
		e.grid = NewGrid(cfg.StreamDistance)
	}
	return e
}

// SetShowHide registers the callbacks that send the type-specific
// show/hide RPC payload. They are invoked synchronously during Update.
func (e *Engine[T]) SetShowHide(show, hide func(playerID uint64, id int, entity *T)) {
	e.show = show
	e.hide = hide
}

// OnStreamIn registers a handler fired after an entity transitions to
// streamed-in for a player.
func (e *Engine[T]) OnStreamIn(fn func(id int, playerID uint64)) {
	e.onStreamIn = append(e.onStreamIn, fn)
}

// OnStreamOut registers a handler fired after an entity transitions to
// streamed-out for a player.
func (e *Engine[T]) OnStreamOut(fn func(id int, playerID uint64)) {
	e.onStreamOut = append(e.onStreamOut, fn)
}

// SetAttachmentResolvers wires the callbacks used to resolve an
// attachment target's current streamed status and position, needed for
// entities implementing Attached.
func (e *Engine[T]) SetAttachmentResolvers(streamed AttachmentStreamedFunc, position AttachmentPositionFunc) {
	e.attachmentStreamed = streamed
	e.attachmentPosition = position
}

// TrackPosition updates the broad-phase grid cell for id, if the broad
// phase is enabled. Component code calls this whenever an entity's
// position changes.
func (e *Engine[T]) TrackPosition(id int, world int32, pos types.Vector3) {
	if e.grid != nil {
		e.grid.Update(id, world, pos)
	}
}

// Untrack destreams id — hiding it for every player it is currently
// shown to, per spec.md §3's "release performs its destream, then the
// pool releases the slot" lifecycle step — and removes it from the
// broad-phase grid. Called from pool.OnDestroy, where the slot is
// already tombstoned and pool.Get no longer returns the entity, so the
// hide callback receives a nil entity there.
func (e *Engine[T]) Untrack(id int) {
	entity, _ := e.pool.Get(id)
	for _, playerID := range e.StreamedPlayers(id) {
		e.streamOut(id, entity, playerID)
	}
	if e.grid != nil {
		e.grid.Remove(id)
	}
	delete(e.streamedFor, id)
}

// IsStreamed reports whether entity id is currently shown to playerID.
func (e *Engine[T]) IsStreamed(id int, playerID uint64) bool {
	set, ok := e.streamedFor[id]
	if !ok {
		return false
	}
	return set[playerID]
}

// CountStreamed returns the number of entities of this type currently
// streamed in for playerID, the invariant-4 counter.
func (e *Engine[T]) CountStreamed(playerID uint64) int {
	return e.perPlayerCount[playerID]
}

func (e *Engine[T]) candidateIDs(player PlayerView) []int {
	if e.grid == nil {
		var ids []int
		e.pool.ForEach(func(id int, _ *T) bool {
			ids = append(ids, id)
			return true
		})
		return ids
	}
	return e.grid.Query(player.VirtualWorld(), player.Position(), e.config.StreamDistance)
}

// eligible evaluates the predicate from spec.md §4.4 for one (player,
// entity) pair.
func (e *Engine[T]) eligible(player PlayerView, entity *T) bool {
	if !player.StreamEligible() {
		return false
	}

	world := (*entity).VirtualWorld()
	if world != AnyWorld && world != player.VirtualWorld() {
		return false
	}

	pos := (*entity).Position()
	if attached, ok := any(*entity).(Attached); ok {
		targetID, hasTarget := attached.AttachmentTarget()
		if hasTarget {
			if e.attachmentStreamed == nil || !e.attachmentStreamed(targetID, player.PlayerID()) {
				return false
			}
			if e.attachmentPosition != nil {
				if targetPos, ok := e.attachmentPosition(targetID); ok {
					pos = targetPos
				}
			}
		}
	}

	d := distanceSqr(player.Position(), pos, e.config.DistanceMode)
	return d < e.config.distanceSqr()
}

func distanceSqr(a, b types.Vector3, mode Mode) float64 {
	if mode == Mode2D {
		return a.To2D().DistanceSquared(b.To2D())
	}
	return a.DistanceSquared(b)
}

// Update runs one streaming scan for player, transitioning every entity
// of this type in/out of visibility per the eligibility predicate.
// Entities are visited in pool id order, so a saturated per-player cap
// deterministically favors the lowest id.
func (e *Engine[T]) Update(player PlayerView) {
	playerID := player.PlayerID()

	for _, id := range e.candidateIDs(player) {
		entity, ok := e.pool.Get(id)
		if !ok {
			continue
		}

		wantStreamed := e.eligible(player, entity)
		isStreamed := e.IsStreamed(id, playerID)

		switch {
		case !isStreamed && wantStreamed:
			if e.config.Cap > 0 && e.perPlayerCount[playerID] >= e.config.Cap {
				if e.logger != nil {
					e.logger.WithFields(logrus.Fields{"player": playerID, "entity": id}).
						Debug("stream-in skipped: per-player cap reached")
				}
				continue
			}
			e.streamIn(id, entity, playerID)
		case isStreamed && !wantStreamed:
			e.streamOut(id, entity, playerID)
		}
	}
}

func (e *Engine[T]) streamIn(id int, entity *T, playerID uint64) {
	if e.show != nil {
		e.show(playerID, id, entity)
	}
	if e.streamedFor[id] == nil {
		e.streamedFor[id] = make(map[uint64]bool)
	}
	e.streamedFor[id][playerID] = true
	e.perPlayerCount[playerID]++

	for _, fn := range e.onStreamIn {
		fn(id, playerID)
	}
}

func (e *Engine[T]) streamOut(id int, entity *T, playerID uint64) {
	if e.hide != nil {
		e.hide(playerID, id, entity)
	}
	if set := e.streamedFor[id]; set != nil {
		delete(set, playerID)
	}
	if e.perPlayerCount[playerID] > 0 {
		e.perPlayerCount[playerID]--
	}

	for _, fn := range e.onStreamOut {
		fn(id, playerID)
	}
}

// Restream forces a hide-then-show refresh of id for every player it is
// currently streamed in for, used whenever a mutable attribute affecting
// client rendering changes. It never re-evaluates eligibility.
func (e *Engine[T]) Restream(id int) {
	entity, ok := e.pool.Get(id)
	if !ok {
		return
	}
	set := e.streamedFor[id]
	if set == nil {
		return
	}
	players := make([]uint64, 0, len(set))
	for pid := range set {
		players = append(players, pid)
	}
	for _, pid := range players {
		if e.hide != nil {
			e.hide(pid, id, entity)
		}
		if e.show != nil {
			e.show(pid, id, entity)
		}
	}
}

// StreamedPlayers returns the ids of every player currently streamed in
// for entity id, used by components that need to push an out-of-band
// attribute update (animation, health, colour) to exactly the players
// who can currently see the entity.
func (e *Engine[T]) StreamedPlayers(id int) []uint64 {
	set := e.streamedFor[id]
	if set == nil {
		return nil
	}
	out := make([]uint64, 0, len(set))
	for pid := range set {
		out = append(out, pid)
	}
	return out
}

// PruneDisconnected removes playerID from every entity's streamed-for
// set and clears its per-player counter, the disconnect-pruning
// invariant (spec.md §8 invariant 6). Called synchronously from
// onPoolEntryDestroyed(player).
func (e *Engine[T]) PruneDisconnected(playerID uint64) {
	for _, set := range e.streamedFor {
		delete(set, playerID)
	}
	delete(e.perPlayerCount, playerID)
}
