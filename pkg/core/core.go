package core

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/sampcore/pkg/config"
	"github.com/opd-ai/sampcore/pkg/event"
	"github.com/opd-ai/sampcore/pkg/network"
	"github.com/opd-ai/sampcore/pkg/pool"
	"github.com/opd-ai/sampcore/pkg/scheduler"
)

// PlayerJoinHandler is notified when a new player connects and has been
// allocated a pool slot.
type PlayerJoinHandler interface {
	OnPlayerJoin(p *Player)
}

// PlayerLeaveHandler is notified when a player disconnects, before its
// pool slot is released. Handlers may still call Core methods on the
// player's id during this callback.
type PlayerLeaveHandler interface {
	OnPlayerLeave(p *Player)
}

// perPlayerUpdate is a component's per-tick, per-player hook (e.g. a
// streaming.Engine's Update), gated by the scheduler's stream-rate
// throttle.
type perPlayerUpdate func(p *Player, nowMS int64)

// Core owns every pool, extension registry, dispatcher, and the
// scheduler — the single value spec.md §9 requires in place of the
// source's scattered singletons. It is constructed once by main and
// passed to components at load time; nothing here is package-level
// state.
type Core struct {
	config    config.Config
	logger    *logrus.Entry
	players   *pool.Pool[Player]
	scheduler *scheduler.Scheduler
	transport network.ServerConnection

	onJoin  *event.Dispatcher[PlayerJoinHandler]
	onLeave *event.Dispatcher[PlayerLeaveHandler]

	perPlayerUpdates []perPlayerUpdate
	inputHandlers    map[string][]func(playerID uint64, cmd *network.InputCommand)
}

// New constructs a Core from cfg and transport. cfg should already have
// ApplyDefaults called (either directly or via a legacy config load).
func New(cfg config.Config, transport network.ServerConnection, logger *logrus.Entry) *Core {
	return &Core{
		config:    cfg,
		logger:    logger,
		players:   pool.NewWithLogger[Player](cfg.MaxPlayers, logger),
		scheduler: scheduler.NewWithLogger(cfg.StreamRateMS, logger),
		transport: transport,
		onJoin:    event.New[PlayerJoinHandler](),
		onLeave:   event.New[PlayerLeaveHandler](),
		inputHandlers: make(map[string][]func(playerID uint64, cmd *network.InputCommand)),
	}
}

// Config returns the core's configuration.
func (c *Core) Config() config.Config { return c.config }

// Scheduler returns the core's timer/throttle scheduler, so components
// can register their own timers.
func (c *Core) Scheduler() *scheduler.Scheduler { return c.scheduler }

// Logger returns the core's structured logger, or nil if none was
// configured.
func (c *Core) Logger() *logrus.Entry { return c.logger }

// Players returns the player pool, for components that need direct id
// lookup (e.g. to resolve an attachment target).
func (c *Core) Players() *pool.Pool[Player] { return c.players }

// OnPlayerJoin registers a handler invoked once a player's pool slot has
// been created.
func (c *Core) OnPlayerJoin(h PlayerJoinHandler) { c.onJoin.Add(h) }

// OnPlayerLeave registers a handler invoked before a player's pool slot
// is released.
func (c *Core) OnPlayerLeave(h PlayerLeaveHandler) { c.onLeave.Add(h) }

// RegisterInputHandler routes inbound InputCommands whose InputType
// matches inputType to fn, used by components to receive sync packets
// (on-foot, in-car, weapon) and named client RPCs (GiveDamageActor,
// PlayerRequestClass, dialog responses). Multiple handlers may register
// for the same inputType; all are invoked in registration order.
func (c *Core) RegisterInputHandler(inputType string, fn func(playerID uint64, cmd *network.InputCommand)) {
	c.inputHandlers[inputType] = append(c.inputHandlers[inputType], fn)
}

// SendPacket sends pkt to a single connected player through the core's
// transport. A no-op if no transport was configured.
func (c *Core) SendPacket(playerID uint64, pkt *network.Packet) error {
	if c.transport == nil {
		return nil
	}
	return c.transport.SendPacket(playerID, pkt)
}

// BroadcastPacket sends pkt to every connected player through the core's
// transport. A no-op if no transport was configured.
func (c *Core) BroadcastPacket(pkt *network.Packet) {
	if c.transport == nil {
		return
	}
	c.transport.BroadcastPacket(pkt)
}

// RegisterPerPlayerUpdate adds a per-tick, per-player hook run for every
// player whose streaming scan is due this tick (the scheduler's
// stream-rate throttle gate). Components wire their streaming.Engine's
// Update method through this.
func (c *Core) RegisterPerPlayerUpdate(fn func(p *Player, nowMS int64)) {
	c.perPlayerUpdates = append(c.perPlayerUpdates, fn)
}

func (c *Core) addPlayer(playerID uint64) {
	id, ok := c.players.Emplace(func(id int) Player { return newPlayer(playerID) })
	if !ok {
		if c.logger != nil {
			c.logger.WithField("player", playerID).Warn("player pool exhausted, rejecting join")
		}
		return
	}
	p, _ := c.players.Get(id)
	p.SetState(PlayerStateConnecting)

	c.onJoin.Dispatch(func(h PlayerJoinHandler) { h.OnPlayerJoin(p) })
}

// removePlayer runs onPoolEntryDestroyed semantics for a disconnecting
// player: handlers fire synchronously, then every engine's streamed-for
// bookkeeping is pruned, then the slot is released (spec.md §5
// "Cancellation & timeouts", invariant 6).
func (c *Core) removePlayer(playerID uint64) {
	id, entity, ok := c.findPlayerSlot(playerID)
	if !ok {
		return
	}

	c.onLeave.Dispatch(func(h PlayerLeaveHandler) { h.OnPlayerLeave(entity) })
	c.scheduler.ForgetPlayer(playerID)
	c.players.Release(id, false)
}

func (c *Core) findPlayerSlot(playerID uint64) (int, *Player, bool) {
	var foundID int
	var found *Player
	c.players.ForEach(func(id int, p *Player) bool {
		if p.PlayerID() == playerID {
			foundID, found = id, p
			return false
		}
		return true
	})
	return foundID, found, found != nil
}

// Run drives the single-threaded tick loop at the given interval until
// ctx is cancelled: drain inbound join/leave/input events, tick the
// scheduler's timers, then run every registered per-player update for
// players due this tick (spec.md §3 "Control flow per tick").
func (c *Core) Run(ctx context.Context, tickInterval time.Duration) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			nowMS := time.Since(start).Milliseconds()
			c.drainTransport()
			c.scheduler.Tick(nowMS)
			c.runPerPlayerUpdates(nowMS)
		}
	}
}

func (c *Core) drainTransport() {
	if c.transport == nil {
		return
	}
	for {
		select {
		case playerID := <-c.transport.ReceivePlayerJoin():
			c.addPlayer(playerID)
		case playerID := <-c.transport.ReceivePlayerLeave():
			c.removePlayer(playerID)
		case cmd := <-c.transport.ReceiveInputCommand():
			c.dispatchInput(cmd)
		default:
			return
		}
	}
}

func (c *Core) dispatchInput(cmd *network.InputCommand) {
	for _, fn := range c.inputHandlers[cmd.InputType] {
		fn(cmd.PlayerID, cmd)
	}
}

func (c *Core) runPerPlayerUpdates(nowMS int64) {
	c.players.ForEach(func(id int, p *Player) bool {
		if !c.scheduler.ShouldStream(p.PlayerID(), nowMS) {
			return true
		}
		for _, fn := range c.perPlayerUpdates {
			fn(p, nowMS)
		}
		return true
	})
}
