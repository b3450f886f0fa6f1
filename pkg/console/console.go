// Package console implements the line-command bus shared by the
// process console, rcon, and in-game rcon players: one dispatcher, three
// sender kinds, grounded on
// original_source/SDK/include/Server/Components/Console/console.hpp
// (ConsoleCommandSender, ConsoleCommandSenderData, ConsoleEventHandler,
// IConsoleComponent.send/sendMessage).
package console

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/sampcore/pkg/config"
	"github.com/opd-ai/sampcore/pkg/event"
)

// SenderKind identifies who issued a console command.
type SenderKind int

const (
	SenderConsole SenderKind = iota
	SenderPlayer
	SenderCustom
)

// MessageHandler receives console replies for a SenderCustom sender.
type MessageHandler interface {
	HandleConsoleMessage(message string)
}

// Sender identifies the origin of a command sent to the bus.
type Sender struct {
	Kind     SenderKind
	PlayerID uint64
	Handler  MessageHandler
}

// EventHandler is notified of console text and rcon login attempts.
// OnConsoleText returning true means the handler has fully handled the
// command; the bus stops dispatching to further handlers.
type EventHandler interface {
	OnConsoleText(command, parameters string, sender Sender) bool
	OnRconLoginAttempt(playerID uint64, password string, success bool)
}

// Bus dispatches console command lines to registered handlers and
// implements the built-in "exec <file>" legacy-config reload command.
type Bus struct {
	cfg    *config.Config
	logger *logrus.Entry
	events *event.Dispatcher[EventHandler]

	playerMessenger func(playerID uint64, message string)
}

// New constructs a console bus bound to cfg, which exec reloads into.
func New(cfg *config.Config, logger *logrus.Entry) *Bus {
	return &Bus{cfg: cfg, logger: logger, events: event.New[EventHandler]()}
}

// OnConsoleEvent registers a handler for command text and rcon attempts.
func (b *Bus) OnConsoleEvent(h EventHandler) { b.events.Add(h) }

// SetPlayerMessenger wires the callback SendMessage uses to deliver a
// reply to a SenderPlayer recipient (typically core.SendPacket wrapped
// by the component owning the in-game rcon chat line).
func (b *Bus) SetPlayerMessenger(fn func(playerID uint64, message string)) {
	b.playerMessenger = fn
}

// Send dispatches one command line from sender. "exec <file>" is handled
// directly by the bus; every other line is dispatched to OnConsoleText
// handlers in registration order, stopping at the first that returns
// true.
func (b *Bus) Send(line string, sender Sender) {
	command, parameters := splitCommand(line)
	if strings.EqualFold(command, "exec") {
		b.exec(strings.TrimSpace(parameters), sender)
		return
	}
	b.events.StopAtTrue(func(h EventHandler) bool {
		return h.OnConsoleText(command, parameters, sender)
	})
}

func splitCommand(line string) (command, parameters string) {
	line = strings.TrimSpace(line)
	i := strings.IndexByte(line, ' ')
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i+1:])
}

func (b *Bus) exec(path string, sender Sender) {
	f, err := os.Open(path)
	if err != nil {
		if b.logger != nil {
			b.logger.WithError(err).WithField("file", path).Warn("exec: failed to open config file")
		}
		b.SendMessage(sender, "exec: failed to open "+path)
		return
	}
	defer f.Close()

	if err := config.LoadLegacy(f, b.cfg, b.logger); err != nil {
		if b.logger != nil {
			b.logger.WithError(err).WithField("file", path).Warn("exec: failed to reload legacy config")
		}
		b.SendMessage(sender, "exec: failed to reload "+path)
		return
	}
	b.SendMessage(sender, "exec: reloaded "+path)
}

// AttemptRconLogin checks password against the configured rcon password
// and notifies every handler of the attempt's outcome.
func (b *Bus) AttemptRconLogin(playerID uint64, password string) bool {
	success := b.cfg.EnableRCON && password == b.cfg.RCONPassword
	b.events.Dispatch(func(h EventHandler) { h.OnRconLoginAttempt(playerID, password, success) })
	return success
}

// SendMessage delivers message to recipient, routed by sender kind: a
// console sender is logged, a player sender goes through the wired
// messenger callback, and a custom sender's handler is invoked directly.
func (b *Bus) SendMessage(recipient Sender, message string) {
	switch recipient.Kind {
	case SenderConsole:
		if b.logger != nil {
			b.logger.Info(message)
		}
	case SenderPlayer:
		if b.playerMessenger != nil {
			b.playerMessenger(recipient.PlayerID, message)
		}
	case SenderCustom:
		if recipient.Handler != nil {
			recipient.Handler.HandleConsoleMessage(message)
		}
	}
}
