// Package dialogs implements the per-player modal dialog box: at most
// one dialog is active per player at a time, and a response is only
// dispatched if its dialog id matches the one currently shown (scenario
// S6, dropping stale responses from a dialog the player has since been
// shown over), grounded on
// original_source/SDK/include/Server/Components/Dialogs/dialogs.hpp
// (IPlayerDialogData.show/hide/getActiveID, DialogStyle, DialogResponse,
// PlayerDialogEventHandler.onDialogResponse).
package dialogs

import (
	"bytes"
	"encoding/binary"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/sampcore/pkg/component/wire"
	"github.com/opd-ai/sampcore/pkg/core"
	"github.com/opd-ai/sampcore/pkg/event"
	"github.com/opd-ai/sampcore/pkg/network"
)

// Style mirrors DialogStyle.
type Style int

const (
	StyleMsgBox Style = iota
	StyleInput
	StyleList
	StylePassword
	StyleTablist
	StyleTablistHeaders
)

// Response mirrors DialogResponse: which button the player pressed.
type Response int

const (
	ResponseRight Response = iota
	ResponseLeft
)

const noDialog int32 = -1

type dialogState struct {
	id      int32
	style   Style
	title   string
	body    string
	button1 string
	button2 string
}

// ResponseHandler is notified when a player responds to the dialog
// currently shown to them.
type ResponseHandler interface {
	OnDialogResponse(playerID uint64, dialogID int32, response Response, listItem int32, inputText string)
}

// Component tracks each player's currently shown dialog, if any.
type Component struct {
	core   *core.Core
	events *event.Dispatcher[ResponseHandler]
	logger *logrus.Entry

	active map[uint64]*dialogState
}

// New constructs the dialogs component, wiring the DialogResponse input
// type to its handler.
func New(c *core.Core, logger *logrus.Entry) *Component {
	comp := &Component{
		core:   c,
		events: event.New[ResponseHandler](),
		logger: logger,
		active: make(map[uint64]*dialogState),
	}
	c.RegisterInputHandler("DialogResponse", comp.handleResponseInput)
	c.OnPlayerLeave(comp)
	return comp
}

// OnPlayerLeave satisfies core.PlayerLeaveHandler, discarding whatever
// dialog was shown to the disconnecting player.
func (c *Component) OnPlayerLeave(p *core.Player) { delete(c.active, p.PlayerID()) }

// OnDialogResponse registers a handler for accepted responses.
func (c *Component) OnDialogResponse(h ResponseHandler) { c.events.Add(h) }

// Show displays a dialog to playerID, replacing any dialog already
// shown.
func (c *Component) Show(playerID uint64, dialogID int32, style Style, title, body, button1, button2 string) {
	c.active[playerID] = &dialogState{
		id: dialogID, style: style, title: title, body: body, button1: button1, button2: button2,
	}

	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, dialogID)
	binary.Write(buf, binary.LittleEndian, uint8(style))
	wire.PutString(buf, title)
	wire.PutString(buf, body)
	wire.PutString(buf, button1)
	wire.PutString(buf, button2)
	c.core.SendPacket(playerID, &network.Packet{
		RPC:        network.RPCShowDialog,
		EntityID:   playerID,
		Components: []network.ComponentData{{Type: "dialog", Data: buf.Bytes()}},
	})
}

// Hide dismisses whatever dialog is shown to playerID, if any, sending a
// show RPC for the reserved "no dialog" id per the protocol's hide
// convention.
func (c *Component) Hide(playerID uint64) {
	if _, ok := c.active[playerID]; !ok {
		return
	}
	delete(c.active, playerID)

	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, noDialog)
	c.core.SendPacket(playerID, &network.Packet{
		RPC:        network.RPCShowDialog,
		EntityID:   playerID,
		Components: []network.ComponentData{{Type: "dialog", Data: buf.Bytes()}},
	})
}

// ActiveDialogID returns the id of the dialog currently shown to
// playerID, or noDialog if none.
func (c *Component) ActiveDialogID(playerID uint64) int32 {
	if d, ok := c.active[playerID]; ok {
		return d.id
	}
	return noDialog
}

func (c *Component) handleResponseInput(playerID uint64, cmd *network.InputCommand) {
	r := bytes.NewReader(cmd.Data)
	var dialogID int32
	var response uint8
	var listItem int32
	if err := binary.Read(r, binary.LittleEndian, &dialogID); err != nil {
		return
	}
	if err := binary.Read(r, binary.LittleEndian, &response); err != nil {
		return
	}
	if err := binary.Read(r, binary.LittleEndian, &listItem); err != nil {
		return
	}
	inputText, err := wire.GetString(r)
	if err != nil {
		return
	}

	c.HandleResponse(playerID, dialogID, Response(response), listItem, inputText)
}

// HandleResponse runs the id-agreement check and dispatch directly, for
// callers that already have a decoded response (tests, or an alternate
// transport). A response whose dialogID does not match the dialog
// currently shown to playerID is dropped without dispatch (scenario S6).
func (c *Component) HandleResponse(playerID uint64, dialogID int32, response Response, listItem int32, inputText string) {
	d, ok := c.active[playerID]
	if !ok || d.id != dialogID {
		return
	}
	delete(c.active, playerID)

	c.events.Dispatch(func(h ResponseHandler) {
		h.OnDialogResponse(playerID, dialogID, response, listItem, inputText)
	})
}
