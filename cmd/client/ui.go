package main

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/jroimartin/gocui"

	"superchat/internal/client"
	"superchat/pkg/protocol"
)

// inputMode tracks what the next line typed into the input view means.
// Commands that need a follow-up value (a room number, a nickname to
// ban) park the UI in the matching mode until the value arrives.
type inputMode int

const (
	modeChat inputMode = iota
	modeSwitchNumber
	modeRoomName
	modeDeleteNumber
	modeBanName
	modeUnbanName
)

// ChatUI is the gocui front end: a messages view, a one-line status bar
// and an input view. Lines arriving before the first layout pass are
// buffered and flushed once the messages view exists.
type ChatUI struct {
	gui    *gocui.Gui
	client *client.Client

	mu      sync.Mutex
	pending []string
	ready   bool
	mode    inputMode
	room    int
	status  string
}

func NewChatUI() *ChatUI {
	return &ChatUI{status: "type /help for more info."}
}

// Display implements the client's display callback. Safe to call from
// any goroutine, before or after Run.
func (ui *ChatUI) Display(line string) {
	ui.mu.Lock()
	ui.pending = append(ui.pending, line)
	ready := ui.ready
	ui.mu.Unlock()

	if ready {
		ui.gui.Update(ui.flushPending)
	}
}

func (ui *ChatUI) flushPending(g *gocui.Gui) error {
	ui.mu.Lock()
	lines := ui.pending
	ui.pending = nil
	ui.mu.Unlock()

	v, err := g.View("messages")
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Fprintln(v, line)
	}
	return nil
}

func (ui *ChatUI) setStatus(status string) {
	ui.mu.Lock()
	ui.status = status
	ui.mu.Unlock()

	ui.gui.Update(func(g *gocui.Gui) error {
		v, err := g.View("status")
		if err != nil {
			return err
		}
		v.Clear()
		fmt.Fprint(v, status)
		return nil
	})
}

func (ui *ChatUI) setMode(m inputMode) {
	ui.mu.Lock()
	ui.mode = m
	ui.mu.Unlock()
}

func (ui *ChatUI) currentMode() inputMode {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	return ui.mode
}

func (ui *ChatUI) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()

	if v, err := g.SetView("messages", 0, 0, maxX-1, maxY-5); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "SUPERCHAT"
		v.Wrap = true
		v.Autoscroll = true

		ui.mu.Lock()
		ui.ready = true
		ui.mu.Unlock()
		ui.gui.Update(ui.flushPending)
	}

	if v, err := g.SetView("status", 0, maxY-5, maxX-1, maxY-3); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Wrap = true
		ui.mu.Lock()
		fmt.Fprint(v, ui.status)
		ui.mu.Unlock()
	}

	if v, err := g.SetView("input", 0, maxY-3, maxX-1, maxY-1); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Input"
		v.Editable = true
		v.Wrap = true
		if _, err := g.SetCurrentView("input"); err != nil {
			return err
		}
	}

	return nil
}

func (ui *ChatUI) keybindings() error {
	if err := ui.gui.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone,
		func(*gocui.Gui, *gocui.View) error { return gocui.ErrQuit }); err != nil {
		return err
	}
	return ui.gui.SetKeybinding("input", gocui.KeyEnter, gocui.ModNone, ui.handleInput)
}

func (ui *ChatUI) handleInput(_ *gocui.Gui, v *gocui.View) error {
	input := strings.TrimSpace(v.Buffer())
	v.Clear()
	if err := v.SetCursor(0, 0); err != nil {
		return err
	}
	if input == "" {
		return nil
	}

	switch ui.currentMode() {
	case modeSwitchNumber:
		ui.switchRoom(input)
	case modeRoomName:
		ui.nameRoom(input)
	case modeDeleteNumber:
		ui.deleteRoom(input)
	case modeBanName:
		ui.ban(input)
	case modeUnbanName:
		ui.unban(input)
	default:
		return ui.command(input)
	}
	return nil
}

// command handles a line typed in chat mode: either a slash command from
// the help table or plain chat text.
func (ui *ChatUI) command(input string) error {
	switch input {
	case "/quit":
		return gocui.ErrQuit
	case "/help":
		ui.Display(" /change chatroom : switches chatrooms, creating the target when empty.")
		ui.Display(" /delete chatroom : deletes an empty chatroom.")
		ui.Display(" /ban             : hides a user's messages from your view.")
		ui.Display(" /unban           : shows a user's messages again.")
		ui.Display(" /quit            : quits the program.")
	case "/change chatroom":
		ui.setMode(modeSwitchNumber)
		go ui.showListing("Enter chatroom number. For an unlisted number the chatroom will be created.")
	case "/delete chatroom":
		ui.setMode(modeDeleteNumber)
		go ui.showListing("Enter chatroom number to delete.")
	case "/ban":
		ui.setMode(modeBanName)
		ui.setStatus("Enter the nickname of the user you want to ban:")
	case "/unban":
		ui.setMode(modeUnbanName)
		ui.setStatus("Enter the nickname of the user you want to unban:")
	default:
		go func() {
			if err := ui.client.Send(input); err != nil {
				ui.Display("Could not send message: " + err.Error())
			}
		}()
	}
	return nil
}

func (ui *ChatUI) showListing(prompt string) {
	listing, err := ui.client.ListRooms()
	if err != nil {
		ui.Display("Could not fetch chatroom list: " + err.Error())
		ui.setMode(modeChat)
		return
	}
	ui.Display(listing)
	ui.setStatus(prompt)
}

// roomNumber parses a single-digit room index typed by the user.
func roomNumber(input string) (int, bool) {
	n, err := strconv.Atoi(input)
	if err != nil || n < 0 || n >= protocol.NumRooms {
		return 0, false
	}
	return n, true
}

func (ui *ChatUI) switchRoom(input string) {
	n, ok := roomNumber(input)
	if !ok {
		ui.Display("Maximum chatroom number is 9. Enter a chatroom number from 0 to 9.")
		ui.resetToChat()
		return
	}

	ui.mu.Lock()
	same := ui.room == n
	ui.mu.Unlock()
	if same {
		ui.Display("In the chatroom already.")
		ui.resetToChat()
		return
	}

	go func() {
		result, err := ui.client.SwitchRoom(n)
		if err != nil {
			ui.Display("Could not switch chatroom: " + err.Error())
			ui.resetToChat()
			return
		}
		ui.mu.Lock()
		ui.room = n
		ui.mu.Unlock()

		if result.Existed {
			ui.Display("Joined " + result.Name + ".")
			ui.resetToChat()
			return
		}
		ui.setMode(modeRoomName)
		ui.setStatus("Enter chatroom name:")
	}()
}

func (ui *ChatUI) nameRoom(input string) {
	go func() {
		if err := ui.client.NameRoom(input); err != nil {
			ui.Display("Could not name chatroom: " + err.Error())
		} else {
			ui.Display("Created " + input + ".")
		}
		ui.resetToChat()
	}()
}

func (ui *ChatUI) deleteRoom(input string) {
	n, ok := roomNumber(input)
	if !ok {
		ui.Display("Maximum chatroom number is 9. Enter a chatroom number from 0 to 9.")
		ui.resetToChat()
		return
	}
	go func() {
		deleted, err := ui.client.DeleteRoom(n)
		switch {
		case err != nil:
			ui.Display("Could not delete chatroom: " + err.Error())
		case deleted:
			ui.Display("Chatroom deleted.")
		default:
			ui.Display("Chatroom is in use or does not exist.")
		}
		ui.resetToChat()
	}()
}

func (ui *ChatUI) ban(nick string) {
	banned, err := ui.client.Ban(nick)
	switch {
	case err != nil:
		ui.Display("Could not ban user: " + err.Error())
	case banned:
		ui.Display(nick + " has been banned.")
	default:
		ui.Display(nick + " is banned already.")
	}
	ui.resetToChat()
}

func (ui *ChatUI) unban(nick string) {
	removed, err := ui.client.Unban(nick)
	switch {
	case err != nil:
		ui.Display("Could not unban user: " + err.Error())
	case removed:
		ui.Display(nick + " has been unbanned.")
	default:
		ui.Display(nick + " is not banned.")
	}
	ui.resetToChat()
}

func (ui *ChatUI) resetToChat() {
	ui.setMode(modeChat)
	ui.setStatus("type /help for more info.")
}

// Run creates the terminal UI and blocks until the user quits or the
// connection drops.
func (ui *ChatUI) Run() error {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return err
	}
	defer g.Close()
	ui.gui = g

	g.SetManagerFunc(ui.layout)
	if err := ui.keybindings(); err != nil {
		return err
	}

	// Quit the main loop when the server connection goes away.
	go func() {
		<-ui.client.Done()
		g.Update(func(*gocui.Gui) error { return gocui.ErrQuit })
	}()

	if err := g.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}
	return nil
}
