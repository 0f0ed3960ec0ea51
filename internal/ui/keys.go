package ui

import (
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jscyril/juke/internal/config"
	"github.com/samber/lo"
)

// Command is a logical action a key can trigger
type Command int

const (
	CmdNone Command = iota
	CmdPlayPause
	CmdNext
	CmdPrev
	CmdSeekForward
	CmdSeekBack
	CmdToggleShuffle
	CmdCycleRepeat
	CmdOpenTrackList
	CmdOpenHelp
	CmdQuit
	CmdNavigateUp
	CmdNavigateDown
	CmdConfirmSelection
	CmdAppendSearchChar
	CmdBackspace
	CmdBack
	CmdVolumeUp
	CmdVolumeDown
	CmdStop
	CmdSaveQueue
)

// Action is a resolved key press. Rune is only set for CmdAppendSearchChar.
type Action struct {
	Command Command
	Rune    rune
}

// View identifies the active screen
type View int

const (
	ViewNowPlaying View = iota
	ViewTrackList
	ViewHelp
)

func (v View) String() string {
	switch v {
	case ViewTrackList:
		return "Tracks"
	case ViewHelp:
		return "Help"
	default:
		return "Now Playing"
	}
}

var viewCommands = map[View][]Command{
	ViewNowPlaying: {
		CmdPlayPause, CmdNext, CmdPrev, CmdSeekForward, CmdSeekBack,
		CmdToggleShuffle, CmdCycleRepeat, CmdOpenTrackList, CmdOpenHelp,
		CmdQuit, CmdVolumeUp, CmdVolumeDown, CmdStop, CmdSaveQueue,
	},
	ViewTrackList: {
		CmdNavigateUp, CmdNavigateDown, CmdConfirmSelection,
		CmdAppendSearchChar, CmdBackspace, CmdBack, CmdOpenHelp,
	},
	ViewHelp: {CmdBack, CmdOpenHelp},
}

// Allows reports whether c may be dispatched while v is active
func (v View) Allows(c Command) bool {
	return slices.Contains(viewCommands[v], c)
}

// bindingCommands maps key_bindings names to commands
var bindingCommands = map[string]Command{
	config.KeyPlayPause:   CmdPlayPause,
	config.KeyNext:        CmdNext,
	config.KeyPrev:        CmdPrev,
	config.KeySeekForward: CmdSeekForward,
	config.KeySeekBack:    CmdSeekBack,
	config.KeyShuffle:     CmdToggleShuffle,
	config.KeyRepeat:      CmdCycleRepeat,
	config.KeyTrackList:   CmdOpenTrackList,
	config.KeySearch:      CmdOpenTrackList,
	config.KeyHelp:        CmdOpenHelp,
	config.KeyQuit:        CmdQuit,
	config.KeyUp:          CmdNavigateUp,
	config.KeyDown:        CmdNavigateDown,
	config.KeyConfirm:     CmdConfirmSelection,
	config.KeyBackspace:   CmdBackspace,
	config.KeyBack:        CmdBack,
	config.KeyVolumeUp:    CmdVolumeUp,
	config.KeyVolumeDown:  CmdVolumeDown,
	config.KeyStop:        CmdStop,
	config.KeySaveQueue:   CmdSaveQueue,
}

// KeyMap resolves key presses to actions. A key may be bound to several
// commands; the first one the active view allows wins.
type KeyMap struct {
	keys map[string][]Command
}

// NewKeyMap builds a resolver from configured bindings
func NewKeyMap(bindings config.KeyBindings) KeyMap {
	keys := make(map[string][]Command)
	for _, entry := range lo.Entries(bindings) {
		cmd, ok := bindingCommands[entry.Key]
		if !ok {
			continue
		}
		for _, key := range entry.Value {
			keys[key] = append(keys[key], cmd)
		}
	}
	for key, cmds := range keys {
		slices.Sort(cmds)
		keys[key] = slices.Compact(cmds)
	}
	return KeyMap{keys: keys}
}

// Resolve turns a key press into an action for view. Unbound keys and
// commands the view does not allow are reported as not ok.
func (k KeyMap) Resolve(msg tea.KeyMsg, view View) (Action, bool) {
	key := config.NormalizeKey(msg.String())
	if key == "ctrl+c" {
		return Action{Command: CmdQuit}, true
	}

	// the track list search takes every printable character
	if view == ViewTrackList && !msg.Alt {
		switch {
		case msg.Type == tea.KeySpace:
			return Action{Command: CmdAppendSearchChar, Rune: ' '}, true
		case msg.Type == tea.KeyRunes && len(msg.Runes) == 1:
			return Action{Command: CmdAppendSearchChar, Rune: msg.Runes[0]}, true
		}
	}

	for _, cmd := range k.keys[key] {
		if view.Allows(cmd) {
			return Action{Command: cmd}, true
		}
	}
	return Action{}, false
}

// Keys returns the keys bound to cmd, sorted
func (k KeyMap) Keys(cmd Command) []string {
	keys := lo.Filter(lo.Keys(k.keys), func(key string, _ int) bool {
		return slices.Contains(k.keys[key], cmd)
	})
	slices.Sort(keys)
	return keys
}

// describe renders bound keys for the help screen
func (k KeyMap) describe(cmd Command) string {
	keys := k.Keys(cmd)
	if len(keys) == 0 {
		return "unbound"
	}
	return strings.Join(keys, " / ")
}
