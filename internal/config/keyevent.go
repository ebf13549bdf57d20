package config

import (
	"strings"

	"gioui.org/io/key"
)

// ChordFromKeyEvent converts a Gio key event into the Chord type the
// shortcut automaton steps on, so the automaton itself never has to know
// about the GUI toolkit's event shape.
func ChordFromKeyEvent(evt key.Event) Chord {
	var mods Modifiers
	if evt.Modifiers.Contain(key.ModCtrl) {
		mods |= ModCtrl
	}
	if evt.Modifiers.Contain(key.ModShift) {
		mods |= ModShift
	}
	if evt.Modifiers.Contain(key.ModAlt) {
		mods |= ModAlt
	}
	if evt.Modifiers.Contain(key.ModSuper) {
		mods |= ModSuper
	}
	return Chord{Mods: mods, Key: keyNameToToken(evt.Name)}
}

// keyNameToToken maps a Gio key.Name back to the lowercase token used in
// config.toml bindings (the inverse of the token parsing ParseChord in
// shortcuts.go performs when validating a binding string).
func keyNameToToken(n key.Name) string {
	switch n {
	case ".":
		return "period"
	case key.NameUpArrow:
		return "up"
	case key.NameDownArrow:
		return "down"
	case key.NameLeftArrow:
		return "left"
	case key.NameRightArrow:
		return "right"
	case key.NameHome:
		return "home"
	case key.NameEnd:
		return "end"
	case key.NamePageUp:
		return "pageup"
	case key.NamePageDown:
		return "pagedown"
	case key.NameReturn:
		return "enter"
	case key.NameTab:
		return "tab"
	case key.NameSpace:
		return "space"
	case key.NameDeleteBackward:
		return "backspace"
	case key.NameDeleteForward:
		return "delete"
	case key.NameEscape:
		return "escape"
	case key.NameF1, key.NameF2, key.NameF3, key.NameF4, key.NameF5, key.NameF6,
		key.NameF7, key.NameF8, key.NameF9, key.NameF10, key.NameF11, key.NameF12:
		return strings.ToLower(string(n))
	default:
		return strings.ToLower(string(n))
	}
}
