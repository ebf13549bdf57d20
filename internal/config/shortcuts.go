package config

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// ShortcutAction is the closed set of commands a key chord can bind to.
// Adding a new bindable command means adding a constant here, not a
// free-form string anywhere else.
type ShortcutAction string

const (
	ActionMoveUp        ShortcutAction = "move_up"
	ActionMoveDown      ShortcutAction = "move_down"
	ActionMoveLeft      ShortcutAction = "move_left"
	ActionMoveRight     ShortcutAction = "move_right"
	ActionOpen          ShortcutAction = "open"
	ActionGoBack        ShortcutAction = "go_back"
	ActionGoForward     ShortcutAction = "go_forward"
	ActionGoHome        ShortcutAction = "go_home"
	ActionRefresh       ShortcutAction = "refresh"
	ActionCopy          ShortcutAction = "copy"
	ActionCut           ShortcutAction = "cut"
	ActionPaste         ShortcutAction = "paste"
	ActionDeleteEntry   ShortcutAction = "delete_entry"
	ActionRename        ShortcutAction = "rename"
	ActionNewFile       ShortcutAction = "new_file"
	ActionNewFolder     ShortcutAction = "new_folder"
	ActionSelectAll     ShortcutAction = "select_all"
	ActionToggleHidden  ShortcutAction = "toggle_hidden"
	ActionTogglePreview ShortcutAction = "toggle_preview"
	ActionFocusSearch   ShortcutAction = "focus_search"
	ActionNewTab        ShortcutAction = "new_tab"
	ActionCloseTab      ShortcutAction = "close_tab"
	ActionNextTab       ShortcutAction = "next_tab"
	ActionPrevTab       ShortcutAction = "prev_tab"
	ActionUndo          ShortcutAction = "undo"
	ActionRedo          ShortcutAction = "redo"
	ActionTeleport      ShortcutAction = "teleport"
	ActionEscape        ShortcutAction = "escape"
	ActionConfirm       ShortcutAction = "confirm"
)

var allActions = []ShortcutAction{
	ActionMoveUp, ActionMoveDown, ActionMoveLeft, ActionMoveRight, ActionOpen,
	ActionGoBack, ActionGoForward, ActionGoHome, ActionRefresh,
	ActionCopy, ActionCut, ActionPaste, ActionDeleteEntry, ActionRename,
	ActionNewFile, ActionNewFolder, ActionSelectAll,
	ActionToggleHidden, ActionTogglePreview, ActionFocusSearch,
	ActionNewTab, ActionCloseTab, ActionNextTab, ActionPrevTab,
	ActionUndo, ActionRedo, ActionTeleport, ActionEscape, ActionConfirm,
}

func isKnownAction(a string) bool {
	for _, k := range allActions {
		if string(k) == a {
			return true
		}
	}
	return false
}

// DefaultShortcutBindings returns the built-in chord assignments in the
// raw shape stored in Config.Shortcuts: action name -> one chord string,
// or a list of chord strings when multiple chords trigger the same
// action (an explicitly allowed duplicate, distinct from a conflict
// between two different actions).
func DefaultShortcutBindings() map[string]interface{} {
	return map[string]interface{}{
		string(ActionMoveUp):        "k",
		string(ActionMoveDown):      "j",
		string(ActionMoveLeft):      "h",
		string(ActionMoveRight):     "l",
		string(ActionGoBack):        "ctrl+h",
		string(ActionGoForward):     "ctrl+l",
		string(ActionGoHome):        "ctrl+shift+h",
		string(ActionRefresh):       "ctrl+r",
		string(ActionCopy):          "ctrl+c",
		string(ActionCut):           "ctrl+x",
		string(ActionPaste):         "ctrl+v",
		string(ActionDeleteEntry):   "delete",
		string(ActionRename):        "r",
		string(ActionNewFile):       "ctrl+n",
		string(ActionNewFolder):     "ctrl+shift+n",
		string(ActionSelectAll):     "ctrl+a",
		string(ActionToggleHidden):  "ctrl+shift+period",
		string(ActionTogglePreview): "ctrl+p",
		string(ActionFocusSearch):   "/",
		string(ActionNewTab):        "ctrl+t",
		string(ActionCloseTab):      "ctrl+w",
		string(ActionNextTab):       "ctrl+tab",
		string(ActionPrevTab):       "ctrl+shift+tab",
		string(ActionUndo):          "ctrl+z",
		string(ActionRedo):          "ctrl+shift+z",
		string(ActionTeleport):      "ctrl+g",
		string(ActionEscape):        "escape",
		string(ActionConfirm):       "enter",
	}
}

// Modifiers is a bitset of held modifier keys.
type Modifiers uint8

const (
	ModCtrl Modifiers = 1 << iota
	ModShift
	ModAlt
	ModSuper
)

// Chord is one (modifier set, key) step of a shortcut sequence.
type Chord struct {
	Mods Modifiers
	Key  string // lowercased, e.g. "a", "enter", "tab", "period"
}

// ParseChord parses a single chord token like "ctrl+shift+v" or "j".
func ParseChord(s string) (Chord, error) {
	parts := strings.Split(s, "+")
	if len(parts) == 0 {
		return Chord{}, fmt.Errorf("shortcuts: empty chord")
	}
	var c Chord
	for i, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			return Chord{}, fmt.Errorf("shortcuts: empty token in chord %q", s)
		}
		isLast := i == len(parts)-1
		switch p {
		case "ctrl", "control":
			c.Mods |= ModCtrl
		case "shift":
			c.Mods |= ModShift
		case "alt", "option":
			c.Mods |= ModAlt
		case "cmd", "command", "super", "meta":
			c.Mods |= ModSuper
		default:
			if !isLast {
				return Chord{}, fmt.Errorf("shortcuts: unknown modifier %q in chord %q", p, s)
			}
			c.Key = p
		}
	}
	if c.Key == "" {
		return Chord{}, fmt.Errorf("shortcuts: chord %q has no key", s)
	}
	return c, nil
}

// ShortcutConflict names two actions bound to the same key path, or one
// action's binding that is a prefix of another's — either way the
// automaton is ambiguous and config loading must fail.
type ShortcutConflict struct {
	Sequence string
	ActionA  ShortcutAction
	ActionB  ShortcutAction
}

func (e *ShortcutConflict) Error() string {
	return fmt.Sprintf("shortcuts: %q is bound to both %q and %q", e.Sequence, e.ActionA, e.ActionB)
}

// ReservedShortcutError reports a binding that collides with a
// platform-reserved chord (e.g. Ctrl+Shift+V is reserved by Windows
// clipboard-history UI and must not be rebound there).
type ReservedShortcutError struct {
	Sequence string
	Action   ShortcutAction
	Platform string
}

func (e *ReservedShortcutError) Error() string {
	return fmt.Sprintf("shortcuts: %q (bound to %q) is reserved on %s", e.Sequence, e.Action, e.Platform)
}

// Node is one state of the shortcut prefix automaton: either a leaf
// bound to an action, or an intermediate branching on the next chord.
type Node struct {
	Leaf     ShortcutAction
	IsLeaf   bool
	Children map[Chord]*Node
}

func newNode() *Node { return &Node{Children: make(map[Chord]*Node)} }

// BuildAutomaton validates and compiles the raw Config.Shortcuts map
// into a (modifier_set, key) -> NodeKind{Leaf|Intermediate} automaton
// rooted at the returned Node. A chord sequence is written as
// space-separated chord tokens, e.g. "g g" or "ctrl+shift+v".
func BuildAutomaton(bindings map[string]interface{}) (*Node, error) {
	root := newNode()

	// Deterministic iteration order so conflict errors are reproducible.
	actionNames := make([]string, 0, len(bindings))
	for name := range bindings {
		actionNames = append(actionNames, name)
	}
	sort.Strings(actionNames)

	for _, name := range actionNames {
		if !isKnownAction(name) {
			return nil, fmt.Errorf("shortcuts: unknown action %q", name)
		}
		action := ShortcutAction(name)

		for _, seq := range sequencesFor(bindings[name]) {
			chords, err := parseSequence(seq)
			if err != nil {
				return nil, err
			}
			if err := checkReserved(chords, action); err != nil {
				return nil, err
			}
			if err := insert(root, chords, action, seq); err != nil {
				return nil, err
			}
		}
	}
	return root, nil
}

func sequencesFor(v interface{}) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []string:
		return t
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func parseSequence(seq string) ([]Chord, error) {
	tokens := strings.Fields(seq)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("shortcuts: empty binding")
	}
	chords := make([]Chord, 0, len(tokens))
	for _, tok := range tokens {
		c, err := ParseChord(tok)
		if err != nil {
			return nil, err
		}
		chords = append(chords, c)
	}
	return chords, nil
}

func checkReserved(chords []Chord, action ShortcutAction) error {
	if runtime.GOOS != "windows" {
		return nil
	}
	for _, c := range chords {
		if c.Mods == ModCtrl|ModShift && c.Key == "v" {
			return &ReservedShortcutError{Sequence: chordString(c), Action: action, Platform: "windows"}
		}
	}
	return nil
}

func insert(root *Node, chords []Chord, action ShortcutAction, seqLabel string) error {
	node := root
	for i, c := range chords {
		isLast := i == len(chords)-1
		next, ok := node.Children[c]
		if !ok {
			next = newNode()
			node.Children[c] = next
		}
		if !isLast {
			if next.IsLeaf {
				return &ShortcutConflict{Sequence: seqLabel, ActionA: next.Leaf, ActionB: action}
			}
			node = next
			continue
		}
		if next.IsLeaf {
			return &ShortcutConflict{Sequence: seqLabel, ActionA: next.Leaf, ActionB: action}
		}
		if len(next.Children) > 0 {
			return &ShortcutConflict{Sequence: seqLabel, ActionA: firstLeafUnder(next), ActionB: action}
		}
		next.IsLeaf = true
		next.Leaf = action
	}
	return nil
}

func firstLeafUnder(n *Node) ShortcutAction {
	if n.IsLeaf {
		return n.Leaf
	}
	chords := make([]Chord, 0, len(n.Children))
	for c := range n.Children {
		chords = append(chords, c)
	}
	sort.Slice(chords, func(i, j int) bool { return chordString(chords[i]) < chordString(chords[j]) })
	for _, c := range chords {
		if a := firstLeafUnder(n.Children[c]); a != "" {
			return a
		}
	}
	return ""
}

func chordString(c Chord) string {
	var parts []string
	if c.Mods&ModCtrl != 0 {
		parts = append(parts, "ctrl")
	}
	if c.Mods&ModShift != 0 {
		parts = append(parts, "shift")
	}
	if c.Mods&ModAlt != 0 {
		parts = append(parts, "alt")
	}
	if c.Mods&ModSuper != 0 {
		parts = append(parts, "super")
	}
	parts = append(parts, c.Key)
	return strings.Join(parts, "+")
}

// Step advances the automaton from node by one chord. It returns the
// resulting node, the matched action (valid only when done is true), and
// whether the chord was recognized at all. Callers hold their own
// cursor, reset to root after a leaf fires or a chord is unrecognized.
func Step(node *Node, c Chord) (next *Node, action ShortcutAction, done bool, ok bool) {
	n, found := node.Children[c]
	if !found {
		return nil, "", false, false
	}
	if n.IsLeaf {
		return n, n.Leaf, true, true
	}
	return n, "", false, true
}
