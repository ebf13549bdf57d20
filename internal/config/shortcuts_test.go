package config

import "testing"

func TestParseChord(t *testing.T) {
	cases := []struct {
		in      string
		wantKey string
		wantMod Modifiers
	}{
		{"j", "j", 0},
		{"ctrl+shift+v", "v", ModCtrl | ModShift},
		{"Cmd+P", "p", ModSuper},
		{"alt+tab", "tab", ModAlt},
	}
	for _, c := range cases {
		got, err := ParseChord(c.in)
		if err != nil {
			t.Fatalf("ParseChord(%q): %v", c.in, err)
		}
		if got.Key != c.wantKey || got.Mods != c.wantMod {
			t.Errorf("ParseChord(%q) = %+v, want key=%q mods=%v", c.in, got, c.wantKey, c.wantMod)
		}
	}
}

func TestParseChord_Empty(t *testing.T) {
	if _, err := ParseChord(""); err == nil {
		t.Error("expected error for empty chord")
	}
	if _, err := ParseChord("ctrl+"); err == nil {
		t.Error("expected error for chord with no key")
	}
}

func TestBuildAutomaton_SingleChordBindings(t *testing.T) {
	bindings := map[string]interface{}{
		string(ActionMoveUp):   "k",
		string(ActionMoveDown): "j",
	}
	root, err := BuildAutomaton(bindings)
	if err != nil {
		t.Fatalf("BuildAutomaton: %v", err)
	}
	k, _ := ParseChord("k")
	_, action, done, ok := Step(root, k)
	if !ok || !done || action != ActionMoveUp {
		t.Errorf("Step(k) = action=%v done=%v ok=%v, want ActionMoveUp/true/true", action, done, ok)
	}
}

func TestBuildAutomaton_MultiChordSequence(t *testing.T) {
	bindings := map[string]interface{}{
		string(ActionGoHome): "g g",
	}
	root, err := BuildAutomaton(bindings)
	if err != nil {
		t.Fatalf("BuildAutomaton: %v", err)
	}
	g, _ := ParseChord("g")
	next, _, done, ok := Step(root, g)
	if !ok || done {
		t.Fatalf("first g: ok=%v done=%v, want ok=true done=false", ok, done)
	}
	_, action, done, ok := Step(next, g)
	if !ok || !done || action != ActionGoHome {
		t.Errorf("second g: action=%v done=%v ok=%v, want ActionGoHome/true/true", action, done, ok)
	}
}

func TestBuildAutomaton_UnknownAction(t *testing.T) {
	_, err := BuildAutomaton(map[string]interface{}{"not_a_real_action": "k"})
	if err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestBuildAutomaton_LeafCollision(t *testing.T) {
	bindings := map[string]interface{}{
		string(ActionMoveUp):   "k",
		string(ActionMoveDown): "k",
	}
	_, err := BuildAutomaton(bindings)
	var conflict *ShortcutConflict
	if err == nil {
		t.Fatal("expected a conflict error")
	}
	if !asShortcutConflict(err, &conflict) {
		t.Fatalf("expected *ShortcutConflict, got %T: %v", err, err)
	}
}

func TestBuildAutomaton_PrefixCollision(t *testing.T) {
	// "g" is bound standalone, and "g g" wants to extend it — ambiguous.
	bindings := map[string]interface{}{
		string(ActionMoveUp):   "g",
		string(ActionGoHome):   "g g",
	}
	_, err := BuildAutomaton(bindings)
	if err == nil {
		t.Fatal("expected a conflict error for prefix collision")
	}
}

func TestBuildAutomaton_DuplicateBindingSameAction(t *testing.T) {
	// Two chords triggering the *same* action is allowed.
	bindings := map[string]interface{}{
		string(ActionOpen): []string{"enter", "l"},
	}
	root, err := BuildAutomaton(bindings)
	if err != nil {
		t.Fatalf("BuildAutomaton: %v", err)
	}
	for _, key := range []string{"enter", "l"} {
		c, _ := ParseChord(key)
		_, action, done, ok := Step(root, c)
		if !ok || !done || action != ActionOpen {
			t.Errorf("Step(%q) = action=%v done=%v ok=%v, want ActionOpen/true/true", key, action, done, ok)
		}
	}
}

func TestStep_UnrecognizedChord(t *testing.T) {
	root, _ := BuildAutomaton(map[string]interface{}{string(ActionMoveUp): "k"})
	c, _ := ParseChord("z")
	_, _, _, ok := Step(root, c)
	if ok {
		t.Error("expected ok=false for an unbound chord")
	}
}

func asShortcutConflict(err error, target **ShortcutConflict) bool {
	c, ok := err.(*ShortcutConflict)
	if ok {
		*target = c
	}
	return ok
}
