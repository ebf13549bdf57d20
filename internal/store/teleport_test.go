package store

import "testing"

func TestTeleport_EmptyQueryRanksByFrecency(t *testing.T) {
	history := []VisitRecord{
		{Path: "/home/user/rare", Count: 1, AccessedTS: 500},
		{Path: "/home/user/frequent", Count: 20, AccessedTS: 100},
		{Path: "/home/user/recent", Count: 5, AccessedTS: 1000},
		{Path: "/home/user/also-five", Count: 5, AccessedTS: 50},
	}

	got := Teleport(history, "")
	want := []string{"/home/user/frequent", "/home/user/recent", "/home/user/also-five", "/home/user/rare"}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Path != w {
			t.Errorf("rank %d = %s, want %s", i, got[i].Path, w)
		}
	}
}

func TestTeleport_QueryRanksByFuzzyScoreFirst(t *testing.T) {
	history := []VisitRecord{
		{Path: "/home/user/projects", Count: 50, AccessedTS: 1},
		{Path: "/home/user/proj", Count: 1, AccessedTS: 1},
	}

	got := Teleport(history, "proj")
	if len(got) != 2 {
		t.Fatalf("expected both entries to fuzzy-match, got %d", len(got))
	}
	// "proj" is a closer/exact match to the basename "proj" than to
	// "projects" so it should outrank the higher-count entry despite
	// frecency favoring the opposite order.
	if got[0].Path != "/home/user/proj" {
		t.Errorf("top match = %s, want /home/user/proj", got[0].Path)
	}
}

func TestTeleport_QueryExcludesNonMatches(t *testing.T) {
	history := []VisitRecord{
		{Path: "/home/user/documents", Count: 10, AccessedTS: 1},
		{Path: "/var/log/syslog", Count: 10, AccessedTS: 1},
	}
	got := Teleport(history, "xyz123nomatch")
	if len(got) != 0 {
		t.Errorf("expected no matches, got %+v", got)
	}
}

func TestTeleport_EmptyHistory(t *testing.T) {
	if got := Teleport(nil, ""); len(got) != 0 {
		t.Errorf("expected empty result for empty history, got %+v", got)
	}
	if got := Teleport(nil, "query"); len(got) != 0 {
		t.Errorf("expected empty result for empty history with query, got %+v", got)
	}
}
