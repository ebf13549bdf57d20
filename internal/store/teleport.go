package store

import (
	"path/filepath"
	"sort"

	"github.com/sahilm/fuzzy"
)

// TeleportEntry is one ranked candidate returned by Teleport.
type TeleportEntry struct {
	Path       string
	Count      int
	AccessedTS int64
	Score      int // fuzzy match score; 0 when query is empty
}

// Teleport ranks visit history against query. An empty query sorts by
// visit count (descending), then last-accessed time (descending) — the
// plain frecency ordering. A non-empty query fuzzy-matches path basenames
// and orders by match score first, falling back to count then
// accessed_ts to break ties between equally good matches.
func Teleport(history []VisitRecord, query string) []TeleportEntry {
	if query == "" {
		out := make([]TeleportEntry, len(history))
		for i, h := range history {
			out[i] = TeleportEntry{Path: h.Path, Count: h.Count, AccessedTS: h.AccessedTS}
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Count != out[j].Count {
				return out[i].Count > out[j].Count
			}
			return out[i].AccessedTS > out[j].AccessedTS
		})
		return out
	}

	paths := make([]string, len(history))
	for i, h := range history {
		paths[i] = filepath.Base(h.Path)
	}
	matches := fuzzy.Find(query, paths)

	out := make([]TeleportEntry, 0, len(matches))
	for _, m := range matches {
		h := history[m.Index]
		out = append(out, TeleportEntry{Path: h.Path, Count: h.Count, AccessedTS: h.AccessedTS, Score: m.Score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].AccessedTS > out[j].AccessedTS
	})
	return out
}
