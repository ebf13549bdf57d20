package store

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db := NewDB()
	if err := db.Open(filepath.Join(t.TempDir(), "kiorg.db")); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

func TestDB_FavoritesAddRemove(t *testing.T) {
	db := openTestDB(t)
	go db.Start()

	db.RequestChan <- Request{Op: AddFavorite, Path: "/home/user/docs"}
	resp := <-db.ResponseChan
	if resp.Err != nil || len(resp.Favorites) != 1 || resp.Favorites[0] != "/home/user/docs" {
		t.Fatalf("after AddFavorite: %+v", resp)
	}

	// Adding the same favorite twice is idempotent (INSERT OR IGNORE).
	db.RequestChan <- Request{Op: AddFavorite, Path: "/home/user/docs"}
	resp = <-db.ResponseChan
	if len(resp.Favorites) != 1 {
		t.Fatalf("duplicate AddFavorite should not duplicate rows, got %+v", resp.Favorites)
	}

	db.RequestChan <- Request{Op: RemoveFavorite, Path: "/home/user/docs"}
	resp = <-db.ResponseChan
	if len(resp.Favorites) != 0 {
		t.Fatalf("after RemoveFavorite: %+v", resp.Favorites)
	}
}

func TestDB_SettingsSaveFetch(t *testing.T) {
	db := openTestDB(t)
	go db.Start()

	db.RequestChan <- Request{Op: SaveSetting, Key: "theme", Value: "dark"}
	resp := <-db.ResponseChan
	if resp.Err != nil || resp.Settings["theme"] != "dark" {
		t.Fatalf("after SaveSetting: %+v", resp)
	}

	// Upsert overwrites, not duplicates.
	db.RequestChan <- Request{Op: SaveSetting, Key: "theme", Value: "light"}
	resp = <-db.ResponseChan
	if resp.Settings["theme"] != "light" {
		t.Fatalf("expected upsert to overwrite, got %+v", resp.Settings)
	}

	db.RequestChan <- Request{Op: FetchSettings}
	resp = <-db.ResponseChan
	if len(resp.Settings) != 1 {
		t.Fatalf("expected exactly one setting, got %+v", resp.Settings)
	}
}

func TestDB_RecordVisit_UpsertsCountAndTimestamp(t *testing.T) {
	db := openTestDB(t)

	if err := db.RecordVisit("/home/user/project", 1000); err != nil {
		t.Fatalf("RecordVisit: %v", err)
	}
	if err := db.RecordVisit("/home/user/project", 2000); err != nil {
		t.Fatalf("RecordVisit (again): %v", err)
	}

	history, err := db.VisitHistory()
	if err != nil {
		t.Fatalf("VisitHistory: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one visit_history row, got %+v", history)
	}
	if history[0].Count != 2 || history[0].AccessedTS != 2000 {
		t.Errorf("record = %+v, want Count=2 AccessedTS=2000", history[0])
	}
}

func TestDB_VisitHistory_Empty(t *testing.T) {
	db := openTestDB(t)
	history, err := db.VisitHistory()
	if err != nil {
		t.Fatalf("VisitHistory: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected empty visit history, got %+v", history)
	}
}
