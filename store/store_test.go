package store

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return s
}

func TestSQLiteHistoryRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveExchange(ctx, "c1", "hello", "hi there"); err != nil {
		t.Fatalf("SaveExchange: %v", err)
	}
	if err := s.SaveExchange(ctx, "c2", "other", "reply"); err != nil {
		t.Fatalf("SaveExchange: %v", err)
	}
	if err := s.SaveExchange(ctx, "c1", "followup", "sure"); err != nil {
		t.Fatalf("SaveExchange: %v", err)
	}

	all, err := s.History(ctx, "")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d exchanges, want 3", len(all))
	}
	if all[0].UserMessage != "hello" || all[2].UserMessage != "followup" {
		t.Errorf("exchanges out of chronological order: %+v", all)
	}

	c1, err := s.History(ctx, "c1")
	if err != nil {
		t.Fatalf("History(c1): %v", err)
	}
	if len(c1) != 2 {
		t.Fatalf("got %d exchanges for c1, want 2", len(c1))
	}
	for _, ex := range c1 {
		if ex.ConversationID != "c1" {
			t.Errorf("leaked exchange from %q", ex.ConversationID)
		}
		if ex.Timestamp.IsZero() {
			t.Error("timestamp not persisted")
		}
	}
}

func TestSQLiteHistoryEmpty(t *testing.T) {
	s := newTestStore(t)

	got, err := s.History(context.Background(), "none")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if got == nil {
		t.Error("History should return an empty slice, not nil")
	}
	if len(got) != 0 {
		t.Errorf("got %d exchanges, want 0", len(got))
	}
}

func TestOpenDispatch(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cases := []struct {
		name string
		url  string
	}{
		{"empty url uses sqlite default", ""},
		{"sqlite scheme", "sqlite://" + filepath.Join(dir, "a.db")},
		{"bare path", filepath.Join(dir, "b.db")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Open(ctx, tc.url)
			if err != nil {
				t.Fatalf("Open(%q): %v", tc.url, err)
			}
			defer s.Close()
			if _, ok := s.(*SQLiteStore); !ok {
				t.Errorf("Open(%q) = %T, want *SQLiteStore", tc.url, s)
			}
		})
	}
}
