package storage

import "testing"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecentResults(t *testing.T) {
	s := newTestStore(t)

	if err := s.RecordResult("room one", "tictactoe", "alice", ""); err != nil {
		t.Fatalf("record result: %v", err)
	}
	if err := s.RecordResult("room two", "chess", "bob", "checkmate"); err != nil {
		t.Fatalf("record result: %v", err)
	}

	results, err := s.RecentResults(10)
	if err != nil {
		t.Fatalf("recent results: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	// Newest first.
	if results[0].GameType != "chess" || results[0].WinnerName != "bob" {
		t.Fatalf("unexpected first result %+v", results[0])
	}
	if results[0].Reason != "checkmate" {
		t.Fatalf("expected reason stored, got %q", results[0].Reason)
	}
	if results[1].RoomName != "room one" {
		t.Fatalf("unexpected second result %+v", results[1])
	}
	if results[0].FinishedAt.IsZero() {
		t.Fatal("expected finished timestamp set")
	}
}

func TestRecentResultsLimit(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		if err := s.RecordResult("room", "gomoku", "alice", ""); err != nil {
			t.Fatalf("record result: %v", err)
		}
	}

	results, err := s.RecentResults(3)
	if err != nil {
		t.Fatalf("recent results: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
}

func TestLeaderboardCountsWins(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 3; i++ {
		if err := s.RecordResult("room", "tictactoe", "alice", ""); err != nil {
			t.Fatalf("record result: %v", err)
		}
	}
	if err := s.RecordResult("room", "chess", "bob", "checkmate"); err != nil {
		t.Fatalf("record result: %v", err)
	}
	// Draws carry no winner and never count.
	if err := s.RecordResult("room", "reversi", "", ""); err != nil {
		t.Fatalf("record result: %v", err)
	}

	entries, err := s.Leaderboard(10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Username != "alice" || entries[0].Wins != 3 {
		t.Fatalf("unexpected leader %+v", entries[0])
	}
	if entries[1].Username != "bob" || entries[1].Wins != 1 {
		t.Fatalf("unexpected runner-up %+v", entries[1])
	}
}

func TestLeaderboardEmpty(t *testing.T) {
	s := newTestStore(t)
	entries, err := s.Leaderboard(10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty leaderboard, got %v", entries)
	}
}
