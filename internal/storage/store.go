// Package storage records finished-match outcomes in SQLite. Live rooms,
// users, and in-progress games stay memory-only; only terminal results are
// written here, feeding the leaderboard endpoint.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Result is one finished match.
type Result struct {
	ID         int64     `json:"id"`
	RoomName   string    `json:"roomName"`
	GameType   string    `json:"gameType"`
	WinnerName string    `json:"winnerName"` // empty on a draw
	Reason     string    `json:"reason"`
	FinishedAt time.Time `json:"finishedAt"`
}

// LeaderboardEntry aggregates wins per username.
type LeaderboardEntry struct {
	Username string `json:"username"`
	Wins     int    `json:"wins"`
}

// Store handles SQLite persistence.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database and runs migrations.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// WAL mode for better concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS match_results (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			room_name   TEXT NOT NULL,
			game_type   TEXT NOT NULL,
			winner_name TEXT NOT NULL DEFAULT '',
			reason      TEXT NOT NULL DEFAULT '',
			finished_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_match_results_winner ON match_results(winner_name);
	`)
	return err
}

// RecordResult inserts one finished match. An empty winnerName records a
// draw.
func (s *Store) RecordResult(roomName, gameType, winnerName, reason string) error {
	_, err := s.db.Exec(
		"INSERT INTO match_results (room_name, game_type, winner_name, reason) VALUES (?, ?, ?, ?)",
		roomName, gameType, winnerName, reason,
	)
	return err
}

// Leaderboard returns the top winners by win count.
func (s *Store) Leaderboard(limit int) ([]LeaderboardEntry, error) {
	rows, err := s.db.Query(`
		SELECT winner_name, COUNT(*) AS wins
		FROM match_results
		WHERE winner_name != ''
		GROUP BY winner_name
		ORDER BY wins DESC, winner_name ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.Wins); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RecentResults returns the most recently finished matches.
func (s *Store) RecentResults(limit int) ([]Result, error) {
	rows, err := s.db.Query(`
		SELECT id, room_name, game_type, winner_name, reason, finished_at
		FROM match_results
		ORDER BY finished_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ID, &r.RoomName, &r.GameType, &r.WinnerName, &r.Reason, &r.FinishedAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
