// Package checkers implements draughts on an 8x8 board. Seat 0 plays black
// from the bottom rows and advances toward row 0; seat 1 plays red from the
// top and advances toward row 7. Captures are mandatory board-wide: while
// any capture exists for the mover's color, simple moves are rejected.
package checkers

import (
	"encoding/json"

	"gamerooms/internal/game"
)

// Game implements game.Definition for checkers.
type Game struct{}

func (Game) Info() game.Info {
	return game.Info{
		ID:         "checkers",
		Label:      "Checkers",
		Icon:       "⛀",
		MinPlayers: 2,
		MaxPlayers: 2,
	}
}

// Piece is one checker on the board.
type Piece struct {
	Color string `json:"color"` // "black" or "red"
	King  bool   `json:"isKing"`
}

// State is the full checkers position.
type State struct {
	Board       [8][8]*Piece `json:"board"`
	CurrentTurn int          `json:"currentTurn"`
}

func (Game) Init() game.State {
	s := &State{}
	for r := 0; r < 3; r++ {
		for c := 0; c < 8; c++ {
			if (r+c)%2 == 1 {
				s.Board[r][c] = &Piece{Color: "red"}
			}
		}
	}
	for r := 5; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if (r+c)%2 == 1 {
				s.Board[r][c] = &Piece{Color: "black"}
			}
		}
	}
	return s
}

type movePayload struct {
	From game.Coord `json:"from"`
	To   game.Coord `json:"to"`
}

func (Game) ProcessAction(m *game.Match, seat int, act game.Action) (game.Outcome, bool) {
	s, ok := m.State.(*State)
	if !ok || act.Type != "move" {
		return game.Outcome{}, false
	}
	var mv movePayload
	if err := json.Unmarshal(act.Payload, &mv); err != nil {
		return game.Outcome{}, false
	}
	if s.CurrentTurn != seat {
		return game.Outcome{}, false
	}
	if !inBounds(mv.From) || !inBounds(mv.To) {
		return game.Outcome{}, false
	}

	color := colorFor(seat)
	piece := s.Board[mv.From.Row][mv.From.Col]
	if piece == nil || piece.Color != color {
		return game.Outcome{}, false
	}
	if !applyMove(s, mv.From, mv.To, color) {
		return game.Outcome{}, false
	}

	if winner, over := checkWinner(s); over {
		return game.Outcome{
			GameOver:   true,
			Winner:     winner,
			WinnerName: m.Name(winner),
		}, true
	}
	return game.Continue(), true
}

func colorFor(seat int) string {
	if seat == 0 {
		return "black"
	}
	return "red"
}

// forwardDir is the advance direction for non-king pieces: toward the
// opponent's home rows.
func forwardDir(color string) int {
	if color == "black" {
		return -1
	}
	return 1
}

// kingRow is the farthest row from a color's start; reaching it promotes.
func kingRow(color string) int {
	if color == "black" {
		return 0
	}
	return 7
}

func inBounds(c game.Coord) bool {
	return c.Row >= 0 && c.Row < 8 && c.Col >= 0 && c.Col < 8
}

// applyMove validates and performs a simple step or a capture jump,
// including promotion and the turn flip. Returns false without mutating on
// an illegal move.
func applyMove(s *State, from, to game.Coord, color string) bool {
	piece := s.Board[from.Row][from.Col]
	dr := to.Row - from.Row
	dc := to.Col - from.Col
	if !piece.King && sign(dr) != forwardDir(color) {
		return false
	}
	if s.Board[to.Row][to.Col] != nil {
		return false
	}

	switch {
	case abs(dr) == 1 && abs(dc) == 1:
		if len(captures(s, color)) > 0 {
			return false
		}
		s.Board[to.Row][to.Col] = piece
		s.Board[from.Row][from.Col] = nil
	case abs(dr) == 2 && abs(dc) == 2:
		mr, mc := (from.Row+to.Row)/2, (from.Col+to.Col)/2
		mid := s.Board[mr][mc]
		if mid == nil || mid.Color == color {
			return false
		}
		s.Board[to.Row][to.Col] = piece
		s.Board[from.Row][from.Col] = nil
		s.Board[mr][mc] = nil
	default:
		return false
	}

	if to.Row == kingRow(color) {
		piece.King = true
	}
	s.CurrentTurn = 1 - s.CurrentTurn
	return true
}

// captures lists every capture jump available to a color anywhere on the
// board. A non-empty result makes simple moves illegal for that color.
func captures(s *State, color string) []movePayload {
	var caps []movePayload
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			p := s.Board[r][c]
			if p == nil || p.Color != color {
				continue
			}
			for _, d := range pieceDirs(p, color) {
				mr, mc := r+d[0], c+d[1]
				tr, tc := r+d[0]*2, c+d[1]*2
				if tr < 0 || tr > 7 || tc < 0 || tc > 7 {
					continue
				}
				mid := s.Board[mr][mc]
				if mid != nil && mid.Color != color && s.Board[tr][tc] == nil {
					caps = append(caps, movePayload{
						From: game.Coord{Row: r, Col: c},
						To:   game.Coord{Row: tr, Col: tc},
					})
				}
			}
		}
	}
	return caps
}

func pieceDirs(p *Piece, color string) [][2]int {
	if p.King {
		return [][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	}
	dir := forwardDir(color)
	return [][2]int{{dir, -1}, {dir, 1}}
}

// checkWinner reports the winning seat once a color has no pieces left.
func checkWinner(s *State) (int, bool) {
	black, red := 0, 0
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			switch p := s.Board[r][c]; {
			case p == nil:
			case p.Color == "black":
				black++
			default:
				red++
			}
		}
	}
	if black == 0 {
		return 1, true
	}
	if red == 0 {
		return 0, true
	}
	return 0, false
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
