package tictactoe

import (
	"encoding/json"

	"gamerooms/internal/game"
)

// Game implements game.Definition for tic-tac-toe.
type Game struct{}

func (Game) Info() game.Info {
	return game.Info{
		ID:         "tictactoe",
		Label:      "Tic-Tac-Toe",
		Icon:       "✕○",
		MinPlayers: 2,
		MaxPlayers: 2,
	}
}

// State is the full tic-tac-toe position. Board cells hold "X", "O", or ""
// for empty.
type State struct {
	Board       [9]string `json:"board"`
	CurrentTurn int       `json:"currentTurn"`
	Moves       []Move    `json:"moves"`
}

// Move records one placed mark.
type Move struct {
	Seat  int `json:"playerIndex"`
	Index int `json:"index"`
}

func (Game) Init() game.State {
	return &State{Moves: []Move{}}
}

type movePayload struct {
	Index int `json:"index"`
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
	if mv.Index < 0 || mv.Index > 8 || s.Board[mv.Index] != "" {
		return game.Outcome{}, false
	}

	sym := "X"
	if seat == 1 {
		sym = "O"
	}
	s.Board[mv.Index] = sym
	s.Moves = append(s.Moves, Move{Seat: seat, Index: mv.Index})

	if pattern := winningLine(&s.Board); pattern != nil {
		return game.Outcome{
			GameOver:   true,
			Winner:     seat,
			WinnerName: m.Name(seat),
			WinPattern: pattern,
		}, true
	}
	if boardFull(&s.Board) {
		return game.Outcome{GameOver: true, Winner: -1}, true
	}

	s.CurrentTurn = 1 - s.CurrentTurn
	return game.Continue(), true
}

var winLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // cols
	{0, 4, 8}, {2, 4, 6}, // diags
}

func winningLine(board *[9]string) []int {
	for _, line := range winLines {
		a, b, c := line[0], line[1], line[2]
		if board[a] != "" && board[a] == board[b] && board[a] == board[c] {
			return []int{a, b, c}
		}
	}
	return nil
}

func boardFull(board *[9]string) bool {
	for _, v := range board {
		if v == "" {
			return false
		}
	}
	return true
}
