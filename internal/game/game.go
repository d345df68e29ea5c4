package game

import "encoding/json"

// Info describes a game type for the lobby.
type Info struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Icon       string `json:"icon"`
	MinPlayers int    `json:"minPlayers"`
	MaxPlayers int    `json:"maxPlayers"`
}

// State is one game's board/puzzle snapshot. The room layer stores it and
// serializes it for broadcast but never inspects it; each engine
// type-asserts its own concrete state type.
type State any

// Action is a move a player submits. Payload is decoded by the engine that
// owns the game type.
type Action struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Coord identifies a board square.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Match is the slice of room state a rules engine may see: the live game
// state plus the seat-ordered usernames.
type Match struct {
	State State
	Names []string
}

// Name returns the username seated at the given index, or "" for a seat
// that does not exist.
func (m *Match) Name(seat int) string {
	if seat >= 0 && seat < len(m.Names) {
		return m.Names[seat]
	}
	return ""
}

// Outcome is the envelope an engine returns for an accepted action. The
// engine mutates m.State in place; the caller keeps the canonical state.
type Outcome struct {
	GameOver    bool    `json:"gameOver"`
	Winner      int     `json:"winner"` // seat index; -1 = draw; meaningful only when GameOver
	WinnerName  string  `json:"winnerName,omitempty"`
	Reason      string  `json:"reason,omitempty"`
	WinPattern  []int   `json:"winPattern,omitempty"` // flat cell indices (tic-tac-toe)
	WinCells    []Coord `json:"winCells,omitempty"`   // row/col pairs (connect-4, gomoku)
	Scores      any     `json:"scores,omitempty"`
	SolveFailed bool    `json:"solveFailed,omitempty"`
}

// Continue is the outcome of an accepted move that did not end the game.
func Continue() Outcome { return Outcome{Winner: -1} }

// Definition is one game's rule engine. Implementations are stateless; all
// game state lives in the State produced by Init.
//
// ProcessAction validates act against m.State for the acting seat. It
// returns (zero, false) when any precondition fails: a silent reject with
// no state mutation. On acceptance it applies the move to m.State and
// reports the outcome.
type Definition interface {
	Info() Info
	Init() State
	ProcessAction(m *Match, seat int, act Action) (Outcome, bool)
}
