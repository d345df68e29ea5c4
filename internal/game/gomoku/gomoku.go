// Package gomoku implements five-in-a-row on a 15x15 Go-style board.
// Seat 0 plays black, seat 1 white; first to five contiguous stones wins.
package gomoku

import (
	"encoding/json"

	"gamerooms/internal/game"
)

const size = 15

// Game implements game.Definition for gomoku.
type Game struct{}

func (Game) Info() game.Info {
	return game.Info{
		ID:         "gomoku",
		Label:      "Gomoku",
		Icon:       "⚫",
		MinPlayers: 2,
		MaxPlayers: 2,
	}
}

// State holds the board ("black"/"white"/"" cells) and placement bookkeeping.
type State struct {
	Board       [size][size]string `json:"board"`
	CurrentTurn int                `json:"currentTurn"`
	Size        int                `json:"size"`
	LastMove    *game.Coord        `json:"lastMove"`
	MoveCount   int                `json:"moveCount"`
}

func (Game) Init() game.State {
	return &State{Size: size}
}

type placePayload struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (Game) ProcessAction(m *game.Match, seat int, act game.Action) (game.Outcome, bool) {
	s, ok := m.State.(*State)
	if !ok || act.Type != "place" {
		return game.Outcome{}, false
	}
	var pp placePayload
	if err := json.Unmarshal(act.Payload, &pp); err != nil {
		return game.Outcome{}, false
	}
	if s.CurrentTurn != seat {
		return game.Outcome{}, false
	}
	if pp.Row < 0 || pp.Row >= size || pp.Col < 0 || pp.Col >= size {
		return game.Outcome{}, false
	}
	if s.Board[pp.Row][pp.Col] != "" {
		return game.Outcome{}, false
	}

	color := "black"
	if seat == 1 {
		color = "white"
	}
	s.Board[pp.Row][pp.Col] = color
	s.LastMove = &game.Coord{Row: pp.Row, Col: pp.Col}
	s.MoveCount++

	if cells := winningRun(&s.Board, pp.Row, pp.Col, color); cells != nil {
		return game.Outcome{
			GameOver:   true,
			Winner:     seat,
			WinnerName: m.Name(seat),
			WinCells:   cells,
		}, true
	}
	if s.MoveCount == size*size {
		return game.Outcome{GameOver: true, Winner: -1}, true
	}

	s.CurrentTurn = 1 - s.CurrentTurn
	return game.Continue(), true
}

func winningRun(board *[size][size]string, row, col int, color string) []game.Coord {
	dirs := [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}
	for _, d := range dirs {
		cells := []game.Coord{{Row: row, Col: col}}
		for i := 1; i < 5; i++ {
			r, c := row+d[0]*i, col+d[1]*i
			if r < 0 || r >= size || c < 0 || c >= size || board[r][c] != color {
				break
			}
			cells = append(cells, game.Coord{Row: r, Col: c})
		}
		for i := 1; i < 5; i++ {
			r, c := row-d[0]*i, col-d[1]*i
			if r < 0 || r >= size || c < 0 || c >= size || board[r][c] != color {
				break
			}
			cells = append(cells, game.Coord{Row: r, Col: c})
		}
		if len(cells) >= 5 {
			return cells
		}
	}
	return nil
}
